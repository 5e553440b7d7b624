package keyvault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"wallet-backend/pkg/errno"
	"wallet-backend/pkg/safe_random"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/scrypt"
)

// EncryptedKey 托管私钥的密文封装
// 口令不是用户输入的密码，而是 Encrypt 时从本地熵源生成的 BIP-39 助记词；
// 助记词与密文分开保管，二者合起来才能恢复签名私钥。
// Compressed 记录 WIF 的公钥压缩标志，解密时原样还原。
type EncryptedKey struct {
	Crypto     CryptoJSON `json:"crypto"`
	Compressed bool       `json:"compressed"`
	Version    int        `json:"version"`
}

type CryptoJSON struct {
	Cipher       string       `json:"cipher"`       // "aes-256-gcm"
	CipherText   string       `json:"ciphertext"`   // Hex string
	CipherParams CipherParams `json:"cipherparams"` // IV
	KDF          string       `json:"kdf"`          // "scrypt"
	KDFParams    KDFParams    `json:"kdfparams"`
	MAC          string       `json:"mac"` // Hex string
}

type CipherParams struct {
	IV string `json:"iv"` // Hex string
}

type KDFParams struct {
	DKLen int    `json:"dklen"`
	N     int    `json:"n"`
	R     int    `json:"r"`
	P     int    `json:"p"`
	Salt  string `json:"salt"` // Hex string
}

const (
	// 交互式 scrypt 参数：每次签名请求都要走一遍 KDF，
	// 文件型 keystore 用的 N=262144 在这里是不必要的延迟
	scryptN     = 32768
	scryptR     = 8
	scryptP     = 1
	scryptDKLen = 32

	// 128 bits 熵 → 12 个助记词
	entropyBytes = 16
)

// Vault 负责托管私钥的加解密
type Vault struct {
	network *chaincfg.Params
}

func New(network *chaincfg.Params) *Vault {
	if network == nil {
		network = &chaincfg.MainNetParams
	}
	return &Vault{network: network}
}

// Encrypt 把一个 WIF 格式私钥加密为密文，并返回新生成的助记词口令。
// 调用方负责把两者分别持久化；本包不落盘、不打日志。
func (v *Vault) Encrypt(wifKey string) (*EncryptedKey, string, error) {
	wif, err := btcutil.DecodeWIF(wifKey)
	if err != nil {
		return nil, "", fmt.Errorf("invalid WIF key: %w", err)
	}

	// 1. 本地熵 → BIP-39 助记词，作为唯一口令
	entropy, err := safe_random.GenerateRandomBytes(entropyBytes)
	if err != nil {
		return nil, "", err
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, "", fmt.Errorf("生成助记词失败: %w", err)
	}

	// 2. Scrypt 派生密钥
	salt, err := safe_random.GenerateRandomBytes(32)
	if err != nil {
		return nil, "", err
	}
	derivedKey, err := scrypt.Key([]byte(mnemonic), salt, scryptN, scryptR, scryptP, scryptDKLen)
	if err != nil {
		return nil, "", err
	}

	// 3. AES-256-GCM 加密裸私钥 (32 bytes)
	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(safe_random.Reader, nonce); err != nil {
		return nil, "", err
	}
	ciphertext := gcm.Seal(nil, nonce, wif.PrivKey.Serialize(), nil)

	// 4. MAC = SHA256(derivedKey + ciphertext)，解密前先验
	mac := sha256.Sum256(append(derivedKey, ciphertext...))

	return &EncryptedKey{
		Version:    1,
		Compressed: wif.CompressPubKey,
		Crypto: CryptoJSON{
			Cipher:     "aes-256-gcm",
			CipherText: hex.EncodeToString(ciphertext),
			CipherParams: CipherParams{
				IV: hex.EncodeToString(nonce),
			},
			KDF: "scrypt",
			KDFParams: KDFParams{
				DKLen: scryptDKLen,
				N:     scryptN,
				R:     scryptR,
				P:     scryptP,
				Salt:  hex.EncodeToString(salt),
			},
			MAC: hex.EncodeToString(mac[:]),
		},
	}, mnemonic, nil
}

// Decrypt 用助记词口令还原 WIF 私钥。
// 口令错误或密文被篡改一律返回 ErrKeyDecryption，绝不返回看似合法的错误密钥。
// 返回的 WIF 只应存活到本次签名结束，调用方用完后应调用 PrivKey.Zero()。
func (v *Vault) Decrypt(enc *EncryptedKey, mnemonic string) (*btcutil.WIF, error) {
	salt, err := hex.DecodeString(enc.Crypto.KDFParams.Salt)
	if err != nil {
		return nil, errno.ErrKeyDecryption
	}
	nonce, err := hex.DecodeString(enc.Crypto.CipherParams.IV)
	if err != nil {
		return nil, errno.ErrKeyDecryption
	}
	ciphertext, err := hex.DecodeString(enc.Crypto.CipherText)
	if err != nil {
		return nil, errno.ErrKeyDecryption
	}
	mac, err := hex.DecodeString(enc.Crypto.MAC)
	if err != nil {
		return nil, errno.ErrKeyDecryption
	}

	derivedKey, err := scrypt.Key([]byte(mnemonic), salt,
		enc.Crypto.KDFParams.N,
		enc.Crypto.KDFParams.R,
		enc.Crypto.KDFParams.P,
		enc.Crypto.KDFParams.DKLen)
	if err != nil {
		return nil, errno.ErrKeyDecryption
	}

	calculatedMAC := sha256.Sum256(append(derivedKey, ciphertext...))
	if !hmac.Equal(mac, calculatedMAC[:]) {
		return nil, errno.ErrKeyDecryption
	}

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, errno.ErrKeyDecryption
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errno.ErrKeyDecryption
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		// GCM 认证失败，fail closed
		return nil, errno.ErrKeyDecryption
	}

	priv, _ := btcec.PrivKeyFromBytes(plaintext)
	for i := range plaintext {
		plaintext[i] = 0
	}

	wif, err := btcutil.NewWIF(priv, v.network, enc.Compressed)
	if err != nil {
		return nil, errno.ErrKeyDecryption
	}
	return wif, nil
}

// Marshal 序列化为 JSON 字符串，供持久层存储
func (k *EncryptedKey) Marshal() (string, error) {
	data, err := json.Marshal(k)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Parse 从持久层读出的 JSON 字符串还原 EncryptedKey
func Parse(s string) (*EncryptedKey, error) {
	var k EncryptedKey
	if err := json.Unmarshal([]byte(s), &k); err != nil {
		return nil, errno.ErrKeyDecryption
	}
	return &k, nil
}
