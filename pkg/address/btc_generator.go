package address

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// BTCGenerator 比特币地址生成器
type BTCGenerator struct {
	network *chaincfg.Params
}

func NewBTCGenerator(network *chaincfg.Params) *BTCGenerator {
	return &BTCGenerator{network: network}
}

// KeyPair 一次性生成结果。PrivateKeyWIF 只应出现在创建钱包的加密路径上。
type KeyPair struct {
	Address       string
	PublicKeyHex  string
	PrivateKeyWIF string
}

// GenerateKeyPair 随机生成一个 P2PKH 密钥对
// 托管钱包在创建时调用一次，私钥随即交给 keyvault 加密
func (g *BTCGenerator) GenerateKeyPair() (*KeyPair, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}

	wif, err := btcutil.NewWIF(priv, g.network, true)
	if err != nil {
		return nil, err
	}

	pubBytes := wif.SerializePubKey()
	addr, err := g.PubKeyToAddress(pubBytes)
	if err != nil {
		return nil, err
	}

	return &KeyPair{
		Address:       addr,
		PublicKeyHex:  hex.EncodeToString(pubBytes),
		PrivateKeyWIF: wif.String(),
	}, nil
}

// PubKeyToAddress 将公钥字节 (压缩格式) 转换为 P2PKH 地址
func (g *BTCGenerator) PubKeyToAddress(pubKeyBytes []byte) (string, error) {
	addr, err := btcutil.NewAddressPubKey(pubKeyBytes, g.network)
	if err != nil {
		return "", err
	}
	return addr.AddressPubKeyHash().EncodeAddress(), nil
}
