package btc

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"net/http"

	"wallet-backend/internal/gateway"
	"wallet-backend/pkg/errno"
	"wallet-backend/pkg/keyvault"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// Engine 构建、签名、序列化并提交一笔 UTXO 链付款
type Engine struct {
	api     *gateway.Client
	vault   *keyvault.Vault
	network *chaincfg.Params
}

func NewEngine(api *gateway.Client, vault *keyvault.Vault, network *chaincfg.Params) *Engine {
	return &Engine{api: api, vault: vault, network: network}
}

// Send 消费 set 中的全部输入，向 dest 支付 amount，余额找零回 from。
// 资金校验由调用方先做，这里再验一次作为签名前的最后闸门。
// 返回广播交易 ID。
func (e *Engine) Send(ctx context.Context, from, encryptedKey, passphrase, dest string, amount, fee int64, set *InputSet) (string, error) {
	msgTx, err := e.buildUnsigned(set, from, dest, amount, fee)
	if err != nil {
		return "", err
	}

	if err := e.sign(msgTx, encryptedKey, passphrase, set); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := msgTx.Serialize(&buf); err != nil {
		return "", fmt.Errorf("序列化交易失败: %w", err)
	}

	return e.broadcast(ctx, hex.EncodeToString(buf.Bytes()))
}

// buildUnsigned 构造未签名交易
// 输出固定两个：收款方 + 找零 (找零为 0 时省略找零输出)
func (e *Engine) buildUnsigned(set *InputSet, from, dest string, amount, fee int64) (*wire.MsgTx, error) {
	change := set.TotalAvailable - amount - fee
	if change < 0 {
		// 资金不足属于 funds error，绝不能走到签名
		return nil, errno.ErrInsufficientFunds
	}

	msgTx := wire.NewMsgTx(wire.TxVersion)

	for _, utxo := range set.Inputs {
		hash, err := chainhash.NewHashFromStr(utxo.TxID)
		if err != nil {
			return nil, fmt.Errorf("非法的输入 txid %q: %w", utxo.TxID, err)
		}
		outPoint := wire.NewOutPoint(hash, utxo.OutputIndex)
		msgTx.AddTxIn(wire.NewTxIn(outPoint, nil, nil))
	}

	destScript, err := e.payToAddrScript(dest)
	if err != nil {
		return nil, errno.ErrBadAddress.WithMessage(err.Error())
	}
	msgTx.AddTxOut(wire.NewTxOut(amount, destScript))

	if change > 0 {
		changeScript, err := e.payToAddrScript(from)
		if err != nil {
			return nil, errno.ErrBadAddress.WithMessage(err.Error())
		}
		msgTx.AddTxOut(wire.NewTxOut(change, changeScript))
	}

	return msgTx, nil
}

// sign 解密托管私钥并为每个输入生成签名脚本
// 明文私钥只存活在本函数内，退出路径上一律清零
func (e *Engine) sign(msgTx *wire.MsgTx, encryptedKey, passphrase string, set *InputSet) error {
	enc, err := keyvault.Parse(encryptedKey)
	if err != nil {
		return err
	}
	wif, err := e.vault.Decrypt(enc, passphrase)
	if err != nil {
		return err
	}
	defer wif.PrivKey.Zero()

	for i, utxo := range set.Inputs {
		prevScript, err := hex.DecodeString(utxo.ScriptHex)
		if err != nil {
			return fmt.Errorf("非法的输入脚本: %w", err)
		}
		sigScript, err := txscript.SignatureScript(
			msgTx, i, prevScript, txscript.SigHashAll, wif.PrivKey, wif.CompressPubKey)
		if err != nil {
			return fmt.Errorf("签名第 %d 个输入失败: %w", i, err)
		}
		msgTx.TxIn[i].SignatureScript = sigScript
	}
	return nil
}

type broadcastResponse struct {
	TxID        string `json:"txid"`
	Description string `json:"description"`
}

// broadcast 提交裸交易；一旦请求发出就视为已提交，不做幂等重放
func (e *Engine) broadcast(ctx context.Context, txHex string) (string, error) {
	var resp broadcastResponse
	payload := map[string]string{"tx_hex": txHex}
	if err := e.api.Call(ctx, http.MethodPost, "/send_tx", payload, &resp); err != nil {
		return "", err
	}
	if resp.TxID == "" {
		// 网络本身拒绝了这笔交易，原样透传上游给出的原因
		msg := resp.Description
		if msg == "" {
			msg = errno.ErrBroadcastRejected.Message
		}
		return "", errno.ErrBroadcastRejected.WithMessage(msg)
	}
	return resp.TxID, nil
}

func (e *Engine) payToAddrScript(addr string) ([]byte, error) {
	decoded, err := btcutil.DecodeAddress(addr, e.network)
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(decoded)
}
