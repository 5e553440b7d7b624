package service

import (
	"context"

	"wallet-backend/internal/chain/btc"
	"wallet-backend/internal/chain/eth"
	"wallet-backend/internal/model"

	"github.com/shopspring/decimal"
)

// WalletStore 服务层需要的持久化操作
// internal/store.Store 是生产实现；测试用内存假实现
type WalletStore interface {
	WalletByUser(ctx context.Context, userID uint64, chain string) (*model.Wallet, error)
	WalletByAddress(ctx context.Context, address string) (*model.Wallet, error)
	CreateWallet(ctx context.Context, w *model.Wallet) error
	EncryptedKeyMaterial(ctx context.Context, address string) (encryptedKey, passphrase string, err error)
	SaveTransaction(ctx context.Context, from, to string, amount decimal.Decimal, chain, txID string) error
}

// UTXOReader UTXO 链的读操作
type UTXOReader interface {
	SelectInputs(ctx context.Context, address string) (*btc.InputSet, error)
	Balance(ctx context.Context, address string) (decimal.Decimal, error)
	Rate(ctx context.Context) (decimal.Decimal, error)
	Transactions(ctx context.Context, address string) ([]btc.RawTransaction, error)
}

// UTXOEngine 构建/签名/广播一笔 UTXO 链付款
type UTXOEngine interface {
	Send(ctx context.Context, from, encryptedKey, passphrase, dest string, amount, fee int64, set *btc.InputSet) (string, error)
}

// AccountReader 账户链的读操作
type AccountReader interface {
	Balance(ctx context.Context, address string) (decimal.Decimal, error)
	Rate(ctx context.Context) (decimal.Decimal, error)
	Transactions(ctx context.Context, address string) ([]eth.RawTransaction, error)
}

// AccountSigner 远端托管签名网关
type AccountSigner interface {
	NewAddress(ctx context.Context, password string) (string, error)
	Send(ctx context.Context, from, dest string, amount decimal.Decimal, password string) (string, error)
}
