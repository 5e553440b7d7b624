package service

import (
	"context"
	"sync"
	"time"

	"wallet-backend/internal/chain/btc"
	"wallet-backend/internal/chain/eth"
	"wallet-backend/internal/model"
	"wallet-backend/pkg/errno"

	"github.com/shopspring/decimal"
)

type fakeStore struct {
	mu      sync.Mutex
	wallets []*model.Wallet
	saved   []model.Transaction
	keyGets int
}

func (f *fakeStore) WalletByUser(ctx context.Context, userID uint64, chain string) (*model.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.wallets {
		if w.UserID == userID && w.Chain == chain {
			return w, nil
		}
	}
	return nil, errno.ErrWalletNotFound
}

func (f *fakeStore) WalletByAddress(ctx context.Context, address string) (*model.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, w := range f.wallets {
		if w.Address == address {
			return w, nil
		}
	}
	return nil, errno.ErrWalletNotFound
}

func (f *fakeStore) CreateWallet(ctx context.Context, w *model.Wallet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wallets = append(f.wallets, w)
	return nil
}

func (f *fakeStore) EncryptedKeyMaterial(ctx context.Context, address string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyGets++
	for _, w := range f.wallets {
		if w.Address == address {
			return w.EncryptedKey, w.Passphrase, nil
		}
	}
	return "", "", errno.ErrWalletNotFound
}

func (f *fakeStore) SaveTransaction(ctx context.Context, from, to string, amount decimal.Decimal, chain, txID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, model.Transaction{
		FromAddress: from, ToAddress: to, Amount: amount, Chain: chain, TxID: txID,
	})
	return nil
}

type fakeUTXOReader struct {
	set     *btc.InputSet
	balance decimal.Decimal
	rate    decimal.Decimal
	txs     []btc.RawTransaction

	selectErr error
	rateErr   error
}

func (f *fakeUTXOReader) SelectInputs(ctx context.Context, address string) (*btc.InputSet, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	return f.set, nil
}

func (f *fakeUTXOReader) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	return f.balance, nil
}

func (f *fakeUTXOReader) Rate(ctx context.Context) (decimal.Decimal, error) {
	if f.rateErr != nil {
		return decimal.Zero, f.rateErr
	}
	return f.rate, nil
}

func (f *fakeUTXOReader) Transactions(ctx context.Context, address string) ([]btc.RawTransaction, error) {
	return f.txs, nil
}

type fakeEngine struct {
	mu    sync.Mutex
	calls int
	delay time.Duration
	txID  string
	err   error
}

func (f *fakeEngine) Send(ctx context.Context, from, encryptedKey, passphrase, dest string, amount, fee int64, set *btc.InputSet) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.txID, nil
}

func (f *fakeEngine) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeSigner struct {
	mu           sync.Mutex
	address      string
	txID         string
	err          error
	lastPassword string
}

func (f *fakeSigner) NewAddress(ctx context.Context, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPassword = password
	if f.err != nil {
		return "", f.err
	}
	return f.address, nil
}

func (f *fakeSigner) Send(ctx context.Context, from, dest string, amount decimal.Decimal, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPassword = password
	if f.err != nil {
		return "", f.err
	}
	return f.txID, nil
}

type fakeAccountReader struct {
	balance decimal.Decimal
	rate    decimal.Decimal
	txs     []eth.RawTransaction
	rateErr error
}

func (f *fakeAccountReader) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	return f.balance, nil
}

func (f *fakeAccountReader) Rate(ctx context.Context) (decimal.Decimal, error) {
	if f.rateErr != nil {
		return decimal.Zero, f.rateErr
	}
	return f.rate, nil
}

func (f *fakeAccountReader) Transactions(ctx context.Context, address string) ([]eth.RawTransaction, error) {
	return f.txs, nil
}

type publishedMessage struct {
	Topic   string
	Key     string
	Payload []byte
}

type fakeProducer struct {
	mu       sync.Mutex
	messages []publishedMessage
}

func (f *fakeProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, publishedMessage{Topic: topic, Key: key, Payload: payload})
	return nil
}

func (f *fakeProducer) published() []publishedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]publishedMessage, len(f.messages))
	copy(out, f.messages)
	return out
}
