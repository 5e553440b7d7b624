package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wallet-backend/internal/chain/btc"
	"wallet-backend/internal/event"
	"wallet-backend/internal/model"
	"wallet-backend/pkg/errno"
	"wallet-backend/pkg/lock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func btcTestDeps() (*fakeStore, *fakeUTXOReader, *fakeEngine, *fakeProducer) {
	store := &fakeStore{wallets: []*model.Wallet{{
		ID:           1,
		UserID:       7,
		Chain:        model.ChainBTC,
		Address:      "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2",
		EncryptedKey: `{"crypto":{}}`,
		Passphrase:   "some mnemonic",
	}}}
	reader := &fakeUTXOReader{set: &btc.InputSet{
		Address:        "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2",
		Inputs:         []btc.UnspentOutput{{Value: 100000}},
		TotalAvailable: 100000,
		InputCount:     1,
	}}
	engine := &fakeEngine{txID: "broadcast-txid"}
	return store, reader, engine, &fakeProducer{}
}

func TestSendBTCHappyPath(t *testing.T) {
	store, reader, engine, producer := btcTestDeps()
	svc := NewPaymentService(store, lock.NewLocalLock(), reader, engine, btc.NewFeeEstimator(10), &fakeSigner{}, producer)

	// fee = 10 * (1*180 + 2*34 + 10 - 1) = 2570; 60000 + 2570 <= 100000
	receipt, err := svc.Send(context.Background(), 7, model.ChainBTC, "1dest", decimal.NewFromFloat(0.0006))
	require.NoError(t, err)

	assert.Equal(t, "broadcast-txid", receipt.TxID)
	assert.Equal(t, "0.0000257", receipt.Fee.String())
	assert.Equal(t, 1, engine.callCount())

	require.Len(t, store.saved, 1)
	assert.Equal(t, "broadcast-txid", store.saved[0].TxID)
	assert.Equal(t, model.ChainBTC, store.saved[0].Chain)

	// 事件异步发出
	assert.Eventually(t, func() bool {
		return len(producer.published()) == 1
	}, time.Second, 10*time.Millisecond)
	msg := producer.published()[0]
	assert.Equal(t, event.TopicPaymentBroadcast, msg.Topic)
	assert.NotEmpty(t, msg.Key)
}

func TestSendBTCInsufficientFundsBeforeKeyTouch(t *testing.T) {
	store, reader, engine, producer := btcTestDeps()
	reader.set.TotalAvailable = 50000
	svc := NewPaymentService(store, lock.NewLocalLock(), reader, engine, btc.NewFeeEstimator(10), &fakeSigner{}, producer)

	_, err := svc.Send(context.Background(), 7, model.ChainBTC, "1dest", decimal.NewFromFloat(0.0006))
	require.ErrorIs(t, err, errno.ErrInsufficientFunds)

	// 验资失败时既不取密钥也不签名
	assert.Equal(t, 0, store.keyGets)
	assert.Equal(t, 0, engine.callCount())
}

func TestSendRejectsWhenLockHeld(t *testing.T) {
	store, reader, engine, producer := btcTestDeps()
	locks := lock.NewLocalLock()
	svc := NewPaymentService(store, locks, reader, engine, btc.NewFeeEstimator(10), &fakeSigner{}, producer)

	acquired, err := locks.Acquire(context.Background(), "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	_, err = svc.Send(context.Background(), 7, model.ChainBTC, "1dest", decimal.NewFromFloat(0.0006))
	assert.ErrorIs(t, err, errno.ErrWalletBusy)
	assert.Equal(t, 0, engine.callCount())
}

// 两笔并发付款同一个钱包：恰好一笔广播，另一笔撞锁
func TestConcurrentSendsSingleBroadcast(t *testing.T) {
	store, reader, engine, producer := btcTestDeps()
	engine.delay = 50 * time.Millisecond
	svc := NewPaymentService(store, lock.NewLocalLock(), reader, engine, btc.NewFeeEstimator(10), &fakeSigner{}, producer)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Send(context.Background(), 7, model.ChainBTC, "1dest", decimal.NewFromFloat(0.0006))
		}(i)
	}
	wg.Wait()

	var succeeded, busy int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, errno.ErrWalletBusy):
			busy++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, busy)
	assert.Equal(t, 1, engine.callCount())
}

func TestSendReleasesLockAfterFailure(t *testing.T) {
	store, reader, engine, producer := btcTestDeps()
	engine.err = errno.ErrBroadcastRejected
	locks := lock.NewLocalLock()
	svc := NewPaymentService(store, locks, reader, engine, btc.NewFeeEstimator(10), &fakeSigner{}, producer)

	_, err := svc.Send(context.Background(), 7, model.ChainBTC, "1dest", decimal.NewFromFloat(0.0006))
	require.ErrorIs(t, err, errno.ErrBroadcastRejected)

	// 失败后锁必须释放，下一笔可以重试
	acquired, err := locks.Acquire(context.Background(), "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)
}

func TestSendETHDelegatesToGateway(t *testing.T) {
	store := &fakeStore{wallets: []*model.Wallet{{
		ID:              2,
		UserID:          7,
		Chain:           model.ChainETH,
		Address:         "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
		GatewayPassword: "gw-pass",
	}}}
	signer := &fakeSigner{txID: "0xcafe"}
	svc := NewPaymentService(store, lock.NewLocalLock(), &fakeUTXOReader{}, &fakeEngine{}, btc.NewFeeEstimator(10), signer, &fakeProducer{})

	receipt, err := svc.Send(context.Background(), 7, model.ChainETH, "0xdest", decimal.NewFromFloat(0.5))
	require.NoError(t, err)

	assert.Equal(t, "0xcafe", receipt.TxID)
	assert.Equal(t, "gw-pass", signer.lastPassword)
	require.Len(t, store.saved, 1)
	assert.Equal(t, model.ChainETH, store.saved[0].Chain)
}

func TestSendUnknownWallet(t *testing.T) {
	svc := NewPaymentService(&fakeStore{}, lock.NewLocalLock(), &fakeUTXOReader{}, &fakeEngine{}, btc.NewFeeEstimator(10), &fakeSigner{}, &fakeProducer{})

	_, err := svc.Send(context.Background(), 99, model.ChainBTC, "1dest", decimal.NewFromFloat(0.1))
	assert.ErrorIs(t, err, errno.ErrWalletNotFound)
}
