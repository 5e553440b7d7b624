package service

import (
	"context"
	"sync"

	"wallet-backend/internal/model"
	"wallet-backend/pkg/errno"

	"github.com/shopspring/decimal"
)

// Balance 某钱包的余额快照
// Fiat = Native × Rate，取数时刻的汇率，不保证与展示时刻一致
type Balance struct {
	Address string          `json:"address"`
	Chain   string          `json:"chain"`
	Native  decimal.Decimal `json:"native"`
	Fiat    decimal.Decimal `json:"fiat"`
	Rate    decimal.Decimal `json:"rate"`
}

// BalanceService 余额与汇率的聚合查询
type BalanceService struct {
	store WalletStore
	btc   UTXOReader
	eth   AccountReader
}

func NewBalanceService(store WalletStore, btc UTXOReader, eth AccountReader) *BalanceService {
	return &BalanceService{store: store, btc: btc, eth: eth}
}

// Balance 查某用户在某链上的余额，原生单位与法币同时返回
// 余额和汇率并发取，两者都成功才返回
func (s *BalanceService) Balance(ctx context.Context, userID uint64, chain string) (*Balance, error) {
	w, err := s.store.WalletByUser(ctx, userID, chain)
	if err != nil {
		return nil, err
	}

	var balanceFn func(context.Context, string) (decimal.Decimal, error)
	var rateFn func(context.Context) (decimal.Decimal, error)
	switch chain {
	case model.ChainBTC:
		balanceFn, rateFn = s.btc.Balance, s.btc.Rate
	case model.ChainETH:
		balanceFn, rateFn = s.eth.Balance, s.eth.Rate
	default:
		return nil, errno.ErrBadChain
	}

	var (
		wg         sync.WaitGroup
		native     decimal.Decimal
		rate       decimal.Decimal
		balanceErr error
		rateErr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		native, balanceErr = balanceFn(ctx, w.Address)
	}()
	go func() {
		defer wg.Done()
		rate, rateErr = rateFn(ctx)
	}()
	wg.Wait()

	if balanceErr != nil {
		return nil, balanceErr
	}
	if rateErr != nil {
		return nil, rateErr
	}

	return &Balance{
		Address: w.Address,
		Chain:   chain,
		Native:  native,
		Fiat:    native.Mul(rate),
		Rate:    rate,
	}, nil
}
