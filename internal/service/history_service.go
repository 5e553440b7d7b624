package service

import (
	"context"
	"sync"
	"time"

	"wallet-backend/internal/chain/btc"
	"wallet-backend/internal/chain/eth"
	"wallet-backend/internal/model"
	"wallet-backend/internal/service/history"
	"wallet-backend/pkg/errno"
	"wallet-backend/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var weiPerEther = decimal.NewFromInt(1e18)

// HistoryService 交易历史聚合：链上原始记录 + 当前汇率 → 展示条目
type HistoryService struct {
	store WalletStore
	btc   UTXOReader
	eth   AccountReader
}

func NewHistoryService(store WalletStore, btc UTXOReader, eth AccountReader) *HistoryService {
	return &HistoryService{store: store, btc: btc, eth: eth}
}

// History 查某用户在某链上的交易历史
// 记录和汇率并发取；单条解析失败跳过并记日志，不拖垮整个列表
func (s *HistoryService) History(ctx context.Context, userID uint64, chain string) ([]history.Entry, error) {
	w, err := s.store.WalletByUser(ctx, userID, chain)
	if err != nil {
		return nil, err
	}

	switch chain {
	case model.ChainBTC:
		return s.utxoHistory(ctx, w.Address)
	case model.ChainETH:
		return s.accountHistory(ctx, w.Address)
	default:
		return nil, errno.ErrBadChain
	}
}

func (s *HistoryService) utxoHistory(ctx context.Context, address string) ([]history.Entry, error) {
	var (
		wg      sync.WaitGroup
		txs     []btc.RawTransaction
		rate    decimal.Decimal
		txsErr  error
		rateErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		txs, txsErr = s.btc.Transactions(ctx, address)
	}()
	go func() {
		defer wg.Done()
		rate, rateErr = s.btc.Rate(ctx)
	}()
	wg.Wait()

	if txsErr != nil {
		return nil, txsErr
	}
	if rateErr != nil {
		return nil, rateErr
	}

	now := time.Now()
	entries := make([]history.Entry, 0, len(txs))
	for _, tx := range txs {
		entries = append(entries, history.FromUTXOTx(tx, address, rate, satoshisPerBTC, now))
	}
	return entries, nil
}

func (s *HistoryService) accountHistory(ctx context.Context, address string) ([]history.Entry, error) {
	var (
		wg      sync.WaitGroup
		txs     []eth.RawTransaction
		rate    decimal.Decimal
		txsErr  error
		rateErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		txs, txsErr = s.eth.Transactions(ctx, address)
	}()
	go func() {
		defer wg.Done()
		rate, rateErr = s.eth.Rate(ctx)
	}()
	wg.Wait()

	if txsErr != nil {
		return nil, txsErr
	}
	if rateErr != nil {
		return nil, rateErr
	}

	now := time.Now()
	entries := make([]history.Entry, 0, len(txs))
	for _, tx := range txs {
		entry, err := history.FromAccountTx(tx, address, rate, weiPerEther, now)
		if err != nil {
			logger.Error("跳过无法解析的历史记录", zap.String("tx", tx.Hash), zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
