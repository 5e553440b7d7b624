package service

import (
	"context"
	"encoding/json"
	"time"

	"wallet-backend/internal/chain/btc"
	"wallet-backend/internal/event"
	"wallet-backend/internal/model"
	"wallet-backend/internal/service/mq"
	"wallet-backend/pkg/errno"
	"wallet-backend/pkg/lock"
	"wallet-backend/pkg/logger"
	"wallet-backend/pkg/monitor"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// lockTTL 覆盖 select→sign→broadcast 全程的锁超时
// 网关客户端单次请求 30s 超时，留出多次轮换的余量
const lockTTL = 2 * time.Minute

var satoshisPerBTC = decimal.NewFromInt(1e8)

// PaymentService 出账付款
// 同一钱包地址同一时刻只允许一笔付款在途，锁保护从选币到广播的整个窗口，
// 否则两笔并发付款会选中同一批 UTXO 造成双花
type PaymentService struct {
	store    WalletStore
	locks    lock.DistributedLock
	btc      UTXOReader
	engine   UTXOEngine
	fee      *btc.FeeEstimator
	signer   AccountSigner
	producer mq.Producer
}

func NewPaymentService(
	store WalletStore,
	locks lock.DistributedLock,
	utxoReader UTXOReader,
	engine UTXOEngine,
	fee *btc.FeeEstimator,
	signer AccountSigner,
	producer mq.Producer,
) *PaymentService {
	return &PaymentService{
		store:    store,
		locks:    locks,
		btc:      utxoReader,
		engine:   engine,
		fee:      fee,
		signer:   signer,
		producer: producer,
	}
}

// Receipt 付款回执
type Receipt struct {
	TxID   string          `json:"tx_id"`
	Chain  string          `json:"chain"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Fee    decimal.Decimal `json:"fee"`
}

// Send 从用户钱包向 dest 付款 amount (原生单位)
// 锁被占用时立即返回 ErrWalletBusy，不排队
func (s *PaymentService) Send(ctx context.Context, userID uint64, chain, dest string, amount decimal.Decimal) (*Receipt, error) {
	w, err := s.store.WalletByUser(ctx, userID, chain)
	if err != nil {
		return nil, err
	}

	acquired, err := s.locks.Acquire(ctx, w.Address, lockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		monitor.Business.WalletLockContention.Inc()
		return nil, errno.ErrWalletBusy
	}
	defer s.locks.Release(context.WithoutCancel(ctx), w.Address)

	start := time.Now()
	var receipt *Receipt
	switch chain {
	case model.ChainBTC:
		receipt, err = s.sendBTC(ctx, w, dest, amount)
	case model.ChainETH:
		receipt, err = s.sendETH(ctx, w, dest, amount)
	default:
		return nil, errno.ErrBadChain
	}
	if err != nil {
		monitor.Business.PaymentsFailedTotal.WithLabelValues(chain, failureReason(err)).Inc()
		return nil, err
	}
	monitor.Business.BroadcastDuration.WithLabelValues(chain).Observe(time.Since(start).Seconds())
	monitor.Business.PaymentsBroadcastTotal.WithLabelValues(chain).Inc()

	if err := s.store.SaveTransaction(ctx, receipt.From, receipt.To, amount, chain, receipt.TxID); err != nil {
		// 链上已广播成功，落库失败只能记日志，不能让用户重发
		logger.Error("交易记录落库失败", zap.String("tx_id", receipt.TxID), zap.Error(err))
	}

	s.publishBroadcastEvent(w.UserID, receipt)
	return receipt, nil
}

func (s *PaymentService) sendBTC(ctx context.Context, w *model.Wallet, dest string, amount decimal.Decimal) (*Receipt, error) {
	set, err := s.btc.SelectInputs(ctx, w.Address)
	if err != nil {
		return nil, err
	}

	sats := amount.Mul(satoshisPerBTC).IntPart()
	fee := s.fee.Estimate(set.InputCount, btc.PaymentOutputs)

	// 签名之前先验资，不足时连密钥都不碰
	if set.TotalAvailable < sats+fee {
		return nil, errno.ErrInsufficientFunds
	}

	encryptedKey, passphrase, err := s.store.EncryptedKeyMaterial(ctx, w.Address)
	if err != nil {
		return nil, err
	}

	txID, err := s.engine.Send(ctx, w.Address, encryptedKey, passphrase, dest, sats, fee, set)
	if err != nil {
		return nil, err
	}

	return &Receipt{
		TxID:   txID,
		Chain:  model.ChainBTC,
		From:   w.Address,
		To:     dest,
		Amount: amount,
		Fee:    decimal.NewFromInt(fee).Div(satoshisPerBTC),
	}, nil
}

func (s *PaymentService) sendETH(ctx context.Context, w *model.Wallet, dest string, amount decimal.Decimal) (*Receipt, error) {
	// 手续费由网关定价并从余额扣除，这里拿不到精确值
	txID, err := s.signer.Send(ctx, w.Address, dest, amount, w.GatewayPassword)
	if err != nil {
		return nil, err
	}

	return &Receipt{
		TxID:   txID,
		Chain:  model.ChainETH,
		From:   w.Address,
		To:     dest,
		Amount: amount,
	}, nil
}

// publishBroadcastEvent 广播事件异步发 MQ，失败只记日志
func (s *PaymentService) publishBroadcastEvent(userID uint64, r *Receipt) {
	if s.producer == nil {
		return
	}
	evt := event.PaymentBroadcastEvent{
		UserID:      userID,
		Chain:       r.Chain,
		FromAddress: r.From,
		ToAddress:   r.To,
		Amount:      r.Amount.String(),
		TxID:        r.TxID,
		Fee:         r.Fee.String(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		payload, _ := json.Marshal(evt)
		if err := s.producer.Publish(ctx, event.TopicPaymentBroadcast, evt.DedupKey(), payload); err != nil {
			logger.Error("付款事件发布失败", zap.String("tx_id", evt.TxID), zap.Error(err))
		}
	}()
}

// failureReason 把错误归到有限的几个指标标签，避免标签基数爆炸
func failureReason(err error) string {
	code, _ := errno.Decode(err)
	switch code {
	case errno.ErrInsufficientFunds.Code:
		return "insufficient_funds"
	case errno.ErrKeyDecryption.Code:
		return "key_decryption"
	case errno.ErrCredentialsExhausted.Code:
		return "credentials_exhausted"
	case errno.ErrUpstreamUnavailable.Code:
		return "upstream_unavailable"
	case errno.ErrBroadcastRejected.Code:
		return "broadcast_rejected"
	default:
		return "other"
	}
}
