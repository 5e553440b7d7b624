package event

import (
	"wallet-backend/pkg/crypto_util"
)

// TopicPaymentBroadcast 付款广播成功后发布的主题
const TopicPaymentBroadcast = "wallet_events_payment"

// PaymentBroadcastEvent 付款广播事件
// Topic: wallet_events_payment
type PaymentBroadcastEvent struct {
	UserID      uint64 `json:"user_id"`
	Chain       string `json:"chain"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Amount      string `json:"amount"` // Decimal string
	TxID        string `json:"tx_id"`
	Fee         string `json:"fee,omitempty"`
}

// DedupKey 事件去重键，兼做分区键
// 同一笔链上交易无论重发多少次都会落到同一个 key
func (e *PaymentBroadcastEvent) DedupKey() string {
	return crypto_util.CalculateBlake3([]byte(e.Chain + ":" + e.TxID))
}
