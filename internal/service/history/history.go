package history

import (
	"fmt"
	"strconv"
	"time"

	"wallet-backend/internal/chain/btc"
	"wallet-backend/internal/chain/eth"

	"github.com/shopspring/decimal"
)

// Entry 一条对外展示的历史记录
// 法币金额按当前汇率换算，历史汇率不可得；Fee 只有账户链能精确给出
type Entry struct {
	TxID         string           `json:"tx_id"`
	From         string           `json:"from"`
	To           string           `json:"to"`
	Direction    string           `json:"direction"` // in / out
	AmountNative decimal.Decimal  `json:"amount_native"`
	AmountFiat   decimal.Decimal  `json:"amount_fiat"`
	FeeNative    *decimal.Decimal `json:"fee_native,omitempty"`
	FeeFiat      *decimal.Decimal `json:"fee_fiat,omitempty"`
	Time         time.Time        `json:"time"`
	Age          string           `json:"age"` // "3 minutes ago"
}

// FromAccountTx 把账户链的原始交易换算成展示条目
// unitScale: 最小单位到原生单位的倍率 (wei→ether 是 1e18)
func FromAccountTx(tx eth.RawTransaction, owner string, rate, unitScale decimal.Decimal, now time.Time) (Entry, error) {
	value, err := decimal.NewFromString(tx.Value)
	if err != nil {
		return Entry{}, fmt.Errorf("非法的交易金额 %q: %w", tx.Value, err)
	}
	native := value.Div(unitScale)

	entry := Entry{
		TxID:         tx.Hash,
		From:         tx.From,
		To:           tx.To,
		Direction:    direction(tx.From, owner),
		AmountNative: native,
		AmountFiat:   native.Mul(rate),
	}

	if ts, err := strconv.ParseInt(tx.TimeStamp, 10, 64); err == nil {
		entry.Time = time.Unix(ts, 0).UTC()
		entry.Age = Relative(now, entry.Time)
	}

	// gasUsed × gasPrice 是实际消耗；任一字段缺失就不展示手续费
	gasUsed, err1 := decimal.NewFromString(tx.GasUsed)
	gasPrice, err2 := decimal.NewFromString(tx.GasPrice)
	if err1 == nil && err2 == nil {
		feeNative := gasUsed.Mul(gasPrice).Div(unitScale)
		feeFiat := feeNative.Mul(rate)
		entry.FeeNative = &feeNative
		entry.FeeFiat = &feeFiat
	}

	return entry, nil
}

// FromUTXOTx 把 UTXO 链的原始交易换算成展示条目
// 方向按 owner 是否出现在输入侧判定；金额是流出/流入 owner 的净额
func FromUTXOTx(tx btc.RawTransaction, owner string, rate, unitScale decimal.Decimal, now time.Time) Entry {
	outgoing := false
	from := ""
	for _, in := range tx.Inputs {
		if from == "" {
			from = in.PrevOut.Addr
		}
		if in.PrevOut.Addr == owner {
			outgoing = true
		}
	}

	var amount int64
	to := ""
	for _, out := range tx.Out {
		if outgoing {
			// 流出金额 = 不回到自己的输出之和 (排除找零)
			if out.Addr != owner {
				amount += out.Value
				if to == "" {
					to = out.Addr
				}
			}
		} else if out.Addr == owner {
			amount += out.Value
			to = owner
		}
	}

	native := decimal.NewFromInt(amount).Div(unitScale)
	entry := Entry{
		TxID:         tx.Hash,
		From:         from,
		To:           to,
		AmountNative: native,
		AmountFiat:   native.Mul(rate),
	}
	if outgoing {
		entry.Direction = "out"
	} else {
		entry.Direction = "in"
	}
	if tx.Time > 0 {
		entry.Time = time.Unix(tx.Time, 0).UTC()
		entry.Age = Relative(now, entry.Time)
	}
	return entry
}

func direction(from, owner string) string {
	if from == owner {
		return "out"
	}
	return "in"
}

// Relative 人类可读的相对时间
func Relative(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	case d < 365*24*time.Hour:
		return plural(int(d.Hours()/(24*30)), "month")
	default:
		return plural(int(d.Hours()/(24*365)), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
