package service

import (
	"context"
	"testing"

	"wallet-backend/internal/chain/btc"
	"wallet-backend/internal/chain/eth"
	"wallet-backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryETH(t *testing.T) {
	ethReader := &fakeAccountReader{
		rate: decimal.NewFromInt(2000),
		txs: []eth.RawTransaction{
			{Hash: "0x1", From: "0xethaddr", To: "0xdest", Value: "1000000000000000000", TimeStamp: "1717236000"},
			{Hash: "0x2", From: "0xsender", To: "0xethaddr", Value: "500000000000000000", TimeStamp: "1717236000"},
			{Hash: "0xbad", From: "0xsender", To: "0xethaddr", Value: "not-a-number"}, // 解析失败的跳过
		},
	}
	svc := NewHistoryService(balanceTestStore(), &fakeUTXOReader{}, ethReader)

	entries, err := svc.History(context.Background(), 7, model.ChainETH)
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "out", entries[0].Direction)
	assert.Equal(t, "1", entries[0].AmountNative.String())
	assert.Equal(t, "2000", entries[0].AmountFiat.String())
	assert.Equal(t, "in", entries[1].Direction)
	assert.Equal(t, "0.5", entries[1].AmountNative.String())
}

func TestHistoryBTC(t *testing.T) {
	tx := btc.RawTransaction{Hash: "abcd", Time: 1717236000}
	tx.Inputs = []btc.TxInput{{}}
	tx.Inputs[0].PrevOut.Addr = "1btcaddr"
	tx.Out = []btc.TxOutput{{Addr: "1dest", Value: 60000}, {Addr: "1btcaddr", Value: 37740}}

	btcReader := &fakeUTXOReader{
		rate: decimal.NewFromInt(50000),
		txs:  []btc.RawTransaction{tx},
	}
	svc := NewHistoryService(balanceTestStore(), btcReader, &fakeAccountReader{})

	entries, err := svc.History(context.Background(), 7, model.ChainBTC)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "out", entries[0].Direction)
	assert.Equal(t, "0.0006", entries[0].AmountNative.String())
	assert.Equal(t, "abcd", entries[0].TxID)
}
