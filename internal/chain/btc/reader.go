package btc

import (
	"context"
	"fmt"
	"net/http"

	"wallet-backend/internal/gateway"

	"github.com/shopspring/decimal"
)

// UnspentOutput 读 API 返回的一个可花费输出快照，取回后不可变
type UnspentOutput struct {
	TxID        string
	OutputIndex uint32
	Address     string
	ScriptHex   string
	Value       int64 // satoshis
}

// InputSet 一次付款尝试的输入集合
// TotalAvailable 是上游在取数时刻返回的全部未花费输出之和，精确值
type InputSet struct {
	Address        string
	Inputs         []UnspentOutput
	TotalAvailable int64
	InputCount     int
}

// RawTransaction 链上原始交易记录 (读 API 的形状)，历史展示用
type RawTransaction struct {
	Hash   string     `json:"hash"`
	Time   int64      `json:"time"`
	Inputs []TxInput  `json:"inputs"`
	Out    []TxOutput `json:"out"`
}

type TxInput struct {
	PrevOut struct {
		Addr string `json:"addr"`
	} `json:"prev_out"`
}

type TxOutput struct {
	Addr  string `json:"addr"`
	Value int64  `json:"value"` // satoshis
}

// Reader 封装 UTXO 链的读 API
type Reader struct {
	api *gateway.Client
}

func NewReader(api *gateway.Client) *Reader {
	return &Reader{api: api}
}

type unspentResponse struct {
	Address string `json:"address"`
	Txs     []struct {
		TxID      string `json:"txid"`
		OutputNo  uint32 `json:"output_no"`
		ScriptHex string `json:"script_hex"`
		Value     string `json:"value"` // BTC, decimal string
	} `json:"txs"`
}

var satoshisPerBTC = decimal.NewFromInt(1e8)

// SelectInputs 取某地址的全部未花费输出作为输入集
// 不做币选优化，整集作为输入；TotalAvailable 为逐项求和
func (r *Reader) SelectInputs(ctx context.Context, address string) (*InputSet, error) {
	var resp unspentResponse
	if err := r.api.Call(ctx, http.MethodGet, "/get_tx_unspent/"+address, nil, &resp); err != nil {
		return nil, err
	}

	set := &InputSet{Address: address}
	if set.Address == "" {
		set.Address = resp.Address
	}
	for _, item := range resp.Txs {
		value, err := decimal.NewFromString(item.Value)
		if err != nil {
			return nil, fmt.Errorf("上游返回了非法的 UTXO 金额 %q: %w", item.Value, err)
		}
		sats := value.Mul(satoshisPerBTC).IntPart()

		set.Inputs = append(set.Inputs, UnspentOutput{
			TxID:        item.TxID,
			OutputIndex: item.OutputNo,
			Address:     address,
			ScriptHex:   item.ScriptHex,
			Value:       sats,
		})
		set.TotalAvailable += sats
		set.InputCount++
	}
	return set, nil
}

type balanceResponse struct {
	ConfirmedBalance string `json:"confirmed_balance"` // BTC, decimal string
}

// Balance 已确认余额，单位 BTC
func (r *Reader) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	var resp balanceResponse
	if err := r.api.Call(ctx, http.MethodGet, "/get_address_balance/"+address, nil, &resp); err != nil {
		return decimal.Zero, err
	}
	balance, err := decimal.NewFromString(resp.ConfirmedBalance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("上游返回了非法的余额 %q: %w", resp.ConfirmedBalance, err)
	}
	return balance, nil
}

type priceResponse struct {
	Rate string `json:"rate"` // USD per BTC
}

// Rate 当前 BTC/USD 汇率
func (r *Reader) Rate(ctx context.Context) (decimal.Decimal, error) {
	var resp priceResponse
	if err := r.api.Call(ctx, http.MethodGet, "/get_price", nil, &resp); err != nil {
		return decimal.Zero, err
	}
	rate, err := decimal.NewFromString(resp.Rate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("上游返回了非法的汇率 %q: %w", resp.Rate, err)
	}
	return rate, nil
}

type rawTxsResponse struct {
	Txs []RawTransaction `json:"txs"`
}

// Transactions 某地址的原始交易记录
func (r *Reader) Transactions(ctx context.Context, address string) ([]RawTransaction, error) {
	var resp rawTxsResponse
	if err := r.api.Call(ctx, http.MethodGet, "/address_txs/"+address, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Txs, nil
}
