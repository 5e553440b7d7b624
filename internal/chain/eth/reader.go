package eth

import (
	"context"
	"fmt"
	"net/http"

	"wallet-backend/internal/gateway"

	"github.com/shopspring/decimal"
)

// RawTransaction 账户链浏览器 API 返回的一条交易记录
// Value 单位 wei；GasUsed/GasPrice 用于推算实际手续费
type RawTransaction struct {
	Hash      string `json:"hash"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	GasUsed   string `json:"gasUsed"`
	GasPrice  string `json:"gasPrice"`
	TimeStamp string `json:"timeStamp"`
}

// Reader 封装账户链的读 API (etherscan 形状)
type Reader struct {
	api *gateway.Client
}

func NewReader(api *gateway.Client) *Reader {
	return &Reader{api: api}
}

var weiPerEther = decimal.NewFromInt(1e18)

type balanceResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"` // wei
}

// Balance 账户余额，单位 ether
func (r *Reader) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	var resp balanceResponse
	endpoint := "/api?module=account&action=balance&tag=latest&address=" + address
	if err := r.api.Call(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return decimal.Zero, err
	}
	wei, err := decimal.NewFromString(resp.Result)
	if err != nil {
		return decimal.Zero, fmt.Errorf("上游返回了非法的余额 %q: %w", resp.Result, err)
	}
	return wei.Div(weiPerEther), nil
}

type priceResponse struct {
	Result struct {
		EthUSD string `json:"ethusd"`
	} `json:"result"`
}

// Rate 当前 ETH/USD 汇率
func (r *Reader) Rate(ctx context.Context) (decimal.Decimal, error) {
	var resp priceResponse
	if err := r.api.Call(ctx, http.MethodGet, "/api?module=stats&action=ethprice", nil, &resp); err != nil {
		return decimal.Zero, err
	}
	rate, err := decimal.NewFromString(resp.Result.EthUSD)
	if err != nil {
		return decimal.Zero, fmt.Errorf("上游返回了非法的汇率 %q: %w", resp.Result.EthUSD, err)
	}
	return rate, nil
}

type txListResponse struct {
	Result []RawTransaction `json:"result"`
}

// Transactions 某地址的交易记录，按时间倒序
func (r *Reader) Transactions(ctx context.Context, address string) ([]RawTransaction, error) {
	var resp txListResponse
	endpoint := "/api?module=account&action=txlist&sort=desc&address=" + address
	if err := r.api.Call(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}
