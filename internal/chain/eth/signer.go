package eth

import (
	"context"
	"net/http"

	"wallet-backend/internal/gateway"
	"wallet-backend/pkg/errno"

	"github.com/shopspring/decimal"
)

// Signer 封装远端托管签名网关
// 私钥由网关托管，本服务只持有按钱包生成的访问口令
type Signer struct {
	api *gateway.Client
}

func NewSigner(api *gateway.Client) *Signer {
	return &Signer{api: api}
}

type newAddressResponse struct {
	OK      bool   `json:"ok"`
	Address string `json:"ethereumaddress"`
}

// NewAddress 让网关生成一个由 password 保护的托管账户
func (s *Signer) NewAddress(ctx context.Context, password string) (string, error) {
	var resp newAddressResponse
	payload := map[string]string{"password": password}
	if err := s.api.Call(ctx, http.MethodPost, "/newAddress", payload, &resp); err != nil {
		return "", err
	}
	if !resp.OK || resp.Address == "" {
		return "", errno.ErrUpstreamUnavailable.WithMessage("signer gateway refused to create address")
	}
	return resp.Address, nil
}

type sendResponse struct {
	OK          bool   `json:"ok"`
	TxID        string `json:"txid"`
	Description string `json:"description"`
}

// Send 由网关签名并广播一笔转账，amount 单位 ether
// 网关拒绝时原样透传其给出的原因
func (s *Signer) Send(ctx context.Context, from, dest string, amount decimal.Decimal, password string) (string, error) {
	var resp sendResponse
	payload := map[string]string{
		"from":     from,
		"to":       dest,
		"amount":   amount.String(),
		"password": password,
	}
	if err := s.api.Call(ctx, http.MethodPost, "/sendEthereum", payload, &resp); err != nil {
		return "", err
	}
	if !resp.OK {
		msg := resp.Description
		if msg == "" {
			msg = errno.ErrBroadcastRejected.Message
		}
		return "", errno.ErrBroadcastRejected.WithMessage(msg)
	}
	return resp.TxID, nil
}
