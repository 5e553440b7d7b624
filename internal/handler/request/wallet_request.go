package request

import (
	"wallet-backend/internal/model"
	"wallet-backend/pkg/errno"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

type CreateWalletRequest struct {
	UserID uint64 `json:"user_id" binding:"required"`
	Chain  string `json:"chain" binding:"required"`
}

type SendRequest struct {
	UserID    uint64          `json:"user_id" binding:"required"`
	Chain     string          `json:"chain" binding:"required"`
	ToAddress string          `json:"to_address" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// Validate 校验金额与目标地址格式
// 地址校验只挡格式错误；链上是否存在由广播结果说了算
func (r *SendRequest) Validate(network *chaincfg.Params) error {
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return errno.ErrBind.WithMessage("amount must be positive")
	}

	switch r.Chain {
	case model.ChainBTC:
		if _, err := btcutil.DecodeAddress(r.ToAddress, network); err != nil {
			return errno.ErrBadAddress.WithMessage(err.Error())
		}
	case model.ChainETH:
		if !common.IsHexAddress(r.ToAddress) {
			return errno.ErrBadAddress
		}
	default:
		return errno.ErrBadChain
	}
	return nil
}
