package handler

import (
	"strconv"

	"wallet-backend/internal/handler/request"
	"wallet-backend/internal/handler/response"
	"wallet-backend/internal/service"
	"wallet-backend/pkg/errno"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/gin-gonic/gin"
)

// WalletHandler HTTP 层，只做参数绑定/校验和错误翻译，业务都在 service
type WalletHandler struct {
	wallets  *service.WalletService
	balances *service.BalanceService
	payments *service.PaymentService
	history  *service.HistoryService
	network  *chaincfg.Params
}

func NewWalletHandler(
	wallets *service.WalletService,
	balances *service.BalanceService,
	payments *service.PaymentService,
	history *service.HistoryService,
	network *chaincfg.Params,
) *WalletHandler {
	return &WalletHandler{
		wallets:  wallets,
		balances: balances,
		payments: payments,
		history:  history,
		network:  network,
	}
}

// Create 创建托管钱包
// @Summary 创建托管钱包
// @Description 为用户在指定链上创建一个托管钱包，每个 (user, chain) 只允许一个
// @Tags Wallet
// @Accept json
// @Produce json
// @Param request body request.CreateWalletRequest true "Create Wallet Request"
// @Success 200 {object} response.Response
// @Router /api/v1/wallet [post]
func (h *WalletHandler) Create(c *gin.Context) {
	var req request.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	w, err := h.wallets.CreateWallet(c.Request.Context(), req.UserID, req.Chain)
	if err != nil {
		response.Error(c, err)
		return
	}

	// 密钥材料靠 json:"-" 不出库，这里只回地址
	response.Success(c, gin.H{
		"address": w.Address,
		"chain":   w.Chain,
	})
}

// Balance 查余额
// @Summary 查钱包余额
// @Description 返回原生单位余额与按当前汇率换算的法币金额
// @Tags Wallet
// @Produce json
// @Param user_id query int true "User ID"
// @Param chain query string true "Chain (BTC/ETH)"
// @Success 200 {object} response.Response
// @Router /api/v1/wallet/balance [get]
func (h *WalletHandler) Balance(c *gin.Context) {
	userID, chain, err := userAndChain(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.balances.Balance(c.Request.Context(), userID, chain)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, b)
}

// Send 发起付款
// @Summary 发起一笔出账付款
// @Description 从用户的托管钱包向目标地址付款；同一钱包同时只允许一笔在途
// @Tags Wallet
// @Accept json
// @Produce json
// @Param request body request.SendRequest true "Send Request"
// @Success 200 {object} response.Response
// @Router /api/v1/wallet/send [post]
func (h *WalletHandler) Send(c *gin.Context) {
	var req request.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}
	if err := req.Validate(h.network); err != nil {
		response.Error(c, err)
		return
	}

	receipt, err := h.payments.Send(c.Request.Context(), req.UserID, req.Chain, req.ToAddress, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, receipt)
}

// History 查交易历史
// @Summary 查钱包交易历史
// @Description 返回链上交易记录，金额同时给出原生单位与法币
// @Tags Wallet
// @Produce json
// @Param user_id query int true "User ID"
// @Param chain query string true "Chain (BTC/ETH)"
// @Success 200 {object} response.Response
// @Router /api/v1/wallet/history [get]
func (h *WalletHandler) History(c *gin.Context) {
	userID, chain, err := userAndChain(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	entries, err := h.history.History(c.Request.Context(), userID, chain)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"entries": entries})
}

func userAndChain(c *gin.Context) (uint64, string, error) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil || userID == 0 {
		return 0, "", errno.ErrBind.WithMessage("user_id is required")
	}
	chain := c.Query("chain")
	if chain == "" {
		return 0, "", errno.ErrBind.WithMessage("chain is required")
	}
	return userID, chain, nil
}
