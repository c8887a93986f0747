package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/marketplace-backend/internal/dto"
	"github.com/ignatzorin/marketplace-backend/internal/http/handlers/common"
	"github.com/ignatzorin/marketplace-backend/internal/service"
)

// WalletHandler обслуживает кошельки.
type WalletHandler struct {
	wallets *service.WalletService
}

// NewWalletHandler создаёт новый хэндлер.
func NewWalletHandler(wallets *service.WalletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// GetOwn GET /wallet (фрилансер)
func (h *WalletHandler) GetOwn(c *gin.Context) {
	freelancerID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	wallet, err := h.wallets.GetBalance(c.Request.Context(), freelancerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

// GetPlatform GET /admin/wallet/platform (админ)
func (h *WalletHandler) GetPlatform(c *gin.Context) {
	wallet, err := h.wallets.GetPlatformBalance(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

// Credit POST /wallet/credit (фрилансер)
func (h *WalletHandler) Credit(c *gin.Context) {
	freelancerID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.WalletAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "amount должен быть положительным")
		return
	}

	wallet, err := h.wallets.Credit(c.Request.Context(), freelancerID, req.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

// Debit POST /wallet/debit (фрилансер)
func (h *WalletHandler) Debit(c *gin.Context) {
	freelancerID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.WalletAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "amount должен быть положительным")
		return
	}

	wallet, err := h.wallets.Debit(c.Request.Context(), freelancerID, req.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

// SetBalance PUT /admin/wallets/:id/balance (админ)
func (h *WalletHandler) SetBalance(c *gin.Context) {
	walletID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SetBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Balance == nil {
		common.RespondBadRequest(c, "balance обязателен")
		return
	}

	wallet, err := h.wallets.AdminSetBalance(c.Request.Context(), walletID, *req.Balance)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, wallet)
}

// ListAll GET /admin/wallets (админ)
func (h *WalletHandler) ListAll(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	wallets, err := h.wallets.ListAll(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallets": wallets})
}
