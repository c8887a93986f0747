package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/marketplace-backend/internal/dto"
	"github.com/ignatzorin/marketplace-backend/internal/http/handlers/common"
	"github.com/ignatzorin/marketplace-backend/internal/service"
)

// CartHandler обслуживает корзину, оплату и историю покупок.
type CartHandler struct {
	cart *service.CartService
}

// NewCartHandler создаёт новый хэндлер.
func NewCartHandler(cart *service.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

// Get GET /cart (пользователь)
func (h *CartHandler) Get(c *gin.Context) {
	userID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	cart, err := h.cart.GetCurrent(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, cart)
}

// GetHistory GET /cart/history (пользователь)
func (h *CartHandler) GetHistory(c *gin.Context) {
	userID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	history, err := h.cart.GetHistory(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// Clear DELETE /cart (пользователь)
func (h *CartHandler) Clear(c *gin.Context) {
	userID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	if err := h.cart.Clear(c.Request.Context(), userID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Checkout POST /cart/checkout (пользователь)
// Неуспешный платёж фиксируется в журнале и отдаёт 402 с записями попытки.
func (h *CartHandler) Checkout(c *gin.Context) {
	userID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
	}

	result, err := h.cart.Checkout(c.Request.Context(), userID, req.PaymentMethod, req.PaymentStatus)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutResponse{
		HistoryEntry: result.HistoryEntry,
		Transactions: result.Transactions,
	})
}

// RetryCheckout POST /cart/checkout/retry (пользователь)
func (h *CartHandler) RetryCheckout(c *gin.Context) {
	userID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.RetryCheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
	}

	result, err := h.cart.RetryFailedCheckout(c.Request.Context(), userID, req.PaymentMethod)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutResponse{
		HistoryEntry: result.HistoryEntry,
		Transactions: result.Transactions,
	})
}

// GetPlatformFee GET /cart/fee
func (h *CartHandler) GetPlatformFee(c *gin.Context) {
	fee, err := h.cart.GetPlatformFee(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"fee": fee})
}

// SetPlatformFee PUT /admin/cart/fee (админ)
func (h *CartHandler) SetPlatformFee(c *gin.Context) {
	var req dto.SetPlatformFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Fee == nil {
		common.RespondBadRequest(c, "fee обязателен")
		return
	}

	if err := h.cart.SetPlatformFee(c.Request.Context(), *req.Fee); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "комиссия обновлена", gin.H{"fee": *req.Fee})
}
