package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/marketplace-backend/internal/dto"
	"github.com/ignatzorin/marketplace-backend/internal/http/handlers/common"
	"github.com/ignatzorin/marketplace-backend/internal/service"
)

// OrderHandler обслуживает жизненный цикл заказа.
type OrderHandler struct {
	orders *service.OrderService
}

// NewOrderHandler создаёт новый хэндлер.
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create POST /orders (пользователь)
func (h *OrderHandler) Create(c *gin.Context) {
	userID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "service_id обязателен")
		return
	}

	serviceID, err := common.ParseUUIDString(req.ServiceID)
	if err != nil {
		common.RespondBadRequest(c, common.ErrInvalidUUID.Error())
		return
	}
	addonIDs, err := req.ParseAddOnIDs()
	if err != nil {
		common.RespondBadRequest(c, common.ErrInvalidUUID.Error())
		return
	}

	order, err := h.orders.Create(c.Request.Context(), userID, serviceID, addonIDs)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// UpdateAddOns PATCH /orders/:id/addons (пользователь)
func (h *OrderHandler) UpdateAddOns(c *gin.Context) {
	userID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateOrderAddOnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	addonIDs, err := req.ParseAddOnIDs()
	if err != nil {
		common.RespondBadRequest(c, common.ErrInvalidUUID.Error())
		return
	}

	order, err := h.orders.UpdateAddOns(c.Request.Context(), userID, orderID, addonIDs)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// Start POST /orders/:id/start (фрилансер)
func (h *OrderHandler) Start(c *gin.Context) {
	freelancerID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.Start(c.Request.Context(), freelancerID, orderID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// End POST /orders/:id/end (фрилансер)
func (h *OrderHandler) End(c *gin.Context) {
	freelancerID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.EndOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			common.RespondBadRequest(c, err.Error())
			return
		}
	}

	order, payout, err := h.orders.End(c.Request.Context(), freelancerID, orderID, req.PaymentMethod)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.EndOrderResponse{Order: order, Payout: payout})
}

// Delete DELETE /orders/:id (пользователь)
func (h *OrderHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.orders.Delete(c.Request.Context(), userID, orderID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Rate POST /orders/:id/rate (пользователь)
func (h *OrderHandler) Rate(c *gin.Context) {
	userID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.RateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "value обязателен")
		return
	}

	rating, err := h.orders.Rate(c.Request.Context(), userID, orderID, req.Value, req.Comment)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, rating)
}

// Get GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	principalID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentRole(c)

	orderID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	order, err := h.orders.Get(c.Request.Context(), principalID, role, orderID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListOwn GET /orders (пользователь)
func (h *OrderHandler) ListOwn(c *gin.Context) {
	userID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	orders, err := h.orders.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ListAssigned GET /freelancers/me/orders (фрилансер)
func (h *OrderHandler) ListAssigned(c *gin.Context) {
	freelancerID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	orders, err := h.orders.ListByFreelancer(c.Request.Context(), freelancerID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ListServiceRatings GET /services/:id/ratings
func (h *OrderHandler) ListServiceRatings(c *gin.Context) {
	serviceID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	ratings, err := h.orders.ListServiceRatings(c.Request.Context(), serviceID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}
