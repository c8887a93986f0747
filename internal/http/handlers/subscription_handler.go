package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/marketplace-backend/internal/dto"
	"github.com/ignatzorin/marketplace-backend/internal/http/handlers/common"
	"github.com/ignatzorin/marketplace-backend/internal/service"
)

// SubscriptionHandler обслуживает тарифные планы и подписки инфлюенсеров.
type SubscriptionHandler struct {
	subscriptions *service.SubscriptionService
}

// NewSubscriptionHandler создаёт новый хэндлер.
func NewSubscriptionHandler(subscriptions *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// CreatePlan POST /admin/plans (админ)
func (h *SubscriptionHandler) CreatePlan(c *gin.Context) {
	var req dto.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	plan, err := h.subscriptions.CreatePlan(c.Request.Context(), req.Name, req.Price, req.DurationDays)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// ListPlans GET /plans
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	plans, err := h.subscriptions.ListPlans(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// DeletePlan DELETE /admin/plans/:id (админ)
func (h *SubscriptionHandler) DeletePlan(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.subscriptions.DeletePlan(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Subscribe POST /subscriptions (инфлюенсер)
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	influencerID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "plan_id обязателен")
		return
	}

	planID, err := common.ParseUUIDString(req.PlanID)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	result, err := h.subscriptions.Subscribe(c.Request.Context(), influencerID, planID, req.PaymentMethod)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.SubscribeResponse{
		Transaction: result.Transaction,
		ExpiresAt:   result.ExpiresAt,
	})
}
