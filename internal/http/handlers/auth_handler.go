package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/marketplace-backend/internal/dto"
	"github.com/ignatzorin/marketplace-backend/internal/http/handlers/common"
	"github.com/ignatzorin/marketplace-backend/internal/models"
	"github.com/ignatzorin/marketplace-backend/internal/service"
)

// AuthHandler обслуживает регистрацию, вход и сессии.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler создаёт новый хэндлер.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "email и пароль обязательны")
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		Role:     req.Role,
	}, requestMeta(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{Principal: result.Principal, Tokens: result.TokenPair})
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "email и пароль обязательны")
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}, requestMeta(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{Principal: result.Principal, Tokens: result.TokenPair})
}

// Refresh POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "refresh_token обязателен")
		return
	}

	tokens, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, requestMeta(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// Logout POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "refresh_token обязателен")
		return
	}

	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Me GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	principalID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, err := common.CurrentRole(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	principal, err := h.auth.GetProfile(c.Request.Context(), role, principalID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, principal)
}

// UpdateUsername PATCH /auth/me/username
func (h *AuthHandler) UpdateUsername(c *gin.Context) {
	principalID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentRole(c)

	var req dto.UpdateUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "username обязателен")
		return
	}

	if err := h.auth.UpdateUsername(c.Request.Context(), role, principalID, req.Username); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "имя обновлено", nil)
}

// UpdateFreelancerProfile PATCH /freelancers/me/profile
func (h *AuthHandler) UpdateFreelancerProfile(c *gin.Context) {
	principalID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.UpdateFreelancerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.auth.UpdateFreelancerProfile(c.Request.Context(), principalID, req.Bio, req.PhotoKey); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "профиль обновлён", nil)
}

// ListSessions GET /auth/sessions
func (h *AuthHandler) ListSessions(c *gin.Context) {
	principalID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentRole(c)

	sessions, err := h.auth.ListSessions(c.Request.Context(), principalID, role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// DeleteSession DELETE /auth/sessions/:id
func (h *AuthHandler) DeleteSession(c *gin.Context) {
	principalID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	sessionID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.auth.DeleteSession(c.Request.Context(), sessionID, principalID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListPrincipals GET /admin/principals/:role (админ)
func (h *AuthHandler) ListPrincipals(c *gin.Context) {
	role := c.Param("role")
	if _, ok := models.ValidPrincipalModels[role]; !ok {
		common.RespondBadRequest(c, "недопустимый тип аккаунта")
		return
	}

	limit, offset := common.GetPagination(c)
	principals, err := h.auth.ListPrincipals(c.Request.Context(), role, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"principals": principals})
}

// SetActive PATCH /admin/principals/:role/:id/active (админ)
func (h *AuthHandler) SetActive(c *gin.Context) {
	role := c.Param("role")
	if _, ok := models.ValidPrincipalModels[role]; !ok {
		common.RespondBadRequest(c, "недопустимый тип аккаунта")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		common.RespondBadRequest(c, "is_active обязателен")
		return
	}

	if err := h.auth.SetActive(c.Request.Context(), role, id, *req.IsActive); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "статус аккаунта обновлён", nil)
}

// requestMeta собирает метаданные запроса для сессии.
func requestMeta(c *gin.Context) map[string]string {
	return map[string]string{
		"user_agent": c.Request.UserAgent(),
		"ip":         c.ClientIP(),
	}
}
