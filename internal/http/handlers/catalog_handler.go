package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/marketplace-backend/internal/dto"
	"github.com/ignatzorin/marketplace-backend/internal/http/handlers/common"
	"github.com/ignatzorin/marketplace-backend/internal/service"
)

// CatalogHandler обслуживает каталог услуг: категории, услуги, дополнения.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler создаёт новый хэндлер.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// CreateCategory POST /admin/categories (админ)
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "название обязательно")
		return
	}

	category, err := h.catalog.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// ListCategories GET /categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// DeleteCategory DELETE /admin/categories/:id (админ)
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateSubcategory POST /admin/categories/:id/subcategories (админ)
func (h *CatalogHandler) CreateSubcategory(c *gin.Context) {
	categoryID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "название обязательно")
		return
	}

	sub, err := h.catalog.CreateSubcategory(c.Request.Context(), categoryID, req.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// DeleteSubcategory DELETE /admin/subcategories/:id (админ)
func (h *CatalogHandler) DeleteSubcategory(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.catalog.DeleteSubcategory(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateService POST /services (фрилансер)
func (h *CatalogHandler) CreateService(c *gin.Context) {
	freelancerID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	var req dto.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		common.RespondBadRequest(c, common.ErrInvalidUUID.Error())
		return
	}
	subcategoryID, err := uuid.Parse(req.SubcategoryID)
	if err != nil {
		common.RespondBadRequest(c, common.ErrInvalidUUID.Error())
		return
	}

	svc, err := h.catalog.CreateService(c.Request.Context(), freelancerID, service.CreateServiceInput{
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, svc)
}

// GetService GET /services/:id
func (h *CatalogHandler) GetService(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	svc, err := h.catalog.GetService(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, svc)
}

// ListServices GET /subcategories/:id/services
func (h *CatalogHandler) ListServices(c *gin.Context) {
	subcategoryID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	services, err := h.catalog.ListServices(c.Request.Context(), subcategoryID, limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": services})
}

// ListOwnServices GET /freelancers/me/services (фрилансер)
func (h *CatalogHandler) ListOwnServices(c *gin.Context) {
	freelancerID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	services, err := h.catalog.ListOwnServices(c.Request.Context(), freelancerID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": services})
}

// ListUnapproved GET /admin/services/unapproved (админ)
func (h *CatalogHandler) ListUnapproved(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	services, err := h.catalog.ListUnapproved(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": services})
}

// UpdateService PUT /services/:id (фрилансер)
func (h *CatalogHandler) UpdateService(c *gin.Context) {
	freelancerID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	serviceID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	svc, err := h.catalog.UpdateService(c.Request.Context(), freelancerID, serviceID, service.UpdateServiceInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		PhotoKey:    req.PhotoKey,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, svc)
}

// ApproveService POST /admin/services/:id/approve (админ)
func (h *CatalogHandler) ApproveService(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.catalog.ApproveService(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "услуга одобрена", nil)
}

// DeleteService DELETE /services/:id (фрилансер)
func (h *CatalogHandler) DeleteService(c *gin.Context) {
	freelancerID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	serviceID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.catalog.DeleteService(c.Request.Context(), freelancerID, serviceID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateAddOn POST /services/:id/addons (фрилансер)
func (h *CatalogHandler) CreateAddOn(c *gin.Context) {
	freelancerID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	serviceID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CreateAddOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	addon, err := h.catalog.CreateAddOn(c.Request.Context(), freelancerID, serviceID, service.CreateAddOnInput{
		Title:        req.Title,
		DurationDays: req.DurationDays,
		Price:        req.Price,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, addon)
}

// DeleteAddOn DELETE /services/:id/addons/:addonId (фрилансер)
func (h *CatalogHandler) DeleteAddOn(c *gin.Context) {
	freelancerID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	serviceID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	addonID, err := common.ParseUUIDParam(c, "addonId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.catalog.DeleteAddOn(c.Request.Context(), freelancerID, serviceID, addonID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
