package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/marketplace-backend/internal/dto"
	"github.com/ignatzorin/marketplace-backend/internal/http/handlers/common"
	"github.com/ignatzorin/marketplace-backend/internal/service"
)

// PostHandler обслуживает ленту публикаций и комментарии.
type PostHandler struct {
	posts *service.PostService
}

// NewPostHandler создаёт новый хэндлер.
func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// Create POST /posts
func (h *PostHandler) Create(c *gin.Context) {
	authorID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentRole(c)

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "title и body обязательны")
		return
	}

	post, err := h.posts.Create(c.Request.Context(), authorID, role, req.Title, req.Body, req.PhotoKey)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// Get GET /posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	post, comments, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post, "comments": comments})
}

// ListFeed GET /posts
func (h *PostHandler) ListFeed(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	posts, err := h.posts.ListFeed(c.Request.Context(), limit, offset)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// ListOwn GET /posts/mine
func (h *PostHandler) ListOwn(c *gin.Context) {
	authorID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentRole(c)

	posts, err := h.posts.ListByAuthor(c.Request.Context(), authorID, role)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// Delete DELETE /posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	authorID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.posts.Delete(c.Request.Context(), id, authorID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddComment POST /posts/:id/comments
func (h *PostHandler) AddComment(c *gin.Context) {
	authorID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	role, _ := common.CurrentRole(c)

	postID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "body обязателен")
		return
	}

	comment, err := h.posts.AddComment(c.Request.Context(), postID, authorID, role, req.Body)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// DeleteComment DELETE /comments/:id
func (h *PostHandler) DeleteComment(c *gin.Context) {
	authorID, err := common.CurrentPrincipalID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.posts.DeleteComment(c.Request.Context(), id, authorID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
