package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCartHandler_Get_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &CartHandler{cart: nil}
	r.GET("/cart", handler.Get)

	req, _ := http.NewRequest("GET", "/cart", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartHandler_Checkout_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &CartHandler{cart: nil}
	r.POST("/cart/checkout", handler.Checkout)

	req, _ := http.NewRequest("POST", "/cart/checkout", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartHandler_SetPlatformFee_MissingFee(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &CartHandler{cart: nil}
	r.PUT("/admin/cart/fee", handler.SetPlatformFee)

	req, _ := http.NewRequest("PUT", "/admin/cart/fee", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartHandler_RetryCheckout_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &CartHandler{cart: nil}
	r.POST("/cart/checkout/retry", handler.RetryCheckout)

	req, _ := http.NewRequest("POST", "/cart/checkout/retry", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
