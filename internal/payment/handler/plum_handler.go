// Package handler serves the card payment routes. Authentication runs in the
// chi middleware in front of the engine.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/auth"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/payment/services"
	"ms-restaurant/internal/payment/storage"

	"github.com/gin-gonic/gin"
)

// ConfirmRequest is an OTP confirmation for a card order. Session 0 means
// the stored charge payload supplies it.
type ConfirmRequest struct {
	OrderID  int64
	ClientID int64
	OTP      string
	Session  int64
}

// OrderConfirmer finishes a card order once the OTP is known.
type OrderConfirmer interface {
	ConfirmPayment(ctx context.Context, req ConfirmRequest) (map[string]any, error)
}

type PlumHandler struct {
	orders   OrderConfirmer
	settings storage.Store
	logger   *logger.Logger
}

func NewPlumHandler(orders OrderConfirmer, settings storage.Store, log *logger.Logger) *PlumHandler {
	if log == nil {
		log = logger.Discard()
	}
	return &PlumHandler{orders: orders, settings: settings, logger: log}
}

// NewRouter builds the gin engine that serves the payment routes.
func NewRouter(h *PlumHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.POST("/api/orders/:id/payment/confirm", h.ConfirmPayment)
	engine.GET("/api/integrations/plum", h.GetSettings)
	engine.PATCH("/api/integrations/plum", h.UpdateSettings)
	return engine
}

func fail(c *gin.Context, err error) {
	c.JSON(apperr.StatusOf(err), apperr.Body(err))
}

type confirmBody struct {
	OTP     string `json:"otp"`
	Session any    `json:"session"`
}

// ConfirmPayment handles POST /api/orders/:id/payment/confirm for the order owner.
func (h *PlumHandler) ConfirmPayment(c *gin.Context) {
	claims := auth.Client(c.Request.Context())
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false})
		return
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false})
		return
	}

	var body confirmBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false})
		return
	}
	otp := strings.TrimSpace(body.OTP)
	if otp == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false})
		return
	}

	result, err := h.orders.ConfirmPayment(c.Request.Context(), ConfirmRequest{
		OrderID:  orderID,
		ClientID: claims.ClientID,
		OTP:      otp,
		Session:  services.ParseSession(body.Session),
	})
	if err != nil {
		h.logger.LogPayment("CONFIRM", orderID, fmt.Sprintf("Rejected: %v", err))
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSettings handles GET /api/integrations/plum.
func (h *PlumHandler) GetSettings(c *gin.Context) {
	settings, err := storage.Load(c.Request.Context(), h.settings)
	if err != nil {
		h.logger.Error("PAYMENT", fmt.Sprintf("Failed to load settings: %v", err))
		fail(c, apperr.Internal(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"baseUrl":  settings.BaseURL,
		"login":    settings.Login,
		"password": settings.Password,
	})
}

// UpdateSettings handles PATCH /api/integrations/plum. All three values are replaced.
func (h *PlumHandler) UpdateSettings(c *gin.Context) {
	var body storage.Settings
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false})
		return
	}
	saved, err := storage.Save(c.Request.Context(), h.settings, body)
	if err != nil {
		h.logger.Error("PAYMENT", fmt.Sprintf("Failed to save settings: %v", err))
		fail(c, apperr.Internal(err))
		return
	}
	h.logger.LogSecurity("PAYMENT_SETTINGS", fmt.Sprintf("Plum settings updated by %q", auth.AdminLogin(c.Request.Context())))
	c.JSON(http.StatusOK, gin.H{"ok": true, "baseUrl": saved.BaseURL, "login": saved.Login})
}
