package controllers

import (
	"net/http"
	"time"

	"pos-service/models"
	"pos-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookController receives mobile money gateway callbacks and feeds them
// into the checkout state machine through the same dispatch path as the
// kafka consumer, so webhook and broker delivery stay idempotent together.
type WebhookController struct {
	Dispatcher *services.PaymentResultConsumer
	Logger     *zap.Logger
}

func NewWebhookController(dispatcher *services.PaymentResultConsumer, logger *zap.Logger) *WebhookController {
	return &WebhookController{Dispatcher: dispatcher, Logger: logger}
}

type gatewayCallback struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	Status        string `json:"status" binding:"required,oneof=success failed"`
	ExternalRef   string `json:"external_ref,omitempty"`
	ErrorDetail   string `json:"error_detail,omitempty"`
}

// GatewayCallback handles the asynchronous charge outcome.
func (wc *WebhookController) GatewayCallback(c *gin.Context) {
	var cb gatewayCallback
	if err := c.ShouldBindJSON(&cb); err != nil {
		wc.Logger.Warn("Invalid gateway callback payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid callback"})
		return
	}

	evt := models.PaymentResultEvent{
		TransactionID:      cb.TransactionID,
		ExternalPaymentRef: cb.ExternalRef,
		ErrorDetail:        cb.ErrorDetail,
		Timestamp:          time.Now(),
	}
	if cb.Status == "success" {
		evt.Type = models.PaymentEventSucceeded
	} else {
		evt.Type = models.PaymentEventFailed
	}

	wc.Dispatcher.Dispatch(c.Request.Context(), evt)

	// Always acknowledge; the gateway retries on non-2xx and duplicates are
	// absorbed downstream anyway.
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
