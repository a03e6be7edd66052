package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/sellyourtackle/tackle-backend/models"
	"github.com/sellyourtackle/tackle-backend/repository"
	"github.com/sellyourtackle/tackle-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// EventVerifier checks a webhook payload's signature and decodes the event.
type EventVerifier interface {
	ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

type WebhookController struct {
	Verifier EventVerifier
	Service  *services.WebhookService
	Webhooks repository.WebhookRepository
	Logger   *zap.Logger
}

func NewWebhookController(verifier EventVerifier, service *services.WebhookService, webhooks repository.WebhookRepository, logger *zap.Logger) *WebhookController {
	return &WebhookController{Verifier: verifier, Service: service, Webhooks: webhooks, Logger: logger}
}

// StripeWebhook receives signed gateway events. The raw payload is captured
// before verification so every request, valid or not, leaves an audit row.
// Only payload/signature failures return a client error; unknown references
// inside a valid event are acknowledged to stop redelivery storms.
func (wc *WebhookController) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "invalid payload"})
		return
	}
	sigHeader := c.GetHeader("Stripe-Signature")

	wlog := &models.WebhookLog{
		Payload: string(payload),
		Header:  sigHeader,
		Status:  "received",
	}

	event, err := wc.Verifier.ConstructEvent(payload, sigHeader)
	if err != nil {
		if !json.Valid(payload) {
			wlog.Status = "invalid payload"
		} else {
			wlog.Status = "invalid signature"
		}
		wc.Logger.Warn("Stripe webhook rejected",
			zap.String("reason", wlog.Status),
			zap.Error(err),
		)
		if logErr := wc.Webhooks.CreateLog(c.Request.Context(), wlog); logErr != nil {
			wc.Logger.Error("Failed to persist webhook log", zap.Error(logErr))
		}
		c.JSON(http.StatusBadRequest, gin.H{"status": wlog.Status})
		return
	}

	wc.Logger.Info("Processing Stripe webhook",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
	)

	wc.Service.HandleEvent(c.Request.Context(), event, wlog)

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
