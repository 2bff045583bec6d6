package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/nakmuayhub/platform/internal/payment/domain"
	"github.com/nakmuayhub/platform/internal/payment/stripe"
	"go.uber.org/zap"
)

// Stripe caps event payloads well below this; anything larger is not a
// legitimate webhook delivery.
const maxWebhookBody = 1 << 20

// HandleStripeWebhook receives provider event deliveries. The provider
// retries on any non-2xx, so transient processing failures return 500
// to request a redelivery, while signature and payload rejections
// return 400 to stop retries that can never succeed.
func (s *Server) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	secret := s.cfg.StripeWebhookSecret
	if secret == "" {
		if s.cfg.IsProduction() {
			s.log.Error("stripe webhook secret not configured in production")
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		s.log.Warn("stripe webhook secret not set, skipping signature verification")
	} else {
		if err := stripe.VerifySignature(payload, c.GetHeader("Stripe-Signature"), secret, s.clock.Now(), stripe.DefaultTolerance); err != nil {
			s.log.Warn("stripe webhook signature rejected", zap.Error(err))
			AbortWithError(c, err)
			return
		}
	}

	event, err := stripe.ParseEvent(payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			// Unhandled event type: acknowledge so the provider stops
			// redelivering it.
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		s.log.Warn("stripe webhook payload rejected", zap.Error(err))
		AbortWithError(c, err)
		return
	}

	if err := s.webhookSvc.HandleEvent(c.Request.Context(), event); err != nil {
		if errors.Is(err, paymentdomain.ErrEventAlreadyProcessed) {
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		s.log.Error("stripe webhook processing failed",
			zap.String("event_id", event.ProviderEventID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
