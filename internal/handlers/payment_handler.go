package handlers

import (
	"io"
	"net/http"

	"github.com/event-oh/server/internal/models"
	"github.com/event-oh/server/internal/services"
	"github.com/gin-gonic/gin"
)

// PayAdvance creates a hosted checkout session for the 20% advance of a
// booking and returns its URL.
func PayAdvance(p *services.PaymentService) gin.HandlerFunc {
	return createCheckout(p, services.PhaseAdvance)
}

// PayRemaining creates a hosted checkout session for the remaining balance.
func PayRemaining(p *services.PaymentService) gin.HandlerFunc {
	return createCheckout(p, services.PhaseFinal)
}

func createCheckout(p *services.PaymentService, phase string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := sessionFrom(c)
		if !ok {
			return
		}

		url, err := p.CreateCheckoutSession(c.Request.Context(), session, c.Param("id"), phase)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"checkoutUrl": url}, ""))
	}
}

// MarkPaid is the client-driven success-redirect callback. The redirect query
// tells the phase apart: final flips paymentStatus to paid and bookingStatus
// to completed together, advance confirms the booking. The signature-verified
// webhook performs the same flips authoritatively.
func MarkPaid(p *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := sessionFrom(c); !ok {
			return
		}

		phase := services.PhaseFinal
		if c.Query("final") == "" && c.Query("phase") == services.PhaseAdvance {
			phase = services.PhaseAdvance
		}

		booking, err := p.MarkPaid(c.Request.Context(), c.Param("id"), phase)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(booking, "Payment marked as completed"))
	}
}

// StripeWebhook receives checkout.session.completed events. The payload is
// trusted only after the Stripe-Signature check passes.
func StripeWebhook(p *services.PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("failed to read webhook payload"))
			return
		}

		if err := p.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature")); err != nil {
			respondError(c, err)
			return
		}

		c.Status(http.StatusOK)
	}
}
