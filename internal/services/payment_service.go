package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/event-oh/server/internal/helpers"
	"github.com/event-oh/server/internal/metrics"
	"github.com/event-oh/server/internal/models"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment phases: the advance collects the 20% up-front amount and confirms
// the booking, the final phase collects the remainder and completes it.
const (
	PhaseAdvance = "advance"
	PhaseFinal   = "final"
)

type PaymentService struct {
	bookingRepo   models.BookingRepo
	webhookSecret string
	currency      string
	frontendURL   string
	logger        *slog.Logger
}

func NewPaymentService(bookingRepo models.BookingRepo, webhookSecret, currency, frontendURL string, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		bookingRepo:   bookingRepo,
		webhookSecret: webhookSecret,
		currency:      currency,
		frontendURL:   frontendURL,
		logger:        logger,
	}
}

// InitStripe sets the process-wide Stripe API key.
func InitStripe(secretKey string) {
	stripe.Key = secretKey
}

// CreateCheckoutSession builds a Stripe hosted-checkout session for the given
// phase of a booking. The amount is always computed server-side from the
// stored booking, never taken from the client.
func (ps *PaymentService) CreateCheckoutSession(ctx context.Context, sess *helpers.Session, bookingID, phase string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(bookingID)
	if err != nil {
		return "", fmt.Errorf("%w: invalid booking ID", models.ErrInvalid)
	}

	booking, err := ps.bookingRepo.GetBookingByID(ctx, oid)
	if err != nil {
		return "", err
	}

	if !sess.IsOwner(booking.CustomerID.Hex()) && !sess.IsAdmin() {
		return "", fmt.Errorf("%w: you can only pay for your own bookings", models.ErrForbidden)
	}
	if booking.PaymentStatus == models.PaymentPaid {
		return "", fmt.Errorf("%w: booking is already fully paid", models.ErrConflict)
	}

	var amount float64
	var label string
	switch phase {
	case PhaseAdvance:
		if booking.BookingStatus != models.BookingPending {
			return "", fmt.Errorf("%w: advance payment is only valid for pending bookings", models.ErrConflict)
		}
		amount = booking.AdvanceAmount
		label = "Booking advance (20%)"
	case PhaseFinal:
		if booking.BookingStatus != models.BookingConfirmed {
			return "", fmt.Errorf("%w: remaining payment is only valid for confirmed bookings", models.ErrConflict)
		}
		amount = booking.RemainingAmount
		label = "Booking remaining balance"
	default:
		return "", fmt.Errorf("%w: unknown payment phase %q", models.ErrInvalid, phase)
	}
	if amount <= 0 {
		return "", fmt.Errorf("%w: nothing to pay for this phase", models.ErrConflict)
	}

	successURL := fmt.Sprintf("%s/payment-success?bookingId=%s", ps.frontendURL, booking.ID.Hex())
	if phase == PhaseFinal {
		successURL += "&final=1"
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(ps.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(label),
					},
					UnitAmount: stripe.Int64(int64(math.Round(amount * 100))),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(ps.frontendURL + "/payment-cancelled"),
	}
	params.AddMetadata("booking_id", booking.ID.Hex())
	params.AddMetadata("phase", phase)

	checkout, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %v", err)
	}

	metrics.IncCheckoutSession(phase)
	ps.logger.Info("Created checkout session",
		"booking_id", booking.ID.Hex(), "phase", phase, "session_id", checkout.ID)
	return checkout.URL, nil
}

// MarkPaid applies the status flip for a completed payment phase: advance
// confirms the booking, final marks it paid and completed in one write. The
// transition table still applies, so a stray callback cannot resurrect a
// cancelled booking.
func (ps *PaymentService) MarkPaid(ctx context.Context, bookingID, phase string) (*models.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(bookingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid booking ID", models.ErrInvalid)
	}

	booking, err := ps.bookingRepo.GetBookingByID(ctx, oid)
	if err != nil {
		return nil, err
	}

	switch phase {
	case PhaseAdvance:
		if !booking.BookingStatus.CanTransition(models.BookingConfirmed) {
			return nil, fmt.Errorf("%w: cannot confirm booking in status %s",
				models.ErrInvalid, booking.BookingStatus)
		}
		return ps.bookingRepo.UpdateBookingStatus(ctx, oid, models.BookingConfirmed)
	case PhaseFinal:
		if !booking.BookingStatus.CanTransition(models.BookingCompleted) {
			return nil, fmt.Errorf("%w: cannot complete booking in status %s",
				models.ErrInvalid, booking.BookingStatus)
		}
		return ps.bookingRepo.SetPaymentOutcome(ctx, oid, models.PaymentPaid, models.BookingCompleted)
	}
	return nil, fmt.Errorf("%w: unknown payment phase %q", models.ErrInvalid, phase)
}

// HandleWebhook verifies the Stripe signature and applies the status flip for
// completed checkout sessions. This is the authoritative payment
// confirmation; the client redirect routes are best-effort duplicates of it.
func (ps *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if ps.webhookSecret == "" {
		return fmt.Errorf("stripe webhook secret is not configured")
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, ps.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return fmt.Errorf("%w: webhook signature verification failed", models.ErrUnauthorized)
	}

	switch event.Type {
	case "checkout.session.completed":
		var checkout stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &checkout); err != nil {
			return fmt.Errorf("%w: malformed checkout session payload", models.ErrInvalid)
		}

		bookingID := checkout.Metadata["booking_id"]
		phase := checkout.Metadata["phase"]
		if bookingID == "" || phase == "" {
			return fmt.Errorf("%w: checkout session has no booking metadata", models.ErrInvalid)
		}

		if _, err := ps.MarkPaid(ctx, bookingID, phase); err != nil {
			return err
		}
		ps.logger.Info("Processed payment webhook", "booking_id", bookingID, "phase", phase)
	default:
		ps.logger.Debug("Ignoring webhook event", "type", string(event.Type))
	}

	return nil
}
