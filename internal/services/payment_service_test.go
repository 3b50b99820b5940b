package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/event-oh/server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testWebhookSecret = "whsec_test_secret"

func newPaymentFixture(t *testing.T, status models.BookingStatus) (*PaymentService, *fakeRepo, *models.Booking) {
	t.Helper()
	repo := newFakeRepo()
	ps := NewPaymentService(repo, testWebhookSecret, "inr", "http://localhost:3000", discardLogger())

	booking := &models.Booking{
		CustomerID:      primitive.NewObjectID(),
		VendorID:        primitive.NewObjectID(),
		TotalAmount:     50000,
		AdvanceAmount:   10000,
		RemainingAmount: 40000,
		PaymentStatus:   models.PaymentPending,
		BookingStatus:   status,
	}
	_, err := repo.CreateBooking(context.Background(), booking)
	require.NoError(t, err)
	return ps, repo, booking
}

func TestMarkPaidAdvanceConfirms(t *testing.T) {
	ps, _, booking := newPaymentFixture(t, models.BookingPending)

	updated, err := ps.MarkPaid(context.Background(), booking.ID.Hex(), PhaseAdvance)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, updated.BookingStatus)
	// the advance alone does not settle the full amount
	assert.Equal(t, models.PaymentPending, updated.PaymentStatus)
}

func TestMarkPaidFinalCompletes(t *testing.T) {
	ps, _, booking := newPaymentFixture(t, models.BookingConfirmed)

	updated, err := ps.MarkPaid(context.Background(), booking.ID.Hex(), PhaseFinal)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, updated.BookingStatus)
	assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)
}

func TestMarkPaidGuardsTransitions(t *testing.T) {
	ctx := context.Background()

	// final before the advance confirmed anything
	ps, _, booking := newPaymentFixture(t, models.BookingPending)
	_, err := ps.MarkPaid(ctx, booking.ID.Hex(), PhaseFinal)
	assert.ErrorIs(t, err, models.ErrInvalid)

	// a stray callback cannot resurrect a cancelled booking
	ps, _, booking = newPaymentFixture(t, models.BookingCancelled)
	_, err = ps.MarkPaid(ctx, booking.ID.Hex(), PhaseAdvance)
	assert.ErrorIs(t, err, models.ErrInvalid)

	ps, _, booking = newPaymentFixture(t, models.BookingPending)
	_, err = ps.MarkPaid(ctx, booking.ID.Hex(), "tip")
	assert.ErrorIs(t, err, models.ErrInvalid)

	_, err = ps.MarkPaid(ctx, "not-an-id", PhaseAdvance)
	assert.ErrorIs(t, err, models.ErrInvalid)
}

func signedWebhookPayload(t *testing.T, payload []byte) string {
	t.Helper()
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, testWebhookSecret)
	return fmt.Sprintf("t=%d,v1=%x", now.Unix(), sig)
}

func checkoutCompletedEvent(t *testing.T, bookingID, phase string) []byte {
	t.Helper()
	session := map[string]interface{}{
		"id":       "cs_test_123",
		"object":   "checkout.session",
		"metadata": map[string]string{"booking_id": bookingID, "phase": phase},
	}
	raw, err := json.Marshal(session)
	require.NoError(t, err)
	event, err := json.Marshal(map[string]interface{}{
		"id":   "evt_test_123",
		"type": "checkout.session.completed",
		"data": map[string]interface{}{"object": json.RawMessage(raw)},
	})
	require.NoError(t, err)
	return event
}

func TestHandleWebhookConfirmsBooking(t *testing.T) {
	ps, repo, booking := newPaymentFixture(t, models.BookingPending)

	payload := checkoutCompletedEvent(t, booking.ID.Hex(), PhaseAdvance)
	err := ps.HandleWebhook(context.Background(), payload, signedWebhookPayload(t, payload))
	require.NoError(t, err)

	stored, err := repo.GetBookingByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, stored.BookingStatus)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	ps, repo, booking := newPaymentFixture(t, models.BookingPending)

	payload := checkoutCompletedEvent(t, booking.ID.Hex(), PhaseAdvance)
	err := ps.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	stored, err := repo.GetBookingByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, stored.BookingStatus, "unverified events must not change state")
}

func TestHandleWebhookIgnoresOtherEvents(t *testing.T) {
	ps, _, _ := newPaymentFixture(t, models.BookingPending)

	payload := []byte(`{"id":"evt_1","type":"invoice.created","data":{"object":{}}}`)
	err := ps.HandleWebhook(context.Background(), payload, signedWebhookPayload(t, payload))
	assert.NoError(t, err)
}

func TestHandleWebhookMissingMetadata(t *testing.T) {
	ps, _, _ := newPaymentFixture(t, models.BookingPending)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","object":"checkout.session"}}}`)
	err := ps.HandleWebhook(context.Background(), payload, signedWebhookPayload(t, payload))
	assert.ErrorIs(t, err, models.ErrInvalid)
}
