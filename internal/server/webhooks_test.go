package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	bookingdomain "github.com/nakmuayhub/platform/internal/booking/domain"
	"github.com/nakmuayhub/platform/internal/config"
	paymentdomain "github.com/nakmuayhub/platform/internal/payment/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const webhookSecret = "whsec_test"

func signBody(body []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, body)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func succeededPayload(eventID, paymentID string, bookingID uuid.UUID) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"type": "payment_intent.succeeded",
		"data": {"object": {
			"id": %q,
			"amount": 150000,
			"amount_received": 150000,
			"currency": "thb",
			"metadata": {"bookingId": %q}
		}}
	}`, eventID, paymentID, bookingID))
}

func seedPendingBooking(t *testing.T, db *gorm.DB, providerPaymentID string) bookingdomain.Booking {
	t.Helper()
	booking := bookingdomain.Booking{
		ID:            uuid.New(),
		GymID:         uuid.New(),
		UserID:        uuid.New(),
		UserEmail:     "fighter@example.com",
		PaymentID:     &providerPaymentID,
		Status:        bookingdomain.StatusPending,
		PaymentStatus: bookingdomain.PaymentStatusPending,
		Amount:        150000,
		Currency:      "THB",
		StartsAt:      testNow.Add(48 * time.Hour),
	}
	require.NoError(t, db.Create(&booking).Error)
	require.NoError(t, db.Create(&paymentdomain.Payment{
		ID:                snowflake.ID(time.Now().UnixNano()),
		ProviderPaymentID: providerPaymentID,
		BookingID:         &booking.ID,
		Amount:            150000,
		Currency:          "THB",
		Status:            paymentdomain.PaymentStatusPending,
	}).Error)
	return booking
}

func TestStripeWebhookHappyPath(t *testing.T) {
	ts := newTestServer(t, config.Config{
		Environment:         config.EnvProduction,
		StripeWebhookSecret: webhookSecret,
	})
	booking := seedPendingBooking(t, ts.db, "pi_http_1")

	body := succeededPayload("evt_http_1", "pi_http_1", booking.ID)
	rec := ts.request(http.MethodPost, "/webhooks/stripe", body, map[string]string{
		"Stripe-Signature": signBody(body, webhookSecret, testNow.Unix()),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"received": true}`, rec.Body.String())

	var got bookingdomain.Booking
	require.NoError(t, ts.db.Raw(`SELECT * FROM bookings WHERE id = ?`, booking.ID).Scan(&got).Error)
	require.Equal(t, bookingdomain.StatusConfirmed, got.Status)
	require.Equal(t, bookingdomain.PaymentStatusPaid, got.PaymentStatus)
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	ts := newTestServer(t, config.Config{
		Environment:         config.EnvProduction,
		StripeWebhookSecret: webhookSecret,
	})
	booking := seedPendingBooking(t, ts.db, "pi_http_2")

	body := succeededPayload("evt_http_2", "pi_http_2", booking.ID)
	rec := ts.request(http.MethodPost, "/webhooks/stripe", body, map[string]string{
		"Stripe-Signature": signBody(body, "whsec_wrong", testNow.Unix()),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error": {"type": "invalid_request", "message": "invalid request"}}`, rec.Body.String())

	// nothing changed
	var got bookingdomain.Booking
	require.NoError(t, ts.db.Raw(`SELECT * FROM bookings WHERE id = ?`, booking.ID).Scan(&got).Error)
	require.Equal(t, bookingdomain.StatusPending, got.Status)
}

func TestStripeWebhookRejectsMissingSignature(t *testing.T) {
	ts := newTestServer(t, config.Config{
		Environment:         config.EnvProduction,
		StripeWebhookSecret: webhookSecret,
	})

	body := []byte(`{"id": "evt_nosig", "type": "payment_intent.succeeded", "data": {"object": {"id": "pi_x"}}}`)
	rec := ts.request(http.MethodPost, "/webhooks/stripe", body, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStripeWebhookProductionWithoutSecretRejects(t *testing.T) {
	ts := newTestServer(t, config.Config{Environment: config.EnvProduction})

	body := []byte(`{"id": "evt_x", "type": "payment_intent.succeeded", "data": {"object": {"id": "pi_x"}}}`)
	rec := ts.request(http.MethodPost, "/webhooks/stripe", body, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStripeWebhookDevelopmentSkipsVerification(t *testing.T) {
	ts := newTestServer(t, config.Config{Environment: config.EnvDevelopment})
	booking := seedPendingBooking(t, ts.db, "pi_http_dev")

	body := succeededPayload("evt_http_dev", "pi_http_dev", booking.ID)
	rec := ts.request(http.MethodPost, "/webhooks/stripe", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got bookingdomain.Booking
	require.NoError(t, ts.db.Raw(`SELECT * FROM bookings WHERE id = ?`, booking.ID).Scan(&got).Error)
	require.Equal(t, bookingdomain.StatusConfirmed, got.Status)
}

func TestStripeWebhookAcknowledgesIgnoredEvents(t *testing.T) {
	ts := newTestServer(t, config.Config{
		Environment:         config.EnvProduction,
		StripeWebhookSecret: webhookSecret,
	})

	body := []byte(`{"id": "evt_ignored", "type": "customer.created", "data": {"object": {}}}`)
	rec := ts.request(http.MethodPost, "/webhooks/stripe", body, map[string]string{
		"Stripe-Signature": signBody(body, webhookSecret, testNow.Unix()),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"received": true}`, rec.Body.String())
}

func TestStripeWebhookRedeliveryReturnsOK(t *testing.T) {
	ts := newTestServer(t, config.Config{
		Environment:         config.EnvProduction,
		StripeWebhookSecret: webhookSecret,
	})
	booking := seedPendingBooking(t, ts.db, "pi_http_dup")

	body := succeededPayload("evt_http_dup", "pi_http_dup", booking.ID)
	headers := map[string]string{"Stripe-Signature": signBody(body, webhookSecret, testNow.Unix())}

	rec := ts.request(http.MethodPost, "/webhooks/stripe", body, headers)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(http.MethodPost, "/webhooks/stripe", body, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"received": true}`, rec.Body.String())

	var queued int64
	require.NoError(t, ts.db.Table("email_queue").Count(&queued).Error)
	require.EqualValues(t, 1, queued)
}

func TestStripeWebhookRejectsMalformedPayload(t *testing.T) {
	ts := newTestServer(t, config.Config{
		Environment:         config.EnvProduction,
		StripeWebhookSecret: webhookSecret,
	})

	body := []byte("not json")
	rec := ts.request(http.MethodPost, "/webhooks/stripe", body, map[string]string{
		"Stripe-Signature": signBody(body, webhookSecret, testNow.Unix()),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
