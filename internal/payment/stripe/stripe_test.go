package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	paymentdomain "github.com/nakmuayhub/platform/internal/payment/domain"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

func signPayload(t *testing.T, payload []byte, secret string, ts time.Time) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	_, err := fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	require.NoError(t, err)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifySignature(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	t.Run("valid", func(t *testing.T) {
		header := signPayload(t, payload, testSecret, now)
		require.NoError(t, VerifySignature(payload, header, testSecret, now, DefaultTolerance))
	})

	t.Run("wrong secret", func(t *testing.T) {
		header := signPayload(t, payload, "whsec_other", now)
		err := VerifySignature(payload, header, testSecret, now, DefaultTolerance)
		require.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)
	})

	t.Run("tampered body", func(t *testing.T) {
		header := signPayload(t, payload, testSecret, now)
		tampered := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","amount":1}`)
		err := VerifySignature(tampered, header, testSecret, now, DefaultTolerance)
		require.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)
	})

	t.Run("stale timestamp", func(t *testing.T) {
		header := signPayload(t, payload, testSecret, now.Add(-6*time.Minute))
		err := VerifySignature(payload, header, testSecret, now, DefaultTolerance)
		require.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)
	})

	t.Run("timestamp from the future", func(t *testing.T) {
		header := signPayload(t, payload, testSecret, now.Add(6*time.Minute))
		err := VerifySignature(payload, header, testSecret, now, DefaultTolerance)
		require.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)
	})

	t.Run("second v1 signature accepted", func(t *testing.T) {
		mac := hmac.New(sha256.New, []byte(testSecret))
		fmt.Fprintf(mac, "%d.%s", now.Unix(), payload)
		header := fmt.Sprintf("t=%d,v1=deadbeef,v1=%s", now.Unix(), hex.EncodeToString(mac.Sum(nil)))
		require.NoError(t, VerifySignature(payload, header, testSecret, now, DefaultTolerance))
	})

	t.Run("missing header", func(t *testing.T) {
		err := VerifySignature(payload, "", testSecret, now, DefaultTolerance)
		require.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)
	})

	t.Run("malformed header", func(t *testing.T) {
		err := VerifySignature(payload, "v1=abc", testSecret, now, DefaultTolerance)
		require.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)
	})
}

func TestParseEventPaymentIntent(t *testing.T) {
	payload := []byte(`{
		"id": "evt_succ_1",
		"type": "payment_intent.succeeded",
		"created": 1748779200,
		"data": {"object": {
			"id": "pi_123",
			"amount": 150000,
			"amount_received": 150000,
			"currency": "thb",
			"metadata": {"bookingId": "a2b9e7de-6cbd-4a70-9c1e-111111111111"}
		}}
	}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)
	require.Equal(t, paymentdomain.EventTypePaymentSucceeded, event.Type)
	require.Equal(t, "stripe", event.Provider)
	require.Equal(t, "evt_succ_1", event.ProviderEventID)
	require.Equal(t, "pi_123", event.ProviderPaymentID)
	require.Equal(t, int64(150000), event.Amount)
	require.Equal(t, "THB", event.Currency)
	require.Equal(t, "a2b9e7de-6cbd-4a70-9c1e-111111111111", event.Metadata["bookingId"])
}

func TestParseEventPaymentFailed(t *testing.T) {
	payload := []byte(`{
		"id": "evt_fail_1",
		"type": "payment_intent.payment_failed",
		"data": {"object": {
			"id": "pi_456",
			"amount": 90000,
			"currency": "thb",
			"last_payment_error": {"code": "card_error", "decline_code": "insufficient_funds"}
		}}
	}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)
	require.Equal(t, paymentdomain.EventTypePaymentFailed, event.Type)
	// decline_code wins over the generic error code
	require.Equal(t, "insufficient_funds", event.FailureCode)
}

func TestParseEventChargeRefunded(t *testing.T) {
	payload := []byte(`{
		"id": "evt_ref_1",
		"type": "charge.refunded",
		"data": {"object": {
			"id": "ch_789",
			"payment_intent": "pi_789",
			"amount": 200000,
			"amount_refunded": 120000,
			"currency": "thb"
		}}
	}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)
	require.Equal(t, paymentdomain.EventTypeChargeRefunded, event.Type)
	require.Equal(t, "pi_789", event.ProviderPaymentID)
	require.Equal(t, "ch_789", event.ChargeID)
	require.Equal(t, int64(120000), event.Amount)
}

func TestParseEventChargeWithoutIntentFallsBackToChargeID(t *testing.T) {
	payload := []byte(`{
		"id": "evt_ref_2",
		"type": "charge.refunded",
		"data": {"object": {"id": "ch_solo", "amount": 500, "currency": "thb"}}
	}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)
	require.Equal(t, "ch_solo", event.ProviderPaymentID)
}

func TestParseEventDispute(t *testing.T) {
	payload := []byte(`{
		"id": "evt_disp_1",
		"type": "charge.dispute.closed",
		"data": {"object": {
			"id": "dp_1",
			"charge": "ch_1",
			"payment_intent": "pi_1",
			"amount": 100000,
			"currency": "thb",
			"status": "won"
		}}
	}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)
	require.Equal(t, paymentdomain.EventTypeDisputeClosed, event.Type)
	require.Equal(t, "dp_1", event.DisputeID)
	require.Equal(t, "won", event.DisputeStatus)
	require.Equal(t, "pi_1", event.ProviderPaymentID)
}

func TestParseEventUnhandledType(t *testing.T) {
	payload := []byte(`{"id": "evt_x", "type": "customer.created", "data": {"object": {}}}`)
	_, err := ParseEvent(payload)
	require.ErrorIs(t, err, paymentdomain.ErrEventIgnored)
}

func TestParseEventRejectsGarbage(t *testing.T) {
	_, err := ParseEvent([]byte("not json"))
	require.ErrorIs(t, err, paymentdomain.ErrInvalidPayload)

	_, err = ParseEvent([]byte(`{"type": "payment_intent.succeeded"}`))
	require.ErrorIs(t, err, paymentdomain.ErrInvalidEvent)
}

func TestClassifyFailure(t *testing.T) {
	require.Equal(t, FailureCardDeclined, ClassifyFailure("card_declined"))
	require.Equal(t, FailureCardDeclined, ClassifyFailure("generic_decline"))
	require.Equal(t, FailureCardDeclined, ClassifyFailure("do_not_honor"))
	require.Equal(t, FailureInsufficientFunds, ClassifyFailure("insufficient_funds"))
	require.Equal(t, FailureExpiredCard, ClassifyFailure("expired_card"))
	require.Equal(t, FailureGeneric, ClassifyFailure("fraudulent"))
	require.Equal(t, FailureGeneric, ClassifyFailure(""))
}
