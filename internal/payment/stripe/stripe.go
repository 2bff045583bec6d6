package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	paymentdomain "github.com/nakmuayhub/platform/internal/payment/domain"
)

// DefaultTolerance bounds how stale a signed timestamp may be before the
// delivery is rejected as a possible replay.
const DefaultTolerance = 5 * time.Minute

// VerifySignature recomputes the expected HMAC-SHA256 over
// "<timestamp>.<body>" and compares it against every v1 signature in the
// header. Verification runs over the exact raw bytes received.
func VerifySignature(payload []byte, sigHeader, secret string, now time.Time, tolerance time.Duration) error {
	sigHeader = strings.TrimSpace(sigHeader)
	if sigHeader == "" || secret == "" {
		return paymentdomain.ErrInvalidSignature
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return paymentdomain.ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return paymentdomain.ErrInvalidSignature
	}
	if tolerance > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > tolerance || age < -tolerance {
			return paymentdomain.ErrInvalidSignature
		}
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}

	return paymentdomain.ErrInvalidSignature
}

// ParseEvent maps a Stripe payload into the canonical event set.
// Event types outside the closed set return ErrEventIgnored so the
// caller acknowledges them without retrying.
func ParseEvent(payload []byte) (*paymentdomain.Event, error) {
	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	switch strings.TrimSpace(event.Type) {
	case "payment_intent.succeeded":
		return parsePaymentIntent(event, payload, paymentdomain.EventTypePaymentSucceeded)
	case "payment_intent.payment_failed":
		return parsePaymentIntent(event, payload, paymentdomain.EventTypePaymentFailed)
	case "payment_intent.canceled":
		return parsePaymentIntent(event, payload, paymentdomain.EventTypePaymentCanceled)
	case "charge.refunded":
		return parseCharge(event, payload)
	case "charge.dispute.created":
		return parseDispute(event, payload, paymentdomain.EventTypeDisputeCreated)
	case "charge.dispute.updated":
		return parseDispute(event, payload, paymentdomain.EventTypeDisputeUpdated)
	case "charge.dispute.closed":
		return parseDispute(event, payload, paymentdomain.EventTypeDisputeClosed)
	default:
		return nil, paymentdomain.ErrEventIgnored
	}
}

// Failure categories selecting user-facing notification copy.
const (
	FailureCardDeclined      = "card_declined"
	FailureInsufficientFunds = "insufficient_funds"
	FailureExpiredCard       = "expired_card"
	FailureGeneric           = "generic"
)

// ClassifyFailure buckets a provider failure code into a small set of
// user-facing categories. Unrecognized codes fall back to generic.
func ClassifyFailure(code string) string {
	switch strings.TrimSpace(strings.ToLower(code)) {
	case "card_declined", "generic_decline", "do_not_honor":
		return FailureCardDeclined
	case "insufficient_funds":
		return FailureInsufficientFunds
	case "expired_card":
		return FailureExpiredCard
	default:
		return FailureGeneric
	}
}

type stripeEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created int64           `json:"created"`
	Data    stripeEventData `json:"data"`
}

type stripeEventData struct {
	Object json.RawMessage `json:"object"`
}

type stripePaymentIntent struct {
	ID               string            `json:"id"`
	Amount           int64             `json:"amount"`
	AmountReceived   int64             `json:"amount_received"`
	Currency         string            `json:"currency"`
	Created          int64             `json:"created"`
	Metadata         map[string]string `json:"metadata"`
	LastPaymentError *struct {
		Code        string `json:"code"`
		DeclineCode string `json:"decline_code"`
	} `json:"last_payment_error"`
}

type stripeCharge struct {
	ID             string            `json:"id"`
	PaymentIntent  string            `json:"payment_intent"`
	Amount         int64             `json:"amount"`
	AmountRefunded int64             `json:"amount_refunded"`
	Currency       string            `json:"currency"`
	Created        int64             `json:"created"`
	Metadata       map[string]string `json:"metadata"`
}

type stripeDispute struct {
	ID            string            `json:"id"`
	Charge        string            `json:"charge"`
	PaymentIntent string            `json:"payment_intent"`
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	Status        string            `json:"status"`
	Created       int64             `json:"created"`
	Metadata      map[string]string `json:"metadata"`
}

func parsePaymentIntent(event stripeEvent, payload []byte, eventType paymentdomain.EventType) (*paymentdomain.Event, error) {
	var intent stripePaymentIntent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(intent.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	amount := intent.Amount
	if eventType == paymentdomain.EventTypePaymentSucceeded && intent.AmountReceived > 0 {
		amount = intent.AmountReceived
	}

	failureCode := ""
	if intent.LastPaymentError != nil {
		failureCode = intent.LastPaymentError.DeclineCode
		if failureCode == "" {
			failureCode = intent.LastPaymentError.Code
		}
	}

	return &paymentdomain.Event{
		Provider:          "stripe",
		ProviderEventID:   event.ID,
		ProviderPaymentID: intent.ID,
		Type:              eventType,
		Amount:            amount,
		Currency:          strings.ToUpper(strings.TrimSpace(intent.Currency)),
		FailureCode:       failureCode,
		Metadata:          intent.Metadata,
		OccurredAt:        timestamp(intent.Created, event.Created),
		RawPayload:        payload,
	}, nil
}

func parseCharge(event stripeEvent, payload []byte) (*paymentdomain.Event, error) {
	var charge stripeCharge
	if err := json.Unmarshal(event.Data.Object, &charge); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(charge.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	amount := charge.Amount
	if charge.AmountRefunded > 0 {
		amount = charge.AmountRefunded
	}
	paymentID := strings.TrimSpace(charge.PaymentIntent)
	if paymentID == "" {
		paymentID = charge.ID
	}

	return &paymentdomain.Event{
		Provider:          "stripe",
		ProviderEventID:   event.ID,
		ProviderPaymentID: paymentID,
		ChargeID:          charge.ID,
		Type:              paymentdomain.EventTypeChargeRefunded,
		Amount:            amount,
		Currency:          strings.ToUpper(strings.TrimSpace(charge.Currency)),
		Metadata:          charge.Metadata,
		OccurredAt:        timestamp(charge.Created, event.Created),
		RawPayload:        payload,
	}, nil
}

func parseDispute(event stripeEvent, payload []byte, eventType paymentdomain.EventType) (*paymentdomain.Event, error) {
	var dispute stripeDispute
	if err := json.Unmarshal(event.Data.Object, &dispute); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(dispute.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	paymentID := strings.TrimSpace(dispute.PaymentIntent)
	if paymentID == "" {
		paymentID = strings.TrimSpace(dispute.Charge)
	}

	return &paymentdomain.Event{
		Provider:          "stripe",
		ProviderEventID:   event.ID,
		ProviderPaymentID: paymentID,
		ChargeID:          strings.TrimSpace(dispute.Charge),
		Type:              eventType,
		Amount:            dispute.Amount,
		Currency:          strings.ToUpper(strings.TrimSpace(dispute.Currency)),
		DisputeID:         dispute.ID,
		DisputeStatus:     strings.TrimSpace(dispute.Status),
		Metadata:          dispute.Metadata,
		OccurredAt:        timestamp(dispute.Created, event.Created),
		RawPayload:        payload,
	}, nil
}

func parseSignatureHeader(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("invalid_signature")
	}
	return timestamp, signatures, nil
}

func timestamp(primary int64, fallback int64) time.Time {
	value := primary
	if value == 0 {
		value = fallback
	}
	if value == 0 {
		return time.Now().UTC()
	}
	return time.Unix(value, 0).UTC()
}
