package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Payment mirrors a provider-side payment intent or charge. The row is
// created when checkout starts; webhooks only transition its status.
type Payment struct {
	ID                snowflake.ID      `json:"id" gorm:"primaryKey"`
	ProviderPaymentID string            `json:"provider_payment_id" gorm:"type:text;not null;uniqueIndex:ux_payments_provider_payment_id"`
	BookingID         *uuid.UUID        `json:"booking_id,omitempty" gorm:"type:uuid"`
	OrderID           *uuid.UUID        `json:"order_id,omitempty" gorm:"type:uuid"`
	Amount            int64             `json:"amount" gorm:"not null;default:0"`
	Currency          string            `json:"currency" gorm:"type:text;not null;default:'THB'"`
	Status            string            `json:"status" gorm:"type:text;not null;default:'pending'"`
	FailureCode       *string           `json:"failure_code,omitempty" gorm:"type:text"`
	Metadata          datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt         time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Payment) TableName() string { return "payments" }

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusCanceled  = "canceled"
	PaymentStatusRefunded  = "refunded"
	PaymentStatusDisputed  = "disputed"
)

// EventRecord deduplicates webhook deliveries by provider event id.
// First writer wins; redeliveries find the row and short-circuit once
// processed_at is set.
type EventRecord struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	Provider        string         `json:"provider" gorm:"type:text;not null;uniqueIndex:ux_payment_events_provider_event,priority:1"`
	ProviderEventID string         `json:"provider_event_id" gorm:"type:text;not null;uniqueIndex:ux_payment_events_provider_event,priority:2"`
	EventType       string         `json:"event_type" gorm:"type:text;not null"`
	Payload         datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	ReceivedAt      time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt     *time.Time     `json:"processed_at"`
}

func (EventRecord) TableName() string { return "payment_events" }

// EventType is the closed set of provider callbacks this system acts on.
type EventType string

const (
	EventTypePaymentSucceeded EventType = "payment_succeeded"
	EventTypePaymentFailed    EventType = "payment_failed"
	EventTypePaymentCanceled  EventType = "payment_canceled"
	EventTypeChargeRefunded   EventType = "charge_refunded"
	EventTypeDisputeCreated   EventType = "dispute_created"
	EventTypeDisputeUpdated   EventType = "dispute_updated"
	EventTypeDisputeClosed    EventType = "dispute_closed"
)

// Event is the canonical payment event parsed from a provider payload.
type Event struct {
	Provider          string
	ProviderEventID   string
	ProviderPaymentID string
	ChargeID          string
	Type              EventType
	Amount            int64
	Currency          string
	FailureCode       string
	DisputeID         string
	DisputeStatus     string
	Metadata          map[string]string
	OccurredAt        time.Time
	RawPayload        []byte
}

var (
	ErrInvalidSignature      = errors.New("invalid_signature")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrInvalidEvent          = errors.New("invalid_event")
	ErrEventIgnored          = errors.New("event_ignored")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
)
