package webhook

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	affiliatedomain "github.com/nakmuayhub/platform/internal/affiliate/domain"
	bookingdomain "github.com/nakmuayhub/platform/internal/booking/domain"
	"github.com/nakmuayhub/platform/internal/clock"
	mailqueueservice "github.com/nakmuayhub/platform/internal/mailqueue/service"
	notificationdomain "github.com/nakmuayhub/platform/internal/notification/domain"
	orderdomain "github.com/nakmuayhub/platform/internal/order/domain"
	paymentdomain "github.com/nakmuayhub/platform/internal/payment/domain"
	"github.com/nakmuayhub/platform/internal/payment/stripe"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	GenID            *snowflake.Node
	Clock            clock.Clock
	Repo             paymentdomain.Repository
	BookingRepo      bookingdomain.Repository
	OrderRepo        orderdomain.Repository
	AffiliateRepo    affiliatedomain.Repository
	NotificationRepo notificationdomain.Repository
	MailQueue        *mailqueueservice.Service
}

// Service drives local order/booking/affiliate state from provider
// webhook events. Every status-changing write is conditional on current
// state, so redelivery of the same event is a no-op rather than a
// double-credit.
type Service struct {
	db               *gorm.DB
	log              *zap.Logger
	genID            *snowflake.Node
	clock            clock.Clock
	repo             paymentdomain.Repository
	bookingRepo      bookingdomain.Repository
	orderRepo        orderdomain.Repository
	affiliateRepo    affiliatedomain.Repository
	notificationRepo notificationdomain.Repository
	mailQueue        *mailqueueservice.Service
}

func New(p Params) *Service {
	return &Service{
		db:               p.DB,
		log:              p.Log.Named("payment.webhook"),
		genID:            p.GenID,
		clock:            p.Clock,
		repo:             p.Repo,
		bookingRepo:      p.BookingRepo,
		orderRepo:        p.OrderRepo,
		affiliateRepo:    p.AffiliateRepo,
		notificationRepo: p.NotificationRepo,
		mailQueue:        p.MailQueue,
	}
}

// HandleEvent applies one parsed provider event exactly once in effect.
// The event record insert is the dedup point: the first delivery wins,
// a redelivery of an already-processed event short-circuits with
// ErrEventAlreadyProcessed.
func (s *Service) HandleEvent(ctx context.Context, event *paymentdomain.Event) error {
	if event == nil || event.ProviderEventID == "" || event.ProviderPaymentID == "" {
		return paymentdomain.ErrInvalidEvent
	}

	now := s.clock.Now()
	record := &paymentdomain.EventRecord{
		ID:              s.genID.Generate(),
		Provider:        event.Provider,
		ProviderEventID: event.ProviderEventID,
		EventType:       string(event.Type),
		Payload:         datatypes.JSON(event.RawPayload),
		ReceivedAt:      now,
	}

	inserted, err := s.repo.InsertEvent(ctx, s.db, record)
	if err != nil {
		return err
	}
	if !inserted {
		stored, err := s.repo.FindEvent(ctx, s.db, event.Provider, event.ProviderEventID)
		if err != nil {
			return err
		}
		if stored == nil {
			return paymentdomain.ErrInvalidEvent
		}
		if stored.ProcessedAt != nil {
			return paymentdomain.ErrEventAlreadyProcessed
		}
		record = stored
	}

	switch event.Type {
	case paymentdomain.EventTypePaymentSucceeded:
		err = s.handleSucceeded(ctx, event, now)
	case paymentdomain.EventTypePaymentFailed:
		err = s.handleFailed(ctx, event, now)
	case paymentdomain.EventTypePaymentCanceled:
		err = s.handleCanceled(ctx, event, now)
	case paymentdomain.EventTypeChargeRefunded:
		err = s.handleRefund(ctx, event, now)
	case paymentdomain.EventTypeDisputeCreated, paymentdomain.EventTypeDisputeUpdated, paymentdomain.EventTypeDisputeClosed:
		err = s.handleDispute(ctx, event, now)
	default:
		return paymentdomain.ErrInvalidEvent
	}
	if err != nil {
		return err
	}

	return s.repo.MarkEventProcessed(ctx, s.db, record.ID, now)
}

func (s *Service) handleSucceeded(ctx context.Context, event *paymentdomain.Event, now time.Time) error {
	payment, err := s.repo.FindByProviderPaymentID(ctx, s.db, event.ProviderPaymentID)
	if err != nil {
		return err
	}
	if _, err := s.repo.SetStatus(ctx, s.db, event.ProviderPaymentID,
		[]string{paymentdomain.PaymentStatusPending}, paymentdomain.PaymentStatusSucceeded, nil, now); err != nil {
		return err
	}
	if payment == nil {
		// Out-of-order delivery: the checkout row isn't visible yet. The
		// conditional update above still lands if it appears later under
		// the same id; skip side effects for data we don't have.
		s.log.Warn("payment record not found for succeeded event",
			zap.String("provider_payment_id", event.ProviderPaymentID))
		return nil
	}

	bookingID := s.resolveBookingID(ctx, event, payment)
	if bookingID != nil {
		changed, err := s.bookingRepo.MarkPaid(ctx, s.db, *bookingID, now)
		if err != nil {
			return err
		}
		if changed {
			s.confirmBookingSideEffects(ctx, *bookingID, now)
		}
	}

	if orderID := s.resolveOrderID(event, payment); orderID != nil {
		changed, err := s.orderRepo.MarkPaid(ctx, s.db, *orderID, now)
		if err != nil {
			return err
		}
		if changed {
			s.orderPaidSideEffects(ctx, *orderID, now)
		}
	}

	return nil
}

// confirmBookingSideEffects runs the best-effort tier for a booking that
// just became paid. Failures here are logged and never roll back the
// payment transition.
func (s *Service) confirmBookingSideEffects(ctx context.Context, bookingID uuid.UUID, now time.Time) {
	booking, err := s.bookingRepo.FindByID(ctx, s.db, bookingID)
	if err != nil || booking == nil {
		s.log.Warn("load booking for side effects",
			zap.String("booking_id", bookingID.String()), zap.Error(err))
		return
	}

	s.bestEffort("confirm affiliate conversion", func() error {
		_, err := s.affiliateRepo.ConfirmWherePending(ctx, s.db, bookingID, now)
		return err
	})
	s.bestEffort("enqueue receipt email", func() error {
		subject := "Your booking is confirmed"
		body := fmt.Sprintf("<p>Payment received for booking %s. See you at the gym.</p>", booking.ID)
		return s.mailQueue.Enqueue(ctx, booking.UserEmail, subject, body, now)
	})
	s.bestEffort("insert payment notification", func() error {
		return s.notificationRepo.Insert(ctx, s.db, &notificationdomain.Notification{
			ID:        uuid.New(),
			UserID:    booking.UserID,
			Kind:      notificationdomain.KindPaymentReceived,
			Title:     "Payment received",
			Body:      "Your booking is confirmed.",
			CreatedAt: now,
		})
	})
}

func (s *Service) orderPaidSideEffects(ctx context.Context, orderID uuid.UUID, now time.Time) {
	order, err := s.orderRepo.FindByID(ctx, s.db, orderID)
	if err != nil || order == nil {
		s.log.Warn("load order for side effects",
			zap.String("order_id", orderID.String()), zap.Error(err))
		return
	}
	s.bestEffort("enqueue order receipt email", func() error {
		subject := "Your order is confirmed"
		body := fmt.Sprintf("<p>Payment received for order %s.</p>", order.ID)
		return s.mailQueue.Enqueue(ctx, order.UserEmail, subject, body, now)
	})
}

func (s *Service) handleFailed(ctx context.Context, event *paymentdomain.Event, now time.Time) error {
	failureCode := event.FailureCode
	var codePtr *string
	if failureCode != "" {
		codePtr = &failureCode
	}

	payment, err := s.repo.FindByProviderPaymentID(ctx, s.db, event.ProviderPaymentID)
	if err != nil {
		return err
	}
	if _, err := s.repo.SetStatus(ctx, s.db, event.ProviderPaymentID,
		[]string{paymentdomain.PaymentStatusPending}, paymentdomain.PaymentStatusFailed, codePtr, now); err != nil {
		return err
	}
	if payment == nil {
		s.log.Warn("payment record not found for failed event",
			zap.String("provider_payment_id", event.ProviderPaymentID))
		return nil
	}

	bookingID := s.resolveBookingID(ctx, event, payment)
	if bookingID == nil {
		return nil
	}
	changed, err := s.bookingRepo.MarkPaymentFailed(ctx, s.db, *bookingID, now)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	booking, err := s.bookingRepo.FindByID(ctx, s.db, *bookingID)
	if err != nil || booking == nil {
		s.log.Warn("load booking for failure side effects",
			zap.String("booking_id", bookingID.String()), zap.Error(err))
		return nil
	}

	copyText := failureCopy(failureCode)
	s.bestEffort("enqueue payment failure email", func() error {
		return s.mailQueue.Enqueue(ctx, booking.UserEmail, "Payment unsuccessful", copyText, now)
	})
	s.bestEffort("insert failure notification", func() error {
		return s.notificationRepo.Insert(ctx, s.db, &notificationdomain.Notification{
			ID:        uuid.New(),
			UserID:    booking.UserID,
			Kind:      notificationdomain.KindPaymentFailed,
			Title:     "Payment unsuccessful",
			Body:      copyText,
			CreatedAt: now,
		})
	})
	return nil
}

func (s *Service) handleCanceled(ctx context.Context, event *paymentdomain.Event, now time.Time) error {
	payment, err := s.repo.FindByProviderPaymentID(ctx, s.db, event.ProviderPaymentID)
	if err != nil {
		return err
	}
	if _, err := s.repo.SetStatus(ctx, s.db, event.ProviderPaymentID,
		[]string{paymentdomain.PaymentStatusPending}, paymentdomain.PaymentStatusCanceled, nil, now); err != nil {
		return err
	}
	if payment == nil {
		s.log.Warn("payment record not found for canceled event",
			zap.String("provider_payment_id", event.ProviderPaymentID))
		return nil
	}

	if bookingID := s.resolveBookingID(ctx, event, payment); bookingID != nil {
		if _, err := s.bookingRepo.MarkCancelled(ctx, s.db, *bookingID, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) handleRefund(ctx context.Context, event *paymentdomain.Event, now time.Time) error {
	payment, err := s.repo.FindByProviderPaymentID(ctx, s.db, event.ProviderPaymentID)
	if err != nil {
		return err
	}
	if _, err := s.repo.SetStatus(ctx, s.db, event.ProviderPaymentID,
		[]string{paymentdomain.PaymentStatusSucceeded, paymentdomain.PaymentStatusDisputed},
		paymentdomain.PaymentStatusRefunded, nil, now); err != nil {
		return err
	}

	booking, err := s.resolveRefundBooking(ctx, event, payment)
	if err != nil {
		return err
	}
	if booking != nil {
		changed, err := s.bookingRepo.MarkRefunded(ctx, s.db, booking.ID, now)
		if err != nil {
			return err
		}
		if changed {
			s.bestEffort("insert refund notification", func() error {
				return s.notificationRepo.Insert(ctx, s.db, &notificationdomain.Notification{
					ID:        uuid.New(),
					UserID:    booking.UserID,
					Kind:      notificationdomain.KindRefundIssued,
					Title:     "Refund issued",
					Body:      "Your booking payment has been refunded.",
					CreatedAt: now,
				})
			})
			s.bestEffort("enqueue refund email", func() error {
				body := fmt.Sprintf("<p>Your payment for booking %s has been refunded.</p>", booking.ID)
				return s.mailQueue.Enqueue(ctx, booking.UserEmail, "Refund issued", body, now)
			})
		}
	} else {
		s.log.Warn("no booking found for refund event",
			zap.String("provider_payment_id", event.ProviderPaymentID))
	}

	if order, err := s.orderRepo.FindByPaymentID(ctx, s.db, event.ProviderPaymentID); err == nil && order != nil {
		if _, err := s.orderRepo.MarkRefunded(ctx, s.db, order.ID, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) handleDispute(ctx context.Context, event *paymentdomain.Event, now time.Time) error {
	switch event.Type {
	case paymentdomain.EventTypeDisputeCreated:
		if _, err := s.repo.SetStatus(ctx, s.db, event.ProviderPaymentID,
			[]string{paymentdomain.PaymentStatusSucceeded}, paymentdomain.PaymentStatusDisputed, nil, now); err != nil {
			return err
		}
	case paymentdomain.EventTypeDisputeClosed:
		if event.DisputeStatus == "won" {
			if _, err := s.repo.SetStatus(ctx, s.db, event.ProviderPaymentID,
				[]string{paymentdomain.PaymentStatusDisputed}, paymentdomain.PaymentStatusSucceeded, nil, now); err != nil {
				return err
			}
		} else if event.DisputeStatus == "lost" {
			if _, err := s.repo.SetStatus(ctx, s.db, event.ProviderPaymentID,
				[]string{paymentdomain.PaymentStatusDisputed}, paymentdomain.PaymentStatusRefunded, nil, now); err != nil {
				return err
			}
		}
	}

	s.log.Info("dispute event",
		zap.String("type", string(event.Type)),
		zap.String("dispute_id", event.DisputeID),
		zap.String("dispute_status", event.DisputeStatus),
		zap.String("provider_payment_id", event.ProviderPaymentID),
	)
	return nil
}

// resolveBookingID prefers explicit event metadata over the payment
// row's back-reference.
func (s *Service) resolveBookingID(ctx context.Context, event *paymentdomain.Event, payment *paymentdomain.Payment) *uuid.UUID {
	if id := parseUUIDMeta(event.Metadata, "bookingId"); id != nil {
		return id
	}
	if payment != nil && payment.BookingID != nil {
		return payment.BookingID
	}
	return nil
}

func (s *Service) resolveOrderID(event *paymentdomain.Event, payment *paymentdomain.Payment) *uuid.UUID {
	if id := parseUUIDMeta(event.Metadata, "orderId"); id != nil {
		return id
	}
	if payment != nil && payment.OrderID != nil {
		return payment.OrderID
	}
	return nil
}

// resolveRefundBooking walks the three fallback paths in order: charge
// metadata, the payment row's stored reference, then a direct lookup on
// the booking table by payment id. First match wins.
func (s *Service) resolveRefundBooking(ctx context.Context, event *paymentdomain.Event, payment *paymentdomain.Payment) (*bookingdomain.Booking, error) {
	if id := parseUUIDMeta(event.Metadata, "bookingId"); id != nil {
		booking, err := s.bookingRepo.FindByID(ctx, s.db, *id)
		if err != nil {
			return nil, err
		}
		if booking != nil {
			return booking, nil
		}
	}

	if payment != nil {
		if payment.BookingID != nil {
			booking, err := s.bookingRepo.FindByID(ctx, s.db, *payment.BookingID)
			if err != nil {
				return nil, err
			}
			if booking != nil {
				return booking, nil
			}
		}
		if id := parseUUIDMetaAny(payment.Metadata, "bookingId"); id != nil {
			booking, err := s.bookingRepo.FindByID(ctx, s.db, *id)
			if err != nil {
				return nil, err
			}
			if booking != nil {
				return booking, nil
			}
		}
	}

	return s.bookingRepo.FindByPaymentID(ctx, s.db, event.ProviderPaymentID)
}

func (s *Service) bestEffort(name string, fn func() error) {
	if err := fn(); err != nil {
		s.log.Warn(name, zap.Error(err))
	}
}

func failureCopy(code string) string {
	switch stripe.ClassifyFailure(code) {
	case stripe.FailureCardDeclined:
		return "Your card was declined. Please try a different payment method."
	case stripe.FailureInsufficientFunds:
		return "Your card has insufficient funds. Please try a different card."
	case stripe.FailureExpiredCard:
		return "Your card has expired. Please update your payment details."
	default:
		return "We could not process your payment. Please try again."
	}
}

func parseUUIDMeta(metadata map[string]string, key string) *uuid.UUID {
	if metadata == nil {
		return nil
	}
	raw, ok := metadata[key]
	if !ok {
		return nil
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &parsed
}

func parseUUIDMetaAny(metadata datatypes.JSONMap, key string) *uuid.UUID {
	if metadata == nil {
		return nil
	}
	raw, ok := metadata[key].(string)
	if !ok {
		return nil
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &parsed
}
