package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/sellora/sellora-backend/pkg/db/models"
	"github.com/sellora/sellora-backend/pkg/enums"
	"github.com/sellora/sellora-backend/pkg/logger"
	"github.com/sellora/sellora-backend/pkg/metrics"
	"github.com/sellora/sellora-backend/pkg/outbox"
	"github.com/sellora/sellora-backend/pkg/outbox/idempotency"
	"github.com/sellora/sellora-backend/pkg/outbox/payloads"
)

const orderNotificationConsumer = "order-notifications"

type creator interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// RecipientLookup resolves an owner key to an email address. A nil lookup
// disables email entirely; in-app notifications are still written.
type RecipientLookup interface {
	EmailFor(ctx context.Context, ownerKey string) (string, bool)
}

// Consumer watches the domain subscription and turns order lifecycle events
// into notification rows plus best-effort email.
type Consumer struct {
	repo         creator
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	mailer       Mailer
	recipients   RecipientLookup
	metrics      *metrics.CheckoutMetrics
	logg         *logger.Logger
}

// NewConsumer builds the order notification consumer. Mailer, recipient
// lookup and metrics may be nil.
func NewConsumer(
	repo creator,
	subscription *pubsub.Subscriber,
	manager *idempotency.Manager,
	mailer Mailer,
	recipients RecipientLookup,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if mailer == nil {
		mailer = NoopMailer{}
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		mailer:       mailer,
		recipients:   recipients,
		metrics:      checkoutMetrics,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if c.process(ctx, msg.Attributes["event_type"], msg.ID, msg.Data) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// process returns true when the message should be acked.
func (c *Consumer) process(ctx context.Context, eventType, messageID string, data []byte) bool {
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": messageID,
		"event_type": eventType,
	})

	kind, ok := notificationKindFor(enums.OutboxEventType(eventType))
	if !ok {
		c.logg.Info(logCtx, "skipping non-order event")
		return true
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return true
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return true
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, orderNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return false
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return true
	}

	notification, err := buildNotification(kind, envelope.Data)
	if err != nil {
		// Malformed payloads never become deliverable; drop them.
		c.logg.Error(logCtx, "failed to build notification", err)
		return true
	}

	if err := c.repo.Create(ctx, notification); err != nil {
		c.logg.Error(logCtx, "failed to store notification", err)
		_ = c.idempotency.Delete(ctx, orderNotificationConsumer, eventID)
		return false
	}
	if c.metrics != nil {
		c.metrics.IncNotification(string(notification.Type))
	}

	c.sendEmail(logCtx, notification)
	c.logg.Info(c.logg.WithOwnerKey(logCtx, notification.OwnerKey), "notification stored")
	return true
}

// sendEmail is best-effort: failures are logged and swallowed so mail can
// never nack an otherwise processed event.
func (c *Consumer) sendEmail(ctx context.Context, notification *models.Notification) {
	if c.recipients == nil {
		return
	}
	address, ok := c.recipients.EmailFor(ctx, notification.OwnerKey)
	if !ok {
		return
	}
	if err := c.mailer.Send(ctx, address, notification.Title, notification.Message); err != nil {
		c.logg.Error(ctx, "email delivery failed", err)
	}
}

func notificationKindFor(eventType enums.OutboxEventType) (enums.NotificationType, bool) {
	switch eventType {
	case enums.EventOrderPlaced:
		return enums.NotificationTypeOrderPlaced, true
	case enums.EventOrderConfirmed:
		return enums.NotificationTypeOrderConfirmed, true
	case enums.EventOrderRejected:
		return enums.NotificationTypeOrderRejected, true
	case enums.EventOrderShipped:
		return enums.NotificationTypeOrderShipped, true
	case enums.EventOrderCanceled:
		return enums.NotificationTypeOrderCanceled, true
	default:
		return "", false
	}
}

func buildNotification(kind enums.NotificationType, data json.RawMessage) (*models.Notification, error) {
	switch kind {
	case enums.NotificationTypeOrderPlaced:
		var payload payloads.OrderPlacedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode order placed payload: %w", err)
		}
		if payload.OwnerKey == "" {
			return nil, fmt.Errorf("owner key missing")
		}
		return &models.Notification{
			OwnerKey: payload.OwnerKey,
			Type:     kind,
			Title:    "Order received",
			Message:  fmt.Sprintf("Your order for %d item(s) totaling $%.2f is awaiting review.", payload.ItemCount, float64(payload.TotalCents)/100),
			OrderID:  &payload.OrderID,
		}, nil

	case enums.NotificationTypeOrderCanceled:
		var payload payloads.OrderCanceledEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode order canceled payload: %w", err)
		}
		if payload.OwnerKey == "" {
			return nil, fmt.Errorf("owner key missing")
		}
		return &models.Notification{
			OwnerKey: payload.OwnerKey,
			Type:     kind,
			Title:    "Order canceled",
			Message:  "Your order was canceled and any reserved stock has been returned.",
			OrderID:  &payload.OrderID,
		}, nil

	default:
		var payload payloads.OrderStateChangedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("decode order state payload: %w", err)
		}
		if payload.OwnerKey == "" {
			return nil, fmt.Errorf("owner key missing")
		}
		notification := &models.Notification{
			OwnerKey: payload.OwnerKey,
			Type:     kind,
			OrderID:  &payload.OrderID,
		}
		switch kind {
		case enums.NotificationTypeOrderConfirmed:
			notification.Title = "Order confirmed"
			notification.Message = "A seller confirmed your order. It will ship soon."
		case enums.NotificationTypeOrderRejected:
			notification.Title = "Order rejected"
			notification.Message = "Your order could not be fulfilled. Reserved stock has been returned."
		case enums.NotificationTypeOrderShipped:
			notification.Title = "Order shipped"
			notification.Message = "Your order is on its way."
		}
		return notification, nil
	}
}
