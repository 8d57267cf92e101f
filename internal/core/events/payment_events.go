package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentCompleted = "payment.completed"
	EventTypeUserUpgraded     = "user.upgraded"
)

// PaymentCompletedEvent fires after the confirm transaction commits. It is
// notification only; the entitlement flip already happened inside the
// transaction.
type PaymentCompletedEvent struct {
	BaseEvent
	PaymentID   string `json:"payment_id"`
	UserID      string `json:"user_id"`
	AmountCents int64  `json:"amount_cents"`
	Source      string `json:"source"`
}

func NewPaymentCompletedEvent(paymentID, userID string, amountCents int64, source string) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":   paymentID,
				"user_id":      userID,
				"amount_cents": amountCents,
				"source":       source,
			},
		},
		PaymentID:   paymentID,
		UserID:      userID,
		AmountCents: amountCents,
		Source:      source,
	}
}

type UserUpgradedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	PaymentID string `json:"payment_id"`
}

func NewUserUpgradedEvent(userID, paymentID string) *UserUpgradedEvent {
	return &UserUpgradedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserUpgraded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"payment_id": paymentID,
			},
		},
		UserID:    userID,
		PaymentID: paymentID,
	}
}
