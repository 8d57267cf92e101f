package payment

import "time"

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Payment moves through exactly one transition, pending -> completed. A row
// that never receives a confirmation stays pending.
type Payment struct {
	ID          string     `gorm:"primaryKey;type:text"`
	UserID      string     `gorm:"column:user_id;not null;index"`
	AmountCents int64      `gorm:"column:amount_cents;not null"`
	Status      string     `gorm:"column:status;default:pending"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}
