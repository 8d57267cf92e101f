package session

import "time"

// Session binds an opaque token to a user for a fixed window. Expiry is
// absolute from creation; validation never extends it.
type Session struct {
	Token     string    `gorm:"primaryKey;type:text"`
	UserID    string    `gorm:"column:user_id;not null;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
