package user

import "time"

type User struct {
	ID           string    `gorm:"primaryKey;type:text"`
	Username     string    `gorm:"column:username;uniqueIndex;not null"`
	Email        *string   `gorm:"column:email;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	ExternalID   *string   `gorm:"column:external_id;uniqueIndex"`
	IsPremium    bool      `gorm:"column:is_premium;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (User) TableName() string {
	return "users"
}
