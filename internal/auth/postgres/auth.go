package postgres

import (
	"time"

	"github.com/frahmantamala/courseware-platform/internal/auth"
	sessionmodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/session"
	usermodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) auth.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *usermodel.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id string) (*usermodel.User, error) {
	var u usermodel.User
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(username string) (*usermodel.User, error) {
	var u usermodel.User
	if err := r.db.Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByExternalID(externalID string) (*usermodel.User, error) {
	var u usermodel.User
	if err := r.db.Where("external_id = ?", externalID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) auth.SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(userID, token string, expiresAt time.Time) error {
	return r.db.Create(&sessionmodel.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}).Error
}

func (r *SessionRepository) Get(token string) (string, time.Time, error) {
	var s sessionmodel.Session
	if err := r.db.Where("token = ?", token).First(&s).Error; err != nil {
		return "", time.Time{}, err
	}
	return s.UserID, s.ExpiresAt, nil
}

func (r *SessionRepository) Delete(token string) error {
	return r.db.Where("token = ?", token).Delete(&sessionmodel.Session{}).Error
}
