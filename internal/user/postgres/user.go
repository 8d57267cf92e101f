package postgres

import (
	"time"

	usermodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/user"
	userpkg "github.com/frahmantamala/courseware-platform/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) userpkg.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id string) (*usermodel.User, error) {
	var u usermodel.User
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GrantPremium(userID string) error {
	return GrantPremium(r.db, userID)
}

// GrantPremium is the single statement that flips the premium flag. The
// payment repository reuses it inside its confirm transaction so the flag
// never gets a second write path.
func GrantPremium(db *gorm.DB, userID string) error {
	return db.Model(&usermodel.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"is_premium": true,
			"updated_at": time.Now(),
		}).Error
}
