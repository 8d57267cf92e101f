package postgres

import (
	"time"

	paymentmodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/payment"
	paymentpkg "github.com/frahmantamala/courseware-platform/internal/payment"
	userpostgres "github.com/frahmantamala/courseware-platform/internal/user/postgres"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) paymentpkg.Repository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *paymentmodel.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id string) (*paymentmodel.Payment, error) {
	var p paymentmodel.Payment
	if err := r.db.Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ConfirmAndUpgrade runs the status transition and the entitlement flip in
// one transaction. The guarded UPDATE only matches a pending row, so under
// concurrent confirmations exactly one caller sees won == true.
func (r *PaymentRepository) ConfirmAndUpgrade(paymentID, userID string) (bool, error) {
	won := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&paymentmodel.Payment{}).
			Where("id = ? AND status = ?", paymentID, paymentmodel.StatusPending).
			Updates(map[string]interface{}{
				"status":       paymentmodel.StatusCompleted,
				"completed_at": now,
				"updated_at":   now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := userpostgres.GrantPremium(tx, userID); err != nil {
			return err
		}
		won = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return won, nil
}
