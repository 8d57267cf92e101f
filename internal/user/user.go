package user

import (
	"errors"
	"log/slog"

	apperrors "github.com/frahmantamala/courseware-platform/internal"
	usermodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// Repository is the entitlement store. GrantPremium is the only write path
// for the premium flag in the whole codebase.
type Repository interface {
	GetByID(id string) (*usermodel.User, error)
	GrantPremium(userID string) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) IsPremium(userID string) (bool, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperrors.ErrUserNotFound
		}
		return false, apperrors.NewInternalError("failed to load user", err)
	}
	return u.IsPremium, nil
}

// GrantPremium raises the user's tier. Granting an already-premium user is a
// no-op, never an error.
func (s *Service) GrantPremium(userID string) error {
	if err := s.repo.GrantPremium(userID); err != nil {
		return apperrors.NewInternalError("failed to grant premium", err)
	}
	s.logger.Info("premium granted", "user_id", userID)
	return nil
}
