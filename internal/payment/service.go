package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/frahmantamala/courseware-platform/internal"
	"github.com/frahmantamala/courseware-platform/internal/core/common/validation"
	paymentmodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/payment"
	"github.com/frahmantamala/courseware-platform/internal/core/events"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entitlements is the slice of the user service the ledger needs: a fresh
// read of the premium flag.
type Entitlements interface {
	IsPremium(userID string) (bool, error)
}

type Service struct {
	repo         Repository
	entitlements Entitlements
	eventBus     *events.EventBus
	settler      Settler
	gatewayURL   string

	// defaultAmountCents is charged when the caller does not name an amount.
	defaultAmountCents int64
	logger             *slog.Logger
}

func NewService(repo Repository, entitlements Entitlements, eventBus *events.EventBus, settler Settler, gatewayURL string, defaultAmountCents int64, logger *slog.Logger) *Service {
	return &Service{
		repo:               repo,
		entitlements:       entitlements,
		eventBus:           eventBus,
		settler:            settler,
		gatewayURL:         gatewayURL,
		defaultAmountCents: defaultAmountCents,
		logger:             logger,
	}
}

// Create opens a pending ledger entry for the caller's upgrade. Premium
// callers are rejected before any row is written.
func (s *Service) Create(caller apperrors.Caller, amountCents int64) (*CreateResult, error) {
	if amountCents == 0 {
		amountCents = s.defaultAmountCents
	}
	if appErr := validation.ValidatePaymentAmount(amountCents); appErr != nil {
		return nil, appErr
	}

	premium, err := s.entitlements.IsPremium(caller.UserID)
	if err != nil {
		return nil, err
	}
	if premium {
		return nil, apperrors.ErrAlreadyEntitled
	}

	p := &paymentmodel.Payment{
		ID:          uuid.New().String(),
		UserID:      caller.UserID,
		AmountCents: amountCents,
		Status:      paymentmodel.StatusPending,
	}

	if err := s.repo.Create(p); err != nil {
		return nil, apperrors.NewInternalError("failed to create payment", err)
	}

	s.logger.Info("payment created",
		"payment_id", p.ID,
		"user_id", caller.UserID,
		"amount_cents", amountCents)

	if s.settler != nil {
		s.settler.EnqueueSettlement(p.ID, amountCents)
	}

	return &CreateResult{
		PaymentID:   p.ID,
		AmountCents: amountCents,
		CheckoutURL: fmt.Sprintf("%s/checkout?payment_id=%s", s.gatewayURL, p.ID),
	}, nil
}

// Confirm drives the single pending -> completed transition and the
// entitlement flip in one transactional unit. Re-confirming a completed
// payment succeeds without side effects.
func (s *Service) Confirm(paymentID, source string) error {
	p, err := s.repo.GetByID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPaymentNotFound
		}
		return apperrors.NewInternalError("failed to load payment", err)
	}

	if p.Status == paymentmodel.StatusCompleted {
		s.logger.Info("payment already completed, confirmation ignored",
			"payment_id", paymentID, "source", source)
		return nil
	}

	won, err := s.repo.ConfirmAndUpgrade(p.ID, p.UserID)
	if err != nil {
		return apperrors.NewInternalError("failed to confirm payment", err)
	}
	if !won {
		// concurrent confirmation got there first; same outcome, no event
		s.logger.Info("payment confirmed concurrently elsewhere",
			"payment_id", paymentID, "source", source)
		return nil
	}

	s.logger.Info("payment completed",
		"payment_id", p.ID,
		"user_id", p.UserID,
		"amount_cents", p.AmountCents,
		"source", source)

	if s.eventBus != nil {
		event := events.NewPaymentCompletedEvent(p.ID, p.UserID, p.AmountCents, source)
		_ = s.eventBus.Publish(context.Background(), event)
	}

	return nil
}

// SimulateSuccess is the user-facing confirmation path: the caller must own
// the payment being confirmed.
func (s *Service) SimulateSuccess(caller apperrors.Caller, paymentID string) error {
	p, err := s.repo.GetByID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrPaymentNotFound
		}
		return apperrors.NewInternalError("failed to load payment", err)
	}

	if p.UserID != caller.UserID {
		return apperrors.ErrNotPaymentOwner
	}

	return s.Confirm(paymentID, SourceSimulated)
}

func (s *Service) Status(paymentID string) (*StatusView, error) {
	p, err := s.repo.GetByID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.NewInternalError("failed to load payment", err)
	}

	return &StatusView{
		ID:          p.ID,
		Status:      p.Status,
		AmountCents: p.AmountCents,
		CreatedAt:   p.CreatedAt,
		CompletedAt: p.CompletedAt,
	}, nil
}
