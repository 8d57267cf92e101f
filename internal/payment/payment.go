package payment

import (
	"time"

	"github.com/frahmantamala/courseware-platform/internal"
	paymentmodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/payment"
)

// Confirmation sources, recorded on the completed event.
const (
	SourceProviderCallback = "provider_callback"
	SourceSimulated        = "simulated"
)

type StatusView struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	AmountCents int64      `json:"amount_cents"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type CreateResult struct {
	PaymentID   string `json:"payment_id"`
	AmountCents int64  `json:"amount_cents"`
	CheckoutURL string `json:"checkout_url"`
}

type ServiceAPI interface {
	Create(caller internal.Caller, amountCents int64) (*CreateResult, error)
	Confirm(paymentID, source string) error
	SimulateSuccess(caller internal.Caller, paymentID string) error
	Status(paymentID string) (*StatusView, error)
}

// Repository persists the ledger. ConfirmAndUpgrade must run the status CAS
// and the entitlement flip in one transaction and report whether this call
// won the transition.
type Repository interface {
	Create(p *paymentmodel.Payment) error
	GetByID(id string) (*paymentmodel.Payment, error)
	ConfirmAndUpgrade(paymentID, userID string) (bool, error)
}

// Settler hands a created payment to the mock provider for asynchronous
// settlement. Wiring it is optional; without it payments wait for an
// explicit callback or simulation.
type Settler interface {
	EnqueueSettlement(paymentID string, amountCents int64)
}
