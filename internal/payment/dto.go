package payment

import (
	"github.com/frahmantamala/courseware-platform/internal/core/common/validation"
)

// CreatePaymentDTO carries the upgrade amount; zero means "use the
// configured default".
type CreatePaymentDTO struct {
	AmountCents int64 `json:"amount_cents"`
}

func (d CreatePaymentDTO) Validate() error {
	if d.AmountCents == 0 {
		return nil
	}
	if appErr := validation.ValidatePaymentAmount(d.AmountCents); appErr != nil {
		return appErr
	}
	return nil
}

// CallbackDTO is the provider's confirmation. Token is an HS256 JWT signed
// with the shared gateway secret; its subject must name the payment.
type CallbackDTO struct {
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	Token     string `json:"token"`
}

const CallbackStatusSuccess = "success"
