package payment

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"

	apperrors "github.com/frahmantamala/courseware-platform/internal"
	paymentmodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/payment"
	"github.com/frahmantamala/courseware-platform/internal/core/events"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("WebhookHandler", func() {
	const secret = "webhook-test-callback-secret-0123456789"

	var (
		handler      *WebhookHandler
		repo         *mockPaymentRepository
		entitlements *mockEntitlements
		paymentID    string
		owner        = apperrors.Caller{UserID: "u1", Username: "student"}
	)

	post := func(dto CallbackDTO) *httptest.ResponseRecorder {
		body, err := json.Marshal(dto)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		req := httptest.NewRequest(http.MethodPost, "/api/payment/callback", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		handler.HandleCallback(rec, req)
		return rec
	}

	signedCallback := func(paymentID, status string) CallbackDTO {
		token, err := SignCallbackToken(secret, paymentID)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return CallbackDTO{PaymentID: paymentID, Status: status, Token: token}
	}

	ginkgo.BeforeEach(func() {
		entitlements = newMockEntitlements()
		repo = newMockPaymentRepository(entitlements)
		service := NewService(repo, entitlements, events.NewEventBus(slog.Default()), nil,
			"http://gateway.local", 9900, slog.Default())
		handler = NewWebhookHandler(service, secret)

		result, err := service.Create(owner, 0)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		paymentID = result.PaymentID
	})

	ginkgo.Context("with a valid signed success callback", func() {
		ginkgo.It("should complete the payment and grant premium", func() {
			// When
			rec := post(signedCallback(paymentID, CallbackStatusSuccess))

			// Then
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			p, err := repo.GetByID(paymentID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(p.Status).To(gomega.Equal(paymentmodel.StatusCompleted))
			gomega.Expect(entitlements.premium[owner.UserID]).To(gomega.BeTrue())
		})

		ginkgo.It("should accept a replayed callback without a second grant", func() {
			// Given
			gomega.Expect(post(signedCallback(paymentID, CallbackStatusSuccess)).Code).To(gomega.Equal(http.StatusOK))

			// When
			rec := post(signedCallback(paymentID, CallbackStatusSuccess))

			// Then
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(repo.grantCount).To(gomega.Equal(1))
		})
	})

	ginkgo.Context("with a bad signature", func() {
		ginkgo.It("should reject an unsigned callback", func() {
			// When
			rec := post(CallbackDTO{PaymentID: paymentID, Status: CallbackStatusSuccess, Token: ""})

			// Then
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))

			p, _ := repo.GetByID(paymentID)
			gomega.Expect(p.Status).To(gomega.Equal(paymentmodel.StatusPending))
		})

		ginkgo.It("should reject a token minted for another payment", func() {
			// Given a valid token whose subject names a different payment
			dto := signedCallback("some-other-payment", CallbackStatusSuccess)
			dto.PaymentID = paymentID

			// When
			rec := post(dto)

			// Then
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))

			p, _ := repo.GetByID(paymentID)
			gomega.Expect(p.Status).To(gomega.Equal(paymentmodel.StatusPending))
		})
	})

	ginkgo.Context("with a non-success status", func() {
		ginkgo.It("should leave the row pending and report a validation error", func() {
			// When
			rec := post(signedCallback(paymentID, "failed"))

			// Then
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))

			p, _ := repo.GetByID(paymentID)
			gomega.Expect(p.Status).To(gomega.Equal(paymentmodel.StatusPending))
			gomega.Expect(entitlements.premium[owner.UserID]).To(gomega.BeFalse())
		})
	})

	ginkgo.Context("with an unknown payment id", func() {
		ginkgo.It("should return not found", func() {
			// When
			rec := post(signedCallback("missing", CallbackStatusSuccess))

			// Then
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
		})
	})
})
