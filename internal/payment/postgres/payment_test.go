package postgres

import (
	"testing"
	"time"

	paymentmodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/payment"
	usermodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/user"
	paymentpkg "github.com/frahmantamala/courseware-platform/internal/payment"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPaymentRepository(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Payment Repository Suite")
}

var _ = ginkgo.Describe("PaymentRepository", func() {
	var (
		db   *gorm.DB
		repo paymentpkg.Repository
		user *usermodel.User
	)

	ginkgo.BeforeEach(func() {
		// Use in-memory SQLite for testing
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
		})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		err = db.AutoMigrate(&usermodel.User{}, &paymentmodel.Payment{})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		user = &usermodel.User{
			ID:           "u1",
			Username:     "student",
			PasswordHash: "x",
		}
		gomega.Expect(db.Create(user).Error).ToNot(gomega.HaveOccurred())

		repo = NewPaymentRepository(db)
	})

	newPending := func(id string) *paymentmodel.Payment {
		return &paymentmodel.Payment{
			ID:          id,
			UserID:      user.ID,
			AmountCents: 9900,
			Status:      paymentmodel.StatusPending,
		}
	}

	ginkgo.Describe("Create and GetByID", func() {
		ginkgo.It("should round-trip a pending payment", func() {
			// When
			err := repo.Create(newPending("pay-1"))

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			p, err := repo.GetByID("pay-1")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(p.Status).To(gomega.Equal(paymentmodel.StatusPending))
			gomega.Expect(p.AmountCents).To(gomega.Equal(int64(9900)))
			gomega.Expect(p.CompletedAt).To(gomega.BeNil())
		})

		ginkgo.It("should return record not found for an unknown id", func() {
			// When
			p, err := repo.GetByID("missing")

			// Then
			gomega.Expect(err).To(gomega.MatchError(gorm.ErrRecordNotFound))
			gomega.Expect(p).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("ConfirmAndUpgrade", func() {
		ginkgo.BeforeEach(func() {
			gomega.Expect(repo.Create(newPending("pay-1"))).To(gomega.Succeed())
		})

		ginkgo.Context("on the first confirmation", func() {
			ginkgo.It("should win the transition and flip the premium flag", func() {
				// When
				won, err := repo.ConfirmAndUpgrade("pay-1", user.ID)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(won).To(gomega.BeTrue())

				p, _ := repo.GetByID("pay-1")
				gomega.Expect(p.Status).To(gomega.Equal(paymentmodel.StatusCompleted))
				gomega.Expect(p.CompletedAt).ToNot(gomega.BeNil())

				var u usermodel.User
				gomega.Expect(db.First(&u, "id = ?", user.ID).Error).ToNot(gomega.HaveOccurred())
				gomega.Expect(u.IsPremium).To(gomega.BeTrue())
			})
		})

		ginkgo.Context("on a repeated confirmation", func() {
			ginkgo.It("should lose the guarded update and change nothing", func() {
				// Given
				won, err := repo.ConfirmAndUpgrade("pay-1", user.ID)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(won).To(gomega.BeTrue())

				before, _ := repo.GetByID("pay-1")

				// When
				wonAgain, err := repo.ConfirmAndUpgrade("pay-1", user.ID)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(wonAgain).To(gomega.BeFalse())

				after, _ := repo.GetByID("pay-1")
				gomega.Expect(after.CompletedAt.Unix()).To(gomega.Equal(before.CompletedAt.Unix()))
			})
		})

		ginkgo.Context("for an unknown payment", func() {
			ginkgo.It("should report no transition", func() {
				// When
				won, err := repo.ConfirmAndUpgrade("missing", user.ID)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(won).To(gomega.BeFalse())
			})
		})
	})
})
