package auth

import (
	"testing"
	"time"

	apperrors "github.com/frahmantamala/courseware-platform/internal"
	usermodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/user"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock UserRepository enforcing the same uniqueness rules as the database.
type mockUserRepository struct {
	byID       map[string]*usermodel.User
	byUsername map[string]*usermodel.User
	byExternal map[string]*usermodel.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		byID:       map[string]*usermodel.User{},
		byUsername: map[string]*usermodel.User{},
		byExternal: map[string]*usermodel.User{},
	}
}

func (m *mockUserRepository) Create(u *usermodel.User) error {
	if _, exists := m.byUsername[u.Username]; exists {
		return gorm.ErrDuplicatedKey
	}
	if u.Email != nil {
		for _, existing := range m.byID {
			if existing.Email != nil && *existing.Email == *u.Email {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if u.ExternalID != nil {
		if _, exists := m.byExternal[*u.ExternalID]; exists {
			return gorm.ErrDuplicatedKey
		}
	}

	copied := *u
	m.byID[u.ID] = &copied
	m.byUsername[u.Username] = &copied
	if u.ExternalID != nil {
		m.byExternal[*u.ExternalID] = &copied
	}
	return nil
}

func (m *mockUserRepository) GetByID(id string) (*usermodel.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) GetByUsername(username string) (*usermodel.User, error) {
	if u, ok := m.byUsername[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepository) GetByExternalID(externalID string) (*usermodel.User, error) {
	if u, ok := m.byExternal[externalID]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type mockSessionRepository struct {
	sessions map[string]struct {
		userID    string
		expiresAt time.Time
	}
}

func newMockSessionRepository() *mockSessionRepository {
	return &mockSessionRepository{
		sessions: map[string]struct {
			userID    string
			expiresAt time.Time
		}{},
	}
}

func (m *mockSessionRepository) Create(userID, token string, expiresAt time.Time) error {
	m.sessions[token] = struct {
		userID    string
		expiresAt time.Time
	}{userID, expiresAt}
	return nil
}

func (m *mockSessionRepository) Get(token string) (string, time.Time, error) {
	if s, ok := m.sessions[token]; ok {
		return s.userID, s.expiresAt, nil
	}
	return "", time.Time{}, gorm.ErrRecordNotFound
}

func (m *mockSessionRepository) Delete(token string) error {
	delete(m.sessions, token)
	return nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service      *Service
		mockUsers    *mockUserRepository
		mockSessions *mockSessionRepository
		sessionTTL   = 24 * time.Hour
	)

	ginkgo.BeforeEach(func() {
		mockUsers = newMockUserRepository()
		mockSessions = newMockSessionRepository()
		service = NewService(mockUsers, mockSessions, bcrypt.MinCost, sessionTTL)
	})

	registerUser := func(username, password string) *SessionInfo {
		session, err := service.Register(RegisterDTO{Username: username, Password: password})
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return session
	}

	ginkgo.Describe("Register", func() {
		ginkgo.Context("when the username is available", func() {
			ginkgo.It("should create the user and open a session", func() {
				// When
				session, err := service.Register(RegisterDTO{Username: "alice", Password: "secret123"})

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(session.Token).ToNot(gomega.BeEmpty())
				gomega.Expect(session.ExpiresAt).To(gomega.BeTemporally("~", time.Now().Add(sessionTTL), time.Minute))

				u, err := mockUsers.GetByUsername("alice")
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(u.IsPremium).To(gomega.BeFalse())
			})

			ginkgo.It("should never store the plaintext password", func() {
				// When
				registerUser("bob", "secret123")

				// Then
				u, err := mockUsers.GetByUsername("bob")
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(u.PasswordHash).ToNot(gomega.Equal("secret123"))
				gomega.Expect(VerifyPassword(u.PasswordHash, "secret123")).To(gomega.Succeed())
			})
		})

		ginkgo.Context("when the username is taken", func() {
			ginkgo.It("should return the username conflict", func() {
				// Given
				registerUser("alice", "secret123")

				// When
				session, err := service.Register(RegisterDTO{Username: "alice", Password: "other-password"})

				// Then
				gomega.Expect(err).To(gomega.Equal(apperrors.ErrUsernameTaken))
				gomega.Expect(session).To(gomega.BeNil())
			})
		})

		ginkgo.Context("when the email is taken", func() {
			ginkgo.It("should return the email conflict", func() {
				// Given
				email := "alice@example.com"
				_, err := service.Register(RegisterDTO{Username: "alice", Email: &email, Password: "secret123"})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// When
				session, err := service.Register(RegisterDTO{Username: "alice2", Email: &email, Password: "secret123"})

				// Then
				gomega.Expect(err).To(gomega.Equal(apperrors.ErrEmailTaken))
				gomega.Expect(session).To(gomega.BeNil())
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should reject a short username", func() {
				// When
				session, err := service.Register(RegisterDTO{Username: "ab", Password: "secret123"})

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(session).To(gomega.BeNil())
			})

			ginkgo.It("should reject a short password", func() {
				// When
				session, err := service.Register(RegisterDTO{Username: "alice", Password: "abc"})

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(session).To(gomega.BeNil())
			})
		})
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.BeforeEach(func() {
			registerUser("alice", "secret123")
		})

		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should open a fresh session", func() {
				// When
				session, err := service.Authenticate(LoginDTO{Username: "alice", Password: "secret123"})

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(session.Token).ToNot(gomega.BeEmpty())
			})

			ginkgo.It("should issue a distinct token per login", func() {
				// When
				first, err1 := service.Authenticate(LoginDTO{Username: "alice", Password: "secret123"})
				second, err2 := service.Authenticate(LoginDTO{Username: "alice", Password: "secret123"})

				// Then
				gomega.Expect(err1).ToNot(gomega.HaveOccurred())
				gomega.Expect(err2).ToNot(gomega.HaveOccurred())
				gomega.Expect(first.Token).ToNot(gomega.Equal(second.Token))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should return the same error for unknown username and wrong password", func() {
				// When
				_, unknownErr := service.Authenticate(LoginDTO{Username: "nobody", Password: "secret123"})
				_, wrongErr := service.Authenticate(LoginDTO{Username: "alice", Password: "wrong-password"})

				// Then
				gomega.Expect(unknownErr).To(gomega.Equal(apperrors.ErrInvalidCredentials))
				gomega.Expect(wrongErr).To(gomega.Equal(apperrors.ErrInvalidCredentials))
			})
		})
	})

	ginkgo.Describe("FederatedLogin", func() {
		ginkgo.Context("on first login", func() {
			ginkgo.It("should create a local user bound to the subject", func() {
				// When
				session, err := service.FederatedLogin("wx-subject-1", "wechat user")

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(session.Token).ToNot(gomega.BeEmpty())

				u, err := mockUsers.GetByExternalID("wx-subject-1")
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(u.Username).To(gomega.Equal("wechat user"))
			})
		})

		ginkgo.Context("on repeat login", func() {
			ginkgo.It("should reuse the existing user", func() {
				// Given
				_, err := service.FederatedLogin("wx-subject-1", "wechat user")
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// When
				_, err = service.FederatedLogin("wx-subject-1", "wechat user")

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(mockUsers.byID).To(gomega.HaveLen(1))
			})
		})

		ginkgo.Context("when the display name collides with an existing username", func() {
			ginkgo.It("should disambiguate instead of failing", func() {
				// Given
				registerUser("alice", "secret123")

				// When
				session, err := service.FederatedLogin("wx-subject-2", "alice")

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(session.Token).ToNot(gomega.BeEmpty())

				u, err := mockUsers.GetByExternalID("wx-subject-2")
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(u.Username).To(gomega.HavePrefix("alice-"))
			})
		})

		ginkgo.Context("when the subject id is empty", func() {
			ginkgo.It("should return a validation error", func() {
				// When
				session, err := service.FederatedLogin("", "someone")

				// Then
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(session).To(gomega.BeNil())
			})
		})
	})

	ginkgo.Describe("ResolveSession", func() {
		var session *SessionInfo

		ginkgo.BeforeEach(func() {
			session = registerUser("alice", "secret123")
		})

		ginkgo.Context("when the token is live", func() {
			ginkgo.It("should return the caller identity", func() {
				// When
				caller, err := service.ResolveSession(session.Token)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(caller.Username).To(gomega.Equal("alice"))
				gomega.Expect(caller.IsPremium).To(gomega.BeFalse())
			})
		})

		ginkgo.Context("when the token is unknown", func() {
			ginkgo.It("should return session not found", func() {
				// When
				_, err := service.ResolveSession("no-such-token")

				// Then
				gomega.Expect(err).To(gomega.Equal(apperrors.ErrSessionNotFound))
			})
		})

		ginkgo.Context("when the token is empty", func() {
			ginkgo.It("should return session not found", func() {
				// When
				_, err := service.ResolveSession("")

				// Then
				gomega.Expect(err).To(gomega.Equal(apperrors.ErrSessionNotFound))
			})
		})

		ginkgo.Context("when the session has expired", func() {
			ginkgo.It("should delete the row and report expiry", func() {
				// Given the clock jumps past the TTL
				service.now = func() time.Time { return time.Now().Add(sessionTTL + time.Minute) }

				// When
				_, err := service.ResolveSession(session.Token)

				// Then
				gomega.Expect(err).To(gomega.Equal(apperrors.ErrSessionExpired))
				gomega.Expect(mockSessions.sessions).ToNot(gomega.HaveKey(session.Token))
			})

			ginkgo.It("should treat a later resolve as an unknown token", func() {
				// Given
				service.now = func() time.Time { return time.Now().Add(sessionTTL + time.Minute) }
				_, _ = service.ResolveSession(session.Token)

				// When
				_, err := service.ResolveSession(session.Token)

				// Then
				gomega.Expect(err).To(gomega.Equal(apperrors.ErrSessionNotFound))
			})
		})
	})

	ginkgo.Describe("Logout", func() {
		ginkgo.It("should destroy the session immediately", func() {
			// Given
			session := registerUser("alice", "secret123")

			// When
			err := service.Logout(session.Token)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			_, resolveErr := service.ResolveSession(session.Token)
			gomega.Expect(resolveErr).To(gomega.Equal(apperrors.ErrSessionNotFound))
		})

		ginkgo.It("should reject an empty token", func() {
			// When
			err := service.Logout("")

			// Then
			gomega.Expect(err).To(gomega.Equal(apperrors.ErrSessionNotFound))
		})
	})

	ginkgo.Describe("CurrentUser", func() {
		ginkgo.It("should return the profile without the password hash", func() {
			// Given
			session := registerUser("alice", "secret123")
			caller, err := service.ResolveSession(session.Token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			// When
			info, err := service.CurrentUser(caller.UserID)

			// Then
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(info.Username).To(gomega.Equal("alice"))
			gomega.Expect(info.IsPremium).To(gomega.BeFalse())
		})

		ginkgo.It("should return not found for an unknown user", func() {
			// When
			info, err := service.CurrentUser("missing")

			// Then
			gomega.Expect(err).To(gomega.Equal(apperrors.ErrUserNotFound))
			gomega.Expect(info).To(gomega.BeNil())
		})
	})
})

var _ = ginkgo.Describe("GenerateSessionToken", func() {
	ginkgo.It("should generate a 64 character hex token", func() {
		// When
		token, err := GenerateSessionToken()

		// Then
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(token).To(gomega.HaveLen(64))
	})

	ginkgo.It("should generate different tokens each time", func() {
		// When
		token1, err1 := GenerateSessionToken()
		token2, err2 := GenerateSessionToken()

		// Then
		gomega.Expect(err1).ToNot(gomega.HaveOccurred())
		gomega.Expect(err2).ToNot(gomega.HaveOccurred())
		gomega.Expect(token1).ToNot(gomega.Equal(token2))
	})
})
