package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/frahmantamala/courseware-platform/internal"
	usermodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/user"
	"golang.org/x/crypto/bcrypt"
)

// SessionCookieName is the HttpOnly cookie carrying the opaque session token.
const SessionCookieName = "session_id"

// UserInfo is the API-facing view of a user; it never carries the hash.
type UserInfo struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email,omitempty"`
	IsPremium bool      `json:"is_premium"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionInfo struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ServiceAPI is what the HTTP layer sees of the credential store and session gate.
type ServiceAPI interface {
	Register(dto RegisterDTO) (*SessionInfo, error)
	Authenticate(dto LoginDTO) (*SessionInfo, error)
	FederatedLogin(subjectID, displayName string) (*SessionInfo, error)
	Logout(token string) error
	ResolveSession(token string) (internal.Caller, error)
	CurrentUser(userID string) (*UserInfo, error)
}

// UserRepository persists user records. Create must surface uniqueness
// violations as gorm.ErrDuplicatedKey so the service can map them to Conflict.
type UserRepository interface {
	Create(u *usermodel.User) error
	GetByID(id string) (*usermodel.User, error)
	GetByUsername(username string) (*usermodel.User, error)
	GetByExternalID(externalID string) (*usermodel.User, error)
}

// SessionRepository stores opaque session tokens. Tokens are independent per
// user; no cross-session coordination is needed.
type SessionRepository interface {
	Create(userID, token string, expiresAt time.Time) error
	Get(token string) (userID string, expiresAt time.Time, err error)
	Delete(token string) error
}

func ToUserInfo(u *usermodel.User) *UserInfo {
	return &UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsPremium: u.IsPremium,
		CreatedAt: u.CreatedAt,
	}
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateSessionToken returns a cryptographically secure opaque token.
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
