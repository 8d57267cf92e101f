package auth

import (
	"errors"
	"fmt"
	"time"

	apperrors "github.com/frahmantamala/courseware-platform/internal"
	usermodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service implements the credential store and session lifecycle.
type Service struct {
	users      UserRepository
	sessions   SessionRepository
	bcryptCost int
	sessionTTL time.Duration
	now        func() time.Time
}

func NewService(users UserRepository, sessions SessionRepository, bcryptCost int, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		bcryptCost: bcryptCost,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// Register creates a local user and opens a session for it. Uniqueness races
// are settled by the database: the loser sees a duplicate-key error here.
func (s *Service) Register(dto RegisterDTO) (*SessionInfo, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password", err)
	}

	u := &usermodel.User{
		ID:           uuid.New().String(),
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: hash,
	}

	if err := s.users.Create(u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.classifyConflict(dto)
		}
		return nil, apperrors.NewInternalError("failed to create user", err)
	}

	return s.openSession(u.ID)
}

// classifyConflict decides which unique key lost the race.
func (s *Service) classifyConflict(dto RegisterDTO) error {
	if existing, err := s.users.GetByUsername(dto.Username); err == nil && existing != nil {
		return apperrors.ErrUsernameTaken
	}
	return apperrors.ErrEmailTaken
}

// Authenticate verifies local credentials. Unknown username and wrong
// password are indistinguishable to the caller.
func (s *Service) Authenticate(dto LoginDTO) (*SessionInfo, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.users.GetByUsername(dto.Username)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.openSession(u.ID)
}

// FederatedLogin resolves a provider subject id to a local user, creating one
// on first login. The created account gets an unusable random password so the
// local credential path can never match it.
func (s *Service) FederatedLogin(subjectID, displayName string) (*SessionInfo, error) {
	if subjectID == "" {
		return nil, apperrors.NewValidationFieldError("subject_id", "subject_id is required", apperrors.ErrCodeValidationFailed)
	}

	u, err := s.users.GetByExternalID(subjectID)
	if err == nil {
		return s.openSession(u.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewInternalError("failed to resolve federated user", err)
	}

	created, err := s.createFederatedUser(subjectID, displayName)
	if err != nil {
		return nil, err
	}
	return s.openSession(created.ID)
}

func (s *Service) createFederatedUser(subjectID, displayName string) (*usermodel.User, error) {
	placeholder, err := GenerateSessionToken()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to generate placeholder password", err)
	}
	hash, err := HashPassword(placeholder, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash placeholder password", err)
	}

	username := displayName
	if username == "" {
		username = "user"
	}

	u := &usermodel.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		ExternalID:   &subjectID,
	}

	err = s.users.Create(u)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperrors.NewInternalError("failed to create federated user", err)
	}

	// Either a concurrent login for the same subject won, or the display name
	// collided with an existing username. Re-read first, then retry with a
	// disambiguated username.
	if existing, lookupErr := s.users.GetByExternalID(subjectID); lookupErr == nil {
		return existing, nil
	}

	suffix := uuid.New().String()[:8]
	u.ID = uuid.New().String()
	u.Username = fmt.Sprintf("%s-%s", username, suffix)
	if err := s.users.Create(u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, lookupErr := s.users.GetByExternalID(subjectID); lookupErr == nil {
				return existing, nil
			}
		}
		return nil, apperrors.NewInternalError("failed to create federated user", err)
	}
	return u, nil
}

func (s *Service) openSession(userID string) (*SessionInfo, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to generate session token", err)
	}

	expiresAt := s.now().Add(s.sessionTTL)
	if err := s.sessions.Create(userID, token, expiresAt); err != nil {
		return nil, apperrors.NewInternalError("failed to create session", err)
	}

	return &SessionInfo{Token: token, ExpiresAt: expiresAt}, nil
}

// ResolveSession maps a token to a caller. Expired tokens are deleted eagerly
// and treated as absent.
func (s *Service) ResolveSession(token string) (apperrors.Caller, error) {
	if token == "" {
		return apperrors.Caller{}, apperrors.ErrSessionNotFound
	}

	userID, expiresAt, err := s.sessions.Get(token)
	if err != nil {
		return apperrors.Caller{}, apperrors.ErrSessionNotFound
	}

	if !s.now().Before(expiresAt) {
		_ = s.sessions.Delete(token)
		return apperrors.Caller{}, apperrors.ErrSessionExpired
	}

	u, err := s.users.GetByID(userID)
	if err != nil {
		return apperrors.Caller{}, apperrors.ErrSessionNotFound
	}

	return apperrors.Caller{
		UserID:    u.ID,
		Username:  u.Username,
		IsPremium: u.IsPremium,
	}, nil
}

// Logout destroys the session server-side immediately.
func (s *Service) Logout(token string) error {
	if token == "" {
		return apperrors.ErrSessionNotFound
	}
	if err := s.sessions.Delete(token); err != nil {
		return apperrors.NewInternalError("failed to delete session", err)
	}
	return nil
}

func (s *Service) CurrentUser(userID string) (*UserInfo, error) {
	u, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.NewInternalError("failed to load user", err)
	}
	return ToUserInfo(u), nil
}
