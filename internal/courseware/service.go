package courseware

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	apperrors "github.com/frahmantamala/courseware-platform/internal"
	cwmodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/courseware"
	"gorm.io/gorm"
)

type Service struct {
	repo       Repository
	contentDir string
	logger     *slog.Logger
}

func NewService(repo Repository, contentDir string, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		contentDir: contentDir,
		logger:     logger,
	}
}

func (s *Service) List(category string) ([]View, error) {
	rows, err := s.repo.List(category)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list coursewares", err)
	}
	return s.views(rows), nil
}

func (s *Service) Search(keyword string) ([]View, error) {
	rows, err := s.repo.Search(keyword)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to search coursewares", err)
	}
	return s.views(rows), nil
}

// views builds caller-independent listings; Accessible is filled per request
// by Get, listings deliberately report only the monetization flags.
func (s *Service) views(rows []*cwmodel.Courseware) []View {
	out := make([]View, 0, len(rows))
	for _, cw := range rows {
		v := toView(cw, apperrors.Caller{})
		v.Accessible = cw.IsFree
		out = append(out, v)
	}
	return out
}

// Get returns metadata; always granted for an authenticated caller.
func (s *Service) Get(caller apperrors.Caller, id string) (*View, error) {
	cw, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCoursewareNotFound
		}
		return nil, apperrors.NewInternalError("failed to load courseware", err)
	}

	v := toView(cw, caller)
	return &v, nil
}

// ContentLocator applies the access rule and resolves the body's file path
// inside the content directory. Path traversal in stored file paths is
// rejected.
func (s *Service) ContentLocator(caller apperrors.Caller, id string) (string, error) {
	cw, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrCoursewareNotFound
		}
		return "", apperrors.NewInternalError("failed to load courseware", err)
	}

	if CanView(caller, cw) != Granted {
		s.logger.Info("content access denied",
			"courseware_id", cw.ID,
			"user_id", caller.UserID)
		return "", apperrors.ErrPaymentRequired
	}

	filename := filepath.Base(strings.TrimPrefix(cw.FilePath, "/coursewares/"))
	return filepath.Join(s.contentDir, filename), nil
}
