package courseware

import (
	"time"

	"github.com/frahmantamala/courseware-platform/internal"
	cwmodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/courseware"
)

// View is the metadata shape returned to every authenticated caller,
// regardless of entitlement. The body itself is gated separately.
type View struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	IsFree      bool      `json:"is_free"`
	PriceCents  int64     `json:"price_cents"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
	Accessible  bool      `json:"accessible"`
}

type ServiceAPI interface {
	List(category string) ([]View, error)
	Search(keyword string) ([]View, error)
	Get(caller internal.Caller, id string) (*View, error)
	ContentLocator(caller internal.Caller, id string) (string, error)
}

// Repository reads the catalog. Rows are created by the seeding path; this
// core never writes them.
type Repository interface {
	GetByID(id string) (*cwmodel.Courseware, error)
	List(category string) ([]*cwmodel.Courseware, error)
	Search(keyword string) ([]*cwmodel.Courseware, error)
}

func toView(cw *cwmodel.Courseware, caller internal.Caller) View {
	return View{
		ID:          cw.ID,
		Title:       cw.Title,
		Description: cw.Description,
		Thumbnail:   cw.Thumbnail,
		IsFree:      cw.IsFree,
		PriceCents:  cw.PriceCents,
		Category:    cw.Category,
		CreatedAt:   cw.CreatedAt,
		Accessible:  CanView(caller, cw) == Granted,
	}
}
