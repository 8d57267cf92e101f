package courseware

import (
	"github.com/frahmantamala/courseware-platform/internal"
	cwmodel "github.com/frahmantamala/courseware-platform/internal/core/datamodel/courseware"
)

type Decision int

const (
	Granted Decision = iota
	PaymentRequired
)

// CanView is the single access rule for courseware bodies: free content is
// open to everyone, paid content needs a premium caller. The session gate has
// already rejected anonymous requests, so caller is always bound here.
func CanView(caller internal.Caller, cw *cwmodel.Courseware) Decision {
	if cw.IsFree || caller.IsPremium {
		return Granted
	}
	return PaymentRequired
}
