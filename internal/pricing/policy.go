package pricing

import (
	"fmt"
	"time"

	"github.com/pkordes/car-rental/backend/internal/domain"
)

// Policy errors. Each wraps domain.ErrValidation. Check returns them inside a
// *domain.MessageError so the handler can render a localized message.
var (
	ErrReturnBeforePickup = fmt.Errorf("%w: return is before pickup", domain.ErrValidation)
	ErrSameCalendarDay    = fmt.Errorf("%w: pickup and return on the same day", domain.ErrValidation)
	ErrMinimumPeriod      = fmt.Errorf("%w: rental shorter than the minimum period", domain.ErrValidation)
)

// Message keys used with the errors above.
const (
	MsgReturnBeforePickup = "dates.return_before_pickup"
	MsgSameCalendarDay    = "dates.same_day"
	MsgMinimumPeriod      = "dates.minimum_period"
)

// Policy is the range rule applied by one entry point of the site.
// The landing page quick-booking form and the booking wizard use different
// values; each call site passes its own Policy.
type Policy struct {
	// MinimumDays is the smallest acceptable DayCount. Zero disables the check.
	MinimumDays int

	// DisallowSameCalendarDay rejects pickup and return on the same date in
	// Location, even when the elapsed time would satisfy MinimumDays.
	DisallowSameCalendarDay bool

	// Location decides what "same calendar day" means. Nil means UTC.
	Location *time.Location
}

// Check applies the policy to r. Checks run in this order and the first
// failure wins: return before pickup, same calendar day, minimum period.
func (p Policy) Check(r domain.DateRange) error {
	if r.End.Before(r.Start) {
		return domain.NewMessageError(ErrReturnBeforePickup, MsgReturnBeforePickup)
	}

	if p.DisallowSameCalendarDay && sameDay(r.Start, r.End, p.location()) {
		return domain.NewMessageError(ErrSameCalendarDay, MsgSameCalendarDay)
	}

	if p.MinimumDays > 0 && DayCount(r.Start, r.End) < p.MinimumDays {
		return domain.NewMessageError(ErrMinimumPeriod, MsgMinimumPeriod, p.MinimumDays)
	}

	return nil
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
