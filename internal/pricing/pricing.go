// Package pricing turns a pickup/return pair and a car-class rate into a day
// count and a total price, and decides whether a range may proceed through
// the booking flow.
//
// Everything here is pure computation over values. The only time-dependent
// predicate, IsValidRange, takes its notion of "now" from an injected Clock.
package pricing

import (
	"time"

	"github.com/pkordes/car-rental/backend/internal/domain"
)

// Day is the length of one rental day. Day counts are elapsed-time based,
// not calendar based: 25 hours is two days.
const Day = 24 * time.Hour

const msPerDay = int64(Day / time.Millisecond)

// Clock is the source of "now" for time-dependent checks.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a plain function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock on every call.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// DayCount returns ceil((end - start) / 24h) using millisecond precision.
//
//	DayCount(t, t)            == 0
//	DayCount(t, t+24h)        == 1
//	DayCount(t, t+24h+1ms)    == 2
//
// Negative ranges are not clamped; callers apply their own policy.
func DayCount(start, end time.Time) int {
	diff := end.UnixMilli() - start.UnixMilli()
	days := diff / msPerDay
	// Integer division truncates toward zero, which is already the ceiling for
	// negative diffs. Positive remainders round up.
	if diff%msPerDay > 0 {
		days++
	}
	return int(days)
}

// TotalPrice is DayCount(start, end) * dailyRate, unrounded.
func TotalPrice(start, end time.Time, dailyRate float64) float64 {
	return float64(DayCount(start, end)) * dailyRate
}

// IsValidRange reports whether start is strictly before end and start is not
// in the past according to clock. clock.Now is sampled on every call, so the
// same range can become invalid as time passes.
func IsValidRange(start, end time.Time, clock Clock) bool {
	if !start.Before(end) {
		return false
	}
	return !start.Before(clock.Now())
}

// Quote computes the BookingQuote for r at rate.
func Quote(r domain.DateRange, rate domain.CarClassRate) domain.BookingQuote {
	return domain.BookingQuote{
		Days:       DayCount(r.Start, r.End),
		DailyRate:  rate.DailyRate,
		TotalPrice: TotalPrice(r.Start, r.End, rate.DailyRate),
		Currency:   rate.Currency,
	}
}
