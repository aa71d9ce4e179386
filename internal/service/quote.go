package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/pricing"
)

// Message keys raised by QuoteService on top of the pricing policy keys.
const (
	MsgInvalidRange = "dates.invalid_range"
	MsgClassUnknown = "booking.class_unknown"
)

// RateLookup is the read side of the static rate table.
type RateLookup interface {
	Lookup(class domain.CarClass) (domain.CarClassRate, error)
	All() []domain.CarClassRate
}

// Policies holds the range rules of each entry point.
type Policies struct {
	// QuickBooking gates the landing page form.
	QuickBooking pricing.Policy
	// Wizard gates every step of the booking wizard and the final submission.
	Wizard pricing.Policy
}

// QuickBookingResult is what the landing page needs to redirect into the wizard.
type QuickBookingResult struct {
	Token string
	Days  int
}

// QuoteResult is a priced date range. Valid is false when the range fails
// IsValidRange or the wizard policy; Problem then carries the reason as a
// *domain.MessageError. The price is filled in either way.
type QuoteResult struct {
	Range         domain.DateRange
	ChecksumValid bool
	Rate          domain.CarClassRate
	Quote         domain.BookingQuote
	Valid         bool
	Problem       error
}

// QuoteService prices date ranges against the rate table.
type QuoteService struct {
	dates    *DateRangeService
	rates    RateLookup
	clock    pricing.Clock
	policies Policies
}

// NewQuoteService constructs a QuoteService. clock supplies "now" for
// IsValidRange and is read on every call.
func NewQuoteService(dates *DateRangeService, rates RateLookup, clock pricing.Clock, policies Policies) *QuoteService {
	return &QuoteService{dates: dates, rates: rates, clock: clock, policies: policies}
}

// Classes returns the rate table in display order.
func (s *QuoteService) Classes() []domain.CarClassRate {
	return s.rates.All()
}

// QuickBooking validates the landing page range and returns the token to
// carry into the wizard.
func (s *QuoteService) QuickBooking(_ context.Context, start, end time.Time) (QuickBookingResult, error) {
	r := domain.DateRange{Start: start, End: end}
	if err := s.policies.QuickBooking.Check(r); err != nil {
		return QuickBookingResult{}, fmt.Errorf("service.QuoteService.QuickBooking: %w", err)
	}
	if !pricing.IsValidRange(start, end, s.clock) {
		return QuickBookingResult{}, fmt.Errorf("service.QuoteService.QuickBooking: %w",
			domain.NewMessageError(domain.ErrValidation, MsgInvalidRange))
	}

	token, err := s.dates.Encode(start, end)
	if err != nil {
		return QuickBookingResult{}, fmt.Errorf("service.QuoteService.QuickBooking: %w", err)
	}
	return QuickBookingResult{Token: token, Days: pricing.DayCount(start, end)}, nil
}

// Quote decodes token and prices it for class.
// A malformed token or unknown class is an error; an out-of-policy range is
// not, it is reported through QuoteResult.Valid.
func (s *QuoteService) Quote(_ context.Context, token string, class domain.CarClass) (QuoteResult, error) {
	d, err := s.dates.Decode(token)
	if err != nil {
		return QuoteResult{}, fmt.Errorf("service.QuoteService.Quote: %w", err)
	}

	rate, err := s.lookup(class)
	if err != nil {
		return QuoteResult{}, fmt.Errorf("service.QuoteService.Quote: %w", err)
	}

	res := s.price(d.DateRange, rate)
	res.ChecksumValid = d.ChecksumValid
	return res, nil
}

// QuoteRange is Quote for explicit instants.
func (s *QuoteService) QuoteRange(_ context.Context, r domain.DateRange, class domain.CarClass) (QuoteResult, error) {
	rate, err := s.lookup(class)
	if err != nil {
		return QuoteResult{}, fmt.Errorf("service.QuoteService.QuoteRange: %w", err)
	}
	res := s.price(r, rate)
	res.ChecksumValid = true
	return res, nil
}

func (s *QuoteService) price(r domain.DateRange, rate domain.CarClassRate) QuoteResult {
	res := QuoteResult{
		Range: r,
		Rate:  rate,
		Quote: pricing.Quote(r, rate),
		Valid: true,
	}
	if !pricing.IsValidRange(r.Start, r.End, s.clock) {
		res.Valid = false
		res.Problem = domain.NewMessageError(domain.ErrValidation, MsgInvalidRange)
		return res
	}
	if err := s.policies.Wizard.Check(r); err != nil {
		res.Valid = false
		res.Problem = err
	}
	return res
}

func (s *QuoteService) lookup(class domain.CarClass) (domain.CarClassRate, error) {
	rate, err := s.rates.Lookup(class)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.CarClassRate{}, domain.NewMessageError(domain.ErrValidation, MsgClassUnknown)
	}
	return rate, err
}
