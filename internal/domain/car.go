// Package domain contains the core data types for the car rental backend.
// This package has no dependencies on other internal packages and is imported
// by every layer (repo, service, handler).
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CarClass is one of the fixed rental tiers. Each class has a flat daily rate.
type CarClass string

const (
	ClassEconomy  CarClass = "economy"
	ClassStandard CarClass = "standard"
	ClassPremium  CarClass = "premium"
)

// CarClasses lists every class in display order (cheapest first).
var CarClasses = []CarClass{ClassEconomy, ClassStandard, ClassPremium}

// ParseCarClass normalizes s and returns the matching CarClass.
// "comfort" is accepted as an alias of standard because older links use it.
func ParseCarClass(s string) (CarClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ClassEconomy):
		return ClassEconomy, nil
	case string(ClassStandard), "comfort":
		return ClassStandard, nil
	case string(ClassPremium):
		return ClassPremium, nil
	}
	return "", fmt.Errorf("%w: unknown car class %q", ErrValidation, s)
}

// CarClassRate is the daily price for one car class.
// The rate table is static configuration loaded at startup, never user-mutable.
type CarClassRate struct {
	Class     CarClass
	Names     map[string]string // language code -> display name
	DailyRate float64
	Currency  string
}

// Name returns the display name in lang, falling back to English.
func (r CarClassRate) Name(lang string) string {
	if n, ok := r.Names[lang]; ok {
		return n
	}
	return r.Names["en"]
}

// Car is a single vehicle in the rental fleet.
// Available is toggled by the admin dashboard; unavailable cars cannot be booked.
type Car struct {
	ID           uuid.UUID
	Class        CarClass
	Make         string
	Model        string
	Year         int
	Seats        int
	Transmission string // "manual" or "automatic"
	Fuel         string
	ImageURL     string
	Available    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName is the "Make Model" label used in emails and the admin list.
func (c Car) DisplayName() string {
	return strings.TrimSpace(c.Make + " " + c.Model)
}
