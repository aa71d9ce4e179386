// Package catalog holds the static car-class rate table.
// The default table is embedded at compile time; RATES_FILE can point at a
// replacement TOML file with the same layout.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pkordes/car-rental/backend/internal/domain"
)

//go:embed rates.toml
var defaultRates []byte

// file mirrors the TOML layout.
type file struct {
	Currency string      `toml:"currency"`
	Classes  []classFile `toml:"class"`
}

type classFile struct {
	ID        string  `toml:"id"`
	DailyRate float64 `toml:"daily_rate"`
	Currency  string  `toml:"currency"` // optional per-class override
	NameBG    string  `toml:"name_bg"`
	NameEN    string  `toml:"name_en"`
}

// RateTable maps every car class to its daily rate. It is read-only after Load.
type RateTable struct {
	rates map[domain.CarClass]domain.CarClassRate
}

// Load parses the embedded default table.
func Load() (*RateTable, error) {
	return Parse(defaultRates)
}

// LoadFile parses the table at path.
func LoadFile(path string) (*RateTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog.LoadFile: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a TOML rate table.
// Every class in domain.CarClasses must appear exactly once with a positive
// rate, a currency, and both bg and en names.
func Parse(b []byte) (*RateTable, error) {
	var f file
	if _, err := toml.Decode(string(b), &f); err != nil {
		return nil, fmt.Errorf("catalog.Parse: %w", err)
	}

	rates := make(map[domain.CarClass]domain.CarClassRate, len(f.Classes))
	for _, c := range f.Classes {
		class, err := domain.ParseCarClass(c.ID)
		if err != nil {
			return nil, fmt.Errorf("catalog.Parse: %w", err)
		}
		if _, dup := rates[class]; dup {
			return nil, fmt.Errorf("catalog.Parse: class %q listed twice", class)
		}
		if c.DailyRate <= 0 {
			return nil, fmt.Errorf("catalog.Parse: class %q: daily_rate must be positive", class)
		}

		currency := strings.ToUpper(strings.TrimSpace(c.Currency))
		if currency == "" {
			currency = strings.ToUpper(strings.TrimSpace(f.Currency))
		}
		if currency == "" {
			return nil, fmt.Errorf("catalog.Parse: class %q: currency is required", class)
		}
		if c.NameBG == "" || c.NameEN == "" {
			return nil, fmt.Errorf("catalog.Parse: class %q: name_bg and name_en are required", class)
		}

		rates[class] = domain.CarClassRate{
			Class:     class,
			Names:     map[string]string{"bg": c.NameBG, "en": c.NameEN},
			DailyRate: c.DailyRate,
			Currency:  currency,
		}
	}

	for _, class := range domain.CarClasses {
		if _, ok := rates[class]; !ok {
			return nil, fmt.Errorf("catalog.Parse: class %q is missing", class)
		}
	}

	return &RateTable{rates: rates}, nil
}

// Lookup returns the rate for class, or domain.ErrNotFound.
func (t *RateTable) Lookup(class domain.CarClass) (domain.CarClassRate, error) {
	r, ok := t.rates[class]
	if !ok {
		return domain.CarClassRate{}, fmt.Errorf("catalog.RateTable.Lookup %q: %w", class, domain.ErrNotFound)
	}
	return r, nil
}

// All returns every rate in domain.CarClasses order.
func (t *RateTable) All() []domain.CarClassRate {
	out := make([]domain.CarClassRate, 0, len(domain.CarClasses))
	for _, class := range domain.CarClasses {
		out = append(out, t.rates[class])
	}
	return out
}
