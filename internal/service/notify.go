package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/i18n"
)

// Mailer delivers a templated email.
type Mailer interface {
	Send(ctx context.Context, templateID string, params map[string]string) error
}

// EmailTemplates names the delivery templates and the owner's inbox.
// An empty template ID disables that email.
type EmailTemplates struct {
	CustomerConfirmation string
	OwnerNotification    string
	Contact              string
	OwnerEmail           string
}

// Notifier composes the booking and contact emails. A nil *Notifier sends nothing.
// Delivery failures are logged and never returned: a sent booking stays sent.
type Notifier struct {
	mailer    Mailer
	templates EmailTemplates
	loc       *time.Location
	log       *slog.Logger
}

// NewNotifier constructs a Notifier. loc formats dates in the emails; nil means UTC.
// mailer may be nil, which disables email entirely.
func NewNotifier(mailer Mailer, templates EmailTemplates, loc *time.Location, log *slog.Logger) *Notifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Notifier{mailer: mailer, templates: templates, loc: loc, log: log}
}

const emailTimeLayout = "02.01.2006 15:04"

// BookingPlaced sends the customer confirmation and the owner notification.
func (n *Notifier) BookingPlaced(ctx context.Context, b domain.Booking, car domain.Car) {
	if n == nil {
		return
	}
	lang := b.Locale
	params := map[string]string{
		"reservation_id": b.ReservationID,
		"car":            car.DisplayName(),
		"car_class":      string(car.Class),
		"pickup":         b.Start.In(n.loc).Format(emailTimeLayout),
		"return":         b.End.In(n.loc).Format(emailTimeLayout),
		"days":           fmt.Sprintf("%d", b.Days),
		"daily_rate":     fmt.Sprintf("%.2f", b.DailyRate),
		"total_price":    fmt.Sprintf("%.2f", b.TotalPrice),
		"currency":       b.Currency,
		"client_name":    b.ClientName,
		"client_phone":   b.ClientPhone,
		"client_email":   b.ClientEmail,
		"locale":         lang,
	}

	customer := withParams(params, map[string]string{
		"to_email": b.ClientEmail,
		"to_name":  b.ClientName,
		"subject":  i18n.T("email.customer.subject", lang, b.ReservationID),
	})
	n.send(ctx, "customer_confirmation", n.templates.CustomerConfirmation, customer)

	owner := withParams(params, map[string]string{
		"to_email": n.templates.OwnerEmail,
		"reply_to": b.ClientEmail,
		// The owner reads Bulgarian regardless of the customer's language.
		"subject": i18n.T("email.owner.subject", i18n.Default, b.ClientName),
	})
	n.send(ctx, "owner_notification", n.templates.OwnerNotification, owner)
}

// Contact forwards a contact form message to the owner. Unlike booking
// emails, the caller needs to know when this fails, so the error is returned.
func (n *Notifier) Contact(ctx context.Context, m domain.ContactMessage) error {
	if n == nil || n.mailer == nil || n.templates.Contact == "" {
		return fmt.Errorf("contact email not configured: %w", domain.ErrUpstream)
	}
	return n.mailer.Send(ctx, n.templates.Contact, map[string]string{
		"to_email":     n.templates.OwnerEmail,
		"reply_to":     m.Email,
		"subject":      i18n.T("email.contact.subject", i18n.Default, m.Name),
		"client_name":  m.Name,
		"client_email": m.Email,
		"client_phone": m.Phone,
		"message":      m.Message,
		"locale":       m.Locale,
	})
}

func (n *Notifier) send(ctx context.Context, kind, templateID string, params map[string]string) {
	if n.mailer == nil || templateID == "" {
		return
	}
	if err := n.mailer.Send(ctx, templateID, params); err != nil {
		n.log.ErrorContext(ctx, "booking email failed", "kind", kind, "reservation_id", params["reservation_id"], "error", err)
	}
}

func withParams(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	maps.Copy(out, base)
	maps.Copy(out, extra)
	return out
}
