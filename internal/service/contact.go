package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/validation"
)

// MsgContactFailed is the banner shown when the message could not be sent.
const MsgContactFailed = "contact.failed"

// ContactRequest is the public contact form.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Message string `json:"message" validate:"required,min=10,max=2000"`
	Locale  string `json:"-"`
}

// ContactService forwards contact form messages to the owner.
type ContactService struct {
	notifier *Notifier
	log      *slog.Logger
}

// NewContactService constructs a ContactService.
func NewContactService(n *Notifier, log *slog.Logger) *ContactService {
	return &ContactService{notifier: n, log: log}
}

// Send validates req and emails it to the owner.
func (s *ContactService) Send(ctx context.Context, req ContactRequest) error {
	if err := validation.Struct(req); err != nil {
		return fmt.Errorf("service.ContactService.Send: %w", err)
	}

	m := domain.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   validation.NormalizePhone(req.Phone),
		Message: strings.TrimSpace(req.Message),
		Locale:  localeOrDefault(req.Locale),
	}
	if err := s.notifier.Contact(ctx, m); err != nil {
		s.log.ErrorContext(ctx, "contact email failed", "error", err)
		return fmt.Errorf("service.ContactService.Send: %w: %w",
			domain.NewMessageError(domain.ErrUpstream, MsgContactFailed), err)
	}
	return nil
}
