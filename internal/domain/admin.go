package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdminUser is a dashboard operator. PasswordHash is a bcrypt hash.
type AdminUser struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is what the dashboard polls to decide whether to redirect to login.
type Session struct {
	LoggedIn  bool
	Username  string
	ExpiresAt time.Time
}

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Message string
	Locale  string
}
