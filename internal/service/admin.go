package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pkordes/car-rental/backend/internal/domain"
	"github.com/pkordes/car-rental/backend/internal/pricing"
	"github.com/pkordes/car-rental/backend/internal/repo"
)

// Message keys for the admin login flow.
const (
	MsgInvalidCredentials = "admin.invalid_credentials"
	MsgUnauthorized       = "admin.unauthorized"
)

const (
	tokenIssuer       = "car-rental-admin"
	minPasswordLength = 10
)

// dummyHash is compared against when the username is unknown so both paths
// cost one bcrypt comparison.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z4F4AHuJm1hQe1kxlH5dOVyK")

// AdminService authenticates dashboard operators and issues session tokens.
type AdminService struct {
	admins repo.AdminRepo
	secret []byte
	ttl    time.Duration
	clock  pricing.Clock
	log    *slog.Logger
}

// NewAdminService constructs an AdminService signing HS256 tokens with secret.
func NewAdminService(admins repo.AdminRepo, secret []byte, ttl time.Duration, clock pricing.Clock, log *slog.Logger) *AdminService {
	return &AdminService{admins: admins, secret: secret, ttl: ttl, clock: clock, log: log}
}

// Login checks the credentials and returns a signed token and its session.
// Unknown users and wrong passwords produce the same error.
func (s *AdminService) Login(ctx context.Context, username, password string) (string, domain.Session, error) {
	invalid := domain.NewMessageError(domain.ErrUnauthorized, MsgInvalidCredentials)

	u, err := s.admins.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return "", domain.Session{}, fmt.Errorf("service.AdminService.Login: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		s.log.WarnContext(ctx, "admin login failed", "username", username, "reason", "unknown user")
		return "", domain.Session{}, fmt.Errorf("service.AdminService.Login: %w", invalid)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.WarnContext(ctx, "admin login failed", "username", username, "reason", "wrong password")
		return "", domain.Session{}, fmt.Errorf("service.AdminService.Login: %w", invalid)
	}

	now := s.clock.Now()
	expires := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   u.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", domain.Session{}, fmt.Errorf("service.AdminService.Login: sign: %w", err)
	}

	s.log.InfoContext(ctx, "admin logged in", "username", u.Username)
	return token, domain.Session{LoggedIn: true, Username: u.Username, ExpiresAt: expires.Truncate(time.Second)}, nil
}

// Session verifies token. Any failure, including expiry, is ErrUnauthorized.
func (s *AdminService) Session(token string) (domain.Session, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return domain.Session{}, fmt.Errorf("service.AdminService.Session: %w: %w",
			domain.NewMessageError(domain.ErrUnauthorized, MsgUnauthorized), err)
	}
	return domain.Session{LoggedIn: true, Username: claims.Subject, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// CreateAdmin hashes password and stores a new operator.
func (s *AdminService) CreateAdmin(ctx context.Context, username, password string) (domain.AdminUser, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.AdminUser{}, fmt.Errorf("service.AdminService.CreateAdmin: %w: username is required", domain.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return domain.AdminUser{}, fmt.Errorf("service.AdminService.CreateAdmin: %w: password must be at least %d characters",
			domain.ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.AdminUser{}, fmt.Errorf("service.AdminService.CreateAdmin: hash: %w", err)
	}

	u, err := s.admins.Create(ctx, domain.AdminUser{Username: username, PasswordHash: string(hash)})
	if err != nil {
		return domain.AdminUser{}, fmt.Errorf("service.AdminService.CreateAdmin: %w", err)
	}
	s.log.InfoContext(ctx, "admin created", "username", u.Username)
	return u, nil
}
