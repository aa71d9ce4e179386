package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/car-rental/backend/internal/domain"
)

// AdminRepo stores dashboard operators.
type AdminRepo interface {
	// GetByUsername returns domain.ErrNotFound for unknown usernames.
	GetByUsername(ctx context.Context, username string) (domain.AdminUser, error)

	// Create inserts an operator. A duplicate username yields domain.ErrConflict.
	Create(ctx context.Context, u domain.AdminUser) (domain.AdminUser, error)
}

type pgAdminRepo struct {
	db db
}

// NewAdminRepo constructs an AdminRepo backed by the provided db connection.
func NewAdminRepo(db db) AdminRepo {
	return &pgAdminRepo{db: db}
}

func (r *pgAdminRepo) GetByUsername(ctx context.Context, username string) (domain.AdminUser, error) {
	const q = `
		SELECT id, username, password_hash, created_at
		FROM admin_users
		WHERE username = @username`

	u, err := scanAdmin(r.db.QueryRow(ctx, q, pgx.NamedArgs{"username": username}))
	if err != nil {
		return domain.AdminUser{}, fmt.Errorf("repo.AdminRepo.GetByUsername: %w", err)
	}
	return u, nil
}

func (r *pgAdminRepo) Create(ctx context.Context, u domain.AdminUser) (domain.AdminUser, error) {
	const q = `
		INSERT INTO admin_users (username, password_hash)
		VALUES (@username, @password_hash)
		RETURNING id, username, password_hash, created_at`

	args := pgx.NamedArgs{"username": u.Username, "password_hash": u.PasswordHash}
	result, err := scanAdmin(r.db.QueryRow(ctx, q, args))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.AdminUser{}, fmt.Errorf("repo.AdminRepo.Create: username taken: %w", domain.ErrConflict)
		}
		return domain.AdminUser{}, fmt.Errorf("repo.AdminRepo.Create: %w", err)
	}
	return result, nil
}

func scanAdmin(s scanner) (domain.AdminUser, error) {
	var (
		u  domain.AdminUser
		id pgtype.UUID
	)
	if err := s.Scan(&id, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AdminUser{}, domain.ErrNotFound
		}
		return domain.AdminUser{}, err
	}
	u.ID = uuid.UUID(id.Bytes)
	return u, nil
}
