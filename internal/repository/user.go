package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/athena-ems/athena/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// CreateUser inserts a new account row and returns its id. Role is stored
// as given; registration callers always pass the employee role.
func (r *Repository) CreateUser(ctx context.Context, email, passwordHash string, role models.Role) (string, error) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.DBQueryDuration.WithLabelValues("create_user").Observe(duration)
	}()
	query := `
		INSERT INTO users (id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`

	var identifier string
	err := r.db.QueryRow(ctx, query, uuid.NewString(), email, passwordHash, role).Scan(&identifier)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrDuplicateEmail
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	return identifier, nil
}

// GetUserByEmail retrieves an account row by email.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (models.Credentials, error) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.DBQueryDuration.WithLabelValues("get_user_by_email").Observe(duration)
	}()
	query := `SELECT id, email, password_hash, role FROM users WHERE email=$1`

	var creds models.Credentials
	err := r.db.QueryRow(ctx, query, email).Scan(&creds.ID, &creds.Email, &creds.PasswordHash, &creds.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Credentials{}, ErrNotFound
		}
		return models.Credentials{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return creds, nil
}

// GetUserByID retrieves an account row by id.
func (r *Repository) GetUserByID(ctx context.Context, identifier string) (models.Credentials, error) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.DBQueryDuration.WithLabelValues("get_user_by_id").Observe(duration)
	}()
	query := `SELECT id, email, password_hash, role FROM users WHERE id=$1`

	var creds models.Credentials
	err := r.db.QueryRow(ctx, query, identifier).Scan(&creds.ID, &creds.Email, &creds.PasswordHash, &creds.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Credentials{}, ErrNotFound
		}
		return models.Credentials{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	return creds, nil
}
