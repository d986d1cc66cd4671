package repository_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/athena-ems/athena/internal/models"
	"github.com/athena-ems/athena/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const createUserQuery = `INSERT INTO users (id, email, password_hash, role)`

const getUserByEmailQuery = `SELECT id, email, password_hash, role FROM users WHERE email=$1`

func TestCreateUser_Success(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	expectedRows := pgxmock.NewRows([]string{"id"}).AddRow("user-1")

	mock.ExpectQuery(regexp.QuoteMeta(createUserQuery)).
		WithArgs(pgxmock.AnyArg(), "john@company.com", "hashed", models.RoleEmployee).
		WillReturnRows(expectedRows)

	repo := repository.NewUserRepository(mock, newTestMetrics())
	identifier, err := repo.CreateUser(context.Background(), "john@company.com", "hashed", models.RoleEmployee)

	require.NoError(t, err)
	assert.Equal(t, "user-1", identifier)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(createUserQuery)).
		WithArgs(pgxmock.AnyArg(), "john@company.com", "hashed", models.RoleEmployee).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	repo := repository.NewUserRepository(mock, newTestMetrics())
	_, err = repo.CreateUser(context.Background(), "john@company.com", "hashed", models.RoleEmployee)

	require.ErrorIs(t, err, repository.ErrDuplicateEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail_Success(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	expectedRows := pgxmock.NewRows([]string{"id", "email", "password_hash", "role"}).
		AddRow("user-1", "john@company.com", "hashed", "employee")

	mock.ExpectQuery(regexp.QuoteMeta(getUserByEmailQuery)).
		WithArgs("john@company.com").
		WillReturnRows(expectedRows)

	repo := repository.NewUserRepository(mock, newTestMetrics())
	creds, err := repo.GetUserByEmail(context.Background(), "john@company.com")

	require.NoError(t, err)
	assert.Equal(t, models.RoleEmployee, creds.Role)
	assert.Equal(t, "hashed", creds.PasswordHash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatal(err)
	}
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta(getUserByEmailQuery)).
		WithArgs("ghost@company.com").
		WillReturnError(pgx.ErrNoRows)

	repo := repository.NewUserRepository(mock, newTestMetrics())
	_, err = repo.GetUserByEmail(context.Background(), "ghost@company.com")

	require.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
