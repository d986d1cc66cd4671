// Package auth tracks the authenticated principal: credential login with a
// requested role, employee self-registration, logout, and recovery of an
// established session from its id.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/athena-ems/athena/internal/metrics"
	"github.com/athena-ems/athena/internal/models"
	"github.com/athena-ems/athena/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when the email is unknown or the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRoleMismatch is returned when the requested role differs from the stored one.
	// It is an authentication failure, never a silent role override.
	ErrRoleMismatch = errors.New("role does not match the account")
	// ErrProfileNotFound is returned when a principal has no employee profile on file.
	ErrProfileNotFound = errors.New("employee profile not found")
)

const dateLayout = "2006-01-02"

// EmployeeDirectory receives newly registered profiles. The domain store
// implements it; the explicit call replaces any ambient event bridge.
type EmployeeDirectory interface {
	AddEmployee(employee models.Employee)
}

// Service is the session/identity store. It owns no domain collections.
type Service struct {
	log       *slog.Logger
	users     repository.UserRepoIface
	employees repository.EmployeeRepoIface
	sessions  SessionStore
	directory EmployeeDirectory
	metrics   *metrics.Metrics
}

// NewService creates the identity service.
func NewService(
	log *slog.Logger,
	users repository.UserRepoIface,
	employees repository.EmployeeRepoIface,
	sessions SessionStore,
	directory EmployeeDirectory,
	mtr *metrics.Metrics,
) *Service {
	return &Service{
		log:       log,
		users:     users,
		employees: employees,
		sessions:  sessions,
		directory: directory,
		metrics:   mtr,
	}
}

func (s *Service) initLogger(opn string) *slog.Logger {
	return s.log.With(
		slog.String("op", opn),
		slog.String("division", "auth"),
	)
}

// Login verifies the credentials and the requested role and establishes a
// session. A role mismatch tears down the just-created session and fails:
// the caller stays unauthenticated.
func (s *Service) Login(ctx context.Context, email, password string, role models.Role) (models.User, string, error) {
	const opn = "Auth.Login"
	log := s.initLogger(opn)

	creds, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		s.metrics.LoginAttempts.WithLabelValues("failure").Inc()
		if errors.Is(err, repository.ErrNotFound) {
			log.InfoContext(ctx, "Login rejected: unknown email", "email", email)
			return models.User{}, "", ErrInvalidCredentials
		}
		return models.User{}, "", fmt.Errorf("failed to look up account: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		s.metrics.LoginAttempts.WithLabelValues("failure").Inc()
		log.InfoContext(ctx, "Login rejected: wrong password", "email", email)
		return models.User{}, "", ErrInvalidCredentials
	}

	sessionID, err := s.sessions.Create(ctx, creds.ID)
	if err != nil {
		s.metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return models.User{}, "", fmt.Errorf("failed to establish session: %w", err)
	}

	if creds.Role != role {
		// Roll back the partially established session before failing.
		if delErr := s.sessions.Delete(ctx, sessionID); delErr != nil {
			log.WarnContext(ctx, "Failed to roll back session after role mismatch", "error", delErr)
		}
		s.metrics.LoginAttempts.WithLabelValues("role_mismatch").Inc()
		log.InfoContext(ctx, "Login rejected: role mismatch", "email", email, "requested_role", role)
		return models.User{}, "", ErrRoleMismatch
	}

	user, err := s.resolvePrincipal(ctx, creds)
	if err != nil {
		if delErr := s.sessions.Delete(ctx, sessionID); delErr != nil {
			log.WarnContext(ctx, "Failed to roll back session after profile lookup failure", "error", delErr)
		}
		s.metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return models.User{}, "", err
	}

	s.metrics.LoginAttempts.WithLabelValues("success").Inc()
	log.InfoContext(ctx, "Login successful", "user_id", creds.ID, "role", creds.Role)

	return user, sessionID, nil
}

// Register creates an employee account and its profile. The role is always
// employee; it is not settable at registration. The caller is NOT
// authenticated afterwards: success only means the account exists.
func (s *Service) Register(
	ctx context.Context,
	name, email, password, department, position string,
) (models.Employee, error) {
	const opn = "Auth.Register"
	log := s.initLogger(opn)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.users.CreateUser(ctx, email, string(hash), models.RoleEmployee)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			log.InfoContext(ctx, "Registration rejected: email already taken", "email", email)
		}
		return models.Employee{}, fmt.Errorf("failed to create account: %w", err)
	}

	employee, err := s.employees.CreateEmployee(ctx, name, email, department, position, time.Now().Format(dateLayout))
	if err != nil {
		return models.Employee{}, fmt.Errorf("failed to create employee profile: %w", err)
	}

	if s.directory != nil {
		s.directory.AddEmployee(employee)
	}

	log.InfoContext(ctx, "Employee registered", "user_id", userID, "employee_id", employee.ID)

	return employee, nil
}

// Logout invalidates the session. Any state becomes unauthenticated.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	const opn = "Auth.Logout"
	log := s.initLogger(opn)

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to invalidate session: %w", err)
	}
	log.DebugContext(ctx, "Session invalidated")

	return nil
}

// Resume recovers the principal behind a previously established session.
// Route guards must wait for it to settle before picking the
// authenticated/unauthenticated branch.
func (s *Service) Resume(ctx context.Context, sessionID string) (models.User, error) {
	userID, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return models.User{}, ErrSessionNotFound
		}
		return models.User{}, fmt.Errorf("failed to resolve session: %w", err)
	}

	creds, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to look up account: %w", err)
	}

	return s.resolvePrincipal(ctx, creds)
}

// resolvePrincipal joins the account row with its employee profile. Admin
// accounts may have no profile; employees without one are a blocking error.
func (s *Service) resolvePrincipal(ctx context.Context, creds models.Credentials) (models.User, error) {
	user := models.User{
		ID:    creds.ID,
		Email: creds.Email,
		Role:  creds.Role,
	}

	profile, err := s.employees.GetEmployeeByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if creds.Role == models.RoleAdmin {
				user.Name = creds.Email
				user.Department = "Management"
				return user, nil
			}
			return models.User{}, ErrProfileNotFound
		}
		return models.User{}, fmt.Errorf("failed to look up employee profile: %w", err)
	}

	user.Name = profile.Name
	user.Department = profile.Department
	user.EmployeeID = profile.ID

	return user, nil
}

// IsValidEmail checks if the given email address is valid.
func IsValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}
