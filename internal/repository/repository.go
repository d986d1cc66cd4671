package repository

import (
	"context"
	"errors"

	"github.com/athena-ems/athena/internal/metrics"
	"github.com/athena-ems/athena/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("row not found")

// ErrDuplicateEmail is returned when an insert violates an email uniqueness constraint.
var ErrDuplicateEmail = errors.New("email already registered")

type Repository struct {
	db      Database
	metrics *metrics.Metrics
}

// EmployeeRepoIface represents the interface for interacting with employee data in the repository.
type EmployeeRepoIface interface {
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	GetEmployeeByID(ctx context.Context, identifier string) (models.Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (models.Employee, error)
	CreateEmployee(ctx context.Context, name, email, department, position, joinDate string) (models.Employee, error)
}

func NewEmployeeRepository(db Database, mtr *metrics.Metrics) EmployeeRepoIface {
	return &Repository{db: db, metrics: mtr}
}

// AttendanceRepoIface represents the interface for interacting with attendance records.
type AttendanceRepoIface interface {
	ListAttendance(ctx context.Context) ([]models.AttendanceRecord, error)
	UpsertAttendance(
		ctx context.Context, employeeID, date string, status models.AttendanceStatus, notes string,
	) (models.AttendanceRecord, error)
}

func NewAttendanceRepository(db Database, mtr *metrics.Metrics) AttendanceRepoIface {
	return &Repository{db: db, metrics: mtr}
}

// TaskRepoIface represents the interface for interacting with task data.
type TaskRepoIface interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, task models.Task) (models.Task, error)
	UpdateTaskStatus(ctx context.Context, taskID string, status models.TaskStatus, completedDate string) (models.Task, error)
}

func NewTaskRepository(db Database, mtr *metrics.Metrics) TaskRepoIface {
	return &Repository{db: db, metrics: mtr}
}

// UserRepoIface represents the interface for interacting with account rows.
type UserRepoIface interface {
	CreateUser(ctx context.Context, email, passwordHash string, role models.Role) (string, error)
	GetUserByEmail(ctx context.Context, email string) (models.Credentials, error)
	GetUserByID(ctx context.Context, identifier string) (models.Credentials, error)
}

func NewUserRepository(db Database, mtr *metrics.Metrics) UserRepoIface {
	return &Repository{db: db, metrics: mtr}
}
