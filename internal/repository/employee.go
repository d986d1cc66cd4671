package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/athena-ems/athena/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const dateLayout = "2006-01-02"

// ListEmployees retrieves every employee, in insertion order.
func (r *Repository) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.DBQueryDuration.WithLabelValues("list_employees").Observe(duration)
	}()
	query := `SELECT id, name, email, department, position, join_date FROM employees ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []models.Employee
	for rows.Next() {
		var emp models.Employee
		var joinDate time.Time
		if err = rows.Scan(&emp.ID, &emp.Name, &emp.Email, &emp.Department, &emp.Position, &joinDate); err != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", err)
		}
		emp.JoinDate = joinDate.Format(dateLayout)
		employees = append(employees, emp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee rows: %w", err)
	}

	return employees, nil
}

// GetEmployeeByID retrieves an employee from the database by their ID.
func (r *Repository) GetEmployeeByID(ctx context.Context, identifier string) (models.Employee, error) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.DBQueryDuration.WithLabelValues("get_employee_by_id").Observe(duration)
	}()
	query := `SELECT id, name, email, department, position, join_date FROM employees WHERE id=$1`

	var result models.Employee
	var joinDate time.Time

	err := r.db.QueryRow(ctx, query, identifier).Scan(
		&result.ID, &result.Name, &result.Email, &result.Department, &result.Position, &joinDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Employee{}, ErrNotFound
		}
		return models.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}
	result.JoinDate = joinDate.Format(dateLayout)

	return result, nil
}

// GetEmployeeByEmail retrieves an employee from the database by their email address.
func (r *Repository) GetEmployeeByEmail(ctx context.Context, email string) (models.Employee, error) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.DBQueryDuration.WithLabelValues("get_employee_by_email").Observe(duration)
	}()
	query := `SELECT id, name, email, department, position, join_date FROM employees WHERE email=$1`

	var result models.Employee
	var joinDate time.Time

	err := r.db.QueryRow(ctx, query, email).Scan(
		&result.ID, &result.Name, &result.Email, &result.Department, &result.Position, &joinDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Employee{}, ErrNotFound
		}
		return models.Employee{}, fmt.Errorf("failed to get employee by email: %w", err)
	}
	result.JoinDate = joinDate.Format(dateLayout)

	return result, nil
}

// CreateEmployee inserts a new employee profile and returns the stored row.
// The row id is assigned here.
func (r *Repository) CreateEmployee(
	ctx context.Context,
	name, email, department, position, joinDate string,
) (models.Employee, error) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.DBQueryDuration.WithLabelValues("create_employee").Observe(duration)
	}()
	query := `
		INSERT INTO employees (id, name, email, department, position, join_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, name, email, department, position, join_date;
	`

	var result models.Employee
	var storedJoinDate time.Time

	err := r.db.QueryRow(ctx, query, uuid.NewString(), name, email, department, position, joinDate).Scan(
		&result.ID, &result.Name, &result.Email, &result.Department, &result.Position, &storedJoinDate)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Employee{}, ErrDuplicateEmail
		}
		return models.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	result.JoinDate = storedJoinDate.Format(dateLayout)

	return result, nil
}
