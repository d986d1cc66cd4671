// Package store holds the in-memory domain collections (employees,
// attendance records, tasks) and keeps them synchronized with the
// database write-through: every mutation hits the repository first and
// patches the local copy only after the remote call succeeds.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/athena-ems/athena/internal/metrics"
	"github.com/athena-ems/athena/internal/models"
	"github.com/athena-ems/athena/internal/repository"
)

const dateLayout = "2006-01-02"
const monthLen = 7 // YYYY-MM

// Store owns the local domain collections. There are no hidden globals:
// one Store is constructed in main and handed to every consumer.
type Store struct {
	log            *slog.Logger
	employeeRepo   repository.EmployeeRepoIface
	attendanceRepo repository.AttendanceRepoIface
	taskRepo       repository.TaskRepoIface
	metrics        *metrics.Metrics

	mu         sync.RWMutex
	employees  []models.Employee
	attendance []models.AttendanceRecord
	tasks      []models.Task
	loading    bool
}

// New creates a Store with empty collections. Call LoadAll to populate them.
func New(
	log *slog.Logger,
	employeeRepo repository.EmployeeRepoIface,
	attendanceRepo repository.AttendanceRepoIface,
	taskRepo repository.TaskRepoIface,
	mtr *metrics.Metrics,
) *Store {
	return &Store{
		log:            log,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		taskRepo:       taskRepo,
		metrics:        mtr,
	}
}

func (s *Store) initLogger(opn string) *slog.Logger {
	return s.log.With(
		slog.String("op", opn),
		slog.String("division", "store"),
	)
}

// Loading reports whether a LoadAll is currently in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LoadAll fetches the three collections concurrently and replaces each local
// collection wholesale on success. A collection whose fetch fails keeps its
// prior contents; the error is joined into the returned error rather than
// silently defaulted.
func (s *Store) LoadAll(ctx context.Context) error {
	const opn = "Store.LoadAll"
	log := s.initLogger(opn)

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	var (
		wgr           sync.WaitGroup
		employees     []models.Employee
		attendance    []models.AttendanceRecord
		tasks         []models.Task
		employeeErr   error
		attendanceErr error
		taskErr       error
	)

	wgr.Add(3)
	go func() {
		defer wgr.Done()
		employees, employeeErr = s.employeeRepo.ListEmployees(ctx)
	}()
	go func() {
		defer wgr.Done()
		attendance, attendanceErr = s.attendanceRepo.ListAttendance(ctx)
	}()
	go func() {
		defer wgr.Done()
		tasks, taskErr = s.taskRepo.ListTasks(ctx)
	}()
	wgr.Wait()

	s.mu.Lock()
	if employeeErr == nil {
		s.employees = employees
	}
	if attendanceErr == nil {
		s.attendance = attendance
	}
	if taskErr == nil {
		s.tasks = tasks
	}
	s.mu.Unlock()

	if err := errors.Join(employeeErr, attendanceErr, taskErr); err != nil {
		s.metrics.StoreLoads.WithLabelValues("failure").Inc()
		log.ErrorContext(ctx, "Failed to load one or more collections", "error", err)
		return fmt.Errorf("failed to load collections: %w", err)
	}

	s.metrics.StoreLoads.WithLabelValues("success").Inc()
	s.metrics.LastSuccessfulLoad.SetToCurrentTime()
	log.InfoContext(ctx, "Collections loaded",
		"employees", len(employees), "attendance", len(attendance), "tasks", len(tasks))

	return nil
}

// MarkAttendance upserts the record for the (employeeID, date) pair. The
// local collection is patched in place when the pair already exists, or
// appended otherwise; order of other entries is preserved. On a failed
// remote call the local collection is left unchanged.
func (s *Store) MarkAttendance(
	ctx context.Context,
	employeeID string,
	status models.AttendanceStatus,
	date string,
) (models.AttendanceRecord, error) {
	return s.MarkAttendanceWithNotes(ctx, employeeID, status, date, "")
}

// MarkAttendanceWithNotes is MarkAttendance with an optional free-text note.
func (s *Store) MarkAttendanceWithNotes(
	ctx context.Context,
	employeeID string,
	status models.AttendanceStatus,
	date, notes string,
) (models.AttendanceRecord, error) {
	const opn = "Store.MarkAttendance"
	log := s.initLogger(opn)

	record, err := s.attendanceRepo.UpsertAttendance(ctx, employeeID, date, status, notes)
	if err != nil {
		log.ErrorContext(ctx, "Failed to mark attendance", "employee_id", employeeID, "date", date, "error", err)
		return models.AttendanceRecord{}, fmt.Errorf("failed to mark attendance: %w", err)
	}

	s.mu.Lock()
	patched := false
	for idx := range s.attendance {
		if s.attendance[idx].EmployeeID == employeeID && s.attendance[idx].Date == record.Date {
			s.attendance[idx] = record
			patched = true
			break
		}
	}
	if !patched {
		s.attendance = append(s.attendance, record)
	}
	s.mu.Unlock()

	log.DebugContext(ctx, "Attendance marked", "employee_id", employeeID, "date", record.Date, "status", status)

	return record, nil
}

// CreateTask inserts the task and appends the stored row (with its assigned
// id) to the local collection. Status defaults to pending and createdDate to
// today when not supplied. Required fields are the caller's job to validate.
func (s *Store) CreateTask(ctx context.Context, task models.Task) (models.Task, error) {
	const opn = "Store.CreateTask"
	log := s.initLogger(opn)

	if task.Status == "" {
		task.Status = models.TaskPending
	}
	if task.CreatedDate == "" {
		task.CreatedDate = time.Now().Format(dateLayout)
	}

	created, err := s.taskRepo.CreateTask(ctx, task)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create task", "title", task.Title, "error", err)
		return models.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, created)
	s.mu.Unlock()

	log.InfoContext(ctx, "Task created", "task_id", created.ID, "assigned_to", created.AssignedTo)

	return created, nil
}

// UpdateTaskStatus transitions a task's status. Any status value is
// accepted; ordering of transitions is an affordance of the callers.
// When the new status is completed, completedDate is set to today; for any
// other status the stored completedDate is left as-is. The local entry is
// replaced with the row the repository returns.
func (s *Store) UpdateTaskStatus(ctx context.Context, taskID string, status models.TaskStatus) (models.Task, error) {
	const opn = "Store.UpdateTaskStatus"
	log := s.initLogger(opn)

	var completedDate string
	if status == models.TaskCompleted {
		completedDate = time.Now().Format(dateLayout)
	}

	updated, err := s.taskRepo.UpdateTaskStatus(ctx, taskID, status, completedDate)
	if err != nil {
		log.ErrorContext(ctx, "Failed to update task status", "task_id", taskID, "status", status, "error", err)
		return models.Task{}, fmt.Errorf("failed to update task status: %w", err)
	}

	s.mu.Lock()
	for idx := range s.tasks {
		if s.tasks[idx].ID == taskID {
			s.tasks[idx] = updated
			break
		}
	}
	s.mu.Unlock()

	log.DebugContext(ctx, "Task status updated", "task_id", taskID, "status", status)

	return updated, nil
}

// AddEmployee appends a freshly registered employee profile to the local
// collection. The row itself is written during registration; this is the
// explicit notification path between the identity service and the store.
func (s *Store) AddEmployee(employee models.Employee) {
	s.mu.Lock()
	s.employees = append(s.employees, employee)
	s.mu.Unlock()
}

// GetEmployeeAttendance returns the attendance records for an employee, in
// collection order. A non-empty month ("YYYY-MM") keeps only records whose
// date starts with it. Pure read.
func (s *Store) GetEmployeeAttendance(employeeID, month string) []models.AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []models.AttendanceRecord
	for _, rec := range s.attendance {
		if rec.EmployeeID != employeeID {
			continue
		}
		if month != "" && (len(rec.Date) < monthLen || rec.Date[:monthLen] != month) {
			continue
		}
		records = append(records, rec)
	}

	return records
}

// GetEmployeeTasks returns the tasks assigned to an employee, in collection order.
func (s *Store) GetEmployeeTasks(employeeID string) []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tasks []models.Task
	for _, task := range s.tasks {
		if task.AssignedTo == employeeID {
			tasks = append(tasks, task)
		}
	}

	return tasks
}

// GetAttendanceStats tallies an employee's records per status. Every status
// is present in the result, zero counts included.
func (s *Store) GetAttendanceStats(employeeID, month string) map[models.AttendanceStatus]int {
	stats := make(map[models.AttendanceStatus]int, len(models.AttendanceStatuses()))
	for _, status := range models.AttendanceStatuses() {
		stats[status] = 0
	}

	for _, rec := range s.GetEmployeeAttendance(employeeID, month) {
		stats[rec.Status]++
	}

	return stats
}

// Employees returns a snapshot copy of the employee collection.
func (s *Store) Employees() []models.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Employee, len(s.employees))
	copy(out, s.employees)
	return out
}

// Attendance returns a snapshot copy of the attendance collection.
func (s *Store) Attendance() []models.AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AttendanceRecord, len(s.attendance))
	copy(out, s.attendance)
	return out
}

// Tasks returns a snapshot copy of the task collection.
func (s *Store) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}
