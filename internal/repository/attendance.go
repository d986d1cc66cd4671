package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/athena-ems/athena/internal/models"
	"github.com/google/uuid"
)

// ListAttendance retrieves every attendance record, in insertion order.
func (r *Repository) ListAttendance(ctx context.Context) ([]models.AttendanceRecord, error) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.DBQueryDuration.WithLabelValues("list_attendance").Observe(duration)
	}()
	query := `
		SELECT id, employee_id, date, status, COALESCE(notes, '')
		FROM attendance_records
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []models.AttendanceRecord
	for rows.Next() {
		var rec models.AttendanceRecord
		var date time.Time
		if err = rows.Scan(&rec.ID, &rec.EmployeeID, &date, &rec.Status, &rec.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		rec.Date = date.Format(dateLayout)
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance rows: %w", err)
	}

	return records, nil
}

// UpsertAttendance inserts an attendance record for the (employeeID, date)
// pair, or replaces the stored status and notes if one already exists. The
// composite uniqueness constraint guarantees at most one row per pair.
func (r *Repository) UpsertAttendance(
	ctx context.Context,
	employeeID, date string,
	status models.AttendanceStatus,
	notes string,
) (models.AttendanceRecord, error) {
	startTime := time.Now()
	defer func() {
		duration := time.Since(startTime).Seconds()
		r.metrics.DBQueryDuration.WithLabelValues("upsert_attendance").Observe(duration)
	}()
	query := `
		INSERT INTO attendance_records (id, employee_id, date, status, notes)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		ON CONFLICT (employee_id, date) DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes
		RETURNING id, employee_id, date, status, COALESCE(notes, '');
	`

	var result models.AttendanceRecord
	var storedDate time.Time

	err := r.db.QueryRow(ctx, query, uuid.NewString(), employeeID, date, status, notes).Scan(
		&result.ID, &result.EmployeeID, &storedDate, &result.Status, &result.Notes)
	if err != nil {
		return models.AttendanceRecord{}, fmt.Errorf("failed to upsert attendance record: %w", err)
	}
	result.Date = storedDate.Format(dateLayout)

	return result, nil
}
