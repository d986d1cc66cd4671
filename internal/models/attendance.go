package models

// AttendanceStatus is the fixed set of values an attendance record may hold.
type AttendanceStatus string

const (
	StatusPresent  AttendanceStatus = "present"
	StatusAbsent   AttendanceStatus = "absent"
	StatusOvertime AttendanceStatus = "overtime"
	StatusHalfday  AttendanceStatus = "halfday"
)

// AttendanceStatuses lists every valid status, in the order reports render them.
func AttendanceStatuses() []AttendanceStatus {
	return []AttendanceStatus{StatusPresent, StatusAbsent, StatusOvertime, StatusHalfday}
}

// IsValidAttendanceStatus reports whether s is one of the four known statuses.
func IsValidAttendanceStatus(s AttendanceStatus) bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusOvertime, StatusHalfday:
		return true
	}
	return false
}

// AttendanceRecord represents one employee's attendance on one date.
// At most one record exists per (EmployeeID, Date) pair.
type AttendanceRecord struct {
	ID         string           `json:"id"`
	EmployeeID string           `json:"employeeId"`
	Date       string           `json:"date"` // YYYY-MM-DD
	Status     AttendanceStatus `json:"status"`
	Notes      string           `json:"notes,omitempty"`
}
