package models

// TaskStatus is the progression state of a task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskAccepted  TaskStatus = "accepted"
	TaskCompleted TaskStatus = "completed"
)

// IsValidTaskStatus reports whether s is one of the three known statuses.
func IsValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskPending, TaskAccepted, TaskCompleted:
		return true
	}
	return false
}

// Task represents a unit of work assigned by an admin to an employee.
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	AssignedTo    string     `json:"assignedTo"`
	AssignedBy    string     `json:"assignedBy"`
	Status        TaskStatus `json:"status"`
	CreatedDate   string     `json:"createdDate"`             // YYYY-MM-DD
	DueDate       string     `json:"dueDate"`                 // YYYY-MM-DD
	CompletedDate string     `json:"completedDate,omitempty"` // set only on transition into completed
}
