package models

// Employee represents an employee profile entity.
type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Position   string `json:"position"`
	JoinDate   string `json:"joinDate"` // YYYY-MM-DD
}
