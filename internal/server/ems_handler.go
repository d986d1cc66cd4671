package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/athena-ems/athena/internal/models"
	"github.com/athena-ems/athena/internal/repository"
	"github.com/athena-ems/athena/internal/store"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"
const monthLayout = "2006-01"

// EMSHandler exposes the domain store over HTTP. Input validation lives
// here; the store itself does not re-validate.
type EMSHandler struct {
	store *store.Store
}

// NewEMSHandler creates an EMSHandler.
func NewEMSHandler(st *store.Store) *EMSHandler {
	return &EMSHandler{store: st}
}

// canViewEmployee reports whether the principal may read employeeID's data:
// admins read everyone, employees only themselves.
func canViewEmployee(c *gin.Context, employeeID string) bool {
	user, ok := CurrentUser(c)
	if !ok {
		return false
	}
	return user.Role == models.RoleAdmin || user.EmployeeID == employeeID
}

// ListEmployees returns the employee collection. Admin only.
func (h *EMSHandler) ListEmployees(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"employees": h.store.Employees()})
}

type markAttendanceRequest struct {
	EmployeeID string                  `json:"employeeId" binding:"required"`
	Status     models.AttendanceStatus `json:"status"     binding:"required"`
	Date       string                  `json:"date"       binding:"required"`
	Notes      string                  `json:"notes"`
}

// MarkAttendance upserts one attendance record. Admin only.
func (h *EMSHandler) MarkAttendance(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employeeId, status and date are required"})
		return
	}
	if !models.IsValidAttendanceStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown attendance status"})
		return
	}
	if _, err := time.Parse(dateLayout, req.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	record, err := h.store.MarkAttendanceWithNotes(c.Request.Context(), req.EmployeeID, req.Status, req.Date, req.Notes)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to mark attendance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": record})
}

// GetEmployeeAttendance returns one employee's attendance, optionally
// filtered by ?month=YYYY-MM.
func (h *EMSHandler) GetEmployeeAttendance(c *gin.Context) {
	employeeID := c.Param("id")
	if !canViewEmployee(c, employeeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		return
	}

	month := c.Query("month")
	if month != "" {
		if _, err := time.Parse(monthLayout, month); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
			return
		}
	}

	records := h.store.GetEmployeeAttendance(employeeID, month)
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// GetAttendanceStats returns per-status counts for one employee, optionally
// filtered by ?month=YYYY-MM. All four statuses are always present.
func (h *EMSHandler) GetAttendanceStats(c *gin.Context) {
	employeeID := c.Param("id")
	if !canViewEmployee(c, employeeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		return
	}

	month := c.Query("month")
	if month != "" {
		if _, err := time.Parse(monthLayout, month); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
			return
		}
	}

	stats := h.store.GetAttendanceStats(employeeID, month)
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// ListTasks returns the full task collection. Admin only.
func (h *EMSHandler) ListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.store.Tasks()})
}

type createTaskRequest struct {
	Title       string `json:"title"       binding:"required"`
	Description string `json:"description"`
	AssignedTo  string `json:"assignedTo"  binding:"required"`
	DueDate     string `json:"dueDate"     binding:"required"`
}

// CreateTask creates a pending task assigned by the current admin.
func (h *EMSHandler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, assignedTo and dueDate are required"})
		return
	}
	if _, err := time.Parse(dateLayout, req.DueDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dueDate must be YYYY-MM-DD"})
		return
	}

	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	task, err := h.store.CreateTask(c.Request.Context(), models.Task{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		AssignedBy:  user.ID,
		DueDate:     req.DueDate,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// GetEmployeeTasks returns the tasks assigned to one employee.
func (h *EMSHandler) GetEmployeeTasks(c *gin.Context) {
	employeeID := c.Param("id")
	if !canViewEmployee(c, employeeID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": h.store.GetEmployeeTasks(employeeID)})
}

type updateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

// UpdateTaskStatus transitions a task. The status value is validated; the
// order of transitions is left to the client's affordances.
func (h *EMSHandler) UpdateTaskStatus(c *gin.Context) {
	var req updateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	if !models.IsValidTaskStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown task status"})
		return
	}

	task, err := h.store.UpdateTaskStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to update task status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"task": task})
}
