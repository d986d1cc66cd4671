package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/athena-ems/athena/internal/auth"
	"github.com/athena-ems/athena/internal/metrics"
	"github.com/athena-ems/athena/internal/models"
	"github.com/athena-ems/athena/internal/repository"
	"github.com/athena-ems/athena/internal/server"
	"github.com/athena-ems/athena/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	users map[string]models.Credentials
}

func (f *fakeUserRepo) CreateUser(_ context.Context, email, passwordHash string, role models.Role) (string, error) {
	if _, exists := f.users[email]; exists {
		return "", repository.ErrDuplicateEmail
	}
	identifier := fmt.Sprintf("user-%d", len(f.users)+1)
	f.users[email] = models.Credentials{ID: identifier, Email: email, PasswordHash: passwordHash, Role: role}
	return identifier, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (models.Credentials, error) {
	creds, exists := f.users[email]
	if !exists {
		return models.Credentials{}, repository.ErrNotFound
	}
	return creds, nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, identifier string) (models.Credentials, error) {
	for _, creds := range f.users {
		if creds.ID == identifier {
			return creds, nil
		}
	}
	return models.Credentials{}, repository.ErrNotFound
}

type fakeEmployeeRepo struct {
	employees []models.Employee
}

func (f *fakeEmployeeRepo) ListEmployees(_ context.Context) ([]models.Employee, error) {
	return f.employees, nil
}

func (f *fakeEmployeeRepo) GetEmployeeByID(_ context.Context, identifier string) (models.Employee, error) {
	for _, emp := range f.employees {
		if emp.ID == identifier {
			return emp, nil
		}
	}
	return models.Employee{}, repository.ErrNotFound
}

func (f *fakeEmployeeRepo) GetEmployeeByEmail(_ context.Context, email string) (models.Employee, error) {
	for _, emp := range f.employees {
		if emp.Email == email {
			return emp, nil
		}
	}
	return models.Employee{}, repository.ErrNotFound
}

func (f *fakeEmployeeRepo) CreateEmployee(
	_ context.Context, name, email, department, position, joinDate string,
) (models.Employee, error) {
	emp := models.Employee{
		ID: fmt.Sprintf("emp-%d", len(f.employees)+1), Name: name, Email: email,
		Department: department, Position: position, JoinDate: joinDate,
	}
	f.employees = append(f.employees, emp)
	return emp, nil
}

type fakeAttendanceRepo struct {
	rows   []models.AttendanceRecord
	nextID int
}

func (f *fakeAttendanceRepo) ListAttendance(_ context.Context) ([]models.AttendanceRecord, error) {
	return f.rows, nil
}

func (f *fakeAttendanceRepo) UpsertAttendance(
	_ context.Context, employeeID, date string, status models.AttendanceStatus, notes string,
) (models.AttendanceRecord, error) {
	for idx := range f.rows {
		if f.rows[idx].EmployeeID == employeeID && f.rows[idx].Date == date {
			f.rows[idx].Status = status
			f.rows[idx].Notes = notes
			return f.rows[idx], nil
		}
	}
	f.nextID++
	rec := models.AttendanceRecord{
		ID: fmt.Sprintf("rec-%d", f.nextID), EmployeeID: employeeID, Date: date, Status: status, Notes: notes,
	}
	f.rows = append(f.rows, rec)
	return rec, nil
}

type fakeTaskRepo struct {
	rows   []models.Task
	nextID int
}

func (f *fakeTaskRepo) ListTasks(_ context.Context) ([]models.Task, error) {
	return f.rows, nil
}

func (f *fakeTaskRepo) CreateTask(_ context.Context, task models.Task) (models.Task, error) {
	f.nextID++
	task.ID = fmt.Sprintf("task-%d", f.nextID)
	f.rows = append(f.rows, task)
	return task, nil
}

func (f *fakeTaskRepo) UpdateTaskStatus(
	_ context.Context, taskID string, status models.TaskStatus, completedDate string,
) (models.Task, error) {
	for idx := range f.rows {
		if f.rows[idx].ID == taskID {
			f.rows[idx].Status = status
			if completedDate != "" {
				f.rows[idx].CompletedDate = completedDate
			}
			return f.rows[idx], nil
		}
	}
	return models.Task{}, repository.ErrNotFound
}

type fakeSessionStore struct {
	sessions map[string]string
	nextID   int
}

func (f *fakeSessionStore) Create(_ context.Context, userID string) (string, error) {
	f.nextID++
	sessionID := fmt.Sprintf("sess-%d", f.nextID)
	f.sessions[sessionID] = userID
	return sessionID, nil
}

func (f *fakeSessionStore) Get(_ context.Context, sessionID string) (string, error) {
	userID, exists := f.sessions[sessionID]
	if !exists {
		return "", auth.ErrSessionNotFound
	}
	return userID, nil
}

func (f *fakeSessionStore) Delete(_ context.Context, sessionID string) error {
	delete(f.sessions, sessionID)
	return nil
}

type apiEnv struct {
	router   *gin.Engine
	users    *fakeUserRepo
	emps     *fakeEmployeeRepo
	sessions *fakeSessionStore
	store    *store.Store
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &apiEnv{
		users:    &fakeUserRepo{users: make(map[string]models.Credentials)},
		emps:     &fakeEmployeeRepo{},
		sessions: &fakeSessionStore{sessions: make(map[string]string)},
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	testMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	env.store = store.New(logger, env.emps, &fakeAttendanceRepo{}, &fakeTaskRepo{}, testMetrics)
	identity := auth.NewService(logger, env.users, env.emps, env.sessions, env.store, testMetrics)
	env.router = server.NewRouter(identity, env.store, testMetrics, "local")

	return env
}

// addSession creates an account (plus profile for employees) and an active
// session, returning the session cookie value.
func (e *apiEnv) addSession(t *testing.T, email string, role models.Role) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	userID, err := e.users.CreateUser(context.Background(), email, string(hash), role)
	require.NoError(t, err)

	if role == models.RoleEmployee {
		emp, empErr := e.emps.CreateEmployee(context.Background(), "Test User", email, "Engineering", "Developer", "2023-01-15")
		require.NoError(t, empErr)
		e.store.AddEmployee(emp)
	}

	sessionID, err := e.sessions.Create(context.Background(), userID)
	require.NoError(t, err)
	return sessionID
}

func doRequest(router *gin.Engine, method, path, body, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: "athena_session", Value: sessionID})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_UnauthenticatedIsRedirectedToLogin(t *testing.T) {
	env := newAPIEnv(t)

	rec := doRequest(env.router, http.MethodGet, "/api/v1/employees", "", "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect":"/login"`)
}

func TestRouter_EmployeeCannotReachAdminRoutes(t *testing.T) {
	env := newAPIEnv(t)
	sessionID := env.addSession(t, "john@company.com", models.RoleEmployee)

	rec := doRequest(env.router, http.MethodGet, "/api/v1/employees", "", sessionID)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect":"/employee"`)
}

func TestLoginHandler_RoleMismatchFails(t *testing.T) {
	env := newAPIEnv(t)
	env.addSession(t, "john@company.com", models.RoleEmployee)

	body := `{"email":"john@company.com","password":"secret123","role":"admin"}`
	rec := doRequest(env.router, http.MethodPost, "/api/v1/auth/login", body, "")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginHandler_SuccessSetsSessionCookie(t *testing.T) {
	env := newAPIEnv(t)
	env.addSession(t, "admin@company.com", models.RoleAdmin)

	body := `{"email":"admin@company.com","password":"secret123","role":"admin"}`
	rec := doRequest(env.router, http.MethodPost, "/api/v1/auth/login", body, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect":"/admin"`)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "athena_session", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	env := newAPIEnv(t)
	env.addSession(t, "sarah@company.com", models.RoleEmployee)

	body := `{"name":"Sarah Johnson","email":"sarah@company.com","password":"secret123",` +
		`"department":"Design","position":"UI/UX Designer"}`
	rec := doRequest(env.router, http.MethodPost, "/api/v1/auth/register", body, "")

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestMarkAttendanceHandler_RejectsUnknownStatus(t *testing.T) {
	env := newAPIEnv(t)
	sessionID := env.addSession(t, "admin@company.com", models.RoleAdmin)

	body := `{"employeeId":"emp-1","status":"vacation","date":"2024-01-10"}`
	rec := doRequest(env.router, http.MethodPost, "/api/v1/attendance", body, sessionID)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkAttendanceHandler_UpsertsRecord(t *testing.T) {
	env := newAPIEnv(t)
	sessionID := env.addSession(t, "admin@company.com", models.RoleAdmin)

	body := `{"employeeId":"emp-1","status":"present","date":"2024-01-10"}`
	rec := doRequest(env.router, http.MethodPost, "/api/v1/attendance", body, sessionID)
	require.Equal(t, http.StatusOK, rec.Code)

	body = `{"employeeId":"emp-1","status":"absent","date":"2024-01-10"}`
	rec = doRequest(env.router, http.MethodPost, "/api/v1/attendance", body, sessionID)
	require.Equal(t, http.StatusOK, rec.Code)

	records := env.store.GetEmployeeAttendance("emp-1", "")
	require.Len(t, records, 1)
	assert.Equal(t, models.StatusAbsent, records[0].Status)
}

func TestCreateTaskHandler_RequiresAssigneeAndDueDate(t *testing.T) {
	env := newAPIEnv(t)
	sessionID := env.addSession(t, "admin@company.com", models.RoleAdmin)

	body := `{"title":"Update User Dashboard"}`
	rec := doRequest(env.router, http.MethodPost, "/api/v1/tasks", body, sessionID)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateTaskHandler_CreatesPendingTask(t *testing.T) {
	env := newAPIEnv(t)
	sessionID := env.addSession(t, "admin@company.com", models.RoleAdmin)

	body := `{"title":"Update User Dashboard","assignedTo":"emp-3","dueDate":"2024-01-20"}`
	rec := doRequest(env.router, http.MethodPost, "/api/v1/tasks", body, sessionID)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Task models.Task `json:"task"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.TaskPending, resp.Task.Status)
	assert.Equal(t, "emp-3", resp.Task.AssignedTo)

	tasks := env.store.GetEmployeeTasks("emp-3")
	require.Len(t, tasks, 1)
}

func TestGetEmployeeAttendance_EmployeeCannotReadOthers(t *testing.T) {
	env := newAPIEnv(t)
	sessionID := env.addSession(t, "john@company.com", models.RoleEmployee)

	rec := doRequest(env.router, http.MethodGet, "/api/v1/employees/emp-999/attendance", "", sessionID)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetAttendanceStats_EmptyMonthReturnsZeroes(t *testing.T) {
	env := newAPIEnv(t)
	sessionID := env.addSession(t, "john@company.com", models.RoleEmployee)

	rec := doRequest(env.router, http.MethodGet, "/api/v1/employees/emp-1/stats?month=2024-02", "", sessionID)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"stats":{"present":0,"absent":0,"overtime":0,"halfday":0}}`, rec.Body.String())
}

func TestUpdateTaskStatusHandler_UnknownStatus(t *testing.T) {
	env := newAPIEnv(t)
	sessionID := env.addSession(t, "john@company.com", models.RoleEmployee)

	body := `{"status":"archived"}`
	rec := doRequest(env.router, http.MethodPatch, "/api/v1/tasks/task-1/status", body, sessionID)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutHandler_ClearsSession(t *testing.T) {
	env := newAPIEnv(t)
	sessionID := env.addSession(t, "john@company.com", models.RoleEmployee)

	rec := doRequest(env.router, http.MethodPost, "/api/v1/auth/logout", "", sessionID)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(env.router, http.MethodGet, "/api/v1/auth/me", "", sessionID)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
