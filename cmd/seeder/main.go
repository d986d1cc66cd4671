// Command seeder fills an empty database with a demo company: one admin
// account, a handful of employees, a month of randomized attendance and a
// few tasks. Intended for local environments only.
package main

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/athena-ems/athena/internal/config"
	"github.com/athena-ems/athena/internal/metrics"
	"github.com/athena-ems/athena/internal/models"
	"github.com/athena-ems/athena/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tamathecxder/randomail"
	"golang.org/x/crypto/bcrypt"
)

const dateLayout = "2006-01-02"
const demoPassword = "athena-demo"

type demoEmployee struct {
	name       string
	email      string
	department string
	position   string
	joinDate   string
}

func main() {
	cfg := config.MustLoad()

	dbpool, dbErr := repository.NewDatabase(
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Dbname)
	if dbErr != nil {
		log.Fatalf("Failed to connect to DB: %v", dbErr)
	}
	defer dbpool.Close()

	reg := prometheus.NewRegistry()
	appMetrics := metrics.NewMetrics(reg)

	employeeRepo := repository.NewEmployeeRepository(dbpool, appMetrics)
	attendanceRepo := repository.NewAttendanceRepository(dbpool, appMetrics)
	taskRepo := repository.NewTaskRepository(dbpool, appMetrics)
	userRepo := repository.NewUserRepository(dbpool, appMetrics)

	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	adminID, err := userRepo.CreateUser(ctx, "admin@company.com", string(hash), models.RoleAdmin)
	if err != nil {
		log.Fatalf("Failed to create admin account (already seeded?): %v", err)
	}

	demo := []demoEmployee{
		{"John Smith", "john@company.com", "Engineering", "Frontend Developer", "2023-01-15"},
		{"Sarah Johnson", "sarah@company.com", "Design", "UI/UX Designer", "2023-02-01"},
		{"Mike Wilson", "", "Marketing", "Marketing Specialist", "2023-03-01"},
	}

	var employees []models.Employee
	for _, d := range demo {
		email := d.email
		if email == "" {
			// Same treatment real imports get: no email on file, generate one.
			email = randomail.GenerateRandomEmail()
			log.Printf("No email for %s, generated %s", d.name, email)
		}

		if _, err = userRepo.CreateUser(ctx, email, string(hash), models.RoleEmployee); err != nil {
			log.Fatalf("Failed to create account for %s: %v", d.name, err)
		}
		employee, empErr := employeeRepo.CreateEmployee(ctx, d.name, email, d.department, d.position, d.joinDate)
		if empErr != nil {
			log.Fatalf("Failed to create employee %s: %v", d.name, empErr)
		}
		employees = append(employees, employee)
	}

	// A month of attendance up to today, weighted towards present.
	statuses := []models.AttendanceStatus{
		models.StatusPresent, models.StatusPresent, models.StatusPresent, models.StatusPresent,
		models.StatusAbsent, models.StatusOvertime, models.StatusHalfday,
	}
	now := time.Now()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	for _, employee := range employees {
		for day := firstOfMonth; !day.After(now); day = day.AddDate(0, 0, 1) {
			status := statuses[rand.Intn(len(statuses))]
			if _, err = attendanceRepo.UpsertAttendance(
				ctx, employee.ID, day.Format(dateLayout), status, ""); err != nil {
				log.Fatalf("Failed to seed attendance for %s: %v", employee.Name, err)
			}
		}
	}

	demoTasks := []models.Task{
		{
			Title:       "Update User Dashboard",
			Description: "Implement new features for the user dashboard including analytics widgets",
			AssignedTo:  employees[0].ID,
			Status:      models.TaskAccepted,
			DueDate:     now.AddDate(0, 0, 10).Format(dateLayout),
		},
		{
			Title:       "Design System Documentation",
			Description: "Create comprehensive documentation for the design system components",
			AssignedTo:  employees[1].ID,
			Status:      models.TaskPending,
			DueDate:     now.AddDate(0, 0, 5).Format(dateLayout),
		},
		{
			Title:       "Marketing Campaign Analysis",
			Description: "Analyze the performance of Q4 marketing campaigns and prepare report",
			AssignedTo:  employees[2].ID,
			Status:      models.TaskPending,
			DueDate:     now.AddDate(0, 0, 13).Format(dateLayout),
		},
	}
	for _, task := range demoTasks {
		task.AssignedBy = adminID
		task.CreatedDate = now.Format(dateLayout)
		if _, err = taskRepo.CreateTask(ctx, task); err != nil {
			log.Fatalf("Failed to seed task %q: %v", task.Title, err)
		}
	}

	log.Printf("✅ Seeded %d employees, attendance for %s, %d tasks. Demo password: %s",
		len(employees), now.Format("2006-01"), len(demoTasks), demoPassword)
}
