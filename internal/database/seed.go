package database

import (
	"fmt"
	"time"

	applog "github.com/yukikurage/project-dashboard-api/internal/logger"
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"github.com/yukikurage/project-dashboard-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	user     models.User
	password string
}

func date(s string) *time.Time {
	t := utils.MustDate(s)
	return &t
}

func stamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ref(id uint64) *uint64 { return &id }

func seedUsers() []seedUser {
	return []seedUser{
		{models.User{ID: 1, Username: "admin", Role: models.RoleAdmin, Name: "Sarah Johnson", Email: "sarah@company.com"}, "admin123"},
		{models.User{ID: 2, Username: "teamlead1", Role: models.RoleTeamLead, Name: "Mike Chen", Email: "mike@company.com"}, "lead123"},
		{models.User{ID: 3, Username: "teamlead2", Role: models.RoleTeamLead, Name: "Emily Rodriguez", Email: "emily@company.com"}, "lead123"},
		{models.User{ID: 4, Username: "member1", Role: models.RoleTeamMember, Name: "Alex Thompson", Email: "alex@company.com"}, "member123"},
		{models.User{ID: 5, Username: "member2", Role: models.RoleTeamMember, Name: "Jessica Park", Email: "jessica@company.com"}, "member123"},
		{models.User{ID: 6, Username: "member3", Role: models.RoleTeamMember, Name: "David Kim", Email: "david@company.com"}, "member123"},
	}
}

func seedProjects() []models.Project {
	return []models.Project{
		{
			ID: 1, Name: "Mobile App Redesign", Description: "Complete redesign of the company mobile application with modern UI/UX principles",
			Deadline: date("2025-09-15"), Progress: 65, Status: models.ProjectStatusInProgress,
			TeamLeadID: ref(2), Priority: models.PriorityHigh, CreatedAt: *date("2025-07-01"),
		},
		{
			ID: 2, Name: "Customer Portal Enhancement", Description: "Add new features to customer portal including analytics dashboard and reporting tools",
			Deadline: date("2025-08-30"), Progress: 30, Status: models.ProjectStatusInProgress,
			TeamLeadID: ref(3), Priority: models.PriorityMedium, CreatedAt: *date("2025-07-05"),
		},
		{
			ID: 3, Name: "API Security Audit", Description: "Comprehensive security review and implementation of best practices for all API endpoints",
			Deadline: date("2025-08-10"), Progress: 85, Status: models.ProjectStatusInProgress,
			TeamLeadID: ref(2), Priority: models.PriorityHigh, CreatedAt: *date("2025-06-20"),
		},
		{
			ID: 4, Name: "Database Optimization", Description: "Improve database performance and implement caching strategies",
			Deadline: date("2025-09-01"), Progress: 15, Status: models.ProjectStatusPlanning,
			TeamLeadID: ref(3), Priority: models.PriorityMedium, CreatedAt: *date("2025-07-10"),
		},
	}
}

func seedTasks() []models.Task {
	return []models.Task{
		{
			ID: 1, Title: "Design Login Screen", Description: "Create modern login interface with improved UX",
			ProjectID: 1, AssignedTo: 4, AssignedBy: 2, Status: models.TaskStatusDone, Priority: models.PriorityHigh,
			Deadline: date("2025-07-20"), Progress: 100, CreatedAt: *date("2025-07-05"), CompletedAt: date("2025-07-18"),
		},
		{
			ID: 2, Title: "Implement Dashboard Components", Description: "Build reusable dashboard components with responsive design",
			ProjectID: 1, AssignedTo: 5, AssignedBy: 2, Status: models.TaskStatusInProgress, Priority: models.PriorityHigh,
			Deadline: date("2025-07-28"), Progress: 70, CreatedAt: *date("2025-07-10"),
		},
		{
			ID: 3, Title: "API Integration Testing", Description: "Test all API endpoints and handle error scenarios",
			ProjectID: 1, AssignedTo: 4, AssignedBy: 2, Status: models.TaskStatusTodo, Priority: models.PriorityMedium,
			Deadline: date("2025-08-05"), Progress: 0, CreatedAt: *date("2025-07-15"),
		},
		{
			ID: 4, Title: "User Analytics Dashboard", Description: "Create analytics dashboard for customer behavior tracking",
			ProjectID: 2, AssignedTo: 6, AssignedBy: 3, Status: models.TaskStatusInProgress, Priority: models.PriorityMedium,
			Deadline: date("2025-08-15"), Progress: 40, CreatedAt: *date("2025-07-08"),
		},
		{
			ID: 5, Title: "Security Vulnerability Assessment", Description: "Conduct thorough security testing on all endpoints",
			ProjectID: 3, AssignedTo: 4, AssignedBy: 2, Status: models.TaskStatusDone, Priority: models.PriorityHigh,
			Deadline: date("2025-07-25"), Progress: 100, CreatedAt: *date("2025-07-01"), CompletedAt: date("2025-07-23"),
		},
		{
			ID: 6, Title: "Implement JWT Authentication", Description: "Add secure JWT-based authentication system",
			ProjectID: 3, AssignedTo: 5, AssignedBy: 2, Status: models.TaskStatusInProgress, Priority: models.PriorityHigh,
			Deadline: date("2025-08-01"), Progress: 80, CreatedAt: *date("2025-07-12"),
		},
	}
}

func seedMessages() []models.Message {
	return []models.Message{
		{ID: 1, FromUserID: 2, ToUserID: 4, Body: "How is the progress on the login screen design?", Timestamp: stamp("2025-07-20T10:30:00Z"), Read: true},
		{ID: 2, FromUserID: 4, ToUserID: 2, Body: "Just completed it! The new design looks much cleaner.", Timestamp: stamp("2025-07-20T10:45:00Z"), Read: true},
		{ID: 3, FromUserID: 3, ToUserID: 6, Body: "Need your input on the analytics dashboard requirements.", Timestamp: stamp("2025-07-20T14:20:00Z")},
		{ID: 4, FromUserID: 1, ToUserID: 2, Body: "Great progress on the mobile app project! Keep it up.", Timestamp: stamp("2025-07-20T16:00:00Z"), Read: true},
	}
}

func seedNotifications() []models.Notification {
	return []models.Notification{
		{ID: 1, UserID: 1, Type: models.NotificationProjectUpdate, Body: "Mobile App Redesign project is 65% complete", Timestamp: stamp("2025-07-20T09:00:00Z")},
		{ID: 2, UserID: 2, Type: models.NotificationTaskCompleted, Body: `Alex Thompson completed "Design Login Screen"`, Timestamp: stamp("2025-07-18T15:30:00Z"), Read: true},
		{ID: 3, UserID: 3, Type: models.NotificationDeadlineReminder, Body: "Customer Portal Enhancement deadline is approaching", Timestamp: stamp("2025-07-20T08:00:00Z")},
	}
}

// Seed loads the demo fixtures into an empty store. Passwords are hashed with
// the given bcrypt cost. Seeding a store that already has users is a no-op.
func Seed(db *gorm.DB, bcryptCost int) error {
	var existing int64
	if err := db.Model(&models.User{}).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to inspect store: %w", err)
	}
	if existing > 0 {
		applog.Info("Store already populated, skipping seed")
		return nil
	}

	users := make([]models.User, 0, 6)
	for _, su := range seedUsers() {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash seed password for %s: %w", su.user.Username, err)
		}
		u := su.user
		u.PasswordHash = string(hash)
		u.Avatar = utils.AvatarURL(u.Username)
		users = append(users, u)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&users).Error; err != nil {
			return fmt.Errorf("users: %w", err)
		}
		projects := seedProjects()
		if err := tx.Create(&projects).Error; err != nil {
			return fmt.Errorf("projects: %w", err)
		}
		tasks := seedTasks()
		if err := tx.Create(&tasks).Error; err != nil {
			return fmt.Errorf("tasks: %w", err)
		}
		messages := seedMessages()
		if err := tx.Create(&messages).Error; err != nil {
			return fmt.Errorf("messages: %w", err)
		}
		notifications := seedNotifications()
		if err := tx.Create(&notifications).Error; err != nil {
			return fmt.Errorf("notifications: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed store: %w", err)
	}

	applog.Info("Seeded store with %d users, %d projects, %d tasks", len(users), len(seedProjects()), len(seedTasks()))
	return nil
}
