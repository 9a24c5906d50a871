package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/project-dashboard-api/internal/logger"
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"github.com/yukikurage/project-dashboard-api/internal/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notifier delivers in-app notifications. Delivery is best-effort: other
// services log a failed notification and carry on.
type Notifier interface {
	Notify(userID uint64, kind models.NotificationType, body string) error
	NotifyOnce(userID uint64, kind models.NotificationType, body, refKey string) (bool, error)
	NotifyRole(role models.Role, kind models.NotificationType, body string, except uint64) error
}

// NotificationService handles notification business logic
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	now              Clock
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		now:              time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *NotificationService) WithClock(now Clock) *NotificationService {
	s.now = now
	return s
}

// Notify creates an unread notification for userID.
func (s *NotificationService) Notify(userID uint64, kind models.NotificationType, body string) error {
	n := &models.Notification{UserID: userID, Type: kind, Body: body, Timestamp: s.now()}
	if err := s.notificationRepo.Create(n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// NotifyOnce creates the notification unless the user already has one with refKey.
func (s *NotificationService) NotifyOnce(userID uint64, kind models.NotificationType, body, refKey string) (bool, error) {
	n := &models.Notification{UserID: userID, Type: kind, Body: body, RefKey: refKey, Timestamp: s.now()}
	created, err := s.notificationRepo.CreateOnce(n)
	if err != nil {
		return false, fmt.Errorf("failed to create notification: %w", err)
	}
	return created, nil
}

// NotifyRole notifies every user with role, skipping except.
func (s *NotificationService) NotifyRole(role models.Role, kind models.NotificationType, body string, except uint64) error {
	users, err := s.userRepo.List(&role)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		if u.ID == except {
			continue
		}
		if err := s.Notify(u.ID, kind, body); err != nil {
			return err
		}
	}
	return nil
}

// List returns the viewer's notifications, newest first.
func (s *NotificationService) List(viewer Viewer, unreadOnly bool) ([]models.Notification, error) {
	notifications, err := s.notificationRepo.ListForUser(viewer.ID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead marks one of the viewer's notifications as read.
func (s *NotificationService) MarkRead(viewer Viewer, id uint64) error {
	found, err := s.notificationRepo.MarkRead(id, viewer.ID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if !found {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification of the viewer and returns the count.
func (s *NotificationService) MarkAllRead(viewer Viewer) (int64, error) {
	n, err := s.notificationRepo.MarkAllRead(viewer.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return n, nil
}

// notify sends through n when set and logs instead of failing.
func notify(n Notifier, userID uint64, kind models.NotificationType, body string) {
	if n == nil {
		return
	}
	if err := n.Notify(userID, kind, body); err != nil {
		logger.Warn("notification to user %d dropped: %v", userID, err)
	}
}

func notifyRole(n Notifier, role models.Role, kind models.NotificationType, body string, except uint64) {
	if n == nil {
		return
	}
	if err := n.NotifyRole(role, kind, body, except); err != nil {
		logger.Warn("notification to role %s dropped: %v", role, err)
	}
}
