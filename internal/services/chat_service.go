package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/project-dashboard-api/internal/membership"
	"github.com/yukikurage/project-dashboard-api/internal/models"
	"github.com/yukikurage/project-dashboard-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEmptyMessage       = errors.New("message cannot be empty")
	ErrMessageToSelf      = errors.New("cannot send a message to yourself")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrMessageNotFound    = errors.New("message not found")
	ErrNotMessageReceiver = errors.New("only the recipient can mark a message as read")
)

// ChatService handles direct messaging between users
type ChatService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	taskRepo    repository.TaskRepository
	now         Clock
}

// NewChatService creates a new ChatService
func NewChatService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, projectRepo repository.ProjectRepository, taskRepo repository.TaskRepository) *ChatService {
	return &ChatService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		projectRepo: projectRepo,
		taskRepo:    taskRepo,
		now:         time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *ChatService) WithClock(now Clock) *ChatService {
	s.now = now
	return s
}

// SendMessageInput represents a message to send
type SendMessageInput struct {
	ToUserID uint64
	Body     string
}

// Contacts returns the users the viewer may chat with.
func (s *ChatService) Contacts(viewer Viewer) ([]models.User, error) {
	snap, err := loadSnapshot(s.userRepo, s.projectRepo, s.taskRepo)
	if err != nil {
		return nil, err
	}
	return membership.ChatContacts(viewer.User(), snap.users, snap.projects, snap.tasks), nil
}

// Conversations returns one thread summary per contact.
func (s *ChatService) Conversations(viewer Viewer) ([]membership.Conversation, error) {
	contacts, err := s.Contacts(viewer)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListForUser(viewer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return membership.Conversations(viewer.User(), contacts, messages), nil
}

// ListMessages returns the thread between the viewer and peer, oldest first.
func (s *ChatService) ListMessages(viewer Viewer, peer uint64) ([]models.Message, error) {
	if _, err := s.findUser(peer); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.Thread(viewer.ID, peer)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}
	return messages, nil
}

// SendMessage stores an unread message from the viewer.
func (s *ChatService) SendMessage(viewer Viewer, input SendMessageInput) (*models.Message, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if input.ToUserID == viewer.ID {
		return nil, ErrMessageToSelf
	}
	if _, err := s.findUser(input.ToUserID); err != nil {
		return nil, err
	}

	message := &models.Message{
		FromUserID: viewer.ID,
		ToUserID:   input.ToUserID,
		Body:       body,
		Timestamp:  s.now(),
		Read:       false,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return message, nil
}

// MarkRead marks a message addressed to the viewer as read.
func (s *ChatService) MarkRead(viewer Viewer, id uint64) error {
	message, err := s.messageRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return fmt.Errorf("failed to find message: %w", err)
	}
	if message.ToUserID != viewer.ID {
		return ErrNotMessageReceiver
	}

	found, err := s.messageRepo.MarkRead(id)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	if !found {
		return ErrMessageNotFound
	}
	return nil
}

// MarkThreadRead marks every message from peer to the viewer as read.
func (s *ChatService) MarkThreadRead(viewer Viewer, peer uint64) (int64, error) {
	n, err := s.messageRepo.MarkThreadRead(viewer.ID, peer)
	if err != nil {
		return 0, fmt.Errorf("failed to mark thread read: %w", err)
	}
	return n, nil
}

func (s *ChatService) findUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
