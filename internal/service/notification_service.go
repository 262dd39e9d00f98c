package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"studenthub-be/internal/dto"
	"studenthub-be/internal/entity"
	"studenthub-be/internal/model"
	"studenthub-be/internal/pkg/apperrors"
	"studenthub-be/internal/pkg/logger"
	"studenthub-be/internal/pkg/mailer"
	"studenthub-be/internal/repository/specification"
	"studenthub-be/internal/repository/unitofwork"
	"studenthub-be/pkg/events"
	"studenthub-be/pkg/livequery"
	pktNats "studenthub-be/pkg/nats"
	"studenthub-be/pkg/watch"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, eventType string, payload interface{})
	Broadcast(eventType string, payload interface{})
}

type INotificationService interface {
	Start(ctx context.Context) error
	List(ctx context.Context, caller entity.Identity, limit, offset int) (*dto.ListNotificationsResponse, error)
	MarkRead(ctx context.Context, caller entity.Identity, notificationId uuid.UUID) error
	MarkAllRead(ctx context.Context, caller entity.Identity) error
}

type notificationService struct {
	uowFactory   unitofwork.RepositoryFactory
	bus          *livequery.Bus
	subscriber   *pktNats.Subscriber
	delivery     NotificationDelivery
	emailService mailer.IEmailService
	watcher      *watch.Watcher
	logger       logger.ILogger
}

func NewNotificationService(
	uowFactory unitofwork.RepositoryFactory,
	bus *livequery.Bus,
	subscriber *pktNats.Subscriber,
	delivery NotificationDelivery,
	emailService mailer.IEmailService,
	log logger.ILogger,
) INotificationService {
	return &notificationService{
		uowFactory:   uowFactory,
		bus:          bus,
		subscriber:   subscriber,
		delivery:     delivery,
		emailService: emailService,
		watcher:      watch.NewWatcher(),
		logger:       log,
	}
}

// Start wires the two notification sources: the durable event stream for
// admin inbox entries, and the status watcher that turns leave request
// transitions into student-facing pushes.
func (s *notificationService) Start(ctx context.Context) error {
	if s.subscriber != nil {
		if err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent); err != nil {
			s.logger.Error("NotificationService", "Failed to start event subscriber", map[string]interface{}{"error": err})
			return err
		}
		s.logger.Info("NotificationService", "Listening to events.>", nil)
	}

	sub, err := livequery.Subscribe(ctx, s.bus, livequery.TopicLeaveRequests, s.fetchAllLeaveRequests)
	if err != nil {
		return err
	}

	go func() {
		for snapshot := range sub.C {
			for _, change := range s.watcher.Observe(snapshot) {
				s.notifyStatusChange(ctx, change)
			}
		}
	}()

	return nil
}

func (s *notificationService) fetchAllLeaveRequests(ctx context.Context) ([]*entity.LeaveRequest, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.LeaveRequestRepository().FindAll(ctx)
}

// notifyStatusChange fans one observed transition out to the student:
// a persisted inbox row, a websocket push, and a decision email.
func (s *notificationService) notifyStatusChange(ctx context.Context, change watch.StatusChange) {
	title := "Leave request approved"
	if change.NewStatus == entity.LeaveStatusRejected {
		title = "Leave request rejected"
	}
	message := fmt.Sprintf("Your %s leave request has been %s.", change.Type, change.NewStatus)

	metadata, _ := json.Marshal(map[string]interface{}{
		"request_id": change.RequestID,
		"new_status": change.NewStatus,
	})

	requestId := change.RequestID
	notification := model.Notification{
		ID:         uuid.New(),
		UserID:     change.StudentID,
		TypeCode:   events.TypeLeaveStatusChange,
		EntityType: "leave_request",
		EntityID:   &requestId,
		Title:      title,
		Message:    message,
		Metadata:   datatypes.JSON(metadata),
		CreatedAt:  time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NotificationRepository().CreateNotification(ctx, &notification); err != nil {
		s.logger.Error("NotificationService", "Failed to persist status notification", map[string]interface{}{
			"error":      err.Error(),
			"request_id": change.RequestID,
		})
		// The websocket push still goes out below.
	}

	s.delivery.Send(change.StudentID, "leave_status", notification)

	s.sendDecisionEmail(ctx, change)

	s.logger.Info("NotificationService", "Status change delivered", map[string]interface{}{
		"request_id": change.RequestID,
		"student_id": change.StudentID,
		"new_status": string(change.NewStatus),
	})
}

func (s *notificationService) sendDecisionEmail(ctx context.Context, change watch.StatusChange) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	student, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: change.StudentID})
	if err != nil || student == nil {
		s.logger.Warn("NotificationService", "Student not found for decision email", map[string]interface{}{"student_id": change.StudentID})
		return
	}

	request, err := uow.LeaveRequestRepository().FindOne(ctx, specification.ByID{ID: change.RequestID})
	if err != nil || request == nil {
		return
	}

	go func() {
		if emailErr := s.emailService.SendLeaveDecision(student.Email, student.FullName(), request); emailErr != nil {
			fmt.Printf("Error sending decision email: %v\n", emailErr)
		}
	}()
}

// handleEvent turns durable stream events into admin inbox entries.
func (s *notificationService) handleEvent(ctx context.Context, event events.Event) error {
	if event.EventType() != events.TypeLeaveSubmitted {
		return nil
	}

	payload := event.Payload()
	leaveType, _ := payload["leave_type"].(string)
	entityIdStr, _ := payload["entity_id"].(string)

	var entityId *uuid.UUID
	if parsed, err := uuid.Parse(entityIdStr); err == nil {
		entityId = &parsed
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	admins, err := uow.UserRepository().FindAll(ctx, specification.ByRole{Role: string(entity.UserRoleAdmin)})
	if err != nil {
		return err
	}

	for _, admin := range admins {
		notification := model.Notification{
			ID:         uuid.New(),
			UserID:     admin.Id,
			TypeCode:   events.TypeLeaveSubmitted,
			EntityType: "leave_request",
			EntityID:   entityId,
			Title:      "New leave request",
			Message:    fmt.Sprintf("A student submitted a %s leave request.", leaveType),
			CreatedAt:  time.Now(),
		}
		if err := uow.NotificationRepository().CreateNotification(ctx, &notification); err != nil {
			s.logger.Error("NotificationService", "Failed to persist admin notification", map[string]interface{}{"error": err.Error()})
			continue
		}
		s.delivery.Send(admin.Id, "notification", notification)
	}

	return nil
}

func (s *notificationService) List(ctx context.Context, caller entity.Identity, limit, offset int) (*dto.ListNotificationsResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	notifications, total, err := uow.NotificationRepository().GetNotificationsByUserID(ctx, caller.UserID, limit, offset)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list notifications", err)
	}

	unread, err := uow.NotificationRepository().GetUnreadCount(ctx, caller.UserID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("count unread", err)
	}

	result := make([]dto.NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		var metadata map[string]interface{}
		if len(n.Metadata) > 0 {
			_ = json.Unmarshal(n.Metadata, &metadata)
		}
		result = append(result, dto.NotificationDTO{
			Id:         n.ID,
			TypeCode:   n.TypeCode,
			EntityType: n.EntityType,
			EntityId:   n.EntityID,
			Title:      n.Title,
			Message:    n.Message,
			Metadata:   metadata,
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt,
		})
	}

	return &dto.ListNotificationsResponse{
		Notifications: result,
		Total:         total,
		UnreadCount:   unread,
	}, nil
}

func (s *notificationService) MarkRead(ctx context.Context, caller entity.Identity, notificationId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NotificationRepository().MarkAsRead(ctx, caller.UserID, notificationId); err != nil {
		return apperrors.NewPersistenceError("mark notification read", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, caller entity.Identity) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NotificationRepository().MarkAllAsRead(ctx, caller.UserID); err != nil {
		return apperrors.NewPersistenceError("mark all notifications read", err)
	}
	return nil
}
