package service

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studenthub-be/internal/entity"
	"studenthub-be/internal/model"
	"studenthub-be/pkg/livequery"
)

type fakeNotificationRepo struct {
	notifications map[uuid.UUID]*model.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[uuid.UUID]*model.Notification)}
}

func (r *fakeNotificationRepo) CreateNotification(ctx context.Context, notification *model.Notification) error {
	r.notifications[notification.ID] = notification
	return nil
}

func (r *fakeNotificationRepo) GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	var result []model.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			result = append(result, *n)
		}
	}
	return result, int64(len(result)), nil
}

func (r *fakeNotificationRepo) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	if n, ok := r.notifications[id]; ok && n.UserID == userID {
		now := time.Now()
		n.IsRead = true
		n.ReadAt = &now
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	for _, n := range r.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

type discardDelivery struct{}

func (discardDelivery) Send(userID uuid.UUID, eventType string, payload interface{}) {}
func (discardDelivery) Broadcast(eventType string, payload interface{})              {}

type discardEmailService struct{}

func (discardEmailService) SendLeaveDecision(toEmail, studentName string, request *entity.LeaveRequest) error {
	return nil
}
func (discardEmailService) SendWelcome(toEmail, studentName string) error { return nil }

func newNotificationServiceUnderTest() (INotificationService, *fakeNotificationRepo) {
	repo := newFakeNotificationRepo()
	factory := &fakeUowFactory{uow: &fakeUnitOfWork{
		leaveRepo: newFakeLeaveRepo(),
		userRepo:  &fakeUserRepo{},
		notifRepo: repo,
	}}
	bus := livequery.NewBus(watermill.NopLogger{})
	svc := NewNotificationService(factory, bus, nil, discardDelivery{}, discardEmailService{}, noopLogger{})
	return svc, repo
}

func seedNotification(repo *fakeNotificationRepo, userID uuid.UUID) uuid.UUID {
	id := uuid.New()
	repo.notifications[id] = &model.Notification{
		ID:        id,
		UserID:    userID,
		TypeCode:  "LEAVE_STATUS_CHANGE",
		Title:     "Leave request approved",
		Message:   "Your sick leave request has been approved.",
		CreatedAt: time.Now(),
	}
	return id
}

func TestMarkReadFlipsOwnNotification(t *testing.T) {
	svc, repo := newNotificationServiceUnderTest()
	caller := studentIdentity()
	id := seedNotification(repo, caller.UserID)

	require.NoError(t, svc.MarkRead(context.Background(), caller, id))

	assert.True(t, repo.notifications[id].IsRead)
	assert.NotNil(t, repo.notifications[id].ReadAt)
}

func TestMarkReadIgnoresForeignNotification(t *testing.T) {
	svc, repo := newNotificationServiceUnderTest()
	owner := uuid.New()
	id := seedNotification(repo, owner)

	require.NoError(t, svc.MarkRead(context.Background(), studentIdentity(), id))

	assert.False(t, repo.notifications[id].IsRead, "another user's inbox row must stay unread")
	assert.Nil(t, repo.notifications[id].ReadAt)
}

func TestMarkAllReadScopesToCaller(t *testing.T) {
	svc, repo := newNotificationServiceUnderTest()
	caller := studentIdentity()
	ownID := seedNotification(repo, caller.UserID)
	foreignID := seedNotification(repo, uuid.New())

	require.NoError(t, svc.MarkAllRead(context.Background(), caller))

	assert.True(t, repo.notifications[ownID].IsRead)
	assert.False(t, repo.notifications[foreignID].IsRead)
}
