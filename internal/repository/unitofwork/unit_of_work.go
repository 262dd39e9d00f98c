package unitofwork

import (
	"context"

	"studenthub-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	LeaveRequestRepository() contract.LeaveRequestRepository
	NotificationRepository() contract.NotificationRepository
}
