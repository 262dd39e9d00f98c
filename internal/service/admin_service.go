package service

import (
	"context"

	"studenthub-be/internal/dto"
	"studenthub-be/internal/entity"
	"studenthub-be/internal/pkg/apperrors"
	"studenthub-be/internal/pkg/logger"
	"studenthub-be/internal/repository/specification"
	"studenthub-be/internal/repository/unitofwork"
)

// SocketCounter reports how many realtime clients are connected, implemented
// by the websocket hub.
type SocketCounter interface {
	ClientCount() int
}

type IAdminService interface {
	DashboardSummary(ctx context.Context, caller entity.Identity) (*dto.DashboardSummaryResponse, error)
	GetLogs(ctx context.Context, caller entity.Identity, level string, limit, offset int) ([]logger.LogEntry, error)
}

type adminService struct {
	uowFactory unitofwork.RepositoryFactory
	sockets    SocketCounter
	logger     logger.ILogger
}

func NewAdminService(uowFactory unitofwork.RepositoryFactory, sockets SocketCounter, log logger.ILogger) IAdminService {
	return &adminService{
		uowFactory: uowFactory,
		sockets:    sockets,
		logger:     log,
	}
}

func (s *adminService) DashboardSummary(ctx context.Context, caller entity.Identity) (*dto.DashboardSummaryResponse, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.NewAuthorizationError("view the admin dashboard")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	students, err := uow.UserRepository().Count(ctx, specification.ByRole{Role: string(entity.UserRoleStudent)})
	if err != nil {
		return nil, apperrors.NewPersistenceError("count students", err)
	}

	leaves := uow.LeaveRequestRepository()
	pending, err := leaves.Count(ctx, specification.ByLeaveStatus{Status: string(entity.LeaveStatusPending)})
	if err != nil {
		return nil, apperrors.NewPersistenceError("count pending leaves", err)
	}
	approved, err := leaves.Count(ctx, specification.ByLeaveStatus{Status: string(entity.LeaveStatusApproved)})
	if err != nil {
		return nil, apperrors.NewPersistenceError("count approved leaves", err)
	}
	rejected, err := leaves.Count(ctx, specification.ByLeaveStatus{Status: string(entity.LeaveStatusRejected)})
	if err != nil {
		return nil, apperrors.NewPersistenceError("count rejected leaves", err)
	}

	sessions, err := uow.ChatSessionRepository().Count(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("count sessions", err)
	}

	return &dto.DashboardSummaryResponse{
		TotalStudents:   students,
		PendingLeaves:   pending,
		ApprovedLeaves:  approved,
		RejectedLeaves:  rejected,
		ActiveSessions:  sessions,
		ConnectedSocket: s.sockets.ClientCount(),
	}, nil
}

func (s *adminService) GetLogs(ctx context.Context, caller entity.Identity, level string, limit, offset int) ([]logger.LogEntry, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.NewAuthorizationError("read system logs")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.logger.GetLogs(level, limit, offset)
}
