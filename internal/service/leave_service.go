package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"studenthub-be/internal/dto"
	"studenthub-be/internal/entity"
	"studenthub-be/internal/pkg/apperrors"
	"studenthub-be/internal/pkg/logger"
	"studenthub-be/internal/repository/specification"
	"studenthub-be/internal/repository/unitofwork"
	"studenthub-be/pkg/events"
	"studenthub-be/pkg/livequery"
	pktNats "studenthub-be/pkg/nats"
)

type ILeaveService interface {
	Submit(ctx context.Context, caller entity.Identity, req *dto.SubmitLeaveRequest) (*dto.LeaveRequestDTO, error)
	Decide(ctx context.Context, caller entity.Identity, requestId uuid.UUID, req *dto.DecideLeaveRequest) (*dto.LeaveRequestDTO, error)
	ListOwn(ctx context.Context, caller entity.Identity) (*dto.ListLeaveRequestsResponse, error)
	ListAll(ctx context.Context, caller entity.Identity, status string) (*dto.ListLeaveRequestsResponse, error)
	OwnSummary(ctx context.Context, caller entity.Identity) (*dto.LeaveSummaryResponse, error)

	WatchOwn(ctx context.Context, caller entity.Identity) (*livequery.Subscription[dto.LeaveRequestDTO], error)
	WatchAll(ctx context.Context, caller entity.Identity) (*livequery.Subscription[dto.LeaveRequestDTO], error)
}

type leaveService struct {
	uowFactory     unitofwork.RepositoryFactory
	bus            *livequery.Bus
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewLeaveService(
	uowFactory unitofwork.RepositoryFactory,
	bus *livequery.Bus,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) ILeaveService {
	return &leaveService{
		uowFactory:     uowFactory,
		bus:            bus,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

const (
	leaveDateLayout = "2006-01-02"

	// listAllLimit caps the admin view to the most recent requests.
	listAllLimit = 50
)

func (s *leaveService) Submit(ctx context.Context, caller entity.Identity, req *dto.SubmitLeaveRequest) (*dto.LeaveRequestDTO, error) {
	startDate, err := time.Parse(leaveDateLayout, req.StartDate)
	if err != nil {
		return nil, apperrors.NewValidationError("start_date", "must be YYYY-MM-DD")
	}
	endDate, err := time.Parse(leaveDateLayout, req.EndDate)
	if err != nil {
		return nil, apperrors.NewValidationError("end_date", "must be YYYY-MM-DD")
	}
	if endDate.Before(startDate) {
		return nil, apperrors.NewValidationError("end_date", "must not be before start_date")
	}

	request := &entity.LeaveRequest{
		Id:              uuid.New(),
		StudentId:       caller.UserID,
		Type:            req.Type,
		StartDate:       startDate,
		EndDate:         endDate,
		Reason:          req.Reason,
		Status:          entity.LeaveStatusPending,
		ApplicationDate: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.LeaveRequestRepository().Create(ctx, request); err != nil {
		return nil, apperrors.NewPersistenceError("create leave request", err)
	}

	s.bus.Notify(livequery.TopicLeaveRequests)
	s.publishEvent(ctx, events.NewLeaveSubmitted(request.Id.String(), request.StudentId.String(), request.Type))

	s.logger.Info("LeaveService", "Leave request submitted", map[string]interface{}{
		"request_id": request.Id,
		"student_id": request.StudentId,
		"type":       request.Type,
	})

	return toLeaveRequestDTO(request, ""), nil
}

// Decide moves a pending request to approved or rejected. Only admins may
// decide, and each request is decided at most once: the store-level guarded
// update is the arbiter when two admins race.
func (s *leaveService) Decide(ctx context.Context, caller entity.Identity, requestId uuid.UUID, req *dto.DecideLeaveRequest) (*dto.LeaveRequestDTO, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.NewAuthorizationError("decide leave requests")
	}

	newStatus := entity.LeaveStatusApproved
	if req.Action == "reject" {
		newStatus = entity.LeaveStatusRejected
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	request, err := uow.LeaveRequestRepository().FindOne(ctx, specification.ByID{ID: requestId})
	if err != nil {
		return nil, apperrors.NewPersistenceError("find leave request", err)
	}
	if request == nil {
		return nil, apperrors.ErrNotFound
	}
	if request.Status != entity.LeaveStatusPending {
		return nil, &apperrors.InvalidTransitionError{
			Current:   string(request.Status),
			Requested: string(newStatus),
		}
	}

	applied, err := uow.LeaveRequestRepository().TransitionStatus(ctx, requestId, newStatus, caller.UserID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("transition leave request", err)
	}
	if !applied {
		// Lost the race: someone else decided first. Report the state that won.
		current, findErr := uow.LeaveRequestRepository().FindOne(ctx, specification.ByID{ID: requestId})
		if findErr != nil || current == nil {
			return nil, apperrors.NewPersistenceError("reload leave request", findErr)
		}
		return nil, &apperrors.InvalidTransitionError{
			Current:   string(current.Status),
			Requested: string(newStatus),
		}
	}

	now := time.Now()
	request.Status = newStatus
	request.DecidedAt = &now
	request.DecidedBy = &caller.UserID

	s.bus.Notify(livequery.TopicLeaveRequests)
	s.publishEvent(ctx, events.NewLeaveStatusChanged(
		request.Id.String(),
		request.StudentId.String(),
		request.Type,
		string(newStatus),
		caller.UserID.String(),
	))

	s.logger.Info("LeaveService", "Leave request decided", map[string]interface{}{
		"request_id": request.Id,
		"new_status": string(newStatus),
		"decided_by": caller.UserID,
	})

	return toLeaveRequestDTO(request, ""), nil
}

func (s *leaveService) ListOwn(ctx context.Context, caller entity.Identity) (*dto.ListLeaveRequestsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.fetchOwn(ctx, uow, caller)
}

func (s *leaveService) ListAll(ctx context.Context, caller entity.Identity, status string) (*dto.ListLeaveRequestsResponse, error) {
	if !caller.IsAdmin() {
		return nil, apperrors.NewAuthorizationError("list all leave requests")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.fetchAll(ctx, uow, status)
}

// OwnSummary returns the caller's per-status request counts for the
// dashboard cards.
func (s *leaveService) OwnSummary(ctx context.Context, caller entity.Identity) (*dto.LeaveSummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.LeaveRequestRepository()

	summary := &dto.LeaveSummaryResponse{}
	counts := []struct {
		status entity.LeaveStatus
		target *int64
	}{
		{entity.LeaveStatusPending, &summary.Pending},
		{entity.LeaveStatusApproved, &summary.Approved},
		{entity.LeaveStatusRejected, &summary.Rejected},
	}
	for _, c := range counts {
		n, err := repo.Count(ctx,
			specification.ByStudentID{StudentID: caller.UserID},
			specification.ByLeaveStatus{Status: string(c.status)},
		)
		if err != nil {
			return nil, apperrors.NewPersistenceError("count leave requests", err)
		}
		*c.target = n
	}
	return summary, nil
}

func (s *leaveService) WatchOwn(ctx context.Context, caller entity.Identity) (*livequery.Subscription[dto.LeaveRequestDTO], error) {
	return livequery.Subscribe(ctx, s.bus, livequery.TopicLeaveRequests, func(ctx context.Context) ([]dto.LeaveRequestDTO, error) {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		res, err := s.fetchOwn(ctx, uow, caller)
		if err != nil {
			return nil, err
		}
		return res.Requests, nil
	})
}

func (s *leaveService) WatchAll(ctx context.Context, caller entity.Identity) (*livequery.Subscription[dto.LeaveRequestDTO], error) {
	if !caller.IsAdmin() {
		return nil, apperrors.NewAuthorizationError("watch all leave requests")
	}

	return livequery.Subscribe(ctx, s.bus, livequery.TopicLeaveRequests, func(ctx context.Context) ([]dto.LeaveRequestDTO, error) {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		res, err := s.fetchAll(ctx, uow, "")
		if err != nil {
			return nil, err
		}
		return res.Requests, nil
	})
}

func (s *leaveService) fetchOwn(ctx context.Context, uow unitofwork.UnitOfWork, caller entity.Identity) (*dto.ListLeaveRequestsResponse, error) {
	requests, err := uow.LeaveRequestRepository().FindAll(ctx,
		specification.ByStudentID{StudentID: caller.UserID},
		specification.OrderBy{Field: "application_date", Desc: true},
	)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list own leave requests", err)
	}

	result := make([]dto.LeaveRequestDTO, 0, len(requests))
	for _, req := range requests {
		result = append(result, *toLeaveRequestDTO(req, ""))
	}
	return &dto.ListLeaveRequestsResponse{
		Requests: result,
		Total:    int64(len(result)),
	}, nil
}

func (s *leaveService) fetchAll(ctx context.Context, uow unitofwork.UnitOfWork, status string) (*dto.ListLeaveRequestsResponse, error) {
	specs := []specification.Specification{
		specification.OrderBy{Field: "application_date", Desc: true},
		specification.Limit{N: listAllLimit},
	}
	if status != "" {
		specs = append(specs, specification.ByLeaveStatus{Status: status})
	}

	requests, err := uow.LeaveRequestRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("list leave requests", err)
	}

	// Resolve student names for the admin view.
	names := make(map[uuid.UUID]string)
	students, err := uow.UserRepository().FindAll(ctx, specification.ByRole{Role: string(entity.UserRoleStudent)})
	if err != nil {
		return nil, apperrors.NewPersistenceError("list students", err)
	}
	for _, student := range students {
		names[student.Id] = student.FullName()
	}

	result := make([]dto.LeaveRequestDTO, 0, len(requests))
	for _, req := range requests {
		result = append(result, *toLeaveRequestDTO(req, names[req.StudentId]))
	}
	return &dto.ListLeaveRequestsResponse{
		Requests: result,
		Total:    int64(len(result)),
	}, nil
}

func (s *leaveService) publishEvent(ctx context.Context, event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		fmt.Printf("Failed to publish %s event: %v\n", event.EventType(), err)
	}
}

func toLeaveRequestDTO(req *entity.LeaveRequest, studentName string) *dto.LeaveRequestDTO {
	return &dto.LeaveRequestDTO{
		Id:              req.Id,
		StudentId:       req.StudentId,
		StudentName:     studentName,
		Type:            req.Type,
		StartDate:       req.StartDate.Format(leaveDateLayout),
		EndDate:         req.EndDate.Format(leaveDateLayout),
		Reason:          req.Reason,
		Status:          string(req.Status),
		ApplicationDate: req.ApplicationDate,
		DecidedAt:       req.DecidedAt,
	}
}
