package service

import (
	"context"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studenthub-be/internal/dto"
	"studenthub-be/internal/entity"
	"studenthub-be/internal/pkg/apperrors"
	"studenthub-be/internal/pkg/logger"
	"studenthub-be/internal/repository/contract"
	"studenthub-be/internal/repository/specification"
	"studenthub-be/internal/repository/unitofwork"
	"studenthub-be/pkg/livequery"
)

// In-memory fakes standing in for the GORM repositories.

type fakeLeaveRepo struct {
	requests map[uuid.UUID]*entity.LeaveRequest

	// forceNotApplied simulates losing the guarded update race: the request
	// flips to raceWinnerStatus as if another admin decided first.
	forceNotApplied  bool
	raceWinnerStatus entity.LeaveStatus
}

func newFakeLeaveRepo() *fakeLeaveRepo {
	return &fakeLeaveRepo{requests: make(map[uuid.UUID]*entity.LeaveRequest)}
}

func (r *fakeLeaveRepo) Create(ctx context.Context, request *entity.LeaveRequest) error {
	cp := *request
	r.requests[request.Id] = &cp
	return nil
}

func (r *fakeLeaveRepo) TransitionStatus(ctx context.Context, id uuid.UUID, newStatus entity.LeaveStatus, decidedBy uuid.UUID) (bool, error) {
	req, ok := r.requests[id]
	if !ok {
		return false, nil
	}
	if r.forceNotApplied {
		req.Status = r.raceWinnerStatus
		return false, nil
	}
	if req.Status != entity.LeaveStatusPending {
		return false, nil
	}
	req.Status = newStatus
	return true, nil
}

func (r *fakeLeaveRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LeaveRequest, error) {
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			if req, found := r.requests[byID.ID]; found {
				cp := *req
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeLeaveRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LeaveRequest, error) {
	var out []*entity.LeaveRequest
	for _, req := range r.requests {
		if !matchesLeaveSpecs(req, specs) {
			continue
		}
		cp := *req
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeLeaveRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func matchesLeaveSpecs(req *entity.LeaveRequest, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByStudentID:
			if req.StudentId != s.StudentID {
				return false
			}
		case specification.ByLeaveStatus:
			if string(req.Status) != s.Status {
				return false
			}
		}
	}
	return true
}

type fakeUserRepo struct {
	users []*entity.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	all, _ := r.FindAll(ctx, specs...)
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *fakeUserRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.users {
		keep := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.ByRole:
				if string(u.Role) != s.Role {
					keep = false
				}
			case specification.ByEmail:
				if u.Email != s.Email {
					keep = false
				}
			}
		}
		if keep {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeUnitOfWork struct {
	leaveRepo   *fakeLeaveRepo
	userRepo    *fakeUserRepo
	sessionRepo *fakeSessionRepo
	messageRepo *fakeMessageRepo
	notifRepo   *fakeNotificationRepo
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository { return u.userRepo }
func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return u.sessionRepo
}
func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return u.messageRepo
}
func (u *fakeUnitOfWork) LeaveRequestRepository() contract.LeaveRequestRepository {
	return u.leaveRepo
}
func (u *fakeUnitOfWork) NotificationRepository() contract.NotificationRepository {
	return u.notifRepo
}

type fakeUowFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

// noopLogger satisfies ILogger without touching the filesystem.
type noopLogger struct{}

func (noopLogger) Debug(module, message string, details map[string]interface{}) {}
func (noopLogger) Info(module, message string, details map[string]interface{})  {}
func (noopLogger) Warn(module, message string, details map[string]interface{})  {}
func (noopLogger) Error(module, message string, details map[string]interface{}) {}
func (noopLogger) Sync() error                                                  { return nil }
func (noopLogger) GetLogs(level string, limit, offset int) ([]logger.LogEntry, error) {
	return nil, nil
}
func (noopLogger) GetLogById(id string) (*logger.LogEntry, error) { return nil, nil }

func newLeaveServiceUnderTest() (ILeaveService, *fakeLeaveRepo, *fakeUserRepo) {
	leaveRepo := newFakeLeaveRepo()
	userRepo := &fakeUserRepo{}
	factory := &fakeUowFactory{uow: &fakeUnitOfWork{leaveRepo: leaveRepo, userRepo: userRepo}}
	bus := livequery.NewBus(watermill.NopLogger{})
	return NewLeaveService(factory, bus, nil, noopLogger{}), leaveRepo, userRepo
}

func studentIdentity() entity.Identity {
	return entity.Identity{UserID: uuid.New(), Role: entity.UserRoleStudent}
}

func adminIdentity() entity.Identity {
	return entity.Identity{UserID: uuid.New(), Role: entity.UserRoleAdmin}
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	svc, repo, _ := newLeaveServiceUnderTest()
	caller := studentIdentity()

	result, err := svc.Submit(context.Background(), caller, &dto.SubmitLeaveRequest{
		Type:      "sick",
		StartDate: "2026-09-10",
		EndDate:   "2026-09-12",
		Reason:    "flu, doctor ordered rest",
	})
	require.NoError(t, err)

	assert.Equal(t, string(entity.LeaveStatusPending), result.Status)
	assert.Equal(t, caller.UserID, result.StudentId)
	assert.Equal(t, "2026-09-10", result.StartDate)
	assert.Nil(t, result.DecidedAt)

	stored := repo.requests[result.Id]
	require.NotNil(t, stored)
	assert.Equal(t, entity.LeaveStatusPending, stored.Status)
	assert.False(t, stored.ApplicationDate.IsZero())
}

func TestSubmitRejectsBadDates(t *testing.T) {
	svc, _, _ := newLeaveServiceUnderTest()
	caller := studentIdentity()

	var valErr *apperrors.ValidationError

	_, err := svc.Submit(context.Background(), caller, &dto.SubmitLeaveRequest{
		Type: "sick", StartDate: "10/09/2026", EndDate: "2026-09-12", Reason: "malformed start",
	})
	assert.ErrorAs(t, err, &valErr)

	_, err = svc.Submit(context.Background(), caller, &dto.SubmitLeaveRequest{
		Type: "sick", StartDate: "2026-09-12", EndDate: "2026-09-10", Reason: "ends before it starts",
	})
	assert.ErrorAs(t, err, &valErr)
	assert.Equal(t, "end_date", valErr.Field)
}

func TestDecideRequiresAdmin(t *testing.T) {
	svc, _, _ := newLeaveServiceUnderTest()

	_, err := svc.Decide(context.Background(), studentIdentity(), uuid.New(), &dto.DecideLeaveRequest{Action: "approve"})

	var authErr *apperrors.AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}

func TestDecideUnknownRequest(t *testing.T) {
	svc, _, _ := newLeaveServiceUnderTest()

	_, err := svc.Decide(context.Background(), adminIdentity(), uuid.New(), &dto.DecideLeaveRequest{Action: "approve"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDecideApprovesPendingRequest(t *testing.T) {
	svc, repo, _ := newLeaveServiceUnderTest()
	admin := adminIdentity()
	student := studentIdentity()

	submitted, err := svc.Submit(context.Background(), student, &dto.SubmitLeaveRequest{
		Type: "personal", StartDate: "2026-09-10", EndDate: "2026-09-10", Reason: "family commitment",
	})
	require.NoError(t, err)

	decided, err := svc.Decide(context.Background(), admin, submitted.Id, &dto.DecideLeaveRequest{Action: "approve"})
	require.NoError(t, err)

	assert.Equal(t, string(entity.LeaveStatusApproved), decided.Status)
	assert.NotNil(t, decided.DecidedAt)
	assert.Equal(t, entity.LeaveStatusApproved, repo.requests[submitted.Id].Status)
}

func TestDecideRejectsAlreadyDecidedRequest(t *testing.T) {
	svc, _, _ := newLeaveServiceUnderTest()
	admin := adminIdentity()
	student := studentIdentity()

	submitted, err := svc.Submit(context.Background(), student, &dto.SubmitLeaveRequest{
		Type: "sick", StartDate: "2026-09-10", EndDate: "2026-09-11", Reason: "recurring migraine",
	})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), admin, submitted.Id, &dto.DecideLeaveRequest{Action: "reject"})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), admin, submitted.Id, &dto.DecideLeaveRequest{Action: "approve"})

	var transErr *apperrors.InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, string(entity.LeaveStatusRejected), transErr.Current)
	assert.Equal(t, string(entity.LeaveStatusApproved), transErr.Requested)
}

func TestDecideLosingTheRaceReportsWinner(t *testing.T) {
	svc, repo, _ := newLeaveServiceUnderTest()
	admin := adminIdentity()
	student := studentIdentity()

	submitted, err := svc.Submit(context.Background(), student, &dto.SubmitLeaveRequest{
		Type: "academic", StartDate: "2026-09-10", EndDate: "2026-09-14", Reason: "exchange program interview",
	})
	require.NoError(t, err)

	// The status check sees pending, but the guarded update loses to a
	// concurrent rejection.
	repo.forceNotApplied = true
	repo.raceWinnerStatus = entity.LeaveStatusRejected

	_, err = svc.Decide(context.Background(), admin, submitted.Id, &dto.DecideLeaveRequest{Action: "approve"})

	var transErr *apperrors.InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, string(entity.LeaveStatusRejected), transErr.Current)
}

func TestListOwnReturnsOnlyCallerRequests(t *testing.T) {
	svc, _, _ := newLeaveServiceUnderTest()
	alice := studentIdentity()
	bob := studentIdentity()

	_, err := svc.Submit(context.Background(), alice, &dto.SubmitLeaveRequest{
		Type: "sick", StartDate: "2026-09-10", EndDate: "2026-09-10", Reason: "one day off sick",
	})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), bob, &dto.SubmitLeaveRequest{
		Type: "personal", StartDate: "2026-09-11", EndDate: "2026-09-11", Reason: "moving apartments",
	})
	require.NoError(t, err)

	res, err := svc.ListOwn(context.Background(), alice)
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Total)
	assert.Equal(t, alice.UserID, res.Requests[0].StudentId)
}

func TestListAllRequiresAdminAndResolvesNames(t *testing.T) {
	svc, _, userRepo := newLeaveServiceUnderTest()
	student := studentIdentity()

	userRepo.users = append(userRepo.users, &entity.User{
		Id:        student.UserID,
		Email:     "dina@example.com",
		FirstName: "Dina",
		LastName:  "Putri",
		Role:      entity.UserRoleStudent,
	})

	_, err := svc.Submit(context.Background(), student, &dto.SubmitLeaveRequest{
		Type: "sick", StartDate: "2026-09-10", EndDate: "2026-09-10", Reason: "dentist appointment",
	})
	require.NoError(t, err)

	_, err = svc.ListAll(context.Background(), student, "")
	var authErr *apperrors.AuthorizationError
	assert.ErrorAs(t, err, &authErr)

	res, err := svc.ListAll(context.Background(), adminIdentity(), "")
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Total)
	assert.Equal(t, "Dina Putri", res.Requests[0].StudentName)
}

func TestListAllFiltersByStatus(t *testing.T) {
	svc, _, _ := newLeaveServiceUnderTest()
	admin := adminIdentity()
	student := studentIdentity()

	first, err := svc.Submit(context.Background(), student, &dto.SubmitLeaveRequest{
		Type: "sick", StartDate: "2026-09-10", EndDate: "2026-09-10", Reason: "simple check-up day",
	})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), student, &dto.SubmitLeaveRequest{
		Type: "personal", StartDate: "2026-09-12", EndDate: "2026-09-12", Reason: "family gathering event",
	})
	require.NoError(t, err)

	_, err = svc.Decide(context.Background(), admin, first.Id, &dto.DecideLeaveRequest{Action: "approve"})
	require.NoError(t, err)

	res, err := svc.ListAll(context.Background(), admin, string(entity.LeaveStatusPending))
	require.NoError(t, err)
	require.Equal(t, int64(1), res.Total)
	assert.Equal(t, string(entity.LeaveStatusPending), res.Requests[0].Status)
}
