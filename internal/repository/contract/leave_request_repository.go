package contract

import (
	"context"

	"studenthub-be/internal/entity"
	"studenthub-be/internal/repository/specification"

	"github.com/google/uuid"
)

type LeaveRequestRepository interface {
	Create(ctx context.Context, request *entity.LeaveRequest) error

	// TransitionStatus atomically moves a pending request into a terminal
	// state. It reports whether the guarded update matched a row; false means
	// the request was not pending anymore (or does not exist).
	TransitionStatus(ctx context.Context, id uuid.UUID, newStatus entity.LeaveStatus, decidedBy uuid.UUID) (bool, error)

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LeaveRequest, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LeaveRequest, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
