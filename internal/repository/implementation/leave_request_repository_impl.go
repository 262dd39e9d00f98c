package implementation

import (
	"context"
	"errors"
	"time"

	"studenthub-be/internal/entity"
	"studenthub-be/internal/mapper"
	"studenthub-be/internal/model"
	"studenthub-be/internal/repository/contract"
	"studenthub-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeaveRequestRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LeaveMapper
}

func NewLeaveRequestRepository(db *gorm.DB) contract.LeaveRequestRepository {
	return &LeaveRequestRepositoryImpl{
		db:     db,
		mapper: mapper.NewLeaveMapper(),
	}
}

func (r *LeaveRequestRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *LeaveRequestRepositoryImpl) Create(ctx context.Context, request *entity.LeaveRequest) error {
	m := r.mapper.ToModel(request)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*request = *r.mapper.ToEntity(m)
	return nil
}

// TransitionStatus is the row-level counterpart of the service's state
// machine: the WHERE status = 'pending' guard makes the update atomic, so a
// concurrent decision loses cleanly instead of overwriting a terminal state.
func (r *LeaveRequestRepositoryImpl) TransitionStatus(ctx context.Context, id uuid.UUID, newStatus entity.LeaveStatus, decidedBy uuid.UUID) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.LeaveRequest{}).
		Where("id = ? AND status = ?", id, string(entity.LeaveStatusPending)).
		Updates(map[string]interface{}{
			"status":     string(newStatus),
			"decided_at": now,
			"decided_by": decidedBy,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *LeaveRequestRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.LeaveRequest, error) {
	var m model.LeaveRequest
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *LeaveRequestRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LeaveRequest, error) {
	var models []*model.LeaveRequest
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *LeaveRequestRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.LeaveRequest{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
