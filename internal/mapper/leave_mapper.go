package mapper

import (
	"studenthub-be/internal/entity"
	"studenthub-be/internal/model"
)

type LeaveMapper struct{}

func NewLeaveMapper() *LeaveMapper {
	return &LeaveMapper{}
}

func (m *LeaveMapper) ToEntity(r *model.LeaveRequest) *entity.LeaveRequest {
	if r == nil {
		return nil
	}

	return &entity.LeaveRequest{
		Id:              r.Id,
		StudentId:       r.StudentId,
		Type:            r.Type,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Reason:          r.Reason,
		Status:          entity.LeaveStatus(r.Status),
		ApplicationDate: r.ApplicationDate,
		DecidedAt:       r.DecidedAt,
		DecidedBy:       r.DecidedBy,
	}
}

func (m *LeaveMapper) ToModel(r *entity.LeaveRequest) *model.LeaveRequest {
	if r == nil {
		return nil
	}

	return &model.LeaveRequest{
		Id:              r.Id,
		StudentId:       r.StudentId,
		Type:            r.Type,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		Reason:          r.Reason,
		Status:          string(r.Status),
		ApplicationDate: r.ApplicationDate,
		DecidedAt:       r.DecidedAt,
		DecidedBy:       r.DecidedBy,
	}
}

func (m *LeaveMapper) ToEntities(rs []*model.LeaveRequest) []*entity.LeaveRequest {
	entities := make([]*entity.LeaveRequest, len(rs))
	for i, r := range rs {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
