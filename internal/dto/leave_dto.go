package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitLeaveRequest struct {
	Type      string `json:"type" validate:"required,oneof=sick personal academic other"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Reason    string `json:"reason" validate:"required,min=10,max=1000"`
}

type LeaveRequestDTO struct {
	Id              uuid.UUID  `json:"id"`
	StudentId       uuid.UUID  `json:"student_id"`
	StudentName     string     `json:"student_name,omitempty"`
	Type            string     `json:"type"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	ApplicationDate time.Time  `json:"application_date"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
}

type DecideLeaveRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

type LeaveSummaryResponse struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

type ListLeaveRequestsResponse struct {
	Requests []LeaveRequestDTO `json:"requests"`
	Total    int64             `json:"total"`
}
