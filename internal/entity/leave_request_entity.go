package entity

import (
	"time"

	"github.com/google/uuid"
)

type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// IsTerminal reports whether the status is final. A leave request leaves
// pending exactly once and is immutable afterwards.
func (s LeaveStatus) IsTerminal() bool {
	return s == LeaveStatusApproved || s == LeaveStatusRejected
}

type LeaveRequest struct {
	Id              uuid.UUID
	StudentId       uuid.UUID
	Type            string
	StartDate       time.Time
	EndDate         time.Time
	Reason          string
	Status          LeaveStatus
	ApplicationDate time.Time
	DecidedAt       *time.Time
	DecidedBy       *uuid.UUID
}
