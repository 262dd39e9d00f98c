package model

import (
	"time"

	"github.com/google/uuid"
)

type LeaveRequest struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StudentId       uuid.UUID  `gorm:"type:uuid;not null;index:idx_leave_requests_student_applied,priority:1"`
	Type            string     `gorm:"type:text;not null"`
	StartDate       time.Time  `gorm:"type:date;not null"`
	EndDate         time.Time  `gorm:"type:date;not null"`
	Reason          string     `gorm:"type:text;not null"`
	Status          string     `gorm:"type:leave_status;not null;default:'pending';index"`
	ApplicationDate time.Time  `gorm:"autoCreateTime;index:idx_leave_requests_student_applied,priority:2"`
	DecidedAt       *time.Time `gorm:""`
	DecidedBy       *uuid.UUID `gorm:"type:uuid"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
