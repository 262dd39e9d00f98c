package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByStudentID struct {
	StudentID uuid.UUID
}

func (s ByStudentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("student_id = ?", s.StudentID)
}

type ByLeaveStatus struct {
	Status string
}

func (s ByLeaveStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
