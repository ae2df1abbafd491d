package task

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Title         string    `gorm:"type:varchar(200);not null"`
	Description   string    `gorm:"type:text"`
	DueDate       time.Time `gorm:"not null;index"`
	RequiresPhoto bool      `gorm:"not null;default:false"`
	CreatedBy     uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt     time.Time `gorm:"not null;default:now()"`
	UpdatedAt     time.Time `gorm:"not null;default:now()"`
}

func (Task) TableName() string {
	return "tasks"
}

// TaskAssignment is one user's share of a task. Completion is terminal and
// only the assignee may flip it.
type TaskAssignment struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TaskID               uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID               uuid.UUID  `gorm:"type:uuid;not null;index"`
	AssignedAt           time.Time  `gorm:"not null;default:now()"`
	Completed            bool       `gorm:"not null;default:false"`
	CompletedAt          *time.Time `gorm:""`
	VerificationPhotoURL *string    `gorm:"type:varchar(500)"`
}

func (TaskAssignment) TableName() string {
	return "task_assignments"
}
