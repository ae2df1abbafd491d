package performance

import (
	"time"

	"github.com/google/uuid"
)

// PerformanceSnapshot is one user's weekly completion tally, maintained by
// the task lifecycle consumer. Live stats never read from it.
type PerformanceSnapshot struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_task_performance_user_week,priority:1"`
	CompletedTasks int       `gorm:"not null;default:0"`
	PendingTasks   int       `gorm:"not null;default:0"`
	OverdueTasks   int       `gorm:"not null;default:0"`
	WeekNumber     int       `gorm:"not null;uniqueIndex:idx_task_performance_user_week,priority:2"`
	Year           int       `gorm:"not null;uniqueIndex:idx_task_performance_user_week,priority:3"`
	CreatedAt      time.Time `gorm:"not null;default:now()"`
	UpdatedAt      time.Time `gorm:"not null;default:now()"`
}

func (PerformanceSnapshot) TableName() string {
	return "task_performance"
}
