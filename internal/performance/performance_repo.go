package performance

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type StatsCounts struct {
	Completed int64
	Pending   int64
	Overdue   int64
}

//go:generate mockgen -source=performance_repo.go -destination=mock/performance_repo_mock.go -package=mock
type Repository interface {
	CountsByUser(ctx context.Context, userID string, now time.Time) (StatsCounts, error)
	CountsByBusiness(ctx context.Context, businessID string, now time.Time) (StatsCounts, error)
	UpsertWeeklySnapshot(ctx context.Context, userID string, week, year int, counts StatsCounts) error
	ListSnapshotsByUser(ctx context.Context, userID string) ([]PerformanceSnapshot, error)
	ListSnapshotsByBusiness(ctx context.Context, businessID string) ([]PerformanceSnapshot, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

const countsQuery = `
SELECT
	COUNT(*) FILTER (WHERE ta.completed) AS completed,
	COUNT(*) FILTER (WHERE NOT ta.completed) AS pending,
	COUNT(*) FILTER (WHERE NOT ta.completed AND t.due_date < ?) AS overdue
FROM task_assignments ta
JOIN tasks t ON t.id = ta.task_id
`

func (r *repository) CountsByUser(ctx context.Context, userID string, now time.Time) (StatsCounts, error) {
	var c StatsCounts
	err := r.db.WithContext(ctx).
		Raw(countsQuery+`WHERE ta.user_id = ?`, now, userID).
		Scan(&c).Error
	return c, err
}

func (r *repository) CountsByBusiness(ctx context.Context, businessID string, now time.Time) (StatsCounts, error) {
	var c StatsCounts
	err := r.db.WithContext(ctx).
		Raw(countsQuery+`WHERE t.business_id = ?`, now, businessID).
		Scan(&c).Error
	return c, err
}

// UpsertWeeklySnapshot writes absolute counts, so replaying the same event
// lands on the same row values.
func (r *repository) UpsertWeeklySnapshot(ctx context.Context, userID string, week, year int, counts StatsCounts) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO task_performance (user_id, completed_tasks, pending_tasks, overdue_tasks, week_number, year, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, now(), now())
		ON CONFLICT (user_id, week_number, year) DO UPDATE
		SET completed_tasks = EXCLUDED.completed_tasks,
		    pending_tasks = EXCLUDED.pending_tasks,
		    overdue_tasks = EXCLUDED.overdue_tasks,
		    updated_at = now()
	`, userID, counts.Completed, counts.Pending, counts.Overdue, week, year).Error
}

func (r *repository) ListSnapshotsByUser(ctx context.Context, userID string) ([]PerformanceSnapshot, error) {
	var rows []PerformanceSnapshot
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("year DESC, week_number DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) ListSnapshotsByBusiness(ctx context.Context, businessID string) ([]PerformanceSnapshot, error) {
	var rows []PerformanceSnapshot
	err := r.db.WithContext(ctx).
		Where("user_id IN (SELECT id FROM users WHERE business_id = ?)", businessID).
		Order("year DESC, week_number DESC").
		Find(&rows).Error
	return rows, err
}
