package task

import (
	"context"
	"database/sql"

	"crewtask/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=task_repo.go -destination=mock/task_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreateTask(ctx context.Context, t *Task) error
	CreateAssignment(ctx context.Context, a *TaskAssignment) error
	// MarkAssignmentCompleted flips the terminal completion flag. Returns the
	// number of rows changed so the caller can detect a re-completion.
	MarkAssignmentCompleted(ctx context.Context, a *TaskAssignment) (int64, error)

	FindTaskByIDAndBusiness(ctx context.Context, businessID, id string) (*Task, error)
	FindVisibleTasks(ctx context.Context, businessID, userID string) ([]Task, error)
	FindAssignmentsByTaskIDs(ctx context.Context, taskIDs []string) ([]TaskAssignment, error)
	FindAssignmentByID(ctx context.Context, id string) (*TaskAssignment, error)
	CountUsersInBusiness(ctx context.Context, businessID string, userIDs []string) (int64, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) CreateTask(ctx context.Context, t *Task) error {
	query := `
        INSERT INTO tasks (
            id, business_id, title, description, due_date, requires_photo, created_by, created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		t.ID, t.BusinessID, t.Title, t.Description,
		t.DueDate, t.RequiresPhoto, t.CreatedBy, t.CreatedAt,
	)
	return err
}

func (r *repository) CreateAssignment(ctx context.Context, a *TaskAssignment) error {
	query := `
        INSERT INTO task_assignments (
            id, task_id, user_id, assigned_at, completed
        ) VALUES ($1, $2, $3, $4, false)
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		a.ID, a.TaskID, a.UserID, a.AssignedAt,
	)
	return err
}

func (r *repository) MarkAssignmentCompleted(ctx context.Context, a *TaskAssignment) (int64, error) {
	// The completed = false guard makes the terminal transition race-safe.
	query := `
        UPDATE task_assignments
        SET completed = true,
            completed_at = $2,
            verification_photo_url = $3
        WHERE id = $1 AND completed = false
    `
	res, err := r.execer().ExecContext(ctx, query, a.ID, a.CompletedAt, a.VerificationPhotoURL)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) FindTaskByIDAndBusiness(ctx context.Context, businessID, id string) (*Task, error) {
	var t Task
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(businessID)).
		First(&t, "id = ?", id).Error
	return &t, err
}

func (r *repository) FindVisibleTasks(ctx context.Context, businessID, userID string) ([]Task, error) {
	var tasks []Task
	err := r.db.WithContext(ctx).
		Joins("JOIN task_assignments ON task_assignments.task_id = tasks.id").
		Where("task_assignments.user_id = ?", userID).
		Scopes(tenant.Scope(businessID)).
		Order("tasks.due_date ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *repository) FindAssignmentsByTaskIDs(ctx context.Context, taskIDs []string) ([]TaskAssignment, error) {
	if len(taskIDs) == 0 {
		return nil, nil
	}
	var assignments []TaskAssignment
	err := r.db.WithContext(ctx).
		Where("task_id IN ?", taskIDs).
		Order("assigned_at ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *repository) FindAssignmentByID(ctx context.Context, id string) (*TaskAssignment, error) {
	var a TaskAssignment
	err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) CountUsersInBusiness(ctx context.Context, businessID string, userIDs []string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("users").
		Where("id IN ?", userIDs).
		Scopes(tenant.Scope(businessID)).
		Count(&count).Error
	return count, err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	db, err := r.db.DB()
	if err != nil {
		return failingExecer{err: err}
	}
	return db
}

type failingExecer struct {
	err error
}

func (f failingExecer) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, f.err
}
