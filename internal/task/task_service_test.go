package task

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"crewtask/internal/domain"
	"crewtask/internal/messaging/kafka"
	"crewtask/internal/shared/apperror"
	taskerrors "crewtask/internal/task/errors"
	"crewtask/internal/user"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	withTxFn                   func(tx *sql.Tx) Repository
	createTaskFn               func(ctx context.Context, t *Task) error
	createAssignmentFn         func(ctx context.Context, a *TaskAssignment) error
	markAssignmentCompletedFn  func(ctx context.Context, a *TaskAssignment) (int64, error)
	findTaskByIDAndBusinessFn  func(ctx context.Context, businessID, id string) (*Task, error)
	findVisibleTasksFn         func(ctx context.Context, businessID, userID string) ([]Task, error)
	findAssignmentsByTaskIDsFn func(ctx context.Context, taskIDs []string) ([]TaskAssignment, error)
	findAssignmentByIDFn       func(ctx context.Context, id string) (*TaskAssignment, error)
	countUsersInBusinessFn     func(ctx context.Context, businessID string, userIDs []string) (int64, error)
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f.withTxFn(tx) }
func (f *fakeRepo) CreateTask(ctx context.Context, t *Task) error {
	return f.createTaskFn(ctx, t)
}
func (f *fakeRepo) CreateAssignment(ctx context.Context, a *TaskAssignment) error {
	return f.createAssignmentFn(ctx, a)
}
func (f *fakeRepo) MarkAssignmentCompleted(ctx context.Context, a *TaskAssignment) (int64, error) {
	return f.markAssignmentCompletedFn(ctx, a)
}
func (f *fakeRepo) FindTaskByIDAndBusiness(ctx context.Context, businessID, id string) (*Task, error) {
	return f.findTaskByIDAndBusinessFn(ctx, businessID, id)
}
func (f *fakeRepo) FindVisibleTasks(ctx context.Context, businessID, userID string) ([]Task, error) {
	return f.findVisibleTasksFn(ctx, businessID, userID)
}
func (f *fakeRepo) FindAssignmentsByTaskIDs(ctx context.Context, taskIDs []string) ([]TaskAssignment, error) {
	return f.findAssignmentsByTaskIDsFn(ctx, taskIDs)
}
func (f *fakeRepo) FindAssignmentByID(ctx context.Context, id string) (*TaskAssignment, error) {
	return f.findAssignmentByIDFn(ctx, id)
}
func (f *fakeRepo) CountUsersInBusiness(ctx context.Context, businessID string, userIDs []string) (int64, error) {
	return f.countUsersInBusinessFn(ctx, businessID, userIDs)
}

type fakeOutbox struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }
func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}
func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error            { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id, reason string) error { return nil }

func managerIdentity(businessID string) user.Identity {
	return user.Identity{
		UserID:     uuid.New().String(),
		AuthID:     uuid.New().String(),
		BusinessID: businessID,
		Role:       domain.RoleManager,
		IsManager:  true,
	}
}

func workerIdentity(businessID string) user.Identity {
	return user.Identity{
		UserID:     uuid.New().String(),
		AuthID:     uuid.New().String(),
		BusinessID: businessID,
		Role:       domain.RoleWorker,
		IsManager:  false,
	}
}

func TestService_Create(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	businessID := uuid.New().String()
	actor := managerIdentity(businessID)
	ctx := context.Background()

	var createdTask *Task
	var createdAssignments []TaskAssignment

	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.countUsersInBusinessFn = func(ctx context.Context, bID string, userIDs []string) (int64, error) {
		assert.Equal(t, businessID, bID)
		return int64(len(userIDs)), nil
	}
	repo.createTaskFn = func(ctx context.Context, tk *Task) error { createdTask = tk; return nil }
	repo.createAssignmentFn = func(ctx context.Context, a *TaskAssignment) error {
		createdAssignments = append(createdAssignments, *a)
		return nil
	}

	outbox := &fakeOutbox{}
	svc := NewService(db, repo, outbox)

	mock.ExpectBegin()
	mock.ExpectCommit()

	assignees := []string{uuid.New().String(), uuid.New().String()}
	resp, err := svc.Create(ctx, actor, CreateTaskRequest{
		Title:       "Restock shelves",
		Description: "Aisle 4 and 5",
		DueDate:     time.Now().Add(48 * time.Hour),
		AssigneeIDs: assignees,
	})

	assert.NoError(t, err)
	assert.NotNil(t, createdTask)
	assert.Len(t, createdAssignments, 2)
	assert.Equal(t, StatusPending, resp.Status)
	assert.Len(t, resp.Assignments, 2)

	// The lifecycle event rides the same transaction as the inserts.
	assert.Len(t, outbox.created, 1)
	assert.Equal(t, "task_created", outbox.created[0].EventType)
	assert.Equal(t, createdTask.ID.String(), outbox.created[0].AggregateID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Create_NoAssignees(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	actor := managerIdentity(uuid.New().String())

	inserted := false
	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.createTaskFn = func(ctx context.Context, tk *Task) error { inserted = true; return nil }
	repo.createAssignmentFn = func(ctx context.Context, a *TaskAssignment) error { inserted = true; return nil }

	svc := NewService(db, repo, nil)

	_, err := svc.Create(context.Background(), actor, CreateTaskRequest{
		Title:   "No one to do it",
		DueDate: time.Now().Add(time.Hour),
	})

	assert.ErrorIs(t, err, taskerrors.ErrNoAssignees)
	assert.False(t, inserted, "no rows may be written when validation fails")
	assert.NoError(t, mock.ExpectationsWereMet(), "no transaction may be opened")
}

func TestService_Create_RequiresManager(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	actor := workerIdentity(uuid.New().String())
	svc := NewService(db, &fakeRepo{}, nil)

	_, err := svc.Create(context.Background(), actor, CreateTaskRequest{
		Title:       "Sneaky",
		DueDate:     time.Now().Add(time.Hour),
		AssigneeIDs: []string{uuid.New().String()},
	})

	assert.Error(t, err)
}

func TestService_Create_AssigneeOutsideBusiness(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	actor := managerIdentity(uuid.New().String())

	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.countUsersInBusinessFn = func(ctx context.Context, bID string, userIDs []string) (int64, error) {
		return int64(len(userIDs)) - 1, nil
	}

	svc := NewService(db, repo, nil)

	_, err := svc.Create(context.Background(), actor, CreateTaskRequest{
		Title:       "Cross tenant",
		DueDate:     time.Now().Add(time.Hour),
		AssigneeIDs: []string{uuid.New().String(), uuid.New().String()},
	})

	assert.ErrorIs(t, err, taskerrors.ErrAssigneeOutsideBusiness)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Create_MalformedActorBusinessID(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	actor := managerIdentity(uuid.New().String())
	actor.BusinessID = "not-a-uuid"

	svc := NewService(db, &fakeRepo{}, nil)

	_, err := svc.Create(context.Background(), actor, CreateTaskRequest{
		Title:       "Bad claims",
		DueDate:     time.Now().Add(time.Hour),
		AssigneeIDs: []string{uuid.New().String()},
	})

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet(), "no transaction may be opened")
}

func TestService_CompleteAssignment(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	businessID := uuid.New().String()
	actor := workerIdentity(businessID)
	ctx := context.Background()

	taskID := uuid.New()
	assignmentID := uuid.New()
	stored := TaskAssignment{
		ID:     assignmentID,
		TaskID: taskID,
		UserID: uuid.MustParse(actor.UserID),
	}

	var updated *TaskAssignment
	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.findAssignmentByIDFn = func(ctx context.Context, id string) (*TaskAssignment, error) {
		cp := stored
		return &cp, nil
	}
	repo.findTaskByIDAndBusinessFn = func(ctx context.Context, bID, id string) (*Task, error) {
		return &Task{ID: taskID, BusinessID: uuid.MustParse(businessID), RequiresPhoto: true}, nil
	}
	repo.markAssignmentCompletedFn = func(ctx context.Context, a *TaskAssignment) (int64, error) {
		updated = a
		return 1, nil
	}

	outbox := &fakeOutbox{}
	svc := NewService(db, repo, outbox)

	mock.ExpectBegin()
	mock.ExpectCommit()

	url := "https://storage.example.com/object/public/task-verifications/task_verification/abc/1"
	resp, err := svc.CompleteAssignment(ctx, actor, assignmentID.String(), &url)

	assert.NoError(t, err)
	assert.True(t, resp.Completed)
	assert.NotNil(t, resp.CompletedAt)
	assert.Equal(t, &url, resp.VerificationPhotoURL)
	assert.NotNil(t, updated)
	assert.True(t, updated.Completed)

	assert.Len(t, outbox.created, 1)
	assert.Equal(t, "assignment_completed", outbox.created[0].EventType)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_CompleteAssignment_NotOwner(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	actor := workerIdentity(uuid.New().String())

	repo := &fakeRepo{}
	repo.findAssignmentByIDFn = func(ctx context.Context, id string) (*TaskAssignment, error) {
		return &TaskAssignment{ID: uuid.New(), UserID: uuid.New()}, nil
	}

	svc := NewService(db, repo, nil)

	_, err := svc.CompleteAssignment(context.Background(), actor, uuid.New().String(), nil)
	assert.ErrorIs(t, err, taskerrors.ErrNotAssignee)
}

func TestService_CompleteAssignment_AlreadyCompleted(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	actor := workerIdentity(uuid.New().String())

	repo := &fakeRepo{}
	repo.findAssignmentByIDFn = func(ctx context.Context, id string) (*TaskAssignment, error) {
		return &TaskAssignment{
			ID:        uuid.New(),
			UserID:    uuid.MustParse(actor.UserID),
			Completed: true,
		}, nil
	}

	svc := NewService(db, repo, nil)

	_, err := svc.CompleteAssignment(context.Background(), actor, uuid.New().String(), nil)
	assert.ErrorIs(t, err, taskerrors.ErrAlreadyCompleted)
}

func TestService_CompleteAssignment_LostRace(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	businessID := uuid.New().String()
	actor := workerIdentity(businessID)

	repo := &fakeRepo{}
	repo.withTxFn = func(tx *sql.Tx) Repository { return repo }
	repo.findAssignmentByIDFn = func(ctx context.Context, id string) (*TaskAssignment, error) {
		return &TaskAssignment{
			ID:     uuid.New(),
			TaskID: uuid.New(),
			UserID: uuid.MustParse(actor.UserID),
		}, nil
	}
	repo.findTaskByIDAndBusinessFn = func(ctx context.Context, bID, id string) (*Task, error) {
		return &Task{BusinessID: uuid.MustParse(businessID)}, nil
	}
	repo.markAssignmentCompletedFn = func(ctx context.Context, a *TaskAssignment) (int64, error) {
		return 0, nil
	}

	svc := NewService(db, repo, nil)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.CompleteAssignment(context.Background(), actor, uuid.New().String(), nil)
	assert.ErrorIs(t, err, taskerrors.ErrAlreadyCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_ListVisible(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	businessID := uuid.New().String()
	actor := workerIdentity(businessID)
	otherUser := uuid.New()

	t1 := Task{ID: uuid.New(), BusinessID: uuid.MustParse(businessID), DueDate: time.Now().Add(time.Hour)}
	mine := TaskAssignment{ID: uuid.New(), TaskID: t1.ID, UserID: uuid.MustParse(actor.UserID)}
	theirs := TaskAssignment{ID: uuid.New(), TaskID: t1.ID, UserID: otherUser, Completed: true}

	repo := &fakeRepo{}
	repo.findVisibleTasksFn = func(ctx context.Context, bID, userID string) ([]Task, error) {
		assert.Equal(t, actor.UserID, userID)
		return []Task{t1}, nil
	}
	repo.findAssignmentsByTaskIDsFn = func(ctx context.Context, taskIDs []string) ([]TaskAssignment, error) {
		assert.Equal(t, []string{t1.ID.String()}, taskIDs)
		return []TaskAssignment{mine, theirs}, nil
	}

	svc := NewService(db, repo, nil)

	resp, err := svc.ListVisible(context.Background(), actor)
	assert.NoError(t, err)
	assert.Len(t, resp, 1)
	// Every assignment comes back, not just the caller's, so 1/2 renders.
	assert.Len(t, resp[0].Assignments, 2)
	assert.Equal(t, StatusPartiallyCompleted, resp[0].Status)
}

func TestService_GetByID_NotFound(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	actor := workerIdentity(uuid.New().String())

	repo := &fakeRepo{}
	repo.findTaskByIDAndBusinessFn = func(ctx context.Context, bID, id string) (*Task, error) {
		return nil, gorm.ErrRecordNotFound
	}

	svc := NewService(db, repo, nil)

	_, err := svc.GetByID(context.Background(), actor, uuid.New().String())
	assert.ErrorIs(t, err, taskerrors.ErrTaskNotFound)
	assert.False(t, errors.Is(err, taskerrors.ErrAssignmentNotFound))
}
