package task

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"crewtask/internal/events"
	"crewtask/internal/messaging/kafka"
	"crewtask/internal/shared/apperror"
	"crewtask/internal/shared/contextutil"
	taskerrors "crewtask/internal/task/errors"
	"crewtask/internal/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=task_service.go -destination=mock/task_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actor user.Identity, req CreateTaskRequest) (TaskResponse, error)
	// ListVisible returns exactly the tasks the actor holds an assignment
	// for, with every assignment of those tasks so aggregate status renders.
	ListVisible(ctx context.Context, actor user.Identity) ([]TaskResponse, error)
	GetByID(ctx context.Context, actor user.Identity, taskID string) (TaskResponse, error)
	CompleteAssignment(ctx context.Context, actor user.Identity, assignmentID string, photoURL *string) (AssignmentResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, outbox kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("task.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("task.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outbox,
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, actor user.Identity, req CreateTaskRequest) (TaskResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	if !actor.IsManager {
		return TaskResponse{}, apperror.ErrForbidden
	}

	assigneeIDs := dedupe(req.AssigneeIDs)
	if len(assigneeIDs) == 0 {
		return TaskResponse{}, taskerrors.ErrNoAssignees
	}
	assigneeUUIDs := make([]uuid.UUID, len(assigneeIDs))
	for i, id := range assigneeIDs {
		uid, err := uuid.Parse(id)
		if err != nil {
			return TaskResponse{}, taskerrors.ErrInvalidAssigneeID
		}
		assigneeUUIDs[i] = uid
	}

	businessID, err := uuid.Parse(actor.BusinessID)
	if err != nil {
		return TaskResponse{}, apperror.InvalidField("BusinessID")
	}
	creatorID, err := uuid.Parse(actor.UserID)
	if err != nil {
		return TaskResponse{}, apperror.InvalidField("UserID")
	}

	count, err := s.repo.CountUsersInBusiness(ctx, actor.BusinessID, assigneeIDs)
	if err != nil {
		s.logger.Error("create task assignee lookup failed", zap.String("request_id", rid), zap.Error(err))
		return TaskResponse{}, err
	}
	if count != int64(len(assigneeIDs)) {
		s.logger.Warn("create task rejected, assignee outside business",
			zap.String("request_id", rid),
			zap.String("business_id", actor.BusinessID),
		)
		return TaskResponse{}, taskerrors.ErrAssigneeOutsideBusiness
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create task begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return TaskResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := time.Now().UTC()

	t := &Task{
		ID:            uuid.New(),
		BusinessID:    businessID,
		Title:         req.Title,
		Description:   req.Description,
		DueDate:       req.DueDate.UTC(),
		RequiresPhoto: req.RequiresPhoto,
		CreatedBy:     creatorID,
		CreatedAt:     now,
	}
	if err := qtx.CreateTask(ctx, t); err != nil {
		s.logger.Error("create task persist failed", zap.String("request_id", rid), zap.Error(err))
		return TaskResponse{}, err
	}

	assignments := make([]TaskAssignment, 0, len(assigneeUUIDs))
	for _, assigneeID := range assigneeUUIDs {
		a := TaskAssignment{
			ID:         uuid.New(),
			TaskID:     t.ID,
			UserID:     assigneeID,
			AssignedAt: now,
		}
		if err := qtx.CreateAssignment(ctx, &a); err != nil {
			s.logger.Error("create assignment persist failed",
				zap.String("request_id", rid),
				zap.String("task_id", t.ID.String()),
				zap.String("assignee_id", assigneeID.String()),
				zap.Error(err),
			)
			return TaskResponse{}, err
		}
		assignments = append(assignments, a)
	}

	if s.outbox != nil {
		event := events.TaskCreatedEvent{
			EventType:  events.EventTaskCreated,
			RequestID:  rid,
			TaskID:     t.ID.String(),
			BusinessID: actor.BusinessID,
			CreatedBy:  actor.UserID,
			Assignees:  assigneeIDs,
			OccurredAt: now,
		}
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return TaskResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "task",
			AggregateID:   t.ID.String(),
			EventType:     event.EventType,
			Topic:         events.TaskLifecycleTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("create task outbox persist failed",
				zap.String("task_id", t.ID.String()),
				zap.Error(err),
			)
			return TaskResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return TaskResponse{}, err
	}

	s.logger.Info("task created",
		zap.String("request_id", rid),
		zap.String("task_id", t.ID.String()),
		zap.Int("assignees", len(assignments)),
	)

	return mapToTaskResponse(*t, assignments), nil
}

func (s *service) ListVisible(ctx context.Context, actor user.Identity) ([]TaskResponse, error) {
	tasks, err := s.repo.FindVisibleTasks(ctx, actor.BusinessID, actor.UserID)
	if err != nil {
		s.logger.Error("list visible tasks failed",
			zap.String("user_id", actor.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	taskIDs := make([]string, len(tasks))
	for i, t := range tasks {
		taskIDs[i] = t.ID.String()
	}

	assignments, err := s.repo.FindAssignmentsByTaskIDs(ctx, taskIDs)
	if err != nil {
		s.logger.Error("list assignments failed", zap.Error(err))
		return nil, err
	}

	byTask := make(map[uuid.UUID][]TaskAssignment, len(tasks))
	for _, a := range assignments {
		byTask[a.TaskID] = append(byTask[a.TaskID], a)
	}

	res := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		res[i] = mapToTaskResponse(t, byTask[t.ID])
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, actor user.Identity, taskID string) (TaskResponse, error) {
	if _, err := uuid.Parse(taskID); err != nil {
		return TaskResponse{}, taskerrors.ErrInvalidTaskID
	}

	t, err := s.repo.FindTaskByIDAndBusiness(ctx, actor.BusinessID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TaskResponse{}, taskerrors.ErrTaskNotFound
		}
		return TaskResponse{}, err
	}

	assignments, err := s.repo.FindAssignmentsByTaskIDs(ctx, []string{taskID})
	if err != nil {
		return TaskResponse{}, err
	}

	return mapToTaskResponse(*t, assignments), nil
}

func (s *service) CompleteAssignment(ctx context.Context, actor user.Identity, assignmentID string, photoURL *string) (AssignmentResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	if _, err := uuid.Parse(assignmentID); err != nil {
		return AssignmentResponse{}, taskerrors.ErrInvalidAssignmentID
	}

	a, err := s.repo.FindAssignmentByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AssignmentResponse{}, taskerrors.ErrAssignmentNotFound
		}
		s.logger.Error("complete assignment fetch failed", zap.String("request_id", rid), zap.Error(err))
		return AssignmentResponse{}, err
	}

	if a.UserID.String() != actor.UserID {
		return AssignmentResponse{}, taskerrors.ErrNotAssignee
	}
	if a.Completed {
		return AssignmentResponse{}, taskerrors.ErrAlreadyCompleted
	}

	t, err := s.repo.FindTaskByIDAndBusiness(ctx, actor.BusinessID, a.TaskID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AssignmentResponse{}, taskerrors.ErrTaskNotFound
		}
		return AssignmentResponse{}, err
	}

	// Advisory only: the client nags for a photo, the engine does not block.
	if t.RequiresPhoto && (photoURL == nil || *photoURL == "") {
		s.logger.Warn("assignment completed without required photo",
			zap.String("request_id", rid),
			zap.String("assignment_id", assignmentID),
			zap.String("task_id", t.ID.String()),
		)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("complete assignment begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return AssignmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	now := time.Now().UTC()
	a.Completed = true
	a.CompletedAt = &now
	a.VerificationPhotoURL = photoURL

	affected, err := qtx.MarkAssignmentCompleted(ctx, a)
	if err != nil {
		s.logger.Error("complete assignment persist failed", zap.String("request_id", rid), zap.Error(err))
		return AssignmentResponse{}, err
	}
	if affected == 0 {
		// Someone won the race between our read and this write.
		return AssignmentResponse{}, taskerrors.ErrAlreadyCompleted
	}

	if s.outbox != nil {
		event := events.AssignmentCompletedEvent{
			EventType:    events.EventAssignmentCompleted,
			RequestID:    rid,
			TaskID:       a.TaskID.String(),
			AssignmentID: a.ID.String(),
			UserID:       actor.UserID,
			BusinessID:   actor.BusinessID,
			HasPhoto:     photoURL != nil && *photoURL != "",
			OccurredAt:   now,
		}
		payload, err := json.Marshal(event)
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return AssignmentResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "task_assignment",
			AggregateID:   a.ID.String(),
			EventType:     event.EventType,
			Topic:         events.TaskLifecycleTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("complete assignment outbox persist failed",
				zap.String("assignment_id", a.ID.String()),
				zap.Error(err),
			)
			return AssignmentResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return AssignmentResponse{}, err
	}

	s.logger.Info("assignment completed",
		zap.String("request_id", rid),
		zap.String("assignment_id", a.ID.String()),
		zap.String("task_id", a.TaskID.String()),
	)

	return mapToAssignmentResponse(*a), nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func mapToAssignmentResponse(a TaskAssignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:                   a.ID.String(),
		TaskID:               a.TaskID.String(),
		UserID:               a.UserID.String(),
		AssignedAt:           a.AssignedAt.Format(time.RFC3339),
		Completed:            a.Completed,
		VerificationPhotoURL: a.VerificationPhotoURL,
	}
	if a.CompletedAt != nil {
		v := a.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &v
	}
	return resp
}

func mapToTaskResponse(t Task, assignments []TaskAssignment) TaskResponse {
	resp := TaskResponse{
		ID:            t.ID.String(),
		Title:         t.Title,
		Description:   t.Description,
		DueDate:       t.DueDate.Format(time.RFC3339),
		RequiresPhoto: t.RequiresPhoto,
		BusinessID:    t.BusinessID.String(),
		CreatedBy:     t.CreatedBy.String(),
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
		Status:        DeriveStatus(assignments),
		Overdue:       Overdue(t, assignments, time.Now().UTC()),
		Assignments:   make([]AssignmentResponse, len(assignments)),
	}
	for i, a := range assignments {
		resp.Assignments[i] = mapToAssignmentResponse(a)
	}
	return resp
}
