package performance

import (
	"context"
	"math"
	"time"

	"crewtask/internal/user"

	"go.uber.org/zap"
)

//go:generate mockgen -source=performance_service.go -destination=mock/performance_service_mock.go -package=mock
type Service interface {
	// GetStats computes live figures from assignments, never from snapshots.
	// Managers see the whole business, workers see themselves.
	GetStats(ctx context.Context, actor user.Identity) (StatsResponse, error)
	ListSnapshots(ctx context.Context, actor user.Identity) ([]SnapshotResponse, error)
	RecordCompletion(ctx context.Context, userID string, occurredAt time.Time) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("performance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("performance.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetStats(ctx context.Context, actor user.Identity) (StatsResponse, error) {
	now := time.Now().UTC()

	var (
		counts StatsCounts
		err    error
	)
	if actor.IsManager {
		counts, err = s.repo.CountsByBusiness(ctx, actor.BusinessID, now)
	} else {
		counts, err = s.repo.CountsByUser(ctx, actor.UserID, now)
	}
	if err != nil {
		s.logger.Error("compute stats failed",
			zap.String("user_id", actor.UserID),
			zap.Bool("is_manager", actor.IsManager),
			zap.Error(err),
		)
		return StatsResponse{}, err
	}

	return mapToStatsResponse(counts), nil
}

func (s *service) ListSnapshots(ctx context.Context, actor user.Identity) ([]SnapshotResponse, error) {
	var (
		rows []PerformanceSnapshot
		err  error
	)
	if actor.IsManager {
		rows, err = s.repo.ListSnapshotsByBusiness(ctx, actor.BusinessID)
	} else {
		rows, err = s.repo.ListSnapshotsByUser(ctx, actor.UserID)
	}
	if err != nil {
		s.logger.Error("list snapshots failed",
			zap.String("user_id", actor.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	res := make([]SnapshotResponse, len(rows))
	for i, r := range rows {
		res[i] = SnapshotResponse{
			UserID:         r.UserID.String(),
			CompletedTasks: r.CompletedTasks,
			PendingTasks:   r.PendingTasks,
			OverdueTasks:   r.OverdueTasks,
			WeekNumber:     r.WeekNumber,
			Year:           r.Year,
			CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		}
	}
	return res, nil
}

func (s *service) RecordCompletion(ctx context.Context, userID string, occurredAt time.Time) error {
	counts, err := s.repo.CountsByUser(ctx, userID, occurredAt.UTC())
	if err != nil {
		s.logger.Error("snapshot recount failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	year, week := occurredAt.UTC().ISOWeek()
	if err := s.repo.UpsertWeeklySnapshot(ctx, userID, week, year, counts); err != nil {
		s.logger.Error("snapshot upsert failed",
			zap.String("user_id", userID),
			zap.Int("week", week),
			zap.Int("year", year),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func mapToStatsResponse(c StatsCounts) StatsResponse {
	total := c.Completed + c.Pending

	rate := 0
	if total > 0 {
		rate = int(math.Round(100 * float64(c.Completed) / float64(total)))
	}

	return StatsResponse{
		Completed:      c.Completed,
		Pending:        c.Pending,
		Overdue:        c.Overdue,
		Total:          total,
		CompletionRate: rate,
	}
}
