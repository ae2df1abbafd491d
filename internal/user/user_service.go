package user

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"crewtask/internal/domain"
	"crewtask/internal/shared/apperror"
	usererrors "crewtask/internal/user/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	identityKeyPrefix = "identity:"
	identityCacheTTL  = 15 * time.Minute
)

func identityCacheKey(authID string) string {
	return identityKeyPrefix + authID
}

//go:generate mockgen -source=user_service.go -destination=mock/user_service_mock.go -package=mock
type Service interface {
	// Resolve maps an authenticated principal to its session identity.
	// Cached per session; every assignment operation keys on the internal
	// user id this returns, never on the auth id.
	Resolve(ctx context.Context, authID string) (Identity, error)
	ListWorkers(ctx context.Context, businessID string) ([]WorkerResponse, error)
	UpdateRole(ctx context.Context, actor Identity, targetUserID string, newRole domain.Role) (WorkerResponse, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Resolve(ctx context.Context, authID string) (Identity, error) {
	if _, err := uuid.Parse(authID); err != nil {
		return Identity{}, usererrors.ErrInvalidUserID
	}

	cacheKey := identityCacheKey(authID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var id Identity
			if json.Unmarshal([]byte(cached), &id) == nil {
				return id, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		profiles, err := s.repo.FindByAuthID(ctx, authID)
		if err != nil {
			s.logger.Error("resolve identity query failed",
				zap.String("auth_id", authID),
				zap.Error(err),
			)
			return Identity{}, err
		}

		switch len(profiles) {
		case 0:
			// Provisioning is asynchronous relative to account creation,
			// so a missing profile is a retryable condition, not a crash.
			s.logger.Warn("no profile for principal", zap.String("auth_id", authID))
			return Identity{}, usererrors.ErrProfileNotFound
		case 1:
		default:
			s.logger.Error("multiple profiles for principal",
				zap.String("auth_id", authID),
				zap.Int("count", len(profiles)),
			)
			return Identity{}, usererrors.ErrProfileConflict
		}

		p := profiles[0]
		id := Identity{
			UserID:     p.ID.String(),
			AuthID:     p.AuthID.String(),
			BusinessID: p.BusinessID.String(),
			Role:       p.Role,
			IsManager:  p.Role.HasManagerCapability(),
		}

		if s.rdb != nil {
			if data, err := json.Marshal(id); err == nil {
				s.rdb.Set(ctx, cacheKey, data, identityCacheTTL)
			}
		}

		return id, nil
	})

	if err != nil {
		return Identity{}, err
	}

	return v.(Identity), nil
}

func (s *service) ListWorkers(ctx context.Context, businessID string) ([]WorkerResponse, error) {
	profiles, err := s.repo.FindAllByBusiness(ctx, businessID)
	if err != nil {
		s.logger.Error("list workers failed",
			zap.String("business_id", businessID),
			zap.Error(err),
		)
		return nil, err
	}

	res := make([]WorkerResponse, len(profiles))
	for i, p := range profiles {
		res[i] = mapToWorkerResponse(p)
	}
	return res, nil
}

func (s *service) UpdateRole(ctx context.Context, actor Identity, targetUserID string, newRole domain.Role) (WorkerResponse, error) {
	if !actor.Role.IsAdmin() {
		return WorkerResponse{}, apperror.ErrForbidden
	}
	if !newRole.Assignable() {
		return WorkerResponse{}, usererrors.ErrRoleNotAssignable
	}
	if _, err := uuid.Parse(targetUserID); err != nil {
		return WorkerResponse{}, usererrors.ErrInvalidUserID
	}

	target, err := s.repo.FindByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return WorkerResponse{}, usererrors.ErrProfileNotFound
		}
		s.logger.Error("update role fetch target failed",
			zap.String("target_user_id", targetUserID),
			zap.Error(err),
		)
		return WorkerResponse{}, err
	}

	if target.BusinessID.String() != actor.BusinessID {
		return WorkerResponse{}, usererrors.ErrCrossBusiness
	}
	// Admin is immutable through this path in both directions.
	if target.Role.IsAdmin() {
		return WorkerResponse{}, usererrors.ErrAdminRoleImmutable
	}

	updated, err := s.repo.UpdateRole(ctx, targetUserID, newRole)
	if err != nil {
		s.logger.Error("update role persist failed",
			zap.String("target_user_id", targetUserID),
			zap.Error(err),
		)
		return WorkerResponse{}, err
	}

	// The target's cached identity now carries a stale role.
	if s.rdb != nil {
		cacheKey := identityCacheKey(updated.AuthID.String())
		if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
			s.logger.Error("failed to invalidate identity cache",
				zap.String("key", cacheKey),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("role updated",
		zap.String("target_user_id", targetUserID),
		zap.String("new_role", string(newRole)),
		zap.String("acting_user_id", actor.UserID),
	)

	return mapToWorkerResponse(*updated), nil
}

func mapToWorkerResponse(p Profile) WorkerResponse {
	return WorkerResponse{
		ID:         p.ID.String(),
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Email:      p.Email,
		Role:       string(p.Role),
		BusinessID: p.BusinessID.String(),
		CreatedAt:  p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
