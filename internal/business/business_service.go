package business

import (
	"context"
	"errors"

	businesserrors "crewtask/internal/business/errors"
	"crewtask/internal/shared/apperror"
	"crewtask/internal/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/business_service_mock.go -package=mock . Service
type Service interface {
	// List is role-scoped: admins see the whole directory, managers see only
	// their own business, workers get nothing.
	List(ctx context.Context, actor user.Identity) ([]BusinessResponse, error)
	Create(ctx context.Context, actor user.Identity, req CreateBusinessRequest) (*BusinessResponse, error)
	GetByID(ctx context.Context, id string) (*BusinessResponse, error)
	Update(ctx context.Context, actor user.Identity, id string, req UpdateBusinessRequest) (*BusinessResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("business.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("business.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) List(ctx context.Context, actor user.Identity) ([]BusinessResponse, error) {
	switch {
	case actor.Role.IsAdmin():
		bizs, err := s.repo.GetAll(ctx)
		if err != nil {
			s.logger.Error("list businesses failed", zap.Error(err))
			return nil, err
		}
		res := make([]BusinessResponse, len(bizs))
		for i, b := range bizs {
			res[i] = *mapToResponse(&b)
		}
		return res, nil

	case actor.Role.HasManagerCapability():
		own, err := s.GetByID(ctx, actor.BusinessID)
		if err != nil {
			return nil, err
		}
		return []BusinessResponse{*own}, nil

	default:
		return nil, apperror.ErrForbidden
	}
}

func (s *service) Create(ctx context.Context, actor user.Identity, req CreateBusinessRequest) (*BusinessResponse, error) {
	if !actor.Role.IsAdmin() {
		return nil, apperror.ErrForbidden
	}

	biz := &Business{
		Name:     req.Name,
		Industry: req.Industry,
		IsActive: true,
	}

	if err := s.repo.Create(ctx, biz); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, businesserrors.ErrBusinessAlreadyExists
		}
		s.logger.Error("create business failed",
			zap.String("name", req.Name),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("business created",
		zap.String("business_id", biz.ID.String()),
		zap.String("acting_user_id", actor.UserID),
	)

	return mapToResponse(biz), nil
}

func (s *service) GetByID(ctx context.Context, id string) (*BusinessResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, businesserrors.ErrInvalidBusinessID
	}

	biz, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, businesserrors.ErrBusinessNotFound
		}
		return nil, err
	}

	return mapToResponse(biz), nil
}

func (s *service) Update(ctx context.Context, actor user.Identity, id string, req UpdateBusinessRequest) (*BusinessResponse, error) {
	if !actor.Role.HasManagerCapability() {
		return nil, apperror.ErrForbidden
	}
	// Managers and admins alike may only touch their own business.
	if actor.BusinessID != id {
		return nil, apperror.ErrForbidden
	}

	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, businesserrors.ErrInvalidBusinessID
	}

	biz, err := s.repo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, businesserrors.ErrBusinessNotFound
		}
		return nil, err
	}

	if req.Name != "" {
		biz.Name = req.Name
	}
	if req.Industry != "" {
		biz.Industry = req.Industry
	}
	if req.IsActive != nil {
		biz.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, biz); err != nil {
		s.logger.Error("update business failed",
			zap.String("business_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	return mapToResponse(biz), nil
}

func mapToResponse(b *Business) *BusinessResponse {
	return &BusinessResponse{
		ID:       b.ID.String(),
		Name:     b.Name,
		Industry: b.Industry,
		IsActive: b.IsActive,
	}
}
