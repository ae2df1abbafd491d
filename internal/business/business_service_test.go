package business

import (
	"context"
	"testing"

	businesserrors "crewtask/internal/business/errors"
	"crewtask/internal/domain"
	"crewtask/internal/shared/apperror"
	"crewtask/internal/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn  func(ctx context.Context, biz *Business) error
	getByIDFn func(ctx context.Context, id uuid.UUID) (*Business, error)
	getAllFn  func(ctx context.Context) ([]Business, error)
	updateFn  func(ctx context.Context, biz *Business) error
}

func (f *fakeRepo) Create(ctx context.Context, biz *Business) error { return f.createFn(ctx, biz) }
func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Business, error) {
	return f.getByIDFn(ctx, id)
}
func (f *fakeRepo) GetAll(ctx context.Context) ([]Business, error) { return f.getAllFn(ctx) }
func (f *fakeRepo) Update(ctx context.Context, biz *Business) error {
	return f.updateFn(ctx, biz)
}
func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func identity(role domain.Role, businessID string) user.Identity {
	return user.Identity{
		UserID:     uuid.New().String(),
		BusinessID: businessID,
		Role:       role,
		IsManager:  role.HasManagerCapability(),
	}
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	ownID := uuid.New()
	own := Business{ID: ownID, Name: "Bakeshop", IsActive: true}
	other := Business{ID: uuid.New(), Name: "Carwash", IsActive: true}

	repo := &fakeRepo{}
	repo.getAllFn = func(ctx context.Context) ([]Business, error) {
		return []Business{own, other}, nil
	}
	repo.getByIDFn = func(ctx context.Context, id uuid.UUID) (*Business, error) {
		if id == ownID {
			cp := own
			return &cp, nil
		}
		return nil, gorm.ErrRecordNotFound
	}

	svc := NewService(repo)

	t.Run("Admin Sees All", func(t *testing.T) {
		resp, err := svc.List(ctx, identity(domain.RoleAdmin, ownID.String()))
		assert.NoError(t, err)
		assert.Len(t, resp, 2)
	})

	t.Run("Manager Sees Own Only", func(t *testing.T) {
		resp, err := svc.List(ctx, identity(domain.RoleManager, ownID.String()))
		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, "Bakeshop", resp[0].Name)
	})

	t.Run("Worker Is Blocked", func(t *testing.T) {
		_, err := svc.List(ctx, identity(domain.RoleWorker, ownID.String()))
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Admin Only", func(t *testing.T) {
		svc := NewService(&fakeRepo{})

		_, err := svc.Create(ctx, identity(domain.RoleManager, uuid.New().String()), CreateBusinessRequest{Name: "New Shop"})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("Success", func(t *testing.T) {
		repo := &fakeRepo{}
		repo.createFn = func(ctx context.Context, biz *Business) error {
			biz.ID = uuid.New()
			return nil
		}
		svc := NewService(repo)

		resp, err := svc.Create(ctx, identity(domain.RoleAdmin, uuid.New().String()), CreateBusinessRequest{Name: "New Shop"})
		assert.NoError(t, err)
		assert.Equal(t, "New Shop", resp.Name)
		assert.True(t, resp.IsActive)
	})

	t.Run("Duplicate Name", func(t *testing.T) {
		repo := &fakeRepo{}
		repo.createFn = func(ctx context.Context, biz *Business) error {
			return &pgconn.PgError{Code: "23505"}
		}
		svc := NewService(repo)

		_, err := svc.Create(ctx, identity(domain.RoleAdmin, uuid.New().String()), CreateBusinessRequest{Name: "New Shop"})
		assert.ErrorIs(t, err, businesserrors.ErrBusinessAlreadyExists)
	})
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Not Found", func(t *testing.T) {
		repo := &fakeRepo{}
		repo.getByIDFn = func(ctx context.Context, id uuid.UUID) (*Business, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewService(repo)

		_, err := svc.GetByID(ctx, uuid.New().String())
		assert.ErrorIs(t, err, businesserrors.ErrBusinessNotFound)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		svc := NewService(&fakeRepo{})

		_, err := svc.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, businesserrors.ErrInvalidBusinessID)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	bizID := uuid.New()

	t.Run("Manager Updates Own Business", func(t *testing.T) {
		repo := &fakeRepo{}
		repo.getByIDFn = func(ctx context.Context, id uuid.UUID) (*Business, error) {
			return &Business{ID: bizID, Name: "Old Name", IsActive: true}, nil
		}
		repo.updateFn = func(ctx context.Context, biz *Business) error {
			assert.Equal(t, "New Name", biz.Name)
			return nil
		}
		svc := NewService(repo)

		resp, err := svc.Update(ctx, identity(domain.RoleManager, bizID.String()), bizID.String(), UpdateBusinessRequest{Name: "New Name"})
		assert.NoError(t, err)
		assert.Equal(t, "New Name", resp.Name)
	})

	t.Run("Other Business Is Forbidden", func(t *testing.T) {
		svc := NewService(&fakeRepo{})

		_, err := svc.Update(ctx, identity(domain.RoleManager, uuid.New().String()), bizID.String(), UpdateBusinessRequest{Name: "X"})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("Worker Is Forbidden", func(t *testing.T) {
		svc := NewService(&fakeRepo{})

		_, err := svc.Update(ctx, identity(domain.RoleWorker, bizID.String()), bizID.String(), UpdateBusinessRequest{Name: "X"})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}
