package user

import (
	"context"

	"crewtask/internal/domain"
	"crewtask/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=user_repo.go -destination=mock/user_repo_mock.go -package=mock
type Repository interface {
	FindByAuthID(ctx context.Context, authID string) ([]Profile, error)
	FindByID(ctx context.Context, id string) (*Profile, error)
	FindAllByBusiness(ctx context.Context, businessID string) ([]Profile, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*Profile, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindByAuthID returns every profile linked to the principal. More than one
// row is data corruption and the caller decides how loudly to fail.
func (r *repository) FindByAuthID(ctx context.Context, authID string) ([]Profile, error) {
	var profiles []Profile
	err := r.db.WithContext(ctx).
		Where("auth_id = ?", authID).
		Find(&profiles).Error
	return profiles, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) FindAllByBusiness(ctx context.Context, businessID string) ([]Profile, error) {
	var profiles []Profile
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(businessID)).
		Order("first_name ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r *repository) UpdateRole(ctx context.Context, id string, role domain.Role) (*Profile, error) {
	var p Profile
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}

	p.Role = role
	if err := r.db.WithContext(ctx).Save(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
