package business

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/business_repo_mock.go -package=mock . Repository
type Repository interface {
	Create(ctx context.Context, biz *Business) error
	GetByID(ctx context.Context, id uuid.UUID) (*Business, error)
	GetAll(ctx context.Context) ([]Business, error)
	Update(ctx context.Context, biz *Business) error
	WithTx(tx *gorm.DB) Repository
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, biz *Business) error {
	return r.db.WithContext(ctx).Create(biz).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Business, error) {
	var biz Business
	err := r.db.WithContext(ctx).First(&biz, "id = ?", id).Error
	return &biz, err
}

func (r *repository) GetAll(ctx context.Context) ([]Business, error) {
	var bizs []Business
	err := r.db.WithContext(ctx).Order("name ASC").Find(&bizs).Error
	return bizs, err
}

func (r *repository) Update(ctx context.Context, biz *Business) error {
	return r.db.WithContext(ctx).Save(biz).Error
}
