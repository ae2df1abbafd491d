package auth

import (
	"context"
	"database/sql"

	"crewtask/internal/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_repo.go -destination=mock/auth_repo_mock.go -package=mock

// Repository persists accounts and, inside the registration transaction, the
// profile row that gives the account a domain identity.
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	CreateAccount(ctx context.Context, account *Account) error
	CreateProfile(ctx context.Context, profile *user.Profile) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
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

func (r *repository) CreateAccount(ctx context.Context, account *Account) error {
	query := `
        INSERT INTO accounts (id, email, password, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $5)
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		account.ID, account.Email, account.Password, account.IsActive, account.CreatedAt,
	)
	return err
}

func (r *repository) CreateProfile(ctx context.Context, profile *user.Profile) error {
	query := `
        INSERT INTO users (id, auth_id, email, first_name, last_name, role, business_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err := r.execer().ExecContext(
		ctx, query,
		profile.ID, profile.AuthID, profile.Email, profile.FirstName,
		profile.LastName, profile.Role, profile.BusinessID, profile.CreatedAt,
	)
	return err
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	var account Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	return &account, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	var account Account
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	return &account, err
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
