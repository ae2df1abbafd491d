package auth

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"time"

	autherrors "crewtask/internal/auth/errors"
	"crewtask/internal/business"
	"crewtask/internal/domain"
	"crewtask/internal/shared/apperror"
	"crewtask/internal/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	// Register creates the account and its profile in one transaction; a
	// missing business leaves nothing behind.
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, resp AuthResponse, err error)
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	resolver    user.Service
	businessSvc business.Service
	logger      *zap.Logger
}

func NewService(db *sql.DB, repo Repository, resolver user.Service, businessSvc business.Service, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		resolver:    resolver,
		businessSvc: businessSvc,
		logger:      l,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return AuthResponse{}, apperror.InvalidField("Role")
	}

	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		return AuthResponse{}, apperror.InvalidField("BusinessID")
	}

	// Business must exist before anything is written.
	if _, err := s.businessSvc.GetByID(ctx, req.BusinessID); err != nil {
		return AuthResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("register begin tx failed", zap.Error(err))
		return AuthResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	now := time.Now().UTC()

	account := &Account{
		ID:        uuid.New(),
		Email:     req.Email,
		Password:  string(hashed),
		IsActive:  true,
		CreatedAt: now,
	}
	if err := qtx.CreateAccount(ctx, account); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
		}
		s.logger.Error("register account persist failed", zap.Error(err))
		return AuthResponse{}, err
	}

	profile := &user.Profile{
		ID:         uuid.New(),
		AuthID:     account.ID,
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Role:       role,
		BusinessID: businessID,
		CreatedAt:  now,
	}
	if err := qtx.CreateProfile(ctx, profile); err != nil {
		s.logger.Error("register profile persist failed", zap.Error(err))
		return AuthResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("register commit failed", zap.Error(err))
		return AuthResponse{}, err
	}

	s.logger.Info("account registered",
		zap.String("auth_id", account.ID.String()),
		zap.String("user_id", profile.ID.String()),
		zap.String("business_id", req.BusinessID),
	)

	return AuthResponse{
		AuthID:     account.ID.String(),
		UserID:     profile.ID.String(),
		BusinessID: req.BusinessID,
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Role:       string(role),
	}, nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, string, AuthResponse, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	// Every new authentication re-resolves the profile; a stale cached
	// identity never outlives a login.
	identity, err := s.resolver.Resolve(ctx, account.ID.String())
	if err != nil {
		return "", "", AuthResponse{}, err
	}

	accessToken, err := s.generateToken(identity, accessTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	refreshToken, err := s.generateToken(identity, refreshTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return accessToken, refreshToken, AuthResponse{
		AuthID:     identity.AuthID,
		UserID:     identity.UserID,
		BusinessID: identity.BusinessID,
		Email:      account.Email,
		Role:       string(identity.Role),
	}, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	authIDStr, ok := claims["auth_id"].(string)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	authID, err := uuid.Parse(authIDStr)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidAccountID
	}

	account, err := s.repo.GetByID(ctx, authID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrAccountNotFound
	}

	// Re-resolve so a role changed since issuance lands in the new pair.
	identity, err := s.resolver.Resolve(ctx, account.ID.String())
	if err != nil {
		return "", "", AuthResponse{}, err
	}

	newAccessToken, err := s.generateToken(identity, accessTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	newRefreshToken, err := s.generateToken(identity, refreshTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return newAccessToken, newRefreshToken, AuthResponse{
		AuthID:     identity.AuthID,
		UserID:     identity.UserID,
		BusinessID: identity.BusinessID,
		Email:      account.Email,
		Role:       string(identity.Role),
	}, nil
}

func (s *service) generateToken(identity user.Identity, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"auth_id":     identity.AuthID,
		"user_id":     identity.UserID,
		"business_id": identity.BusinessID,
		"role":        string(identity.Role),
		"exp":         time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
