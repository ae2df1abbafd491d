package user_test

import (
	"context"
	"testing"
	"time"

	"crewtask/internal/domain"
	"crewtask/internal/user"
	usererrors "crewtask/internal/user/errors"
	userMock "crewtask/internal/user/mock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

func adminActor(businessID string) user.Identity {
	return user.Identity{
		UserID:     uuid.New().String(),
		AuthID:     uuid.New().String(),
		BusinessID: businessID,
		Role:       domain.RoleAdmin,
		IsManager:  true,
	}
}

func TestService_Resolve(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := userMock.NewMockRepository(ctrl)
	service := user.NewService(mockRepo, nil)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		authID := uuid.New()
		profile := user.Profile{
			ID:         uuid.New(),
			AuthID:     authID,
			Email:      "worker@shop.test",
			FirstName:  "Ana",
			LastName:   "Reyes",
			Role:       domain.RoleWorker,
			BusinessID: uuid.New(),
			CreatedAt:  time.Now(),
		}

		mockRepo.EXPECT().FindByAuthID(ctx, authID.String()).Return([]user.Profile{profile}, nil)

		id, err := service.Resolve(ctx, authID.String())

		assert.NoError(t, err)
		assert.Equal(t, profile.ID.String(), id.UserID)
		assert.Equal(t, authID.String(), id.AuthID)
		assert.False(t, id.IsManager)
	})

	t.Run("Manager Capability", func(t *testing.T) {
		authID := uuid.New()
		profile := user.Profile{
			ID:         uuid.New(),
			AuthID:     authID,
			Role:       domain.RoleManager,
			BusinessID: uuid.New(),
		}

		mockRepo.EXPECT().FindByAuthID(ctx, authID.String()).Return([]user.Profile{profile}, nil)

		id, err := service.Resolve(ctx, authID.String())

		assert.NoError(t, err)
		assert.True(t, id.IsManager)
	})

	t.Run("Profile Not Found", func(t *testing.T) {
		authID := uuid.New()
		mockRepo.EXPECT().FindByAuthID(ctx, authID.String()).Return(nil, nil)

		_, err := service.Resolve(ctx, authID.String())

		assert.ErrorIs(t, err, usererrors.ErrProfileNotFound)
	})

	t.Run("Multiple Profiles Is Corruption", func(t *testing.T) {
		authID := uuid.New()
		profiles := []user.Profile{
			{ID: uuid.New(), AuthID: authID},
			{ID: uuid.New(), AuthID: authID},
		}
		mockRepo.EXPECT().FindByAuthID(ctx, authID.String()).Return(profiles, nil)

		_, err := service.Resolve(ctx, authID.String())

		assert.ErrorIs(t, err, usererrors.ErrProfileConflict)
	})

	t.Run("Invalid Auth ID", func(t *testing.T) {
		_, err := service.Resolve(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, usererrors.ErrInvalidUserID)
	})
}

func TestService_ListWorkers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := userMock.NewMockRepository(ctrl)
	service := user.NewService(mockRepo, nil)
	ctx := context.Background()

	businessID := uuid.New()
	profiles := []user.Profile{
		{ID: uuid.New(), FirstName: "Ana", BusinessID: businessID, Role: domain.RoleWorker},
		{ID: uuid.New(), FirstName: "Budi", BusinessID: businessID, Role: domain.RoleManager},
	}

	mockRepo.EXPECT().FindAllByBusiness(ctx, businessID.String()).Return(profiles, nil)

	resp, err := service.ListWorkers(ctx, businessID.String())

	assert.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.Equal(t, "Ana", resp[0].FirstName)
	assert.Equal(t, "Budi", resp[1].FirstName)
}

func TestService_UpdateRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := userMock.NewMockRepository(ctrl)
	service := user.NewService(mockRepo, nil)
	ctx := context.Background()

	businessID := uuid.New()
	actor := adminActor(businessID.String())

	t.Run("Success", func(t *testing.T) {
		targetID := uuid.New()
		target := &user.Profile{
			ID:         targetID,
			AuthID:     uuid.New(),
			Role:       domain.RoleWorker,
			BusinessID: businessID,
		}
		promoted := *target
		promoted.Role = domain.RoleManager

		mockRepo.EXPECT().FindByID(ctx, targetID.String()).Return(target, nil)
		mockRepo.EXPECT().UpdateRole(ctx, targetID.String(), domain.RoleManager).Return(&promoted, nil)

		resp, err := service.UpdateRole(ctx, actor, targetID.String(), domain.RoleManager)

		assert.NoError(t, err)
		assert.Equal(t, "manager", resp.Role)
	})

	t.Run("Non Admin Actor", func(t *testing.T) {
		nonAdmin := actor
		nonAdmin.Role = domain.RoleManager

		_, err := service.UpdateRole(ctx, nonAdmin, uuid.New().String(), domain.RoleWorker)
		assert.Error(t, err)
	})

	t.Run("Cross Business Target", func(t *testing.T) {
		targetID := uuid.New()
		target := &user.Profile{
			ID:         targetID,
			Role:       domain.RoleWorker,
			BusinessID: uuid.New(),
		}

		mockRepo.EXPECT().FindByID(ctx, targetID.String()).Return(target, nil)

		_, err := service.UpdateRole(ctx, actor, targetID.String(), domain.RoleManager)
		assert.ErrorIs(t, err, usererrors.ErrCrossBusiness)
	})

	t.Run("Admin Target Is Immutable", func(t *testing.T) {
		targetID := uuid.New()
		target := &user.Profile{
			ID:         targetID,
			Role:       domain.RoleAdmin,
			BusinessID: businessID,
		}

		mockRepo.EXPECT().FindByID(ctx, targetID.String()).Return(target, nil)

		_, err := service.UpdateRole(ctx, actor, targetID.String(), domain.RoleWorker)
		assert.ErrorIs(t, err, usererrors.ErrAdminRoleImmutable)
	})

	t.Run("Admin Role Cannot Be Granted", func(t *testing.T) {
		_, err := service.UpdateRole(ctx, actor, uuid.New().String(), domain.RoleAdmin)
		assert.ErrorIs(t, err, usererrors.ErrRoleNotAssignable)
	})

	t.Run("Target Not Found", func(t *testing.T) {
		targetID := uuid.New()
		mockRepo.EXPECT().FindByID(ctx, targetID.String()).Return(nil, gorm.ErrRecordNotFound)

		_, err := service.UpdateRole(ctx, actor, targetID.String(), domain.RoleWorker)
		assert.ErrorIs(t, err, usererrors.ErrProfileNotFound)
	})
}
