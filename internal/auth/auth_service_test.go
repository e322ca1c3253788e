package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-payway/internal/auth"
	autherrors "go-payway/internal/auth/errors"
	authMock "go-payway/internal/auth/mock"
	"go-payway/internal/domain"
	"go-payway/internal/shared/contextutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "auth-test-secret"

func hashed(t *testing.T, password string) string {
	t.Helper()
	pw, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(pw)
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	user := func(t *testing.T) *auth.User {
		return &auth.User{
			ID:       userID,
			Name:     "Payway Admin",
			Email:    "admin@payway.test",
			Password: hashed(t, "password123"),
			Role:     domain.RoleAdmin,
			IsActive: true,
		}
	}

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := authMock.NewMockRepository(ctrl)
		service := auth.NewService(repo, testSecret, time.Hour)

		repo.EXPECT().GetByEmail(ctx, "admin@payway.test").Return(user(t), nil)

		token, resp, err := service.Login(ctx, "admin@payway.test", "password123")

		require.NoError(t, err)
		assert.Equal(t, auth.AuthResponse{
			ID:    userID.String(),
			Email: "admin@payway.test",
			Name:  "Payway Admin",
			Role:  domain.RoleAdmin,
		}, resp)

		parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
		require.NoError(t, err)
		claims := parsed.Claims.(jwt.MapClaims)
		assert.Equal(t, userID.String(), claims["user_id"])
		assert.Equal(t, domain.RoleAdmin, claims["role"])
		exp, err := claims.GetExpirationTime()
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, time.Minute)
	})

	t.Run("success logs through request logger", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := authMock.NewMockRepository(ctrl)
		service := auth.NewService(repo, testSecret, time.Hour)
		core, logs := observer.New(zap.InfoLevel)
		reqCtx := contextutil.WithLogger(ctx, zap.New(core))

		repo.EXPECT().GetByEmail(reqCtx, "admin@payway.test").Return(user(t), nil)

		_, _, err := service.Login(reqCtx, "admin@payway.test", "password123")

		require.NoError(t, err)
		assert.Equal(t, 1, logs.FilterMessage("user signed in").Len())
	})

	t.Run("wrong password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := authMock.NewMockRepository(ctrl)
		service := auth.NewService(repo, testSecret, time.Hour)

		repo.EXPECT().GetByEmail(ctx, "admin@payway.test").Return(user(t), nil)

		_, _, err := service.Login(ctx, "admin@payway.test", "wrongpass")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := authMock.NewMockRepository(ctrl)
		service := auth.NewService(repo, testSecret, time.Hour)

		repo.EXPECT().GetByEmail(ctx, "ghost@payway.test").Return(&auth.User{}, gorm.ErrRecordNotFound)

		_, _, err := service.Login(ctx, "ghost@payway.test", "password123")

		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := authMock.NewMockRepository(ctrl)
		service := auth.NewService(repo, testSecret, time.Hour)

		u := user(t)
		u.IsActive = false
		repo.EXPECT().GetByEmail(ctx, u.Email).Return(u, nil)

		_, _, err := service.Login(ctx, u.Email, "password123")

		assert.ErrorIs(t, err, autherrors.ErrUserInactive)
	})

	t.Run("repository error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := authMock.NewMockRepository(ctrl)
		service := auth.NewService(repo, testSecret, time.Hour)

		repo.EXPECT().GetByEmail(ctx, "admin@payway.test").Return(nil, errors.New("db down"))

		_, _, err := service.Login(ctx, "admin@payway.test", "password123")

		assert.EqualError(t, err, "db down")
	})
}

func TestService_GetMe(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := authMock.NewMockRepository(ctrl)
		service := auth.NewService(repo, testSecret, time.Hour)

		repo.EXPECT().GetByID(ctx, userID).Return(&auth.User{ID: userID, Email: "a@payway.test", Role: domain.RoleAdmin}, nil)

		resp, err := service.GetMe(ctx, userID.String())

		require.NoError(t, err)
		assert.Equal(t, "a@payway.test", resp.Email)
		assert.Equal(t, domain.RoleAdmin, resp.Role)
	})

	t.Run("invalid id", func(t *testing.T) {
		service := auth.NewService(authMock.NewMockRepository(gomock.NewController(t)), testSecret, time.Hour)

		_, err := service.GetMe(ctx, "not-a-uuid")

		assert.ErrorIs(t, err, autherrors.ErrInvalidUserID)
	})

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := authMock.NewMockRepository(ctrl)
		service := auth.NewService(repo, testSecret, time.Hour)

		repo.EXPECT().GetByID(ctx, userID).Return(&auth.User{}, gorm.ErrRecordNotFound)

		_, err := service.GetMe(ctx, userID.String())

		assert.ErrorIs(t, err, autherrors.ErrUserNotFound)
	})
}

func TestService_SeedAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing admin", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := authMock.NewMockRepository(ctrl)
		service := auth.NewService(repo, testSecret, time.Hour)

		repo.EXPECT().GetByEmail(ctx, "admin@payway.test").Return(&auth.User{}, gorm.ErrRecordNotFound)
		repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *auth.User) error {
			assert.Equal(t, "admin@payway.test", u.Email)
			assert.Equal(t, domain.RoleAdmin, u.Role)
			assert.True(t, u.IsActive)
			assert.NotEqual(t, uuid.Nil, u.ID)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("s3cret-pass")))
			return nil
		})

		created, err := service.SeedAdmin(ctx, " Admin@Payway.test ", "s3cret-pass", "Administrator")

		require.NoError(t, err)
		assert.True(t, created)
	})

	t.Run("existing admin is left alone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := authMock.NewMockRepository(ctrl)
		service := auth.NewService(repo, testSecret, time.Hour)

		repo.EXPECT().GetByEmail(ctx, "admin@payway.test").Return(&auth.User{Email: "admin@payway.test"}, nil)

		created, err := service.SeedAdmin(ctx, "admin@payway.test", "s3cret-pass", "Administrator")

		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("no email configured", func(t *testing.T) {
		service := auth.NewService(authMock.NewMockRepository(gomock.NewController(t)), testSecret, time.Hour)

		created, err := service.SeedAdmin(ctx, "", "", "")

		require.NoError(t, err)
		assert.False(t, created)
	})
}
