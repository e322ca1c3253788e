package auth_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-payway/internal/auth"
	autherrors "go-payway/internal/auth/errors"
	authMock "go-payway/internal/auth/mock"
	"go-payway/internal/domain"
	"go-payway/internal/middleware"
	rbacMock "go-payway/internal/rbac/mock"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestHandler_Login(t *testing.T) {
	t.Run("success sets the access cookie", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := authMock.NewMockService(ctrl)
		handler := auth.NewHandler(mockService, nil, true, time.Hour)
		router := setupAuthRouter()
		router.POST("/login", handler.Login)

		reqBody := auth.LoginRequest{Email: "admin@payway.test", Password: "password123"}
		body, _ := json.Marshal(reqBody)

		mockService.EXPECT().
			Login(gomock.Any(), reqBody.Email, reqBody.Password).
			Return("access-token", auth.AuthResponse{ID: "user-1", Email: reqBody.Email, Role: "Admin"}, nil)

		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		cookie := findCookie(w, middleware.AccessTokenCookie)
		require.NotNil(t, cookie)
		assert.Equal(t, "access-token", cookie.Value)
		assert.True(t, cookie.HttpOnly)
		assert.True(t, cookie.Secure)
		assert.Equal(t, 3600, cookie.MaxAge)

		var resp struct {
			Data auth.LoginResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "access-token", resp.Data.AccessToken)
		assert.Equal(t, "user-1", resp.Data.User.ID)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := authMock.NewMockService(ctrl)
		handler := auth.NewHandler(mockService, nil, false, time.Hour)
		router := setupAuthRouter()
		router.POST("/login", handler.Login)

		mockService.EXPECT().
			Login(gomock.Any(), "admin@payway.test", "nope").
			Return("", auth.AuthResponse{}, autherrors.ErrInvalidCredentials)

		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":"admin@payway.test","password":"nope"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid email or password")
		assert.Nil(t, findCookie(w, middleware.AccessTokenCookie))
	})

	t.Run("validation error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		handler := auth.NewHandler(authMock.NewMockService(ctrl), nil, false, time.Hour)
		router := setupAuthRouter()
		router.POST("/login", handler.Login)

		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"email":"not-an-email"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})
}

func TestHandler_Logout(t *testing.T) {
	handler := auth.NewHandler(authMock.NewMockService(gomock.NewController(t)), nil, false, time.Hour)
	router := setupAuthRouter()
	router.POST("/logout", handler.Logout)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logout", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	cookie := findCookie(w, middleware.AccessTokenCookie)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestHandler_Me(t *testing.T) {
	t.Run("returns the principal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := authMock.NewMockService(ctrl)
		handler := auth.NewHandler(mockService, nil, false, time.Hour)

		mockService.EXPECT().GetMe(gomock.Any(), "user-1").
			Return(&auth.AuthResponse{ID: "user-1", Email: "admin@payway.test", Role: "Admin"}, nil)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/me", nil)
		c.Set(middleware.ContextUserID, "user-1")

		handler.Me(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "admin@payway.test")
	})

	t.Run("includes role permissions", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := authMock.NewMockService(ctrl)
		perms := rbacMock.NewMockService(ctrl)
		handler := auth.NewHandler(mockService, perms, false, time.Hour)

		mockService.EXPECT().GetMe(gomock.Any(), "user-1").
			Return(&auth.AuthResponse{ID: "user-1", Role: domain.RoleAdmin}, nil)
		perms.EXPECT().Permissions(domain.RoleAdmin).Return([]domain.Permission{
			{Role: domain.RoleAdmin, Resource: "employee", Action: "read"},
		})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/me", nil)
		c.Set(middleware.ContextUserID, "user-1")

		handler.Me(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data auth.AuthResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []domain.Permission{{Role: domain.RoleAdmin, Resource: "employee", Action: "read"}}, resp.Data.Permissions)
	})

	t.Run("no principal", func(t *testing.T) {
		handler := auth.NewHandler(authMock.NewMockService(gomock.NewController(t)), nil, false, time.Hour)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/me", nil)

		handler.Me(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("user gone", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockService := authMock.NewMockService(ctrl)
		handler := auth.NewHandler(mockService, nil, false, time.Hour)

		mockService.EXPECT().GetMe(gomock.Any(), "user-1").Return(nil, autherrors.ErrUserNotFound)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/me", nil)
		c.Set(middleware.ContextUserID, "user-1")

		handler.Me(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
