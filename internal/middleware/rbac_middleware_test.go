package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-payway/internal/domain"
	"go-payway/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeRBAC struct {
	EnforceFn func(req domain.EnforceRequest) (bool, error)
}

func (f *fakeRBAC) Enforce(req domain.EnforceRequest) (bool, error) {
	return f.EnforceFn(req)
}

func withPrincipal(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(middleware.ContextUserID, userID)
		}
		c.Set(middleware.ContextRole, role)
		c.Next()
	}
}

func TestRBACAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		allowed  bool
		err      error
		wantCode int
		wantBody string
	}{
		{name: "allowed", userID: "u-1", allowed: true, wantCode: http.StatusOK},
		{name: "denied", userID: "u-1", wantCode: http.StatusForbidden, wantBody: "employee:delete"},
		{name: "anonymous", wantCode: http.StatusUnauthorized},
		{name: "enforcer error", userID: "u-1", err: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeRBAC{EnforceFn: func(req domain.EnforceRequest) (bool, error) {
				assert.Equal(t, "Admin", req.Role)
				assert.Equal(t, "employee", req.Resource)
				assert.Equal(t, "delete", req.Action)
				return tt.allowed, tt.err
			}}

			r := setupRouter()
			r.POST("/employee/delete",
				withPrincipal(tt.userID, "Admin"),
				middleware.RBACAuthorize(svc, "employee", "delete"),
				func(c *gin.Context) { c.Status(http.StatusOK) },
			)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/employee/delete", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Contains(t, w.Body.String(), tt.wantBody)
			}
		})
	}
}
