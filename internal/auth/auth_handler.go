package auth

import (
	"net/http"
	"time"

	"go-payway/internal/domain"
	"go-payway/internal/middleware"
	"go-payway/internal/shared/apperror"
	"go-payway/internal/shared/contextutil"
	"go-payway/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PermissionLister reports the capabilities a role holds.
type PermissionLister interface {
	Permissions(role string) []domain.Permission
}

type Handler struct {
	service       Service
	permissions   PermissionLister
	secureCookies bool
	tokenTTL      time.Duration
	logger        *zap.Logger
}

func NewHandler(s Service, permissions PermissionLister, secureCookies bool, tokenTTL time.Duration, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("auth.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.handler")
	}
	return &Handler{service: s, permissions: permissions, secureCookies: secureCookies, tokenTTL: tokenTTL, logger: l}
}

func (h *Handler) setAccessCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	contextutil.GetLogger(c.Request.Context(), h.logger).Warn("auth request failed",
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpErr := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, apperror.ValidationDetails(err))
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.setAccessCookie(c, token, int(h.tokenTTL.Seconds()))
	response.Success(c, http.StatusOK, LoginResponse{User: user, AccessToken: token}, nil)
}

func (h *Handler) Me(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		h.writeError(c, apperror.ErrUnauthorized)
		return
	}

	user, err := h.service.GetMe(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if h.permissions != nil {
		user.Permissions = h.permissions.Permissions(user.Role)
	}

	response.Success(c, http.StatusOK, user, nil)
}

func (h *Handler) Logout(c *gin.Context) {
	h.setAccessCookie(c, "", -1)
	response.Success(c, http.StatusOK, "Logout success.", nil)
}
