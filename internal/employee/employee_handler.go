package employee

import (
	"errors"
	"net/http"
	"strconv"

	"go-payway/internal/antiforgery"
	employeeerrors "go-payway/internal/employee/errors"
	"go-payway/internal/shared/apperror"
	"go-payway/internal/shared/contextutil"
	"go-payway/internal/shared/pagination"
	"go-payway/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	PageSize = 4
	ListPath = "/employee/index"
)

type Handler struct {
	service Service
	images  *ImageStore
	tokens  antiforgery.Store
	logger  *zap.Logger
}

func NewHandler(service Service, images *ImageStore, tokens antiforgery.Store, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("employee.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.handler")
	}
	return &Handler{service: service, images: images, tokens: tokens, logger: l}
}

func (h *Handler) log(c *gin.Context) *zap.Logger {
	return contextutil.GetLogger(c.Request.Context(), h.logger)
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.log(c).Warn("employee request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
		zap.Error(err),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) renderForm(c *gin.Context, form any) {
	token, err := h.tokens.Issue(c.Request.Context(), c.GetString(antiforgery.SessionKey))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, FormView{Form: form, AntiForgeryToken: token}, nil)
}

func (h *Handler) renderInvalid(c *gin.Context, form any, details map[string]string) {
	h.log(c).Warn("http employee form invalid",
		zap.String("path", c.FullPath()),
		zap.Any("details", details),
	)
	token, err := h.tokens.Issue(c.Request.Context(), c.GetString(antiforgery.SessionKey))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Invalid(c, FormView{Form: form, AntiForgeryToken: token}, details)
}

// bindForm binds and validates form, folding image problems into the same
// field map. ok is false once a response has been written.
func (h *Handler) bindForm(c *gin.Context, form any, image func() error) (details map[string]string, ok bool) {
	details = map[string]string{}
	if err := c.ShouldBind(form); err != nil {
		details = apperror.ValidationDetails(err)
	}

	if err := image(); err != nil {
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) {
			h.writeServiceError(c, err)
			return nil, false
		}
		details["image"] = appErr.Message
	}
	return details, true
}

// pathID resolves the :id segment. Anything that is not a positive integer
// cannot name an employee.
func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, employeeerrors.ErrEmployeeNotFound
	}
	return uint(id), nil
}

func (h *Handler) List(c *gin.Context) {
	pageNumber := 1
	if raw := c.Query("pageNumber"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			pageNumber = n
		}
	}
	h.log(c).Debug("http list employees", zap.Int("page", pageNumber))

	empls, err := h.service.GetAll(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page := pagination.Create(ToIndexViewModels(empls), pageNumber, PageSize)
	meta := response.NewPaginationMeta(int64(page.TotalCount), page.PageIndex, page.PageSize)
	response.Success(c, http.StatusOK, page, &meta)
}

func (h *Handler) ShowCreateForm(c *gin.Context) {
	h.renderForm(c, CreateForm{})
}

func (h *Handler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var form CreateForm
	details, ok := h.bindForm(c, &form, func() error { return h.images.Validate(form.Image) })
	if !ok {
		return
	}
	if len(details) > 0 {
		h.renderInvalid(c, form, details)
		return
	}

	empl, err := NewEmployeeFromCreateForm(form)
	if err != nil {
		h.renderInvalid(c, form, apperror.ValidationDetails(err))
		return
	}

	if hasImage(form.Image) {
		url, err := h.images.Save(ctx, form.Image)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		empl.ImageURL = &url
	}

	if err := h.service.Create(ctx, &empl); err != nil {
		if empl.ImageURL != nil {
			h.images.Discard(ctx, *empl.ImageURL)
		}
		h.writeServiceError(c, err)
		return
	}

	response.RedirectTo(c, ListPath)
}

func (h *Handler) ShowEditForm(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	empl, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.renderForm(c, ToEditForm(*empl))
}

func (h *Handler) Edit(c *gin.Context) {
	ctx := c.Request.Context()

	var form EditForm
	details, ok := h.bindForm(c, &form, func() error { return h.images.Validate(form.Image) })
	if !ok {
		return
	}
	if len(details) > 0 {
		h.renderInvalid(c, form, details)
		return
	}

	empl, err := h.service.GetByID(ctx, form.ID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if err := ApplyEditForm(empl, form); err != nil {
		h.renderInvalid(c, form, apperror.ValidationDetails(err))
		return
	}

	var uploaded string
	if hasImage(form.Image) {
		url, err := h.images.Save(ctx, form.Image)
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		uploaded = url
		empl.ImageURL = &url
	}

	if err := h.service.Update(ctx, empl); err != nil {
		if uploaded != "" {
			h.images.Discard(ctx, uploaded)
		}
		h.writeServiceError(c, err)
		return
	}

	response.RedirectTo(c, ListPath)
}

func (h *Handler) Detail(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	empl, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, ToDetailViewModel(*empl), nil)
}

func (h *Handler) ShowDeleteConfirm(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	empl, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.renderForm(c, ToDeleteViewModel(*empl))
}

// Delete does not check that the employee exists.
func (h *Handler) Delete(c *gin.Context) {
	var form DeleteViewModel
	if err := c.ShouldBind(&form); err != nil {
		h.log(c).Debug("http delete employee bind failed", zap.Error(err))
	}

	if err := h.service.Delete(c.Request.Context(), form.ID); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.RedirectTo(c, ListPath)
}
