package handler

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"userlist/internal/application/interfaces"
	"userlist/internal/view/shell"
	"userlist/internal/view/userlist"
)

// Response represents a standard API response format
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

type Handler struct {
	userService interfaces.UserService
	fetcher     userlist.Fetcher
	title       string
	renderWait  time.Duration
	logger      *zap.Logger
}

// NewHandler wires the API to userService and the page to fetcher, which
// normally points back at this server's own /api/users.
func NewHandler(userService interfaces.UserService, fetcher userlist.Fetcher, title string, renderWait time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		userService: userService,
		fetcher:     fetcher,
		title:       title,
		renderWait:  renderWait,
		logger:      logger,
	}
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ListUsers answers with the bare JSON array the list view consumes.
func (h *Handler) ListUsers(c echo.Context) error {
	result, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err), requestIDField(c))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list users")
	}
	return c.JSON(http.StatusOK, result.Result)
}

// Page mounts a fresh list view, gives it up to renderWait to settle and
// renders the shell around whatever state it reached.
func (h *Handler) Page(c echo.Context) error {
	view := userlist.New(h.fetcher, h.logger.With(requestIDField(c)))
	view.Mount()
	defer view.Unmount()

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.renderWait)
	defer cancel()
	if err := view.Wait(ctx); err != nil {
		h.logger.Debug("rendering before users settled", zap.Error(err), requestIDField(c))
	}

	var buf bytes.Buffer
	if err := shell.New(h.title, view).Render(&buf); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func requestIDField(c echo.Context) zap.Field {
	return zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
}
