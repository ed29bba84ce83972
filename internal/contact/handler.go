package contact

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/eventdesk/internal/domain"
	"github.com/nfrund/eventdesk/internal/middleware"
)

// Handler holds dependencies for the contact HTTP handlers.
type Handler struct {
	service *Service
}

// NewHandler creates a new contact handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Submit handles the public contact form. When the body carries no ipAddress
// the caller's real IP is used.
func (h *Handler) Submit(c echo.Context) error {
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure(CodeInvalidRequest, "Invalid request format."))
	}
	if req.IPAddress == "" {
		req.IPAddress = c.RealIP()
	}

	msg, err := h.service.Submit(c.Request().Context(), req.toSubmission())
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, MessageResponse{Success: true, Message: msg})
}

// List returns stored messages newest first, optionally only unread ones.
func (h *Handler) List(c echo.Context) error {
	var req ListRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure(CodeInvalidRequest, "Invalid query parameters."))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, failure(CodeInvalidRequest, "limit must be between 0 and 500"))
	}

	msgs, err := h.service.List(c.Request().Context(), req.toFilter())
	if err != nil {
		return h.respondError(c, err)
	}
	if msgs == nil {
		msgs = []*domain.ContactMessage{}
	}
	return c.JSON(http.StatusOK, ListResponse{Success: true, Count: len(msgs), Messages: msgs})
}

// Get returns a single message by id.
func (h *Handler) Get(c echo.Context) error {
	msg, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: msg})
}

// MarkRead flags a message as read.
func (h *Handler) MarkRead(c echo.Context) error {
	msg, err := h.service.MarkRead(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: msg})
}

// Delete removes a message by id.
func (h *Handler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, DeleteResponse{Success: true, ID: id})
}

// respondError maps service errors onto the JSON failure envelope.
func (h *Handler) respondError(c echo.Context, err error) error {
	logger := middleware.FromContext(c.Request().Context())

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		resp := failure(CodeValidationFailed, "One or more fields are invalid.")
		resp.Fields = verr.Fields
		return c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, failure(CodeNotFound, "Contact message not found."))
	default:
		logger.Error("Contact request failed", slog.String("path", c.Path()), slog.String("error", err.Error()))
		return c.JSON(http.StatusInternalServerError, failure(CodePersistenceFailed, "The message store could not complete the request."))
	}
}
