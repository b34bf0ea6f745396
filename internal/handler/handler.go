// Package handler provides the gin handlers for the translate API.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pricofy/translate-gateway/internal/auth"
	"github.com/pricofy/translate-gateway/internal/domain"
)

// RootMessage is returned by the liveness route.
const RootMessage = "Translate api is up and running"

// Translator runs the translation pipeline for a validated request.
type Translator interface {
	Translate(ctx context.Context, req domain.TranslationRequest) ([]domain.TranslationRecord, error)
}

// Handler serves the translate API.
type Handler struct {
	service  Translator
	maxTexts int
	logger   *zap.Logger
}

// New creates a handler. maxTexts <= 0 selects DefaultMaxTexts.
func New(service Translator, maxTexts int, logger *zap.Logger) *Handler {
	if maxTexts <= 0 {
		maxTexts = DefaultMaxTexts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service:  service,
		maxTexts: maxTexts,
		logger:   logger,
	}
}

// Root handles GET /.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Envelope{Success: true, Message: RootMessage})
}

// Translate handles POST /translate?targetLanguage=<code>.
func (h *Handler) Translate(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.respondError(c, &domain.ValidationError{Message: "texts is required"})
		return
	}

	req, err := validateRequest(c.Query("targetLanguage"), body, h.maxTexts)
	if err != nil {
		h.respondError(c, err)
		return
	}

	records, err := h.service.Translate(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.Success(records))
}

// NotFound handles unknown routes.
func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, domain.Failure("Not found"))
}

// respondError maps a pipeline error onto its HTTP status and envelope.
func (h *Handler) respondError(c *gin.Context, err error) {
	status, message := StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Translate request failed",
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	c.JSON(status, domain.Failure(message))
}

// StatusFor returns the HTTP status and caller-facing message for err.
func StatusFor(err error) (int, string) {
	var authErr *domain.AuthenticationError
	var validationErr *domain.ValidationError
	var providerErr *domain.ProviderError

	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized, auth.FailureMessage
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Message
	case errors.As(err, &providerErr):
		if providerErr.Kind == domain.ProviderTimeout {
			return http.StatusGatewayTimeout, "Translation failed: " + string(providerErr.Kind)
		}
		return http.StatusBadGateway, "Translation failed: " + string(providerErr.Kind)
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
