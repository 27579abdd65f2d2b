package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetingledger/ledger/errors"
	"github.com/meetingledger/ledger/internal/domain/entities"
	"github.com/meetingledger/ledger/internal/infrastructure/http/middleware"
	"github.com/meetingledger/ledger/internal/usecase/insights"
)

// InsightsHandler serves alerts, metrics and action item state transitions.
type InsightsHandler struct {
	service insights.Service
	logger  *zap.Logger
}

func NewInsightsHandler(service insights.Service, logger *zap.Logger) *InsightsHandler {
	return &InsightsHandler{service: service, logger: logger}
}

// Alerts handles GET /v1/alerts/:meeting_id
func (h *InsightsHandler) Alerts(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("meeting_id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	alerts, err := h.service.Alerts(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, alerts)
}

// MeetingMetrics handles GET /v1/metrics/meetings/:id
func (h *InsightsHandler) MeetingMetrics(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	metrics, err := h.service.MeetingMetrics(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, metrics)
}

// WeeklyMetrics handles GET /v1/metrics/weekly?weeks=N
func (h *InsightsHandler) WeeklyMetrics(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("missing account scope"))
	}

	weeks := 0
	if raw := c.QueryParam("weeks"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 52 {
			return HandleError(h.logger, c, errors.ErrInvalidArgument("weeks must be between 1 and 52"))
		}
		weeks = parsed
	}

	metrics, err := h.service.WeeklyMetrics(c.Request().Context(), accountID, weeks)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, metrics)
}

// CompleteActionItem handles POST /v1/action-items/:id/done
func (h *InsightsHandler) CompleteActionItem(c echo.Context) error {
	return h.mutateActionItem(c, h.service.CompleteActionItem)
}

// ReopenActionItem handles POST /v1/action-items/:id/reopen
func (h *InsightsHandler) ReopenActionItem(c echo.Context) error {
	return h.mutateActionItem(c, h.service.ReopenActionItem)
}

// AcknowledgeActionItem handles POST /v1/action-items/:id/acknowledge
func (h *InsightsHandler) AcknowledgeActionItem(c echo.Context) error {
	return h.mutateActionItem(c, h.service.AcknowledgeActionItem)
}

func (h *InsightsHandler) mutateActionItem(c echo.Context, mutate func(ctx context.Context, id uuid.UUID) (*entities.ActionItem, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid action item id"))
	}

	item, err := mutate(c.Request().Context(), id)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, item)
}
