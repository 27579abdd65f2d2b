package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetingledger/ledger/errors"
	insightdto "github.com/meetingledger/ledger/internal/adapter/dto/insight"
	"github.com/meetingledger/ledger/internal/usecase/extraction"
)

// ExtractionHandler serves extraction run endpoints.
type ExtractionHandler struct {
	service extraction.Service
	logger  *zap.Logger
}

func NewExtractionHandler(service extraction.Service, logger *zap.Logger) *ExtractionHandler {
	return &ExtractionHandler{service: service, logger: logger}
}

// Extract handles POST /v1/extract. By default the run is processed in the
// background and the pending run is returned with 202; with wait=true the
// request blocks until the run reaches a terminal state.
func (h *ExtractionHandler) Extract(c echo.Context) error {
	var req insightdto.ExtractRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}

	transcriptID, err := uuid.Parse(req.TranscriptID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid transcript id"))
	}

	if req.Wait {
		run, err := h.service.Extract(c.Request().Context(), transcriptID)
		if err != nil {
			return HandleError(h.logger, c, err)
		}
		return HandleSuccess(h.logger, c, http.StatusOK, run)
	}

	run, err := h.service.ExtractAsync(c.Request().Context(), transcriptID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusAccepted, run)
}

// GetRun handles GET /v1/extract/runs/:id
func (h *ExtractionHandler) GetRun(c echo.Context) error {
	runID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid run id"))
	}

	run, err := h.service.GetRun(c.Request().Context(), runID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if run == nil {
		return HandleError(h.logger, c, errors.ErrNotFound("extraction run"))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, run)
}
