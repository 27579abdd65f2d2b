package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetingledger/ledger/errors"
	meetingdto "github.com/meetingledger/ledger/internal/adapter/dto/meeting"
	"github.com/meetingledger/ledger/internal/adapter/presenter"
	"github.com/meetingledger/ledger/internal/infrastructure/http/middleware"
	"github.com/meetingledger/ledger/internal/usecase/meetings"
)

// MeetingHandler serves meeting and transcript endpoints.
type MeetingHandler struct {
	service meetings.Service
	logger  *zap.Logger
}

func NewMeetingHandler(service meetings.Service, logger *zap.Logger) *MeetingHandler {
	return &MeetingHandler{service: service, logger: logger}
}

// Create handles POST /v1/meetings
func (h *MeetingHandler) Create(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("missing account scope"))
	}

	var req meetingdto.CreateMeetingRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}

	startedAt := time.Now()
	if req.StartedAt != nil {
		startedAt = *req.StartedAt
	}

	meeting, err := h.service.CreateMeeting(c.Request().Context(), accountID, req.Title, startedAt)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusCreated, presenter.ToMeetingResponse(meeting))
}

// List handles GET /v1/meetings
func (h *MeetingHandler) List(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("missing account scope"))
	}

	list, err := h.service.ListMeetings(c.Request().Context(), accountID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToMeetingListResponse(list))
}

// Get handles GET /v1/meetings/:id and returns the meeting together with its
// current transcript, extracted outcomes and latest run.
func (h *MeetingHandler) Get(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	view, err := h.service.GetMeetingView(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToMeetingViewResponse(view))
}

// UploadTranscript handles POST /v1/meetings/:id/transcripts
func (h *MeetingHandler) UploadTranscript(c echo.Context) error {
	meetingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	var req meetingdto.UploadTranscriptRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}

	transcript, err := h.service.UploadTranscript(c.Request().Context(), meetingID, req.Content)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusCreated, transcript)
}
