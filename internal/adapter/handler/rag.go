package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/meetingledger/ledger/errors"
	ragdto "github.com/meetingledger/ledger/internal/adapter/dto/rag"
	"github.com/meetingledger/ledger/internal/infrastructure/http/middleware"
	"github.com/meetingledger/ledger/internal/usecase/rag"
)

// RAGHandler serves indexing and question answering endpoints.
type RAGHandler struct {
	service rag.Service
	logger  *zap.Logger
}

func NewRAGHandler(service rag.Service, logger *zap.Logger) *RAGHandler {
	return &RAGHandler{service: service, logger: logger}
}

// Query handles POST /v1/rag/query
func (h *RAGHandler) Query(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("missing account scope"))
	}

	var req ragdto.QueryRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}

	result, err := h.service.Query(c.Request().Context(), accountID, req.Question, req.TopK, req.UseLocalLLM)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, result)
}

// QueryStream handles POST /v1/rag/query/stream and answers over
// server-sent events. Source metadata is sent first, then answer tokens
// as they arrive.
func (h *RAGHandler) QueryStream(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("missing account scope"))
	}

	var req ragdto.QueryRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}

	stream, err := h.service.StreamAnswer(c.Request().Context(), accountID, req.Question, req.TopK, req.UseLocalLLM)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	if err := writeSSE(resp, "sources", map[string]interface{}{
		"model":   stream.Model,
		"sources": stream.Sources,
	}); err != nil {
		return err
	}

	for chunk := range stream.Chunks {
		if chunk.Err != nil {
			h.logger.Error("😥 Answer stream interrupted", zap.Error(chunk.Err))
			_ = writeSSE(resp, "error", map[string]string{"message": chunk.Err.Error()})
			return nil
		}
		if chunk.Content == "" {
			continue
		}
		if err := writeSSE(resp, "token", map[string]string{"content": chunk.Content}); err != nil {
			return err
		}
	}

	return writeSSE(resp, "done", map[string]string{})
}

func writeSSE(resp *echo.Response, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	resp.Flush()
	return nil
}

// Search handles POST /v1/rag/search and returns raw retrieval hits.
func (h *RAGHandler) Search(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("missing account scope"))
	}

	var req ragdto.SearchRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}

	hits, err := h.service.Search(c.Request().Context(), accountID, req.Query, req.TopK)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, hits)
}

// Index handles POST /v1/rag/index
func (h *RAGHandler) Index(c echo.Context) error {
	var req ragdto.IndexRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}

	meetingID, err := uuid.Parse(req.MeetingID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid meeting id"))
	}

	chunks, err := h.service.IndexMeeting(c.Request().Context(), meetingID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, map[string]interface{}{
		"meeting_id": meetingID,
		"chunks":     chunks,
	})
}

// IndexAll handles POST /v1/rag/index-all
func (h *RAGHandler) IndexAll(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("missing account scope"))
	}

	report, err := h.service.IndexAll(c.Request().Context(), accountID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, report)
}

// Stats handles GET /v1/rag/stats
func (h *RAGHandler) Stats(c echo.Context) error {
	accountID, ok := middleware.AccountID(c)
	if !ok {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("missing account scope"))
	}

	stats, err := h.service.Stats(c.Request().Context(), accountID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, stats)
}
