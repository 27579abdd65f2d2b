package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/meetingledger/ledger/errors"
	"github.com/meetingledger/ledger/internal/domain/entities"
	"github.com/meetingledger/ledger/internal/infrastructure/http/middleware"
)

type fakeExtractionService struct {
	syncCalls  int
	asyncCalls int
	run        *entities.ExtractionRun
	err        error
}

func (f *fakeExtractionService) Extract(_ context.Context, transcriptID uuid.UUID) (*entities.ExtractionRun, error) {
	f.syncCalls++
	if f.err != nil {
		return nil, f.err
	}
	run := entities.NewExtractionRun(transcriptID, uuid.New())
	run.MarkSucceeded("test", 1, 1, 0)
	f.run = run
	return run, nil
}

func (f *fakeExtractionService) ExtractAsync(_ context.Context, transcriptID uuid.UUID) (*entities.ExtractionRun, error) {
	f.asyncCalls++
	if f.err != nil {
		return nil, f.err
	}
	f.run = entities.NewExtractionRun(transcriptID, uuid.New())
	return f.run, nil
}

func (f *fakeExtractionService) GetRun(_ context.Context, _ uuid.UUID) (*entities.ExtractionRun, error) {
	return f.run, f.err
}

func postExtract(e *echo.Echo, h *ExtractionHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/extract", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(middleware.AccountHeader, uuid.NewString())
	rec := httptest.NewRecorder()
	invoke(e, req, rec, h.Extract, nil)
	return rec
}

func TestExtractAsyncByDefault(t *testing.T) {
	e := newEchoTest()
	svc := &fakeExtractionService{}
	h := NewExtractionHandler(svc, nil)

	rec := postExtract(e, h, fmt.Sprintf(`{"transcript_id": %q}`, uuid.NewString()))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 for background run, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.asyncCalls != 1 || svc.syncCalls != 0 {
		t.Errorf("expected one async call, got async=%d sync=%d", svc.asyncCalls, svc.syncCalls)
	}
}

func TestExtractWaitRunsSynchronously(t *testing.T) {
	e := newEchoTest()
	svc := &fakeExtractionService{}
	h := NewExtractionHandler(svc, nil)

	rec := postExtract(e, h, fmt.Sprintf(`{"transcript_id": %q, "wait": true}`, uuid.NewString()))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for synchronous run, got %d", rec.Code)
	}
	if svc.syncCalls != 1 || svc.asyncCalls != 0 {
		t.Errorf("expected one sync call, got async=%d sync=%d", svc.asyncCalls, svc.syncCalls)
	}
}

func TestExtractRejectsBadTranscriptID(t *testing.T) {
	e := newEchoTest()
	h := NewExtractionHandler(&fakeExtractionService{}, nil)

	rec := postExtract(e, h, `{"transcript_id": "nope"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed transcript id, got %d", rec.Code)
	}
}

func TestExtractConflictMapsTo409(t *testing.T) {
	e := newEchoTest()
	transcriptID := uuid.New()
	svc := &fakeExtractionService{err: apperrors.ErrConcurrentExtraction(transcriptID.String())}
	h := NewExtractionHandler(svc, nil)

	rec := postExtract(e, h, fmt.Sprintf(`{"transcript_id": %q}`, transcriptID))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on concurrent extraction, got %d", rec.Code)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error envelope: %v", err)
	}
	if resp.Code != "EXTRACTION_CONFLICT" {
		t.Errorf("expected EXTRACTION_CONFLICT, got %q", resp.Code)
	}
}
