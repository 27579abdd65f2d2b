package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "github.com/meetingledger/ledger/errors"
	"github.com/meetingledger/ledger/internal/domain/entities"
	"github.com/meetingledger/ledger/internal/infrastructure/http/middleware"
	"github.com/meetingledger/ledger/internal/usecase/meetings"
	pkgvalidator "github.com/meetingledger/ledger/pkg/validator"
)

type fakeMeetingService struct {
	created    *entities.Meeting
	uploaded   *entities.Transcript
	uploadErr  error
	view       *meetings.MeetingView
	list       []*entities.Meeting
	gotAccount uuid.UUID
}

func (f *fakeMeetingService) CreateMeeting(_ context.Context, accountID uuid.UUID, title string, startedAt time.Time) (*entities.Meeting, error) {
	f.gotAccount = accountID
	f.created = entities.NewMeeting(accountID, title, startedAt)
	return f.created, nil
}

func (f *fakeMeetingService) UploadTranscript(_ context.Context, meetingID uuid.UUID, content string) (*entities.Transcript, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploaded = entities.NewTranscript(meetingID, content)
	return f.uploaded, nil
}

func (f *fakeMeetingService) GetMeetingView(_ context.Context, _ uuid.UUID) (*meetings.MeetingView, error) {
	return f.view, nil
}

func (f *fakeMeetingService) ListMeetings(_ context.Context, accountID uuid.UUID) ([]*entities.Meeting, error) {
	f.gotAccount = accountID
	return f.list, nil
}

func newEchoTest() *echo.Echo {
	e := echo.New()
	e.Validator = pkgvalidator.New()
	return e
}

// invoke runs a handler behind the account middleware, mirroring the router.
func invoke(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, h echo.HandlerFunc, pathParams map[string]string) error {
	c := e.NewContext(req, rec)
	for k, v := range pathParams {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	return middleware.RequireAccount()(h)(c)
}

func TestCreateMeeting(t *testing.T) {
	e := newEchoTest()
	svc := &fakeMeetingService{}
	h := NewMeetingHandler(svc, nil)
	accountID := uuid.New()

	body := `{"title": "Release planning"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/meetings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(middleware.AccountHeader, accountID.String())
	rec := httptest.NewRecorder()

	if err := invoke(e, req, rec, h.Create, nil); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotAccount != accountID {
		t.Error("account scope from the header must reach the service")
	}
	if svc.created == nil || svc.created.Title != "Release planning" {
		t.Errorf("unexpected created meeting: %+v", svc.created)
	}

	var resp struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response envelope: %v", err)
	}
	if resp.Message != "success" {
		t.Errorf("unexpected envelope message %q", resp.Message)
	}
}

func TestCreateMeetingValidation(t *testing.T) {
	e := newEchoTest()
	h := NewMeetingHandler(&fakeMeetingService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/meetings", strings.NewReader(`{"title": ""}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(middleware.AccountHeader, uuid.NewString())
	rec := httptest.NewRecorder()

	if err := invoke(e, req, rec, h.Create, nil); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty title must be rejected, got %d", rec.Code)
	}
}

func TestCreateMeetingRequiresAccountHeader(t *testing.T) {
	e := newEchoTest()
	h := NewMeetingHandler(&fakeMeetingService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/meetings", strings.NewReader(`{"title": "x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := invoke(e, req, rec, h.Create, nil)
	var httpErr *echo.HTTPError
	if err == nil {
		t.Fatal("expected middleware rejection without account header")
	}
	if !errors.As(err, &httpErr) || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 from middleware, got %v", err)
	}
}

func TestUploadTranscriptInvalidContent(t *testing.T) {
	e := newEchoTest()
	svc := &fakeMeetingService{uploadErr: apperrors.ErrInvalidTranscript("transcript is empty")}
	h := NewMeetingHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/meetings/x/transcripts", strings.NewReader(`{"content": "Alice: ..."}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(middleware.AccountHeader, uuid.NewString())
	rec := httptest.NewRecorder()

	if err := invoke(e, req, rec, h.UploadTranscript, map[string]string{"id": uuid.NewString()}); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error envelope: %v", err)
	}
	if resp.Code != "TRANSCRIPT_INVALID" {
		t.Errorf("expected TRANSCRIPT_INVALID code, got %q", resp.Code)
	}
}

func TestUploadTranscriptBlankContentFailsValidation(t *testing.T) {
	e := newEchoTest()
	h := NewMeetingHandler(&fakeMeetingService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/meetings/x/transcripts", strings.NewReader(`{"content": "   "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(middleware.AccountHeader, uuid.NewString())
	rec := httptest.NewRecorder()

	invoke(e, req, rec, h.UploadTranscript, map[string]string{"id": uuid.NewString()})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("whitespace-only content must fail validation, got %d", rec.Code)
	}
}

func TestGetMeetingInvalidID(t *testing.T) {
	e := newEchoTest()
	h := NewMeetingHandler(&fakeMeetingService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/meetings/not-a-uuid", nil)
	req.Header.Set(middleware.AccountHeader, uuid.NewString())
	rec := httptest.NewRecorder()

	if err := invoke(e, req, rec, h.Get, map[string]string{"id": "not-a-uuid"}); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed id, got %d", rec.Code)
	}
}
