package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/meetingledger/ledger/errors"
	"github.com/meetingledger/ledger/internal/domain/entities"
	"github.com/meetingledger/ledger/internal/infrastructure/http/middleware"
	"github.com/meetingledger/ledger/internal/usecase/rag"
	pkgai "github.com/meetingledger/ledger/pkg/ai"
)

type fakeRAGService struct {
	queryResult *rag.QueryResult
	queryErr    error
	stream      *rag.StreamResult
	hits        []entities.ChunkHit
	searchErr   error
	indexed     int
	indexErr    error
	gotMeeting  uuid.UUID
	gotAccount  uuid.UUID
	gotTopK     int
	gotUseLocal *bool
}

func (f *fakeRAGService) IndexMeeting(_ context.Context, meetingID uuid.UUID) (int, error) {
	f.gotMeeting = meetingID
	return f.indexed, f.indexErr
}

func (f *fakeRAGService) IndexAll(_ context.Context, accountID uuid.UUID) (*rag.IndexAllReport, error) {
	f.gotAccount = accountID
	return &rag.IndexAllReport{Indexed: 2, Skipped: 1}, nil
}

func (f *fakeRAGService) Search(_ context.Context, accountID uuid.UUID, _ string, topK int) ([]entities.ChunkHit, error) {
	f.gotAccount = accountID
	f.gotTopK = topK
	return f.hits, f.searchErr
}

func (f *fakeRAGService) Query(_ context.Context, accountID uuid.UUID, _ string, topK int, useLocal *bool) (*rag.QueryResult, error) {
	f.gotAccount = accountID
	f.gotTopK = topK
	f.gotUseLocal = useLocal
	return f.queryResult, f.queryErr
}

func (f *fakeRAGService) StreamAnswer(_ context.Context, _ uuid.UUID, _ string, _ int, useLocal *bool) (*rag.StreamResult, error) {
	f.gotUseLocal = useLocal
	return f.stream, nil
}

func (f *fakeRAGService) Stats(_ context.Context, accountID uuid.UUID) (*entities.IndexStats, error) {
	f.gotAccount = accountID
	return &entities.IndexStats{TotalChunks: 12, IndexedMeetings: 3}, nil
}

func postJSON(e *echo.Echo, rec *httptest.ResponseRecorder, h echo.HandlerFunc, target, body string, account uuid.UUID) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(middleware.AccountHeader, account.String())
	invoke(e, req, rec, h, nil)
}

func TestQueryReturnsAnswerAndSources(t *testing.T) {
	svc := &fakeRAGService{queryResult: &rag.QueryResult{
		Answer:  "The launch moved to Friday.",
		Model:   "gpt-4o-mini",
		Sources: []rag.Source{{MeetingID: uuid.New(), MeetingTitle: "Standup", Score: 0.91}},
	}}
	h := NewRAGHandler(svc, zap.NewNop())
	e := newEchoTest()
	rec := httptest.NewRecorder()

	postJSON(e, rec, h.Query, "/v1/rag/query", `{"question": "when is the launch?", "top_k": 7}`, uuid.New())

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotTopK != 7 {
		t.Errorf("top_k should reach the service, got %d", svc.gotTopK)
	}
	var resp struct {
		Data rag.QueryResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Answer != "The launch moved to Friday." || len(resp.Data.Sources) != 1 {
		t.Errorf("unexpected payload: %+v", resp.Data)
	}
}

func TestQuerySynthesisFailureStillReturns200(t *testing.T) {
	svc := &fakeRAGService{queryResult: &rag.QueryResult{
		Sources:        []rag.Source{{MeetingTitle: "Standup", Score: 0.8}},
		SynthesisError: "model timed out",
	}}
	h := NewRAGHandler(svc, zap.NewNop())
	e := newEchoTest()
	rec := httptest.NewRecorder()

	postJSON(e, rec, h.Query, "/v1/rag/query", `{"question": "anything?"}`, uuid.New())

	if rec.Code != http.StatusOK {
		t.Fatalf("retrieval succeeded, so synthesis failure is still a 200; got %d", rec.Code)
	}
	var resp struct {
		Data rag.QueryResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.SynthesisError != "model timed out" || len(resp.Data.Sources) != 1 {
		t.Errorf("sources and synthesis_error must survive: %+v", resp.Data)
	}
}

func TestQueryPassesBackendChoice(t *testing.T) {
	svc := &fakeRAGService{queryResult: &rag.QueryResult{Answer: "ok"}}
	h := NewRAGHandler(svc, zap.NewNop())
	e := newEchoTest()

	rec := httptest.NewRecorder()
	postJSON(e, rec, h.Query, "/v1/rag/query", `{"question": "when?", "use_local_llm": true}`, uuid.New())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotUseLocal == nil || !*svc.gotUseLocal {
		t.Error("use_local_llm=true must reach the service")
	}

	rec = httptest.NewRecorder()
	postJSON(e, rec, h.Query, "/v1/rag/query", `{"question": "when?"}`, uuid.New())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.gotUseLocal != nil {
		t.Error("an omitted flag must stay nil so the configured default applies")
	}
}

func TestQueryRequiresQuestion(t *testing.T) {
	h := NewRAGHandler(&fakeRAGService{}, zap.NewNop())
	e := newEchoTest()
	rec := httptest.NewRecorder()

	postJSON(e, rec, h.Query, "/v1/rag/query", `{"top_k": 3}`, uuid.New())

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestQueryRetrievalUnavailableMapsTo503(t *testing.T) {
	svc := &fakeRAGService{queryErr: apperrors.ErrRetrievalUnavailable(entities.ErrIndexEmpty)}
	h := NewRAGHandler(svc, zap.NewNop())
	e := newEchoTest()
	rec := httptest.NewRecorder()

	postJSON(e, rec, h.Query, "/v1/rag/query", `{"question": "anything?"}`, uuid.New())

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Code != "RETRIEVAL_UNAVAILABLE" {
		t.Errorf("unexpected error code %q", body.Code)
	}
}

func TestQueryStreamEmitsSourcesThenTokens(t *testing.T) {
	chunks := make(chan pkgai.StreamChunk, 3)
	chunks <- pkgai.StreamChunk{Content: "The launch "}
	chunks <- pkgai.StreamChunk{Content: "moved."}
	close(chunks)

	svc := &fakeRAGService{stream: &rag.StreamResult{
		Sources: []rag.Source{{MeetingTitle: "Standup", Score: 0.9}},
		Model:   "gpt-4o-mini",
		Chunks:  chunks,
	}}
	h := NewRAGHandler(svc, zap.NewNop())
	e := newEchoTest()
	rec := httptest.NewRecorder()

	postJSON(e, rec, h.QueryStream, "/v1/rag/query/stream", `{"question": "when?"}`, uuid.New())

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "text/event-stream" {
		t.Errorf("expected event stream content type, got %q", ct)
	}

	var events []string
	scanner := bufio.NewScanner(rec.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "event: ") {
			events = append(events, strings.TrimPrefix(line, "event: "))
		}
	}
	want := []string{"sources", "token", "token", "done"}
	if len(events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, events)
		}
	}
}

func TestSearchReturnsHits(t *testing.T) {
	svc := &fakeRAGService{hits: []entities.ChunkHit{{MeetingTitle: "Standup", Score: 0.7}}}
	h := NewRAGHandler(svc, zap.NewNop())
	e := newEchoTest()
	rec := httptest.NewRecorder()
	account := uuid.New()

	postJSON(e, rec, h.Search, "/v1/rag/search", `{"query": "budget"}`, account)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotAccount != account {
		t.Error("search must be scoped to the calling account")
	}
}

func TestIndexRejectsBadMeetingID(t *testing.T) {
	h := NewRAGHandler(&fakeRAGService{}, zap.NewNop())
	e := newEchoTest()
	rec := httptest.NewRecorder()

	postJSON(e, rec, h.Index, "/v1/rag/index", `{"meeting_id": "not-a-uuid"}`, uuid.New())

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestIndexReportsChunkCount(t *testing.T) {
	svc := &fakeRAGService{indexed: 5}
	h := NewRAGHandler(svc, zap.NewNop())
	e := newEchoTest()
	rec := httptest.NewRecorder()
	meetingID := uuid.New()

	postJSON(e, rec, h.Index, "/v1/rag/index", `{"meeting_id": "`+meetingID.String()+`"}`, uuid.New())

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotMeeting != meetingID {
		t.Error("meeting id should reach the service")
	}
	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data["chunks"].(float64) != 5 {
		t.Errorf("unexpected chunk count: %v", resp.Data["chunks"])
	}
}

func TestStats(t *testing.T) {
	svc := &fakeRAGService{}
	h := NewRAGHandler(svc, zap.NewNop())
	e := newEchoTest()

	req := httptest.NewRequest(http.MethodGet, "/v1/rag/stats", nil)
	req.Header.Set(middleware.AccountHeader, uuid.New().String())
	rec := httptest.NewRecorder()

	invoke(e, req, rec, h.Stats, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data entities.IndexStats `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.TotalChunks != 12 || resp.Data.IndexedMeetings != 3 {
		t.Errorf("unexpected stats: %+v", resp.Data)
	}
}
