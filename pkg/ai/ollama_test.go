package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meetingledger/ledger/pkg/config"
)

func ollamaTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *OllamaGenerator) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gen, err := NewOllamaGenerator(config.OllamaConfig{URL: server.URL, Model: "llama3.1"})
	if err != nil {
		t.Fatalf("NewOllamaGenerator failed: %v", err)
	}
	return server, gen
}

func TestOllamaGenerate(t *testing.T) {
	var gotReq generateRequest
	_, gen := ollamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "the answer", Done: true})
	})

	answer, err := gen.Generate(context.Background(), "be terse", "what happened?")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if answer != "the answer" {
		t.Errorf("unexpected answer %q", answer)
	}
	if gotReq.Model != "llama3.1" || gotReq.System != "be terse" || gotReq.Prompt != "what happened?" {
		t.Errorf("unexpected request: %+v", gotReq)
	}
	if gotReq.Stream {
		t.Error("Generate must not request streaming")
	}
}

func TestOllamaGenerateServerError(t *testing.T) {
	_, gen := ollamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	})

	if _, err := gen.Generate(context.Background(), "", "hi"); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestOllamaStream(t *testing.T) {
	_, gen := ollamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if !req.Stream {
			t.Error("Stream must request streaming")
		}
		for _, part := range []string{"hel", "lo ", "world"} {
			fmt.Fprintf(w, `{"response":%q,"done":false}`+"\n", part)
		}
		fmt.Fprintln(w, `{"response":"","done":true}`)
	})

	chunks, err := gen.Stream(context.Background(), "", "greet me")
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	var full strings.Builder
	for chunk := range chunks {
		if chunk.Err != nil {
			t.Fatalf("stream chunk error: %v", chunk.Err)
		}
		full.WriteString(chunk.Content)
	}
	if full.String() != "hello world" {
		t.Errorf("unexpected streamed text %q", full.String())
	}
}

func TestOllamaStreamDecodeError(t *testing.T) {
	_, gen := ollamaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"ok","done":false}`)
		fmt.Fprintln(w, `this is not json`)
	})

	chunks, err := gen.Stream(context.Background(), "", "hi")
	if err != nil {
		t.Fatalf("Stream returned error: %v", err)
	}

	var sawContent, sawErr bool
	for chunk := range chunks {
		if chunk.Err != nil {
			sawErr = true
		} else if chunk.Content != "" {
			sawContent = true
		}
	}
	if !sawContent || !sawErr {
		t.Errorf("expected content then a decode error, got content=%v err=%v", sawContent, sawErr)
	}
}

func TestNewOllamaGeneratorValidation(t *testing.T) {
	if _, err := NewOllamaGenerator(config.OllamaConfig{URL: "http://x", Model: ""}); err == nil {
		t.Fatal("empty model must be rejected")
	}

	gen, err := NewOllamaGenerator(config.OllamaConfig{Model: "llama3.1"})
	if err != nil {
		t.Fatalf("default URL should be accepted: %v", err)
	}
	if gen.baseURL != DefaultOllamaURL {
		t.Errorf("expected default base URL, got %q", gen.baseURL)
	}
	if gen.Model() != "llama3.1" {
		t.Errorf("unexpected model %q", gen.Model())
	}
}
