package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/meetingledger/ledger/pkg/config"
)

// DefaultOllamaURL is the base URL of a locally running Ollama instance.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaGenerator implements Generator against a local Ollama server using
// its native /api/generate endpoint. Only net/http and encoding/json are
// involved; Ollama has no official Go SDK worth the dependency.
type OllamaGenerator struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

var _ Generator = (*OllamaGenerator)(nil)

// NewOllamaGenerator constructs a client for a local Ollama server.
func NewOllamaGenerator(cfg config.OllamaConfig) (*OllamaGenerator, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama: model must not be empty")
	}
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	return &OllamaGenerator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: 300 * time.Second},
	}, nil
}

// generateRequest is the JSON request body for Ollama's /api/generate endpoint.
type generateRequest struct {
	Model  string `json:"model"`
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is one JSON object from /api/generate. With stream=false
// the body is a single object; with stream=true it is one object per line.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Generate returns a single completion.
func (g *OllamaGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.post(ctx, generateRequest{
		Model:  g.model,
		System: system,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("ollama: generate: %w", err)
	}
	defer resp.Body.Close()

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("ollama: generate: decode response: %w", err)
	}
	return result.Response, nil
}

// Stream returns completion fragments by reading Ollama's line-delimited
// JSON stream.
func (g *OllamaGenerator) Stream(ctx context.Context, system, prompt string) (<-chan StreamChunk, error) {
	resp, err := g.post(ctx, generateRequest{
		Model:  g.model,
		System: system,
		Prompt: prompt,
		Stream: true,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama: stream: %w", err)
	}

	ch := make(chan StreamChunk, 32)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var part generateResponse
			if err := json.Unmarshal(line, &part); err != nil {
				select {
				case ch <- StreamChunk{Err: fmt.Errorf("ollama: stream: decode line: %w", err)}:
				case <-ctx.Done():
				}
				return
			}
			if part.Response != "" {
				select {
				case ch <- StreamChunk{Content: part.Response}:
				case <-ctx.Done():
					return
				}
			}
			if part.Done {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case ch <- StreamChunk{Err: fmt.Errorf("ollama: stream: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()
	return ch, nil
}

func (g *OllamaGenerator) Model() string {
	return g.model
}

func (g *OllamaGenerator) post(ctx context.Context, payload generateRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return resp, nil
}
