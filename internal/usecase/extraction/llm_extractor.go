package extraction

import (
	"context"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/meetingledger/ledger/pkg/ai"
)

const extractionSystemPrompt = `You extract structured outcomes from meeting transcripts.

Return ONLY a JSON object with this exact shape, no prose, no markdown:
{
  "decisions": [
    {"text": "...", "owner": "Name or null", "source_sentence": "...", "confidence": 0.0}
  ],
  "action_items": [
    {"text": "...", "owner": "Name or null", "due_date": "YYYY-MM-DD or null", "source_sentence": "...", "confidence": 0.0}
  ],
  "risks": [
    {"text": "...", "source_sentence": "...", "confidence": 0.0}
  ]
}

Rules:
- "source_sentence" must be copied verbatim from the transcript, character for character. Never paraphrase it.
- "confidence" is your certainty between 0.0 and 1.0 that the item is real.
- "owner" is a person named in the transcript, or null when nobody is responsible.
- Empty arrays are valid. Do not invent items.`

// LLMExtractor extracts insights with a chat model returning strict JSON.
type LLMExtractor struct {
	generator ai.Generator
}

var _ Extractor = (*LLMExtractor)(nil)

// NewLLMExtractor creates an LLM-backed extractor.
func NewLLMExtractor(generator ai.Generator) *LLMExtractor {
	return &LLMExtractor{generator: generator}
}

// Extract sends the transcript to the model and parses the structured reply.
// Transient provider failures are retried briefly; a malformed reply is not,
// since the same prompt tends to produce the same malformation.
func (e *LLMExtractor) Extract(ctx context.Context, transcript string, _ []Sentence) ([]Candidate, error) {
	prompt := fmt.Sprintf("Transcript:\n\n%s", transcript)

	var raw string
	callFn := func() error {
		var err error
		raw, err = e.generator.Generate(ctx, extractionSystemPrompt, prompt)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxElapsedTime = 30 * time.Second
	bo.MaxInterval = 10 * time.Second

	if err := backoff.Retry(callFn, backoff.WithContext(bo, ctx)); err != nil {
		return nil, fmt.Errorf("llm extraction call failed: %w", err)
	}

	candidates, err := parseLLMResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("llm extraction returned malformed output: %w", err)
	}
	return candidates, nil
}

func (e *LLMExtractor) Model() string {
	return e.generator.Model()
}
