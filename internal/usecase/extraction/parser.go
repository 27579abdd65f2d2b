package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meetingledger/ledger/internal/domain/entities"
)

// llmResult mirrors the strict JSON schema the extraction prompt demands.
type llmResult struct {
	Decisions []struct {
		Text           string  `json:"text"`
		Owner          *string `json:"owner"`
		SourceSentence *string `json:"source_sentence"`
		Confidence     float64 `json:"confidence"`
	} `json:"decisions"`
	ActionItems []struct {
		Text           string  `json:"text"`
		Owner          *string `json:"owner"`
		DueDate        *string `json:"due_date"`
		SourceSentence *string `json:"source_sentence"`
		Confidence     float64 `json:"confidence"`
	} `json:"action_items"`
	Risks []struct {
		Text           string  `json:"text"`
		SourceSentence *string `json:"source_sentence"`
		Confidence     float64 `json:"confidence"`
	} `json:"risks"`
}

// parseLLMResponse parses the model output into candidates. The model is
// instructed to return bare JSON but markdown fences show up anyway.
func parseLLMResponse(raw string) ([]Candidate, error) {
	var result llmResult
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	var candidates []Candidate
	for _, d := range result.Decisions {
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Kind:           entities.ItemKindDecision,
			Text:           strings.TrimSpace(d.Text),
			Owner:          cleanName(d.Owner),
			SourceSentence: d.SourceSentence,
			Confidence:     d.Confidence,
		})
	}
	for _, a := range result.ActionItems {
		if strings.TrimSpace(a.Text) == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Kind:           entities.ItemKindActionItem,
			Text:           strings.TrimSpace(a.Text),
			Owner:          cleanName(a.Owner),
			DueDate:        a.DueDate,
			SourceSentence: a.SourceSentence,
			Confidence:     a.Confidence,
		})
	}
	for _, r := range result.Risks {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			Kind:           entities.ItemKindRisk,
			Text:           strings.TrimSpace(r.Text),
			SourceSentence: r.SourceSentence,
			Confidence:     r.Confidence,
		})
	}
	return candidates, nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}

// cleanName trims a name and folds placeholders like "null" or "TBD" to nil.
func cleanName(name *string) *string {
	if name == nil {
		return nil
	}
	n := strings.TrimSpace(*name)
	switch strings.ToLower(n) {
	case "", "null", "none", "n/a", "tbd", "unknown", "unassigned":
		return nil
	}
	return &n
}
