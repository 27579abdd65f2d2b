package extraction

import (
	"context"
	"strings"

	"github.com/meetingledger/ledger/internal/domain/entities"
)

// RuleExtractor is a deterministic keyword-based extractor. It exists as an
// offline fallback and for environments without an AI provider; precision is
// deliberately traded for zero cost and full reproducibility.
type RuleExtractor struct{}

var _ Extractor = (*RuleExtractor)(nil)

// NewRuleExtractor creates the heuristic extractor.
func NewRuleExtractor() *RuleExtractor {
	return &RuleExtractor{}
}

var decisionMarkers = []string{
	"we decided", "decided to", "we agreed", "agreed to", "agreed on",
	"we will go with", "let's go with", "going with", "the decision is",
	"we chose", "settled on", "final answer", "approved",
}

var actionMarkers = []string{
	"i will", "i'll", "will take care", "will send", "will prepare",
	"will follow up", "will set up", "will schedule", "needs to",
	"need to", "have to", "action item", "follow up on", "take care of",
	"by tomorrow", "by next week", "by friday", "by monday", "by end of",
}

var riskMarkers = []string{
	"risk", "concern", "concerned", "worried", "worry", "blocker",
	"blocked", "blocking", "might slip", "may slip", "might miss",
	"may miss", "could delay", "behind schedule", "running late",
	"not sure we can", "problem with",
}

var commitmentMarkers = []string{"i will", "i'll", "i can take", "i'm going to", "i am going to"}

// Extract classifies each sentence by its strongest marker match.
func (e *RuleExtractor) Extract(_ context.Context, _ string, sentences []Sentence) ([]Candidate, error) {
	var candidates []Candidate
	for _, sent := range sentences {
		lower := strings.ToLower(sent.Text)
		text := sent.Text
		source := sent.Text

		switch {
		case matchCount(lower, decisionMarkers) > 0:
			candidates = append(candidates, Candidate{
				Kind:           entities.ItemKindDecision,
				Text:           text,
				SourceSentence: &source,
				Confidence:     markerConfidence(0.6, matchCount(lower, decisionMarkers)),
			})
		case matchCount(lower, actionMarkers) > 0:
			confidence := markerConfidence(0.5, matchCount(lower, actionMarkers))
			var owner *string
			if sent.Speaker != nil && matchCount(lower, commitmentMarkers) > 0 {
				// First-person commitment: the speaker owns it.
				owner = sent.Speaker
				confidence += 0.15
			}
			candidates = append(candidates, Candidate{
				Kind:           entities.ItemKindActionItem,
				Text:           text,
				Owner:          owner,
				SourceSentence: &source,
				Confidence:     confidence,
			})
		case matchCount(lower, riskMarkers) > 0:
			candidates = append(candidates, Candidate{
				Kind:           entities.ItemKindRisk,
				Text:           text,
				SourceSentence: &source,
				Confidence:     markerConfidence(0.45, matchCount(lower, riskMarkers)),
			})
		}
	}
	return candidates, nil
}

func (e *RuleExtractor) Model() string {
	return "rules/v1"
}

func matchCount(lower string, markers []string) int {
	count := 0
	for _, m := range markers {
		if strings.Contains(lower, m) {
			count++
		}
	}
	return count
}

func markerConfidence(base float64, matches int) float64 {
	confidence := base + 0.1*float64(matches-1)
	if confidence > 0.85 {
		confidence = 0.85
	}
	return confidence
}
