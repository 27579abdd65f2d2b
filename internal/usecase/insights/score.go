package insights

import (
	"github.com/meetingledger/ledger/internal/domain/entities"
	"github.com/meetingledger/ledger/pkg/config"
)

// Score computes the productivity score for one meeting. It is monotonic in
// every input (more outcomes never score lower) and bounded to [0, 100].
func Score(cfg config.ScoringConfig, decisions, ownedActions, unownedActions int) float64 {
	raw := float64(decisions)*cfg.DecisionWeight +
		float64(ownedActions)*cfg.OwnedActionWeight +
		float64(unownedActions)*cfg.UnownedActionWeight
	if raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}
	return raw
}

// Classify buckets a score using fixed thresholds. A meeting with no
// outcomes scores zero and falls through to unproductive.
func Classify(cfg config.ScoringConfig, score float64) entities.MeetingClassification {
	switch {
	case score >= cfg.ProductiveAt:
		return entities.ClassificationProductive
	case score >= cfg.NeedsFollowUpAt:
		return entities.ClassificationNeedsFollow
	default:
		return entities.ClassificationUnproductive
	}
}
