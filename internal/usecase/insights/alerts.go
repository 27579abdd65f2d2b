package insights

import (
	"fmt"
	"sort"
	"time"

	"github.com/antzucaro/matchr"

	"github.com/meetingledger/ledger/internal/domain/entities"
	"github.com/meetingledger/ledger/pkg/config"
)

// alertInputs gathers everything the rule set looks at for one meeting.
type alertInputs struct {
	meeting       *entities.Meeting
	decisions     []*entities.Decision
	actionItems   []*entities.ActionItem
	risks         []*entities.Risk
	historicRisks []*entities.Risk
	latestRun     *entities.ExtractionRun
}

// computeAlerts evaluates every alert rule over the meeting's current
// insights. The result is ordered most urgent first; equal severities keep
// rule order.
func computeAlerts(now time.Time, cfg config.AlertsConfig, in alertInputs) []entities.Alert {
	alerts := make([]entities.Alert, 0)
	meetingID := in.meeting.ID

	for _, item := range in.actionItems {
		if item.IsOverdue(now, cfg.OverdueAfter) {
			id := item.ID
			alerts = append(alerts, entities.NewAlert(
				entities.AlertOverdueAction, meetingID, &id,
				fmt.Sprintf("Action item %q is overdue", item.Text),
			))
		}
	}

	// Only owned items can be acknowledged by somebody; ownerless stale
	// items are the no_owner rule's problem.
	for _, item := range in.actionItems {
		if item.HasOwner() &&
			item.Status == entities.ActionItemStatusOpen &&
			item.AcknowledgedAt == nil &&
			now.Sub(item.CreatedAt) > cfg.AcknowledgeWithin {
			id := item.ID
			alerts = append(alerts, entities.NewAlert(
				entities.AlertNeverAcknowledged, meetingID, &id,
				fmt.Sprintf("Action item %q was never acknowledged", item.Text),
			))
		}
	}

	for _, item := range in.actionItems {
		if !item.HasOwner() {
			id := item.ID
			alerts = append(alerts, entities.NewAlert(
				entities.AlertActionNoOwner, meetingID, &id,
				fmt.Sprintf("Action item %q has no owner", item.Text),
			))
		}
	}

	for _, decision := range in.decisions {
		if decision.Owner == nil || *decision.Owner == "" {
			alerts = append(alerts, entities.NewAlert(
				entities.AlertDecisionNoOwner, meetingID, nil,
				fmt.Sprintf("Decision %q has nobody responsible for it", decision.Text),
			))
		}
	}

	for _, risk := range in.risks {
		if prior := similarRisk(risk, in.historicRisks, cfg.RepeatedSimilarity); prior != nil {
			alerts = append(alerts, entities.NewAlert(
				entities.AlertRepeatedIssue, meetingID, nil,
				fmt.Sprintf("Risk %q resembles an issue already raised in an earlier meeting", risk.Text),
			))
		}
	}

	if in.latestRun != nil &&
		in.latestRun.Status == entities.ExtractionRunStatusSucceeded &&
		len(in.decisions) == 0 && len(in.actionItems) == 0 {
		alerts = append(alerts, entities.NewAlert(
			entities.AlertNoOutcomes, meetingID, nil,
			"Meeting produced no decisions and no action items",
		))
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity > alerts[j].Severity
	})
	return alerts
}

// similarRisk returns the first historic risk whose text is close enough to
// the given one. Jaro-Winkler favors shared prefixes, which suits short risk
// statements repeated meeting to meeting.
func similarRisk(risk *entities.Risk, history []*entities.Risk, threshold float64) *entities.Risk {
	for _, prior := range history {
		if matchr.JaroWinkler(risk.Text, prior.Text, false) >= threshold {
			return prior
		}
	}
	return nil
}
