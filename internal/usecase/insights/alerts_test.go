package insights

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/meetingledger/ledger/internal/domain/entities"
	"github.com/meetingledger/ledger/pkg/config"
)

func testAlertsConfig() config.AlertsConfig {
	return config.AlertsConfig{
		OverdueAfter:       7 * 24 * time.Hour,
		AcknowledgeWithin:  48 * time.Hour,
		RepeatedSimilarity: 0.82,
		RepeatedLookback:   30 * 24 * time.Hour,
		CacheTTL:           5 * time.Minute,
	}
}

func testMeeting() *entities.Meeting {
	return entities.NewMeeting(uuid.New(), "Weekly sync", time.Now())
}

func owner(name string) *string { return &name }

func newAction(meeting *entities.Meeting, text string, o *string) *entities.ActionItem {
	return entities.NewActionItem(meeting.ID, uuid.New(), uuid.New(), text, o, nil, nil, 0.8)
}

func TestAlertOverdueAction(t *testing.T) {
	meeting := testMeeting()
	now := time.Now()

	overdue := newAction(meeting, "Migrate the database", owner("Ana"))
	overdue.CreatedAt = now.Add(-8 * 24 * time.Hour)

	fresh := newAction(meeting, "Write release notes", owner("Ana"))
	fresh.AcknowledgedAt = &now

	done := newAction(meeting, "Old chore", owner("Ana"))
	done.CreatedAt = now.Add(-30 * 24 * time.Hour)
	done.MarkDone()

	alerts := computeAlerts(now, testAlertsConfig(), alertInputs{
		meeting:     meeting,
		actionItems: []*entities.ActionItem{overdue, fresh, done},
	})

	if countAlerts(alerts, entities.AlertOverdueAction) != 1 {
		t.Fatalf("expected exactly one overdue alert, got %v", alerts)
	}
	if alerts[0].Type != entities.AlertOverdueAction {
		t.Error("overdue alert should sort first")
	}
	if alerts[0].ActionItemID == nil || *alerts[0].ActionItemID != overdue.ID {
		t.Error("overdue alert should reference the offending item")
	}
}

func TestAlertOverdueUsesExplicitDueDate(t *testing.T) {
	meeting := testMeeting()
	now := time.Now()

	due := now.Add(-24 * time.Hour)
	item := newAction(meeting, "Ship the fix", owner("Ana"))
	item.DueDate = &due

	alerts := computeAlerts(now, testAlertsConfig(), alertInputs{
		meeting:     meeting,
		actionItems: []*entities.ActionItem{item},
	})
	if countAlerts(alerts, entities.AlertOverdueAction) != 1 {
		t.Error("item past its due date is overdue regardless of grace period")
	}

	future := now.Add(30 * 24 * time.Hour)
	item2 := newAction(meeting, "Long-range task", owner("Ana"))
	item2.CreatedAt = now.Add(-10 * 24 * time.Hour)
	item2.DueDate = &future
	item2.AcknowledgedAt = &now

	alerts = computeAlerts(now, testAlertsConfig(), alertInputs{
		meeting:     meeting,
		actionItems: []*entities.ActionItem{item2},
	})
	if countAlerts(alerts, entities.AlertOverdueAction) != 0 {
		t.Error("an explicit future due date overrides the default grace period")
	}
}

func TestAlertNeverAcknowledged(t *testing.T) {
	meeting := testMeeting()
	now := time.Now()

	stale := newAction(meeting, "Review contract", owner("Ben"))
	stale.CreatedAt = now.Add(-72 * time.Hour)
	future := now.Add(14 * 24 * time.Hour)
	stale.DueDate = &future // not overdue, but unacknowledged

	alerts := computeAlerts(now, testAlertsConfig(), alertInputs{
		meeting:     meeting,
		actionItems: []*entities.ActionItem{stale},
	})
	if countAlerts(alerts, entities.AlertNeverAcknowledged) != 1 {
		t.Errorf("expected never_acknowledged alert, got %v", alerts)
	}

	stale.Acknowledge()
	alerts = computeAlerts(now, testAlertsConfig(), alertInputs{
		meeting:     meeting,
		actionItems: []*entities.ActionItem{stale},
	})
	if countAlerts(alerts, entities.AlertNeverAcknowledged) != 0 {
		t.Error("acknowledged item must not alert")
	}
}

func TestAlertNeverAcknowledgedRequiresOwner(t *testing.T) {
	meeting := testMeeting()
	now := time.Now()

	// Nobody can acknowledge an item that belongs to nobody; this is the
	// no_owner rule's territory, not a second alert on the same item.
	orphan := newAction(meeting, "Chase the invoice", nil)
	orphan.CreatedAt = now.Add(-72 * time.Hour)

	alerts := computeAlerts(now, testAlertsConfig(), alertInputs{
		meeting:     meeting,
		actionItems: []*entities.ActionItem{orphan},
	})
	if countAlerts(alerts, entities.AlertNeverAcknowledged) != 0 {
		t.Errorf("ownerless item must not fire never_acknowledged, got %v", alerts)
	}
	if countAlerts(alerts, entities.AlertActionNoOwner) != 1 {
		t.Errorf("ownerless item still fires no_owner, got %v", alerts)
	}
}

func TestAlertOverdueSkipsAcknowledgedWithoutDueDate(t *testing.T) {
	meeting := testMeeting()
	now := time.Now()

	item := newAction(meeting, "Refine the rollout plan", owner("Ana"))
	item.CreatedAt = now.Add(-10 * 24 * time.Hour)
	ack := now.Add(-9 * 24 * time.Hour)
	item.AcknowledgedAt = &ack

	alerts := computeAlerts(now, testAlertsConfig(), alertInputs{
		meeting:     meeting,
		actionItems: []*entities.ActionItem{item},
	})
	if countAlerts(alerts, entities.AlertOverdueAction) != 0 {
		t.Errorf("acknowledged item with no due date is not overdue by age, got %v", alerts)
	}
}

func TestAlertMissingOwners(t *testing.T) {
	meeting := testMeeting()
	now := time.Now()

	unowned := newAction(meeting, "Follow up with legal", nil)
	unowned.AcknowledgedAt = &now

	decision := entities.NewDecision(meeting.ID, uuid.New(), uuid.New(), "Adopt the new vendor", nil, nil, 0.9)

	alerts := computeAlerts(now, testAlertsConfig(), alertInputs{
		meeting:     meeting,
		decisions:   []*entities.Decision{decision},
		actionItems: []*entities.ActionItem{unowned},
	})

	if countAlerts(alerts, entities.AlertActionNoOwner) != 1 {
		t.Errorf("expected action_no_owner alert, got %v", alerts)
	}
	if countAlerts(alerts, entities.AlertDecisionNoOwner) != 1 {
		t.Errorf("expected decision_no_owner alert, got %v", alerts)
	}
}

func TestAlertRepeatedIssue(t *testing.T) {
	meeting := testMeeting()
	now := time.Now()

	risk := entities.NewRisk(meeting.ID, uuid.New(), uuid.New(), "Staging database keeps running out of connections", nil, 0.7)
	priorSimilar := entities.NewRisk(uuid.New(), uuid.New(), uuid.New(), "Staging database keeps running out of connection slots", nil, 0.7)
	priorUnrelated := entities.NewRisk(uuid.New(), uuid.New(), uuid.New(), "Vendor contract renewal is late", nil, 0.7)

	alerts := computeAlerts(now, testAlertsConfig(), alertInputs{
		meeting:       meeting,
		risks:         []*entities.Risk{risk},
		historicRisks: []*entities.Risk{priorUnrelated, priorSimilar},
	})
	if countAlerts(alerts, entities.AlertRepeatedIssue) != 1 {
		t.Errorf("expected repeated_issue alert, got %v", alerts)
	}

	alerts = computeAlerts(now, testAlertsConfig(), alertInputs{
		meeting:       meeting,
		risks:         []*entities.Risk{risk},
		historicRisks: []*entities.Risk{priorUnrelated},
	})
	if countAlerts(alerts, entities.AlertRepeatedIssue) != 0 {
		t.Error("unrelated history must not trigger repeated_issue")
	}
}

func TestAlertNoOutcomes(t *testing.T) {
	meeting := testMeeting()
	now := time.Now()

	run := entities.NewExtractionRun(uuid.New(), meeting.ID)
	run.MarkSucceeded("rules/v1", 0, 0, 0)

	alerts := computeAlerts(now, testAlertsConfig(), alertInputs{
		meeting:   meeting,
		latestRun: run,
	})
	if countAlerts(alerts, entities.AlertNoOutcomes) != 1 {
		t.Errorf("expected no_outcomes alert, got %v", alerts)
	}

	// A meeting never extracted is not "no outcomes", it is just unextracted.
	alerts = computeAlerts(now, testAlertsConfig(), alertInputs{meeting: meeting})
	if len(alerts) != 0 {
		t.Errorf("no run means no alert, got %v", alerts)
	}

	// A failed run says nothing about outcomes.
	failed := entities.NewExtractionRun(uuid.New(), meeting.ID)
	failed.MarkFailed("provider timeout")
	alerts = computeAlerts(now, testAlertsConfig(), alertInputs{meeting: meeting, latestRun: failed})
	if len(alerts) != 0 {
		t.Errorf("failed run must not trigger no_outcomes, got %v", alerts)
	}
}

func TestAlertsOrderedBySeverity(t *testing.T) {
	meeting := testMeeting()
	now := time.Now()

	overdue := newAction(meeting, "Oldest chore", owner("Ana"))
	overdue.CreatedAt = now.Add(-10 * 24 * time.Hour)

	unowned := newAction(meeting, "Unowned task", nil)
	unowned.AcknowledgedAt = &now

	decision := entities.NewDecision(meeting.ID, uuid.New(), uuid.New(), "Ownerless decision", nil, nil, 0.9)

	alerts := computeAlerts(now, testAlertsConfig(), alertInputs{
		meeting:     meeting,
		decisions:   []*entities.Decision{decision},
		actionItems: []*entities.ActionItem{unowned, overdue},
	})

	for i := 1; i < len(alerts); i++ {
		if alerts[i-1].Severity < alerts[i].Severity {
			t.Fatalf("alerts out of order at %d: %v", i, alerts)
		}
	}
	if alerts[0].Type != entities.AlertOverdueAction {
		t.Errorf("overdue_action carries the highest severity, got %s first", alerts[0].Type)
	}
}

func countAlerts(alerts []entities.Alert, t entities.AlertType) int {
	n := 0
	for _, a := range alerts {
		if a.Type == t {
			n++
		}
	}
	return n
}
