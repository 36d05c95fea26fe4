package sla

import (
	"testing"
	"time"

	"go-procure/internal/features/workflow"
)

func TestStageOverdue(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		sla       float64
		unit      workflow.SLAUnit
		enteredAt time.Time
		want      bool
	}{
		{"within hours", 4, workflow.SLAUnitHours, now.Add(-2 * time.Hour), false},
		{"past hours", 4, workflow.SLAUnitHours, now.Add(-5 * time.Hour), true},
		{"exactly at limit", 4, workflow.SLAUnitHours, now.Add(-4 * time.Hour), false},
		{"within days", 2, workflow.SLAUnitDays, now.Add(-36 * time.Hour), false},
		{"past days", 2, workflow.SLAUnitDays, now.Add(-49 * time.Hour), true},
		{"fractional days", 0.5, workflow.SLAUnitDays, now.Add(-13 * time.Hour), true},
		{"zero sla never overdue", 0, workflow.SLAUnitHours, now.Add(-1000 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := workflow.Stage{SLA: tt.sla, SLAUnit: tt.unit}
			if got := StageOverdue(stage, tt.enteredAt, now); got != tt.want {
				t.Errorf("StageOverdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnteredStageAt(t *testing.T) {
	created := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	moved := time.Date(2026, 8, 25, 15, 30, 0, 0, time.UTC)

	if got := EnteredStageAt(nil, created); !got.Equal(created) {
		t.Errorf("empty history: got %v, want creation time", got)
	}

	history := []workflow.HistoryEntry{
		{FromStage: "Create Request", ToStage: "HOD Approval", Timestamp: created.Add(time.Hour)},
		{FromStage: "HOD Approval", ToStage: "Purchase", Timestamp: moved},
	}
	if got := EnteredStageAt(history, created); !got.Equal(moved) {
		t.Errorf("got %v, want last transition time %v", got, moved)
	}
}

func TestWarningRecipients(t *testing.T) {
	stage := workflow.Stage{
		AssignedUsers: []workflow.AssignedUser{
			{UserID: "u-hod"},
			{UserID: "u-deputy"},
		},
	}

	if got := WarningRecipients(stage, "u-requestor"); got != nil {
		t.Errorf("no warning config: got %v, want nil", got)
	}

	stage.SLAWarning = &workflow.Recipients{NextStep: true, Requestor: true}
	got := WarningRecipients(stage, "u-requestor")
	want := []string{"u-hod", "u-deputy", "u-requestor"}
	if len(got) != len(want) {
		t.Fatalf("recipients = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("recipients[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Requestor already assigned at the stage must not be duplicated.
	stage.AssignedUsers = append(stage.AssignedUsers, workflow.AssignedUser{UserID: "u-requestor"})
	got = WarningRecipients(stage, "u-requestor")
	if len(got) != 3 {
		t.Errorf("deduped recipients = %v, want 3 entries", got)
	}
}
