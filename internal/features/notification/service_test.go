package notification

import (
	"context"
	"testing"

	"go-procure/internal/features/workflow"

	"go.uber.org/zap"
)

type captureRepo struct {
	stored []Notification
}

func (r *captureRepo) Create(_ context.Context, n Notification) error {
	r.stored = append(r.stored, n)
	return nil
}

func (r *captureRepo) CreateMany(_ context.Context, ns []Notification) error {
	r.stored = append(r.stored, ns...)
	return nil
}

func (r *captureRepo) ListByUser(_ context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	var out []Notification
	for _, n := range r.stored {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *captureRepo) MarkRead(_ context.Context, id string, userID string) error {
	return nil
}

func newTestService() (*NotificationServiceImpl, *captureRepo) {
	repo := &captureRepo{}
	return &NotificationServiceImpl{
		Repo:   repo,
		Hub:    NewHub(),
		Logger: zap.NewNop(),
	}, repo
}

func userSet(ns []Notification) map[string]bool {
	set := make(map[string]bool)
	for _, n := range ns {
		set[n.UserID] = true
	}
	return set
}

func TestNotifyTransitionFansOutRecipientFlags(t *testing.T) {
	svc, repo := newTestService()

	err := svc.NotifyTransition(context.Background(), Transition{
		DocumentType: workflow.DocumentTypePurchaseRequest,
		ReferenceNo:  "PR-GH-20260828-ab12",
		FromStage:    "Create Request",
		ToStage:      "HOD Approval",
		Action:       workflow.ActionSubmit,
		Info: workflow.NavigationInfo{
			Stage: "HOD Approval",
			AssignedUsers: []workflow.AssignedUser{
				{UserID: "u-hod"},
				{UserID: "u-deputy"},
			},
			Recipients: workflow.Recipients{NextStep: true, Requestor: true},
		},
		RequestorID: "u-requestor",
		ActorID:     "u-requestor",
	})
	if err != nil {
		t.Fatalf("NotifyTransition: %v", err)
	}

	got := userSet(repo.stored)
	for _, want := range []string{"u-hod", "u-deputy", "u-requestor"} {
		if !got[want] {
			t.Errorf("missing notification for %s, got %v", want, got)
		}
	}
	if len(repo.stored) != 3 {
		t.Errorf("stored %d notifications, want 3", len(repo.stored))
	}
	for _, n := range repo.stored {
		if n.Type != NotificationTypeTransition {
			t.Errorf("type = %q, want transition", n.Type)
		}
		if n.ReferenceNo != "PR-GH-20260828-ab12" {
			t.Errorf("reference = %q", n.ReferenceNo)
		}
	}
}

func TestNotifyTransitionSendBackType(t *testing.T) {
	svc, repo := newTestService()

	err := svc.NotifyTransition(context.Background(), Transition{
		DocumentType: workflow.DocumentTypePurchaseRequest,
		ReferenceNo:  "PR-1",
		FromStage:    "HOD Approval",
		ToStage:      "Create Request",
		Action:       workflow.ActionSendBack,
		Info: workflow.NavigationInfo{
			Recipients: workflow.Recipients{Requestor: true},
		},
		RequestorID: "u-requestor",
		ActorID:     "u-hod",
	})
	if err != nil {
		t.Fatalf("NotifyTransition: %v", err)
	}
	if len(repo.stored) != 1 {
		t.Fatalf("stored %d notifications, want 1", len(repo.stored))
	}
	if repo.stored[0].Type != NotificationTypeSendBack {
		t.Errorf("type = %q, want sendback", repo.stored[0].Type)
	}
}

func TestNotifyTransitionNoRecipients(t *testing.T) {
	svc, repo := newTestService()

	err := svc.NotifyTransition(context.Background(), Transition{
		ReferenceNo: "PR-2",
		Info:        workflow.NavigationInfo{},
	})
	if err != nil {
		t.Fatalf("NotifyTransition: %v", err)
	}
	if len(repo.stored) != 0 {
		t.Errorf("stored %d notifications, want 0", len(repo.stored))
	}
}

func TestNotifyTransitionDeduplicatesActorAndAssignee(t *testing.T) {
	svc, repo := newTestService()

	err := svc.NotifyTransition(context.Background(), Transition{
		ReferenceNo: "PR-3",
		Action:      workflow.ActionApprove,
		Info: workflow.NavigationInfo{
			AssignedUsers: []workflow.AssignedUser{{UserID: "u-hod"}},
			Recipients:    workflow.Recipients{NextStep: true, CurrentApprove: true},
		},
		ActorID: "u-hod",
	})
	if err != nil {
		t.Fatalf("NotifyTransition: %v", err)
	}
	if len(repo.stored) != 1 {
		t.Errorf("stored %d notifications, want 1 (actor == assignee)", len(repo.stored))
	}
}

func TestNotifySLAWarning(t *testing.T) {
	svc, repo := newTestService()

	stage := workflow.Stage{Name: "HOD Approval", SLA: 2, SLAUnit: workflow.SLAUnitDays}
	err := svc.NotifySLAWarning(context.Background(), workflow.DocumentTypePurchaseRequest, "PR-4", stage, []string{"u-hod", "u-requestor"})
	if err != nil {
		t.Fatalf("NotifySLAWarning: %v", err)
	}
	if len(repo.stored) != 2 {
		t.Fatalf("stored %d notifications, want 2", len(repo.stored))
	}
	for _, n := range repo.stored {
		if n.Type != NotificationTypeSLAWarning {
			t.Errorf("type = %q, want sla_warning", n.Type)
		}
	}
}
