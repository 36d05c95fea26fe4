package purchaserequest

import (
	"context"
	"errors"
	"testing"

	"go-procure/internal/common/models"
	"go-procure/internal/features/businessunit"
	"go-procure/internal/features/notification"
	"go-procure/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeRepo struct {
	docs map[string]*PurchaseRequest
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[string]*PurchaseRequest)}
}

func (r *fakeRepo) Create(_ context.Context, pr PurchaseRequest) error {
	cp := pr
	r.docs[pr.ID.Hex()] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*PurchaseRequest, error) {
	pr, ok := r.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *pr
	return &cp, nil
}

func (r *fakeRepo) List(_ context.Context, bu string, status models.DocumentStatus) ([]PurchaseRequest, error) {
	var out []PurchaseRequest
	for _, pr := range r.docs {
		if bu != "" && pr.BusinessUnitCode != bu {
			continue
		}
		if status != "" && pr.Status != status {
			continue
		}
		out = append(out, *pr)
	}
	return out, nil
}

func (r *fakeRepo) ListInProgress(_ context.Context) ([]PurchaseRequest, error) {
	return r.List(context.Background(), "", models.DocumentStatusInProgress)
}

func (r *fakeRepo) UpdatePosition(_ context.Context, id string, stage string, status models.DocumentStatus, entry workflow.HistoryEntry) error {
	pr, ok := r.docs[id]
	if !ok {
		return errors.New("no document")
	}
	pr.CurrentStage = stage
	pr.Status = status
	pr.History = append(pr.History, entry)
	return nil
}

func (r *fakeRepo) UpdateData(_ context.Context, id string, data map[string]interface{}) error {
	pr, ok := r.docs[id]
	if !ok {
		return errors.New("no document")
	}
	pr.Data = data
	return nil
}

type fakeWorkflows struct {
	def *workflow.WorkflowData
}

func (f *fakeWorkflows) CreateDefinition(context.Context, workflow.WorkflowData) (*workflow.WorkflowData, error) {
	return f.def, nil
}
func (f *fakeWorkflows) UpdateDefinition(context.Context, string, workflow.WorkflowData) error {
	return nil
}
func (f *fakeWorkflows) DeleteDefinition(context.Context, string) error { return nil }
func (f *fakeWorkflows) GetDefinition(_ context.Context, id string) (*workflow.WorkflowData, error) {
	if id != f.def.ID.Hex() {
		return nil, nil
	}
	return f.def, nil
}
func (f *fakeWorkflows) ListDefinitions(context.Context) ([]workflow.WorkflowData, error) {
	return []workflow.WorkflowData{*f.def}, nil
}
func (f *fakeWorkflows) NavigatorFor(_ context.Context, id string, currentStage string) (*workflow.Navigator, error) {
	if id != f.def.ID.Hex() {
		return nil, workflow.ErrWorkflowNotFound
	}
	return workflow.NewNavigator(f.def, currentStage)
}
func (f *fakeWorkflows) ActiveDefinitionFor(context.Context, workflow.DocumentType) (*workflow.WorkflowData, error) {
	return f.def, nil
}
func (f *fakeWorkflows) StageNamesAcrossWorkflows(context.Context, []string) ([]string, error) {
	return nil, nil
}
func (f *fakeWorkflows) PreviousStages(ctx context.Context, id string, currentStage string) ([]string, error) {
	nav, err := f.NavigatorFor(ctx, id, currentStage)
	if err != nil {
		return nil, err
	}
	return nav.PreviousStageNamesByStructure(currentStage), nil
}

type fakeBusinessUnits struct {
	workflowID string
}

func (f *fakeBusinessUnits) Create(context.Context, businessunit.BusinessUnit) (*businessunit.BusinessUnit, error) {
	return nil, nil
}
func (f *fakeBusinessUnits) GetByCode(context.Context, string) (*businessunit.BusinessUnit, error) {
	return nil, nil
}
func (f *fakeBusinessUnits) List(context.Context) ([]businessunit.BusinessUnit, error) {
	return nil, nil
}
func (f *fakeBusinessUnits) Update(context.Context, string, businessunit.BusinessUnit) error {
	return nil
}
func (f *fakeBusinessUnits) Delete(context.Context, string) error { return nil }
func (f *fakeBusinessUnits) AssignedWorkflowID(_ context.Context, code string, _ workflow.DocumentType) (string, error) {
	if code != "GH" {
		return "", businessunit.ErrBusinessUnitNotFound
	}
	return f.workflowID, nil
}
func (f *fakeBusinessUnits) NextReference(context.Context, string, workflow.DocumentType) (string, error) {
	return "PR-GH-20260828-ab12", nil
}

type fakeNotifications struct {
	transitions []notification.Transition
}

func (f *fakeNotifications) NotifyTransition(_ context.Context, t notification.Transition) error {
	f.transitions = append(f.transitions, t)
	return nil
}
func (f *fakeNotifications) NotifySLAWarning(context.Context, workflow.DocumentType, string, workflow.Stage, []string) error {
	return nil
}
func (f *fakeNotifications) ListByUser(context.Context, string, bool) ([]notification.Notification, error) {
	return nil, nil
}
func (f *fakeNotifications) MarkRead(context.Context, string, string) error { return nil }

func approvalDefinition() *workflow.WorkflowData {
	actions := func(as ...workflow.Action) map[workflow.Action]workflow.ActionConfig {
		m := make(map[workflow.Action]workflow.ActionConfig)
		for _, a := range as {
			m[a] = workflow.ActionConfig{
				IsActive:   true,
				Recipients: workflow.Recipients{NextStep: true, Requestor: true},
			}
		}
		return m
	}
	return &workflow.WorkflowData{
		ID:           primitive.NewObjectID(),
		Name:         "PR approval",
		DocumentType: workflow.DocumentTypePurchaseRequest,
		Active:       true,
		Stages: []workflow.Stage{
			{
				Name:             "Create Request",
				Role:             "create",
				AssignedUsers:    []workflow.AssignedUser{{UserID: "u-requestor"}},
				AvailableActions: actions(workflow.ActionSubmit),
			},
			{
				Name:             "HOD Approval",
				Role:             "approve",
				AssignedUsers:    []workflow.AssignedUser{{UserID: "u-hod"}},
				AvailableActions: actions(workflow.ActionApprove, workflow.ActionReject, workflow.ActionSendBack),
			},
			{
				Name:          "Completed",
				Role:          "complete",
				AssignedUsers: []workflow.AssignedUser{},
				AvailableActions: map[workflow.Action]workflow.ActionConfig{
					workflow.ActionApprove: {IsActive: false},
				},
			},
		},
	}
}

func newTestService(def *workflow.WorkflowData) (*PurchaseRequestServiceImpl, *fakeRepo, *fakeNotifications) {
	repo := newFakeRepo()
	notifs := &fakeNotifications{}
	svc := &PurchaseRequestServiceImpl{
		Repo:          repo,
		Workflows:     &fakeWorkflows{def: def},
		BusinessUnits: &fakeBusinessUnits{workflowID: def.ID.Hex()},
		Notifications: notifs,
		Logger:        zap.NewNop(),
	}
	return svc, repo, notifs
}

func TestCreateBindsWorkflowAndFirstStage(t *testing.T) {
	svc, _, _ := newTestService(approvalDefinition())

	pr, err := svc.Create(context.Background(), CreatePurchaseRequestInput{
		BusinessUnitCode: "GH",
		Data:             map[string]interface{}{"amount": 500.0},
	}, "u-requestor")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if pr.CurrentStage != "Create Request" {
		t.Errorf("current stage = %q, want Create Request", pr.CurrentStage)
	}
	if pr.Status != models.DocumentStatusDraft {
		t.Errorf("status = %q, want draft", pr.Status)
	}
	if pr.RefNo == "" {
		t.Error("expected a generated reference number")
	}
	if len(pr.History) != 0 {
		t.Errorf("new document history length = %d, want 0", len(pr.History))
	}
}

func TestCreateUnknownBusinessUnit(t *testing.T) {
	svc, _, _ := newTestService(approvalDefinition())

	_, err := svc.Create(context.Background(), CreatePurchaseRequestInput{BusinessUnitCode: "XX"}, "u-requestor")
	if !errors.Is(err, businessunit.ErrBusinessUnitNotFound) {
		t.Fatalf("err = %v, want ErrBusinessUnitNotFound", err)
	}
}

func TestNavigateMovesStageAndNotifies(t *testing.T) {
	svc, repo, notifs := newTestService(approvalDefinition())

	pr, err := svc.Create(context.Background(), CreatePurchaseRequestInput{
		BusinessUnitCode: "GH",
		Data:             map[string]interface{}{"amount": 500.0},
	}, "u-requestor")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	res, err := svc.Navigate(context.Background(), pr.ID.Hex(), NavigateInput{Action: workflow.ActionSubmit}, "u-requestor")
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if res.Document.CurrentStage != "HOD Approval" {
		t.Errorf("stage = %q, want HOD Approval", res.Document.CurrentStage)
	}
	if res.Document.Status != models.DocumentStatusInProgress {
		t.Errorf("status = %q, want in_progress", res.Document.Status)
	}

	stored, _ := repo.GetByID(context.Background(), pr.ID.Hex())
	if stored.CurrentStage != "HOD Approval" {
		t.Errorf("stored stage = %q, want HOD Approval", stored.CurrentStage)
	}
	if len(stored.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(stored.History))
	}
	if stored.History[0].Action != workflow.ActionSubmit {
		t.Errorf("history action = %q, want submit", stored.History[0].Action)
	}

	if len(notifs.transitions) != 1 {
		t.Fatalf("transitions recorded = %d, want 1", len(notifs.transitions))
	}
	if notifs.transitions[0].ToStage != "HOD Approval" {
		t.Errorf("notified to_stage = %q", notifs.transitions[0].ToStage)
	}
}

func TestNavigateToTerminalStageCompletes(t *testing.T) {
	svc, _, _ := newTestService(approvalDefinition())

	pr, _ := svc.Create(context.Background(), CreatePurchaseRequestInput{BusinessUnitCode: "GH"}, "u-requestor")
	if _, err := svc.Navigate(context.Background(), pr.ID.Hex(), NavigateInput{Action: workflow.ActionSubmit}, "u-requestor"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	res, err := svc.Navigate(context.Background(), pr.ID.Hex(), NavigateInput{Action: workflow.ActionApprove}, "u-hod")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if res.Document.CurrentStage != "Completed" {
		t.Errorf("stage = %q, want Completed", res.Document.CurrentStage)
	}
	if res.Document.Status != models.DocumentStatusCompleted {
		t.Errorf("status = %q, want completed", res.Document.Status)
	}
}

func TestNavigateRejectCancels(t *testing.T) {
	svc, _, _ := newTestService(approvalDefinition())

	pr, _ := svc.Create(context.Background(), CreatePurchaseRequestInput{BusinessUnitCode: "GH"}, "u-requestor")
	if _, err := svc.Navigate(context.Background(), pr.ID.Hex(), NavigateInput{Action: workflow.ActionSubmit}, "u-requestor"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	res, err := svc.Navigate(context.Background(), pr.ID.Hex(), NavigateInput{Action: workflow.ActionReject}, "u-hod")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if res.Document.CurrentStage != workflow.StageCancelled {
		t.Errorf("stage = %q, want %q", res.Document.CurrentStage, workflow.StageCancelled)
	}
	if res.Document.Status != models.DocumentStatusCancelled {
		t.Errorf("status = %q, want cancelled", res.Document.Status)
	}
}

func TestNavigateDisallowedActionLeavesDocumentUntouched(t *testing.T) {
	svc, repo, notifs := newTestService(approvalDefinition())

	pr, _ := svc.Create(context.Background(), CreatePurchaseRequestInput{BusinessUnitCode: "GH"}, "u-requestor")

	_, err := svc.Navigate(context.Background(), pr.ID.Hex(), NavigateInput{Action: workflow.ActionApprove}, "u-requestor")
	var notAllowed *workflow.ActionNotAllowedError
	if !errors.As(err, &notAllowed) {
		t.Fatalf("err = %v, want ActionNotAllowedError", err)
	}

	stored, _ := repo.GetByID(context.Background(), pr.ID.Hex())
	if stored.CurrentStage != "Create Request" || len(stored.History) != 0 {
		t.Errorf("document changed on rejected action: stage=%q history=%d", stored.CurrentStage, len(stored.History))
	}
	if len(notifs.transitions) != 0 {
		t.Errorf("transitions recorded = %d, want 0", len(notifs.transitions))
	}
}

func TestNavigateWithPayloadOverridesStoredData(t *testing.T) {
	def := approvalDefinition()
	def.RoutingRules = []workflow.RoutingRule{
		{
			ID:        "skip-hod",
			FromStage: "Create Request",
			Action:    workflow.ActionSubmit,
			Conditions: []workflow.ConditionConfig{
				{Field: "amount", Operator: workflow.OpLt, Value: 100},
			},
			TargetStage: "Completed",
		},
	}
	svc, repo, _ := newTestService(def)

	pr, _ := svc.Create(context.Background(), CreatePurchaseRequestInput{
		BusinessUnitCode: "GH",
		Data:             map[string]interface{}{"amount": 500.0},
	}, "u-requestor")

	res, err := svc.Navigate(context.Background(), pr.ID.Hex(), NavigateInput{
		Action: workflow.ActionSubmit,
		Data:   map[string]interface{}{"amount": 50.0},
	}, "u-requestor")
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if res.Document.CurrentStage != "Completed" {
		t.Errorf("stage = %q, want Completed via low-amount rule", res.Document.CurrentStage)
	}
	if res.Document.History[0].MatchedRuleID == nil || *res.Document.History[0].MatchedRuleID != "skip-hod" {
		t.Errorf("matched rule = %v, want skip-hod", res.Document.History[0].MatchedRuleID)
	}

	stored, _ := repo.GetByID(context.Background(), pr.ID.Hex())
	if got := stored.Data["amount"]; got != 50.0 {
		t.Errorf("stored amount = %v, want 50", got)
	}
}

func TestReturnToStage(t *testing.T) {
	svc, repo, notifs := newTestService(approvalDefinition())

	pr, _ := svc.Create(context.Background(), CreatePurchaseRequestInput{BusinessUnitCode: "GH"}, "u-requestor")
	if _, err := svc.Navigate(context.Background(), pr.ID.Hex(), NavigateInput{Action: workflow.ActionSubmit}, "u-requestor"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	res, err := svc.ReturnToStage(context.Background(), pr.ID.Hex(), ReturnInput{TargetStage: "Create Request"}, "u-hod")
	if err != nil {
		t.Fatalf("ReturnToStage: %v", err)
	}
	if res.Document.CurrentStage != "Create Request" {
		t.Errorf("stage = %q, want Create Request", res.Document.CurrentStage)
	}

	stored, _ := repo.GetByID(context.Background(), pr.ID.Hex())
	if len(stored.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(stored.History))
	}
	back := stored.History[1]
	if back.Action != workflow.ActionSendBack {
		t.Errorf("back action = %q, want sendback", back.Action)
	}
	if back.MatchedRuleID != nil {
		t.Errorf("back entry matched rule = %v, want nil", back.MatchedRuleID)
	}
	if len(notifs.transitions) != 2 {
		t.Errorf("transitions recorded = %d, want 2", len(notifs.transitions))
	}
}

func TestReturnToUnreachableStage(t *testing.T) {
	svc, _, _ := newTestService(approvalDefinition())

	pr, _ := svc.Create(context.Background(), CreatePurchaseRequestInput{BusinessUnitCode: "GH"}, "u-requestor")

	_, err := svc.ReturnToStage(context.Background(), pr.ID.Hex(), ReturnInput{TargetStage: "Completed"}, "u-requestor")
	var unreachable *workflow.UnreachableStageError
	if !errors.As(err, &unreachable) {
		t.Fatalf("err = %v, want UnreachableStageError", err)
	}
}

func TestPreviousStages(t *testing.T) {
	svc, _, _ := newTestService(approvalDefinition())

	pr, _ := svc.Create(context.Background(), CreatePurchaseRequestInput{BusinessUnitCode: "GH"}, "u-requestor")
	if _, err := svc.Navigate(context.Background(), pr.ID.Hex(), NavigateInput{Action: workflow.ActionSubmit}, "u-requestor"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	names, err := svc.PreviousStages(context.Background(), pr.ID.Hex())
	if err != nil {
		t.Fatalf("PreviousStages: %v", err)
	}
	if len(names) != 1 || names[0] != "Create Request" {
		t.Errorf("previous stages = %v, want [Create Request]", names)
	}
}
