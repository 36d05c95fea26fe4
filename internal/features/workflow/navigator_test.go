package workflow

import (
	"errors"
	"testing"
)

// fourStageDefinition builds the canonical PR approval chain:
// Create Request -> HOD -> Purchase -> Completed.
func fourStageDefinition(rules ...RoutingRule) *WorkflowData {
	active := func(actions ...Action) map[Action]ActionConfig {
		m := make(map[Action]ActionConfig)
		for _, a := range actions {
			m[a] = ActionConfig{IsActive: true, Recipients: Recipients{NextStep: true, Requestor: true}}
		}
		return m
	}
	return &WorkflowData{
		Name:         "PR Approval",
		DocumentType: DocumentTypePurchaseRequest,
		Active:       true,
		Stages: []Stage{
			{
				Name: "Create Request", Role: "create", SLA: 24, SLAUnit: SLAUnitHours,
				AssignedUsers: []AssignedUser{
					{UserID: "u-requestor", Email: "req@hotel.test", Firstname: "Rita", Lastname: "Requestor", Department: "F&B"},
				},
				CreatorAccess:    CreatorAccessEdit,
				AvailableActions: active(ActionSubmit),
			},
			{
				Name: "HOD", Role: "approve", SLA: 1, SLAUnit: SLAUnitDays, IsHOD: true,
				AssignedUsers: []AssignedUser{
					{UserID: "u-hod", Email: "hod@hotel.test", Firstname: "Harry", Lastname: "Head", Department: "F&B"},
				},
				AvailableActions: active(ActionApprove, ActionReject, ActionSendBack),
			},
			{
				Name: "Purchase", Role: "purchase", SLA: 2, SLAUnit: SLAUnitDays,
				AssignedUsers: []AssignedUser{
					{UserID: "u-buyer", Email: "buyer@hotel.test", Firstname: "Pam", Lastname: "Buyer", Department: "Procurement"},
				},
				AvailableActions: active(ActionApprove, ActionReject, ActionSendBack),
			},
			{
				Name: "Completed", Role: "complete",
				AvailableActions: map[Action]ActionConfig{
					ActionApprove: {IsActive: false},
				},
			},
		},
		RoutingRules: rules,
	}
}

func TestNavigateForwardStructuralDefault(t *testing.T) {
	nav, err := NewNavigator(fourStageDefinition(), "HOD")
	if err != nil {
		t.Fatalf("NewNavigator() error = %v", err)
	}

	res, err := nav.NavigateForward(ActionApprove, map[string]interface{}{}, "u-hod")
	if err != nil {
		t.Fatalf("NavigateForward() error = %v", err)
	}
	if res.NextStage != "Purchase" {
		t.Errorf("NextStage = %q, want %q", res.NextStage, "Purchase")
	}
	if res.HistoryEntry.MatchedRuleID != nil {
		t.Errorf("MatchedRuleID = %v, want nil for structural default", *res.HistoryEntry.MatchedRuleID)
	}
	if res.HistoryEntry.FromStage != "HOD" || res.HistoryEntry.ToStage != "Purchase" || res.HistoryEntry.Action != ActionApprove {
		t.Errorf("unexpected history entry %+v", res.HistoryEntry)
	}
	if len(res.NavigationInfo.AssignedUsers) != 1 || res.NavigationInfo.AssignedUsers[0].UserID != "u-buyer" {
		t.Errorf("NavigationInfo should carry Purchase assignees, got %+v", res.NavigationInfo.AssignedUsers)
	}
	if len(nav.History()) != 1 {
		t.Errorf("navigator history length = %d, want 1", len(nav.History()))
	}
}

func TestNavigateForwardRuleMatch(t *testing.T) {
	highValue := RoutingRule{
		ID:        "rule-high-value",
		FromStage: "HOD",
		Action:    ActionApprove,
		Conditions: []ConditionConfig{
			{Field: "total_price", Operator: OpGt, Value: 5000},
		},
		TargetStage: "Completed",
	}
	nav, err := NewNavigator(fourStageDefinition(highValue), "HOD")
	if err != nil {
		t.Fatalf("NewNavigator() error = %v", err)
	}

	res, err := nav.NavigateForward(ActionApprove, map[string]interface{}{"total_price": 7000.0}, "u-hod")
	if err != nil {
		t.Fatalf("NavigateForward() error = %v", err)
	}
	if res.NextStage != "Completed" {
		t.Errorf("NextStage = %q, want %q", res.NextStage, "Completed")
	}
	if res.HistoryEntry.MatchedRuleID == nil || *res.HistoryEntry.MatchedRuleID != "rule-high-value" {
		t.Errorf("MatchedRuleID = %v, want rule-high-value", res.HistoryEntry.MatchedRuleID)
	}
}

func TestNavigateForwardRuleFallback(t *testing.T) {
	highValue := RoutingRule{
		ID:        "rule-high-value",
		FromStage: "HOD",
		Action:    ActionApprove,
		Conditions: []ConditionConfig{
			{Field: "total_price", Operator: OpGt, Value: 5000},
		},
		TargetStage: "Completed",
	}
	nav, err := NewNavigator(fourStageDefinition(highValue), "HOD")
	if err != nil {
		t.Fatalf("NewNavigator() error = %v", err)
	}

	res, err := nav.NavigateForward(ActionApprove, map[string]interface{}{"total_price": 100.0}, "u-hod")
	if err != nil {
		t.Fatalf("NavigateForward() error = %v", err)
	}
	if res.NextStage != "Purchase" {
		t.Errorf("NextStage = %q, want structural default %q", res.NextStage, "Purchase")
	}
	if res.HistoryEntry.MatchedRuleID != nil {
		t.Errorf("MatchedRuleID = %v, want nil", *res.HistoryEntry.MatchedRuleID)
	}
}

func TestFirstMatchWins(t *testing.T) {
	first := RoutingRule{
		ID: "rule-first", FromStage: "HOD", Action: ActionApprove,
		Conditions:  []ConditionConfig{{Field: "total_price", Operator: OpGt, Value: 100}},
		TargetStage: "Completed",
	}
	second := RoutingRule{
		ID: "rule-second", FromStage: "HOD", Action: ActionApprove,
		Conditions:  []ConditionConfig{{Field: "total_price", Operator: OpGt, Value: 50}},
		TargetStage: "Purchase",
	}
	nav, err := NewNavigator(fourStageDefinition(first, second), "HOD")
	if err != nil {
		t.Fatalf("NewNavigator() error = %v", err)
	}

	// Both rules match this payload; declaration order breaks the tie.
	res, err := nav.NavigateForward(ActionApprove, map[string]interface{}{"total_price": 500.0}, "u-hod")
	if err != nil {
		t.Fatalf("NavigateForward() error = %v", err)
	}
	if res.NextStage != "Completed" || res.HistoryEntry.MatchedRuleID == nil || *res.HistoryEntry.MatchedRuleID != "rule-first" {
		t.Errorf("first declared rule should win, got stage %q rule %v", res.NextStage, res.HistoryEntry.MatchedRuleID)
	}
}

func TestNavigateForwardDeterminism(t *testing.T) {
	rule := RoutingRule{
		ID: "rule-high-value", FromStage: "HOD", Action: ActionApprove,
		Conditions:  []ConditionConfig{{Field: "total_price", Operator: OpGt, Value: 5000}},
		TargetStage: "Completed",
	}
	def := fourStageDefinition(rule)
	payload := map[string]interface{}{"total_price": 7000.0}

	for i := 0; i < 25; i++ {
		nav, err := NewNavigator(def, "HOD")
		if err != nil {
			t.Fatalf("NewNavigator() error = %v", err)
		}
		res, err := nav.NavigateForward(ActionApprove, payload, "u-hod")
		if err != nil {
			t.Fatalf("NavigateForward() error = %v", err)
		}
		if res.NextStage != "Completed" || res.HistoryEntry.MatchedRuleID == nil || *res.HistoryEntry.MatchedRuleID != "rule-high-value" {
			t.Fatalf("iteration %d diverged: stage %q rule %v", i, res.NextStage, res.HistoryEntry.MatchedRuleID)
		}
	}
}

func TestDisabledActionRejected(t *testing.T) {
	nav, err := NewNavigator(fourStageDefinition(), "Create Request")
	if err != nil {
		t.Fatalf("NewNavigator() error = %v", err)
	}

	// Only submit is active at Create Request.
	_, err = nav.NavigateForward(ActionApprove, map[string]interface{}{}, "u-requestor")
	var notAllowed *ActionNotAllowedError
	if !errors.As(err, &notAllowed) {
		t.Fatalf("expected *ActionNotAllowedError, got %v", err)
	}
	if notAllowed.Stage != "Create Request" || notAllowed.Action != ActionApprove {
		t.Errorf("unexpected error detail %+v", notAllowed)
	}
	if len(nav.History()) != 0 {
		t.Errorf("rejected action must not produce a history entry, got %d", len(nav.History()))
	}
}

func TestRejectFallsBackToCancelled(t *testing.T) {
	nav, err := NewNavigator(fourStageDefinition(), "HOD")
	if err != nil {
		t.Fatalf("NewNavigator() error = %v", err)
	}

	res, err := nav.NavigateForward(ActionReject, map[string]interface{}{}, "u-hod")
	if err != nil {
		t.Fatalf("NavigateForward() error = %v", err)
	}
	if res.NextStage != StageCancelled {
		t.Errorf("NextStage = %q, want %q", res.NextStage, StageCancelled)
	}
	if len(res.NavigationInfo.AssignedUsers) != 0 {
		t.Errorf("cancelled pseudo-stage has no assignees, got %+v", res.NavigationInfo.AssignedUsers)
	}
}

func TestNoResolvableStage(t *testing.T) {
	def := fourStageDefinition()
	// Authoring gap: the last stage allows approve but nothing follows it and
	// no rule redirects it.
	def.Stages[3].AvailableActions = map[Action]ActionConfig{
		ActionApprove: {IsActive: true},
	}
	nav, err := NewNavigator(def, "Completed")
	if err != nil {
		t.Fatalf("NewNavigator() error = %v", err)
	}

	_, err = nav.NavigateForward(ActionApprove, map[string]interface{}{}, "u-hod")
	var noStage *NoResolvableStageError
	if !errors.As(err, &noStage) {
		t.Fatalf("expected *NoResolvableStageError, got %v", err)
	}
}

func TestConditionEvalErrorPropagates(t *testing.T) {
	rule := RoutingRule{
		ID: "rule-high-value", FromStage: "HOD", Action: ActionApprove,
		Conditions:  []ConditionConfig{{Field: "total_price", Operator: OpGt, Value: 5000}},
		TargetStage: "Completed",
	}
	nav, err := NewNavigator(fourStageDefinition(rule), "HOD")
	if err != nil {
		t.Fatalf("NewNavigator() error = %v", err)
	}

	_, err = nav.NavigateForward(ActionApprove, map[string]interface{}{"total_price": "a lot"}, "u-hod")
	var condErr *ConditionEvalError
	if !errors.As(err, &condErr) {
		t.Fatalf("expected *ConditionEvalError, got %v", err)
	}
	if condErr.Field != "total_price" {
		t.Errorf("error names field %q, want total_price", condErr.Field)
	}
}

func TestNavigateBackToStage(t *testing.T) {
	// A low-value fast path makes Create Request a direct predecessor of
	// Purchase alongside the structural HOD edge.
	fastPath := RoutingRule{
		ID: "rule-low-value", FromStage: "Create Request", Action: ActionSubmit,
		Conditions:  []ConditionConfig{{Field: "total_price", Operator: OpLte, Value: 500}},
		TargetStage: "Purchase",
	}
	nav, err := NewNavigator(fourStageDefinition(fastPath), "Purchase")
	if err != nil {
		t.Fatalf("NewNavigator() error = %v", err)
	}

	res, err := nav.NavigateBackToStage("Create Request", "", "u-buyer")
	if err != nil {
		t.Fatalf("NavigateBackToStage() error = %v", err)
	}
	if res.TargetStage != "Create Request" {
		t.Errorf("TargetStage = %q, want Create Request", res.TargetStage)
	}
	if len(res.NavigationInfo.AssignedUsers) != 1 || res.NavigationInfo.AssignedUsers[0].UserID != "u-requestor" {
		t.Errorf("expected Create Request assignees, got %+v", res.NavigationInfo.AssignedUsers)
	}
	if res.HistoryEntry.Action != ActionSendBack {
		t.Errorf("default back action = %q, want sendback", res.HistoryEntry.Action)
	}
	if res.HistoryEntry.MatchedRuleID != nil {
		t.Errorf("back-navigation is never rule-driven, got rule %v", *res.HistoryEntry.MatchedRuleID)
	}
}

func TestNavigateBackToUnknownStage(t *testing.T) {
	nav, err := NewNavigator(fourStageDefinition(), "Purchase")
	if err != nil {
		t.Fatalf("NewNavigator() error = %v", err)
	}

	_, err = nav.NavigateBackToStage("Warehouse", "", "u-buyer")
	var unreachable *UnreachableStageError
	if !errors.As(err, &unreachable) {
		t.Fatalf("expected *UnreachableStageError, got %v", err)
	}
}

func TestNavigateBackToUnreachableStage(t *testing.T) {
	nav, err := NewNavigator(fourStageDefinition(), "HOD")
	if err != nil {
		t.Fatalf("NewNavigator() error = %v", err)
	}

	// Completed is downstream of HOD, not a predecessor.
	_, err = nav.NavigateBackToStage("Completed", "", "u-hod")
	var unreachable *UnreachableStageError
	if !errors.As(err, &unreachable) {
		t.Fatalf("expected *UnreachableStageError, got %v", err)
	}
	if len(nav.History()) != 0 {
		t.Errorf("failed back-navigation must not append history, got %d", len(nav.History()))
	}
}

func TestReachabilitySymmetry(t *testing.T) {
	rules := []RoutingRule{
		{ID: "r1", FromStage: "HOD", Action: ActionApprove,
			Conditions:  []ConditionConfig{{Field: "total_price", Operator: OpGt, Value: 5000}},
			TargetStage: "Completed"},
		{ID: "r2", FromStage: "Create Request", Action: ActionSubmit,
			Conditions:  []ConditionConfig{{Field: "total_price", Operator: OpLte, Value: 500}},
			TargetStage: "Purchase"},
	}
	def := fourStageDefinition(rules...)
	nav, err := NewNavigator(def, "HOD")
	if err != nil {
		t.Fatalf("NewNavigator() error = %v", err)
	}

	type edge struct{ from, to string }
	var edges []edge
	for i := 0; i+1 < len(def.Stages); i++ {
		edges = append(edges, edge{def.Stages[i].Name, def.Stages[i+1].Name})
	}
	for _, r := range def.RoutingRules {
		edges = append(edges, edge{r.FromStage, r.TargetStage})
	}

	for _, e := range edges {
		prev := nav.PreviousStageNamesByStructure(e.to)
		found := false
		for _, p := range prev {
			if p == e.from {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("edge %s -> %s: %s missing from previous set %v", e.from, e.to, e.from, prev)
		}
	}
}

func TestPreviousStagesKeepDeclarationOrder(t *testing.T) {
	rules := []RoutingRule{
		{ID: "r1", FromStage: "Create Request", Action: ActionSubmit, TargetStage: "Purchase",
			Conditions: []ConditionConfig{{Field: "total_price", Operator: OpLte, Value: 500}}},
	}
	nav, err := NewNavigator(fourStageDefinition(rules...), "Purchase")
	if err != nil {
		t.Fatalf("NewNavigator() error = %v", err)
	}

	prev := nav.PreviousStageNamesByStructure("Purchase")
	want := []string{"Create Request", "HOD"}
	if len(prev) != len(want) {
		t.Fatalf("previous set = %v, want %v", prev, want)
	}
	for i := range want {
		if prev[i] != want[i] {
			t.Fatalf("previous set = %v, want %v", prev, want)
		}
	}
}

func TestDefinitionValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(def *WorkflowData)
		current  string
		wantKind DefinitionErrorKind
	}{
		{
			name:     "Duplicate Stage Name",
			mutate:   func(def *WorkflowData) { def.Stages[2].Name = "HOD" },
			current:  "HOD",
			wantKind: DefinitionDuplicateStage,
		},
		{
			name: "Dangling Target Stage",
			mutate: func(def *WorkflowData) {
				def.RoutingRules = []RoutingRule{{ID: "r1", FromStage: "HOD", Action: ActionApprove, TargetStage: "Nowhere"}}
			},
			current:  "HOD",
			wantKind: DefinitionDanglingRoute,
		},
		{
			name: "Dangling From Stage",
			mutate: func(def *WorkflowData) {
				def.RoutingRules = []RoutingRule{{ID: "r1", FromStage: "Ghost", Action: ActionApprove, TargetStage: "Completed"}}
			},
			current:  "HOD",
			wantKind: DefinitionDanglingRoute,
		},
		{
			name:     "Unknown Current Stage",
			mutate:   func(def *WorkflowData) {},
			current:  "Ghost",
			wantKind: DefinitionUnknownStage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := fourStageDefinition()
			tt.mutate(def)
			_, err := NewNavigator(def, tt.current)
			var defErr *DefinitionError
			if !errors.As(err, &defErr) {
				t.Fatalf("expected *DefinitionError, got %v", err)
			}
			if defErr.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", defErr.Kind, tt.wantKind)
			}
		})
	}
}

func TestIntrospection(t *testing.T) {
	nav, err := NewNavigator(fourStageDefinition(), "HOD")
	if err != nil {
		t.Fatalf("NewNavigator() error = %v", err)
	}

	names := nav.AllStageNames()
	want := []string{"Create Request", "HOD", "Purchase", "Completed"}
	if len(names) != len(want) {
		t.Fatalf("AllStageNames() = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("AllStageNames() = %v, want %v", names, want)
		}
	}

	detail := nav.CurrentStageDetail()
	if detail == nil || detail.Name != "HOD" || !detail.IsHOD {
		t.Errorf("CurrentStageDetail() = %+v", detail)
	}

	info, err := nav.GetNavigationInfo("Purchase")
	if err != nil {
		t.Fatalf("GetNavigationInfo() error = %v", err)
	}
	if len(info.AssignedUsers) != 1 || info.AssignedUsers[0].UserID != "u-buyer" {
		t.Errorf("GetNavigationInfo() = %+v", info)
	}

	if _, err := nav.GetNavigationInfo("Ghost"); err == nil {
		t.Error("GetNavigationInfo() on unknown stage should fail")
	}
}

func TestTerminalStageDetection(t *testing.T) {
	def := fourStageDefinition()
	if def.Stages[3].IsTerminal() != true {
		t.Error("Completed should be terminal: every action disabled")
	}
	if def.Stages[1].IsTerminal() {
		t.Error("HOD is not terminal")
	}
}

func TestIndexCacheReusesBuiltIndices(t *testing.T) {
	cache := NewIndexCache()
	def := fourStageDefinition()

	nav1, err := cache.NavigatorFor(def, "HOD")
	if err != nil {
		t.Fatalf("NavigatorFor() error = %v", err)
	}
	nav2, err := cache.NavigatorFor(def, "Purchase")
	if err != nil {
		t.Fatalf("NavigatorFor() error = %v", err)
	}
	if nav1.idx != nav2.idx {
		t.Error("same definition identity should share one index")
	}

	def.UpdatedAt = def.UpdatedAt.Add(1)
	nav3, err := cache.NavigatorFor(def, "HOD")
	if err != nil {
		t.Fatalf("NavigatorFor() error = %v", err)
	}
	if nav3.idx == nav1.idx {
		t.Error("edited definition must get a fresh index")
	}
}
