package workflow

import "time"

type ruleKey struct {
	stage  string
	action Action
}

// navIndex holds the adjacency structures built once per definition. It is
// never written after buildIndex returns, so concurrent navigators can share
// one instance without locking.
type navIndex struct {
	stagePos map[string]int
	rules    map[ruleKey][]RoutingRule
	forward  map[string][]string
	reverse  map[string][]string
}

// buildIndex validates referential integrity and precomputes the union graph
// of structural-default edges and routing-rule edges.
func buildIndex(def *WorkflowData) (*navIndex, error) {
	idx := &navIndex{
		stagePos: make(map[string]int, len(def.Stages)),
		rules:    make(map[ruleKey][]RoutingRule),
		forward:  make(map[string][]string),
		reverse:  make(map[string][]string),
	}

	for i, st := range def.Stages {
		if _, dup := idx.stagePos[st.Name]; dup {
			return nil, &DefinitionError{Kind: DefinitionDuplicateStage, Stage: st.Name}
		}
		idx.stagePos[st.Name] = i
	}

	addEdge := func(from, to string) {
		for _, existing := range idx.forward[from] {
			if existing == to {
				return
			}
		}
		idx.forward[from] = append(idx.forward[from], to)
		idx.reverse[to] = append(idx.reverse[to], from)
	}

	// Structural adjacency: declaration order.
	for i := 0; i+1 < len(def.Stages); i++ {
		addEdge(def.Stages[i].Name, def.Stages[i+1].Name)
	}

	// Rule overlay. Rules keep declaration order within their (stage, action)
	// bucket; first full match wins at navigation time.
	for _, rule := range def.RoutingRules {
		if _, ok := idx.stagePos[rule.FromStage]; !ok {
			return nil, &DefinitionError{Kind: DefinitionDanglingRoute, Stage: rule.FromStage, RuleID: rule.ID}
		}
		if _, ok := idx.stagePos[rule.TargetStage]; !ok {
			return nil, &DefinitionError{Kind: DefinitionDanglingRoute, Stage: rule.TargetStage, RuleID: rule.ID}
		}
		key := ruleKey{stage: rule.FromStage, action: rule.Action}
		idx.rules[key] = append(idx.rules[key], rule)
		addEdge(rule.FromStage, rule.TargetStage)
	}

	return idx, nil
}

// Navigator is a stateless per-request evaluator bound to one immutable
// workflow definition and a current stage. It performs no I/O and never
// mutates the definition; callers persist the decision it returns.
type Navigator struct {
	def     *WorkflowData
	idx     *navIndex
	current string
	history []HistoryEntry
}

// NewNavigator validates the definition and binds a current stage.
func NewNavigator(def *WorkflowData, currentStage string) (*Navigator, error) {
	idx, err := buildIndex(def)
	if err != nil {
		return nil, err
	}
	return newNavigatorWithIndex(def, idx, currentStage)
}

func newNavigatorWithIndex(def *WorkflowData, idx *navIndex, currentStage string) (*Navigator, error) {
	if _, ok := idx.stagePos[currentStage]; !ok {
		return nil, &DefinitionError{Kind: DefinitionUnknownStage, Stage: currentStage}
	}
	return &Navigator{def: def, idx: idx, current: currentStage}, nil
}

// CurrentStage returns the bound stage name.
func (n *Navigator) CurrentStage() string {
	return n.current
}

// NavigateForward resolves the next stage for an action: ordered rule scan
// first, structural default second. Pure in its decision — identical
// (definition, stage, action, payload) inputs always pick the same next
// stage and matched rule.
func (n *Navigator) NavigateForward(action Action, requestData map[string]interface{}, actorUserID string) (*ForwardResult, error) {
	stage := n.def.StageByName(n.current)

	cfg, ok := stage.AvailableActions[action]
	if !ok || !cfg.IsActive {
		return nil, &ActionNotAllowedError{Stage: n.current, Action: action}
	}

	// Phase 1: rule scan, declaration order, first full match wins.
	var matchedRuleID *string
	nextStage := ""
	for _, rule := range n.idx.rules[ruleKey{stage: n.current, action: action}] {
		matched, err := evaluateRule(rule, requestData)
		if err != nil {
			return nil, err
		}
		if matched {
			id := rule.ID
			matchedRuleID = &id
			nextStage = rule.TargetStage
			break
		}
	}

	// Phase 2: structural default.
	if nextStage == "" {
		if action == ActionReject {
			nextStage = StageCancelled
		} else {
			pos := n.idx.stagePos[n.current]
			if pos+1 >= len(n.def.Stages) {
				return nil, &NoResolvableStageError{Stage: n.current, Action: action}
			}
			nextStage = n.def.Stages[pos+1].Name
		}
	}

	entry := HistoryEntry{
		FromStage:     n.current,
		ToStage:       nextStage,
		Action:        action,
		ActorUserID:   actorUserID,
		Timestamp:     time.Now().UTC(),
		MatchedRuleID: matchedRuleID,
	}
	n.history = append(n.history, entry)

	info := NavigationInfo{Stage: nextStage, Recipients: cfg.Recipients}
	if next := n.def.StageByName(nextStage); next != nil {
		info.AssignedUsers = next.AssignedUsers
	}

	return &ForwardResult{NextStage: nextStage, NavigationInfo: info, HistoryEntry: entry}, nil
}

// NavigateBackToStage returns the document to an earlier stage. The target
// must be a member of the current stage's previous-stage set; back-navigation
// is never rule-driven, so the history entry carries no matched rule.
func (n *Navigator) NavigateBackToStage(targetStage string, action Action, actorUserID string) (*BackwardResult, error) {
	target := n.def.StageByName(targetStage)
	if target == nil {
		return nil, &UnreachableStageError{From: n.current, Target: targetStage}
	}

	reachable := false
	for _, prev := range n.idx.reverse[n.current] {
		if prev == targetStage {
			reachable = true
			break
		}
	}
	if !reachable {
		return nil, &UnreachableStageError{From: n.current, Target: targetStage}
	}

	if action == "" {
		action = ActionSendBack
	}

	entry := HistoryEntry{
		FromStage:   n.current,
		ToStage:     targetStage,
		Action:      action,
		ActorUserID: actorUserID,
		Timestamp:   time.Now().UTC(),
	}
	n.history = append(n.history, entry)

	info := NavigationInfo{Stage: targetStage, AssignedUsers: target.AssignedUsers}
	if cfg, ok := n.def.StageByName(n.current).AvailableActions[action]; ok {
		info.Recipients = cfg.Recipients
	}

	return &BackwardResult{TargetStage: targetStage, NavigationInfo: info, HistoryEntry: entry}, nil
}

// GetNavigationInfo returns the assigned users at a stage without navigating.
func (n *Navigator) GetNavigationInfo(stageName string) (*NavigationInfo, error) {
	stage := n.def.StageByName(stageName)
	if stage == nil {
		return nil, &DefinitionError{Kind: DefinitionUnknownStage, Stage: stageName}
	}
	return &NavigationInfo{Stage: stageName, AssignedUsers: stage.AssignedUsers}, nil
}

// PreviousStageNamesByStructure returns every stage with a forward edge
// (structural or rule-based) into the given stage, in declaration order.
func (n *Navigator) PreviousStageNamesByStructure(stageName string) []string {
	prev := n.idx.reverse[stageName]
	out := make([]string, len(prev))
	copy(out, prev)
	// Reverse edges accumulate in build order; normalize to declaration order.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && n.idx.stagePos[out[j]] < n.idx.stagePos[out[j-1]]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// CurrentStageDetail returns the full record for the bound stage, or nil if
// the stage vanished from the definition. Callers treat nil as "not found".
func (n *Navigator) CurrentStageDetail() *Stage {
	return n.def.StageByName(n.current)
}

// StageDetail returns the full record for any stage name, or nil.
func (n *Navigator) StageDetail(name string) *Stage {
	return n.def.StageByName(name)
}

// AllStageNames returns the ordered stage names of the definition.
func (n *Navigator) AllStageNames() []string {
	names := make([]string, len(n.def.Stages))
	for i, st := range n.def.Stages {
		names[i] = st.Name
	}
	return names
}

// History returns the trail accumulated by this navigator instance.
func (n *Navigator) History() []HistoryEntry {
	return n.history
}
