package workflow

import "fmt"

// DefinitionErrorKind classifies why a workflow definition is invalid.
type DefinitionErrorKind string

const (
	DefinitionUnknownStage   DefinitionErrorKind = "unknown_stage"
	DefinitionDuplicateStage DefinitionErrorKind = "duplicate_stage"
	DefinitionDanglingRoute  DefinitionErrorKind = "dangling_route"
)

// DefinitionError reports a malformed or inconsistent workflow definition.
// Fatal at load time, never retried.
type DefinitionError struct {
	Kind   DefinitionErrorKind
	Stage  string // offending stage name
	RuleID string // offending rule, for dangling routes
}

func (e *DefinitionError) Error() string {
	switch e.Kind {
	case DefinitionDuplicateStage:
		return fmt.Sprintf("workflow definition invalid: duplicate stage %q", e.Stage)
	case DefinitionDanglingRoute:
		return fmt.Sprintf("workflow definition invalid: rule %q references unknown stage %q", e.RuleID, e.Stage)
	default:
		return fmt.Sprintf("workflow definition invalid: unknown stage %q", e.Stage)
	}
}

// ActionNotAllowedError means the caller attempted an action the current
// stage has structurally disabled.
type ActionNotAllowedError struct {
	Stage  string
	Action Action
}

func (e *ActionNotAllowedError) Error() string {
	return fmt.Sprintf("action %q is not allowed at stage %q", e.Action, e.Stage)
}

// UnreachableStageError means a back-navigation target is not a member of the
// current stage's previous-stage set.
type UnreachableStageError struct {
	From   string
	Target string
}

func (e *UnreachableStageError) Error() string {
	return fmt.Sprintf("stage %q is not backward-reachable from %q", e.Target, e.From)
}

// NoResolvableStageError means no routing rule matched and the structural
// default is also missing. A definition-authoring gap, surfaced as a
// server-side defect.
type NoResolvableStageError struct {
	Stage  string
	Action Action
}

func (e *NoResolvableStageError) Error() string {
	return fmt.Sprintf("no resolvable next stage from %q for action %q", e.Stage, e.Action)
}

// ConditionEvalError means a routing condition could not be evaluated against
// the supplied payload, naming the offending field. Never coerced away.
type ConditionEvalError struct {
	Field  string
	Op     ConditionOperator
	Reason string
}

func (e *ConditionEvalError) Error() string {
	return fmt.Sprintf("cannot evaluate condition on field %q (%s): %s", e.Field, e.Op, e.Reason)
}
