package workflow

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document types a workflow definition can govern
type DocumentType string

const (
	DocumentTypePurchaseRequest  DocumentType = "purchase_request"
	DocumentTypeGoodReceivedNote DocumentType = "good_received_note"
	DocumentTypeStoreRequisition DocumentType = "store_requisition"
	DocumentTypeStockOut         DocumentType = "stock_out"
	DocumentTypePhysicalCount    DocumentType = "physical_count"
)

// Actions a stage can expose
type Action string

const (
	ActionSubmit   Action = "submit"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionSendBack Action = "sendback"
)

// StageCancelled is the implicit terminal pseudo-stage a reject falls back to
// when no routing rule redirects it. It is never a member of Stages.
const StageCancelled = "Cancelled"

// CreatorAccess controls what the document creator can still do while the
// document sits at a stage.
type CreatorAccess string

const (
	CreatorAccessEdit CreatorAccess = "edit"
	CreatorAccessView CreatorAccess = "view"
	CreatorAccessNone CreatorAccess = "none"
)

type SLAUnit string

const (
	SLAUnitHours SLAUnit = "hours"
	SLAUnitDays  SLAUnit = "days"
)

// AssignedUser is a person authorized to act at a stage.
type AssignedUser struct {
	UserID     string `bson:"user_id" json:"user_id"`
	Email      string `bson:"email" json:"email"`
	Firstname  string `bson:"firstname" json:"firstname"`
	Lastname   string `bson:"lastname" json:"lastname"`
	Department string `bson:"department,omitempty" json:"department,omitempty"`
}

// Recipients are the notification targets resolved for an action.
type Recipients struct {
	NextStep       bool `bson:"next_step" json:"next_step"`
	Requestor      bool `bson:"requestor" json:"requestor"`
	CurrentApprove bool `bson:"current_approve" json:"current_approve"`
}

// ActionConfig describes one entry of a stage's available_actions map.
// IsActive=false means the action is structurally disabled at the stage;
// attempting it is a contract violation, not a routing decision.
type ActionConfig struct {
	IsActive   bool       `bson:"is_active" json:"is_active"`
	Recipients Recipients `bson:"recipients" json:"recipients"`
}

// Stage is one node in the approval graph. Pure data; stages are referenced
// by name because the graph is not strictly linear.
type Stage struct {
	Name             string                  `bson:"name" json:"name"`
	Role             string                  `bson:"role" json:"role"` // create, approve, purchase, ...
	SLA              float64                 `bson:"sla" json:"sla"`
	SLAUnit          SLAUnit                 `bson:"sla_unit" json:"sla_unit"`
	IsHOD            bool                    `bson:"is_hod,omitempty" json:"is_hod,omitempty"`
	HideFields       map[string]bool         `bson:"hide_fields,omitempty" json:"hide_fields,omitempty"`
	AssignedUsers    []AssignedUser          `bson:"assigned_users" json:"assigned_users"`
	CreatorAccess    CreatorAccess           `bson:"creator_access,omitempty" json:"creator_access,omitempty"`
	AvailableActions map[Action]ActionConfig `bson:"available_actions" json:"available_actions"`
	// Advisory SLA-breach recipient flags; carried through, never acted on here.
	SLAWarning *Recipients `bson:"sla_warning_notification,omitempty" json:"sla_warning_notification,omitempty"`
}

// IsTerminal reports whether every action at the stage is disabled.
func (s *Stage) IsTerminal() bool {
	for _, cfg := range s.AvailableActions {
		if cfg.IsActive {
			return false
		}
	}
	return true
}

// ConditionOperator is the closed operator vocabulary for routing conditions.
type ConditionOperator string

const (
	OpEq  ConditionOperator = "eq"
	OpNe  ConditionOperator = "ne"
	OpGt  ConditionOperator = "gt"
	OpGte ConditionOperator = "gte"
	OpLt  ConditionOperator = "lt"
	OpLte ConditionOperator = "lte"
	OpIn  ConditionOperator = "in"
	OpNin ConditionOperator = "nin"
)

// ConditionConfig is a single {field, operator, value} triple evaluated
// against the document payload supplied to NavigateForward.
type ConditionConfig struct {
	Field    string            `bson:"field" json:"field"`
	Operator ConditionOperator `bson:"operator" json:"operator"`
	Value    interface{}       `bson:"value" json:"value"`
}

// RoutingRule is a conditional edge overlay on the stage sequence. All
// conditions must pass (AND); rules for the same (from_stage, action) pair
// are evaluated in declaration order and the first full match wins.
type RoutingRule struct {
	ID          string            `bson:"id" json:"id"`
	FromStage   string            `bson:"from_stage" json:"from_stage"`
	Action      Action            `bson:"action" json:"action"`
	Conditions  []ConditionConfig `bson:"conditions" json:"conditions"`
	TargetStage string            `bson:"target_stage" json:"target_stage"`
}

// WorkflowData is the whole declarative definition the Navigator interprets.
// Products, Notifications, NotificationTemplates and DocumentReferencePattern
// are pass-through metadata the engine stores but never reads.
type WorkflowData struct {
	ID                       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                     string             `bson:"name" json:"name"`
	DocumentType             DocumentType       `bson:"document_type" json:"document_type"`
	Active                   bool               `bson:"active" json:"active"`
	Stages                   []Stage            `bson:"stages" json:"stages"`
	RoutingRules             []RoutingRule      `bson:"routing_rules" json:"routing_rules"`
	Products                 []string           `bson:"products,omitempty" json:"products,omitempty"`
	Notifications            map[string]bool    `bson:"notifications,omitempty" json:"notifications,omitempty"`
	NotificationTemplates    map[string]string  `bson:"notification_templates,omitempty" json:"notification_templates,omitempty"`
	DocumentReferencePattern string             `bson:"document_reference_pattern,omitempty" json:"document_reference_pattern,omitempty"`
	CreatedAt                time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt                time.Time          `bson:"updated_at" json:"updated_at"`
}

// StageByName returns the stage record for a name, or nil.
func (w *WorkflowData) StageByName(name string) *Stage {
	for i := range w.Stages {
		if w.Stages[i].Name == name {
			return &w.Stages[i]
		}
	}
	return nil
}

// HistoryEntry is one element of a document's audit-grade navigation trail.
// MatchedRuleID is nil for structural-default and backward transitions.
type HistoryEntry struct {
	FromStage     string    `bson:"from_stage" json:"from_stage"`
	ToStage       string    `bson:"to_stage" json:"to_stage"`
	Action        Action    `bson:"action" json:"action"`
	ActorUserID   string    `bson:"actor_user_id" json:"actor_user_id"`
	Timestamp     time.Time `bson:"timestamp" json:"timestamp"`
	MatchedRuleID *string   `bson:"matched_rule_id,omitempty" json:"matched_rule_id,omitempty"`
}

// NavigationInfo tells the caller who sits at the resolved stage and which
// recipient groups the acted-on stage wants notified. Consumed by the
// notification collaborator; the engine never sends anything.
type NavigationInfo struct {
	Stage         string         `json:"stage"`
	AssignedUsers []AssignedUser `json:"assigned_users"`
	Recipients    Recipients     `json:"recipients"`
}

// ForwardResult is the outcome of one forward navigation decision.
type ForwardResult struct {
	NextStage      string         `json:"next_stage"`
	NavigationInfo NavigationInfo `json:"navigation_info"`
	HistoryEntry   HistoryEntry   `json:"history_entry"`
}

// BackwardResult is the outcome of one backward navigation decision.
type BackwardResult struct {
	TargetStage    string         `json:"target_stage"`
	NavigationInfo NavigationInfo `json:"navigation_info"`
	HistoryEntry   HistoryEntry   `json:"history_entry"`
}
