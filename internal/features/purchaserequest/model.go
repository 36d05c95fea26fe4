package purchaserequest

import (
	"time"

	"go-procure/internal/common/models"
	"go-procure/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PurchaseRequest is an approval document moving through a workflow. Data
// carries the free-form payload routing conditions are evaluated against
// (amount, department, category and whatever else the definition references).
type PurchaseRequest struct {
	ID               primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	RefNo            string                  `bson:"ref_no" json:"ref_no"`
	BusinessUnitCode string                  `bson:"business_unit_code" json:"business_unit_code"`
	RequestorID      string                  `bson:"requestor_id" json:"requestor_id"`
	WorkflowID       string                  `bson:"workflow_id" json:"workflow_id"`
	CurrentStage     string                  `bson:"current_stage" json:"current_stage"`
	Status           models.DocumentStatus   `bson:"status" json:"status"`
	Description      string                  `bson:"description,omitempty" json:"description,omitempty"`
	Data             map[string]interface{}  `bson:"data" json:"data"`
	History          []workflow.HistoryEntry `bson:"history" json:"history"`
	CreatedAt        time.Time               `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time               `bson:"updated_at" json:"updated_at"`
}

// CreatePurchaseRequestInput is the creation payload. Workflow binding and
// reference number are resolved server-side from the business unit.
type CreatePurchaseRequestInput struct {
	BusinessUnitCode string                 `json:"business_unit_code"`
	Description      string                 `json:"description"`
	Data             map[string]interface{} `json:"data"`
}

// NavigateInput drives one forward move of the document.
type NavigateInput struct {
	Action workflow.Action        `json:"action"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// ReturnInput sends the document back to an earlier stage.
type ReturnInput struct {
	TargetStage string          `json:"target_stage"`
	Action      workflow.Action `json:"action,omitempty"`
}

// NavigateResult is what the API returns after a move: the new position plus
// the stage detail a client needs to render the next screen.
type NavigateResult struct {
	Document *PurchaseRequest        `json:"document"`
	Info     workflow.NavigationInfo `json:"navigation_info"`
}
