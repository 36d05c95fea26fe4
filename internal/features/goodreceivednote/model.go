package goodreceivednote

import (
	"time"

	"go-procure/internal/common/models"
	"go-procure/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GRNItem is one received line of a good received note.
type GRNItem struct {
	ProductName string  `bson:"product_name" json:"product_name"`
	Quantity    float64 `bson:"quantity" json:"quantity"`
	Unit        string  `bson:"unit" json:"unit"`
	UnitPrice   float64 `bson:"unit_price" json:"unit_price"`
}

// GoodReceivedNote records goods received against a purchase order and walks
// its own approval workflow. The line total is folded into Data as
// "total_value" so routing conditions can branch on it.
type GoodReceivedNote struct {
	ID               primitive.ObjectID      `bson:"_id,omitempty" json:"id"`
	RefNo            string                  `bson:"ref_no" json:"ref_no"`
	BusinessUnitCode string                  `bson:"business_unit_code" json:"business_unit_code"`
	ReceiverID       string                  `bson:"receiver_id" json:"receiver_id"`
	VendorName       string                  `bson:"vendor_name" json:"vendor_name"`
	PONumber         string                  `bson:"po_number,omitempty" json:"po_number,omitempty"`
	Items            []GRNItem               `bson:"items" json:"items"`
	WorkflowID       string                  `bson:"workflow_id" json:"workflow_id"`
	CurrentStage     string                  `bson:"current_stage" json:"current_stage"`
	Status           models.DocumentStatus   `bson:"status" json:"status"`
	Data             map[string]interface{}  `bson:"data" json:"data"`
	History          []workflow.HistoryEntry `bson:"history" json:"history"`
	CreatedAt        time.Time               `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time               `bson:"updated_at" json:"updated_at"`
}

type CreateGRNInput struct {
	BusinessUnitCode string                 `json:"business_unit_code"`
	VendorName       string                 `json:"vendor_name"`
	PONumber         string                 `json:"po_number"`
	Items            []GRNItem              `json:"items"`
	Data             map[string]interface{} `json:"data"`
}

type NavigateInput struct {
	Action workflow.Action `json:"action"`
}

type ReturnInput struct {
	TargetStage string          `json:"target_stage"`
	Action      workflow.Action `json:"action,omitempty"`
}

type NavigateResult struct {
	Document *GoodReceivedNote       `json:"document"`
	Info     workflow.NavigationInfo `json:"navigation_info"`
}

// TotalValue sums quantity times unit price over all items.
func (g *GoodReceivedNote) TotalValue() float64 {
	var total float64
	for _, item := range g.Items {
		total += item.Quantity * item.UnitPrice
	}
	return total
}
