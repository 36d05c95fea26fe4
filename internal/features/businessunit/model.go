package businessunit

import (
	"time"

	"go-procure/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BusinessUnit is one property/outlet configuration. WorkflowAssignments maps
// a document type to the workflow definition that governs new documents of
// that type in this unit.
type BusinessUnit struct {
	ID                  primitive.ObjectID                   `bson:"_id,omitempty" json:"id"`
	Code                string                               `bson:"code" json:"code"`
	Name                string                               `bson:"name" json:"name"`
	Currency            string                               `bson:"currency" json:"currency"`
	Timezone            string                               `bson:"timezone,omitempty" json:"timezone,omitempty"`
	Active              bool                                 `bson:"active" json:"active"`
	WorkflowAssignments map[workflow.DocumentType]string     `bson:"workflow_assignments" json:"workflow_assignments"`
	ReferencePrefixes   map[workflow.DocumentType]string     `bson:"reference_prefixes,omitempty" json:"reference_prefixes,omitempty"`
	CreatedAt           time.Time                            `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time                            `bson:"updated_at" json:"updated_at"`
}
