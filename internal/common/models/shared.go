package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	BusinessUnitKey ContextKey = "business_unit"
)

// DocumentStatus is the lifecycle state of any procurement document
// (purchase request, GRN, ...). The workflow engine decides stage moves;
// the owning service folds terminal stages into these statuses.
type DocumentStatus string

const (
	DocumentStatusDraft      DocumentStatus = "draft"
	DocumentStatusInProgress DocumentStatus = "in_progress"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusCancelled  DocumentStatus = "cancelled"
)

// Log is the row shape the async zap writer inserts into the logs collection.
type Log struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Message      string             `bson:"message"`
	IpAddress    string             `bson:"ip_address,omitempty"`
	Caller       string             `bson:"caller,omitempty"`
	LogLevelId   int                `bson:"log_level_id"`
	AppId        string             `bson:"app_id"`
	CreatedOnUtc time.Time          `bson:"created_on_utc"`
}
