package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationTypeTransition NotificationType = "transition"
	NotificationTypeSendBack   NotificationType = "sendback"
	NotificationTypeSLAWarning NotificationType = "sla_warning"
)

type Notification struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       string             `bson:"user_id" json:"user_id"`
	Title        string             `bson:"title" json:"title"`
	Message      string             `bson:"message" json:"message"`
	Type         NotificationType   `bson:"type" json:"type"`
	DocumentType string             `bson:"document_type,omitempty" json:"document_type,omitempty"`
	ReferenceNo  string             `bson:"reference_no,omitempty" json:"reference_no,omitempty"`
	IsRead       bool               `bson:"is_read" json:"is_read"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	ReadAt       *time.Time         `bson:"read_at,omitempty" json:"read_at,omitempty"`
}
