package workflow

import (
	"context"
	"time"

	"go-procure/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type WorkflowRepository interface {
	Create(ctx context.Context, def WorkflowData) error
	GetByID(ctx context.Context, id string) (*WorkflowData, error)
	ListByIDs(ctx context.Context, ids []string) ([]WorkflowData, error)
	ListByDocumentType(ctx context.Context, docType DocumentType) ([]WorkflowData, error)
	List(ctx context.Context) ([]WorkflowData, error)
	Update(ctx context.Context, id string, def WorkflowData) error
	Delete(ctx context.Context, id string) error
}

type WorkflowRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewWorkflowRepository(mongodb *database.MongodbDB) WorkflowRepository {
	return &WorkflowRepositoryImpl{
		Collection: mongodb.DB.Collection("workflow_definitions"),
	}
}

func (r *WorkflowRepositoryImpl) Create(ctx context.Context, def WorkflowData) error {
	_, err := r.Collection.InsertOne(ctx, def)
	return err
}

func (r *WorkflowRepositoryImpl) GetByID(ctx context.Context, id string) (*WorkflowData, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var def WorkflowData
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&def)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &def, nil
}

func (r *WorkflowRepositoryImpl) ListByIDs(ctx context.Context, ids []string) ([]WorkflowData, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, err
		}
		oids = append(oids, oid)
	}
	cursor, err := r.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var defs []WorkflowData
	if err = cursor.All(ctx, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *WorkflowRepositoryImpl) ListByDocumentType(ctx context.Context, docType DocumentType) ([]WorkflowData, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"document_type": docType, "active": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var defs []WorkflowData
	if err = cursor.All(ctx, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *WorkflowRepositoryImpl) List(ctx context.Context) ([]WorkflowData, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var defs []WorkflowData
	if err = cursor.All(ctx, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func (r *WorkflowRepositoryImpl) Update(ctx context.Context, id string, def WorkflowData) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"name":                       def.Name,
			"document_type":              def.DocumentType,
			"active":                     def.Active,
			"stages":                     def.Stages,
			"routing_rules":              def.RoutingRules,
			"products":                   def.Products,
			"notifications":              def.Notifications,
			"notification_templates":     def.NotificationTemplates,
			"document_reference_pattern": def.DocumentReferencePattern,
			"updated_at":                 time.Now(),
		},
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *WorkflowRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
