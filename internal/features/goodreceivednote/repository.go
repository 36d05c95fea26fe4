package goodreceivednote

import (
	"context"
	"time"

	"go-procure/internal/common/models"
	"go-procure/internal/database"
	"go-procure/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type GRNRepository interface {
	Create(ctx context.Context, grn GoodReceivedNote) error
	GetByID(ctx context.Context, id string) (*GoodReceivedNote, error)
	List(ctx context.Context, businessUnitCode string, status models.DocumentStatus) ([]GoodReceivedNote, error)
	ListInProgress(ctx context.Context) ([]GoodReceivedNote, error)
	UpdatePosition(ctx context.Context, id string, stage string, status models.DocumentStatus, entry workflow.HistoryEntry) error
}

type GRNRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewGRNRepository(mongodb *database.MongodbDB) GRNRepository {
	return &GRNRepositoryImpl{
		Collection: mongodb.DB.Collection("good_received_notes"),
	}
}

func (r *GRNRepositoryImpl) Create(ctx context.Context, grn GoodReceivedNote) error {
	_, err := r.Collection.InsertOne(ctx, grn)
	return err
}

func (r *GRNRepositoryImpl) GetByID(ctx context.Context, id string) (*GoodReceivedNote, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var grn GoodReceivedNote
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&grn)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &grn, nil
}

func (r *GRNRepositoryImpl) List(ctx context.Context, businessUnitCode string, status models.DocumentStatus) ([]GoodReceivedNote, error) {
	filter := bson.M{}
	if businessUnitCode != "" {
		filter["business_unit_code"] = businessUnitCode
	}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var grns []GoodReceivedNote
	if err = cursor.All(ctx, &grns); err != nil {
		return nil, err
	}
	return grns, nil
}

func (r *GRNRepositoryImpl) ListInProgress(ctx context.Context) ([]GoodReceivedNote, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"status": models.DocumentStatusInProgress})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var grns []GoodReceivedNote
	if err = cursor.All(ctx, &grns); err != nil {
		return nil, err
	}
	return grns, nil
}

func (r *GRNRepositoryImpl) UpdatePosition(ctx context.Context, id string, stage string, status models.DocumentStatus, entry workflow.HistoryEntry) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$set":  bson.M{"current_stage": stage, "status": status, "updated_at": time.Now()},
			"$push": bson.M{"history": entry},
		},
	)
	return err
}
