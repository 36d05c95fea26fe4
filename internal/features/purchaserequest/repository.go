package purchaserequest

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

type PurchaseRequestRepository interface {
	Create(ctx context.Context, pr PurchaseRequest) error
	GetByID(ctx context.Context, id string) (*PurchaseRequest, error)
	List(ctx context.Context, businessUnitCode string, status models.DocumentStatus) ([]PurchaseRequest, error)
	ListInProgress(ctx context.Context) ([]PurchaseRequest, error)
	UpdatePosition(ctx context.Context, id string, stage string, status models.DocumentStatus, entry workflow.HistoryEntry) error
	UpdateData(ctx context.Context, id string, data map[string]interface{}) error
}

type PurchaseRequestRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewPurchaseRequestRepository(mongodb *database.MongodbDB) PurchaseRequestRepository {
	return &PurchaseRequestRepositoryImpl{
		Collection: mongodb.DB.Collection("purchase_requests"),
	}
}

func (r *PurchaseRequestRepositoryImpl) Create(ctx context.Context, pr PurchaseRequest) error {
	_, err := r.Collection.InsertOne(ctx, pr)
	return err
}

func (r *PurchaseRequestRepositoryImpl) GetByID(ctx context.Context, id string) (*PurchaseRequest, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	var pr PurchaseRequest
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&pr)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

func (r *PurchaseRequestRepositoryImpl) List(ctx context.Context, businessUnitCode string, status models.DocumentStatus) ([]PurchaseRequest, error) {
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
	var prs []PurchaseRequest
	if err = cursor.All(ctx, &prs); err != nil {
		return nil, err
	}
	return prs, nil
}

func (r *PurchaseRequestRepositoryImpl) ListInProgress(ctx context.Context) ([]PurchaseRequest, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"status": models.DocumentStatusInProgress})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var prs []PurchaseRequest
	if err = cursor.All(ctx, &prs); err != nil {
		return nil, err
	}
	return prs, nil
}

// UpdatePosition persists one navigation decision: new stage, new status and
// the appended history entry in a single write.
func (r *PurchaseRequestRepositoryImpl) UpdatePosition(ctx context.Context, id string, stage string, status models.DocumentStatus, entry workflow.HistoryEntry) error {
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

func (r *PurchaseRequestRepositoryImpl) UpdateData(ctx context.Context, id string, data map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"data": data, "updated_at": time.Now()}},
	)
	return err
}
