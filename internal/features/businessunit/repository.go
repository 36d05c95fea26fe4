package businessunit

import (
	"context"
	"time"

	"go-procure/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type BusinessUnitRepository interface {
	Create(ctx context.Context, unit BusinessUnit) error
	GetByCode(ctx context.Context, code string) (*BusinessUnit, error)
	List(ctx context.Context) ([]BusinessUnit, error)
	Update(ctx context.Context, id string, unit BusinessUnit) error
	Delete(ctx context.Context, id string) error
}

type BusinessUnitRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewBusinessUnitRepository(mongodb *database.MongodbDB) BusinessUnitRepository {
	return &BusinessUnitRepositoryImpl{
		Collection: mongodb.DB.Collection("business_units"),
	}
}

func (r *BusinessUnitRepositoryImpl) Create(ctx context.Context, unit BusinessUnit) error {
	_, err := r.Collection.InsertOne(ctx, unit)
	return err
}

func (r *BusinessUnitRepositoryImpl) GetByCode(ctx context.Context, code string) (*BusinessUnit, error) {
	var unit BusinessUnit
	err := r.Collection.FindOne(ctx, bson.M{"code": code}).Decode(&unit)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &unit, nil
}

func (r *BusinessUnitRepositoryImpl) List(ctx context.Context) ([]BusinessUnit, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var units []BusinessUnit
	if err = cursor.All(ctx, &units); err != nil {
		return nil, err
	}
	return units, nil
}

func (r *BusinessUnitRepositoryImpl) Update(ctx context.Context, id string, unit BusinessUnit) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"code":                 unit.Code,
			"name":                 unit.Name,
			"currency":             unit.Currency,
			"timezone":             unit.Timezone,
			"active":               unit.Active,
			"workflow_assignments": unit.WorkflowAssignments,
			"reference_prefixes":   unit.ReferencePrefixes,
			"updated_at":           time.Now(),
		},
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *BusinessUnitRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
