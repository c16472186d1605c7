package repositories

import (
	"context"
	"time"

	"github.com/HSouheill/couplecanvas_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type IntentRepository struct {
	collection *mongo.Collection
}

func NewIntentRepository(db *mongo.Database) *IntentRepository {
	return &IntentRepository{
		collection: db.Collection("workflow_intents"),
	}
}

func (r *IntentRepository) Create(ctx context.Context, intent *models.WorkflowIntent) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, intent)
	return translate(err)
}

func (r *IntentRepository) MarkStep(ctx context.Context, id primitive.ObjectID, step string) error {
	return r.update(ctx, id, bson.M{
		"$addToSet": bson.M{"completedSteps": step},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *IntentRepository) Complete(ctx context.Context, id primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{
		"$set":   bson.M{"state": models.IntentCompleted, "updatedAt": time.Now().UTC()},
		"$unset": bson.M{"failedStep": "", "lastError": ""},
	})
}

func (r *IntentRepository) Fail(ctx context.Context, id primitive.ObjectID, step, reason string) error {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{
			"state":      models.IntentFailed,
			"failedStep": step,
			"lastError":  reason,
			"updatedAt":  time.Now().UTC(),
		},
		"$inc": bson.M{"attempts": 1},
	})
}

func (r *IntentRepository) Abandon(ctx context.Context, id primitive.ObjectID, reason string) error {
	return r.update(ctx, id, bson.M{
		"$set": bson.M{
			"state":     models.IntentAbandoned,
			"lastError": reason,
			"updatedAt": time.Now().UTC(),
		},
	})
}

func (r *IntentRepository) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *IntentRepository) ListUnfinished(ctx context.Context, before time.Time, limit int64) ([]models.WorkflowIntent, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(limit)
	cursor, err := r.collection.Find(ctx, UnfinishedIntentsFilter(before), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var intents []models.WorkflowIntent
	if err := cursor.All(ctx, &intents); err != nil {
		return nil, err
	}
	return intents, nil
}
