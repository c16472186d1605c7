package repositories

import (
	"context"

	"github.com/HSouheill/couplecanvas_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ApprovalLogRepository struct {
	collection *mongo.Collection
}

func NewApprovalLogRepository(db *mongo.Database) *ApprovalLogRepository {
	return &ApprovalLogRepository{
		collection: db.Collection("admin_approval_log"),
	}
}

func (r *ApprovalLogRepository) Append(ctx context.Context, entry *models.ApprovalLog) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

func (r *ApprovalLogRepository) List(ctx context.Context, vendorID *primitive.ObjectID, limit int64) ([]models.ApprovalLog, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if vendorID != nil {
		filter["vendor_id"] = *vendorID
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []models.ApprovalLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
