package repositories

import (
	"context"

	"github.com/HSouheill/couplecanvas_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ContentRepository covers the vendor owned content collections. Only the
// vendor_id back-reference is read here; content itself is managed elsewhere.
type ContentRepository struct {
	db *mongo.Database
}

func NewContentRepository(db *mongo.Database) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) Count(ctx context.Context, vendorID primitive.ObjectID) (models.ContentCounts, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var counts models.ContentCounts
	for _, name := range models.ContentCollections {
		n, err := r.db.Collection(name).CountDocuments(ctx, bson.M{"vendor_id": vendorID})
		if err != nil {
			return counts, err
		}
		counts.Set(name, n)
	}
	return counts, nil
}

func (r *ContentRepository) DeleteForVendor(ctx context.Context, vendorID primitive.ObjectID) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var total int64
	for _, name := range models.ContentCollections {
		res, err := r.db.Collection(name).DeleteMany(ctx, bson.M{"vendor_id": vendorID})
		if err != nil {
			return total, err
		}
		total += res.DeletedCount
	}
	return total, nil
}
