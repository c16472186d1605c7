package repositories

import (
	"context"

	"github.com/HSouheill/couplecanvas_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ServiceLinkRepository struct {
	collection *mongo.Collection
}

func NewServiceLinkRepository(db *mongo.Database) *ServiceLinkRepository {
	return &ServiceLinkRepository{
		collection: db.Collection("vendor_services"),
	}
}

func (r *ServiceLinkRepository) Insert(ctx context.Context, link *models.ServiceLink) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if link.ID.IsZero() {
		link.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, link)
	return translate(err)
}

func (r *ServiceLinkRepository) DeleteForVendor(ctx context.Context, vendorID primitive.ObjectID) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.collection.DeleteMany(ctx, bson.M{"vendor_id": vendorID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
