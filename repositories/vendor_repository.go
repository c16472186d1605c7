package repositories

import (
	"context"
	"time"

	"github.com/HSouheill/couplecanvas_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type VendorRepository struct {
	collection *mongo.Collection
}

func NewVendorRepository(db *mongo.Database) *VendorRepository {
	return &VendorRepository{
		collection: db.Collection("vendors"),
	}
}

func (r *VendorRepository) Insert(ctx context.Context, v *models.Vendor) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, v)
	return translate(err)
}

func (r *VendorRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var v models.Vendor
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

// FindByEmail matches the email exactly as stored
func (r *VendorRepository) FindByEmail(ctx context.Context, email string) (*models.Vendor, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var v models.Vendor
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&v); err != nil {
		return nil, translate(err)
	}
	return &v, nil
}

func (r *VendorRepository) MarkApproved(ctx context.Context, id primitive.ObjectID, planName string) (int64, error) {
	return r.approve(ctx, bson.M{"_id": id}, planName)
}

func (r *VendorRepository) EnsureApproved(ctx context.Context, id primitive.ObjectID, planName string) (int64, error) {
	return r.approve(ctx, bson.M{"_id": id, "status": bson.M{"$ne": models.VendorStatusApproved}}, planName)
}

func (r *VendorRepository) approve(ctx context.Context, filter bson.M, planName string) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"status":           models.VendorStatusApproved,
			"subscriptionPlan": planName,
			"updatedAt":        time.Now().UTC(),
		},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (r *VendorRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
