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

type SubscriptionRepository struct {
	collection *mongo.Collection
}

func NewSubscriptionRepository(db *mongo.Database) *SubscriptionRepository {
	return &SubscriptionRepository{
		collection: db.Collection("vendor_subscriptions"),
	}
}

// Upsert overwrites the newest record for (vendorId, vendorType) or inserts
// one. The new id is assigned via $setOnInsert so the caller can tell which
// happened from the returned document.
func (r *SubscriptionRepository) Upsert(ctx context.Context, s *models.Subscription) (bool, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	newID := primitive.NewObjectID()
	filter := bson.M{"vendorId": s.VendorID, "vendorType": s.VendorType}
	update := bson.M{
		"$set": bson.M{
			"planId":      s.PlanID,
			"planName":    s.PlanName,
			"amount":      s.Amount,
			"paymentSlip": s.PaymentSlip,
			"status":      s.Status,
			"createdAt":   s.CreatedAt,
			"updatedAt":   s.UpdatedAt,
		},
		"$setOnInsert": bson.M{"_id": newID},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var stored models.Subscription
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&stored); err != nil {
		return false, translate(err)
	}
	s.ID = stored.ID
	return stored.ID == newID, nil
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Subscription, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var s models.Subscription
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *SubscriptionRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SubscriptionRepository) Current(ctx context.Context, vendorID primitive.ObjectID, vendorType string) (*models.Subscription, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var s models.Subscription
	err := r.collection.FindOne(ctx, bson.M{"vendorId": vendorID, "vendorType": vendorType}, opts).Decode(&s)
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *SubscriptionRepository) CurrentFor(ctx context.Context, vendorType string, vendorIDs []primitive.ObjectID) (map[primitive.ObjectID]models.Subscription, error) {
	out := make(map[primitive.ObjectID]models.Subscription)
	if len(vendorIDs) == 0 {
		return out, nil
	}

	var subs []models.Subscription
	if err := r.aggregate(ctx, CurrentForPipeline(vendorType, vendorIDs), &subs); err != nil {
		return nil, err
	}
	for _, s := range subs {
		out[s.VendorID] = s
	}
	return out, nil
}

func (r *SubscriptionRepository) ListForVendor(ctx context.Context, vendorID primitive.ObjectID, vendorType string) ([]models.Subscription, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{"vendorId": vendorID}
	if vendorType != "" {
		filter["vendorType"] = vendorType
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []models.Subscription
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *SubscriptionRepository) ListPending(ctx context.Context) ([]models.PendingSubscription, error) {
	var pending []models.PendingSubscription
	if err := r.aggregate(ctx, PendingSubscriptionsPipeline(), &pending); err != nil {
		return nil, err
	}
	return pending, nil
}

func (r *SubscriptionRepository) ListCurrentActive(ctx context.Context) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := r.aggregate(ctx, CurrentActivePipeline(), &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *SubscriptionRepository) DeleteForVendor(ctx context.Context, vendorIDs ...primitive.ObjectID) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.collection.DeleteMany(ctx, bson.M{"vendorId": bson.M{"$in": vendorIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *SubscriptionRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}
