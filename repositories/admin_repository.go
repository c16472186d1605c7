package repositories

import (
	"context"
	"time"

	"github.com/HSouheill/couplecanvas_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AdminRepository struct {
	collection *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{
		collection: db.Collection("admins"),
	}
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var a models.Admin
	if err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&a); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AdminRepository) Insert(ctx context.Context, a *models.Admin) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, a)
	return translate(err)
}

func (r *AdminRepository) TouchLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"lastLogin": at, "updatedAt": at},
	})
	return err
}
