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

// ProfileRepository spans the four type profile collections
type ProfileRepository struct {
	db *mongo.Database
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) collection(category string) (*mongo.Collection, error) {
	name := models.ProfileCollection(category)
	if name == "" {
		return nil, ErrUnknownCategory
	}
	return r.db.Collection(name), nil
}

func (r *ProfileRepository) Insert(ctx context.Context, p *models.TypeProfile) error {
	coll, err := r.collection(p.Category)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err = coll.InsertOne(ctx, p)
	return translate(err)
}

func (r *ProfileRepository) findOne(ctx context.Context, category string, filter bson.M) (*models.TypeProfile, error) {
	coll, err := r.collection(category)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var p models.TypeProfile
	if err := coll.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, translate(err)
	}
	if p.Category == "" {
		p.Category = category
	}
	return &p, nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, category string, id primitive.ObjectID) (*models.TypeProfile, error) {
	return r.findOne(ctx, category, bson.M{"_id": id})
}

func (r *ProfileRepository) FindByEitherKey(ctx context.Context, category string, id primitive.ObjectID) (*models.TypeProfile, error) {
	return r.findOne(ctx, category, EitherKeyFilter(id))
}

func (r *ProfileRepository) SetStatus(ctx context.Context, category string, id primitive.ObjectID, status, remarks string) (int64, error) {
	return r.update(ctx, category, bson.M{"_id": id}, bson.M{"status": status, "remarks": remarks})
}

func (r *ProfileRepository) SetStatusByEitherKey(ctx context.Context, category string, vendorID primitive.ObjectID, status string) (int64, error) {
	return r.update(ctx, category, EitherKeyFilter(vendorID), bson.M{"status": status})
}

func (r *ProfileRepository) update(ctx context.Context, category string, filter, set bson.M) (int64, error) {
	coll, err := r.collection(category)
	if err != nil {
		return 0, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	set["updatedAt"] = time.Now().UTC()
	res, err := coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (r *ProfileRepository) List(ctx context.Context, category string, filter models.ProfileFilter) ([]models.TypeProfile, error) {
	coll, err := r.collection(category)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := coll.Find(ctx, ProfileListFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []models.TypeProfile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	for i := range profiles {
		if profiles[i].Category == "" {
			profiles[i].Category = category
		}
	}
	return profiles, nil
}

// DeleteForVendor sweeps all four categories
func (r *ProfileRepository) DeleteForVendor(ctx context.Context, vendorID, profileID primitive.ObjectID) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var total int64
	for _, category := range models.Categories {
		res, err := r.db.Collection(models.ProfileCollection(category)).DeleteMany(ctx, OwnedProfilesFilter(vendorID, profileID))
		if err != nil {
			return total, err
		}
		total += res.DeletedCount
	}
	return total, nil
}
