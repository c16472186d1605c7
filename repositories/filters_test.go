package repositories

import (
	"errors"
	"testing"
	"time"

	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestEitherKeyFilter(t *testing.T) {
	id := primitive.NewObjectID()

	got := EitherKeyFilter(id)

	assert.Equal(t, bson.M{"$or": []bson.M{{"_id": id}, {"vendor_id": id}}}, got)
}

func TestOwnedProfilesFilter(t *testing.T) {
	vendorID, profileID := primitive.NewObjectID(), primitive.NewObjectID()

	got := OwnedProfilesFilter(vendorID, profileID)

	assert.Equal(t, bson.M{"$or": []bson.M{{"_id": profileID}, {"vendor_id": vendorID}}}, got)
}

func TestProfileListFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter models.ProfileFilter
		want   bson.M
	}{
		{"empty", models.ProfileFilter{}, bson.M{}},
		{"status only", models.ProfileFilter{Status: models.StatusActive}, bson.M{"status": models.StatusActive}},
		{
			"search escapes regex",
			models.ProfileFilter{Search: "a.b"},
			bson.M{"$or": []bson.M{
				{"name": primitive.Regex{Pattern: `a\.b`, Options: "i"}},
				{"companyName": primitive.Regex{Pattern: `a\.b`, Options: "i"}},
				{"whatsappNo": primitive.Regex{Pattern: `a\.b`, Options: "i"}},
			}},
		},
		{
			"search by phone",
			models.ProfileFilter{Status: models.StatusPending, Search: "+9477"},
			bson.M{"status": models.StatusPending, "$or": []bson.M{
				{"name": primitive.Regex{Pattern: `\+9477`, Options: "i"}},
				{"companyName": primitive.Regex{Pattern: `\+9477`, Options: "i"}},
				{"whatsappNo": primitive.Regex{Pattern: `\+9477`, Options: "i"}},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProfileListFilter(tt.filter))
		})
	}
}

func TestPendingSubscriptionsPipeline(t *testing.T) {
	p := PendingSubscriptionsPipeline()
	require.Len(t, p, 5)

	assert.Equal(t, "$match", p[0][0].Key)
	assert.Equal(t, bson.M{"status": models.StatusPending}, p[0][0].Value)
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}}, p[1][0].Value)

	lookup := p[2][0].Value.(bson.M)
	assert.Equal(t, "vendors", lookup["from"])
	assert.Equal(t, "vendorId", lookup["localField"])

	assert.Equal(t, bson.M{"vendor.password": 0}, p[4][0].Value)
}

func TestCurrentActivePipelineFiltersAfterGrouping(t *testing.T) {
	p := CurrentActivePipeline()
	require.Len(t, p, 5)

	assert.Equal(t, "$sort", p[1][0].Key)
	assert.Equal(t, "$group", p[2][0].Key)
	assert.Equal(t, "$replaceRoot", p[3][0].Key)
	// the status match must come after picking the newest record per pair
	assert.Equal(t, "$match", p[4][0].Key)
	assert.Equal(t, bson.M{"status": models.StatusActive}, p[4][0].Value)
}

func TestCurrentForPipeline(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID()}

	p := CurrentForPipeline(models.CategoryAlbum, ids)

	assert.Equal(t, bson.M{"vendorType": models.CategoryAlbum, "vendorId": bson.M{"$in": ids}}, p[0][0].Value)
	assert.Equal(t, "$vendorId", p[2][0].Value.(bson.M)["_id"])
}

func TestUnfinishedIntentsFilter(t *testing.T) {
	before := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	got := UnfinishedIntentsFilter(before)

	assert.Equal(t, bson.M{"$in": []string{models.IntentStarted, models.IntentFailed}}, got["state"])
	assert.Equal(t, bson.M{"$exists": true}, got["completedSteps.0"])
	assert.Equal(t, bson.M{"$lt": before}, got["updatedAt"])
}

func TestTranslate(t *testing.T) {
	other := errors.New("boom")

	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(mongo.ErrNoDocuments), ErrNotFound)
	assert.ErrorIs(t, translate(mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}), ErrDuplicate)
	assert.Equal(t, other, translate(other))
}
