package repositories

import (
	"regexp"
	"time"

	"github.com/HSouheill/couplecanvas_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// EitherKeyFilter matches a type profile by its own id or by its vendor
// back-reference; legacy profiles share the vendor's id.
func EitherKeyFilter(id primitive.ObjectID) bson.M {
	return bson.M{"$or": []bson.M{
		{"_id": id},
		{"vendor_id": id},
	}}
}

// OwnedProfilesFilter matches the addressed profile plus every profile that
// references the vendor.
func OwnedProfilesFilter(vendorID, profileID primitive.ObjectID) bson.M {
	return bson.M{"$or": []bson.M{
		{"_id": profileID},
		{"vendor_id": vendorID},
	}}
}

// ProfileListFilter builds the listing filter for one category collection
func ProfileListFilter(f models.ProfileFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = []bson.M{
			{"name": pattern},
			{"companyName": pattern},
			{"whatsappNo": pattern},
		}
	}
	return filter
}

// PendingSubscriptionsPipeline lists pending subscriptions newest first with
// the vendor joined in, password excluded.
func PendingSubscriptionsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.StatusPending}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "vendors",
			"localField":   "vendorId",
			"foreignField": "_id",
			"as":           "vendor",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$vendor", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{"vendor.password": 0}}},
	}
}

// currentPerPair collapses the ledger to the newest record per (vendor, type)
func currentPerPair(match bson.M, groupKey interface{}) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id": groupKey,
			"doc": bson.M{"$first": "$$ROOT"},
		}}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$doc"}}},
	}
}

// CurrentActivePipeline returns current records whose status is active
func CurrentActivePipeline() mongo.Pipeline {
	pipeline := currentPerPair(bson.M{}, bson.M{"vendorId": "$vendorId", "vendorType": "$vendorType"})
	return append(pipeline, bson.D{{Key: "$match", Value: bson.M{"status": models.StatusActive}}})
}

// CurrentForPipeline returns the current record of each vendor for one type
func CurrentForPipeline(vendorType string, vendorIDs []primitive.ObjectID) mongo.Pipeline {
	return currentPerPair(bson.M{
		"vendorType": vendorType,
		"vendorId":   bson.M{"$in": vendorIDs},
	}, "$vendorId")
}

// UnfinishedIntentsFilter selects intents with applied steps that stopped
// before completing and have not been touched since before.
func UnfinishedIntentsFilter(before time.Time) bson.M {
	return bson.M{
		"state":            bson.M{"$in": []string{models.IntentStarted, models.IntentFailed}},
		"completedSteps.0": bson.M{"$exists": true},
		"updatedAt":        bson.M{"$lt": before},
	}
}
