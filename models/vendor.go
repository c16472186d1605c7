package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vendor is the marketplace seller account stored in the vendors collection
type Vendor struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email            string             `json:"email" bson:"email"`
	Username         string             `json:"username" bson:"username"`
	Password         string             `json:"password,omitempty" bson:"password"`
	Address          string             `json:"address" bson:"address"`
	Birthdate        string             `json:"birthdate" bson:"birthdate"`
	Sex              string             `json:"sex" bson:"sex"`
	VendorTypes      []string           `json:"vendorTypes" bson:"vendorTypes"`
	Status           string             `json:"status" bson:"status"` // "pending", "approved", "rejected"
	SubscriptionPlan string             `json:"subscriptionPlan,omitempty" bson:"subscriptionPlan,omitempty"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// VendorSummary is the password-free projection joined onto admin listings
type VendorSummary struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Email            string             `json:"email" bson:"email"`
	Username         string             `json:"username" bson:"username"`
	VendorTypes      []string           `json:"vendorTypes,omitempty" bson:"vendorTypes,omitempty"`
	Status           string             `json:"status" bson:"status"`
	SubscriptionPlan string             `json:"subscriptionPlan,omitempty" bson:"subscriptionPlan,omitempty"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
}

// Summary strips credentials from the vendor record.
func (v *Vendor) Summary() *VendorSummary {
	if v == nil {
		return nil
	}
	return &VendorSummary{
		ID:               v.ID,
		Email:            v.Email,
		Username:         v.Username,
		VendorTypes:      v.VendorTypes,
		Status:           v.Status,
		SubscriptionPlan: v.SubscriptionPlan,
		CreatedAt:        v.CreatedAt,
	}
}

// ContentCounts holds the number of vendor-owned content documents
type ContentCounts struct {
	Albums    int64 `json:"albums"`
	Products  int64 `json:"products"`
	Proposals int64 `json:"proposals"`
	Templates int64 `json:"templates"`
	Videos    int64 `json:"videos"`
}

// VendorDetail is the admin/vendor facing view of one vendor in one category
type VendorDetail struct {
	Category            string         `json:"category"`
	Profile             *TypeProfile   `json:"profile"`
	Vendor              *VendorSummary `json:"vendor,omitempty"`
	Content             ContentCounts  `json:"content"`
	CurrentSubscription *Subscription  `json:"currentSubscription,omitempty"`
	EffectiveStatus     string         `json:"effectiveStatus"`
}

// DeleteResult reports how many documents each store lost in a cascading delete
type DeleteResult struct {
	VendorID      primitive.ObjectID `json:"vendorId"`
	Profiles      int64              `json:"profiles"`
	Vendors       int64              `json:"vendors"`
	Subscriptions int64              `json:"subscriptions"`
	ServiceLinks  int64              `json:"serviceLinks"`
	Content       int64              `json:"content"`
}
