package models

import (
	"encoding/json"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription is one entry of the vendor_subscriptions ledger
type Subscription struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	VendorID    primitive.ObjectID `json:"vendorId" bson:"vendorId"`
	VendorType  string             `json:"vendorType" bson:"vendorType"`
	PlanID      string             `json:"planId,omitempty" bson:"planId,omitempty"`
	PlanName    string             `json:"planName" bson:"planName"`
	Amount      float64            `json:"amount" bson:"amount"`
	PaymentSlip string             `json:"paymentSlip,omitempty" bson:"paymentSlip,omitempty"`
	Status      string             `json:"status" bson:"status"` // "pending", "active", "rejected"
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// PendingSubscription is a pending ledger entry joined with its vendor
type PendingSubscription struct {
	Subscription `bson:",inline"`
	Vendor       *VendorSummary `json:"vendor,omitempty" bson:"vendor,omitempty"`
}

// Features holds a plan's feature list. Older plan documents store it as a
// single comma separated string, newer ones as an array.
type Features []string

// UnmarshalBSONValue implements the bson.ValueUnmarshaler interface
func (f *Features) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var rawValue interface{}
	if err := bson.UnmarshalValue(t, data, &rawValue); err != nil {
		return err
	}

	switch v := rawValue.(type) {
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*f = out
	case primitive.A:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		*f = out
	default:
		*f = nil
	}
	return nil
}

// MarshalBSONValue implements the bson.ValueMarshaler interface
func (f Features) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue([]string(f))
}

// MarshalJSON always renders the features as a list
func (f Features) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(f))
}

// Plan is a subscription tier from the sub_plan collection
type Plan struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name       string             `json:"name,omitempty" bson:"name,omitempty"`
	TypeName   string             `json:"-" bson:"typename,omitempty"`
	VendorType string             `json:"vendorType,omitempty" bson:"vendorType,omitempty"`
	Price      float64            `json:"price" bson:"price"`
	Days       int                `json:"days" bson:"days"`
	Features   Features           `json:"features" bson:"features,omitempty"`
	CreatedAt  time.Time          `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
}

// DisplayName prefers the plan name and falls back to the seeded typename.
func (p *Plan) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.TypeName
}

// PlanRequest represents the request body for creating subscription plans
type PlanRequest struct {
	Name       string   `json:"name" validate:"required"`
	VendorType string   `json:"vendorType" validate:"required,oneof=album services product proposal"`
	Price      float64  `json:"price" validate:"gte=0"`
	Days       int      `json:"days" validate:"required,gt=0"`
	Features   []string `json:"features"`
}

// SubscribeRequest is the body of a vendor subscription submission
type SubscribeRequest struct {
	VendorID    string  `json:"vendorId"`
	VendorType  string  `json:"vendorType"`
	PlanID      string  `json:"planId"`
	PlanName    string  `json:"planName"`
	Amount      float64 `json:"amount"`
	PaymentSlip string  `json:"paymentSlip"`
	Status      string  `json:"status"`
}

// StatusUpdateRequest carries an admin decision
type StatusUpdateRequest struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}
