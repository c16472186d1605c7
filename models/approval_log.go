package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Approval log targets
const (
	ApprovalTargetSubscription = "subscription"
	ApprovalTargetProfile      = "profile"
)

// ApprovalLog is an append-only audit record of an admin decision
type ApprovalLog struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	VendorID   primitive.ObjectID `json:"vendorId" bson:"vendor_id"`
	AdminID    primitive.ObjectID `json:"adminId,omitempty" bson:"admin_id,omitempty"`
	Target     string             `json:"target" bson:"target"`
	TargetID   primitive.ObjectID `json:"targetId" bson:"target_id"`
	VendorType string             `json:"vendorType,omitempty" bson:"vendor_type,omitempty"`
	Action     string             `json:"action" bson:"action"`
	Remarks    string             `json:"remarks,omitempty" bson:"remarks"`
	CreatedAt  time.Time          `json:"createdAt" bson:"created_at"`
}
