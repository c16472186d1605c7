package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TypeProfile is the category specific profile of a vendor. The same shape is
// stored in album_vendors, service_vendors, product_vendors and proposal_vendors;
// category specific fields are simply left empty where they do not apply.
type TypeProfile struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	VendorID    primitive.ObjectID `json:"vendorId,omitempty" bson:"vendor_id,omitempty"`
	Category    string             `json:"category,omitempty" bson:"category,omitempty"`
	Name        string             `json:"name,omitempty" bson:"name,omitempty"`
	CompanyName string             `json:"companyName,omitempty" bson:"companyName,omitempty"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	WhatsappNo  string             `json:"whatsappNo,omitempty" bson:"whatsappNo,omitempty"`
	ProfilePic  string             `json:"profilePic,omitempty" bson:"profilePic,omitempty"`
	LogoPic     string             `json:"logoPic,omitempty" bson:"logoPic,omitempty"`
	SlipPhoto   string             `json:"slipPhoto,omitempty" bson:"slipPhoto,omitempty"`
	Status      string             `json:"status" bson:"status"` // "pending", "active", "rejected"
	Remarks     string             `json:"remarks,omitempty" bson:"remarks,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`

	// EffectiveStatus is derived from the subscription ledger on read paths
	EffectiveStatus string `json:"effectiveStatus,omitempty" bson:"-"`
}

// OwnerID returns the vendor the profile belongs to. Legacy profiles without a
// back-reference are keyed by the vendor id itself.
func (p *TypeProfile) OwnerID() primitive.ObjectID {
	if !p.VendorID.IsZero() {
		return p.VendorID
	}
	return p.ID
}

// ServiceLink joins a services vendor to one selected service
type ServiceLink struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	VendorID  primitive.ObjectID `json:"vendorId" bson:"vendor_id"`
	ServiceID string             `json:"serviceId" bson:"service_id"`
	Status    string             `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// ProfileFilter narrows a type profile listing
type ProfileFilter struct {
	Status string
	Search string
}
