package services

import (
	"context"
	"time"

	"github.com/HSouheill/couplecanvas_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VendorStore is the vendor registry (vendors collection)
type VendorStore interface {
	Insert(ctx context.Context, v *models.Vendor) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error)
	FindByEmail(ctx context.Context, email string) (*models.Vendor, error)
	// MarkApproved sets status=approved and stamps the plan name.
	MarkApproved(ctx context.Context, id primitive.ObjectID, planName string) (int64, error)
	// EnsureApproved is MarkApproved restricted to vendors not yet approved.
	EnsureApproved(ctx context.Context, id primitive.ObjectID, planName string) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// ProfileStore is the type profile store, one collection per category.
// "Either key" lookups match _id == id OR vendor_id == id.
type ProfileStore interface {
	Insert(ctx context.Context, p *models.TypeProfile) error
	FindByID(ctx context.Context, category string, id primitive.ObjectID) (*models.TypeProfile, error)
	FindByEitherKey(ctx context.Context, category string, id primitive.ObjectID) (*models.TypeProfile, error)
	SetStatus(ctx context.Context, category string, id primitive.ObjectID, status, remarks string) (int64, error)
	SetStatusByEitherKey(ctx context.Context, category string, vendorID primitive.ObjectID, status string) (int64, error)
	List(ctx context.Context, category string, filter models.ProfileFilter) ([]models.TypeProfile, error)
	// DeleteForVendor removes profiles in every category whose _id is profileID
	// or whose vendor_id is vendorID.
	DeleteForVendor(ctx context.Context, vendorID, profileID primitive.ObjectID) (int64, error)
}

// SubscriptionStore is the subscription ledger (vendor_subscriptions)
type SubscriptionStore interface {
	// Upsert replaces the current record for (VendorID, VendorType) or inserts
	// a new one. It sets s.ID and reports whether a record was created.
	Upsert(ctx context.Context, s *models.Subscription) (bool, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Subscription, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
	// Current returns the newest record for the pair.
	Current(ctx context.Context, vendorID primitive.ObjectID, vendorType string) (*models.Subscription, error)
	// CurrentFor returns the newest record per vendor id for one vendor type.
	CurrentFor(ctx context.Context, vendorType string, vendorIDs []primitive.ObjectID) (map[primitive.ObjectID]models.Subscription, error)
	ListForVendor(ctx context.Context, vendorID primitive.ObjectID, vendorType string) ([]models.Subscription, error)
	ListPending(ctx context.Context) ([]models.PendingSubscription, error)
	// ListCurrentActive returns current records (newest per pair) whose status is active.
	ListCurrentActive(ctx context.Context) ([]models.Subscription, error)
	DeleteForVendor(ctx context.Context, vendorIDs ...primitive.ObjectID) (int64, error)
}

// ServiceLinkStore holds the services category join records
type ServiceLinkStore interface {
	Insert(ctx context.Context, link *models.ServiceLink) error
	DeleteForVendor(ctx context.Context, vendorID primitive.ObjectID) (int64, error)
}

// ContentStore covers vendor owned content (albums, products, ...)
type ContentStore interface {
	Count(ctx context.Context, vendorID primitive.ObjectID) (models.ContentCounts, error)
	DeleteForVendor(ctx context.Context, vendorID primitive.ObjectID) (int64, error)
}

// ApprovalLogStore is append only
type ApprovalLogStore interface {
	Append(ctx context.Context, entry *models.ApprovalLog) error
	List(ctx context.Context, vendorID *primitive.ObjectID, limit int64) ([]models.ApprovalLog, error)
}

// IntentStore persists fan-out intents
type IntentStore interface {
	Create(ctx context.Context, intent *models.WorkflowIntent) error
	MarkStep(ctx context.Context, id primitive.ObjectID, step string) error
	Complete(ctx context.Context, id primitive.ObjectID) error
	Fail(ctx context.Context, id primitive.ObjectID, step, reason string) error
	Abandon(ctx context.Context, id primitive.ObjectID, reason string) error
	// ListUnfinished returns started or failed intents with at least one
	// completed step, last touched before the cutoff.
	ListUnfinished(ctx context.Context, before time.Time, limit int64) ([]models.WorkflowIntent, error)
}

// PlanStore is the sub_plan reference data
type PlanStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Plan, error)
	List(ctx context.Context, vendorType string) ([]models.Plan, error)
	Insert(ctx context.Context, p *models.Plan) error
}

// AdminStore holds admin accounts
type AdminStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	Insert(ctx context.Context, a *models.Admin) error
	TouchLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

// Stores bundles every store the workflow touches
type Stores struct {
	Vendors       VendorStore
	Profiles      ProfileStore
	Subscriptions SubscriptionStore
	ServiceLinks  ServiceLinkStore
	Content       ContentStore
	ApprovalLogs  ApprovalLogStore
	Intents       IntentStore
	Plans         PlanStore
	Admins        AdminStore
}
