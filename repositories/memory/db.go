package memory

import (
	"context"
	"sync"

	"github.com/HSouheill/couplecanvas_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DB is an in-process stand-in for the Mongo collections. It mirrors the
// matching rules of the Mongo repositories and lets callers inject failures
// per operation.
type DB struct {
	mu sync.RWMutex

	vendors  map[primitive.ObjectID]models.Vendor
	profiles map[string]map[primitive.ObjectID]models.TypeProfile
	subs     []models.Subscription
	links    map[primitive.ObjectID]models.ServiceLink
	content  map[string][]primitive.ObjectID
	logs     []models.ApprovalLog
	intents  map[primitive.ObjectID]models.WorkflowIntent
	plans    map[primitive.ObjectID]models.Plan
	admins   map[primitive.ObjectID]models.Admin

	failures map[string]error
	calls    map[string]int
}

func NewDB() *DB {
	db := &DB{
		vendors:  make(map[primitive.ObjectID]models.Vendor),
		profiles: make(map[string]map[primitive.ObjectID]models.TypeProfile),
		links:    make(map[primitive.ObjectID]models.ServiceLink),
		content:  make(map[string][]primitive.ObjectID),
		intents:  make(map[primitive.ObjectID]models.WorkflowIntent),
		plans:    make(map[primitive.ObjectID]models.Plan),
		admins:   make(map[primitive.ObjectID]models.Admin),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
	for _, c := range models.Categories {
		db.profiles[c] = make(map[primitive.ObjectID]models.TypeProfile)
	}
	return db
}

// FailOn makes every later call of op return err until cleared with a nil err.
// Ops are named "<store>.<Method>", e.g. "vendors.MarkApproved".
func (db *DB) FailOn(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err == nil {
		delete(db.failures, op)
		return
	}
	db.failures[op] = err
}

// Calls returns how many times op was invoked
func (db *DB) Calls(op string) int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.calls[op]
}

// enter records the call and returns the injected failure, if any. Callers
// must hold db.mu.
func (db *DB) enter(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	db.calls[op]++
	return db.failures[op]
}

// AddContent registers one content document owned by vendorID in collection
func (db *DB) AddContent(collection string, vendorID primitive.ObjectID) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.content[collection] = append(db.content[collection], vendorID)
}

// Snapshot copies everything for assertions
type Snapshot struct {
	Vendors       []models.Vendor
	Profiles      map[string][]models.TypeProfile
	Subscriptions []models.Subscription
	ServiceLinks  []models.ServiceLink
	Content       map[string]int
	ApprovalLogs  []models.ApprovalLog
	Intents       []models.WorkflowIntent
}

func (db *DB) Snapshot() Snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()

	snap := Snapshot{
		Profiles: make(map[string][]models.TypeProfile),
		Content:  make(map[string]int),
	}
	for _, v := range db.vendors {
		snap.Vendors = append(snap.Vendors, v)
	}
	for c, byID := range db.profiles {
		for _, p := range byID {
			snap.Profiles[c] = append(snap.Profiles[c], p)
		}
	}
	snap.Subscriptions = append(snap.Subscriptions, db.subs...)
	for _, l := range db.links {
		snap.ServiceLinks = append(snap.ServiceLinks, l)
	}
	for c, owners := range db.content {
		snap.Content[c] = len(owners)
	}
	snap.ApprovalLogs = append(snap.ApprovalLogs, db.logs...)
	for _, in := range db.intents {
		snap.Intents = append(snap.Intents, cloneIntent(in))
	}
	return snap
}

// Stores hands out one store per collection group
func (db *DB) Vendors() *VendorStore             { return &VendorStore{db: db} }
func (db *DB) Profiles() *ProfileStore           { return &ProfileStore{db: db} }
func (db *DB) Subscriptions() *SubscriptionStore { return &SubscriptionStore{db: db} }
func (db *DB) ServiceLinks() *ServiceLinkStore   { return &ServiceLinkStore{db: db} }
func (db *DB) Content() *ContentStore            { return &ContentStore{db: db} }
func (db *DB) ApprovalLogs() *ApprovalLogStore   { return &ApprovalLogStore{db: db} }
func (db *DB) Intents() *IntentStore             { return &IntentStore{db: db} }
func (db *DB) Plans() *PlanStore                 { return &PlanStore{db: db} }
func (db *DB) Admins() *AdminStore               { return &AdminStore{db: db} }

func cloneIntent(in models.WorkflowIntent) models.WorkflowIntent {
	in.CompletedSteps = append([]string(nil), in.CompletedSteps...)
	in.Profiles = append([]models.TypeProfile(nil), in.Profiles...)
	in.ServiceLinks = append([]models.ServiceLink(nil), in.ServiceLinks...)
	return in
}
