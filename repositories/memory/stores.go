package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/HSouheill/couplecanvas_backend/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VendorStore struct{ db *DB }

func (s *VendorStore) Insert(ctx context.Context, v *models.Vendor) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "vendors.Insert"); err != nil {
		return err
	}
	if v.ID.IsZero() {
		v.ID = primitive.NewObjectID()
	}
	if _, ok := s.db.vendors[v.ID]; ok {
		return repositories.ErrDuplicate
	}
	for _, existing := range s.db.vendors {
		if existing.Email == v.Email {
			return repositories.ErrDuplicate
		}
	}
	s.db.vendors[v.ID] = *v
	return nil
}

func (s *VendorStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "vendors.FindByID"); err != nil {
		return nil, err
	}
	v, ok := s.db.vendors[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &v, nil
}

func (s *VendorStore) FindByEmail(ctx context.Context, email string) (*models.Vendor, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "vendors.FindByEmail"); err != nil {
		return nil, err
	}
	for _, v := range s.db.vendors {
		if v.Email == email {
			return &v, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *VendorStore) MarkApproved(ctx context.Context, id primitive.ObjectID, planName string) (int64, error) {
	return s.approve(ctx, "vendors.MarkApproved", id, planName, false)
}

func (s *VendorStore) EnsureApproved(ctx context.Context, id primitive.ObjectID, planName string) (int64, error) {
	return s.approve(ctx, "vendors.EnsureApproved", id, planName, true)
}

func (s *VendorStore) approve(ctx context.Context, op string, id primitive.ObjectID, planName string, onlyUnapproved bool) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, op); err != nil {
		return 0, err
	}
	v, ok := s.db.vendors[id]
	if !ok || (onlyUnapproved && v.Status == models.VendorStatusApproved) {
		return 0, nil
	}
	v.Status = models.VendorStatusApproved
	v.SubscriptionPlan = planName
	v.UpdatedAt = time.Now().UTC()
	s.db.vendors[id] = v
	return 1, nil
}

func (s *VendorStore) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "vendors.Delete"); err != nil {
		return 0, err
	}
	if _, ok := s.db.vendors[id]; !ok {
		return 0, nil
	}
	delete(s.db.vendors, id)
	return 1, nil
}

type ProfileStore struct{ db *DB }

func eitherKey(p models.TypeProfile, id primitive.ObjectID) bool {
	return p.ID == id || (!p.VendorID.IsZero() && p.VendorID == id)
}

func (s *ProfileStore) Insert(ctx context.Context, p *models.TypeProfile) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "profiles.Insert"); err != nil {
		return err
	}
	coll, ok := s.db.profiles[p.Category]
	if !ok {
		return repositories.ErrUnknownCategory
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, exists := coll[p.ID]; exists {
		return repositories.ErrDuplicate
	}
	coll[p.ID] = *p
	return nil
}

func (s *ProfileStore) FindByID(ctx context.Context, category string, id primitive.ObjectID) (*models.TypeProfile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "profiles.FindByID"); err != nil {
		return nil, err
	}
	p, ok := s.db.profiles[category][id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (s *ProfileStore) FindByEitherKey(ctx context.Context, category string, id primitive.ObjectID) (*models.TypeProfile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "profiles.FindByEitherKey"); err != nil {
		return nil, err
	}
	if p, ok := s.db.profiles[category][id]; ok {
		return &p, nil
	}
	for _, p := range s.db.profiles[category] {
		if eitherKey(p, id) {
			return &p, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *ProfileStore) SetStatus(ctx context.Context, category string, id primitive.ObjectID, status, remarks string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "profiles.SetStatus"); err != nil {
		return 0, err
	}
	p, ok := s.db.profiles[category][id]
	if !ok {
		return 0, nil
	}
	p.Status = status
	p.Remarks = remarks
	p.UpdatedAt = time.Now().UTC()
	s.db.profiles[category][id] = p
	return 1, nil
}

// SetStatusByEitherKey updates the first match only, like UpdateOne
func (s *ProfileStore) SetStatusByEitherKey(ctx context.Context, category string, vendorID primitive.ObjectID, status string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "profiles.SetStatusByEitherKey"); err != nil {
		return 0, err
	}
	for id, p := range s.db.profiles[category] {
		if !eitherKey(p, vendorID) {
			continue
		}
		p.Status = status
		p.UpdatedAt = time.Now().UTC()
		s.db.profiles[category][id] = p
		return 1, nil
	}
	return 0, nil
}

func (s *ProfileStore) List(ctx context.Context, category string, filter models.ProfileFilter) ([]models.TypeProfile, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "profiles.List"); err != nil {
		return nil, err
	}
	search := strings.ToLower(filter.Search)
	var out []models.TypeProfile
	for _, p := range s.db.profiles[category] {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.CompanyName), search) &&
			!strings.Contains(strings.ToLower(p.WhatsappNo), search) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *ProfileStore) DeleteForVendor(ctx context.Context, vendorID, profileID primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "profiles.DeleteForVendor"); err != nil {
		return 0, err
	}
	var n int64
	for _, coll := range s.db.profiles {
		for id, p := range coll {
			if p.ID == profileID || (!p.VendorID.IsZero() && p.VendorID == vendorID) {
				delete(coll, id)
				n++
			}
		}
	}
	return n, nil
}

type SubscriptionStore struct{ db *DB }

// current returns the index of the newest record for the pair, or -1
func (s *SubscriptionStore) current(vendorID primitive.ObjectID, vendorType string) int {
	best := -1
	for i, sub := range s.db.subs {
		if sub.VendorID != vendorID || sub.VendorType != vendorType {
			continue
		}
		if best < 0 || !sub.CreatedAt.Before(s.db.subs[best].CreatedAt) {
			best = i
		}
	}
	return best
}

func (s *SubscriptionStore) Upsert(ctx context.Context, sub *models.Subscription) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "subscriptions.Upsert"); err != nil {
		return false, err
	}
	if i := s.current(sub.VendorID, sub.VendorType); i >= 0 {
		sub.ID = s.db.subs[i].ID
		s.db.subs[i] = *sub
		return false, nil
	}
	sub.ID = primitive.NewObjectID()
	s.db.subs = append(s.db.subs, *sub)
	return true, nil
}

// Seed appends a record as is, for setting up history
func (s *SubscriptionStore) Seed(sub models.Subscription) primitive.ObjectID {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if sub.ID.IsZero() {
		sub.ID = primitive.NewObjectID()
	}
	s.db.subs = append(s.db.subs, sub)
	return sub.ID
}

func (s *SubscriptionStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Subscription, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "subscriptions.FindByID"); err != nil {
		return nil, err
	}
	for _, sub := range s.db.subs {
		if sub.ID == id {
			return &sub, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *SubscriptionStore) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "subscriptions.SetStatus"); err != nil {
		return err
	}
	for i := range s.db.subs {
		if s.db.subs[i].ID == id {
			s.db.subs[i].Status = status
			s.db.subs[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *SubscriptionStore) Current(ctx context.Context, vendorID primitive.ObjectID, vendorType string) (*models.Subscription, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "subscriptions.Current"); err != nil {
		return nil, err
	}
	i := s.current(vendorID, vendorType)
	if i < 0 {
		return nil, repositories.ErrNotFound
	}
	sub := s.db.subs[i]
	return &sub, nil
}

func (s *SubscriptionStore) CurrentFor(ctx context.Context, vendorType string, vendorIDs []primitive.ObjectID) (map[primitive.ObjectID]models.Subscription, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "subscriptions.CurrentFor"); err != nil {
		return nil, err
	}
	out := make(map[primitive.ObjectID]models.Subscription)
	for _, id := range vendorIDs {
		if i := s.current(id, vendorType); i >= 0 {
			out[id] = s.db.subs[i]
		}
	}
	return out, nil
}

func (s *SubscriptionStore) ListForVendor(ctx context.Context, vendorID primitive.ObjectID, vendorType string) ([]models.Subscription, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "subscriptions.ListForVendor"); err != nil {
		return nil, err
	}
	var out []models.Subscription
	for _, sub := range s.db.subs {
		if sub.VendorID == vendorID && (vendorType == "" || sub.VendorType == vendorType) {
			out = append(out, sub)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *SubscriptionStore) ListPending(ctx context.Context) ([]models.PendingSubscription, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "subscriptions.ListPending"); err != nil {
		return nil, err
	}
	var out []models.PendingSubscription
	for _, sub := range s.db.subs {
		if sub.Status != models.StatusPending {
			continue
		}
		p := models.PendingSubscription{Subscription: sub}
		if v, ok := s.db.vendors[sub.VendorID]; ok {
			p.Vendor = v.Summary()
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *SubscriptionStore) ListCurrentActive(ctx context.Context) ([]models.Subscription, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "subscriptions.ListCurrentActive"); err != nil {
		return nil, err
	}
	var out []models.Subscription
	for i, sub := range s.db.subs {
		if sub.Status == models.StatusActive && s.current(sub.VendorID, sub.VendorType) == i {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *SubscriptionStore) DeleteForVendor(ctx context.Context, vendorIDs ...primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "subscriptions.DeleteForVendor"); err != nil {
		return 0, err
	}
	kept := s.db.subs[:0]
	var n int64
	for _, sub := range s.db.subs {
		if containsID(vendorIDs, sub.VendorID) {
			n++
			continue
		}
		kept = append(kept, sub)
	}
	s.db.subs = kept
	return n, nil
}

type ServiceLinkStore struct{ db *DB }

func (s *ServiceLinkStore) Insert(ctx context.Context, link *models.ServiceLink) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "serviceLinks.Insert"); err != nil {
		return err
	}
	if link.ID.IsZero() {
		link.ID = primitive.NewObjectID()
	}
	if _, ok := s.db.links[link.ID]; ok {
		return repositories.ErrDuplicate
	}
	s.db.links[link.ID] = *link
	return nil
}

func (s *ServiceLinkStore) DeleteForVendor(ctx context.Context, vendorID primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "serviceLinks.DeleteForVendor"); err != nil {
		return 0, err
	}
	var n int64
	for id, l := range s.db.links {
		if l.VendorID == vendorID {
			delete(s.db.links, id)
			n++
		}
	}
	return n, nil
}

type ContentStore struct{ db *DB }

func (s *ContentStore) Count(ctx context.Context, vendorID primitive.ObjectID) (models.ContentCounts, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var counts models.ContentCounts
	if err := s.db.enter(ctx, "content.Count"); err != nil {
		return counts, err
	}
	for _, coll := range models.ContentCollections {
		var n int64
		for _, owner := range s.db.content[coll] {
			if owner == vendorID {
				n++
			}
		}
		counts.Set(coll, n)
	}
	return counts, nil
}

func (s *ContentStore) DeleteForVendor(ctx context.Context, vendorID primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "content.DeleteForVendor"); err != nil {
		return 0, err
	}
	var n int64
	for coll, owners := range s.db.content {
		kept := owners[:0]
		for _, owner := range owners {
			if owner == vendorID {
				n++
				continue
			}
			kept = append(kept, owner)
		}
		s.db.content[coll] = kept
	}
	return n, nil
}

type ApprovalLogStore struct{ db *DB }

func (s *ApprovalLogStore) Append(ctx context.Context, entry *models.ApprovalLog) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "approvalLogs.Append"); err != nil {
		return err
	}
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	s.db.logs = append(s.db.logs, *entry)
	return nil
}

func (s *ApprovalLogStore) List(ctx context.Context, vendorID *primitive.ObjectID, limit int64) ([]models.ApprovalLog, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "approvalLogs.List"); err != nil {
		return nil, err
	}
	var out []models.ApprovalLog
	for i := len(s.db.logs) - 1; i >= 0; i-- {
		entry := s.db.logs[i]
		if vendorID != nil && entry.VendorID != *vendorID {
			continue
		}
		out = append(out, entry)
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

type IntentStore struct{ db *DB }

func (s *IntentStore) Create(ctx context.Context, intent *models.WorkflowIntent) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "intents.Create"); err != nil {
		return err
	}
	s.db.intents[intent.ID] = cloneIntent(*intent)
	return nil
}

func (s *IntentStore) update(ctx context.Context, op string, id primitive.ObjectID, apply func(*models.WorkflowIntent)) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, op); err != nil {
		return err
	}
	in, ok := s.db.intents[id]
	if !ok {
		return repositories.ErrNotFound
	}
	apply(&in)
	in.UpdatedAt = time.Now().UTC()
	s.db.intents[id] = in
	return nil
}

func (s *IntentStore) MarkStep(ctx context.Context, id primitive.ObjectID, step string) error {
	return s.update(ctx, "intents.MarkStep", id, func(in *models.WorkflowIntent) {
		if !in.Done(step) {
			in.CompletedSteps = append(in.CompletedSteps, step)
		}
	})
}

func (s *IntentStore) Complete(ctx context.Context, id primitive.ObjectID) error {
	return s.update(ctx, "intents.Complete", id, func(in *models.WorkflowIntent) {
		in.State = models.IntentCompleted
		in.FailedStep = ""
		in.LastError = ""
	})
}

func (s *IntentStore) Fail(ctx context.Context, id primitive.ObjectID, step, reason string) error {
	return s.update(ctx, "intents.Fail", id, func(in *models.WorkflowIntent) {
		in.State = models.IntentFailed
		in.FailedStep = step
		in.LastError = reason
		in.Attempts++
	})
}

func (s *IntentStore) Abandon(ctx context.Context, id primitive.ObjectID, reason string) error {
	return s.update(ctx, "intents.Abandon", id, func(in *models.WorkflowIntent) {
		in.State = models.IntentAbandoned
		in.LastError = reason
	})
}

// Age moves an intent's last update back by d so it becomes due for replay
func (s *IntentStore) Age(id primitive.ObjectID, d time.Duration) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if in, ok := s.db.intents[id]; ok {
		in.UpdatedAt = in.UpdatedAt.Add(-d)
		s.db.intents[id] = in
	}
}

func (s *IntentStore) ListUnfinished(ctx context.Context, before time.Time, limit int64) ([]models.WorkflowIntent, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "intents.ListUnfinished"); err != nil {
		return nil, err
	}
	var out []models.WorkflowIntent
	for _, in := range s.db.intents {
		if in.State != models.IntentStarted && in.State != models.IntentFailed {
			continue
		}
		if len(in.CompletedSteps) == 0 || !in.UpdatedAt.Before(before) {
			continue
		}
		out = append(out, cloneIntent(in))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type PlanStore struct{ db *DB }

func (s *PlanStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Plan, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "plans.FindByID"); err != nil {
		return nil, err
	}
	p, ok := s.db.plans[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (s *PlanStore) List(ctx context.Context, vendorType string) ([]models.Plan, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "plans.List"); err != nil {
		return nil, err
	}
	var out []models.Plan
	for _, p := range s.db.plans {
		if vendorType == "" || p.VendorType == vendorType {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out, nil
}

func (s *PlanStore) Insert(ctx context.Context, p *models.Plan) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "plans.Insert"); err != nil {
		return err
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.db.plans[p.ID] = *p
	return nil
}

type AdminStore struct{ db *DB }

func (s *AdminStore) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "admins.FindByEmail"); err != nil {
		return nil, err
	}
	for _, a := range s.db.admins {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *AdminStore) Insert(ctx context.Context, a *models.Admin) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "admins.Insert"); err != nil {
		return err
	}
	for _, existing := range s.db.admins {
		if existing.Email == a.Email {
			return repositories.ErrDuplicate
		}
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	s.db.admins[a.ID] = *a
	return nil
}

func (s *AdminStore) TouchLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.db.enter(ctx, "admins.TouchLogin"); err != nil {
		return err
	}
	a, ok := s.db.admins[id]
	if !ok {
		return repositories.ErrNotFound
	}
	a.LastLogin = &at
	s.db.admins[id] = a
	return nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
