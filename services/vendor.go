package services

import (
	"context"
	"errors"

	"github.com/HSouheill/couplecanvas_backend/events"
	"github.com/HSouheill/couplecanvas_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type VendorService struct {
	d *Deps
}

func NewVendorService(d *Deps) *VendorService {
	return &VendorService{d: d}
}

// Delete removes every trace of the vendor behind a type profile id: the
// registry record, subscriptions, service links, content and its profiles in
// all categories. Each removal is idempotent, so a repeat or a retry after a
// partial failure converges.
func (s *VendorService) Delete(ctx context.Context, category, profileID string) (*models.DeleteResult, error) {
	if err := requireCategory(category); err != nil {
		return nil, err
	}
	pid, err := parseID("id", profileID)
	if err != nil {
		return nil, err
	}

	vendorID, err := s.resolveOwner(ctx, category, pid)
	if err != nil {
		return nil, err
	}

	// The type profiles go last: as long as one survives, a retry with the
	// same profile id still resolves the owning vendor.
	res := &models.DeleteResult{VendorID: vendorID}
	steps := []struct {
		name string
		run  func() (int64, error)
		into *int64
	}{
		{"vendor", func() (int64, error) { return s.d.Stores.Vendors.Delete(ctx, vendorID) }, &res.Vendors},
		{"subscriptions", func() (int64, error) { return s.d.Stores.Subscriptions.DeleteForVendor(ctx, vendorID, pid) }, &res.Subscriptions},
		{"service_links", func() (int64, error) { return s.d.Stores.ServiceLinks.DeleteForVendor(ctx, vendorID) }, &res.ServiceLinks},
		{"content", func() (int64, error) { return s.d.Stores.Content.DeleteForVendor(ctx, vendorID) }, &res.Content},
		{"type_profiles", func() (int64, error) { return s.d.Stores.Profiles.DeleteForVendor(ctx, vendorID, pid) }, &res.Profiles},
	}

	var done []string
	for _, st := range steps {
		n, err := st.run()
		if err != nil {
			s.d.log().Error("Cascade delete step failed",
				zap.String("vendorId", vendorID.Hex()),
				zap.String("step", st.name),
				zap.Strings("completed", done),
				zap.Error(err))
			if len(done) == 0 {
				return nil, stepErr("delete vendor", err)
			}
			pf := &PartialFailureError{
				Operation:   "vendor_delete",
				OperationID: vendorID.Hex(),
				Step:        st.name,
				Completed:   done,
				Err:         err,
			}
			s.d.report(pf, map[string]string{"kind": "vendor_delete", "vendorId": vendorID.Hex()})
			return res, pf
		}
		*st.into = n
		done = append(done, st.name)
	}

	s.d.log().Info("Vendor deleted",
		zap.String("vendorId", vendorID.Hex()),
		zap.String("category", category),
		zap.Int64("profiles", res.Profiles),
		zap.Int64("subscriptions", res.Subscriptions),
		zap.Int64("content", res.Content))
	s.d.publish(ctx, events.Event{
		Type:       events.VendorDeleted,
		VendorID:   vendorID.Hex(),
		VendorType: category,
		Data:       map[string]interface{}{"profileId": pid.Hex()},
	})
	return res, nil
}

// Detail loads the type profile matched by either key along with the vendor,
// content counts and the current subscription for the category.
func (s *VendorService) Detail(ctx context.Context, category, id string) (*models.VendorDetail, error) {
	if err := requireCategory(category); err != nil {
		return nil, err
	}
	oid, err := parseID("id", id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, category, oid)
}

// DetailForVendor is Detail keyed by the vendor id from the caller's token
func (s *VendorService) DetailForVendor(ctx context.Context, category string, vendorID primitive.ObjectID) (*models.VendorDetail, error) {
	if err := requireCategory(category); err != nil {
		return nil, err
	}
	return s.detail(ctx, category, vendorID)
}

func (s *VendorService) detail(ctx context.Context, category string, id primitive.ObjectID) (*models.VendorDetail, error) {
	profile, err := s.d.Stores.Profiles.FindByEitherKey(ctx, category, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, stepErr(category+" profile "+id.Hex(), ErrNotFound)
		}
		return nil, stepErr("load profile", err)
	}

	detail := &models.VendorDetail{Category: category, Profile: profile}
	owner := profile.OwnerID()

	vendor, err := s.d.Stores.Vendors.FindByID(ctx, owner)
	switch {
	case err == nil:
		detail.Vendor = vendor.Summary()
	case !errors.Is(err, ErrNotFound):
		return nil, stepErr("load vendor", err)
	}

	if detail.Content, err = s.d.Stores.Content.Count(ctx, owner); err != nil {
		return nil, stepErr("count content", err)
	}

	current, err := s.d.Stores.Subscriptions.Current(ctx, owner, category)
	switch {
	case err == nil:
		detail.CurrentSubscription = current
	case !errors.Is(err, ErrNotFound):
		return nil, stepErr("load subscription", err)
	}

	detail.EffectiveStatus = EffectiveStatus(profile.Status, detail.CurrentSubscription)
	profile.EffectiveStatus = detail.EffectiveStatus
	return detail, nil
}

// ListProfiles lists a category's profiles with their effective status
func (s *VendorService) ListProfiles(ctx context.Context, category string, filter models.ProfileFilter) ([]models.TypeProfile, error) {
	if err := requireCategory(category); err != nil {
		return nil, err
	}
	if filter.Status == "all" {
		filter.Status = ""
	}
	switch filter.Status {
	case "", models.StatusPending, models.StatusActive, models.StatusRejected:
	default:
		return nil, invalid("status", "must be one of [pending active rejected]")
	}

	profiles, err := s.d.Stores.Profiles.List(ctx, category, filter)
	if err != nil {
		return nil, stepErr("list profiles", err)
	}
	if len(profiles) == 0 {
		return []models.TypeProfile{}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(profiles)*2)
	for _, p := range profiles {
		ids = append(ids, p.OwnerID())
		if p.OwnerID() != p.ID {
			ids = append(ids, p.ID)
		}
	}
	current, err := s.d.Stores.Subscriptions.CurrentFor(ctx, category, ids)
	if err != nil {
		return nil, stepErr("load subscriptions", err)
	}

	for i := range profiles {
		p := &profiles[i]
		sub, ok := current[p.OwnerID()]
		if !ok {
			sub, ok = current[p.ID]
		}
		if ok {
			p.EffectiveStatus = EffectiveStatus(p.Status, &sub)
		} else {
			p.EffectiveStatus = EffectiveStatus(p.Status, nil)
		}
	}
	return profiles, nil
}

// EffectiveStatus is active whenever the current subscription is active,
// otherwise the profile's stored status.
func EffectiveStatus(profileStatus string, current *models.Subscription) string {
	if current != nil && current.Status == models.StatusActive {
		return models.StatusActive
	}
	if profileStatus == "" {
		return models.StatusPending
	}
	return profileStatus
}

// resolveOwner finds the vendor behind a profile id, trying the requested
// category first. An id that matches no profile is taken as a legacy vendor id.
func (s *VendorService) resolveOwner(ctx context.Context, category string, pid primitive.ObjectID) (primitive.ObjectID, error) {
	order := []string{category}
	for _, c := range models.Categories {
		if c != category {
			order = append(order, c)
		}
	}
	for _, c := range order {
		profile, err := s.d.Stores.Profiles.FindByID(ctx, c, pid)
		switch {
		case err == nil:
			return profile.OwnerID(), nil
		case !errors.Is(err, ErrNotFound):
			return primitive.NilObjectID, stepErr("load profile", err)
		}
	}
	return pid, nil
}
