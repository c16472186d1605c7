package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/HSouheill/couplecanvas_backend/events"
	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/HSouheill/couplecanvas_backend/repositories"
	"github.com/HSouheill/couplecanvas_backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesVendorProfilesAndLinks(t *testing.T) {
	h := newHarness(t)

	res, err := h.registration.Register(context.Background(), signup("nimali@example.com", models.CategoryAlbum, models.CategoryServices))
	require.NoError(t, err)
	assert.Equal(t, models.VendorStatusPending, res.Status)
	assert.Len(t, res.Profiles, 2)

	v := h.vendor(t, res.VendorID)
	assert.Equal(t, "nimali@example.com", v.Email)
	assert.Equal(t, models.VendorStatusPending, v.Status)
	assert.NotEqual(t, "s3cret-pass", v.Password)
	assert.Equal(t, []string{models.CategoryAlbum, models.CategoryServices}, v.VendorTypes)

	snap := h.db.Snapshot()
	require.Len(t, snap.Profiles[models.CategoryAlbum], 1)
	require.Len(t, snap.Profiles[models.CategoryServices], 1)
	assert.Empty(t, snap.Profiles[models.CategoryProduct])
	assert.Empty(t, snap.Profiles[models.CategoryProposal])

	album := snap.Profiles[models.CategoryAlbum][0]
	assert.Equal(t, res.VendorID, album.VendorID)
	assert.Equal(t, models.StatusPending, album.Status)
	assert.Equal(t, "Lumiere Albums", album.Name)
	assert.Equal(t, res.Profiles[models.CategoryAlbum], album.ID.Hex())

	require.Len(t, snap.ServiceLinks, 2)
	for _, link := range snap.ServiceLinks {
		assert.Equal(t, res.VendorID, link.VendorID)
		assert.Contains(t, []string{"svc1", "svc2"}, link.ServiceID)
		assert.Equal(t, models.StatusActive, link.Status)
	}

	intents := h.intentsOf(models.IntentRegistration)
	require.Len(t, intents, 1)
	assert.Equal(t, models.IntentCompleted, intents[0].State)
	assert.ElementsMatch(t, []string{
		models.StepVendorInsert,
		models.ProfileStep(models.CategoryAlbum),
		models.ProfileStep(models.CategoryServices),
		models.StepServiceLinks,
	}, intents[0].CompletedSteps)

	assert.Equal(t, []string{events.VendorRegistered}, h.pub.types())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	h.register(t, "dup@example.com", models.CategoryAlbum)

	_, err := h.registration.Register(context.Background(), signup("dup@example.com", models.CategoryProduct))
	assert.ErrorIs(t, err, services.ErrEmailTaken)
	assert.Len(t, h.db.Snapshot().Vendors, 1)
	assert.Empty(t, h.db.Snapshot().Profiles[models.CategoryProduct])

	// emails are compared exactly as given
	_, err = h.registration.Register(context.Background(), signup("Dup@example.com", models.CategoryProduct))
	assert.NoError(t, err)
}

func TestRegisterDuplicateEmailRace(t *testing.T) {
	h := newHarness(t)
	h.register(t, "race@example.com", models.CategoryAlbum)
	// the pre-check misses, the unique index catches it
	h.db.FailOn("vendors.FindByEmail", repositories.ErrNotFound)

	req := signup("race@example.com", models.CategoryAlbum)
	_, err := h.registration.Register(context.Background(), req)
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.RegisterVendorRequest)
	}{
		{"missing email", func(r *models.RegisterVendorRequest) { r.Email = "" }},
		{"missing password", func(r *models.RegisterVendorRequest) { r.Password = "" }},
		{"no vendor types", func(r *models.RegisterVendorRequest) { r.VendorTypes = nil }},
		{"unknown tag", func(r *models.RegisterVendorRequest) { r.VendorTypes = []string{"catering"} }},
		{"duplicate tag", func(r *models.RegisterVendorRequest) {
			r.VendorTypes = []string{models.CategoryAlbum, models.CategoryAlbum}
		}},
		{"selected tag without payload", func(r *models.RegisterVendorRequest) { r.Album = nil }},
		{"album without name", func(r *models.RegisterVendorRequest) { r.Album.Name = "" }},
		{"services without selection", func(r *models.RegisterVendorRequest) {
			r.VendorTypes = []string{models.CategoryServices}
			r.Services = &models.ServicesSignup{WhatsappNo: "+94771234568"}
		}},
		{"unusable whatsapp number", func(r *models.RegisterVendorRequest) { r.Album.WhatsappNo = "12" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			req := signup("v@example.com", models.CategoryAlbum)
			tt.mutate(req)

			_, err := h.registration.Register(context.Background(), req)

			require.Error(t, err)
			assert.True(t, services.IsValidation(err), "got %v", err)
			assert.Empty(t, h.db.Snapshot().Vendors)
			assert.Empty(t, h.db.Snapshot().Intents)
		})
	}
}

func TestRegisterIgnoresUnselectedPayloads(t *testing.T) {
	h := newHarness(t)
	req := signup("only-album@example.com", models.CategoryAlbum)
	// invalid, but not selected
	req.Product = &models.ProductSignup{}

	_, err := h.registration.Register(context.Background(), req)
	require.NoError(t, err)

	snap := h.db.Snapshot()
	assert.Len(t, snap.Profiles[models.CategoryAlbum], 1)
	assert.Empty(t, snap.Profiles[models.CategoryProduct])
}

func TestRegisterPartialFailureIsReplayed(t *testing.T) {
	h := newHarness(t)
	h.db.FailOn("serviceLinks.Insert", errors.New("write concern timeout"))

	_, err := h.registration.Register(context.Background(), signup("partial@example.com", models.CategoryAlbum, models.CategoryServices))

	var pf *services.PartialFailureError
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, models.IntentRegistration, pf.Operation)
	assert.Equal(t, models.StepServiceLinks, pf.Step)
	assert.Contains(t, pf.Completed, models.StepVendorInsert)
	assert.Len(t, h.reporter.errs, 1)
	assert.Contains(t, h.pub.types(), events.WorkflowPartial)

	snap := h.db.Snapshot()
	require.Len(t, snap.Vendors, 1)
	assert.Empty(t, snap.ServiceLinks)
	intents := h.intentsOf(models.IntentRegistration)
	require.Len(t, intents, 1)
	assert.Equal(t, models.IntentFailed, intents[0].State)

	h.db.FailOn("serviceLinks.Insert", nil)
	h.ageIntents()
	report, err := h.reconcile.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.IntentsReplayed)

	snap = h.db.Snapshot()
	assert.Len(t, snap.ServiceLinks, 2)
	assert.Len(t, snap.Profiles[models.CategoryAlbum], 1)
	assert.Len(t, snap.Profiles[models.CategoryServices], 1)
	assert.Equal(t, models.IntentCompleted, h.intentsOf(models.IntentRegistration)[0].State)
}

func TestRegisterFirstWriteFailureLeavesNothing(t *testing.T) {
	h := newHarness(t)
	h.db.FailOn("vendors.Insert", errors.New("no primary"))

	_, err := h.registration.Register(context.Background(), signup("down@example.com", models.CategoryAlbum))

	require.Error(t, err)
	assert.False(t, services.IsPartial(err))
	assert.Empty(t, h.db.Snapshot().Profiles[models.CategoryAlbum])
	intents := h.intentsOf(models.IntentRegistration)
	require.Len(t, intents, 1)
	assert.Equal(t, models.IntentAbandoned, intents[0].State)
}
