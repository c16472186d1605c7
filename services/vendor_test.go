package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/HSouheill/couplecanvas_backend/events"
	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/HSouheill/couplecanvas_backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDeleteRemovesEverything(t *testing.T) {
	h := newHarness(t)
	vendorID := h.register(t, "gone@example.com", models.CategoryAlbum, models.CategoryServices)
	bystander := h.register(t, "stays@example.com", models.CategoryAlbum)

	h.submit(t, vendorID, models.CategoryAlbum, "Gold", "")
	h.submit(t, vendorID, models.CategoryServices, "Gold", "")
	h.submit(t, bystander, models.CategoryAlbum, "Gold", "")
	for _, coll := range models.ContentCollections {
		h.db.AddContent(coll, vendorID)
	}
	h.db.AddContent(models.ContentAlbums, bystander)

	albumProfile := h.profile(t, models.CategoryAlbum, vendorID)
	res, err := h.vendors.Delete(context.Background(), models.CategoryAlbum, albumProfile.ID.Hex())
	require.NoError(t, err)

	assert.Equal(t, vendorID, res.VendorID)
	assert.Equal(t, int64(2), res.Profiles)
	assert.Equal(t, int64(1), res.Vendors)
	assert.Equal(t, int64(2), res.Subscriptions)
	assert.Equal(t, int64(2), res.ServiceLinks)
	assert.Equal(t, int64(len(models.ContentCollections)), res.Content)

	_, err = h.db.Vendors().FindByID(context.Background(), vendorID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	for _, category := range models.Categories {
		_, err = h.db.Profiles().FindByEitherKey(context.Background(), category, vendorID)
		assert.ErrorIs(t, err, services.ErrNotFound, category)
	}
	subs, err := h.subs.ListForVendor(context.Background(), vendorID, "")
	require.NoError(t, err)
	assert.Empty(t, subs)

	snap := h.db.Snapshot()
	assert.Len(t, snap.Vendors, 1)
	assert.Len(t, snap.Profiles[models.CategoryAlbum], 1)
	assert.Len(t, snap.Subscriptions, 1)
	assert.Equal(t, 1, snap.Content[models.ContentAlbums])
	assert.Contains(t, h.pub.types(), events.VendorDeleted)

	again, err := h.vendors.Delete(context.Background(), models.CategoryAlbum, albumProfile.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.DeleteResult{VendorID: albumProfile.ID}, *again)
}

func TestDeleteByLegacyVendorID(t *testing.T) {
	h := newHarness(t)
	vendorID := h.register(t, "legacy-delete@example.com", models.CategoryProduct)
	h.submit(t, vendorID, models.CategoryProduct, "Gold", "")

	// the admin listing hands out the vendor id for legacy rows
	res, err := h.vendors.Delete(context.Background(), models.CategoryProduct, vendorID.Hex())
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.Profiles)
	assert.Equal(t, int64(1), res.Vendors)
	assert.Equal(t, int64(1), res.Subscriptions)
}

func TestDeleteUnderOtherCategoryResolvesOwner(t *testing.T) {
	h := newHarness(t)
	vendorID := h.register(t, "wrong-category@example.com", models.CategoryAlbum)
	h.submit(t, vendorID, models.CategoryAlbum, "Gold", "")
	profileID := h.profile(t, models.CategoryAlbum, vendorID).ID

	res, err := h.vendors.Delete(context.Background(), models.CategoryProduct, profileID.Hex())
	require.NoError(t, err)

	assert.Equal(t, vendorID, res.VendorID)
	assert.Equal(t, int64(1), res.Vendors)
	assert.Equal(t, int64(1), res.Subscriptions)
	assert.Equal(t, int64(1), res.Profiles)

	snap := h.db.Snapshot()
	assert.Empty(t, snap.Vendors)
	assert.Empty(t, snap.Subscriptions)
	assert.Empty(t, snap.Profiles[models.CategoryAlbum])
}

func TestDeletePartialFailureConvergesOnRetry(t *testing.T) {
	h := newHarness(t)
	vendorID := h.register(t, "retry@example.com", models.CategoryAlbum)
	h.db.AddContent(models.ContentVideos, vendorID)
	profileID := h.profile(t, models.CategoryAlbum, vendorID).ID
	h.db.FailOn("content.DeleteForVendor", errors.New("cursor killed"))

	res, err := h.vendors.Delete(context.Background(), models.CategoryAlbum, profileID.Hex())

	var pf *services.PartialFailureError
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, "content", pf.Step)
	assert.Equal(t, int64(1), res.Vendors)
	assert.Equal(t, 1, h.db.Snapshot().Content[models.ContentVideos])

	// the profile survived, so the retry still finds the vendor
	assert.Equal(t, vendorID, h.profile(t, models.CategoryAlbum, vendorID).VendorID)

	h.db.FailOn("content.DeleteForVendor", nil)
	again, err := h.vendors.Delete(context.Background(), models.CategoryAlbum, profileID.Hex())
	require.NoError(t, err)
	assert.Equal(t, vendorID, again.VendorID)
	assert.Equal(t, int64(1), again.Content)
	assert.Equal(t, int64(1), again.Profiles)
	assert.Equal(t, 0, h.db.Snapshot().Content[models.ContentVideos])
}

func TestDeleteValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.vendors.Delete(context.Background(), "catering", primitive.NewObjectID().Hex())
	assert.True(t, services.IsValidation(err))

	_, err = h.vendors.Delete(context.Background(), models.CategoryAlbum, "not-an-id")
	assert.True(t, services.IsValidation(err))
}

func TestDetailEffectiveStatus(t *testing.T) {
	h := newHarness(t)
	vendorID := h.register(t, "detail@example.com", models.CategoryAlbum)
	h.db.AddContent(models.ContentAlbums, vendorID)
	h.db.AddContent(models.ContentAlbums, vendorID)
	h.db.AddContent(models.ContentTemplates, vendorID)

	detail, err := h.vendors.DetailForVendor(context.Background(), models.CategoryAlbum, vendorID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, detail.EffectiveStatus)
	assert.Nil(t, detail.CurrentSubscription)
	assert.Equal(t, models.ContentCounts{Albums: 2, Templates: 1}, detail.Content)
	require.NotNil(t, detail.Vendor)
	assert.Equal(t, "detail@example.com", detail.Vendor.Email)

	// free plan: subscription active, profile still pending
	h.submit(t, vendorID, models.CategoryAlbum, "Free", models.StatusActive)

	detail, err = h.vendors.Detail(context.Background(), models.CategoryAlbum, detail.Profile.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, detail.Profile.Status)
	assert.Equal(t, models.StatusActive, detail.EffectiveStatus)
	assert.Equal(t, models.StatusActive, detail.Profile.EffectiveStatus)
	require.NotNil(t, detail.CurrentSubscription)
	assert.Equal(t, "Free", detail.CurrentSubscription.PlanName)

	_, err = h.vendors.Detail(context.Background(), models.CategoryProduct, vendorID.Hex())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestListProfiles(t *testing.T) {
	h := newHarness(t)
	active := h.register(t, "a@example.com", models.CategoryAlbum)
	pending := h.register(t, "b@example.com", models.CategoryAlbum)
	h.register(t, "c@example.com", models.CategoryProduct)
	h.submit(t, active, models.CategoryAlbum, "Free", models.StatusActive)
	h.submit(t, pending, models.CategoryAlbum, "Gold", "")

	profiles, err := h.vendors.ListProfiles(context.Background(), models.CategoryAlbum, models.ProfileFilter{})
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	byVendor := map[primitive.ObjectID]string{}
	for _, p := range profiles {
		byVendor[p.VendorID] = p.EffectiveStatus
	}
	assert.Equal(t, models.StatusActive, byVendor[active])
	assert.Equal(t, models.StatusPending, byVendor[pending])

	filtered, err := h.vendors.ListProfiles(context.Background(), models.CategoryAlbum, models.ProfileFilter{Search: "lumi"})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	all, err := h.vendors.ListProfiles(context.Background(), models.CategoryAlbum, models.ProfileFilter{Status: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byPhone, err := h.vendors.ListProfiles(context.Background(), models.CategoryAlbum, models.ProfileFilter{Search: "771234567"})
	require.NoError(t, err)
	assert.Len(t, byPhone, 2)

	noPhone, err := h.vendors.ListProfiles(context.Background(), models.CategoryAlbum, models.ProfileFilter{Search: "000000000"})
	require.NoError(t, err)
	assert.Empty(t, noPhone)

	none, err := h.vendors.ListProfiles(context.Background(), models.CategoryAlbum, models.ProfileFilter{Status: models.StatusRejected})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = h.vendors.ListProfiles(context.Background(), models.CategoryAlbum, models.ProfileFilter{Status: "approved"})
	assert.True(t, services.IsValidation(err))
}
