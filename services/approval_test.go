package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/HSouheill/couplecanvas_backend/events"
	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/HSouheill/couplecanvas_backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func decide(id primitive.ObjectID, status string) services.Decision {
	return services.Decision{TargetID: id.Hex(), Status: status, AdminID: primitive.NewObjectID()}
}

func TestPaidApprovalFansOut(t *testing.T) {
	h := newHarness(t)
	vendorID := h.register(t, "paid@example.com", models.CategoryAlbum, models.CategoryProduct)
	sub := h.submit(t, vendorID, models.CategoryAlbum, "Gold", "")

	res, err := h.approval.Decide(context.Background(), decide(sub.SubscriptionID, models.StatusActive))
	require.NoError(t, err)
	assert.Equal(t, vendorID, res.VendorID)

	assert.Equal(t, models.StatusActive, h.subscription(t, sub.SubscriptionID).Status)
	v := h.vendor(t, vendorID)
	assert.Equal(t, models.VendorStatusApproved, v.Status)
	assert.Equal(t, "Gold", v.SubscriptionPlan)
	assert.Equal(t, models.StatusActive, h.profile(t, models.CategoryAlbum, vendorID).Status)
	// other categories are decided on their own
	assert.Equal(t, models.StatusPending, h.profile(t, models.CategoryProduct, vendorID).Status)

	logs := h.db.Snapshot().ApprovalLogs
	require.Len(t, logs, 1)
	assert.Equal(t, models.ApprovalTargetSubscription, logs[0].Target)
	assert.Equal(t, models.StatusActive, logs[0].Action)

	assert.Contains(t, h.pub.types(), events.SubscriptionDecided)
	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, "paid@example.com", h.notifier.sent[0].To)
}

func TestApprovalAppliesToEveryCategory(t *testing.T) {
	for _, category := range models.Categories {
		t.Run(category, func(t *testing.T) {
			h := newHarness(t)
			vendorID := h.register(t, category+"@example.com", category)
			sub := h.submit(t, vendorID, category, "Gold", "")

			_, err := h.approval.Decide(context.Background(), decide(sub.SubscriptionID, models.StatusActive))
			require.NoError(t, err)

			assert.Equal(t, models.StatusActive, h.profile(t, category, vendorID).Status)
		})
	}
}

func TestRejectionTouchesSubscriptionOnly(t *testing.T) {
	h := newHarness(t)
	vendorID := h.register(t, "reject@example.com", models.CategoryAlbum)
	sub := h.submit(t, vendorID, models.CategoryAlbum, "Gold", "")

	_, err := h.approval.Decide(context.Background(), services.Decision{
		TargetID: sub.SubscriptionID.Hex(),
		Status:   models.StatusRejected,
		Remarks:  "slip unreadable",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, h.subscription(t, sub.SubscriptionID).Status)
	assert.Equal(t, models.VendorStatusPending, h.vendor(t, vendorID).Status)
	assert.Equal(t, models.StatusPending, h.profile(t, models.CategoryAlbum, vendorID).Status)
	assert.Equal(t, "slip unreadable", h.db.Snapshot().ApprovalLogs[0].Remarks)
	assert.Contains(t, h.notifier.sent[0].Body, "slip unreadable")
}

func TestRejectionAfterApprovalDoesNotDowngrade(t *testing.T) {
	h := newHarness(t)
	vendorID := h.register(t, "keep@example.com", models.CategoryAlbum)
	sub := h.submit(t, vendorID, models.CategoryAlbum, "Gold", "")

	_, err := h.approval.Decide(context.Background(), decide(sub.SubscriptionID, models.StatusActive))
	require.NoError(t, err)
	_, err = h.approval.Decide(context.Background(), decide(sub.SubscriptionID, models.StatusRejected))
	require.NoError(t, err)

	assert.Equal(t, models.StatusRejected, h.subscription(t, sub.SubscriptionID).Status)
	assert.Equal(t, models.VendorStatusApproved, h.vendor(t, vendorID).Status)
	assert.Equal(t, models.StatusActive, h.profile(t, models.CategoryAlbum, vendorID).Status)
}

func TestApprovalOfLegacyProfileKeyedByVendorID(t *testing.T) {
	h := newHarness(t)
	vendorID := h.register(t, "legacy-profile@example.com", models.CategoryProposal)
	// replace the registered profile with a legacy one: same id as the vendor, no back-reference
	_, err := h.db.Profiles().DeleteForVendor(context.Background(), vendorID, vendorID)
	require.NoError(t, err)
	require.NoError(t, h.db.Profiles().Insert(context.Background(), &models.TypeProfile{
		ID:       vendorID,
		Category: models.CategoryProposal,
		Status:   models.StatusPending,
	}))
	sub := h.submit(t, vendorID, models.CategoryProposal, "Gold", "")

	_, err = h.approval.Decide(context.Background(), decide(sub.SubscriptionID, models.StatusActive))
	require.NoError(t, err)

	p, err := h.db.Profiles().FindByID(context.Background(), models.CategoryProposal, vendorID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, p.Status)
}

func TestApprovalWithoutProfileStillSucceeds(t *testing.T) {
	h := newHarness(t)
	vendorID := h.register(t, "noprofile@example.com", models.CategoryAlbum)
	// a subscription for a category the vendor never registered a profile for
	sub := h.submit(t, vendorID, models.CategoryServices, "Gold", "")

	_, err := h.approval.Decide(context.Background(), decide(sub.SubscriptionID, models.StatusActive))

	require.NoError(t, err)
	assert.Equal(t, models.VendorStatusApproved, h.vendor(t, vendorID).Status)
}

func TestDecideErrors(t *testing.T) {
	h := newHarness(t)
	vendorID := h.register(t, "errs@example.com", models.CategoryAlbum)
	sub := h.submit(t, vendorID, models.CategoryAlbum, "Gold", "")

	_, err := h.approval.Decide(context.Background(), decide(primitive.NewObjectID(), models.StatusActive))
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = h.approval.Decide(context.Background(), services.Decision{TargetID: "xyz", Status: models.StatusActive})
	assert.True(t, services.IsValidation(err))

	for _, status := range []string{"", models.StatusPending, "approved"} {
		_, err = h.approval.Decide(context.Background(), decide(sub.SubscriptionID, status))
		assert.True(t, services.IsValidation(err), "status %q", status)
	}
	assert.Equal(t, models.StatusPending, h.subscription(t, sub.SubscriptionID).Status)
	assert.Empty(t, h.db.Snapshot().ApprovalLogs)
}

func TestDecidePartialFailureReplays(t *testing.T) {
	h := newHarness(t)
	vendorID := h.register(t, "half@example.com", models.CategoryAlbum)
	sub := h.submit(t, vendorID, models.CategoryAlbum, "Gold", "")
	h.db.FailOn("profiles.SetStatusByEitherKey", errors.New("connection reset"))

	_, err := h.approval.Decide(context.Background(), decide(sub.SubscriptionID, models.StatusActive))

	var pf *services.PartialFailureError
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, models.StepTypeProfile, pf.Step)
	assert.Equal(t, []string{models.StepSubscriptionStatus, models.StepVendorRegistry}, pf.Completed)
	assert.Len(t, h.reporter.errs, 1)
	assert.Equal(t, models.StatusPending, h.profile(t, models.CategoryAlbum, vendorID).Status)

	h.db.FailOn("profiles.SetStatusByEitherKey", nil)
	h.ageIntents()
	report, err := h.reconcile.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.IntentsReplayed)
	assert.Equal(t, models.StatusActive, h.profile(t, models.CategoryAlbum, vendorID).Status)
	// the vendor step was not re-run
	assert.Equal(t, 1, h.db.Calls("vendors.MarkApproved"))
}

func TestReplayAbandonedWhenSubscriptionRedecided(t *testing.T) {
	h := newHarness(t)
	vendorID := h.register(t, "redecided@example.com", models.CategoryAlbum)
	sub := h.submit(t, vendorID, models.CategoryAlbum, "Gold", "")
	h.db.FailOn("vendors.MarkApproved", errors.New("timeout"))

	_, err := h.approval.Decide(context.Background(), decide(sub.SubscriptionID, models.StatusActive))
	require.True(t, services.IsPartial(err))
	h.db.FailOn("vendors.MarkApproved", nil)

	_, err = h.approval.Decide(context.Background(), decide(sub.SubscriptionID, models.StatusRejected))
	require.NoError(t, err)

	h.ageIntents()
	report, err := h.reconcile.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.IntentsAbandoned)
	assert.Equal(t, models.VendorStatusPending, h.vendor(t, vendorID).Status)
	assert.Equal(t, models.StatusPending, h.profile(t, models.CategoryAlbum, vendorID).Status)
}

func TestApprovalLogFailureDoesNotFailDecision(t *testing.T) {
	h := newHarness(t)
	vendorID := h.register(t, "nolog@example.com", models.CategoryAlbum)
	sub := h.submit(t, vendorID, models.CategoryAlbum, "Gold", "")
	h.db.FailOn("approvalLogs.Append", errors.New("disk full"))

	_, err := h.approval.Decide(context.Background(), decide(sub.SubscriptionID, models.StatusActive))

	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, h.subscription(t, sub.SubscriptionID).Status)
}

func TestListPendingNewestFirstWithVendor(t *testing.T) {
	h := newHarness(t)
	older := h.register(t, "older@example.com", models.CategoryAlbum)
	newer := h.register(t, "newer@example.com", models.CategoryAlbum)
	decided := h.register(t, "decided@example.com", models.CategoryAlbum)

	h.submit(t, older, models.CategoryAlbum, "Gold", "")
	h.skew = time.Second
	h.submit(t, newer, models.CategoryAlbum, "Gold", "")
	h.submit(t, decided, models.CategoryAlbum, "Free", models.StatusActive)

	pending, err := h.approval.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, newer, pending[0].VendorID)
	assert.Equal(t, older, pending[1].VendorID)
	require.NotNil(t, pending[0].Vendor)
	assert.Equal(t, "newer@example.com", pending[0].Vendor.Email)
}

func TestDecideProfile(t *testing.T) {
	h := newHarness(t)
	vendorID := h.register(t, "direct@example.com", models.CategoryProduct)
	sub := h.submit(t, vendorID, models.CategoryProduct, "Gold", "")
	profileID := h.profile(t, models.CategoryProduct, vendorID).ID

	p, err := h.approval.DecideProfile(context.Background(), services.Decision{
		TargetID: profileID.Hex(),
		Category: models.CategoryProduct,
		Status:   models.StatusRejected,
		Remarks:  "logo missing",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, p.Status)
	assert.Equal(t, "logo missing", h.profile(t, models.CategoryProduct, vendorID).Remarks)

	// subscriptions and the registry are untouched
	assert.Equal(t, models.StatusPending, h.subscription(t, sub.SubscriptionID).Status)
	assert.Equal(t, models.VendorStatusPending, h.vendor(t, vendorID).Status)

	logs, err := h.approval.ListLogs(context.Background(), vendorID.Hex(), 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.ApprovalTargetProfile, logs[0].Target)

	_, err = h.approval.DecideProfile(context.Background(), services.Decision{
		TargetID: primitive.NewObjectID().Hex(), Category: models.CategoryProduct, Status: models.StatusActive,
	})
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = h.approval.DecideProfile(context.Background(), services.Decision{
		TargetID: profileID.Hex(), Category: "catering", Status: models.StatusActive,
	})
	assert.True(t, services.IsValidation(err))
}
