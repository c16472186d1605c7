package services_test

import (
	"context"
	"testing"

	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/HSouheill/couplecanvas_backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPlanListIsCachedUntilCreate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.plans.Create(ctx, &models.PlanRequest{Name: "Free", VendorType: models.CategoryAlbum, Days: 30, Features: []string{" 5 albums ", ""}})
	require.NoError(t, err)

	first, err := h.plans.List(ctx, models.CategoryAlbum)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, models.Features{"5 albums"}, first[0].Features)

	_, err = h.plans.List(ctx, models.CategoryAlbum)
	require.NoError(t, err)
	assert.Equal(t, 1, h.db.Calls("plans.List"))

	_, err = h.plans.Create(ctx, &models.PlanRequest{Name: "Gold", VendorType: models.CategoryAlbum, Price: 4500, Days: 365})
	require.NoError(t, err)

	after, err := h.plans.List(ctx, models.CategoryAlbum)
	require.NoError(t, err)
	assert.Len(t, after, 2)
	assert.Equal(t, 2, h.db.Calls("plans.List"))

	all, err := h.plans.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	other, err := h.plans.List(ctx, models.CategoryProduct)
	require.NoError(t, err)
	assert.Empty(t, other)
	assert.NotNil(t, other)
}

func TestPlanGet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	plan, err := h.plans.Create(ctx, &models.PlanRequest{Name: "Silver", VendorType: models.CategoryProduct, Price: 1200, Days: 90})
	require.NoError(t, err)

	got, err := h.plans.Get(ctx, plan.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Silver", got.DisplayName())

	_, err = h.plans.Get(ctx, plan.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, h.db.Calls("plans.FindByID"))

	_, err = h.plans.Get(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = h.plans.Get(ctx, "bogus")
	assert.True(t, services.IsValidation(err))
}

func TestPlanCreateValidation(t *testing.T) {
	h := newHarness(t)

	tests := []*models.PlanRequest{
		{VendorType: models.CategoryAlbum, Days: 30},
		{Name: "X", VendorType: "catering", Days: 30},
		{Name: "X", VendorType: models.CategoryAlbum},
		{Name: "X", VendorType: models.CategoryAlbum, Days: 30, Price: -5},
	}
	for _, req := range tests {
		_, err := h.plans.Create(context.Background(), req)
		assert.True(t, services.IsValidation(err), "%+v", req)
	}
	assert.Zero(t, h.db.Calls("plans.Insert"))
}
