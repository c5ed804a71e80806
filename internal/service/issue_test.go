package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/store"
)

func TestIssueDirect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "Helmet", 12, 10)

	out, err := f.engine.IssueDirect(ctx, f.officer, DirectIssue{
		ItemName:        "Helmet",
		Quantity:        2,
		RecipientUserID: &f.requester.ID,
		Purpose:         "patrol",
	})
	require.NoError(t, err)
	assert.Equal(t, model.IssuanceStatusInUse, out.Issuance.Status)
	assert.Equal(t, 2, out.Issuance.Quantity)
	assert.Equal(t, 10, out.Remaining)
	assert.True(t, out.LowStock)
	assert.Equal(t, 10, f.quantity(t, "Helmet"))

	notes, err := f.engine.ListNotifications(ctx, f.requester, false)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "Helmet")
}

func TestIssueDirectToName(t *testing.T) {
	f := newFixture(t)
	f.stock(t, "Helmet", 12, 0)

	out, err := f.engine.IssueDirect(context.Background(), f.root, DirectIssue{
		ItemName:      "Helmet",
		Quantity:      1,
		RecipientName: "  Visiting team  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Visiting team", out.Issuance.RecipientName)
	assert.Nil(t, out.Issuance.RecipientUserID)
	assert.False(t, out.LowStock)
}

func TestIssueDirectErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "Helmet", 3, 0)

	_, err := f.engine.IssueDirect(ctx, f.admin, DirectIssue{ItemName: "Helmet", Quantity: 1, RecipientName: "x"})
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = f.engine.IssueDirect(ctx, f.officer, DirectIssue{ItemName: "Helmet", Quantity: 0, RecipientName: "x"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.engine.IssueDirect(ctx, f.officer, DirectIssue{ItemName: "Helmet", Quantity: 1})
	assert.ErrorIs(t, err, model.ErrValidation)

	ghost := int64(9999)
	_, err = f.engine.IssueDirect(ctx, f.officer, DirectIssue{ItemName: "Helmet", Quantity: 1, RecipientUserID: &ghost})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.engine.IssueDirect(ctx, f.officer, DirectIssue{ItemName: "Jetpack", Quantity: 1, RecipientName: "x"})
	assert.ErrorIs(t, err, model.ErrItemNotFound)

	_, err = f.engine.IssueDirect(ctx, f.officer, DirectIssue{ItemName: "Helmet", Quantity: 4, RecipientName: "x"})
	var insufficient *model.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Available)
	assert.Equal(t, 3, f.quantity(t, "Helmet"))

	all, err := store.ListIssuances(ctx, f.db, store.IssuanceFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestListIssuancesVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stock(t, "Helmet", 12, 0)

	_, err := f.engine.IssueDirect(ctx, f.officer, DirectIssue{ItemName: "Helmet", Quantity: 1, RecipientUserID: &f.requester.ID})
	require.NoError(t, err)
	_, err = f.engine.IssueDirect(ctx, f.officer, DirectIssue{ItemName: "Helmet", Quantity: 1, RecipientName: "Depot"})
	require.NoError(t, err)

	own, err := f.engine.ListIssuances(ctx, f.requester, store.IssuanceFilter{})
	require.NoError(t, err)
	assert.Len(t, own, 1)

	all, err := f.engine.ListIssuances(ctx, f.admin, store.IssuanceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
