package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/store"
)

func TestTransitionsAreAudited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.stock(t, "Rifle", 50, 10)
	req := f.approvedRequest(t, "Rifle", 45)
	_, err := f.engine.TransitionRequest(ctx, f.officer, req.ID, model.RequestStatusCompleted, TransitionOptions{})
	require.NoError(t, err)

	entries, err := f.engine.ListAudit(ctx, f.root, store.AuditFilter{EntityType: model.EntityRequest, EntityID: req.ID})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	actions := []string{entries[0].Action, entries[1].Action, entries[2].Action}
	assert.ElementsMatch(t, []string{"request.create", "request.approved", "request.complete"}, actions)

	for _, e := range entries {
		if e.Action != "request.complete" {
			continue
		}
		assert.Equal(t, f.officer.ID, e.ActorID)
		assert.Equal(t, model.RoleLogisticsOfficer, e.ActorRole)
		assert.Contains(t, e.Before, `"status":"approved"`)
		assert.Contains(t, e.After, `"status":"completed"`)
		assert.Contains(t, e.After, `"low_stock":true`)
	}
}

func TestFailedOperationsAreNotAudited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.approvedRequest(t, "Nothing", 1)
	_, err := f.engine.TransitionRequest(ctx, f.officer, req.ID, model.RequestStatusCompleted, TransitionOptions{})
	require.Error(t, err)

	entries, err := store.ListAuditEntries(ctx, f.db, store.AuditFilter{EntityType: model.EntityRequest})
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, "request.complete", e.Action)
	}
}

func TestAuditFailureKeepsOperation(t *testing.T) {
	f := newFixture(t)
	f.engine.Auditor = failingAuditor{}
	ctx := context.Background()

	item, err := f.engine.CreateStockItem(ctx, f.officer, StockInput{Name: "Tent", Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, item.Quantity)
}

func TestListAuditRequiresAdministrativeRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.ListAudit(context.Background(), f.admin, store.AuditFilter{})
	var forbidden *model.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, []model.Role{model.RoleSystemAdmin}, forbidden.Allowed)
}
