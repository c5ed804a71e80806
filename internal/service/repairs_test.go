package service

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/store"
)

func (f *fixture) repair(t *testing.T) *model.RepairRequest {
	t.Helper()
	r, err := f.engine.CreateRepairRequest(context.Background(), f.requester, NewRepair{
		Location:    "Barracks 3",
		Description: "roof leaking",
		Priority:    "High",
	}, nil)
	require.NoError(t, err)
	return r
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestCreateRepairRequestNotifiesApprovers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r := f.repair(t)
	assert.Equal(t, model.RepairStatusPending, r.Status)
	assert.Equal(t, model.PriorityHigh, r.Priority)

	for _, approver := range []model.Actor{f.admin, f.root} {
		notes, err := f.engine.ListNotifications(ctx, approver, true)
		require.NoError(t, err)
		require.Len(t, notes, 1, approver.Username)
		assert.Contains(t, notes[0].Message, "Barracks 3")
	}

	notes, err := f.engine.ListNotifications(ctx, f.officer, false)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestCreateRepairRequestValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CreateRepairRequest(ctx, f.requester, NewRepair{Location: ""}, nil)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.engine.CreateRepairRequest(ctx, f.requester, NewRepair{Location: "Gate", Priority: "normal"}, nil)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.engine.CreateRepairRequest(ctx, f.requester, NewRepair{Location: "Gate"}, strings.NewReader("not a photo"))
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCreateRepairRequestWithPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.engine.CreateRepairRequest(ctx, f.requester, NewRepair{Location: "Gate"}, bytes.NewReader(testPNG(t)))
	require.NoError(t, err)
	require.NotEmpty(t, r.PhotoRef)

	data, mime, err := f.engine.GetPhoto(ctx, r.PhotoRef)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
	assert.NotEmpty(t, data)

	_, _, err = f.engine.GetPhoto(ctx, "no-such-photo")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestAttachRepairPhotoPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.repair(t)

	_, err := f.engine.AttachRepairPhoto(ctx, f.officer, r.ID, bytes.NewReader(testPNG(t)))
	assert.ErrorIs(t, err, model.ErrForbidden)

	updated, err := f.engine.AttachRepairPhoto(ctx, f.requester, r.ID, bytes.NewReader(testPNG(t)))
	require.NoError(t, err)
	assert.NotEmpty(t, updated.PhotoRef)
}

func TestApproveRepairCreatesOneUnderRepairItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.repair(t)

	out, err := f.engine.AssessRepair(ctx, f.admin, r.ID, model.RepairStatusApproved, "crew B")
	require.NoError(t, err)
	assert.Equal(t, model.RepairStatusApproved, out.Repair.Status)
	assert.Equal(t, "crew B", out.Repair.AdminRemark)
	require.NotNil(t, out.UnderRepair)
	assert.Equal(t, model.UnderRepairPending, out.UnderRepair.Status)
	assert.Equal(t, r.Location, out.UnderRepair.Location)
	assert.Equal(t, r.Priority, out.UnderRepair.Priority)
	assert.Equal(t, r.RequesterID, out.UnderRepair.RequesterID)

	// A second assessment is not a legal transition and adds nothing.
	_, err = f.engine.AssessRepair(ctx, f.admin, r.ID, model.RepairStatusApproved, "")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	items, err := store.ListUnderRepairItems(ctx, f.db, "")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	notes, err := f.engine.ListNotifications(ctx, f.requester, false)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Contains(t, notes[0].Message, "approved")
	assert.Contains(t, notes[0].Message, "Remark: crew B")
}

func TestRejectRepairCreatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.repair(t)

	out, err := f.engine.AssessRepair(ctx, f.root, r.ID, "REJECTED", "not our building")
	require.NoError(t, err)
	assert.Equal(t, model.RepairStatusRejected, out.Repair.Status)
	assert.Nil(t, out.UnderRepair)

	items, err := store.ListUnderRepairItems(ctx, f.db, "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAssessRepairErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.repair(t)

	_, err := f.engine.AssessRepair(ctx, f.officer, r.ID, model.RepairStatusApproved, "")
	var forbidden *model.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Equal(t, model.RoleLogisticsOfficer, forbidden.Role)

	_, err = f.engine.AssessRepair(ctx, f.admin, r.ID, model.RepairStatusCompleted, "")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = f.engine.AssessRepair(ctx, f.admin, r.ID, "fixed", "")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.engine.AssessRepair(ctx, f.admin, 999, model.RepairStatusApproved, "")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func (f *fixture) underRepair(t *testing.T) *model.UnderRepairItem {
	t.Helper()
	r := f.repair(t)
	out, err := f.engine.AssessRepair(context.Background(), f.admin, r.ID, model.RepairStatusApproved, "")
	require.NoError(t, err)
	return out.UnderRepair
}

func TestAdvanceRepairLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.underRepair(t)

	started, err := f.engine.AdvanceRepair(ctx, f.officer, item.ID, model.UnderRepairInProgress, "parts ordered")
	require.NoError(t, err)
	assert.Equal(t, model.UnderRepairInProgress, started.Status)
	assert.Equal(t, "parts ordered", started.Remarks)

	done, err := f.engine.AdvanceRepair(ctx, f.root, item.ID, model.UnderRepairCompleted, "")
	require.NoError(t, err)
	assert.Equal(t, model.UnderRepairCompleted, done.Status)
	assert.Equal(t, "parts ordered", done.Remarks)

	parent, err := store.GetRepairRequest(ctx, f.db, item.RepairRequestID)
	require.NoError(t, err)
	assert.Equal(t, model.RepairStatusCompleted, parent.Status)

	_, err = f.engine.AdvanceRepair(ctx, f.officer, item.ID, model.UnderRepairCancelled, "")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	notes, err := f.engine.ListNotifications(ctx, f.requester, false)
	require.NoError(t, err)
	assert.Contains(t, notes[0].Message, "completed")
	assert.Contains(t, notes[1].Message, "in progress")
}

func TestAdvanceRepairSkippingInProgressIsInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.underRepair(t)

	_, err := f.engine.AdvanceRepair(ctx, f.officer, item.ID, model.UnderRepairCompleted, "")
	var transition *model.TransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, model.UnderRepairPending, transition.From)

	got, err := store.GetUnderRepairItem(ctx, f.db, item.ID)
	require.NoError(t, err)
	assert.Equal(t, model.UnderRepairPending, got.Status)
}

func TestAdvanceRepairCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.underRepair(t)

	cancelled, err := f.engine.AdvanceRepair(ctx, f.officer, item.ID, model.UnderRepairCancelled, "duplicate")
	require.NoError(t, err)
	assert.Equal(t, model.UnderRepairCancelled, cancelled.Status)

	_, err = f.engine.AdvanceRepair(ctx, f.officer, item.ID, model.UnderRepairInProgress, "")
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	parent, err := store.GetRepairRequest(ctx, f.db, item.RepairRequestID)
	require.NoError(t, err)
	assert.Equal(t, model.RepairStatusApproved, parent.Status)
}

func TestAdvanceRepairRoles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.underRepair(t)

	for _, actor := range []model.Actor{f.requester, f.admin} {
		_, err := f.engine.AdvanceRepair(ctx, actor, item.ID, model.UnderRepairInProgress, "")
		var forbidden *model.ForbiddenError
		require.ErrorAs(t, err, &forbidden)
		assert.Equal(t, []model.Role{model.RoleLogisticsOfficer, model.RoleSystemAdmin}, forbidden.Allowed)
	}

	_, err := f.engine.AdvanceRepair(ctx, f.officer, 999, model.UnderRepairInProgress, "")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRepairVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := f.actor(t, "other", model.RoleUser)

	item := f.underRepair(t)

	own, err := f.engine.ListUnderRepairItems(ctx, f.requester, "")
	require.NoError(t, err)
	assert.Len(t, own, 1)

	none, err := f.engine.ListUnderRepairItems(ctx, other, "")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.engine.GetRepairRequest(ctx, other, item.RepairRequestID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	all, err := f.engine.ListRepairRequests(ctx, f.officer, model.RepairStatusApproved)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGetRepairDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending := f.repair(t)
	detail, err := f.engine.GetRepairDetail(ctx, f.requester, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, detail.Repair.ID)
	assert.Nil(t, detail.UnderRepair)

	item := f.underRepair(t)
	detail, err = f.engine.GetRepairDetail(ctx, f.officer, item.RepairRequestID)
	require.NoError(t, err)
	require.NotNil(t, detail.UnderRepair)
	assert.Equal(t, item.ID, detail.UnderRepair.ID)

	other := f.actor(t, "other", model.RoleUser)
	_, err = f.engine.GetRepairDetail(ctx, other, item.RepairRequestID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
