package store

import (
	"context"
	"testing"

	"github.com/erazemk/logistika/internal/db"
	"github.com/erazemk/logistika/internal/model"
)

func TestCreateAndGetRequest(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	alice, _ := CreateUser(ctx, database, "alice", "hash", model.RoleUser)

	req, err := CreateRequest(ctx, database, model.Request{
		ItemName:    "Rifle",
		Quantity:    45,
		Purpose:     "training",
		RequesterID: alice.ID,
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if req.Status != model.RequestStatusPending {
		t.Errorf("expected status pending, got %q", req.Status)
	}
	if req.Priority != model.PriorityNormal {
		t.Errorf("expected default priority normal, got %q", req.Priority)
	}
	if req.RequesterName != "alice" {
		t.Errorf("expected requester name 'alice', got %q", req.RequesterName)
	}

	missing, err := GetRequest(ctx, database, 9999)
	if err != nil {
		t.Fatalf("GetRequest: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing request")
	}
}

func TestUpdateRequestStatusCompareAndSet(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	alice, _ := CreateUser(ctx, database, "alice", "hash", model.RoleUser)
	req, _ := CreateRequest(ctx, database, model.Request{ItemName: "Rifle", Quantity: 45, RequesterID: alice.ID})

	ok, err := UpdateRequestStatus(ctx, database, req.ID, model.RequestStatusPending, model.RequestStatusApproved, "go ahead", 40)
	if err != nil {
		t.Fatalf("UpdateRequestStatus: %v", err)
	}
	if !ok {
		t.Fatal("expected the first transition to apply")
	}

	// The stored status is no longer pending.
	ok, _ = UpdateRequestStatus(ctx, database, req.ID, model.RequestStatusPending, model.RequestStatusRejected, "", 0)
	if ok {
		t.Error("expected stale transition to be refused")
	}

	got, _ := GetRequest(ctx, database, req.ID)
	if got.Status != model.RequestStatusApproved {
		t.Errorf("expected approved, got %q", got.Status)
	}
	if got.AdminRemark != "go ahead" {
		t.Errorf("expected remark 'go ahead', got %q", got.AdminRemark)
	}
	if got.Quantity != 40 {
		t.Errorf("expected overridden quantity 40, got %d", got.Quantity)
	}

	// Empty remark and zero quantity keep the stored values.
	UpdateRequestStatus(ctx, database, req.ID, model.RequestStatusApproved, model.RequestStatusCompleted, "", 0)
	got, _ = GetRequest(ctx, database, req.ID)
	if got.AdminRemark != "go ahead" || got.Quantity != 40 {
		t.Errorf("expected remark and quantity kept, got %q / %d", got.AdminRemark, got.Quantity)
	}
}

func TestListRequestsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	alice, _ := CreateUser(ctx, database, "alice", "hash", model.RoleUser)
	bob, _ := CreateUser(ctx, database, "bob", "hash", model.RoleUser)

	r1, _ := CreateRequest(ctx, database, model.Request{ItemName: "Rifle", Quantity: 1, RequesterID: alice.ID})
	CreateRequest(ctx, database, model.Request{ItemName: "Radio", Quantity: 1, RequesterID: alice.ID})
	CreateRequest(ctx, database, model.Request{ItemName: "Tent", Quantity: 1, RequesterID: bob.ID})
	UpdateRequestStatus(ctx, database, r1.ID, model.RequestStatusPending, model.RequestStatusRejected, "", 0)

	all, _ := ListRequests(ctx, database, RequestFilter{})
	if len(all) != 3 {
		t.Errorf("expected 3 requests, got %d", len(all))
	}

	own, _ := ListRequests(ctx, database, RequestFilter{RequesterID: alice.ID})
	if len(own) != 2 {
		t.Errorf("expected 2 requests for alice, got %d", len(own))
	}

	pending, _ := ListRequests(ctx, database, RequestFilter{Status: model.RequestStatusPending})
	if len(pending) != 2 {
		t.Errorf("expected 2 pending requests, got %d", len(pending))
	}
}
