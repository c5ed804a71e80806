package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/logistika/internal/db"
	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/store"
)

type fixture struct {
	engine    *Engine
	db        *sqlx.DB
	requester model.Actor
	admin     model.Actor
	officer   model.Actor
	root      model.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	f := &fixture{
		engine: New(database, zerolog.Nop()),
		db:     database,
	}
	f.requester = f.actor(t, "private", model.RoleUser)
	f.admin = f.actor(t, "captain", model.RoleAdmin)
	f.officer = f.actor(t, "quartermaster", model.RoleLogisticsOfficer)
	f.root = f.actor(t, "root", model.RoleSystemAdmin)
	return f
}

func (f *fixture) actor(t *testing.T, username string, role model.Role) model.Actor {
	t.Helper()
	u, err := store.CreateUser(context.Background(), f.db, username, "hash", role)
	require.NoError(t, err)
	return model.Actor{ID: u.ID, Username: u.Username, Role: u.Role}
}

func (f *fixture) stock(t *testing.T, name string, quantity, minQuantity int) *model.StockItem {
	t.Helper()
	item, err := f.engine.CreateStockItem(context.Background(), f.officer, StockInput{
		Name:        name,
		Quantity:    quantity,
		MinQuantity: minQuantity,
	})
	require.NoError(t, err)
	return item
}

// approvedRequest files a request as the requester and approves it as admin.
func (f *fixture) approvedRequest(t *testing.T, item string, quantity int) *model.Request {
	t.Helper()
	ctx := context.Background()
	req, err := f.engine.CreateRequest(ctx, f.requester, NewRequest{ItemName: item, Quantity: quantity})
	require.NoError(t, err)
	out, err := f.engine.TransitionRequest(ctx, f.admin, req.ID, model.RequestStatusApproved, TransitionOptions{})
	require.NoError(t, err)
	return out.Request
}

func (f *fixture) quantity(t *testing.T, name string) int {
	t.Helper()
	item, err := store.GetStockItemByName(context.Background(), f.db, name)
	require.NoError(t, err)
	require.NotNil(t, item)
	return item.Quantity
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, int64, string) error {
	return errors.New("mail server down")
}

type failingAuditor struct{}

func (failingAuditor) Record(context.Context, model.AuditEntry) error {
	return errors.New("audit store down")
}
