package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/store"
)

// Notifier delivers a message to a user.
type Notifier interface {
	Notify(ctx context.Context, userID int64, message string) error
}

// StoreNotifier persists notifications in the notifications table.
type StoreNotifier struct {
	DB *sqlx.DB
}

// Notify stores the message for the user.
func (n StoreNotifier) Notify(ctx context.Context, userID int64, message string) error {
	_, err := store.CreateNotification(ctx, n.DB, userID, message)
	return err
}

// notifyRole sends a message to every active user whose role has capability.
func (e *Engine) notifyRole(ctx context.Context, capability func(model.Role) bool, message string) {
	users, err := store.ListUsersByRole(ctx, e.DB, model.RolesWith(capability)...)
	if err != nil {
		e.Log.Warn().Err(err).Msg("listing notification recipients")
		return
	}
	for _, u := range users {
		e.notify(ctx, u.ID, message)
	}
}

// ListNotifications returns the actor's notifications.
func (e *Engine) ListNotifications(ctx context.Context, actor model.Actor, unreadOnly bool) ([]model.Notification, error) {
	return store.ListNotifications(ctx, e.DB, actor.ID, unreadOnly)
}

// MarkNotificationRead marks one of the actor's notifications read.
func (e *Engine) MarkNotificationRead(ctx context.Context, actor model.Actor, id int64) error {
	ok, err := store.MarkNotificationRead(ctx, e.DB, id, actor.ID)
	if err != nil {
		return err
	}
	if !ok {
		return &model.NotFoundError{Entity: model.EntityNotification, ID: id}
	}
	return nil
}
