// Package service holds the request and repair state machines. Every
// mutating operation authorizes the actor, runs its storage writes in one
// transaction, and afterwards notifies and audits without letting either
// side effect undo the committed change.
package service

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/erazemk/logistika/internal/model"
)

// Engine carries the collaborators shared by all operations.
type Engine struct {
	DB       *sqlx.DB
	Notifier Notifier
	Auditor  Auditor
	Log      zerolog.Logger
}

// New returns an Engine that notifies and audits through the database.
func New(db *sqlx.DB, log zerolog.Logger) *Engine {
	return &Engine{
		DB:       db,
		Notifier: StoreNotifier{DB: db},
		Auditor:  StoreAuditor{DB: db},
		Log:      log,
	}
}

// forbidden builds the error for an actor lacking capability.
func forbidden(actor model.Actor, action string, capability func(model.Role) bool) error {
	return &model.ForbiddenError{
		Action:  action,
		Role:    actor.Role,
		Allowed: model.RolesWith(capability),
	}
}

func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// notify delivers a message to one user. Failures are logged only.
func (e *Engine) notify(ctx context.Context, userID int64, message string) {
	if e.Notifier == nil || userID == 0 {
		return
	}
	if err := e.Notifier.Notify(ctx, userID, message); err != nil {
		e.Log.Warn().Err(err).Int64("user_id", userID).Msg("notification not delivered")
	}
}

// withRemark appends a remark to a notification message.
func withRemark(message, remark string) string {
	if remark == "" {
		return message
	}
	return message + " Remark: " + remark
}
