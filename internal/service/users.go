package service

import (
	"context"
	"strings"

	"github.com/erazemk/logistika/internal/auth"
	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/store"
)

func requireAdministrative(actor model.Actor) error {
	if !actor.Role.IsAdministrative() {
		return forbidden(actor, "manage users", model.Role.IsAdministrative)
	}
	return nil
}

func parseRole(s string) (model.Role, error) {
	role, ok := model.ParseRole(s)
	if !ok {
		return "", &model.ValidationError{Field: "role", Reason: "must be User, Admin, LogisticsOfficer or SystemAdmin"}
	}
	return role, nil
}

// CreateUser adds an account.
func (e *Engine) CreateUser(ctx context.Context, actor model.Actor, username, password, role string) (*model.User, error) {
	if err := requireAdministrative(actor); err != nil {
		return nil, err
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, &model.ValidationError{Field: "username", Reason: "is required"}
	}
	r, err := parseRole(role)
	if err != nil {
		return nil, err
	}
	if err := model.ValidatePassword(password); err != nil {
		return nil, &model.ValidationError{Field: "password", Reason: err.Error()}
	}

	existing, err := store.GetUserByUsername(ctx, e.DB, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &model.ValidationError{Field: "username", Reason: "already exists"}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := audited(ctx, e, actor, "user.create", model.EntityUser, nil, func() (*model.User, error) {
		return store.CreateUser(ctx, e.DB, username, hash, r)
	})
	if err != nil {
		return nil, err
	}

	e.Log.Info().Str("user", user.Username).Str("role", string(user.Role)).Str("by", actor.Username).Msg("user created")
	return user, nil
}

// ListUsers returns all active accounts.
func (e *Engine) ListUsers(ctx context.Context, actor model.Actor) ([]model.User, error) {
	if err := requireAdministrative(actor); err != nil {
		return nil, err
	}
	return store.ListUsers(ctx, e.DB)
}

// GetUser returns an active account.
func (e *Engine) GetUser(ctx context.Context, actor model.Actor, id int64) (*model.User, error) {
	if err := requireAdministrative(actor); err != nil {
		return nil, err
	}
	return e.activeUser(ctx, id)
}

func (e *Engine) activeUser(ctx context.Context, id int64) (*model.User, error) {
	u, err := store.GetUser(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}
	if u == nil || u.DeletedAt != nil {
		return nil, &model.NotFoundError{Entity: model.EntityUser, ID: id}
	}
	return u, nil
}

// UpdateUserRole changes an account's role. Administrators cannot change
// their own role, so the system always keeps one.
func (e *Engine) UpdateUserRole(ctx context.Context, actor model.Actor, id int64, role string) (*model.User, error) {
	if err := requireAdministrative(actor); err != nil {
		return nil, err
	}
	r, err := parseRole(role)
	if err != nil {
		return nil, err
	}
	if id == actor.ID {
		return nil, &model.ValidationError{Field: "role", Reason: "cannot change your own role"}
	}

	before, err := e.activeUser(ctx, id)
	if err != nil {
		return nil, err
	}

	return audited(ctx, e, actor, "user.update", model.EntityUser, before, func() (*model.User, error) {
		if err := store.UpdateUser(ctx, e.DB, id, r); err != nil {
			return nil, err
		}
		return store.GetUser(ctx, e.DB, id)
	})
}

// ResetPassword sets another account's password.
func (e *Engine) ResetPassword(ctx context.Context, actor model.Actor, id int64, password string) error {
	if err := requireAdministrative(actor); err != nil {
		return err
	}
	if err := model.ValidatePassword(password); err != nil {
		return &model.ValidationError{Field: "password", Reason: err.Error()}
	}

	target, err := e.activeUser(ctx, id)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = audited(ctx, e, actor, "user.password_reset", model.EntityUser, nil, func() (*model.User, error) {
		return target, store.UpdateUserPassword(ctx, e.DB, id, hash)
	})
	return err
}

// DeleteUser soft-deletes an account. Administrators cannot delete themselves.
func (e *Engine) DeleteUser(ctx context.Context, actor model.Actor, id int64) error {
	if err := requireAdministrative(actor); err != nil {
		return err
	}
	if id == actor.ID {
		return &model.ValidationError{Field: "id", Reason: "cannot delete your own account"}
	}

	before, err := e.activeUser(ctx, id)
	if err != nil {
		return err
	}

	_, err = audited(ctx, e, actor, "user.delete", model.EntityUser, before, func() (*model.User, error) {
		if err := store.DeleteUser(ctx, e.DB, id); err != nil {
			return nil, err
		}
		return store.GetUser(ctx, e.DB, id)
	})
	if err == nil {
		e.Log.Info().Str("user", before.Username).Str("by", actor.Username).Msg("user deleted")
	}
	return err
}

// ChangeOwnPassword replaces the actor's password after checking the current one.
func (e *Engine) ChangeOwnPassword(ctx context.Context, actor model.Actor, current, next string) error {
	user, err := e.activeUser(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, current) {
		return &model.ValidationError{Field: "current_password", Reason: "is incorrect"}
	}
	if err := model.ValidatePassword(next); err != nil {
		return &model.ValidationError{Field: "new_password", Reason: err.Error()}
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	if err := store.UpdateUserPassword(ctx, e.DB, actor.ID, hash); err != nil {
		return err
	}

	e.Log.Info().Str("user", actor.Username).Msg("user changed own password")
	return nil
}
