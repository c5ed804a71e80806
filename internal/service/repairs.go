package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/logistika/internal/imaging"
	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/store"
)

// NewRepair describes damaged equipment or a location needing repair.
type NewRepair struct {
	Location    string `json:"location"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// RepairOutcome is the result of assessing a repair request.
type RepairOutcome struct {
	Repair      *model.RepairRequest   `json:"repair"`
	UnderRepair *model.UnderRepairItem `json:"under_repair,omitempty"`
}

// underRepairTransitions lists the legal execution-phase moves.
var underRepairTransitions = map[string][]string{
	model.UnderRepairPending:    {model.UnderRepairInProgress, model.UnderRepairCancelled},
	model.UnderRepairInProgress: {model.UnderRepairCompleted},
}

func canMoveUnderRepair(from, to string) bool {
	for _, t := range underRepairTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func validUnderRepairStatus(s string) bool {
	switch s {
	case model.UnderRepairPending, model.UnderRepairInProgress, model.UnderRepairCompleted, model.UnderRepairCancelled:
		return true
	}
	return false
}

// CreateRepairRequest files a pending repair request, storing the photo if
// one is given, and lets approval-capable users know about it.
func (e *Engine) CreateRepairRequest(ctx context.Context, actor model.Actor, in NewRepair, photo io.Reader) (*model.RepairRequest, error) {
	in.Location = strings.TrimSpace(in.Location)
	in.Priority = normalizeStatus(in.Priority)

	if in.Location == "" {
		return nil, &model.ValidationError{Field: "location", Reason: "is required"}
	}
	if in.Priority == "" {
		in.Priority = model.PriorityMedium
	}
	if !model.ValidRepairPriority(in.Priority) {
		return nil, &model.ValidationError{Field: "priority", Reason: "must be low, medium, high or urgent"}
	}

	ref := ""
	if photo != nil {
		var err error
		if ref, err = e.savePhoto(ctx, photo); err != nil {
			return nil, err
		}
	}

	r, err := audited(ctx, e, actor, "repair.create", model.EntityRepairRequest, nil, func() (*model.RepairRequest, error) {
		return store.CreateRepairRequest(ctx, e.DB, model.RepairRequest{
			Location:    in.Location,
			Description: in.Description,
			Priority:    in.Priority,
			PhotoRef:    ref,
			RequesterID: actor.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	e.Log.Info().Int64("repair_id", r.ID).Str("location", r.Location).Str("priority", r.Priority).
		Str("requester", actor.Username).Msg("repair request created")
	e.notifyRole(ctx, model.Role.CanApprove,
		fmt.Sprintf("New %s priority repair request #%d for %s.", r.Priority, r.ID, r.Location))

	return r, nil
}

// AttachRepairPhoto replaces the photo of a repair request. Only the
// requester or an approval-capable user may do so.
func (e *Engine) AttachRepairPhoto(ctx context.Context, actor model.Actor, id int64, photo io.Reader) (*model.RepairRequest, error) {
	r, err := e.GetRepairRequest(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if r.RequesterID != actor.ID && !actor.Role.CanApprove() {
		return nil, forbidden(actor, "change another user's repair photo", model.Role.CanApprove)
	}

	ref, err := e.savePhoto(ctx, photo)
	if err != nil {
		return nil, err
	}

	return audited(ctx, e, actor, "repair.photo", model.EntityRepairRequest, r, func() (*model.RepairRequest, error) {
		if err := store.SetRepairPhoto(ctx, e.DB, id, ref); err != nil {
			return nil, err
		}
		return store.GetRepairRequest(ctx, e.DB, id)
	})
}

func (e *Engine) savePhoto(ctx context.Context, r io.Reader) (string, error) {
	p, err := imaging.Process(r)
	if errors.Is(err, imaging.ErrUnsupportedFormat) || errors.Is(err, imaging.ErrTooLarge) {
		return "", &model.ValidationError{Field: "photo", Reason: err.Error()}
	}
	if err != nil {
		return "", &model.ValidationError{Field: "photo", Reason: "could not be read as an image"}
	}
	return store.SavePhoto(ctx, e.DB, p.Data, p.MIME)
}

// GetPhoto returns a stored photo.
func (e *Engine) GetPhoto(ctx context.Context, ref string) ([]byte, string, error) {
	data, mime, err := store.GetPhoto(ctx, e.DB, ref)
	if err != nil {
		return nil, "", err
	}
	if data == nil {
		return nil, "", fmt.Errorf("photo %s: %w", ref, model.ErrNotFound)
	}
	return data, mime, nil
}

// ListRepairRequests returns the repair requests visible to the actor.
func (e *Engine) ListRepairRequests(ctx context.Context, actor model.Actor, status string) ([]model.RepairRequest, error) {
	f := store.RepairFilter{Status: normalizeStatus(status)}
	if !canSeeAllRepairs(actor.Role) {
		f.RequesterID = actor.ID
	}
	return store.ListRepairRequests(ctx, e.DB, f)
}

// GetRepairRequest returns one repair request if the actor may see it.
func (e *Engine) GetRepairRequest(ctx context.Context, actor model.Actor, id int64) (*model.RepairRequest, error) {
	r, err := store.GetRepairRequest(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}
	if r == nil || (r.RequesterID != actor.ID && !canSeeAllRepairs(actor.Role)) {
		return nil, &model.NotFoundError{Entity: model.EntityRepairRequest, ID: id}
	}
	return r, nil
}

// GetRepairDetail returns a repair request together with the under-repair
// item opened for it, if it has been approved.
func (e *Engine) GetRepairDetail(ctx context.Context, actor model.Actor, id int64) (*RepairOutcome, error) {
	r, err := e.GetRepairRequest(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	item, err := store.GetUnderRepairByRequest(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}
	return &RepairOutcome{Repair: r, UnderRepair: item}, nil
}

func canSeeAllRepairs(r model.Role) bool {
	return r.CanApprove() || r.CanExecuteRepairs()
}

// ListUnderRepairItems returns execution-phase records. Requesters only see
// those opened for their own repair requests.
func (e *Engine) ListUnderRepairItems(ctx context.Context, actor model.Actor, status string) ([]model.UnderRepairItem, error) {
	items, err := store.ListUnderRepairItems(ctx, e.DB, normalizeStatus(status))
	if err != nil || canSeeAllRepairs(actor.Role) {
		return items, err
	}

	own := items[:0]
	for _, it := range items {
		if it.RequesterID == actor.ID {
			own = append(own, it)
		}
	}
	return own, nil
}

// AssessRepair approves or rejects a pending repair request. Approval opens
// exactly one under-repair item in the same transaction.
func (e *Engine) AssessRepair(ctx context.Context, actor model.Actor, id int64, target, remark string) (*RepairOutcome, error) {
	target = normalizeStatus(target)
	switch target {
	case model.RepairStatusPending, model.RepairStatusApproved, model.RepairStatusRejected, model.RepairStatusCompleted:
	default:
		return nil, &model.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown repair status %q", target)}
	}

	r, err := store.GetRepairRequest(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, &model.NotFoundError{Entity: model.EntityRepairRequest, ID: id}
	}

	if r.Status != model.RepairStatusPending ||
		(target != model.RepairStatusApproved && target != model.RepairStatusRejected) {
		return nil, &model.TransitionError{Entity: model.EntityRepairRequest, From: r.Status, To: target}
	}
	if !actor.Role.CanApprove() {
		return nil, forbidden(actor, "approve or reject repair requests", model.Role.CanApprove)
	}

	out, err := audited(ctx, e, actor, "repair."+target, model.EntityRepairRequest, r, func() (*RepairOutcome, error) {
		out := &RepairOutcome{}
		err := store.WithTx(ctx, e.DB, func(tx *sqlx.Tx) error {
			ok, err := store.UpdateRepairStatus(ctx, tx, id, model.RepairStatusPending, target, remark)
			if err != nil {
				return err
			}
			cur, err := store.GetRepairRequest(ctx, tx, id)
			if err != nil {
				return err
			}
			if !ok {
				return &model.TransitionError{Entity: model.EntityRepairRequest, From: cur.Status, To: target}
			}
			out.Repair = cur

			if target == model.RepairStatusApproved {
				out.UnderRepair, err = store.CreateUnderRepairItem(ctx, tx, cur)
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	e.Log.Info().Int64("repair_id", id).Str("status", target).Str("by", actor.Username).Msg("repair request assessed")
	e.notify(ctx, r.RequesterID, withRemark(
		fmt.Sprintf("Your repair request #%d for %s was %s.", r.ID, r.Location, target),
		remark,
	))

	return out, nil
}

// AdvanceRepair moves an under-repair item along its execution lifecycle.
// Completing the item also completes its repair request.
func (e *Engine) AdvanceRepair(ctx context.Context, actor model.Actor, id int64, target, remarks string) (*model.UnderRepairItem, error) {
	target = normalizeStatus(target)
	if !validUnderRepairStatus(target) {
		return nil, &model.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown repair status %q", target)}
	}

	item, err := store.GetUnderRepairItem(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &model.NotFoundError{Entity: model.EntityUnderRepair, ID: id}
	}

	if !canMoveUnderRepair(item.Status, target) {
		return nil, &model.TransitionError{Entity: model.EntityUnderRepair, From: item.Status, To: target}
	}
	if !actor.Role.CanExecuteRepairs() {
		return nil, forbidden(actor, "carry out repairs", model.Role.CanExecuteRepairs)
	}

	updated, err := audited(ctx, e, actor, "under_repair."+target, model.EntityUnderRepair, item, func() (*model.UnderRepairItem, error) {
		var updated *model.UnderRepairItem
		err := store.WithTx(ctx, e.DB, func(tx *sqlx.Tx) error {
			ok, err := store.UpdateUnderRepairStatus(ctx, tx, id, item.Status, target, remarks)
			if err != nil {
				return err
			}
			updated, err = store.GetUnderRepairItem(ctx, tx, id)
			if err != nil {
				return err
			}
			if !ok {
				return &model.TransitionError{Entity: model.EntityUnderRepair, From: updated.Status, To: target}
			}

			if target == model.UnderRepairCompleted {
				closed, err := store.UpdateRepairStatus(ctx, tx, item.RepairRequestID,
					model.RepairStatusApproved, model.RepairStatusCompleted, "")
				if err != nil {
					return err
				}
				if !closed {
					e.Log.Warn().Int64("repair_id", item.RepairRequestID).Msg("repair request was not approved when its repair completed")
				}
			}
			return nil
		})
		return updated, err
	})
	if err != nil {
		return nil, err
	}

	e.Log.Info().Int64("under_repair_id", id).Str("status", target).Str("by", actor.Username).Msg("repair advanced")
	e.notify(ctx, item.RequesterID, withRemark(
		fmt.Sprintf("Repair at %s (request #%d) is now %s.", item.Location, item.RepairRequestID, strings.ReplaceAll(target, "_", " ")),
		remarks,
	))

	return updated, nil
}
