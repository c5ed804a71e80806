package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/store"
)

// DefaultCompletionRemark is put on the issuance of a completed request
// when the officer gives no remark.
const DefaultCompletionRemark = "Completed by Logistics Officer"

// NewRequest is a requester's ask for stock.
type NewRequest struct {
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
	Purpose  string `json:"purpose"`
	Priority string `json:"priority"`
}

// TransitionOptions carries the optional inputs of a request transition.
type TransitionOptions struct {
	Remark string `json:"remark"`
	// Quantity overrides the requested quantity on approval when positive.
	Quantity int `json:"quantity"`
}

// RequestOutcome is the result of a request transition. The issuance and
// stock fields are only set when the request was completed.
type RequestOutcome struct {
	Request    *model.Request  `json:"request"`
	Issuance   *model.Issuance `json:"issuance,omitempty"`
	Remaining  int             `json:"remaining,omitempty"`
	LowStock   bool            `json:"low_stock,omitempty"`
	Superseded int64           `json:"superseded,omitempty"`
}

// CreateRequest files a new pending request on behalf of the actor.
func (e *Engine) CreateRequest(ctx context.Context, actor model.Actor, in NewRequest) (*model.Request, error) {
	in.ItemName = strings.TrimSpace(in.ItemName)
	in.Priority = normalizeStatus(in.Priority)

	if in.ItemName == "" {
		return nil, &model.ValidationError{Field: "item_name", Reason: "is required"}
	}
	if in.Quantity <= 0 {
		return nil, &model.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if in.Priority == "" {
		in.Priority = model.PriorityNormal
	}
	if !model.ValidRequestPriority(in.Priority) {
		return nil, &model.ValidationError{Field: "priority", Reason: "must be low, normal, high or urgent"}
	}

	if in.Unit == "" {
		item, err := store.GetStockItemByName(ctx, e.DB, in.ItemName)
		if err != nil {
			return nil, err
		}
		if item != nil {
			in.Unit = item.Unit
		}
	}

	return audited(ctx, e, actor, "request.create", model.EntityRequest, nil, func() (*model.Request, error) {
		req, err := store.CreateRequest(ctx, e.DB, model.Request{
			ItemName:    in.ItemName,
			Quantity:    in.Quantity,
			Unit:        in.Unit,
			Purpose:     in.Purpose,
			Priority:    in.Priority,
			RequesterID: actor.ID,
		})
		if err != nil {
			return nil, err
		}
		e.Log.Info().Int64("request_id", req.ID).Str("item", req.ItemName).Int("quantity", req.Quantity).
			Str("requester", actor.Username).Msg("request created")
		return req, nil
	})
}

// canSeeAllRequests reports whether a role works the request queue rather
// than only its own requests.
func canSeeAllRequests(r model.Role) bool {
	return r.CanApprove() || r.CanFulfill()
}

// ListRequests returns the requests visible to the actor.
func (e *Engine) ListRequests(ctx context.Context, actor model.Actor, status string) ([]model.Request, error) {
	f := store.RequestFilter{Status: normalizeStatus(status)}
	if !canSeeAllRequests(actor.Role) {
		f.RequesterID = actor.ID
	}
	return store.ListRequests(ctx, e.DB, f)
}

// GetRequest returns one request if the actor may see it.
func (e *Engine) GetRequest(ctx context.Context, actor model.Actor, id int64) (*model.Request, error) {
	req, err := store.GetRequest(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}
	if req == nil || (req.RequesterID != actor.ID && !canSeeAllRequests(actor.Role)) {
		return nil, &model.NotFoundError{Entity: model.EntityRequest, ID: id}
	}
	return req, nil
}

// TransitionRequest moves a request to target. Approval and rejection
// need an approval-capable role; completion needs a fulfillment-capable
// role and deducts stock, records the issuance, closes earlier in-use
// issuances of the item to the requester and marks the request completed,
// all in one transaction.
func (e *Engine) TransitionRequest(ctx context.Context, actor model.Actor, id int64, target string, opts TransitionOptions) (*RequestOutcome, error) {
	target = normalizeStatus(target)
	if !model.ValidRequestStatus(target) {
		return nil, &model.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown request status %q", target)}
	}
	if opts.Quantity < 0 {
		return nil, &model.ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	req, err := store.GetRequest(ctx, e.DB, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, &model.NotFoundError{Entity: model.EntityRequest, ID: id}
	}

	switch {
	case req.Status == model.RequestStatusPending &&
		(target == model.RequestStatusApproved || target == model.RequestStatusRejected):
		if !actor.Role.CanApprove() {
			return nil, forbidden(actor, "approve or reject requests", model.Role.CanApprove)
		}
		return audited(ctx, e, actor, "request."+target, model.EntityRequest, req, func() (*RequestOutcome, error) {
			return e.decideRequest(ctx, actor, req, target, opts)
		})

	case req.Status == model.RequestStatusApproved && target == model.RequestStatusCompleted:
		if !actor.Role.CanFulfill() {
			return nil, forbidden(actor, "complete requests", model.Role.CanFulfill)
		}
		return audited(ctx, e, actor, "request.complete", model.EntityRequest, req, func() (*RequestOutcome, error) {
			return e.completeRequest(ctx, actor, req, opts.Remark)
		})
	}

	return nil, &model.TransitionError{Entity: model.EntityRequest, From: req.Status, To: target}
}

func (e *Engine) decideRequest(ctx context.Context, actor model.Actor, req *model.Request, target string, opts TransitionOptions) (*RequestOutcome, error) {
	quantity := 0
	if target == model.RequestStatusApproved {
		quantity = opts.Quantity
	}

	ok, err := store.UpdateRequestStatus(ctx, e.DB, req.ID, model.RequestStatusPending, target, opts.Remark, quantity)
	if err != nil {
		return nil, err
	}

	updated, err := store.GetRequest(ctx, e.DB, req.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &model.TransitionError{Entity: model.EntityRequest, From: updated.Status, To: target}
	}

	e.Log.Info().Int64("request_id", req.ID).Str("status", target).Str("by", actor.Username).Msg("request decided")
	e.notify(ctx, req.RequesterID, withRemark(
		fmt.Sprintf("Your request for %d %s of %s was %s.", updated.Quantity, updated.Unit, updated.ItemName, target),
		opts.Remark,
	))

	return &RequestOutcome{Request: updated}, nil
}

// errAfterDeduction marks failures that happened once stock had been
// deducted inside the completion transaction.
type errAfterDeduction struct{ err error }

func (e errAfterDeduction) Error() string { return e.err.Error() }
func (e errAfterDeduction) Unwrap() error { return e.err }

func (e *Engine) completeRequest(ctx context.Context, actor model.Actor, req *model.Request, remark string) (*RequestOutcome, error) {
	if remark == "" {
		remark = DefaultCompletionRemark
	}

	out := &RequestOutcome{}
	err := store.WithTx(ctx, e.DB, func(tx *sqlx.Tx) error {
		// The transaction holds the write lock, so this read is current.
		cur, err := store.GetRequest(ctx, tx, req.ID)
		if err != nil {
			return err
		}
		if cur.Status != model.RequestStatusApproved {
			return &model.TransitionError{Entity: model.EntityRequest, From: cur.Status, To: model.RequestStatusCompleted}
		}

		deduction, err := store.DeductStock(ctx, tx, cur.ItemName, cur.Quantity, actor.ID)
		if err != nil {
			return err
		}
		out.Remaining = deduction.NewQuantity
		out.LowStock = deduction.LowStock

		requester := cur.RequesterID
		iss, err := store.RecordIssuance(ctx, tx, model.Issuance{
			StockItemID:     deduction.Item.ID,
			Quantity:        deduction.Deducted,
			Unit:            cur.Unit,
			RecipientUserID: &requester,
			IssuedBy:        actor.ID,
			Purpose:         cur.Purpose,
			Remarks:         remark,
			Status:          model.IssuanceStatusCompleted,
			RequestID:       &cur.ID,
		})
		if err != nil {
			return errAfterDeduction{err}
		}
		out.Issuance = iss

		out.Superseded, err = store.SupersedeIssuances(ctx, tx, deduction.Item.ID,
			model.Recipient{UserID: &requester}, model.IssuanceStatusInUse, model.IssuanceStatusCompleted)
		if err != nil {
			return errAfterDeduction{err}
		}

		ok, err := store.UpdateRequestStatus(ctx, tx, cur.ID, model.RequestStatusApproved, model.RequestStatusCompleted, "", 0)
		if err != nil {
			return errAfterDeduction{err}
		}
		if !ok {
			return errAfterDeduction{fmt.Errorf("request %d changed during completion", cur.ID)}
		}

		out.Request, err = store.GetRequest(ctx, tx, cur.ID)
		if err != nil {
			return errAfterDeduction{err}
		}
		return nil
	})

	var after errAfterDeduction
	if errors.As(err, &after) {
		e.Log.Error().Err(after.err).Int64("request_id", req.ID).Str("item", req.ItemName).
			Msg("request completion failed after stock deduction; transaction rolled back")
		return nil, fmt.Errorf("completing request %d: %w: %w", req.ID, model.ErrInconsistent, after.err)
	}
	if err != nil {
		return nil, err
	}

	e.Log.Info().Int64("request_id", req.ID).Str("item", req.ItemName).Int("quantity", req.Quantity).
		Int("remaining", out.Remaining).Str("by", actor.Username).Msg("request completed")
	if out.LowStock {
		e.Log.Warn().Str("item", req.ItemName).Int("remaining", out.Remaining).Msg("stock at or below minimum")
	}

	e.notify(ctx, req.RequesterID, withRemark(
		fmt.Sprintf("Your request for %d %s of %s has been fulfilled.", req.Quantity, req.Unit, req.ItemName),
		remark,
	))

	return out, nil
}
