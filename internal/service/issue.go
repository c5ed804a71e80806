package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/logistika/internal/model"
	"github.com/erazemk/logistika/internal/store"
)

// DirectIssue hands out stock without a prior request.
type DirectIssue struct {
	ItemName        string `json:"item_name"`
	Quantity        int    `json:"quantity"`
	RecipientUserID *int64 `json:"recipient_user_id"`
	RecipientName   string `json:"recipient_name"`
	Purpose         string `json:"purpose"`
	Remarks         string `json:"remarks"`
}

// IssueOutcome is the recorded issuance plus the ledger's low-stock advisory.
type IssueOutcome struct {
	Issuance  *model.Issuance `json:"issuance"`
	Remaining int             `json:"remaining"`
	LowStock  bool            `json:"low_stock"`
}

// IssueDirect deducts stock and records an in-use issuance in one transaction.
func (e *Engine) IssueDirect(ctx context.Context, actor model.Actor, in DirectIssue) (*IssueOutcome, error) {
	if !actor.Role.CanFulfill() {
		return nil, forbidden(actor, "issue stock", model.Role.CanFulfill)
	}

	in.ItemName = strings.TrimSpace(in.ItemName)
	in.RecipientName = strings.TrimSpace(in.RecipientName)
	if in.ItemName == "" {
		return nil, &model.ValidationError{Field: "item_name", Reason: "is required"}
	}
	if in.Quantity <= 0 {
		return nil, &model.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	recipient := model.Recipient{UserID: in.RecipientUserID, Name: in.RecipientName}
	if recipient.Empty() {
		return nil, &model.ValidationError{Field: "recipient", Reason: "a user or a name is required"}
	}
	if in.RecipientUserID != nil {
		u, err := store.GetUser(ctx, e.DB, *in.RecipientUserID)
		if err != nil {
			return nil, err
		}
		if u == nil || u.DeletedAt != nil {
			return nil, &model.ValidationError{Field: "recipient_user_id", Reason: "does not name an active user"}
		}
	}

	out, err := audited(ctx, e, actor, "issuance.create", model.EntityIssuance, nil, func() (*IssueOutcome, error) {
		out := &IssueOutcome{}
		err := store.WithTx(ctx, e.DB, func(tx *sqlx.Tx) error {
			deduction, err := store.DeductStock(ctx, tx, in.ItemName, in.Quantity, actor.ID)
			if err != nil {
				return err
			}
			out.Remaining = deduction.NewQuantity
			out.LowStock = deduction.LowStock

			out.Issuance, err = store.RecordIssuance(ctx, tx, model.Issuance{
				StockItemID:     deduction.Item.ID,
				Quantity:        deduction.Deducted,
				Unit:            deduction.Item.Unit,
				RecipientUserID: recipient.UserID,
				RecipientName:   recipient.Name,
				IssuedBy:        actor.ID,
				Purpose:         in.Purpose,
				Remarks:         in.Remarks,
				Status:          model.IssuanceStatusInUse,
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	e.Log.Info().Int64("issuance_id", out.Issuance.ID).Str("item", in.ItemName).Int("quantity", in.Quantity).
		Int("remaining", out.Remaining).Str("by", actor.Username).Msg("stock issued")
	if out.LowStock {
		e.Log.Warn().Str("item", in.ItemName).Int("remaining", out.Remaining).Msg("stock at or below minimum")
	}
	if in.RecipientUserID != nil {
		e.notify(ctx, *in.RecipientUserID, withRemark(
			fmt.Sprintf("You were issued %d %s of %s.", in.Quantity, out.Issuance.Unit, in.ItemName),
			in.Remarks,
		))
	}

	return out, nil
}

// ListIssuances returns journal entries. Users outside the fulfillment
// and approval roles only see issuances made to them.
func (e *Engine) ListIssuances(ctx context.Context, actor model.Actor, f store.IssuanceFilter) ([]model.Issuance, error) {
	if !canSeeAllRequests(actor.Role) {
		f.RecipientUserID = actor.ID
	}
	f.Status = normalizeStatus(f.Status)
	return store.ListIssuances(ctx, e.DB, f)
}
