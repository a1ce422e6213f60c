// Package review implements the manual disposition gate for consolidated
// records. Items start pending and move to exactly one terminal state; no
// transition is ever automatic.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ridebase/catalog-cli/internal/model"
	"github.com/ridebase/catalog-cli/internal/store"
)

// Action is a review transition requested by the caller.
type Action string

const (
	ActionAccept Action = "accept"
	ActionReject Action = "reject"
	ActionFlag   Action = "flag"
)

// ParseAction converts a user-supplied string to an Action.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionAccept, ActionReject, ActionFlag:
		return Action(s), nil
	}
	return "", eris.Errorf("review: unknown action %q", s)
}

func (a Action) status() model.ReviewStatus {
	switch a {
	case ActionAccept:
		return model.ReviewAccepted
	case ActionReject:
		return model.ReviewRejected
	default:
		return model.ReviewFlagged
	}
}

// TransitionError reports an attempt to transition an item that is already in
// a terminal state.
type TransitionError struct {
	ID   string
	From model.ReviewStatus
	To   model.ReviewStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("review: item %s is %s, cannot transition to %s", e.ID, e.From, e.To)
}

// Gate owns review items for the duration of a review session, backed by the
// local store.
type Gate struct {
	store store.Store
}

// NewGate creates a review gate over the given store.
func NewGate(st store.Store) *Gate {
	return &Gate{store: st}
}

// Enqueue creates a pending review item for a consolidated record plus its
// generated description.
func (g *Gate) Enqueue(ctx context.Context, rec *model.ConsolidatedRecord, description string, descConfidence float64) (*model.ReviewItem, error) {
	now := time.Now().UTC()
	item := &model.ReviewItem{
		ID:                    uuid.New().String(),
		SKU:                   rec.SKU,
		Record:                *rec,
		Description:           description,
		DescriptionConfidence: descConfidence,
		Status:                model.ReviewPending,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := g.store.CreateReviewItem(ctx, item); err != nil {
		return nil, err
	}
	zap.L().Info("review item queued",
		zap.String("sku", item.SKU),
		zap.String("id", item.ID),
		zap.String("recommendation", string(rec.Recommendation)),
	)
	return item, nil
}

// Pending lists items awaiting disposition, newest first.
func (g *Gate) Pending(ctx context.Context, limit int) ([]model.ReviewItem, error) {
	return g.store.ListReviewItems(ctx, store.ReviewFilter{Status: model.ReviewPending, Limit: limit})
}

// Accept marks a pending item accepted.
func (g *Gate) Accept(ctx context.Context, id string) (*model.ReviewItem, error) {
	return g.transition(ctx, id, model.ReviewAccepted, nil)
}

// Reject marks a pending item rejected.
func (g *Gate) Reject(ctx context.Context, id string) (*model.ReviewItem, error) {
	return g.transition(ctx, id, model.ReviewRejected, nil)
}

// Flag marks a pending item flagged for escalation.
func (g *Gate) Flag(ctx context.Context, id string) (*model.ReviewItem, error) {
	return g.transition(ctx, id, model.ReviewFlagged, nil)
}

// Edit applies caller-supplied field overrides and marks the item edited. The
// original conflicts and scores are kept for audit; an edited record is
// authoritative regardless of its original confidence, so scores are not
// recomputed.
func (g *Gate) Edit(ctx context.Context, id string, overrides map[string]any) (*model.ReviewItem, error) {
	for key := range overrides {
		if !model.KnownField(key) {
			return nil, eris.Errorf("review: unknown field %q in edit", key)
		}
	}
	return g.transition(ctx, id, model.ReviewEdited, overrides)
}

func (g *Gate) transition(ctx context.Context, id string, to model.ReviewStatus, overrides map[string]any) (*model.ReviewItem, error) {
	item, err := g.store.GetReviewItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, eris.Errorf("review: item %s not found", id)
	}
	if item.Status.Terminal() {
		return nil, &TransitionError{ID: id, From: item.Status, To: to}
	}

	if len(overrides) > 0 {
		fields := make(map[string]any, len(item.Record.Fields)+len(overrides))
		for k, v := range item.Record.Fields {
			fields[k] = v
		}
		for k, v := range overrides {
			fields[k] = v
		}
		item.Record.Fields = fields
	}

	item.Status = to
	item.UpdatedAt = time.Now().UTC()
	if err := g.store.UpdateReviewItem(ctx, item); err != nil {
		return nil, err
	}

	zap.L().Info("review transition",
		zap.String("sku", item.SKU),
		zap.String("id", item.ID),
		zap.String("status", string(to)),
	)
	return item, nil
}

// BatchApply applies the same action to every SKU's newest review item,
// reporting per-SKU outcomes independently. One SKU's failure never aborts
// the rest.
func (g *Gate) BatchApply(ctx context.Context, skus []string, action Action) map[string]error {
	results := make(map[string]error, len(skus))
	for _, s := range skus {
		item, err := g.store.GetReviewItemBySKU(ctx, s)
		if err != nil {
			results[s] = err
			continue
		}
		if item == nil {
			results[s] = eris.Errorf("review: no item for SKU %s", s)
			continue
		}
		_, err = g.transition(ctx, item.ID, action.status(), nil)
		results[s] = err
	}
	return results
}
