package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Result codes for rejected transitions.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeIllegalTransition  = "ILLEGAL_TRANSITION"
	CodePreconditionNotMet = "PRECONDITION_NOT_MET"
)

// TransitionResult reports the outcome of a transition attempt as data.
// Rejections are recoverable and carry a message for the caller to render;
// they are never raised as errors across the engine boundary.
type TransitionResult struct {
	Success bool         `json:"success"`
	Code    string       `json:"code,omitempty"`
	Message string       `json:"message"`
	Order   *model.Order `json:"order,omitempty"`
}

// Store is the record-store surface the engine needs. UpdateOrder merges the
// patch and applies the store's normalization rules (see model.OrderPatch).
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, patch model.OrderPatch) (*model.Order, error)
}

// StatsRecomputer recomputes a customer's derived statistics from its order
// set. Invoked after every successful transition.
type StatsRecomputer interface {
	RecomputeStats(ctx context.Context, customerID uuid.UUID) error
}

// AuditLogger records who changed what.
type AuditLogger interface {
	Log(ctx context.Context, entry *model.AuditLog) error
}

// TxRunner runs a unit of work transactionally.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// Broadcaster pushes an event to connected clients. May be nil.
type Broadcaster interface {
	BroadcastEvent(event string, data interface{})
}

// Engine performs status changes against the record store. It is the single
// writer of Order.Status.
type Engine struct {
	store Store
	stats StatsRecomputer
	audit AuditLogger
	tx    TxRunner
	hub   Broadcaster
	log   *zap.Logger
}

func NewEngine(store Store, stats StatsRecomputer, audit AuditLogger, tx TxRunner, hub Broadcaster, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: store, stats: stats, audit: audit, tx: tx, hub: hub, log: log}
}

// TransitionStatus moves the order to target if the graph allows it.
//
// The full patch — status change, edge side effect, caller extras (caller
// wins on conflict) — commits in one transaction together with the audit
// entry and the customer stats recompute, or not at all. The returned error
// is reserved for storage faults; workflow rejections come back inside the
// result.
func (e *Engine) TransitionStatus(ctx context.Context, orderID uuid.UUID, target model.OrderStatus, extra *model.OrderPatch, actor string) (TransitionResult, error) {
	var result TransitionResult
	now := time.Now()

	err := e.tx.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := e.store.FindByID(txCtx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result = TransitionResult{
					Code:    CodeNotFound,
					Message: fmt.Sprintf("order %s not found", orderID),
				}
				return nil
			}
			return fmt.Errorf("failed to load order: %w", err)
		}

		edge, ok := findEdge(order.Status, target)
		if !ok {
			result = TransitionResult{
				Code: CodeIllegalTransition,
				Message: fmt.Sprintf("cannot move order from %s to %s",
					Label(order.Status), Label(target)),
			}
			return nil
		}

		// Guards run again at execution time: availability may have been
		// computed against a stale snapshot.
		if edge.Guard != nil && !edge.Guard(order, now) {
			result = TransitionResult{
				Code:    CodePreconditionNotMet,
				Message: fmt.Sprintf("conditions for %q are not met", edge.Label),
			}
			return nil
		}

		from := order.Status
		patch := model.OrderPatch{Status: &target}
		if edge.Effect != nil {
			patch = patch.Merge(edge.Effect(order, now))
		}
		if extra != nil {
			patch = patch.Merge(*extra)
		}

		updated, err := e.store.UpdateOrder(txCtx, orderID, patch)
		if err != nil {
			return fmt.Errorf("failed to persist transition: %w", err)
		}

		var uid *uuid.UUID
		if parsed, parseErr := uuid.Parse(actor); parseErr == nil {
			uid = &parsed
		}
		details, _ := json.Marshal(map[string]interface{}{
			"from":  from,
			"to":    target,
			"label": edge.Label,
		})
		entry := &model.AuditLog{
			UserID:     uid,
			Action:     model.ActionOrderStatusChange,
			EntityID:   updated.ID.String(),
			EntityName: updated.OrderNumber,
			Details:    string(details),
		}
		if err := e.audit.Log(txCtx, entry); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		if updated.CustomerID != nil {
			if err := e.stats.RecomputeStats(txCtx, *updated.CustomerID); err != nil {
				return fmt.Errorf("failed to recompute customer stats: %w", err)
			}
		}

		result = TransitionResult{
			Success: true,
			Message: fmt.Sprintf("order moved to %s", Label(target)),
			Order:   updated,
		}
		return nil
	})
	if err != nil {
		return TransitionResult{}, err
	}

	if result.Success {
		e.log.Info("order status changed",
			zap.String("order_id", orderID.String()),
			zap.String("to", string(target)))
		if e.hub != nil {
			e.hub.BroadcastEvent("order.status_changed", map[string]interface{}{
				"order_id":     result.Order.ID,
				"order_number": result.Order.OrderNumber,
				"status":       result.Order.Status,
			})
		}
	}

	return result, nil
}
