package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ResolutionScanner/internal/domain"
	"ResolutionScanner/internal/ports"
)

// Action is what reconciliation did with one identifier.
type Action int

const (
	ActionSkipped Action = iota
	ActionCreated
	ActionUpdated
)

// Tally counts reconciliation actions for one document.
type Tally struct {
	New     int
	Updated int
	Failed  int
}

// Written is the number of records created or updated.
func (t Tally) Written() int {
	return t.New + t.Updated
}

// Reconciler upserts case records keyed by identifier.
type Reconciler struct {
	repository ports.CaseRepository
	logger     *slog.Logger
}

// NewReconciler wires the case repository.
func NewReconciler(repo ports.CaseRepository, log *slog.Logger) *Reconciler {
	return &Reconciler{repository: repo, logger: log}
}

// Reconcile inserts record when its identifier is unknown and updates it
// otherwise. An error means nothing was written for this identifier.
func (r *Reconciler) Reconcile(ctx context.Context, record domain.CaseRecord) (Action, error) {
	if r.repository == nil {
		return ActionSkipped, errors.New("case repository is not configured")
	}

	_, err := r.repository.Find(ctx, record.Identifier)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if err := r.repository.Insert(ctx, record); err != nil {
			return ActionSkipped, fmt.Errorf("insert: %w", err)
		}
		return ActionCreated, nil
	case err != nil:
		return ActionSkipped, fmt.Errorf("lookup: %w", err)
	}

	if err := r.repository.Update(ctx, record); err != nil {
		return ActionSkipped, fmt.Errorf("update: %w", err)
	}
	return ActionUpdated, nil
}

// ReconcileAll reconciles every identifier with the same classification.
// A failing identifier is logged and counted; the rest still proceed.
func (r *Reconciler) ReconcileAll(ctx context.Context, ids []string, resolution domain.ResolutionType, source string, at time.Time) Tally {
	var tally Tally
	for _, id := range ids {
		action, err := r.Reconcile(ctx, domain.CaseRecord{
			Identifier:  id,
			Type:        resolution,
			SourceURL:   source,
			ProcessedAt: at,
		})
		if err != nil {
			tally.Failed++
			r.warn("case not persisted", "identifier", id, "source", source, "error", err)
			continue
		}

		switch action {
		case ActionCreated:
			tally.New++
			r.debug("case created", "identifier", id, "type", resolution)
		case ActionUpdated:
			tally.Updated++
			r.debug("case updated", "identifier", id, "type", resolution)
		}
	}
	return tally
}

func (r *Reconciler) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func (r *Reconciler) warn(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
