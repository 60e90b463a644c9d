// Package kanban implements the board-side interaction model for the
// lead pipeline: an in-memory lead collection partitioned into stage
// columns, with an optimistic drag gesture machine on top.
//
// Hovering already rewrites local state to drive live feedback, so the
// only reconciliation point is drag end: a commit failure restores the
// immutable pre-gesture snapshot wholesale instead of undoing
// individual hover diffs, which would compound errors across hovers.
package kanban

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
)

// StageSetter commits a stage change to the server. Implemented by the
// lead service directly or by an HTTP client in board frontends.
type StageSetter interface {
	SetStage(ctx context.Context, leadID uuid.UUID, stage models.LeadStage) error
}

// GestureState tracks the drag gesture machine.
type GestureState int

const (
	// StateIdle means no gesture is in flight.
	StateIdle GestureState = iota
	// StateDragging means a lead is grabbed and hover events rewrite
	// local state.
	StateDragging
	// StateCommitting means a stage change is being sent to the server.
	// No new gesture may start until it resolves.
	StateCommitting
)

// Outcome describes how a drag gesture ended.
type Outcome int

const (
	// OutcomeNoChange means the lead was dropped on its original stage;
	// no network call was made.
	OutcomeNoChange Outcome = iota
	// OutcomeCommitted means the server accepted the stage change.
	OutcomeCommitted
	// OutcomeRolledBack means the commit failed and all local state was
	// restored from the pre-gesture snapshot.
	OutcomeRolledBack
)

// Column is one kanban column: a stage and the leads currently shown
// in it.
type Column struct {
	Stage models.LeadStage
	Leads []models.Lead
}

// Board holds the local lead collection and the gesture machine. It is
// single-gesture, single-goroutine by design; the caller owns all
// access.
type Board struct {
	setter StageSetter

	leads []models.Lead

	state     GestureState
	activeID  uuid.UUID
	origStage models.LeadStage
	snapshot  []models.Lead
}

// NewBoard creates a board over the given lead collection.
func NewBoard(setter StageSetter, leads []models.Lead) *Board {
	return &Board{
		setter: setter,
		leads:  cloneLeads(leads),
	}
}

// State returns the current gesture state.
func (b *Board) State() GestureState {
	return b.state
}

// Leads returns the local lead collection in its current (possibly
// optimistically updated) form.
func (b *Board) Leads() []models.Lead {
	return cloneLeads(b.leads)
}

// Columns partitions the local collection into stage columns in board
// order.
func (b *Board) Columns() []Column {
	columns := make([]Column, len(models.AllStages))
	for i, stage := range models.AllStages {
		columns[i] = Column{Stage: stage}
	}
	for _, lead := range b.leads {
		for i := range columns {
			if columns[i].Stage == lead.Stage {
				columns[i].Leads = append(columns[i].Leads, lead)
				break
			}
		}
	}
	return columns
}

// Replace swaps in a fresh lead collection from the server. Refused
// while a gesture is in flight: the local state is about to be
// committed or rolled back and must not be clobbered.
func (b *Board) Replace(leads []models.Lead) bool {
	if b.state != StateIdle {
		return false
	}
	b.leads = cloneLeads(leads)
	return true
}

// DragStart begins a gesture on the given lead. The pre-gesture
// snapshot is captured once, here, and stays immutable until the
// gesture resolves.
func (b *Board) DragStart(leadID uuid.UUID) error {
	if b.state != StateIdle {
		return fmt.Errorf("gesture already in flight")
	}

	lead := b.find(leadID)
	if lead == nil {
		return fmt.Errorf("unknown lead %s", leadID)
	}

	b.snapshot = cloneLeads(b.leads)
	b.activeID = leadID
	b.origStage = lead.Stage
	b.state = StateDragging
	return nil
}

// DragOver records a hover over a column: the dragged lead's stage is
// rewritten in local state only, giving live visual feedback with no
// network call.
func (b *Board) DragOver(stage models.LeadStage) error {
	if b.state != StateDragging {
		return fmt.Errorf("no gesture in flight")
	}
	if !models.ValidLeadStage(stage) {
		return fmt.Errorf("invalid stage %s", stage)
	}

	b.find(b.activeID).Stage = stage
	return nil
}

// DragEnd releases the gesture. If the optimistic stage matches the
// original there is nothing to commit. Otherwise the change is sent to
// the server; on failure the whole pre-gesture snapshot is restored.
func (b *Board) DragEnd(ctx context.Context) (Outcome, error) {
	if b.state != StateDragging {
		return OutcomeNoChange, fmt.Errorf("no gesture in flight")
	}

	lead := b.find(b.activeID)
	if lead.Stage == b.origStage {
		b.finish()
		return OutcomeNoChange, nil
	}

	b.state = StateCommitting
	if err := b.setter.SetStage(ctx, b.activeID, lead.Stage); err != nil {
		b.leads = b.snapshot
		b.finish()
		return OutcomeRolledBack, fmt.Errorf("stage change rejected: %w", err)
	}

	b.finish()
	return OutcomeCommitted, nil
}

// Pending reports the in-flight gesture: the dragged lead, its
// original stage, its current optimistic stage, and whether they
// differ. Only meaningful while dragging.
func (b *Board) Pending() (leadID uuid.UUID, from, to models.LeadStage, changed bool) {
	if b.state != StateDragging {
		return uuid.Nil, "", "", false
	}
	current := b.find(b.activeID).Stage
	return b.activeID, b.origStage, current, current != b.origStage
}

// Cancel aborts the gesture and restores the pre-gesture snapshot.
func (b *Board) Cancel() {
	if b.state != StateDragging {
		return
	}
	b.leads = b.snapshot
	b.finish()
}

// ActiveLead returns the lead being dragged, or nil when idle.
func (b *Board) ActiveLead() *models.Lead {
	if b.state == StateIdle {
		return nil
	}
	lead := b.find(b.activeID)
	if lead == nil {
		return nil
	}
	copied := *lead
	return &copied
}

func (b *Board) finish() {
	b.state = StateIdle
	b.activeID = uuid.Nil
	b.origStage = ""
	b.snapshot = nil
}

func (b *Board) find(id uuid.UUID) *models.Lead {
	for i := range b.leads {
		if b.leads[i].ID == id {
			return &b.leads[i]
		}
	}
	return nil
}

func cloneLeads(leads []models.Lead) []models.Lead {
	cloned := make([]models.Lead, len(leads))
	copy(cloned, leads)
	return cloned
}
