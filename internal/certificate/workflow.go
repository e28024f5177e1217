package certificate

import "context"

// StateMachine enforces the record approval lifecycle. Transitions are
// monotonic and one-directional; issued is terminal.
type StateMachine struct {
	allowedTransitions map[WorkflowStatus][]WorkflowStatus
}

// NewStateMachine creates the approval state machine.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[WorkflowStatus][]WorkflowStatus{
			StatusPendingReview:   {StatusReviewCompleted},
			StatusReviewCompleted: {StatusIssued},
			StatusIssued:          {},
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to WorkflowStatus) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from WorkflowStatus) []WorkflowStatus {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []WorkflowStatus{}
	}
	return allowed
}

// Workflow applies approval transitions against the record store.
type Workflow struct {
	repo Repository
	sm   *StateMachine
}

// NewWorkflow creates a workflow over the given store.
func NewWorkflow(repo Repository) *Workflow {
	return &Workflow{repo: repo, sm: NewStateMachine()}
}

// Transition moves a record from one status to the next. An attempt that is
// not in the allowed set fails with a StateError before touching the store;
// the store's guarded update catches a record that changed underneath us.
func (w *Workflow) Transition(ctx context.Context, record *Record, to WorkflowStatus) error {
	if !w.sm.CanTransition(record.Status, to) {
		return &StateError{Current: record.Status, Required: to}
	}
	if err := w.repo.UpdateStatus(ctx, record.ID, record.Status, to); err != nil {
		return err
	}
	record.Status = to
	return nil
}

// Eligible returns the records qualifying for final-document batch
// rendering: exactly those in review_completed.
func (w *Workflow) Eligible(ctx context.Context, organization string) ([]Record, error) {
	return w.repo.ListByStatus(ctx, organization, StatusReviewCompleted)
}
