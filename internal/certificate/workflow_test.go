package certificate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateMachineForwardOnly(t *testing.T) {
	sm := NewStateMachine()

	assert.True(t, sm.CanTransition(StatusPendingReview, StatusReviewCompleted))
	assert.True(t, sm.CanTransition(StatusReviewCompleted, StatusIssued))

	assert.False(t, sm.CanTransition(StatusPendingReview, StatusIssued))
	assert.False(t, sm.CanTransition(StatusReviewCompleted, StatusPendingReview))
}

func TestStateMachineIssuedIsTerminal(t *testing.T) {
	sm := NewStateMachine()

	assert.False(t, sm.CanTransition(StatusIssued, StatusPendingReview))
	assert.False(t, sm.CanTransition(StatusIssued, StatusReviewCompleted))
	assert.Empty(t, sm.GetAllowedTransitions(StatusIssued))
}

func TestStateMachineUnknownState(t *testing.T) {
	sm := NewStateMachine()

	assert.False(t, sm.CanTransition("bogus", StatusIssued))
	assert.Empty(t, sm.GetAllowedTransitions("bogus"))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("Review_Completed")
	assert.NoError(t, err)
	assert.Equal(t, StatusReviewCompleted, s)

	s, err = ParseStatus("pending_review")
	assert.NoError(t, err)
	assert.Equal(t, StatusPendingReview, s)

	_, err = ParseStatus("archived")
	assert.Error(t, err)
}

func TestStateErrorMessage(t *testing.T) {
	err := &StateError{Current: StatusPendingReview, Required: StatusIssued}
	assert.Contains(t, err.Error(), "pending_review")
	assert.Contains(t, err.Error(), "issued")
}
