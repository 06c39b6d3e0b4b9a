package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/sjperalta/devagency-api/internal/finance"
	"github.com/sjperalta/devagency-api/internal/models"
)

// Project lifecycle events
const (
	EventApprove  = "approve"
	EventStart    = "start"
	EventHold     = "hold"
	EventComplete = "complete"
	EventReopen   = "reopen"
	EventCancel   = "cancel"
	EventReject   = "reject"
)

var activeStates = []string{
	models.ProjectStatusPending,
	models.ProjectStatusApproved,
	models.ProjectStatusOngoing,
	models.ProjectStatusOnHold,
}

var projectEvents = fsm.Events{
	// pending → approved
	{Name: EventApprove, Src: []string{models.ProjectStatusPending}, Dst: models.ProjectStatusApproved},

	// pending/approved/on hold → ongoing
	{Name: EventStart, Src: []string{models.ProjectStatusPending, models.ProjectStatusApproved, models.ProjectStatusOnHold}, Dst: models.ProjectStatusOngoing},

	// approved/ongoing → on hold
	{Name: EventHold, Src: []string{models.ProjectStatusApproved, models.ProjectStatusOngoing}, Dst: models.ProjectStatusOnHold},

	// any active state → completed (guarded by payments)
	{Name: EventComplete, Src: activeStates, Dst: models.ProjectStatusCompleted},

	// completed → ongoing
	{Name: EventReopen, Src: []string{models.ProjectStatusCompleted}, Dst: models.ProjectStatusOngoing},

	// any active state → cancelled / rejected
	{Name: EventCancel, Src: activeStates, Dst: models.ProjectStatusCancelled},
	{Name: EventReject, Src: activeStates, Dst: models.ProjectStatusRejected},
}

// TransitionError is returned when no event leads from the current status
// to the requested one
type TransitionError struct {
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("project cannot move from %s to %s", e.From, e.To)
}

// ProjectFSM wraps a project with its state machine
type ProjectFSM struct {
	project *models.Project
	fsm     *fsm.FSM
}

// NewProjectFSM creates a new project state machine
func NewProjectFSM(project *models.Project) *ProjectFSM {
	return &ProjectFSM{
		project: project,
		fsm:     fsm.NewFSM(project.Status, projectEvents, fsm.Callbacks{}),
	}
}

// EventFor returns the event that moves the project into target from its
// current status, or "" when none exists
func (p *ProjectFSM) EventFor(target string) string {
	for _, e := range projectEvents {
		if e.Dst != target {
			continue
		}
		if p.fsm.Can(e.Name) {
			return e.Name
		}
	}
	return ""
}

// TransitionTo moves the project into target. Entering Completed runs the
// payment guard first; a rejection leaves the project untouched and returns
// a *finance.CompletionError.
func (p *ProjectFSM) TransitionTo(ctx context.Context, target string) (*finance.StatusChange, error) {
	from := p.project.Status
	if from == target {
		return nil, nil
	}

	event := p.EventFor(target)
	if event == "" {
		return nil, &TransitionError{From: from, To: target}
	}
	if event == EventComplete {
		if err := finance.CheckProjectCompletion(p.project); err != nil {
			return nil, err
		}
	}

	if err := p.fsm.Event(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to %s project: %w", event, err)
	}

	p.project.Status = p.fsm.Current()
	return &finance.StatusChange{
		ProjectID: p.project.ID,
		OldStatus: from,
		NewStatus: p.project.Status,
		Reason:    finance.ReasonManualUpdate,
	}, nil
}

// Complete transitions the project to completed if the guard allows it
func (p *ProjectFSM) Complete(ctx context.Context) (*finance.StatusChange, error) {
	change, err := p.TransitionTo(ctx, models.ProjectStatusCompleted)
	if change != nil {
		change.Reason = finance.ReasonAllMilestonesPaid
	}
	return change, err
}

// Reopen transitions a completed project back to ongoing
func (p *ProjectFSM) Reopen(ctx context.Context) (*finance.StatusChange, error) {
	if !p.project.IsCompleted() {
		return nil, &TransitionError{From: p.project.Status, To: models.ProjectStatusOngoing}
	}
	change, err := p.TransitionTo(ctx, models.ProjectStatusOngoing)
	if change != nil {
		change.Reason = finance.ReasonMilestoneReverted
	}
	return change, err
}

// Current returns the current state
func (p *ProjectFSM) Current() string {
	return p.fsm.Current()
}

// Can checks if a transition is possible
func (p *ProjectFSM) Can(event string) bool {
	return p.fsm.Can(event)
}

// AvailableStatuses lists the statuses reachable from the current one
func (p *ProjectFSM) AvailableStatuses() []string {
	var statuses []string
	for _, e := range projectEvents {
		if p.fsm.Can(e.Name) {
			statuses = append(statuses, e.Dst)
		}
	}
	return statuses
}
