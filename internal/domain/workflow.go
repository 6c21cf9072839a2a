package domain

import (
	"errors"

	"github.com/google/uuid"
)

// Common validation errors for workflow templates and states
var (
	ErrEmptyTemplateID   = errors.New("workflow template ID cannot be empty")
	ErrEmptyTemplateName = errors.New("workflow template name cannot be empty")
	ErrEmptyStateName    = errors.New("workflow state name cannot be empty")
	ErrInvalidStateOrder = errors.New("workflow state order must be positive")
	ErrNoStates          = errors.New("workflow template must have at least one state")
)

// WorkflowTemplate is an ordered sequence of named states that tasks on a
// board progress through. The template is chosen at board creation and
// every task state on the board must belong to it.
type WorkflowTemplate struct {
	ID     uuid.UUID       `json:"id"`
	Name   string          `json:"name"`
	States []WorkflowState `json:"states"`
}

// WorkflowState is one stage of a template. Order is a 1-based total
// order: the state with the minimum order is the initial state and the
// state with the maximum order is the final ("done") state.
type WorkflowState struct {
	ID         uuid.UUID `json:"id"`
	TemplateID uuid.UUID `json:"template_id"`
	Name       string    `json:"name"`
	Order      int       `json:"order"`
}

// NewWorkflowTemplate creates a template with states named in sequence,
// assigning 1-based orders. Returns an error if validation fails.
func NewWorkflowTemplate(name string, stateNames []string) (*WorkflowTemplate, error) {
	tmpl := &WorkflowTemplate{
		ID:   uuid.New(),
		Name: name,
	}

	for i, sn := range stateNames {
		tmpl.States = append(tmpl.States, WorkflowState{
			ID:         uuid.New(),
			TemplateID: tmpl.ID,
			Name:       sn,
			Order:      i + 1,
		})
	}

	if err := tmpl.Validate(); err != nil {
		return nil, err
	}

	return tmpl, nil
}

// Validate checks if the WorkflowTemplate has valid data.
func (t *WorkflowTemplate) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTemplateID
	}

	if t.Name == "" {
		return ErrEmptyTemplateName
	}

	if len(t.States) == 0 {
		return ErrNoStates
	}

	for _, s := range t.States {
		if s.Name == "" {
			return ErrEmptyStateName
		}
		if s.Order < 1 {
			return ErrInvalidStateOrder
		}
	}

	return nil
}

// InitialState returns the state with the minimum order, or nil when the
// slice is empty.
func InitialState(states []WorkflowState) *WorkflowState {
	var initial *WorkflowState
	for i := range states {
		if initial == nil || states[i].Order < initial.Order {
			initial = &states[i]
		}
	}
	return initial
}

// FinalState returns the state with the maximum order, or nil when the
// slice is empty.
func FinalState(states []WorkflowState) *WorkflowState {
	var final *WorkflowState
	for i := range states {
		if final == nil || states[i].Order > final.Order {
			final = &states[i]
		}
	}
	return final
}

// StateByID finds a state by ID within a slice, returning nil when absent.
func StateByID(states []WorkflowState, id uuid.UUID) *WorkflowState {
	for i := range states {
		if states[i].ID == id {
			return &states[i]
		}
	}
	return nil
}
