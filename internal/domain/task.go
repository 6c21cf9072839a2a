package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Task
var (
	ErrEmptyTaskID      = errors.New("task ID cannot be empty")
	ErrEmptyTaskTitle   = errors.New("task title cannot be empty")
	ErrEmptyTaskBoard   = errors.New("task board ID cannot be empty")
	ErrEmptyTaskState   = errors.New("task state ID cannot be empty")
	ErrEmptyTaskCreator = errors.New("task creator ID cannot be empty")
)

// RecordEntry is one immutable audit-log line attached to a task.
// Entries are only ever appended; no normal path edits or removes one.
// JSON keys match the persisted record format.
type RecordEntry struct {
	Date   string `json:"fecha"` // DD/MM/YYYY
	Time   string `json:"hora"`  // HH:MM:SS
	User   string `json:"user"`  // acting user's username
	Status string `json:"status"`
	Doc    string `json:"doc"`
}

// NewRecordEntry builds a record entry stamped with the server clock.
func NewRecordEntry(now time.Time, username, stateName, doc string) RecordEntry {
	return RecordEntry{
		Date:   now.Format("02/01/2006"),
		Time:   now.Format("15:04:05"),
		User:   username,
		Status: stateName,
		Doc:    doc,
	}
}

// CreationRecordDoc is the doc text of the synthetic entry appended when
// a task is created.
func CreationRecordDoc(username string) string {
	return fmt.Sprintf("Tarea creada por %s", username)
}

// StateChangeRecordDoc is the doc text appended when a task changes state.
func StateChangeRecordDoc(oldState, newState string) string {
	return fmt.Sprintf("Cambió el estado de '%s' a '%s'", oldState, newState)
}

// Task is a unit of work on a board. Its state must always reference a
// state of the board template, and its record is an append-only history
// of state changes and comments.
type Task struct {
	ID           uuid.UUID         `json:"id"`
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	BoardID      uuid.UUID         `json:"board_id"`
	StateID      uuid.UUID         `json:"state_id"`
	AssignedToID *uuid.UUID        `json:"assigned_to_id"`
	CreatedByID  uuid.UUID         `json:"created_by_id"`
	StartDate    *time.Time        `json:"start_date"`
	EndDate      *time.Time        `json:"end_date"`
	CustomFields map[string]string `json:"custom_fields"`
	Record       []RecordEntry     `json:"record"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// NewTask creates a new Task on the given board and state.
// It generates a new UUID for the task ID and sets the timestamps.
// The caller appends the creation record entry via AppendRecord.
// Returns an error if validation fails.
func NewTask(
	title, description string,
	boardID, stateID uuid.UUID,
	assignedToID *uuid.UUID,
	createdByID uuid.UUID,
	startDate, endDate *time.Time,
	customFields map[string]string,
) (*Task, error) {
	if customFields == nil {
		customFields = map[string]string{}
	}

	task := &Task{
		ID:           uuid.New(),
		Title:        title,
		Description:  description,
		BoardID:      boardID,
		StateID:      stateID,
		AssignedToID: assignedToID,
		CreatedByID:  createdByID,
		StartDate:    startDate,
		EndDate:      endDate,
		CustomFields: customFields,
		Record:       []RecordEntry{},
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.Title == "" {
		return ErrEmptyTaskTitle
	}

	if t.BoardID == uuid.Nil {
		return ErrEmptyTaskBoard
	}

	if t.StateID == uuid.Nil {
		return ErrEmptyTaskState
	}

	if t.CreatedByID == uuid.Nil {
		return ErrEmptyTaskCreator
	}

	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return ErrInvalidDateRange
	}

	return nil
}

// AppendRecord appends an entry to the task's history, replacing the
// slice wholesale rather than growing it in place. The replacement makes
// the change structural, so the store always persists the full record on
// update; nothing relies on in-place mutation being noticed.
func (t *Task) AppendRecord(entry RecordEntry) {
	record := make([]RecordEntry, 0, len(t.Record)+1)
	record = append(record, t.Record...)
	record = append(record, entry)
	t.Record = record
}

// IsOverdue reports whether the task has an end date in the past.
// Completion is decided by the caller against the board's final state;
// a completed task is never overdue.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.EndDate != nil && t.EndDate.Before(now)
}
