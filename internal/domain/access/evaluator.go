package access

import (
	"github.com/google/uuid"

	"github.com/sgt-project/sgt-api/internal/domain"
)

// Actor is the authenticated user a decision is evaluated for.
type Actor struct {
	ID   uuid.UUID
	Role domain.Role
}

// Membership is the actor's precomputed relationship to a board. The
// caller resolves it from owner_id and the assignment rows; the
// evaluator itself performs no lookups.
type Membership struct {
	IsOwner    bool
	IsAssigned bool
}

// IsMember reports whether the actor owns the board or is assigned to it.
func (m Membership) IsMember() bool {
	return m.IsOwner || m.IsAssigned
}

// scopeAllows evaluates a board-level scope against a membership.
func scopeAllows(s Scope, m Membership) bool {
	switch s {
	case ScopeAll:
		return true
	case ScopeMember:
		return m.IsMember()
	case ScopeOwner:
		return m.IsOwner
	case ScopeAssigned:
		return m.IsAssigned
	default:
		return false
	}
}

// CanViewBoard decides whether the actor may view a board.
// The board owner may always view their board regardless of role.
func CanViewBoard(actor Actor, m Membership) bool {
	if m.IsOwner {
		return true
	}

	caps, ok := lookup(actor.Role)
	if !ok {
		return false
	}

	return scopeAllows(caps.ViewBoard, m)
}

// CanEditBoard decides whether the actor may edit a board's fields.
// The owner invariant applies: an owner may always edit their board.
func CanEditBoard(actor Actor, m Membership) bool {
	if m.IsOwner {
		return true
	}

	caps, ok := lookup(actor.Role)
	if !ok {
		return false
	}

	return scopeAllows(caps.EditBoard, m)
}

// CanCreateBoard decides whether the role may create boards at all.
func CanCreateBoard(role domain.Role) bool {
	caps, ok := lookup(role)
	return ok && caps.CreateBoard
}

// CanDeleteBoard decides whether the actor may delete a board:
// administrators and the board owner only.
func CanDeleteBoard(actor Actor, m Membership) bool {
	if m.IsOwner {
		return true
	}
	return actor.Role == domain.RoleAdministrador
}

// CanViewAllBoards reports whether the role's board listing spans every
// board rather than owned+assigned ones.
func CanViewAllBoards(role domain.Role) bool {
	caps, ok := lookup(role)
	return ok && caps.ViewBoard == ScopeAll
}

// CanCreateTask decides whether the role may create tasks on a board it
// can view.
func CanCreateTask(role domain.Role) bool {
	caps, ok := lookup(role)
	return ok && caps.CreateTask
}

// CanAssignUsers decides whether the actor may add or remove users on a
// board: administrators anywhere, managers only on boards they own,
// supervisors only on boards they are assigned to.
func CanAssignUsers(actor Actor, m Membership) bool {
	caps, ok := lookup(actor.Role)
	if !ok {
		return false
	}

	return scopeAllows(caps.AssignUsers, m)
}

// CanEditTask decides whether the actor may edit a task. Evaluation
// order: admin short-circuit, explicit deny, board membership, then
// role scoping (Agente restricted to self-assigned tasks).
func CanEditTask(actor Actor, m Membership, assignedToActor bool) bool {
	caps, ok := lookup(actor.Role)
	if !ok {
		return false
	}

	switch caps.EditTask {
	case ScopeAll:
		return true
	case ScopeMember:
		return m.IsMember()
	case ScopeSelfAssigned:
		return m.IsMember() && assignedToActor
	default:
		return false
	}
}

// CanAddRecord decides whether the actor may append a history entry to a
// task. Same membership rules as task editing.
func CanAddRecord(actor Actor, m Membership, assignedToActor bool) bool {
	caps, ok := lookup(actor.Role)
	if !ok {
		return false
	}

	switch caps.AddRecord {
	case ScopeAll:
		return true
	case ScopeMember:
		return m.IsMember()
	case ScopeSelfAssigned:
		return m.IsMember() && assignedToActor
	default:
		return false
	}
}

// CanDeleteTask decides whether the actor may delete a task:
// administrators anywhere, managers and supervisors where they can edit
// the task, and the task's creator their own task.
func CanDeleteTask(actor Actor, m Membership, assignedToActor, isCreator bool) bool {
	if actor.Role == domain.RoleAdministrador {
		return true
	}

	if (actor.Role == domain.RoleManager || actor.Role == domain.RoleSupervisor) &&
		CanEditTask(actor, m, assignedToActor) {
		return true
	}

	return isCreator
}

// TaskListScope returns the visibility the role has over tasks of a
// board it can view: everything, only self-assigned tasks, or nothing
// for unknown roles.
func TaskListScope(role domain.Role) Scope {
	caps, ok := lookup(role)
	if !ok {
		return ScopeNone
	}
	return caps.ListTasks
}

// EditableFields returns the set of task fields the role may modify.
// The returned slice is a copy; mutating it does not affect the table.
func EditableFields(role domain.Role) []TaskField {
	caps, ok := lookup(role)
	if !ok {
		return nil
	}

	fields := make([]TaskField, len(caps.EditableFields))
	copy(fields, caps.EditableFields)
	return fields
}

// CheckFieldEdits verifies every field named in a partial update against
// the role's editable set. It returns a ForbiddenFieldError for the
// first disallowed field, before any mutation is attempted.
func CheckFieldEdits(role domain.Role, fields []TaskField) error {
	allowed := map[TaskField]struct{}{}
	for _, f := range EditableFields(role) {
		allowed[f] = struct{}{}
	}

	for _, f := range fields {
		if _, ok := allowed[f]; !ok {
			return &ForbiddenFieldError{Role: role, Field: f}
		}
	}

	return nil
}
