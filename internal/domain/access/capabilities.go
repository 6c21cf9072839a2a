// Package access implements the permission evaluator: pure,
// side-effect-free decision functions mapping (role, resource,
// membership) to allow/deny outcomes and editable-field sets.
//
// All role semantics live in a single capability table rather than
// scattered role-name comparisons, so every endpoint that shares a rule
// shares the same row. Unknown roles have no row and every check fails
// closed.
package access

import (
	"fmt"

	"github.com/sgt-project/sgt-api/internal/domain"
)

// Scope describes which resources of a kind a role may act on.
type Scope int

const (
	// ScopeNone denies the action entirely.
	ScopeNone Scope = iota
	// ScopeSelfAssigned limits the action to tasks assigned to the actor.
	ScopeSelfAssigned
	// ScopeMember limits the action to boards the actor owns or is
	// assigned to.
	ScopeMember
	// ScopeOwner limits the action to boards the actor owns.
	ScopeOwner
	// ScopeAssigned limits the action to boards the actor is assigned to.
	ScopeAssigned
	// ScopeAll allows the action on every resource.
	ScopeAll
)

// TaskField identifies an editable task field in a partial update.
type TaskField string

// Task field identifiers matching the task update payload.
const (
	FieldTitle        TaskField = "title"
	FieldDescription  TaskField = "description"
	FieldStateID      TaskField = "state_id"
	FieldAssignedToID TaskField = "assigned_to_id"
	FieldStartDate    TaskField = "start_date"
	FieldEndDate      TaskField = "end_date"
	FieldCustomFields TaskField = "custom_fields"
)

// allTaskFields is the complete editable-field universe. Declarative
// per-role sets are validated against it at package init to catch drift
// between the table and the task schema.
var allTaskFields = map[TaskField]struct{}{
	FieldTitle:        {},
	FieldDescription:  {},
	FieldStateID:      {},
	FieldAssignedToID: {},
	FieldStartDate:    {},
	FieldEndDate:      {},
	FieldCustomFields: {},
}

// capabilities is one role's row in the permission matrix.
type capabilities struct {
	ViewBoard      Scope
	EditBoard      Scope
	CreateBoard    bool
	CreateTask     bool
	AssignUsers    Scope // add/remove users on a board
	EditTask       Scope
	AddRecord      Scope
	ListTasks      Scope // visibility of tasks within an accessible board
	EditableFields []TaskField
}

// matrix is the full capability table, one row per catalog role.
// Roles absent from the table (including the zero Role) deny everything.
var matrix = map[domain.Role]capabilities{
	domain.RoleAdministrador: {
		ViewBoard:      ScopeAll,
		EditBoard:      ScopeAll,
		CreateBoard:    true,
		CreateTask:     true,
		AssignUsers:    ScopeAll,
		EditTask:       ScopeAll,
		AddRecord:      ScopeAll,
		ListTasks:      ScopeAll,
		EditableFields: fullFieldSet(),
	},
	domain.RoleManager: {
		ViewBoard:      ScopeMember,
		EditBoard:      ScopeMember,
		CreateBoard:    true,
		CreateTask:     true,
		AssignUsers:    ScopeOwner,
		EditTask:       ScopeMember,
		AddRecord:      ScopeMember,
		ListTasks:      ScopeAll,
		EditableFields: fullFieldSet(),
	},
	domain.RoleSupervisor: {
		ViewBoard:      ScopeMember,
		EditBoard:      ScopeNone,
		CreateBoard:    false,
		CreateTask:     true,
		AssignUsers:    ScopeAssigned,
		EditTask:       ScopeMember,
		AddRecord:      ScopeMember,
		ListTasks:      ScopeAll,
		EditableFields: fullFieldSet(),
	},
	domain.RoleAgente: {
		ViewBoard:      ScopeMember,
		EditBoard:      ScopeNone,
		CreateBoard:    false,
		CreateTask:     false,
		AssignUsers:    ScopeNone,
		EditTask:       ScopeSelfAssigned,
		AddRecord:      ScopeSelfAssigned,
		ListTasks:      ScopeSelfAssigned,
		EditableFields: []TaskField{FieldStateID},
	},
	domain.RoleVisualizador: {
		ViewBoard:      ScopeMember,
		EditBoard:      ScopeNone,
		CreateBoard:    false,
		CreateTask:     false,
		AssignUsers:    ScopeNone,
		EditTask:       ScopeNone,
		AddRecord:      ScopeNone,
		ListTasks:      ScopeAll, // read-only: edit paths are all ScopeNone
		EditableFields: nil,
	},
}

func fullFieldSet() []TaskField {
	return []TaskField{
		FieldTitle,
		FieldDescription,
		FieldStateID,
		FieldAssignedToID,
		FieldStartDate,
		FieldEndDate,
		FieldCustomFields,
	}
}

func init() {
	// Validate the declarative field sets against the task schema once
	// at startup so a renamed field cannot silently open or close access.
	for role, caps := range matrix {
		for _, f := range caps.EditableFields {
			if _, ok := allTaskFields[f]; !ok {
				// ALLOW-PANIC: init-time validation of a static table
				panic(fmt.Sprintf("access: role %s declares unknown task field %q", role, f))
			}
		}
	}
}

// lookup returns the capability row for a role. The second return is
// false for unknown roles, which callers must treat as deny.
func lookup(role domain.Role) (capabilities, bool) {
	caps, ok := matrix[role]
	return caps, ok
}
