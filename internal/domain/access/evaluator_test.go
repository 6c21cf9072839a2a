package access

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/sgt-project/sgt-api/internal/domain"
)

func actor(role domain.Role) Actor {
	return Actor{ID: uuid.New(), Role: role}
}

func TestCanViewBoard(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		role     domain.Role
		m        Membership
		expected bool
	}{
		{"admin sees any board", domain.RoleAdministrador, Membership{}, true},
		{"manager sees owned board", domain.RoleManager, Membership{IsOwner: true}, true},
		{"manager sees assigned board", domain.RoleManager, Membership{IsAssigned: true}, true},
		{"manager denied on unrelated board", domain.RoleManager, Membership{}, false},
		{"supervisor sees assigned board", domain.RoleSupervisor, Membership{IsAssigned: true}, true},
		{"supervisor denied on unrelated board", domain.RoleSupervisor, Membership{}, false},
		{"agente sees assigned board", domain.RoleAgente, Membership{IsAssigned: true}, true},
		{"visualizador sees assigned board", domain.RoleVisualizador, Membership{IsAssigned: true}, true},
		{"visualizador denied on unrelated board", domain.RoleVisualizador, Membership{}, false},
		{"unknown role denied", domain.Role("Intruso"), Membership{IsAssigned: true}, false},
		{"empty role denied", domain.Role(""), Membership{}, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CanViewBoard(actor(tc.role), tc.m); got != tc.expected {
				t.Errorf("CanViewBoard(%s, %+v) = %v, want %v", tc.role, tc.m, got, tc.expected)
			}
		})
	}
}

// The board owner always has full view/edit rights regardless of role,
// even roles whose matrix row would otherwise deny.
func TestOwnerAlwaysViewsAndEdits(t *testing.T) {
	t.Parallel()

	roles := []domain.Role{
		domain.RoleAdministrador,
		domain.RoleManager,
		domain.RoleSupervisor,
		domain.RoleAgente,
		domain.RoleVisualizador,
		domain.Role("unknown"),
	}

	for _, role := range roles {
		owner := Membership{IsOwner: true}
		if !CanViewBoard(actor(role), owner) {
			t.Errorf("owner with role %s should view own board", role)
		}
		if !CanEditBoard(actor(role), owner) {
			t.Errorf("owner with role %s should edit own board", role)
		}
	}
}

func TestCanEditBoard(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		role     domain.Role
		m        Membership
		expected bool
	}{
		{"admin edits any board", domain.RoleAdministrador, Membership{}, true},
		{"manager edits assigned board", domain.RoleManager, Membership{IsAssigned: true}, true},
		{"manager denied on unrelated board", domain.RoleManager, Membership{}, false},
		{"supervisor never edits boards", domain.RoleSupervisor, Membership{IsAssigned: true}, false},
		{"agente never edits boards", domain.RoleAgente, Membership{IsAssigned: true}, false},
		{"visualizador never edits boards", domain.RoleVisualizador, Membership{IsAssigned: true}, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CanEditBoard(actor(tc.role), tc.m); got != tc.expected {
				t.Errorf("CanEditBoard(%s, %+v) = %v, want %v", tc.role, tc.m, got, tc.expected)
			}
		})
	}
}

func TestCanCreateBoard(t *testing.T) {
	t.Parallel()

	expected := map[domain.Role]bool{
		domain.RoleAdministrador: true,
		domain.RoleManager:       true,
		domain.RoleSupervisor:    false,
		domain.RoleAgente:        false,
		domain.RoleVisualizador:  false,
	}

	for role, want := range expected {
		if got := CanCreateBoard(role); got != want {
			t.Errorf("CanCreateBoard(%s) = %v, want %v", role, got, want)
		}
	}

	if CanCreateBoard(domain.Role("")) {
		t.Error("empty role should not create boards")
	}
}

func TestCanDeleteBoard(t *testing.T) {
	t.Parallel()

	if !CanDeleteBoard(actor(domain.RoleAdministrador), Membership{}) {
		t.Error("admin should delete any board")
	}
	if !CanDeleteBoard(actor(domain.RoleAgente), Membership{IsOwner: true}) {
		t.Error("owner should delete own board regardless of role")
	}
	if CanDeleteBoard(actor(domain.RoleManager), Membership{IsAssigned: true}) {
		t.Error("assigned non-owner manager should not delete board")
	}
}

func TestCanAssignUsers(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		role     domain.Role
		m        Membership
		expected bool
	}{
		{"admin assigns anywhere", domain.RoleAdministrador, Membership{}, true},
		{"manager assigns on owned board", domain.RoleManager, Membership{IsOwner: true}, true},
		{"manager denied when only assigned", domain.RoleManager, Membership{IsAssigned: true}, false},
		{"manager denied when unrelated", domain.RoleManager, Membership{}, false},
		{"supervisor assigns when assigned", domain.RoleSupervisor, Membership{IsAssigned: true}, true},
		{"supervisor denied when unrelated", domain.RoleSupervisor, Membership{}, false},
		{"agente never assigns", domain.RoleAgente, Membership{IsOwner: true, IsAssigned: true}, false},
		{"visualizador never assigns", domain.RoleVisualizador, Membership{IsAssigned: true}, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CanAssignUsers(actor(tc.role), tc.m); got != tc.expected {
				t.Errorf("CanAssignUsers(%s, %+v) = %v, want %v", tc.role, tc.m, got, tc.expected)
			}
		})
	}
}

func TestCanEditTask(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		role       domain.Role
		m          Membership
		selfAssign bool
		expected   bool
	}{
		{"admin edits any task", domain.RoleAdministrador, Membership{}, false, true},
		{"manager edits member board task", domain.RoleManager, Membership{IsAssigned: true}, false, true},
		{"manager denied off-board", domain.RoleManager, Membership{}, false, false},
		{"supervisor edits member board task", domain.RoleSupervisor, Membership{IsAssigned: true}, false, true},
		{"agente edits own assigned task", domain.RoleAgente, Membership{IsAssigned: true}, true, true},
		{"agente denied on others' tasks", domain.RoleAgente, Membership{IsAssigned: true}, false, false},
		{"agente denied off-board even when assigned", domain.RoleAgente, Membership{}, true, false},
		{"visualizador never edits", domain.RoleVisualizador, Membership{IsAssigned: true}, true, false},
		{"unknown role denied", domain.Role("x"), Membership{IsAssigned: true}, true, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := CanEditTask(actor(tc.role), tc.m, tc.selfAssign); got != tc.expected {
				t.Errorf(
					"CanEditTask(%s, %+v, %v) = %v, want %v",
					tc.role, tc.m, tc.selfAssign, got, tc.expected,
				)
			}
		})
	}
}

func TestCanAddRecord(t *testing.T) {
	t.Parallel()

	if !CanAddRecord(actor(domain.RoleAdministrador), Membership{}, false) {
		t.Error("admin should add records anywhere")
	}
	if !CanAddRecord(actor(domain.RoleAgente), Membership{IsAssigned: true}, true) {
		t.Error("agente should add records on own assigned tasks")
	}
	if CanAddRecord(actor(domain.RoleAgente), Membership{IsAssigned: true}, false) {
		t.Error("agente should not add records on others' tasks")
	}
	if CanAddRecord(actor(domain.RoleVisualizador), Membership{IsOwner: true, IsAssigned: true}, true) {
		t.Error("visualizador should never add records")
	}
}

func TestCanDeleteTask(t *testing.T) {
	t.Parallel()

	if !CanDeleteTask(actor(domain.RoleAdministrador), Membership{}, false, false) {
		t.Error("admin should delete any task")
	}
	if !CanDeleteTask(actor(domain.RoleManager), Membership{IsAssigned: true}, false, false) {
		t.Error("manager should delete tasks on member boards")
	}
	if !CanDeleteTask(actor(domain.RoleAgente), Membership{}, false, true) {
		t.Error("creator should delete own task")
	}
	if CanDeleteTask(actor(domain.RoleAgente), Membership{IsAssigned: true}, true, false) {
		t.Error("agente should not delete tasks they did not create")
	}
}

// Agente's editable set is exactly {state_id}.
func TestEditableFields(t *testing.T) {
	t.Parallel()

	agente := EditableFields(domain.RoleAgente)
	if len(agente) != 1 || agente[0] != FieldStateID {
		t.Errorf("agente editable fields = %v, want exactly [state_id]", agente)
	}

	if got := EditableFields(domain.RoleVisualizador); len(got) != 0 {
		t.Errorf("visualizador editable fields = %v, want none", got)
	}

	full := EditableFields(domain.RoleManager)
	if len(full) != len(allTaskFields) {
		t.Errorf("manager editable fields = %v, want all %d fields", full, len(allTaskFields))
	}

	if got := EditableFields(domain.Role("unknown")); got != nil {
		t.Errorf("unknown role editable fields = %v, want nil", got)
	}
}

func TestCheckFieldEdits(t *testing.T) {
	t.Parallel()

	// Agente may set state_id only; any other field fails the whole update.
	if err := CheckFieldEdits(domain.RoleAgente, []TaskField{FieldStateID}); err != nil {
		t.Errorf("expected state_id edit to pass for agente, got %v", err)
	}

	err := CheckFieldEdits(domain.RoleAgente, []TaskField{FieldStateID, FieldDescription})
	if err == nil {
		t.Fatal("expected forbidden-field error for agente editing description")
	}

	var fieldErr *ForbiddenFieldError
	if !errors.As(err, &fieldErr) {
		t.Fatalf("expected ForbiddenFieldError, got %T", err)
	}
	if fieldErr.Field != FieldDescription {
		t.Errorf("expected denied field description, got %s", fieldErr.Field)
	}
	if !errors.Is(err, ErrForbidden) {
		t.Error("ForbiddenFieldError should unwrap to ErrForbidden")
	}

	if err := CheckFieldEdits(domain.RoleAdministrador, fullFieldSet()); err != nil {
		t.Errorf("admin should edit all fields, got %v", err)
	}
}

func TestTaskListScope(t *testing.T) {
	t.Parallel()

	if got := TaskListScope(domain.RoleAgente); got != ScopeSelfAssigned {
		t.Errorf("agente task scope = %v, want ScopeSelfAssigned", got)
	}
	if got := TaskListScope(domain.RoleVisualizador); got != ScopeAll {
		t.Errorf("visualizador task scope = %v, want ScopeAll", got)
	}
	if got := TaskListScope(domain.Role("unknown")); got != ScopeNone {
		t.Errorf("unknown role task scope = %v, want ScopeNone", got)
	}
}
