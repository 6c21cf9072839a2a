package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		username string
		email    string
		password string
		role     Role
		wantErr  error
	}{
		{"valid user", "mgarcia", "mgarcia@example.com", "correcthorse", RoleAgente, nil},
		{"empty username", "", "a@example.com", "correcthorse", RoleAgente, ErrEmptyUsername},
		{"empty email", "mgarcia", "", "correcthorse", RoleAgente, ErrEmptyEmail},
		{"malformed email", "mgarcia", "not-an-email", "correcthorse", RoleAgente, ErrInvalidEmail},
		{"empty password", "mgarcia", "a@example.com", "", RoleAgente, ErrEmptyPassword},
		{"short password", "mgarcia", "a@example.com", "seven77", RoleAgente, ErrPasswordTooShort},
		{"overlong password", "mgarcia", "a@example.com", strings.Repeat("x", 73), RoleAgente, ErrPasswordTooLong},
		{"unknown role", "mgarcia", "a@example.com", "correcthorse", Role("Jefe"), ErrUnknownRole},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			user, err := NewUser(tc.username, "María", "García", tc.email, tc.password, tc.role)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Errorf("NewUser error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewUser unexpected error: %v", err)
			}
			if user.Role != tc.role {
				t.Errorf("user role = %q, want %q", user.Role, tc.role)
			}
		})
	}
}

func TestFullName(t *testing.T) {
	t.Parallel()

	user, err := NewUser("jperez", "Juan", "Pérez", "jperez@example.com", "correcthorse", RoleManager)
	if err != nil {
		t.Fatalf("NewUser returned error: %v", err)
	}
	if got := user.FullName(); got != "Juan Pérez" {
		t.Errorf("FullName = %q, want %q", got, "Juan Pérez")
	}
}

// A 72-byte password is the bcrypt ceiling and must pass.
func TestPasswordBoundaries(t *testing.T) {
	t.Parallel()

	if _, err := NewUser("u", "A", "B", "u@example.com", strings.Repeat("x", 72), RoleAgente); err != nil {
		t.Errorf("72-byte password rejected: %v", err)
	}
	if _, err := NewUser("u", "A", "B", "u@example.com", strings.Repeat("x", 8), RoleAgente); err != nil {
		t.Errorf("8-byte password rejected: %v", err)
	}
}
