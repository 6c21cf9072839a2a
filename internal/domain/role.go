package domain

// Role is the closed set of user roles recognized by the permission
// system. Role names are stored as catalog rows but their semantics are
// fixed in application logic; editing a catalog row never changes what a
// role may do.
type Role string

// The role catalog. Names match the seeded catalog rows verbatim.
const (
	RoleAdministrador Role = "Administrador"
	RoleManager       Role = "Manager"
	RoleSupervisor    Role = "Supervisor"
	RoleAgente        Role = "Agente"
	RoleVisualizador  Role = "Visualizador"
)

// AllRoles lists every role in the catalog, with the seed description
// for each. The order matches the seed data.
var AllRoles = []RoleInfo{
	{Name: RoleAdministrador, Description: "Acceso completo al sistema"},
	{Name: RoleManager, Description: "Gestión de equipos y tareas"},
	{Name: RoleSupervisor, Description: "Supervisión de tareas"},
	{Name: RoleAgente, Description: "Ejecución de tareas"},
	{Name: RoleVisualizador, Description: "Solo lectura"},
}

// RoleInfo is a role catalog row.
type RoleInfo struct {
	Name        Role   `json:"name"`
	Description string `json:"description"`
}

// ParseRole maps a role name to a Role. Unknown names return
// ErrUnknownRole; permission checks treat unknown roles as deny-all,
// so callers may also use the zero Role and rely on fail-closed checks.
func ParseRole(name string) (Role, error) {
	switch Role(name) {
	case RoleAdministrador, RoleManager, RoleSupervisor, RoleAgente, RoleVisualizador:
		return Role(name), nil
	default:
		return "", ErrUnknownRole
	}
}

// IsValid reports whether the role is part of the catalog.
func (r Role) IsValid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}
