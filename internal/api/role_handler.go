package api

import (
	"net/http"

	"github.com/sgt-project/sgt-api/internal/api/shared"
	"github.com/sgt-project/sgt-api/internal/domain"
)

// RoleHandler serves the fixed role catalog.
type RoleHandler struct{}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler() *RoleHandler {
	return &RoleHandler{}
}

// ListRoles handles GET /roles.
func (h *RoleHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	if _, ok := getActorFromRequest(w, r); !ok {
		return
	}

	roles := make([]RoleResponse, 0, len(domain.AllRoles))
	for _, info := range domain.AllRoles {
		roles = append(roles, RoleResponse{Name: info.Name, Description: info.Description})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, roles)
}
