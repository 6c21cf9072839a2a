package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sgt-project/sgt-api/internal/api/shared"
	"github.com/sgt-project/sgt-api/internal/service"
)

// WorkflowHandler serves the workflow template catalog. The catalog is
// seeded at install time; any authenticated user may browse it, or add
// a template, when setting up a new board.
type WorkflowHandler struct {
	workflowService service.WorkflowService
	validator       *validator.Validate
}

// NewWorkflowHandler creates a new WorkflowHandler with the given dependencies.
func NewWorkflowHandler(workflowService service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{
		workflowService: workflowService,
		validator:       validator.New(),
	}
}

// CreateTemplate handles POST /workflows.
func (h *WorkflowHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	var req CreateWorkflowRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "A name and at least one state are required")
		return
	}

	template, err := h.workflowService.CreateTemplate(r.Context(), actor, req.Name, req.States)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, template)
}

// ListTemplates handles GET /workflows.
func (h *WorkflowHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	templates, err := h.workflowService.ListTemplates(r.Context(), actor)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, templates)
}

// GetTemplate handles GET /workflows/{id}.
func (h *WorkflowHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	templateID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	template, err := h.workflowService.GetTemplate(r.Context(), actor, templateID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, template)
}
