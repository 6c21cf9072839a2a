package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sgt-project/sgt-api/internal/api/shared"
	"github.com/sgt-project/sgt-api/internal/service"
	"github.com/sgt-project/sgt-api/internal/store"
)

// TaskHandler handles task and task-history API requests.
type TaskHandler struct {
	taskService service.TaskService
	validator   *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validator.New(),
	}
}

// CreateTask handles POST /tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task data")
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), actor, service.TaskCreate{
		Title:        req.Title,
		Description:  req.Description,
		BoardID:      req.BoardID,
		StateID:      req.StateID,
		AssignedToID: req.AssignedToID,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		CustomFields: req.CustomFields,
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// GetTask handles GET /tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	task, err := h.taskService.GetTask(r.Context(), actor, taskID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// ListTasks handles GET /tasks. Optional query parameters board_id,
// state_id, assigned_to_id and created_by_id narrow the result.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	var filter store.TaskFilter
	for param, target := range map[string]**uuid.UUID{
		"board_id":       &filter.BoardID,
		"state_id":       &filter.StateID,
		"assigned_to_id": &filter.AssignedToID,
		"created_by_id":  &filter.CreatedByID,
	} {
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+param+" filter")
			return
		}
		*target = &id
	}

	tasks, err := h.taskService.ListTasks(r.Context(), actor, filter)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// UpdateTask handles PATCH /tasks/{id}. The raw body is inspected so an
// explicit null on assigned_to_id, start_date or end_date clears the
// value while an absent key leaves it unchanged.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	var req UpdateTaskRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	present, err := presentFields(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	update := service.TaskUpdate{
		Title:        req.Title,
		Description:  req.Description,
		StateID:      req.StateID,
		CustomFields: req.CustomFields,
	}
	if _, ok := present["assigned_to_id"]; ok {
		update.AssignedToID = &req.AssignedToID
	}
	if _, ok := present["start_date"]; ok {
		update.StartDate = &req.StartDate
	}
	if _, ok := present["end_date"]; ok {
		update.EndDate = &req.EndDate
	}

	task, err := h.taskService.UpdateTask(r.Context(), actor, taskID, update)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), actor, taskID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddRecord handles POST /tasks/{id}/record, appending a comment entry
// to the task's history.
func (h *TaskHandler) AddRecord(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	var req AddRecordRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "A doc text is required")
		return
	}

	task, err := h.taskService.AddRecord(r.Context(), actor, taskID, req.Doc)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// ListRecord handles GET /tasks/{id}/record.
func (h *TaskHandler) ListRecord(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	taskID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	record, err := h.taskService.ListRecord(r.Context(), actor, taskID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, record)
}
