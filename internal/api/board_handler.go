package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sgt-project/sgt-api/internal/api/shared"
	"github.com/sgt-project/sgt-api/internal/service"
)

// BoardHandler handles board and board-membership API requests.
type BoardHandler struct {
	boardService service.BoardService
	validator    *validator.Validate
}

// NewBoardHandler creates a new BoardHandler with the given dependencies.
func NewBoardHandler(boardService service.BoardService) *BoardHandler {
	return &BoardHandler{
		boardService: boardService,
		validator:    validator.New(),
	}
}

// CreateBoard handles POST /boards.
func (h *BoardHandler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	var req CreateBoardRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid board data")
		return
	}

	board, err := h.boardService.CreateBoard(r.Context(), actor, req.Name, req.Description, req.Color, req.TemplateID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, board)
}

// GetBoard handles GET /boards/{id}.
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	boardID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	board, err := h.boardService.GetBoard(r.Context(), actor, boardID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, board)
}

// ListBoards handles GET /boards.
func (h *BoardHandler) ListBoards(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	boards, err := h.boardService.ListBoards(r.Context(), actor)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, boards)
}

// UpdateBoard handles PATCH /boards/{id}.
func (h *BoardHandler) UpdateBoard(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	boardID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	var req UpdateBoardRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	board, err := h.boardService.UpdateBoard(r.Context(), actor, boardID, service.BoardUpdate{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		IsArchived:  req.IsArchived,
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, board)
}

// DeleteBoard handles DELETE /boards/{id}.
func (h *BoardHandler) DeleteBoard(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	boardID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	if err := h.boardService.DeleteBoard(r.Context(), actor, boardID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AssignUser handles POST /boards/{id}/assignments.
func (h *BoardHandler) AssignUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	boardID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	var req AssignUserRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "A user_id is required")
		return
	}

	if err := h.boardService.AssignUser(r.Context(), actor, boardID, req.UserID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnassignUser handles DELETE /boards/{id}/assignments/{userID}.
func (h *BoardHandler) UnassignUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	boardID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	userID, err := getPathUUID(r, "userID")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	if err := h.boardService.UnassignUser(r.Context(), actor, boardID, userID); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListAssignments handles GET /boards/{id}/assignments.
func (h *BoardHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	boardID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	assignments, err := h.boardService.ListAssignments(r.Context(), actor, boardID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, assignments)
}

// ListBoardStates handles GET /boards/{id}/states.
func (h *BoardHandler) ListBoardStates(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActorFromRequest(w, r)
	if !ok {
		return
	}

	boardID, err := getPathUUID(r, "id")
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	states, err := h.boardService.ListBoardStates(r.Context(), actor, boardID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, states)
}
