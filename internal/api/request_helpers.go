package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sgt-project/sgt-api/internal/api/middleware"
	"github.com/sgt-project/sgt-api/internal/api/shared"
	"github.com/sgt-project/sgt-api/internal/domain"
	"github.com/sgt-project/sgt-api/internal/service"
)

// maxRequestBody caps request bodies at 1 MiB.
const maxRequestBody = 1 << 20

// DecodeJSON decodes the request body into v, rejecting oversized bodies.
func DecodeJSON(r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBody)
	defer func() { _, _ = io.Copy(io.Discard, body) }()
	return json.NewDecoder(body).Decode(v)
}

// getActorFromRequest extracts the authenticated actor placed in the
// context by the auth middleware, writing a 401 response when absent.
func getActorFromRequest(w http.ResponseWriter, r *http.Request) (service.Actor, bool) {
	actor, ok := middleware.GetActor(r)
	if !ok || actor.ID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return service.Actor{}, false
	}
	return actor, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// respondWithServiceError maps a service-layer error to its status code
// and safe message, logging the underlying error.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// presentFields reports which top-level JSON keys a raw request body
// carries, so handlers can tell an absent field from an explicit null.
func presentFields(raw []byte) (map[string]struct{}, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, errors.New("request body must be a JSON object")
	}

	present := make(map[string]struct{}, len(keys))
	for k := range keys {
		present[k] = struct{}{}
	}
	return present, nil
}
