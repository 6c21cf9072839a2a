package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgt-project/sgt-api/internal/api/shared"
	"github.com/sgt-project/sgt-api/internal/domain"
	"github.com/sgt-project/sgt-api/internal/domain/access"
	"github.com/sgt-project/sgt-api/internal/service"
	"github.com/sgt-project/sgt-api/internal/store"
)

// fakeTaskService records the last call and returns canned results.
type fakeTaskService struct {
	task       *domain.Task
	record     []domain.RecordEntry
	err        error
	lastUpdate service.TaskUpdate
	lastFilter store.TaskFilter
	lastDoc    string
}

func (f *fakeTaskService) CreateTask(ctx context.Context, actor service.Actor, input service.TaskCreate) (*domain.Task, error) {
	return f.task, f.err
}

func (f *fakeTaskService) GetTask(ctx context.Context, actor service.Actor, taskID uuid.UUID) (*domain.Task, error) {
	return f.task, f.err
}

func (f *fakeTaskService) ListTasks(ctx context.Context, actor service.Actor, filter store.TaskFilter) ([]*domain.Task, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return []*domain.Task{f.task}, nil
}

func (f *fakeTaskService) UpdateTask(ctx context.Context, actor service.Actor, taskID uuid.UUID, update service.TaskUpdate) (*domain.Task, error) {
	f.lastUpdate = update
	return f.task, f.err
}

func (f *fakeTaskService) DeleteTask(ctx context.Context, actor service.Actor, taskID uuid.UUID) error {
	return f.err
}

func (f *fakeTaskService) AddRecord(ctx context.Context, actor service.Actor, taskID uuid.UUID, doc string) (*domain.Task, error) {
	f.lastDoc = doc
	return f.task, f.err
}

func (f *fakeTaskService) ListRecord(ctx context.Context, actor service.Actor, taskID uuid.UUID) ([]domain.RecordEntry, error) {
	return f.record, f.err
}

// newTaskRouter mounts the handler under the routes the server uses.
func newTaskRouter(svc service.TaskService) http.Handler {
	h := NewTaskHandler(svc)
	r := chi.NewRouter()
	r.Post("/tasks", h.CreateTask)
	r.Get("/tasks", h.ListTasks)
	r.Get("/tasks/{id}", h.GetTask)
	r.Patch("/tasks/{id}", h.UpdateTask)
	r.Delete("/tasks/{id}", h.DeleteTask)
	r.Post("/tasks/{id}/record", h.AddRecord)
	r.Get("/tasks/{id}/record", h.ListRecord)
	return r
}

// asActor stamps the request context the way the trace and auth
// middleware do.
func asActor(req *http.Request, actor service.Actor) *http.Request {
	ctx := shared.SetTraceID(req.Context())
	ctx = context.WithValue(ctx, shared.ActorContextKey, actor)
	return req.WithContext(ctx)
}

func agentActor() service.Actor {
	return service.Actor{ID: uuid.New(), Username: "jlopez", Role: domain.RoleAgente}
}

func sampleTask() *domain.Task {
	return &domain.Task{
		ID:      uuid.New(),
		Title:   "Revisar ticket",
		BoardID: uuid.New(),
		StateID: uuid.New(),
	}
}

func TestUpdateTaskForbiddenFieldResponse(t *testing.T) {
	svc := &fakeTaskService{
		err: &access.ForbiddenFieldError{Role: domain.RoleAgente, Field: access.FieldDescription},
	}
	router := newTaskRouter(svc)

	body := bytes.NewBufferString(`{"description": "nueva descripción"}`)
	req := asActor(httptest.NewRequest(http.MethodPatch, "/tasks/"+uuid.NewString(), body), agentActor())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Field not editable: description", resp.Error)
	assert.NotEmpty(t, resp.TraceID)
}

func TestUpdateTaskDistinguishesNullFromAbsent(t *testing.T) {
	svc := &fakeTaskService{task: sampleTask()}
	router := newTaskRouter(svc)

	body := bytes.NewBufferString(`{"title": "Nuevo título", "assigned_to_id": null}`)
	req := asActor(httptest.NewRequest(http.MethodPatch, "/tasks/"+uuid.NewString(), body), agentActor())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	update := svc.lastUpdate
	require.NotNil(t, update.Title)
	assert.Equal(t, "Nuevo título", *update.Title)

	// assigned_to_id was present as null: clear the assignee
	require.NotNil(t, update.AssignedToID)
	assert.Nil(t, *update.AssignedToID)

	// the dates were absent: leave them unchanged
	assert.Nil(t, update.StartDate)
	assert.Nil(t, update.EndDate)
}

func TestUpdateTaskReassignment(t *testing.T) {
	svc := &fakeTaskService{task: sampleTask()}
	router := newTaskRouter(svc)

	assignee := uuid.New()
	body := bytes.NewBufferString(`{"assigned_to_id": "` + assignee.String() + `"}`)
	req := asActor(httptest.NewRequest(http.MethodPatch, "/tasks/"+uuid.NewString(), body), agentActor())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastUpdate.AssignedToID)
	require.NotNil(t, *svc.lastUpdate.AssignedToID)
	assert.Equal(t, assignee, **svc.lastUpdate.AssignedToID)
}

func TestUpdateTaskInvalidID(t *testing.T) {
	svc := &fakeTaskService{task: sampleTask()}
	router := newTaskRouter(svc)

	body := bytes.NewBufferString(`{"title": "x"}`)
	req := asActor(httptest.NewRequest(http.MethodPatch, "/tasks/not-a-uuid", body), agentActor())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTaskRequiresAuthentication(t *testing.T) {
	svc := &fakeTaskService{task: sampleTask()}
	router := newTaskRouter(svc)

	body := bytes.NewBufferString(`{"title": "x"}`)
	req := httptest.NewRequest(http.MethodPatch, "/tasks/"+uuid.NewString(), body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListTasksParsesFilters(t *testing.T) {
	svc := &fakeTaskService{task: sampleTask()}
	router := newTaskRouter(svc)

	boardID := uuid.New()
	req := asActor(httptest.NewRequest(http.MethodGet, "/tasks?board_id="+boardID.String(), nil), agentActor())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastFilter.BoardID)
	assert.Equal(t, boardID, *svc.lastFilter.BoardID)
	assert.Nil(t, svc.lastFilter.StateID)
}

func TestListTasksRejectsBadFilter(t *testing.T) {
	svc := &fakeTaskService{task: sampleTask()}
	router := newTaskRouter(svc)

	req := asActor(httptest.NewRequest(http.MethodGet, "/tasks?board_id=nope", nil), agentActor())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddRecordCreated(t *testing.T) {
	svc := &fakeTaskService{task: sampleTask()}
	router := newTaskRouter(svc)

	body := bytes.NewBufferString(`{"doc": "Cliente confirmó el fallo"}`)
	req := asActor(httptest.NewRequest(http.MethodPost, "/tasks/"+uuid.NewString()+"/record", body), agentActor())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Cliente confirmó el fallo", svc.lastDoc)
}

func TestAddRecordRequiresDoc(t *testing.T) {
	svc := &fakeTaskService{task: sampleTask()}
	router := newTaskRouter(svc)

	body := bytes.NewBufferString(`{}`)
	req := asActor(httptest.NewRequest(http.MethodPost, "/tasks/"+uuid.NewString()+"/record", body), agentActor())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTaskNotFound(t *testing.T) {
	svc := &fakeTaskService{err: store.ErrTaskNotFound}
	router := newTaskRouter(svc)

	req := asActor(httptest.NewRequest(http.MethodDelete, "/tasks/"+uuid.NewString(), nil), agentActor())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
