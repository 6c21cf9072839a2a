package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sgt-project/sgt-api/internal/api"
	apiMiddleware "github.com/sgt-project/sgt-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware. Login and refresh are public; everything else requires a
// valid access token.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService)
	userHandler := api.NewUserHandler(app.userService)
	boardHandler := api.NewBoardHandler(app.boardService)
	taskHandler := api.NewTaskHandler(app.taskService)
	workflowHandler := api.NewWorkflowHandler(app.workflowService)
	roleHandler := api.NewRoleHandler()
	analyticsHandler := api.NewAnalyticsHandler(app.analyticsService)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/auth/me", authHandler.Me)

			r.Post("/users", userHandler.CreateUser)
			r.Get("/users", userHandler.ListUsers)
			r.Get("/users/{id}", userHandler.GetUser)
			r.Patch("/users/{id}", userHandler.UpdateUser)
			r.Delete("/users/{id}", userHandler.DeleteUser)

			r.Get("/roles", roleHandler.ListRoles)

			r.Post("/workflows", workflowHandler.CreateTemplate)
			r.Get("/workflows", workflowHandler.ListTemplates)
			r.Get("/workflows/{id}", workflowHandler.GetTemplate)

			r.Post("/boards", boardHandler.CreateBoard)
			r.Get("/boards", boardHandler.ListBoards)
			r.Get("/boards/{id}", boardHandler.GetBoard)
			r.Patch("/boards/{id}", boardHandler.UpdateBoard)
			r.Delete("/boards/{id}", boardHandler.DeleteBoard)
			r.Get("/boards/{id}/states", boardHandler.ListBoardStates)
			r.Post("/boards/{id}/assignments", boardHandler.AssignUser)
			r.Get("/boards/{id}/assignments", boardHandler.ListAssignments)
			r.Delete("/boards/{id}/assignments/{userID}", boardHandler.UnassignUser)

			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks", taskHandler.ListTasks)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Patch("/tasks/{id}", taskHandler.UpdateTask)
			r.Delete("/tasks/{id}", taskHandler.DeleteTask)
			r.Post("/tasks/{id}/record", taskHandler.AddRecord)
			r.Get("/tasks/{id}/record", taskHandler.ListRecord)

			r.Route("/boards/{id}/analytics", func(r chi.Router) {
				r.Get("/overview", analyticsHandler.Overview)
				r.Get("/productivity", analyticsHandler.Productivity)
				r.Get("/bottlenecks", analyticsHandler.Bottlenecks)
				r.Get("/workload", analyticsHandler.Workload)
				r.Get("/time-in-states", analyticsHandler.TimeInStates)
				r.Get("/trends", analyticsHandler.DailyTrends)
				r.Get("/tasks-by-state", analyticsHandler.TasksByState)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
