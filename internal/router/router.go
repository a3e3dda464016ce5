package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskboard/backend/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Task     *apiHandler.TaskHandler
	Column   *apiHandler.ColumnHandler
	Label    *apiHandler.LabelHandler
	Sync     *apiHandler.SyncHandler
	Snapshot *apiHandler.SnapshotHandler
	Health   *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", handlers.Auth.Login)

	// Protected routes
	r.GET("/api/v1/board", authMiddleware(handlers.Task.GetBoard))

	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	r.GET("/api/v1/tasks/{id}/delete-preview", authMiddleware(handlers.Task.DeletePreview))
	r.POST("/api/v1/tasks/{id}/move", authMiddleware(handlers.Task.MoveTask))
	r.POST("/api/v1/tasks/{id}/reorder", authMiddleware(handlers.Task.ReorderTask))
	r.GET("/api/v1/tasks/{id}/parents", authMiddleware(handlers.Task.CandidateParents))
	r.GET("/api/v1/tasks/{id}/time-spent", authMiddleware(handlers.Task.TotalTimeSpent))

	r.POST("/api/v1/columns", authMiddleware(handlers.Column.AddColumn))
	r.PUT("/api/v1/columns/{id}", authMiddleware(handlers.Column.RenameColumn))
	r.DELETE("/api/v1/columns/{id}", authMiddleware(handlers.Column.DeleteColumn))
	r.POST("/api/v1/columns/reorder", authMiddleware(handlers.Column.ReorderColumns))

	r.POST("/api/v1/labels", authMiddleware(handlers.Label.AddLabel))

	r.POST("/api/v1/sync", authMiddleware(handlers.Sync.SyncAll))
	r.POST("/api/v1/sync/import", authMiddleware(handlers.Sync.ImportProject))
	r.POST("/api/v1/sync/tasks/{id}", authMiddleware(handlers.Sync.SyncTask))

	r.GET("/api/v1/snapshot", authMiddleware(handlers.Snapshot.Export))
	r.POST("/api/v1/snapshot", authMiddleware(handlers.Snapshot.Import))

	return r
}
