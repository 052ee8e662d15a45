// Package calls provides the corrective maintenance call bounded context module.
package calls

import (
	"cmms_backend/internal/calls/handler"
	"cmms_backend/internal/calls/repository"
	"cmms_backend/internal/calls/service"
	"cmms_backend/internal/events"
	apphttp "cmms_backend/internal/http"
	"cmms_backend/platform/httpkit"
	"cmms_backend/platform/logger"
	"cmms_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the calls bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the calls module. The reconciler and
// equipment recorder are wired afterwards from main via the service setters.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "calls"
}

// Service returns the service layer for cross-module wiring in main.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts call routes on the provided router context. Any
// authenticated user may open and follow their own calls; assignment and
// execution are restricted by role.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/calls")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.GetByID)
	group.GET("/:id/history", m.handler.History)
	group.POST("", m.handler.Create)
	group.PUT("/:id", m.handler.Update)

	managing := group.Group("")
	managing.Use(httpkit.RequireRole("admin", "manager"))
	managing.POST("/:id/assign", m.handler.Assign)

	executing := group.Group("")
	executing.Use(httpkit.RequireRole("admin", "manager", "technician"))
	executing.POST("/:id/start", m.handler.Start)
	executing.POST("/:id/pause", m.handler.Pause)
	executing.POST("/:id/resume", m.handler.Resume)
	executing.POST("/:id/complete", m.handler.Complete)
	executing.POST("/:id/cancel", m.handler.Cancel)

	ctx.Admin.DELETE("/calls/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
