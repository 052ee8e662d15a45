// Package orders provides the maintenance order bounded context module.
package orders

import (
	"cmms_backend/internal/events"
	apphttp "cmms_backend/internal/http"
	"cmms_backend/internal/orders/handler"
	"cmms_backend/internal/orders/repository"
	"cmms_backend/internal/orders/service"
	"cmms_backend/platform/httpkit"
	"cmms_backend/platform/logger"
	"cmms_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the orders bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the orders module. The reconciler,
// follow-up generator and equipment recorder are wired afterwards from main
// via the service setters.
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
	return "orders"
}

// Service returns the service layer for cross-module wiring in main.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts order routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/orders")
	group.GET("", m.handler.List)
	group.GET("/calendar", m.handler.Calendar)
	group.GET("/:id", m.handler.GetByID)

	executing := group.Group("")
	executing.Use(httpkit.RequireRole("admin", "manager", "technician"))
	executing.POST("/:id/start", m.handler.Start)
	executing.POST("/:id/pause", m.handler.Pause)
	executing.POST("/:id/resume", m.handler.Resume)
	executing.POST("/:id/complete", m.handler.Complete)
	executing.POST("/:id/cancel", m.handler.Cancel)

	ctx.Admin.DELETE("/orders/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
