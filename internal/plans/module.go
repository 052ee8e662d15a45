// Package plans provides the preventive plan bounded context module.
package plans

import (
	"cmms_backend/internal/events"
	apphttp "cmms_backend/internal/http"
	"cmms_backend/internal/plans/handler"
	"cmms_backend/internal/plans/repository"
	"cmms_backend/internal/plans/service"
	"cmms_backend/platform/httpkit"
	"cmms_backend/platform/logger"
	"cmms_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the plans bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the plans module.
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
	return "plans"
}

// Service returns the service layer for cross-module wiring in main.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts plan routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/plans")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.GetByID)

	managed := group.Group("")
	managed.Use(httpkit.RequireRole("admin", "manager"))
	managed.POST("", m.handler.Create)
	managed.PUT("/:id", m.handler.Update)
	managed.DELETE("/:id", m.handler.Delete)
	managed.POST("/:id/toggle", m.handler.ToggleActive)
	managed.POST("/:id/generate-order", m.handler.GenerateOrder)
	managed.POST("/generate-orders", m.handler.GenerateDue)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
