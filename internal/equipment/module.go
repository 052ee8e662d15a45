// Package equipment provides the equipment bounded context module.
package equipment

import (
	"cmms_backend/internal/equipment/handler"
	"cmms_backend/internal/equipment/repository"
	"cmms_backend/internal/equipment/service"
	apphttp "cmms_backend/internal/http"
	"cmms_backend/platform/logger"
	"cmms_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the equipment bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the equipment module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "equipment"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for cross-module wiring in main.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes mounts equipment routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/equipment")
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.GetByID)
	group.POST("", m.handler.Create)
	group.PUT("/:id", m.handler.Update)

	ctx.Admin.DELETE("/equipment/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
