// Package inventory provides the spare parts inventory bounded context module.
package inventory

import (
	"cmms_backend/internal/events"
	apphttp "cmms_backend/internal/http"
	"cmms_backend/internal/inventory/handler"
	"cmms_backend/internal/inventory/repository"
	"cmms_backend/internal/inventory/service"
	"cmms_backend/platform/httpkit"
	"cmms_backend/platform/logger"
	"cmms_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the inventory bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    repository.Repository
}

// NewModule creates and initializes the inventory module.
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
	return "inventory"
}

// Service returns the service layer so main can wire it as the parts
// reconciler of the orders and calls modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts inventory routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/inventory")
	group.GET("/items", m.handler.ListItems)
	group.GET("/items/:id", m.handler.GetItem)
	group.GET("/items/:id/movements", m.handler.Movements)
	group.GET("/movements", m.handler.ListMovements)
	group.GET("/low-stock", m.handler.LowStock)
	group.GET("/locations", m.handler.ListLocations)

	managing := group.Group("")
	managing.Use(httpkit.RequireRole("admin", "manager"))
	managing.POST("/items", m.handler.CreateItem)
	managing.PUT("/items/:id", m.handler.UpdateItem)
	managing.POST("/items/:id/entry", m.handler.RegisterEntry)
	managing.POST("/items/:id/adjust", m.handler.Adjust)
	managing.POST("/items/:id/transfer", m.handler.Transfer)
	managing.POST("/locations", m.handler.CreateLocation)
	managing.PUT("/locations/:id", m.handler.UpdateLocation)

	ctx.Admin.DELETE("/inventory/items/:id", m.handler.DeleteItem)
	ctx.Admin.DELETE("/inventory/locations/:id", m.handler.DeleteLocation)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
