package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/parking-lot/internal/handler" // import the handlers that implement the API surface
)

// RegisterRoutes registers routes that do not belong to a resource
// group.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterTickets registers the ticket lifecycle endpoints under /v1/tickets.
func RegisterTickets(e *echo.Echo, h *handler.TicketHandler) {
	g := e.Group("/v1/tickets")
	// Open a ticket on vehicle entry.
	g.POST("", h.Open)
	// List tickets; ?active=true restricts to open ones.
	g.GET("", h.List)
	// Look up the open ticket for a plate.
	g.GET("/active/:plate", h.ActiveByPlate)
	// Fetch one ticket by id.
	g.GET("/:id", h.Get)
	// Close a ticket on vehicle exit and bill it.
	g.POST("/:id/close", h.Close)
}

// RegisterRates registers the rate catalog endpoints under /v1/rates.
func RegisterRates(e *echo.Echo, h *handler.RateHandler) {
	g := e.Group("/v1/rates")
	g.GET("", h.List)
	// The rate currently in force, 404 when billing is suspended.
	g.GET("/active", h.GetActive)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	// Activation is exclusive: it deactivates every other rate.
	g.POST("/:id/activate", h.Activate)
	g.POST("/:id/deactivate", h.Deactivate)
	g.DELETE("/:id", h.Delete)
}

// RegisterPasses registers the monthly pass endpoints under /v1/passes.
func RegisterPasses(e *echo.Echo, h *handler.PassHandler) {
	g := e.Group("/v1/passes")
	g.GET("", h.List)
	// Passes ending within ?days.
	g.GET("/expiring", h.Expiring)
	// Whether a plate is covered right now (or at ?at=).
	g.GET("/valid/:plate", h.Valid)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	// Dispatch expiry warnings for passes not yet notified.
	g.POST("/notify-expiring", h.NotifyExpiring)
	g.PUT("/:id", h.Update)
	g.POST("/:id/toggle", h.Toggle)
	g.DELETE("/:id", h.Delete)
}

// RegisterOperators registers operator administration under /v1/operators.
func RegisterOperators(e *echo.Echo, h *handler.OperatorHandler) {
	g := e.Group("/v1/operators")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.POST("/:id/toggle", h.Toggle)
	g.DELETE("/:id", h.Delete)
}

// RegisterShifts registers the shift ledger endpoints under /v1/shifts.
func RegisterShifts(e *echo.Echo, h *handler.ShiftHandler) {
	g := e.Group("/v1/shifts")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Open)
	g.POST("/:id/close", h.Close)
	g.POST("/:id/toggle", h.Toggle)
}

// RegisterReconcile registers the reconciliation trigger at /v1/reconcile.
func RegisterReconcile(e *echo.Echo, h *handler.ReconcileHandler) {
	e.POST("/v1/reconcile", h.Run)
}
