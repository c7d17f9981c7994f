package handler // handler contains ticket entry and exit endpoints

import (
	"net/http" // http provides status code constants

	"github.com/iliyamo/parking-lot/internal/service" // service implements the ticket lifecycle
	"github.com/labstack/echo/v4"                     // echo is the web framework used for handlers
)

// TicketHandler exposes the ticket lifecycle over HTTP.
type TicketHandler struct {
	Tickets *service.TicketService // Tickets performs opens, closes and lookups
}

// NewTicketHandler constructs a TicketHandler and panics on a nil service.
func NewTicketHandler(tickets *service.TicketService) *TicketHandler {
	if tickets == nil {
		panic("nil service passed to NewTicketHandler")
	}
	return &TicketHandler{Tickets: tickets}
}

// Open handles POST /v1/tickets and registers a vehicle entry.
func (h *TicketHandler) Open(c echo.Context) error {
	var body struct {
		Plate      string `json:"plate"`       // Plate is the vehicle plate, required
		Kind       string `json:"kind"`        // Kind is GUEST or MONTHLY_PASS, defaults to GUEST
		OperatorID uint64 `json:"operator_id"` // OperatorID identifies the gate operator
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	t, err := h.Tickets.Open(c.Request().Context(), body.Plate, body.Kind, body.OperatorID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// Close handles POST /v1/tickets/:id/close and registers the exit.
func (h *TicketHandler) Close(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var body struct {
		OperatorID uint64 `json:"operator_id"` // OperatorID identifies the exit operator
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	t, err := h.Tickets.Close(c.Request().Context(), id, body.OperatorID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Get handles GET /v1/tickets/:id.
func (h *TicketHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	t, err := h.Tickets.Get(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// List handles GET /v1/tickets.  With ?active=true only open tickets
// are returned, otherwise every non-voided ticket.
func (h *TicketHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	if c.QueryParam("active") == "true" {
		items, err := h.Tickets.ListActive(ctx)
		if err != nil {
			return writeErr(c, err)
		}
		return c.JSON(http.StatusOK, map[string]any{"items": items})
	}
	items, err := h.Tickets.List(ctx)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// ActiveByPlate handles GET /v1/tickets/active/:plate and returns the
// plate's open ticket, or 404 when the plate is not parked.
func (h *TicketHandler) ActiveByPlate(c echo.Context) error {
	t, err := h.Tickets.GetActiveByPlate(c.Request().Context(), c.Param("plate"))
	if err != nil {
		return writeErr(c, err)
	}
	if t == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no active ticket for plate"})
	}
	return c.JSON(http.StatusOK, t)
}
