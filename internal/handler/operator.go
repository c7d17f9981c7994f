package handler // handler contains operator administration endpoints

import (
	"net/http" // http provides status code constants
	"strings"  // strings offers trimming utilities

	"github.com/iliyamo/parking-lot/internal/model"   // model holds the operator struct
	"github.com/iliyamo/parking-lot/internal/service" // service implements operator administration
	"github.com/labstack/echo/v4"                     // echo is the web framework used for handlers
)

// OperatorHandler exposes operator administration over HTTP.
type OperatorHandler struct {
	Operators *service.OperatorService // Operators manages gate personnel records
}

// NewOperatorHandler constructs an OperatorHandler and panics on a nil service.
func NewOperatorHandler(operators *service.OperatorService) *OperatorHandler {
	if operators == nil {
		panic("nil service passed to NewOperatorHandler")
	}
	return &OperatorHandler{Operators: operators}
}

type operatorBody struct {
	Name  string  `json:"name"`  // Name is the operator's display name
	Email *string `json:"email"` // Email is optional
}

// Create handles POST /v1/operators.
func (h *OperatorHandler) Create(c echo.Context) error {
	var body operatorBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	o := &model.Operator{Name: strings.TrimSpace(body.Name), Email: body.Email}
	if err := h.Operators.Create(c.Request().Context(), o); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

// Update handles PUT /v1/operators/:id.
func (h *OperatorHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var body operatorBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	o := &model.Operator{ID: id, Name: strings.TrimSpace(body.Name), Email: body.Email}
	if err := h.Operators.Update(c.Request().Context(), o); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// Toggle handles POST /v1/operators/:id/toggle.  Deactivation is
// refused while the operator has an open shift.
func (h *OperatorHandler) Toggle(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	o, err := h.Operators.Toggle(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// Delete handles DELETE /v1/operators/:id.
func (h *OperatorHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	if err := h.Operators.Delete(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /v1/operators/:id.
func (h *OperatorHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	o, err := h.Operators.Get(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// List handles GET /v1/operators.
func (h *OperatorHandler) List(c echo.Context) error {
	items, err := h.Operators.List(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}
