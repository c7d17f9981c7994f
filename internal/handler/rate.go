package handler // handler contains rate catalog endpoints

import (
	"net/http" // http provides status code constants
	"strings"  // strings offers trimming utilities

	"github.com/iliyamo/parking-lot/internal/model"   // model holds the rate struct
	"github.com/iliyamo/parking-lot/internal/service" // service implements the rate catalog
	"github.com/labstack/echo/v4"                     // echo is the web framework used for handlers
)

// RateHandler exposes the rate catalog over HTTP.
type RateHandler struct {
	Rates *service.RateService // Rates owns the catalog and the active-rate cache
}

// NewRateHandler constructs a RateHandler and panics on a nil service.
func NewRateHandler(rates *service.RateService) *RateHandler {
	if rates == nil {
		panic("nil service passed to NewRateHandler")
	}
	return &RateHandler{Rates: rates}
}

// rateBody is the JSON payload shared by create and update.
type rateBody struct {
	Name          string `json:"name"`            // Name is the schedule name
	HourlyCents   int64  `json:"hourly_cents"`    // HourlyCents is the full-hour price
	FractionCents int64  `json:"fraction_cents"`  // FractionCents is the partial-hour price
	DailyCapCents *int64 `json:"daily_cap_cents"` // DailyCapCents is the optional per-stay maximum
	GraceMinutes  int    `json:"grace_minutes"`   // GraceMinutes is the free-stay threshold
}

func (b *rateBody) toModel() *model.Rate {
	return &model.Rate{
		Name:          strings.TrimSpace(b.Name),
		HourlyCents:   b.HourlyCents,
		FractionCents: b.FractionCents,
		DailyCapCents: b.DailyCapCents,
		GraceMinutes:  b.GraceMinutes,
	}
}

// Create handles POST /v1/rates.  New rates start inactive.
func (h *RateHandler) Create(c echo.Context) error {
	var body rateBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	r := body.toModel()
	if err := h.Rates.Create(c.Request().Context(), r); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

// Update handles PUT /v1/rates/:id.
func (h *RateHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var body rateBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	r := body.toModel()
	r.ID = id
	if err := h.Rates.Update(c.Request().Context(), r); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Activate handles POST /v1/rates/:id/activate.  Activation is
// exclusive, every other rate is deactivated in the same transaction.
func (h *RateHandler) Activate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	r, err := h.Rates.Activate(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Deactivate handles POST /v1/rates/:id/deactivate.
func (h *RateHandler) Deactivate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	r, err := h.Rates.Deactivate(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Delete handles DELETE /v1/rates/:id.  Rates referenced by billed
// tickets cannot be deleted.
func (h *RateHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	if err := h.Rates.Delete(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /v1/rates/:id.
func (h *RateHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	r, err := h.Rates.Get(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// GetActive handles GET /v1/rates/active and returns the rate in
// force, or 404 when billing is suspended.
func (h *RateHandler) GetActive(c echo.Context) error {
	r, err := h.Rates.GetActive(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	if r == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no active rate"})
	}
	return c.JSON(http.StatusOK, r)
}

// List handles GET /v1/rates.
func (h *RateHandler) List(c echo.Context) error {
	items, err := h.Rates.List(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}
