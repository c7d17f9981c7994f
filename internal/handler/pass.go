package handler // handler contains monthly pass endpoints

import (
	"net/http" // http provides status code constants
	"strconv"  // strconv parses the days query parameter
	"time"     // time parses the optional at query parameter

	"github.com/iliyamo/parking-lot/internal/model"   // model holds the pass struct
	"github.com/iliyamo/parking-lot/internal/service" // service implements the pass registry
	"github.com/labstack/echo/v4"                     // echo is the web framework used for handlers
)

// PassHandler exposes the monthly pass registry over HTTP.
type PassHandler struct {
	Passes   *service.PassService // Passes owns validity checks and notifications
	WarnDays int                  // WarnDays is the default expiry window for ?days
}

// NewPassHandler constructs a PassHandler and panics on a nil service.
func NewPassHandler(passes *service.PassService, warnDays int) *PassHandler {
	if passes == nil {
		panic("nil service passed to NewPassHandler")
	}
	if warnDays <= 0 {
		warnDays = 3
	}
	return &PassHandler{Passes: passes, WarnDays: warnDays}
}

// passBody is the JSON payload shared by create and update.  Times are
// RFC 3339.
type passBody struct {
	OwnerName string    `json:"owner_name"` // OwnerName is the subscription holder
	Email     *string   `json:"email"`      // Email is optional, used for notifications
	Plate     string    `json:"plate"`      // Plate is the covered vehicle plate
	StartsAt  time.Time `json:"starts_at"`  // StartsAt is the first covered instant
	EndsAt    time.Time `json:"ends_at"`    // EndsAt is the last covered instant
}

func (b *passBody) toModel() *model.MonthlyPass {
	return &model.MonthlyPass{
		OwnerName: b.OwnerName,
		Email:     b.Email,
		Plate:     service.NormalizePlate(b.Plate),
		StartsAt:  b.StartsAt.UTC(),
		EndsAt:    b.EndsAt.UTC(),
	}
}

// Create handles POST /v1/passes.  The amount is derived from the
// window length, not taken from the request.
func (h *PassHandler) Create(c echo.Context) error {
	var body passBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	p := body.toModel()
	if err := h.Passes.Create(c.Request().Context(), p); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// Update handles PUT /v1/passes/:id.
func (h *PassHandler) Update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	var body passBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	p := body.toModel()
	p.ID = id
	if err := h.Passes.Update(c.Request().Context(), p); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Toggle handles POST /v1/passes/:id/toggle and flips the pass
// between active and inactive.
func (h *PassHandler) Toggle(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	p, err := h.Passes.Toggle(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /v1/passes/:id.  Passes referenced by tickets
// cannot be deleted.
func (h *PassHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	if err := h.Passes.Delete(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /v1/passes/:id.
func (h *PassHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, "invalid id")
	}
	p, err := h.Passes.Get(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// List handles GET /v1/passes, ordered by end date.
func (h *PassHandler) List(c echo.Context) error {
	items, err := h.Passes.List(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Valid handles GET /v1/passes/valid/:plate and reports whether the
// plate is covered right now, or at ?at=<RFC3339> when given.
func (h *PassHandler) Valid(c echo.Context) error {
	at := time.Now().UTC()
	if raw := c.QueryParam("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return badRequest(c, "invalid at parameter")
		}
		at = parsed.UTC()
	}
	ok, err := h.Passes.IsValid(c.Request().Context(), c.Param("plate"), at)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"plate": service.NormalizePlate(c.Param("plate")), "valid": ok})
}

// Expiring handles GET /v1/passes/expiring and lists passes ending
// within ?days (defaults to the configured warning window).
func (h *PassHandler) Expiring(c echo.Context) error {
	days := h.daysParam(c)
	items, err := h.Passes.ListExpiring(c.Request().Context(), days)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// NotifyExpiring handles POST /v1/passes/notify-expiring and publishes
// expiry warnings for passes that have not been notified yet.
func (h *PassHandler) NotifyExpiring(c echo.Context) error {
	days := h.daysParam(c)
	sent, err := h.Passes.NotifyExpiring(c.Request().Context(), days)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"notified": sent})
}

// daysParam reads ?days, falling back to the configured warning window.
func (h *PassHandler) daysParam(c echo.Context) int {
	if raw := c.QueryParam("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return h.WarnDays
}
