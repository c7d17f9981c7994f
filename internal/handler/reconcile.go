package handler // handler contains the reconciliation endpoint

import (
	"net/http" // http provides status code constants

	"github.com/iliyamo/parking-lot/internal/service" // service implements the reconciliation pass
	"github.com/labstack/echo/v4"                     // echo is the web framework used for handlers
)

// ReconcileHandler exposes the reconciliation pass over HTTP.
type ReconcileHandler struct {
	Reconcile *service.ReconcileService // Reconcile repairs inconsistent tickets
}

// NewReconcileHandler constructs a ReconcileHandler and panics on a nil service.
func NewReconcileHandler(reconcile *service.ReconcileService) *ReconcileHandler {
	if reconcile == nil {
		panic("nil service passed to NewReconcileHandler")
	}
	return &ReconcileHandler{Reconcile: reconcile}
}

// Run handles POST /v1/reconcile.  The pass is idempotent, running it
// twice in a row reports zero corrections the second time.
func (h *ReconcileHandler) Run(c echo.Context) error {
	res, err := h.Reconcile.Run(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
