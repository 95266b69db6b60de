package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skyhigh/airline-checkin/internal/metrics"
	"github.com/skyhigh/airline-checkin/internal/middleware"
	"github.com/skyhigh/airline-checkin/internal/service"
)

// CheckInHandler serves the check-in session lifecycle.
type CheckInHandler struct {
	CheckIns *service.CheckInService
}

func NewCheckInHandler(checkIns *service.CheckInService) *CheckInHandler {
	return &CheckInHandler{CheckIns: checkIns}
}

type startReq struct {
	FlightID string `json:"flight_id"`
}

type baggageReq struct {
	WeightKg float64 `json:"weight_kg"`
}

type paymentReq struct {
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	IdempotencyKey string  `json:"idempotency_key"`
}

// Start handles POST /v1/checkin/start. A booking with a live or
// completed check-in gets a 409.
func (h *CheckInHandler) Start(c echo.Context) error {
	var req startReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, service.ErrValidation("Invalid request body"))
	}
	if req.FlightID == "" {
		return respondError(c, service.ErrValidation("flight_id is required"))
	}
	view, serr := h.CheckIns.Start(c.Request().Context(), middleware.PassengerID(c), req.FlightID)
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(http.StatusCreated, view)
}

// Get handles GET /v1/checkin/:id. Reading a session does not extend
// its deadline.
func (h *CheckInHandler) Get(c echo.Context) error {
	view, serr := h.CheckIns.Get(c.Request().Context(), c.Param("id"), middleware.PassengerID(c))
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(http.StatusOK, view)
}

// AddBaggage handles POST /v1/checkin/:id/baggage: declare the bag
// weight and learn the fee, if any.
func (h *CheckInHandler) AddBaggage(c echo.Context) error {
	var req baggageReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, service.ErrValidation("Invalid request body"))
	}
	view, serr := h.CheckIns.AddBaggage(c.Request().Context(), c.Param("id"), middleware.PassengerID(c), req.WeightKg)
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(http.StatusOK, view)
}

// Pay handles POST /v1/checkin/:id/payment, settling the excess baggage
// fee.
func (h *CheckInHandler) Pay(c echo.Context) error {
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, service.ErrValidation("Invalid request body"))
	}
	view, serr := h.CheckIns.Pay(c.Request().Context(), c.Param("id"), middleware.PassengerID(c), req.Amount, req.Currency, req.IdempotencyKey)
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(http.StatusOK, view)
}

// Complete handles POST /v1/checkin/:id/confirm: the held seat becomes
// permanent and the boarding pass is issued.
func (h *CheckInHandler) Complete(c echo.Context) error {
	view, serr := h.CheckIns.Complete(c.Request().Context(), c.Param("id"), middleware.PassengerID(c))
	if serr != nil {
		return respondError(c, serr)
	}
	recordCheckInOutcome("completed")
	return c.JSON(http.StatusOK, view)
}

// Cancel handles DELETE /v1/checkin/:id, abandoning the session and
// freeing any held seat.
func (h *CheckInHandler) Cancel(c echo.Context) error {
	view, serr := h.CheckIns.Cancel(c.Request().Context(), c.Param("id"), middleware.PassengerID(c))
	if serr != nil {
		return respondError(c, serr)
	}
	recordCheckInOutcome("cancelled")
	return c.JSON(http.StatusOK, view)
}

func recordCheckInOutcome(status string) {
	if m := metrics.Get(); m != nil {
		m.CheckInsTotal.WithLabelValues(status).Inc()
	}
}
