package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skyhigh/airline-checkin/internal/middleware"
	"github.com/skyhigh/airline-checkin/internal/service"
)

// FlightHandler serves flight details and the live seat map.
type FlightHandler struct {
	CheckIns *service.CheckInService
	Seats    *service.SeatService
}

func NewFlightHandler(checkIns *service.CheckInService, seats *service.SeatService) *FlightHandler {
	return &FlightHandler{CheckIns: checkIns, Seats: seats}
}

// Get handles GET /v1/flights/:id. Visibility requires a booking on the
// flight.
func (h *FlightHandler) Get(c echo.Context) error {
	info, serr := h.CheckIns.FlightDetails(c.Request().Context(), middleware.PassengerID(c), c.Param("id"))
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(http.StatusOK, info)
}

// SeatMap handles GET /v1/flights/:id/seats: the cabin layout with live
// seat statuses and per-class availability counts.
func (h *FlightHandler) SeatMap(c echo.Context) error {
	flightID := c.Param("id")
	if _, serr := h.CheckIns.FlightDetails(c.Request().Context(), middleware.PassengerID(c), flightID); serr != nil {
		return respondError(c, serr)
	}
	view, serr := h.Seats.SeatMap(c.Request().Context(), flightID)
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(http.StatusOK, view)
}
