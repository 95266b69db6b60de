package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skyhigh/airline-checkin/internal/middleware"
	"github.com/skyhigh/airline-checkin/internal/service"
)

// BoardingPassHandler serves boarding pass retrieval.
type BoardingPassHandler struct {
	Passes *service.BoardingPassService
}

func NewBoardingPassHandler(passes *service.BoardingPassService) *BoardingPassHandler {
	return &BoardingPassHandler{Passes: passes}
}

// Get handles GET /v1/boarding-pass/:checkInId. The check-in must be
// completed; if issuance failed at completion time the pass is
// generated here.
func (h *BoardingPassHandler) Get(c echo.Context) error {
	pass, serr := h.Passes.GetForPassenger(c.Request().Context(), c.Param("checkInId"), middleware.PassengerID(c))
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(http.StatusOK, pass)
}
