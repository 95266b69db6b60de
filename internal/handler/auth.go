package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/skyhigh/airline-checkin/internal/service"
)

// AuthHandler serves login and token refresh.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

type loginReq struct {
	BookingReference string `json:"booking_reference"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// Login handles POST /v1/auth/login. Identity is the booking reference
// plus matching last name and email; on success the passenger gets a
// token pair and their upcoming flights.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, service.ErrValidation("Invalid request body"))
	}
	view, serr := h.Auth.Login(c.Request().Context(),
		strings.TrimSpace(req.BookingReference),
		strings.TrimSpace(req.LastName),
		strings.TrimSpace(req.Email))
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(http.StatusOK, view)
}

// Refresh handles POST /v1/auth/refresh. The presented refresh token is
// rotated: it stops working and a new pair is returned.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, service.ErrValidation("Invalid request body"))
	}
	view, serr := h.Auth.Refresh(c.Request().Context(), strings.TrimSpace(req.RefreshToken))
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(http.StatusOK, view)
}
