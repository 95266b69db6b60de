// Package handler exposes the HTTP surface of the check-in API. The
// handlers are thin: bind, call a service, translate the result. All
// domain decisions live in the service layer.
package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/skyhigh/airline-checkin/internal/service"
)

// respondError writes a domain error in the uniform envelope clients
// branch on:
//
//	{"error": {"code": "...", "message": "...", "retryable": true, ...}}
//
// A retry hint is mirrored into the Retry-After header so plain HTTP
// clients get it too.
func respondError(c echo.Context, serr *service.Error) error {
	if serr.RetryAfterSeconds != nil {
		c.Response().Header().Set("Retry-After", strconv.Itoa(*serr.RetryAfterSeconds))
	}
	return c.JSON(serr.HTTPStatus(), echo.Map{"error": serr})
}
