package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// PassengerIDKey is the context key under which JWTAuth stores the
// authenticated passenger's id.
const PassengerIDKey = "passenger_id"

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the token's subject into the request context.
// Handlers behind it read the passenger id via PassengerID(c).
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Only HS256 tokens we signed ourselves are acceptable; a
			// token with a different method is rejected outright.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}
			sub, _ := claims["sub"].(string)
			if sub == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			c.Set(PassengerIDKey, sub)
			return next(c)
		}
	}
}

// PassengerID extracts the authenticated passenger id stored by
// JWTAuth. It returns an empty string on unauthenticated requests.
func PassengerID(c echo.Context) string {
	if v, ok := c.Get(PassengerIDKey).(string); ok {
		return v
	}
	return ""
}
