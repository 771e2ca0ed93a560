package middleware // middleware contains reusable HTTP middleware for the drop service

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject, role and wallet claims into the request
// context. The provided secret must match the one used when issuing tokens.
// This middleware should wrap protected routes so that handlers can access
// authenticated user information via `c.Get("user_id")`, `c.Get("role")` and
// `c.Get("wallet")`.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header starts with "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with HS256 and our secret. The callback ensures the
			// algorithm matches what we expect; anything else is rejected.
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

			// Store the subject (user ID), role and wallet address in the
			// context. Handlers and downstream middleware read these via
			// c.Get(); type assertions are left to the consumers.
			c.Set("user_id", claims["sub"])
			c.Set("role", claims["role"])
			c.Set("wallet", claims["wallet"])
			return next(c)
		}
	}
}
