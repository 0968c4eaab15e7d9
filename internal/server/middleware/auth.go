package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	PermissionView   = "novel.view"
	PermissionCreate = "novel.create"
	PermissionDelete = "novel.delete"
)

var allPermissions = []string{PermissionView, PermissionCreate, PermissionDelete}

func bearerToken(c echo.Context) string {
	if key := c.Request().Header.Get("X-API-Key"); key != "" {
		return key
	}
	authHeader := c.Request().Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func keyMatches(token, key string) bool {
	return key != "" && subtle.ConstantTimeCompare([]byte(token), []byte(key)) == 1
}

// AuthMiddleware resolves the caller from a Bearer token or X-API-Key
// header. API_KEY grants every permission, READ_API_KEY only viewing. When
// no key is configured at all the API is open.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cc := c.(*AppContext)
		app := cc.App

		if app.APIKey == "" && app.ReadAPIKey == "" {
			cc.User = &AppUser{Role: "admin", Permissions: allPermissions}
			return next(cc)
		}

		token := bearerToken(c)
		switch {
		case keyMatches(token, app.APIKey):
			cc.User = &AppUser{Role: "admin", Permissions: allPermissions}
		case keyMatches(token, app.ReadAPIKey):
			cc.User = &AppUser{Role: "reader", Permissions: []string{PermissionView}}
		default:
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}
		return next(cc)
	}
}
