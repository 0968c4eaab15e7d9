package routes

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/OFFIS-RIT/plotline/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	"github.com/OFFIS-RIT/plotline/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

// pathParam returns the unescaped path parameter, names are usually CJK.
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// loadAnalysis fetches the analysis for :id. On failure the error response
// is already written and ok is false.
func loadAnalysis(c echo.Context) (*common.Analysis, bool, error) {
	id := pathParam(c, "id")
	app := c.(*middleware.AppContext).App

	analysis, err := app.Store.GetAnalysis(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, errorJSON(c, http.StatusNotFound, "Novel not found")
		}
		logger.Error("[Server] Failed to load analysis", "novel_id", id, "err", err)
		return nil, false, errorJSON(c, http.StatusInternalServerError, "Internal server error")
	}
	return analysis, true, nil
}
