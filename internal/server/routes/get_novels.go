package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/plotline/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"

	"github.com/labstack/echo/v4"
)

func GetNovelsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	summaries, err := app.Store.ListAnalyses(c.Request().Context())
	if err != nil {
		logger.Error("[Server] Failed to list analyses", "err", err)
		return errorJSON(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"novels": summaries,
		"count":  len(summaries),
	})
}

func GetNovelHandler(c echo.Context) error {
	analysis, ok, err := loadAnalysis(c)
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, analysis.Summary())
}
