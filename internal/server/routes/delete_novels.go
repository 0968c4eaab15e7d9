package routes

import (
	"errors"
	"net/http"

	"github.com/OFFIS-RIT/plotline/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	"github.com/OFFIS-RIT/plotline/backend/pkg/store"

	"github.com/labstack/echo/v4"
)

func DeleteNovelHandler(c echo.Context) error {
	id := pathParam(c, "id")
	app := c.(*middleware.AppContext).App

	if err := app.Store.DeleteAnalysis(c.Request().Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errorJSON(c, http.StatusNotFound, "Novel not found")
		}
		logger.Error("[Server] Failed to delete analysis", "novel_id", id, "err", err)
		return errorJSON(c, http.StatusInternalServerError, "Internal server error")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Novel deleted"})
}
