package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/plotline/backend/pkg/graph"

	"github.com/labstack/echo/v4"
)

func GetLocationsHandler(c echo.Context) error {
	analysis, ok, err := loadAnalysis(c)
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, analysis.Locations)
}

func GetLocationHandler(c echo.Context) error {
	analysis, ok, err := loadAnalysis(c)
	if !ok {
		return err
	}

	profile, found := graph.LocationProfileOf(analysis.Locations, pathParam(c, "name"))
	if !found {
		return errorJSON(c, http.StatusNotFound, "Location not found")
	}
	return c.JSON(http.StatusOK, profile)
}
