package server

import (
	"github.com/OFFIS-RIT/plotline/backend/internal/server/middleware"
	"github.com/OFFIS-RIT/plotline/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)
	view := middleware.RequirePermission(middleware.PermissionView)

	// Novel routes
	apiRoutes.GET("/novels", routes.GetNovelsHandler, view)
	apiRoutes.POST("/novels", routes.UploadNovelHandler, middleware.RequirePermission(middleware.PermissionCreate))
	apiRoutes.POST("/novels/analyze", routes.AnalyzeNovelHandler, middleware.RequirePermission(middleware.PermissionCreate))
	apiRoutes.GET("/novels/:id", routes.GetNovelHandler, view)
	apiRoutes.DELETE("/novels/:id", routes.DeleteNovelHandler, middleware.RequirePermission(middleware.PermissionDelete))

	// Character routes
	apiRoutes.GET("/novels/:id/characters", routes.GetCharactersHandler, view)
	apiRoutes.GET("/novels/:id/characters/:name", routes.GetCharacterHandler, view)
	apiRoutes.GET("/novels/:id/graph", routes.GetGraphHandler, view)

	// Timeline routes
	apiRoutes.GET("/novels/:id/timeline", routes.GetTimelineHandler, view)
	apiRoutes.GET("/novels/:id/timeline/events/:event_id", routes.GetEventContextHandler, view)

	// Side analysis routes
	apiRoutes.GET("/novels/:id/locations", routes.GetLocationsHandler, view)
	apiRoutes.GET("/novels/:id/locations/:name", routes.GetLocationHandler, view)
	apiRoutes.GET("/novels/:id/emotions", routes.GetEmotionsHandler, view)
	apiRoutes.GET("/novels/:id/states", routes.GetStatesHandler, view)
}
