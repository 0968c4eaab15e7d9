package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/plotline/backend/pkg/graph"

	"github.com/labstack/echo/v4"
)

func GetEmotionsHandler(c echo.Context) error {
	analysis, ok, err := loadAnalysis(c)
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"analysis": analysis.Emotions,
		"summary":  graph.SummarizeEmotions(analysis.Emotions),
	})
}

// GetStatesHandler filters state history by ?character= and ?type=.
// Without a character the full state analysis is returned.
func GetStatesHandler(c echo.Context) error {
	analysis, ok, err := loadAnalysis(c)
	if !ok {
		return err
	}

	name := c.QueryParam("character")
	if name == "" {
		return c.JSON(http.StatusOK, analysis.States)
	}
	if ch, found := graph.FindCharacter(analysis.Characters.Characters, name); found {
		name = ch.Name
	}
	return c.JSON(http.StatusOK, map[string]any{
		"character": name,
		"states":    graph.StateHistory(analysis.States, name, c.QueryParam("type")),
	})
}
