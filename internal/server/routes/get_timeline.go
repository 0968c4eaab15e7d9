package routes

import (
	"net/http"
	"strconv"

	"github.com/OFFIS-RIT/plotline/backend/pkg/graph"

	"github.com/labstack/echo/v4"
)

// GetTimelineHandler returns the whole timeline, or the events of one
// chapter (?chapter=) or one character (?character=).
func GetTimelineHandler(c echo.Context) error {
	analysis, ok, err := loadAnalysis(c)
	if !ok {
		return err
	}
	timeline := analysis.Timeline

	if raw := c.QueryParam("chapter"); raw != "" {
		chapter, err := strconv.Atoi(raw)
		if err != nil || chapter < 1 {
			return errorJSON(c, http.StatusBadRequest, "Invalid chapter")
		}
		return c.JSON(http.StatusOK, map[string]any{
			"chapter": chapter,
			"events":  graph.ChapterTimeline(timeline, chapter),
		})
	}
	if name := c.QueryParam("character"); name != "" {
		if ch, found := graph.FindCharacter(analysis.Characters.Characters, name); found {
			name = ch.Name
		}
		return c.JSON(http.StatusOK, map[string]any{
			"character": name,
			"events":    graph.CharacterTimeline(timeline, name),
		})
	}

	return c.JSON(http.StatusOK, timeline)
}

// GetEventContextHandler returns an event with ?size= neighbours on each
// side. size=0 returns the event alone.
func GetEventContextHandler(c echo.Context) error {
	analysis, ok, err := loadAnalysis(c)
	if !ok {
		return err
	}

	size := graph.DefaultContextSize
	if raw := c.QueryParam("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return errorJSON(c, http.StatusBadRequest, "Invalid size")
		}
		size = n
	}

	eventCtx, found := graph.ContextOf(analysis.Timeline, pathParam(c, "event_id"), size)
	if !found {
		return errorJSON(c, http.StatusNotFound, "Event not found")
	}
	return c.JSON(http.StatusOK, eventCtx)
}
