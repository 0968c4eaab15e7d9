package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/graph"

	"github.com/labstack/echo/v4"
)

func GetCharactersHandler(c echo.Context) error {
	analysis, ok, err := loadAnalysis(c)
	if !ok {
		return err
	}
	chars := analysis.Characters
	return c.JSON(http.StatusOK, map[string]any{
		"characters":            chars.Characters,
		"main_characters":       chars.MainCharacters,
		"supporting_characters": chars.SupportingCharacters,
		"statistics":            chars.Statistics,
	})
}

// GetCharacterHandler resolves :name by canonical name or alias and adds
// the state history of the character to its profile.
func GetCharacterHandler(c echo.Context) error {
	analysis, ok, err := loadAnalysis(c)
	if !ok {
		return err
	}

	profile, found := graph.Profile(analysis.Characters, pathParam(c, "name"))
	if !found {
		return errorJSON(c, http.StatusNotFound, "Character not found")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"profile":  profile,
		"states":   graph.StateHistory(analysis.States, profile.Character.Name, ""),
		"emotions": analysis.Emotions.CharacterEmotions[profile.Character.Name],
		"timeline": graph.CharacterTimeline(analysis.Timeline, profile.Character.Name),
	})
}

type graphNode struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Importance float64 `json:"importance"`
	Mentions   int     `json:"mentions"`
	IsMain     bool    `json:"is_main"`
	Community  int     `json:"community"`
}

type graphEdge struct {
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Type     string  `json:"type"`
	Strength float64 `json:"strength"`
}

// GetGraphHandler returns the relation network as nodes and edges.
// Characters outside any community get community 0.
func GetGraphHandler(c echo.Context) error {
	analysis, ok, err := loadAnalysis(c)
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, buildGraph(analysis.Characters))
}

func buildGraph(chars common.CharacterAnalysis) map[string]any {
	community := make(map[string]int)
	for _, comm := range chars.Network.Communities {
		for _, member := range comm.Members {
			community[member] = comm.ID
		}
	}
	isMain := make(map[string]bool, len(chars.MainCharacters))
	for _, m := range chars.MainCharacters {
		isMain[m.Name] = true
	}

	nodes := make([]graphNode, 0, len(chars.Characters))
	for _, ch := range chars.Characters {
		nodes = append(nodes, graphNode{
			ID:         ch.Name,
			Name:       ch.Name,
			Importance: ch.FinalImportance,
			Mentions:   ch.MentionCount,
			IsMain:     isMain[ch.Name],
			Community:  community[ch.Name],
		})
	}
	edges := make([]graphEdge, 0, len(chars.Relations))
	for _, r := range chars.Relations {
		edges = append(edges, graphEdge{
			Source:   r.From,
			Target:   r.To,
			Type:     r.RelationshipType,
			Strength: r.Strength,
		})
	}

	return map[string]any{
		"nodes":       nodes,
		"edges":       edges,
		"communities": chars.Network.Communities,
		"density":     chars.Network.Density,
	}
}
