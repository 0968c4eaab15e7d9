package graph

import (
	"fmt"
	"sort"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
)

// finalImportance combines mentions, degree and how early the character
// appears. firstAppearance below 1 is treated as chapter 1.
func finalImportance(mentions, degree, firstAppearance int) float64 {
	mentionScore := min(float64(mentions)/50, 1.0)
	centralityScore := min(float64(degree)/10, 1.0)
	earlyScore := 1 / float64(max(firstAppearance, 1))
	return min(0.4*mentionScore+0.4*centralityScore+0.2*earlyScore, 1.0)
}

// AnalyzeCharacters enriches characters with degree centrality and the
// composite importance, splits them into main and supporting characters and
// builds the relation network. The input slice is not modified. Character
// records without a name fail with common.ErrInvalidInput.
func AnalyzeCharacters(characters []common.Character, relations []common.Relation) (common.CharacterAnalysis, error) {
	if err := common.ValidateCharacters(characters); err != nil {
		return common.CharacterAnalysis{}, fmt.Errorf("failed to analyze characters: %w", err)
	}
	return analyzeCharacters(characters, relations), nil
}

func analyzeCharacters(characters []common.Character, relations []common.Relation) common.CharacterAnalysis {
	degree := make(map[string]int, len(characters))
	for _, r := range relations {
		degree[r.From]++
		degree[r.To]++
	}

	ranked := make([]common.Character, len(characters))
	copy(ranked, characters)
	for i := range ranked {
		c := &ranked[i]
		if c.FirstAppearance < 1 {
			logger.Warn("[Network] Invalid first appearance, using chapter 1", "character", c.Name, "first_appearance", c.FirstAppearance)
		}
		c.DegreeCentrality = degree[c.Name]
		c.FinalImportance = finalImportance(c.MentionCount, c.DegreeCentrality, c.FirstAppearance)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalImportance > ranked[j].FinalImportance
	})

	main := make([]common.Character, 0)
	supporting := make([]common.Character, 0)
	for _, c := range ranked {
		if c.FinalImportance >= MainCharacterThreshold {
			main = append(main, c)
		} else {
			supporting = append(supporting, c)
		}
	}

	if relations == nil {
		relations = []common.Relation{}
	}
	network := buildNetwork(ranked, relations)

	return common.CharacterAnalysis{
		Characters:           ranked,
		MainCharacters:       main,
		SupportingCharacters: supporting,
		Relations:            relations,
		Network:              network,
		Statistics: common.CharacterStatistics{
			TotalCharacters:      len(ranked),
			MainCharacters:       len(main),
			SupportingCharacters: len(supporting),
			TotalRelations:       len(relations),
			Communities:          len(network.Communities),
			NetworkDensity:       network.Density,
		},
	}
}

func buildNetwork(characters []common.Character, relations []common.Relation) common.Network {
	adjacency := make(map[string][]common.AdjacentEdge, len(characters))
	for _, c := range characters {
		adjacency[c.Name] = []common.AdjacentEdge{}
	}
	for _, r := range relations {
		adjacency[r.From] = append(adjacency[r.From], common.AdjacentEdge{
			Target:   r.To,
			Type:     r.RelationshipType,
			Strength: r.Strength,
		})
		adjacency[r.To] = append(adjacency[r.To], common.AdjacentEdge{
			Target:   r.From,
			Type:     r.RelationshipType,
			Strength: r.Strength,
		})
	}

	return common.Network{
		Adjacency:   adjacency,
		Communities: findCommunities(characters, adjacency),
		Density:     density(len(characters), len(relations)),
	}
}

func density(nodes, edges int) float64 {
	if nodes <= 1 {
		return 0
	}
	possible := float64(nodes*(nodes-1)) / 2
	return float64(edges) / possible
}

// findCommunities reports connected components with more than one member.
// Roots are visited in ranked character order, members in DFS order.
func findCommunities(characters []common.Character, adjacency map[string][]common.AdjacentEdge) []common.Community {
	visited := make(map[string]bool, len(adjacency))
	communities := make([]common.Community, 0)

	for _, c := range characters {
		if visited[c.Name] {
			continue
		}
		members := make([]string, 0)
		stack := []string{c.Name}
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[node] {
				continue
			}
			visited[node] = true
			members = append(members, node)
			edges := adjacency[node]
			for i := len(edges) - 1; i >= 0; i-- {
				if !visited[edges[i].Target] {
					stack = append(stack, edges[i].Target)
				}
			}
		}
		if len(members) > 1 {
			communities = append(communities, common.Community{
				ID:      len(communities),
				Members: members,
				Size:    len(members),
			})
		}
	}
	return communities
}

// CharacterProfile is a character together with everything the analysis
// knows about them.
type CharacterProfile struct {
	Character   common.Character      `json:"character"`
	Relations   []common.Relation     `json:"relations"`
	Connections []common.AdjacentEdge `json:"connections"`
	Community   *common.Community     `json:"community,omitempty"`
	IsMain      bool                  `json:"is_main"`
}

// FindCharacter looks up a character by canonical name or alias.
func FindCharacter(characters []common.Character, name string) (common.Character, bool) {
	for _, c := range characters {
		for _, n := range c.Names() {
			if n == name {
				return c, true
			}
		}
	}
	return common.Character{}, false
}

// Profile returns the profile of the character called name (canonical or
// alias). The second return value is false if no such character exists.
func Profile(analysis common.CharacterAnalysis, name string) (CharacterProfile, bool) {
	c, ok := FindCharacter(analysis.Characters, name)
	if !ok {
		return CharacterProfile{}, false
	}

	relations := make([]common.Relation, 0)
	for _, r := range analysis.Relations {
		if r.From == c.Name || r.To == c.Name {
			relations = append(relations, r)
		}
	}
	connections := analysis.Network.Adjacency[c.Name]
	if connections == nil {
		connections = []common.AdjacentEdge{}
	}

	profile := CharacterProfile{
		Character:   c,
		Relations:   relations,
		Connections: connections,
		IsMain:      c.FinalImportance >= MainCharacterThreshold,
	}
	for i := range analysis.Network.Communities {
		community := analysis.Network.Communities[i]
		for _, m := range community.Members {
			if m == c.Name {
				profile.Community = &community
				break
			}
		}
		if profile.Community != nil {
			break
		}
	}
	return profile, true
}
