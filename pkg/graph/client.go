package graph

import (
	"regexp"

	"github.com/OFFIS-RIT/plotline/backend/pkg/lexicon"
	"github.com/OFFIS-RIT/plotline/backend/pkg/text"
)

const (
	defaultMinMentions       = 2
	defaultAliasThreshold    = 0.8
	defaultParallelDocuments = 2

	// MainCharacterThreshold splits main from supporting characters.
	MainCharacterThreshold = 0.3
	// MajorEventThreshold is the importance at which an event becomes major.
	MajorEventThreshold = 0.6
	// MainPlotThreshold is the contribution score of main plot events.
	MainPlotThreshold = 0.5

	patternStrength   = 0.8
	causalityStrength = 0.7
)

// GraphClient runs the narrative analysis pipeline. It only holds
// immutable configuration: every call allocates its own working state, so
// a single client can analyse many novels concurrently.
//
// A GraphClient should be created using NewGraphClient.
type GraphClient struct {
	lexicon           *lexicon.Lexicon
	tokenizer         text.Tokenizer
	minMentions       int
	aliasThreshold    float64
	parallelDocuments int
	discoverNames     bool

	actionVerbs map[string]struct{}
	causal      *lexicon.KeywordMatcher
	timeMarkers []timeMarkerRule
}

type timeMarkerRule struct {
	markerType string
	patterns   []*regexp.Regexp
}

// NewGraphClientParams defines the configuration parameters for creating
// a new GraphClient.
//
// Lexicon defaults to lexicon.Default. Tokenizer defaults to a
// text.GseTokenizer built from the lexicon, pass a text.LexiconTokenizer to
// tag with the lexicon tables alone. MinMentions and
// AliasThreshold tune entity extraction, ParallelDocuments limits how many
// novels ProcessNovels analyses at once. DiscoverNames enables surname and
// place-suffix discovery for tokenizers implementing text.NameLearner.
type NewGraphClientParams struct {
	Lexicon           *lexicon.Lexicon
	Tokenizer         text.Tokenizer
	MinMentions       int
	AliasThreshold    float64
	ParallelDocuments int
	DiscoverNames     bool
}

// NewGraphClient creates and returns a new GraphClient configured with
// the provided parameters.
//
// Example:
//
//	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
//		MinMentions:   2,
//		DiscoverNames: true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	analysis, err := client.ProcessNovel(ctx, novel)
func NewGraphClient(params NewGraphClientParams) (*GraphClient, error) {
	lex := params.Lexicon
	if lex == nil {
		lex = lexicon.Default()
	}
	if err := lex.Validate(); err != nil {
		return nil, err
	}

	tokenizer := params.Tokenizer
	if tokenizer == nil {
		gse, err := text.NewGseTokenizer(lex)
		if err != nil {
			return nil, err
		}
		tokenizer = gse
	}
	minMentions := params.MinMentions
	if minMentions <= 0 {
		minMentions = defaultMinMentions
	}
	aliasThreshold := params.AliasThreshold
	if aliasThreshold <= 0 || aliasThreshold > 1 {
		aliasThreshold = defaultAliasThreshold
	}
	parallel := params.ParallelDocuments
	if parallel <= 0 {
		parallel = defaultParallelDocuments
	}

	verbs := make(map[string]struct{}, len(lex.ActionVerbs))
	for _, v := range lex.ActionVerbs {
		verbs[v] = struct{}{}
	}

	markers := make([]timeMarkerRule, 0, len(lex.TimeMarkers))
	for _, c := range lex.TimeMarkers {
		rule := timeMarkerRule{markerType: c.Name}
		for _, kw := range c.Keywords {
			rule.patterns = append(rule.patterns, regexp.MustCompile(kw))
		}
		markers = append(markers, rule)
	}

	return &GraphClient{
		lexicon:           lex,
		tokenizer:         tokenizer,
		minMentions:       minMentions,
		aliasThreshold:    aliasThreshold,
		parallelDocuments: parallel,
		discoverNames:     params.DiscoverNames,
		actionVerbs:       verbs,
		causal:            lexicon.NewKeywordMatcher(lex.CausalKeywords),
		timeMarkers:       markers,
	}, nil
}

// Lexicon returns the tables the client was built with.
func (g *GraphClient) Lexicon() *lexicon.Lexicon {
	return g.lexicon
}
