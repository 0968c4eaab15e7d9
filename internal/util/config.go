package util

import (
	"fmt"

	"github.com/OFFIS-RIT/plotline/backend/pkg/graph"
	"github.com/OFFIS-RIT/plotline/backend/pkg/lexicon"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger/console"
	"github.com/OFFIS-RIT/plotline/backend/pkg/text"
)

// InitLogger installs the console backend, at debug level when DEBUG is set.
func InitLogger() {
	logger.Init(console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: GetEnvBool("DEBUG", false),
		JSON:  GetEnvString("LOG_FORMAT", "text") == "json",
	}))
}

// NewTokenizer returns the tokenizer named by TOKENIZER: "gse" (default)
// or "lexicon" for the lexicon tables alone.
func NewTokenizer(lex *lexicon.Lexicon) (text.Tokenizer, error) {
	switch name := GetEnvString("TOKENIZER", "gse"); name {
	case "gse":
		return text.NewGseTokenizer(lex)
	case "lexicon":
		return text.NewLexiconTokenizer(lex), nil
	default:
		return nil, fmt.Errorf("unknown tokenizer %q", name)
	}
}

// NewGraphClient builds a pipeline client from MIN_MENTIONS,
// ALIAS_THRESHOLD, PARALLEL_DOCUMENTS, DISCOVER_NAMES, TOKENIZER and
// LEXICON_PATH.
func NewGraphClient() (*graph.GraphClient, error) {
	lex := lexicon.Default()
	if path := GetEnv("LEXICON_PATH"); path != "" {
		loaded, err := lexicon.Load(path)
		if err != nil {
			return nil, err
		}
		lex = loaded
		logger.Info("[Env] Lexicon loaded", "path", path, "names", len(lex.Names), "places", len(lex.Places))
	}

	tokenizer, err := NewTokenizer(lex)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokenizer: %w", err)
	}

	client, err := graph.NewGraphClient(graph.NewGraphClientParams{
		Lexicon:           lex,
		Tokenizer:         tokenizer,
		MinMentions:       GetEnvInt("MIN_MENTIONS", 2),
		AliasThreshold:    GetEnvNumeric("ALIAS_THRESHOLD", 0.8),
		ParallelDocuments: GetEnvInt("PARALLEL_DOCUMENTS", 2),
		DiscoverNames:     GetEnvBool("DISCOVER_NAMES", true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create graph client: %w", err)
	}
	return client, nil
}
