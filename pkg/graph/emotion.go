package graph

import (
	"regexp"
	"strings"

	"github.com/OFFIS-RIT/plotline/backend/pkg/common"
	"github.com/OFFIS-RIT/plotline/backend/pkg/lexicon"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	"github.com/OFFIS-RIT/plotline/backend/pkg/text"
)

const (
	emotionNeutral           = "neutral"
	emotionRelationIntensity = 0.8
	stableVariance           = 0.1
)

var (
	positiveEmotions = []string{"positive", "love"}
	negativeEmotions = []string{"negative", "angry", "fear"}
)

// dominantEmotion returns the category with the highest count, ties by
// lexicon order, or neutral when nothing matched.
func dominantEmotion(counts map[string]int, categories []lexicon.Category) string {
	best := emotionNeutral
	bestCount := 0
	for _, c := range categories {
		if counts[c.Name] > bestCount {
			best = c.Name
			bestCount = counts[c.Name]
		}
	}
	return best
}

func chapterEmotion(ch common.Chapter, categories []lexicon.Category) common.ChapterEmotion {
	counts := make(map[string]int, len(categories))
	total := 0
	for _, c := range categories {
		counts[c.Name] = 0
		for _, kw := range c.Keywords {
			if kw == "" {
				continue
			}
			n := strings.Count(ch.Content, kw)
			counts[c.Name] += n
			total += n
		}
	}

	score := 0.0
	if total > 0 {
		pos := 0
		for _, name := range positiveEmotions {
			pos += counts[name]
		}
		neg := 0
		for _, name := range negativeEmotions {
			neg += counts[name]
		}
		score = float64(pos-neg) / float64(total)
	}

	return common.ChapterEmotion{
		Chapter:           ch.Number,
		EmotionScore:      score,
		DominantEmotion:   dominantEmotion(counts, categories),
		EmotionCounts:     counts,
		TotalEmotionWords: total,
	}
}

// characterEmotions tags every character named in a paragraph with the
// dominant emotion of that paragraph.
func characterEmotions(
	chapters []common.Chapter,
	characters []common.Character,
	categories []lexicon.Category,
) map[string][]common.CharacterEmotion {
	idx := newNameIndex(characters)
	out := make(map[string][]common.CharacterEmotion)
	for _, ch := range chapters {
		for _, para := range ch.Paragraphs {
			names := idx.present(para)
			if len(names) == 0 {
				continue
			}
			counts := make(map[string]int)
			for _, c := range categories {
				for _, kw := range c.Keywords {
					if kw != "" && strings.Contains(para, kw) {
						counts[c.Name]++
					}
				}
			}
			dominant := dominantEmotion(counts, categories)
			if dominant == emotionNeutral {
				continue
			}
			for _, n := range names {
				out[n] = append(out[n], common.CharacterEmotion{
					Chapter: ch.Number,
					Emotion: dominant,
					Context: text.Truncate(para, contextRunes),
				})
			}
		}
	}
	return out
}

// emotionRelations finds "A <verb> B" statements between known characters.
func emotionRelations(chapters []common.Chapter, characters []common.Character, verbs []string) []common.EmotionRelation {
	out := make([]common.EmotionRelation, 0)
	idx := newNameIndex(characters)
	if len(idx.surfaces) < 2 || len(verbs) == 0 {
		return out
	}
	alt := idx.pattern()
	re := regexp.MustCompile(`(` + alt + `)\s*(` + text.Alternation(verbs) + `)\s*(` + alt + `)`)

	for _, ch := range chapters {
		for _, m := range re.FindAllStringSubmatch(ch.Content, -1) {
			from, okFrom := idx.resolve(m[1])
			to, okTo := idx.resolve(m[3])
			if !okFrom || !okTo || from == to {
				continue
			}
			out = append(out, common.EmotionRelation{
				From:        from,
				To:          to,
				EmotionType: m[2],
				Chapter:     ch.Number,
				Intensity:   emotionRelationIntensity,
				Context:     m[0],
			})
		}
	}
	return out
}

// emotionalPeaks finds strict local maxima and minima of the chapter
// scores. Fewer than three chapters have none.
func emotionalPeaks(emotions []common.ChapterEmotion) common.EmotionPeaks {
	peaks := common.EmotionPeaks{
		Peaks:   make([]common.EmotionPoint, 0),
		Valleys: make([]common.EmotionPoint, 0),
	}
	for i := 1; i < len(emotions)-1; i++ {
		prev := emotions[i-1].EmotionScore
		curr := emotions[i].EmotionScore
		next := emotions[i+1].EmotionScore
		if curr > prev && curr > next {
			peaks.Peaks = append(peaks.Peaks, common.EmotionPoint{Chapter: emotions[i].Chapter, Score: curr, Type: "peak"})
		}
		if curr < prev && curr < next {
			peaks.Valleys = append(peaks.Valleys, common.EmotionPoint{Chapter: emotions[i].Chapter, Score: curr, Type: "valley"})
		}
	}
	return peaks
}

func meanVariance(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return mean, variance / float64(len(values))
}

// AnalyzeEmotions runs the keyword based emotion analysis.
func (g *GraphClient) AnalyzeEmotions(chapters []common.Chapter, characters []common.Character) common.EmotionAnalysis {
	categories := g.lexicon.Emotions

	chapterEmotions := make([]common.ChapterEmotion, 0, len(chapters))
	curve := make([]common.EmotionPoint, 0, len(chapters))
	scores := make([]float64, 0, len(chapters))
	for _, ch := range chapters {
		ce := chapterEmotion(ch, categories)
		chapterEmotions = append(chapterEmotions, ce)
		curve = append(curve, common.EmotionPoint{Chapter: ce.Chapter, Score: ce.EmotionScore, Dominant: ce.DominantEmotion})
		scores = append(scores, ce.EmotionScore)
	}

	peaks := emotionalPeaks(chapterEmotions)
	mean, variance := meanVariance(scores)
	relations := emotionRelations(chapters, characters, g.lexicon.EmotionVerbs)

	logger.Debug("[Emotion] Analyzed emotions", "chapters", len(chapterEmotions), "relations", len(relations))

	return common.EmotionAnalysis{
		ChapterEmotions:   chapterEmotions,
		CharacterEmotions: characterEmotions(chapters, characters, categories),
		EmotionRelations:  relations,
		EmotionCurve:      curve,
		EmotionalPeaks:    peaks,
		Statistics: common.EmotionStatistics{
			AverageEmotion:  mean,
			EmotionVariance: variance,
			PeakCount:       len(peaks.Peaks),
			ValleyCount:     len(peaks.Valleys),
		},
	}
}

// EmotionSummary condenses an emotion analysis for display.
type EmotionSummary struct {
	AverageEmotion      float64        `json:"average_emotion"`
	EmotionVariance     float64        `json:"emotion_variance"`
	Stable              bool           `json:"stable"`
	PeakCount           int            `json:"peak_count"`
	ValleyCount         int            `json:"valley_count"`
	EmotionDistribution map[string]int `json:"emotion_distribution"`
	MostCommonEmotion   string         `json:"most_common_emotion"`
}

// SummarizeEmotions counts the dominant emotion of every chapter.
func SummarizeEmotions(analysis common.EmotionAnalysis) EmotionSummary {
	dist := make(map[string]int)
	order := make([]string, 0)
	for _, ce := range analysis.ChapterEmotions {
		if _, ok := dist[ce.DominantEmotion]; !ok {
			order = append(order, ce.DominantEmotion)
		}
		dist[ce.DominantEmotion]++
	}
	mostCommon := emotionNeutral
	best := 0
	for _, e := range order {
		if dist[e] > best {
			best = dist[e]
			mostCommon = e
		}
	}

	return EmotionSummary{
		AverageEmotion:      analysis.Statistics.AverageEmotion,
		EmotionVariance:     analysis.Statistics.EmotionVariance,
		Stable:              analysis.Statistics.EmotionVariance < stableVariance,
		PeakCount:           analysis.Statistics.PeakCount,
		ValleyCount:         analysis.Statistics.ValleyCount,
		EmotionDistribution: dist,
		MostCommonEmotion:   mostCommon,
	}
}
