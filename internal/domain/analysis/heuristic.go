package analysis

import (
	"strings"
	"unicode/utf8"
)

const (
	heuristicPositiveScore = 0.7
	heuristicNegativeScore = 0.3
	heuristicHighEnergy    = 0.6
	heuristicLowEnergy     = 0.3
	heuristicWordThreshold = 6
	heuristicMinKeywordLen = 5
	heuristicMaxKeywords   = 5
)

var positiveSignals = []string{"great", "good", "love", "excited"}

// AnalyzeHeuristic is the dependency-free fallback. It never fails and never
// returns the neutral label.
func AnalyzeHeuristic(text string) Result {
	lower := strings.ToLower(text)
	score := heuristicNegativeScore
	for _, w := range positiveSignals {
		if strings.Contains(lower, w) {
			score = heuristicPositiveScore
			break
		}
	}

	label := LabelNegative
	if score >= 0.5 {
		label = LabelPositive
	}

	words := strings.Fields(text)
	energy := heuristicLowEnergy
	if len(words) > heuristicWordThreshold {
		energy = heuristicHighEnergy
	}

	return Result{
		SentimentScore: score,
		SentimentLabel: label,
		Energy:         energy,
		Keywords:       heuristicKeywords(words),
	}
}

// heuristicKeywords keeps long tokens in first-seen order, trimmed of .,!?
func heuristicKeywords(words []string) []string {
	keywords := make([]string, 0, heuristicMaxKeywords)
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len(keywords) == heuristicMaxKeywords {
			break
		}
		if utf8.RuneCountInString(w) < heuristicMinKeywordLen {
			continue
		}
		kw := strings.Trim(w, ".,!?")
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
	}
	return keywords
}
