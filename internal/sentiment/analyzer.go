// Package sentiment scores complaint text with weighted keyword lexicons.
package sentiment

import (
	"sort"
	"strings"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// Weighted keyword lexicons. The three maps are disjoint; negative weights
// mark negative sentiment.
var angryKeywords = map[string]int{
	"terrible":     -3,
	"worst":        -3,
	"horrible":     -3,
	"unacceptable": -3,
	"disgusted":    -3,
	"outraged":     -3,
	"furious":      -3,
	"angry":        -2,
	"broken":       -2,
	"outage":       -2,
	"useless":      -2,
	"scam":         -3,
	"fraud":        -3,
	"lawsuit":      -3,
}

var frustratedKeywords = map[string]int{
	"disappointed": -1,
	"annoying":     -1,
	"frustrated":   -1,
	"slow":         -1,
	"failing":      -1,
	"failed":       -1,
	"waiting":      -1,
	"stuck":        -1,
	"problem":      -1,
	"issue":        -1,
	"doesn't work": -1,
	"not working":  -1,
	"bug":          -1,
	"error":        -1,
}

var positiveKeywords = map[string]int{
	"thank":      2,
	"thanks":     2,
	"great":      2,
	"excellent":  3,
	"amazing":    3,
	"helpful":    2,
	"appreciate": 2,
	"satisfied":  2,
	"good":       1,
	"resolved":   1,
}

// Intensifiers double the weight of the following keyword.
var intensifiers = map[string]struct{}{
	"very": {}, "extremely": {}, "incredibly": {}, "absolutely": {},
	"completely": {}, "totally": {}, "really": {}, "so": {}, "quite": {},
}

// Negators flip the sign of the following keyword.
var negators = map[string]struct{}{
	"not": {}, "never": {}, "no": {}, "don't": {}, "doesn't": {},
	"didn't": {}, "won't": {}, "can't": {}, "couldn't": {},
	"shouldn't": {}, "wouldn't": {},
}

// Result carries the detailed analysis breakdown.
type Result struct {
	Sentiment       domain.Sentiment
	Score           int
	Confidence      float64
	MatchedKeywords []string
}

// Analyze classifies the sentiment of the given text. It is total: empty or
// unrecognized text maps to NEUTRAL.
func Analyze(text string) domain.Sentiment {
	if strings.TrimSpace(text) == "" {
		return domain.SentimentNeutral
	}
	normalized := normalize(text)
	return classify(score(normalized))
}

// AnalyzeDetailed returns the sentiment together with the raw score, matched
// keyword surface forms and a confidence estimate.
func AnalyzeDetailed(text string) Result {
	normalized := normalize(text)
	total := score(normalized)
	matched := matchedKeywords(normalized)
	return Result{
		Sentiment:       classify(total),
		Score:           total,
		Confidence:      confidence(len(matched)),
		MatchedKeywords: matched,
	}
}

func normalize(text string) string {
	lower := strings.ToLower(text)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func score(text string) int {
	if text == "" {
		return 0
	}
	words := strings.Fields(text)
	total := 0

	for i, word := range words {
		multiplier := 1
		negated := false
		if i > 0 {
			if _, ok := intensifiers[words[i-1]]; ok {
				multiplier = 2
			}
			if _, ok := negators[words[i-1]]; ok {
				negated = true
			}
		}

		wordScore := 0
		if w, ok := angryKeywords[word]; ok {
			wordScore = w
		} else if w, ok := frustratedKeywords[word]; ok {
			wordScore = w
		} else if w, ok := positiveKeywords[word]; ok {
			wordScore = w
		}

		if negated {
			wordScore = -wordScore
		}
		total += wordScore * multiplier
	}

	// Multi-word phrases are matched by containment, outside the per-token
	// loop, so they see neither intensifiers nor negators.
	for phrase, weight := range frustratedKeywords {
		if strings.Contains(phrase, " ") && strings.Contains(text, phrase) {
			total += weight
		}
	}

	return total
}

func classify(score int) domain.Sentiment {
	switch {
	case score <= -6:
		return domain.SentimentAngry
	case score <= -2:
		return domain.SentimentFrustrated
	case score >= 3:
		return domain.SentimentSatisfied
	default:
		return domain.SentimentNeutral
	}
}

// matchedKeywords scans lexicons in a fixed order (angry, frustrated,
// positive), sorted within each lexicon so results are deterministic.
func matchedKeywords(text string) []string {
	matched := []string{}
	for _, lexicon := range []map[string]int{angryKeywords, frustratedKeywords, positiveKeywords} {
		keys := make([]string, 0, len(lexicon))
		for keyword := range lexicon {
			keys = append(keys, keyword)
		}
		sort.Strings(keys)
		for _, keyword := range keys {
			if strings.Contains(text, keyword) {
				matched = append(matched, keyword)
			}
		}
	}
	return matched
}

func confidence(keywordCount int) float64 {
	if keywordCount == 0 {
		return 0.5
	}
	c := 0.5 + float64(keywordCount)*0.1
	if c > 0.95 {
		return 0.95
	}
	return c
}
