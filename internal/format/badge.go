// Package format holds the display classification rules for the dashboard:
// significance and sentiment badges, price trend styling, engagement metrics
// normalization and JSON syntax highlighting. Everything here is pure; the
// web templates only ever branch on the classes these functions return.
package format

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Badge classes shared between the view models and the stylesheet.
const (
	BucketHigh   = "high"
	BucketMedium = "medium"
	BucketLow    = "low"

	TonePositive = "positive"
	ToneNegative = "negative"
	ToneNeutral  = "neutral"
)

// Significance is a news significance rating. The analyzer returns either a
// category label ("High") or a 0-10 score depending on the model, so both
// forms are carried and classified through the same Bucket rules.
type Significance struct {
	Label *string
	Score *float64
}

// CategoricalSignificance wraps a label such as "High" or "Medium".
func CategoricalSignificance(label string) Significance {
	return Significance{Label: &label}
}

// NumericSignificance wraps a 0-10 score.
func NumericSignificance(score float64) Significance {
	return Significance{Score: &score}
}

// Bucket maps the rating onto a badge class. Labels win over scores:
// "High" and "Medium" map directly (case-insensitive), anything else is low.
// Scores of 7 and above are high, 4 to 7 medium, the rest low.
func (s Significance) Bucket() string {
	if s.Label != nil {
		switch {
		case strings.EqualFold(*s.Label, "High"):
			return BucketHigh
		case strings.EqualFold(*s.Label, "Medium"):
			return BucketMedium
		default:
			return BucketLow
		}
	}
	if s.Score != nil {
		switch {
		case *s.Score >= 7:
			return BucketHigh
		case *s.Score >= 4:
			return BucketMedium
		default:
			return BucketLow
		}
	}
	return BucketLow
}

// Display returns the badge text: the label verbatim, or the score without
// trailing zeros. An empty Significance displays as "N/A".
func (s Significance) Display() string {
	if s.Label != nil {
		return *s.Label
	}
	if s.Score != nil {
		return strconv.FormatFloat(*s.Score, 'f', -1, 64)
	}
	return "N/A"
}

// Sentiment is a news sentiment rating, categorical ("Positive") or a score
// in the -1..1 range.
type Sentiment struct {
	Label *string
	Score *float64
}

// CategoricalSentiment wraps a label such as "Positive" or "Negative".
func CategoricalSentiment(label string) Sentiment {
	return Sentiment{Label: &label}
}

// NumericSentiment wraps a -1..1 score.
func NumericSentiment(score float64) Sentiment {
	return Sentiment{Score: &score}
}

// Tone maps the rating onto a badge class. "Positive" and "Negative" labels
// map directly (case-insensitive), anything else is neutral. Scores above 0.1
// are positive, below -0.1 negative, the band between is neutral.
func (s Sentiment) Tone() string {
	if s.Label != nil {
		switch {
		case strings.EqualFold(*s.Label, "Positive"):
			return TonePositive
		case strings.EqualFold(*s.Label, "Negative"):
			return ToneNegative
		default:
			return ToneNeutral
		}
	}
	if s.Score != nil {
		switch {
		case *s.Score > 0.1:
			return TonePositive
		case *s.Score < -0.1:
			return ToneNegative
		default:
			return ToneNeutral
		}
	}
	return ToneNeutral
}

// Display returns the badge text: the label verbatim, or the score with two
// decimals. An empty Sentiment displays as "N/A".
func (s Sentiment) Display() string {
	if s.Label != nil {
		return *s.Label
	}
	if s.Score != nil {
		return strconv.FormatFloat(*s.Score, 'f', 2, 64)
	}
	return "N/A"
}

// SignificanceFrom builds a Significance from a decoded analysis JSON value,
// tolerating both the string and number forms the LLM produces. Returns nil
// for absent or unusable values.
func SignificanceFrom(v any) *Significance {
	switch n := v.(type) {
	case string:
		if strings.TrimSpace(n) == "" {
			return nil
		}
		s := CategoricalSignificance(n)
		return &s
	case float64:
		s := NumericSignificance(n)
		return &s
	case json.Number:
		if f, err := n.Float64(); err == nil {
			s := NumericSignificance(f)
			return &s
		}
	}
	return nil
}

// SentimentFrom builds a Sentiment from a decoded analysis JSON value.
// Returns nil for absent or unusable values.
func SentimentFrom(v any) *Sentiment {
	switch n := v.(type) {
	case string:
		if strings.TrimSpace(n) == "" {
			return nil
		}
		s := CategoricalSentiment(n)
		return &s
	case float64:
		s := NumericSentiment(n)
		return &s
	case json.Number:
		if f, err := n.Float64(); err == nil {
			s := NumericSentiment(f)
			return &s
		}
	}
	return nil
}
