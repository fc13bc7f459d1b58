// Package analysis rates collected news items with an LLM: how significant
// each item is for the Bitcoin market, its sentiment, and a short summary.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"btcbuzzbot/internal/database"
	"btcbuzzbot/internal/format"
)

const analysisPrompt = `You are analyzing one Bitcoin news item for a market dashboard.

Rate its significance for the Bitcoin market and its sentiment.

Source: %s
News text:
%s

Respond with ONLY this JSON:
{
    "significance": 0-10,
    "sentiment": -1.0 to 1.0,
    "summary": "One or two plain-language sentences"
}

significance: 10 = market-moving (ETF decisions, regulation, major exchange hacks), 0 = noise.
sentiment: above 0 bullish, below 0 bearish.`

// Result holds the results of an analysis run.
type Result struct {
	Processed int
	High      int
	Errors    int
}

// Analyzer rates unprocessed news items and stores the results.
type Analyzer struct {
	db        *database.DB
	provider  Provider
	maxTokens int
	batchSize int
}

// NewAnalyzer creates a news analyzer.
func NewAnalyzer(db *database.DB, provider Provider, maxTokens, batchSize int) *Analyzer {
	if maxTokens <= 0 {
		maxTokens = 512
	}
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Analyzer{db: db, provider: provider, maxTokens: maxTokens, batchSize: batchSize}
}

// AnalyzeNews analyzes the next batch of unprocessed items. Items whose
// response could not be parsed keep their raw text and stay queued for the
// next run.
func (a *Analyzer) AnalyzeNews(ctx context.Context) *Result {
	if a.provider == nil {
		log.Println("No LLM provider available for analysis")
		return &Result{Errors: 1}
	}

	items, err := a.db.GetUnprocessedNews(a.batchSize)
	if err != nil {
		log.Printf("Error getting unprocessed news: %v", err)
		return &Result{Errors: 1}
	}
	if len(items) == 0 {
		log.Println("No news items pending analysis")
		return &Result{}
	}

	r := &Result{}
	for _, item := range items {
		raw, normalized, err := a.analyzeItem(ctx, item)
		if err != nil {
			log.Printf("Error analyzing news item %d: %v", item.ID, err)
			r.Errors++
			continue
		}

		if err := a.db.SaveNewsAnalysis(item.ID, raw, normalized); err != nil {
			log.Printf("Error saving analysis for item %d: %v", item.ID, err)
			r.Errors++
			continue
		}

		if normalized == nil {
			log.Printf("Unparseable analysis for news item %d, kept raw response", item.ID)
			r.Errors++
			continue
		}

		r.Processed++
		if sig := significanceOf(*normalized); sig != nil && sig.Bucket() == format.BucketHigh {
			r.High++
		}
	}

	log.Printf("Analysis complete: %d processed (%d high significance), %d errors",
		r.Processed, r.High, r.Errors)
	return r
}

func (a *Analyzer) analyzeItem(ctx context.Context, item database.NewsItem) (string, *string, error) {
	text := item.Text
	if len(text) > 4000 {
		text = text[:4000] + "..."
	}

	source := "unknown"
	if item.Source != nil {
		source = *item.Source
	}

	prompt := fmt.Sprintf(analysisPrompt, source, text)

	raw, err := a.provider.Generate(ctx, prompt, a.maxTokens)
	if err != nil {
		return "", nil, err
	}

	parsed := ParseJSONResponse(raw)
	if parsed == nil {
		return raw, nil, nil
	}
	return raw, normalizeAnalysis(parsed), nil
}

// normalizeAnalysis keeps the known fields, clamps numeric ranges and drops
// everything else, so readers can rely on the stored shape. The LLM sends
// significance and sentiment either as numbers or as category labels; both
// forms are preserved.
func normalizeAnalysis(parsed map[string]any) *string {
	out := make(map[string]any)

	if v, ok := parsed["significance"]; ok {
		if f, isNum := toFloat(v); isNum {
			out["significance"] = clamp(f, 0, 10)
		} else if s, isStr := v.(string); isStr && strings.TrimSpace(s) != "" {
			out["significance"] = strings.TrimSpace(s)
		}
	}

	if v, ok := parsed["sentiment"]; ok {
		if f, isNum := toFloat(v); isNum {
			out["sentiment"] = clamp(f, -1, 1)
		} else if s, isStr := v.(string); isStr && strings.TrimSpace(s) != "" {
			out["sentiment"] = strings.TrimSpace(s)
		}
	}

	if s := getString(parsed, "summary", ""); strings.TrimSpace(s) != "" {
		out["summary"] = strings.TrimSpace(s)
	}

	if len(out) == 0 {
		return nil
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

// significanceOf reads the significance field back out of a normalized
// analysis document.
func significanceOf(analysisJSON string) *format.Significance {
	var m map[string]any
	if err := json.Unmarshal([]byte(analysisJSON), &m); err != nil {
		return nil
	}
	return format.SignificanceFrom(m["significance"])
}

func getString(m map[string]any, key, fallback string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}

func clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
