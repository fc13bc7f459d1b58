// Package pipeline runs one full bot cycle: post a price update, collect
// news, analyze it and refresh engagement metrics.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"btcbuzzbot/internal/analysis"
	"btcbuzzbot/internal/bot"
	"btcbuzzbot/internal/config"
	"btcbuzzbot/internal/database"
	"btcbuzzbot/internal/format"
	"btcbuzzbot/internal/news"
	"btcbuzzbot/internal/price"
	"btcbuzzbot/internal/twitter"
)

// refreshLimit caps how many recent posts get their engagement refreshed
// per cycle. The X API lookup takes up to 100 IDs per call.
const refreshLimit = 20

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full cycle.
type Result struct {
	Steps []StepResult
}

// Pipeline orchestrates the 4-step bot cycle.
type Pipeline struct {
	cfg      *config.Config
	db       *database.DB
	twitter  *twitter.Client
	bot      *bot.Bot
	provider analysis.Provider
}

// New creates a pipeline from the loaded configuration.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	var tw *twitter.Client
	if cfg.Twitter.Enabled {
		tw = twitter.New(cfg.Twitter.BearerTokenEnv, cfg.Twitter.AccessTokenEnv)
	}

	an := cfg.Analysis
	provider := analysis.CreateProvider(
		an.Provider,
		an.Model,
		an.OllamaURL,
		an.OpenAIModel,
		an.APIKeyEnv,
	)

	return &Pipeline{
		cfg:      cfg,
		db:       db,
		twitter:  tw,
		bot:      bot.New(cfg, db, tw, price.New(cfg.Price.APIURL, cfg.Price.Currency), false),
		provider: provider,
	}
}

// Run executes the full cycle. Steps after a failed post still run; the
// dashboard should keep getting news even when posting is broken.
func (p *Pipeline) Run(ctx context.Context, daysBack int) *Result {
	r := &Result{}

	r.Steps = append(r.Steps, p.runPost(ctx))
	r.Steps = append(r.Steps, p.runCollect(ctx, daysBack))
	r.Steps = append(r.Steps, p.runAnalyze(ctx))
	r.Steps = append(r.Steps, p.runRefresh(ctx))

	return r
}

// DryRun reports what a cycle would do without posting or fetching anything.
func (p *Pipeline) DryRun() *Result {
	r := &Result{}

	if latest, _ := p.db.GetLatestPrice(); latest != nil {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Post",
			Summary: fmt.Sprintf("[dry-run] Would post update (last snapshot %s)", format.FormatUSD(latest.Price)),
		})
	} else {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Post",
			Summary: "[dry-run] Would post update (no price snapshot yet)",
		})
	}

	sources := len(p.cfg.News.Feeds)
	if p.twitter != nil && p.twitter.CanSearch() {
		sources++
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("[dry-run] Would collect from %d sources", sources),
	})

	// sqlite treats a negative LIMIT as no limit
	pending, _ := p.db.GetUnprocessedNews(-1)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Analyze",
		Summary: fmt.Sprintf("[dry-run] %d news items awaiting analysis", len(pending)),
	})

	posts, _ := p.db.GetRecentPosts(refreshLimit)
	live := 0
	for _, post := range posts {
		if !strings.HasPrefix(post.TweetID, "dry-run-") {
			live++
		}
	}
	r.Steps = append(r.Steps, StepResult{
		Name:    "Refresh",
		Summary: fmt.Sprintf("[dry-run] %d posts eligible for engagement refresh", live),
	})

	return r
}

func (p *Pipeline) runPost(ctx context.Context) StepResult {
	log.Println("Step 1/4: Posting price update...")
	post, err := p.bot.Post(ctx, p.cfg.Bot.ContentType)
	if err != nil {
		return StepResult{Name: "Post", Err: err}
	}
	return StepResult{
		Name:    "Post",
		Summary: fmt.Sprintf("Posted %s update as %s (%d chars)", post.ContentType, post.TweetID, utf8.RuneCountInString(post.Content)),
	}
}

func (p *Pipeline) runCollect(ctx context.Context, daysBack int) StepResult {
	log.Println("Step 2/4: Collecting news...")
	collector := news.NewCollector(p.cfg, p.db, p.twitter, daysBack)
	result := collector.Collect(ctx)
	return StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("Found %d new items (%d total, %d duplicates)", result.NewItems, result.TotalFound, result.Duplicates),
	}
}

func (p *Pipeline) runAnalyze(ctx context.Context) StepResult {
	log.Println("Step 3/4: Analyzing news...")
	analyzer := analysis.NewAnalyzer(p.db, p.provider, p.cfg.Analysis.MaxTokens, p.cfg.Analysis.BatchSize)
	result := analyzer.AnalyzeNews(ctx)
	return StepResult{
		Name:    "Analyze",
		Summary: fmt.Sprintf("Analyzed %d items: %d high significance, %d errors", result.Processed, result.High, result.Errors),
	}
}

func (p *Pipeline) runRefresh(ctx context.Context) StepResult {
	log.Println("Step 4/4: Refreshing engagement metrics...")
	updated, err := p.bot.RefreshEngagement(ctx, refreshLimit)
	if err != nil {
		return StepResult{Name: "Refresh", Err: err}
	}
	return StepResult{
		Name:    "Refresh",
		Summary: fmt.Sprintf("Updated engagement for %d posts", updated),
	}
}
