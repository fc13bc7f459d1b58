package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"btcbuzzbot/internal/analysis"
	"btcbuzzbot/internal/bot"
	"btcbuzzbot/internal/config"
	"btcbuzzbot/internal/database"
	"btcbuzzbot/internal/format"
	"btcbuzzbot/internal/news"
	"btcbuzzbot/internal/pipeline"
	"btcbuzzbot/internal/price"
	"btcbuzzbot/internal/server"
	"btcbuzzbot/internal/twitter"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "btcbuzzbot",
	Short:   "Bitcoin price bot with a web dashboard",
	Long:    "BTCBuzzBot posts Bitcoin price updates to X, collects and analyzes Bitcoin news, and serves a dashboard of posts and market signals.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		if err := godotenv.Load(); err != nil && verbose {
			log.Println("No .env file found, using system env vars")
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(contentCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("btcbuzzbot", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/btcbuzzbot/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, API keys, and the LLM provider.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Println("Posts:")
		fmt.Printf("  Total: %d\n", stats.TotalPosts)
		if stats.AvgLikes != nil {
			fmt.Printf("  Avg likes: %.1f\n", *stats.AvgLikes)
		}
		if stats.AvgRetweets != nil {
			fmt.Printf("  Avg retweets: %.1f\n", *stats.AvgRetweets)
		}
		if stats.LastPostedAt != nil {
			fmt.Printf("  Last posted: %s\n", *stats.LastPostedAt)
		}
		fmt.Println("\nContent pool:")
		fmt.Printf("  Quotes: %d\n", stats.TotalQuotes)
		fmt.Printf("  Jokes: %d\n", stats.TotalJokes)
		fmt.Println("\nNews:")
		fmt.Printf("  Collected: %d\n", stats.TotalNews)
		fmt.Printf("  Analyzed: %d\n", stats.AnalyzedNews)
		if stats.LatestPrice != nil {
			fmt.Printf("\nLatest price: %s (%s, fetched %s)\n",
				format.FormatUSD(stats.LatestPrice.Price),
				format.FormatChange(stats.LatestPrice.Change24h),
				format.TimeAgo(stats.LatestPrice.FetchedAt))
		}
		return nil
	},
}

// --- price command ---

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Fetch and record the current Bitcoin price",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		client := price.New(cfg.Price.APIURL, cfg.Price.Currency)
		quote, err := client.Fetch(context.Background())
		if err != nil {
			return err
		}
		if _, err := db.InsertPrice(quote.Price, quote.Change24h, quote.Currency); err != nil {
			return fmt.Errorf("recording snapshot: %w", err)
		}

		arrow := format.TrendArrow(quote.Change24h)
		if arrow != "" {
			arrow += " "
		}
		fmt.Printf("BTC %s %s%s (24h)\n", format.FormatUSD(quote.Price), arrow, format.FormatChange(quote.Change24h))
		return nil
	},
}

// --- post command ---

var (
	postType   string
	postDryRun bool
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a price update to X",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		b := bot.New(cfg, db, newTwitterClient(), price.New(cfg.Price.APIURL, cfg.Price.Currency), postDryRun)
		post, err := b.Post(context.Background(), postType)
		if err != nil {
			return err
		}

		fmt.Printf("Posted %s update as %s:\n\n%s\n", post.ContentType, post.TweetID, post.Content)
		return nil
	},
}

func init() {
	postCmd.Flags().StringVar(&postType, "type", "", "Content type: quote, joke or random")
	postCmd.Flags().BoolVar(&postDryRun, "dry-run", false, "Compose and record the post without sending it")
}

// --- news command ---

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Collect and analyze Bitcoin news",
}

var newsDaysBack int

var newsCollectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect news from X search and RSS feeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Println("Collecting news from sources...")
		collector := news.NewCollector(cfg, db, newTwitterClient(), newsDaysBack)
		result := collector.Collect(context.Background())

		fmt.Println("\nCollection complete:")
		fmt.Printf("  Total found: %d\n", result.TotalFound)
		fmt.Printf("  New items: %d\n", result.NewItems)
		fmt.Printf("  Duplicates skipped: %d\n", result.Duplicates)

		if len(result.Sources) > 0 {
			fmt.Println("\nNew items by source:")
			// Sort sources by count descending
			type kv struct {
				key string
				val int
			}
			var sorted []kv
			for k, v := range result.Sources {
				sorted = append(sorted, kv{k, v})
			}
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })
			for _, s := range sorted {
				fmt.Printf("  %s: %d\n", s.key, s.val)
			}
		}
		return nil
	},
}

var newsAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run LLM analysis over unprocessed news",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		an := cfg.Analysis
		provider := analysis.CreateProvider(an.Provider, an.Model, an.OllamaURL, an.OpenAIModel, an.APIKeyEnv)
		analyzer := analysis.NewAnalyzer(db, provider, an.MaxTokens, an.BatchSize)
		result := analyzer.AnalyzeNews(context.Background())

		fmt.Println("\nAnalysis complete:")
		fmt.Printf("  Processed: %d\n", result.Processed)
		fmt.Printf("  High significance: %d\n", result.High)
		fmt.Printf("  Errors: %d\n", result.Errors)
		return nil
	},
}

func init() {
	newsCollectCmd.Flags().IntVar(&newsDaysBack, "days-back", 1, "Feed lookback window (days)")
	newsCmd.AddCommand(newsCollectCmd)
	newsCmd.AddCommand(newsAnalyzeCmd)
}

// --- run command ---

var (
	dryRun   bool
	daysBack int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full cycle: post -> collect -> analyze -> refresh",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe := pipeline.New(cfg, db)

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun()
		} else {
			result = pipe.Run(context.Background(), daysBack)
		}

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/%d: %s\n", i+1, len(result.Steps), step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if !dryRun {
			fmt.Println("\nCycle complete! Run 'btcbuzzbot serve' to view the dashboard.")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
	runCmd.Flags().IntVar(&daysBack, "days-back", 1, "Feed lookback window (days)")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(cfg, db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

// --- content command ---

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage the quote and joke pool",
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all quotes and jokes",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		items, err := db.GetAllContentItems()
		if err != nil {
			return err
		}

		if len(items) == 0 {
			fmt.Println("No content yet. Add some with: btcbuzzbot content add quote \"...\"")
			return nil
		}

		fmt.Println("Content pool:")
		fmt.Println()
		for _, item := range items {
			text := item.Text
			if len(text) > 60 {
				text = text[:60] + "..."
			}
			fmt.Printf("  [%d] %-5s %s\n", item.ID, item.ContentType, text)
		}
		return nil
	},
}

var contentAddCmd = &cobra.Command{
	Use:   "add [type] [text]",
	Short: "Add a quote or joke",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		contentType := args[0]
		if contentType != "quote" && contentType != "joke" {
			return fmt.Errorf("invalid content type: %s (want quote or joke)", contentType)
		}

		id, err := db.InsertContentItem(contentType, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Added %s [%d]\n", contentType, id)
		return nil
	},
}

var contentRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a quote or joke",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid item ID: %s", args[0])
		}

		item, err := db.GetContentItem(id)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("content item %d not found", id)
		}

		if _, err := db.DeleteContentItem(item.ContentType, id); err != nil {
			return err
		}
		fmt.Printf("Removed %s [%d]\n", item.ContentType, id)
		return nil
	},
}

func init() {
	contentCmd.AddCommand(contentListCmd)
	contentCmd.AddCommand(contentAddCmd)
	contentCmd.AddCommand(contentRemoveCmd)
}

func newTwitterClient() *twitter.Client {
	if !cfg.Twitter.Enabled {
		return nil
	}
	return twitter.New(cfg.Twitter.BearerTokenEnv, cfg.Twitter.AccessTokenEnv)
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return database.Open(cfg.DatabasePath())
}
