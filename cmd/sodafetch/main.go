// Command sodafetch pulls the configured Socrata datasets and writes each
// one to a CSV file.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	flag "github.com/spf13/pflag"

	"github.com/transitlab/sodafetch/pkg/cache"
	"github.com/transitlab/sodafetch/pkg/client"
	"github.com/transitlab/sodafetch/pkg/dataset"
	"github.com/transitlab/sodafetch/pkg/export"
	"github.com/transitlab/sodafetch/pkg/logging"
	"github.com/transitlab/sodafetch/pkg/pagination"
)

type options struct {
	domain    string
	appToken  string
	outDir    string
	pageSize  int
	pageDelay time.Duration
	redisAddr string
	cacheTTL  time.Duration
	datasets  []dataset.Config
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	domainFlag := flag.String("domain", "https://data.ny.gov", "Socrata provider base URL")
	outDirFlag := flag.String("out-dir", filepath.Join("data", "raw"), "output directory for CSV files")
	pageSizeFlag := flag.Int("page-size", 25000, "rows per page request (smaller pages reduce timeout risk)")
	pageDelayFlag := flag.Duration("page-delay", 200*time.Millisecond, "pause between successive page requests")
	redisAddrFlag := flag.String("redis-addr", "", "Redis address (host:port) enabling the page cache")
	cacheTTLFlag := flag.Duration("cache-ttl", 15*time.Minute, "page cache TTL (with --redis-addr)")
	verboseFlag := flag.Bool("verbose", false, "enable verbose (debug) logging")
	prettyFlag := flag.Bool("pretty", false, "human-readable console log output")
	flag.Parse()

	// .env is optional, matching the SOCRATA_APP_TOKEN convention.
	_ = godotenv.Load()

	logCfg := logging.DefaultConfig()
	if *verboseFlag {
		logCfg.Level = logging.LevelDebug
	}
	logCfg.Pretty = *prettyFlag
	logging.Setup(logCfg)

	opts := options{
		domain:    *domainFlag,
		appToken:  os.Getenv("SOCRATA_APP_TOKEN"),
		outDir:    *outDirFlag,
		pageSize:  *pageSizeFlag,
		pageDelay: *pageDelayFlag,
		redisAddr: *redisAddrFlag,
		cacheTTL:  *cacheTTLFlag,
		datasets:  dataset.Builtin(),
	}

	return fetchAll(context.Background(), opts)
}

// fetchAll processes every configured dataset in order. A dataset that
// fails to fetch writes no file, is logged, and does not stop the others;
// the run as a whole reports failure if any dataset failed.
func fetchAll(ctx context.Context, opts options) error {
	logger := logging.NewLogger("orchestrator")

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	cfg := client.DefaultConfig(opts.domain)
	cfg.AppToken = opts.appToken

	if opts.redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: opts.redisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis at %s: %w", opts.redisAddr, err)
		}
		defer redisClient.Close()
		cfg.Cache = cache.NewManager(redisClient, opts.cacheTTL)
		logger.Info().Str("redis", opts.redisAddr).Msg("Page cache enabled")
	}

	sodaClient, err := client.New(cfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer sodaClient.Close()

	pageCfg := pagination.DefaultConfig()
	pageCfg.PageSize = opts.pageSize
	pageCfg.PageDelay = opts.pageDelay
	fetcher := pagination.NewFetcher(sodaClient, pageCfg)

	failed := 0
	for _, ds := range opts.datasets {
		logger.Info().
			Str("dataset", ds.Name).
			Str("dataset_id", ds.ID).
			Msg("Processing dataset")

		rows, err := dataset.Fetch(ctx, fetcher, ds)
		if err != nil {
			logger.Error().Err(err).Str("dataset", ds.Name).Msg("Dataset fetch failed")
			failed++
			continue
		}

		outPath := filepath.Join(opts.outDir, ds.OutputFilename())
		if err := export.WriteCSV(outPath, rows); err != nil {
			logger.Error().Err(err).Str("dataset", ds.Name).Msg("Dataset write failed")
			failed++
			continue
		}

		logger.Info().
			Str("dataset", ds.Name).
			Int("rows", len(rows)).
			Str("path", outPath).
			Msg("Saved dataset")
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d datasets failed", failed, len(opts.datasets))
	}
	return nil
}
