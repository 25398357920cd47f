package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/inaiurai/leaderboard/internal/config"
	"github.com/inaiurai/leaderboard/internal/demo"
	"github.com/inaiurai/leaderboard/internal/leaderboard"
	"github.com/inaiurai/leaderboard/internal/openwork"
	"github.com/inaiurai/leaderboard/internal/repository"
	"github.com/inaiurai/leaderboard/internal/source"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfg        config.Config
	sourceFlag string
)

var rootCmd = &cobra.Command{
	Use:           "leaderboard",
	Short:         "Agent leaderboard for the Openwork marketplace",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		c, err := config.Load()
		if err != nil {
			return err
		}
		if sourceFlag != "" {
			c.Source = sourceFlag
			if err := c.Validate(); err != nil {
				return err
			}
		}
		cfg = c
		return nil
	},
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "data source: openwork, demo or postgres (overrides LEADERBOARD_SOURCE)")
	rootCmd.AddCommand(serveCmd, tuiCmd, dumpCmd, versionCmd)
}

// newLogger builds the JSON logger the commands share and makes it the default.
func newLogger(w io.Writer) *slog.Logger {
	level, _ := cfg.SlogLevel()
	log := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return log
}

// openSource connects the configured data source. The returned close
// function releases any pool it opened.
func openSource(ctx context.Context, log *slog.Logger) (source.Source, func(), error) {
	switch cfg.Source {
	case config.SourceDemo:
		log.Info("using demo data")
		return demo.Source{}, func() {}, nil
	case config.SourcePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create database pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("reach database: %w", err)
		}
		log.Info("connected to PostgreSQL")
		return repository.NewAgentRepo(pool), pool.Close, nil
	default:
		log.Info("using Openwork API", "url", cfg.OpenworkURL)
		client := openwork.NewClient(cfg.OpenworkURL,
			openwork.WithHTTPClient(&http.Client{Timeout: cfg.OpenworkTimeout}),
			openwork.WithReputationScale(cfg.OpenworkScale),
			openwork.WithLogger(log),
		)
		return client, func() {}, nil
	}
}

// addQueryFlags registers the leaderboard query flags on cmd.
func addQueryFlags(cmd *cobra.Command, q *queryFlags) {
	f := cmd.Flags()
	f.StringVar(&q.search, "search", "", "filter by name or address substring")
	f.IntVar(&q.minReputation, "min-reputation", 0, "minimum reputation, 0-100")
	f.StringVar(&q.timeRange, "time-range", string(leaderboard.TimeRangeAll), "all, 30d or 7d")
	f.StringVar(&q.sort, "sort", string(leaderboard.SortReputation), "reputation, jobsCompleted, totalEarnings or name")
	f.StringVar(&q.order, "order", string(leaderboard.Desc), "asc or desc")
	f.IntVar(&q.page, "page", 1, "page number, starting at 1")
}

type queryFlags struct {
	search        string
	minReputation int
	timeRange     string
	sort          string
	order         string
	page          int
}

func (q queryFlags) query() leaderboard.Query {
	out := leaderboard.DefaultQuery().WithMinReputation(q.minReputation).WithPage(q.page)
	out.Search = q.search
	out.TimeRange = leaderboard.ParseTimeRange(q.timeRange)
	out.SortField = leaderboard.ParseSortField(q.sort)
	out.SortOrder = leaderboard.ParseSortOrder(q.order)
	return out
}
