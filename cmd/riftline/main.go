// Package main provides the riftline command line interface.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/riftline/internal/classifier"
	"github.com/yourusername/riftline/internal/config"
	"github.com/yourusername/riftline/internal/database"
	"github.com/yourusername/riftline/internal/logger"
	"github.com/yourusername/riftline/internal/matcher"
	"github.com/yourusername/riftline/internal/metrics"
	"github.com/yourusername/riftline/internal/normalizer"
	"github.com/yourusername/riftline/internal/repository"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "riftline",
		Short:        "Esports over/under analysis and settlement pipeline",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to configuration file")

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newSettleCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newCalibrateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired dependencies shared by the subcommands
type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	db    *database.DB
	repos *repository.Repositories
	table *normalizer.Table
	match *matcher.Matcher
}

// setup loads configuration and wires the shared dependencies
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewLogger(cfg.App.LogLevel)

	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	table, err := loadTable(ctx, db, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	m := matcher.New(table, cfg.Matching.Tolerance(), cfg.Matching.MinConfidence, log)

	repos := &repository.Repositories{
		Fixtures: repository.NewPostgresFixtureSource(db),
		Archive:  repository.NewPostgresArchive(db),
		Bets:     repository.NewPostgresBetRepository(db),
	}

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Port, log)
	}

	return &app{cfg: cfg, log: log, db: db, repos: repos, table: table, match: m}, nil
}

func (a *app) close() {
	a.db.Close()
}

// loadTable builds the identity table, preferring an operator-supplied file
// over names derived from the archive itself
func loadTable(ctx context.Context, db *database.DB, cfg *config.Config) (*normalizer.Table, error) {
	if cfg.Identity.TablePath != "" {
		return normalizer.LoadTable(cfg.Identity.TablePath)
	}
	identities, err := repository.LoadIdentities(ctx, db)
	if err != nil {
		return nil, err
	}
	return normalizer.NewTable(identities), nil
}

// loadPredictor loads the classifier when a bundle is configured. A missing
// or invalid bundle is not fatal; the pipeline degrades to empirical-only.
func loadPredictor(cfg *config.Config, log *logrus.Logger) *classifier.Predictor {
	if cfg.Classifier.BundlePath == "" {
		return nil
	}
	bundle, err := classifier.LoadBundle(cfg.Classifier.BundlePath)
	if err != nil {
		log.WithError(err).Warn("Classifier bundle unavailable, running empirical-only")
		return nil
	}
	log.WithField("model_version", bundle.ModelVersion).Info("Classifier bundle loaded")
	return classifier.NewPredictor(bundle, cfg.Classifier.ConfidenceThreshold)
}

func serveMetrics(port int, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	addr := fmt.Sprintf(":%d", port)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Error("Metrics server stopped")
	}
}
