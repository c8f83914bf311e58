package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/weiser-ai/weiser-go/internal/alerting"
	"github.com/weiser-ai/weiser-go/internal/config"
	"github.com/weiser-ai/weiser-go/internal/datasource"
	"github.com/weiser-ai/weiser-go/internal/logging"
	"github.com/weiser-ai/weiser-go/internal/runner"
	"github.com/weiser-ai/weiser-go/internal/store"
)

var runFlags configFlags
var runSkipMirror bool

var runCmd = &cobra.Command{
	Use:   "run [config]",
	Short: "Run every check declared in the configuration document",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRun,
}

func init() {
	addConfigFlags(runCmd, &runFlags)
	runCmd.Flags().BoolVarP(&runSkipMirror, "skip-mirror", "s", false, "Skip mirroring the embedded store to S3 on exit")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := logging.Default(runFlags.Verbose)
	if len(args) == 1 {
		runFlags.ConfigPath = args[0]
	}

	loaded, err := config.Load(runFlags.ConfigPath, config.Options{EnvFile: runFlags.EnvFile})
	if err != nil {
		return fmt.Errorf("weiser: %w", err)
	}

	metricStore, err := openStore(ctx, loaded.Store, runSkipMirror)
	if err != nil {
		return fmt.Errorf("weiser: %w", err)
	}
	defer metricStore.Close()

	dsManager := datasource.NewManager(loaded.Datasources)
	defer dsManager.CloseAll()

	notifier := buildNotifier(loaded.SlackURL)

	r := runner.New(dsManager, metricStore, notifier, logger)

	runID := uuid.NewString()
	logger.Info().Str("run_id", runID).Int("checks", len(loaded.Checks)).Msg("starting run")

	summary, err := r.Run(ctx, runID, loaded.Checks)
	if err != nil {
		return fmt.Errorf("weiser: run %s: %w", runID, err)
	}

	logger.Info().
		Str("run_id", summary.RunID).
		Int("total", summary.Total).
		Int("passed", summary.Passed).
		Int("failed", summary.Failed).
		Int("errored", summary.Errored).
		Dur("duration", summary.Duration).
		Msg("run complete")

	if summary.Failed > 0 || summary.Errored > 0 {
		return fmt.Errorf("weiser: %d failed, %d errored", summary.Failed, summary.Errored)
	}
	return nil
}

// openStore builds and initializes the configured metric store backend.
func openStore(ctx context.Context, cfg config.StoreConfig, skipMirror bool) (store.Store, error) {
	var s store.Store
	switch cfg.DBType {
	case "duckdb":
		db, err := store.NewDuckDB(store.DuckDBConfig{
			Path:        cfg.Path,
			S3Bucket:    cfg.S3Bucket,
			S3Key:       cfg.S3Key,
			S3Region:    cfg.S3Region,
			S3Endpoint:  cfg.S3Endpoint,
			S3AccessKey: cfg.S3AccessKey,
			S3SecretKey: cfg.S3SecretKey,
			S3PathStyle: cfg.S3PathStyle,
			SkipMirror:  skipMirror,
		})
		if err != nil {
			return nil, err
		}
		s = db
	case "postgresql":
		pg, err := store.NewPostgres(store.PostgresConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
			SSLMode:  cfg.SSLMode,
		})
		if err != nil {
			return nil, err
		}
		s = pg
	default:
		return nil, fmt.Errorf("weiser: unsupported store backend %q", cfg.DBType)
	}

	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func buildNotifier(slackURL string) alerting.Notifier {
	if slackURL == "" {
		return alerting.NoOp{}
	}
	return alerting.NewSlackNotifier(slackURL)
}
