package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bnema/instaflow/internal/adapters/ledger/csvfile"
	"github.com/bnema/instaflow/internal/adapters/render/summary"
	tomlrepo "github.com/bnema/instaflow/internal/adapters/repo/toml"
	"github.com/bnema/instaflow/internal/adapters/source"
	"github.com/bnema/instaflow/internal/application"
	"github.com/bnema/instaflow/internal/logging"
	"github.com/bnema/instaflow/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var errNoAccounts = errors.New("no accounts to run")

type runOptions struct {
	accountsPath  string
	targetsPath   string
	parallel      int
	jsonOutput    bool
	showArtifacts bool
}

type sessionJSON struct {
	SessionID string   `json:"session_id"`
	Account   string   `json:"account"`
	StartedAt string   `json:"started_at"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Artifacts []string `json:"artifacts"`
	Error     string   `json:"error,omitempty"`
}

type runJSON struct {
	RunID     string        `json:"run_id"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Sessions  []sessionJSON `json:"sessions"`
	LogFile   string        `json:"log_file,omitempty"`
}

func newRunCmd(app *app) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run follow/unfollow sessions for every account",
		Long:  "Run one browser session per account against the target list. Accounts come from --accounts (CSV or TOML) or from the stored accounts when omitted. Targets are a CSV or YAML list of username/action pairs.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runBatch(ctx, cmd, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.accountsPath, "accounts", "", "Accounts file (.csv or .toml); defaults to the stored accounts")
	cmd.Flags().StringVar(&opts.targetsPath, "targets", "", "Targets file (.csv, .yaml or .yml)")
	cmd.Flags().IntVar(&opts.parallel, "parallel", 1, "Maximum concurrent sessions")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output JSON")
	cmd.Flags().BoolVar(&opts.showArtifacts, "show-artifacts", false, "List the ledger files of each session")
	_ = cmd.MarkFlagRequired("targets")

	return cmd
}

func runBatch(ctx context.Context, cmd *cobra.Command, app *app, opts runOptions) error {
	if opts.parallel < 1 {
		return fmt.Errorf("--parallel must be at least 1, got %d", opts.parallel)
	}

	targetSource, err := source.TargetsFor(opts.targetsPath)
	if err != nil {
		return err
	}
	targets, err := targetSource.LoadTargets(ctx)
	if err != nil {
		return err
	}

	accountSource, err := accountSourceFor(app, opts.accountsPath)
	if err != nil {
		return err
	}
	accounts, err := accountSource.LoadAccounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		return errNoAccounts
	}

	startedAt := app.now()
	level := zapcore.InfoLevel
	if app.verbose {
		level = zapcore.DebugLevel
	}
	logger, err := logging.New(logging.Options{
		Dir:     app.cfg.LogDir,
		Now:     startedAt,
		Console: cmd.ErrOrStderr(),
		Level:   level,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	pacer, err := application.NewRandomPacer(app.cfg.MinDelay, app.cfg.MaxDelay)
	if err != nil {
		return err
	}

	runner := application.NewSessionRunner(
		app.newDrivers(app.cfg, logger.Named("driver")),
		app.newValidator(app.cfg, logger.Named("proxy")),
		pacer,
		ports.SystemClock{},
		logger.Named("session"),
		application.SessionRunnerOptions{ActionLimit: app.cfg.ActionLimit, MaxRetries: app.cfg.MaxRetries},
	)
	batch := application.NewBatchService(runner, app.accounts, csvfile.NewStore(app.cfg.LogDir, nil), nil, logger.Named("batch"))

	logger.Info("run starting",
		zap.Int("accounts", len(accounts)),
		zap.Int("targets", len(targets)),
		zap.Int("parallel", opts.parallel),
	)

	report, runErr := batch.Run(ctx, application.RunBatchCommand{
		Accounts: accounts,
		Targets:  targets,
		Parallel: opts.parallel,
	})

	if err := writeReport(cmd, app, report, opts, logger.Path, app.now().Sub(startedAt)); err != nil {
		return errors.Join(runErr, err)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("run interrupted: %w", runErr)
		}
		return runErr
	}
	if n := report.Errored(); n > 0 {
		return fmt.Errorf("%d of %d sessions failed", n, len(report.Sessions))
	}

	return nil
}

func accountSourceFor(app *app, path string) (ports.AccountSource, error) {
	if strings.TrimSpace(path) == "" {
		return app.repo, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return source.NewAccountsCSV(path), nil
	case ".toml":
		v := viper.New()
		v.Set(tomlrepo.AccountsPathKey, path)
		return tomlrepo.NewRepository(v)
	default:
		return nil, fmt.Errorf("accounts file %q: %w", path, source.ErrUnsupportedFormat)
	}
}

func writeReport(cmd *cobra.Command, app *app, report application.BatchReport, opts runOptions, logFile string, elapsed time.Duration) error {
	if opts.jsonOutput {
		return writeReportJSON(cmd, report, logFile)
	}

	rendered, err := app.render(report, summary.RenderOptions{
		ShowArtifacts: opts.showArtifacts,
		Elapsed:       elapsed,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func writeReportJSON(cmd *cobra.Command, report application.BatchReport, logFile string) error {
	succeeded, failed := report.Totals()
	out := runJSON{
		RunID:     report.RunID,
		Succeeded: succeeded,
		Failed:    failed,
		Sessions:  make([]sessionJSON, 0, len(report.Sessions)),
		LogFile:   logFile,
	}
	for _, session := range report.Sessions {
		entry := sessionJSON{
			SessionID: session.SessionID,
			Account:   session.Account,
			Succeeded: session.Succeeded,
			Failed:    session.Failed,
			Artifacts: session.Artifacts,
		}
		if !session.StartedAt.IsZero() {
			entry.StartedAt = session.StartedAt.Format(time.RFC3339)
		}
		if entry.Artifacts == nil {
			entry.Artifacts = []string{}
		}
		if session.Err != nil {
			entry.Error = session.Err.Error()
		}
		out.Sessions = append(out.Sessions, entry)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
