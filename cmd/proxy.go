package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/bnema/instaflow/internal/domain"
	"github.com/bnema/instaflow/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var errProxyUnusable = errors.New("proxy is unusable")

func newProxyCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Inspect proxies",
	}

	cmd.AddCommand(newProxyCheckCmd(app))
	return cmd
}

func newProxyCheckCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <proxy-url>",
		Short: "Probe a proxy against the configured test URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proxy, err := domain.ParseProxy(args[0])
			if err != nil {
				return err
			}

			// Probe warnings are held until the spinner has cleared its line.
			var probeLog bytes.Buffer
			logger, err := logging.New(logging.Options{Console: &probeLog, Level: zapcore.WarnLevel})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Close() }()

			validator := app.newValidator(app.cfg, logger.Named("proxy"))
			usable := false
			label := fmt.Sprintf("Probing %s via %s...", proxy.Redacted(), app.cfg.ProxyTestURL)
			err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), label, func(ctx context.Context) error {
				usable = validator.Validate(ctx, proxy)
				return ctx.Err()
			})
			_ = logger.Sync()
			_, _ = probeLog.WriteTo(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if !usable {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tunusable\n", proxy.Redacted())
				return fmt.Errorf("%s: %w", proxy.Redacted(), errProxyUnusable)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\tusable\n", proxy.Redacted())
			return err
		},
	}
}
