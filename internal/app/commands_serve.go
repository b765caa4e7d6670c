package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/takeaship/slack-remind-command-constructor/internal/contract"
	"github.com/takeaship/slack-remind-command-constructor/internal/logger"
	"github.com/takeaship/slack-remind-command-constructor/internal/web"
)

// runServer is swapped in tests so serve can be exercised without binding.
var runServer = func(ctx context.Context, srv *web.Server) error { return srv.Run(ctx) }

func newServeCmd(opts *globalOptions) *cobra.Command {
	var flags serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reminder form as a local web page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, _, ro, err := buildContext(cmd, opts, "serve")
			if err != nil {
				return err
			}
			so := ro.Serve
			copyIfChanged(cmd, "addr", func() { so.Addr = flags.Addr })
			copyIfChanged(cmd, "log-level", func() { so.LogLevel = flags.LogLevel })
			copyIfChanged(cmd, "log-format", func() { so.LogFormat = flags.LogFormat })
			copyIfChanged(cmd, "log-file", func() { so.LogFile = flags.LogFile })
			copyIfChanged(cmd, "rate-per-min", func() { so.RatePerMin = flags.RatePerMin })
			if so.RatePerMin < 0 {
				return failWithHint(p, contract.ErrInvalidUsage, fmt.Errorf("--rate-per-min must be >= 0"), "Use 0 to disable rate limiting", exitUsage)
			}

			if err := logger.Initialize(logger.Config{
				Level:      so.LogLevel,
				Format:     so.LogFormat,
				OutputPath: so.LogFile,
				MaxSize:    10,
				MaxBackups: 3,
				MaxAge:     28,
				Compress:   true,
				Console:    cmd.ErrOrStderr(),
			}); err != nil {
				return failWithHint(p, contract.ErrGeneric, err, "Check --log-file", exitGeneric)
			}
			log := logger.Get().With(slog.String("app", "remindcmd"))

			srv, err := web.New(web.Config{
				Addr:       so.Addr,
				RatePerMin: so.RatePerMin,
				Logger:     log,
			})
			if err != nil {
				return failWithHint(p, contract.ErrGeneric, err, "", exitGeneric)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := runServer(ctx, srv); err != nil {
				log.Error("server stopped", slog.String("error", err.Error()))
				return failWithHint(p, contract.ErrGeneric, err, "Is --addr already in use?", exitGeneric)
			}
			log.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.Addr, "addr", defaultAddr, "Listen address")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", "info", "Log level: debug|info|warn|error")
	cmd.Flags().StringVar(&flags.LogFormat, "log-format", "text", "Log format: text|json")
	cmd.Flags().StringVar(&flags.LogFile, "log-file", "", "Also write logs to this file (rotated)")
	cmd.Flags().IntVar(&flags.RatePerMin, "rate-per-min", 120, "Requests per minute per client IP, 0 disables")
	return cmd
}
