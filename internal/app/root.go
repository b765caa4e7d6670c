package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/takeaship/slack-remind-command-constructor/internal/clipboard"
	"github.com/takeaship/slack-remind-command-constructor/internal/contract"
	"github.com/takeaship/slack-remind-command-constructor/internal/logger"
	"github.com/takeaship/slack-remind-command-constructor/internal/output"
)

var clipboardFactory = clipboard.New

type globalOptions struct {
	JSON          bool
	JSONL         bool
	Plain         bool
	Fields        string
	Quiet         bool
	Verbose       bool
	Profile       string
	Config        string
	Clipboard     string
	Origin        string
	Path          string
	NoHistory     bool
	Timeout       time.Duration
	SchemaVersion string
	Serve         serveOptions
}

type serveOptions struct {
	Addr       string
	LogLevel   string
	LogFormat  string
	LogFile    string
	RatePerMin int
}

const (
	defaultOrigin = "http://localhost:8080"
	defaultPath   = "/"
	defaultAddr   = ":8080"
)

func Execute() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	if err != nil {
		renderTopLevelError(cmd, err)
	}
	return ExitCode(err)
}

func NewRootCommand() *cobra.Command {
	opts := &globalOptions{
		Profile:       "default",
		Clipboard:     "auto",
		Origin:        defaultOrigin,
		Path:          defaultPath,
		Timeout:       5 * time.Second,
		SchemaVersion: contract.SchemaVersion,
		Serve: serveOptions{
			Addr:       defaultAddr,
			LogLevel:   "info",
			LogFormat:  "text",
			RatePerMin: 120,
		},
	}

	root := &cobra.Command{
		Use:           "remindcmd",
		Short:         "Build Slack /remind commands and shareable pre-fill links",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       BuildVersionString(),
	}
	root.SetVersionTemplate("remindcmd {{.Version}}\n")

	root.PersistentFlags().BoolVar(&opts.JSON, "json", false, "Output structured JSON")
	root.PersistentFlags().BoolVar(&opts.JSONL, "jsonl", false, "Output newline-delimited JSON")
	root.PersistentFlags().BoolVar(&opts.Plain, "plain", false, "Output stable plain text")
	root.PersistentFlags().StringVar(&opts.Fields, "fields", "", "Projected fields, comma-separated")
	root.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Reduce success output")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose diagnostics")
	root.PersistentFlags().StringVar(&opts.Profile, "profile", "default", "Config profile")
	root.PersistentFlags().StringVar(&opts.Config, "config", "", "Config file path")
	root.PersistentFlags().StringVar(&opts.Clipboard, "clipboard", "auto", "Clipboard: auto|pbcopy|wl-copy|xclip|xsel|clip.exe|osc52|none")
	root.PersistentFlags().StringVar(&opts.Origin, "origin", defaultOrigin, "Origin for shareable links (scheme://host[:port])")
	root.PersistentFlags().StringVar(&opts.Path, "path", defaultPath, "Path for shareable links")
	root.PersistentFlags().BoolVar(&opts.NoHistory, "no-history", false, "Do not record generated commands")
	root.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 5*time.Second, "Clipboard call timeout (e.g. 2s, 0 to disable)")
	root.PersistentFlags().StringVar(&opts.SchemaVersion, "schema-version", contract.SchemaVersion, "Output schema version")

	root.AddCommand(newBuildCmd(opts))
	root.AddCommand(newLinkCmd(opts))
	root.AddCommand(newParseCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newDoctorCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newVersionCmd(opts))
	root.AddCommand(newCompletionCmd(root))

	return root
}

func buildContext(cmd *cobra.Command, opts *globalOptions, command string) (output.Printer, clipboard.Clipboard, *globalOptions, error) {
	resolved, err := resolveGlobalOptions(cmd, opts)
	if err != nil {
		return output.Printer{}, nil, nil, Wrap(exitUsage, err)
	}
	if conflictCount(resolved.JSON, resolved.JSONL, resolved.Plain) > 1 {
		return output.Printer{}, nil, nil, Wrap(exitUsage, errors.New("--json, --jsonl, and --plain are mutually exclusive"))
	}
	mode := output.ModeAuto
	if resolved.JSON {
		mode = output.ModeJSON
	} else if resolved.JSONL {
		mode = output.ModeJSONL
	} else if resolved.Plain {
		mode = output.ModePlain
	}

	printer := output.Printer{
		Mode:          mode,
		Command:       command,
		Fields:        splitCSV(resolved.Fields),
		Quiet:         resolved.Quiet,
		SchemaVersion: resolved.SchemaVersion,
		Out:           cmd.OutOrStdout(),
		Err:           cmd.ErrOrStderr(),
	}

	cb, err := clipboardFactory(resolved.Clipboard, cmd.ErrOrStderr())
	if err != nil {
		_ = printer.Error(contract.ErrInvalidUsage, err.Error(), "Use --clipboard auto, osc52, or none")
		return printer, nil, nil, WrapPrinted(exitUsage, err)
	}
	commandLogger(cmd, resolved).Debug("command context",
		slog.String("command", command),
		slog.String("clipboard", cb.Name()),
		slog.String("mode", string(mode)),
		slog.String("profile", resolved.Profile),
		slog.String("origin", resolved.Origin),
		slog.String("path", resolved.Path),
		slog.Duration("timeout", resolved.Timeout),
	)
	return printer, cb, resolved, nil
}

// commandLogger writes debug diagnostics to stderr under --verbose and
// discards them otherwise.
func commandLogger(cmd *cobra.Command, ro *globalOptions) *slog.Logger {
	if ro == nil || !ro.Verbose {
		return logger.Discard()
	}
	l, err := logger.New(logger.Config{Level: "debug", Console: cmd.ErrOrStderr()})
	if err != nil {
		return logger.Discard()
	}
	return l.With(slog.String("app", "remindcmd"))
}

func commandContext(ro *globalOptions) (context.Context, context.CancelFunc) {
	if ro == nil || ro.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), ro.Timeout)
}

type timeoutResult[T any] struct {
	val T
	err error
}

func withTimeout[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	ch := make(chan timeoutResult[T], 1)
	go func() {
		v, err := fn()
		ch <- timeoutResult[T]{val: v, err: err}
	}()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		return res.val, res.err
	}
}

func doctorWithTimeout(ctx context.Context, cb clipboard.Clipboard) ([]contract.DoctorCheck, error) {
	started := time.Now()
	v, err := withTimeout(ctx, func() ([]contract.DoctorCheck, error) {
		return cb.Doctor(ctx)
	})
	return v, clipboardFailure(cb.Name(), "doctor", started, err)
}

func copyWithTimeout(ctx context.Context, cb clipboard.Clipboard, text string) error {
	started := time.Now()
	_, err := withTimeout(ctx, func() (struct{}, error) {
		return struct{}{}, cb.Copy(ctx, text)
	})
	return clipboardFailure(cb.Name(), "copy", started, err)
}

func renderTopLevelError(cmd *cobra.Command, err error) {
	var appErr AppError
	if errors.As(err, &appErr) && appErr.Printed {
		return
	}
	if wantsStructuredErrorOutput(os.Args[1:]) {
		printer := output.Printer{
			Mode:          output.ModeJSON,
			SchemaVersion: contract.SchemaVersion,
			Err:           cmd.ErrOrStderr(),
		}
		_ = printer.Error(errorCodeForExit(ExitCode(err)), err.Error(), "")
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err.Error())
}

func wantsStructuredErrorOutput(args []string) bool {
	for _, arg := range args {
		switch {
		case arg == "--":
			return false
		case arg == "--json", arg == "--jsonl":
			return true
		case strings.HasPrefix(arg, "--json="), strings.HasPrefix(arg, "--jsonl="):
			return true
		}
	}
	return false
}

func errorCodeForExit(code int) contract.ErrorCode {
	switch code {
	case exitUsage:
		return contract.ErrInvalidUsage
	case exitNotFound:
		return contract.ErrNotFound
	case exitClipboard:
		return contract.ErrClipboardUnavailable
	default:
		return contract.ErrGeneric
	}
}

func failWithHint(printer output.Printer, code contract.ErrorCode, err error, hint string, exitCode int) error {
	if err == nil {
		err = errors.New("unknown error")
	}
	_ = printer.Error(code, err.Error(), hint)
	return WrapPrinted(exitCode, err)
}

func conflictCount(vals ...bool) int {
	total := 0
	for _, v := range vals {
		if v {
			total++
		}
	}
	return total
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		v := strings.TrimSpace(p)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
