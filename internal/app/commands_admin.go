package app

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/takeaship/slack-remind-command-constructor/internal/clipboard"
	"github.com/takeaship/slack-remind-command-constructor/internal/contract"
	"github.com/takeaship/slack-remind-command-constructor/internal/output"
)

type readiness struct {
	Ready     bool                   `json:"ready"`
	Checks    []contract.DoctorCheck `json:"checks"`
	NextSteps []string               `json:"next_steps,omitempty"`
	Reasons   []string               `json:"reason_codes,omitempty"`
}

type statusResult struct {
	readiness
	Clipboard     string `json:"clipboard"`
	Profile       string `json:"profile"`
	Config        string `json:"config,omitempty"`
	Origin        string `json:"origin"`
	Path          string `json:"path"`
	History       string `json:"history"`
	OutputMode    string `json:"output_mode"`
	SchemaVersion string `json:"schema_version"`
}

func newVersionCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !opts.JSON {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "remindcmd %s\n", BuildVersionString())
				return nil
			}
			p := output.Printer{
				Mode:          output.ModeJSON,
				Command:       "version",
				SchemaVersion: contract.SchemaVersion,
				Out:           cmd.OutOrStdout(),
				Err:           cmd.ErrOrStderr(),
			}
			return p.Success(currentBuildInfo(), nil, nil)
		},
	}
}

func newDoctorCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that a clipboard is available for --copy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, cb, ro, err := buildContext(cmd, opts, "doctor")
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(ro)
			defer cancel()
			checks, derr := doctorWithTimeout(ctx, cb)
			res := checkReadiness(checks, derr)
			if p.EffectiveSuccessMode() == output.ModePlain {
				_ = printReadinessPlain(cmd.OutOrStdout(), res)
			} else {
				meta := map[string]any{
					"count":        len(res.Checks),
					"ready":        res.Ready,
					"reason_codes": res.Reasons,
				}
				if ro.Verbose && derr != nil {
					meta["clipboard_error"] = clipboardErrorMeta(derr)
				}
				_ = p.Success(res.Checks, meta, res.NextSteps)
			}
			return readinessError(p, res, derr)
		},
	}
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show clipboard health and the resolved configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, cb, ro, err := buildContext(cmd, opts, "status")
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(ro)
			defer cancel()
			checks, derr := doctorWithTimeout(ctx, cb)
			res := statusResult{
				readiness:     checkReadiness(checks, derr),
				Clipboard:     cb.Name(),
				Profile:       ro.Profile,
				Config:        ro.Config,
				Origin:        ro.Origin,
				Path:          ro.Path,
				History:       historyFilePath(),
				OutputMode:    string(p.EffectiveSuccessMode()),
				SchemaVersion: ro.SchemaVersion,
			}
			if ro.NoHistory {
				res.History = "disabled"
			}
			if p.EffectiveSuccessMode() == output.ModePlain {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "clipboard=%s profile=%s origin=%s path=%s history=%s output_mode=%s\n",
					res.Clipboard, res.Profile, res.Origin, res.Path, res.History, res.OutputMode)
				_ = printReadinessPlain(cmd.OutOrStdout(), res.readiness)
			} else {
				_ = p.Success(res, map[string]any{"ready": res.Ready, "checks": len(res.Checks)}, nil)
			}
			return readinessError(p, res.readiness, derr)
		},
	}
}

func newCompletionCmd(root *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shell := strings.ToLower(args[0])
			switch shell {
			case "bash":
				return root.GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return root.GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return root.GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return root.GenPowerShellCompletion(cmd.OutOrStdout())
			default:
				return Wrap(exitUsage, fmt.Errorf("unsupported shell: %s", shell))
			}
		},
	}
}

// checkReadiness treats a disabled clipboard as ready: --copy is then a
// no-op rather than a failure.
func checkReadiness(checks []contract.DoctorCheck, derr error) readiness {
	res := readiness{Ready: derr == nil, Checks: checks}
	if res.Checks == nil {
		res.Checks = []contract.DoctorCheck{}
	}
	codes := map[string]struct{}{}
	for _, c := range checks {
		status := strings.ToLower(strings.TrimSpace(c.Status))
		switch status {
		case "", "ok", "pass", "disabled":
			continue
		}
		res.Ready = false
		name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(c.Name)), " ", "_")
		if name == "" {
			name = "unknown_check"
		}
		codes[name+"_"+status] = struct{}{}
	}
	if derr != nil {
		codes["doctor_error"] = struct{}{}
	}
	for code := range codes {
		res.Reasons = append(res.Reasons, code)
	}
	sort.Strings(res.Reasons)

	if !res.Ready {
		tools := make([]string, 0, len(clipboard.KnownTools))
		for _, t := range clipboard.KnownTools {
			tools = append(tools, t.Command)
		}
		res.NextSteps = append(res.NextSteps,
			"Install one of: "+strings.Join(tools, ", "),
			"Over SSH, use --clipboard osc52 if your terminal supports OSC 52",
			"Or set clipboard = \"none\" in config; build output is unaffected",
		)
	}
	return res
}

func readinessError(p output.Printer, res readiness, derr error) error {
	if res.Ready {
		return nil
	}
	if derr == nil {
		derr = fmt.Errorf("clipboard not ready")
	}
	_ = p.Error(contract.ErrClipboardUnavailable, derr.Error(), "Run `remindcmd doctor` for remediation")
	return WrapPrinted(exitClipboard, derr)
}

func printReadinessPlain(out io.Writer, res readiness) error {
	_, _ = fmt.Fprintf(out, "ready=%t checks=%d\n", res.Ready, len(res.Checks))
	if len(res.Reasons) > 0 {
		_, _ = fmt.Fprintf(out, "reasons=%s\n", strings.Join(res.Reasons, ","))
	}
	for _, c := range res.Checks {
		_, _ = fmt.Fprintf(out, "[%s] %s: %s\n", c.Status, c.Name, c.Message)
	}
	for _, step := range res.NextSteps {
		_, _ = fmt.Fprintf(out, "next: %s\n", step)
	}
	return nil
}
