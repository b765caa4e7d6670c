package app

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/takeaship/slack-remind-command-constructor/internal/builder"
	"github.com/takeaship/slack-remind-command-constructor/internal/clipboard"
	"github.com/takeaship/slack-remind-command-constructor/internal/contract"
	"github.com/takeaship/slack-remind-command-constructor/internal/timeparse"
)

// nowFunc is the reference time for relative datetimes.
var nowFunc = time.Now

type reminderFlags struct {
	Recipient string
	Message   string
	Datetime  string
	FromLink  string
}

func (f *reminderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Recipient, "recipient", "r", "", "Who to remind: me, @user or #channel")
	cmd.Flags().StringVarP(&f.Message, "message", "m", "", "Reminder text")
	cmd.Flags().StringVarP(&f.Datetime, "datetime", "d", "", "When: 2025-01-02T09:00, tomorrow 09:00, +2h")
	cmd.Flags().StringVar(&f.FromLink, "from-link", "", "Pre-fill fields from a shareable link")
}

// resolve pre-fills from --from-link and lets explicit flags win.
func (f *reminderFlags) resolve(cmd *cobra.Command) (builder.Input, error) {
	var in builder.Input
	if strings.TrimSpace(f.FromLink) != "" {
		parsed, err := builder.ParseShareableLink(f.FromLink)
		if err != nil {
			return builder.Input{}, fmt.Errorf("invalid --from-link: %w", err)
		}
		in = parsed
	}
	if cmd.Flags().Changed("recipient") {
		in.Recipient = f.Recipient
	}
	if cmd.Flags().Changed("message") {
		in.Message = f.Message
	}
	if cmd.Flags().Changed("datetime") {
		in.Datetime = f.Datetime
	}
	return in, nil
}

// normalizeDatetime converts human input to datetime-local form. Values it
// cannot read are returned unchanged so the builder yields its sentinel.
func normalizeDatetime(raw string) (string, bool) {
	if raw == "" {
		return raw, false
	}
	v, err := timeparse.Normalize(raw, nowFunc(), time.Local)
	if err != nil {
		return raw, false
	}
	if _, ok := builder.ParseDatetime(v, time.Local); !ok {
		return raw, false
	}
	return v, true
}

func newBuildCmd(opts *globalOptions) *cobra.Command {
	var (
		fields           reminderFlags
		copyCommand      bool
		copyLink         bool
		allowInvalidDate bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a Slack /remind command and its shareable link",
		Example: `  remindcmd build -r @alice -m "Ship release" -d 2025-01-02T09:00
  remindcmd build -r me -m "Stand-up" -d "tomorrow 09:30" --copy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, cb, ro, err := buildContext(cmd, opts, "build")
			if err != nil {
				return err
			}
			if copyCommand && copyLink {
				return failWithHint(p, contract.ErrInvalidUsage, errors.New("--copy and --copy-link are mutually exclusive"), "Pick one", exitUsage)
			}
			in, err := fields.resolve(cmd)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Pass a link produced by `remindcmd link`", exitUsage)
			}
			if err := in.Validate(); err != nil {
				return failWithHint(p, contract.ErrMissingField, err, "Pass --recipient, --message and --datetime", exitUsage)
			}

			normalized, ok := normalizeDatetime(in.Datetime)
			if !ok && !allowInvalidDate {
				return failWithHint(p, contract.ErrInvalidDate, fmt.Errorf("unparseable datetime: %q", in.Datetime), "Use YYYY-MM-DDTHH:MM or --allow-invalid-date", exitUsage)
			}
			in.Datetime = normalized

			res := builder.Build(in, ro.Origin, ro.Path)
			out := toContractResult(res)
			warnings := res.Warnings()

			log := commandLogger(cmd, ro)
			meta := map[string]any{"valid_date": res.ValidDate}
			if copyCommand || copyLink {
				text, what := res.Command, "command"
				if copyLink {
					text, what = res.Link, "link"
				}
				if err := copyText(ro, cb, text, log); err != nil {
					warnings = append(warnings, copyWarning(what, cb, err))
					if ro.Verbose {
						meta["clipboard_error"] = clipboardErrorMeta(err)
					}
				} else {
					out.Copied = what
				}
			}
			if !ro.NoHistory {
				if err := appendHistory(historyEntryFor(out)); err != nil {
					log.Debug("history append failed", slog.String("error", err.Error()))
					warnings = append(warnings, "history not recorded: "+err.Error())
				}
			}
			return p.Success(out, meta, warnings)
		},
	}
	fields.register(cmd)
	cmd.Flags().BoolVar(&copyCommand, "copy", false, "Copy the command to the clipboard")
	cmd.Flags().BoolVar(&copyLink, "copy-link", false, "Copy the shareable link to the clipboard")
	cmd.Flags().BoolVar(&allowInvalidDate, "allow-invalid-date", false, "Emit the command even when the datetime does not parse")
	return cmd
}

func newLinkCmd(opts *globalOptions) *cobra.Command {
	var (
		fields   reminderFlags
		copyLink bool
	)
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Build only the shareable link that pre-fills the form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, cb, ro, err := buildContext(cmd, opts, "link")
			if err != nil {
				return err
			}
			in, err := fields.resolve(cmd)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Pass a link produced by `remindcmd link`", exitUsage)
			}
			if normalized, ok := normalizeDatetime(in.Datetime); ok {
				in.Datetime = normalized
			}
			link := builder.BuildShareableLink(ro.Origin, ro.Path, in.Recipient, in.Message, in.Datetime)

			var warnings []string
			if missing := in.Missing(); len(missing) > 0 {
				warnings = append(warnings, "empty fields in link: "+strings.Join(missing, ", "))
			}
			meta := map[string]any{}
			if copyLink {
				if err := copyText(ro, cb, link, commandLogger(cmd, ro)); err != nil {
					warnings = append(warnings, copyWarning("link", cb, err))
					if ro.Verbose {
						meta["clipboard_error"] = clipboardErrorMeta(err)
					}
				} else {
					meta["copied"] = "link"
				}
			}
			return p.Success(link, meta, warnings)
		},
	}
	fields.register(cmd)
	cmd.Flags().BoolVar(&copyLink, "copy", false, "Copy the link to the clipboard")
	return cmd
}

func copyText(ro *globalOptions, cb clipboard.Clipboard, text string, log *slog.Logger) error {
	ctx, cancel := commandContext(ro)
	defer cancel()
	err := copyWithTimeout(ctx, cb, text)
	if err != nil {
		log.Debug("clipboard copy failed", slog.String("clipboard", cb.Name()), slog.String("error", err.Error()))
	}
	return err
}

func copyWarning(what string, cb clipboard.Clipboard, err error) string {
	return fmt.Sprintf("%s not copied (%s): %v", what, cb.Name(), err)
}

func toContractResult(res builder.Result) contract.ReminderResult {
	return contract.ReminderResult{
		Input:     toContractInput(res.Input),
		Formatted: res.Formatted,
		Command:   res.Command,
		Link:      res.Link,
		ValidDate: res.ValidDate,
	}
}

func toContractInput(in builder.Input) contract.ReminderInput {
	return contract.ReminderInput{
		Recipient: in.Recipient,
		Message:   in.Message,
		Datetime:  in.Datetime,
	}
}
