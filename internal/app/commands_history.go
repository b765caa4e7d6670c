package app

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"
	"github.com/spf13/cobra"
	"github.com/takeaship/slack-remind-command-constructor/internal/contract"
	"github.com/takeaship/slack-remind-command-constructor/internal/output"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	history := &cobra.Command{Use: "history", Short: "Inspect previously generated commands"}

	var (
		limit      int
		offset     int
		timeFormat string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent commands, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, _, _, err := buildContext(cmd, opts, "history.list")
			if err != nil {
				return err
			}
			if offset < 0 {
				return failWithHint(p, contract.ErrInvalidUsage, fmt.Errorf("--offset must be >= 0"), "", exitUsage)
			}
			entries, hasMore, err := readHistoryPage(limit, offset)
			if err != nil {
				return failWithHint(p, contract.ErrGeneric, err, "Check history file permissions", exitGeneric)
			}
			meta := map[string]any{"count": len(entries), "offset": offset, "has_more": hasMore}
			if p.EffectiveSuccessMode() == output.ModePlain && len(p.Fields) == 0 {
				return printHistoryPlain(cmd.OutOrStdout(), entries, timeFormat, time.Now())
			}
			if entries == nil {
				entries = []contract.HistoryEntry{}
			}
			return p.Success(entries, meta, nil)
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Maximum entries")
	list.Flags().IntVar(&offset, "offset", 0, "Skip this many newer entries")
	list.Flags().StringVar(&timeFormat, "time-format", "", "strftime layout for timestamps, e.g. %Y-%m-%d %H:%M (default: relative age)")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the history file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, _, _, err := buildContext(cmd, opts, "history.clear")
			if err != nil {
				return err
			}
			n, err := clearHistory()
			if err != nil {
				return failWithHint(p, contract.ErrGeneric, err, "Check history file permissions", exitGeneric)
			}
			return p.Success(fmt.Sprintf("cleared %d entries", n), map[string]any{"cleared": n}, nil)
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry by id or unique id prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, _, err := buildContext(cmd, opts, "history.show")
			if err != nil {
				return err
			}
			entries, err := readHistory()
			if err != nil {
				return failWithHint(p, contract.ErrGeneric, err, "Check history file permissions", exitGeneric)
			}
			entry, err := findHistoryEntry(entries, args[0])
			if err != nil {
				return failWithHint(p, contract.ErrNotFound, err, "Run `remindcmd history list` to see ids", exitNotFound)
			}
			return p.Success(entry, nil, nil)
		},
	}

	history.AddCommand(list, show, clearCmd)
	return history
}

func printHistoryPlain(out io.Writer, entries []contract.HistoryEntry, timeFormat string, now time.Time) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "no history")
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(out, "%s\t%s\t%s\n", historyTime(e.At, timeFormat, now), e.ID, e.Command); err != nil {
			return err
		}
	}
	return nil
}

func historyTime(at time.Time, timeFormat string, now time.Time) string {
	if timeFormat != "" {
		return strftime.Format(timeFormat, at.Local())
	}
	return humanize.RelTime(at, now, "ago", "from now")
}
