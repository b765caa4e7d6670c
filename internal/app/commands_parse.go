package app

import (
	"github.com/spf13/cobra"
	"github.com/takeaship/slack-remind-command-constructor/internal/builder"
	"github.com/takeaship/slack-remind-command-constructor/internal/contract"
)

func newParseCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <url>",
		Short: "Decode a shareable link back into its reminder fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, _, err := buildContext(cmd, opts, "parse")
			if err != nil {
				return err
			}
			in, err := builder.ParseShareableLink(args[0])
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Quote the URL so the shell keeps the query string", exitUsage)
			}
			missing := in.Missing()
			if missing == nil {
				missing = []string{}
			}
			return p.Success(toContractInput(in), map[string]any{"missing": missing}, nil)
		},
	}
}
