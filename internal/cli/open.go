package cli

import (
	"context"

	"github.com/spf13/cobra"

	"linkbox-cli/internal/opener"
)

// openURL hands a URL to the OS. Tests swap it out.
var openURL = func(ctx context.Context, target string) error {
	return opener.New().Open(ctx, target)
}

func newOpenCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "open <url>",
		Short: "Open a URL with the system handler",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := openURL(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"url": args[0], "opened": true},
			})
		},
	}
}
