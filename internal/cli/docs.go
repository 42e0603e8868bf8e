package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"linkbox-cli/internal/docs"
)

func newDocsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "docs [topic]",
		Short: "Print built-in guides (links, manager, storage)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"data": docs.Topics()})
			}
			md, ok := docs.Get(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("topic", strings.TrimSpace(args[0])))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"topic": strings.ToLower(strings.TrimSpace(args[0])), "markdown": md},
			})
		},
	}
}
