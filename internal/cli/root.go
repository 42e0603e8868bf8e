package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"linkbox-cli/internal/format"
)

type App struct {
	Dir        string
	Folder     string
	Global     bool
	Backend    string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "linkbox",
		Short:        "Link Toolbox: a per-workspace list of labeled links (TUI + CLI + browser manager)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI for the current workspace
  linkbox

  # Scriptable commands
  linkbox links list
  linkbox links add "Docs" https://docs.example.com
  linkbox links move 2 top

  # Browser manager
  linkbox manager
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("LINKBOX_DIR", ""), "Path to store dir (overrides storage.dir from config)")
	cmd.PersistentFlags().StringVar(&app.Folder, "folder", envOr("LINKBOX_FOLDER", ""), "Workspace folder path or URI (default: git root of the working directory)")
	cmd.PersistentFlags().BoolVar(&app.Global, "global", false, "Use the global link list (no workspace folder)")
	cmd.PersistentFlags().StringVar(&app.Backend, "backend", envOr("LINKBOX_BACKEND", ""), "Storage backend (sqlite|bolt|memory)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("LINKBOX_FORMAT", "json"), "Output format ("+strings.Join(format.Names, "|")+")")

	cmd.AddCommand(newLinksCmd(app))
	cmd.AddCommand(newOpenCmd(app))
	cmd.AddCommand(newManagerCmd(app))
	cmd.AddCommand(newKeyCmd(app))
	cmd.AddCommand(newKeysCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
