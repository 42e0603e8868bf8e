package cli

import (
	"github.com/spf13/cobra"

	"linkbox-cli/internal/store"
)

func newKeyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "key",
		Short: "Print the storage key of the current scope",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			folder, err := resolveFolder(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			data := map[string]any{
				"key":    store.ResolveStorageKey(folder),
				"global": folder == nil,
				"folder": nil,
			}
			if folder != nil {
				data["folder"] = folder.URI
				if p, ok := folder.FSPath(); ok {
					data["path"] = p
				}
			}
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}
}

func newKeysCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every stored key with its entry counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app, sessionOptions{})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			reports, err := s.links.Inspect(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": reports,
				"meta": map[string]any{"backend": s.kv.Backend(), "current": s.scope().Key},
			})
		},
	}
}

type doctorIssue struct {
	Key     string     `json:"key"`
	Tier    store.Tier `json:"tier"`
	Problem string     `json:"problem"`
}

func newDoctorCmd(app *App) *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Report stored values that are not link lists or hold invalid entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app, sessionOptions{})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			reports, err := s.links.Inspect(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			issues := []doctorIssue{}
			for _, r := range reports {
				switch {
				case !r.IsList:
					issues = append(issues, doctorIssue{Key: r.Key, Tier: r.Tier, Problem: "not a list; reads show the default list"})
				case r.Valid < r.Entries:
					issues = append(issues, doctorIssue{Key: r.Key, Tier: r.Tier, Problem: "invalid entries are skipped on read"})
				}
			}

			hints := []string{"linkbox keys"}
			if err := writeOut(cmd, app, map[string]any{
				"data":   issues,
				"meta":   map[string]any{"keys": len(reports), "issues": len(issues)},
				"_hints": hints,
			}); err != nil {
				return err
			}
			if fail && len(issues) > 0 {
				return ErrDoctorIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if issues are found")
	return cmd
}
