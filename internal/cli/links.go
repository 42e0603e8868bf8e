package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linkbox-cli/internal/format"
	"linkbox-cli/internal/logging"
	"linkbox-cli/internal/model"
	"linkbox-cli/internal/mutate"
	"linkbox-cli/internal/panel"
	"linkbox-cli/internal/store"
)

func newLinksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "List and edit the links of the current scope (indexes are 0-based)",
		Example: strings.TrimSpace(`
linkbox links list
linkbox links add "Docs" https://docs.example.com
linkbox links edit 1 "Docs" https://docs.example.com/v2
linkbox links move 1 up
linkbox links move-to 3 0
linkbox links delete 2 --yes
linkbox links export --out links.yaml
linkbox links import links.yaml
`),
	}
	cmd.AddCommand(newLinksListCmd(app))
	cmd.AddCommand(newLinksAddCmd(app))
	cmd.AddCommand(newLinksEditCmd(app))
	cmd.AddCommand(newLinksDeleteCmd(app))
	cmd.AddCommand(newLinksMoveCmd(app))
	cmd.AddCommand(newLinksMoveToCmd(app))
	cmd.AddCommand(newLinksExportCmd(app))
	cmd.AddCommand(newLinksImportCmd(app))
	return cmd
}

func newLinksListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the displayed list (the default list when nothing usable is stored)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app, sessionOptions{})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			scope := s.scope()
			links, err := s.panel.Links(cmd.Context(), scope)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": links,
				"meta": map[string]any{"key": scope.Key, "count": len(links)},
			})
		},
	}
}

func newLinksAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <label> <url>",
		Short: "Append a link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyIntent(cmd, app, panel.AddIntent(args[0], args[1]), false)
		},
	}
}

func newLinksEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <index> <label> <url>",
		Short: "Replace the link at index",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex("index", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return applyIntent(cmd, app, panel.EditIntent(idx, args[1], args[2]), false)
		},
	}
}

func newLinksDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <index>",
		Short: "Delete the link at index after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex("index", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return applyIntent(cmd, app, panel.DeleteIntent(idx), yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newLinksMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <index> <up|down|top|bottom>",
		Short: "Move the link at index one step or to either end",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex("index", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			dir, ok := model.ParseDirection(args[1])
			if !ok {
				return writeErr(cmd, errInvalidArg("direction", args[1]+" (want up|down|top|bottom)"))
			}
			return applyIntent(cmd, app, panel.MoveIntent(idx, dir), false)
		},
	}
}

func newLinksMoveToCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move-to <from> <to>",
		Short: "Move the link at from so it lands at to (to may equal the list length)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseIndex("from", args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			to, err := parseIndex("to", args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			return applyIntent(cmd, app, panel.MoveToIntent(from, to), false)
		},
	}
}

func parseIndex(name, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, errInvalidArg(name, strconv.Quote(s)+" is not a non-negative integer")
	}
	return n, nil
}

// applyIntent runs one intent through the panel the same way a UI surface
// would, then reports what the panel sent back.
func applyIntent(cmd *cobra.Command, app *App, in panel.Intent, yes bool) error {
	surf := &cliSurface{in: cmd.InOrStdin(), out: cmd.ErrOrStderr(), yes: yes}
	s, err := openSession(cmd, app, sessionOptions{})
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.Close()

	ctx := cmd.Context()
	scope := s.scope()
	current, err := s.panel.Links(ctx, scope)
	if err != nil {
		return writeErr(cmd, err)
	}
	if err := checkIndexes(in, len(current)); err != nil {
		return writeErr(cmd, err)
	}

	s.panel.Register(surf)
	defer s.panel.Unregister(surf)

	if err := s.panel.Handle(ctx, scope, surf, in); err != nil {
		s.log.Error("intent failed", zap.String(logging.FieldIntent, string(in.Type)), zap.Error(err))
		return writeErr(cmd, err)
	}

	if n, ok := surf.last(panel.NoticeError); ok {
		return writeErr(cmd, mutate.ValidationError{Message: n.Message})
	}
	meta := map[string]any{"key": scope.Key, "changed": false}
	data := current
	if n, ok := surf.last(panel.NoticeLinks); ok {
		data = n.Links
		meta["changed"] = true
	}
	if n, ok := surf.last(panel.NoticeInfo); ok {
		meta["message"] = n.Message
	}
	return writeOut(cmd, app, map[string]any{"data": data, "meta": meta})
}

// checkIndexes reports stale indexes up front. The panel ignores them, which
// suits a live view but leaves a script with no signal.
func checkIndexes(in panel.Intent, n int) error {
	inRange := func(i int) bool { return i >= 0 && i < n }
	switch in.Type {
	case panel.IntentEdit, panel.IntentDelete, panel.IntentMove:
		if !inRange(in.Index) {
			return errNotFound("link", strconv.Itoa(in.Index))
		}
	case panel.IntentMoveTo:
		if !inRange(in.FromIndex) {
			return errNotFound("link", strconv.Itoa(in.FromIndex))
		}
		if in.ToIndex < 0 || in.ToIndex > n {
			return errInvalidArg("to", strconv.Itoa(in.ToIndex)+" is outside 0.."+strconv.Itoa(n))
		}
	}
	return nil
}

func newLinksExportCmd(app *App) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the displayed list to stdout or a file (format from --format or the file extension)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app, sessionOptions{})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			links, err := s.panel.Links(cmd.Context(), s.scope())
			if err != nil {
				return writeErr(cmd, err)
			}
			env := map[string]any{"data": links}
			if strings.TrimSpace(out) == "" {
				return writeOut(cmd, app, env)
			}

			fmtName := app.Format
			if !cmd.Flags().Changed("format") {
				fmtName = format.FromPath(out)
			}
			var buf bytes.Buffer
			if err := format.Write(&buf, env, fmtName, true); err != nil {
				return writeErr(cmd, err)
			}
			if err := store.WriteFileAtomic(out, buf.Bytes()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"path": out, "format": fmtName, "count": len(links)},
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to this file instead of stdout")
	return cmd
}

func newLinksImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the list with the links in a json, yaml or toml file",
		Long: strings.TrimSpace(`
Replace the list of the current scope with the links in a file.

Accepted shapes: a bare list, or an object with a "data" (as written by
export) or "links" key. Every entry must have a label and a valid URL;
nothing is written when any entry is rejected.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			var r io.Reader
			fmtName := format.FromPath(path)
			if path == "-" {
				r = cmd.InOrStdin()
				fmtName = app.Format
			} else {
				f, err := os.Open(path)
				if err != nil {
					return writeErr(cmd, err)
				}
				defer f.Close()
				r = f
			}

			links, err := readLinks(r, fmtName)
			if err != nil {
				return writeErr(cmd, err)
			}

			s, err := openSession(cmd, app, sessionOptions{})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			scope := s.scope()
			if err := s.links.UpdateLinks(cmd.Context(), scope.Key, links); err != nil {
				return writeErr(cmd, errors.Wrap(err, "import"))
			}
			s.log.Info("links imported", zap.String(logging.FieldKey, scope.Key), zap.Int("count", len(links)))
			return writeOut(cmd, app, map[string]any{
				"data": links,
				"meta": map[string]any{"key": scope.Key, "count": len(links)},
			})
		},
	}
}

type linkFile struct {
	Data  []model.Link `json:"data" yaml:"data" toml:"data"`
	Links []model.Link `json:"links" yaml:"links" toml:"links"`
}

// readLinks decodes and validates an import file.
func readLinks(r io.Reader, fmtName string) ([]model.Link, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var links []model.Link
	if fmtName != "toml" {
		if err := format.Decode(bytes.NewReader(raw), fmtName, &links); err != nil {
			links = nil
		}
	}
	if links == nil {
		var lf linkFile
		if err := format.Decode(bytes.NewReader(raw), fmtName, &lf); err != nil {
			return nil, err
		}
		switch {
		case lf.Data != nil:
			links = lf.Data
		case lf.Links != nil:
			links = lf.Links
		default:
			return nil, errInvalidArg("file", "no links found (want a list, or a data/links key)")
		}
	}

	out := make([]model.Link, 0, len(links))
	for i, l := range links {
		norm, err := mutate.NormalizeLink(l.Label, l.URL)
		if err != nil {
			return nil, errInvalidArg("link "+strconv.Itoa(i), err.Error()+" "+jsonText(l))
		}
		out = append(out, norm)
	}
	return out, nil
}

func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
