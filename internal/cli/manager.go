package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linkbox-cli/internal/panel"
	"linkbox-cli/internal/web"
)

func newManagerCmd(app *App) *cobra.Command {
	var addr string
	var noOpen bool

	cmd := &cobra.Command{
		Use:   "manager",
		Short: "Serve the browser link manager",
		Long: strings.TrimSpace(`
Serve the link manager on a local HTTP server.

Every open tab edits the same list as the TUI and the CLI. Changes made in
one tab show up in the others immediately.
`),
		Example: strings.TrimSpace(`
# Serve on the configured address (manager.addr) and open a browser
linkbox manager

# Serve the global list without opening a browser
linkbox --global manager --addr 127.0.0.1:8080 --no-open
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			s, err := openSession(cmd, app, sessionOptions{metrics: panel.NewMetrics(reg)})
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				listenAddr = s.cfg.Manager.Addr
			}
			cfg := web.ServerConfig{Addr: listenAddr, Logger: s.log}
			if s.cfg.Manager.Metrics {
				cfg.Gatherer = reg
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events := startPanelLoop(ctx, s)
			srv, err := web.NewServer(cfg, s.panel, events)
			if err != nil {
				return writeErr(cmd, err)
			}
			ln, err := srv.Listen()
			if err != nil {
				return writeErr(cmd, err)
			}

			url := srv.URL()
			opened := false
			openErr := ""
			if !noOpen {
				if err := openURL(ctx, url); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}
			hints := []string{}
			if !opened {
				hints = append(hints, "open "+url)
			}
			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      srv.Addr(),
					"url":       url,
					"key":       s.scope().Key,
					"opened":    opened,
					"openError": openErr,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": hints,
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "Link manager running at %s (key=%s)\n", url, s.scope().Key)
			if openErr != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open browser: %s\n", openErr)
			}

			if err := srv.Serve(ctx, ln); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (default: manager.addr from config)")
	cmd.Flags().BoolVar(&noOpen, "no-open", false, "Do not open a browser")
	return cmd
}

// startPanelLoop runs the panel event loop until ctx ends and focuses the
// session's folder so the first render seeds it.
func startPanelLoop(ctx context.Context, s *session) chan<- panel.Event {
	events := make(chan panel.Event, 16)
	go func() {
		if err := s.panel.Run(ctx, events); err != nil && ctx.Err() == nil {
			s.log.Error("panel loop stopped", zap.Error(err))
		}
	}()
	events <- panel.FocusChanged{Folder: s.folder}
	return events
}
