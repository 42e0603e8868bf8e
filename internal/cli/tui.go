package cli

import (
	"context"
	"net"
	"os/signal"
	"sync"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linkbox-cli/internal/logging"
	"linkbox-cli/internal/panel"
	"linkbox-cli/internal/tui"
	"linkbox-cli/internal/web"
)

func runTUI(cmd *cobra.Command, app *App) error {
	s, err := openSession(cmd, app, sessionOptions{logToFile: true})
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := startPanelLoop(ctx, s)

	return tui.Run(ctx, tui.Options{
		Panel:       s.panel,
		Events:      events,
		Theme:       s.cfg.TUI.Theme,
		Open:        openURL,
		Copy:        clipboard.WriteAll,
		OpenManager: managerLauncher(ctx, s, events),
		Logger:      s.log,
	})
}

// managerLauncher starts the browser manager on first use and reopens the
// same URL afterwards. It shares the TUI's panel loop, so both stay in sync.
func managerLauncher(ctx context.Context, s *session, events chan<- panel.Event) func(context.Context) (string, error) {
	var (
		once sync.Once
		url  string
		err  error
	)
	return func(openCtx context.Context) (string, error) {
		once.Do(func() {
			var srv *web.Server
			srv, err = web.NewServer(web.ServerConfig{Addr: s.cfg.Manager.Addr, Logger: s.log}, s.panel, events)
			if err != nil {
				return
			}
			var ln net.Listener
			if ln, err = srv.Listen(); err != nil {
				return
			}
			url = srv.URL()
			go func() {
				if err := srv.Serve(ctx, ln); err != nil {
					s.log.Error("manager stopped", zap.String(logging.FieldAddr, srv.Addr()), zap.Error(err))
				}
			}()
		})
		if err != nil {
			return "", err
		}
		if err := openURL(openCtx, url); err != nil {
			return url, err
		}
		return url, nil
	}
}
