package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"linkbox-cli/internal/logging"
	"linkbox-cli/internal/panel"
)

// Options wires the terminal view to a panel and to the host actions it can
// trigger.
type Options struct {
	Panel *panel.Panel
	// Events, when set, routes intents through panel.Run; otherwise they are
	// handled directly.
	Events chan<- panel.Event
	Theme  string

	Open        func(ctx context.Context, url string) error
	Copy        func(text string) error
	OpenManager func(ctx context.Context) (string, error)

	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return logging.Nop()
	}
	return o.Logger
}

// Run blocks until the user quits or ctx is canceled.
func Run(ctx context.Context, opts Options) error {
	if opts.Panel == nil {
		return errors.New("tui: panel is required")
	}
	log := opts.logger()
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)

	var prog *tea.Program
	surf := newTeaSurface("tui", func(msg tea.Msg) { prog.Send(msg) })
	prog = tea.NewProgram(newAppModel(ctx, opts, surf), tea.WithAltScreen(), tea.WithContext(ctx))

	opts.Panel.Register(surf)
	defer func() {
		surf.close()
		opts.Panel.Unregister(surf)
	}()

	log.Debug("tui started")
	_, err := prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
