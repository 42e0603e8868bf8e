package panel

import (
	"context"

	"go.uber.org/zap"

	"linkbox-cli/internal/logging"
	"linkbox-cli/internal/store"
)

// Event is consumed by Run.
type Event interface {
	isEvent()
}

// FocusChanged reports the folder of whatever the user is now looking at. Folder
// is nil when the focused thing belongs to no workspace folder.
type FocusChanged struct {
	Folder *store.Folder
}

// FoldersChanged replaces the workspace folder list.
type FoldersChanged struct {
	Folders []*store.Folder
}

// IntentReceived carries a surface message into the loop.
type IntentReceived struct {
	Surface Surface
	Intent  Intent
}

func (FocusChanged) isEvent()   {}
func (FoldersChanged) isEvent() {}
func (IntentReceived) isEvent() {}

// Run handles events one at a time until ctx is done or events is closed.
// Storage failures are logged and reported to the issuing surface; the loop keeps going.
func (p *Panel) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.dispatch(ctx, ev)
		}
	}
}

func (p *Panel) dispatch(ctx context.Context, ev Event) {
	switch e := ev.(type) {
	case FocusChanged:
		scope := p.tracker.Focus(e.Folder)
		if err := p.Render(ctx, scope); err != nil {
			p.log.Error("render failed", zap.String(logging.FieldKey, scope.Key), zap.Error(err))
		}
	case FoldersChanged:
		scope := p.tracker.SetFolders(e.Folders)
		if err := p.Render(ctx, scope); err != nil {
			p.log.Error("render failed", zap.String(logging.FieldKey, scope.Key), zap.Error(err))
		}
	case IntentReceived:
		scope := p.tracker.Current()
		if err := p.Handle(ctx, scope, e.Surface, e.Intent); err != nil {
			p.log.Error("intent failed", zap.String(logging.FieldIntent, string(e.Intent.Type)), zap.Error(err))
			p.reply(e.Surface, ErrorNotice(err.Error()))
		}
	}
}
