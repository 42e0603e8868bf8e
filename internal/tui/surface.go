package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"linkbox-cli/internal/panel"
)

var errSurfaceClosed = errors.New("terminal closed")

type noticeMsg struct{ notice panel.Notice }

// confirmRequestMsg opens the delete modal; the answer goes back on reply.
type confirmRequestMsg struct {
	message string
	reply   chan<- bool
}

// teaSurface bridges the panel to a running bubbletea program.
type teaSurface struct {
	id   string
	send func(tea.Msg)

	done chan struct{}
	once sync.Once
}

func newTeaSurface(id string, send func(tea.Msg)) *teaSurface {
	return &teaSurface{id: id, send: send, done: make(chan struct{})}
}

func (s *teaSurface) ID() string { return s.id }

func (s *teaSurface) Send(n panel.Notice) error {
	select {
	case <-s.done:
		return errSurfaceClosed
	default:
	}
	s.send(noticeMsg{notice: n})
	return nil
}

func (s *teaSurface) Confirm(ctx context.Context, message string) (bool, error) {
	select {
	case <-s.done:
		return false, errSurfaceClosed
	default:
	}
	reply := make(chan bool, 1)
	s.send(confirmRequestMsg{message: message, reply: reply})
	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-s.done:
		return false, errSurfaceClosed
	}
}

func (s *teaSurface) close() {
	s.once.Do(func() { close(s.done) })
}
