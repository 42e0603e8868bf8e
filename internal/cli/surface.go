package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"linkbox-cli/internal/panel"
)

// cliSurface collects what the panel sends during one command and answers
// delete prompts on the terminal.
type cliSurface struct {
	in  io.Reader
	out io.Writer
	yes bool

	mu      sync.Mutex
	notices []panel.Notice
}

func (s *cliSurface) ID() string { return "cli" }

func (s *cliSurface) Send(n panel.Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, n)
	return nil
}

func (s *cliSurface) Confirm(ctx context.Context, message string) (bool, error) {
	if s.yes {
		return true, nil
	}
	if s.in == nil {
		return false, nil
	}
	fmt.Fprintf(s.out, "%s [y/N] ", message)

	type answer struct {
		line string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(s.in).ReadString('\n')
		ch <- answer{line: line, err: err}
	}()
	select {
	case a := <-ch:
		if a.err != nil && a.err != io.EOF {
			return false, a.err
		}
		switch strings.ToLower(strings.TrimSpace(a.line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// last returns the most recent notice of type t.
func (s *cliSurface) last(t panel.NoticeType) (panel.Notice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.notices) - 1; i >= 0; i-- {
		if s.notices[i].Type == t {
			return s.notices[i], true
		}
	}
	return panel.Notice{}, false
}
