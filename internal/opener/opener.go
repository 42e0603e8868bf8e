package opener

import (
	"context"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"linkbox-cli/internal/mutate"
)

// InvalidURLError is returned by Open when the target does not parse as an absolute URL.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string { return "invalid URL: " + e.URL }

// Command returns the OS handler invocation for target.
func Command(goos, target string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{target}
	case "windows":
		return "cmd", []string{"/c", "start", "", target}
	default:
		return "xdg-open", []string{target}
	}
}

// Opener hands URLs to the operating system. Tests swap Run.
type Opener struct {
	GOOS string
	Run  func(ctx context.Context, name string, args ...string) error
}

func New() *Opener {
	return &Opener{GOOS: runtime.GOOS, Run: startDetached}
}

func (o *Opener) Open(ctx context.Context, target string) error {
	target = strings.TrimSpace(target)
	if !mutate.ValidURL(target) {
		return &InvalidURLError{URL: target}
	}
	goos := o.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	name, args := Command(goos, target)
	run := o.Run
	if run == nil {
		run = startDetached
	}
	if err := run(ctx, name, args...); err != nil {
		return errors.Wrapf(err, "open %s", target)
	}
	return nil
}

func startDetached(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
