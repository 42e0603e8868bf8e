package opener

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	name, args := Command("darwin", "https://a.example")
	require.Equal(t, "open", name)
	require.Equal(t, []string{"https://a.example"}, args)

	name, args = Command("windows", "https://a.example")
	require.Equal(t, "cmd", name)
	require.Equal(t, []string{"/c", "start", "", "https://a.example"}, args)

	name, _ = Command("linux", "https://a.example")
	require.Equal(t, "xdg-open", name)
}

func TestOpen_ValidatesBeforeRunning(t *testing.T) {
	var calls [][]string
	o := &Opener{GOOS: "linux", Run: func(_ context.Context, name string, args ...string) error {
		calls = append(calls, append([]string{name}, args...))
		return nil
	}}

	err := o.Open(context.Background(), "not a url")
	var invalid *InvalidURLError
	require.True(t, errors.As(err, &invalid))
	require.Equal(t, "invalid URL: not a url", err.Error())
	require.Empty(t, calls)

	require.NoError(t, o.Open(context.Background(), "  https://docs.example.com/x  "))
	require.Equal(t, [][]string{{"xdg-open", "https://docs.example.com/x"}}, calls)
}

func TestOpen_WrapsRunError(t *testing.T) {
	o := &Opener{GOOS: "linux", Run: func(context.Context, string, ...string) error {
		return errors.New("boom")
	}}
	err := o.Open(context.Background(), "https://a.example")
	require.ErrorContains(t, err, "boom")
}
