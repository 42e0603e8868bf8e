package panel

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"linkbox-cli/internal/model"
	"linkbox-cli/internal/store"
)

type recorder struct {
	id string

	mu      sync.Mutex
	notices []Notice
}

func newRecorder(id string) *recorder { return &recorder{id: id} }

func (r *recorder) ID() string { return r.id }

func (r *recorder) Send(n Notice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	return nil
}

func (r *recorder) all() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

func (r *recorder) last(t *testing.T) Notice {
	t.Helper()
	all := r.all()
	require.NotEmpty(t, all, "surface %s received nothing", r.id)
	return all[len(all)-1]
}

// prompter is a surface that answers delete prompts itself.
type prompter struct {
	*recorder
	answer bool
	err    error
	asked  []string
}

func (p *prompter) Confirm(_ context.Context, msg string) (bool, error) {
	p.asked = append(p.asked, msg)
	return p.answer, p.err
}

var errClosed = errors.New("surface closed")

func newTestPanel(t *testing.T, opts Options) (*Panel, *store.LinkStore) {
	t.Helper()
	ls := store.NewLinkStore(store.NewMemoryKV())
	opts.Store = ls
	return New(opts), ls
}

func seedLinks(t *testing.T, ls *store.LinkStore, key string, links ...model.Link) {
	t.Helper()
	if links == nil {
		links = []model.Link{}
	}
	require.NoError(t, ls.UpdateLinks(context.Background(), key, links))
}

func storedLinks(t *testing.T, ls *store.LinkStore, key string) []model.Link {
	t.Helper()
	got, err := ls.Links(context.Background(), key)
	require.NoError(t, err)
	return got
}

func abc() []model.Link {
	return []model.Link{
		{Label: "A", URL: "https://a.example.com"},
		{Label: "B", URL: "https://b.example.com"},
		{Label: "C", URL: "https://c.example.com"},
	}
}

func mustDecode(t *testing.T, raw string) Intent {
	t.Helper()
	in, err := DecodeIntent([]byte(raw))
	require.NoError(t, err)
	return in
}
