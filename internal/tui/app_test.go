package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"linkbox-cli/internal/model"
	"linkbox-cli/internal/panel"
	"linkbox-cli/internal/store"
)

type harness struct {
	t    *testing.T
	m    appModel
	msgs chan tea.Msg
	ls   *store.LinkStore
	p    *panel.Panel
}

func newHarness(t *testing.T, seed ...model.Link) *harness {
	t.Helper()
	ls := store.NewLinkStore(store.NewMemoryKV())
	if seed != nil {
		require.NoError(t, ls.UpdateLinks(context.Background(), store.GlobalKey, seed))
	}
	p := panel.New(panel.Options{Store: ls})

	h := &harness{t: t, msgs: make(chan tea.Msg, 64), ls: ls, p: p}
	surf := newTeaSurface("tui", func(msg tea.Msg) { h.msgs <- msg })
	p.Register(surf)
	t.Cleanup(func() {
		surf.close()
		p.Unregister(surf)
	})

	h.m = newAppModel(context.Background(), Options{Panel: p}, surf)
	h.feed(tea.WindowSizeMsg{Width: 100, Height: 30})
	h.exec(h.m.Init())
	return h
}

func (h *harness) feed(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(appModel)
	return cmd
}

// exec runs an intent command synchronously and applies everything the
// panel pushed to the surface while it ran.
func (h *harness) exec(cmd tea.Cmd) {
	h.t.Helper()
	require.NotNil(h.t, cmd)
	if msg := cmd(); msg != nil {
		h.feed(msg)
	}
	h.drain()
}

func (h *harness) drain() {
	for {
		select {
		case msg := <-h.msgs:
			h.feed(msg)
		default:
			return
		}
	}
}

func (h *harness) press(k string) tea.Cmd {
	switch k {
	case "enter":
		return h.feed(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return h.feed(tea.KeyMsg{Type: tea.KeyEsc})
	case "tab":
		return h.feed(tea.KeyMsg{Type: tea.KeyTab})
	case "down":
		return h.feed(tea.KeyMsg{Type: tea.KeyDown})
	case "up":
		return h.feed(tea.KeyMsg{Type: tea.KeyUp})
	case "space":
		return h.feed(tea.KeyMsg{Type: tea.KeySpace})
	}
	return h.feed(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

func (h *harness) stored() []model.Link {
	h.t.Helper()
	got, err := h.ls.Links(context.Background(), store.GlobalKey)
	require.NoError(h.t, err)
	return got
}

func abc() []model.Link {
	return []model.Link{
		{Label: "a", URL: "https://a.example"},
		{Label: "b", URL: "https://b.example"},
		{Label: "c", URL: "https://c.example"},
	}
}

func TestApp_InitShowsDefaultList(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, model.DefaultLinks(), h.m.links)
	require.Contains(t, h.m.View(), "Example")
}

func TestApp_AddFlowSavesAndClosesForm(t *testing.T) {
	h := newHarness(t)

	h.press("a")
	require.Equal(t, modalAdd, h.m.modal)
	h.press("Docs")
	h.press("tab")
	h.press("https://docs.example.com")
	h.exec(h.press("enter"))

	require.Equal(t, modalNone, h.m.modal)
	require.Equal(t, "Saved.", h.m.status)
	want := []model.Link{
		{Label: "Example", URL: "https://example.com"},
		{Label: "Docs", URL: "https://docs.example.com"},
	}
	require.Equal(t, want, h.m.links)
	require.Equal(t, want, h.stored())
	require.Equal(t, 1, h.m.cursor())
}

func TestApp_InvalidAddKeepsFormOpenWithError(t *testing.T) {
	h := newHarness(t)

	h.press("a")
	h.press("Docs")
	h.press("tab")
	h.exec(h.press("enter"))

	require.Equal(t, modalAdd, h.m.modal)
	require.NotEmpty(t, h.m.formErr)
	require.False(t, h.m.pendingSave)
	require.Equal(t, model.DefaultLinks(), h.m.links)
}

func TestApp_EscCancelsForm(t *testing.T) {
	h := newHarness(t, abc()...)
	h.press("e")
	require.Equal(t, modalEdit, h.m.modal)
	require.Equal(t, "a", h.m.labelInput.Value())
	h.press("esc")
	require.Equal(t, modalNone, h.m.modal)
	require.Equal(t, abc(), h.stored())
}

func TestApp_EditReplacesSelectedLink(t *testing.T) {
	h := newHarness(t, abc()...)
	h.m.setCursor(1)

	h.press("e")
	h.press("tab")
	h.press("/docs")
	h.exec(h.press("enter"))

	require.Equal(t, modalNone, h.m.modal)
	require.Equal(t, "https://b.example/docs", h.stored()[1].URL)
}

func deleteWithAnswer(t *testing.T, h *harness, answer string) {
	t.Helper()
	cmd := h.press("d")
	require.NotNil(t, cmd)

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-h.msgs:
		h.feed(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no confirmation requested")
	}
	require.Equal(t, modalConfirmDelete, h.m.modal)
	require.Equal(t, `Delete "b"?`, h.m.confirmMessage)
	require.Contains(t, h.m.View(), `Delete "b"?`)

	h.press(answer)
	select {
	case msg := <-done:
		h.feed(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("delete did not finish")
	}
	h.drain()
	require.Equal(t, modalNone, h.m.modal)
}

func TestApp_DeleteConfirmed(t *testing.T) {
	h := newHarness(t, abc()...)
	h.m.setCursor(1)

	deleteWithAnswer(t, h, "y")

	want := []model.Link{abc()[0], abc()[2]}
	require.Equal(t, want, h.stored())
	require.Equal(t, want, h.m.links)
}

func TestApp_DeleteDeclined(t *testing.T) {
	h := newHarness(t, abc()...)
	h.m.setCursor(1)

	deleteWithAnswer(t, h, "n")

	require.Equal(t, abc(), h.stored())
	require.Equal(t, "Delete canceled.", h.m.status)
}

func TestApp_ConfirmDefaultsToCancel(t *testing.T) {
	h := newHarness(t, abc()...)
	reply := make(chan bool, 1)
	h.feed(confirmRequestMsg{message: "Delete?", reply: reply})
	h.press("enter")
	require.False(t, <-reply)

	h.feed(confirmRequestMsg{message: "Delete?", reply: reply})
	h.press("tab")
	h.press("enter")
	require.True(t, <-reply)
}

func TestApp_StepMoveFollowsLink(t *testing.T) {
	h := newHarness(t, abc()...)

	h.exec(h.press("J"))
	require.Equal(t, []string{"b", "a", "c"}, labels(h.stored()))
	require.Equal(t, 1, h.m.cursor())

	h.exec(h.press("T"))
	require.Equal(t, []string{"a", "b", "c"}, labels(h.stored()))
	require.Equal(t, 0, h.m.cursor())
}

func TestApp_GrabAndDrop(t *testing.T) {
	h := newHarness(t, abc()...)

	h.press("space")
	require.True(t, h.m.grabbing)
	require.Equal(t, 0, *h.m.grabFrom)

	h.press("down")
	h.press("down")
	require.Equal(t, 2, h.m.cursor())

	h.exec(h.press("enter"))
	require.False(t, h.m.grabbing)
	require.Equal(t, -1, *h.m.grabFrom)
	require.Equal(t, []string{"b", "c", "a"}, labels(h.stored()))
	require.Equal(t, 2, h.m.cursor())
}

func TestApp_GrabEscLeavesListAlone(t *testing.T) {
	h := newHarness(t, abc()...)
	h.press("space")
	h.press("down")
	require.Nil(t, h.press("esc"))
	require.False(t, h.m.grabbing)
	require.Equal(t, abc(), h.stored())
}

func TestApp_OpenAndCopyUseSelectedURL(t *testing.T) {
	h := newHarness(t, abc()...)
	var opened, copied string
	h.m.openURL = func(_ context.Context, u string) error { opened = u; return nil }
	h.m.copyText = func(s string) error { copied = s; return nil }
	h.m.setCursor(2)

	h.feed(h.press("enter")())
	require.Equal(t, "https://c.example", opened)
	require.True(t, strings.HasPrefix(h.m.status, "Opened "))

	h.feed(h.press("y")())
	require.Equal(t, "https://c.example", copied)
}

func TestApp_TabSwitchesToTableKeepingCursor(t *testing.T) {
	h := newHarness(t, abc()...)
	h.m.setCursor(2)
	h.press("tab")
	require.Equal(t, paneTable, h.m.pane)
	require.Equal(t, 2, h.m.cursor())
	require.Contains(t, h.m.View(), "https://c.example")
}

func TestApp_ErrorNoticeOutsideFormGoesToStatus(t *testing.T) {
	h := newHarness(t, abc()...)
	h.feed(noticeMsg{notice: panel.ErrorNotice("boom")})
	require.True(t, h.m.statusErr)
	require.Equal(t, "boom", h.m.status)
}

func labels(links []model.Link) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, l.Label)
	}
	return out
}

func TestOptions_LoggerFallsBackToNop(t *testing.T) {
	require.NotNil(t, Options{}.logger())
	require.NotPanics(t, func() { Options{}.logger().Info("discarded") })

	require.Error(t, Run(context.Background(), Options{}))
}
