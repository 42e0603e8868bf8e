package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"linkbox-cli/internal/model"
	"linkbox-cli/internal/mutate"
	"linkbox-cli/internal/panel"
)

type pane int

const (
	paneSidebar pane = iota
	paneTable
)

type modalKind int

const (
	modalNone modalKind = iota
	modalAdd
	modalEdit
	modalConfirmDelete
	modalHelp
)

type intentDoneMsg struct{ err error }

type openDoneMsg struct {
	url string
	err error
}

type copyDoneMsg struct {
	url string
	err error
}

type managerOpenedMsg struct {
	url string
	err error
}

type appModel struct {
	ctx     context.Context
	panel   *panel.Panel
	events  chan<- panel.Event
	surface *teaSurface

	openURL     func(ctx context.Context, url string) error
	copyText    func(string) error
	openManager func(ctx context.Context) (string, error)

	width  int
	height int

	pane    pane
	links   []model.Link
	sidebar list.Model
	table   table.Model
	keys    keyMap
	help    help.Model

	// follow is the row to select once the next list arrives (after a move).
	follow int

	modal       modalKind
	labelInput  textinput.Model
	urlInput    textinput.Model
	formFocus   int
	editIndex   int
	formErr     string
	pendingSave bool

	confirmMessage string
	confirmFocus   confirmModalFocus
	confirmReply   chan<- bool

	// grabFrom is shared with the list delegate, so it lives behind a pointer
	// that survives model copies.
	grabbing bool
	grabFrom *int

	status    string
	statusErr bool
}

func newAppModel(ctx context.Context, opts Options, surface *teaSurface) appModel {
	m := appModel{
		ctx:         ctx,
		panel:       opts.Panel,
		events:      opts.Events,
		surface:     surface,
		openURL:     opts.Open,
		copyText:    opts.Copy,
		openManager: opts.OpenManager,
		keys:        defaultKeyMap(),
		help:        help.New(),
		follow:      -1,
		grabFrom:    new(int),
		editIndex:   -1,
		width:       80,
		height:      24,
	}

	*m.grabFrom = -1
	m.sidebar = list.New(nil, newLinkDelegate(m.grabFrom), 30, 10)
	m.sidebar.Title = "Links"
	m.sidebar.SetShowHelp(false)
	m.sidebar.SetShowStatusBar(false)
	m.sidebar.SetFilteringEnabled(false)
	m.sidebar.DisableQuitKeybindings()

	m.table = table.New(
		table.WithColumns(tableColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	m.labelInput = textinput.New()
	m.labelInput.Placeholder = "Label"
	m.labelInput.Prompt = "Label: "
	m.urlInput = textinput.New()
	m.urlInput.Placeholder = "https://"
	m.urlInput.Prompt = "URL:   "
	return m
}

func tableColumns(width int) []table.Column {
	if width < 40 {
		width = 40
	}
	labelW := (width - 8) / 3
	urlW := width - 8 - labelW - 4
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "Label", Width: labelW},
		{Title: "URL", Width: urlW},
	}
}

func (m appModel) Init() tea.Cmd {
	return m.do(panel.Ready())
}

// do hands an intent to the panel off the UI goroutine; a delete prompt comes
// back as confirmRequestMsg while the call is in flight.
func (m *appModel) do(in panel.Intent) tea.Cmd {
	ctx, p, surf, events := m.ctx, m.panel, m.surface, m.events
	return func() tea.Msg {
		if events != nil {
			select {
			case events <- panel.IntentReceived{Surface: surf, Intent: in}:
			case <-ctx.Done():
			}
			return nil
		}
		return intentDoneMsg{err: p.Handle(ctx, p.Scope(), surf, in)}
	}
}

func (m *appModel) cursor() int {
	if m.pane == paneTable {
		return m.table.Cursor()
	}
	return m.sidebar.Index()
}

func (m *appModel) setCursor(i int) {
	if len(m.links) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(m.links) {
		i = len(m.links) - 1
	}
	m.sidebar.Select(i)
	m.table.SetCursor(i)
}

func (m *appModel) selected() (model.Link, int, bool) {
	i := m.cursor()
	if i < 0 || i >= len(m.links) {
		return model.Link{}, -1, false
	}
	return m.links[i], i, true
}

func (m *appModel) setLinks(links []model.Link) {
	cur := m.cursor()
	m.links = model.CloneLinks(links)

	items := make([]list.Item, 0, len(m.links))
	rows := make([]table.Row, 0, len(m.links))
	for i, l := range m.links {
		items = append(items, linkItem{link: l, index: i})
		rows = append(rows, table.Row{strconv.Itoa(i + 1), l.Label, l.URL})
	}
	_ = m.sidebar.SetItems(items)
	m.table.SetRows(rows)

	if m.follow >= 0 {
		cur = m.follow
		m.follow = -1
	}
	m.setCursor(cur)
}

func (m *appModel) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m *appModel) resize() {
	bodyH := m.height - 4
	if bodyH < 4 {
		bodyH = 4
	}
	m.sidebar.SetSize(m.sidebarWidth(), bodyH)
	m.table.SetColumns(tableColumns(m.width))
	m.table.SetHeight(bodyH - 1)
	m.help.Width = m.width
	m.labelInput.Width = modalBodyWidth(m.width) - 8
	m.urlInput.Width = modalBodyWidth(m.width) - 8
}

func (m *appModel) sidebarWidth() int {
	w := m.width / 3
	if w < 24 {
		w = 24
	}
	if w > 48 {
		w = 48
	}
	return w
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case noticeMsg:
		return m.applyNotice(msg.notice), nil

	case confirmRequestMsg:
		if m.confirmReply != nil {
			// One prompt at a time.
			msg.reply <- false
			return m, nil
		}
		m.modal = modalConfirmDelete
		m.confirmMessage = msg.message
		m.confirmReply = msg.reply
		m.confirmFocus = confirmFocusCancel
		return m, nil

	case intentDoneMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
			m.pendingSave = false
		}
		return m, nil

	case openDoneMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		} else {
			m.setStatus("Opened "+msg.url, false)
		}
		return m, nil

	case copyDoneMsg:
		if msg.err != nil {
			m.setStatus("copy failed: "+msg.err.Error(), true)
		} else {
			m.setStatus("Copied "+msg.url, false)
		}
		return m, nil

	case managerOpenedMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		} else {
			m.setStatus("Manager at "+msg.url, false)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case m.modal != modalNone:
			return m.updateModal(msg)
		case m.grabbing:
			return m.updateGrab(msg)
		default:
			return m.updateMain(msg)
		}
	}
	return m, nil
}

func (m appModel) applyNotice(n panel.Notice) appModel {
	switch n.Type {
	case panel.NoticeLinks:
		m.setLinks(n.Links)
		if m.pendingSave {
			m.pendingSave = false
			m.closeForm()
			m.setStatus("Saved.", false)
		}
	case panel.NoticeError:
		m.pendingSave = false
		if m.modal == modalAdd || m.modal == modalEdit {
			m.formErr = n.Message
		} else {
			m.setStatus(n.Message, true)
		}
	case panel.NoticeInfo:
		m.setStatus(n.Message, false)
	}
	return m
}

func (m appModel) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.modal = modalHelp
		return m, nil
	case key.Matches(msg, k.Toggle):
		cur := m.cursor()
		if m.pane == paneSidebar {
			m.pane = paneTable
		} else {
			m.pane = paneSidebar
		}
		m.setCursor(cur)
		return m, nil
	case key.Matches(msg, k.Reload):
		return m, m.do(panel.Ready())
	case key.Matches(msg, k.Manager):
		return m, m.startManager()
	case key.Matches(msg, k.Add):
		return m, m.openForm(modalAdd, model.Link{}, -1)
	}

	l, idx, ok := m.selected()
	if !ok {
		return m.updateComponent(msg)
	}
	switch {
	case key.Matches(msg, k.Open):
		return m, m.open(l.URL)
	case key.Matches(msg, k.Copy):
		return m, m.copy(l.URL)
	case key.Matches(msg, k.Edit):
		return m, m.openForm(modalEdit, l, idx)
	case key.Matches(msg, k.Delete):
		return m, m.do(panel.DeleteIntent(idx))
	case key.Matches(msg, k.MoveUp):
		return m, m.move(idx, model.DirectionUp)
	case key.Matches(msg, k.MoveDown):
		return m, m.move(idx, model.DirectionDown)
	case key.Matches(msg, k.Top):
		return m, m.move(idx, model.DirectionTop)
	case key.Matches(msg, k.Bottom):
		return m, m.move(idx, model.DirectionBottom)
	case key.Matches(msg, k.Grab):
		m.grabbing = true
		*m.grabFrom = idx
		m.setStatus(fmt.Sprintf("Moving %q: ↑/↓ to choose, space/enter to drop, esc to cancel", l.Label), false)
		return m, nil
	}
	return m.updateComponent(msg)
}

func (m *appModel) move(idx int, dir model.Direction) tea.Cmd {
	to := mutate.StepTarget(len(m.links), idx, dir)
	if to >= 0 && to < len(m.links) && to != idx {
		m.follow = to
	}
	return m.do(panel.MoveIntent(idx, dir))
}

func (m appModel) updateComponent(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.pane == paneTable {
		m.table, cmd = m.table.Update(msg)
		m.sidebar.Select(m.table.Cursor())
	} else {
		m.sidebar, cmd = m.sidebar.Update(msg)
		m.table.SetCursor(m.sidebar.Index())
	}
	return m, cmd
}

func (m appModel) updateGrab(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.grabbing = false
		*m.grabFrom = -1
		m.setStatus("", false)
		return m, nil
	case " ", "space", "enter":
		from, to := *m.grabFrom, m.cursor()
		m.grabbing = false
		*m.grabFrom = -1
		m.setStatus("", false)
		if from == to || from < 0 {
			return m, nil
		}
		m.follow = to
		return m, m.do(panel.MoveToIntent(from, to))
	case "up", "k", "down", "j", "home", "end", "g", "G", "pgup", "pgdown":
		return m.updateComponent(msg)
	}
	return m, nil
}

func (m *appModel) openForm(kind modalKind, l model.Link, idx int) tea.Cmd {
	m.modal = kind
	m.editIndex = idx
	m.formErr = ""
	m.formFocus = 0
	m.labelInput.SetValue(l.Label)
	m.urlInput.SetValue(l.URL)
	m.labelInput.CursorEnd()
	m.urlInput.CursorEnd()
	m.urlInput.Blur()
	if kind == modalEdit {
		m.setStatus("Editing link...", false)
	}
	return m.labelInput.Focus()
}

func (m *appModel) closeForm() {
	if m.modal == modalAdd || m.modal == modalEdit {
		m.modal = modalNone
	}
	m.editIndex = -1
	m.formErr = ""
	m.labelInput.Blur()
	m.urlInput.Blur()
	m.labelInput.SetValue("")
	m.urlInput.SetValue("")
}

func (m *appModel) focusField(i int) tea.Cmd {
	m.formFocus = i
	if i == 0 {
		m.urlInput.Blur()
		return m.labelInput.Focus()
	}
	m.labelInput.Blur()
	return m.urlInput.Focus()
}

func (m *appModel) answerConfirm(ok bool) {
	if m.confirmReply != nil {
		m.confirmReply <- ok
	}
	m.confirmReply = nil
	m.confirmMessage = ""
	m.modal = modalNone
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalHelp:
		m.modal = modalNone
		return m, nil

	case modalConfirmDelete:
		switch msg.String() {
		case "y", "Y":
			m.answerConfirm(true)
		case "n", "N", "esc", "ctrl+g", "q":
			m.answerConfirm(false)
		case "tab", "shift+tab", "left", "right", "h", "l":
			if m.confirmFocus == confirmFocusConfirm {
				m.confirmFocus = confirmFocusCancel
			} else {
				m.confirmFocus = confirmFocusConfirm
			}
		case "enter":
			m.answerConfirm(m.confirmFocus == confirmFocusConfirm)
		}
		return m, nil

	case modalAdd, modalEdit:
		switch msg.String() {
		case "esc", "ctrl+g":
			m.closeForm()
			m.pendingSave = false
			m.setStatus("", false)
			return m, nil
		case "tab", "shift+tab", "down", "up":
			return m, m.focusField(1 - m.formFocus)
		case "enter":
			if m.formFocus == 0 {
				return m, m.focusField(1)
			}
			return m, m.submitForm()
		}
		var cmd tea.Cmd
		if m.formFocus == 0 {
			m.labelInput, cmd = m.labelInput.Update(msg)
		} else {
			m.urlInput, cmd = m.urlInput.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *appModel) submitForm() tea.Cmd {
	label, url := m.labelInput.Value(), m.urlInput.Value()
	m.formErr = ""
	m.pendingSave = true
	if m.modal == modalEdit {
		return m.do(panel.EditIntent(m.editIndex, label, url))
	}
	m.follow = len(m.links)
	return m.do(panel.AddIntent(label, url))
}

func (m *appModel) open(url string) tea.Cmd {
	fn, ctx := m.openURL, m.ctx
	if fn == nil {
		return nil
	}
	return func() tea.Msg { return openDoneMsg{url: url, err: fn(ctx, url)} }
}

func (m *appModel) copy(url string) tea.Cmd {
	fn := m.copyText
	if fn == nil {
		return nil
	}
	return func() tea.Msg { return copyDoneMsg{url: url, err: fn(url)} }
}

func (m *appModel) startManager() tea.Cmd {
	fn, ctx := m.openManager, m.ctx
	if fn == nil {
		return nil
	}
	return func() tea.Msg {
		u, err := fn(ctx)
		return managerOpenedMsg{url: u, err: err}
	}
}

func (m appModel) View() string {
	header := styleTitle().Render("linkbox") + "  " + styleMuted().Render(scopeLabel(m.panel.Scope()))

	bodyH := m.height - 4
	if bodyH < 4 {
		bodyH = 4
	}
	var body string
	switch m.modal {
	case modalAdd, modalEdit:
		body = overlay(m.width, bodyH, m.viewForm())
	case modalConfirmDelete:
		body = overlay(m.width, bodyH, renderConfirmModal(m.width, "Delete link", m.confirmMessage, "Delete", "Cancel", m.confirmFocus))
	case modalHelp:
		body = overlay(m.width, bodyH, renderModalBox(m.width, "Keys", m.help.FullHelpView(m.keys.FullHelp())))
	default:
		body = m.viewBody(bodyH)
	}

	status := styleMuted().Render(m.status)
	if m.statusErr {
		status = styleError().Render(m.status)
	}
	footer := m.help.ShortHelpView(m.keys.ShortHelp())
	return strings.Join([]string{header, normalizePane(body, m.width, bodyH), status, footer}, "\n")
}

func (m appModel) viewBody(h int) string {
	if len(m.links) == 0 {
		return styleMuted().Render("No links.")
	}
	if m.pane == paneTable {
		return m.table.View()
	}

	leftW := m.sidebarWidth()
	rightW := m.width - leftW - 2
	if rightW < 20 {
		rightW = 20
	}
	left := normalizePane(m.sidebar.View(), leftW, h)

	detail := ""
	if l, idx, ok := m.selected(); ok {
		detail = renderMarkdown(linkDetailMarkdown(l, idx, len(m.links)), rightW)
	}
	right := normalizePane(detail, rightW, h)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

func (m appModel) viewForm() string {
	title := "Add link"
	if m.modal == modalEdit {
		title = "Edit link"
	}
	lines := []string{m.labelInput.View(), m.urlInput.View()}
	if m.formErr != "" {
		lines = append(lines, "", styleError().Render(m.formErr))
	}
	lines = append(lines, "", styleMuted().Render("tab: next field   enter: save   esc: cancel"))
	return renderModalBox(m.width, title, strings.Join(lines, "\n"))
}

func scopeLabel(s panel.Scope) string {
	if s.Folder == nil {
		return "global"
	}
	if p, ok := s.Folder.FSPath(); ok {
		return p
	}
	return s.Folder.URI
}
