package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"linkbox-cli/internal/model"
)

type linkItem struct {
	link  model.Link
	index int
}

func (it linkItem) Title() string       { return it.link.Label }
func (it linkItem) Description() string { return it.link.URL }
func (it linkItem) FilterValue() string { return it.link.Label + " " + it.link.URL }

// linkDelegate renders one link per line. The grabbed row keeps a marker while
// the cursor moves to its drop target.
type linkDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	grabbed  lipgloss.Style

	grabFrom *int
}

func newLinkDelegate(grabFrom *int) linkDelegate {
	return linkDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		grabbed:  lipgloss.NewStyle().Foreground(colorGrab).Bold(true),
		grabFrom: grabFrom,
	}
}

func (d linkDelegate) Height() int                             { return 1 }
func (d linkDelegate) Spacing() int                            { return 0 }
func (d linkDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d linkDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}
	it, ok := item.(linkItem)
	if !ok {
		fmt.Fprint(w, "")
		return
	}

	marker := "  "
	style := d.normal
	if d.grabFrom != nil && *d.grabFrom == it.index {
		marker = "≡ "
		style = d.grabbed
	}
	if index == m.Index() {
		style = d.selected
		if marker == "  " {
			marker = "› "
		}
	}

	line := marker + it.link.Label
	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Cut(line, 0, contentW-1) + "…"
	}
	fmt.Fprint(w, style.Render(line))
}
