package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const closeGlyph = "×"

var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("212")).
			Padding(0, 1)
	modalTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
)

// Modal shows markdown in a centred, scrollable box over the current section.
type Modal struct {
	open     bool
	title    string
	markdown string
	style    string // glamour style name
	vp       viewport.Model
	screenW  int
	screenH  int
}

func NewModal(style string) Modal {
	return Modal{style: style, vp: viewport.New(0, 0)}
}

func (m *Modal) Open(title, markdown string) {
	m.open = true
	m.title = title
	m.markdown = markdown
	m.render()
	m.vp.GotoTop()
}

func (m *Modal) Close()        { m.open = false }
func (m *Modal) IsOpen() bool  { return m.open }
func (m *Modal) Title() string { return m.title }

func (m *Modal) SetSize(w, h int) {
	m.screenW, m.screenH = w, h
	if m.open {
		m.render()
	}
}

// boxSize is the outer size of the modal including its border.
func (m *Modal) boxSize() (int, int) {
	w := m.screenW * 4 / 5
	if w > 90 {
		w = 90
	}
	if w < 20 {
		w = m.screenW
	}
	h := m.screenH * 4 / 5
	if h < 6 {
		h = m.screenH
	}
	return w, h
}

// Bounds returns the box's top left corner and size.
func (m *Modal) Bounds() (x, y, w, h int) {
	w, h = m.boxSize()
	return (m.screenW - w) / 2, (m.screenH - h) / 2, w, h
}

func (m *Modal) render() {
	w, h := m.boxSize()
	innerW := w - modalStyle.GetHorizontalFrameSize()
	// title row and blank line under it
	m.vp.Width = innerW
	m.vp.Height = h - modalStyle.GetVerticalFrameSize() - 2
	if m.vp.Height < 1 {
		m.vp.Height = 1
	}

	body := m.markdown
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(m.style),
		glamour.WithWordWrap(innerW),
	)
	if err == nil {
		if out, err := r.Render(m.markdown); err == nil {
			body = strings.TrimSpace(out)
		}
	}
	m.vp.SetContent(body)
}

// Click handles a left click. A click outside the box or on the close glyph
// closes the modal; a click inside is swallowed.
func (m *Modal) Click(x, y int) {
	bx, by, bw, bh := m.Bounds()
	if x < bx || x >= bx+bw || y < by || y >= by+bh {
		m.Close()
		return
	}
	// The glyph sits at the right end of the title row, inside border and padding.
	if y == by+1 && x >= bx+bw-4 && x < bx+bw-1 {
		m.Close()
	}
}

func (m *Modal) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "x":
			m.Close()
			return nil
		}
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return cmd
}

func (m *Modal) View() string {
	w, h := m.boxSize()
	innerW := w - modalStyle.GetHorizontalFrameSize()
	title := modalTitleStyle.Render(m.title)
	gap := innerW - lipgloss.Width(title) - lipgloss.Width(closeGlyph)
	if gap < 1 {
		gap = 1
	}
	header := title + strings.Repeat(" ", gap) + closeGlyph
	box := modalStyle.
		Width(w - modalStyle.GetHorizontalBorderSize()).
		Height(h - modalStyle.GetVerticalBorderSize()).
		Render(header + "\n\n" + m.vp.View())
	return lipgloss.Place(m.screenW, m.screenH, lipgloss.Center, lipgloss.Center, box)
}
