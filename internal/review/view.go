package review

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"folioterm/internal/model"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	activeTab    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("28")).Padding(0, 1)
	inactiveTab  = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Background(lipgloss.Color("238")).Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).PaddingTop(1)
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	return s
}

// ColumnTitles lists the table headers for a view: a Status column when
// showing accepted messages, an Actions column otherwise.
func ColumnTitles(v model.ViewMode) []string {
	if v == model.ViewAccepted {
		return []string{"Email", "Message", "Status"}
	}
	return []string{"Email", "Message", "Actions"}
}

func columns(v model.ViewMode, width int) []table.Column {
	if width <= 0 {
		width = 100
	}
	titles := ColumnTitles(v)
	last := 10
	if v == model.ViewAll {
		last = 22
	}
	email := 28
	msg := width - email - last - 8
	if msg < 16 {
		msg = 16
	}
	return []table.Column{
		{Title: titles[0], Width: email},
		{Title: titles[1], Width: msg},
		{Title: titles[2], Width: last},
	}
}

func (m *Model) syncTable() {
	rows := make([]table.Row, len(m.messages))
	for i, msg := range m.messages {
		text := strings.ReplaceAll(msg.Message, "\n", " ")
		last := "a: accept  r: reject"
		if m.view == model.ViewAccepted {
			last = msg.Status.Label()
		}
		rows[i] = table.Row{msg.Email, text, last}
	}
	m.table.SetColumns(columns(m.view, m.width))
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m *Model) emptyText() string {
	if m.view == model.ViewAccepted {
		return "No accepted messages"
	}
	return "No pending messages"
}

// View renders the table for the current state.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Messages"))
	b.WriteString("\n\n")

	accepted, all := inactiveTab, activeTab
	if m.view == model.ViewAccepted {
		accepted, all = activeTab, inactiveTab
	}
	b.WriteString(accepted.Render("Accepted Messages"))
	b.WriteString(" ")
	b.WriteString(all.Render("All Messages"))
	b.WriteString("\n\n")

	switch m.state {
	case StateLoading:
		b.WriteString("Loading...")
	case StateFailed:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Could not load %s messages: %s", m.view, errorText(m.err))))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("ctrl+r: retry"))
	default:
		if len(m.messages) == 0 {
			b.WriteString(m.emptyText())
		} else {
			b.WriteString(m.table.View())
		}
	}

	if m.notice.Active() {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.notice.Text()))
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render("v: toggle view  a: accept  r: reject  enter: open  ctrl+r: refresh"))
	return b.String()
}
