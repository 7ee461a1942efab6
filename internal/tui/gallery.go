package tui

import (
	"fmt"
	"strings"

	"folioterm/internal/content"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	filterStyle       = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("241"))
	activeFilterStyle = filterStyle.BorderForeground(lipgloss.Color("212")).Foreground(lipgloss.Color("212"))
	cardStyle         = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("241"))
	selectedCardStyle = cardStyle.BorderForeground(lipgloss.Color("212"))
	tagStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	dimStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Gallery lists projects under a category filter. Opening a project is left
// to the parent, which owns the modal.
type Gallery struct {
	content *content.Content
	filter  int
	cursor  int
	shown   []content.Project
	width   int
}

func NewGallery(c *content.Content) Gallery {
	g := Gallery{}
	g.SetContent(c)
	return g
}

// SetContent swaps the data, keeping the filter when it still exists.
func (g *Gallery) SetContent(c *content.Content) {
	var keep content.Category
	if g.content != nil {
		keep = g.Category()
	}
	g.content = c
	g.filter = 0
	for i, f := range c.Filters {
		if f.Category == keep {
			g.filter = i
		}
	}
	g.apply()
}

func (g *Gallery) apply() {
	g.shown = g.content.FilterProjects(g.Category())
	if g.cursor >= len(g.shown) {
		g.cursor = len(g.shown) - 1
	}
	if g.cursor < 0 {
		g.cursor = 0
	}
}

func (g *Gallery) Category() content.Category {
	return g.content.Filters[g.filter].Category
}

// SetFilter selects the filter for category. Unknown categories are ignored.
func (g *Gallery) SetFilter(category content.Category) {
	for i, f := range g.content.Filters {
		if f.Category == category {
			g.filter = i
			g.cursor = 0
			g.apply()
			return
		}
	}
}

func (g *Gallery) Projects() []content.Project { return g.shown }

func (g *Gallery) Selected() (content.Project, bool) {
	if len(g.shown) == 0 {
		return content.Project{}, false
	}
	return g.shown[g.cursor], true
}

func (g *Gallery) SetWidth(w int) { g.width = w }

func (g *Gallery) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	n := len(g.content.Filters)
	switch key.String() {
	case "left", "h":
		g.SetFilter(g.content.Filters[(g.filter+n-1)%n].Category)
	case "right", "l", "f":
		g.SetFilter(g.content.Filters[(g.filter+1)%n].Category)
	case "up", "k":
		if g.cursor > 0 {
			g.cursor--
		}
	case "down", "j":
		if g.cursor < len(g.shown)-1 {
			g.cursor++
		}
	case "enter":
		if p, ok := g.Selected(); ok {
			return func() tea.Msg { return openProjectMsg{project: p} }
		}
	}
	return nil
}

func (g *Gallery) View() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Projects"))
	b.WriteString("\n")

	filters := make([]string, len(g.content.Filters))
	for i, f := range g.content.Filters {
		style := filterStyle
		if i == g.filter {
			style = activeFilterStyle
		}
		filters[i] = style.Render(f.Label)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, filters...))
	b.WriteString("\n")

	if len(g.shown) == 0 {
		b.WriteString(dimStyle.Render("No projects in this category"))
		return b.String()
	}

	width := g.width - 2
	if width < 20 {
		width = 20
	}
	for i, p := range g.shown {
		style := cardStyle
		if i == g.cursor {
			style = selectedCardStyle
		}
		card := fmt.Sprintf("%s\n%s\n%s\n%s",
			lipgloss.NewStyle().Bold(true).Render(p.Title),
			dimStyle.Render(p.Date),
			p.Description,
			tagStyle.Render(strings.Join(p.Tags, " · ")),
		)
		b.WriteString(style.Width(width).Render(card))
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render("←/→: filter  ↑/↓: select  enter: details"))
	return b.String()
}
