package tui

import (
	"fmt"
	"strings"

	"folioterm/internal/content"
	"folioterm/internal/model"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			PaddingBottom(1)
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingTop(1)
	subheadStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func aboutView(c *content.Content) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Hi, I am " + c.Name))
	b.WriteString("\n")
	if len(c.Roles) > 0 {
		b.WriteString(subheadStyle.Render("I am a " + strings.Join(c.Roles, " · ")))
		b.WriteString("\n\n")
	}
	b.WriteString(strings.TrimSpace(c.Bio))
	b.WriteString("\n\n")
	if c.GitHub != "" {
		b.WriteString("GitHub: " + c.GitHub + "\n")
	}
	if c.Resume != "" {
		b.WriteString("Resume: " + c.Resume + "\n")
	}
	return b.String()
}

func skillsView(c *content.Content) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Skills"))
	b.WriteString("\n")
	for _, g := range c.Skills {
		b.WriteString(subheadStyle.Render(g.Title))
		b.WriteString("\n")
		b.WriteString(tagStyle.Render(strings.Join(g.Skills, " · ")))
		b.WriteString("\n\n")
	}
	return b.String()
}

func educationView(c *content.Content) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Education"))
	b.WriteString("\n")
	for _, e := range c.Education {
		b.WriteString(subheadStyle.Render(e.School))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s\n%s", e.Degree, dimStyle.Render(e.Date)))
		if e.Grade != "" {
			b.WriteString("  Grade: " + e.Grade)
		}
		b.WriteString("\n")
		if e.Desc != "" {
			b.WriteString(e.Desc + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// projectMarkdown is the modal body for a project.
func projectMarkdown(p content.Project) string {
	var b strings.Builder
	if p.Date != "" {
		fmt.Fprintf(&b, "*%s*\n\n", p.Date)
	}
	if d := strings.TrimSpace(p.Details); d != "" {
		b.WriteString(d)
	} else {
		b.WriteString(p.Description)
	}
	b.WriteString("\n\n")
	if len(p.Tags) > 0 {
		tags := make([]string, len(p.Tags))
		for i, t := range p.Tags {
			tags[i] = "`" + t + "`"
		}
		b.WriteString(strings.Join(tags, " ") + "\n\n")
	}
	if p.GitHub != "" {
		fmt.Fprintf(&b, "- Code: %s\n", p.GitHub)
	}
	if p.Webapp != "" {
		fmt.Fprintf(&b, "- Live: %s\n", p.Webapp)
	}
	return b.String()
}

// messageMarkdown is the modal body for a contact message.
func messageMarkdown(m model.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**From:** %s <%s>\n\n", m.Name, m.Email)
	if m.Phone != "" {
		fmt.Fprintf(&b, "**Phone:** %s\n\n", m.Phone)
	}
	if m.Subject != "" {
		fmt.Fprintf(&b, "**Subject:** %s\n\n", m.Subject)
	}
	fmt.Fprintf(&b, "**Status:** %s\n\n---\n\n%s\n", m.Status.Label(), m.Message)
	return b.String()
}

func appFooter(admin bool) string {
	keys := "ctrl+n/ctrl+p: section  1-5: jump  m: menu  q: quit"
	if admin {
		keys = "ctrl+n/ctrl+p: section  1-6: jump  m: menu  q: quit"
	}
	return footerStyle.Render(keys)
}
