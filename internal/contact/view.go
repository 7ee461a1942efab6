package contact

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	descStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2)
	fieldStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241"))
	focusedFieldStyle = fieldStyle.BorderForeground(lipgloss.Color("135"))
	buttonStyle       = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("255")).
				Background(lipgloss.Color("93")).
				Padding(0, 2)
	focusedButtonStyle  = buttonStyle.Background(lipgloss.Color("165"))
	disabledButtonStyle = buttonStyle.Foreground(lipgloss.Color("247")).Background(lipgloss.Color("239"))
	errorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func formWidth(w int) int {
	if w <= 0 || w > 64 {
		return 64
	}
	if w < 24 {
		return 24
	}
	return w - 4
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Contact"))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("Feel free to reach out to me for any questions or opportunities!"))
	b.WriteString("\n\n")

	var form strings.Builder
	form.WriteString(titleStyle.Render("Enter Details!"))
	form.WriteString("\n")
	for i := range m.inputs {
		style := fieldStyle
		if m.focus == i {
			style = focusedFieldStyle
		}
		form.WriteString(style.Render(m.inputs[i].View()))
		form.WriteString("\n")
	}
	style := fieldStyle
	if m.focus == focusMessage {
		style = focusedFieldStyle
	}
	form.WriteString(style.Render(m.message.View()))
	form.WriteString("\n")

	if m.validation.Active() {
		form.WriteString(errorStyle.Render(m.validation.Text()))
		form.WriteString("\n")
	}

	form.WriteString(m.buttonView())

	if m.submission.Active() {
		form.WriteString("\n")
		if m.submission.OK() {
			form.WriteString(successStyle.Render(m.submission.Text()))
		} else {
			form.WriteString(errorStyle.Render(m.submission.Text()))
		}
	}

	b.WriteString(cardStyle.Width(formWidth(m.width)).Render(form.String()))
	b.WriteString("\n")
	b.WriteString(descStyle.Render("tab: next field  ctrl+s: send  enter on Send: send"))
	return b.String()
}

func (m *Model) buttonView() string {
	switch {
	case m.submitting:
		return disabledButtonStyle.Render("Submitting...")
	case m.focus == focusSend:
		return focusedButtonStyle.Render("Send")
	default:
		return buttonStyle.Render("Send")
	}
}
