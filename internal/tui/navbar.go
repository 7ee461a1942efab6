package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type section int

const (
	sectionAbout section = iota
	sectionSkills
	sectionProjects
	sectionEducation
	sectionContact
	sectionMessages
)

var sectionNames = [...]string{"About", "Skills", "Projects", "Education", "Contact", "Messages"}

func (s section) String() string { return sectionNames[s] }

const menuIcon = "☰"

var (
	brandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))
	tabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252"))
	activeTabStyle = tabStyle.
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("212"))
	menuItemStyle = lipgloss.NewStyle().PaddingLeft(2)
)

// span is the half open column range [start, end) a tab occupies on row 0.
type span struct{ start, end int }

// Navbar is the section switcher. At or below the breakpoint the tab strip
// collapses into a menu icon that opens a vertical menu.
type Navbar struct {
	brand      string
	sections   []section
	active     section
	width      int
	breakpoint int
	menuOpen   bool
}

func NewNavbar(brand string, admin bool, breakpoint int) Navbar {
	sections := []section{sectionAbout, sectionSkills, sectionProjects, sectionEducation, sectionContact}
	if admin {
		sections = append(sections, sectionMessages)
	}
	return Navbar{brand: brand, sections: sections, breakpoint: breakpoint}
}

// SetWidth records the terminal width. Growing past the breakpoint closes an
// open mobile menu.
func (n *Navbar) SetWidth(w int) {
	n.width = w
	if !n.Mobile() {
		n.menuOpen = false
	}
}

func (n *Navbar) Mobile() bool    { return n.width <= n.breakpoint }
func (n *Navbar) MenuOpen() bool  { return n.menuOpen }
func (n *Navbar) Active() section { return n.active }

func (n *Navbar) ToggleMenu() {
	if n.Mobile() {
		n.menuOpen = !n.menuOpen
	}
}

func (n *Navbar) CloseMenu() { n.menuOpen = false }

// Select makes s active and closes the mobile menu. Sections not in the bar
// are ignored.
func (n *Navbar) Select(s section) bool {
	for _, have := range n.sections {
		if have == s {
			n.active = s
			n.menuOpen = false
			return true
		}
	}
	return false
}

// Step moves the active section by delta, wrapping around.
func (n *Navbar) Step(delta int) {
	i := n.index(n.active)
	k := len(n.sections)
	n.Select(n.sections[((i+delta)%k+k)%k])
}

func (n *Navbar) index(s section) int {
	for i, have := range n.sections {
		if have == s {
			return i
		}
	}
	return 0
}

// Height is the number of rows View renders.
func (n *Navbar) Height() int {
	if n.menuOpen {
		return 1 + len(n.sections)
	}
	return 1
}

func (n *Navbar) brandText() string { return brandStyle.Render(n.brand) + "  " }

func (n *Navbar) tabSpans() []span {
	x := lipgloss.Width(n.brandText())
	spans := make([]span, len(n.sections))
	for i, s := range n.sections {
		w := lipgloss.Width(tabStyle.Render(s.String()))
		spans[i] = span{x, x + w}
		x += w + 1
	}
	return spans
}

func (n *Navbar) iconSpan() span {
	w := lipgloss.Width(menuIcon)
	start := n.width - w - 1
	if start < 0 {
		start = 0
	}
	return span{start, start + w}
}

// Click handles a left click at (x, y) relative to the top of the screen. It
// reports whether the click landed on the navbar.
func (n *Navbar) Click(x, y int) bool {
	if y >= n.Height() {
		return false
	}
	if y > 0 {
		n.Select(n.sections[y-1])
		return true
	}
	if n.Mobile() {
		if sp := n.iconSpan(); x >= sp.start && x < sp.end {
			n.ToggleMenu()
		}
		return true
	}
	for i, sp := range n.tabSpans() {
		if x >= sp.start && x < sp.end {
			n.Select(n.sections[i])
			break
		}
	}
	return true
}

func (n *Navbar) View() string {
	brand := n.brandText()
	if n.Mobile() {
		gap := n.iconSpan().start - lipgloss.Width(brand)
		if gap < 1 {
			gap = 1
		}
		var b strings.Builder
		b.WriteString(brand + strings.Repeat(" ", gap) + menuIcon)
		if n.menuOpen {
			for _, s := range n.sections {
				style := menuItemStyle
				if s == n.active {
					style = style.Inherit(activeTabStyle)
				}
				b.WriteString("\n" + style.Render(s.String()))
			}
		}
		return b.String()
	}

	tabs := make([]string, len(n.sections))
	for i, s := range n.sections {
		style := tabStyle
		if s == n.active {
			style = activeTabStyle
		}
		tabs[i] = style.Render(s.String())
	}
	return brand + strings.Join(tabs, " ")
}
