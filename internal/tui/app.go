package tui

import (
	"context"
	"strings"

	"folioterm/internal/contact"
	"folioterm/internal/content"
	"folioterm/internal/review"
	"folioterm/internal/transient"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Config wires the shell to its data and services.
type Config struct {
	Content     *content.Content
	ContentPath string // watched for changes when Watch is set
	Watch       bool

	Submitter contact.Submitter
	Reviewer  review.Service // used only when Admin is set
	Admin     bool

	NavBreakpoint int
	MarkdownStyle string // glamour style; "dark" when empty

	Context     context.Context
	Logger      *zap.Logger
	SlotOptions []transient.Option
}

type AppModel struct {
	// Core state
	content *content.Content
	admin   bool
	Err     error
	log     *zap.Logger
	ctx     context.Context
	status  transient.Slot

	watchPath string

	// Sub-models
	navbar  Navbar
	gallery Gallery
	contact contact.Model
	review  review.Model
	modal   Modal
	body    viewport.Model

	// Layout
	width, height int

	// Program reference for sending messages from goroutines
	program *tea.Program
}

// SetProgram stores a reference to the tea.Program so the content watcher can
// send reloads back to the Update loop.
func (m *AppModel) SetProgram(p *tea.Program) {
	m.program = p
}

func NewAppModel(cfg Config) AppModel {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	style := cfg.MarkdownStyle
	if style == "" {
		style = "dark"
	}
	breakpoint := cfg.NavBreakpoint
	if breakpoint <= 0 {
		breakpoint = 80
	}

	m := AppModel{
		content: cfg.Content,
		admin:   cfg.Admin,
		log:     log,
		ctx:     ctx,
		status:  transient.New(cfg.SlotOptions...),
		navbar:  NewNavbar(cfg.Content.Name, cfg.Admin, breakpoint),
		gallery: NewGallery(cfg.Content),
		contact: contact.New(cfg.Submitter,
			contact.WithLogger(log.Named("contact")),
			contact.WithContext(ctx),
			contact.WithSlotOptions(cfg.SlotOptions...),
		),
		modal: NewModal(style),
		body:  viewport.New(0, 0),
	}
	if cfg.Watch {
		m.watchPath = cfg.ContentPath
	}
	if cfg.Admin {
		m.review = review.New(cfg.Reviewer,
			review.WithLogger(log.Named("review")),
			review.WithContext(ctx),
			review.WithSlotOptions(cfg.SlotOptions...),
		)
	}
	m.refreshBody()
	return m
}

func (m *AppModel) Init() tea.Cmd {
	if m.watchPath == "" {
		return nil
	}
	path, ctx := m.watchPath, m.ctx
	return func() tea.Msg {
		go func() {
			err := content.Watch(ctx, path, func(c *content.Content, err error) {
				if m.program != nil {
					m.program.Send(contentReloadedMsg{content: c, err: err})
				}
			})
			if err != nil {
				m.log.Warn("content watch stopped", zap.Error(err))
			}
		}()
		return nil
	}
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case openProjectMsg:
		m.modal.Open(msg.project.Title, projectMarkdown(msg.project))
		return m, nil

	case review.OpenMessageMsg:
		m.modal.Open("Message from "+msg.Message.Name, messageMarkdown(msg.Message))
		return m, nil

	case contentReloadedMsg:
		if msg.err != nil {
			m.log.Warn("content reload failed", zap.Error(msg.err))
			return m, m.status.Set("Content reload failed: "+msg.err.Error(), false)
		}
		m.content = msg.content
		m.gallery.SetContent(msg.content)
		m.navbar.brand = msg.content.Name
		m.refreshBody()
		m.log.Info("content reloaded", zap.Int("projects", len(msg.content.Projects)))
		return m, m.status.Set("Content reloaded", true)

	case transient.ClearMsg:
		m.status.Update(msg)
	}

	// Results and timers carry their owner's id, so both workflows can see
	// every message.
	cmds := []tea.Cmd{m.contact.Update(msg)}
	if m.admin {
		cmds = append(cmds, m.review.Update(msg))
	}
	return m, tea.Batch(cmds...)
}

func (m *AppModel) resize(w, h int) {
	m.width, m.height = w, h
	m.navbar.SetWidth(w)
	m.gallery.SetWidth(w)
	m.contact.SetWidth(w)
	m.modal.SetSize(w, h)
	if m.admin {
		m.review.SetSize(w, m.contentHeight())
	}
	m.body.Width = w
	m.body.Height = m.contentHeight()
}

// contentHeight is what is left under the navbar and above the footer.
func (m *AppModel) contentHeight() int {
	h := m.height - m.navbar.Height() - 3
	if h < 1 {
		h = 1
	}
	return h
}

// typing reports whether printable keys belong to the contact form.
func (m *AppModel) typing() bool {
	return m.navbar.Active() == sectionContact && m.contact.Typing()
}

func (m *AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global keys
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	}

	if m.modal.IsOpen() {
		return m, m.modal.Update(msg)
	}

	switch key {
	case "ctrl+n":
		return m, m.step(1)
	case "ctrl+p":
		return m, m.step(-1)
	case "ctrl+o":
		m.toggleMenu()
		return m, nil
	}

	if !m.typing() {
		switch key {
		case "q":
			return m, tea.Quit
		case "m":
			m.toggleMenu()
			return m, nil
		case "esc":
			if m.navbar.MenuOpen() {
				m.toggleMenu()
				return m, nil
			}
		case "1", "2", "3", "4", "5", "6":
			return m, m.selectSection(section(key[0] - '1'))
		}
	}

	switch m.navbar.Active() {
	case sectionProjects:
		return m, m.gallery.Update(msg)
	case sectionContact:
		return m, m.contact.Update(msg)
	case sectionMessages:
		return m, m.review.Update(msg)
	}
	var cmd tea.Cmd
	m.body, cmd = m.body.Update(msg)
	return m, cmd
}

func (m *AppModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress {
		return nil
	}
	if msg.Button != tea.MouseButtonLeft {
		if m.modal.IsOpen() {
			return m.modal.Update(msg)
		}
		var cmd tea.Cmd
		m.body, cmd = m.body.Update(msg)
		return cmd
	}

	if m.modal.IsOpen() {
		m.modal.Click(msg.X, msg.Y)
		return nil
	}

	before, wasOpen := m.navbar.Active(), m.navbar.MenuOpen()
	if m.navbar.Click(msg.X, msg.Y) {
		if m.navbar.MenuOpen() != wasOpen {
			m.resize(m.width, m.height)
		}
		if after := m.navbar.Active(); after != before {
			return m.enter(before, after)
		}
		return nil
	}
	if wasOpen {
		m.toggleMenu()
	}
	return nil
}

func (m *AppModel) toggleMenu() {
	m.navbar.ToggleMenu()
	m.resize(m.width, m.height)
}

func (m *AppModel) step(delta int) tea.Cmd {
	before := m.navbar.Active()
	m.navbar.Step(delta)
	m.resize(m.width, m.height)
	return m.enter(before, m.navbar.Active())
}

func (m *AppModel) selectSection(s section) tea.Cmd {
	before := m.navbar.Active()
	if !m.navbar.Select(s) {
		return nil
	}
	m.resize(m.width, m.height)
	return m.enter(before, s)
}

// enter runs the side effects of moving between sections. The message table
// reloads every time it is shown.
func (m *AppModel) enter(from, to section) tea.Cmd {
	if from == sectionContact && to != sectionContact {
		m.contact.Blur()
	}
	m.refreshBody()
	switch to {
	case sectionContact:
		return m.contact.Focus()
	case sectionMessages:
		if m.admin {
			return m.review.Init()
		}
	}
	return nil
}

func (m *AppModel) refreshBody() {
	var s string
	switch m.navbar.Active() {
	case sectionAbout:
		s = aboutView(m.content)
	case sectionSkills:
		s = skillsView(m.content)
	case sectionEducation:
		s = educationView(m.content)
	default:
		return
	}
	m.body.SetContent(s)
	m.body.GotoTop()
}

// View renders the navbar, the active section and the footer, or the modal
// when one is open.
func (m *AppModel) View() string {
	if m.modal.IsOpen() {
		return m.modal.View()
	}

	var b strings.Builder
	b.WriteString(m.navbar.View())
	b.WriteString("\n\n")

	switch m.navbar.Active() {
	case sectionProjects:
		b.WriteString(m.gallery.View())
	case sectionContact:
		b.WriteString(m.contact.View())
	case sectionMessages:
		b.WriteString(m.review.View())
	default:
		b.WriteString(m.body.View())
	}

	b.WriteString("\n")
	b.WriteString(appFooter(m.admin))
	if m.status.Active() {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status.Text()))
	}
	return b.String()
}

// Section is the name of the active section.
func (m *AppModel) Section() string { return m.navbar.Active().String() }
