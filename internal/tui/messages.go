package tui

import "folioterm/internal/content"

// Async message types for Bubble Tea commands.

type openProjectMsg struct {
	project content.Project
}

type contentReloadedMsg struct {
	content *content.Content
	err     error
}
