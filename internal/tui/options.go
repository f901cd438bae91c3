package tui

import (
	"time"

	"github.com/hylla/leadflow/internal/domain"
	"github.com/hylla/leadflow/internal/notify"
)

// BoardConfig controls optional board chrome.
type BoardConfig struct {
	ShowSidebar      bool
	SidebarCollapsed bool
	ShowAssignee     bool
	// ToastDuration of zero keeps a toast until the next one replaces it.
	ToastDuration time.Duration
}

type Option func(*Model)

func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		ShowSidebar:   true,
		ShowAssignee:  true,
		ToastDuration: 3 * time.Second,
	}
}

func WithBoardConfig(cfg BoardConfig) Option {
	return func(m *Model) {
		if cfg.ToastDuration < 0 {
			cfg.ToastDuration = 0
		}
		m.board = cfg
		m.sidebarCollapsed = cfg.SidebarCollapsed
	}
}

func WithKeyConfig(cfg KeyConfig) Option {
	return func(m *Model) {
		m.keys.applyConfig(cfg)
	}
}

// WithNotifier sets the renderer used for toast text.
func WithNotifier(r *notify.Renderer) Option {
	return func(m *Model) {
		if r != nil {
			m.notifier = r
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// WithEvents reloads the board whenever another process reports a change.
func WithEvents(events <-chan domain.LeadEvent) Option {
	return func(m *Model) {
		m.events = events
	}
}
