package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"charm.land/bubbles/v2/key"
)

// keyMap represents key map data used by this package.
type keyMap struct {
	quit          key.Binding
	reload        key.Binding
	toggleHelp    key.Binding
	moveLeft      key.Binding
	moveRight     key.Binding
	moveUp        key.Binding
	moveDown      key.Binding
	addLead       key.Binding
	leadInfo      key.Binding
	grab          key.Binding
	drop          key.Binding
	cancel        key.Binding
	moveLeadLeft  key.Binding
	moveLeadRight key.Binding
	toggleSidebar key.Binding
	copyEmail     key.Binding
}

// KeyConfig overrides selected bindings; blank values keep the defaults.
type KeyConfig struct {
	AddLead       string
	Grab          string
	ToggleSidebar string
	CopyEmail     string
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		toggleHelp:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "lead up")),
		moveDown:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "lead down")),
		addLead:       key.NewBinding(key.WithKeys("n", "a"), key.WithHelp("n", "add lead")),
		leadInfo:      key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "lead info")),
		grab:          key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "grab lead")),
		drop:          key.NewBinding(key.WithKeys("enter", " ", "space"), key.WithHelp("enter", "drop lead")),
		cancel:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		moveLeadLeft:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move lead left")),
		moveLeadRight: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move lead right")),
		toggleSidebar: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "toggle sidebar")),
		copyEmail:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy email")),
	}
}

// applyConfig applies configured key overrides. Blank entries keep the built-in bindings.
func (k *keyMap) applyConfig(cfg KeyConfig) {
	overrides := []struct {
		binding  *key.Binding
		raw      string
		fallback string
		desc     string
	}{
		{&k.addLead, cfg.AddLead, "n", "add lead"},
		{&k.grab, cfg.Grab, "space", "grab lead"},
		{&k.toggleSidebar, cfg.ToggleSidebar, "b", "toggle sidebar"},
		{&k.copyEmail, cfg.CopyEmail, "y", "copy email"},
	}
	for _, o := range overrides {
		if strings.TrimSpace(o.raw) == "" {
			continue
		}
		configureBinding(o.binding, o.raw, o.fallback, o.desc)
	}
}

// configureBinding replaces one binding's keys and help text.
func configureBinding(binding *key.Binding, raw, fallback, desc string) {
	keys, help := parseBindingKeys(raw, fallback)
	binding.SetKeys(keys...)
	binding.SetHelp(help, desc)
}

// parseBindingKeys turns one configured key into matcher keys and a help label.
func parseBindingKeys(raw, fallback string) ([]string, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = fallback
	}
	if raw == "" || strings.EqualFold(raw, "space") {
		return []string{" ", "space"}, "space"
	}
	if utf8.RuneCountInString(raw) == 1 {
		r, _ := utf8.DecodeRuneInString(raw)
		if unicode.IsUpper(r) {
			return []string{raw, "shift+" + strings.ToLower(raw)}, raw
		}
		return []string{raw}, raw
	}
	return []string{strings.ToLower(raw)}, raw
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addLead, k.leadInfo, k.grab, k.moveLeadLeft, k.moveLeadRight, k.toggleSidebar, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addLead, k.leadInfo, k.copyEmail, k.toggleSidebar, k.toggleHelp, k.reload, k.quit},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
		{k.grab, k.drop, k.cancel, k.moveLeadLeft, k.moveLeadRight},
	}
}
