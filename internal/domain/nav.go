package domain

// NavGroupLabel heads the sidebar menu.
const NavGroupLabel = "CRM"

// NavItem is one static sidebar entry.
type NavItem struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
	Href  string `json:"href"`
}

// NavItems returns the sidebar entries in display order.
func NavItems() []NavItem {
	return []NavItem{
		{Icon: "⌂", Label: "Dashboard", Href: "/"},
		{Icon: "☺", Label: "Leads", Href: "/leads"},
		{Icon: "✉", Label: "Messages", Href: "/messages"},
		{Icon: "▤", Label: "Reports", Href: "/reports"},
		{Icon: "⚙", Label: "Settings", Href: "/settings"},
	}
}
