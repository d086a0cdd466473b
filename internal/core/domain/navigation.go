package domain

// MenuItem is one selectable entry in the side menu. Key doubles as the
// client-side route and the page-title lookup key.
type MenuItem struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// MenuSection groups related items under a collapsible heading. An empty
// Roles slice means the section is visible to every authenticated user.
type MenuSection struct {
	Key   string     `json:"key"`
	Label string     `json:"label"`
	Items []MenuItem `json:"items"`
	Roles []string   `json:"-"`
}

// VisibleTo reports whether the section should be rendered for the role.
func (s MenuSection) VisibleTo(role string) bool {
	if len(s.Roles) == 0 {
		return true
	}
	for _, r := range s.Roles {
		if r == role {
			return true
		}
	}
	return false
}
