package service

import (
	"github.com/vietour/admin-gateway/internal/core/domain"
)

// menu is the full side-menu tree. Sections carrying a role list are only
// rendered for those roles; the route guard enforces the same list
// server-side, so hiding here is presentation, not security.
var menu = []domain.MenuSection{
	{
		Key:   "dashboard",
		Label: "Dashboard",
		Items: []domain.MenuItem{
			{Key: "/", Label: "Overview"},
		},
	},
	{
		Key:   "user",
		Label: "Accounts",
		Roles: []string{domain.RoleAdmin},
		Items: []domain.MenuItem{
			{Key: "/user/employee", Label: "Employee accounts"},
			{Key: "/user/customer", Label: "Customer accounts"},
			{Key: "/user/create", Label: "Create account"},
		},
	},
	{
		Key:   "tour",
		Label: "Tours",
		Items: []domain.MenuItem{
			{Key: "/tours", Label: "Tour list"},
			{Key: "/category/tours", Label: "Tour categories"},
		},
	},
	{
		Key:   "destination",
		Label: "Destinations",
		Items: []domain.MenuItem{
			{Key: "/destinations", Label: "Destination list"},
			{Key: "/category/destinations", Label: "Destination categories"},
		},
	},
	{
		Key:   "audit",
		Label: "Security",
		Roles: []string{domain.RoleAdmin},
		Items: []domain.MenuItem{
			{Key: "/audit/logins", Label: "Login audit"},
		},
	},
}

// pageTitles maps route keys to the header title. Falls back to the
// dashboard title for unknown keys.
var pageTitles = map[string]string{
	"/":                      "Dashboard",
	"/user/employee":         "Employee accounts",
	"/user/customer":         "Customer accounts",
	"/user/create":           "Create account",
	"/tours":                 "Tour list",
	"/category/tours":        "Tour categories",
	"/destinations":          "Destination list",
	"/category/destinations": "Destination categories",
	"/audit/logins":          "Login audit",
}

// NavigationService projects the menu tree for a given role. It holds no
// session state; it assumes the caller has already passed the route guard.
type NavigationService struct{}

func NewNavigationService() *NavigationService {
	return &NavigationService{}
}

// Menu returns the sections visible to the role, in display order.
func (s *NavigationService) Menu(role string) []domain.MenuSection {
	out := make([]domain.MenuSection, 0, len(menu))
	for _, sec := range menu {
		if sec.VisibleTo(role) {
			out = append(out, sec)
		}
	}
	return out
}

// PageTitle returns the header title for a route key.
func (s *NavigationService) PageTitle(key string) string {
	if t, ok := pageTitles[key]; ok {
		return t
	}
	return pageTitles["/"]
}
