package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vietour/admin-gateway/internal/core/domain"
	"github.com/vietour/admin-gateway/internal/core/service"
)

// NavigationHandler serves the layout chrome: side-menu tree, page title and
// the header identity block. No auth logic lives here; the route guard has
// already run.
type NavigationHandler struct {
	nav *service.NavigationService
}

func NewNavigationHandler(nav *service.NavigationService) *NavigationHandler {
	return &NavigationHandler{nav: nav}
}

type navigationResponse struct {
	Menu  []domain.MenuSection `json:"menu"`
	Title string               `json:"title"`
	User  *domain.User         `json:"user"`
}

// Navigation returns the menu visible to the current role plus the page
// title for the requested route key.
//
// @Summary      Navigation shell
// @Tags         navigation
// @Produce      json
// @Param        key  query     string  false  "Current route key, e.g. /tours"
// @Success      200  {object}  navigationResponse
// @Failure      401  {object}  map[string]string
// @Router       /navigation [get]
func (h *NavigationHandler) Navigation(c echo.Context) error {
	user, _ := c.Get("user").(*domain.User)
	role, _ := c.Get("role").(string)

	key := c.QueryParam("key")
	if key == "" {
		key = "/"
	}

	return c.JSON(http.StatusOK, navigationResponse{
		Menu:  h.nav.Menu(role),
		Title: h.nav.PageTitle(key),
		User:  user,
	})
}
