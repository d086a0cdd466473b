package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vietour/admin-gateway/internal/core/domain"
	"github.com/vietour/admin-gateway/internal/core/ports"
)

// AuditHandler serves the login audit trail. Admin-only (enforced by the
// RBAC middleware on the route).
type AuditHandler struct {
	repo ports.AuditRepository
}

func NewAuditHandler(repo ports.AuditRepository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

type auditResponse struct {
	Events []domain.AuditEvent `json:"events"`
}

// Logins lists recent authentication events, newest first.
//
// @Summary      Login audit trail
// @Tags         audit
// @Produce      json
// @Param        limit  query     int  false  "Maximum events to return (default 100, cap 500)"
// @Success      200    {object}  auditResponse
// @Failure      401    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Router       /audit/logins [get]
func (h *AuditHandler) Logins(c echo.Context) error {
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	events, err := h.repo.Recent(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	if events == nil {
		events = []domain.AuditEvent{}
	}
	return c.JSON(http.StatusOK, auditResponse{Events: events})
}
