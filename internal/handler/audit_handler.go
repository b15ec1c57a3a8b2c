package handler

import (
	"net/http"

	"invoicer/internal/auth"
	"invoicer/internal/middleware"
	"invoicer/internal/service"
	"invoicer/pkg/pagination"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService  service.AuditService
	authenticator auth.Authenticator
}

func NewAuditHandler(auditService service.AuditService, authenticator auth.Authenticator) *AuditHandler {
	return &AuditHandler{auditService: auditService, authenticator: authenticator}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/audit-logs")
	group.Use(middleware.RequireAuth(h.authenticator))
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs lists the caller's own audit trail
// @Summary      Get audit logs
// @Description  Retrieves the caller's invoice and sign-in history, newest first
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        entity_id  query     string  false  "Only entries for this invoice id"
// @Param        action     query     string  false  "Only entries with this action, e.g. RECORD_PAYMENT"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Success      200        {object}  response.Response{data=pagination.Page[service.AuditLogResponse]}
// @Router       /api/v1/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	logs, total, err := h.auditService.ListAuditLogs(c.Request.Context(), owner.UserID, service.AuditFilter{
		EntityID: c.Query("entity_id"),
		Action:   c.Query("action"),
		Page:     params.Page,
		Limit:    params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, pagination.NewPage(logs, total, params)))
}
