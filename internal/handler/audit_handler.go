package handler

import (
	"net/http"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/middleware"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/repository"
	"github.com/dotuanbn/ANHUYHOADON-sub000/pkg/pagination"
	"github.com/dotuanbn/ANHUYHOADON-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditRepo repository.AuditRepository
}

func NewAuditHandler(auditRepo repository.AuditRepository) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	audit := router.Group("/api/audit-logs")
	{
		audit.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.ListAuditLogs)
	}
}

// ListAuditLogs returns paginated audit entries, newest first
// @Summary      List audit logs
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page    query  int     false  "Page number (default: 1)"
// @Param        limit   query  int     false  "Items per page (default: 20)"
// @Param        action  query  string  false  "Filter by action code"
// @Success      200  {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditRepo.List(c.Request.Context(), c.Query("action"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, logs, params.Page, params.Limit, total))
}
