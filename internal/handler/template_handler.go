package handler

import (
	"net/http"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/middleware"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/service"
	"github.com/dotuanbn/ANHUYHOADON-sub000/pkg/pagination"
	"github.com/dotuanbn/ANHUYHOADON-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

func (h *TemplateHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff)
	manager := middleware.RequireRole(model.RoleAdmin, model.RoleManager)
	templates := router.Group("/api/templates")
	{
		templates.GET("", staff, h.ListTemplates)
		templates.GET("/default", staff, h.GetDefaultTemplate)
		templates.GET("/:id", staff, h.GetTemplate)
		templates.POST("", manager, h.CreateTemplate)
		templates.PUT("/:id", manager, h.UpdateTemplate)
		templates.DELETE("/:id", manager, h.DeleteTemplate)
	}
}

// ListTemplates returns paginated print templates with optional kind filter
// @Summary      List print templates
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int     false  "Page number (default: 1)"
// @Param        limit  query     int     false  "Items per page (default: 20)"
// @Param        kind   query     string  false  "Filter by kind: INVOICE, SHIPPING_LABEL, RECEIPT"
// @Success      200  {object}  response.Response
// @Router       /api/templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	params := pagination.Parse(c)

	templates, total, err := h.templateService.GetTemplates(c.Request.Context(), c.Query("kind"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, templates, params.Page, params.Limit, total))
}

// GetDefaultTemplate returns the default template for a kind
// @Summary      Get default template
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        kind  query  string  true  "Template kind: INVOICE, SHIPPING_LABEL, RECEIPT"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/templates/default [get]
func (h *TemplateHandler) GetDefaultTemplate(c *gin.Context) {
	kind := c.Query("kind")
	if kind == "" {
		kind = model.TemplateKindInvoice
	}

	template, err := h.templateService.GetDefaultTemplate(c.Request.Context(), kind)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, template))
}

// GetTemplate returns one print template
// @Summary      Get template
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Template ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/templates/{id} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	template, err := h.templateService.GetTemplateByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, template))
}

// CreateTemplate creates a new print template
// @Summary      Create template
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateTemplateRequest  true  "Template payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req service.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(), req, middleware.ActorID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, template))
}

// UpdateTemplate updates an existing print template
// @Summary      Update template
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                         true  "Template ID"
// @Param        payload  body  service.UpdateTemplateRequest  true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	var req service.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	template, err := h.templateService.UpdateTemplate(c.Request.Context(), c.Param("id"), req, middleware.ActorID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, template))
}

// DeleteTemplate deletes a print template (soft delete)
// @Summary      Delete template
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Template ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	if err := h.templateService.DeleteTemplate(c.Request.Context(), c.Param("id"), middleware.ActorID(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Template deleted successfully"}))
}
