package handler

import (
	"net/http"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/middleware"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/repository"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/service"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/workflow"
	"github.com/dotuanbn/ANHUYHOADON-sub000/pkg/pagination"
	"github.com/dotuanbn/ANHUYHOADON-sub000/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransitionRequest asks the workflow engine to move an order to a target
// status. The optional fields ride along as a caller patch.
type TransitionRequest struct {
	Status         string   `json:"status" binding:"required"`
	Paid           *float64 `json:"paid" binding:"omitempty,gte=0"`
	TrackingNumber *string  `json:"tracking_number"`
	Note           string   `json:"note"`
}

// TransitionOption is one edge available from the order's current status.
type TransitionOption struct {
	Status     string `json:"status"`
	Label      string `json:"label"`
	ColorClass string `json:"color_class"`
}

type OrderHandler struct {
	orderService service.OrderService
	engine       *workflow.Engine
}

func NewOrderHandler(orderService service.OrderService, engine *workflow.Engine) *OrderHandler {
	return &OrderHandler{orderService: orderService, engine: engine}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleManager, model.RoleStaff)
	orders := router.Group("/api/orders")
	{
		orders.GET("", staff, h.ListOrders)
		orders.POST("", staff, h.CreateOrder)
		orders.GET("/:id", staff, h.GetOrder)
		orders.PUT("/:id", staff, h.UpdateOrder)
		orders.DELETE("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.DeleteOrder)
		orders.POST("/:id/status", staff, h.TransitionStatus)
		orders.GET("/:id/transitions", staff, h.ListTransitions)
		orders.GET("/:id/health", staff, h.GetHealth)
		orders.POST("/:id/notes", staff, h.AddNote)
		orders.POST("/:id/print", staff, h.PrintOrder)
	}
}

// ListOrders returns paginated orders with optional status/customer/search filter
// @Summary      List orders
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        page         query     int     false  "Page number (default: 1)"
// @Param        limit        query     int     false  "Items per page (default: 20)"
// @Param        status       query     string  false  "Filter by status"
// @Param        customer_id  query     string  false  "Filter by customer"
// @Param        search       query     string  false  "Search by order number, recipient name or phone"
// @Success      200  {object}  response.Response
// @Router       /api/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.OrderFilter{
		Status:     c.Query("status"),
		CustomerID: c.Query("customer_id"),
		Search:     c.Query("search"),
		Page:       params.Page,
		Limit:      params.Limit,
	}

	orders, total, err := h.orderService.GetOrders(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, orders, params.Page, params.Limit, total))
}

// CreateOrder creates a new order
// @Summary      Create order
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateOrderRequest  true  "Order payload"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req, middleware.ActorID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// GetOrder returns one order with items, notes and customer
// @Summary      Get order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UpdateOrder applies a field-level patch to an order. Status cannot be
// changed here; use the status endpoint.
// @Summary      Update order
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                       true  "Order ID"
// @Param        payload  body  service.UpdateOrderRequest   true  "Update payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), c.Param("id"), req, middleware.ActorID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// DeleteOrder deletes an order (soft delete)
// @Summary      Delete order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/orders/{id} [delete]
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.orderService.DeleteOrder(c.Request.Context(), c.Param("id"), middleware.ActorID(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Order deleted successfully"}))
}

// TransitionStatus moves an order to a new status through the workflow engine.
// Workflow rejections come back as 422 with a machine-readable code, not as
// server errors.
// @Summary      Change order status
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string              true  "Order ID"
// @Param        payload  body  TransitionRequest   true  "Target status and optional fields"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /api/orders/{id}/status [post]
func (h *OrderHandler) TransitionStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid order id"))
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	target := model.OrderStatus(req.Status)
	if !target.Valid() {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "unknown status: "+req.Status))
		return
	}

	var extra *model.OrderPatch
	if req.Paid != nil || req.TrackingNumber != nil || req.Note != "" {
		extra = &model.OrderPatch{
			Paid:           req.Paid,
			TrackingNumber: req.TrackingNumber,
		}
		if req.Note != "" {
			extra.AppendNotes = []model.OrderNote{{
				Type:      model.NoteTypeInternal,
				Content:   req.Note,
				CreatedBy: middleware.ActorID(c),
			}}
		}
	}

	result, err := h.engine.TransitionStatus(c.Request.Context(), orderID, target, extra, middleware.ActorID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	if !result.Success {
		status := http.StatusUnprocessableEntity
		if result.Code == workflow.CodeNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, response.Error(status, result.Message))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListTransitions returns the statuses reachable from the order's current
// status, guard conditions included.
// @Summary      List available transitions
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id}/transitions [get]
func (h *OrderHandler) ListTransitions(c *gin.Context) {
	order, err := h.orderService.GetOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	options := make([]TransitionOption, 0)
	for _, t := range workflow.AvailableTransitions(order) {
		options = append(options, TransitionOption{
			Status:     string(t.To),
			Label:      t.Label,
			ColorClass: workflow.ColorClass(t.To),
		})
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"current":     order.Status,
		"transitions": options,
	}))
}

// GetHealth returns the advisor's health report for an order
// @Summary      Get order health report
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/orders/{id}/health [get]
func (h *OrderHandler) GetHealth(c *gin.Context) {
	order, err := h.orderService.GetOrderByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	report := workflow.CalculateHealth(order)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"score":       report.Score,
		"issues":      report.Issues,
		"suggestions": report.Suggestions,
		"next_action": workflow.SuggestNextAction(order),
		"can_cancel":  workflow.CanCancel(order),
	}))
}

// AddNote appends a note to an order
// @Summary      Add order note
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string                  true  "Order ID"
// @Param        payload  body  service.AddNoteRequest  true  "Note payload"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/orders/{id}/notes [post]
func (h *OrderHandler) AddNote(c *gin.Context) {
	var req service.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.AddNote(c.Request.Context(), c.Param("id"), req, middleware.ActorID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// PrintOrder registers a print of the order and returns the new counter
// @Summary      Register order print
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/orders/{id}/print [post]
func (h *OrderHandler) PrintOrder(c *gin.Context) {
	count, err := h.orderService.PrintOrder(c.Request.Context(), c.Param("id"), middleware.ActorID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"print_count": count}))
}
