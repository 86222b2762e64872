package handler

import (
	"net/http"

	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/middleware"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/model"
	"github.com/dotuanbn/ANHUYHOADON-sub000/internal/service"
	"github.com/dotuanbn/ANHUYHOADON-sub000/pkg/response"

	"github.com/gin-gonic/gin"
)

type PosHandler struct {
	posService service.PosService
}

func NewPosHandler(posService service.PosService) *PosHandler {
	return &PosHandler{posService: posService}
}

func (h *PosHandler) RegisterRoutes(router *gin.RouterGroup) {
	pos := router.Group("/api/pos")
	{
		pos.POST("/sync", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.SyncOrders)
	}
}

// SyncOrders ingests a batch of POS order records
// @Summary      Sync POS orders
// @Description  Upserts orders keyed by pos_code. Unknown codes create new
// @Description  orders; known codes update them while still new. Bad records
// @Description  are skipped, never failing the batch.
// @Tags         pos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.PosSyncRequest  true  "POS order batch"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/pos/sync [post]
func (h *PosHandler) SyncOrders(c *gin.Context) {
	var req service.PosSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	summary, err := h.posService.SyncOrders(c.Request.Context(), req, middleware.ActorID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
