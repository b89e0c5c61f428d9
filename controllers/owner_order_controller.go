package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/konnn04/food-app-server/entity"
	"github.com/konnn04/food-app-server/pkg/resp"
	"github.com/konnn04/food-app-server/services"
	"github.com/konnn04/food-app-server/utils"
)

// OwnerOrderController serves restaurant owners and their staff.
type OwnerOrderController struct {
	Svc *services.OrderService
}

func NewOwnerOrderController(svc *services.OrderService) *OwnerOrderController {
	return &OwnerOrderController{Svc: svc}
}

// GET /staff/restaurants/:id/orders?status=&page=&limit=
func (h *OwnerOrderController) List(c *gin.Context) {
	restID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var status *entity.OrderStatus
	if s := c.Query("status"); s != "" {
		st := entity.OrderStatus(s)
		status = &st
	}
	out, err := h.Svc.ListForRestaurant(utils.CurrentPrincipal(c), restID, status,
		queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, out)
}

// GET /staff/orders/:orderId
func (h *OwnerOrderController) Detail(c *gin.Context) {
	orderID, ok := paramID(c, "orderId")
	if !ok {
		return
	}
	order, err := h.Svc.DetailForStaff(utils.CurrentPrincipal(c), orderID)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}

// ---------------- Actions ----------------

// PATCH /staff/orders/:orderId/accept
func (h *OwnerOrderController) Accept(c *gin.Context) {
	h.move(c, h.Svc.Accept)
}

// PATCH /staff/orders/:orderId/done
func (h *OwnerOrderController) Done(c *gin.Context) {
	h.move(c, h.Svc.MarkDone)
}

// PATCH /staff/orders/:orderId/complete
func (h *OwnerOrderController) Complete(c *gin.Context) {
	orderID, ok := paramID(c, "orderId")
	if !ok {
		return
	}
	out, err := h.Svc.Complete(utils.CurrentPrincipal(c), orderID)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, out)
}

// PATCH /staff/orders/:orderId/cancel
func (h *OwnerOrderController) Cancel(c *gin.Context) {
	orderID, ok := paramID(c, "orderId")
	if !ok {
		return
	}
	var req services.CancelIn
	// body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			resp.BadRequest(c, err.Error())
			return
		}
	}
	order, err := h.Svc.Cancel(utils.CurrentPrincipal(c), orderID, &req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}

// GET /cancel-reasons
func (h *OwnerOrderController) CancelReasons(c *gin.Context) {
	rows, err := h.Svc.CancelReasons()
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, rows)
}

func (h *OwnerOrderController) move(c *gin.Context, action func(*entity.Principal, uint) (*entity.Order, error)) {
	orderID, ok := paramID(c, "orderId")
	if !ok {
		return
	}
	order, err := action(utils.CurrentPrincipal(c), orderID)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, order)
}
