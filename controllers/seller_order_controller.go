package controllers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/resp"
	"github.com/jaypeewhat/ThriftStore/services"
	"github.com/jaypeewhat/ThriftStore/utils"
)

type SellerOrderController struct{ orders *services.OrderService }

func NewSellerOrderController(orders *services.OrderService) *SellerOrderController {
	return &SellerOrderController{orders: orders}
}

// GET /seller/orders?status=
func (sc *SellerOrderController) List(c *gin.Context) {
	status := entity.OrderStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		resp.BadRequest(c, "unknown status")
		return
	}
	list, err := sc.orders.ListForSeller(c.Request.Context(), utils.CurrentUserID(c), status)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, list)
}

// GET /seller/stats
func (sc *SellerOrderController) Stats(c *gin.Context) {
	st, err := sc.orders.SellerStats(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, st)
}

type updateStatusReq struct {
	Status entity.OrderStatus `json:"status" binding:"required"`
}

// PATCH /seller/orders/:id/status
func (sc *SellerOrderController) UpdateStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequestWithValidation(c, err)
		return
	}
	o, err := sc.orders.AdvanceStatus(c.Request.Context(), utils.CurrentUserID(c), c.Param("id"), req.Status)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, o)
}

type resolveReq struct {
	Approve *bool `json:"approve" binding:"required"`
}

// POST /seller/orders/:id/cancel-request/resolve
func (sc *SellerOrderController) ResolveCancel(c *gin.Context) {
	var req resolveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequestWithValidation(c, err)
		return
	}
	o, err := sc.orders.ResolveCancellation(c.Request.Context(), utils.CurrentUserID(c), c.Param("id"), *req.Approve)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, o)
}

type deliveryDateReq struct {
	// YYYY-MM-DD
	Date string `json:"delivery_date" binding:"required"`
}

// PATCH /seller/orders/:id/delivery-date
func (sc *SellerOrderController) SetDeliveryDate(c *gin.Context) {
	var req deliveryDateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequestWithValidation(c, err)
		return
	}
	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		resp.BadRequest(c, "delivery_date must be YYYY-MM-DD")
		return
	}
	o, err := sc.orders.SetDeliveryDate(c.Request.Context(), utils.CurrentUserID(c), c.Param("id"), date)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, o)
}
