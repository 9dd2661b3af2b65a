package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/jaypeewhat/ThriftStore/pkg/resp"
	"github.com/jaypeewhat/ThriftStore/services"
	"github.com/jaypeewhat/ThriftStore/utils"
)

// OrderController serves the buyer side of orders.
type OrderController struct{ orders *services.OrderService }

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// POST /checkout
func (oc *OrderController) Checkout(c *gin.Context) {
	var req services.CheckoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequestWithValidation(c, err)
		return
	}
	orders, err := oc.orders.Checkout(c.Request.Context(), utils.CurrentUserID(c), req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, orders)
}

// GET /buyer/orders
func (oc *OrderController) ListForMe(c *gin.Context) {
	list, err := oc.orders.ListForBuyer(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, list)
}

// GET /orders/:id
func (oc *OrderController) Detail(c *gin.Context) {
	o, err := oc.orders.Detail(c.Request.Context(), utils.CurrentUserID(c), c.Param("id"))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, o)
}

// POST /orders/:id/cancel-request
func (oc *OrderController) RequestCancel(c *gin.Context) {
	o, err := oc.orders.RequestCancellation(c.Request.Context(), utils.CurrentUserID(c), c.Param("id"))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, o)
}
