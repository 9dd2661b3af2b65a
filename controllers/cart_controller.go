package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/jaypeewhat/ThriftStore/pkg/resp"
	"github.com/jaypeewhat/ThriftStore/services"
	"github.com/jaypeewhat/ThriftStore/utils"
)

type CartController struct{ carts *services.CartService }

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

type addToCartReq struct {
	ProductID string `json:"product_id" binding:"required"`
}

// GET /cart
func (cc *CartController) Get(c *gin.Context) {
	items, err := cc.carts.List(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, items)
}

// POST /cart
func (cc *CartController) Add(c *gin.Context) {
	var req addToCartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequestWithValidation(c, err)
		return
	}
	item, err := cc.carts.Add(c.Request.Context(), utils.CurrentUserID(c), req.ProductID)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, item)
}

// DELETE /cart/:productId
func (cc *CartController) Remove(c *gin.Context) {
	if err := cc.carts.Remove(c.Request.Context(), utils.CurrentUserID(c), c.Param("productId")); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"removed": c.Param("productId")})
}
