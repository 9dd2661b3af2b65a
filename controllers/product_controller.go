package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/jaypeewhat/ThriftStore/pkg/resp"
	"github.com/jaypeewhat/ThriftStore/services"
	"github.com/jaypeewhat/ThriftStore/utils"
)

type ProductController struct{ products *services.ProductService }

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// GET /products/:id
func (pc *ProductController) Detail(c *gin.Context) {
	p, err := pc.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, p)
}

// GET /seller/products
func (pc *ProductController) Mine(c *gin.Context) {
	list, err := pc.products.ListBySeller(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, list)
}

// POST /seller/products
func (pc *ProductController) Create(c *gin.Context) {
	var req services.CreateProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequestWithValidation(c, err)
		return
	}
	p, err := pc.products.Create(c.Request.Context(), utils.CurrentUserID(c), req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, p)
}
