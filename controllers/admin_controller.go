package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/jaypeewhat/ThriftStore/pkg/resp"
	"github.com/jaypeewhat/ThriftStore/services"
)

type AdminController struct{ auth *services.AuthService }

func NewAdminController(auth *services.AuthService) *AdminController {
	return &AdminController{auth: auth}
}

// GET /admin/users?role=
func (a *AdminController) ListUsers(c *gin.Context) {
	users, err := a.auth.ListUsers(c.Request.Context(), c.Query("role"))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, users)
}

type suspendReq struct {
	Suspended *bool `json:"suspended" binding:"required"`
}

// PATCH /admin/users/:id/suspend
func (a *AdminController) Suspend(c *gin.Context) {
	var req suspendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequestWithValidation(c, err)
		return
	}
	p, err := a.auth.SetSuspended(c.Request.Context(), c.Param("id"), *req.Suspended)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, p)
}
