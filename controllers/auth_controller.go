package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/jaypeewhat/ThriftStore/pkg/resp"
	"github.com/jaypeewhat/ThriftStore/services"
	"github.com/jaypeewhat/ThriftStore/utils"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct{ auth *services.AuthService }

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// POST /auth/register
func (a *AuthController) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequestWithValidation(c, err)
		return
	}
	p, err := a.auth.Register(c.Request.Context(), req)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, p)
}

// POST /auth/login
func (a *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequestWithValidation(c, err)
		return
	}
	token, p, err := a.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"token": token, "user": p})
}

// GET /auth/me
func (a *AuthController) Me(c *gin.Context) {
	p, err := a.auth.Me(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, p)
}
