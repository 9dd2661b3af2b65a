package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/jaypeewhat/ThriftStore/pkg/resp"
	"github.com/jaypeewhat/ThriftStore/services"
	"github.com/jaypeewhat/ThriftStore/utils"
)

type ChatController struct {
	service *services.ChatService
}

func NewChatController(s *services.ChatService) *ChatController {
	return &ChatController{s}
}

// GET /orders/:id/messages
func (cc *ChatController) ListMessages(c *gin.Context) {
	msgs, err := cc.service.History(c.Request.Context(), utils.CurrentUserID(c), c.Param("id"))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, msgs)
}

type sendMessageReq struct {
	Content string `json:"content" binding:"required"`
}

// POST /orders/:id/messages
func (cc *ChatController) SendMessage(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequestWithValidation(c, err)
		return
	}
	msg, err := cc.service.Send(c.Request.Context(), utils.CurrentUserID(c), c.Param("id"), req.Content)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.Created(c, msg)
}

// POST /orders/:id/messages/read
func (cc *ChatController) MarkRead(c *gin.Context) {
	n, err := cc.service.MarkThreadRead(c.Request.Context(), utils.CurrentUserID(c), c.Param("id"))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"updated": n})
}

// GET /messages/unread-count
func (cc *ChatController) UnreadCount(c *gin.Context) {
	n, err := cc.service.UnreadCount(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"unread": n})
}
