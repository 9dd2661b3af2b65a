package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jaypeewhat/ThriftStore/pkg/resp"
	"github.com/jaypeewhat/ThriftStore/services"
	"github.com/jaypeewhat/ThriftStore/utils"
)

type NotificationController struct{ notes *services.NotificationService }

func NewNotificationController(notes *services.NotificationService) *NotificationController {
	return &NotificationController{notes: notes}
}

// GET /notifications?limit=
func (nc *NotificationController) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			resp.BadRequest(c, "limit must be a positive number")
			return
		}
		limit = n
	}
	ctx := c.Request.Context()
	uid := utils.CurrentUserID(c)

	list, err := nc.notes.Recent(ctx, uid, limit)
	if err != nil {
		resp.Error(c, err)
		return
	}
	unread, err := nc.notes.UnreadCount(ctx, uid)
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"notifications": list, "unread": unread})
}

// PATCH /notifications/:id/read
func (nc *NotificationController) MarkRead(c *gin.Context) {
	if err := nc.notes.MarkRead(c.Request.Context(), utils.CurrentUserID(c), c.Param("id")); err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"id": c.Param("id")})
}

// POST /notifications/read-all
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	n, err := nc.notes.MarkAllRead(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		resp.Error(c, err)
		return
	}
	resp.OK(c, gin.H{"updated": n})
}
