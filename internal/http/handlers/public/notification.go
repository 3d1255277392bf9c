package public

import (
	"errors"
	"strconv"

	"github.com/dhobigo/internal/http/response"
	"github.com/dhobigo/internal/service"

	handlershared "github.com/dhobigo/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

// ListNotifications 获取当前用户通知列表
func (h *Handler) ListNotifications(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)
	unreadOnly := c.Query("unread_only") == "true"

	notifications, total, err := h.NotificationService.List(userID, page, pageSize, unreadOnly)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list notifications", err)
		return
	}
	response.SuccessWithPage(c, notifications, response.NewPagination(page, pageSize, total))
}

// UnreadNotificationCount 获取未读通知数量
func (h *Handler) UnreadNotificationCount(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	count, err := h.NotificationService.UnreadCount(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to count notifications", err)
		return
	}
	response.Success(c, gin.H{"unread": count})
}

// MarkNotificationRead 标记单条通知已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid notification id", nil)
		return
	}

	if err := h.NotificationService.MarkRead(uint(id), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "notification not found", nil)
		default:
			respondError(c, response.CodeInternal, "failed to mark notification", err)
		}
		return
	}
	response.Success(c, gin.H{"read": true})
}

// MarkAllNotificationsRead 标记全部通知已读
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	if err := h.NotificationService.MarkAllRead(userID); err != nil {
		respondError(c, response.CodeInternal, "failed to mark notifications", err)
		return
	}
	response.Success(c, gin.H{"read": true})
}

// ClearNotifications 清空当前用户的全部通知
func (h *Handler) ClearNotifications(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	if err := h.NotificationService.ClearAll(userID); err != nil {
		respondError(c, response.CodeInternal, "failed to clear notifications", err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
