package service

import (
	"time"

	"github.com/dhobigo/internal/models"
	"github.com/dhobigo/internal/repository"
)

// NotificationService 用户通知服务
type NotificationService struct {
	repo repository.NotificationRepository
}

// NewNotificationService 创建通知服务
func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List 查询用户通知列表
func (s *NotificationService) List(userID uint, page, pageSize int, unreadOnly bool) ([]models.Notification, int64, error) {
	return s.repo.List(repository.NotificationListFilter{
		Page:       page,
		PageSize:   pageSize,
		UserID:     userID,
		UnreadOnly: unreadOnly,
	})
}

// UnreadCount 查询未读数量
func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	return s.repo.CountUnread(userID)
}

// MarkRead 标记单条已读
func (s *NotificationService) MarkRead(id, userID uint) error {
	notification, err := s.repo.GetByIDAndUser(id, userID)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotFound
	}
	if notification.IsRead {
		return nil
	}
	return s.repo.MarkRead(id, userID, time.Now())
}

// MarkAllRead 标记全部已读
func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.repo.MarkAllRead(userID, time.Now())
}

// ClearAll 清空用户通知
func (s *NotificationService) ClearAll(userID uint) error {
	return s.repo.DeleteByUser(userID)
}
