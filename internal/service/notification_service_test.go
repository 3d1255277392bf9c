package service

import (
	"errors"
	"testing"

	"github.com/dhobigo/internal/constants"
	"github.com/dhobigo/internal/models"
	"github.com/dhobigo/internal/repository"
)

func TestNotificationMarkRead(t *testing.T) {
	db := openServiceTestDB(t)
	svc := NewNotificationService(repository.NewNotificationRepository(db))
	user := createTestUser(t, db, "9000009001")

	for i := 0; i < 3; i++ {
		notification := models.Notification{
			UserID:  user.ID,
			Type:    constants.NotificationTypeBookingStatus,
			Title:   "Booking update",
			Message: "Your order is on the way",
		}
		if err := db.Create(&notification).Error; err != nil {
			t.Fatalf("create notification failed: %v", err)
		}
	}

	count, err := svc.UnreadCount(user.ID)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("unread want 3 got %d", count)
	}

	notifications, total, err := svc.List(user.ID, 1, 10, true)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(notifications) != 3 {
		t.Fatalf("list want 3 got total=%d len=%d", total, len(notifications))
	}

	if err := svc.MarkRead(notifications[0].ID, user.ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	// 重复标记不报错
	if err := svc.MarkRead(notifications[0].ID, user.ID); err != nil {
		t.Fatalf("repeat mark read failed: %v", err)
	}
	// 他人通知不可标记
	if err := svc.MarkRead(notifications[1].ID, user.ID+1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign mark read want ErrNotFound, got %v", err)
	}

	count, err = svc.UnreadCount(user.ID)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("unread want 2 got %d", count)
	}

	if err := svc.MarkAllRead(user.ID); err != nil {
		t.Fatalf("mark all read failed: %v", err)
	}
	count, err = svc.UnreadCount(user.ID)
	if err != nil {
		t.Fatalf("unread count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("unread want 0 got %d", count)
	}
}

func TestNotificationClearAll(t *testing.T) {
	db := openServiceTestDB(t)
	svc := NewNotificationService(repository.NewNotificationRepository(db))
	user := createTestUser(t, db, "9000009002")
	other := createTestUser(t, db, "9000009003")

	for _, userID := range []uint{user.ID, user.ID, other.ID} {
		notification := models.Notification{
			UserID:  userID,
			Type:    constants.NotificationTypeBookingStatus,
			Title:   "Booking update",
			Message: "Your order is on the way",
		}
		if err := db.Create(&notification).Error; err != nil {
			t.Fatalf("create notification failed: %v", err)
		}
	}

	if err := svc.ClearAll(user.ID); err != nil {
		t.Fatalf("clear all failed: %v", err)
	}

	_, total, err := svc.List(user.ID, 1, 10, false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("cleared user want 0 notifications got %d", total)
	}

	// 不影响其他用户
	_, total, err = svc.List(other.ID, 1, 10, false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("other user want 1 notification got %d", total)
	}
}
