package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/dhobigo/internal/config"
	"github.com/dhobigo/internal/constants"
	"github.com/dhobigo/internal/models"
	"github.com/dhobigo/internal/provider"
	"github.com/dhobigo/internal/queue"
	"github.com/dhobigo/internal/repository"
	"github.com/dhobigo/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.Booking{},
		&models.BookingItem{},
		&models.Coupon{},
		&models.CouponUsage{},
		&models.ReferralProfile{},
		&models.ReferralUsage{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	referralRepo := repository.NewReferralRepository(db)
	userRepo := repository.NewUserRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	container := &provider.Container{
		BookingRepo:      bookingRepo,
		NotificationRepo: notificationRepo,
		ReferralService: service.NewReferralService(
			config.ReferralConfig{},
			referralRepo,
			userRepo,
			couponRepo,
			bookingRepo,
			notificationRepo,
			nil,
		),
	}
	return NewConsumer(container), db
}

func TestHandleReferralBonusAward(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	referrer := models.User{Phone: "9000010001", PasswordHash: "x", Status: constants.UserStatusActive}
	if err := db.Create(&referrer).Error; err != nil {
		t.Fatalf("create referrer failed: %v", err)
	}
	profile := models.ReferralProfile{UserID: referrer.ID, ReferralCode: "0001AB2C", Status: constants.ReferralProfileStatusActive}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	usage := models.ReferralUsage{
		ReferralProfileID: profile.ID,
		BookingID:         1,
		ReferralCode:      profile.ReferralCode,
		ReferredUserID:    referrer.ID + 1,
		DiscountAmount:    models.NewMoneyFromInt(150),
	}
	if err := db.Create(&usage).Error; err != nil {
		t.Fatalf("create usage failed: %v", err)
	}

	payload, err := json.Marshal(queue.ReferralBonusAwardPayload{UsageID: usage.ID})
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	task := asynq.NewTask(queue.TaskReferralBonusAward, payload)

	if err := consumer.handleReferralBonusAward(context.Background(), task); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	// 重复投递不会二次发放
	if err := consumer.handleReferralBonusAward(context.Background(), task); err != nil {
		t.Fatalf("repeat handle failed: %v", err)
	}

	var coupons int64
	if err := db.Model(&models.Coupon{}).Where("owner_user_id = ?", referrer.ID).Count(&coupons).Error; err != nil {
		t.Fatalf("count coupons failed: %v", err)
	}
	if coupons != 1 {
		t.Fatalf("bonus coupons want 1 got %d", coupons)
	}

	// 不存在的记录静默跳过
	missing, _ := json.Marshal(queue.ReferralBonusAwardPayload{UsageID: usage.ID + 100})
	if err := consumer.handleReferralBonusAward(context.Background(), asynq.NewTask(queue.TaskReferralBonusAward, missing)); err != nil {
		t.Fatalf("missing usage should not error: %v", err)
	}
}

func TestHandleBookingStatusNotify(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	user := models.User{Phone: "9000010011", PasswordHash: "x", Status: constants.UserStatusActive}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	booking := models.Booking{
		BookingNo: "DG20260828000001",
		UserID:    user.ID,
		AddressID: 1,
		Status:    constants.BookingStatusPickedUp,
		Currency:  constants.SiteCurrencyDefault,
	}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	payload, _ := json.Marshal(queue.BookingStatusNotifyPayload{BookingID: booking.ID, Status: constants.BookingStatusPickedUp})
	task := asynq.NewTask(queue.TaskBookingStatusNotify, payload)
	if err := consumer.handleBookingStatusNotify(context.Background(), task); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	var notifications []models.Notification
	if err := db.Where("user_id = ?", user.ID).Find(&notifications).Error; err != nil {
		t.Fatalf("load notifications failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("notifications want 1 got %d", len(notifications))
	}
	if notifications[0].Type != constants.NotificationTypeBookingStatus {
		t.Fatalf("type want booking_status got %q", notifications[0].Type)
	}
	if !strings.Contains(notifications[0].Message, booking.BookingNo) {
		t.Fatalf("message want booking no, got %q", notifications[0].Message)
	}

	// 未知订单静默跳过
	missing, _ := json.Marshal(queue.BookingStatusNotifyPayload{BookingID: booking.ID + 100})
	if err := consumer.handleBookingStatusNotify(context.Background(), asynq.NewTask(queue.TaskBookingStatusNotify, missing)); err != nil {
		t.Fatalf("missing booking should not error: %v", err)
	}
}
