package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dhobigo/internal/config"
	"github.com/dhobigo/internal/constants"
	"github.com/dhobigo/internal/models"
	"github.com/dhobigo/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Admin{},
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
	return db
}

func newCouponServiceForTest(t *testing.T, db *gorm.DB, cfg config.CouponConfig) *CouponService {
	t.Helper()
	return NewCouponService(
		cfg,
		repository.NewCouponRepository(db),
		repository.NewCouponUsageRepository(db),
		repository.NewBookingRepository(db),
	)
}

func createTestCoupon(t *testing.T, db *gorm.DB, coupon models.Coupon) models.Coupon {
	t.Helper()
	if coupon.Category == "" {
		coupon.Category = constants.CouponCategoryGeneral
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	return coupon
}

func createTestBooking(t *testing.T, db *gorm.DB, userID uint, status string) models.Booking {
	t.Helper()
	booking := models.Booking{
		BookingNo: fmt.Sprintf("DG-TEST-%d-%d", userID, time.Now().UnixNano()),
		UserID:    userID,
		AddressID: 1,
		Status:    status,
		Currency:  constants.SiteCurrencyDefault,
	}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	return booking
}

func TestValidateUnknownCode(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCouponServiceForTest(t, db, config.CouponConfig{})

	result, err := svc.Validate(context.Background(), "nosuch", 1, models.NewMoneyFromInt(500))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if result.Valid {
		t.Fatalf("expected invalid result")
	}
	if result.Message != "Invalid coupon code: NOSUCH" {
		t.Fatalf("message want %q got %q", "Invalid coupon code: NOSUCH", result.Message)
	}
	if !errors.Is(result.Reason, ErrCouponNotFound) {
		t.Fatalf("reason want ErrCouponNotFound, got %v", result.Reason)
	}
	if result.Source != constants.ValidationSourceLocal {
		t.Fatalf("source want local got %q", result.Source)
	}
}

func TestValidateRuleOrder(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCouponServiceForTest(t, db, config.CouponConfig{})

	expired := time.Now().Add(-time.Hour)
	createTestCoupon(t, db, models.Coupon{
		Code:            "DEAD20",
		DiscountPercent: models.NewMoneyFromInt(20),
		IsActive:        false,
		ExpiresAt:       &expired,
	})

	// 停用优先于过期
	result, err := svc.Validate(context.Background(), "DEAD20", 1, models.NewMoneyFromInt(500))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if result.Message != "This coupon is no longer active" {
		t.Fatalf("message want inactive got %q", result.Message)
	}
	if !errors.Is(result.Reason, ErrCouponInactive) {
		t.Fatalf("reason want ErrCouponInactive, got %v", result.Reason)
	}

	if err := db.Model(&models.Coupon{}).Where("code = ?", "DEAD20").Update("is_active", true).Error; err != nil {
		t.Fatalf("activate coupon failed: %v", err)
	}
	result, err = svc.Validate(context.Background(), "DEAD20", 1, models.NewMoneyFromInt(500))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if result.Message != "This coupon has expired" {
		t.Fatalf("message want expired got %q", result.Message)
	}
	if !errors.Is(result.Reason, ErrCouponExpired) {
		t.Fatalf("reason want ErrCouponExpired, got %v", result.Reason)
	}
}

func TestValidateOneTimeUse(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCouponServiceForTest(t, db, config.CouponConfig{})
	coupon := createTestCoupon(t, db, models.Coupon{
		Code:            "ONCE10",
		DiscountPercent: models.NewMoneyFromInt(10),
		IsOneTimeUse:    true,
		IsActive:        true,
	})

	result, err := svc.Validate(context.Background(), "once10", 7, models.NewMoneyFromInt(400))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid before first use, got %q", result.Message)
	}

	if err := svc.MarkCouponAsUsed("ONCE10", 7, 1, models.NewMoneyFromInt(400), result.Discount); err != nil {
		t.Fatalf("mark used failed: %v", err)
	}

	result, err = svc.Validate(context.Background(), "ONCE10", 7, models.NewMoneyFromInt(400))
	if err != nil {
		t.Fatalf("validate after use failed: %v", err)
	}
	if result.Valid {
		t.Fatalf("expected reuse rejected")
	}
	if result.Message != "This coupon has already been used" {
		t.Fatalf("message want already used got %q", result.Message)
	}
	if !errors.Is(result.Reason, ErrCouponAlreadyUsed) {
		t.Fatalf("reason want ErrCouponAlreadyUsed, got %v", result.Reason)
	}

	// 其他用户不受影响
	result, err = svc.Validate(context.Background(), "ONCE10", 8, models.NewMoneyFromInt(400))
	if err != nil {
		t.Fatalf("validate other user failed: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected other user still valid, got %q", result.Message)
	}

	var stored models.Coupon
	if err := db.First(&stored, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if stored.UsedCount != 1 {
		t.Fatalf("used_count want 1 got %d", stored.UsedCount)
	}
}

func TestOneTimeCouponRecordedOnce(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCouponServiceForTest(t, db, config.CouponConfig{})
	coupon := createTestCoupon(t, db, models.Coupon{
		Code:            "ONCE50",
		DiscountPercent: models.NewMoneyFromInt(50),
		IsOneTimeUse:    true,
		IsActive:        true,
	})

	// 两单同时校验都会通过预检查
	for i := 0; i < 2; i++ {
		result, err := svc.Validate(context.Background(), "ONCE50", 5, models.NewMoneyFromInt(300))
		if err != nil {
			t.Fatalf("validate failed: %v", err)
		}
		if !result.Valid {
			t.Fatalf("expected valid before any record, got %q", result.Message)
		}
	}

	// 落库靠唯一键兜底，后写入的一单被拦下
	if err := svc.MarkCouponAsUsed("ONCE50", 5, 1, models.NewMoneyFromInt(300), models.NewMoneyFromInt(150)); err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	if err := svc.MarkCouponAsUsed("ONCE50", 5, 2, models.NewMoneyFromInt(300), models.NewMoneyFromInt(150)); !errors.Is(err, ErrCouponAlreadyUsed) {
		t.Fatalf("second record want ErrCouponAlreadyUsed, got %v", err)
	}

	var count int64
	if err := db.Model(&models.CouponUsage{}).Where("coupon_id = ? AND user_id = ?", coupon.ID, 5).Count(&count).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("usage rows want 1 got %d", count)
	}

	var stored models.Coupon
	if err := db.First(&stored, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if stored.UsedCount != 1 {
		t.Fatalf("used_count want 1 got %d", stored.UsedCount)
	}

	// 非一次性券不受唯一键限制
	multi := createTestCoupon(t, db, models.Coupon{
		Code:            "MULTI10",
		DiscountPercent: models.NewMoneyFromInt(10),
		IsActive:        true,
	})
	for bookingID := uint(10); bookingID < 12; bookingID++ {
		if err := svc.MarkCouponAsUsed("MULTI10", 5, bookingID, models.NewMoneyFromInt(100), models.NewMoneyFromInt(10)); err != nil {
			t.Fatalf("multi-use record failed: %v", err)
		}
	}
	if err := db.Model(&models.CouponUsage{}).Where("coupon_id = ?", multi.ID).Count(&count).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("multi-use rows want 2 got %d", count)
	}
}

func TestValidateFirstOrderGates(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCouponServiceForTest(t, db, config.CouponConfig{})
	createTestCoupon(t, db, models.Coupon{
		Code:            "FIRST30",
		DiscountPercent: models.NewMoneyFromInt(30),
		IsFirstOrder:    true,
		IsActive:        true,
	})
	createTestCoupon(t, db, models.Coupon{
		Code:              "SAVE20",
		DiscountPercent:   models.NewMoneyFromInt(20),
		ExcludeFirstOrder: true,
		IsActive:          true,
	})

	// 已有有效订单的用户不能用首单券
	createTestBooking(t, db, 11, constants.BookingStatusDelivered)
	result, err := svc.Validate(context.Background(), "FIRST30", 11, models.NewMoneyFromInt(600))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if result.Message != "This coupon is valid for first orders only" {
		t.Fatalf("message want first-only got %q", result.Message)
	}
	if !errors.Is(result.Reason, ErrCouponFirstOnly) {
		t.Fatalf("reason want ErrCouponFirstOnly, got %v", result.Reason)
	}

	// 首单用户不能用老客券
	result, err = svc.Validate(context.Background(), "SAVE20", 12, models.NewMoneyFromInt(600))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if result.Message != "This coupon is not valid for first orders" {
		t.Fatalf("message want not-first got %q", result.Message)
	}
	if !errors.Is(result.Reason, ErrCouponNotFirst) {
		t.Fatalf("reason want ErrCouponNotFirst, got %v", result.Reason)
	}

	// 已取消订单不算有效订单
	createTestBooking(t, db, 13, constants.BookingStatusCanceled)
	result, err = svc.Validate(context.Background(), "FIRST30", 13, models.NewMoneyFromInt(600))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected canceled booking ignored, got %q", result.Message)
	}
}

func TestValidateMinimumAmount(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCouponServiceForTest(t, db, config.CouponConfig{})
	createTestCoupon(t, db, models.Coupon{
		Code:            "BIG15",
		DiscountPercent: models.NewMoneyFromInt(15),
		MinimumAmount:   models.NewMoneyFromInt(500),
		IsActive:        true,
	})

	result, err := svc.Validate(context.Background(), "BIG15", 1, models.NewMoneyFromInt(300))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if result.Message != "Minimum order amount of ₹500 required" {
		t.Fatalf("message want min-amount got %q", result.Message)
	}
	if !errors.Is(result.Reason, ErrCouponMinAmount) {
		t.Fatalf("reason want ErrCouponMinAmount, got %v", result.Reason)
	}

	// 正好达到门槛可用
	result, err = svc.Validate(context.Background(), "BIG15", 1, models.NewMoneyFromInt(500))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected valid at threshold, got %q", result.Message)
	}
	if result.Discount.String() != "75.00" {
		t.Fatalf("discount want 75.00 got %s", result.Discount.String())
	}
}

func TestCalculateDiscount(t *testing.T) {
	cases := []struct {
		name        string
		percent     int64
		maxDiscount int64
		amount      int64
		want        string
	}{
		{name: "plain percent", percent: 10, amount: 250, want: "25.00"},
		{name: "rounded up", percent: 10, amount: 255, want: "26.00"},
		{name: "capped", percent: 30, maxDiscount: 200, amount: 1000, want: "200.00"},
		{name: "under cap", percent: 30, maxDiscount: 200, amount: 500, want: "150.00"},
		{name: "zero amount", percent: 30, amount: 0, want: "0.00"},
	}
	for _, item := range cases {
		coupon := &models.Coupon{
			DiscountPercent: models.NewMoneyFromInt(item.percent),
			MaxDiscount:     models.NewMoneyFromInt(item.maxDiscount),
		}
		got := CalculateDiscount(coupon, models.NewMoneyFromInt(item.amount))
		if got.String() != item.want {
			t.Fatalf("%s: discount want %s got %s", item.name, item.want, got.String())
		}
	}

	if got := CalculateDiscount(nil, models.NewMoneyFromInt(100)); got.String() != "0.00" {
		t.Fatalf("nil coupon discount want 0.00 got %s", got.String())
	}
}

func TestAvailableForUser(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCouponServiceForTest(t, db, config.CouponConfig{})
	createTestCoupon(t, db, models.Coupon{
		Code:            "NEW10",
		DiscountPercent: models.NewMoneyFromInt(10),
		IsActive:        true,
	})
	createTestCoupon(t, db, models.Coupon{
		Code:            "BIG15",
		DiscountPercent: models.NewMoneyFromInt(15),
		MinimumAmount:   models.NewMoneyFromInt(500),
		IsActive:        true,
	})
	ownerID := uint(21)
	createTestCoupon(t, db, models.Coupon{
		Code:            "RFBPRIVATE",
		DiscountPercent: models.NewMoneyFromInt(50),
		Category:        constants.CouponCategoryReferral,
		IsActive:        true,
		OwnerUserID:     &ownerID,
	})

	available, err := svc.AvailableForUser(21, models.NewMoneyFromInt(300))
	if err != nil {
		t.Fatalf("available failed: %v", err)
	}
	codes := make(map[string]bool, len(available))
	for _, coupon := range available {
		codes[coupon.Code] = true
	}
	if !codes["NEW10"] || !codes["RFBPRIVATE"] {
		t.Fatalf("want NEW10 and RFBPRIVATE available, got %v", codes)
	}
	if codes["BIG15"] {
		t.Fatalf("BIG15 should be filtered below minimum amount")
	}

	// 专属券对其他用户不可见也不可用
	available, err = svc.AvailableForUser(22, models.NewMoneyFromInt(300))
	if err != nil {
		t.Fatalf("available failed: %v", err)
	}
	for _, coupon := range available {
		if coupon.Code == "RFBPRIVATE" {
			t.Fatalf("private coupon leaked to another user")
		}
	}
}

func TestUsageHistory(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newCouponServiceForTest(t, db, config.CouponConfig{})
	createTestCoupon(t, db, models.Coupon{
		Code:            "NEW10",
		DiscountPercent: models.NewMoneyFromInt(10),
		IsActive:        true,
	})

	for i := 1; i <= 3; i++ {
		if err := svc.MarkCouponAsUsed("NEW10", 31, uint(i), models.NewMoneyFromInt(200), models.NewMoneyFromInt(20)); err != nil {
			t.Fatalf("mark used failed: %v", err)
		}
	}

	usages, total, err := svc.UsageHistory(31, 1, 2)
	if err != nil {
		t.Fatalf("usage history failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("total want 3 got %d", total)
	}
	if len(usages) != 2 {
		t.Fatalf("page size want 2 got %d", len(usages))
	}
	if usages[0].CouponCode != "NEW10" {
		t.Fatalf("coupon code want NEW10 got %q", usages[0].CouponCode)
	}
}
