package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dhobigo/internal/config"
	"github.com/dhobigo/internal/constants"
	"github.com/dhobigo/internal/models"
	"github.com/dhobigo/internal/repository"

	"gorm.io/gorm"
)

func newReferralServiceForTest(t *testing.T, db *gorm.DB, cfg config.ReferralConfig) *ReferralService {
	t.Helper()
	return NewReferralService(
		cfg,
		repository.NewReferralRepository(db),
		repository.NewUserRepository(db),
		repository.NewCouponRepository(db),
		repository.NewBookingRepository(db),
		repository.NewNotificationRepository(db),
		nil,
	)
}

func createTestUser(t *testing.T, db *gorm.DB, phone string) models.User {
	t.Helper()
	user := models.User{
		Phone:        phone,
		PasswordHash: "x",
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func TestEnsureProfileStableCode(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newReferralServiceForTest(t, db, config.ReferralConfig{})
	user := createTestUser(t, db, "9876543210")

	profile, err := svc.EnsureProfile(user.ID)
	if err != nil {
		t.Fatalf("ensure profile failed: %v", err)
	}
	if !referralCodePattern.MatchString(profile.ReferralCode) {
		t.Fatalf("code shape invalid: %q", profile.ReferralCode)
	}
	if len(profile.ReferralCode) != referralCodeLength {
		t.Fatalf("code length want %d got %d", referralCodeLength, len(profile.ReferralCode))
	}
	if profile.ReferralCode[:4] != "3210" {
		t.Fatalf("code want phone tail prefix, got %q", profile.ReferralCode)
	}

	// 重复调用返回同一个码
	again, err := svc.EnsureProfile(user.ID)
	if err != nil {
		t.Fatalf("ensure profile again failed: %v", err)
	}
	if again.ReferralCode != profile.ReferralCode {
		t.Fatalf("code changed between calls: %q vs %q", profile.ReferralCode, again.ReferralCode)
	}
	if again.ID != profile.ID {
		t.Fatalf("profile duplicated: %d vs %d", profile.ID, again.ID)
	}
}

func TestValidateReferralCode(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newReferralServiceForTest(t, db, config.ReferralConfig{DiscountPercent: 50, MaxDiscount: 200})
	referrer := createTestUser(t, db, "9000000001")
	friend := createTestUser(t, db, "9000000002")

	profile, err := svc.EnsureProfile(referrer.ID)
	if err != nil {
		t.Fatalf("ensure profile failed: %v", err)
	}

	if _, err := svc.ValidateCode("##bad##", friend.ID); !errors.Is(err, ErrReferralCodeInvalid) {
		t.Fatalf("malformed code want ErrReferralCodeInvalid, got %v", err)
	}
	if _, err := svc.ValidateCode("ZZZZ9999", friend.ID); !errors.Is(err, ErrReferralCodeInvalid) {
		t.Fatalf("unknown code want ErrReferralCodeInvalid, got %v", err)
	}
	// 超过 10 字符直接拒绝
	if _, err := svc.ValidateCode("ABCDEFGHIJK", friend.ID); !errors.Is(err, ErrReferralCodeInvalid) {
		t.Fatalf("11-char code want ErrReferralCodeInvalid, got %v", err)
	}

	// 10 字符的码形态合法，存在对应档案即可使用
	longOwner := createTestUser(t, db, "9000000004")
	longProfile := models.ReferralProfile{
		UserID:       longOwner.ID,
		ReferralCode: "AB12CD34EF",
		Status:       constants.ReferralProfileStatusActive,
	}
	if err := db.Create(&longProfile).Error; err != nil {
		t.Fatalf("create 10-char profile failed: %v", err)
	}
	if _, err := svc.ValidateCode("ab12cd34ef", friend.ID); err != nil {
		t.Fatalf("10-char code should validate, got %v", err)
	}
	if _, err := svc.ValidateCode(profile.ReferralCode, referrer.ID); !errors.Is(err, ErrReferralSelfUse) {
		t.Fatalf("self use want ErrReferralSelfUse, got %v", err)
	}

	discount, err := svc.ValidateCode(profile.ReferralCode, friend.ID)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if discount.DiscountPercent != 50 {
		t.Fatalf("discount percent want 50 got %d", discount.DiscountPercent)
	}
	if !discount.FirstOrderOnly {
		t.Fatalf("expected first order only")
	}

	// 已有订单后不再可用
	createTestBooking(t, db, friend.ID, constants.BookingStatusDelivered)
	if _, err := svc.ValidateCode(profile.ReferralCode, friend.ID); !errors.Is(err, ErrReferralNotFirst) {
		t.Fatalf("repeat user want ErrReferralNotFirst, got %v", err)
	}

	// 档案停用后不可用
	if err := db.Model(&models.ReferralProfile{}).Where("id = ?", profile.ID).
		Update("status", constants.ReferralProfileStatusDisabled).Error; err != nil {
		t.Fatalf("disable profile failed: %v", err)
	}
	newFriend := createTestUser(t, db, "9000000003")
	if _, err := svc.ValidateCode(profile.ReferralCode, newFriend.ID); !errors.Is(err, ErrReferralProfileInactive) {
		t.Fatalf("disabled profile want ErrReferralProfileInactive, got %v", err)
	}
}

func TestReferralCalculateDiscount(t *testing.T) {
	svc := newReferralServiceForTest(t, openServiceTestDB(t), config.ReferralConfig{DiscountPercent: 50, MaxDiscount: 200})

	if got := svc.CalculateDiscount(models.NewMoneyFromInt(300)); got.String() != "150.00" {
		t.Fatalf("discount want 150.00 got %s", got.String())
	}
	if got := svc.CalculateDiscount(models.NewMoneyFromInt(1000)); got.String() != "200.00" {
		t.Fatalf("capped discount want 200.00 got %s", got.String())
	}
	if got := svc.CalculateDiscount(models.NewMoneyFromInt(0)); got.String() != "0.00" {
		t.Fatalf("zero subtotal discount want 0.00 got %s", got.String())
	}
}

func TestTrackUsageIdempotent(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newReferralServiceForTest(t, db, config.ReferralConfig{})
	referrer := createTestUser(t, db, "9000000011")
	friend := createTestUser(t, db, "9000000012")
	profile, err := svc.EnsureProfile(referrer.ID)
	if err != nil {
		t.Fatalf("ensure profile failed: %v", err)
	}
	booking := createTestBooking(t, db, friend.ID, constants.BookingStatusPendingPickup)

	for i := 0; i < 3; i++ {
		if err := svc.TrackUsage(profile.ReferralCode, friend.ID, booking.ID, models.NewMoneyFromInt(150)); err != nil {
			t.Fatalf("track usage %d failed: %v", i, err)
		}
	}

	var count int64
	if err := db.Model(&models.ReferralUsage{}).
		Where("referral_profile_id = ? AND booking_id = ?", profile.ID, booking.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("usage rows want 1 got %d", count)
	}
}

func TestAwardBonusIdempotent(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newReferralServiceForTest(t, db, config.ReferralConfig{BonusPercent: 50, BonusMaxDiscount: 200, BonusExpireDays: 30})
	referrer := createTestUser(t, db, "9000000021")
	friend := createTestUser(t, db, "9000000022")
	profile, err := svc.EnsureProfile(referrer.ID)
	if err != nil {
		t.Fatalf("ensure profile failed: %v", err)
	}
	booking := createTestBooking(t, db, friend.ID, constants.BookingStatusPendingPickup)
	if err := svc.TrackUsage(profile.ReferralCode, friend.ID, booking.ID, models.NewMoneyFromInt(150)); err != nil {
		t.Fatalf("track usage failed: %v", err)
	}

	var usage models.ReferralUsage
	if err := db.Where("referral_profile_id = ?", profile.ID).First(&usage).Error; err != nil {
		t.Fatalf("load usage failed: %v", err)
	}

	if err := svc.AwardBonus(usage.ID); err != nil {
		t.Fatalf("award bonus failed: %v", err)
	}
	if err := svc.AwardBonus(usage.ID); err != nil {
		t.Fatalf("award bonus repeat failed: %v", err)
	}

	var coupons []models.Coupon
	if err := db.Where("owner_user_id = ?", referrer.ID).Find(&coupons).Error; err != nil {
		t.Fatalf("load bonus coupons failed: %v", err)
	}
	if len(coupons) != 1 {
		t.Fatalf("bonus coupons want 1 got %d", len(coupons))
	}
	bonus := coupons[0]
	if bonus.Category != constants.CouponCategoryReferral {
		t.Fatalf("category want referral got %q", bonus.Category)
	}
	if !bonus.IsOneTimeUse || !bonus.IsActive {
		t.Fatalf("bonus coupon want one-time active, got %+v", bonus)
	}
	if bonus.ExpiresAt == nil {
		t.Fatalf("bonus coupon want expiry set")
	}
	if len(bonus.Code) < 4 || bonus.Code[:3] != "RFB" {
		t.Fatalf("bonus code want RFB prefix got %q", bonus.Code)
	}

	if err := db.First(&usage, usage.ID).Error; err != nil {
		t.Fatalf("reload usage failed: %v", err)
	}
	if usage.BonusCouponID == nil || *usage.BonusCouponID != bonus.ID {
		t.Fatalf("usage bonus coupon id want %d got %v", bonus.ID, usage.BonusCouponID)
	}
	if usage.BonusIssuedAt == nil {
		t.Fatalf("usage bonus issued at want set")
	}

	var notifications []models.Notification
	if err := db.Where("user_id = ?", referrer.ID).Find(&notifications).Error; err != nil {
		t.Fatalf("load notifications failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("notifications want 1 got %d", len(notifications))
	}
	if notifications[0].Type != constants.NotificationTypeReferralBonus {
		t.Fatalf("notification type want referral_bonus got %q", notifications[0].Type)
	}

	// 奖励券可被推荐人正常使用
	couponSvc := newCouponServiceForTest(t, db, config.CouponConfig{})
	createTestBooking(t, db, referrer.ID, constants.BookingStatusDelivered)
	result, err := couponSvc.Validate(context.Background(), bonus.Code, referrer.ID, models.NewMoneyFromInt(500))
	if err != nil {
		t.Fatalf("validate bonus coupon failed: %v", err)
	}
	if !result.Valid {
		t.Fatalf("bonus coupon should be usable by owner, got %q", result.Message)
	}
}

func TestReferralStats(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newReferralServiceForTest(t, db, config.ReferralConfig{ShareBaseURL: "https://dhobigo.example"})
	referrer := createTestUser(t, db, "9000000031")
	profile, err := svc.EnsureProfile(referrer.ID)
	if err != nil {
		t.Fatalf("ensure profile failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		friend := createTestUser(t, db, fmt.Sprintf("900000004%d", i))
		booking := createTestBooking(t, db, friend.ID, constants.BookingStatusPendingPickup)
		if err := svc.TrackUsage(profile.ReferralCode, friend.ID, booking.ID, models.NewMoneyFromInt(150)); err != nil {
			t.Fatalf("track usage failed: %v", err)
		}
	}

	stats, err := svc.Stats(referrer.ID)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalReferred != 2 {
		t.Fatalf("total referred want 2 got %d", stats.TotalReferred)
	}
	if stats.TotalDiscount.String() != "300.00" {
		t.Fatalf("total discount want 300.00 got %s", stats.TotalDiscount.String())
	}
	want := "https://dhobigo.example/?ref=" + profile.ReferralCode
	if stats.ShareURL != want {
		t.Fatalf("share url want %q got %q", want, stats.ShareURL)
	}
}
