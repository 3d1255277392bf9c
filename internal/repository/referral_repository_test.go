package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dhobigo/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.ReferralProfile{}, &models.ReferralUsage{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func TestCreateUsageConflictIsNoop(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewReferralRepository(db)

	first := models.ReferralUsage{
		ReferralProfileID: 7,
		BookingID:         42,
		ReferralCode:      "3210AB7K",
		ReferredUserID:    11,
		DiscountAmount:    models.NewMoneyFromInt(149),
	}
	created, err := repo.CreateUsage(&first)
	if err != nil {
		t.Fatalf("create usage failed: %v", err)
	}
	if !created {
		t.Fatalf("first insert want created=true")
	}

	duplicate := models.ReferralUsage{
		ReferralProfileID: 7,
		BookingID:         42,
		ReferralCode:      "3210AB7K",
		ReferredUserID:    11,
		DiscountAmount:    models.NewMoneyFromInt(149),
	}
	created, err = repo.CreateUsage(&duplicate)
	if err != nil {
		t.Fatalf("duplicate insert failed: %v", err)
	}
	if created {
		t.Fatalf("duplicate insert want created=false")
	}

	var count int64
	if err := db.Model(&models.ReferralUsage{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("usage rows want 1 got %d", count)
	}

	// 不同订单可以再次落库
	other := models.ReferralUsage{
		ReferralProfileID: 7,
		BookingID:         43,
		ReferralCode:      "3210AB7K",
		ReferredUserID:    12,
		DiscountAmount:    models.NewMoneyFromInt(99),
	}
	created, err = repo.CreateUsage(&other)
	if err != nil {
		t.Fatalf("second booking insert failed: %v", err)
	}
	if !created {
		t.Fatalf("second booking want created=true")
	}
}

func TestMarkBonusIssuedOnlyOnce(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewReferralRepository(db)

	usage := models.ReferralUsage{
		ReferralProfileID: 3,
		BookingID:         100,
		ReferralCode:      "AB12CD34",
		ReferredUserID:    21,
	}
	if _, err := repo.CreateUsage(&usage); err != nil {
		t.Fatalf("create usage failed: %v", err)
	}

	firstAt := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := repo.MarkBonusIssued(usage.ID, 501, firstAt); err != nil {
		t.Fatalf("mark bonus failed: %v", err)
	}

	// 已发放的记录不会被覆盖
	if err := repo.MarkBonusIssued(usage.ID, 999, time.Now()); err != nil {
		t.Fatalf("repeat mark bonus failed: %v", err)
	}

	stored, err := repo.GetUsageByID(usage.ID)
	if err != nil {
		t.Fatalf("load usage failed: %v", err)
	}
	if stored == nil || stored.BonusCouponID == nil {
		t.Fatalf("expected bonus coupon to be recorded")
	}
	if *stored.BonusCouponID != 501 {
		t.Fatalf("bonus coupon id want 501 got %d", *stored.BonusCouponID)
	}
}
