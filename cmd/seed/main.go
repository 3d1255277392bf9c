package main

import (
	"github.com/dhobigo/internal/config"
	"github.com/dhobigo/internal/constants"
	"github.com/dhobigo/internal/logger"
	"github.com/dhobigo/internal/models"
	"github.com/dhobigo/internal/service"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 公共优惠券目录
	for _, coupon := range service.CatalogCoupons() {
		var existing models.Coupon
		if err := models.DB.Where("code = ?", coupon.Code).First(&existing).Error; err != nil {
			c := coupon
			if err := models.DB.Create(&c).Error; err != nil {
				stdLog.Printf("Failed to create coupon %s: %v", coupon.Code, err)
			} else {
				stdLog.Printf("Created coupon: %s", coupon.Code)
			}
		} else {
			stdLog.Printf("Coupon already exists: %s", coupon.Code)
		}
	}

	// 演示用户
	demoPhone := "9876543210"
	var existingUser models.User
	if err := models.DB.Where("phone = ?", demoPhone).First(&existingUser).Error; err != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte("demo123456"), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("Failed to hash demo password: %v", err)
		}
		user := models.User{
			Phone:        demoPhone,
			PasswordHash: string(hashed),
			DisplayName:  "Demo User",
			Status:       constants.UserStatusActive,
		}
		if err := models.DB.Create(&user).Error; err != nil {
			stdLog.Printf("Failed to create demo user: %v", err)
		} else {
			stdLog.Printf("Created demo user: %s", demoPhone)
			address := models.Address{
				UserID:    user.ID,
				Label:     "Home",
				Line1:     "42 MG Road",
				City:      "Bengaluru",
				State:     "Karnataka",
				Pincode:   "560001",
				IsDefault: true,
			}
			if err := models.DB.Create(&address).Error; err != nil {
				stdLog.Printf("Failed to create demo address: %v", err)
			}
		}
	} else {
		stdLog.Printf("Demo user already exists: %s", demoPhone)
	}

	stdLog.Printf("Seed completed")
}
