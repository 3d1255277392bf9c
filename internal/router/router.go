package router

import (
	"fmt"
	"strings"

	"github.com/dhobigo/internal/cache"
	"github.com/dhobigo/internal/config"
	adminhandlers "github.com/dhobigo/internal/http/handlers/admin"
	publichandlers "github.com/dhobigo/internal/http/handlers/public"
	"github.com/dhobigo/internal/logger"
	"github.com/dhobigo/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "dg"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "too many login attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/pricing", publicHandler.GetServicePricing)
			public.GET("/coupons", publicHandler.ListCouponCatalog)
			public.GET("/referral/track", publicHandler.TrackReferralVisit)
			public.POST("/referral/pending", publicHandler.StorePendingReferral)
			public.GET("/captcha/image", publicHandler.GetImageCaptcha)
		}

		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("phone")), publicHandler.UserLogin)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.GET("/me", publicHandler.GetCurrentUser)
			user.PUT("/me/profile", publicHandler.UpdateUserProfile)
			user.PUT("/me/password", publicHandler.ChangeUserPassword)

			user.GET("/addresses", publicHandler.ListAddresses)
			user.POST("/addresses", publicHandler.CreateAddress)
			user.PUT("/addresses/:id", publicHandler.UpdateAddress)
			user.DELETE("/addresses/:id", publicHandler.DeleteAddress)

			user.POST("/bookings", publicHandler.CreateBooking)
			user.POST("/bookings/preview", publicHandler.PreviewBooking)
			user.GET("/bookings", publicHandler.ListMyBookings)
			user.GET("/bookings/:id", publicHandler.GetMyBooking)
			user.POST("/bookings/:id/cancel", publicHandler.CancelMyBooking)

			user.POST("/coupons/validate", publicHandler.ValidateCoupon)
			user.GET("/coupons/available", publicHandler.AvailableCoupons)
			user.GET("/coupons/mine", publicHandler.MyCoupons)
			user.GET("/coupons/usage", publicHandler.CouponUsageHistory)

			user.GET("/referral/me", publicHandler.GetMyReferral)
			user.POST("/referral/validate", publicHandler.ValidateReferralCode)

			user.GET("/notifications", publicHandler.ListNotifications)
			user.GET("/notifications/unread-count", publicHandler.UnreadNotificationCount)
			user.POST("/notifications/:id/read", publicHandler.MarkNotificationRead)
			user.POST("/notifications/read-all", publicHandler.MarkAllNotificationsRead)
			user.DELETE("/notifications", publicHandler.ClearNotifications)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AuthService), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/me", adminHandler.GetCurrentAdmin)
				authorized.PUT("/me/password", adminHandler.ChangeAdminPassword)

				// 优惠券管理
				authorized.GET("/coupons", adminHandler.GetAdminCoupons)
				authorized.GET("/coupons/:id", adminHandler.GetAdminCoupon)
				authorized.POST("/coupons", adminHandler.CreateAdminCoupon)
				authorized.PUT("/coupons/:id", adminHandler.UpdateAdminCoupon)
				authorized.DELETE("/coupons/:id", adminHandler.DeleteAdminCoupon)

				// 推荐返利管理
				authorized.GET("/referrals/profiles", adminHandler.GetAdminReferralProfiles)
				authorized.PATCH("/referrals/profiles/:id/status", adminHandler.UpdateAdminReferralProfileStatus)
				authorized.GET("/referrals/usages", adminHandler.GetAdminReferralUsages)

				// 预约管理
				authorized.GET("/bookings", adminHandler.GetAdminBookings)
				authorized.GET("/bookings/:id", adminHandler.GetAdminBooking)
				authorized.PATCH("/bookings/:id/status", adminHandler.UpdateAdminBookingStatus)

				// 用户管理
				authorized.GET("/users", adminHandler.GetAdminUsers)
				authorized.DELETE("/users/:id/coupon-usage", adminHandler.ResetUserCouponUsage)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
