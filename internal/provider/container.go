package provider

import (
	"github.com/dhobigo/internal/authz"
	"github.com/dhobigo/internal/cache"
	"github.com/dhobigo/internal/config"
	"github.com/dhobigo/internal/geocode"
	"github.com/dhobigo/internal/logger"
	"github.com/dhobigo/internal/models"
	"github.com/dhobigo/internal/queue"
	"github.com/dhobigo/internal/repository"
	"github.com/dhobigo/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo        repository.AdminRepository
	UserRepo         repository.UserRepository
	AddressRepo      repository.AddressRepository
	BookingRepo      repository.BookingRepository
	CouponRepo       repository.CouponRepository
	CouponUsageRepo  repository.CouponUsageRepository
	ReferralRepo     repository.ReferralRepository
	NotificationRepo repository.NotificationRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	UserAuthService     *service.UserAuthService
	CaptchaService      *service.CaptchaService
	CouponService       *service.CouponService
	CouponAdminService  *service.CouponAdminService
	ReferralService     *service.ReferralService
	BookingService      *service.BookingService
	AddressService      *service.AddressService
	NotificationService *service.NotificationService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.AddressRepo = repository.NewAddressRepository(db)
	c.BookingRepo = repository.NewBookingRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.CouponUsageRepo = repository.NewCouponUsageRepository(db)
	c.ReferralRepo = repository.NewReferralRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.CouponService = service.NewCouponService(c.Config.Coupon, c.CouponRepo, c.CouponUsageRepo, c.BookingRepo)
	c.CouponAdminService = service.NewCouponAdminService(c.CouponRepo)
	c.ReferralService = service.NewReferralService(c.Config.Referral, c.ReferralRepo, c.UserRepo, c.CouponRepo, c.BookingRepo, c.NotificationRepo, c.QueueClient)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo, c.ReferralService)
	c.BookingService = service.NewBookingService(c.BookingRepo, c.AddressRepo, c.CouponService, c.ReferralService, c.QueueClient)
	c.AddressService = service.NewAddressService(c.AddressRepo, geocode.NewClient(c.Config.Geocoding))
	c.NotificationService = service.NewNotificationService(c.NotificationRepo)
}
