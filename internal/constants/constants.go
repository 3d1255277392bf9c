package constants

// 预约状态常量
const (
	BookingStatusPendingPickup  = "pending_pickup"
	BookingStatusPickedUp       = "picked_up"
	BookingStatusProcessing     = "processing"
	BookingStatusOutForDelivery = "out_for_delivery"
	BookingStatusDelivered      = "delivered"
	BookingStatusCanceled       = "canceled"
)

// 洗护服务类型常量
const (
	ServiceTypeWashFold = "wash_fold"
	ServiceTypeWashIron = "wash_iron"
	ServiceTypeIronOnly = "iron_only"
	ServiceTypeDryClean = "dry_clean"
)

// 优惠券分类常量
const (
	CouponCategoryGeneral    = "general"
	CouponCategoryReferral   = "referral"
	CouponCategoryFirstOrder = "first_order"
	CouponCategoryRegular    = "regular"
)

// 折扣来源常量
const (
	DiscountSourceCoupon   = "coupon"
	DiscountSourceReferral = "referral"
)

// 优惠券校验来源常量
const (
	ValidationSourceRemote = "remote"
	ValidationSourceLocal  = "local"
)

// 推荐人档案状态常量
const (
	ReferralProfileStatusActive   = "active"
	ReferralProfileStatusDisabled = "disabled"
)

// 通知类型常量
const (
	NotificationTypeReferralBonus = "referral_bonus"
	NotificationTypeBookingStatus = "booking_status"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 异步任务类型常量
const (
	TaskReferralBonusAward  = "referral:award_bonus"
	TaskBookingStatusNotify = "booking:status_notify"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 站点货币常量
const (
	SiteCurrencyDefault = "INR"
	CurrencySymbol      = "₹"
)

// 验证码常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
	CaptchaSceneLogin    = "login"
)
