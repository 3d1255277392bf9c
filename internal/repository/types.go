package repository

import "time"

// BookingListFilter 查询订单列表的过滤条件
type BookingListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	BookingNo   string
	ServiceType string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// CouponListFilter 查询优惠券列表的过滤条件
type CouponListFilter struct {
	Page        int
	PageSize    int
	Code        string
	Category    string
	OwnerUserID *uint
	IsActive    *bool
	CatalogOnly bool
}

// CouponUsageListFilter 查询优惠券使用记录列表的过滤条件
type CouponUsageListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	CouponID uint
}

// ReferralUsageListFilter 查询推荐使用记录列表的过滤条件
type ReferralUsageListFilter struct {
	Page              int
	PageSize          int
	ReferralProfileID uint
	ReferralCode      string
	ReferredUserID    uint
	PendingBonusOnly  bool
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	ReferredBy  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// NotificationListFilter 查询通知列表的过滤条件
type NotificationListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	Type       string
	UnreadOnly bool
}
