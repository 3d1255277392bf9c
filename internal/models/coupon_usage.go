package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// CouponUsage 优惠券使用记录表
// 一次性券通过 one_time_key 唯一索引保证同一用户同一券只落库一次
type CouponUsage struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // 主键
	CouponID       uint           `gorm:"index;not null" json:"coupon_id"`                              // 优惠券ID
	CouponCode     string         `gorm:"index;not null" json:"coupon_code"`                            // 优惠码快照
	UserID         uint           `gorm:"index;not null" json:"user_id"`                                // 用户ID
	BookingID      uint           `gorm:"index;not null" json:"booking_id"`                             // 预约ID
	OneTimeKey     *string        `gorm:"type:varchar(64);uniqueIndex" json:"-"`                        // 一次性券唯一键（非一次性券为 NULL）
	OrderAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"order_amount"`    // 下单金额
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间
}

// OneTimeUsageKey 生成一次性券的唯一键
func OneTimeUsageKey(couponID, userID uint) *string {
	key := fmt.Sprintf("%d:%d", couponID, userID)
	return &key
}

// TableName 指定表名
func (CouponUsage) TableName() string {
	return "coupon_usages"
}
