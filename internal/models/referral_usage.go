package models

import (
	"time"

	"gorm.io/gorm"
)

// ReferralUsage 推荐码使用与奖励记录表
// (referral_profile_id, booking_id) 唯一，保证同一订单不会重复发放奖励
type ReferralUsage struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                                          // 主键
	ReferralProfileID uint           `gorm:"not null;index;index:idx_referral_usage_unique,unique" json:"referral_profile_id"` // 推荐人档案ID
	BookingID         uint           `gorm:"not null;index;index:idx_referral_usage_unique,unique" json:"booking_id"`       // 被推荐订单ID
	ReferralCode      string         `gorm:"type:varchar(32);not null;index" json:"referral_code"`                          // 推荐码快照
	ReferredUserID    uint           `gorm:"not null;index" json:"referred_user_id"`                                        // 被推荐用户ID
	DiscountAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`                  // 被推荐人获得的优惠金额
	BonusCouponID     *uint          `gorm:"index" json:"bonus_coupon_id,omitempty"`                                        // 推荐人奖励券ID（发放后写入）
	BonusIssuedAt     *time.Time     `gorm:"index" json:"bonus_issued_at,omitempty"`                                        // 奖励发放时间
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                                       // 创建时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                                // 软删除时间

	ReferralProfile ReferralProfile `gorm:"foreignKey:ReferralProfileID" json:"referral_profile,omitempty"` // 推荐人档案
}

// TableName 指定表名
func (ReferralUsage) TableName() string {
	return "referral_usages"
}
