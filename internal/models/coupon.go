package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon 优惠券表
// OwnerUserID 为空表示全局目录券，否则为推荐奖励等专属券
type Coupon struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                          // 主键
	Code              string         `gorm:"uniqueIndex;not null" json:"code"`                              // 优惠码（统一大写存储）
	Description       string         `gorm:"type:varchar(255)" json:"description"`                          // 展示文案
	Category          string         `gorm:"type:varchar(20);not null;index" json:"category"`               // 分类（general/referral/first_order/regular）
	DiscountPercent   Money          `gorm:"type:decimal(10,2);not null" json:"discount_percent"`           // 折扣百分比
	MaxDiscount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount"`     // 最大优惠金额（0 表示不封顶）
	MinimumAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"minimum_amount"`   // 使用门槛（0 表示无门槛）
	IsFirstOrder      bool           `gorm:"not null;default:false" json:"is_first_order"`                  // 仅限首单
	ExcludeFirstOrder bool           `gorm:"not null;default:false" json:"exclude_first_order"`             // 首单不可用
	IsOneTimeUse      bool           `gorm:"not null;default:false" json:"is_one_time_use"`                 // 每人仅可用一次
	IsActive          bool           `gorm:"not null;default:true" json:"is_active"`                        // 是否启用
	OwnerUserID       *uint          `gorm:"index" json:"owner_user_id,omitempty"`                          // 专属用户ID
	UsedCount         int            `gorm:"not null;default:0" json:"used_count"`                          // 已使用次数
	ExpiresAt         *time.Time     `gorm:"index" json:"expires_at,omitempty"`                             // 失效时间
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}
