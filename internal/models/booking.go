package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking 洗护预约表
type Booking struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // 主键
	BookingNo      string         `gorm:"uniqueIndex;not null" json:"booking_no"`                       // 预约编号
	UserID         uint           `gorm:"index;not null" json:"user_id"`                                // 用户ID
	AddressID      uint           `gorm:"index;not null" json:"address_id"`                             // 取送地址ID
	Status         string         `gorm:"index;not null" json:"status"`                                 // 预约状态
	Currency       string         `gorm:"not null" json:"currency"`                                     // 币种
	Subtotal       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`        // 原始金额
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 实付金额
	DiscountSource string         `gorm:"type:varchar(20)" json:"discount_source,omitempty"`            // 折扣来源（coupon/referral）
	CouponID       *uint          `gorm:"index" json:"coupon_id,omitempty"`                             // 优惠券ID
	ReferralCode   string         `gorm:"type:varchar(32);index" json:"referral_code,omitempty"`        // 使用的推荐码
	PickupSlot     string         `gorm:"type:varchar(40)" json:"pickup_slot"`                          // 上门取件时段
	PickupAt       *time.Time     `gorm:"index" json:"pickup_at,omitempty"`                             // 实际取件时间
	DeliveredAt    *time.Time     `gorm:"index" json:"delivered_at,omitempty"`                          // 送回时间
	CanceledAt     *time.Time     `gorm:"index" json:"canceled_at,omitempty"`                           // 取消时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	Items   []BookingItem `gorm:"foreignKey:BookingID" json:"items,omitempty"`  // 预约服务项
	Address *Address      `gorm:"foreignKey:AddressID" json:"address,omitempty"` // 取送地址
}

// TableName 指定表名
func (Booking) TableName() string {
	return "bookings"
}
