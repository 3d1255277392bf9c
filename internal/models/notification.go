package models

import (
	"time"

	"gorm.io/gorm"
)

// Notification 用户通知表
type Notification struct {
	ID        uint           `gorm:"primarykey" json:"id"`                          // 主键
	UserID    uint           `gorm:"index;not null" json:"user_id"`                 // 用户ID
	Type      string         `gorm:"type:varchar(30);not null;index" json:"type"`   // 通知类型
	Title     string         `gorm:"type:varchar(120);not null" json:"title"`       // 标题
	Message   string         `gorm:"type:varchar(500);not null" json:"message"`     // 正文
	CouponID  *uint          `gorm:"index" json:"coupon_id,omitempty"`              // 关联优惠券ID
	BookingID *uint          `gorm:"index" json:"booking_id,omitempty"`             // 关联预约ID
	IsRead    bool           `gorm:"not null;default:false;index" json:"is_read"`   // 是否已读
	ReadAt    *time.Time     `json:"read_at,omitempty"`                             // 已读时间
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                       // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                // 软删除时间
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}
