package models

import (
	"time"

	"gorm.io/gorm"
)

// BookingItem 预约服务项表
type BookingItem struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                      // 主键
	BookingID   uint           `gorm:"index;not null" json:"booking_id"`                          // 预约ID
	ServiceType string         `gorm:"type:varchar(20);not null" json:"service_type"`             // 服务类型
	Quantity    int            `gorm:"not null" json:"quantity"`                                  // 件数/公斤数
	UnitPrice   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`   // 单价
	TotalPrice  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`  // 小计
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (BookingItem) TableName() string {
	return "booking_items"
}
