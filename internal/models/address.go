package models

import (
	"time"

	"gorm.io/gorm"
)

// Address 用户取送地址表
type Address struct {
	ID        uint           `gorm:"primarykey" json:"id"`                    // 主键
	UserID    uint           `gorm:"index;not null" json:"user_id"`           // 用户ID
	Label     string         `gorm:"type:varchar(50)" json:"label"`           // 地址标签（home/work 等）
	Line1     string         `gorm:"not null" json:"line1"`                   // 门牌与街道
	Line2     string         `json:"line2,omitempty"`                         // 小区/楼栋补充
	City      string         `gorm:"index;not null" json:"city"`              // 城市
	State     string         `json:"state"`                                   // 邦/州
	Pincode   string         `gorm:"type:varchar(10);index" json:"pincode"`   // 邮编
	Latitude  *float64       `json:"latitude,omitempty"`                      // 纬度（地理编码结果）
	Longitude *float64       `json:"longitude,omitempty"`                     // 经度（地理编码结果）
	Geocoded  bool           `gorm:"not null;default:false" json:"geocoded"`  // 是否已完成地理编码
	IsDefault bool           `gorm:"not null;default:false" json:"is_default"` // 是否默认地址
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                 // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                 // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                          // 软删除时间
}

// TableName 指定表名
func (Address) TableName() string {
	return "addresses"
}
