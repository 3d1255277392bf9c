package models

import (
	"time"

	"gorm.io/gorm"
)

// ReferralProfile 推荐人档案表
// 每个用户只有一个固定推荐码，生成后不再变化
type ReferralProfile struct {
	ID           uint           `gorm:"primarykey" json:"id"`                              // 主键
	UserID       uint           `gorm:"not null;uniqueIndex" json:"user_id"`               // 用户ID
	ReferralCode string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"` // 推荐码
	Status       string         `gorm:"type:varchar(20);not null;index" json:"status"`     // 状态
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                           // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                    // 软删除时间

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"` // 用户信息
}

// TableName 指定表名
func (ReferralProfile) TableName() string {
	return "referral_profiles"
}
