package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/dhobigo/internal/models"
	"github.com/shopspring/decimal"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReferralRepository 推荐返利数据访问接口
type ReferralRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ReferralRepository

	GetProfileByID(id uint) (*models.ReferralProfile, error)
	GetProfileByUserID(userID uint) (*models.ReferralProfile, error)
	GetProfileByCode(code string) (*models.ReferralProfile, error)
	CreateProfile(profile *models.ReferralProfile) error
	UpdateProfileStatus(id uint, status string) error
	ListProfiles(page, pageSize int, status string) ([]models.ReferralProfile, int64, error)

	CreateUsage(usage *models.ReferralUsage) (bool, error)
	GetUsageByID(id uint) (*models.ReferralUsage, error)
	GetUsageByProfileAndBooking(profileID, bookingID uint) (*models.ReferralUsage, error)
	ListUsages(filter ReferralUsageListFilter) ([]models.ReferralUsage, int64, error)
	MarkBonusIssued(usageID, couponID uint, at time.Time) error
	CountUsagesByProfile(profileID uint) (int64, error)
	SumDiscountByProfile(profileID uint) (decimal.Decimal, error)
}

// GormReferralRepository GORM 推荐返利仓储
type GormReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository 创建推荐返利仓储
func NewReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReferralRepository) WithTx(tx *gorm.DB) ReferralRepository {
	if tx == nil {
		return r
	}
	return &GormReferralRepository{db: tx}
}

// Transaction 执行事务
func (r *GormReferralRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetProfileByID 按 ID 获取推荐档案
func (r *GormReferralRepository) GetProfileByID(id uint) (*models.ReferralProfile, error) {
	if id == 0 {
		return nil, nil
	}
	var profile models.ReferralProfile
	if err := r.db.Preload("User").First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetProfileByUserID 按用户 ID 获取推荐档案
func (r *GormReferralRepository) GetProfileByUserID(userID uint) (*models.ReferralProfile, error) {
	if userID == 0 {
		return nil, nil
	}
	var profile models.ReferralProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetProfileByCode 按推荐码获取推荐档案
func (r *GormReferralRepository) GetProfileByCode(code string) (*models.ReferralProfile, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	var profile models.ReferralProfile
	if err := r.db.Preload("User").Where("referral_code = ?", normalized).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// CreateProfile 创建推荐档案
func (r *GormReferralRepository) CreateProfile(profile *models.ReferralProfile) error {
	return r.db.Create(profile).Error
}

// UpdateProfileStatus 更新推荐档案状态
func (r *GormReferralRepository) UpdateProfileStatus(id uint, status string) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.ReferralProfile{}).
		Where("id = ?", id).
		UpdateColumn("status", strings.TrimSpace(status)).Error
}

// ListProfiles 查询推荐档案列表
func (r *GormReferralRepository) ListProfiles(page, pageSize int, status string) ([]models.ReferralProfile, int64, error) {
	query := r.db.Model(&models.ReferralProfile{})
	if status != "" {
		query = query.Where("status = ?", strings.TrimSpace(status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var profiles []models.ReferralProfile
	if err := query.Preload("User").Order("id desc").Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// CreateUsage 创建推荐使用记录。同一档案与订单的组合只会落库一次，
// 冲突时返回 false 表示记录已存在。
func (r *GormReferralRepository) CreateUsage(usage *models.ReferralUsage) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "referral_profile_id"}, {Name: "booking_id"}},
		DoNothing: true,
	}).Create(usage)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetUsageByID 按 ID 获取使用记录
func (r *GormReferralRepository) GetUsageByID(id uint) (*models.ReferralUsage, error) {
	if id == 0 {
		return nil, nil
	}
	var usage models.ReferralUsage
	if err := r.db.First(&usage, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &usage, nil
}

// GetUsageByProfileAndBooking 按档案与订单获取使用记录
func (r *GormReferralRepository) GetUsageByProfileAndBooking(profileID, bookingID uint) (*models.ReferralUsage, error) {
	var usage models.ReferralUsage
	err := r.db.Where("referral_profile_id = ? AND booking_id = ?", profileID, bookingID).
		First(&usage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &usage, nil
}

// ListUsages 查询推荐使用记录列表
func (r *GormReferralRepository) ListUsages(filter ReferralUsageListFilter) ([]models.ReferralUsage, int64, error) {
	query := r.db.Model(&models.ReferralUsage{})

	if filter.ReferralProfileID > 0 {
		query = query.Where("referral_profile_id = ?", filter.ReferralProfileID)
	}
	if filter.ReferralCode != "" {
		query = query.Where("referral_code = ?", strings.ToUpper(strings.TrimSpace(filter.ReferralCode)))
	}
	if filter.ReferredUserID > 0 {
		query = query.Where("referred_user_id = ?", filter.ReferredUserID)
	}
	if filter.PendingBonusOnly {
		query = query.Where("bonus_coupon_id IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var usages []models.ReferralUsage
	if err := query.Order("id desc").Find(&usages).Error; err != nil {
		return nil, 0, err
	}
	return usages, total, nil
}

// MarkBonusIssued 标记奖励优惠券已发放
func (r *GormReferralRepository) MarkBonusIssued(usageID, couponID uint, at time.Time) error {
	return r.db.Model(&models.ReferralUsage{}).
		Where("id = ? AND bonus_coupon_id IS NULL", usageID).
		Updates(map[string]interface{}{
			"bonus_coupon_id": couponID,
			"bonus_issued_at": at,
		}).Error
}

// CountUsagesByProfile 统计档案的使用次数
func (r *GormReferralRepository) CountUsagesByProfile(profileID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ReferralUsage{}).
		Where("referral_profile_id = ?", profileID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// SumDiscountByProfile 统计档案累计带来的折扣金额
func (r *GormReferralRepository) SumDiscountByProfile(profileID uint) (decimal.Decimal, error) {
	var raw *string
	err := r.db.Model(&models.ReferralUsage{}).
		Where("referral_profile_id = ?", profileID).
		Select("SUM(discount_amount)").
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil || *raw == "" {
		return decimal.Zero, nil
	}
	sum, err := decimal.NewFromString(*raw)
	if err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}
