package service

import (
	"strings"
	"time"

	"github.com/dhobigo/internal/constants"
	"github.com/dhobigo/internal/models"
	"github.com/dhobigo/internal/repository"
)

// CouponAdminInput 管理端优惠券入参
type CouponAdminInput struct {
	Code              string       `json:"code"`
	Description       string       `json:"description"`
	Category          string       `json:"category"`
	DiscountPercent   models.Money `json:"discount_percent"`
	MaxDiscount       models.Money `json:"max_discount"`
	MinimumAmount     models.Money `json:"minimum_amount"`
	IsFirstOrder      bool         `json:"is_first_order"`
	ExcludeFirstOrder bool         `json:"exclude_first_order"`
	IsOneTimeUse      bool         `json:"is_one_time_use"`
	IsActive          bool         `json:"is_active"`
	ExpiresAt         *time.Time   `json:"expires_at"`
}

// CouponAdminService 管理端优惠券服务
type CouponAdminService struct {
	couponRepo repository.CouponRepository
}

// NewCouponAdminService 创建管理端优惠券服务
func NewCouponAdminService(couponRepo repository.CouponRepository) *CouponAdminService {
	return &CouponAdminService{couponRepo: couponRepo}
}

// List 查询优惠券列表
func (s *CouponAdminService) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	return s.couponRepo.List(filter)
}

// Get 获取单张优惠券
func (s *CouponAdminService) Get(id uint) (*models.Coupon, error) {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// Create 创建优惠券
func (s *CouponAdminService) Create(input CouponAdminInput) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, ErrCouponInvalid
	}
	exist, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if exist != nil {
		return nil, ErrCouponInvalid
	}

	coupon := &models.Coupon{
		Code:              code,
		Description:       strings.TrimSpace(input.Description),
		Category:          normalizeCouponCategory(input.Category),
		DiscountPercent:   input.DiscountPercent,
		MaxDiscount:       input.MaxDiscount,
		MinimumAmount:     input.MinimumAmount,
		IsFirstOrder:      input.IsFirstOrder,
		ExcludeFirstOrder: input.ExcludeFirstOrder,
		IsOneTimeUse:      input.IsOneTimeUse,
		IsActive:          input.IsActive,
		ExpiresAt:         input.ExpiresAt,
	}
	if err := s.couponRepo.Create(coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Update 更新优惠券
func (s *CouponAdminService) Update(id uint, input CouponAdminInput) (*models.Coupon, error) {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}

	coupon.Description = strings.TrimSpace(input.Description)
	coupon.Category = normalizeCouponCategory(input.Category)
	coupon.DiscountPercent = input.DiscountPercent
	coupon.MaxDiscount = input.MaxDiscount
	coupon.MinimumAmount = input.MinimumAmount
	coupon.IsFirstOrder = input.IsFirstOrder
	coupon.ExcludeFirstOrder = input.ExcludeFirstOrder
	coupon.IsOneTimeUse = input.IsOneTimeUse
	coupon.IsActive = input.IsActive
	coupon.ExpiresAt = input.ExpiresAt
	if err := s.couponRepo.Update(coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Delete 删除优惠券
func (s *CouponAdminService) Delete(id uint) error {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return err
	}
	if coupon == nil {
		return ErrCouponNotFound
	}
	return s.couponRepo.Delete(id)
}

func normalizeCouponCategory(category string) string {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case constants.CouponCategoryReferral:
		return constants.CouponCategoryReferral
	case constants.CouponCategoryFirstOrder:
		return constants.CouponCategoryFirstOrder
	case constants.CouponCategoryRegular:
		return constants.CouponCategoryRegular
	default:
		return constants.CouponCategoryGeneral
	}
}
