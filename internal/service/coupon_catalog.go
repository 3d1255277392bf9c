package service

import (
	"github.com/dhobigo/internal/constants"
	"github.com/dhobigo/internal/models"
)

// CatalogCoupons 内置优惠券目录
// seed 命令据此初始化数据库，测试也直接复用
func CatalogCoupons() []models.Coupon {
	return []models.Coupon{
		{
			Code:            "FIRST30",
			Description:     "30% off up to ₹200 on your first order",
			Category:        constants.CouponCategoryFirstOrder,
			DiscountPercent: models.NewMoneyFromInt(30),
			MaxDiscount:     models.NewMoneyFromInt(200),
			IsFirstOrder:    true,
			IsOneTimeUse:    true,
			IsActive:        true,
		},
		{
			Code:            "NEW10",
			Description:     "10% off on all orders",
			Category:        constants.CouponCategoryGeneral,
			DiscountPercent: models.NewMoneyFromInt(10),
			IsActive:        true,
		},
		{
			Code:            "FIRST10",
			Description:     "10% off up to ₹100 on your first order",
			Category:        constants.CouponCategoryFirstOrder,
			DiscountPercent: models.NewMoneyFromInt(10),
			MaxDiscount:     models.NewMoneyFromInt(100),
			IsFirstOrder:    true,
			IsOneTimeUse:    true,
			IsActive:        true,
		},
		{
			Code:              "SAVE20",
			Description:       "20% off on orders above ₹500",
			Category:          constants.CouponCategoryRegular,
			DiscountPercent:   models.NewMoneyFromInt(20),
			MinimumAmount:     models.NewMoneyFromInt(500),
			ExcludeFirstOrder: true,
			IsOneTimeUse:      true,
			IsActive:          true,
		},
	}
}
