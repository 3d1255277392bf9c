package public

import (
	"strconv"

	"github.com/dhobigo/internal/http/response"
	"github.com/dhobigo/internal/models"

	handlershared "github.com/dhobigo/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListCouponCatalog 获取公共优惠券目录
func (h *Handler) ListCouponCatalog(c *gin.Context) {
	coupons, err := h.CouponService.ListCatalog()
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list coupons", err)
		return
	}
	response.Success(c, coupons)
}

// CouponValidateRequest 优惠券校验请求
type CouponValidateRequest struct {
	CouponCode  string       `json:"coupon_code" binding:"required"`
	OrderAmount models.Money `json:"order_amount"`
}

// ValidateCoupon 校验优惠券并计算折扣
func (h *Handler) ValidateCoupon(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req CouponValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result, err := h.CouponService.Validate(c.Request.Context(), req.CouponCode, userID, req.OrderAmount)
	if err != nil {
		respondError(c, response.CodeInternal, "coupon validation failed", err)
		return
	}
	response.Success(c, result)
}

// AvailableCoupons 获取当前用户可用的优惠券
func (h *Handler) AvailableCoupons(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	orderAmount := parseMoneyQuery(c, "order_amount")
	coupons, err := h.CouponService.AvailableForUser(userID, orderAmount)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list available coupons", err)
		return
	}
	response.Success(c, coupons)
}

// MyCouponItem 用户优惠券及其使用状态
type MyCouponItem struct {
	models.Coupon
	Used bool `json:"used"`
}

// MyCoupons 获取当前用户持有与可领取的优惠券
func (h *Handler) MyCoupons(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	coupons, err := h.ReferralService.UserCoupons(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list coupons", err)
		return
	}

	items := make([]MyCouponItem, 0, len(coupons))
	for _, coupon := range coupons {
		used := false
		if coupon.IsOneTimeUse {
			used, err = h.CouponService.HasCouponBeenUsed(coupon.Code, userID)
			if err != nil {
				respondError(c, response.CodeInternal, "failed to list coupons", err)
				return
			}
		}
		items = append(items, MyCouponItem{Coupon: coupon, Used: used})
	}
	response.Success(c, items)
}

// CouponUsageHistory 获取当前用户优惠券使用记录
func (h *Handler) CouponUsageHistory(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	usages, total, err := h.CouponService.UsageHistory(userID, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list coupon usage", err)
		return
	}
	response.SuccessWithPage(c, usages, response.NewPagination(page, pageSize, total))
}

func parseMoneyQuery(c *gin.Context, key string) models.Money {
	raw := c.Query(key)
	if raw == "" {
		return models.Money{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return models.Money{}
	}
	return models.NewMoneyFromDecimal(d)
}
