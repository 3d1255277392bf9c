package admin

import (
	"errors"
	"strconv"

	"github.com/dhobigo/internal/http/response"
	"github.com/dhobigo/internal/repository"
	"github.com/dhobigo/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminCoupons 获取优惠券列表 (Admin)
func (h *Handler) GetAdminCoupons(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.CouponListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     c.Query("code"),
		Category: c.Query("category"),
	}
	if raw := c.Query("is_active"); raw != "" {
		active := raw == "true"
		filter.IsActive = &active
	}
	if c.Query("catalog_only") == "true" {
		filter.CatalogOnly = true
	}

	coupons, total, err := h.CouponAdminService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list coupons", err)
		return
	}

	response.SuccessWithPage(c, coupons, response.NewPagination(page, pageSize, total))
}

// GetAdminCoupon 获取优惠券详情 (Admin)
func (h *Handler) GetAdminCoupon(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid coupon id", nil)
		return
	}

	coupon, err := h.CouponAdminService.Get(uint(id))
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			respondError(c, response.CodeNotFound, "coupon not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to fetch coupon", err)
		return
	}
	response.Success(c, coupon)
}

// CreateAdminCoupon 创建优惠券 (Admin)
func (h *Handler) CreateAdminCoupon(c *gin.Context) {
	var input service.CouponAdminInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	coupon, err := h.CouponAdminService.Create(input)
	if err != nil {
		if errors.Is(err, service.ErrCouponInvalid) {
			respondError(c, response.CodeBadRequest, "coupon code is missing or already exists", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to create coupon", err)
		return
	}
	response.Success(c, coupon)
}

// UpdateAdminCoupon 更新优惠券 (Admin)
func (h *Handler) UpdateAdminCoupon(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid coupon id", nil)
		return
	}

	var input service.CouponAdminInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	coupon, err := h.CouponAdminService.Update(uint(id), input)
	if err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			respondError(c, response.CodeNotFound, "coupon not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to update coupon", err)
		return
	}
	response.Success(c, coupon)
}

// DeleteAdminCoupon 删除优惠券 (Admin)
func (h *Handler) DeleteAdminCoupon(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid coupon id", nil)
		return
	}

	if err := h.CouponAdminService.Delete(uint(id)); err != nil {
		if errors.Is(err, service.ErrCouponNotFound) {
			respondError(c, response.CodeNotFound, "coupon not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to delete coupon", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
