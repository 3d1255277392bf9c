package admin

import (
	"strconv"

	"github.com/dhobigo/internal/http/response"
	"github.com/dhobigo/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminUsers 获取用户列表 (Admin)
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("keyword"),
		Status:   c.Query("status"),
	}
	if referredBy := c.Query("referred_by"); referredBy != "" {
		filter.ReferredBy = referredBy
	}

	users, total, err := h.UserRepo.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list users", err)
		return
	}

	response.SuccessWithPage(c, users, response.NewPagination(page, pageSize, total))
}

// ResetUserCouponUsage 清除用户的优惠券使用记录（客服兜底操作）
func (h *Handler) ResetUserCouponUsage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid user id", nil)
		return
	}

	if err := h.CouponService.ClearUsageData(uint(id)); err != nil {
		respondError(c, response.CodeInternal, "failed to reset coupon usage", err)
		return
	}
	response.Success(c, gin.H{"reset": true})
}
