package admin

import (
	"strconv"
	"strings"

	"github.com/dhobigo/internal/constants"
	"github.com/dhobigo/internal/http/response"
	"github.com/dhobigo/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminReferralProfiles 获取推荐档案列表 (Admin)
func (h *Handler) GetAdminReferralProfiles(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	profiles, total, err := h.ReferralRepo.ListProfiles(page, pageSize, c.Query("status"))
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list referral profiles", err)
		return
	}

	response.SuccessWithPage(c, profiles, response.NewPagination(page, pageSize, total))
}

// ReferralProfileStatusRequest 推荐档案状态变更请求
type ReferralProfileStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateAdminReferralProfileStatus 启停推荐档案 (Admin)
func (h *Handler) UpdateAdminReferralProfileStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid profile id", nil)
		return
	}

	var req ReferralProfileStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != constants.ReferralProfileStatusActive && status != constants.ReferralProfileStatusDisabled {
		respondError(c, response.CodeBadRequest, "invalid status", nil)
		return
	}

	profile, err := h.ReferralRepo.GetProfileByID(uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch referral profile", err)
		return
	}
	if profile == nil {
		respondError(c, response.CodeNotFound, "referral profile not found", nil)
		return
	}

	if err := h.ReferralRepo.UpdateProfileStatus(uint(id), status); err != nil {
		respondError(c, response.CodeInternal, "failed to update referral profile", err)
		return
	}
	response.Success(c, gin.H{"id": id, "status": status})
}

// GetAdminReferralUsages 获取推荐使用记录列表 (Admin)
func (h *Handler) GetAdminReferralUsages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ReferralUsageListFilter{
		Page:             page,
		PageSize:         pageSize,
		ReferralCode:     c.Query("referral_code"),
		PendingBonusOnly: c.Query("pending_bonus_only") == "true",
	}
	if raw := c.Query("referral_profile_id"); raw != "" {
		if profileID, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filter.ReferralProfileID = uint(profileID)
		}
	}
	if raw := c.Query("referred_user_id"); raw != "" {
		if userID, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filter.ReferredUserID = uint(userID)
		}
	}

	usages, total, err := h.ReferralRepo.ListUsages(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list referral usages", err)
		return
	}

	response.SuccessWithPage(c, usages, response.NewPagination(page, pageSize, total))
}
