package public

import (
	"errors"
	"strings"

	"github.com/dhobigo/internal/http/response"
	"github.com/dhobigo/internal/service"

	"github.com/gin-gonic/gin"
)

// GetMyReferral 获取当前用户的推荐码、统计与分享链接
func (h *Handler) GetMyReferral(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	stats, err := h.ReferralService.Stats(userID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load referral profile", err)
		return
	}

	response.Success(c, gin.H{
		"referral_code":  stats.ReferralCode,
		"total_referred": stats.TotalReferred,
		"total_discount": stats.TotalDiscount,
		"share_url":      stats.ShareURL,
		"share_links":    service.GenerateSocialShareLinks(stats.ShareURL, stats.ReferralCode),
	})
}

// ReferralValidateRequest 推荐码校验请求
type ReferralValidateRequest struct {
	ReferralCode string `json:"referral_code" binding:"required"`
}

// ValidateReferralCode 校验推荐码是否可用于当前用户
func (h *Handler) ValidateReferralCode(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req ReferralValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	discount, err := h.ReferralService.ValidateCode(req.ReferralCode, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReferralCodeInvalid):
			respondError(c, response.CodeBadRequest, "invalid referral code", nil)
		case errors.Is(err, service.ErrReferralProfileInactive):
			respondError(c, response.CodeBadRequest, "referral code is no longer active", nil)
		case errors.Is(err, service.ErrReferralSelfUse):
			respondError(c, response.CodeBadRequest, "you cannot use your own referral code", nil)
		case errors.Is(err, service.ErrReferralNotFirst):
			respondError(c, response.CodeBadRequest, "referral discount is valid for first orders only", nil)
		default:
			respondError(c, response.CodeInternal, "referral validation failed", err)
		}
		return
	}
	response.Success(c, discount)
}

// ReferralPendingRequest 落地页暂存推荐码请求
type ReferralPendingRequest struct {
	ReferralCode string `json:"referral_code" binding:"required"`
	VisitorKey   string `json:"visitor_key" binding:"required"`
}

// StorePendingReferral 暂存落地页携带的推荐码，注册时自动使用
func (h *Handler) StorePendingReferral(c *gin.Context) {
	var req ReferralPendingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.ReferralService.StorePendingCode(c.Request.Context(), req.VisitorKey, req.ReferralCode); err != nil {
		if errors.Is(err, service.ErrReferralCodeInvalid) {
			respondError(c, response.CodeBadRequest, "invalid referral code", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to store referral code", err)
		return
	}
	response.Success(c, gin.H{"stored": true})
}

// TrackReferralVisit 落地页跳转埋点，读取 ?ref= / ?referral= 并暂存推荐码
func (h *Handler) TrackReferralVisit(c *gin.Context) {
	code := strings.TrimSpace(c.Query("ref"))
	if code == "" {
		code = strings.TrimSpace(c.Query("referral"))
	}
	if code == "" {
		respondError(c, response.CodeBadRequest, "missing ref parameter", nil)
		return
	}

	visitorKey := strings.TrimSpace(c.Query("visitor_key"))
	if visitorKey == "" {
		visitorKey = c.ClientIP()
	}

	if err := h.ReferralService.StorePendingCode(c.Request.Context(), visitorKey, code); err != nil {
		if errors.Is(err, service.ErrReferralCodeInvalid) {
			respondError(c, response.CodeBadRequest, "invalid referral code", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to store referral code", err)
		return
	}
	response.Success(c, gin.H{
		"stored":        true,
		"referral_code": strings.ToUpper(code),
	})
}
