package public

import (
	"errors"
	"strconv"

	"github.com/dhobigo/internal/http/response"
	"github.com/dhobigo/internal/service"

	handlershared "github.com/dhobigo/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

// GetServicePricing 获取服务类型与单价
func (h *Handler) GetServicePricing(c *gin.Context) {
	response.Success(c, h.BookingService.ServicePricing())
}

// BookingRequest 预约请求
type BookingRequest struct {
	AddressID    uint                       `json:"address_id"`
	PickupSlot   string                     `json:"pickup_slot"`
	Items        []service.BookingItemInput `json:"items" binding:"required"`
	CouponCode   string                     `json:"coupon_code"`
	ReferralCode string                     `json:"referral_code"`
}

func (r BookingRequest) toServiceInput(userID uint) service.CreateBookingInput {
	return service.CreateBookingInput{
		UserID:       userID,
		AddressID:    r.AddressID,
		PickupSlot:   r.PickupSlot,
		Items:        r.Items,
		CouponCode:   r.CouponCode,
		ReferralCode: r.ReferralCode,
	}
}

// PreviewBooking 预约报价，不落库
func (h *Handler) PreviewBooking(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	quote, err := h.BookingService.Preview(c.Request.Context(), req.toServiceInput(userID))
	if err != nil {
		if quote != nil && quote.Message != "" {
			respondError(c, response.CodeBadRequest, quote.Message, nil)
			return
		}
		respondBookingError(c, err, "failed to build booking quote")
		return
	}
	response.Success(c, quote)
}

// CreateBooking 创建预约
func (h *Handler) CreateBooking(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	booking, err := h.BookingService.Create(c.Request.Context(), req.toServiceInput(userID))
	if err != nil {
		respondBookingError(c, err, "failed to create booking")
		return
	}
	response.Success(c, booking)
}

// ListMyBookings 获取当前用户预约列表
func (h *Handler) ListMyBookings(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	bookings, total, err := h.BookingService.ListForUser(userID, page, pageSize, c.Query("status"))
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list bookings", err)
		return
	}
	response.SuccessWithPage(c, bookings, response.NewPagination(page, pageSize, total))
}

// GetMyBooking 获取预约详情
func (h *Handler) GetMyBooking(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid booking id", nil)
		return
	}

	booking, err := h.BookingService.GetForUser(uint(id), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			respondError(c, response.CodeNotFound, "booking not found", nil)
		default:
			respondError(c, response.CodeInternal, "failed to fetch booking", err)
		}
		return
	}
	response.Success(c, booking)
}

// CancelMyBooking 取消预约
func (h *Handler) CancelMyBooking(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid booking id", nil)
		return
	}

	booking, err := h.BookingService.Cancel(uint(id), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			respondError(c, response.CodeNotFound, "booking not found", nil)
		case errors.Is(err, service.ErrBookingNotCancelable):
			respondError(c, response.CodeBadRequest, "booking can no longer be canceled", nil)
		default:
			respondError(c, response.CodeInternal, "failed to cancel booking", err)
		}
		return
	}
	response.Success(c, booking)
}
