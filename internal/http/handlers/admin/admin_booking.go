package admin

import (
	"errors"
	"strconv"
	"time"

	"github.com/dhobigo/internal/http/response"
	"github.com/dhobigo/internal/repository"
	"github.com/dhobigo/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminBookings 获取预约列表 (Admin)
func (h *Handler) GetAdminBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.BookingListFilter{
		Page:        page,
		PageSize:    pageSize,
		Status:      c.Query("status"),
		BookingNo:   c.Query("booking_no"),
		ServiceType: c.Query("service_type"),
	}
	if raw := c.Query("user_id"); raw != "" {
		if userID, err := strconv.ParseUint(raw, 10, 32); err == nil {
			filter.UserID = uint(userID)
		}
	}
	if raw := c.Query("created_from"); raw != "" {
		if from, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedFrom = &from
		}
	}
	if raw := c.Query("created_to"); raw != "" {
		if to, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedTo = &to
		}
	}

	bookings, total, err := h.BookingService.ListAdmin(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to list bookings", err)
		return
	}

	response.SuccessWithPage(c, bookings, response.NewPagination(page, pageSize, total))
}

// GetAdminBooking 获取预约详情 (Admin)
func (h *Handler) GetAdminBooking(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid booking id", nil)
		return
	}

	booking, err := h.BookingRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch booking", err)
		return
	}
	if booking == nil {
		respondError(c, response.CodeNotFound, "booking not found", nil)
		return
	}

	usages, err := h.CouponUsageRepo.ListByBookingID(booking.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to fetch booking", err)
		return
	}
	response.Success(c, gin.H{
		"booking":       booking,
		"coupon_usages": usages,
	})
}

// BookingStatusRequest 预约状态流转请求
type BookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateAdminBookingStatus 流转预约状态 (Admin)
func (h *Handler) UpdateAdminBookingStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid booking id", nil)
		return
	}

	var req BookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	booking, err := h.BookingService.UpdateStatus(uint(id), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			respondError(c, response.CodeNotFound, "booking not found", nil)
		case errors.Is(err, service.ErrBookingStatusInvalid):
			respondError(c, response.CodeBadRequest, "invalid status transition", nil)
		default:
			respondError(c, response.CodeInternal, "failed to update booking status", err)
		}
		return
	}
	response.Success(c, booking)
}
