package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dhobigo/internal/constants"
	"github.com/dhobigo/internal/logger"
	"github.com/dhobigo/internal/models"
	"github.com/dhobigo/internal/provider"
	"github.com/dhobigo/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskReferralBonusAward, c.handleReferralBonusAward)
	mux.HandleFunc(queue.TaskBookingStatusNotify, c.handleBookingStatusNotify)
}

func (c *Consumer) handleReferralBonusAward(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.ReferralBonusAwardPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_referral_bonus_unmarshal_failed", "error", err)
		return err
	}
	if payload.UsageID == 0 {
		logger.Debugw("worker_referral_bonus_skip_invalid_payload", "usage_id", payload.UsageID)
		return nil
	}
	if err := c.ReferralService.AwardBonus(payload.UsageID); err != nil {
		logger.Warnw("worker_referral_bonus_award_failed", "usage_id", payload.UsageID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleBookingStatusNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.BookingStatusNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_booking_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.BookingID == 0 {
		return nil
	}

	booking, err := c.BookingRepo.GetByID(payload.BookingID)
	if err != nil {
		logger.Warnw("worker_booking_notify_fetch_failed", "booking_id", payload.BookingID, "error", err)
		return err
	}
	if booking == nil {
		logger.Debugw("worker_booking_notify_skip_not_found", "booking_id", payload.BookingID)
		return nil
	}

	status := payload.Status
	if status == "" {
		status = booking.Status
	}
	title, message := bookingStatusNotification(booking.BookingNo, status)
	if title == "" {
		logger.Debugw("worker_booking_notify_skip_unknown_status", "booking_id", booking.ID, "status", status)
		return nil
	}

	bookingID := booking.ID
	notification := &models.Notification{
		UserID:    booking.UserID,
		Type:      constants.NotificationTypeBookingStatus,
		Title:     title,
		Message:   message,
		BookingID: &bookingID,
	}
	if err := c.NotificationRepo.Create(notification); err != nil {
		logger.Warnw("worker_booking_notify_create_failed", "booking_id", booking.ID, "error", err)
		return err
	}
	return nil
}

func bookingStatusNotification(bookingNo, status string) (string, string) {
	switch status {
	case constants.BookingStatusPendingPickup:
		return "Booking confirmed", fmt.Sprintf("Booking %s is confirmed. We will pick up your laundry in the selected slot.", bookingNo)
	case constants.BookingStatusPickedUp:
		return "Laundry picked up", fmt.Sprintf("Your laundry for booking %s has been picked up.", bookingNo)
	case constants.BookingStatusProcessing:
		return "Laundry in progress", fmt.Sprintf("Your laundry for booking %s is being processed.", bookingNo)
	case constants.BookingStatusOutForDelivery:
		return "Out for delivery", fmt.Sprintf("Your laundry for booking %s is out for delivery.", bookingNo)
	case constants.BookingStatusDelivered:
		return "Laundry delivered", fmt.Sprintf("Your laundry for booking %s has been delivered. Thank you!", bookingNo)
	case constants.BookingStatusCanceled:
		return "Booking canceled", fmt.Sprintf("Booking %s has been canceled.", bookingNo)
	default:
		return "", ""
	}
}
