package queue

import (
	"encoding/json"

	"github.com/dhobigo/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskReferralBonusAward 推荐奖励发放任务
	TaskReferralBonusAward = constants.TaskReferralBonusAward
	// TaskBookingStatusNotify 订单状态通知任务
	TaskBookingStatusNotify = constants.TaskBookingStatusNotify
)

// ReferralBonusAwardPayload 推荐奖励发放任务载荷
type ReferralBonusAwardPayload struct {
	UsageID uint `json:"usage_id"`
}

// BookingStatusNotifyPayload 订单状态通知任务载荷
type BookingStatusNotifyPayload struct {
	BookingID uint   `json:"booking_id"`
	Status    string `json:"status"`
}

// NewReferralBonusAwardTask 创建推荐奖励发放任务
func NewReferralBonusAwardTask(payload ReferralBonusAwardPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReferralBonusAward, body), nil
}

// NewBookingStatusNotifyTask 创建订单状态通知任务
func NewBookingStatusNotifyTask(payload BookingStatusNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBookingStatusNotify, body), nil
}
