package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dhobigo/internal/constants"
	"github.com/dhobigo/internal/logger"
	"github.com/dhobigo/internal/models"
	"github.com/dhobigo/internal/queue"
	"github.com/dhobigo/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// servicePricing 各洗护类型单价（按件计）
var servicePricing = map[string]models.Money{
	constants.ServiceTypeWashFold: models.NewMoneyFromInt(79),
	constants.ServiceTypeWashIron: models.NewMoneyFromInt(99),
	constants.ServiceTypeIronOnly: models.NewMoneyFromInt(25),
	constants.ServiceTypeDryClean: models.NewMoneyFromInt(149),
}

// bookingStatusNexts 订单状态允许的流转
var bookingStatusNexts = map[string][]string{
	constants.BookingStatusPendingPickup:  {constants.BookingStatusPickedUp, constants.BookingStatusCanceled},
	constants.BookingStatusPickedUp:       {constants.BookingStatusProcessing},
	constants.BookingStatusProcessing:     {constants.BookingStatusOutForDelivery},
	constants.BookingStatusOutForDelivery: {constants.BookingStatusDelivered},
}

// BookingItemInput 预约服务项入参
type BookingItemInput struct {
	ServiceType string `json:"service_type"`
	Quantity    int    `json:"quantity"`
}

// CreateBookingInput 创建预约入参
type CreateBookingInput struct {
	UserID       uint
	AddressID    uint
	PickupSlot   string
	Items        []BookingItemInput
	CouponCode   string
	ReferralCode string
}

// BookingQuote 预约报价
type BookingQuote struct {
	Subtotal       models.Money `json:"subtotal"`
	DiscountAmount models.Money `json:"discount_amount"`
	TotalAmount    models.Money `json:"total_amount"`
	DiscountSource string       `json:"discount_source,omitempty"`
	Message        string       `json:"message,omitempty"`
	Degraded       bool         `json:"degraded,omitempty"`
}

// BookingService 预约服务
type BookingService struct {
	bookingRepo     repository.BookingRepository
	addressRepo     repository.AddressRepository
	couponService   *CouponService
	referralService *ReferralService
	queueClient     *queue.Client
}

// NewBookingService 创建预约服务
func NewBookingService(
	bookingRepo repository.BookingRepository,
	addressRepo repository.AddressRepository,
	couponService *CouponService,
	referralService *ReferralService,
	queueClient *queue.Client,
) *BookingService {
	return &BookingService{
		bookingRepo:     bookingRepo,
		addressRepo:     addressRepo,
		couponService:   couponService,
		referralService: referralService,
		queueClient:     queueClient,
	}
}

// ServicePricing 返回服务类型单价表
func (s *BookingService) ServicePricing() map[string]models.Money {
	pricing := make(map[string]models.Money, len(servicePricing))
	for serviceType, price := range servicePricing {
		pricing[serviceType] = price
	}
	return pricing
}

func buildItems(inputs []BookingItemInput) ([]models.BookingItem, models.Money, error) {
	if len(inputs) == 0 {
		return nil, models.Money{}, ErrBookingEmptyItems
	}
	items := make([]models.BookingItem, 0, len(inputs))
	subtotal := decimal.Zero
	for _, input := range inputs {
		serviceType := strings.ToLower(strings.TrimSpace(input.ServiceType))
		unitPrice, ok := servicePricing[serviceType]
		if !ok {
			return nil, models.Money{}, ErrServiceTypeInvalid
		}
		if input.Quantity <= 0 {
			return nil, models.Money{}, ErrBookingEmptyItems
		}
		total := unitPrice.Decimal.Mul(decimal.NewFromInt(int64(input.Quantity)))
		items = append(items, models.BookingItem{
			ServiceType: serviceType,
			Quantity:    input.Quantity,
			UnitPrice:   unitPrice,
			TotalPrice:  models.NewMoneyFromDecimal(total),
		})
		subtotal = subtotal.Add(total)
	}
	return items, models.NewMoneyFromDecimal(subtotal), nil
}

// resolveDiscount 解析折扣：优惠码优先，其次推荐码
func (s *BookingService) resolveDiscount(ctx context.Context, input CreateBookingInput, subtotal models.Money) (*BookingQuote, error) {
	quote := &BookingQuote{
		Subtotal:    subtotal,
		TotalAmount: subtotal,
	}

	couponCode := strings.TrimSpace(input.CouponCode)
	if couponCode != "" {
		result, err := s.couponService.Validate(ctx, couponCode, input.UserID, subtotal)
		if err != nil {
			return nil, err
		}
		if !result.Valid {
			quote.Message = result.Message
			quote.Degraded = result.Degraded
			reason := result.Reason
			if reason == nil {
				reason = ErrCouponInvalid
			}
			return quote, &CouponRejectedError{Message: result.Message, Reason: reason}
		}
		quote.DiscountAmount = result.Discount
		quote.DiscountSource = constants.DiscountSourceCoupon
		quote.Degraded = result.Degraded
		quote.TotalAmount = models.NewMoneyFromDecimal(subtotal.Decimal.Sub(result.Discount.Decimal))
		return quote, nil
	}

	referralCode := strings.TrimSpace(input.ReferralCode)
	if referralCode != "" {
		if _, err := s.referralService.ValidateCode(referralCode, input.UserID); err != nil {
			return quote, err
		}
		discount := s.referralService.CalculateDiscount(subtotal)
		quote.DiscountAmount = discount
		quote.DiscountSource = constants.DiscountSourceReferral
		quote.TotalAmount = models.NewMoneyFromDecimal(subtotal.Decimal.Sub(discount.Decimal))
		return quote, nil
	}

	return quote, nil
}

// Preview 预约报价，不落库
func (s *BookingService) Preview(ctx context.Context, input CreateBookingInput) (*BookingQuote, error) {
	_, subtotal, err := buildItems(input.Items)
	if err != nil {
		return nil, err
	}
	return s.resolveDiscount(ctx, input, subtotal)
}

// Create 创建预约
func (s *BookingService) Create(ctx context.Context, input CreateBookingInput) (*models.Booking, error) {
	if input.UserID == 0 {
		return nil, ErrNotFound
	}
	address, err := s.addressRepo.GetByIDAndUser(input.AddressID, input.UserID)
	if err != nil {
		return nil, err
	}
	if address == nil {
		return nil, ErrAddressNotFound
	}

	items, subtotal, err := buildItems(input.Items)
	if err != nil {
		return nil, err
	}
	quote, err := s.resolveDiscount(ctx, input, subtotal)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		BookingNo:      generateBookingNo(),
		UserID:         input.UserID,
		AddressID:      address.ID,
		Status:         constants.BookingStatusPendingPickup,
		Currency:       constants.SiteCurrencyDefault,
		Subtotal:       quote.Subtotal,
		DiscountAmount: quote.DiscountAmount,
		TotalAmount:    quote.TotalAmount,
		DiscountSource: quote.DiscountSource,
		PickupSlot:     strings.TrimSpace(input.PickupSlot),
		Items:          items,
	}

	couponCode := strings.ToUpper(strings.TrimSpace(input.CouponCode))
	referralCode := strings.ToUpper(strings.TrimSpace(input.ReferralCode))
	if quote.DiscountSource == constants.DiscountSourceReferral {
		booking.ReferralCode = referralCode
	}

	err = s.bookingRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.bookingRepo.WithTx(tx).Create(booking); err != nil {
			return err
		}
		if quote.DiscountSource == constants.DiscountSourceCoupon {
			coupon, err := s.couponService.couponRepo.WithTx(tx).GetByCode(couponCode)
			if err != nil {
				return err
			}
			if coupon == nil {
				return ErrCouponNotFound
			}
			booking.CouponID = &coupon.ID
			if err := s.bookingRepo.WithTx(tx).Update(booking); err != nil {
				return err
			}
			usage := &models.CouponUsage{
				CouponID:       coupon.ID,
				CouponCode:     coupon.Code,
				UserID:         input.UserID,
				BookingID:      booking.ID,
				OrderAmount:    quote.Subtotal,
				DiscountAmount: quote.DiscountAmount,
			}
			if coupon.IsOneTimeUse {
				usage.OneTimeKey = models.OneTimeUsageKey(coupon.ID, input.UserID)
			}
			created, err := s.couponService.usageRepo.WithTx(tx).Create(usage)
			if err != nil {
				return err
			}
			// 并发下两单同时通过校验时，唯一键兜底拦下后写入的一单
			if !created {
				return ErrCouponAlreadyUsed
			}
			return s.couponService.couponRepo.WithTx(tx).IncrementUsedCount(coupon.ID, 1)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if quote.DiscountSource == constants.DiscountSourceReferral {
		if err := s.referralService.TrackUsage(referralCode, input.UserID, booking.ID, quote.DiscountAmount); err != nil {
			logger.Warnw("booking_referral_track_failed",
				"booking_no", booking.BookingNo,
				"referral_code", referralCode,
				"error", err,
			)
		}
	}

	if err := s.queueClient.EnqueueBookingStatusNotify(queue.BookingStatusNotifyPayload{
		BookingID: booking.ID,
		Status:    booking.Status,
	}); err != nil {
		logger.Warnw("booking_status_notify_enqueue_failed", "booking_id", booking.ID, "error", err)
	}

	return s.bookingRepo.GetByID(booking.ID)
}

// GetForUser 查询用户自己的预约
func (s *BookingService) GetForUser(id, userID uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// ListForUser 查询用户预约列表
func (s *BookingService) ListForUser(userID uint, page, pageSize int, status string) ([]models.Booking, int64, error) {
	return s.bookingRepo.List(repository.BookingListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   strings.TrimSpace(status),
	})
}

// ListAdmin 管理端查询预约列表
func (s *BookingService) ListAdmin(filter repository.BookingListFilter) ([]models.Booking, int64, error) {
	return s.bookingRepo.List(filter)
}

// Cancel 用户取消预约，仅待取件状态可取消
func (s *BookingService) Cancel(id, userID uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if booking.Status != constants.BookingStatusPendingPickup {
		return nil, ErrBookingNotCancelable
	}

	now := time.Now()
	booking.Status = constants.BookingStatusCanceled
	booking.CanceledAt = &now
	err = s.bookingRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.bookingRepo.WithTx(tx).Update(booking); err != nil {
			return err
		}
		// 取消后释放优惠券，一次性券可再次使用
		if booking.CouponID != nil {
			if err := s.couponService.usageRepo.WithTx(tx).DeleteByBookingID(booking.ID); err != nil {
				return err
			}
			return s.couponService.couponRepo.WithTx(tx).IncrementUsedCount(*booking.CouponID, -1)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.queueClient.EnqueueBookingStatusNotify(queue.BookingStatusNotifyPayload{
		BookingID: booking.ID,
		Status:    booking.Status,
	}); err != nil {
		logger.Warnw("booking_status_notify_enqueue_failed", "booking_id", booking.ID, "error", err)
	}
	return booking, nil
}

// UpdateStatus 管理端流转预约状态
func (s *BookingService) UpdateStatus(id uint, nextStatus string) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	next := strings.ToLower(strings.TrimSpace(nextStatus))
	if !isBookingStatusTransitionAllowed(booking.Status, next) {
		return nil, ErrBookingStatusInvalid
	}

	now := time.Now()
	booking.Status = next
	switch next {
	case constants.BookingStatusPickedUp:
		booking.PickupAt = &now
	case constants.BookingStatusDelivered:
		booking.DeliveredAt = &now
	case constants.BookingStatusCanceled:
		booking.CanceledAt = &now
	}
	if err := s.bookingRepo.Update(booking); err != nil {
		return nil, err
	}

	if err := s.queueClient.EnqueueBookingStatusNotify(queue.BookingStatusNotifyPayload{
		BookingID: booking.ID,
		Status:    booking.Status,
	}); err != nil {
		logger.Warnw("booking_status_notify_enqueue_failed", "booking_id", booking.ID, "error", err)
	}
	return booking, nil
}

func isBookingStatusTransitionAllowed(current, next string) bool {
	for _, allowed := range bookingStatusNexts[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

func generateBookingNo() string {
	now := time.Now().Format("20060102150405")
	return fmt.Sprintf("DG%s%s", now, randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
