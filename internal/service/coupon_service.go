package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dhobigo/internal/config"
	"github.com/dhobigo/internal/constants"
	"github.com/dhobigo/internal/logger"
	"github.com/dhobigo/internal/models"
	"github.com/dhobigo/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponValidation 优惠码校验结果
// Source 标记结果来自远端校验还是本地规则，远端不可用时降级为本地并置 Degraded
type CouponValidation struct {
	Valid    bool           `json:"valid"`
	Coupon   *models.Coupon `json:"coupon,omitempty"`
	Discount models.Money   `json:"discount"`
	Message  string         `json:"message,omitempty"`
	Source   string         `json:"source"`
	Degraded bool           `json:"degraded"`

	// Reason 为拒绝时对应的哨兵错误，便于调用方用 errors.Is 区分
	Reason error `json:"-"`
}

// CouponRejectedError 优惠码被拒绝，携带面向用户的原因文案
type CouponRejectedError struct {
	Message string
	Reason  error
}

func (e *CouponRejectedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Reason.Error()
}

func (e *CouponRejectedError) Unwrap() error { return e.Reason }

// CouponService 优惠券服务
type CouponService struct {
	cfg         config.CouponConfig
	couponRepo  repository.CouponRepository
	usageRepo   repository.CouponUsageRepository
	bookingRepo repository.BookingRepository
	remote      *couponRemoteClient
}

// NewCouponService 创建优惠券服务
func NewCouponService(
	cfg config.CouponConfig,
	couponRepo repository.CouponRepository,
	usageRepo repository.CouponUsageRepository,
	bookingRepo repository.BookingRepository,
) *CouponService {
	return &CouponService{
		cfg:         cfg,
		couponRepo:  couponRepo,
		usageRepo:   usageRepo,
		bookingRepo: bookingRepo,
		remote:      newCouponRemoteClient(cfg),
	}
}

// ListCatalog 返回当前可见的公共优惠券目录
func (s *CouponService) ListCatalog() ([]models.Coupon, error) {
	return s.couponRepo.ListActiveCatalog()
}

// IsFirstTimeUser 判断用户是否还没有有效订单
func (s *CouponService) IsFirstTimeUser(userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	count, err := s.bookingRepo.CountNonCanceledByUser(userID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// HasCouponBeenUsed 判断用户是否已用过该优惠码
func (s *CouponService) HasCouponBeenUsed(code string, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	coupon, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return false, err
	}
	if coupon == nil {
		return false, nil
	}
	count, err := s.usageRepo.CountByUser(coupon.ID, userID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Validate 校验优惠码，远端优先，不可用时降级为本地规则
func (s *CouponService) Validate(ctx context.Context, code string, userID uint, orderAmount models.Money) (*CouponValidation, error) {
	if s.cfg.RemoteValidation && s.remote != nil && strings.TrimSpace(s.cfg.ValidateURL) != "" {
		result, err := s.remote.Validate(ctx, code, userID, orderAmount)
		if err == nil {
			return result, nil
		}
		logger.Warnw("coupon_remote_validate_failed",
			"code", strings.ToUpper(strings.TrimSpace(code)),
			"error", err.Error(),
		)
		local, localErr := s.validateLocal(code, userID, orderAmount)
		if localErr != nil {
			return nil, localErr
		}
		local.Degraded = true
		return local, nil
	}
	return s.validateLocal(code, userID, orderAmount)
}

// validateLocal 本地规则校验，固定顺序短路
func (s *CouponService) validateLocal(code string, userID uint, orderAmount models.Money) (*CouponValidation, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))

	coupon, err := s.couponRepo.GetByCode(normalized)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return rejectLocal(nil, ErrCouponNotFound, fmt.Sprintf("Invalid coupon code: %s", normalized)), nil
	}
	if coupon.OwnerUserID != nil && *coupon.OwnerUserID != userID {
		return rejectLocal(coupon, ErrCouponNotOwned, fmt.Sprintf("Invalid coupon code: %s", normalized)), nil
	}
	if !coupon.IsActive {
		return rejectLocal(coupon, ErrCouponInactive, "This coupon is no longer active"), nil
	}
	if coupon.ExpiresAt != nil && time.Now().After(*coupon.ExpiresAt) {
		return rejectLocal(coupon, ErrCouponExpired, "This coupon has expired"), nil
	}
	if coupon.IsOneTimeUse {
		count, err := s.usageRepo.CountByUser(coupon.ID, userID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return rejectLocal(coupon, ErrCouponAlreadyUsed, "This coupon has already been used"), nil
		}
	}
	if coupon.IsFirstOrder || coupon.ExcludeFirstOrder {
		firstTime, err := s.IsFirstTimeUser(userID)
		if err != nil {
			return nil, err
		}
		if coupon.IsFirstOrder && !firstTime {
			return rejectLocal(coupon, ErrCouponFirstOnly, "This coupon is valid for first orders only"), nil
		}
		if coupon.ExcludeFirstOrder && firstTime {
			return rejectLocal(coupon, ErrCouponNotFirst, "This coupon is not valid for first orders"), nil
		}
	}
	if coupon.MinimumAmount.Decimal.GreaterThan(decimal.Zero) &&
		orderAmount.Decimal.LessThan(coupon.MinimumAmount.Decimal) {
		message := fmt.Sprintf("Minimum order amount of %s%s required",
			constants.CurrencySymbol, coupon.MinimumAmount.Decimal.StringFixed(0))
		return rejectLocal(coupon, ErrCouponMinAmount, message), nil
	}

	return &CouponValidation{
		Valid:    true,
		Coupon:   coupon,
		Discount: CalculateDiscount(coupon, orderAmount),
		Source:   constants.ValidationSourceLocal,
	}, nil
}

func rejectLocal(coupon *models.Coupon, reason error, message string) *CouponValidation {
	return &CouponValidation{
		Coupon:  coupon,
		Message: message,
		Source:  constants.ValidationSourceLocal,
		Reason:  reason,
	}
}

// CalculateDiscount 计算优惠金额：round(orderAmount * pct / 100)，有上限时封顶，永不为负
func CalculateDiscount(coupon *models.Coupon, orderAmount models.Money) models.Money {
	if coupon == nil || orderAmount.Decimal.LessThanOrEqual(decimal.Zero) {
		return models.NewMoneyFromInt(0)
	}
	percent := coupon.DiscountPercent.Decimal.Div(decimal.NewFromInt(100))
	discount := orderAmount.Decimal.Mul(percent).Round(0)
	if coupon.MaxDiscount.Decimal.GreaterThan(decimal.Zero) && discount.GreaterThan(coupon.MaxDiscount.Decimal) {
		discount = coupon.MaxDiscount.Decimal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return models.NewMoneyFromDecimal(discount)
}

// AvailableForUser 过滤出当前用户可用的优惠券（公共目录 + 用户专属）
func (s *CouponService) AvailableForUser(userID uint, orderAmount models.Money) ([]models.Coupon, error) {
	catalog, err := s.couponRepo.ListActiveCatalog()
	if err != nil {
		return nil, err
	}
	if userID > 0 {
		owned, err := s.couponRepo.ListByOwner(userID, true)
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, owned...)
	}

	available := make([]models.Coupon, 0, len(catalog))
	for _, coupon := range catalog {
		result, err := s.validateLocal(coupon.Code, userID, orderAmount)
		if err != nil {
			return nil, err
		}
		if result.Valid {
			available = append(available, coupon)
		}
	}
	return available, nil
}

// MarkCouponAsUsed 记录优惠券使用并累计使用次数
func (s *CouponService) MarkCouponAsUsed(code string, userID, bookingID uint, orderAmount, discountAmount models.Money) error {
	if userID == 0 {
		return nil
	}
	coupon, err := s.couponRepo.GetByCode(code)
	if err != nil {
		return err
	}
	if coupon == nil {
		return ErrCouponNotFound
	}

	usage := &models.CouponUsage{
		CouponID:       coupon.ID,
		CouponCode:     coupon.Code,
		UserID:         userID,
		BookingID:      bookingID,
		OrderAmount:    orderAmount,
		DiscountAmount: discountAmount,
	}
	if coupon.IsOneTimeUse {
		usage.OneTimeKey = models.OneTimeUsageKey(coupon.ID, userID)
	}
	created, err := s.usageRepo.Create(usage)
	if err != nil {
		return err
	}
	if !created {
		return ErrCouponAlreadyUsed
	}
	return s.couponRepo.IncrementUsedCount(coupon.ID, 1)
}

// UsageHistory 查询用户优惠券使用记录
func (s *CouponService) UsageHistory(userID uint, page, pageSize int) ([]models.CouponUsage, int64, error) {
	return s.usageRepo.ListByUser(repository.CouponUsageListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
	})
}

// ClearUsageData 清除用户使用记录（调试用途）
func (s *CouponService) ClearUsageData(userID uint) error {
	if userID == 0 {
		return nil
	}
	return s.usageRepo.DeleteByUser(userID)
}
