package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/dhobigo/internal/cache"
	"github.com/dhobigo/internal/config"
	"github.com/dhobigo/internal/constants"
	"github.com/dhobigo/internal/logger"
	"github.com/dhobigo/internal/models"
	"github.com/dhobigo/internal/queue"
	"github.com/dhobigo/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const referralCodeLength = 8

var referralCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{4,10}$`)

// ReferralDiscount 推荐折扣描述
// 校验通过时临时生成，折扣比例与上限来自配置
type ReferralDiscount struct {
	Code            string       `json:"code"`
	DiscountPercent int          `json:"discount_percent"`
	MaxDiscount     models.Money `json:"max_discount"`
	FirstOrderOnly  bool         `json:"first_order_only"`
	Description     string       `json:"description"`
}

// ReferralService 推荐返利服务
type ReferralService struct {
	cfg         config.ReferralConfig
	repo        repository.ReferralRepository
	userRepo    repository.UserRepository
	couponRepo  repository.CouponRepository
	bookingRepo repository.BookingRepository
	notifyRepo  repository.NotificationRepository
	queueClient *queue.Client
}

// NewReferralService 创建推荐返利服务
func NewReferralService(
	cfg config.ReferralConfig,
	repo repository.ReferralRepository,
	userRepo repository.UserRepository,
	couponRepo repository.CouponRepository,
	bookingRepo repository.BookingRepository,
	notifyRepo repository.NotificationRepository,
	queueClient *queue.Client,
) *ReferralService {
	return &ReferralService{
		cfg:         cfg,
		repo:        repo,
		userRepo:    userRepo,
		couponRepo:  couponRepo,
		bookingRepo: bookingRepo,
		notifyRepo:  notifyRepo,
		queueClient: queueClient,
	}
}

// IsFirstTimeUser 判断用户是否还没有有效订单
func (s *ReferralService) IsFirstTimeUser(userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	count, err := s.bookingRepo.CountNonCanceledByUser(userID)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// EnsureProfile 获取或创建用户的推荐档案
// 推荐码一次生成后固定不变：手机尾号 4 位 + 随机 base36，截断为 8 位
func (s *ReferralService) EnsureProfile(userID uint) (*models.ReferralProfile, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}

	existing, err := s.repo.GetProfileByUserID(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if strings.TrimSpace(user.Status) == constants.UserStatusDisabled {
		return nil, ErrUserDisabled
	}

	const maxRetry = 8
	for i := 0; i < maxRetry; i++ {
		code, genErr := generateReferralCode(user.Phone)
		if genErr != nil {
			return nil, genErr
		}
		profile := &models.ReferralProfile{
			UserID:       userID,
			ReferralCode: code,
			Status:       constants.ReferralProfileStatusActive,
		}
		if err := s.repo.CreateProfile(profile); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return nil, err
		}
		return profile, nil
	}
	return nil, ErrReferralCodeInvalid
}

// ValidateCode 校验推荐码
// 推荐折扣仅对首单用户有效，且推荐码必须对应一个启用中的档案
func (s *ReferralService) ValidateCode(code string, userID uint) (*ReferralDiscount, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if !referralCodePattern.MatchString(normalized) {
		return nil, ErrReferralCodeInvalid
	}

	profile, err := s.repo.GetProfileByCode(normalized)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrReferralCodeInvalid
	}
	if profile.Status != constants.ReferralProfileStatusActive {
		return nil, ErrReferralProfileInactive
	}
	if profile.UserID == userID {
		return nil, ErrReferralSelfUse
	}

	firstTime, err := s.IsFirstTimeUser(userID)
	if err != nil {
		return nil, err
	}
	if !firstTime {
		return nil, ErrReferralNotFirst
	}

	return &ReferralDiscount{
		Code:            profile.ReferralCode,
		DiscountPercent: s.discountPercent(),
		MaxDiscount:     models.NewMoneyFromInt(s.maxDiscount()),
		FirstOrderOnly:  true,
		Description: fmt.Sprintf("%d%% off up to %s%d on your first order",
			s.discountPercent(), constants.CurrencySymbol, s.maxDiscount()),
	}, nil
}

// CalculateDiscount 计算推荐折扣金额，与优惠券同一套百分比封顶算法
func (s *ReferralService) CalculateDiscount(subtotal models.Money) models.Money {
	if subtotal.Decimal.LessThanOrEqual(decimal.Zero) {
		return models.NewMoneyFromInt(0)
	}
	percent := decimal.NewFromInt(int64(s.discountPercent())).Div(decimal.NewFromInt(100))
	discount := subtotal.Decimal.Mul(percent).Round(0)
	cap := decimal.NewFromInt(s.maxDiscount())
	if cap.GreaterThan(decimal.Zero) && discount.GreaterThan(cap) {
		discount = cap
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return models.NewMoneyFromDecimal(discount)
}

// TrackUsage 记录推荐码使用并触发奖励发放
// (档案, 订单) 组合唯一，重复调用不会二次发放
func (s *ReferralService) TrackUsage(code string, referredUserID, bookingID uint, discountAmount models.Money) error {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	profile, err := s.repo.GetProfileByCode(normalized)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrReferralCodeInvalid
	}

	usage := &models.ReferralUsage{
		ReferralProfileID: profile.ID,
		BookingID:         bookingID,
		ReferralCode:      profile.ReferralCode,
		ReferredUserID:    referredUserID,
		DiscountAmount:    discountAmount,
	}
	created, err := s.repo.CreateUsage(usage)
	if err != nil {
		return err
	}
	if !created {
		logger.Debugw("referral_usage_duplicate",
			"referral_code", profile.ReferralCode,
			"booking_id", bookingID,
		)
		return nil
	}

	record, err := s.repo.GetUsageByProfileAndBooking(profile.ID, bookingID)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}
	if err := s.queueClient.EnqueueReferralBonusAward(queue.ReferralBonusAwardPayload{UsageID: record.ID}); err != nil {
		logger.Warnw("referral_bonus_enqueue_failed",
			"usage_id", record.ID,
			"error", err,
		)
	}
	return nil
}

// AwardBonus 为推荐人发放奖励优惠券并写入通知
// 以 bonus_coupon_id 是否为空做幂等保护，重复投递不会重复发放
func (s *ReferralService) AwardBonus(usageID uint) error {
	usage, err := s.repo.GetUsageByID(usageID)
	if err != nil {
		return err
	}
	if usage == nil {
		logger.Debugw("referral_bonus_skip_usage_not_found", "usage_id", usageID)
		return nil
	}
	if usage.BonusCouponID != nil {
		logger.Debugw("referral_bonus_skip_already_issued",
			"usage_id", usageID,
			"bonus_coupon_id", *usage.BonusCouponID,
		)
		return nil
	}

	profile, err := s.repo.GetProfileByID(usage.ReferralProfileID)
	if err != nil {
		return err
	}
	if profile == nil {
		logger.Warnw("referral_bonus_skip_profile_not_found",
			"usage_id", usageID,
			"referral_profile_id", usage.ReferralProfileID,
		)
		return nil
	}

	expiresAt := time.Now().AddDate(0, 0, s.bonusExpireDays())
	ownerID := profile.UserID
	bonus := &models.Coupon{
		Code:        generateBonusCouponCode(),
		Description: fmt.Sprintf("Referral reward: %d%% off up to %s%d", s.bonusPercent(), constants.CurrencySymbol, s.bonusMaxDiscount()),
		Category:    constants.CouponCategoryReferral,
		DiscountPercent: models.NewMoneyFromInt(int64(s.bonusPercent())),
		MaxDiscount:     models.NewMoneyFromInt(s.bonusMaxDiscount()),
		IsOneTimeUse:    true,
		IsActive:        true,
		OwnerUserID:     &ownerID,
		ExpiresAt:       &expiresAt,
	}

	return s.repo.Transaction(func(tx *gorm.DB) error {
		if err := s.couponRepo.WithTx(tx).Create(bonus); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).MarkBonusIssued(usage.ID, bonus.ID, time.Now()); err != nil {
			return err
		}
		notification := &models.Notification{
			UserID:   profile.UserID,
			Type:     constants.NotificationTypeReferralBonus,
			Title:    "Referral reward earned",
			Message:  fmt.Sprintf("Someone used your referral code %s. You earned a %d%% off coupon!", profile.ReferralCode, s.bonusPercent()),
			CouponID: &bonus.ID,
		}
		return s.notifyRepo.WithTx(tx).Create(notification)
	})
}

func generateBonusCouponCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	var builder strings.Builder
	builder.WriteString("RFB")
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < 8; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			builder.WriteByte(alphabet[0])
			continue
		}
		builder.WriteByte(alphabet[n.Int64()])
	}
	return builder.String()
}

func (s *ReferralService) discountPercent() int {
	if s.cfg.DiscountPercent <= 0 {
		return 50
	}
	return s.cfg.DiscountPercent
}

func (s *ReferralService) maxDiscount() int64 {
	if s.cfg.MaxDiscount <= 0 {
		return 200
	}
	return s.cfg.MaxDiscount
}

func (s *ReferralService) bonusPercent() int {
	if s.cfg.BonusPercent <= 0 {
		return 50
	}
	return s.cfg.BonusPercent
}

func (s *ReferralService) bonusMaxDiscount() int64 {
	if s.cfg.BonusMaxDiscount <= 0 {
		return 200
	}
	return s.cfg.BonusMaxDiscount
}

func (s *ReferralService) bonusExpireDays() int {
	if s.cfg.BonusExpireDays <= 0 {
		return 30
	}
	return s.cfg.BonusExpireDays
}

func (s *ReferralService) pendingTTL() time.Duration {
	if s.cfg.PendingTTLMinutes <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(s.cfg.PendingTTLMinutes) * time.Minute
}

// StorePendingCode 暂存访客在落地页带来的推荐码
func (s *ReferralService) StorePendingCode(ctx context.Context, visitorKey, code string) error {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if !referralCodePattern.MatchString(normalized) {
		return ErrReferralCodeInvalid
	}
	return cache.SetPendingReferralCode(ctx, visitorKey, normalized, s.pendingTTL())
}

// PendingCode 读取访客暂存的推荐码
func (s *ReferralService) PendingCode(ctx context.Context, visitorKey string) (string, bool, error) {
	return cache.GetPendingReferralCode(ctx, visitorKey)
}

// ClearPendingCode 清除访客暂存的推荐码
func (s *ReferralService) ClearPendingCode(ctx context.Context, visitorKey string) error {
	return cache.ClearPendingReferralCode(ctx, visitorKey)
}

// UserCoupons 返回用户可见的优惠券：推荐奖励等专属券 + 公共目录
func (s *ReferralService) UserCoupons(userID uint) ([]models.Coupon, error) {
	owned, err := s.couponRepo.ListByOwner(userID, true)
	if err != nil {
		return nil, err
	}
	catalog, err := s.couponRepo.ListActiveCatalog()
	if err != nil {
		return nil, err
	}
	return append(owned, catalog...), nil
}

// ProfileStats 推荐档案统计
type ProfileStats struct {
	ReferralCode  string       `json:"referral_code"`
	TotalReferred int64        `json:"total_referred"`
	TotalDiscount models.Money `json:"total_discount"`
	ShareURL      string       `json:"share_url"`
}

// Stats 查询用户的推荐统计
func (s *ReferralService) Stats(userID uint) (*ProfileStats, error) {
	profile, err := s.EnsureProfile(userID)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountUsagesByProfile(profile.ID)
	if err != nil {
		return nil, err
	}
	sum, err := s.repo.SumDiscountByProfile(profile.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileStats{
		ReferralCode:  profile.ReferralCode,
		TotalReferred: count,
		TotalDiscount: models.NewMoneyFromDecimal(sum),
		ShareURL:      s.ShareURL(profile.ReferralCode),
	}, nil
}

// ShareURL 构造带推荐码的落地页链接
func (s *ReferralService) ShareURL(code string) string {
	base := strings.TrimRight(strings.TrimSpace(s.cfg.ShareBaseURL), "/")
	if base == "" {
		base = "https://dhobigo.in"
	}
	return fmt.Sprintf("%s/?ref=%s", base, strings.ToUpper(strings.TrimSpace(code)))
}

func generateReferralCode(phone string) (string, error) {
	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	suffix := digits
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}

	var builder strings.Builder
	builder.WriteString(suffix)
	max := big.NewInt(int64(len(alphabet)))
	for builder.Len() < referralCodeLength {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}

	code := builder.String()
	if len(code) > referralCodeLength {
		code = code[:referralCodeLength]
	}
	return code, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
