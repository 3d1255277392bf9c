package service

import "errors"

// 服务层哨兵错误，handler 层负责映射为响应码与文案
var (
	ErrNotFound           = errors.New("record not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user is disabled")
	ErrPhoneExists        = errors.New("phone already registered")
	ErrInvalidPhone       = errors.New("invalid phone number")
	ErrInvalidPassword    = errors.New("invalid password")

	ErrCouponNotFound    = errors.New("coupon not found")
	ErrCouponInactive    = errors.New("coupon is no longer active")
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrCouponAlreadyUsed = errors.New("coupon has already been used")
	ErrCouponFirstOnly   = errors.New("coupon is valid for first orders only")
	ErrCouponNotFirst    = errors.New("coupon is not valid for first orders")
	ErrCouponMinAmount   = errors.New("minimum order amount not reached")
	ErrCouponNotOwned    = errors.New("coupon belongs to another user")
	ErrCouponInvalid     = errors.New("invalid coupon")

	ErrReferralCodeInvalid     = errors.New("invalid referral code")
	ErrReferralNotFirst        = errors.New("referral discount is valid for first orders only")
	ErrReferralSelfUse         = errors.New("own referral code cannot be used")
	ErrReferralProfileInactive = errors.New("referral profile is inactive")

	ErrBookingNotFound      = errors.New("booking not found")
	ErrBookingNotCancelable = errors.New("booking can no longer be canceled")
	ErrBookingEmptyItems    = errors.New("booking has no items")
	ErrBookingStatusInvalid = errors.New("invalid booking status transition")
	ErrServiceTypeInvalid   = errors.New("unknown service type")
	ErrAddressNotFound      = errors.New("address not found")
	ErrAddressIncomplete    = errors.New("address line, city and pincode are required")

	ErrCaptchaRequired      = errors.New("captcha is required")
	ErrCaptchaInvalid       = errors.New("captcha verification failed")
	ErrCaptchaConfigInvalid = errors.New("captcha is not configured")
)
