package public

import (
	"errors"

	"github.com/dhobigo/internal/http/response"
	"github.com/dhobigo/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var bookingCommonErrorRules = []mappedHandlerError{
	{target: service.ErrAddressNotFound, code: response.CodeBadRequest, msg: "address not found"},
	{target: service.ErrBookingEmptyItems, code: response.CodeBadRequest, msg: "at least one item is required"},
	{target: service.ErrServiceTypeInvalid, code: response.CodeBadRequest, msg: "unknown service type"},
	{target: service.ErrCouponNotFound, code: response.CodeBadRequest, msg: "Invalid coupon code"},
	{target: service.ErrCouponInactive, code: response.CodeBadRequest, msg: "This coupon is no longer active"},
	{target: service.ErrCouponExpired, code: response.CodeBadRequest, msg: "This coupon has expired"},
	{target: service.ErrCouponAlreadyUsed, code: response.CodeBadRequest, msg: "This coupon has already been used"},
	{target: service.ErrCouponFirstOnly, code: response.CodeBadRequest, msg: "This coupon is valid for first orders only"},
	{target: service.ErrCouponNotFirst, code: response.CodeBadRequest, msg: "This coupon is not valid for first orders"},
	{target: service.ErrCouponMinAmount, code: response.CodeBadRequest, msg: "Minimum order amount not reached"},
	{target: service.ErrCouponNotOwned, code: response.CodeBadRequest, msg: "Invalid coupon code"},
	{target: service.ErrCouponInvalid, code: response.CodeBadRequest, msg: "invalid coupon"},
	{target: service.ErrReferralCodeInvalid, code: response.CodeBadRequest, msg: "invalid referral code"},
	{target: service.ErrReferralProfileInactive, code: response.CodeBadRequest, msg: "referral code is no longer active"},
	{target: service.ErrReferralSelfUse, code: response.CodeBadRequest, msg: "you cannot use your own referral code"},
	{target: service.ErrReferralNotFirst, code: response.CodeBadRequest, msg: "referral discount is valid for first orders only"},
}

func respondBookingError(c *gin.Context, err error, fallbackMsg string) {
	// 优惠码拒绝原样透出校验文案，与报价接口保持一致
	var rejected *service.CouponRejectedError
	if errors.As(err, &rejected) && rejected.Message != "" {
		respondError(c, response.CodeBadRequest, rejected.Message, nil)
		return
	}
	respondWithMappedError(c, err, bookingCommonErrorRules, response.CodeInternal, fallbackMsg)
}
