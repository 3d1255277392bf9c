package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dhobigo/internal/config"
	"github.com/dhobigo/internal/constants"
	"github.com/dhobigo/internal/models"
)

// couponRemoteClient 远端优惠码校验客户端
type couponRemoteClient struct {
	url        string
	httpClient *http.Client
}

type couponRemoteRequest struct {
	CouponCode  string       `json:"couponCode"`
	UserID      uint         `json:"userId"`
	OrderAmount models.Money `json:"orderAmount"`
}

type couponRemoteResponse struct {
	Success bool           `json:"success"`
	Coupon  *models.Coupon `json:"coupon,omitempty"`
	Message string         `json:"message,omitempty"`
}

func newCouponRemoteClient(cfg config.CouponConfig) *couponRemoteClient {
	url := strings.TrimSpace(cfg.ValidateURL)
	if url == "" {
		return nil
	}
	timeout := time.Duration(cfg.ValidateTimeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &couponRemoteClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Validate 调用远端校验接口，网络失败与畸形响应返回 error 由调用方降级
func (c *couponRemoteClient) Validate(ctx context.Context, code string, userID uint, orderAmount models.Money) (*CouponValidation, error) {
	payload := couponRemoteRequest{
		CouponCode:  strings.ToUpper(strings.TrimSpace(code)),
		UserID:      userID,
		OrderAmount: orderAmount,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("coupon validate endpoint returned %d", resp.StatusCode)
	}

	var remote couponRemoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		return nil, fmt.Errorf("decode coupon validate response: %w", err)
	}

	result := &CouponValidation{
		Valid:   remote.Success,
		Coupon:  remote.Coupon,
		Message: remote.Message,
		Source:  constants.ValidationSourceRemote,
	}
	if remote.Success {
		result.Discount = CalculateDiscount(remote.Coupon, orderAmount)
	} else {
		result.Reason = ErrCouponInvalid
	}
	return result, nil
}
