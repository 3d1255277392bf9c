package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dhobigo/internal/config"
	"github.com/dhobigo/internal/constants"
	"github.com/dhobigo/internal/models"
)

func TestValidateRemoteSuccess(t *testing.T) {
	db := openServiceTestDB(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req couponRemoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode remote request failed: %v", err)
		}
		if req.CouponCode != "NEW10" {
			t.Errorf("remote coupon code want NEW10 got %q", req.CouponCode)
		}
		json.NewEncoder(w).Encode(couponRemoteResponse{
			Success: true,
			Coupon: &models.Coupon{
				Code:            "NEW10",
				DiscountPercent: models.NewMoneyFromInt(10),
			},
		})
	}))
	defer server.Close()

	svc := newCouponServiceForTest(t, db, config.CouponConfig{
		RemoteValidation: true,
		ValidateURL:      server.URL,
	})

	result, err := svc.Validate(context.Background(), "new10", 1, models.NewMoneyFromInt(500))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected remote valid, got %q", result.Message)
	}
	if result.Source != constants.ValidationSourceRemote {
		t.Fatalf("source want remote got %q", result.Source)
	}
	if result.Degraded {
		t.Fatalf("expected not degraded")
	}
	if result.Discount.String() != "50.00" {
		t.Fatalf("discount want 50.00 got %s", result.Discount.String())
	}
}

func TestValidateRemoteRejection(t *testing.T) {
	db := openServiceTestDB(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(couponRemoteResponse{
			Success: false,
			Message: "Invalid coupon code: NEW10",
		})
	}))
	defer server.Close()

	svc := newCouponServiceForTest(t, db, config.CouponConfig{
		RemoteValidation: true,
		ValidateURL:      server.URL,
	})

	// 远端明确拒绝不降级为本地
	result, err := svc.Validate(context.Background(), "NEW10", 1, models.NewMoneyFromInt(500))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if result.Valid {
		t.Fatalf("expected rejection")
	}
	if result.Source != constants.ValidationSourceRemote {
		t.Fatalf("source want remote got %q", result.Source)
	}
	if result.Degraded {
		t.Fatalf("rejection is not a degradation")
	}
	if !errors.Is(result.Reason, ErrCouponInvalid) {
		t.Fatalf("reason want ErrCouponInvalid, got %v", result.Reason)
	}
}

func TestValidateRemoteFallsBackToLocal(t *testing.T) {
	db := openServiceTestDB(t)
	createTestCoupon(t, db, models.Coupon{
		Code:            "NEW10",
		DiscountPercent: models.NewMoneyFromInt(10),
		IsActive:        true,
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := newCouponServiceForTest(t, db, config.CouponConfig{
		RemoteValidation: true,
		ValidateURL:      server.URL,
	})

	result, err := svc.Validate(context.Background(), "NEW10", 1, models.NewMoneyFromInt(500))
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !result.Valid {
		t.Fatalf("expected local fallback valid, got %q", result.Message)
	}
	if result.Source != constants.ValidationSourceLocal {
		t.Fatalf("source want local got %q", result.Source)
	}
	if !result.Degraded {
		t.Fatalf("expected degraded flag on fallback")
	}
	if result.Discount.String() != "50.00" {
		t.Fatalf("discount want 50.00 got %s", result.Discount.String())
	}
}
