package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dhobigo/internal/config"
	"github.com/dhobigo/internal/constants"
	"github.com/dhobigo/internal/models"
	"github.com/dhobigo/internal/repository"

	"gorm.io/gorm"
)

func newUserAuthServiceForTest(t *testing.T, db *gorm.DB) *UserAuthService {
	t.Helper()
	cfg := &config.Config{}
	cfg.UserJWT.SecretKey = "test-user-jwt-secret-0123456789abcdef"
	cfg.UserJWT.ExpireHours = 1
	return NewUserAuthService(
		cfg,
		repository.NewUserRepository(db),
		newReferralServiceForTest(t, db, config.ReferralConfig{}),
	)
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "9876543210", want: "9876543210"},
		{in: "+91 98765 43210", want: "9876543210"},
		{in: "98765-43210", want: "9876543210"},
		{in: "1234567890", wantErr: true},
		{in: "98765", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, item := range cases {
		got, err := normalizePhone(item.in)
		if item.wantErr {
			if !errors.Is(err, ErrInvalidPhone) {
				t.Fatalf("phone %q want ErrInvalidPhone, got %v", item.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("phone %q normalize failed: %v", item.in, err)
		}
		if got != item.want {
			t.Fatalf("phone %q want %q got %q", item.in, item.want, got)
		}
	}
}

func TestRegister(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newUserAuthServiceForTest(t, db)
	referrer := createTestUser(t, db, "9000007001")
	profile, err := svc.referralService.EnsureProfile(referrer.ID)
	if err != nil {
		t.Fatalf("ensure profile failed: %v", err)
	}

	user, token, _, err := svc.Register(context.Background(), "+91 91234 56789", "secret123", "Asha", profile.ReferralCode, "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Phone != "9123456789" {
		t.Fatalf("phone want normalized got %q", user.Phone)
	}
	if user.ReferredBy != profile.ReferralCode {
		t.Fatalf("referred_by want %q got %q", profile.ReferralCode, user.ReferredBy)
	}
	if user.PasswordHash == "secret123" || user.PasswordHash == "" {
		t.Fatalf("password must be hashed")
	}
	if token == "" {
		t.Fatalf("token want issued")
	}

	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Phone != user.Phone {
		t.Fatalf("claims mismatch: %+v", claims)
	}

	// 重复手机号被拒
	if _, _, _, err := svc.Register(context.Background(), "9123456789", "secret123", "", "", ""); !errors.Is(err, ErrPhoneExists) {
		t.Fatalf("duplicate want ErrPhoneExists, got %v", err)
	}
	// 弱密码被拒
	if _, _, _, err := svc.Register(context.Background(), "9123456780", "123", "", "", ""); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("weak password want ErrInvalidPassword, got %v", err)
	}
	// 畸形推荐码静默忽略
	user, _, _, err = svc.Register(context.Background(), "9123456781", "secret123", "", "##bad##", "")
	if err != nil {
		t.Fatalf("register with bad referral failed: %v", err)
	}
	if user.ReferredBy != "" {
		t.Fatalf("malformed referral code should be dropped, got %q", user.ReferredBy)
	}
}

func TestLogin(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newUserAuthServiceForTest(t, db)

	registered, _, _, err := svc.Register(context.Background(), "9123456789", "secret123", "Asha", "", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, token, _, err := svc.Login("9123456789", "secret123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("user id want %d got %d", registered.ID, user.ID)
	}
	if token == "" {
		t.Fatalf("token want issued")
	}

	if _, _, _, err := svc.Login("9123456789", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password want ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login("9999999999", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown phone want ErrInvalidCredentials, got %v", err)
	}

	if err := db.Model(&models.User{}).Where("id = ?", registered.ID).
		Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, _, _, err := svc.Login("9123456789", "secret123"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("disabled user want ErrUserDisabled, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newUserAuthServiceForTest(t, db)

	user, _, _, err := svc.Register(context.Background(), "9123456789", "secret123", "", "", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := svc.ChangePassword(user.ID, "wrongpass", "newsecret1"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("wrong old password want ErrInvalidPassword, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "secret123", "123"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("weak new password want ErrInvalidPassword, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "secret123", "newsecret1"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, _, _, err := svc.Login("9123456789", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password should be rejected after change")
	}
	if _, _, _, err := svc.Login("9123456789", "newsecret1"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestParseUserJWTRejectsTampered(t *testing.T) {
	db := openServiceTestDB(t)
	svc := newUserAuthServiceForTest(t, db)
	other := newUserAuthServiceForTest(t, db)
	other.cfg = &config.Config{}
	other.cfg.UserJWT.SecretKey = "another-secret-key-9876543210fedcba"

	_, token, _, err := svc.Register(context.Background(), "9123456789", "secret123", "", "", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := other.ParseUserJWT(token); err == nil {
		t.Fatalf("token signed with different secret should be rejected")
	}
	if _, err := svc.ParseUserJWT(token + "x"); err == nil {
		t.Fatalf("tampered token should be rejected")
	}
}
