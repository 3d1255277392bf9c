package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const defaultPendingReferralTTL = 7 * 24 * time.Hour

// 落地页带 ref/referral 参数但访客尚未注册时，推荐码先按访客标识暂存。
// 每个访客只保留最近一次看到的推荐码，注册消费后清除。

func pendingReferralKey(visitorKey string) string {
	return fmt.Sprintf("referral:pending:%s", visitorKey)
}

// SetPendingReferralCode 暂存访客的待用推荐码
func SetPendingReferralCode(ctx context.Context, visitorKey, code string, ttl time.Duration) error {
	visitorKey = strings.TrimSpace(visitorKey)
	code = strings.TrimSpace(code)
	if visitorKey == "" || code == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultPendingReferralTTL
	}
	return SetString(ctx, pendingReferralKey(visitorKey), code, ttl)
}

// GetPendingReferralCode 读取访客的待用推荐码
func GetPendingReferralCode(ctx context.Context, visitorKey string) (string, bool, error) {
	visitorKey = strings.TrimSpace(visitorKey)
	if visitorKey == "" {
		return "", false, nil
	}
	return GetString(ctx, pendingReferralKey(visitorKey))
}

// ClearPendingReferralCode 清除访客的待用推荐码
func ClearPendingReferralCode(ctx context.Context, visitorKey string) error {
	visitorKey = strings.TrimSpace(visitorKey)
	if visitorKey == "" {
		return nil
	}
	return Del(ctx, pendingReferralKey(visitorKey))
}
