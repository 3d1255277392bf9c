package service

import (
	"fmt"
	"net/url"
)

// SocialShareLinks 各渠道分享链接
type SocialShareLinks struct {
	WhatsApp string `json:"whatsapp"`
	Twitter  string `json:"twitter"`
	Facebook string `json:"facebook"`
	Telegram string `json:"telegram"`
	SMS      string `json:"sms"`
	Email    string `json:"email"`
}

// GenerateSocialShareLinks 生成带推荐码的各渠道分享链接
// 纯字符串模板，参数统一做百分号转义
func GenerateSocialShareLinks(shareURL, code string) SocialShareLinks {
	message := fmt.Sprintf("Get 50%% off your first laundry order with DhobiGo! Use my referral code %s when you sign up: %s", code, shareURL)
	encodedMessage := url.QueryEscape(message)
	encodedURL := url.QueryEscape(shareURL)
	subject := url.QueryEscape("50% off your first DhobiGo order")

	return SocialShareLinks{
		WhatsApp: fmt.Sprintf("https://wa.me/?text=%s", encodedMessage),
		Twitter:  fmt.Sprintf("https://twitter.com/intent/tweet?text=%s", encodedMessage),
		Facebook: fmt.Sprintf("https://www.facebook.com/sharer/sharer.php?u=%s&quote=%s", encodedURL, encodedMessage),
		Telegram: fmt.Sprintf("https://t.me/share/url?url=%s&text=%s", encodedURL, encodedMessage),
		SMS:      fmt.Sprintf("sms:?body=%s", encodedMessage),
		Email:    fmt.Sprintf("mailto:?subject=%s&body=%s", subject, encodedMessage),
	}
}
