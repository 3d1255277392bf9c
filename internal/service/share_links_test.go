package service

import (
	"net/url"
	"strings"
	"testing"
)

func TestGenerateSocialShareLinks(t *testing.T) {
	shareURL := "https://dhobigo.in/?ref=3210AB7K"
	links := GenerateSocialShareLinks(shareURL, "3210AB7K")

	encodedURL := url.QueryEscape(shareURL)
	if !strings.HasPrefix(links.WhatsApp, "https://wa.me/?text=") {
		t.Fatalf("whatsapp link malformed: %q", links.WhatsApp)
	}
	if !strings.Contains(links.WhatsApp, "3210AB7K") {
		t.Fatalf("whatsapp link missing code: %q", links.WhatsApp)
	}
	if !strings.Contains(links.WhatsApp, encodedURL) {
		t.Fatalf("whatsapp link missing escaped url: %q", links.WhatsApp)
	}
	if strings.Contains(links.WhatsApp, " ") {
		t.Fatalf("whatsapp link contains raw spaces: %q", links.WhatsApp)
	}

	if !strings.Contains(links.Facebook, "u="+encodedURL) {
		t.Fatalf("facebook link missing url param: %q", links.Facebook)
	}
	if !strings.Contains(links.Telegram, "url="+encodedURL) {
		t.Fatalf("telegram link missing url param: %q", links.Telegram)
	}
	if !strings.HasPrefix(links.SMS, "sms:?body=") {
		t.Fatalf("sms link malformed: %q", links.SMS)
	}
	if !strings.HasPrefix(links.Email, "mailto:?subject=") {
		t.Fatalf("email link malformed: %q", links.Email)
	}

	// 消息内容可以完整还原
	decoded, err := url.QueryUnescape(strings.TrimPrefix(links.WhatsApp, "https://wa.me/?text="))
	if err != nil {
		t.Fatalf("unescape whatsapp text failed: %v", err)
	}
	if !strings.Contains(decoded, "Use my referral code 3210AB7K") {
		t.Fatalf("decoded message missing code sentence: %q", decoded)
	}
	if !strings.Contains(decoded, shareURL) {
		t.Fatalf("decoded message missing share url: %q", decoded)
	}
}
