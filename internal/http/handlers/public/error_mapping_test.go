package public

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/dhobigo/internal/http/response"
	"github.com/dhobigo/internal/service"

	"github.com/gin-gonic/gin"
)

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	return body
}

func TestRespondBookingErrorKeepsRejectionMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	err := &service.CouponRejectedError{
		Message: "Minimum order amount of ₹500 required",
		Reason:  service.ErrCouponMinAmount,
	}
	respondBookingError(c, err, "failed to create booking")

	body := decodeResponse(t, w)
	if body.StatusCode != response.CodeBadRequest {
		t.Fatalf("status_code want %d got %d", response.CodeBadRequest, body.StatusCode)
	}
	if body.Msg != "Minimum order amount of ₹500 required" {
		t.Fatalf("msg want exact rejection text got %q", body.Msg)
	}
}

func TestRespondBookingErrorMappedSentinel(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondBookingError(c, service.ErrCouponExpired, "failed to create booking")

	body := decodeResponse(t, w)
	if body.StatusCode != response.CodeBadRequest {
		t.Fatalf("status_code want %d got %d", response.CodeBadRequest, body.StatusCode)
	}
	if body.Msg != "This coupon has expired" {
		t.Fatalf("msg want mapped text got %q", body.Msg)
	}
}

func TestRespondBookingErrorFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondBookingError(c, errors.New("db gone"), "failed to create booking")

	body := decodeResponse(t, w)
	if body.StatusCode != response.CodeInternal {
		t.Fatalf("status_code want %d got %d", response.CodeInternal, body.StatusCode)
	}
	if body.Msg != "failed to create booking" {
		t.Fatalf("msg want fallback got %q", body.Msg)
	}
}
