package public

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/laptop-next/internal/payment/zalopay"
	"github.com/laptop-next/internal/provider"
	"github.com/laptop-next/internal/service"

	"github.com/gin-gonic/gin"
)

func callbackTestHandler() *Handler {
	return &Handler{Container: &provider.Container{
		PaymentService: service.NewPaymentService(nil, nil, nil, nil, nil),
	}}
}

func TestPaymentCallbackRejectMalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", strings.NewReader(`not-json`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h := callbackTestHandler()
	h.PaymentCallback(c)

	if w.Code != http.StatusOK {
		t.Fatalf("callback must answer 200, got %d", w.Code)
	}
	var resp struct {
		ReturnCode int `json:"return_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.ReturnCode != zalopay.AckInvalidMac {
		t.Fatalf("return_code want %d got %d", zalopay.AckInvalidMac, resp.ReturnCode)
	}
}

func TestPaymentCallbackRejectBadSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback",
		strings.NewReader(`{"data":"{\"app_trans_id\":\"240901_X\"}","mac":"deadbeef"}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	h := callbackTestHandler()
	h.PaymentCallback(c)

	if w.Code != http.StatusOK {
		t.Fatalf("callback must answer 200, got %d", w.Code)
	}
	var resp struct {
		ReturnCode    int    `json:"return_code"`
		ReturnMessage string `json:"return_message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.ReturnCode != zalopay.AckInvalidMac {
		t.Fatalf("return_code want %d got %d", zalopay.AckInvalidMac, resp.ReturnCode)
	}
}
