package zalopay

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSignDeterministic(t *testing.T) {
	key := "key1-test"
	data := "2553|250901_ORDER-20250901-AB12CD|guest|30000000|1756700000000|{}|[]"

	first := Sign(key, data)
	second := Sign(key, data)
	if first != second {
		t.Fatalf("signature not deterministic: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}

	other := Sign("key1-other", data)
	if other == first {
		t.Fatal("different keys must produce different signatures")
	}
}

func TestBuildAppTransID(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	got := BuildAppTransID(now, "ORDER-20260901-AB12CD")
	want := "260901_ORDER-20260901-AB12CD"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestVerifyCallback(t *testing.T) {
	cfg := &Config{
		AppID:      "2553",
		Key1:       "key1-test",
		Key2:       "key2-test",
		GatewayURL: "https://sb-openapi.zalopay.vn",
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"app_id":       2553,
		"app_trans_id": "260901_ORDER-20260901-AB12CD",
		"amount":       30000000,
		"zp_trans_id":  260901000000123,
	})
	data := string(payload)
	mac := Sign(cfg.Key2, data)

	if err := VerifyCallback(cfg, data, mac); err != nil {
		t.Fatalf("valid callback rejected: %v", err)
	}

	if err := VerifyCallback(cfg, data, Sign("wrong-key", data)); err == nil {
		t.Fatal("tampered mac accepted")
	}

	// data 被篡改后原 mac 必须失效
	if err := VerifyCallback(cfg, data+" ", mac); err == nil {
		t.Fatal("tampered data accepted")
	}

	if err := VerifyCallback(cfg, data, ""); err == nil {
		t.Fatal("empty mac accepted")
	}
}

func TestParseCallback(t *testing.T) {
	data := `{"app_id":2553,"app_trans_id":"260901_ORDER-20260901-AB12CD","amount":30000000,"zp_trans_id":260901000000123,"app_user":"user42"}`
	cb, err := ParseCallback(data)
	if err != nil {
		t.Fatalf("parse callback failed: %v", err)
	}
	if cb.AppTransID != "260901_ORDER-20260901-AB12CD" {
		t.Fatalf("unexpected app_trans_id: %s", cb.AppTransID)
	}
	if cb.Amount != 30000000 {
		t.Fatalf("unexpected amount: %d", cb.Amount)
	}
	if cb.ZPTransID != 260901000000123 {
		t.Fatalf("unexpected zp_trans_id: %d", cb.ZPTransID)
	}
}

func TestParseCallbackRejectsMissingTransID(t *testing.T) {
	if _, err := ParseCallback(`{"amount":100}`); err == nil {
		t.Fatal("expected error for missing app_trans_id")
	}
	if _, err := ParseCallback(`not-json`); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestValidateConfig(t *testing.T) {
	cases := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"nil", nil, true},
		{"missing app id", &Config{Key1: "a", Key2: "b", GatewayURL: "https://x"}, true},
		{"missing key1", &Config{AppID: "1", Key2: "b", GatewayURL: "https://x"}, true},
		{"missing key2", &Config{AppID: "1", Key1: "a", GatewayURL: "https://x"}, true},
		{"missing gateway", &Config{AppID: "1", Key1: "a", Key2: "b"}, true},
		{"ok", &Config{AppID: "1", Key1: "a", Key2: "b", GatewayURL: "https://x"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateConfig(tc.cfg)
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
