package handlers_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/payments"
)

// Bursts on the availability API return 429.
func TestRateLimits(t *testing.T) {
	ta := newTestApp(t, payments.Stub{})

	var limited bool
	entries := captureLogs(t, func() {
		for i := 0; i < 16; i++ {
			resp := ta.get(t, "/api/v1/availability?productId=p-kettle", "")
			if i < 15 && resp.StatusCode == http.StatusTooManyRequests {
				t.Fatalf("hit rate limit too early at %d", i)
			}
			if i == 15 {
				limited = resp.StatusCode == http.StatusTooManyRequests
			}
		}
	})
	if !limited {
		t.Fatal("expected 429 after limit")
	}
	if !hasAction(entries, "rate.availability.hit") {
		t.Fatalf("expected rate.availability.hit log, got %+v", entries)
	}
}

// Oversized POST bodies are rejected with 413.
func TestBodySizeLimit(t *testing.T) {
	ta := newTestApp(t, payments.Stub{})

	oversize := bytes.Repeat([]byte("A"), (1<<20)+10)
	req := httptest.NewRequest("POST", "/cart", bytes.NewReader(oversize))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: ta.csrf})
	resp, err := ta.app.Test(req)
	// fasthttp may refuse the body before a response is produced
	if err != nil {
		if strings.Contains(err.Error(), "body size exceeds") || strings.Contains(err.Error(), "too large") {
			return
		}
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 413 for oversize, got %d body=%s", resp.StatusCode, string(b))
	}
}
