package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HTTPGateway talks to a hosted checkout API:
// POST {BaseURL}/v1/checkout/sessions -> {"id": "...", "url": "..."}.
type HTTPGateway struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

func NewHTTPGateway(baseURL, apiKey string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGateway{BaseURL: baseURL, APIKey: apiKey, Timeout: timeout}
}

func (g *HTTPGateway) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	if err := ctx.Err(); err != nil {
		return Session{}, err
	}
	timeout := g.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}

	a := fiber.Post(g.BaseURL + "/v1/checkout/sessions")
	if g.APIKey != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+g.APIKey)
	}
	a.JSON(req).Timeout(timeout)

	var out Session
	code, body, errs := a.Struct(&out)
	if len(errs) > 0 {
		return Session{}, fmt.Errorf("create session: %w", errors.Join(errs...))
	}
	if code < 200 || code >= 300 {
		return Session{}, fmt.Errorf("create session: status %d: %s", code, truncate(body, 200))
	}
	if out.URL == "" {
		return Session{}, errors.New("create session: response carried no redirect url")
	}
	return out, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
