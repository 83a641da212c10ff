// Package scheduling provides a REST client for the external booking widget.
// The workshop rents calendar slots through the widget; when a repair with a
// widget booking reference is cancelled here, the slot is released there.
package scheduling

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"boatyard_backend/internal/repairs/ports"
	"boatyard_backend/platform/config"
)

// Client is an HTTP client for the scheduling widget API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a scheduling widget client from config. Returns nil when
// the integration is not configured; callers treat a nil canceller as
// disabled.
func NewClient(cfg config.SchedulingWidgetConfig) *Client {
	if !cfg.IsSchedulingEnabled() {
		return nil
	}

	return &Client{
		baseURL: cfg.GetSchedulingAPIURL(),
		apiKey:  cfg.GetSchedulingAPIKey(),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CancelBooking releases the widget slot identified by the booking reference.
func (c *Client) CancelBooking(ctx context.Context, bookingRef string) error {
	endpoint := fmt.Sprintf("%s/bookings/%s/cancel", c.baseURL, url.PathEscape(bookingRef))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create cancel request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cancel request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		// The widget already dropped the booking; nothing to release.
		return nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("scheduling widget returned %d: %s", resp.StatusCode, string(body))
	}
}

var _ ports.BookingCanceller = (*Client)(nil)
