package senders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

const (
	userAgent       = "notifykit/1.0"
	maxErrorBody    = 200
	maxResponseRead = 64 << 10
)

// HTTPOption configures the HTTP-backed senders.
type HTTPOption func(*httpOptions)

type httpOptions struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

// WithHTTPClient replaces the shared HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(o *httpOptions) {
		if c != nil {
			o.client = c
		}
	}
}

// WithBaseURL overrides the provider API root for senders that call a fixed
// API (Telegram, WhatsApp, Firebase). Webhook-style senders ignore it.
func WithBaseURL(u string) HTTPOption {
	return func(o *httpOptions) {
		if u != "" {
			o.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithRequestTimeout bounds each provider call. Default is 10 seconds.
func WithRequestTimeout(d time.Duration) HTTPOption {
	return func(o *httpOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func newHTTPOptions(defaultBase string, opts []HTTPOption) httpOptions {
	o := httpOptions{
		client:  defaultHTTPClient,
		baseURL: defaultBase,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

var defaultHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

// postJSON makes one POST attempt. Any non-2xx status is a failure carrying
// the status and a truncated, single-line response body.
func (o httpOptions) postJSON(ctx context.Context, ch notifications.Channel, endpoint string, payload any, headers map[string]string) error {
	if err := validateEndpoint(endpoint); err != nil {
		return sendFailed(ch, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return sendFailed(ch, fmt.Errorf("marshal payload: %w", err))
	}

	reqCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return sendFailed(ch, fmt.Errorf("create request: %w", stripURL(err)))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return sendFailed(ch, stripURL(err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseRead))
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseRead))
	return sendFailed(ch, statusError(resp.StatusCode, respBody))
}

func statusError(code int, body []byte) error {
	msg := fmt.Sprintf("provider returned status %d", code)
	if len(body) > 0 {
		s := strings.ReplaceAll(string(body), "\n", " ")
		if len(s) > maxErrorBody {
			s = s[:maxErrorBody] + "..."
		}
		msg += ": " + s
	}
	return fmt.Errorf("%s", msg)
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSetting, stripURL(err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https URLs are supported", ErrInvalidSetting)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: URL host is required", ErrInvalidSetting)
	}
	return nil
}

// stripURL drops the request URL from *url.Error. Provider URLs can carry
// credentials (the Telegram bot token is a path segment), and send errors end
// up in logs and stored delivery records.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s request: %w", strings.ToLower(ue.Op), ue.Err)
	}
	return err
}
