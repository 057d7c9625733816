package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/alantheprice/pagewright/pkg/prompts"
	"github.com/alantheprice/pagewright/pkg/ui"
	"github.com/alantheprice/pagewright/pkg/utils"
)

// HTTPProvider talks to the hosted generation collaborator over JSON.
type HTTPProvider struct {
	URL     string
	APIKey  string
	Client  *http.Client
	Backoff *utils.TransportBackoff

	// Quiet suppresses the user-facing retry notices; tests set it.
	Quiet bool
}

// NewHTTPProvider returns a provider for the given endpoint with default
// timeouts and retry bounds.
func NewHTTPProvider(url, apiKey string) *HTTPProvider {
	return &HTTPProvider{
		URL:     url,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: 120 * time.Second},
		Backoff: utils.NewTransportBackoff(),
	}
}

// Name identifies the provider in config and logs.
func (p *HTTPProvider) Name() string { return "http" }

// Generate posts the request and returns the assistant text. Transport-level
// failures (network errors and gateway statuses) are retried with linear
// backoff up to the configured bound. Application-level statuses are never
// retried: 429 and 402 come back as their sentinel errors immediately.
func (p *HTTPProvider) Generate(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}

	backoff := p.Backoff
	if backoff == nil {
		backoff = utils.NewTransportBackoff()
	}

	var lastErr error
	for attempt := 0; attempt < backoff.MaxAttempts; attempt++ {
		content, retryable, err := p.once(ctx, payload)
		if err == nil {
			return content, nil
		}
		if !retryable {
			return "", err
		}

		lastErr = err
		if !backoff.ShouldRetry(attempt) {
			break
		}
		if !p.Quiet {
			ui.Out().Print(prompts.RetryingTransport(attempt+1, backoff.MaxAttempts, backoff.Delay(attempt)) + "\n")
		}
		backoff.Wait(attempt)
	}

	return "", fmt.Errorf("generation backend unavailable after %d attempts: %w", backoff.MaxAttempts, lastErr)
}

// once performs a single POST. The middle return says whether the failure was
// transport-level and therefore worth another attempt.
func (p *HTTPProvider) once(ctx context.Context, payload []byte) (content string, retryable bool, err error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("failed to build generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16*1024*1024))
	if err != nil {
		return "", true, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retry, cerr := classifyStatus(resp.StatusCode, statusError(resp.StatusCode, body))
		return "", retry, cerr
	}

	var decoded Response
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", false, fmt.Errorf("failed to decode generation response: %w", err)
	}
	if decoded.Error != "" {
		// Some deployments return 200 with the failure embedded in the
		// message, status digits included.
		retry, cerr := classifyStatus(StatusFromMessage(decoded.Error),
			fmt.Errorf("generation failed: %s", decoded.Error))
		return "", retry, cerr
	}
	if strings.TrimSpace(decoded.Content) == "" {
		return "", false, ErrEmptyResponse
	}
	return decoded.Content, false, nil
}

// classifyStatus folds a status code into the retry decision and the sentinel
// error taxonomy. Gateway statuses count as transport failures; rate and
// quota statuses are surfaced immediately.
func classifyStatus(status int, err error) (retryable bool, out error) {
	switch status {
	case http.StatusTooManyRequests:
		return false, fmt.Errorf("%w: %v", ErrRateLimited, err)
	case http.StatusPaymentRequired:
		return false, fmt.Errorf("%w: %v", ErrPaymentRequired, err)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, err
	}
	return false, err
}

func statusError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 300 {
		msg = msg[:300]
	}
	if msg == "" {
		return fmt.Errorf("backend returned status %d", status)
	}
	return fmt.Errorf("backend returned status %d: %s", status, msg)
}

var statusInMessageRegex = regexp.MustCompile(`\b(4\d\d|5\d\d)\b`)

// StatusFromMessage digs a numeric status out of a collaborator error
// message, e.g. "Request failed with status 429". Zero when none is found.
func StatusFromMessage(msg string) int {
	m := statusInMessageRegex.FindString(msg)
	if m == "" {
		return 0
	}
	var status int
	fmt.Sscanf(m, "%d", &status)
	return status
}
