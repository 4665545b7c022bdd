// Package dashboard is the thin front-end for salesd: an API client for the
// forecast endpoint plus text, chart and web renderings of its result.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"salesd/pkg/types"
)

// DefaultAPIURL is used when API_URL is unset.
const DefaultAPIURL = "http://localhost:8000"

// APIURLFromEnv returns API_URL or DefaultAPIURL.
func APIURLFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("API_URL")); v != "" {
		return v
	}
	return DefaultAPIURL
}

// APIError is returned for any non-200 answer from the prediction service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Failed: status %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Client calls the prediction service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for baseURL. A zero timeout leaves the transport
// default in place.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the service base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Forecast posts the raw date string to /predict/prophet/. The date is not
// validated locally; the service decides whether it parses.
func (c *Client) Forecast(ctx context.Context, date string) (types.Forecast, error) {
	body, err := json.Marshal(types.ForecastRequest{Date: date})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict/prophet/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read forecast response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	var fc types.Forecast
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	return fc, nil
}
