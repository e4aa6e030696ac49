package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/timvw/rao-eval/internal/model"
)

// newHTTPClient returns a client whose requests are bounded by timeout.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// endpoint joins a base URL and an API path without doubling slashes.
func endpoint(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + path
}

// postJSON encodes payload as JSON, POSTs it to url and decodes a 2xx reply
// into out. The User-Agent header is always set; headers may add to or
// override it. Non-2xx replies return *StatusError.
func postJSON(ctx context.Context, client *http.Client, url string, payload any, headers map[string]string, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request for %s: %w", url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}
	merged := map[string]string{"User-Agent": UserAgent}
	for k, v := range headers {
		merged[k] = v
	}
	for k, v := range merged {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Code: resp.StatusCode,
			Body: model.Truncate(string(data), maxErrorBody),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", url, err)
	}
	return nil
}
