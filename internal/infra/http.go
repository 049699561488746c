package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// httpClient is shared by all providers. Keep the timeout generous:
// the Fed Board CSV downloads can be slow.
var httpClient = &http.Client{Timeout: 30 * time.Second}

const userAgent = "liquiditylens/1.0 (+https://github.com/macrolens/liquiditylens)"

// DoGet issues a GET request with the given headers and returns the
// response body and status code. The caller must close the body.
// Non-2xx responses are returned as errors with the body drained.
func DoGet(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		resp.Body.Close()
		return nil, resp.StatusCode, fmt.Errorf("GET %s: unexpected status %d", url, resp.StatusCode)
	}
	return resp.Body, resp.StatusCode, nil
}
