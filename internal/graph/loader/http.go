package loader

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// MaxDocumentBytes bounds remote graph documents.
const MaxDocumentBytes = 8 << 20

// ErrDocumentTooLarge is returned when a remote document exceeds
// MaxDocumentBytes. Oversized documents are rejected, never truncated.
var ErrDocumentTooLarge = errors.New("graph loader: document exceeds size limit")

func loadHTTP(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, error) {
	if client == nil {
		return nil, errors.New("graph loader: http client is not configured")
	}
	if url == "" {
		return nil, errors.New("graph loader: url is required")
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("graph loader: unexpected status " + resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxDocumentBytes {
		return nil, ErrDocumentTooLarge
	}
	return data, nil
}
