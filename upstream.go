package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type upstreamError struct {
	Status int
	Body   string
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("upstream responded with status %d", e.Status)
}

type upstream struct {
	host    string
	timeout time.Duration
	client  *http.Client
}

func newUpstream(host string, timeout time.Duration) *upstream {
	return &upstream{
		host:    host,
		timeout: timeout,
		client:  &http.Client{},
	}
}

func (u *upstream) ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.host, nil)
	if err != nil {
		return false
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode < http.StatusInternalServerError
}

func (u *upstream) newRequest(ctx context.Context, path string, method string, body any) (*http.Request, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	path, err = url.JoinPath(u.host, path)
	if err != nil {
		return nil, fmt.Errorf("build upstream url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, path, bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// post sends body as JSON and returns the raw response payload. Any status
// outside 2xx is reported as *upstreamError.
func (u *upstream) post(ctx context.Context, path string, body any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	req, err := u.newRequest(ctx, path, http.MethodPost, body)
	if err != nil {
		return nil, err
	}
	if id, ok := ctx.Value(contextRequestIDKey).(string); ok && id != "" {
		req.Header.Set(requestIDHeader, id)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &upstreamError{Status: resp.StatusCode, Body: truncate(string(data), 512)}
	}
	return data, nil
}

// asJSON returns data unchanged when it is already JSON, otherwise the
// payload encoded as a JSON string.
func asJSON(data []byte) []byte {
	if len(bytes.TrimSpace(data)) > 0 && json.Valid(data) {
		return data
	}
	encoded, err := json.Marshal(string(data))
	if err != nil {
		return []byte(`""`)
	}
	return encoded
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
