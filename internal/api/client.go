package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// AccessKeyHeader carries the admission credential on seat-protected calls.
const AccessKeyHeader = "X-Access-Key"

const requestIDHeader = "X-Request-ID"

// KeyProvider looks up the stored admission credential for a concert. The
// queue package's key store implements it.
type KeyProvider interface {
	AccessKey(concertID int64) (string, bool)
}

// Client talks to the ticketing platform's REST API. It attaches the bearer
// token on every call and the per-concert access key on protected calls.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	keys    KeyProvider
	logger  *slog.Logger
}

func NewClient(baseURL, token string, keys KeyProvider) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
		keys:    keys,
		logger:  slog.Default(),
	}
	if exp, err := TokenExpiry(token); err == nil && time.Until(exp) < 5*time.Minute {
		c.logger.Warn("session token expires soon", "expiresAt", exp)
	}
	return c
}

// do runs one platform request. protectedConcert, when non-zero, marks the
// call as seat-protected: the stored access key for that concert is attached
// if present; if absent the call still goes out and the server decides.
func (c *Client) do(ctx context.Context, method, path string, protectedConcert int64, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if protectedConcert != 0 {
		if key, ok := c.keys.AccessKey(protectedConcert); ok {
			req.Header.Set(AccessKeyHeader, key)
		} else {
			// Not a hard precondition: the server rejects with 403 if the
			// key is actually required for this concert.
			c.logger.Warn("no access key stored for protected call",
				"concertID", protectedConcert, "path", path)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%s %s: %w", method, path, ErrAccessDenied)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %w", method, path, &APIError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		})
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func readErrorMessage(body io.Reader) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
