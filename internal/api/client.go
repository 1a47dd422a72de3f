package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"mattter-gateway/internal/logger"
)

const defaultTimeout = 10 * time.Second

// CredentialSource supplies the auth token for outgoing calls. The session
// store implements it; handing the client a source instead of a raw string
// keeps credentials out of shared mutable defaults.
type CredentialSource interface {
	Token() string
}

// StaticToken is a CredentialSource holding a fixed token. Empty means
// anonymous.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Client talks to the Mattter backend REST API. All business rules live
// upstream; the client's job is wire plumbing plus mapping responses onto
// the error taxonomy.
type Client struct {
	baseURL string
	httpc   *http.Client
	creds   CredentialSource
	timeout time.Duration
}

// New builds a Client for the given backend base URL. A zero timeout falls
// back to 10s; every call is bounded so session resolution can never hang.
func New(baseURL string, timeout time.Duration, creds CredentialSource) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if creds == nil {
		creds = StaticToken("")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		creds:   creds,
		timeout: timeout,
	}
}

// WithCredentials returns a copy of the client bound to a different
// credential source. Used by the gateway to scope a request to one session.
func (c *Client) WithCredentials(creds CredentialSource) *Client {
	cp := *c
	cp.creds = creds
	return &cp
}

// BaseURL reports the configured backend address.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tok := c.creds.Token(); tok != "" {
		req.Header.Set("Authorization", "Token "+tok)
	}

	op := method + " " + path
	logger.ExternalServiceCall("mattter-api", op)
	resp, err := c.httpc.Do(req)
	if err != nil {
		nerr := &NetworkError{Op: op, Err: err}
		logger.ExternalServiceResult("mattter-api", op, nerr)
		return nerr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		nerr := &NetworkError{Op: op, Err: err}
		logger.ExternalServiceResult("mattter-api", op, nerr)
		return nerr
	}

	if resp.StatusCode >= 400 {
		rerr := c.errorFor(resp.StatusCode, raw)
		logger.ExternalServiceResult("mattter-api", op, rerr, "status", resp.StatusCode)
		return rerr
	}
	logger.ExternalServiceResult("mattter-api", op, nil, "status", resp.StatusCode)

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorFor maps an upstream status and body onto the error taxonomy.
// 401 means the token was rejected; 403 is a rejection of the action, not
// of the session.
func (c *Client) errorFor(status int, raw []byte) error {
	reason := extractReason(raw)
	switch {
	case status == http.StatusUnauthorized:
		return &AuthError{Reason: reason}
	case status == http.StatusNotFound:
		return &NotFoundError{Resource: "resource"}
	case status >= 500:
		if reason == "" {
			reason = "upstream error"
		}
		return &ServerRejection{StatusCode: status, Reason: reason}
	default:
		if reason == "" {
			reason = http.StatusText(status)
		}
		return &ServerRejection{StatusCode: status, Reason: reason}
	}
}

// extractReason pulls a human-readable reason out of the backend's various
// error body shapes: {"error": ...}, {"detail": ...} or DRF's
// {"non_field_errors": [...]} / field-keyed lists.
func extractReason(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var shaped struct {
		Error          string   `json:"error"`
		Detail         string   `json:"detail"`
		NonFieldErrors []string `json:"non_field_errors"`
	}
	if err := json.Unmarshal(raw, &shaped); err == nil {
		switch {
		case shaped.Error != "":
			return shaped.Error
		case shaped.Detail != "":
			return shaped.Detail
		case len(shaped.NonFieldErrors) > 0:
			return shaped.NonFieldErrors[0]
		}
	}
	var fields map[string][]string
	if err := json.Unmarshal(raw, &fields); err == nil {
		// Deterministic pick when several fields carry messages.
		keys := make([]string, 0, len(fields))
		for field := range fields {
			keys = append(keys, field)
		}
		sort.Strings(keys)
		for _, field := range keys {
			if msgs := fields[field]; len(msgs) > 0 {
				return field + ": " + msgs[0]
			}
		}
	}
	return strings.TrimSpace(string(raw))
}
