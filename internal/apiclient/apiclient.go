// Package apiclient holds the JSON request plumbing shared by the upstream
// analysis service clients.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// maxErrorBody caps how much of a failed response is read for the detail field.
const maxErrorBody = 64 << 10

// Error is a failed call to an upstream service. Error() renders the
// message shown to users: "<Service> API Error: <detail or cause>".
type Error struct {
	Service    string
	StatusCode int
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Detail
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return e.Service + " API Error: " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the user-facing text for err. Service errors render with
// their service prefix; anything else falls back to err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

// NewHTTPClient returns an http.Client with the given per-call timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// PostJSON marshals in, POSTs it to url and decodes a 2xx response into out.
func PostJSON(ctx context.Context, hc *http.Client, service, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return eris.Wrapf(err, "%s: marshal request", strings.ToLower(service))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return eris.Wrapf(err, "%s: create request", strings.ToLower(service))
	}
	req.Header.Set("Content-Type", "application/json")

	return do(hc, req, service, out)
}

// GetJSON issues a GET to url and decodes a 2xx response into out.
func GetJSON(ctx context.Context, hc *http.Client, service, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return eris.Wrapf(err, "%s: create request", strings.ToLower(service))
	}
	return do(hc, req, service, out)
}

func do(hc *http.Client, req *http.Request, service string, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return &Error{Service: service, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Service:    service,
			StatusCode: resp.StatusCode,
			Detail:     extractDetail(raw),
			Err:        eris.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Service: service, StatusCode: resp.StatusCode, Err: eris.Wrap(err, "decode response")}
	}
	return nil
}

// extractDetail pulls the "detail" field out of an error body. String
// details are returned as-is; structured details (validation error lists)
// are returned as compact JSON.
func extractDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}
	if string(payload.Detail) == "null" {
		return ""
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, payload.Detail); err != nil {
		return ""
	}
	return buf.String()
}
