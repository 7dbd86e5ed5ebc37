// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of a failed response is read for diagnostics.
const maxErrorBody = 64 << 10

// StatusError is returned by PostJSON for any non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string

	// Message is the service's own error message, taken from a Google-style
	// {"error":{"message":...}} body. Empty when the body carried none.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.StatusText()
}

// StatusText returns the reason phrase for the response, e.g. "Too Many Requests".
func (e *StatusError) StatusText() string {
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	if _, reason, ok := strings.Cut(e.Status, " "); ok {
		return reason
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// DecodeError is returned by PostJSON when a 2xx body does not decode into
// the caller's value.
type DecodeError struct {
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// errorEnvelope is the error body shape used by Google APIs.
type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// PostJSON marshals in, POSTs it to url exactly once and decodes a 2xx
// response body into out. There is no retry: a non-2xx response yields a
// *StatusError, a body that does not decode yields a *DecodeError, and
// transport failures are returned as is.
func PostJSON(ctx context.Context, client *http.Client, url string, header http.Header, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		se := &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
		var env errorEnvelope
		if json.Unmarshal(data, &env) == nil {
			se.Message = env.Error.Message
		}
		return se
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}
