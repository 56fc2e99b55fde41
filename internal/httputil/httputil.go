// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by outbound backends.
package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// StatusError reports a non-2xx response from a backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// bodyPreviewLimit caps how much of an error body is kept for messages.
const bodyPreviewLimit = 200

// Do executes req and enforces a 2xx response. Non-2xx responses are
// drained, closed, and reported as *StatusError carrying a short body
// preview. The caller owns the body of a returned successful response.
func Do(client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	preview, _ := io.ReadAll(io.LimitReader(resp.Body, bodyPreviewLimit))
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return nil, &StatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(preview)),
	}
}

// IsTimeout reports whether err represents an exceeded deadline, from
// either the request context or the HTTP client's own timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
