package network

import (
	"context"
	"io"
	"net/http"
	"strings"
)

// RoundTripperFunc allows us to easily mock http.Client responses in tests.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// NewResponse builds a canned response with a JSON content type.
func NewResponse(statusCode int, body string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     header,
	}
}

// MockTokenProvider hands out a fixed test token.
type MockTokenProvider struct{}

func (MockTokenProvider) Token(context.Context) (string, bool) {
	return "test-token", true
}
