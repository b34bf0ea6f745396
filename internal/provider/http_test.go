package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPBackendTranslate(t *testing.T) {
	var got httpTranslateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(httpTranslateResponse{TranslatedText: "hola"})
	}))
	defer srv.Close()

	b := NewHTTPBackend(srv.URL, "key", srv.Client())
	out, err := b.Translate(context.Background(), "hello", "es")

	require.NoError(t, err)
	assert.Equal(t, "hola", out)
	assert.Equal(t, httpTranslateRequest{Q: "hello", Source: "auto", Target: "es", Format: "text", APIKey: "key"}, got)
}

func TestHTTPBackendErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantRejected bool
	}{
		{name: "bad request is rejected", status: http.StatusBadRequest, body: `{"error":"unsupported"}`, wantRejected: true},
		{name: "forbidden is rejected", status: http.StatusForbidden, body: `{"error":"bad key"}`, wantRejected: true},
		{name: "server error is transient", status: http.StatusInternalServerError, body: "oops"},
		{name: "rate limit is transient", status: http.StatusTooManyRequests, body: "slow down"},
		{name: "garbage body is transient", status: http.StatusOK, body: "<html>"},
		{name: "error field is rejected", status: http.StatusOK, body: `{"error":"language not supported"}`, wantRejected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewHTTPBackend(srv.URL, "", srv.Client()).Translate(context.Background(), "hello", "es")

			require.Error(t, err)
			assert.Equal(t, tt.wantRejected, errors.Is(err, ErrRejected), "error: %v", err)

			var statusErr *StatusError
			if tt.status != http.StatusOK {
				require.True(t, errors.As(err, &statusErr))
				assert.Equal(t, tt.status, statusErr.StatusCode)
			}
		})
	}
}

func TestHTTPBackendNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPBackend(url, "", nil).Translate(context.Background(), "hello", "es")

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRejected))
}

func TestIsRetryableStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{408, true},
		{429, true},
		{500, true},
		{503, true},
		{599, true},
	}

	for _, tt := range tests {
		if got := IsRetryableStatus(tt.code); got != tt.want {
			t.Errorf("IsRetryableStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
