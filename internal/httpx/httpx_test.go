package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetBody(t *testing.T) {
	t.Parallel()

	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		require.Equal(t, "metalquotes/1.0", r.Header.Get("User-Agent"))
		require.Equal(t, "v", r.Header.Get("X-Test"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	// Act
	b, err := New(time.Second).GetBody(context.Background(), srv.URL, map[string]string{"X-Test": "v"}, "")

	// Assert
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(b))
}

func TestGetBody_StatusErrorRedactsURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(strings.Repeat("x", 5000)))
	}))
	defer srv.Close()

	_, err := New(time.Second).GetBody(context.Background(), srv.URL+"?api_key=secret", nil, srv.URL)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusTooManyRequests, se.Code)
	require.Len(t, se.Body, 2<<10)
	require.NotContains(t, err.Error(), "secret")
}

func TestGetBody_TransportErrorRedactsURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(time.Second).GetBody(context.Background(), url+"?api_key=secret", nil, "metalprice")

	require.Error(t, err)
	require.NotContains(t, err.Error(), "secret")
}
