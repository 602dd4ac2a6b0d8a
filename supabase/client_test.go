package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/questforge/gateway/app_errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSONSetsKeyHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "secret-key", 5*time.Second)
	var result struct {
		Ok bool `json:"ok"`
	}
	err := client.DoJSON(context.Background(), http.MethodPost, "/rest/v1/things",
		map[string]string{"Prefer": "return=representation"},
		map[string]string{"k": "v"}, &result)
	require.NoError(t, err)
	require.True(t, result.Ok)
}

func TestDoJSONStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		w.Write([]byte(`{"message":"no rows"}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "k", 5*time.Second)
	err := client.DoJSON(context.Background(), http.MethodGet, "/rest/v1/things", nil, nil, nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusNotAcceptable, statusErr.Status)
	require.Contains(t, string(statusErr.Body), "no rows")
}

func TestDoJSONServerErrorIsDependencyUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, "k", 5*time.Second)
	err := client.DoJSON(context.Background(), http.MethodGet, "/rest/v1/things", nil, nil, nil)
	require.Error(t, err)
	require.Equal(t, app_errors.CodeDependencyUnavailable, app_errors.Kind(err))
}

func TestDoJSONTransportErrorIsDependencyUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, "k", time.Second)
	err := client.DoJSON(context.Background(), http.MethodGet, "/anything", nil, nil, nil)
	require.Error(t, err)
	require.Equal(t, app_errors.CodeDependencyUnavailable, app_errors.Kind(err))
}
