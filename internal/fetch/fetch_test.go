package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_SendsFixedHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Options{
		Timeout: time.Second,
		Headers: map[string]string{
			"User-Agent":      "polyscraper-test",
			"Accept":          "text/html",
			"Accept-Language": "en-US,en;q=0.5",
		},
	})

	status, err := client.Probe(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	assert.Equal(t, "polyscraper-test", got.Get("User-Agent"))
	assert.Equal(t, "text/html", got.Get("Accept"))
	assert.Equal(t, "en-US,en;q=0.5", got.Get("Accept-Language"))
}

func TestProbe_NonOKStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Options{Timeout: time.Second})
	status, err := client.Probe(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
}

func TestProbe_InvalidURL(t *testing.T) {
	client := NewClient(Options{Timeout: time.Second})
	_, err := client.Probe(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestProbe_SpacesConsecutiveRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	delay := 50 * time.Millisecond
	client := NewClient(Options{Timeout: time.Second, Delay: delay})

	start := time.Now()
	_, err := client.Probe(context.Background(), server.URL)
	require.NoError(t, err)
	_, err = client.Probe(context.Background(), server.URL)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), delay)
}

func TestProbe_CancellationDuringDelay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(Options{Timeout: time.Second, Delay: time.Hour})
	_, err := client.Probe(context.Background(), server.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = client.Probe(ctx, server.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
