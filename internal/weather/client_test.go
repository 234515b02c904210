package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSuccess(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{
			"response": {"version": "0.1"},
			"current_observation": {"weather": "Clear"}
		}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	data, err := client.Fetch(context.Background(), "97201", []string{"conditions", "forecast"})
	require.NoError(t, err)

	assert.Equal(t, "/test-key/conditions/forecast/q/97201.json", gotPath)
	assert.Contains(t, data, "current_observation")
}

func TestFetchDefaultsToAutoDetect(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"response": {}, "current_observation": {}}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	_, err := client.Fetch(context.Background(), "", []string{"conditions"})
	require.NoError(t, err)
	assert.Equal(t, "/test-key/conditions/q/autoip.json", gotPath)
}

func TestFetchErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"response": {
				"error": {"type": "keynotfound", "description": "this key does not exist"}
			}
		}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad-key")
	_, err := client.Fetch(context.Background(), "autoip", []string{"conditions"})

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "this key does not exist", upstream.Description)
}

func TestFetchEmptyPayload(t *testing.T) {
	cases := map[string]string{
		"empty object":  `{}`,
		"envelope only": `{"response": {"version": "0.1"}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, body)
			}))
			defer srv.Close()

			client := NewClient(srv.URL, "test-key")
			_, err := client.Fetch(context.Background(), "autoip", []string{"conditions"})

			var upstream *UpstreamError
			require.ErrorAs(t, err, &upstream)
			assert.Equal(t, "empty response", upstream.Description)
		})
	}
}

func TestFetchBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, `not json`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	for i := 0; i < 10; i++ {
		_, err := client.Fetch(context.Background(), "autoip", []string{"conditions"})
		require.Error(t, err)
	}

	// The breaker trips after five consecutive failures; later calls must
	// be rejected without reaching the upstream.
	assert.Equal(t, int64(5), hits.Load())
}
