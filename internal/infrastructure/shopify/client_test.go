package shopify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shopmirror/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points an AdminClient at an httptest server and replaces the
// retry sleep with a recorder so tests finish instantly.
func newTestClient(t *testing.T, srv *httptest.Server, retry RetryConfig) (*AdminClient, *[]time.Duration) {
	t.Helper()

	var waits []time.Duration
	client := NewAdminClientWithOptions(srv.Client(), "2024-01", retry, zerolog.Nop())
	client.scheme = "http"
	client.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return client, &waits
}

func testCredential(srv *httptest.Server) domain.Credential {
	return domain.Credential{
		ShopDomain:  strings.TrimPrefix(srv.URL, "http://"),
		AccessToken: "shpat_test",
	}
}

func TestAdminClient_Query(t *testing.T) {
	t.Run("returns the data object on success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
			assert.Contains(t, r.URL.Path, "/admin/api/2024-01/graphql.json")
			w.Write([]byte(`{"data":{"shop":{"name":"test"}}}`))
		}))
		defer srv.Close()

		client, _ := newTestClient(t, srv, DefaultRetryConfig())
		data, err := client.Query(context.Background(), testCredential(srv), "query {}", nil)

		require.NoError(t, err)
		assert.JSONEq(t, `{"shop":{"name":"test"}}`, string(data))
	})

	t.Run("keeps data on partial success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"customers":{"edges":[]}},"errors":[{"message":"field deprecated"}]}`))
		}))
		defer srv.Close()

		client, _ := newTestClient(t, srv, DefaultRetryConfig())
		data, err := client.Query(context.Background(), testCredential(srv), "query {}", nil)

		require.NoError(t, err)
		assert.JSONEq(t, `{"customers":{"edges":[]}}`, string(data))
	})

	t.Run("surfaces GraphQL errors when no data came back", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":null,"errors":[{"message":"syntax error"},{"message":"unknown field"}]}`))
		}))
		defer srv.Close()

		client, _ := newTestClient(t, srv, DefaultRetryConfig())
		_, err := client.Query(context.Background(), testCredential(srv), "query {}", nil)

		require.Error(t, err)
		var gqlErr *domain.GraphQLError
		require.ErrorAs(t, err, &gqlErr)
		assert.Equal(t, []string{"syntax error", "unknown field"}, gqlErr.Messages)
	})

	t.Run("retries 429 honoring the Retry-After hint", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.Header().Set("Retry-After", "2.5")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`{"data":{"ok":true}}`))
		}))
		defer srv.Close()

		client, waits := newTestClient(t, srv, DefaultRetryConfig())
		data, err := client.Query(context.Background(), testCredential(srv), "query {}", nil)

		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, string(data))
		assert.Equal(t, 2, calls)
		require.Len(t, *waits, 1)
		assert.Equal(t, 2500*time.Millisecond, (*waits)[0])
	})

	t.Run("backs off exponentially without a Retry-After hint", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`{"data":{"ok":true}}`))
		}))
		defer srv.Close()

		client, waits := newTestClient(t, srv, DefaultRetryConfig())
		_, err := client.Query(context.Background(), testCredential(srv), "query {}", nil)

		require.NoError(t, err)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *waits)
	})

	t.Run("gives up after the attempt budget", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client, _ := newTestClient(t, srv, RetryConfig{MaxAttempts: 3, BaseBackoff: time.Second})
		_, err := client.Query(context.Background(), testCredential(srv), "query {}", nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client, _ := newTestClient(t, srv, DefaultRetryConfig())
		_, err := client.Query(context.Background(), testCredential(srv), "query {}", nil)

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrUpstreamUnavailable)
		assert.Equal(t, 1, calls)
	})
}

func TestParseRetryAfter(t *testing.T) {
	assert.Nil(t, parseRetryAfter(""))
	assert.Nil(t, parseRetryAfter("soon"))
	assert.Nil(t, parseRetryAfter("-1"))

	d := parseRetryAfter("2.0")
	require.NotNil(t, d)
	assert.Equal(t, 2*time.Second, *d)
}

func TestCleanShopDomain(t *testing.T) {
	assert.Equal(t, "shop.myshopify.com", cleanShopDomain("https://shop.myshopify.com/"))
	assert.Equal(t, "shop.myshopify.com", cleanShopDomain("shop.myshopify.com"))
}
