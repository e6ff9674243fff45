package sheets

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/beautysoda/quoteapi/internal/config"
	"github.com/beautysoda/quoteapi/internal/domain"
	"github.com/beautysoda/quoteapi/pkg/errors"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(config.SheetsConfig{Endpoint: srv.URL + "/exec"}, zap.NewNop())
}

func TestSubmitQuerySendsParams(t *testing.T) {
	var got url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","message":"saved"}`))
	})

	resp, err := client.SubmitQuery(context.Background(), domain.Payload{
		"quoteNumber": "BS20261019001",
		"totalPrice":  23500,
		"contactName": "王 小明",
	})
	require.NoError(t, err)
	assert.True(t, resp.Accepted())
	assert.Equal(t, "BS20261019001", got.Get("quoteNumber"))
	assert.Equal(t, "23500", got.Get("totalPrice"))
	assert.Equal(t, "王 小明", got.Get("contactName"))
}

func TestSubmitBodySendsJSON(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	_, err := client.SubmitBody(context.Background(), domain.Payload{"quoteNumber": "BS1", "totalPrice": 999})
	require.NoError(t, err)
	assert.Equal(t, "BS1", got["quoteNumber"])
	assert.Equal(t, float64(999), got["totalPrice"])
}

func TestResponseErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"forbidden", http.StatusForbidden, "denied", func(t *testing.T, err error) {
			var cfg *errors.ErrConfiguration
			require.True(t, stderrors.As(err, &cfg))
			assert.Equal(t, http.StatusForbidden, cfg.StatusCode)
		}},
		{"not found", http.StatusNotFound, "", func(t *testing.T, err error) {
			assert.Equal(t, errors.CategoryConfiguration, errors.CategoryOf(err))
		}},
		{"server", http.StatusInternalServerError, "boom", func(t *testing.T, err error) {
			var srv *errors.ErrServer
			require.True(t, stderrors.As(err, &srv))
			assert.Equal(t, 500, srv.StatusCode)
			assert.Equal(t, "boom", srv.Message)
		}},
		{"html sign-in page", http.StatusOK, "<html>Sign in</html>", func(t *testing.T, err error) {
			assert.Equal(t, errors.CategoryConfiguration, errors.CategoryOf(err))
		}},
		{"failure status", http.StatusOK, `{"status":"error","message":"sheet locked"}`, func(t *testing.T, err error) {
			var srv *errors.ErrServer
			require.True(t, stderrors.As(err, &srv))
			assert.Equal(t, "sheet locked", srv.Message)
		}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
				_, _ = w.Write([]byte(c.body))
			})
			_, err := client.SubmitQuery(context.Background(), domain.Payload{"a": "b"})
			require.Error(t, err)
			c.check(t, err)
		})
	}
}

func TestProbeTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Probe(ctx)
	var netErr *errors.ErrNetwork
	require.True(t, stderrors.As(err, &netErr))
	assert.True(t, netErr.Timeout)
	assert.Equal(t, errors.CategoryTimeout, errors.CategoryOf(err))
}

func TestQueryURLRejectsRelativeEndpoint(t *testing.T) {
	client := NewClient(config.SheetsConfig{Endpoint: "/exec"}, zap.NewNop())
	_, err := client.QueryURL(domain.Payload{"a": "b"})
	assert.Error(t, err)
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	client := NewClient(config.SheetsConfig{Endpoint: endpoint}, zap.NewNop())
	_, err := client.Probe(context.Background())
	assert.Equal(t, errors.CategoryNetwork, errors.CategoryOf(err))
}
