package remote_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dredimura/surface/pkg/adapters/memory"
	"github.com/dredimura/surface/pkg/adapters/remote"
	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/host"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, licenses ...memory.License) (*memory.Authority, *remote.Client) {
	t.Helper()
	authority := memory.NewAuthority(licenses)
	srv := httptest.NewServer(remote.NewHandler(authority, nil))
	t.Cleanup(srv.Close)
	return authority, remote.NewClient(srv.URL + "/")
}

func TestClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	authority, client := newServer(t, memory.License{Code: "SOLO-0001"})

	// 1. Activate
	res := client.Activate(ctx, "solo-0001", "m1")
	require.Equal(t, domain.StatusValid, res.Status)
	require.NotNil(t, res.Info)
	assert.Equal(t, "m1", res.Info.MachineID)
	assert.Equal(t, 1, authority.Activations("SOLO-0001"))

	// 2. Seat exhausted for another machine
	assert.Equal(t, domain.StatusMaxReached, client.Activate(ctx, "SOLO-0001", "m2").Status)

	// 3. Validate then revoke
	assert.Equal(t, domain.StatusValid, client.Validate(ctx, "SOLO-0001", "m1").Status)
	authority.Revoke("SOLO-0001")
	assert.Equal(t, domain.StatusRevoked, client.Validate(ctx, "SOLO-0001", "m1").Status)
}

func TestClient_Deactivate(t *testing.T) {
	ctx := context.Background()
	authority, client := newServer(t, memory.License{Code: "SOLO-0001"})

	require.Equal(t, domain.StatusValid, client.Activate(ctx, "SOLO-0001", "m1").Status)
	assert.Equal(t, domain.StatusValid, client.Deactivate(ctx, "SOLO-0001", "m1").Status)
	assert.Equal(t, 0, authority.Activations("SOLO-0001"))
}

func TestClient_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("Unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		client := remote.NewClient(url)
		assert.Equal(t, domain.StatusNetworkError, client.Activate(ctx, "X", "m1").Status)
	})

	t.Run("ServerError", func(t *testing.T) {
		r := chi.NewRouter()
		r.Post("/v1/licenses/{op}", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		})
		srv := httptest.NewServer(r)
		defer srv.Close()

		assert.Equal(t, domain.StatusServerError, remote.NewClient(srv.URL).Activate(ctx, "X", "m1").Status)
	})

	t.Run("Garbage", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}))
		defer srv.Close()

		assert.Equal(t, domain.StatusServerError, remote.NewClient(srv.URL).Validate(ctx, "X", "m1").Status)
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"status":"suspended"}`))
		}))
		defer srv.Close()

		assert.Equal(t, domain.StatusUnknown, remote.NewClient(srv.URL).Validate(ctx, "X", "m1").Status)
	})

	t.Run("Timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()

		client := remote.NewClient(srv.URL, remote.WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
		assert.Equal(t, domain.StatusNetworkError, client.Activate(ctx, "X", "m1").Status)
	})
}

func TestHandler_BadRequests(t *testing.T) {
	h := remote.NewHandler(memory.NewAuthority(nil), nil)

	// 1. Unknown operation
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/licenses/extend", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 2. Malformed body
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/licenses/activate", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"invalid"`)

	// 3. Health
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

// Host licensing keeps its record when the server cannot be reached.
func TestClient_HostLicensingOffline(t *testing.T) {
	ctx := context.Background()
	authority := memory.NewAuthority([]memory.License{{Code: "SOLO-0001"}})
	srv := httptest.NewServer(remote.NewHandler(authority, nil))

	store := memory.NewStore()
	lic := host.NewLicensing(remote.NewClient(srv.URL), store, "m1")

	require.Equal(t, string(domain.StatusValid), lic.Activate(ctx, "SOLO-0001").Status)

	srv.Close()
	assert.Equal(t, domain.StatusNetworkError, lic.Validate(ctx))
	assert.True(t, lic.State(ctx).IsActivated)
}
