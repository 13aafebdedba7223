package carrier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func regionServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/v1/network-country", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestHTTPProvider(t *testing.T) {
	srv, hits := regionServer(t, http.StatusOK, `{"network_country_iso":"np"}`)
	p := NewHTTPProvider("host", srv.URL+"/", "/v1/network-country", time.Second, 3, time.Minute)

	code, err := p.RegionCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "np", code)
	assert.EqualValues(t, 1, hits.Load())
}

func TestHTTPProviderEmptyCountry(t *testing.T) {
	srv, _ := regionServer(t, http.StatusOK, `{"network_country_iso":""}`)
	p := NewHTTPProvider("host", srv.URL, "/v1/network-country", time.Second, 1, time.Hour)

	_, err := p.RegionCode(context.Background())
	require.ErrorIs(t, err, ErrEmptyCode)
	assert.False(t, p.Ready(), "empty answer counts as a failure")

	empty, _ := regionServer(t, http.StatusOK, `{}`)
	q := NewHTTPProvider("empty", empty.URL, "/v1/network-country", time.Second, 10, time.Minute)

	code, err := NewLocator([]Provider{q}, 2, "us", nil).RegionCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "us", code)

	_, err = NewLocator([]Provider{q}, 2, "", nil).RegionCode(context.Background())
	require.ErrorIs(t, err, ErrNoRegion)
	require.ErrorIs(t, err, ErrEmptyCode)
}

func TestLocatorFailsOver(t *testing.T) {
	bad, badHits := regionServer(t, http.StatusServiceUnavailable, `{}`)
	good, _ := regionServer(t, http.StatusOK, `{"network_country_iso":"gb"}`)

	l := NewLocator([]Provider{
		NewHTTPProvider("bad", bad.URL, "/v1/network-country", time.Second, 3, time.Minute),
		NewHTTPProvider("good", good.URL, "/v1/network-country", time.Second, 3, time.Minute),
	}, 2, "", zap.NewNop())

	code, err := l.RegionCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "gb", code)
	assert.EqualValues(t, 1, badHits.Load())
}

func TestLocatorFallback(t *testing.T) {
	bad, _ := regionServer(t, http.StatusInternalServerError, `{}`)
	p := NewHTTPProvider("bad", bad.URL, "/v1/network-country", time.Second, 3, time.Minute)

	code, err := NewLocator([]Provider{p}, 2, "us", nil).RegionCode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "us", code)

	_, err = NewLocator([]Provider{p}, 2, "", nil).RegionCode(context.Background())
	require.ErrorIs(t, err, ErrNoRegion)

	_, err = NewLocator(nil, 1, "", nil).RegionCode(context.Background())
	require.ErrorIs(t, err, ErrNoRegion)
	require.ErrorIs(t, err, ErrNoHealthy)
}

func TestLocatorSkipsOpenBreaker(t *testing.T) {
	bad, badHits := regionServer(t, http.StatusBadGateway, `{}`)
	good, _ := regionServer(t, http.StatusOK, `{"network_country_iso":"de"}`)

	badProvider := NewHTTPProvider("bad", bad.URL, "/v1/network-country", time.Second, 1, time.Hour)
	_, err := badProvider.RegionCode(context.Background())
	require.Error(t, err)
	require.False(t, badProvider.Ready())

	l := NewLocator([]Provider{
		badProvider,
		NewHTTPProvider("good", good.URL, "/v1/network-country", time.Second, 3, time.Minute),
	}, 1, "", nil)

	for i := 0; i < 3; i++ {
		code, err := l.RegionCode(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "de", code)
	}
	assert.EqualValues(t, 1, badHits.Load())
}

func TestLocatorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocator(nil, 1, "us", nil).RegionCode(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestBreaker(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	b := NewBreaker(2, time.Minute)
	b.now = func() time.Time { return now }

	require.True(t, b.Acquire())
	b.Failure()
	assert.Equal(t, "closed", b.State())
	b.Failure()
	assert.Equal(t, "open", b.State())
	assert.False(t, b.Ready())
	assert.False(t, b.Acquire())

	now = now.Add(2 * time.Minute)
	assert.True(t, b.Ready())
	require.True(t, b.Acquire())
	assert.Equal(t, "half-open", b.State())
	assert.False(t, b.Acquire(), "only one trial call")

	b.Failure()
	assert.Equal(t, "open", b.State())

	now = now.Add(2 * time.Minute)
	require.True(t, b.Acquire())
	b.Success()
	assert.Equal(t, "closed", b.State())
	assert.True(t, b.Ready())
}
