package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/i474232898/weather-sync/internal/errors"
	"github.com/i474232898/weather-sync/internal/weather"
)

func nominatimServer(t *testing.T, path, body string, status int) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, path, r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "en", r.Header.Get("Accept-Language"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestResolveNamePreference(t *testing.T) {
	testCases := []struct {
		name string
		body string
		want string
	}{
		{"city", `{"display_name":"Roma, Lazio, Italia","address":{"city":"Roma","town":"Other"}}`, "Roma"},
		{"town", `{"display_name":"Tivoli, Lazio, Italia","address":{"town":"Tivoli"}}`, "Tivoli"},
		{"display name", `{"display_name":"Campagna Romana, Lazio, Italia","address":{}}`, "Campagna Romana"},
		{"nothing", `{"address":{}}`, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := nominatimServer(t, "/reverse", tc.body, http.StatusOK)
			g := NewNominatimGeocoderWithURL(testHTTPConfig(), srv.URL)
			assert.Equal(t, tc.want, g.ResolveName(context.Background(), weather.Coordinates{Latitude: 41.9, Longitude: 12.5}))
		})
	}
}

func TestResolveNameRequestParameters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "37.774900", q.Get("lat"))
		assert.Equal(t, "-122.419400", q.Get("lon"))
		assert.Equal(t, "10", q.Get("zoom"))
		_, _ = w.Write([]byte(`{"address":{"city":"San Francisco"}}`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoderWithURL(testHTTPConfig(), srv.URL)
	assert.Equal(t, "San Francisco", g.ResolveName(context.Background(), weather.Coordinates{Latitude: 37.7749, Longitude: -122.4194}))
}

func TestResolveNameSwallowsFailures(t *testing.T) {
	srv, _ := nominatimServer(t, "/reverse", `oops`, http.StatusInternalServerError)
	g := NewNominatimGeocoderWithURL(testHTTPConfig(), srv.URL)
	assert.Equal(t, "", g.ResolveName(context.Background(), weather.Coordinates{}))

	srv, _ = nominatimServer(t, "/reverse", `not json`, http.StatusOK)
	g = NewNominatimGeocoderWithURL(testHTTPConfig(), srv.URL)
	assert.Equal(t, "", g.ResolveName(context.Background(), weather.Coordinates{}))
}

func TestResolveQuerySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Paris", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[{"lat":"48.8534951","lon":"2.3483915","display_name":"Paris, Île-de-France, France métropolitaine, France"}]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoderWithURL(testHTTPConfig(), srv.URL)
	place, err := g.ResolveQuery(context.Background(), "  Paris ")
	require.NoError(t, err)

	assert.Equal(t, "Paris", place.Name)
	assert.InDelta(t, 48.8534951, place.Coordinates.Latitude, 1e-9)
	assert.InDelta(t, 2.3483915, place.Coordinates.Longitude, 1e-9)
}

func TestResolveQueryNotFound(t *testing.T) {
	srv, _ := nominatimServer(t, "/search", `[]`, http.StatusOK)
	g := NewNominatimGeocoderWithURL(testHTTPConfig(), srv.URL)

	_, err := g.ResolveQuery(context.Background(), "Nonexistentplace123")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
	assert.Equal(t, "place not found", apperrors.MessageOf(err))
}

func TestResolveQueryNetworkFailures(t *testing.T) {
	testCases := []struct {
		name   string
		body   string
		status int
	}{
		{"status", `[]`, http.StatusServiceUnavailable},
		{"decode", `{`, http.StatusOK},
		{"bad lat", `[{"lat":"north","lon":"2","display_name":"X"}]`, http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := nominatimServer(t, "/search", tc.body, tc.status)
			g := NewNominatimGeocoderWithURL(testHTTPConfig(), srv.URL)
			_, err := g.ResolveQuery(context.Background(), "X")
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeNetwork), "got %v", err)
		})
	}
}

func TestResolveQueryBlankMakesNoRequest(t *testing.T) {
	srv, calls := nominatimServer(t, "/search", `[]`, http.StatusOK)
	g := NewNominatimGeocoderWithURL(testHTTPConfig(), srv.URL)

	for _, q := range []string{"", "   "} {
		_, err := g.ResolveQuery(context.Background(), q)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidInput))
	}
	assert.EqualValues(t, 0, atomic.LoadInt32(calls))
}
