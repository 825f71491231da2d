package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/i474232898/weather-sync/internal/errors"
	"github.com/i474232898/weather-sync/internal/geo"
	"github.com/i474232898/weather-sync/internal/scheduler"
	"github.com/i474232898/weather-sync/internal/weather"
)

var rome = weather.Coordinates{Latitude: 41.9028, Longitude: 12.4964}

type stubFetcher struct {
	units []weather.Unit
}

func (f *stubFetcher) FetchSnapshot(ctx context.Context, coords weather.Coordinates, unit weather.Unit, knownName string) (weather.WeatherSnapshot, error) {
	f.units = append(f.units, unit)
	return weather.WeatherSnapshot{PlaceName: knownName, Coordinates: coords, Unit: unit}, nil
}

type stubSearcher struct{}

func (stubSearcher) ResolveQuery(ctx context.Context, text string) (weather.Place, error) {
	if text == "Atlantis" {
		return weather.Place{}, apperrors.NotFound("place not found")
	}
	return weather.Place{Coordinates: weather.Coordinates{Latitude: 48.85, Longitude: 2.35}, Name: text}, nil
}

func newTestApp(t *testing.T) (*fiber.App, *scheduler.Scheduler, *stubFetcher) {
	t.Helper()
	f := &stubFetcher{}
	sched := scheduler.New(f, stubSearcher{}, geo.NewResolver(nil, geo.DefaultPositionOptions), scheduler.Options{GeoTimeout: time.Second})
	t.Cleanup(sched.Shutdown)
	require.NoError(t, sched.Start(context.Background(), rome, "Roma"))

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, sched)
	return app, sched, f
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestGetState(t *testing.T) {
	app, _, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/weather/state", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	snap := body["snapshot"].(map[string]interface{})
	assert.Equal(t, "Roma", snap["placeName"])
	assert.Equal(t, false, body["loading"])
	assert.Len(t, snap["forecast"], weather.ForecastDays)
}

func TestSetUnitEndpoint(t *testing.T) {
	app, sched, f := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/weather/unit", `{"unit":"F"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "F", body["unit"])
	assert.Equal(t, []weather.Unit{weather.Celsius, weather.Fahrenheit}, f.units)
	assert.Equal(t, weather.Fahrenheit, sched.State().Unit)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/weather/unit", `{"unit":"kelvin"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/weather/unit", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchEndpoint(t *testing.T) {
	app, sched, _ := newTestApp(t)
	before := sched.State()

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/weather/search", `{"query":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/weather/search", `{"query":"   "}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, before, sched.State())

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/weather/search", `{"query":"Atlantis"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, string(apperrors.ErrCodeNotFound), body["code"])
	assert.Equal(t, "place not found", body["message"])
	assert.Equal(t, before.Snapshot, sched.State().Snapshot)

	resp, body = doJSON(t, app, http.MethodPost, "/api/v1/weather/search", `{"query":"Paris"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Paris", body["snapshot"].(map[string]interface{})["placeName"])
	assert.Nil(t, body["error"])
}

func TestLocateWithoutCapability(t *testing.T) {
	app, sched, _ := newTestApp(t)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/weather/locate", "")
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	assert.Equal(t, string(apperrors.ErrCodeNoCapability), body["code"])

	st := sched.State()
	require.NotNil(t, st.Error)
	assert.Equal(t, apperrors.ErrCodeNoCapability, st.Error.Code)
}

func TestLocationEndpoints(t *testing.T) {
	app, sched, _ := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPut, "/api/v1/weather/location", `{"lat":123,"lon":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPut, "/api/v1/weather/location", `{"lon":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPut, "/api/v1/weather/location", `{"lat":59.91,"lon":10.75,"name":"Oslo"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Oslo", body["snapshot"].(map[string]interface{})["placeName"])

	resp, body = doJSON(t, app, http.MethodDelete, "/api/v1/weather/location", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, body["coordinates"])
	assert.Nil(t, sched.State().Coordinates)
}

func TestRefreshEndpoint(t *testing.T) {
	app, _, f := newTestApp(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/weather/refresh", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, f.units, 2)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, fiber.StatusBadGateway, statusFor(apperrors.ErrCodeNetwork))
	assert.Equal(t, fiber.StatusForbidden, statusFor(apperrors.ErrCodePermissionDenied))
	assert.Equal(t, fiber.StatusInternalServerError, statusFor(""))
}
