package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mock-agents/internal/agent"
	apperrors "mock-agents/internal/common/errors"
	"mock-agents/internal/common/logger"
	"mock-agents/internal/common/metrics"
)

// ==========================
// Fake upstream
// ==========================

type fakeUpstream struct {
	server        *httptest.Server
	searchBody    string
	searchStatus  int
	pointsBody    string
	pointsStatus  int
	forecastBody  string
	searchQuery   string
	pointsPath    string
	searchHits    atomic.Int32
	forecastHits  atomic.Int32
	blockForecast bool
}

func newFakeUpstream(t *testing.T) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{
		searchStatus: http.StatusOK,
		searchBody:   `[{"lat":"47.6038321","lon":"-122.330062","display_name":"Seattle, King County, Washington, United States"}]`,
		pointsStatus: http.StatusOK,
		forecastBody: `{"properties":{"periods":[
			{"name":"Tonight","shortForecast":"Light Rain","detailedForecast":"Light rain. Low around 45."},
			{"name":"Tomorrow","shortForecast":"Cloudy","detailedForecast":"Cloudy. High near 55."}]}}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		f.searchHits.Add(1)
		f.searchQuery = r.URL.RawQuery
		assert.Equal(t, "test-geocoder", r.Header.Get("User-Agent"))
		w.WriteHeader(f.searchStatus)
		w.Write([]byte(f.searchBody))
	})
	mux.HandleFunc("/points/", func(w http.ResponseWriter, r *http.Request) {
		f.pointsPath = r.URL.Path
		assert.Equal(t, "application/geo+json", r.Header.Get("Accept"))
		w.WriteHeader(f.pointsStatus)
		body := f.pointsBody
		if body == "" {
			body = fmt.Sprintf(`{"properties":{"forecast":"%s/gridpoints/SEW/125,68/forecast"}}`, f.server.URL)
		}
		w.Write([]byte(body))
	})
	mux.HandleFunc("/gridpoints/", func(w http.ResponseWriter, r *http.Request) {
		f.forecastHits.Add(1)
		if f.blockForecast {
			<-r.Context().Done()
			return
		}
		w.Write([]byte(f.forecastBody))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func createTestConfig(baseURL string) *Config {
	return &Config{
		GeocodeBaseURL:    baseURL,
		GeocodeUserAgent:  "test-geocoder",
		GeocodeTimeout:    2 * time.Second,
		ForecastBaseURL:   baseURL,
		ForecastUserAgent: "test-forecaster",
		ForecastTimeout:   2 * time.Second,
		DefaultCity:       "Seattle",
	}
}

// ==========================
// Provider
// ==========================

func TestProvider_Fetch_Success(t *testing.T) {
	up := newFakeUpstream(t)
	provider := NewProvider(createTestConfig(up.server.URL), logger.NewTestLogger(t))

	forecast, err := provider.Fetch(context.Background(), "Seattle")

	require.NoError(t, err)
	assert.Equal(t, "Seattle", forecast.City)
	assert.Equal(t, "Tonight", forecast.PeriodName)
	assert.Equal(t, "Light rain. Low around 45.", forecast.Description)
	assert.InDelta(t, 47.6038321, forecast.Location.Latitude, 1e-9)
	assert.InDelta(t, -122.330062, forecast.Location.Longitude, 1e-9)
	assert.Equal(t, "/points/47.6038,-122.3301", up.pointsPath)
	assert.Contains(t, up.searchQuery, "q=Seattle")
	assert.Contains(t, up.searchQuery, "format=json")
	assert.Contains(t, up.searchQuery, "limit=1")
}

func TestProvider_Fetch_ShortForecastWhenDetailedMissing(t *testing.T) {
	up := newFakeUpstream(t)
	up.forecastBody = `{"properties":{"periods":[{"name":"Today","shortForecast":"Sunny"}]}}`
	provider := NewProvider(createTestConfig(up.server.URL), logger.NewTestLogger(t))

	forecast, err := provider.Fetch(context.Background(), "Seattle")

	require.NoError(t, err)
	assert.Equal(t, "Sunny", forecast.Description)
}

func TestProvider_Fetch_GeocodeFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "empty result", status: http.StatusOK, body: `[]`},
		{name: "server error", status: http.StatusBadGateway, body: `bad gateway`},
		{name: "malformed body", status: http.StatusOK, body: `{"not":"a list"}`},
		{name: "bad coordinate", status: http.StatusOK, body: `[{"lat":"north","lon":"-122.3","display_name":"x"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := newFakeUpstream(t)
			up.searchStatus = tt.status
			up.searchBody = tt.body
			provider := NewProvider(createTestConfig(up.server.URL), logger.NewTestLogger(t))

			before := testutil.ToFloat64(metrics.ProviderFallbacks.WithLabelValues(PersonaName, stageGeocode, string(apperrors.ErrCodeLocationNotFound)))
			forecast, err := provider.Fetch(context.Background(), "Atlantis")
			after := testutil.ToFloat64(metrics.ProviderFallbacks.WithLabelValues(PersonaName, stageGeocode, string(apperrors.ErrCodeLocationNotFound)))

			assert.Nil(t, forecast)
			assert.Equal(t, apperrors.ErrCodeLocationNotFound, apperrors.CodeOf(err))
			assert.Equal(t, int32(0), up.forecastHits.Load())
			assert.Equal(t, 1.0, after-before)
		})
	}
}

func TestProvider_Fetch_ForecastFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fakeUpstream)
	}{
		{name: "points error", setup: func(f *fakeUpstream) { f.pointsStatus = http.StatusNotFound; f.pointsBody = `{}` }},
		{name: "points without forecast url", setup: func(f *fakeUpstream) { f.pointsBody = `{"properties":{}}` }},
		{name: "no periods", setup: func(f *fakeUpstream) { f.forecastBody = `{"properties":{"periods":[]}}` }},
		{name: "empty period", setup: func(f *fakeUpstream) { f.forecastBody = `{"properties":{"periods":[{"name":"Today"}]}}` }},
		{name: "malformed forecast", setup: func(f *fakeUpstream) { f.forecastBody = `<html>` }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := newFakeUpstream(t)
			tt.setup(up)
			provider := NewProvider(createTestConfig(up.server.URL), logger.NewTestLogger(t))

			forecast, err := provider.Fetch(context.Background(), "Seattle")

			assert.Nil(t, forecast)
			assert.Equal(t, apperrors.ErrCodeForecastUnavailable, apperrors.CodeOf(err))
			assert.Equal(t, int32(1), up.searchHits.Load())
		})
	}
}

func TestProvider_Fetch_ForecastTimeout(t *testing.T) {
	up := newFakeUpstream(t)
	up.blockForecast = true
	config := createTestConfig(up.server.URL)
	config.ForecastTimeout = 50 * time.Millisecond
	provider := NewProvider(config, logger.NewTestLogger(t))

	forecast, err := provider.Fetch(context.Background(), "Seattle")

	assert.Nil(t, forecast)
	assert.Equal(t, apperrors.ErrCodeForecastUnavailable, apperrors.CodeOf(err))
}

// ==========================
// Persona
// ==========================

func TestPersona_Respond(t *testing.T) {
	up := newFakeUpstream(t)
	persona := NewPersona(createTestConfig(up.server.URL), logger.NewTestLogger(t))

	out := persona.Respond(context.Background(), "weather in Seattle")

	assert.Equal(t, agent.StateFormatted, out.State)
	assert.NoError(t, out.Err)
	assert.True(t, strings.HasPrefix(out.Text, "The forecast for Seattle is:"), out.Text)
	assert.Equal(t, "The forecast for Seattle is: Light rain. Low around 45.", out.Text)
}

func TestPersona_Respond_DefaultCity(t *testing.T) {
	up := newFakeUpstream(t)
	persona := NewPersona(createTestConfig(up.server.URL), logger.NewTestLogger(t))

	out := persona.Respond(context.Background(), "what's the forecast?")

	assert.Contains(t, up.searchQuery, "q=Seattle")
	assert.True(t, strings.HasPrefix(out.Text, "The forecast for Seattle is:"))
}

func TestPersona_Respond_LocationNotFound(t *testing.T) {
	up := newFakeUpstream(t)
	up.searchBody = `[]`
	persona := NewPersona(createTestConfig(up.server.URL), logger.NewTestLogger(t))

	out := persona.Respond(context.Background(), "weather in Atlantis")

	assert.Equal(t, agent.StateDataUnresolvable, out.State)
	assert.Equal(t, "Sorry, I couldn't find the location 'Atlantis'.", out.Text)
	assert.Equal(t, apperrors.ErrCodeLocationNotFound, apperrors.CodeOf(out.Err))
}

func TestPersona_Respond_ForecastUnavailable(t *testing.T) {
	up := newFakeUpstream(t)
	up.pointsStatus = http.StatusInternalServerError
	up.pointsBody = `{}`
	persona := NewPersona(createTestConfig(up.server.URL), logger.NewTestLogger(t))

	out := persona.Respond(context.Background(), "weather for Denver")

	assert.Equal(t, agent.StateDataUnresolvable, out.State)
	assert.Equal(t, "Sorry, I couldn't fetch the forecast for Denver.", out.Text)
}
