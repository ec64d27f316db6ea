// internal/agents/weather/provider.go
package weather

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "mock-agents/internal/common/errors"
	commonhttp "mock-agents/internal/common/http"
	"mock-agents/internal/common/logger"
	"mock-agents/internal/common/metrics"
)

const (
	PersonaName   = "weather"
	stageGeocode  = "geocode"
	stageForecast = "forecast"
)

var (
	ErrNoLocation    = errors.New("NO_LOCATION")
	ErrBadCoordinate = errors.New("BAD_COORDINATE")
	ErrNoForecastURL = errors.New("NO_FORECAST_URL")
	ErrNoPeriods     = errors.New("NO_FORECAST_PERIODS")
)

// Provider chains a geocode lookup and a forecast lookup. There is no
// synthetic weather: a failed stage is returned as a StandardError.
type Provider struct {
	config   *Config
	geocode  *commonhttp.Client
	forecast *commonhttp.Client
	logger   logger.Logger
	tracer   trace.Tracer
}

func NewProvider(config *Config, log logger.Logger) *Provider {
	return &Provider{
		config:  config,
		geocode: commonhttp.NewClient(config.GeocodeTimeout, commonhttp.WithUserAgent(config.GeocodeUserAgent)),
		forecast: commonhttp.NewClient(config.ForecastTimeout,
			commonhttp.WithUserAgent(config.ForecastUserAgent),
			commonhttp.WithAccept("application/geo+json"),
		),
		logger: log.With(map[string]interface{}{
			"component": "forecast-provider",
		}),
		tracer: otel.Tracer("mock-agents/weather"),
	}
}

// Fetch returns the first forecast period for city. Errors carry
// LOCATION_NOT_FOUND or FORECAST_UNAVAILABLE.
func (p *Provider) Fetch(ctx context.Context, city string) (*Forecast, error) {
	ctx, span := p.tracer.Start(ctx, "weather.fetch_forecast",
		trace.WithAttributes(attribute.String("city", city)))
	defer span.End()

	loc, err := p.locate(ctx, city)
	if err != nil {
		return nil, p.fail(span, stageGeocode, apperrors.NewLocationNotFoundError(city, err))
	}

	forecast, err := p.lookupForecast(ctx, loc)
	if err != nil {
		stdErr := apperrors.NewForecastUnavailableError(city, err).
			WithMetadata("latitude", loc.Latitude).
			WithMetadata("longitude", loc.Longitude)
		return nil, p.fail(span, stageForecast, stdErr)
	}
	forecast.City = city

	p.logger.Info("forecast fetched", map[string]interface{}{
		"city":   city,
		"place":  loc.DisplayName,
		"period": forecast.PeriodName,
	})
	return forecast, nil
}

func (p *Provider) fail(span trace.Span, stage string, stdErr *apperrors.StandardError) error {
	code := stdErr.Code
	if commonhttp.IsTimeout(stdErr) {
		stdErr.WithMetadata("timeout", true)
	}
	metrics.ProviderFallbacks.WithLabelValues(PersonaName, stage, string(code)).Inc()
	span.RecordError(stdErr)
	span.SetStatus(codes.Error, string(code))

	fields := stdErr.Fields()
	fields["stage"] = stage
	p.logger.Warn("weather lookup failed", fields)
	return stdErr
}

func (p *Provider) locate(ctx context.Context, city string) (*Location, error) {
	defer observe(stageGeocode, time.Now())

	params := url.Values{}
	params.Set("q", city)
	params.Set("format", "json")
	params.Set("limit", "1")
	endpoint := fmt.Sprintf("%s/search?%s", p.config.GeocodeBaseURL, params.Encode())

	var results []geocodeResult
	if err := p.geocode.GetJSON(ctx, endpoint, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoLocation
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: lat %q", ErrBadCoordinate, results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: lon %q", ErrBadCoordinate, results[0].Lon)
	}
	return &Location{Latitude: lat, Longitude: lon, DisplayName: results[0].DisplayName}, nil
}

func (p *Provider) lookupForecast(ctx context.Context, loc *Location) (*Forecast, error) {
	defer observe(stageForecast, time.Now())

	// The points API rejects more than four decimal places.
	pointsURL := fmt.Sprintf("%s/points/%.4f,%.4f", p.config.ForecastBaseURL, loc.Latitude, loc.Longitude)

	var points pointsResponse
	if err := p.forecast.GetJSON(ctx, pointsURL, &points); err != nil {
		return nil, err
	}
	if points.Properties.Forecast == "" {
		return nil, ErrNoForecastURL
	}

	var fc forecastResponse
	if err := p.forecast.GetJSON(ctx, points.Properties.Forecast, &fc); err != nil {
		return nil, err
	}
	if len(fc.Properties.Periods) == 0 {
		return nil, ErrNoPeriods
	}

	period := fc.Properties.Periods[0]
	description := period.DetailedForecast
	if description == "" {
		description = period.ShortForecast
	}
	if description == "" {
		return nil, ErrNoPeriods
	}

	return &Forecast{
		Location:    *loc,
		PeriodName:  period.Name,
		Description: description,
	}, nil
}

func observe(stage string, start time.Time) {
	metrics.ProviderDuration.WithLabelValues(PersonaName, stage).Observe(time.Since(start).Seconds())
}
