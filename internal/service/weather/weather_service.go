package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/domain"
	"github.com/Domenick1991/flightdesk/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const maxResponseBytes = 1 << 20

type WeatherUseCase interface {
	Current(ctx context.Context, req domain.WeatherRequest) (json.RawMessage, error)
}

type Cache interface {
	GetWeather(ctx context.Context, latitude, longitude float64) ([]byte, error)
	SetWeather(ctx context.Context, latitude, longitude float64, payload []byte) error
}

// WeatherService relays the provider's current-conditions JSON for a
// coordinate pair. It never touches the flight store.
type WeatherService struct {
	client    *http.Client
	baseURL   string
	apiKeyEnv string
	lookupEnv func(string) (string, bool)
	cache     Cache
	log       logrus.FieldLogger
}

type WeatherServiceOption func(*WeatherService)

func WithHTTPClient(client *http.Client) WeatherServiceOption {
	return func(s *WeatherService) {
		s.client = client
	}
}

func WithCache(cache Cache) WeatherServiceOption {
	return func(s *WeatherService) {
		s.cache = cache
	}
}

// WithEnvLookup replaces os.LookupEnv for reading the API key.
func WithEnvLookup(lookup func(string) (string, bool)) WeatherServiceOption {
	return func(s *WeatherService) {
		s.lookupEnv = lookup
	}
}

func WithLogger(log logrus.FieldLogger) WeatherServiceOption {
	return func(s *WeatherService) {
		s.log = log
	}
}

func NewWeatherService(cfg config.WeatherConfig, opts ...WeatherServiceOption) *WeatherService {
	s := &WeatherService{
		client:    &http.Client{Timeout: cfg.Timeout()},
		baseURL:   cfg.BaseURL,
		apiKeyEnv: cfg.APIKeyEnv,
		lookupEnv: os.LookupEnv,
		log:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *WeatherService) Current(ctx context.Context, req domain.WeatherRequest) (json.RawMessage, error) {
	// The key is read per request so it can be provisioned after startup.
	apiKey, ok := s.lookupEnv(s.apiKeyEnv)
	if !ok || apiKey == "" {
		return nil, domain.NewConfigError("Missing API key")
	}

	if s.cache != nil {
		cached, err := s.cache.GetWeather(ctx, req.Latitude, req.Longitude)
		if err != nil {
			s.log.WithError(err).Warn("weather cache read failed")
		} else if cached != nil {
			return json.RawMessage(cached), nil
		}
	}

	body, status, err := s.fetch(ctx, req, apiKey)
	if err != nil {
		return nil, domain.NewUpstreamError("Weather service error", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, domain.NewUpstreamError("Failed to parse weather JSON", fmt.Errorf("provider returned %d with invalid JSON", status))
	}

	if s.cache != nil && status >= 200 && status < 300 {
		if err := s.cache.SetWeather(ctx, req.Latitude, req.Longitude, body); err != nil {
			s.log.WithError(err).Warn("weather cache write failed")
		}
	}
	return json.RawMessage(body), nil
}

func (s *WeatherService) fetch(ctx context.Context, req domain.WeatherRequest, apiKey string) ([]byte, int, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, 0, fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(req.Longitude, 'f', -1, 64))
	q.Set("appid", apiKey)
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		// The error text embeds the URL, which carries the key.
		var ue *url.Error
		if errors.As(err, &ue) {
			return nil, 0, fmt.Errorf("%s weather provider: %w", ue.Op, ue.Err)
		}
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	s.log.WithFields(logrus.Fields{"status": resp.StatusCode, "bytes": len(body)}).Debug("weather provider responded")
	return body, resp.StatusCode, nil
}

var _ WeatherUseCase = (*WeatherService)(nil)
