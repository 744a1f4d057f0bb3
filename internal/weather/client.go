// Package weather wraps the OpenWeatherMap current-weather API and
// normalizes its response into the fields the application stores.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

var (
	// ErrUnreachable is returned when the weather service cannot be
	// reached: connection failures, timeouts, or an open circuit.
	ErrUnreachable = errors.New("weather service unreachable")

	// ErrCityNotFound is returned when the service reports no such city.
	ErrCityNotFound = errors.New("city not found")

	errMissingAPIKey = errors.New("weather api key is not configured")
)

// Snapshot is a normalized weather reading for one city.
type Snapshot struct {
	// Temperature in Celsius, rounded to three decimals, formatted as text.
	Temperature string
	Description string
	Icon        string
}

// Client fetches current weather by city name.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
}

func NewClient(apiKey string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		circuit: cb,
	}
}

// FetchByCityName queries the weather service for the given city.
// Transport failures map to ErrUnreachable; a "404" status field in the
// response body maps to ErrCityNotFound.
func (c *Client) FetchByCityName(ctx context.Context, name string) (Snapshot, error) {
	if c.apiKey == "" {
		return Snapshot{}, errMissingAPIKey
	}

	values := url.Values{}
	values.Set("q", name)
	values.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, values.Encode()), nil)
	if err != nil {
		return Snapshot{}, err
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.httpClient.Do(req)
	})
	if err != nil {
		// Open-circuit and transport failures alike mean the service is
		// unreachable from the user's point of view.
		return Snapshot{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	resp := result.(*http.Response)
	defer resp.Body.Close()

	// The API signals "no such city" through the cod field of the body,
	// not just the HTTP status, so the body is decoded unconditionally.
	var payload struct {
		Cod  statusCode `json:"cod"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Snapshot{}, err
	}

	switch int(payload.Cod) {
	case http.StatusOK:
	case http.StatusNotFound:
		return Snapshot{}, ErrCityNotFound
	default:
		return Snapshot{}, fmt.Errorf("unexpected weather api status %d", int(payload.Cod))
	}

	snapshot := Snapshot{
		Temperature: FormatCelsius(CelsiusFromKelvin(payload.Main.Temp)),
	}
	if len(payload.Weather) > 0 {
		snapshot.Description = payload.Weather[0].Description
		snapshot.Icon = payload.Weather[0].Icon
	}
	return snapshot, nil
}

// CelsiusFromKelvin converts to Celsius rounded to three decimal places.
// Ties round half to even: 300.00K yields 26.85, 273.15K yields 0.
func CelsiusFromKelvin(kelvin float64) float64 {
	return math.RoundToEven((kelvin-273.15)*1000) / 1000
}

// FormatCelsius renders a rounded Celsius value without trailing zeros.
func FormatCelsius(celsius float64) string {
	return strconv.FormatFloat(celsius, 'f', -1, 64)
}

// statusCode absorbs the API's cod field, which arrives as a JSON number
// on success ("cod": 200) and a JSON string on errors ("cod": "404").
type statusCode int

func (s *statusCode) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(string(data), `"`)
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return fmt.Errorf("invalid status code %q", string(data))
	}
	*s = statusCode(value)
	return nil
}
