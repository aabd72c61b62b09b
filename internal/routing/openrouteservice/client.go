// Package openrouteservice provides a client for the OpenRouteService directions and geocoding APIs.
package openrouteservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldroute/eldroute/internal/provider/resilience"
	"github.com/eldroute/eldroute/internal/routing"
	"github.com/eldroute/eldroute/pkg/polyline"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "openrouteservice"

	// DefaultBaseURL is the OpenRouteService API base URL.
	DefaultBaseURL = "https://api.openrouteservice.org"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 << 10
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the OpenRouteService client.
type ClientConfig struct {
	// APIKey is the ORS API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to ORS API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 15s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenRouteService API client. It implements routing.Provider
// and routing.Geocoder.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

var (
	_ routing.Provider = (*Client)(nil)
	_ routing.Geocoder = (*Client)(nil)
)

// NewClient creates a new OpenRouteService client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Timeout = timeout
		clientCfg.Registry = cfg.Registry
		clientCfg.CircuitBreaker.OnStateChange = resilience.LogStateChanges(cfg.Logger)
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// SupportedProfiles returns the supported routing profiles.
func (c *Client) SupportedProfiles() []routing.RouteProfile {
	return []routing.RouteProfile{
		routing.ProfileHGV,
		routing.ProfileCar,
	}
}

// GetDirections retrieves a route through the request waypoints in order.
func (c *Client) GetDirections(ctx context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	if len(req.Waypoints) < 2 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "TOO_FEW_WAYPOINTS",
			Message:  "at least 2 waypoints are required",
			Err:      routing.ErrInvalidCoordinates,
		}
	}

	profile := req.Profile
	if profile == "" {
		profile = routing.DefaultProfile
	}

	// ORS uses [lon, lat] order (GeoJSON)
	coords := make([][]float64, len(req.Waypoints))
	for i, wp := range req.Waypoints {
		if err := routing.ValidateCoordinate(wp); err != nil {
			return nil, &routing.Error{
				Provider: ProviderName,
				Code:     "INVALID_WAYPOINT",
				Message:  fmt.Sprintf("invalid waypoint %d: %v", i, err),
				Err:      routing.ErrInvalidCoordinates,
			}
		}
		coords[i] = []float64{wp.Lon, wp.Lat}
	}

	body, err := json.Marshal(orsRequest{
		Coordinates:  coords,
		Instructions: true,
		Geometry:     true,
		Units:        "m",
		Language:     "en",
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s", c.baseURL, profile)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, application/geo+json")

	c.logger.Debug().
		Str("profile", string(profile)).
		Int("waypoints", len(req.Waypoints)).
		Msg("requesting directions from ORS")

	var orsResp orsResponse
	if err := c.do(httpReq, "directions", &orsResp); err != nil {
		return nil, err
	}

	if len(orsResp.Routes) == 0 {
		return nil, &routing.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  "provider returned no routes",
			Err:      routing.ErrNoRouteFound,
		}
	}

	result := toDirectionsResponse(&orsResp)

	c.logger.Debug().
		Int("route_count", len(result.Routes)).
		Float64("distance_m", result.Routes[0].DistanceMeters).
		Float64("duration_s", result.Routes[0].DurationSeconds).
		Msg("received directions from ORS")

	return result, nil
}

// Geocode resolves an address to the best-matching coordinate.
func (c *Client) Geocode(ctx context.Context, address string) (routing.Coordinate, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return routing.Coordinate{}, &routing.Error{
			Provider: ProviderName,
			Code:     "EMPTY_ADDRESS",
			Message:  "address must not be empty",
			Err:      routing.ErrAddressNotFound,
		}
	}

	q := url.Values{}
	q.Set("text", address)
	q.Set("size", "1")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/geocode/search?"+q.Encode(), http.NoBody)
	if err != nil {
		return routing.Coordinate{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json, application/geo+json")

	c.logger.Debug().Str("address", address).Msg("geocoding address with ORS")

	var geoResp geocodeResponse
	if err := c.do(httpReq, "geocode", &geoResp); err != nil {
		return routing.Coordinate{}, err
	}

	if len(geoResp.Features) == 0 || len(geoResp.Features[0].Geometry.Coordinates) < 2 {
		return routing.Coordinate{}, &routing.Error{
			Provider: ProviderName,
			Code:     "ADDRESS_NOT_FOUND",
			Message:  fmt.Sprintf("could not geocode address %q", address),
			Err:      routing.ErrAddressNotFound,
		}
	}

	feature := geoResp.Features[0]
	coord := routing.Coordinate{
		Lat: feature.Geometry.Coordinates[1],
		Lon: feature.Geometry.Coordinates[0],
	}

	c.logger.Debug().
		Str("address", address).
		Str("label", feature.Properties.Label).
		Float64("lat", coord.Lat).
		Float64("lon", coord.Lon).
		Msg("geocoded address")

	return coord, nil
}

// do sends an authenticated request and decodes a 200 response into out.
func (c *Client) do(httpReq *http.Request, op string, out any) error {
	httpReq.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn().Err(err).Str("operation", op).Msg("ORS request failed")
		return &routing.Error{
			Provider: ProviderName,
			Code:     "REQUEST_FAILED",
			Message:  "failed to reach routing provider",
			Err:      routing.ErrProviderUnavailable,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return handleErrorResponse(resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", op, err)
	}
	return nil
}

// handleErrorResponse maps ORS error responses to domain errors.
func handleErrorResponse(statusCode int, body []byte) error {
	var orsErr orsErrorResponse
	_ = json.Unmarshal(body, &orsErr)

	message := orsErr.Error.Message
	if message == "" {
		message = fmt.Sprintf("routing provider returned status %d", statusCode)
	}

	switch {
	case statusCode == http.StatusTooManyRequests:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "RATE_LIMIT",
			Message:  "API rate limit exceeded, please try again later",
			Err:      routing.ErrRateLimitExceeded,
		}
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "FORBIDDEN",
			Message:  "API access denied - check API key configuration",
			Err:      routing.ErrProviderUnavailable,
		}
	case statusCode == http.StatusNotFound,
		orsErr.Error.Code == orsErrorCodeNotFound,
		orsErr.Error.Code == orsErrorCodePointNotFound,
		orsErr.Error.Code == orsErrorCodeTooLong:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "NO_ROUTE",
			Message:  message,
			Err:      routing.ErrNoRouteFound,
		}
	case statusCode == http.StatusBadRequest:
		return &routing.Error{
			Provider: ProviderName,
			Code:     "BAD_REQUEST",
			Message:  message,
			Err:      routing.ErrInvalidCoordinates,
		}
	case statusCode >= 500:
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("SERVER_%d", statusCode),
			Message:  "routing provider is temporarily unavailable",
			Err:      routing.ErrProviderUnavailable,
		}
	default:
		return &routing.Error{
			Provider: ProviderName,
			Code:     fmt.Sprintf("HTTP_%d", statusCode),
			Message:  message,
			Err:      routing.ErrProviderUnavailable,
		}
	}
}

// toDirectionsResponse converts ORS response to domain model.
func toDirectionsResponse(resp *orsResponse) *routing.DirectionsResponse {
	routes := make([]routing.Route, 0, len(resp.Routes))

	for i := range resp.Routes {
		orsRoute := &resp.Routes[i]
		route := routing.Route{
			GeometryPolyline: orsRoute.Geometry,
			Geometry:         decodeGeometry(orsRoute.Geometry),
			DistanceMeters:   orsRoute.Summary.Distance,
			DurationSeconds:  orsRoute.Summary.Duration,
		}
		route.BoundingBox = boundingBox(orsRoute.BBox, route.Geometry)

		for j := range orsRoute.Segments {
			seg := &orsRoute.Segments[j]
			segment := routing.Segment{
				DistanceMeters:  seg.Distance,
				DurationSeconds: seg.Duration,
				Steps:           make([]routing.Instruction, 0, len(seg.Steps)),
			}
			for k := range seg.Steps {
				step := &seg.Steps[k]
				segment.Steps = append(segment.Steps, routing.Instruction{
					Text:            step.Instruction,
					Name:            step.Name,
					DistanceMeters:  step.Distance,
					DurationSeconds: step.Duration,
					Type:            step.Type,
				})
			}
			route.Segments = append(route.Segments, segment)
		}

		routes = append(routes, route)
	}

	return &routing.DirectionsResponse{
		Routes:    routes,
		Provider:  ProviderName,
		FetchedAt: time.Now(),
	}
}

func decodeGeometry(encoded string) []routing.Coordinate {
	points := polyline.Decode(encoded)
	if len(points) == 0 {
		return nil
	}
	coords := make([]routing.Coordinate, len(points))
	for i, p := range points {
		coords[i] = routing.Coordinate{Lat: p.Lat, Lon: p.Lon}
	}
	return coords
}

// boundingBox prefers the provider's bbox ([minLon, minLat, maxLon, maxLat])
// and falls back to the extent of the decoded geometry.
func boundingBox(bbox []float64, geometry []routing.Coordinate) *routing.BoundingBox {
	if len(bbox) >= 4 {
		return &routing.BoundingBox{
			MinLon: bbox[0],
			MinLat: bbox[1],
			MaxLon: bbox[2],
			MaxLat: bbox[3],
		}
	}

	points := make([]polyline.Coordinate, len(geometry))
	for i, c := range geometry {
		points[i] = polyline.Coordinate{Lat: c.Lat, Lon: c.Lon}
	}
	sw, ne, ok := polyline.Bounds(points)
	if !ok {
		return nil
	}
	return &routing.BoundingBox{
		MinLon: sw.Lon,
		MinLat: sw.Lat,
		MaxLon: ne.Lon,
		MaxLat: ne.Lat,
	}
}
