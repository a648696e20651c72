package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/pawsearch/internal/core/domain"
	"github.com/samirrijal/pawsearch/internal/pkg/metrics"
)

// StatusError is a non-2xx, non-401 answer from the upstream API.
// The upstream body is kept for logging only.
type StatusError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s %s: status %d", e.Method, e.Path, e.Status)
}

// IsStatus reports whether err is a StatusError with the given status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// Response is a raw upstream answer, used by the passthrough proxy routes.
type Response struct {
	Status      int
	Body        []byte
	ContentType string
}

// Client implements ports.DogAPI and ports.LocationAPI over fasthttp.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
	tracer  trace.Tracer
}

// New creates an upstream client for baseURL (e.g. https://frontend-take-home-service.fetch.com).
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &fasthttp.Client{
			Name:                "pawsearch",
			MaxConnsPerHost:     64,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 30 * time.Second,
		},
		timeout: timeout,
		tracer:  otel.Tracer("github.com/samirrijal/pawsearch/internal/adapters/upstream"),
	}
}

// SearchDogs calls GET /dogs/search. Breeds and zip codes are sent as repeated keys.
func (c *Client) SearchDogs(ctx context.Context, creds domain.Credentials, filter domain.SearchFilter) (*domain.SearchResult, error) {
	path := "/dogs/search?" + SearchQuery(filter)
	body, err := c.call(ctx, "dogs_search", fasthttp.MethodGet, path, nil, creds)
	if err != nil {
		return nil, err
	}

	var result domain.SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode search result: %w", err)
	}
	return &result, nil
}

// FetchDogs calls POST /dogs with the full ID array as the body.
func (c *Client) FetchDogs(ctx context.Context, creds domain.Credentials, ids []string) ([]domain.Dog, error) {
	payload, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("encode dog ids: %w", err)
	}
	body, err := c.call(ctx, "dogs", fasthttp.MethodPost, "/dogs", payload, creds)
	if err != nil {
		return nil, err
	}

	var dogs []domain.Dog
	if err := json.Unmarshal(body, &dogs); err != nil {
		return nil, fmt.Errorf("decode dogs: %w", err)
	}
	return dogs, nil
}

// ListBreeds calls GET /dogs/breeds.
func (c *Client) ListBreeds(ctx context.Context, creds domain.Credentials) ([]string, error) {
	body, err := c.call(ctx, "dogs_breeds", fasthttp.MethodGet, "/dogs/breeds", nil, creds)
	if err != nil {
		return nil, err
	}

	var breeds []string
	if err := json.Unmarshal(body, &breeds); err != nil {
		return nil, fmt.Errorf("decode breeds: %w", err)
	}
	return breeds, nil
}

// LookupLocations calls POST /locations. Unknown zip codes come back as null
// and are dropped.
func (c *Client) LookupLocations(ctx context.Context, creds domain.Credentials, zipCodes []string) ([]domain.Location, error) {
	payload, err := json.Marshal(zipCodes)
	if err != nil {
		return nil, fmt.Errorf("encode zip codes: %w", err)
	}
	body, err := c.call(ctx, "locations", fasthttp.MethodPost, "/locations", payload, creds)
	if err != nil {
		return nil, err
	}

	var raw []*domain.Location
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}
	locations := make([]domain.Location, 0, len(raw))
	for _, l := range raw {
		if l != nil {
			locations = append(locations, *l)
		}
	}
	return locations, nil
}

type geoCorner struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type locationSearchRequest struct {
	GeoBoundingBox struct {
		BottomLeft geoCorner `json:"bottom_left"`
		TopRight   geoCorner `json:"top_right"`
	} `json:"geoBoundingBox"`
	Size int `json:"size,omitempty"`
	From int `json:"from,omitempty"`
}

// SearchLocations calls POST /locations/search with a geoBoundingBox.
// from is the offset of the first result.
func (c *Client) SearchLocations(ctx context.Context, creds domain.Credentials, box domain.Bounds, size, from int) (*domain.LocationSearchResult, error) {
	var req locationSearchRequest
	req.GeoBoundingBox.BottomLeft = geoCorner{Lat: box.MinLat, Lon: box.MinLon}
	req.GeoBoundingBox.TopRight = geoCorner{Lat: box.MaxLat, Lon: box.MaxLon}
	req.Size = size
	req.From = from

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode location search: %w", err)
	}
	body, err := c.call(ctx, "locations_search", fasthttp.MethodPost, "/locations/search", payload, creds)
	if err != nil {
		return nil, err
	}

	var result domain.LocationSearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode location search: %w", err)
	}
	return &result, nil
}

// Forward sends a request as-is and returns the upstream status and body
// without interpreting them. Only transport failures produce an error.
func (c *Client) Forward(ctx context.Context, creds domain.Credentials, method, pathAndQuery string, body []byte) (*Response, error) {
	return c.do(ctx, "forward", method, pathAndQuery, body, creds)
}

// call performs a request and maps 401 and other non-2xx statuses to errors.
func (c *Client) call(ctx context.Context, endpoint, method, path string, payload []byte, creds domain.Credentials) ([]byte, error) {
	resp, err := c.do(ctx, endpoint, method, path, payload, creds)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.Status == fasthttp.StatusUnauthorized:
		return nil, fmt.Errorf("upstream %s %s: %w", method, trimQuery(path), domain.ErrUnauthorized)
	case resp.Status < 200 || resp.Status > 299:
		return nil, &StatusError{Method: method, Path: trimQuery(path), Status: resp.Status, Body: string(resp.Body)}
	}
	return resp.Body, nil
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, payload []byte, creds domain.Credentials) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "upstream "+endpoint, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.target", trimQuery(path)),
	)

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if !creds.Empty() {
		req.Header.Set(fasthttp.HeaderCookie, creds.Cookie)
	}
	if payload != nil {
		req.SetBody(payload)
	}

	start := time.Now()
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.DoTimeout(req, resp, c.timeout)
	}
	metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("upstream %s %s: %w", method, trimQuery(path), err)
	}

	status := resp.StatusCode()
	metrics.UpstreamRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	span.SetAttributes(attribute.Int("http.status_code", status))
	if status >= 500 {
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", status))
	}

	// resp is released on return; copy what we keep.
	body := append([]byte(nil), resp.Body()...)
	return &Response{
		Status:      status,
		Body:        body,
		ContentType: string(resp.Header.ContentType()),
	}, nil
}

func trimQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
