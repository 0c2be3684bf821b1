package syncer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

// maxSnapshotBytes bounds the body read from a pull.
const maxSnapshotBytes = 32 << 20

var (
	// ErrNoEndpoint is returned when sync is requested without a configured URL.
	ErrNoEndpoint = errors.New("no sync endpoint configured")

	// ErrInvalidURL is returned for endpoints that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("sync endpoint must be an absolute http or https URL")
)

// Endpoint is the remote snapshot store.
type Endpoint interface {
	// PushUnverified sends the whole collection. Only transport failures
	// are reported; the endpoint's response is not inspected.
	PushUnverified(ctx context.Context, records []domain.TourRecord) error

	// Fetch returns the authoritative remote collection. Elements that could
	// not be decoded are skipped and counted in the returned int.
	Fetch(ctx context.Context) ([]domain.TourRecord, int, error)
}

// EndpointOptions tunes an HTTPEndpoint. Zero values select defaults.
type EndpointOptions struct {
	Client  *http.Client
	Timeout time.Duration
	Logger  *slog.Logger

	// Location is the timezone pulled timestamps are read in when they are
	// reduced to a calendar day. Nil means domain.DefaultLocation.
	Location *time.Location

	// FailureThreshold is the number of consecutive failed pulls that opens
	// the circuit breaker.
	FailureThreshold uint32
	// CoolDown is how long the breaker stays open before probing again.
	CoolDown time.Duration
}

// HTTPEndpoint talks to a spreadsheet-script style endpoint: POST a
// {"action":"sync","data":[...]} body to push, GET ?action=get to pull.
type HTTPEndpoint struct {
	base    *url.URL
	client  *http.Client
	timeout time.Duration
	loc     *time.Location
	log     *slog.Logger
	breaker *gobreaker.CircuitBreaker[[]byte]
}

var _ Endpoint = (*HTTPEndpoint)(nil)

// ParseEndpointURL checks that raw is an absolute http(s) URL.
func ParseEndpointURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, ErrNoEndpoint
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u, nil
}

// NewHTTPEndpoint returns an endpoint for rawURL.
func NewHTTPEndpoint(rawURL string, opts EndpointOptions) (*HTTPEndpoint, error) {
	u, err := ParseEndpointURL(rawURL)
	if err != nil {
		return nil, err
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Location == nil {
		opts.Location = domain.DefaultLocation
	}
	if opts.FailureThreshold == 0 {
		opts.FailureThreshold = 3
	}
	if opts.CoolDown <= 0 {
		opts.CoolDown = 30 * time.Second
	}

	log := opts.Logger.With("endpoint", u.Host)
	threshold := opts.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "sync-fetch",
		MaxRequests: 1,
		Timeout:     opts.CoolDown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("sync circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &HTTPEndpoint{base: u, client: opts.Client, timeout: opts.Timeout, loc: opts.Location, log: log, breaker: breaker}, nil
}

// PushUnverified implements Endpoint.
func (e *HTTPEndpoint) PushUnverified(ctx context.Context, records []domain.TourRecord) error {
	body := pushBody{Action: "sync", Data: make([]wireRecord, 0, len(records))}
	for _, r := range records {
		body.Data = append(body.Data, toWire(r))
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("syncer.HTTPEndpoint.PushUnverified: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.base.String(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("syncer.HTTPEndpoint.PushUnverified: %w", err)
	}
	// A simple content type keeps script hosts from demanding a preflight.
	req.Header.Set("Content-Type", "text/plain;charset=utf-8")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("syncer.HTTPEndpoint.PushUnverified: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxSnapshotBytes))

	e.log.Debug("pushed snapshot", "records", len(records), "status", resp.StatusCode)
	return nil
}

// Fetch implements Endpoint.
func (e *HTTPEndpoint) Fetch(ctx context.Context) ([]domain.TourRecord, int, error) {
	body, err := e.breaker.Execute(func() ([]byte, error) {
		return e.get(ctx)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("syncer.HTTPEndpoint.Fetch: %w", err)
	}
	records, skipped, err := decodeSnapshot(body, e.loc)
	if err != nil {
		return nil, 0, fmt.Errorf("syncer.HTTPEndpoint.Fetch: %w", err)
	}
	return records, skipped, nil
}

func (e *HTTPEndpoint) get(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	u := *e.base
	q := u.Query()
	q.Set("action", "get")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes))
}
