// Package geocode resolves device coordinates to a locality name via a
// Nominatim-compatible reverse geocoding endpoint. Lookups are
// single-shot: each request gets its own result channel and a stale
// result is simply discarded by the caller.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"nadgodziny/internal/core"
	"nadgodziny/internal/log"
)

// Result is the outcome of one lookup. A failed lookup carries an
// empty City and the error; callers leave the typed city untouched.
type Result struct {
	City string
	Err  error
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.WithComponent(log.ComponentGeocode),
	}
}

// Lookup starts a reverse lookup and returns a buffered single-shot
// result channel. The goroutine always delivers exactly one Result;
// abandoning the channel is the cancellation model.
func (c *Client) Lookup(ctx context.Context, coords core.Coordinates) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		city, err := c.Resolve(ctx, coords)
		out <- Result{City: city, Err: err}
	}()
	return out
}

// Resolve performs the blocking reverse lookup.
func (c *Client) Resolve(ctx context.Context, coords core.Coordinates) (string, error) {
	if err := coords.Validate(); err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build reverse request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse lookup: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Address struct {
			City         string `json:"city"`
			Town         string `json:"town"`
			Village      string `json:"village"`
			Municipality string `json:"municipality"`
		} `json:"address"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode reverse response: %w", err)
	}

	city := firstNonEmpty(
		payload.Address.City,
		payload.Address.Town,
		payload.Address.Village,
		payload.Address.Municipality,
	)
	if city == "" {
		return "", fmt.Errorf("no locality for %.4f,%.4f", coords.Latitude, coords.Longitude)
	}

	c.logger.DebugContext(ctx, "Locality resolved",
		log.FieldCity, city,
		log.FieldOperation, log.OpLookup)
	return city, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
