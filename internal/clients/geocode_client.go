package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"wayfarer/internal/models/plan_models"
)

// GeocodingClient resolves a free-form place name to coordinates and a
// canonical name, or reports "not found".
type GeocodingClient interface {
	Lookup(ctx context.Context, place string) (*plan_models.PlaceRecord, bool, error)
}

type nominatimResult struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

// NominatimClient talks to a Nominatim-compatible geocoding endpoint.
type NominatimClient struct {
	http    *http.Client
	baseURL string
}

func NewNominatimClient(baseURL string, timeout time.Duration) *NominatimClient {
	return &NominatimClient{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *NominatimClient) Lookup(ctx context.Context, place string) (*plan_models.PlaceRecord, bool, error) {
	u, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, false, fmt.Errorf("geocoder url: %w", err)
	}
	q := url.Values{}
	q.Set("q", place)
	q.Set("format", "json")
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, false, err
	}
	// Nominatim's usage policy requires an identifying agent.
	req.Header.Set("User-Agent", "wayfarer-trip-planner")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("geocoder http error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, false, fmt.Errorf("geocoder bad status: %s", resp.Status)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, false, fmt.Errorf("geocoder decode: %w", err)
	}
	if len(results) == 0 {
		return nil, false, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, false, fmt.Errorf("geocoder bad latitude %q", results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, false, fmt.Errorf("geocoder bad longitude %q", results[0].Lon)
	}

	return &plan_models.PlaceRecord{
		Input:         place,
		CanonicalName: results[0].DisplayName,
		Latitude:      lat,
		Longitude:     lon,
		Confident:     results[0].Importance >= 0.3,
	}, true, nil
}
