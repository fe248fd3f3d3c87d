// Package geo turns street addresses and postal codes into coordinates
// through an ordered fallback chain over an external geocoding provider.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cs-store-backend/internal/models"
)

// GeocoderClientInterface is the provider boundary. Absence of a result is a
// normal outcome, reported as models.ErrNotFound, not a transport failure.
type GeocoderClientInterface interface {
	Search(ctx context.Context, query string) (models.LatLng, error)
	SearchByPostalCode(ctx context.Context, pincode string) (models.LatLng, error)
}

// nominatimClient talks to a Nominatim-compatible search endpoint,
// restricted to the configured country.
type nominatimClient struct {
	baseURL     string
	countryCode string
	httpClient  *http.Client
}

// NewGeocoderClient builds the provider client. The timeout bounds every
// call so a hung provider never blocks placement.
func NewGeocoderClient(baseURL, countryCode string) GeocoderClientInterface {
	return &nominatimClient{
		baseURL:     baseURL,
		countryCode: countryCode,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *nominatimClient) Search(ctx context.Context, query string) (models.LatLng, error) {
	params := url.Values{}
	params.Set("q", query)
	return c.search(ctx, params)
}

func (c *nominatimClient) SearchByPostalCode(ctx context.Context, pincode string) (models.LatLng, error) {
	params := url.Values{}
	params.Set("postalcode", pincode)
	return c.search(ctx, params)
}

func (c *nominatimClient) search(ctx context.Context, params url.Values) (models.LatLng, error) {
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", c.countryCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return models.LatLng{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.LatLng{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.LatLng{}, fmt.Errorf("geocoder status %d", resp.StatusCode)
	}

	var out []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return models.LatLng{}, err
	}
	if len(out) == 0 {
		return models.LatLng{}, models.ErrNotFound
	}
	lat, err := strconv.ParseFloat(out[0].Lat, 64)
	if err != nil {
		return models.LatLng{}, fmt.Errorf("geocoder lat: %w", err)
	}
	lng, err := strconv.ParseFloat(out[0].Lon, 64)
	if err != nil {
		return models.LatLng{}, fmt.Errorf("geocoder lon: %w", err)
	}
	return models.LatLng{Lat: lat, Lng: lng}, nil
}
