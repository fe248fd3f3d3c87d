package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"cs-store-backend/internal/models"
)

// ProviderInterface is the external distance-matrix boundary. Any error is
// downgraded by the engine to the Haversine fallback, never surfaced.
type ProviderInterface interface {
	DistanceMeters(ctx context.Context, origin, dest models.LatLng) (int, error)
}

// matrixClient calls a distance-matrix style JSON endpoint.
type matrixClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewProvider(baseURL, apiKey string) ProviderInterface {
	return &matrixClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *matrixClient) DistanceMeters(ctx context.Context, origin, dest models.LatLng) (int, error) {
	params := url.Values{}
	params.Set("origins", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Set("destinations", fmt.Sprintf("%f,%f", dest.Lat, dest.Lng))
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/distancematrix/json?"+params.Encode(), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("distance provider status %d", resp.StatusCode)
	}

	var out struct {
		Rows []struct {
			Elements []struct {
				Status   string `json:"status"`
				Distance struct {
					Value int `json:"value"`
				} `json:"distance"`
			} `json:"elements"`
		} `json:"rows"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	if len(out.Rows) == 0 || len(out.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("distance provider returned no elements")
	}
	el := out.Rows[0].Elements[0]
	if el.Status != "OK" {
		return 0, fmt.Errorf("distance provider element status %q", el.Status)
	}
	return el.Distance.Value, nil
}
