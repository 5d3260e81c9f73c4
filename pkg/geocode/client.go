package geocode

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client talks to the external geocoding service. Only forward resolution is
// needed: order addresses occasionally arrive without coordinates.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

type resolveResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Found     bool    `json:"found"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Resolve looks up coordinates for a postal address.
func (c *Client) Resolve(address string) (float64, float64, error) {
	reqURL := fmt.Sprintf("%s/v1/geocode?q=%s", c.BaseURL, url.QueryEscape(address))

	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var result resolveResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, 0, fmt.Errorf("failed to parse response: %w", err)
	}
	if !result.Found {
		return 0, 0, fmt.Errorf("no coordinates found for %q", address)
	}
	return result.Latitude, result.Longitude, nil
}
