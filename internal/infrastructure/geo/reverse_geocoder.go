package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sasmit28/CivicApp/domain"
)

// NominatimGeocoder implements domain.ReverseGeocoder against a
// Nominatim-compatible /reverse endpoint
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewNominatimGeocoder creates a geocoder with a bounded request timeout
func NewNominatimGeocoder(baseURL, userAgent string, timeout time.Duration) *NominatimGeocoder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NominatimGeocoder{
		baseURL:   baseURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
	}
}

type nominatimResponse struct {
	Name    string `json:"name"`
	Address struct {
		HouseNumber string `json:"house_number"`
		Road        string `json:"road"`
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		State       string `json:"state"`
	} `json:"address"`
	Error string `json:"error"`
}

// Resolve implements domain.ReverseGeocoder. A location with no address yields no placemarks.
func (g *NominatimGeocoder) Resolve(ctx context.Context, at domain.Coordinates) ([]domain.Placemark, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(at.Latitude, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(at.Longitude, 'f', 6, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocoding request: %w", err)
	}
	if g.userAgent != "" {
		req.Header.Set("User-Agent", g.userAgent)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding returned status %d", resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}
	if body.Error != "" {
		return nil, nil
	}

	city := body.Address.City
	if city == "" {
		city = body.Address.Town
	}
	if city == "" {
		city = body.Address.Village
	}

	name := body.Name
	if name == "" {
		name = body.Address.HouseNumber
	}

	return []domain.Placemark{{
		Name:   name,
		Street: body.Address.Road,
		City:   city,
		Region: body.Address.State,
	}}, nil
}

var _ domain.ReverseGeocoder = (*NominatimGeocoder)(nil)
