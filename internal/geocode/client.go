package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dhobigo/internal/config"
)

// Result 正向地理编码结果
type Result struct {
	Latitude  float64
	Longitude float64
	Formatted string
}

// Client OpenCage 正向地理编码客户端
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type opencageResponse struct {
	Results []struct {
		Formatted string `json:"formatted"`
		Geometry  struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
	} `json:"results"`
}

// NewClient 创建地理编码客户端，未启用时返回 nil
func NewClient(cfg config.GeocodingConfig) *Client {
	if !cfg.Enabled || strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = "https://api.opencagedata.com/geocode/v1/json"
	}
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Forward 按地址文本查询经纬度
func (c *Client) Forward(ctx context.Context, query string) (*Result, error) {
	if c == nil {
		return nil, fmt.Errorf("geocoding disabled")
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, fmt.Errorf("empty geocode query")
	}

	params := url.Values{}
	params.Set("q", trimmed)
	params.Set("key", c.apiKey)
	params.Set("limit", "1")
	params.Set("countrycode", "in")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode endpoint returned %d", resp.StatusCode)
	}

	var decoded opencageResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(decoded.Results) == 0 {
		return nil, fmt.Errorf("no geocode result for query")
	}

	first := decoded.Results[0]
	return &Result{
		Latitude:  first.Geometry.Lat,
		Longitude: first.Geometry.Lng,
		Formatted: first.Formatted,
	}, nil
}
