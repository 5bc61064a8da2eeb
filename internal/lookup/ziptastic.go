package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"address-api/internal/models"

	"github.com/goccy/go-json"
)

// DefaultZiptasticBaseURL is the Ziptastic v2 endpoint.
const DefaultZiptasticBaseURL = "http://zip.getziptastic.com/v2/"

// ZiptasticClient looks up zip codes for North America and a few other
// countries. Requests are authenticated with the x-key header.
type ZiptasticClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewZiptasticClient creates a client. apiKey is sent as-is; an empty or
// invalid key surfaces as whatever the service answers.
func NewZiptasticClient(baseURL, apiKey string, client *http.Client) *ZiptasticClient {
	if baseURL == "" {
		baseURL = DefaultZiptasticBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &ZiptasticClient{baseURL: baseURL, apiKey: apiKey, client: client}
}

// Lookup fetches the city and state for a postal code. countryCode must
// already be uppercase. A missing city comes back as an empty string and a
// missing state as nil.
func (c *ZiptasticClient) Lookup(ctx context.Context, countryCode, postalCode string) (models.LookupResult, error) {
	endpoint := c.baseURL + url.PathEscape(countryCode) + "/" + url.PathEscape(postalCode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.LookupResult{}, fmt.Errorf("ziptastic: failed to build request: %w", err)
	}
	req.Header.Set("x-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return models.LookupResult{}, fmt.Errorf("ziptastic: request failed: %w", err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.LookupResult{}, fmt.Errorf("ziptastic: failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	city := models.StringPtr("")
	if _, ok := body["city"]; ok {
		city = stringField(body, "city")
	}

	return models.LookupResult{
		City:  city,
		State: stringField(body, "state_short"),
	}, nil
}
