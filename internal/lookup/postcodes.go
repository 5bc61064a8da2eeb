package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"address-api/internal/models"

	"github.com/goccy/go-json"
)

// DefaultPostcodesBaseURL is the postcodes.io endpoint for UK postcodes.
const DefaultPostcodesBaseURL = "http://api.postcodes.io/postcodes/"

// PostcodesClient looks up UK postcodes. The service reports the local
// authority district but nothing resembling a state, so State is always nil.
type PostcodesClient struct {
	baseURL string
	client  *http.Client
}

// NewPostcodesClient creates a client for the given base URL. The postcode is
// appended to it verbatim, so baseURL should end with a slash.
func NewPostcodesClient(baseURL string, client *http.Client) *PostcodesClient {
	if baseURL == "" {
		baseURL = DefaultPostcodesBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &PostcodesClient{baseURL: baseURL, client: client}
}

// Lookup fetches the district for a postcode. Transport failures, bodies
// that are not JSON objects and a result that is not an object are returned
// as errors. A body without a result is an empty lookup.
func (c *PostcodesClient) Lookup(ctx context.Context, postalCode string) (models.LookupResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+url.PathEscape(postalCode), nil)
	if err != nil {
		return models.LookupResult{}, fmt.Errorf("postcodes: failed to build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return models.LookupResult{}, fmt.Errorf("postcodes: request failed: %w", err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.LookupResult{}, fmt.Errorf("postcodes: failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if body == nil {
		return models.LookupResult{}, fmt.Errorf("postcodes: empty response body (status %d)", resp.StatusCode)
	}

	var result map[string]any
	if raw, ok := body["result"]; ok {
		if result, ok = raw.(map[string]any); !ok {
			return models.LookupResult{}, fmt.Errorf("postcodes: unexpected result %v (status %d)", raw, resp.StatusCode)
		}
	}

	return models.LookupResult{City: stringField(result, "admin_district")}, nil
}

// stringField returns the string at key, or nil when the key is missing or
// holds something other than a string.
func stringField(m map[string]any, key string) *string {
	s, ok := m[key].(string)
	if !ok {
		return nil
	}
	return &s
}
