// Package lookup infers city and state from a postal code using external
// services chosen by country.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"address-api/internal/metrics"
	"address-api/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	ProviderPostcodes = "postcodes"
	ProviderZiptastic = "ziptastic"
	ProviderNone      = "none"
)

// ErrLookupFailed marks a postal code lookup failure returned to the caller.
var ErrLookupFailed = errors.New("postal code lookup failed")

// Config holds the endpoints and credentials of the lookup services.
type Config struct {
	PostcodesBaseURL string
	ZiptasticBaseURL string
	ZiptasticAPIKey  string
}

// UKLookup resolves UK postcodes.
type UKLookup interface {
	Lookup(ctx context.Context, postalCode string) (models.LookupResult, error)
}

// ZipLookup resolves postal codes for the countries Ziptastic covers.
type ZipLookup interface {
	Lookup(ctx context.Context, countryCode, postalCode string) (models.LookupResult, error)
}

// Resolver picks the lookup service for a country and returns a best-effort
// city and state.
type Resolver struct {
	uk      UKLookup
	zip     ZipLookup
	metrics *metrics.LookupMetrics
}

// NewResolver wires both services to a shared HTTP client.
func NewResolver(cfg Config, client *http.Client, m *metrics.LookupMetrics) *Resolver {
	return NewResolverWithLookups(
		NewPostcodesClient(cfg.PostcodesBaseURL, client),
		NewZiptasticClient(cfg.ZiptasticBaseURL, cfg.ZiptasticAPIKey, client),
		m,
	)
}

// NewResolverWithLookups creates a resolver from explicit lookup services.
func NewResolverWithLookups(uk UKLookup, zip ZipLookup, m *metrics.LookupMetrics) *Resolver {
	return &Resolver{uk: uk, zip: zip, metrics: m}
}

// Resolve returns the city and state for a postal code.
//
// GB/UK postcodes go to postcodes.io and any failure is returned to the
// caller. US/CA/FR go to Ziptastic and failures yield an empty result with a
// nil error. Other countries get an empty result without a network call.
//
// TODO: degrade gracefully on the UK branch too once callers no longer rely
// on UK address creation failing when postcodes.io is down.
func (r *Resolver) Resolve(ctx context.Context, countryCode, postalCode string) (models.LookupResult, error) {
	country := strings.ToUpper(countryCode)
	start := time.Now()

	switch country {
	case "GB", "UK":
		result, err := r.uk.Lookup(ctx, postalCode)
		if err != nil {
			r.observe(ProviderPostcodes, metrics.OutcomeError, start)
			log.Warn().Err(err).Str("country", country).Str("postal_code", postalCode).Msg("postcode lookup failed")
			return models.LookupResult{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
		}
		r.observe(ProviderPostcodes, outcome(result), start)
		return result, nil

	case "US", "CA", "FR":
		result, err := r.zip.Lookup(ctx, country, postalCode)
		if err != nil {
			r.observe(ProviderZiptastic, metrics.OutcomeError, start)
			log.Warn().Err(err).Str("country", country).Str("postal_code", postalCode).Msg("zip lookup failed, falling back to user input")
			return models.LookupResult{}, nil
		}
		r.observe(ProviderZiptastic, outcome(result), start)
		return result, nil

	default:
		r.observe(ProviderNone, metrics.OutcomeUnsupported, start)
		log.Debug().Str("country", country).Msg("no postal code lookup for country")
		return models.LookupResult{}, nil
	}
}

func (r *Resolver) observe(provider, outcome string, start time.Time) {
	r.metrics.Observe(provider, outcome, time.Since(start).Seconds())
}

func outcome(result models.LookupResult) string {
	if (result.City != nil && *result.City != "") || result.State != nil {
		return metrics.OutcomeHit
	}
	return metrics.OutcomeMiss
}
