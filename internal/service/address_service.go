package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"address-api/internal/models"
)

var (
	// ErrInvalidCountry is returned when the country is not a two-letter code.
	ErrInvalidCountry = errors.New("country must be a two-letter code")
	// ErrAddressNotFound is returned when no address has the requested id.
	ErrAddressNotFound = errors.New("address not found")
)

// AddressRepository persists addresses.
type AddressRepository interface {
	CreateAddress(ctx context.Context, addr *models.Address) (*models.Address, error)
	GetAddress(ctx context.Context, id int64) (*models.Address, error)
	ListAddressesByPostalCodeState(ctx context.Context, state string) ([]models.Address, error)
	UpdatePostalCodeGeography(ctx context.Context, id int64, geo models.LookupResult) (*models.Address, error)
}

// AddressService contains the business logic for recording addresses
type AddressService struct {
	repo     AddressRepository
	builder  *AddressBuilder
	resolver PostalCodeResolver
}

// NewAddressService creates a new address service
func NewAddressService(repo AddressRepository, resolver PostalCodeResolver) *AddressService {
	return &AddressService{
		repo:     repo,
		builder:  NewAddressBuilder(resolver),
		resolver: resolver,
	}
}

// Lookup resolves the geography of a postal code without storing anything.
func (s *AddressService) Lookup(ctx context.Context, country, postalCode string) (models.LookupResult, error) {
	if err := validateCountry(country); err != nil {
		return models.LookupResult{}, err
	}

	result, err := s.resolver.Resolve(ctx, country, postalCode)
	if err != nil {
		return models.LookupResult{}, fmt.Errorf("service: failed to resolve postal code: %w", err)
	}

	return result, nil
}

// CreateAddress constructs an address from user input and stores it.
func (s *AddressService) CreateAddress(ctx context.Context, in AddressInput) (*models.Address, error) {
	if err := validateCountry(in.Country); err != nil {
		return nil, err
	}

	addr, err := s.builder.Construct(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("service: failed to construct address: %w", err)
	}

	stored, err := s.repo.CreateAddress(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("service: failed to store address: %w", err)
	}

	return stored, nil
}

// GetAddress returns a stored address.
func (s *AddressService) GetAddress(ctx context.Context, id int64) (*models.Address, error) {
	addr, err := s.repo.GetAddress(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get address: %w", err)
	}
	if addr == nil {
		return nil, ErrAddressNotFound
	}

	return addr, nil
}

// ListAddressesByPostalCodeState returns addresses whose effective postal code
// state is state, falling back to the user-reported state where no derived
// value was stored.
func (s *AddressService) ListAddressesByPostalCodeState(ctx context.Context, state string) ([]models.Address, error) {
	if state == "" {
		return nil, fmt.Errorf("service: state cannot be empty")
	}

	addrs, err := s.repo.ListAddressesByPostalCodeState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list addresses: %w", err)
	}

	return addrs, nil
}

// RefreshGeography repeats the postal code lookup for a stored address and
// replaces its derived fields. User-reported fields are left untouched.
func (s *AddressService) RefreshGeography(ctx context.Context, id int64) (*models.Address, error) {
	addr, err := s.GetAddress(ctx, id)
	if err != nil {
		return nil, err
	}

	var postalCode string
	if addr.PostalCode != nil {
		postalCode = *addr.PostalCode
	}

	geo, err := s.resolver.Resolve(ctx, addr.Country, postalCode)
	if err != nil {
		return nil, fmt.Errorf("service: failed to resolve postal code: %w", err)
	}

	updated, err := s.repo.UpdatePostalCodeGeography(ctx, id, geo)
	if err != nil {
		return nil, fmt.Errorf("service: failed to update address: %w", err)
	}
	if updated == nil {
		return nil, ErrAddressNotFound
	}

	return updated, nil
}

func validateCountry(country string) error {
	if utf8.RuneCountInString(country) != 2 {
		return fmt.Errorf("%w: %q", ErrInvalidCountry, country)
	}
	return nil
}
