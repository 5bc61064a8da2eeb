package service

import (
	"context"
	"strings"

	"address-api/internal/models"
)

// PostalCodeResolver infers geography from a postal code.
type PostalCodeResolver interface {
	Resolve(ctx context.Context, countryCode, postalCode string) (models.LookupResult, error)
}

// AddressInput holds the raw fields of an address as the user entered them.
type AddressInput struct {
	StreetAddress string  `json:"street_address"`
	City          *string `json:"city"`
	State         *string `json:"state"`
	PostalCode    *string `json:"postal_code"`
	Country       string  `json:"country" binding:"required,len=2"`
}

// AddressBuilder standardizes user input into an Address and fills in the
// city and state inferred from its postal code.
type AddressBuilder struct {
	resolver PostalCodeResolver
}

// NewAddressBuilder creates a new address builder
func NewAddressBuilder(resolver PostalCodeResolver) *AddressBuilder {
	return &AddressBuilder{resolver: resolver}
}

// Construct builds an Address. User fields are kept verbatim and the country
// is lowercased. Lookup errors are returned unchanged.
func (b *AddressBuilder) Construct(ctx context.Context, in AddressInput) (*models.Address, error) {
	var postalCode string
	if in.PostalCode != nil {
		postalCode = *in.PostalCode
	}

	geo, err := b.resolver.Resolve(ctx, in.Country, postalCode)
	if err != nil {
		return nil, err
	}

	return &models.Address{
		StreetAddress: in.StreetAddress,
		City:          in.City,
		State:         in.State,
		PostalCode:    in.PostalCode,
		Country:       strings.ToLower(in.Country),
		DerivedCity:   geo.City,
		DerivedState:  geo.State,
	}, nil
}
