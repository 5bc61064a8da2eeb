package models

import (
	"strings"
	"time"
)

// Address is a postal address as entered by a user, together with the city
// and state inferred from its postal code.
type Address struct {
	ID            int64
	StreetAddress string
	City          *string
	State         *string
	PostalCode    *string
	Country       string
	WhenUpdated   time.Time

	// Derived from the postal code. Nil when the lookup produced nothing.
	DerivedCity  *string
	DerivedState *string
}

// PostalCodeCity returns the city inferred from the postal code, falling back
// to the user-reported city.
func (a *Address) PostalCodeCity() *string {
	return fallback(a.DerivedCity, a.City)
}

// PostalCodeState returns the state inferred from the postal code, falling
// back to the user-reported state.
func (a *Address) PostalCodeState() *string {
	return fallback(a.DerivedState, a.State)
}

// SetPostalCodeGeography replaces the derived fields, e.g. after a re-lookup.
func (a *Address) SetPostalCodeGeography(r LookupResult) {
	a.DerivedCity = r.City
	a.DerivedState = r.State
}

func fallback(derived, reported *string) *string {
	if derived != nil && *derived != "" {
		return derived
	}
	return reported
}

// FormattedString renders the address on a single line. UK addresses put a
// comma before the postal code, everyone else a space.
func (a *Address) FormattedString() string {
	var street *string
	if a.StreetAddress != "" {
		street = &a.StreetAddress
	}
	if strings.EqualFold(a.Country, "GB") {
		return strings.Join(present(street, a.City, a.State, a.PostalCode), ", ")
	}

	joined := strings.Join(present(street, a.City, a.State), ", ")
	if a.PostalCode != nil {
		return joined + " " + *a.PostalCode
	}
	return joined
}

func present(values ...*string) []string {
	lines := make([]string, 0, len(values))
	for _, v := range values {
		if v != nil {
			lines = append(lines, *v)
		}
	}
	return lines
}

// AddressView is the JSON representation returned by the API.
type AddressView struct {
	ID              int64     `json:"id"`
	StreetAddress   string    `json:"street_address"`
	City            *string   `json:"city"`
	State           *string   `json:"state"`
	PostalCode      *string   `json:"postal_code"`
	Country         string    `json:"country"`
	PostalCodeCity  *string   `json:"postal_code_city"`
	PostalCodeState *string   `json:"postal_code_state"`
	FormattedString string    `json:"formatted_string"`
	WhenUpdated     time.Time `json:"when_updated"`
}

// View computes the read-time fields of the address.
func (a *Address) View() AddressView {
	return AddressView{
		ID:              a.ID,
		StreetAddress:   a.StreetAddress,
		City:            a.City,
		State:           a.State,
		PostalCode:      a.PostalCode,
		Country:         a.Country,
		PostalCodeCity:  a.PostalCodeCity(),
		PostalCodeState: a.PostalCodeState(),
		FormattedString: a.FormattedString(),
		WhenUpdated:     a.WhenUpdated,
	}
}

// LookupResult is the geography inferred from a postal code. Either field may
// be nil when the source did not provide it.
type LookupResult struct {
	City  *string `json:"city"`
	State *string `json:"state"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
