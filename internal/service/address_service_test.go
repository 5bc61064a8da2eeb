package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"address-api/internal/lookup"
	"address-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAddressRepository is a mock implementation of the AddressRepository interface
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) CreateAddress(ctx context.Context, addr *models.Address) (*models.Address, error) {
	args := m.Called(ctx, addr)
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *MockAddressRepository) GetAddress(ctx context.Context, id int64) (*models.Address, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *MockAddressRepository) ListAddressesByPostalCodeState(ctx context.Context, state string) ([]models.Address, error) {
	args := m.Called(ctx, state)
	return args.Get(0).([]models.Address), args.Error(1)
}

func (m *MockAddressRepository) UpdatePostalCodeGeography(ctx context.Context, id int64, geo models.LookupResult) (*models.Address, error) {
	args := m.Called(ctx, id, geo)
	return args.Get(0).(*models.Address), args.Error(1)
}

func TestAddressService_CreateAddress(t *testing.T) {
	input := AddressInput{
		StreetAddress: "55 Elm Rd",
		City:          models.StringPtr("New York City"),
		State:         models.StringPtr("New York"),
		PostalCode:    models.StringPtr("11216"),
		Country:       "US",
	}

	tests := []struct {
		name        string
		input       AddressInput
		lookupError error
		repoError   error
		expectedErr error
		expectRepo  bool
	}{
		{
			name:       "stores constructed address",
			input:      input,
			expectRepo: true,
		},
		{
			name:        "invalid country",
			input:       AddressInput{StreetAddress: "55 Elm Rd", Country: "USA"},
			expectedErr: ErrInvalidCountry,
		},
		{
			name:        "lookup error aborts",
			input:       input,
			lookupError: lookup.ErrLookupFailed,
			expectedErr: lookup.ErrLookupFailed,
		},
		{
			name:        "repository error",
			input:       input,
			repoError:   assert.AnError,
			expectedErr: assert.AnError,
			expectRepo:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := new(MockResolver)
			repo := new(MockAddressRepository)
			svc := NewAddressService(repo, resolver)

			if tt.expectedErr != ErrInvalidCountry {
				resolver.On("Resolve", mock.Anything, "US", "11216").Return(ziptasticResult, tt.lookupError)
			}

			var stored *models.Address
			if tt.expectRepo {
				if tt.repoError == nil {
					stored = &models.Address{ID: 1, Country: "us"}
				}
				repo.On("CreateAddress", mock.Anything, mock.MatchedBy(func(a *models.Address) bool {
					return a.Country == "us" && *a.DerivedCity == "Brooklyn" && *a.City == "New York City"
				})).Return(stored, tt.repoError)
			}

			result, err := svc.CreateAddress(context.Background(), tt.input)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.Equal(t, stored, result)
			}

			resolver.AssertExpectations(t)
			repo.AssertExpectations(t)
		})
	}
}

func TestAddressService_GetAddress(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := new(MockAddressRepository)
		addr := &models.Address{ID: 3, Country: "gb"}
		repo.On("GetAddress", mock.Anything, int64(3)).Return(addr, nil)

		result, err := NewAddressService(repo, new(MockResolver)).GetAddress(context.Background(), 3)

		require.NoError(t, err)
		assert.Equal(t, addr, result)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockAddressRepository)
		repo.On("GetAddress", mock.Anything, int64(4)).Return((*models.Address)(nil), nil)

		_, err := NewAddressService(repo, new(MockResolver)).GetAddress(context.Background(), 4)

		assert.ErrorIs(t, err, ErrAddressNotFound)
	})
}

func TestAddressService_ListAddressesByPostalCodeState(t *testing.T) {
	t.Run("empty state", func(t *testing.T) {
		_, err := NewAddressService(new(MockAddressRepository), new(MockResolver)).ListAddressesByPostalCodeState(context.Background(), "")
		assert.Error(t, err)
	})

	t.Run("delegates to repository", func(t *testing.T) {
		repo := new(MockAddressRepository)
		addrs := []models.Address{{ID: 1, DerivedState: models.StringPtr("NY")}}
		repo.On("ListAddressesByPostalCodeState", mock.Anything, "NY").Return(addrs, nil)

		result, err := NewAddressService(repo, new(MockResolver)).ListAddressesByPostalCodeState(context.Background(), "NY")

		require.NoError(t, err)
		assert.Equal(t, addrs, result)
		repo.AssertExpectations(t)
	})
}

func TestAddressService_RefreshGeography(t *testing.T) {
	repo := new(MockAddressRepository)
	resolver := new(MockResolver)
	existing := &models.Address{
		ID:         9,
		City:       models.StringPtr("Somecity"),
		PostalCode: models.StringPtr("SP7 7BE"),
		Country:    "uk",
	}
	refreshed := &models.Address{
		ID:          9,
		City:        models.StringPtr("Somecity"),
		PostalCode:  models.StringPtr("SP7 7BE"),
		Country:     "uk",
		DerivedCity: models.StringPtr("North Dorset"),
	}
	repo.On("GetAddress", mock.Anything, int64(9)).Return(existing, nil)
	resolver.On("Resolve", mock.Anything, "uk", "SP7 7BE").Return(postcodesResult, nil)
	repo.On("UpdatePostalCodeGeography", mock.Anything, int64(9), postcodesResult).Return(refreshed, nil)

	result, err := NewAddressService(repo, resolver).RefreshGeography(context.Background(), 9)

	require.NoError(t, err)
	assert.Equal(t, "North Dorset", *result.PostalCodeCity())
	repo.AssertExpectations(t)
	resolver.AssertExpectations(t)
}

func TestAddressService_Lookup(t *testing.T) {
	t.Run("invalid country", func(t *testing.T) {
		_, err := NewAddressService(new(MockAddressRepository), new(MockResolver)).Lookup(context.Background(), "", "11216")
		assert.ErrorIs(t, err, ErrInvalidCountry)
	})

	t.Run("resolves", func(t *testing.T) {
		resolver := new(MockResolver)
		resolver.On("Resolve", mock.Anything, "us", "11216").Return(ziptasticResult, nil)

		result, err := NewAddressService(new(MockAddressRepository), resolver).Lookup(context.Background(), "us", "11216")

		require.NoError(t, err)
		assert.Equal(t, ziptasticResult, result)
	})
}

// The builder against stub services, covering the path the API takes.
func TestAddressBuilder_WithResolver(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/v2/US/11216":
			_, _ = w.Write([]byte(`{"city": "Brooklyn", "state_short": "NY"}`))
		case "/postcodes/SP7 7BE":
			_, _ = w.Write([]byte(`{"result": {"admin_district": "North Dorset"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	builder := NewAddressBuilder(lookup.NewResolver(lookup.Config{
		PostcodesBaseURL: srv.URL + "/postcodes/",
		ZiptasticBaseURL: srv.URL + "/v2/",
		ZiptasticAPIKey:  "key",
	}, srv.Client(), nil))

	us, err := builder.Construct(context.Background(), AddressInput{
		StreetAddress: "55 Elm Rd",
		City:          models.StringPtr("New York City"),
		State:         models.StringPtr("New York"),
		PostalCode:    models.StringPtr("11216"),
		Country:       "US",
	})
	require.NoError(t, err)
	assert.Equal(t, "Brooklyn", *us.PostalCodeCity())
	assert.Equal(t, "NY", *us.PostalCodeState())
	assert.Equal(t, "New York City", *us.City)
	assert.Equal(t, "New York", *us.State)
	assert.Equal(t, "us", us.Country)

	uk, err := builder.Construct(context.Background(), AddressInput{
		StreetAddress: "55 Elm Rd",
		City:          models.StringPtr("Somecity"),
		State:         models.StringPtr("Somestate"),
		PostalCode:    models.StringPtr("SP7 7BE"),
		Country:       "UK",
	})
	require.NoError(t, err)
	assert.Equal(t, "North Dorset", *uk.PostalCodeCity())
	assert.Equal(t, "Somestate", *uk.PostalCodeState())
	assert.Equal(t, "uk", uk.Country)

	gh, err := builder.Construct(context.Background(), AddressInput{
		StreetAddress: "1 Ring Rd",
		City:          models.StringPtr("Accra"),
		PostalCode:    models.StringPtr("11216"),
		Country:       "gh",
	})
	require.NoError(t, err)
	assert.Equal(t, "Accra", *gh.PostalCodeCity())

	assert.Equal(t, []string{"/v2/US/11216", "/postcodes/SP7 7BE"}, paths)
}
