package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"

	"address-api/internal/config"
	"address-api/internal/lookup"
	"address-api/internal/metrics"
	"address-api/internal/models"
	"address-api/internal/repository"
	"address-api/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Column order of the import file, after a header row.
const (
	colStreet = iota
	colCity
	colState
	colPostalCode
	colCountry
	numColumns
)

func main() {
	file := flag.String("file", "", "Path to the CSV file to import")
	strict := flag.Bool("strict", false, "Abort on the first address that cannot be constructed")
	flag.Parse()

	if *file == "" {
		fmt.Println("Error: --file flag is required")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	config.SetupLogger(cfg)

	log.Info().Str("file", *file).Msg("starting import")

	inputs, err := parseCSV(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("error parsing CSV")
	}
	log.Info().Int("records", len(inputs)).Msg("parsed records")

	ctx := context.Background()

	resolver := lookup.NewResolver(lookup.Config{
		PostcodesBaseURL: cfg.PostcodesBaseURL,
		ZiptasticBaseURL: cfg.ZiptasticBaseURL,
		ZiptasticAPIKey:  cfg.ZiptasticAPIKey,
	}, &http.Client{Timeout: cfg.LookupTimeout}, metrics.NewLookupMetrics("address_importer", nil))

	addrs, err := buildAddresses(ctx, service.NewAddressBuilder(resolver), inputs, *strict)
	if err != nil {
		log.Fatal().Err(err).Msg("error constructing addresses")
	}

	if err := repository.RunMigrations(cfg.DBSource); err != nil {
		log.Fatal().Err(err).Msg("cannot run migrations")
	}

	pool, err := pgxpool.New(ctx, cfg.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer pool.Close()

	n, err := repository.NewRepository(pool).CopyAddresses(ctx, addrs)
	if err != nil {
		log.Fatal().Err(err).Msg("error inserting addresses")
	}

	log.Info().Int64("imported", n).Int("skipped", len(inputs)-len(addrs)).Msg("import finished")
}

// AddressBuilder constructs addresses from raw input.
type AddressBuilder interface {
	Construct(ctx context.Context, in service.AddressInput) (*models.Address, error)
}

func buildAddresses(ctx context.Context, builder AddressBuilder, inputs []service.AddressInput, strict bool) ([]models.Address, error) {
	addrs := make([]models.Address, 0, len(inputs))
	for i, in := range inputs {
		addr, err := builder.Construct(ctx, in)
		if err != nil {
			if strict {
				return nil, fmt.Errorf("record %d: %w", i+1, err)
			}
			log.Warn().Err(err).Int("record", i+1).Msg("skipping address")
			continue
		}
		addrs = append(addrs, *addr)
	}
	return addrs, nil
}

func parseCSV(filePath string) ([]service.AddressInput, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return readAddresses(file)
}

func readAddresses(r io.Reader) ([]service.AddressInput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var inputs []service.AddressInput
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		if len(record) < numColumns {
			return nil, fmt.Errorf("line %d: invalid record length: %d, expected %d columns", line, len(record), numColumns)
		}
		if len(record[colCountry]) != 2 {
			return nil, fmt.Errorf("line %d: invalid country: %q", line, record[colCountry])
		}

		inputs = append(inputs, service.AddressInput{
			StreetAddress: record[colStreet],
			City:          optional(record[colCity]),
			State:         optional(record[colState]),
			PostalCode:    optional(record[colPostalCode]),
			Country:       record[colCountry],
		})
	}

	return inputs, nil
}

// optional maps an empty CSV cell to nil.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
