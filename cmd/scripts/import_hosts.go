package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ArowuTest/hostboard-backend/internal/config"
	"github.com/ArowuTest/hostboard-backend/internal/models"
	mongorepo "github.com/ArowuTest/hostboard-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/hostboard-backend/internal/services"
	"github.com/ArowuTest/hostboard-backend/pkg/mongodb"
	"go.uber.org/zap"
)

// Imports the host directory from a CSV export into MongoDB.
// Usage: import_hosts <file.csv>
func main() {
	if len(os.Args) < 2 {
		log.Fatal("CSV file path is required as a command line argument")
	}

	cfg, err := config.Read()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel, "release")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	file, err := os.Open(os.Args[1])
	if err != nil {
		logger.Fatal("Failed to open CSV file", zap.Error(err))
	}
	defer file.Close()

	rows, err := parseHosts(file)
	if err != nil {
		logger.Fatal("Failed to parse CSV file", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(cfg.MongoDB.Database)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal("Failed to ensure indexes", zap.Error(err))
	}

	hostService := services.NewHostService(mongorepo.NewHostRepository(db), logger)
	if _, err := hostService.Import(ctx, rows); err != nil {
		logger.Fatal("Failed to import hosts", zap.Error(err))
	}
}

var errMissingColumn = errors.New("missing required column")

// parseHosts reads a CSV with a header row. Columns are matched by name, case-insensitively:
// email (required), firstName, lastName, phone, slackId, role, location, active, authId.
func parseHosts(r io.Reader) ([]*models.Host, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["email"]; !ok {
		return nil, fmt.Errorf("%w: email", errMissingColumn)
	}

	field := func(record []string, name string) string {
		i, ok := cols[strings.ToLower(name)]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var hosts []*models.Host
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		active := true
		if v := field(record, "active"); v != "" {
			active = v == "true" || v == "1" || strings.EqualFold(v, "yes")
		}
		hosts = append(hosts, &models.Host{
			AuthID:    field(record, "authId"),
			FirstName: field(record, "firstName"),
			LastName:  field(record, "lastName"),
			Email:     field(record, "email"),
			Phone:     field(record, "phone"),
			SlackID:   field(record, "slackId"),
			Role:      strings.ToLower(field(record, "role")),
			Location:  field(record, "location"),
			Active:    active,
		})
	}
	return hosts, nil
}
