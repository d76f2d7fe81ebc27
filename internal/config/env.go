// Package config loads application settings from environment variables,
// populated by the .env file in main.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Config holds all configuration for a migration run.
type Config struct {
	SourceDriver string
	SourceDSN    string
	TargetDSN    string

	// InvoiceCutoff is the business filter for client invoices: rows
	// created before this date are skipped, not migrated.
	InvoiceCutoff time.Time
}

const defaultInvoiceCutoff = "2021-01-01"

func LoadConfig() (*Config, error) {
	sourceDSN := os.Getenv("SOURCE_DSN")
	if sourceDSN == "" {
		return nil, errors.New("SOURCE_DSN environment variable not set")
	}

	targetDSN := os.Getenv("TARGET_DSN")
	if targetDSN == "" {
		return nil, errors.New("TARGET_DSN environment variable not set")
	}

	sourceDriver := os.Getenv("SOURCE_DRIVER")
	if sourceDriver == "" {
		sourceDriver = "mysql"
	}

	cutoffStr := os.Getenv("INVOICE_CUTOFF")
	if cutoffStr == "" {
		cutoffStr = defaultInvoiceCutoff
	}
	cutoff, err := time.Parse("2006-01-02", cutoffStr)
	if err != nil {
		return nil, fmt.Errorf("invalid INVOICE_CUTOFF %q: %w", cutoffStr, err)
	}

	return &Config{
		SourceDriver:  sourceDriver,
		SourceDSN:     sourceDSN,
		TargetDSN:     targetDSN,
		InvoiceCutoff: cutoff,
	}, nil
}
