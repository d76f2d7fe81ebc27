package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("SOURCE_DSN", "user:pass@tcp(localhost:3306)/legacy")
	t.Setenv("TARGET_DSN", "postgres://localhost/redesigned")
	t.Setenv("SOURCE_DRIVER", "")
	t.Setenv("INVOICE_CUTOFF", "")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.SourceDriver)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), cfg.InvoiceCutoff)
}

func TestLoadConfigOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SOURCE_DRIVER", "sqlserver")
	t.Setenv("INVOICE_CUTOFF", "2020-06-15")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", cfg.SourceDriver)
	assert.Equal(t, 2020, cfg.InvoiceCutoff.Year())
}

func TestLoadConfigMissingDSN(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SOURCE_DSN", "")
	_, err := LoadConfig()
	assert.Error(t, err)

	setRequiredEnv(t)
	t.Setenv("TARGET_DSN", "")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigBadCutoff(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("INVOICE_CUTOFF", "June 2021")
	_, err := LoadConfig()
	assert.Error(t, err)
}
