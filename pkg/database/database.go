package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/voxelhealth/voxmigrate/pkg/logger"
)

// ConnectSource opens a read-only handle to the legacy store. The driver
// is configurable because older deployments of the practice platform ran
// on SQL Server while the main line is MySQL.
func ConnectSource(driverName, dsn string) (*sql.DB, error) {
	if driverName != "mysql" && driverName != "sqlserver" {
		return nil, fmt.Errorf("unsupported source driver %q", driverName)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening source database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to source database (ping failed): %w", err)
	}

	logger.Infof("Connected to source database (%s).", driverName)
	return db, nil
}

// ConnectTarget opens the handle to the redesigned PostgreSQL store.
func ConnectTarget(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening target database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to target database (ping failed): %w", err)
	}

	logger.Infof("Connected to target database (postgres).")
	return db, nil
}
