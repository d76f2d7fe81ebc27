package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/voxelhealth/voxmigrate/internal/config"
	"github.com/voxelhealth/voxmigrate/internal/entities"
	"github.com/voxelhealth/voxmigrate/internal/migrate"
	"github.com/voxelhealth/voxmigrate/pkg/database"
	"github.com/voxelhealth/voxmigrate/pkg/logger"
)

func handleRunAll(logFile string, dryRun bool) error {
	return withOrchestrator(logFile, dryRun, func(ctx context.Context, orch *migrate.Orchestrator) (*migrate.Report, error) {
		return orch.RunAll(ctx)
	})
}

func handleRunModule(logFile string, dryRun bool, entity string) error {
	return withOrchestrator(logFile, dryRun, func(ctx context.Context, orch *migrate.Orchestrator) (*migrate.Report, error) {
		return orch.RunOne(ctx, migrate.EntityType(entity))
	})
}

func withOrchestrator(logFile string, dryRun bool, run func(context.Context, *migrate.Orchestrator) (*migrate.Report, error)) error {
	if err := logger.InitLogger(logFile); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	source, err := database.ConnectSource(cfg.SourceDriver, cfg.SourceDSN)
	if err != nil {
		return fmt.Errorf("connecting to source database: %w", err)
	}
	defer source.Close()

	target, err := database.ConnectTarget(cfg.TargetDSN)
	if err != nil {
		return fmt.Errorf("connecting to target database: %w", err)
	}
	defer target.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	idmap := migrate.NewIdentityMap(target)
	if err := idmap.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("preparing identity map: %w", err)
	}

	engine := migrate.NewEngine(target, idmap, dryRun)
	migrator := migrate.NewMigrator(source, engine, idmap)

	orch, err := migrate.NewOrchestrator(migrator, entities.Schedule(entities.Options{
		InvoiceCutoff: cfg.InvoiceCutoff,
	}))
	if err != nil {
		return fmt.Errorf("building migration schedule: %w", err)
	}

	_, runErr := run(ctx, orch)
	return runErr
}
