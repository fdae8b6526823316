package main

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/fixtures"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/memory"
	"github.com/cmlabs-hris/payroll-engine-go/internal/repository/postgresql"
	payrollService "github.com/cmlabs-hris/payroll-engine-go/internal/service/payroll"
)

type app struct {
	db         *database.DB
	components catalog.PayComponentRepository
	payroll    payroll.PayrollService
	close      func()
}

func newPostgresApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	componentRepo := postgresql.NewPayComponentRepository(db)
	payrollSvc := payrollService.NewPayrollService(
		postgresql.NewTxManager(db),
		postgresql.NewCompetenceRepository(db),
		postgresql.NewEventRepository(db),
		postgresql.NewLineItemRepository(db),
		postgresql.NewSummaryRepository(db),
		componentRepo,
		postgresql.NewGeneralFixedEntryRepository(db),
		postgresql.NewContractRepository(db),
		postgresql.NewFixedEntryRepository(db),
		postgresql.NewAdvanceRepository(db),
		cfg.Payroll,
	)

	return &app{
		db:         db,
		components: componentRepo,
		payroll:    payrollSvc,
		close:      db.Close,
	}, nil
}

// newMemoryApp wires the services to a fresh in-memory store with the
// system components already seeded.
func newMemoryApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store := memory.NewStore()
	componentRepo := memory.NewPayComponentRepository(store)
	if _, err := fixtures.SeedPayComponents(ctx, componentRepo); err != nil {
		return nil, err
	}

	payrollSvc := payrollService.NewPayrollService(
		store,
		memory.NewCompetenceRepository(store),
		memory.NewEventRepository(store),
		memory.NewLineItemRepository(store),
		memory.NewSummaryRepository(store),
		componentRepo,
		memory.NewGeneralFixedEntryRepository(store),
		memory.NewContractRepository(store),
		memory.NewFixedEntryRepository(store),
		memory.NewAdvanceRepository(store),
		cfg.Payroll,
	)

	return &app{
		components: componentRepo,
		payroll:    payrollSvc,
		close:      func() {},
	}, nil
}
