package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
)

// systemCodes are posted by the payroll engine itself.
var systemCodes = map[string]bool{
	catalog.CodeBaseSalary:       true,
	catalog.CodeAdvanceDeduction: true,
	catalog.CodeThirteenthSalary: true,
}

type CatalogServiceImpl struct {
	componentRepo    catalog.PayComponentRepository
	generalEntryRepo catalog.GeneralFixedEntryRepository
}

func NewCatalogService(
	componentRepo catalog.PayComponentRepository,
	generalEntryRepo catalog.GeneralFixedEntryRepository,
) catalog.CatalogService {
	return &CatalogServiceImpl{
		componentRepo:    componentRepo,
		generalEntryRepo: generalEntryRepo,
	}
}

// ========== PAY COMPONENTS ==========

func (s *CatalogServiceImpl) CreatePayComponent(ctx context.Context, req catalog.CreatePayComponentRequest) (catalog.PayComponent, error) {
	if err := req.Validate(); err != nil {
		return catalog.PayComponent{}, err
	}

	created, err := s.componentRepo.Create(ctx, catalog.PayComponent{
		Code:        req.Code,
		Name:        req.Name,
		Kind:        catalog.Kind(req.Kind),
		Basis:       catalog.Basis(req.Basis),
		Description: req.Description,
		IsActive:    true,
	})
	if err != nil {
		return catalog.PayComponent{}, err
	}

	slog.Info("Created pay component", "code", created.Code, "kind", created.Kind)
	return created, nil
}

func (s *CatalogServiceImpl) GetPayComponent(ctx context.Context, id string) (catalog.PayComponent, error) {
	return s.componentRepo.GetByID(ctx, id)
}

func (s *CatalogServiceImpl) GetPayComponentByCode(ctx context.Context, code string) (catalog.PayComponent, error) {
	return s.componentRepo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

func (s *CatalogServiceImpl) ListPayComponents(ctx context.Context, filter catalog.PayComponentFilter) ([]catalog.PayComponent, error) {
	return s.componentRepo.List(ctx, filter)
}

func (s *CatalogServiceImpl) UpdatePayComponent(ctx context.Context, req catalog.UpdatePayComponentRequest) (catalog.PayComponent, error) {
	if err := req.Validate(); err != nil {
		return catalog.PayComponent{}, err
	}

	current, err := s.componentRepo.GetByID(ctx, req.ID)
	if err != nil {
		return catalog.PayComponent{}, err
	}

	// The engine relies on the kind and basis of its own components.
	if systemCodes[current.Code] {
		changesName := req.Name != nil && *req.Name != current.Name
		changesKind := req.Kind != nil && catalog.Kind(*req.Kind) != current.Kind
		changesBasis := req.Basis != nil && catalog.Basis(*req.Basis) != current.Basis
		if changesName || changesKind || changesBasis {
			return catalog.PayComponent{}, catalog.ErrSystemComponentImmutable
		}
	}

	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Kind != nil {
		current.Kind = catalog.Kind(*req.Kind)
	}
	if req.Basis != nil {
		current.Basis = catalog.Basis(*req.Basis)
	}
	if req.Description != nil {
		current.Description = req.Description
	}
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}

	return s.componentRepo.Update(ctx, current)
}

func (s *CatalogServiceImpl) DeletePayComponent(ctx context.Context, id string) error {
	current, err := s.componentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if systemCodes[current.Code] {
		return catalog.ErrSystemComponentImmutable
	}

	if err := s.componentRepo.Delete(ctx, id); err != nil {
		return err
	}

	slog.Info("Deleted pay component", "code", current.Code)
	return nil
}

// ========== GENERAL FIXED ENTRIES ==========

func (s *CatalogServiceImpl) CreateGeneralEntry(ctx context.Context, req catalog.CreateGeneralEntryRequest) (catalog.GeneralFixedEntry, error) {
	if err := req.Validate(); err != nil {
		return catalog.GeneralFixedEntry{}, err
	}

	return s.generalEntryRepo.Create(ctx, catalog.GeneralFixedEntry{
		PayComponentID: req.PayComponentID,
		FixedTerms:     req.Terms(),
		Notes:          req.Notes,
		IsActive:       true,
	})
}

func (s *CatalogServiceImpl) GetGeneralEntry(ctx context.Context, id string) (catalog.GeneralFixedEntry, error) {
	return s.generalEntryRepo.GetByID(ctx, id)
}

func (s *CatalogServiceImpl) ListGeneralEntries(ctx context.Context, filter catalog.GeneralEntryFilter) ([]catalog.GeneralFixedEntry, error) {
	return s.generalEntryRepo.List(ctx, filter)
}

func (s *CatalogServiceImpl) UpdateGeneralEntry(ctx context.Context, req catalog.UpdateGeneralEntryRequest) (catalog.GeneralFixedEntry, error) {
	if err := req.Validate(); err != nil {
		return catalog.GeneralFixedEntry{}, err
	}

	current, err := s.generalEntryRepo.GetByID(ctx, req.ID)
	if err != nil {
		return catalog.GeneralFixedEntry{}, err
	}

	terms := req.Apply(current.FixedTerms)
	if err := terms.Validate(); err != nil {
		return catalog.GeneralFixedEntry{}, err
	}
	current.FixedTerms = terms

	if req.Notes != nil {
		current.Notes = *req.Notes
	}
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}

	return s.generalEntryRepo.Update(ctx, current)
}

func (s *CatalogServiceImpl) DeleteGeneralEntry(ctx context.Context, id string) error {
	return s.generalEntryRepo.Delete(ctx, id)
}
