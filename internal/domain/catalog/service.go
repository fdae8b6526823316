package catalog

import "context"

type CatalogService interface {
	CreatePayComponent(ctx context.Context, req CreatePayComponentRequest) (PayComponent, error)
	GetPayComponent(ctx context.Context, id string) (PayComponent, error)
	GetPayComponentByCode(ctx context.Context, code string) (PayComponent, error)
	ListPayComponents(ctx context.Context, filter PayComponentFilter) ([]PayComponent, error)
	UpdatePayComponent(ctx context.Context, req UpdatePayComponentRequest) (PayComponent, error)
	DeletePayComponent(ctx context.Context, id string) error

	CreateGeneralEntry(ctx context.Context, req CreateGeneralEntryRequest) (GeneralFixedEntry, error)
	GetGeneralEntry(ctx context.Context, id string) (GeneralFixedEntry, error)
	ListGeneralEntries(ctx context.Context, filter GeneralEntryFilter) ([]GeneralFixedEntry, error)
	UpdateGeneralEntry(ctx context.Context, req UpdateGeneralEntryRequest) (GeneralFixedEntry, error)
	DeleteGeneralEntry(ctx context.Context, id string) error
}
