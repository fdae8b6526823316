package catalog

import (
	"context"
	"time"
)

type PayComponentRepository interface {
	Create(ctx context.Context, component PayComponent) (PayComponent, error)
	GetByID(ctx context.Context, id string) (PayComponent, error)
	GetByCode(ctx context.Context, code string) (PayComponent, error)
	List(ctx context.Context, filter PayComponentFilter) ([]PayComponent, error)
	Update(ctx context.Context, component PayComponent) (PayComponent, error)
	// Delete fails with ErrPayComponentInUse while any entry or line item references the component.
	Delete(ctx context.Context, id string) error
}

type GeneralFixedEntryRepository interface {
	Create(ctx context.Context, entry GeneralFixedEntry) (GeneralFixedEntry, error)
	GetByID(ctx context.Context, id string) (GeneralFixedEntry, error)
	List(ctx context.Context, filter GeneralEntryFilter) ([]GeneralFixedEntry, error)
	// ListActiveDuring returns the IsActive entries overlapping [start, end), with Component joined.
	ListActiveDuring(ctx context.Context, start, end time.Time) ([]GeneralFixedEntry, error)
	Update(ctx context.Context, entry GeneralFixedEntry) (GeneralFixedEntry, error)
	Delete(ctx context.Context, id string) error
}
