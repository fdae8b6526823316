package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
)

type payComponentRepository struct {
	s *Store
}

func NewPayComponentRepository(s *Store) catalog.PayComponentRepository {
	return &payComponentRepository{s: s}
}

func checkComponentUnique(d *state, c catalog.PayComponent) error {
	for _, other := range d.components {
		if other.ID == c.ID {
			continue
		}
		if other.Code == c.Code {
			return catalog.ErrPayComponentCodeExists
		}
		if other.Name == c.Name {
			return catalog.ErrPayComponentNameExists
		}
	}
	return nil
}

func (r *payComponentRepository) Create(ctx context.Context, component catalog.PayComponent) (catalog.PayComponent, error) {
	err := r.s.do(ctx, func(d *state) error {
		if err := checkComponentUnique(d, component); err != nil {
			return err
		}
		now := r.s.now()
		component.ID = r.s.newID()
		component.CreatedAt, component.UpdatedAt = now, now
		d.components[component.ID] = component
		return nil
	})
	if err != nil {
		return catalog.PayComponent{}, err
	}
	return component, nil
}

func (r *payComponentRepository) GetByID(ctx context.Context, id string) (catalog.PayComponent, error) {
	var c catalog.PayComponent
	err := r.s.do(ctx, func(d *state) error {
		found, ok := d.components[id]
		if !ok {
			return catalog.ErrPayComponentNotFound
		}
		c = found
		return nil
	})
	return c, err
}

func (r *payComponentRepository) GetByCode(ctx context.Context, code string) (catalog.PayComponent, error) {
	var c catalog.PayComponent
	err := r.s.do(ctx, func(d *state) error {
		for _, found := range d.components {
			if found.Code == code {
				c = found
				return nil
			}
		}
		return catalog.ErrPayComponentNotFound
	})
	return c, err
}

func (r *payComponentRepository) List(ctx context.Context, filter catalog.PayComponentFilter) ([]catalog.PayComponent, error) {
	var out []catalog.PayComponent
	err := r.s.do(ctx, func(d *state) error {
		out = collect(d.components, func(c catalog.PayComponent) bool {
			if filter.Kind != nil && c.Kind != *filter.Kind {
				return false
			}
			return !filter.ActiveOnly || c.IsActive
		})
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *payComponentRepository) Update(ctx context.Context, component catalog.PayComponent) (catalog.PayComponent, error) {
	err := r.s.do(ctx, func(d *state) error {
		current, ok := d.components[component.ID]
		if !ok {
			return catalog.ErrPayComponentNotFound
		}
		if err := checkComponentUnique(d, component); err != nil {
			return err
		}
		component.CreatedAt = current.CreatedAt
		component.UpdatedAt = r.s.now()
		d.components[component.ID] = component
		return nil
	})
	if err != nil {
		return catalog.PayComponent{}, err
	}
	return component, nil
}

func (r *payComponentRepository) Delete(ctx context.Context, id string) error {
	return r.s.do(ctx, func(d *state) error {
		if _, ok := d.components[id]; !ok {
			return catalog.ErrPayComponentNotFound
		}
		for _, e := range d.generalEntries {
			if e.PayComponentID == id {
				return catalog.ErrPayComponentInUse
			}
		}
		for _, e := range d.fixedEntries {
			if e.PayComponentID == id {
				return catalog.ErrPayComponentInUse
			}
		}
		for _, item := range d.lineItems {
			if item.PayComponentID == id {
				return catalog.ErrPayComponentInUse
			}
		}
		delete(d.components, id)
		return nil
	})
}

type generalFixedEntryRepository struct {
	s *Store
}

func NewGeneralFixedEntryRepository(s *Store) catalog.GeneralFixedEntryRepository {
	return &generalFixedEntryRepository{s: s}
}

func (r *generalFixedEntryRepository) Create(ctx context.Context, entry catalog.GeneralFixedEntry) (catalog.GeneralFixedEntry, error) {
	err := r.s.do(ctx, func(d *state) error {
		if _, ok := d.components[entry.PayComponentID]; !ok {
			return catalog.ErrPayComponentNotFound
		}
		now := r.s.now()
		entry.ID = r.s.newID()
		entry.CreatedAt, entry.UpdatedAt = now, now
		entry.Component = nil
		d.generalEntries[entry.ID] = entry
		entry = withGeneralComponent(d, entry)
		return nil
	})
	if err != nil {
		return catalog.GeneralFixedEntry{}, err
	}
	return entry, nil
}

func (r *generalFixedEntryRepository) GetByID(ctx context.Context, id string) (catalog.GeneralFixedEntry, error) {
	var e catalog.GeneralFixedEntry
	err := r.s.do(ctx, func(d *state) error {
		found, ok := d.generalEntries[id]
		if !ok {
			return catalog.ErrGeneralEntryNotFound
		}
		e = withGeneralComponent(d, found)
		return nil
	})
	return e, err
}

func withGeneralComponent(d *state, e catalog.GeneralFixedEntry) catalog.GeneralFixedEntry {
	if c, ok := d.components[e.PayComponentID]; ok {
		e.Component = &c
	}
	return e
}

func (r *generalFixedEntryRepository) List(ctx context.Context, filter catalog.GeneralEntryFilter) ([]catalog.GeneralFixedEntry, error) {
	var out []catalog.GeneralFixedEntry
	err := r.s.do(ctx, func(d *state) error {
		for _, e := range d.generalEntries {
			if filter.PayComponentID != nil && e.PayComponentID != *filter.PayComponentID {
				continue
			}
			if filter.ActiveOnly && !e.IsActive {
				continue
			}
			out = append(out, withGeneralComponent(d, e))
		}
		return nil
	})
	sortByID(out, func(e catalog.GeneralFixedEntry) string { return e.ID })
	return out, err
}

func (r *generalFixedEntryRepository) ListActiveDuring(ctx context.Context, start, end time.Time) ([]catalog.GeneralFixedEntry, error) {
	var out []catalog.GeneralFixedEntry
	err := r.s.do(ctx, func(d *state) error {
		for _, e := range d.generalEntries {
			if e.IsActive && e.ActiveDuring(start, end) {
				out = append(out, withGeneralComponent(d, e))
			}
		}
		return nil
	})
	sortByID(out, func(e catalog.GeneralFixedEntry) string { return e.ID })
	return out, err
}

func (r *generalFixedEntryRepository) Update(ctx context.Context, entry catalog.GeneralFixedEntry) (catalog.GeneralFixedEntry, error) {
	err := r.s.do(ctx, func(d *state) error {
		current, ok := d.generalEntries[entry.ID]
		if !ok {
			return catalog.ErrGeneralEntryNotFound
		}
		if _, ok := d.components[entry.PayComponentID]; !ok {
			return catalog.ErrPayComponentNotFound
		}
		entry.CreatedAt = current.CreatedAt
		entry.UpdatedAt = r.s.now()
		entry.Component = nil
		d.generalEntries[entry.ID] = entry
		entry = withGeneralComponent(d, entry)
		return nil
	})
	if err != nil {
		return catalog.GeneralFixedEntry{}, err
	}
	return entry, nil
}

func (r *generalFixedEntryRepository) Delete(ctx context.Context, id string) error {
	return r.s.do(ctx, func(d *state) error {
		if _, ok := d.generalEntries[id]; !ok {
			return catalog.ErrGeneralEntryNotFound
		}
		delete(d.generalEntries, id)
		return nil
	})
}
