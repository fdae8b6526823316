package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// ========== EMPLOYEES ==========

type employeeRepository struct {
	s *Store
}

func NewEmployeeRepository(s *Store) employee.EmployeeRepository {
	return &employeeRepository{s: s}
}

func checkEmployeeRefs(d *state, e employee.Employee) error {
	for _, other := range d.employees {
		if other.ID != e.ID && other.TaxID == e.TaxID {
			return employee.ErrTaxIDExists
		}
	}
	if e.SuperiorID != nil {
		if *e.SuperiorID == e.ID {
			return employee.ErrSelfSuperior
		}
		if _, ok := d.employees[*e.SuperiorID]; !ok {
			return employee.ErrSuperiorNotFound
		}
	}
	return nil
}

func (r *employeeRepository) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	err := r.s.do(ctx, func(d *state) error {
		e.ID = r.s.newID()
		if err := checkEmployeeRefs(d, e); err != nil {
			return err
		}
		now := r.s.now()
		e.CreatedAt, e.UpdatedAt = now, now
		d.employees[e.ID] = e
		return nil
	})
	if err != nil {
		return employee.Employee{}, err
	}
	return e, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	var e employee.Employee
	err := r.s.do(ctx, func(d *state) error {
		found, ok := d.employees[id]
		if !ok {
			return employee.ErrEmployeeNotFound
		}
		e = found
		return nil
	})
	return e, err
}

// GetByIDForUpdate needs no row lock: transactions already hold the store.
func (r *employeeRepository) GetByIDForUpdate(ctx context.Context, id string) (employee.Employee, error) {
	return r.GetByID(ctx, id)
}

func (r *employeeRepository) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	var out []employee.Employee
	err := r.s.do(ctx, func(d *state) error {
		out = collect(d.employees, func(e employee.Employee) bool {
			switch {
			case filter.Status != nil && e.Status != *filter.Status:
				return false
			case filter.Sector != nil && (e.Sector == nil || *e.Sector != *filter.Sector):
				return false
			case filter.Role != nil && (e.Role == nil || *e.Role != *filter.Role):
				return false
			case filter.InPayroll != nil && e.InPayroll != *filter.InPayroll:
				return false
			case filter.Search != nil && !strings.Contains(strings.ToLower(e.FullName), strings.ToLower(*filter.Search)):
				return false
			}
			return true
		})
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, err
}

func (r *employeeRepository) Update(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	err := r.s.do(ctx, func(d *state) error {
		current, ok := d.employees[e.ID]
		if !ok {
			return employee.ErrEmployeeNotFound
		}
		if err := checkEmployeeRefs(d, e); err != nil {
			return err
		}
		e.CreatedAt = current.CreatedAt
		e.UpdatedAt = r.s.now()
		d.employees[e.ID] = e
		return nil
	})
	if err != nil {
		return employee.Employee{}, err
	}
	return e, nil
}

func (r *employeeRepository) Delete(ctx context.Context, id string) error {
	return r.s.do(ctx, func(d *state) error {
		if _, ok := d.employees[id]; !ok {
			return employee.ErrEmployeeNotFound
		}
		for _, item := range d.lineItems {
			if item.EmployeeID == id {
				return employee.ErrEmployeeInUse
			}
		}
		for cid, c := range d.contracts {
			if c.EmployeeID == id && contractInCompetence(d, cid) {
				return employee.ErrEmployeeInUse
			}
		}

		for cid, c := range d.contracts {
			if c.EmployeeID == id {
				delete(d.contracts, cid)
			}
		}
		for fid, f := range d.fixedEntries {
			if f.EmployeeID == id {
				delete(d.fixedEntries, fid)
			}
		}
		for aid, a := range d.advances {
			if a.EmployeeID == id {
				delete(d.advances, aid)
			}
		}
		for vid, v := range d.vacations {
			if v.EmployeeID == id {
				delete(d.vacations, vid)
			}
		}
		for key := range d.summaries {
			if key.employeeID == id {
				delete(d.summaries, key)
			}
		}
		for oid, other := range d.employees {
			if other.SuperiorID != nil && *other.SuperiorID == id {
				other.SuperiorID = nil
				d.employees[oid] = other
			}
		}
		delete(d.employees, id)
		return nil
	})
}

// ========== CONTRACTS ==========

type contractRepository struct {
	s *Store
}

func NewContractRepository(s *Store) employee.ContractRepository {
	return &contractRepository{s: s}
}

func (r *contractRepository) Create(ctx context.Context, c employee.Contract) (employee.Contract, error) {
	err := r.s.do(ctx, func(d *state) error {
		if _, ok := d.employees[c.EmployeeID]; !ok {
			return employee.ErrEmployeeNotFound
		}
		now := r.s.now()
		c.ID = r.s.newID()
		c.CreatedAt, c.UpdatedAt = now, now
		d.contracts[c.ID] = c
		return nil
	})
	if err != nil {
		return employee.Contract{}, err
	}
	return c, nil
}

func (r *contractRepository) GetByID(ctx context.Context, id string) (employee.Contract, error) {
	var c employee.Contract
	err := r.s.do(ctx, func(d *state) error {
		found, ok := d.contracts[id]
		if !ok {
			return employee.ErrContractNotFound
		}
		c = found
		return nil
	})
	return c, err
}

func (r *contractRepository) ListByEmployee(ctx context.Context, employeeID string) ([]employee.Contract, error) {
	var out []employee.Contract
	err := r.s.do(ctx, func(d *state) error {
		out = collect(d.contracts, func(c employee.Contract) bool { return c.EmployeeID == employeeID })
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, err
}

func (r *contractRepository) ListEligible(ctx context.Context, start, end time.Time) ([]employee.EligibleContract, error) {
	var out []employee.EligibleContract
	starts := make(map[string]time.Time)
	err := r.s.do(ctx, func(d *state) error {
		for _, c := range d.contracts {
			e, ok := d.employees[c.EmployeeID]
			if !ok || !e.InPayroll || !c.ActiveDuring(start, end) {
				continue
			}
			out = append(out, employee.EligibleContract{ContractID: c.ID, Employee: e})
			starts[c.ID] = c.StartDate
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Employee.FullName != out[j].Employee.FullName {
			return out[i].Employee.FullName < out[j].Employee.FullName
		}
		return starts[out[i].ContractID].Before(starts[out[j].ContractID])
	})
	return out, err
}

func (r *contractRepository) Update(ctx context.Context, c employee.Contract) (employee.Contract, error) {
	err := r.s.do(ctx, func(d *state) error {
		current, ok := d.contracts[c.ID]
		if !ok {
			return employee.ErrContractNotFound
		}
		c.EmployeeID = current.EmployeeID
		c.CreatedAt = current.CreatedAt
		c.UpdatedAt = r.s.now()
		d.contracts[c.ID] = c
		return nil
	})
	if err != nil {
		return employee.Contract{}, err
	}
	return c, nil
}

func (r *contractRepository) Delete(ctx context.Context, id string) error {
	return r.s.do(ctx, func(d *state) error {
		if _, ok := d.contracts[id]; !ok {
			return employee.ErrContractNotFound
		}
		if contractInCompetence(d, id) {
			return employee.ErrContractInUse
		}
		delete(d.contracts, id)
		return nil
	})
}

func contractInCompetence(d *state, id string) bool {
	for _, ids := range d.competenceContracts {
		for _, cid := range ids {
			if cid == id {
				return true
			}
		}
	}
	return false
}

// ========== FIXED ENTRIES ==========

type fixedEntryRepository struct {
	s *Store
}

func NewFixedEntryRepository(s *Store) employee.FixedEntryRepository {
	return &fixedEntryRepository{s: s}
}

func withFixedComponent(d *state, e employee.FixedEntry) employee.FixedEntry {
	if c, ok := d.components[e.PayComponentID]; ok {
		e.Component = &c
	}
	return e
}

func (r *fixedEntryRepository) Create(ctx context.Context, entry employee.FixedEntry) (employee.FixedEntry, error) {
	err := r.s.do(ctx, func(d *state) error {
		if _, ok := d.employees[entry.EmployeeID]; !ok {
			return employee.ErrEmployeeNotFound
		}
		if _, ok := d.components[entry.PayComponentID]; !ok {
			return catalog.ErrPayComponentNotFound
		}
		now := r.s.now()
		entry.ID = r.s.newID()
		entry.CreatedAt, entry.UpdatedAt = now, now
		entry.Component = nil
		d.fixedEntries[entry.ID] = entry
		entry = withFixedComponent(d, entry)
		return nil
	})
	if err != nil {
		return employee.FixedEntry{}, err
	}
	return entry, nil
}

func (r *fixedEntryRepository) GetByID(ctx context.Context, id string) (employee.FixedEntry, error) {
	var e employee.FixedEntry
	err := r.s.do(ctx, func(d *state) error {
		found, ok := d.fixedEntries[id]
		if !ok {
			return employee.ErrFixedEntryNotFound
		}
		e = withFixedComponent(d, found)
		return nil
	})
	return e, err
}

func (r *fixedEntryRepository) List(ctx context.Context, filter employee.FixedEntryFilter) ([]employee.FixedEntry, error) {
	var out []employee.FixedEntry
	err := r.s.do(ctx, func(d *state) error {
		for _, e := range d.fixedEntries {
			if filter.EmployeeID != nil && e.EmployeeID != *filter.EmployeeID {
				continue
			}
			out = append(out, withFixedComponent(d, e))
		}
		return nil
	})
	sortByID(out, func(e employee.FixedEntry) string { return e.ID })
	return out, err
}

func (r *fixedEntryRepository) ListActiveForEmployee(ctx context.Context, employeeID string, start, end time.Time) ([]employee.FixedEntry, error) {
	var out []employee.FixedEntry
	err := r.s.do(ctx, func(d *state) error {
		for _, e := range d.fixedEntries {
			if e.EmployeeID == employeeID && e.ActiveDuring(start, end) {
				out = append(out, withFixedComponent(d, e))
			}
		}
		return nil
	})
	sortByID(out, func(e employee.FixedEntry) string { return e.ID })
	return out, err
}

func (r *fixedEntryRepository) Update(ctx context.Context, entry employee.FixedEntry) (employee.FixedEntry, error) {
	err := r.s.do(ctx, func(d *state) error {
		current, ok := d.fixedEntries[entry.ID]
		if !ok {
			return employee.ErrFixedEntryNotFound
		}
		entry.EmployeeID = current.EmployeeID
		entry.CreatedAt = current.CreatedAt
		entry.UpdatedAt = r.s.now()
		entry.Component = nil
		d.fixedEntries[entry.ID] = entry
		entry = withFixedComponent(d, entry)
		return nil
	})
	if err != nil {
		return employee.FixedEntry{}, err
	}
	return entry, nil
}

func (r *fixedEntryRepository) Delete(ctx context.Context, id string) error {
	return r.s.do(ctx, func(d *state) error {
		if _, ok := d.fixedEntries[id]; !ok {
			return employee.ErrFixedEntryNotFound
		}
		delete(d.fixedEntries, id)
		return nil
	})
}

// ========== ADVANCES ==========

type advanceRepository struct {
	s *Store
}

func NewAdvanceRepository(s *Store) employee.AdvanceRepository {
	return &advanceRepository{s: s}
}

func sortAdvances(out []employee.Advance) {
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
}

func (r *advanceRepository) Create(ctx context.Context, a employee.Advance) (employee.Advance, error) {
	err := r.s.do(ctx, func(d *state) error {
		if _, ok := d.employees[a.EmployeeID]; !ok {
			return employee.ErrEmployeeNotFound
		}
		if a.EventID != nil {
			if _, ok := d.events[*a.EventID]; !ok {
				return payroll.ErrEventNotFound
			}
		}
		now := r.s.now()
		a.ID = r.s.newID()
		a.CreatedAt, a.UpdatedAt = now, now
		d.advances[a.ID] = a
		return nil
	})
	if err != nil {
		return employee.Advance{}, err
	}
	return a, nil
}

func (r *advanceRepository) GetByID(ctx context.Context, id string) (employee.Advance, error) {
	var a employee.Advance
	err := r.s.do(ctx, func(d *state) error {
		found, ok := d.advances[id]
		if !ok {
			return employee.ErrAdvanceNotFound
		}
		a = found
		return nil
	})
	return a, err
}

func (r *advanceRepository) List(ctx context.Context, filter employee.AdvanceFilter) ([]employee.Advance, error) {
	var out []employee.Advance
	err := r.s.do(ctx, func(d *state) error {
		out = collect(d.advances, func(a employee.Advance) bool {
			switch {
			case filter.EmployeeID != nil && a.EmployeeID != *filter.EmployeeID:
				return false
			case filter.EventID != nil && (a.EventID == nil || *a.EventID != *filter.EventID):
				return false
			case filter.Status != nil && a.Status != *filter.Status:
				return false
			}
			return true
		})
		return nil
	})
	sortAdvances(out)
	return out, err
}

func (r *advanceRepository) ListPendingByEmployee(ctx context.Context, employeeID string) ([]employee.Advance, error) {
	pending := employee.AdvanceStatusPending
	return r.List(ctx, employee.AdvanceFilter{EmployeeID: &employeeID, Status: &pending})
}

func (r *advanceRepository) transition(ctx context.Context, id string, from, to employee.AdvanceStatus) error {
	return r.s.do(ctx, func(d *state) error {
		a, ok := d.advances[id]
		if !ok {
			return employee.ErrAdvanceNotFound
		}
		if a.Status != from {
			return employee.ErrAdvanceNotPending
		}
		a.Status = to
		a.UpdatedAt = r.s.now()
		d.advances[id] = a
		return nil
	})
}

func (r *advanceRepository) MarkDeducted(ctx context.Context, id string) error {
	return r.transition(ctx, id, employee.AdvanceStatusPending, employee.AdvanceStatusDeducted)
}

func (r *advanceRepository) MarkPending(ctx context.Context, id string) error {
	return r.s.do(ctx, func(d *state) error {
		a, ok := d.advances[id]
		if !ok {
			return employee.ErrAdvanceNotFound
		}
		if a.Status == employee.AdvanceStatusDeducted {
			a.Status = employee.AdvanceStatusPending
			a.UpdatedAt = r.s.now()
			d.advances[id] = a
		}
		return nil
	})
}

func (r *advanceRepository) Cancel(ctx context.Context, id string) error {
	return r.transition(ctx, id, employee.AdvanceStatusPending, employee.AdvanceStatusCancelled)
}

func (r *advanceRepository) Delete(ctx context.Context, id string) error {
	return r.s.do(ctx, func(d *state) error {
		if _, ok := d.advances[id]; !ok {
			return employee.ErrAdvanceNotFound
		}
		for lid, item := range d.lineItems {
			if item.AdvanceID != nil && *item.AdvanceID == id {
				item.AdvanceID = nil
				d.lineItems[lid] = item
			}
		}
		delete(d.advances, id)
		return nil
	})
}

func (r *advanceRepository) SumByEvent(ctx context.Context, eventID string) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.s.do(ctx, func(d *state) error {
		for _, a := range d.advances {
			if a.EventID != nil && *a.EventID == eventID && a.Status != employee.AdvanceStatusCancelled {
				total = total.Add(a.Amount)
			}
		}
		return nil
	})
	return total, err
}

// ========== VACATIONS ==========

type vacationRepository struct {
	s *Store
}

func NewVacationRepository(s *Store) employee.VacationRepository {
	return &vacationRepository{s: s}
}

func (r *vacationRepository) Create(ctx context.Context, v employee.Vacation) (employee.Vacation, error) {
	err := r.s.do(ctx, func(d *state) error {
		if _, ok := d.employees[v.EmployeeID]; !ok {
			return employee.ErrEmployeeNotFound
		}
		now := r.s.now()
		v.ID = r.s.newID()
		v.CreatedAt, v.UpdatedAt = now, now
		d.vacations[v.ID] = v
		return nil
	})
	if err != nil {
		return employee.Vacation{}, err
	}
	return v, nil
}

func (r *vacationRepository) GetByID(ctx context.Context, id string) (employee.Vacation, error) {
	var v employee.Vacation
	err := r.s.do(ctx, func(d *state) error {
		found, ok := d.vacations[id]
		if !ok {
			return employee.ErrVacationNotFound
		}
		v = found
		return nil
	})
	return v, err
}

func (r *vacationRepository) List(ctx context.Context, filter employee.VacationFilter) ([]employee.Vacation, error) {
	var out []employee.Vacation
	err := r.s.do(ctx, func(d *state) error {
		out = collect(d.vacations, func(v employee.Vacation) bool {
			if filter.EmployeeID != nil && v.EmployeeID != *filter.EmployeeID {
				return false
			}
			return filter.Status == nil || v.Status == *filter.Status
		})
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out, err
}

func (r *vacationRepository) UpdateStatus(ctx context.Context, id string, status employee.VacationStatus) error {
	return r.s.do(ctx, func(d *state) error {
		v, ok := d.vacations[id]
		if !ok {
			return employee.ErrVacationNotFound
		}
		v.Status = status
		v.UpdatedAt = r.s.now()
		d.vacations[id] = v
		return nil
	})
}
