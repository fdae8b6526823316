package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// ========== COMPETENCES ==========

type competenceRepository struct {
	s *Store
}

func NewCompetenceRepository(s *Store) payroll.CompetenceRepository {
	return &competenceRepository{s: s}
}

func (r *competenceRepository) Create(ctx context.Context, c payroll.Competence) (payroll.Competence, error) {
	err := r.s.do(ctx, func(d *state) error {
		for _, other := range d.competences {
			if other.Month == c.Month && other.Year == c.Year {
				return payroll.ErrDuplicateCompetence
			}
		}
		now := r.s.now()
		c.ID = r.s.newID()
		c.CreatedAt, c.UpdatedAt = now, now
		d.competences[c.ID] = c
		return nil
	})
	if err != nil {
		return payroll.Competence{}, err
	}
	return c, nil
}

func (r *competenceRepository) GetByID(ctx context.Context, id string) (payroll.Competence, error) {
	var c payroll.Competence
	err := r.s.do(ctx, func(d *state) error {
		found, ok := d.competences[id]
		if !ok {
			return payroll.ErrCompetenceNotFound
		}
		c = found
		return nil
	})
	return c, err
}

func (r *competenceRepository) GetByIDForUpdate(ctx context.Context, id string) (payroll.Competence, error) {
	return r.GetByID(ctx, id)
}

func (r *competenceRepository) GetByPeriod(ctx context.Context, month, year int) (payroll.Competence, error) {
	var c payroll.Competence
	err := r.s.do(ctx, func(d *state) error {
		for _, found := range d.competences {
			if found.Month == month && found.Year == year {
				c = found
				return nil
			}
		}
		return payroll.ErrCompetenceNotFound
	})
	return c, err
}

func (r *competenceRepository) List(ctx context.Context, filter payroll.CompetenceFilter) ([]payroll.Competence, error) {
	var out []payroll.Competence
	err := r.s.do(ctx, func(d *state) error {
		out = collect(d.competences, func(c payroll.Competence) bool {
			if filter.Year != nil && c.Year != *filter.Year {
				return false
			}
			return filter.Status == nil || c.Status == *filter.Status
		})
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out, err
}

func (r *competenceRepository) UpdateStatus(ctx context.Context, c payroll.Competence) error {
	return r.s.do(ctx, func(d *state) error {
		current, ok := d.competences[c.ID]
		if !ok {
			return payroll.ErrCompetenceNotFound
		}
		current.Status = c.Status
		current.ClosedAt = c.ClosedAt
		current.UpdatedAt = r.s.now()
		d.competences[c.ID] = current
		return nil
	})
}

func (r *competenceRepository) Delete(ctx context.Context, id string) error {
	return r.s.do(ctx, func(d *state) error {
		if _, ok := d.competences[id]; !ok {
			return payroll.ErrCompetenceNotFound
		}
		for lid, item := range d.lineItems {
			if item.CompetenceID == id {
				delete(d.lineItems, lid)
			}
		}
		for eid, e := range d.events {
			if e.CompetenceID != id {
				continue
			}
			for aid, a := range d.advances {
				if a.EventID != nil && *a.EventID == eid {
					a.EventID = nil
					d.advances[aid] = a
				}
			}
			delete(d.events, eid)
		}
		for key := range d.summaries {
			if key.competenceID == id {
				delete(d.summaries, key)
			}
		}
		delete(d.competenceContracts, id)
		delete(d.competences, id)
		return nil
	})
}

func (r *competenceRepository) AttachContracts(ctx context.Context, competenceID string, contractIDs []string) error {
	return r.s.do(ctx, func(d *state) error {
		if _, ok := d.competences[competenceID]; !ok {
			return payroll.ErrCompetenceNotFound
		}
		attached := make(map[string]bool)
		for _, id := range d.competenceContracts[competenceID] {
			attached[id] = true
		}
		for _, id := range contractIDs {
			if _, ok := d.contracts[id]; !ok {
				return employee.ErrContractNotFound
			}
			if !attached[id] {
				d.competenceContracts[competenceID] = append(d.competenceContracts[competenceID], id)
				attached[id] = true
			}
		}
		return nil
	})
}

func (r *competenceRepository) ListEligible(ctx context.Context, competenceID string) ([]employee.EligibleContract, error) {
	var out []employee.EligibleContract
	err := r.s.do(ctx, func(d *state) error {
		if _, ok := d.competences[competenceID]; !ok {
			return payroll.ErrCompetenceNotFound
		}
		for _, cid := range d.competenceContracts[competenceID] {
			c, ok := d.contracts[cid]
			if !ok {
				continue
			}
			e, ok := d.employees[c.EmployeeID]
			if !ok {
				continue
			}
			out = append(out, employee.EligibleContract{ContractID: cid, Employee: e})
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Employee.FullName < out[j].Employee.FullName })
	return out, err
}

// ========== EVENTS ==========

type eventRepository struct {
	s *Store
}

func NewEventRepository(s *Store) payroll.EventRepository {
	return &eventRepository{s: s}
}

func (r *eventRepository) Create(ctx context.Context, e payroll.Event) (payroll.Event, error) {
	err := r.s.do(ctx, func(d *state) error {
		if _, ok := d.competences[e.CompetenceID]; !ok {
			return payroll.ErrCompetenceNotFound
		}
		for _, other := range d.events {
			if other.CompetenceID == e.CompetenceID && other.Description == e.Description {
				return payroll.ErrEventDescriptionExists
			}
		}
		now := r.s.now()
		e.ID = r.s.newID()
		e.CreatedAt, e.UpdatedAt = now, now
		d.events[e.ID] = e
		return nil
	})
	if err != nil {
		return payroll.Event{}, err
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (payroll.Event, error) {
	var e payroll.Event
	err := r.s.do(ctx, func(d *state) error {
		found, ok := d.events[id]
		if !ok {
			return payroll.ErrEventNotFound
		}
		e = found
		return nil
	})
	return e, err
}

func (r *eventRepository) GetByIDForUpdate(ctx context.Context, id string) (payroll.Event, error) {
	return r.GetByID(ctx, id)
}

func (r *eventRepository) ListByCompetence(ctx context.Context, competenceID string) ([]payroll.Event, error) {
	var out []payroll.Event
	err := r.s.do(ctx, func(d *state) error {
		out = collect(d.events, func(e payroll.Event) bool { return e.CompetenceID == competenceID })
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].EventDate.Equal(out[j].EventDate) {
			return out[i].EventDate.Before(out[j].EventDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *eventRepository) FindFirstByType(ctx context.Context, competenceID string, eventType payroll.EventType) (payroll.Event, error) {
	var matches []payroll.Event
	err := r.s.do(ctx, func(d *state) error {
		matches = collect(d.events, func(e payroll.Event) bool {
			return e.CompetenceID == competenceID && e.Type == eventType
		})
		return nil
	})
	if err != nil {
		return payroll.Event{}, err
	}
	if len(matches) == 0 {
		return payroll.Event{}, payroll.ErrEventNotFound
	}
	sortByID(matches, func(e payroll.Event) string { return e.ID })
	return matches[0], nil
}

func (r *eventRepository) Update(ctx context.Context, e payroll.Event) error {
	return r.s.do(ctx, func(d *state) error {
		current, ok := d.events[e.ID]
		if !ok {
			return payroll.ErrEventNotFound
		}
		for _, other := range d.events {
			if other.ID != e.ID && other.CompetenceID == current.CompetenceID && other.Description == e.Description {
				return payroll.ErrEventDescriptionExists
			}
		}
		e.CompetenceID = current.CompetenceID
		e.CreatedAt = current.CreatedAt
		e.UpdatedAt = r.s.now()
		d.events[e.ID] = e
		return nil
	})
}

func (r *eventRepository) UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error {
	return r.s.do(ctx, func(d *state) error {
		e, ok := d.events[id]
		if !ok {
			return payroll.ErrEventNotFound
		}
		e.TotalAmount = total
		e.UpdatedAt = r.s.now()
		d.events[id] = e
		return nil
	})
}

// ========== LINE ITEMS ==========

type lineItemRepository struct {
	s *Store
}

func NewLineItemRepository(s *Store) payroll.LineItemRepository {
	return &lineItemRepository{s: s}
}

func withLineItemJoins(d *state, item payroll.LineItem) payroll.LineItem {
	if c, ok := d.components[item.PayComponentID]; ok {
		item.ComponentKind, item.ComponentCode, item.ComponentName = c.Kind, c.Code, c.Name
	}
	if e, ok := d.employees[item.EmployeeID]; ok {
		item.EmployeeName = e.FullName
	}
	return item
}

func matchLineItem(item payroll.LineItem, f payroll.LineItemFilter) bool {
	switch {
	case f.EventID != nil && item.EventID != *f.EventID:
		return false
	case f.CompetenceID != nil && item.CompetenceID != *f.CompetenceID:
		return false
	case f.EmployeeID != nil && item.EmployeeID != *f.EmployeeID:
		return false
	case f.AdvanceID != nil && (item.AdvanceID == nil || *item.AdvanceID != *f.AdvanceID):
		return false
	}
	return true
}

func (r *lineItemRepository) Create(ctx context.Context, item payroll.LineItem) (payroll.LineItem, error) {
	err := r.s.do(ctx, func(d *state) error {
		if _, ok := d.events[item.EventID]; !ok {
			return payroll.ErrEventNotFound
		}
		if _, ok := d.competences[item.CompetenceID]; !ok {
			return payroll.ErrCompetenceNotFound
		}
		if _, ok := d.employees[item.EmployeeID]; !ok {
			return employee.ErrEmployeeNotFound
		}
		if _, ok := d.components[item.PayComponentID]; !ok {
			return catalog.ErrPayComponentNotFound
		}
		if item.AdvanceID != nil {
			if _, ok := d.advances[*item.AdvanceID]; !ok {
				return employee.ErrAdvanceNotFound
			}
		}
		item.ID = r.s.newID()
		item.CreatedAt = r.s.now()
		d.lineItems[item.ID] = item
		item = withLineItemJoins(d, item)
		return nil
	})
	if err != nil {
		return payroll.LineItem{}, err
	}
	return item, nil
}

func (r *lineItemRepository) GetByID(ctx context.Context, id string) (payroll.LineItem, error) {
	var item payroll.LineItem
	err := r.s.do(ctx, func(d *state) error {
		found, ok := d.lineItems[id]
		if !ok {
			return payroll.ErrLineItemNotFound
		}
		item = withLineItemJoins(d, found)
		return nil
	})
	return item, err
}

func (r *lineItemRepository) Delete(ctx context.Context, id string) error {
	return r.s.do(ctx, func(d *state) error {
		if _, ok := d.lineItems[id]; !ok {
			return payroll.ErrLineItemNotFound
		}
		delete(d.lineItems, id)
		return nil
	})
}

func (r *lineItemRepository) List(ctx context.Context, filter payroll.LineItemFilter) ([]payroll.LineItem, error) {
	var out []payroll.LineItem
	err := r.s.do(ctx, func(d *state) error {
		for _, item := range d.lineItems {
			if matchLineItem(item, filter) {
				out = append(out, withLineItemJoins(d, item))
			}
		}
		return nil
	})
	sortByID(out, func(item payroll.LineItem) string { return item.ID })
	return out, err
}

func (r *lineItemRepository) Totals(ctx context.Context, filter payroll.LineItemFilter) (payroll.Totals, error) {
	items, err := r.List(ctx, filter)
	if err != nil {
		return payroll.Totals{}, err
	}
	return payroll.SumLineItems(items), nil
}

// ========== SUMMARIES ==========

type summaryRepository struct {
	s *Store
}

func NewSummaryRepository(s *Store) payroll.SummaryRepository {
	return &summaryRepository{s: s}
}

func (r *summaryRepository) Upsert(ctx context.Context, summary payroll.EmployeeSummary) (payroll.EmployeeSummary, error) {
	err := r.s.do(ctx, func(d *state) error {
		if _, ok := d.competences[summary.CompetenceID]; !ok {
			return payroll.ErrCompetenceNotFound
		}
		e, ok := d.employees[summary.EmployeeID]
		if !ok {
			return employee.ErrEmployeeNotFound
		}
		summary.UpdatedAt = r.s.now()
		summary.EmployeeName = ""
		d.summaries[summaryKey{summary.CompetenceID, summary.EmployeeID}] = summary
		summary.EmployeeName = e.FullName
		return nil
	})
	if err != nil {
		return payroll.EmployeeSummary{}, err
	}
	return summary, nil
}

func (r *summaryRepository) Get(ctx context.Context, competenceID, employeeID string) (payroll.EmployeeSummary, error) {
	var s payroll.EmployeeSummary
	err := r.s.do(ctx, func(d *state) error {
		found, ok := d.summaries[summaryKey{competenceID, employeeID}]
		if !ok {
			return payroll.ErrSummaryNotFound
		}
		if e, ok := d.employees[employeeID]; ok {
			found.EmployeeName = e.FullName
		}
		s = found
		return nil
	})
	return s, err
}

func (r *summaryRepository) ListByCompetence(ctx context.Context, competenceID string) ([]payroll.EmployeeSummary, error) {
	var out []payroll.EmployeeSummary
	err := r.s.do(ctx, func(d *state) error {
		for key, s := range d.summaries {
			if key.competenceID != competenceID {
				continue
			}
			if e, ok := d.employees[key.employeeID]; ok {
				s.EmployeeName = e.FullName
			}
			out = append(out, s)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeName != out[j].EmployeeName {
			return out[i].EmployeeName < out[j].EmployeeName
		}
		return out[i].EmployeeID < out[j].EmployeeID
	})
	return out, err
}
