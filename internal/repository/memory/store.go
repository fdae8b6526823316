// Package memory keeps every repository in process memory. Transactions are
// serialized and rolled back by restoring a snapshot, which makes the store
// suitable for service tests and dry runs of the CLI.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/catalog"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/google/uuid"
)

type txKey struct{}

type summaryKey struct {
	competenceID string
	employeeID   string
}

type state struct {
	components          map[string]catalog.PayComponent
	generalEntries      map[string]catalog.GeneralFixedEntry
	employees           map[string]employee.Employee
	contracts           map[string]employee.Contract
	fixedEntries        map[string]employee.FixedEntry
	advances            map[string]employee.Advance
	vacations           map[string]employee.Vacation
	competences         map[string]payroll.Competence
	competenceContracts map[string][]string
	events              map[string]payroll.Event
	lineItems           map[string]payroll.LineItem
	summaries           map[summaryKey]payroll.EmployeeSummary
}

func newState() *state {
	return &state{
		components:          make(map[string]catalog.PayComponent),
		generalEntries:      make(map[string]catalog.GeneralFixedEntry),
		employees:           make(map[string]employee.Employee),
		contracts:           make(map[string]employee.Contract),
		fixedEntries:        make(map[string]employee.FixedEntry),
		advances:            make(map[string]employee.Advance),
		vacations:           make(map[string]employee.Vacation),
		competences:         make(map[string]payroll.Competence),
		competenceContracts: make(map[string][]string),
		events:              make(map[string]payroll.Event),
		lineItems:           make(map[string]payroll.LineItem),
		summaries:           make(map[summaryKey]payroll.EmployeeSummary),
	}
}

// clone copies the maps. Values are structs whose pointer fields are never
// mutated in place, so a shallow copy per map is a full snapshot.
func (d *state) clone() *state {
	cc := make(map[string][]string, len(d.competenceContracts))
	for k, v := range d.competenceContracts {
		cc[k] = append([]string(nil), v...)
	}
	return &state{
		components:          maps.Clone(d.components),
		generalEntries:      maps.Clone(d.generalEntries),
		employees:           maps.Clone(d.employees),
		contracts:           maps.Clone(d.contracts),
		fixedEntries:        maps.Clone(d.fixedEntries),
		advances:            maps.Clone(d.advances),
		vacations:           maps.Clone(d.vacations),
		competences:         maps.Clone(d.competences),
		competenceContracts: cc,
		events:              maps.Clone(d.events),
		lineItems:           maps.Clone(d.lineItems),
		summaries:           maps.Clone(d.summaries),
	}
}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	data *state
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{data: newState(), now: func() time.Time { return time.Now().UTC() }}
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

// WithinTransaction runs fn while holding the store exclusively. Any error
// or panic restores the state seen when the transaction began. Nested calls
// join the outer transaction.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
		if err != nil {
			s.restore(snapshot)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

func (s *Store) restore(snapshot *state) {
	s.mu.Lock()
	s.data = snapshot
	s.mu.Unlock()
}

// do runs fn against the current state. Outside a transaction it waits for
// running transactions, so readers never observe uncommitted writes.
func (s *Store) do(ctx context.Context, fn func(d *state) error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// sortByID orders values by their UUIDv7 id, which follows creation order.
func sortByID[T any](values []T, id func(T) string) {
	sort.SliceStable(values, func(i, j int) bool { return id(values[i]) < id(values[j]) })
}

func collect[K comparable, V any](m map[K]V, keep func(V) bool) []V {
	out := make([]V, 0)
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}
