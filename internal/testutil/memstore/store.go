// Package memstore хранилище в памяти для тестов сервисов: те же контракты, что у репозиториев PostgreSQL,
// и менеджер транзакций с откатом через снимок состояния
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
)

type tables struct {
	seq           map[string]int64
	centers       map[int64]domain.Center
	assets        map[int64]domain.Asset
	appointments  map[int64]domain.Appointment
	assignments   map[int64]domain.AssetAssignment
	sessions      map[int64]domain.Session
	noteTypes     map[int64]domain.NoteType
	notes         map[int64]domain.SessionNote
	complications map[int64]domain.Complication
	items         map[int64]domain.InventoryItem
	batches       map[int64]domain.StockBatch
	units         map[int64]domain.IndividualUnit
	selections    map[int64]domain.InventorySelection
	usageEvents   map[int64]domain.UnitUsageEvent
	discards      map[int64]domain.DiscardRequest
}

func newTables() tables {
	return tables{
		seq:           map[string]int64{},
		centers:       map[int64]domain.Center{},
		assets:        map[int64]domain.Asset{},
		appointments:  map[int64]domain.Appointment{},
		assignments:   map[int64]domain.AssetAssignment{},
		sessions:      map[int64]domain.Session{},
		noteTypes:     map[int64]domain.NoteType{},
		notes:         map[int64]domain.SessionNote{},
		complications: map[int64]domain.Complication{},
		items:         map[int64]domain.InventoryItem{},
		batches:       map[int64]domain.StockBatch{},
		units:         map[int64]domain.IndividualUnit{},
		selections:    map[int64]domain.InventorySelection{},
		usageEvents:   map[int64]domain.UnitUsageEvent{},
		discards:      map[int64]domain.DiscardRequest{},
	}
}

func (t tables) clone() tables {
	return tables{
		seq:           maps.Clone(t.seq),
		centers:       maps.Clone(t.centers),
		assets:        maps.Clone(t.assets),
		appointments:  maps.Clone(t.appointments),
		assignments:   maps.Clone(t.assignments),
		sessions:      maps.Clone(t.sessions),
		noteTypes:     maps.Clone(t.noteTypes),
		notes:         maps.Clone(t.notes),
		complications: maps.Clone(t.complications),
		items:         maps.Clone(t.items),
		batches:       maps.Clone(t.batches),
		units:         maps.Clone(t.units),
		selections:    maps.Clone(t.selections),
		usageEvents:   maps.Clone(t.usageEvents),
		discards:      maps.Clone(t.discards),
	}
}

// Store хранилище; безопасно для конкурентного использования
type Store struct {
	mu    sync.Mutex
	t     tables
	fail  map[string]error
	clock *Clock
}

// New создает пустое хранилище; clock задает время created_at и т.п.
func New(clock *Clock) *Store {
	return &Store{t: newTables(), fail: map[string]error{}, clock: clock}
}

// FailOn заставляет метод op возвращать err
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

// lock берет мьютекс и возвращает ошибку, внедренную для op
func (s *Store) lock(op string) error {
	s.mu.Lock()
	return s.fail[op]
}

func (s *Store) nextID(table string) int64 {
	s.t.seq[table]++
	return s.t.seq[table]
}

func (s *Store) now() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock.Now()
}

func (s *Store) snapshot() tables {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.t.clone()
}

func (s *Store) restore(t tables) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t = t
}

func sortedValues[V any](m map[int64]V, keep func(V) bool) []V {
	out := make([]V, 0)
	for _, id := range slices.Sorted(maps.Keys(m)) {
		if keep(m[id]) {
			out = append(out, m[id])
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	return domain.TruncateDate(a).Equal(domain.TruncateDate(b))
}

// TxManager менеджер транзакций: вложенные вызовы присоединяются к внешнему,
// ошибка во внешнем вызове восстанавливает снимок хранилища
type TxManager struct {
	store *Store
}

// NewTxManager создает менеджер транзакций над store
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

type txKey struct{}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	snap := m.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// Clock управляемые часы
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock создает часы, показывающие now
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance сдвигает часы вперед
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Locker блокировки в памяти: записывает запрошенные ключи и сериализует внешние вызовы
type Locker struct {
	mu    sync.Mutex
	calls sync.Mutex
	keys  [][]string
	err   error
}

type heldKey struct{}

// FailWith заставляет WithLock возвращать err, не вызывая fn
func (l *Locker) FailWith(err error) {
	l.calls.Lock()
	defer l.calls.Unlock()
	l.err = err
}

// Keys ключи всех вызовов WithLock по порядку
func (l *Locker) Keys() [][]string {
	l.calls.Lock()
	defer l.calls.Unlock()
	return slices.Clone(l.keys)
}

func (l *Locker) WithLock(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	l.calls.Lock()
	l.keys = append(l.keys, slices.Clone(keys))
	err := l.err
	l.calls.Unlock()
	if err != nil {
		return err
	}

	if ctx.Value(heldKey{}) != nil {
		return fn(ctx)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return fn(context.WithValue(ctx, heldKey{}, true))
}
