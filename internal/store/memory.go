package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

var (
	_ Gateway    = (*MemoryStore)(nil)
	_ Transactor = (*MemoryStore)(nil)
)

// MemoryStore implements Gateway with in-memory storage.
// Field values go through the JSON codec on write, so documents read back
// with the same types the postgres store returns.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewMemoryStore создаёт пустое хранилище в памяти
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]any),
		locks:       make(map[string]*sync.Mutex),
	}
}

// Get возвращает копию документа
func (m *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	fields, ok := m.collections[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Fields: copyFields(fields)}, nil
}

// Query возвращает документы, удовлетворяющие всем фильтрам
func (m *MemoryStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prepared, err := prepareFilters(filters)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []Document
	for id, fields := range m.collections[collection] {
		if matches(fields, prepared) {
			docs = append(docs, Document{ID: id, Fields: copyFields(fields)})
		}
	}
	return docs, nil
}

// Set создаёт или перезаписывает документ
func (m *MemoryStore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	norm, err := normalize(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.bucket(collection)[id] = norm
	return nil
}

// Create создаёт документ, только если id свободен
func (m *MemoryStore) Create(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	norm, err := normalize(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.bucket(collection)
	if _, exists := b[id]; exists {
		return ErrAlreadyExists
	}
	b[id] = norm
	return nil
}

// Update сливает поля в существующий документ
func (m *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	norm, err := normalize(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range norm {
		existing[k] = v
	}
	return nil
}

// Delete удаляет документ (идемпотентно)
func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.collections[collection], id)
	return nil
}

// WithinLock serializes units of work sharing lockKey.
// Writes made before fn fails are not rolled back.
func (m *MemoryStore) WithinLock(ctx context.Context, lockKey string, fn func(ctx context.Context, g Gateway) error) error {
	lock := m.lockFor(lockKey)
	lock.Lock()
	defer lock.Unlock()

	return fn(ctx, m)
}

// Ping всегда успешен
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len возвращает количество документов в коллекции
func (m *MemoryStore) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

func (m *MemoryStore) bucket(collection string) map[string]map[string]any {
	b, ok := m.collections[collection]
	if !ok {
		b = make(map[string]map[string]any)
		m.collections[collection] = b
	}
	return b
}

func (m *MemoryStore) lockFor(key string) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()

	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

func prepareFilters(filters []Filter) ([]Filter, error) {
	out := make([]Filter, len(filters))
	for i, f := range filters {
		v, err := normalizeValue(f.Value)
		if err != nil {
			return nil, err
		}
		switch f.Op {
		case OpEqual:
		case OpIn:
			if _, ok := v.([]any); !ok {
				return nil, fmt.Errorf("filter %s in: value must be a list", f.Field)
			}
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedOp, f.Op)
		}
		out[i] = Filter{Field: f.Field, Op: f.Op, Value: v}
	}
	return out, nil
}

func matches(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		actual, ok := fields[f.Field]
		if !ok {
			return false
		}
		switch f.Op {
		case OpEqual:
			if !reflect.DeepEqual(actual, f.Value) {
				return false
			}
		case OpIn:
			found := false
			for _, candidate := range f.Value.([]any) {
				if reflect.DeepEqual(actual, candidate) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

// copyFields копирует верхний уровень; вложенные значения не изменяются после записи
func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
