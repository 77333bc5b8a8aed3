// Package store provides the document-store gateway the booking core is
// written against, with an in-memory and a PostgreSQL (jsonb) implementation.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Коллекции
const (
	CollectionSlots          = "lessonSchedules"
	CollectionParticipations = "participations"
	CollectionUsers          = "users"
	CollectionSchools        = "teacherId"
	CollectionUpdates        = "lessonScheduleUpdates"
	CollectionNotifyState    = "notificationState"
)

var (
	// ErrNotFound is returned when a document doesn't exist
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned by Create when the id is taken
	ErrAlreadyExists = errors.New("document already exists")
	// ErrUnsupportedOp is returned for filter operators other than == and in
	ErrUnsupportedOp = errors.New("unsupported filter operator")
)

// Op оператор фильтра
type Op string

const (
	OpEqual Op = "=="
	OpIn    Op = "in"
)

// Filter условие запроса по полю документа
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Eq фильтр на равенство
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

// In фильтр на вхождение в список
func In[T any](field string, values []T) Filter {
	list := make([]any, len(values))
	for i, v := range values {
		list[i] = v
	}
	return Filter{Field: field, Op: OpIn, Value: list}
}

// Document документ коллекции
type Document struct {
	ID     string
	Fields map[string]any
}

// Gateway abstracts the document store.
// All implementations must be safe for concurrent use.
type Gateway interface {
	// Get returns ErrNotFound if the document doesn't exist
	Get(ctx context.Context, collection, id string) (Document, error)

	// Query returns documents matching all filters, in unspecified order
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)

	// Set creates or overwrites the document at id
	Set(ctx context.Context, collection, id string, fields map[string]any) error

	// Create fails with ErrAlreadyExists if id is taken
	Create(ctx context.Context, collection, id string, fields map[string]any) error

	// Update merges fields into an existing document, ErrNotFound if absent
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// Delete removes a document. No error if it doesn't exist
	Delete(ctx context.Context, collection, id string) error
}

// Transactor is implemented by gateways that can serialize a unit of work.
// fn receives a gateway bound to the unit of work; all calls made through it
// commit or roll back together, and units sharing lockKey never interleave.
type Transactor interface {
	WithinLock(ctx context.Context, lockKey string, fn func(ctx context.Context, g Gateway) error) error
}

// Pinger проверка доступности хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// normalize приводит значения к тем типам, которые вернёт jsonb
func normalize(fields map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	out := make(map[string]any, len(fields))
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return out, nil
}

func normalizeValue(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return out, nil
}
