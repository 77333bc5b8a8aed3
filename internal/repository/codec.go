package repository

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Freeeeeet/climbing_booking_bot/internal/store"
)

// membershipChunk ограничение размера списка в запросе "in"
const membershipChunk = 10

// toFields переводит модель в поля документа по json-тегам
func toFields(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode model fields: %w", err)
	}
	return fields, nil
}

// fromDoc заполняет модель из полей документа
func fromDoc(doc store.Document, v any) error {
	raw, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	return nil
}

// chunk делит список на части не длиннее size
func chunk[T any](items []T, size int) [][]T {
	var out [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[start:end])
	}
	return out
}

// sortedByID упорядочивает документы, чтобы результат не зависел от хранилища
func sortedByID(docs []store.Document) []store.Document {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}
