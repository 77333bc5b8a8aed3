package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	_ Gateway    = (*PostgresStore)(nil)
	_ Transactor = (*PostgresStore)(nil)
)

// querier общий интерфейс пула и транзакции
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore хранит документы в таблице documents (jsonb)
type PostgresStore struct {
	pool *pgxpool.Pool
	db   querier
}

// NewPostgresStore создаёт хранилище поверх пула соединений
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, db: pool}
}

// Pool возвращает пул соединений
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// Get получает документ по ID
func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	query := `
		SELECT fields
		FROM documents
		WHERE collection = $1 AND id = $2
	`

	var fields map[string]any
	err := s.db.QueryRow(ctx, query, collection, id).Scan(&fields)
	if err != nil {
		if IsNoRows(err) {
			return Document{}, ErrNotFound
		}
		return Document{}, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}

	return Document{ID: id, Fields: fields}, nil
}

// Query выбирает документы по фильтрам
func (s *PostgresStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	where, args, err := buildWhere(collection, filters)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, fields FROM documents WHERE ` + where

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Fields); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}

	return docs, nil
}

// Set создаёт или перезаписывает документ
func (s *PostgresStore) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	query := `
		INSERT INTO documents (collection, id, fields)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id)
		DO UPDATE SET fields = EXCLUDED.fields, updated_at = now()
	`

	if _, err := s.db.Exec(ctx, query, collection, id, string(raw)); err != nil {
		return fmt.Errorf("set document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Create вставляет документ, если id свободен
func (s *PostgresStore) Create(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	query := `
		INSERT INTO documents (collection, id, fields)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO NOTHING
	`

	tag, err := s.db.Exec(ctx, query, collection, id, string(raw))
	if err != nil {
		return fmt.Errorf("create document %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// Update сливает поля в существующий документ
func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	query := `
		UPDATE documents
		SET fields = fields || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2
	`

	tag, err := s.db.Exec(ctx, query, collection, id, string(raw))
	if err != nil {
		return fmt.Errorf("update document %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет документ
func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	query := `DELETE FROM documents WHERE collection = $1 AND id = $2`

	if _, err := s.db.Exec(ctx, query, collection, id); err != nil {
		return fmt.Errorf("delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

// WithinLock выполняет fn в транзакции под advisory lock по ключу
func (s *PostgresStore) WithinLock(ctx context.Context, lockKey string, fn func(ctx context.Context, g Gateway) error) error {
	if s.pool == nil {
		return fmt.Errorf("nested transactions are not supported")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		return fmt.Errorf("acquire lock %s: %w", lockKey, err)
	}

	if err := fn(ctx, &PostgresStore{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping проверяет соединение с БД
func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

// IsNoRows проверяет является ли ошибка "строка не найдена"
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// buildWhere собирает условие WHERE; значения передаются как jsonb
func buildWhere(collection string, filters []Filter) (string, []any, error) {
	clauses := []string{"collection = $1"}
	args := []any{collection}

	for _, f := range filters {
		raw, err := json.Marshal(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("encode filter %s: %w", f.Field, err)
		}

		args = append(args, f.Field, string(raw))
		keyArg := fmt.Sprintf("$%d", len(args)-1)
		valArg := fmt.Sprintf("$%d", len(args))

		switch f.Op {
		case OpEqual:
			clauses = append(clauses, fmt.Sprintf("fields -> %s::text = %s::jsonb", keyArg, valArg))
		case OpIn:
			clauses = append(clauses, fmt.Sprintf(
				"fields -> %s::text IN (SELECT jsonb_array_elements(%s::jsonb))", keyArg, valArg))
		default:
			return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedOp, f.Op)
		}
	}

	return strings.Join(clauses, " AND "), args, nil
}
