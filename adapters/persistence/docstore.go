package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filipposta/legacy-premium-api/internal/domain/docstore"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
	"github.com/filipposta/legacy-premium-api/pkg/retry"
)

// postgresDocStore keeps every collection in one documents table with
// a JSONB payload, so the storage surface stays the schemaless
// get/set/query/delete the rest of the service is written against.
type postgresDocStore struct {
	db       *pgxpool.Pool
	logger   logger.Logger
	notifier *docNotifier
	policy   retry.Policy
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	data JSONB NOT NULL DEFAULT '{}'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_data_gin ON documents USING GIN (data);
`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func NewPostgresDocStore(db *pgxpool.Pool, log logger.Logger) (docstore.Store, error) {
	if _, err := db.Exec(context.Background(), schemaDDL); err != nil {
		return nil, fmt.Errorf("cannot ensure documents schema: %w", err)
	}
	return &postgresDocStore{
		db:       db,
		logger:   log,
		notifier: newDocNotifier(),
		policy:   retry.DefaultPolicy(),
	}, nil
}

func (s *postgresDocStore) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	var raw []byte
	err := retry.Do(ctx, s.logger, "docstore.get", s.policy, func() error {
		return s.db.QueryRow(ctx,
			`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
			collection, id,
		).Scan(&raw)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound(collection+" document", id)
		}
		return nil, fmt.Errorf("docstore get %s/%s: %w", collection, id, err)
	}

	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("docstore get %s/%s: corrupt payload: %w", collection, id, err)
	}
	return &docstore.Document{ID: id, Data: data}, nil
}

func (s *postgresDocStore) Set(ctx context.Context, collection, id string, data map[string]any, merge bool) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("docstore set %s/%s: %w", collection, id, err)
	}

	query := `
		INSERT INTO documents (collection, id, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (collection, id) DO UPDATE SET
			data = EXCLUDED.data,
			updated_at = now()
	`
	if merge {
		query = `
			INSERT INTO documents (collection, id, data, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (collection, id) DO UPDATE SET
				data = documents.data || EXCLUDED.data,
				updated_at = now()
		`
	}

	if _, err := s.db.Exec(ctx, query, collection, id, raw); err != nil {
		return fmt.Errorf("docstore set %s/%s: %w", collection, id, err)
	}

	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		s.notifier.notifyError(collection, id, err)
		return nil
	}
	s.notifier.notify(collection, id, doc)
	return nil
}

func (s *postgresDocStore) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data, false); err != nil {
		return "", err
	}
	return id, nil
}

func (s *postgresDocStore) Delete(ctx context.Context, collection, id string) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("docstore delete %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() > 0 {
		s.notifier.notify(collection, id, nil)
	}
	return nil
}

func (s *postgresDocStore) Query(ctx context.Context, collection string, filter docstore.Filter, limit int) ([]docstore.Document, error) {
	match, err := json.Marshal(map[string]any{filter.Field: filter.Value})
	if err != nil {
		return nil, fmt.Errorf("docstore query %s: %w", collection, err)
	}

	builder := psql.Select("id", "data").
		From("documents").
		Where(sq.Eq{"collection": collection}).
		Where(sq.Expr("data @> ?::jsonb", match)).
		Limit(uint64(limit))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("docstore query %s: %w", collection, err)
	}

	var docs []docstore.Document
	err = retry.Do(ctx, s.logger, "docstore.query", s.policy, func() error {
		rows, err := s.db.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		docs = docs[:0]
		for rows.Next() {
			var id string
			var raw []byte
			if err := rows.Scan(&id, &raw); err != nil {
				return err
			}
			data := map[string]any{}
			if err := json.Unmarshal(raw, &data); err != nil {
				return err
			}
			docs = append(docs, docstore.Document{ID: id, Data: data})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("docstore query %s: %w", collection, err)
	}
	return docs, nil
}

func (s *postgresDocStore) Subscribe(collection, id string, onNext func(*docstore.Document), onError func(error)) docstore.UnsubscribeFunc {
	return s.notifier.subscribe(collection, id, onNext, onError)
}
