package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tolninja/domain/stackup"
	"tolninja/internal/errors"
	"tolninja/models"
	"tolninja/ports"
)

// StackupRepositoryImpl implements StackupRepository for PostgreSQL,
// storing the definition and summary as JSONB.
type StackupRepositoryImpl struct {
	db *sqlx.DB
}

// NewStackupRepository creates a new PostgreSQL stackup repository
func NewStackupRepository(db *sqlx.DB) ports.StackupRepository {
	return &StackupRepositoryImpl{db: db}
}

// EnsureSchema creates the stackups table if it does not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS stackups (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			revision TEXT NOT NULL DEFAULT '',
			definition JSONB NOT NULL,
			summary JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return errors.Wrap(err, "creating stackups table")
}

func (r *StackupRepositoryImpl) Save(ctx context.Context, record *models.StackupRecord) error {
	definitionJSON, err := json.Marshal(record.Definition)
	if err != nil {
		return errors.Wrap(err, "marshaling stackup definition")
	}
	var summaryJSON []byte
	if record.Summary != nil {
		if summaryJSON, err = json.Marshal(record.Summary); err != nil {
			return errors.Wrap(err, "marshaling stackup summary")
		}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO stackups (id, name, revision, definition, summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			revision = EXCLUDED.revision,
			definition = EXCLUDED.definition,
			summary = EXCLUDED.summary,
			updated_at = EXCLUDED.updated_at`,
		record.ID, record.Name, record.Revision, definitionJSON, summaryJSON,
		record.CreatedAt, record.UpdatedAt)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	return nil
}

func (r *StackupRepositoryImpl) Get(ctx context.Context, id uuid.UUID) (*models.StackupRecord, error) {
	var (
		record         models.StackupRecord
		definitionJSON []byte
		summaryJSON    []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, revision, definition, summary, created_at, updated_at
		FROM stackups WHERE id = $1`, id).
		Scan(&record.ID, &record.Name, &record.Revision, &definitionJSON, &summaryJSON,
			&record.CreatedAt, &record.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("stackup " + id.String())
	}
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	if err := unmarshalRecord(&record, definitionJSON, summaryJSON); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *StackupRepositoryImpl) List(ctx context.Context) ([]*models.StackupRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, revision, definition, summary, created_at, updated_at
		FROM stackups ORDER BY created_at`)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, err)
	}
	defer rows.Close()

	var out []*models.StackupRecord
	for rows.Next() {
		var (
			record         models.StackupRecord
			definitionJSON []byte
			summaryJSON    []byte
		)
		if err := rows.Scan(&record.ID, &record.Name, &record.Revision, &definitionJSON,
			&summaryJSON, &record.CreatedAt, &record.UpdatedAt); err != nil {
			return nil, errors.WithCode(errors.CodeDatabaseError, err)
		}
		if err := unmarshalRecord(&record, definitionJSON, summaryJSON); err != nil {
			return nil, err
		}
		out = append(out, &record)
	}
	return out, rows.Err()
}

func (r *StackupRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stackups WHERE id = $1`, id)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.NotFound("stackup " + id.String())
	}
	return nil
}

func unmarshalRecord(record *models.StackupRecord, definitionJSON, summaryJSON []byte) error {
	if err := json.Unmarshal(definitionJSON, &record.Definition); err != nil {
		return errors.Wrap(err, "unmarshaling stackup definition")
	}
	if len(summaryJSON) > 0 {
		record.Summary = &stackup.SummaryData{}
		if err := json.Unmarshal(summaryJSON, record.Summary); err != nil {
			return errors.Wrap(err, "unmarshaling stackup summary")
		}
	}
	return nil
}
