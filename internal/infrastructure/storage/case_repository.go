package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"ResolutionScanner/internal/domain"
	"ResolutionScanner/internal/ports"
)

const casesTable = "expedientes"

// CaseRepository persists case records into Postgres or SQLite.
type CaseRepository struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
}

var _ ports.CaseRepository = (*CaseRepository)(nil)

type caseRow struct {
	Identifier  string    `db:"codigo_expediente"`
	Type        string    `db:"tipo_resolucion"`
	SourceURL   string    `db:"url_pdf"`
	ProcessedAt time.Time `db:"fecha_procesamiento"`
}

// NewCaseRepository picks the placeholder style from the driver name.
func NewCaseRepository(db *sqlx.DB) *CaseRepository {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if db != nil && db.DriverName() == "postgres" {
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &CaseRepository{db: db, builder: builder}
}

// Find loads a record by identifier; a missing row is domain.ErrNotFound.
func (r *CaseRepository) Find(ctx context.Context, identifier string) (domain.CaseRecord, error) {
	query, args, err := r.builder.
		Select("codigo_expediente", "tipo_resolucion", "url_pdf", "fecha_procesamiento").
		From(casesTable).
		Where(sq.Eq{"codigo_expediente": identifier}).
		Limit(1).
		ToSql()
	if err != nil {
		return domain.CaseRecord{}, fmt.Errorf("build find query: %w", err)
	}

	var row caseRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CaseRecord{}, domain.ErrNotFound
		}
		return domain.CaseRecord{}, fmt.Errorf("find case %s: %w", identifier, err)
	}

	return domain.CaseRecord{
		Identifier:  row.Identifier,
		Type:        domain.ResolutionType(row.Type),
		SourceURL:   row.SourceURL,
		ProcessedAt: row.ProcessedAt,
	}, nil
}

// Insert adds a new record. The primary key rejects duplicates.
func (r *CaseRepository) Insert(ctx context.Context, record domain.CaseRecord) error {
	query, args, err := r.builder.
		Insert(casesTable).
		Columns("codigo_expediente", "tipo_resolucion", "url_pdf", "fecha_procesamiento").
		Values(record.Identifier, string(record.Type), record.SourceURL, record.ProcessedAt.UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert case %s: %w", record.Identifier, err)
	}
	return nil
}

// Update overwrites type, source and timestamp of an existing record.
func (r *CaseRepository) Update(ctx context.Context, record domain.CaseRecord) error {
	query, args, err := r.builder.
		Update(casesTable).
		Set("tipo_resolucion", string(record.Type)).
		Set("url_pdf", record.SourceURL).
		Set("fecha_procesamiento", record.ProcessedAt.UTC()).
		Where(sq.Eq{"codigo_expediente": record.Identifier}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update case %s: %w", record.Identifier, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update case %s: rows affected: %w", record.Identifier, err)
	}
	if affected == 0 {
		return fmt.Errorf("update case %s: %w", record.Identifier, domain.ErrNotFound)
	}
	return nil
}
