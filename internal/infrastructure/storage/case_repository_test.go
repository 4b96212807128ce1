package storage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ResolutionScanner/internal/config"
	"ResolutionScanner/internal/domain"
)

func newMockRepository(t *testing.T) (*CaseRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewCaseRepository(sqlx.NewDb(db, "postgres")), mock
}

const findQuery = "SELECT codigo_expediente, tipo_resolucion, url_pdf, fecha_procesamiento FROM expedientes WHERE codigo_expediente = $1 LIMIT 1"

func TestFindReturnsRecord(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(findQuery)).
		WithArgs("2024/C022/00000001").
		WillReturnRows(sqlmock.NewRows([]string{"codigo_expediente", "tipo_resolucion", "url_pdf", "fecha_procesamiento"}).
			AddRow("2024/C022/00000001", "concesion", "https://sede.example.es/doc/1", at))

	record, err := repo.Find(context.Background(), "2024/C022/00000001")
	require.NoError(t, err)
	assert.Equal(t, domain.ResolutionConcession, record.Type)
	assert.Equal(t, "https://sede.example.es/doc/1", record.SourceURL)
	assert.True(t, at.Equal(record.ProcessedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindMissingIsNotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)
	mock.ExpectQuery(regexp.QuoteMeta(findQuery)).
		WithArgs("2024/C022/00000002").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "2024/C022/00000002")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPropagatesDriverErrors(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)
	mock.ExpectQuery(regexp.QuoteMeta(findQuery)).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.Find(context.Background(), "2024/C022/00000003")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestInsert(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO expedientes (codigo_expediente,tipo_resolucion,url_pdf,fecha_procesamiento) VALUES ($1,$2,$3,$4)")).
		WithArgs("2024/C022/00000004", "desistimiento", "https://sede.example.es/doc/4", at.UTC()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), domain.CaseRecord{
		Identifier:  "2024/C022/00000004",
		Type:        domain.ResolutionWithdrawal,
		SourceURL:   "https://sede.example.es/doc/4",
		ProcessedAt: at,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE expedientes SET tipo_resolucion = $1, url_pdf = $2, fecha_procesamiento = $3 WHERE codigo_expediente = $4")).
		WithArgs("inadmision", "https://sede.example.es/doc/5", sqlmock.AnyArg(), "2024/C022/00000005").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), domain.CaseRecord{
		Identifier:  "2024/C022/00000005",
		Type:        domain.ResolutionInadmission,
		SourceURL:   "https://sede.example.es/doc/5",
		ProcessedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMissingRowIsNotFound(t *testing.T) {
	t.Parallel()

	repo, mock := newMockRepository(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE expedientes")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), domain.CaseRecord{Identifier: "2024/C022/00000006", Type: domain.ResolutionConcession})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := Open(ctx, config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, EnsureSchema(ctx, db))

	repo := NewCaseRepository(db)
	_, err = repo.Find(ctx, "2023/C022/00000007")
	require.ErrorIs(t, err, domain.ErrNotFound)

	first := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, domain.CaseRecord{
		Identifier:  "2023/C022/00000007",
		Type:        domain.ResolutionConcession,
		SourceURL:   "https://sede.example.es/doc/7",
		ProcessedAt: first,
	}))

	// Primary key rejects a second insert of the same identifier.
	require.Error(t, repo.Insert(ctx, domain.CaseRecord{
		Identifier:  "2023/C022/00000007",
		Type:        domain.ResolutionConcession,
		SourceURL:   "https://sede.example.es/doc/7",
		ProcessedAt: first,
	}))

	second := first.Add(24 * time.Hour)
	require.NoError(t, repo.Update(ctx, domain.CaseRecord{
		Identifier:  "2023/C022/00000007",
		Type:        domain.ResolutionWithdrawal,
		SourceURL:   "https://sede.example.es/doc/8",
		ProcessedAt: second,
	}))

	record, err := repo.Find(ctx, "2023/C022/00000007")
	require.NoError(t, err)
	assert.Equal(t, domain.ResolutionWithdrawal, record.Type)
	assert.Equal(t, "https://sede.example.es/doc/8", record.SourceURL)
	assert.True(t, second.Equal(record.ProcessedAt), "processed at %v", record.ProcessedAt)

	var count int
	require.NoError(t, db.GetContext(ctx, &count, "SELECT COUNT(*) FROM expedientes"))
	assert.Equal(t, 1, count)
}
