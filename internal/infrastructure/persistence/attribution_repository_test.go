package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/taxpilot/backend/internal/domain/attribution"
	"github.com/taxpilot/backend/internal/domain/shared"
)

func newMockAttributionRepository(t *testing.T) (*GormAttributionRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormAttributionRepository(gormDB), mock, mockDB
}

func newTestRecord(t *testing.T) *attribution.Record {
	referrerID := uuid.New()
	record, err := attribution.NewRecord(
		uuid.New(),
		&referrerID,
		"AFF12345",
		attribution.MethodCookie,
		decimal.NewFromFloat(0.15),
	)
	require.NoError(t, err)
	return record
}

func TestGormAttributionRepository_SaveIfAbsent(t *testing.T) {
	t.Run("inserts first record for a client", func(t *testing.T) {
		repo, mock, mockDB := newMockAttributionRepository(t)
		defer mockDB.Close()

		record := newTestRecord(t)

		// PostgreSQL GORM uses Query with RETURNING clause instead of Exec
		mock.ExpectQuery(`INSERT INTO "attribution_records" .* ON CONFLICT \("client_id"\) DO NOTHING`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(record.ID))

		saved, err := repo.SaveIfAbsent(context.Background(), record)

		assert.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, record.ID, saved.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns existing record when client already attributed", func(t *testing.T) {
		repo, mock, mockDB := newMockAttributionRepository(t)
		defer mockDB.Close()

		record := newTestRecord(t)
		winnerID := uuid.New()
		winnerReferrer := uuid.New()

		// Conflict: DO NOTHING yields no RETURNING rows
		mock.ExpectQuery(`INSERT INTO "attribution_records" .* ON CONFLICT \("client_id"\) DO NOTHING`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		rows := sqlmock.NewRows([]string{
			"id", "client_id", "referrer_id", "tracking_code", "method", "commission_rate", "locked_at",
		}).AddRow(winnerID, record.ClientID, winnerReferrer, "AFF99999", "email", "0.1", time.Now().UTC())

		mock.ExpectQuery(`SELECT \* FROM "attribution_records" WHERE client_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(record.ClientID, 1).
			WillReturnRows(rows)

		existing, err := repo.SaveIfAbsent(context.Background(), record)

		assert.ErrorIs(t, err, shared.ErrAttributionLocked)
		require.NotNil(t, existing)
		assert.Equal(t, winnerID, existing.ID)
		assert.Equal(t, attribution.MethodEmail, existing.Method)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAttributionRepository_FindByClientID(t *testing.T) {
	t.Run("returns ErrNotFound when client has no attribution", func(t *testing.T) {
		repo, mock, mockDB := newMockAttributionRepository(t)
		defer mockDB.Close()

		clientID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "attribution_records" WHERE client_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(clientID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		found, err := repo.FindByClientID(context.Background(), clientID)

		assert.Nil(t, found)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAttributionRepository_CountByReferrer(t *testing.T) {
	repo, mock, mockDB := newMockAttributionRepository(t)
	defer mockDB.Close()

	referrerID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "attribution_records" WHERE referrer_id = \$1`).
		WithArgs(referrerID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountByReferrer(context.Background(), referrerID)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
