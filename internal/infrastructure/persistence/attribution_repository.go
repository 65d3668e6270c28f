package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/taxpilot/backend/internal/domain/attribution"
	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/infrastructure/persistence/models"
)

// GormAttributionRepository implements attribution.RecordRepository using GORM
type GormAttributionRepository struct {
	db *gorm.DB
}

// NewGormAttributionRepository creates a new GormAttributionRepository
func NewGormAttributionRepository(db *gorm.DB) *GormAttributionRepository {
	return &GormAttributionRepository{db: db}
}

// SaveIfAbsent inserts the record unless the client already has one.
// The insert races are settled by the unique index on client_id with
// ON CONFLICT DO NOTHING, so exactly one writer wins. Losers get the
// winning record back along with shared.ErrAttributionLocked.
func (r *GormAttributionRepository) SaveIfAbsent(ctx context.Context, record *attribution.Record) (*attribution.Record, error) {
	model := models.AttributionRecordModelFromDomain(record)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "client_id"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		existing, err := r.FindByClientID(ctx, record.ClientID)
		if err != nil {
			return nil, err
		}
		return existing, shared.ErrAttributionLocked
	}

	return record, nil
}

// FindByClientID finds the attribution record for a client
func (r *GormAttributionRepository) FindByClientID(ctx context.Context, clientID uuid.UUID) (*attribution.Record, error) {
	var model models.AttributionRecordModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByReferrer finds attribution records credited to a referrer
func (r *GormAttributionRepository) FindByReferrer(ctx context.Context, referrerID uuid.UUID, filter shared.Filter) (*shared.Paginated[*attribution.Record], error) {
	query := r.db.WithContext(ctx).
		Model(&models.AttributionRecordModel{}).
		Where("referrer_id = ?", referrerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var recordModels []models.AttributionRecordModel
	query = applySort(query, filter, AttributionSortFields, "locked_at")
	if err := applyPagination(query, filter).Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]*attribution.Record, len(recordModels))
	for i := range recordModels {
		records[i] = recordModels[i].ToDomain()
	}

	page, pageSize := normalizedPage(filter)
	result := shared.NewPaginated(records, total, page, pageSize)
	return &result, nil
}

// CountByReferrer counts attribution records credited to a referrer
func (r *GormAttributionRepository) CountByReferrer(ctx context.Context, referrerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.AttributionRecordModel{}).
		Where("referrer_id = ?", referrerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
