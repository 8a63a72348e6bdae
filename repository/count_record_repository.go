package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/counter-api/models"
	"github.com/amirphl/counter-api/utils"
	"gorm.io/gorm"
)

// CountRecordRepositoryImpl implements CountRecordRepository interface
type CountRecordRepositoryImpl struct {
	*BaseRepository[models.CountRecord]
	now func() time.Time
}

// NewCountRecordRepository creates a new count repository
func NewCountRecordRepository(db *gorm.DB) CountRecordRepository {
	return NewCountRecordRepositoryWithClock(db, utils.UTCNow)
}

// NewCountRecordRepositoryWithClock creates a count repository that stamps rows with now
func NewCountRecordRepositoryWithClock(db *gorm.DB, now func() time.Time) CountRecordRepository {
	return &CountRecordRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CountRecord](db),
		now:            now,
	}
}

func (r *CountRecordRepositoryImpl) stamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

// Save inserts a row, setting created_at from the repository clock
func (r *CountRecordRepositoryImpl) Save(ctx context.Context, record *models.CountRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.stamp()
	}
	record.UpdatedAt = nil
	return r.BaseRepository.Save(ctx, record)
}

// Latest returns the row with the highest id
func (r *CountRecordRepositoryImpl) Latest(ctx context.Context) (*models.CountRecord, error) {
	db := r.getDB(ctx)
	var row models.CountRecord
	if err := db.Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest count: %w", err)
	}
	return &row, nil
}

// Patch applies the supplied fields and sets updated_at.
// It returns nil when the row does not exist.
func (r *CountRecordRepositoryImpl) Patch(ctx context.Context, id uint, patch models.CountRecordPatch) (*models.CountRecord, error) {
	updates := map[string]any{}
	if patch.CountNumber != nil {
		updates["count_number"] = *patch.CountNumber
	}
	if patch.SetDescription {
		if patch.Description == nil {
			updates["description"] = gorm.Expr("NULL")
		} else {
			updates["description"] = *patch.Description
		}
	}
	if len(updates) == 0 {
		return r.ByID(ctx, id)
	}
	updates["updated_at"] = r.stamp()

	return r.update(ctx, id, updates)
}

// IncrementByID adds by to count_number in a single statement, so concurrent
// increments of the same row cannot lose updates.
func (r *CountRecordRepositoryImpl) IncrementByID(ctx context.Context, id uint, by int64) (*models.CountRecord, error) {
	return r.update(ctx, id, map[string]any{
		"count_number": gorm.Expr("count_number + ?", by),
		"updated_at":   r.stamp(),
	})
}

func (r *CountRecordRepositoryImpl) update(ctx context.Context, id uint, updates map[string]any) (rec *models.CountRecord, err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return nil, err
	}
	defer finish(db, shouldCommit, &err)

	res := db.Model(&models.CountRecord{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update count %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	var row models.CountRecord
	if err = db.Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to reload count %d: %w", id, err)
	}
	return &row, nil
}

// DeleteByID removes a row and reports whether it existed
func (r *CountRecordRepositoryImpl) DeleteByID(ctx context.Context, id uint) (deleted bool, err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}
	defer finish(db, shouldCommit, &err)

	res := db.Delete(&models.CountRecord{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete count %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// List returns rows ordered by id. A limit of 0 means no limit.
func (r *CountRecordRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*models.CountRecord, error) {
	query := r.getDB(ctx).Model(&models.CountRecord{}).Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	rows := make([]*models.CountRecord, 0)
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list counts: %w", err)
	}
	return rows, nil
}
