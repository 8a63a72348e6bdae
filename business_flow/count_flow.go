package businessflow

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/amirphl/counter-api/app/dto"
	"github.com/amirphl/counter-api/models"
	"github.com/amirphl/counter-api/repository"
	"github.com/amirphl/counter-api/utils"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	// initialCount seeds the table when the latest count is requested on an empty table
	initialCount = 1

	incrementMessage = "Count incremented successfully"
	exportSheetName  = "counts"
	exportFilename   = "counts.xlsx"
)

// CountFlow defines the operations exposed over the count table
type CountFlow interface {
	GetLatestCount(ctx context.Context, metadata *ClientMetadata) (*dto.CountResponse, error)
	IncrementLatestCount(ctx context.Context, metadata *ClientMetadata) (*dto.IncrementCountResponse, error)
	CreateCount(ctx context.Context, req *dto.CreateCountRequest, metadata *ClientMetadata) (*dto.CountView, error)
	ListCounts(ctx context.Context, req *dto.ListCountsRequest, metadata *ClientMetadata) ([]dto.CountView, error)
	GetCount(ctx context.Context, id uint, metadata *ClientMetadata) (*dto.CountView, error)
	UpdateCount(ctx context.Context, id uint, req *dto.UpdateCountRequest, metadata *ClientMetadata) (*dto.CountView, error)
	DeleteCount(ctx context.Context, id uint, metadata *ClientMetadata) error
	IncrementCount(ctx context.Context, req *dto.IncrementCountByIDRequest, metadata *ClientMetadata) (*dto.CountView, error)
	ExportCounts(ctx context.Context, metadata *ClientMetadata) (*dto.ExportCountsResponse, error)
}

// CountFlowImpl implements CountFlow
type CountFlowImpl struct {
	countRepo repository.CountRecordRepository
	db        *gorm.DB
	log       zerolog.Logger
}

func NewCountFlow(countRepo repository.CountRecordRepository, db *gorm.DB, log zerolog.Logger) CountFlow {
	return &CountFlowImpl{
		countRepo: countRepo,
		db:        db,
		log:       log.With().Str("flow", "count").Logger(),
	}
}

// GetLatestCount returns the count_number of the newest row, creating the first row if needed
func (f *CountFlowImpl) GetLatestCount(ctx context.Context, metadata *ClientMetadata) (result *dto.CountResponse, err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("GET_LATEST_COUNT_FAILED", "Failed to get latest count", err)
		}
	}()

	var latest *models.CountRecord
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		var txErr error
		latest, txErr = f.getOrCreateLatest(txCtx, metadata)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return &dto.CountResponse{Count: latest.CountNumber}, nil
}

// IncrementLatestCount adds one to the newest row, creating it first on an empty table
func (f *CountFlowImpl) IncrementLatestCount(ctx context.Context, metadata *ClientMetadata) (result *dto.IncrementCountResponse, err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("INCREMENT_LATEST_COUNT_FAILED", "Failed to increment count", err)
		}
	}()

	var updated *models.CountRecord
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		latest, txErr := f.getOrCreateLatest(txCtx, metadata)
		if txErr != nil {
			return txErr
		}
		updated, txErr = f.countRepo.IncrementByID(txCtx, latest.ID, 1)
		if txErr != nil {
			return txErr
		}
		if updated == nil {
			return ErrCountNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	countIncrementsTotal.WithLabelValues("latest").Inc()
	metadata.attach(f.log.Debug()).
		Uint("id", updated.ID).
		Int64("count_number", updated.CountNumber).
		Msg("latest count incremented")

	return &dto.IncrementCountResponse{Count: updated.CountNumber, Message: incrementMessage}, nil
}

func (f *CountFlowImpl) getOrCreateLatest(ctx context.Context, metadata *ClientMetadata) (*models.CountRecord, error) {
	latest, err := f.countRepo.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if latest != nil {
		return latest, nil
	}

	seed := &models.CountRecord{CountNumber: initialCount}
	if err := f.countRepo.Save(ctx, seed); err != nil {
		return nil, err
	}
	metadata.attach(f.log.Info()).Uint("id", seed.ID).Msg("count table seeded")
	return seed, nil
}

// CreateCount inserts a row with the supplied fields
func (f *CountFlowImpl) CreateCount(ctx context.Context, req *dto.CreateCountRequest, metadata *ClientMetadata) (result *dto.CountView, err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("CREATE_COUNT_FAILED", "Failed to create count", err)
		}
	}()

	if req.CountNumber == nil {
		return nil, ErrCountNumberMissing
	}
	if err = checkDescription(req.Description); err != nil {
		return nil, err
	}

	record := &models.CountRecord{
		CountNumber: *req.CountNumber,
		Description: req.Description,
	}
	if err = f.countRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	metadata.attach(f.log.Debug()).Uint("id", record.ID).Msg("count created")

	view := ToCountView(*record)
	return &view, nil
}

// ListCounts returns rows ordered by id, skipping skip rows and returning at most limit
func (f *CountFlowImpl) ListCounts(ctx context.Context, req *dto.ListCountsRequest, metadata *ClientMetadata) (result []dto.CountView, err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("LIST_COUNTS_FAILED", "Failed to list counts", err)
		}
	}()

	if req.Skip < 0 || req.Limit < 0 {
		return nil, ErrInvalidPagination
	}

	views := make([]dto.CountView, 0)
	if req.Limit == 0 {
		return views, nil
	}

	rows, err := f.countRepo.List(ctx, req.Limit, req.Skip)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		views = append(views, ToCountView(*row))
	}
	return views, nil
}

// GetCount returns a single row
func (f *CountFlowImpl) GetCount(ctx context.Context, id uint, metadata *ClientMetadata) (result *dto.CountView, err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("GET_COUNT_FAILED", "Failed to get count", err)
		}
	}()

	record, err := f.countRepo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrCountNotFound
	}

	view := ToCountView(*record)
	return &view, nil
}

// UpdateCount applies only the fields present in req. An empty payload changes nothing.
func (f *CountFlowImpl) UpdateCount(ctx context.Context, id uint, req *dto.UpdateCountRequest, metadata *ClientMetadata) (result *dto.CountView, err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("UPDATE_COUNT_FAILED", "Failed to update count", err)
		}
	}()

	if req.CountNumber.IsNull() {
		return nil, ErrCountNumberNull
	}

	patch := models.CountRecordPatch{
		CountNumber: req.CountNumber.Value,
	}
	if req.Description.Set {
		if err = checkDescription(req.Description.Value); err != nil {
			return nil, err
		}
		patch.SetDescription = true
		patch.Description = req.Description.Value
	}

	var record *models.CountRecord
	if patch.IsEmpty() {
		record, err = f.countRepo.ByID(ctx, id)
	} else {
		record, err = f.countRepo.Patch(ctx, id, patch)
	}
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrCountNotFound
	}

	if !patch.IsEmpty() {
		metadata.attach(f.log.Debug()).Uint("id", id).Msg("count updated")
	}

	view := ToCountView(*record)
	return &view, nil
}

// DeleteCount removes a row
func (f *CountFlowImpl) DeleteCount(ctx context.Context, id uint, metadata *ClientMetadata) (err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("DELETE_COUNT_FAILED", "Failed to delete count", err)
		}
	}()

	deleted, err := f.countRepo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrCountNotFound
	}

	metadata.attach(f.log.Debug()).Uint("id", id).Msg("count deleted")
	return nil
}

// IncrementCount adds req.By to a specific row in a single statement
func (f *CountFlowImpl) IncrementCount(ctx context.Context, req *dto.IncrementCountByIDRequest, metadata *ClientMetadata) (result *dto.CountView, err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("INCREMENT_COUNT_FAILED", "Failed to increment count", err)
		}
	}()

	record, err := f.countRepo.IncrementByID(ctx, req.ID, req.By)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrCountNotFound
	}

	countIncrementsTotal.WithLabelValues("by_id").Inc()
	metadata.attach(f.log.Debug()).
		Uint("id", record.ID).
		Int64("by", req.By).
		Int64("count_number", record.CountNumber).
		Msg("count incremented")

	view := ToCountView(*record)
	return &view, nil
}

// ExportCounts renders every row into an xlsx workbook
func (f *CountFlowImpl) ExportCounts(ctx context.Context, metadata *ClientMetadata) (result *dto.ExportCountsResponse, err error) {
	defer func() {
		if err != nil {
			err = NewBusinessError("EXPORT_COUNTS_FAILED", "Failed to export counts", err)
		}
	}()

	rows, err := f.countRepo.List(ctx, 0, 0)
	if err != nil {
		return nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err = xl.SetSheetName(xl.GetSheetName(0), exportSheetName); err != nil {
		return nil, err
	}

	header := []any{"id", "count_number", "description", "created_at", "updated_at"}
	if err = xl.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return nil, err
	}

	for i, r := range rows {
		record := []any{
			r.ID,
			r.CountNumber,
			utils.Deref(r.Description),
			utils.FormatRFC3339(r.CreatedAt),
			utils.Deref(utils.FormatRFC3339Ptr(r.UpdatedAt)),
		}
		cell, cerr := excelize.CoordinatesToCellName(1, i+2)
		if cerr != nil {
			return nil, cerr
		}
		if err = xl.SetSheetRow(exportSheetName, cell, &record); err != nil {
			return nil, err
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	metadata.attach(f.log.Debug()).Int("rows", len(rows)).Msg("counts exported")

	return &dto.ExportCountsResponse{Filename: exportFilename, Data: buf.Bytes()}, nil
}

func checkDescription(description *string) error {
	if description != nil && utf8.RuneCountInString(*description) > utils.MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}
