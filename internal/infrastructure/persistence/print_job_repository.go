package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/printing"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/murdhanno/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPrintJobRepository implements PrintJobRepository using GORM
type GormPrintJobRepository struct {
	db *gorm.DB
}

// NewGormPrintJobRepository creates a new GormPrintJobRepository
func NewGormPrintJobRepository(db *gorm.DB) *GormPrintJobRepository {
	return &GormPrintJobRepository{db: db}
}

// FindByID finds a job by ID
func (r *GormPrintJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*printing.PrintJob, error) {
	var model models.PrintJobModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists jobs matching the filter, newest first unless sorted otherwise
func (r *GormPrintJobRepository) FindAll(ctx context.Context, filter printing.PrintJobFilter) ([]printing.PrintJob, error) {
	var rows []models.PrintJobModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PrintJobModel{}), filter)
	query = applySortAndPage(query, filter.Filter, PrintJobSortFields)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toPrintJobs(rows), nil
}

// Count returns the total count of jobs matching the filter
func (r *GormPrintJobRepository) Count(ctx context.Context, filter printing.PrintJobFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PrintJobModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindByOrder lists the jobs printed for an order, newest first
func (r *GormPrintJobRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]printing.PrintJob, error) {
	var rows []models.PrintJobModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toPrintJobs(rows), nil
}

// Save saves a job (insert or update)
func (r *GormPrintJobRepository) Save(ctx context.Context, job *printing.PrintJob) error {
	if err := saveVersioned(r.db.WithContext(ctx), models.PrintJobModelFromDomain(job), job); err != nil {
		return err
	}
	job.MarkStored()
	return nil
}

// DeleteOlderThan removes completed and failed jobs created before cutoff
func (r *GormPrintJobRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ? AND status IN ?", cutoff, []string{
			string(printing.JobStatusCompleted),
			string(printing.JobStatusFailed),
		}).
		Delete(&models.PrintJobModel{})
	return result.RowsAffected, result.Error
}

func (r *GormPrintJobRepository) applyFilter(query *gorm.DB, filter printing.PrintJobFilter) *gorm.DB {
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.PaperSize != nil {
		query = query.Where("paper_size = ?", string(*filter.PaperSize))
	}
	if filter.RequestedBy != nil {
		query = query.Where("requested_by = ?", *filter.RequestedBy)
	}
	return query
}

func toPrintJobs(rows []models.PrintJobModel) []printing.PrintJob {
	jobs := make([]printing.PrintJob, len(rows))
	for i := range rows {
		jobs[i] = *rows[i].ToDomain()
	}
	return jobs
}

// Ensure GormPrintJobRepository implements PrintJobRepository
var _ printing.PrintJobRepository = (*GormPrintJobRepository)(nil)
