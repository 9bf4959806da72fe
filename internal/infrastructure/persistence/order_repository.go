package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/murdhanno/backend/internal/domain/trade"
	"github.com/murdhanno/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const (
	orderNumberSequence = "order_number_seq"
	itemSerialSequence  = "order_item_serial_seq"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.withItems(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormOrderRepository) FindByNumber(ctx context.Context, number int64) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.withItems(ctx).First(&model, "number = ?", number).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, error) {
	var rows []models.OrderModel
	query := r.applyFilter(r.withItems(ctx).Model(&models.OrderModel{}), filter)
	query = applySortAndPage(query, filter.Filter, OrderSortFields)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

func (r *GormOrderRepository) Count(ctx context.Context, filter trade.OrderFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save writes the order row under its version guard and replaces its items
// in one transaction.
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(tx, model, order); err != nil {
			return fmt.Errorf("save order: %w", err)
		}
		if err := tx.Where("order_id = ?", model.ID).Delete(&models.OrderItemModel{}).Error; err != nil {
			return fmt.Errorf("clear order items: %w", err)
		}
		if len(model.Items) == 0 {
			return nil
		}
		if err := tx.Create(&model.Items).Error; err != nil {
			return fmt.Errorf("save order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	order.MarkStored()
	return nil
}

func (r *GormOrderRepository) NextNumber(ctx context.Context) (int64, error) {
	return nextValue(ctx, r.db, orderNumberSequence, &models.OrderModel{}, "number")
}

func (r *GormOrderRepository) NextItemSerial(ctx context.Context) (int64, error) {
	return nextValue(ctx, r.db, itemSerialSequence, &models.OrderItemModel{}, "serial")
}

// nextValue draws from a Postgres sequence. Other dialects fall back to
// MAX(column)+1, which is only safe with a single writer.
func nextValue(ctx context.Context, db *gorm.DB, sequence string, model any, column string) (int64, error) {
	var n int64
	if db.Dialector.Name() == "postgres" {
		if err := db.WithContext(ctx).Raw("SELECT nextval(?)", sequence).Scan(&n).Error; err != nil {
			return 0, fmt.Errorf("next value of %s: %w", sequence, err)
		}
		return n, nil
	}
	if err := db.WithContext(ctx).Model(model).
		Select("COALESCE(MAX(" + column + "), 0) + 1").
		Scan(&n).Error; err != nil {
		return 0, fmt.Errorf("next %s: %w", column, err)
	}
	return n, nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter trade.OrderFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		if number, err := strconv.ParseInt(search, 10, 64); err == nil {
			query = query.Where("(number = ? OR LOWER(customer_name) LIKE ? OR customer_phone LIKE ?)", number, like, like)
		} else {
			query = query.Where("(LOWER(customer_name) LIKE ? OR customer_phone LIKE ?)", like, like)
		}
	}
	return query
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
