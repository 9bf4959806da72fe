package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/catalog"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/murdhanno/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

func searchName(query *gorm.DB, search string) *gorm.DB {
	if search = strings.TrimSpace(search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	return query
}

func excluding(query *gorm.DB, id *uuid.UUID) *gorm.DB {
	if id != nil {
		query = query.Where("id <> ?", *id)
	}
	return query
}

func exists(query *gorm.DB) (bool, error) {
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormProductTypeRepository implements catalog.ProductTypeRepository
type GormProductTypeRepository struct {
	db *gorm.DB
}

func NewGormProductTypeRepository(db *gorm.DB) *GormProductTypeRepository {
	return &GormProductTypeRepository{db: db}
}

func (r *GormProductTypeRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.ProductType, error) {
	var model models.ProductTypeModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormProductTypeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.ProductType, error) {
	var rows []models.ProductTypeModel
	query := searchName(r.db.WithContext(ctx).Model(&models.ProductTypeModel{}), filter.Search)
	if err := applySortAndPage(query, filter, CatalogSortFields).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.ProductType, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormProductTypeRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := searchName(r.db.WithContext(ctx).Model(&models.ProductTypeModel{}), filter.Search).Count(&count).Error
	return count, err
}

func (r *GormProductTypeRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductTypeModel{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	return exists(excluding(query, excludeID))
}

func (r *GormProductTypeRepository) Save(ctx context.Context, t *catalog.ProductType) error {
	if err := saveVersioned(r.db.WithContext(ctx), models.ProductTypeModelFromDomain(t), t); err != nil {
		return err
	}
	t.MarkStored()
	return nil
}

func (r *GormProductTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductTypeModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormSizeGroupRepository implements catalog.SizeGroupRepository
type GormSizeGroupRepository struct {
	db *gorm.DB
}

func NewGormSizeGroupRepository(db *gorm.DB) *GormSizeGroupRepository {
	return &GormSizeGroupRepository{db: db}
}

func (r *GormSizeGroupRepository) withSizes(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Sizes", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *GormSizeGroupRepository) applyFilter(query *gorm.DB, filter catalog.SizeGroupFilter) *gorm.DB {
	if filter.ProductTypeID != nil {
		query = query.Where("product_type_id = ?", *filter.ProductTypeID)
	}
	return searchName(query, filter.Search)
}

func (r *GormSizeGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.SizeGroup, error) {
	var model models.SizeGroupModel
	if err := r.withSizes(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormSizeGroupRepository) FindAll(ctx context.Context, filter catalog.SizeGroupFilter) ([]catalog.SizeGroup, error) {
	var rows []models.SizeGroupModel
	query := r.applyFilter(r.withSizes(ctx).Model(&models.SizeGroupModel{}), filter)
	if err := applySortAndPage(query, filter.Filter, CatalogSortFields).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.SizeGroup, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormSizeGroupRepository) Count(ctx context.Context, filter catalog.SizeGroupFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.SizeGroupModel{}), filter).Count(&count).Error
	return count, err
}

func (r *GormSizeGroupRepository) FindForSize(ctx context.Context, productTypeID uuid.UUID, size string) (*catalog.SizeGroup, error) {
	holding := r.db.WithContext(ctx).Model(&models.SizeGroupSizeModel{}).
		Select("size_group_id").
		Where("size = ?", strings.TrimSpace(size))

	var model models.SizeGroupModel
	err := r.withSizes(ctx).
		Where("product_type_id = ? AND id IN (?)", productTypeID, holding).
		Order("created_at ASC").
		First(&model).Error
	if err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormSizeGroupRepository) ExistsByName(ctx context.Context, productTypeID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.SizeGroupModel{}).
		Where("product_type_id = ? AND name = ?", productTypeID, strings.TrimSpace(name))
	return exists(excluding(query, excludeID))
}

// Save writes the group under its version guard and replaces its sizes in
// one transaction
func (r *GormSizeGroupRepository) Save(ctx context.Context, g *catalog.SizeGroup) error {
	model := models.SizeGroupModelFromDomain(g)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveVersioned(tx, model, g); err != nil {
			return fmt.Errorf("save size group: %w", err)
		}
		if err := tx.Where("size_group_id = ?", model.ID).Delete(&models.SizeGroupSizeModel{}).Error; err != nil {
			return fmt.Errorf("clear sizes: %w", err)
		}
		if len(model.Sizes) == 0 {
			return nil
		}
		if err := tx.Create(&model.Sizes).Error; err != nil {
			return fmt.Errorf("save sizes: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	g.MarkStored()
	return nil
}

func (r *GormSizeGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("size_group_id = ?", id).Delete(&models.SizeGroupSizeModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.SizeGroupModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// GormProductRepository implements catalog.ProductRepository. Loaded
// products carry their type name.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) withType(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("ProductType")
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter catalog.ProductFilter) *gorm.DB {
	if filter.ProductTypeID != nil {
		query = query.Where("product_type_id = ?", *filter.ProductTypeID)
	}
	if filter.InStockOnly {
		query = query.Where("quantity > 0")
	}
	if filter.LowStockOnly {
		query = query.Where("quantity < ?", catalog.LowStockThreshold)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(code) LIKE ?)", like, like)
	}
	return query
}

func toProducts(rows []models.ProductModel) []catalog.Product {
	out := make([]catalog.Product, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.withType(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

func (r *GormProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	var rows []models.ProductModel
	query := r.applyFilter(r.withType(ctx).Model(&models.ProductModel{}), filter)
	if err := applySortAndPage(query, filter.Filter, ProductSortFields).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

func (r *GormProductRepository) Count(ctx context.Context, filter catalog.ProductFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter).Count(&count).Error
	return count, err
}

// FindCompatible orders the other sizes by most stock first
func (r *GormProductRepository) FindCompatible(ctx context.Context, p *catalog.Product) ([]*catalog.Product, error) {
	if p.SizeGroupID == nil {
		return nil, nil
	}
	var rows []models.ProductModel
	err := r.withType(ctx).
		Where("product_type_id = ? AND name = ? AND size_group_id = ? AND id <> ?",
			p.ProductTypeID, p.Name, *p.SizeGroupID, p.ID).
		Order("quantity DESC").Order("size ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*catalog.Product, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

func (r *GormProductRepository) ExistsCombination(ctx context.Context, productTypeID uuid.UUID, name, size string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("product_type_id = ? AND name = ? AND size = ?", productTypeID, strings.TrimSpace(name), strings.TrimSpace(size))
	return exists(excluding(query, excludeID))
}

func (r *GormProductRepository) CountByProductType(ctx context.Context, productTypeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("product_type_id = ?", productTypeID).Count(&count).Error
	return count, err
}

func (r *GormProductRepository) CountBySizeGroup(ctx context.Context, sizeGroupID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("size_group_id = ?", sizeGroupID).Count(&count).Error
	return count, err
}

func (r *GormProductRepository) AssignUngrouped(ctx context.Context, g *catalog.SizeGroup) (int64, error) {
	if len(g.Sizes) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("product_type_id = ? AND size IN ? AND size_group_id IS NULL", g.ProductTypeID, g.Sizes).
		Updates(map[string]any{
			"size_group_id": g.ID,
			"version":       gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

func (r *GormProductRepository) IsReferenced(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(r.db.WithContext(ctx).Model(&models.OrderItemModel{}).Where("product_id = ?", id))
}

func (r *GormProductRepository) Save(ctx context.Context, p *catalog.Product) error {
	if err := saveVersioned(r.db.WithContext(ctx), models.ProductModelFromDomain(p), p); err != nil {
		return err
	}
	p.MarkStored()
	return nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var (
	_ catalog.ProductTypeRepository = (*GormProductTypeRepository)(nil)
	_ catalog.SizeGroupRepository   = (*GormSizeGroupRepository)(nil)
	_ catalog.ProductRepository     = (*GormProductRepository)(nil)
)
