package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/catalog"
	"github.com/murdhanno/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CatalogService manages product types, size groups and products. Reads are
// open to every signed-in user; changes are admin only.
type CatalogService struct {
	typeRepo       catalog.ProductTypeRepository
	groupRepo      catalog.SizeGroupRepository
	productRepo    catalog.ProductRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(
	typeRepo catalog.ProductTypeRepository,
	groupRepo catalog.SizeGroupRepository,
	productRepo catalog.ProductRepository,
	logger *zap.Logger,
) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		typeRepo:    typeRepo,
		groupRepo:   groupRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for product events
func (s *CatalogService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// =============================================================================
// Product types
// =============================================================================

func (s *CatalogService) ListProductTypes(ctx context.Context, req ProductTypeListFilter) (shared.Paginated[ProductTypeResponse], error) {
	filter := shared.Filter{Page: req.Page, PageSize: req.PageSize, OrderBy: "name", OrderDir: "asc", Search: req.Search}
	filter.Normalize()

	types, err := s.typeRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductTypeResponse]{}, fmt.Errorf("failed to list product types: %w", err)
	}
	total, err := s.typeRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductTypeResponse]{}, fmt.Errorf("failed to count product types: %w", err)
	}
	items := make([]ProductTypeResponse, len(types))
	for i := range types {
		items[i] = toProductTypeResponse(&types[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

func (s *CatalogService) GetProductType(ctx context.Context, id uuid.UUID) (*ProductTypeResponse, error) {
	t, err := s.typeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProductTypeResponse(t)
	return &resp, nil
}

func (s *CatalogService) CreateProductType(ctx context.Context, actor shared.Actor, req ProductTypeRequest) (*ProductTypeResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.ensureTypeNameFree(ctx, req.Name, nil); err != nil {
		return nil, err
	}
	t, err := catalog.NewProductType(req.Name, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.typeRepo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save product type: %w", err)
	}

	s.logger.Info("Product type created", zap.String("product_type_id", t.ID.String()), zap.String("name", t.Name))
	resp := toProductTypeResponse(t)
	return &resp, nil
}

func (s *CatalogService) UpdateProductType(ctx context.Context, actor shared.Actor, id uuid.UUID, req ProductTypeRequest) (*ProductTypeResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	t, err := s.typeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTypeNameFree(ctx, req.Name, &t.ID); err != nil {
		return nil, err
	}
	if err := t.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.typeRepo.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save product type: %w", err)
	}
	resp := toProductTypeResponse(t)
	return &resp, nil
}

// DeleteProductType refuses types that still have products
func (s *CatalogService) DeleteProductType(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	count, err := s.productRepo.CountByProductType(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return shared.NewDomainError("PRODUCT_TYPE_IN_USE", "Cannot delete product type with existing products")
	}
	if err := s.typeRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Product type deleted", zap.String("product_type_id", id.String()))
	return nil
}

func (s *CatalogService) ensureTypeNameFree(ctx context.Context, name string, excludeID *uuid.UUID) error {
	exists, err := s.typeRepo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check product type name: %w", err)
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Product type name already exists")
	}
	return nil
}

// loadType reports a missing type as invalid input, since callers name it in
// a request body
func (s *CatalogService) loadType(ctx context.Context, id uuid.UUID) (*catalog.ProductType, error) {
	t, err := s.typeRepo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("INVALID_PRODUCT_TYPE", "Product type not found")
	}
	return t, err
}

// =============================================================================
// Size groups
// =============================================================================

// ListSizeGroups lists groups by name, optionally of one product type
func (s *CatalogService) ListSizeGroups(ctx context.Context, req SizeGroupListFilter) (shared.Paginated[SizeGroupResponse], error) {
	filter := catalog.SizeGroupFilter{
		Filter:        shared.Filter{Page: req.Page, PageSize: req.PageSize, OrderBy: "name", OrderDir: "asc"},
		ProductTypeID: req.ProductTypeID,
	}
	filter.Normalize()

	groups, err := s.groupRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[SizeGroupResponse]{}, fmt.Errorf("failed to list size groups: %w", err)
	}
	total, err := s.groupRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[SizeGroupResponse]{}, fmt.Errorf("failed to count size groups: %w", err)
	}
	items := make([]SizeGroupResponse, len(groups))
	for i := range groups {
		items[i] = toSizeGroupResponse(&groups[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

func (s *CatalogService) GetSizeGroup(ctx context.Context, id uuid.UUID) (*SizeGroupResponse, error) {
	g, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toSizeGroupResponse(g)
	return &resp, nil
}

// CreateSizeGroup stores the group and links the ungrouped products of its
// type whose size it lists
func (s *CatalogService) CreateSizeGroup(ctx context.Context, actor shared.Actor, req CreateSizeGroupRequest) (*SizeGroupResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if _, err := s.loadType(ctx, req.ProductTypeID); err != nil {
		return nil, err
	}
	g, err := catalog.NewSizeGroup(req.ProductTypeID, req.Name, req.Description, req.Sizes)
	if err != nil {
		return nil, err
	}
	if err := s.checkGroup(ctx, g); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to save size group: %w", err)
	}
	assigned, err := s.productRepo.AssignUngrouped(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("failed to assign products: %w", err)
	}

	s.logger.Info("Size group created",
		zap.String("size_group_id", g.ID.String()),
		zap.Strings("sizes", g.Sizes),
		zap.Int64("assigned_products", assigned))
	resp := toSizeGroupResponse(g)
	resp.AssignedProducts = assigned
	return &resp, nil
}

// UpdateSizeGroup replaces the group's sizes. Ungrouped products of newly
// listed sizes join the group; products of dropped sizes keep their link.
func (s *CatalogService) UpdateSizeGroup(ctx context.Context, actor shared.Actor, id uuid.UUID, req UpdateSizeGroupRequest) (*SizeGroupResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	g, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := g.Update(req.Name, req.Description, req.Sizes); err != nil {
		return nil, err
	}
	if err := s.checkGroup(ctx, g); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Save(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to save size group: %w", err)
	}
	assigned, err := s.productRepo.AssignUngrouped(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("failed to assign products: %w", err)
	}
	resp := toSizeGroupResponse(g)
	resp.AssignedProducts = assigned
	return &resp, nil
}

// DeleteSizeGroup refuses groups that still have products
func (s *CatalogService) DeleteSizeGroup(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	count, err := s.productRepo.CountBySizeGroup(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return shared.NewDomainError("SIZE_GROUP_IN_USE", "Cannot delete size group with existing products")
	}
	if err := s.groupRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Size group deleted", zap.String("size_group_id", id.String()))
	return nil
}

// checkGroup keeps group names unique per type and every size of a type in
// at most one group
func (s *CatalogService) checkGroup(ctx context.Context, g *catalog.SizeGroup) error {
	exists, err := s.groupRepo.ExistsByName(ctx, g.ProductTypeID, g.Name, &g.ID)
	if err != nil {
		return fmt.Errorf("failed to check size group name: %w", err)
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Size group name already exists for this product type")
	}
	for _, size := range g.Sizes {
		holder, err := s.groupRepo.FindForSize(ctx, g.ProductTypeID, size)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to check size %s: %w", size, err)
		}
		if holder.ID != g.ID {
			return shared.NewDomainError("SIZE_ALREADY_GROUPED",
				fmt.Sprintf("Size %s already belongs to size group %s", size, holder.Name))
		}
	}
	return nil
}

// =============================================================================
// Products
// =============================================================================

// ListProducts is the inventory list, by name unless asked otherwise
func (s *CatalogService) ListProducts(ctx context.Context, req ProductListFilter) (shared.Paginated[ProductResponse], error) {
	filter := catalog.ProductFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
			Search:   req.Search,
		},
		ProductTypeID: req.ProductTypeID,
		InStockOnly:   req.InStock,
		LowStockOnly:  req.LowStock,
	}
	if filter.OrderBy == "" {
		filter.OrderBy, filter.OrderDir = "name", "asc"
	}
	filter.Normalize()

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, fmt.Errorf("failed to list products: %w", err)
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[ProductResponse]{}, fmt.Errorf("failed to count products: %w", err)
	}
	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = toProductResponse(&products[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListAvailable lists the products an order can pick from, each with the
// stock it can draw including compatible sizes
func (s *CatalogService) ListAvailable(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindAll(ctx, catalog.ProductFilter{
		Filter:      shared.Filter{OrderBy: "name", OrderDir: "asc"},
		InStockOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	out := make([]ProductResponse, len(products))
	for i := range products {
		p := &products[i]
		compatible, err := s.productRepo.FindCompatible(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to load compatible sizes: %w", err)
		}
		out[i] = toProductResponse(p)
		out[i].TotalAvailable = catalog.Available(p, compatible)
	}
	return out, nil
}

// LowStock lists products below the low stock threshold, emptiest first
func (s *CatalogService) LowStock(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindAll(ctx, catalog.ProductFilter{
		Filter:       shared.Filter{OrderBy: "quantity", OrderDir: "asc"},
		LowStockOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = toProductResponse(&products[i])
	}
	return out, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(p)
	return &resp, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor shared.Actor, req ProductRequest) (*ProductResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	t, err := s.loadType(ctx, req.ProductTypeID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCombinationFree(ctx, req, nil); err != nil {
		return nil, err
	}
	p, err := catalog.NewProduct(req.spec())
	if err != nil {
		return nil, err
	}
	p.TypeName = t.Name
	if err := s.placeInGroup(ctx, p, req.SizeGroupID); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", p.ID.String()),
		zap.String("product", p.DisplayName()),
		zap.String("size", p.Size),
		zap.Int("quantity", p.Quantity))
	s.publish(ctx, p)
	resp := toProductResponse(p)
	return &resp, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, actor shared.Actor, id uuid.UUID, req ProductRequest) (*ProductResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := s.loadType(ctx, req.ProductTypeID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCombinationFree(ctx, req, &p.ID); err != nil {
		return nil, err
	}
	if err := p.Update(req.spec()); err != nil {
		return nil, err
	}
	p.TypeName = t.Name
	if err := s.placeInGroup(ctx, p, req.SizeGroupID); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save product: %w", err)
	}
	s.publish(ctx, p)
	resp := toProductResponse(p)
	return &resp, nil
}

// DeleteProduct refuses products that appear on an order
func (s *CatalogService) DeleteProduct(ctx context.Context, actor shared.Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	used, err := s.productRepo.IsReferenced(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check orders: %w", err)
	}
	if used {
		return shared.NewDomainError("PRODUCT_IN_USE", "Cannot delete product with existing orders")
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

func (s *CatalogService) ensureCombinationFree(ctx context.Context, req ProductRequest, excludeID *uuid.UUID) error {
	exists, err := s.productRepo.ExistsCombination(ctx, req.ProductTypeID, req.Name, req.Size, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS",
			fmt.Sprintf("Product %s in size %s already exists for this product type", req.Name, req.Size))
	}
	return nil
}

// placeInGroup links p to the named group, or else to the group of its type
// that lists its size when it has none
func (s *CatalogService) placeInGroup(ctx context.Context, p *catalog.Product, groupID *uuid.UUID) error {
	if groupID != nil {
		g, err := s.groupRepo.FindByID(ctx, *groupID)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_SIZE_GROUP", "Size group not found")
		}
		if err != nil {
			return err
		}
		return p.AssignSizeGroup(g)
	}
	if p.SizeGroupID != nil {
		return nil
	}
	g, err := s.groupRepo.FindForSize(ctx, p.ProductTypeID, p.Size)
	if errors.Is(err, shared.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find size group: %w", err)
	}
	return p.AssignSizeGroup(g)
}

func (s *CatalogService) publish(ctx context.Context, p *catalog.Product) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, p); err != nil {
		s.logger.Warn("failed to publish product events", zap.String("product_id", p.ID.String()), zap.Error(err))
	}
}

func requireAdmin(actor shared.Actor) error {
	if !actor.IsAdmin {
		return shared.NewDomainError("FORBIDDEN", "Administrator access required")
	}
	return nil
}
