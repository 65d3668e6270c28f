package storefront

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taxpilot/backend/internal/domain/shared"
	"github.com/taxpilot/backend/internal/domain/storefront"
)

// CatalogService manages the print product catalog
type CatalogService struct {
	productRepo storefront.PrintProductRepository
	logger      *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(productRepo storefront.PrintProductRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// CreateProduct creates a product together with its pricing axes
func (s *CatalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductInfo, error) {
	existing, err := s.productRepo.FindBySlug(ctx, input.Slug)
	if err != nil && err != shared.ErrNotFound {
		s.logger.Error("Failed to check product slug", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create product")
	}
	if existing != nil {
		return nil, shared.NewDomainError("SLUG_TAKEN", "A product with this slug already exists")
	}

	product, err := storefront.NewPrintProduct(input.Name, input.Slug, input.Description)
	if err != nil {
		return nil, err
	}
	for _, t := range input.Tiers {
		if err := product.AddTier(t.MinQuantity, t.UnitPrice); err != nil {
			return nil, err
		}
	}
	for _, ps := range input.Papers {
		if err := product.AddPaper(ps.Code, ps.Name, ps.Multiplier); err != nil {
			return nil, err
		}
	}
	for _, tu := range input.Turnarounds {
		if err := product.AddTurnaround(tu.Code, tu.Name, tu.BusinessDays, tu.Multiplier); err != nil {
			return nil, err
		}
	}
	for _, a := range input.AddOns {
		if err := product.AddAddOn(a.Code, a.Name, a.Formula); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to save product", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create product")
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug))

	return newProductInfo(product), nil
}

// GetProduct fetches a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductInfo, error) {
	product, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return newProductInfo(product), nil
}

// GetProductBySlug fetches a product by slug
func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*ProductInfo, error) {
	product, err := s.productRepo.FindBySlug(ctx, slug)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		s.logger.Error("Failed to load product", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load product")
	}
	return newProductInfo(product), nil
}

// ListProducts lists the catalog, optionally only products on sale
func (s *CatalogService) ListProducts(ctx context.Context, input ListProductsInput) (*shared.Paginated[ProductInfo], error) {
	filter := shared.DefaultFilter()
	if input.Page > 0 {
		filter.Page = input.Page
	}
	if input.PageSize > 0 {
		filter.PageSize = input.PageSize
	}

	var (
		page *shared.Paginated[*storefront.PrintProduct]
		err  error
	)
	if input.ActiveOnly {
		page, err = s.productRepo.FindActive(ctx, filter)
	} else {
		page, err = s.productRepo.FindAll(ctx, filter)
	}
	if err != nil {
		s.logger.Error("Failed to list products", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list products")
	}

	items := make([]ProductInfo, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, *newProductInfo(p))
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// ActivateProduct puts a product back on sale
func (s *CatalogService) ActivateProduct(ctx context.Context, id uuid.UUID) (*ProductInfo, error) {
	product, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Activate()
	return s.save(ctx, product)
}

// DeactivateProduct takes a product off sale, keeping its pricing
func (s *CatalogService) DeactivateProduct(ctx context.Context, id uuid.UUID) (*ProductInfo, error) {
	product, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Deactivate()
	return s.save(ctx, product)
}

// DeleteProduct removes a product and its pricing axes
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findByID(ctx, id); err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete product", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete product")
	}
	return nil
}

func (s *CatalogService) findByID(ctx context.Context, id uuid.UUID) (*storefront.PrintProduct, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
		}
		s.logger.Error("Failed to load product", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load product")
	}
	return product, nil
}

func (s *CatalogService) save(ctx context.Context, product *storefront.PrintProduct) (*ProductInfo, error) {
	if err := s.productRepo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to save product", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update product")
	}
	return newProductInfo(product), nil
}
