package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	storefrontapp "github.com/taxpilot/backend/internal/application/storefront"
)

// StorefrontHandler handles the print product catalog and the public
// quote endpoint. Browsing and quoting are public; catalog writes are
// admin-only and gated by middleware supplied at registration time.
type StorefrontHandler struct {
	BaseHandler
	catalogService *storefrontapp.CatalogService
	pricingService *storefrontapp.PricingService
	adminOnly      []gin.HandlerFunc
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(
	catalogService *storefrontapp.CatalogService,
	pricingService *storefrontapp.PricingService,
	adminOnly ...gin.HandlerFunc,
) *StorefrontHandler {
	return &StorefrontHandler{
		catalogService: catalogService,
		pricingService: pricingService,
		adminOnly:      adminOnly,
	}
}

// RegisterRoutes mounts the storefront endpoints
func (h *StorefrontHandler) RegisterRoutes(rg *gin.RouterGroup) {
	store := rg.Group("/storefront")
	store.GET("/products", h.ListProducts)
	store.GET("/products/:slug", h.GetProductBySlug)
	store.POST("/quote", h.Quote)

	admin := store.Group("/admin/products")
	admin.Use(h.adminOnly...)
	admin.POST("", h.CreateProduct)
	admin.GET("", h.ListAllProducts)
	admin.GET("/:id", h.GetProduct)
	admin.POST("/:id/activate", h.ActivateProduct)
	admin.POST("/:id/deactivate", h.DeactivateProduct)
	admin.DELETE("/:id", h.DeleteProduct)
}

// ListProducts lists active products for the public storefront
func (h *StorefrontHandler) ListProducts(c *gin.Context) {
	page, pageSize := parsePagination(c)

	result, err := h.catalogService.ListProducts(c.Request.Context(), storefrontapp.ListProductsInput{
		ActiveOnly: true,
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, paginatedMeta(result))
}

// GetProductBySlug returns one product by its storefront slug
func (h *StorefrontHandler) GetProductBySlug(c *gin.Context) {
	info, err := h.catalogService.GetProductBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// Quote prices a configuration without creating anything
func (h *StorefrontHandler) Quote(c *gin.Context) {
	var input storefrontapp.QuoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	quote, err := h.pricingService.Quote(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, quote)
}

// CreateProduct creates a product with its tiers, papers, turnarounds
// and add-ons
func (h *StorefrontHandler) CreateProduct(c *gin.Context) {
	var input storefrontapp.CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	info, err := h.catalogService.CreateProduct(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, info)
}

// ListAllProducts lists every product including inactive ones
func (h *StorefrontHandler) ListAllProducts(c *gin.Context) {
	page, pageSize := parsePagination(c)

	result, err := h.catalogService.ListProducts(c.Request.Context(), storefrontapp.ListProductsInput{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, paginatedMeta(result))
}

// GetProduct returns one product by ID
func (h *StorefrontHandler) GetProduct(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	info, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// ActivateProduct puts a product on the storefront
func (h *StorefrontHandler) ActivateProduct(c *gin.Context) {
	h.mutate(c, h.catalogService.ActivateProduct)
}

// DeactivateProduct pulls a product from the storefront
func (h *StorefrontHandler) DeactivateProduct(c *gin.Context) {
	h.mutate(c, h.catalogService.DeactivateProduct)
}

// DeleteProduct removes a product entirely
func (h *StorefrontHandler) DeleteProduct(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *StorefrontHandler) mutate(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*storefrontapp.ProductInfo, error)) {
	id, err := parseIDParam(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	info, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}
