package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dairylicious/dairyshop-backend/pkg/db/models"
	"github.com/dairylicious/dairyshop-backend/pkg/enums"
	pkgerrors "github.com/dairylicious/dairyshop-backend/pkg/errors"
	"github.com/dairylicious/dairyshop-backend/pkg/pagination"
)

const featuredDefaultLimit = 8

// Service exposes catalog read and admin management operations.
type Service interface {
	ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	SearchProducts(ctx context.Context, query string, page, limit int) (*ProductListResult, error)
	ListByCategory(ctx context.Context, category enums.ProductCategory, page, limit int) (*ProductListResult, error)
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListFeatured(ctx context.Context, limit int) ([]ProductDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
}

// ListProductsInput holds validated catalog query parameters.
type ListProductsInput struct {
	Page     int
	Limit    int
	Category *enums.ProductCategory
	Featured *bool
	Organic  *bool
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Search   string
	Sort     enums.ProductSort
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name           string
	Description    string
	Category       enums.ProductCategory
	Unit           enums.ProductUnit
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	ImageURL       string
	Stock          int
	Brand          string
	ExpiryDays     int
	FatContent     *float64
	Volume         string
	DietaryTags    []string
	IsFeatured     bool
	IsOrganic      bool
	IsActive       bool
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name           *string
	Description    *string
	Category       *enums.ProductCategory
	Unit           *enums.ProductUnit
	Price          *decimal.Decimal
	CompareAtPrice *decimal.Decimal
	ImageURL       *string
	Stock          *int
	Brand          *string
	ExpiryDays     *int
	FatContent     *float64
	Volume         *string
	DietaryTags    []string
	IsFeatured     *bool
	IsOrganic      *bool
	IsActive       *bool
}

type service struct {
	repo *Repository
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// ListProducts returns one filtered, sorted catalog page.
func (s *service) ListProducts(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	if input.Category != nil && !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", *input.Category))
	}
	if input.Sort != "" && !input.Sort.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sort %q", input.Sort))
	}
	if input.MinPrice != nil && input.MinPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_price cannot be negative")
	}
	if input.MaxPrice != nil && input.MaxPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max_price cannot be negative")
	}
	if input.MinPrice != nil && input.MaxPrice != nil && input.MinPrice.GreaterThan(*input.MaxPrice) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_price cannot exceed max_price")
	}

	params := pagination.Params{Page: input.Page, Limit: input.Limit}.Normalize()
	filter := ListFilter{
		Category: input.Category,
		Featured: input.Featured,
		Organic:  input.Organic,
		MinPrice: input.MinPrice,
		MaxPrice: input.MaxPrice,
		Search:   strings.TrimSpace(input.Search),
		Sort:     input.Sort,
	}

	return s.listPage(ctx, filter, params)
}

// SearchProducts runs a free-text lookup across name, description, brand and
// category, ordered best-rated first.
func (s *service) SearchProducts(ctx context.Context, query string, page, limit int) (*ProductListResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}
	params := pagination.Params{Page: page, Limit: limit}.Normalize()
	return s.listPage(ctx, ListFilter{Search: query, Sort: enums.ProductSortRating}, params)
}

// ListByCategory returns one page of the named category shelf, ordered
// best-rated first.
func (s *service) ListByCategory(ctx context.Context, category enums.ProductCategory, page, limit int) (*ProductListResult, error) {
	if !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", category))
	}
	params := pagination.Params{Page: page, Limit: limit}.Normalize()
	return s.listPage(ctx, ListFilter{Category: &category, Sort: enums.ProductSortRating}, params)
}

func (s *service) listPage(ctx context.Context, filter ListFilter, params pagination.Params) (*ProductListResult, error) {
	records, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return &ProductListResult{
		Products:   NewProductDTOs(records),
		Pagination: pagination.BuildMeta(params, total),
	}, nil
}

// GetProduct loads a single visible product.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	record, err := s.repo.FindActiveByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return NewProductDTO(record), nil
}

// ListFeatured returns the featured carousel entries.
func (s *service) ListFeatured(ctx context.Context, limit int) ([]ProductDTO, error) {
	if limit <= 0 {
		limit = featuredDefaultLimit
	}
	products, err := s.repo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing featured products")
	}
	return NewProductDTOs(products), nil
}

// ListCategories aggregates the visible catalog by category, keeping the
// canonical category order.
func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	counts, err := s.repo.CountByCategory(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting categories")
	}
	out := make([]CategoryDTO, 0, len(counts))
	for _, category := range enums.ProductCategories() {
		if count, ok := counts[category]; ok {
			out = append(out, CategoryDTO{Name: string(category), Count: count})
		}
	}
	return out, nil
}

// CreateProduct inserts a new catalog listing.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	record := input.toModel()
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}
	return NewProductDTO(created), nil
}

// UpdateProduct applies the provided patch to an existing listing.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	record, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	if err := input.apply(record); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}
	return NewProductDTO(updated), nil
}

// DeleteProduct hides a listing from the storefront.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	return nil
}

func validateCreate(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", input.Category))
	}
	if !input.Unit.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid unit %q", input.Unit))
	}
	if !input.Price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.ExpiryDays < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "expiry_days cannot be negative")
	}
	return nil
}

func (in CreateProductInput) toModel() *models.Product {
	return &models.Product{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(in.Name),
		Description:    strings.TrimSpace(in.Description),
		Category:       in.Category,
		Unit:           in.Unit,
		Price:          in.Price,
		CompareAtPrice: in.CompareAtPrice,
		ImageURL:       strings.TrimSpace(in.ImageURL),
		Stock:          in.Stock,
		Brand:          strings.TrimSpace(in.Brand),
		ExpiryDays:     in.ExpiryDays,
		FatContent:     in.FatContent,
		Volume:         strings.TrimSpace(in.Volume),
		DietaryTags:    in.DietaryTags,
		IsFeatured:     in.IsFeatured,
		IsOrganic:      in.IsOrganic,
		IsActive:       in.IsActive,
	}
}

func (in UpdateProductInput) apply(record *models.Product) error {
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		record.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		record.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		if !in.Category.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", *in.Category))
		}
		record.Category = *in.Category
	}
	if in.Unit != nil {
		if !in.Unit.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid unit %q", *in.Unit))
		}
		record.Unit = *in.Unit
	}
	if in.Price != nil {
		if !in.Price.IsPositive() {
			return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		record.Price = *in.Price
	}
	if in.CompareAtPrice != nil {
		record.CompareAtPrice = in.CompareAtPrice
	}
	if in.ImageURL != nil {
		record.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		record.Stock = *in.Stock
	}
	if in.Brand != nil {
		record.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.ExpiryDays != nil {
		if *in.ExpiryDays < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "expiry_days cannot be negative")
		}
		record.ExpiryDays = *in.ExpiryDays
	}
	if in.FatContent != nil {
		record.FatContent = in.FatContent
	}
	if in.Volume != nil {
		record.Volume = strings.TrimSpace(*in.Volume)
	}
	if in.DietaryTags != nil {
		record.DietaryTags = in.DietaryTags
	}
	if in.IsFeatured != nil {
		record.IsFeatured = *in.IsFeatured
	}
	if in.IsOrganic != nil {
		record.IsOrganic = *in.IsOrganic
	}
	if in.IsActive != nil {
		record.IsActive = *in.IsActive
	}
	return nil
}
