package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dairylicious/dairyshop-backend/pkg/db/models"
	"github.com/dairylicious/dairyshop-backend/pkg/enums"
	"github.com/dairylicious/dairyshop-backend/pkg/pagination"
)

// ListFilter narrows the catalog query. Nil pointers mean "no constraint".
type ListFilter struct {
	Category *enums.ProductCategory
	Featured *bool
	Organic  *bool
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Search   string
	Sort     enums.ProductSort
}

// Repository wires together product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product regardless of active state.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindActiveByID loads the product only when it is visible to customers.
func (r *Repository) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ? AND is_active", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves the full product row.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Deactivate hides the product from the storefront without destroying rows
// referenced by order history.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStock atomically reduces stock, failing when fewer than qty units
// remain. Returns gorm.ErrRecordNotFound when the guard did not match.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns one page of visible products plus the total row count for the filter.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Product, int64, error) {
	params = params.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("is_active")
	query = applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	if err := query.
		Order(orderClause(filter.Sort)).
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// ListFeatured returns up to limit featured products.
func (r *Repository) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("is_active AND is_featured").
		Order("rating DESC, created_at DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// CountByCategory aggregates visible products per category.
func (r *Repository) CountByCategory(ctx context.Context) (map[enums.ProductCategory]int64, error) {
	type row struct {
		Category enums.ProductCategory
		Count    int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("category, COUNT(*) AS count").
		Where("is_active").
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[enums.ProductCategory]int64, len(rows))
	for _, r := range rows {
		counts[r.Category] = r.Count
	}
	return counts, nil
}

func applyFilter(query *gorm.DB, filter ListFilter) *gorm.DB {
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}
	if filter.Organic != nil {
		query = query.Where("is_organic = ?", *filter.Organic)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(category) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	return query
}

func orderClause(sort enums.ProductSort) string {
	switch sort {
	case enums.ProductSortPriceLow:
		return "price ASC, id ASC"
	case enums.ProductSortPriceHigh:
		return "price DESC, id ASC"
	case enums.ProductSortRating:
		return "rating DESC, review_count DESC, id ASC"
	case enums.ProductSortName:
		return "name ASC, id ASC"
	default:
		return "created_at DESC, id ASC"
	}
}
