package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dairylicious/dairyshop-backend/api/responses"
	"github.com/dairylicious/dairyshop-backend/api/validators"
	products "github.com/dairylicious/dairyshop-backend/internal/products"
	"github.com/dairylicious/dairyshop-backend/pkg/enums"
	pkgerrors "github.com/dairylicious/dairyshop-backend/pkg/errors"
	"github.com/dairylicious/dairyshop-backend/pkg/logger"
	"github.com/dairylicious/dairyshop-backend/pkg/pagination"
)

// ProductsList serves the filtered, sorted catalog page.
func ProductsList(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		input, err := parseListProductsInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func parseListProductsInput(r *http.Request) (products.ListProductsInput, error) {
	var input products.ListProductsInput

	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return input, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return input, err
	}
	input.Page = page
	input.Limit = limit

	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		category, err := enums.ParseProductCategory(raw)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}

	if input.Featured, err = validators.ParseQueryBool(r, "featured"); err != nil {
		return input, err
	}
	if input.Organic, err = validators.ParseQueryBool(r, "organic"); err != nil {
		return input, err
	}
	if input.MinPrice, err = validators.ParseQueryDecimal(r, "min_price"); err != nil {
		return input, err
	}
	if input.MaxPrice, err = validators.ParseQueryDecimal(r, "max_price"); err != nil {
		return input, err
	}
	if input.MinPrice != nil && input.MaxPrice != nil && input.MaxPrice.LessThan(*input.MinPrice) {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "max_price must not be below min_price")
	}

	input.Search = strings.TrimSpace(r.URL.Query().Get("search"))

	sort, err := enums.ParseProductSort(r.URL.Query().Get("sort"))
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort")
	}
	input.Sort = sort

	return input, nil
}

// ProductsSearch serves the free-text catalog search, best-rated first.
func ProductsSearch(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SearchProducts(r.Context(), r.URL.Query().Get("q"), page, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ProductsByCategory serves one category shelf, best-rated first.
func ProductsByCategory(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		category, err := enums.ParseProductCategory(chi.URLParam(r, "category"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByCategory(r.Context(), category, page, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ProductGet serves one catalog product by id.
func ProductGet(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// ProductsFeatured serves the featured shelf for the storefront home page.
func ProductsFeatured(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListFeatured(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, records)
	}
}

// ProductCategories serves the category list with live product counts.
func ProductCategories(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		records, err := svc.ListCategories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, records)
	}
}

type createProductRequest struct {
	Name           string           `json:"name" validate:"required,max=200"`
	Description    string           `json:"description"`
	Category       string           `json:"category" validate:"required"`
	Unit           string           `json:"unit" validate:"required"`
	Price          decimal.Decimal  `json:"price" validate:"required"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	ImageURL       string           `json:"image_url"`
	Stock          int              `json:"stock" validate:"min=0"`
	Brand          string           `json:"brand"`
	ExpiryDays     int              `json:"expiry_days" validate:"min=0"`
	FatContent     *float64         `json:"fat_content" validate:"omitempty,min=0,max=100"`
	Volume         string           `json:"volume"`
	DietaryTags    []string         `json:"dietary_tags"`
	IsFeatured     bool             `json:"is_featured"`
	IsOrganic      bool             `json:"is_organic"`
	IsActive       *bool            `json:"is_active"`
}

func (r createProductRequest) toInput() (products.CreateProductInput, error) {
	category, err := enums.ParseProductCategory(r.Category)
	if err != nil {
		return products.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	unit, err := enums.ParseProductUnit(r.Unit)
	if err != nil {
		return products.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit")
	}

	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}

	return products.CreateProductInput{
		Name:           r.Name,
		Description:    r.Description,
		Category:       category,
		Unit:           unit,
		Price:          r.Price,
		CompareAtPrice: r.CompareAtPrice,
		ImageURL:       r.ImageURL,
		Stock:          r.Stock,
		Brand:          r.Brand,
		ExpiryDays:     r.ExpiryDays,
		FatContent:     r.FatContent,
		Volume:         r.Volume,
		DietaryTags:    r.DietaryTags,
		IsFeatured:     r.IsFeatured,
		IsOrganic:      r.IsOrganic,
		IsActive:       active,
	}, nil
}

// AdminCreateProduct handles catalog creation for admin operators.
func AdminCreateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.CreateProduct(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

type updateProductRequest struct {
	Name           *string          `json:"name" validate:"omitempty,max=200"`
	Description    *string          `json:"description"`
	Category       *string          `json:"category"`
	Unit           *string          `json:"unit"`
	Price          *decimal.Decimal `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	ImageURL       *string          `json:"image_url"`
	Stock          *int             `json:"stock" validate:"omitempty,min=0"`
	Brand          *string          `json:"brand"`
	ExpiryDays     *int             `json:"expiry_days" validate:"omitempty,min=0"`
	FatContent     *float64         `json:"fat_content" validate:"omitempty,min=0,max=100"`
	Volume         *string          `json:"volume"`
	DietaryTags    []string         `json:"dietary_tags"`
	IsFeatured     *bool            `json:"is_featured"`
	IsOrganic      *bool            `json:"is_organic"`
	IsActive       *bool            `json:"is_active"`
}

func (r updateProductRequest) toInput() (products.UpdateProductInput, error) {
	input := products.UpdateProductInput{
		Name:           r.Name,
		Description:    r.Description,
		Price:          r.Price,
		CompareAtPrice: r.CompareAtPrice,
		ImageURL:       r.ImageURL,
		Stock:          r.Stock,
		Brand:          r.Brand,
		ExpiryDays:     r.ExpiryDays,
		FatContent:     r.FatContent,
		Volume:         r.Volume,
		DietaryTags:    r.DietaryTags,
		IsFeatured:     r.IsFeatured,
		IsOrganic:      r.IsOrganic,
		IsActive:       r.IsActive,
	}

	if r.Category != nil {
		category, err := enums.ParseProductCategory(*r.Category)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		input.Category = &category
	}
	if r.Unit != nil {
		unit, err := enums.ParseProductUnit(*r.Unit)
		if err != nil {
			return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit")
		}
		input.Unit = &unit
	}

	return input, nil
}

// AdminUpdateProduct patches catalog fields for admin operators.
func AdminUpdateProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.UpdateProduct(r.Context(), productID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// AdminDeleteProduct retires a product from the storefront.
func AdminDeleteProduct(svc products.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func parseUUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	value, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid identifier").WithDetails(map[string]any{"field": name})
	}
	return value, nil
}
