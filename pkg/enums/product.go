package enums

import "fmt"

// ProductCategory represents the canonical dairy categories supported by the catalog.
type ProductCategory string

const (
	ProductCategoryMilk     ProductCategory = "milk"
	ProductCategoryCheese   ProductCategory = "cheese"
	ProductCategoryYogurt   ProductCategory = "yogurt"
	ProductCategoryButter   ProductCategory = "butter"
	ProductCategoryCream    ProductCategory = "cream"
	ProductCategoryIceCream ProductCategory = "ice_cream"
	ProductCategoryOther    ProductCategory = "other"
)

var validProductCategories = []ProductCategory{
	ProductCategoryMilk,
	ProductCategoryCheese,
	ProductCategoryYogurt,
	ProductCategoryButter,
	ProductCategoryCream,
	ProductCategoryIceCream,
	ProductCategoryOther,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// ProductCategories returns every known category in declaration order.
func ProductCategories() []ProductCategory {
	out := make([]ProductCategory, len(validProductCategories))
	copy(out, validProductCategories)
	return out
}

// ProductUnit defines the available unit types for pricing.
type ProductUnit string

const (
	ProductUnitLiter ProductUnit = "liter"
	ProductUnitMl    ProductUnit = "ml"
	ProductUnitKg    ProductUnit = "kg"
	ProductUnitGram  ProductUnit = "g"
	ProductUnitPack  ProductUnit = "pack"
	ProductUnitPiece ProductUnit = "piece"
)

var validProductUnits = []ProductUnit{
	ProductUnitLiter,
	ProductUnitMl,
	ProductUnitKg,
	ProductUnitGram,
	ProductUnitPack,
	ProductUnitPiece,
}

// String implements fmt.Stringer.
func (u ProductUnit) String() string {
	return string(u)
}

// IsValid reports whether the value matches a known ProductUnit.
func (u ProductUnit) IsValid() bool {
	for _, candidate := range validProductUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseProductUnit converts raw input into a ProductUnit.
func ParseProductUnit(value string) (ProductUnit, error) {
	for _, candidate := range validProductUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}

// ProductSort enumerates the supported catalog sort orders.
type ProductSort string

const (
	ProductSortNewest    ProductSort = "newest"
	ProductSortPriceLow  ProductSort = "price-low"
	ProductSortPriceHigh ProductSort = "price-high"
	ProductSortRating    ProductSort = "rating"
	ProductSortName      ProductSort = "name"
)

var validProductSorts = []ProductSort{
	ProductSortNewest,
	ProductSortPriceLow,
	ProductSortPriceHigh,
	ProductSortRating,
	ProductSortName,
}

// IsValid reports whether the value matches a known ProductSort.
func (s ProductSort) IsValid() bool {
	for _, candidate := range validProductSorts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductSort converts raw input into a ProductSort, defaulting to newest.
func ParseProductSort(value string) (ProductSort, error) {
	if value == "" {
		return ProductSortNewest, nil
	}
	for _, candidate := range validProductSorts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product sort %q", value)
}
