package enums

import "testing"

func TestParseProductCategory(t *testing.T) {
	category, err := ParseProductCategory("ice_cream")
	if err != nil {
		t.Fatalf("ParseProductCategory failed: %v", err)
	}
	if category != ProductCategoryIceCream {
		t.Fatalf("got %q", category)
	}
	if _, err := ParseProductCategory("soda"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestProductCategoriesReturnsCopy(t *testing.T) {
	first := ProductCategories()
	first[0] = "tampered"
	if second := ProductCategories(); second[0] != ProductCategoryMilk {
		t.Fatalf("caller mutation leaked into the canonical list: %q", second[0])
	}
}

func TestParseProductUnit(t *testing.T) {
	unit, err := ParseProductUnit("pack")
	if err != nil {
		t.Fatalf("ParseProductUnit failed: %v", err)
	}
	if unit != ProductUnitPack {
		t.Fatalf("got %q", unit)
	}
	if _, err := ParseProductUnit("crate"); err == nil {
		t.Fatal("expected error for unknown unit")
	}
}

func TestParseProductSortDefaultsToNewest(t *testing.T) {
	sort, err := ParseProductSort("")
	if err != nil {
		t.Fatalf("ParseProductSort failed: %v", err)
	}
	if sort != ProductSortNewest {
		t.Fatalf("empty input must default to newest, got %q", sort)
	}

	if _, err := ParseProductSort("cheapest"); err == nil {
		t.Fatal("expected error for unknown sort")
	}

	sort, err = ParseProductSort("price-high")
	if err != nil {
		t.Fatalf("ParseProductSort failed: %v", err)
	}
	if sort != ProductSortPriceHigh {
		t.Fatalf("got %q", sort)
	}
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("admin")
	if err != nil {
		t.Fatalf("ParseUserRole failed: %v", err)
	}
	if role != UserRoleAdmin {
		t.Fatalf("got %q", role)
	}
	if _, err := ParseUserRole("superuser"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
