package cart

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	products "github.com/dairylicious/dairyshop-backend/internal/products"
	"github.com/dairylicious/dairyshop-backend/pkg/config"
	"github.com/dairylicious/dairyshop-backend/pkg/db"
	"github.com/dairylicious/dairyshop-backend/pkg/db/models"
	"github.com/dairylicious/dairyshop-backend/pkg/enums"
	pkgerrors "github.com/dairylicious/dairyshop-backend/pkg/errors"
	"github.com/dairylicious/dairyshop-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func openTestClient(t *testing.T) *db.Client {
	t.Helper()

	logg := testLogger()
	client, err := db.New(context.Background(), config.DBConfig{
		DSN: filepath.Join(t.TempDir(), "cart.db"),
	}, true, logg)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(&models.Product{}, &models.Cart{}, &models.CartItem{}); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return client
}

func newTestService(t *testing.T, client *db.Client, cache countCache) Service {
	t.Helper()

	svc, err := NewService(NewRepository(client.DB()), client, products.NewRepository(client.DB()), cache)
	if err != nil {
		t.Fatalf("failed to build cart service: %v", err)
	}
	return svc
}

func seedProduct(t *testing.T, client *db.Client, stock int, price string) *models.Product {
	t.Helper()

	record := &models.Product{
		ID:       uuid.New(),
		Name:     "Fresh Whole Milk",
		Category: enums.ProductCategoryMilk,
		Unit:     enums.ProductUnitLiter,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
	if err := client.DB().Create(record).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return record
}

func TestAddItemMergesQuantities(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)
	userID := uuid.New()
	product := seedProduct(t, client, 5, "3.49")

	if _, err := svc.AddItem(context.Background(), userID, product.ID, 3); err != nil {
		t.Fatalf("unexpected error on first add: %v", err)
	}
	cart, err := svc.AddItem(context.Background(), userID, product.ID, 2)
	if err != nil {
		t.Fatalf("unexpected error on merge: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", cart.Items[0].Quantity)
	}
	if cart.TotalQuantity != 5 {
		t.Fatalf("expected total quantity 5, got %d", cart.TotalQuantity)
	}
	if !cart.Subtotal.Equal(decimal.RequireFromString("17.45")) {
		t.Fatalf("unexpected subtotal: %s", cart.Subtotal)
	}
}

func TestAddItemRejectsMergedQuantityBeyondStock(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)
	userID := uuid.New()
	product := seedProduct(t, client, 5, "3.49")

	if _, err := svc.AddItem(context.Background(), userID, product.ID, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.AddItem(context.Background(), userID, product.ID, 2)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}

	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected structured details, got %T", typed.Details())
	}
	if details["available"] != 5 || details["requested"] != 2 || details["in_cart"] != 4 {
		t.Fatalf("unexpected details: %+v", details)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)

	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New(), 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddItemInactiveProduct(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)
	product := seedProduct(t, client, 5, "3.49")
	if err := client.DB().Model(&models.Product{}).Where("id = ?", product.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to deactivate product: %v", err)
	}

	_, err := svc.AddItem(context.Background(), uuid.New(), product.ID, 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for inactive product, got %v", err)
	}
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)

	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New(), 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateItemSetsAbsoluteQuantity(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)
	userID := uuid.New()
	product := seedProduct(t, client, 10, "4.29")

	if _, err := svc.AddItem(context.Background(), userID, product.ID, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cart, err := svc.UpdateItem(context.Background(), userID, product.ID, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.Items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", cart.Items[0].Quantity)
	}
}

func TestUpdateItemZeroRemovesLine(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)
	userID := uuid.New()
	product := seedProduct(t, client, 10, "4.29")

	if _, err := svc.AddItem(context.Background(), userID, product.ID, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cart, err := svc.UpdateItem(context.Background(), userID, product.ID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Items))
	}
}

func TestUpdateItemAbsentLine(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)
	product := seedProduct(t, client, 10, "4.29")

	_, err := svc.UpdateItem(context.Background(), uuid.New(), product.ID, 3)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for absent line, got %v", err)
	}
}

func TestUpdateItemBeyondStock(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)
	userID := uuid.New()
	product := seedProduct(t, client, 5, "4.29")

	if _, err := svc.AddItem(context.Background(), userID, product.ID, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.UpdateItem(context.Background(), userID, product.ID, 6)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)
	userID := uuid.New()
	product := seedProduct(t, client, 10, "4.29")

	if _, err := svc.AddItem(context.Background(), userID, product.ID, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cart, err := svc.RemoveItem(context.Background(), userID, product.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Items))
	}

	// Second remove of the same line is a no-op.
	cart, err = svc.RemoveItem(context.Background(), userID, product.ID)
	if err != nil {
		t.Fatalf("unexpected error on repeat remove: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Items))
	}
}

func TestClearCart(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)
	userID := uuid.New()
	milk := seedProduct(t, client, 10, "3.49")
	cheese := seedProduct(t, client, 10, "12.99")

	if _, err := svc.AddItem(context.Background(), userID, milk.ID, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddItem(context.Background(), userID, cheese.ID, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.ClearCart(context.Background(), userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart, err := svc.GetCart(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Items))
	}

	// Clearing an already empty cart succeeds.
	if err := svc.ClearCart(context.Background(), userID); err != nil {
		t.Fatalf("unexpected error on repeat clear: %v", err)
	}
}

func TestGetCartRefreshesStalePriceSnapshot(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)
	userID := uuid.New()
	product := seedProduct(t, client, 10, "3.49")

	if _, err := svc.AddItem(context.Background(), userID, product.ID, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newPrice := decimal.RequireFromString("3.99")
	if err := client.DB().Model(&models.Product{}).Where("id = ?", product.ID).Update("price", newPrice).Error; err != nil {
		t.Fatalf("failed to reprice product: %v", err)
	}

	cart, err := svc.GetCart(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cart.Items[0].UnitPrice.Equal(newPrice) {
		t.Fatalf("expected refreshed price %s, got %s", newPrice, cart.Items[0].UnitPrice)
	}
	if !cart.Subtotal.Equal(decimal.RequireFromString("7.98")) {
		t.Fatalf("unexpected subtotal after refresh: %s", cart.Subtotal)
	}
}

func TestBumpVersionConflict(t *testing.T) {
	client := openTestClient(t)
	repo := NewRepository(client.DB())
	userID := uuid.New()

	cart, err := repo.CreateForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, err := repo.FindByUserID(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := repo.BumpVersion(context.Background(), cart.ID, stored.Version+5); err != ErrVersionConflict {
		t.Fatalf("expected version conflict, got %v", err)
	}
	if err := repo.BumpVersion(context.Background(), cart.ID, stored.Version); err != nil {
		t.Fatalf("expected bump to land, got %v", err)
	}
}

type fakeCountCache struct {
	values map[string]string
	dels   int
}

func newFakeCountCache() *fakeCountCache {
	return &fakeCountCache{values: map[string]string{}}
}

func (f *fakeCountCache) Get(_ context.Context, key string) (string, error) {
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", context.Canceled
}

func (f *fakeCountCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.values[key] = value.(string)
	return nil
}

func (f *fakeCountCache) Del(_ context.Context, keys ...string) error {
	f.dels++
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeCountCache) CartCountKey(userID string) string {
	return "test:cart:count:" + userID
}

func TestCountItemsServedFromCache(t *testing.T) {
	client := openTestClient(t)
	cache := newFakeCountCache()
	svc := newTestService(t, client, cache)
	userID := uuid.New()

	cache.values[cache.CartCountKey(userID.String())] = "7"

	count, err := svc.CountItems(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected cached count 7, got %d", count)
	}
}

func TestCountItemsFallsBackAndInvalidates(t *testing.T) {
	client := openTestClient(t)
	cache := newFakeCountCache()
	svc := newTestService(t, client, cache)
	userID := uuid.New()
	product := seedProduct(t, client, 10, "3.49")

	if _, err := svc.AddItem(context.Background(), userID, product.ID, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.dels == 0 {
		t.Fatalf("expected mutation to invalidate the cached count")
	}

	count, err := svc.CountItems(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}
	if cache.values[cache.CartCountKey(userID.String())] != "3" {
		t.Fatalf("expected count to be written back to the cache")
	}
}

func TestCartStockBoundaryLifecycle(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)
	userID := uuid.New()
	product := seedProduct(t, client, 5, "3.49")

	if _, err := svc.AddItem(context.Background(), userID, product.ID, 3); err != nil {
		t.Fatalf("unexpected error adding 3 of 5: %v", err)
	}

	// A second add of 3 would merge to 6 against stock 5.
	_, err := svc.AddItem(context.Background(), userID, product.ID, 3)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock error, got %v", err)
	}

	cart, err := svc.GetCart(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error loading cart: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("failed add must leave the cart untouched, got %+v", cart.Items)
	}

	// Updating to exactly the stock level is allowed.
	cart, err = svc.UpdateItem(context.Background(), userID, product.ID, 5)
	if err != nil {
		t.Fatalf("unexpected error updating to stock limit: %v", err)
	}
	if cart.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", cart.Items[0].Quantity)
	}

	cart, err = svc.UpdateItem(context.Background(), userID, product.ID, 0)
	if err != nil {
		t.Fatalf("unexpected error updating to zero: %v", err)
	}
	if len(cart.Items) != 0 || cart.TotalQuantity != 0 {
		t.Fatalf("expected empty cart after zero update, got %+v", cart)
	}
}

func TestUpdateItemRejectsNegativeQuantity(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)

	_, err := svc.UpdateItem(context.Background(), uuid.New(), uuid.New(), -1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCountItemsUntouchedUserCreatesNoCart(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)
	userID := uuid.New()

	count, err := svc.CountItems(context.Background(), userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected count 0, got %d", count)
	}

	var carts int64
	if err := client.DB().Model(&models.Cart{}).Where("user_id = ?", userID).Count(&carts).Error; err != nil {
		t.Fatalf("failed to count carts: %v", err)
	}
	if carts != 0 {
		t.Fatalf("counting must not persist a cart, found %d", carts)
	}
}

func TestRemoveItemWithoutCartCreatesNone(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)
	userID := uuid.New()

	cart, err := svc.RemoveItem(context.Background(), userID, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %+v", cart.Items)
	}

	var carts int64
	if err := client.DB().Model(&models.Cart{}).Where("user_id = ?", userID).Count(&carts).Error; err != nil {
		t.Fatalf("failed to count carts: %v", err)
	}
	if carts != 0 {
		t.Fatalf("removal must not persist a cart, found %d", carts)
	}
}

func TestUpdateItemWithoutCartCreatesNone(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)
	userID := uuid.New()
	product := seedProduct(t, client, 5, "3.49")

	_, err := svc.UpdateItem(context.Background(), userID, product.ID, 2)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}

	var carts int64
	if err := client.DB().Model(&models.Cart{}).Where("user_id = ?", userID).Count(&carts).Error; err != nil {
		t.Fatalf("failed to count carts: %v", err)
	}
	if carts != 0 {
		t.Fatalf("update must not persist a cart, found %d", carts)
	}
}

func TestClearCartWithoutCartCreatesNone(t *testing.T) {
	client := openTestClient(t)
	svc := newTestService(t, client, nil)
	userID := uuid.New()

	if err := svc.ClearCart(context.Background(), userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var carts int64
	if err := client.DB().Model(&models.Cart{}).Where("user_id = ?", userID).Count(&carts).Error; err != nil {
		t.Fatalf("failed to count carts: %v", err)
	}
	if carts != 0 {
		t.Fatalf("clearing must not persist a cart, found %d", carts)
	}
}
