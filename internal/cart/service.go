package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dairylicious/dairyshop-backend/pkg/db"
	"github.com/dairylicious/dairyshop-backend/pkg/db/models"
	pkgerrors "github.com/dairylicious/dairyshop-backend/pkg/errors"
)

const (
	// maxMutationRetries bounds how many times a mutation re-reads the cart
	// after losing an optimistic-lock race.
	maxMutationRetries = 3

	countCacheTTL = 30 * time.Second
)

// Service exposes the per-user cart operations.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
	CountItems(ctx context.Context, userID uuid.UUID) (int, error)
}

type productLoader interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type countCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartCountKey(userID string) string
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	products productLoader
	cache    countCache
}

// NewService constructs a cart service instance. The cache is optional; a nil
// cache falls back to counting from the database on every call.
func NewService(repo *Repository, dbClient *db.Client, products productLoader, cache countCache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		products: products,
		cache:    cache,
	}, nil
}

// GetCart loads (or lazily creates) the user's cart, refreshing any stale
// price snapshots against the live catalog.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Reads repair the snapshots in place: a catalog price change shows up
	// the next time the cart renders, never mid-checkout.
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.Product == nil || !item.Product.IsActive {
			continue
		}
		if item.UnitPrice.Equal(item.Product.Price) {
			continue
		}
		if err := s.repo.RefreshItemPrice(ctx, item.ID, item.Product.Price); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "refreshing cart price snapshot")
		}
		item.UnitPrice = item.Product.Price
	}

	return NewCartDTO(cart), nil
}

// AddItem merges quantity into an existing line or appends a new one. Stock
// is checked against the merged quantity but never decremented here.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	for attempt := 0; attempt < maxMutationRetries; attempt++ {
		cart, err := s.loadOrCreate(ctx, userID)
		if err != nil {
			return nil, err
		}

		product, err := s.loadProduct(ctx, productID)
		if err != nil {
			return nil, err
		}

		inCart := 0
		if existing := cart.ItemFor(productID); existing != nil {
			inCart = existing.Quantity
		}

		merged := inCart + quantity
		if merged > product.Stock {
			return nil, insufficientStock(product, quantity, inCart)
		}

		err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)
			if err := txRepo.BumpVersion(ctx, cart.ID, cart.Version); err != nil {
				return err
			}
			return txRepo.UpsertItem(ctx, &models.CartItem{
				ID:        uuid.New(),
				CartID:    cart.ID,
				ProductID: productID,
				Quantity:  merged,
				UnitPrice: product.Price,
			})
		})
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding cart item")
		}

		s.invalidateCount(ctx, userID)
		return s.GetCart(ctx, userID)
	}

	return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart was modified concurrently, please retry")
}

// UpdateItem replaces the line quantity. Zero removes the line, and both the
// removal and the zero update are idempotent.
func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartDTO, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	for attempt := 0; attempt < maxMutationRetries; attempt++ {
		cart, err := s.loadExisting(ctx, userID)
		if err != nil {
			return nil, err
		}
		if cart == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
		}

		existing := cart.ItemFor(productID)
		if existing == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
		}

		product, err := s.loadProduct(ctx, productID)
		if err != nil {
			return nil, err
		}

		if quantity > product.Stock {
			return nil, insufficientStock(product, quantity, existing.Quantity)
		}

		err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)
			if err := txRepo.BumpVersion(ctx, cart.ID, cart.Version); err != nil {
				return err
			}
			return txRepo.UpsertItem(ctx, &models.CartItem{
				ID:        uuid.New(),
				CartID:    cart.ID,
				ProductID: productID,
				Quantity:  quantity,
				UnitPrice: product.Price,
			})
		})
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating cart item")
		}

		s.invalidateCount(ctx, userID)
		return s.GetCart(ctx, userID)
	}

	return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart was modified concurrently, please retry")
}

// RemoveItem deletes the line when present. Removing an absent line is a
// no-op, and a user with no cart yet gets an empty cart back without one
// being persisted.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error) {
	for attempt := 0; attempt < maxMutationRetries; attempt++ {
		cart, err := s.loadExisting(ctx, userID)
		if err != nil {
			return nil, err
		}
		if cart == nil {
			return NewCartDTO(&models.Cart{UserID: userID}), nil
		}

		if cart.ItemFor(productID) == nil {
			return NewCartDTO(cart), nil
		}

		err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)
			if err := txRepo.BumpVersion(ctx, cart.ID, cart.Version); err != nil {
				return err
			}
			_, err := txRepo.DeleteItem(ctx, cart.ID, productID)
			return err
		})
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing cart item")
		}

		s.invalidateCount(ctx, userID)
		return s.GetCart(ctx, userID)
	}

	return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart was modified concurrently, please retry")
}

// ClearCart removes every line. Clearing an empty or absent cart succeeds
// without creating one.
func (s *service) ClearCart(ctx context.Context, userID uuid.UUID) error {
	for attempt := 0; attempt < maxMutationRetries; attempt++ {
		cart, err := s.loadExisting(ctx, userID)
		if err != nil {
			return err
		}

		if cart == nil || len(cart.Items) == 0 {
			return nil
		}

		err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			txRepo := s.repo.WithTx(tx)
			if err := txRepo.BumpVersion(ctx, cart.ID, cart.Version); err != nil {
				return err
			}
			return txRepo.ClearItems(ctx, cart.ID)
		})
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
		}

		s.invalidateCount(ctx, userID)
		return nil
	}

	return pkgerrors.New(pkgerrors.CodeConflict, "cart was modified concurrently, please retry")
}

// CountItems returns the badge count, served from cache when fresh.
func (s *service) CountItems(ctx context.Context, userID uuid.UUID) (int, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, s.cache.CartCountKey(userID.String())); err == nil {
			if count, convErr := strconv.Atoi(raw); convErr == nil {
				return count, nil
			}
		}
	}

	count, err := s.repo.CountItems(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting cart items")
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, s.cache.CartCountKey(userID.String()), strconv.Itoa(count), countCacheTTL)
	}
	return count, nil
}

func (s *service) loadOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	created, err := s.repo.CreateForUser(ctx, userID)
	if err != nil {
		// Another request may have created the cart in the meantime.
		if cart, findErr := s.repo.FindByUserID(ctx, userID); findErr == nil {
			return cart, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart")
	}
	return created, nil
}

// loadExisting returns the user's cart, or nil when none has been created.
// Only reads and adds are allowed to create a cart.
func (s *service) loadExisting(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	return cart, nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindActiveByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return product, nil
}

func (s *service) invalidateCount(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, s.cache.CartCountKey(userID.String()))
}

func insufficientStock(product *models.Product, requested, inCart int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("only %d of %q available", product.Stock, product.Name)).
		WithDetails(map[string]any{
			"product_id": product.ID,
			"available":  product.Stock,
			"requested":  requested,
			"in_cart":    inCart,
		})
}
