package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dairylicious/dairyshop-backend/internal/cart"
	products "github.com/dairylicious/dairyshop-backend/internal/products"
	"github.com/dairylicious/dairyshop-backend/pkg/config"
	"github.com/dairylicious/dairyshop-backend/pkg/db"
	"github.com/dairylicious/dairyshop-backend/pkg/db/models"
	"github.com/dairylicious/dairyshop-backend/pkg/enums"
	pkgerrors "github.com/dairylicious/dairyshop-backend/pkg/errors"
	"github.com/dairylicious/dairyshop-backend/pkg/pagination"
	"github.com/dairylicious/dairyshop-backend/pkg/types"
)

const defaultPaymentMethod = "card"

// Service exposes checkout and order history operations.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*OrderDTO, error)
	ListOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*OrderListResult, error)
	GetOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
}

// CreateOrderInput holds the validated checkout payload.
type CreateOrderInput struct {
	ShippingAddress types.Address
	PaymentMethod   string
}

type cartInvalidator interface {
	Del(ctx context.Context, keys ...string) error
	CartCountKey(userID string) string
}

type service struct {
	repo        *Repository
	dbClient    *db.Client
	cartRepo    *cart.Repository
	productRepo *products.Repository
	checkoutCfg config.CheckoutConfig
	cache       cartInvalidator
}

// ServiceParams bundles the dependencies required to build an order service.
type ServiceParams struct {
	Repo           *Repository
	DBClient       *db.Client
	CartRepo       *cart.Repository
	ProductRepo    *products.Repository
	CheckoutConfig config.CheckoutConfig
	Cache          cartInvalidator
}

// NewService constructs an order service instance. The cache is optional.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.DBClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{
		repo:        params.Repo,
		dbClient:    params.DBClient,
		cartRepo:    params.CartRepo,
		productRepo: params.ProductRepo,
		checkoutCfg: params.CheckoutConfig,
		cache:       params.Cache,
	}, nil
}

// CreateOrder turns the user's cart into an immutable order. Stock is
// decremented here, inside the same transaction that snapshots the lines and
// empties the cart, so a failed checkout leaves everything untouched.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*OrderDTO, error) {
	if missing := input.ShippingAddress.Validate(); missing != "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("shipping address is missing %s", missing))
	}
	// Recorded for fulfillment; no gateway is charged.
	if input.PaymentMethod == "" {
		input.PaymentMethod = defaultPaymentMethod
	}

	var created *models.Order
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txCart := s.cartRepo.WithTx(tx)
		txOrders := s.repo.WithTx(tx)
		txProducts := s.productRepo.WithTx(tx)

		userCart, err := txCart.FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}
		if len(userCart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		subtotal := decimal.Zero
		items := make([]models.OrderItem, 0, len(userCart.Items))
		orderID := uuid.New()

		for i := range userCart.Items {
			line := &userCart.Items[i]
			product := line.Product
			if product == nil || !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation,
					"cart contains a product that is no longer available").
					WithDetails(map[string]any{"product_id": line.ProductID})
			}

			if err := txProducts.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// The guard lost to a concurrent checkout; report what
					// is on the shelf now, not the snapshot we loaded.
					available := product.Stock
					if fresh, readErr := txProducts.FindByID(ctx, line.ProductID); readErr == nil {
						available = fresh.Stock
					}
					return pkgerrors.New(pkgerrors.CodeInsufficientStock,
						fmt.Sprintf("only %d of %q available", available, product.Name)).
						WithDetails(map[string]any{
							"product_id": product.ID,
							"available":  available,
							"requested":  line.Quantity,
							"in_cart":    line.Quantity,
						})
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserving stock")
			}

			lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			subtotal = subtotal.Add(lineTotal)
			items = append(items, models.OrderItem{
				ID:          uuid.New(),
				OrderID:     orderID,
				ProductID:   product.ID,
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    line.Quantity,
				LineTotal:   lineTotal,
			})
		}

		tax := subtotal.Mul(s.checkoutCfg.TaxRateDecimal()).Round(2)
		shipping := s.shippingFor(subtotal)
		total := subtotal.Add(tax).Add(shipping)

		record := &models.Order{
			ID:              orderID,
			UserID:          userID,
			Status:          enums.OrderStatusPending,
			ShippingAddress: input.ShippingAddress,
			PaymentMethod:   input.PaymentMethod,
			Subtotal:        subtotal,
			Tax:             tax,
			ShippingFee:     shipping,
			Total:           total,
			Items:           items,
		}
		if _, err := txOrders.Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}

		if err := txCart.BumpVersion(ctx, userCart.ID, userCart.Version); err != nil {
			if errors.Is(err, cart.ErrVersionConflict) {
				return pkgerrors.New(pkgerrors.CodeConflict, "cart was modified during checkout, please retry")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking cart")
		}
		if err := txCart.ClearItems(ctx, userCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clearing cart")
		}

		created = record
		return nil
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "placing order")
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, s.cache.CartCountKey(userID.String()))
	}

	return NewOrderDTO(created), nil
}

// ListOrders returns one page of the user's order history.
func (s *service) ListOrders(ctx context.Context, userID uuid.UUID, page, limit int) (*OrderListResult, error) {
	params := pagination.Params{Page: page, Limit: limit}.Normalize()
	orders, total, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return &OrderListResult{
		Orders:     NewOrderDTOs(orders),
		Pagination: pagination.BuildMeta(params, total),
	}, nil
}

// GetOrder loads one order, scoped to its owner.
func (s *service) GetOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*OrderDTO, error) {
	record, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if record.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return NewOrderDTO(record), nil
}

// UpdateStatus moves the order through its lifecycle. Admin only.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", status))
	}

	record, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}

	if !record.Status.CanTransitionTo(status) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("cannot move order from %s to %s", record.Status, status))
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
	}
	record.Status = status
	return NewOrderDTO(record), nil
}

func (s *service) shippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(s.checkoutCfg.FreeShippingMinimumDecimal()) {
		return decimal.Zero
	}
	return s.checkoutCfg.ShippingFeeDecimal()
}
