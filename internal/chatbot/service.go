package chatbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	product "github.com/dairylicious/dairyshop-backend/internal/products"
	"github.com/dairylicious/dairyshop-backend/pkg/config"
	"github.com/dairylicious/dairyshop-backend/pkg/db/models"
	"github.com/dairylicious/dairyshop-backend/pkg/enums"
	pkgerrors "github.com/dairylicious/dairyshop-backend/pkg/errors"
	"github.com/dairylicious/dairyshop-backend/pkg/metrics"
	"github.com/dairylicious/dairyshop-backend/pkg/pagination"
)

const productHitLimit = 3

// Service answers storefront chat messages with scripted replies backed by
// live catalog lookups.
type Service interface {
	Handle(ctx context.Context, userID *uuid.UUID, req ChatRequest) (*ChatResponse, error)
	Suggestions() []string
}

type productSearcher interface {
	List(ctx context.Context, filter product.ListFilter, params pagination.Params) ([]models.Product, int64, error)
}

type orderLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, int64, error)
}

type service struct {
	products    productSearcher
	orders      orderLister
	checkoutCfg config.CheckoutConfig
	metrics     *metrics.ChatbotMetrics
}

// ServiceParams bundles the dependencies required to build a chatbot service.
type ServiceParams struct {
	Products       productSearcher
	Orders         orderLister
	CheckoutConfig config.CheckoutConfig
	Metrics        *metrics.ChatbotMetrics
}

// NewService constructs the chatbot service. Metrics may be nil.
func NewService(params ServiceParams) (Service, error) {
	if params.Products == nil {
		return nil, fmt.Errorf("product searcher required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order lister required")
	}
	return &service{
		products:    params.Products,
		orders:      params.Orders,
		checkoutCfg: params.CheckoutConfig,
		metrics:     params.Metrics,
	}, nil
}

// Handle resolves the message to an intent and builds the reply.
func (s *service) Handle(ctx context.Context, userID *uuid.UUID, req ChatRequest) (*ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	intent := resolveIntent(message)
	s.metrics.IncIntent(intent)

	resp := &ChatResponse{
		SessionID:   sessionID,
		Intent:      intent,
		ActionType:  ActionText,
		Suggestions: defaultSuggestions,
	}

	switch intent {
	case IntentGreeting:
		resp.Reply = "Hi there! Welcome to Dairy Licious. Ask me about our products, prices, or shipping."

	case IntentFarewell:
		resp.Reply = "Thanks for stopping by! Come back whenever you need fresh dairy."

	case IntentThanks:
		resp.Reply = "You're welcome! Anything else I can help with?"

	case IntentHelp:
		resp.Reply = "I can look up products, check prices and stock, explain shipping, and check your latest order. Try one of the suggestions below."

	case IntentShipping:
		resp.Reply = fmt.Sprintf(
			"Shipping is $%s per order, and free once your cart reaches $%s.",
			s.checkoutCfg.ShippingFeeDecimal().StringFixed(2),
			s.checkoutCfg.FreeShippingMinimumDecimal().StringFixed(2),
		)

	case IntentOrganic:
		return s.answerProducts(ctx, resp, product.ListFilter{Organic: boolPtr(true)},
			"Here are some of our organic picks:",
			"We don't have organic products in stock right now, but new stock arrives weekly.")

	case IntentProducts, IntentPrice:
		filter := filterFromMessage(message)
		return s.answerProducts(ctx, resp, filter,
			"Here's what I found:",
			"I couldn't find anything matching that. Try a category like milk, cheese, or yogurt.")

	case IntentCart:
		resp.ActionType = ActionCart
		resp.Reply = "I can help with your cart! Add items from any product page, then tap the cart icon to review or check out."

	case IntentOrderStatus:
		resp.ActionType = ActionOrder
		return s.answerOrderStatus(ctx, resp, userID)

	default:
		resp.Reply = "Sorry, I didn't catch that. I can help with products, prices, shipping, and order status."
	}

	return resp, nil
}

// Suggestions returns the canned quick-reply prompts.
func (s *service) Suggestions() []string {
	out := make([]string, len(defaultSuggestions))
	copy(out, defaultSuggestions)
	return out
}

func (s *service) answerProducts(ctx context.Context, resp *ChatResponse, filter product.ListFilter, foundMsg, emptyMsg string) (*ChatResponse, error) {
	filter.Sort = enums.ProductSortRating
	hits, _, err := s.products.List(ctx, filter, pagination.Params{Page: 1, Limit: productHitLimit})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching catalog")
	}

	if len(hits) == 0 {
		resp.Reply = emptyMsg
		return resp, nil
	}

	resp.Reply = foundMsg
	resp.ActionType = ActionProduct
	resp.Products = make([]ProductHitDTO, 0, len(hits))
	for i := range hits {
		hit := &hits[i]
		resp.Products = append(resp.Products, ProductHitDTO{
			ID:      hit.ID,
			Name:    hit.Name,
			Price:   hit.Price,
			Unit:    string(hit.Unit),
			InStock: hit.Stock > 0,
		})
	}
	return resp, nil
}

func (s *service) answerOrderStatus(ctx context.Context, resp *ChatResponse, userID *uuid.UUID) (*ChatResponse, error) {
	if userID == nil {
		resp.Reply = "Please sign in so I can look up your orders."
		return resp, nil
	}

	orders, _, err := s.orders.ListByUser(ctx, *userID, pagination.Params{Page: 1, Limit: 1})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading orders")
	}
	if len(orders) == 0 {
		resp.Reply = "You don't have any orders yet. Once you check out, I can track them for you."
		return resp, nil
	}

	latest := &orders[0]
	resp.Reply = fmt.Sprintf(
		"Your latest order from %s is %s, with a total of $%s.",
		latest.CreatedAt.Format("Jan 2"),
		latest.Status,
		latest.Total.StringFixed(2),
	)
	return resp, nil
}

// filterFromMessage scans for a category mention so "do you have cheese"
// narrows the lookup, falling back to a free-text search on the message.
func filterFromMessage(message string) product.ListFilter {
	normalized := strings.ToLower(message)
	var match *enums.ProductCategory
	matchLen := 0
	for _, category := range enums.ProductCategories() {
		keyword := strings.ReplaceAll(string(category), "_", " ")
		// Longest keyword wins so "ice cream" beats "cream".
		if strings.Contains(normalized, keyword) && len(keyword) > matchLen {
			c := category
			match = &c
			matchLen = len(keyword)
		}
	}
	if match != nil {
		return product.ListFilter{Category: match}
	}
	return product.ListFilter{Search: searchTerm(normalized)}
}

// searchTerm strips filler words so the catalog query keys on the nouns.
func searchTerm(message string) string {
	fillers := map[string]struct{}{
		"do": {}, "you": {}, "have": {}, "any": {}, "i": {}, "am": {}, "is": {},
		"the": {}, "a": {}, "an": {}, "for": {}, "what": {}, "much": {}, "how": {},
		"price": {}, "cost": {}, "of": {}, "looking": {}, "want": {}, "to": {}, "buy": {},
		"in": {}, "stock": {}, "available": {}, "products": {}, "product": {},
	}
	words := strings.FieldsFunc(message, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	kept := make([]string, 0, len(words))
	for _, word := range words {
		if _, skip := fillers[word]; !skip {
			kept = append(kept, word)
		}
	}
	return strings.Join(kept, " ")
}

func boolPtr(v bool) *bool {
	return &v
}
