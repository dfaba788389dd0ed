package chatbot

import "strings"

// Intent names double as metric labels.
const (
	IntentGreeting    = "greeting"
	IntentFarewell    = "farewell"
	IntentThanks      = "thanks"
	IntentProducts    = "products"
	IntentPrice       = "price"
	IntentShipping    = "shipping"
	IntentOrderStatus = "order_status"
	IntentCart        = "cart"
	IntentOrganic     = "organic"
	IntentHelp        = "help"
	IntentFallback    = "fallback"
)

// Action types steer how the widget renders a reply.
const (
	ActionText    = "text"
	ActionProduct = "product"
	ActionOrder   = "order"
	ActionCart    = "cart"
)

// intentRule maps trigger keywords to an intent. Rules are evaluated in
// order, so more specific intents come first.
type intentRule struct {
	intent   string
	keywords []string
}

var intentRules = []intentRule{
	{IntentOrderStatus, []string{"order status", "my order", "track", "delivery status", "where is my"}},
	{IntentCart, []string{"cart", "add to", "check out", "checkout"}},
	{IntentShipping, []string{"shipping", "deliver", "delivery", "ship", "postage", "fee"}},
	{IntentOrganic, []string{"organic", "grass-fed", "grass fed", "natural"}},
	{IntentPrice, []string{"price", "cost", "how much", "expensive", "cheap"}},
	{IntentProducts, []string{"milk", "cheese", "yogurt", "butter", "cream", "ice cream", "product", "stock", "available", "have any", "looking for", "buy"}},
	{IntentThanks, []string{"thank", "thanks", "appreciate"}},
	{IntentFarewell, []string{"bye", "goodbye", "see you", "later"}},
	{IntentGreeting, []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}},
	{IntentHelp, []string{"help", "what can you", "how do i", "how to"}},
}

// resolveIntent picks the first rule whose keyword appears in the message.
func resolveIntent(message string) string {
	normalized := " " + strings.ToLower(strings.TrimSpace(message)) + " "
	for _, rule := range intentRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(normalized, keyword) {
				return rule.intent
			}
		}
	}
	return IntentFallback
}

// defaultSuggestions are the quick-reply chips shown when no richer set applies.
var defaultSuggestions = []string{
	"What products do you have?",
	"Do you have organic milk?",
	"How much is shipping?",
	"Where is my order?",
}
