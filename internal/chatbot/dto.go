package chatbot

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChatRequest is one inbound message from the storefront widget. The session
// id groups a conversation; the widget may omit it on the first message.
type ChatRequest struct {
	Message   string `json:"message" validate:"required,max=500"`
	SessionID string `json:"session_id" validate:"omitempty,max=100"`
}

// ChatResponse carries the scripted reply plus optional product hits. The
// action type tells the widget how to render: plain text, a product carousel,
// an order summary, or a cart prompt.
type ChatResponse struct {
	SessionID   string          `json:"session_id"`
	Reply       string          `json:"reply"`
	Intent      string          `json:"intent"`
	ActionType  string          `json:"action_type"`
	Products    []ProductHitDTO `json:"products,omitempty"`
	Suggestions []string        `json:"suggestions"`
}

// ProductHitDTO is a compact catalog entry embedded in chat replies.
type ProductHitDTO struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Unit    string          `json:"unit"`
	InStock bool            `json:"in_stock"`
}
