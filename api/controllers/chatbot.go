package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dairylicious/dairyshop-backend/api/middleware"
	"github.com/dairylicious/dairyshop-backend/api/responses"
	"github.com/dairylicious/dairyshop-backend/api/validators"
	chatsvc "github.com/dairylicious/dairyshop-backend/internal/chatbot"
	pkgerrors "github.com/dairylicious/dairyshop-backend/pkg/errors"
	"github.com/dairylicious/dairyshop-backend/pkg/logger"
)

// ChatbotMessage answers one storefront chat message. Signed-in callers get
// personalized replies for order status questions.
func ChatbotMessage(svc chatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chatbot service unavailable"))
			return
		}

		var payload chatsvc.ChatRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var userID *uuid.UUID
		if raw := middleware.UserIDFromContext(r.Context()); raw != "" {
			if parsed, err := uuid.Parse(raw); err == nil {
				userID = &parsed
			}
		}

		result, err := svc.Handle(r.Context(), userID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ChatbotSuggestions returns the quick-reply prompts shown before the first
// message.
func ChatbotSuggestions(svc chatsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chatbot service unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string][]string{"suggestions": svc.Suggestions()})
	}
}
