package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dairylicious/dairyshop-backend/pkg/logger"
)

const (
	requestIDHeader = "X-Request-Id"

	// Inbound ids longer than this are replaced rather than logged.
	maxRequestIDLength = 64
)

// RequestID reuses a caller-supplied X-Request-Id when it is short enough to
// log safely, mints a fresh one otherwise, and echoes it on the response so
// storefront errors can be matched to server logs.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if reqID == "" || len(reqID) > maxRequestIDLength {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
