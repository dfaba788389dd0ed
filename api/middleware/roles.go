package middleware

import (
	"fmt"
	"net/http"

	"github.com/dairylicious/dairyshop-backend/api/responses"
	pkgerrors "github.com/dairylicious/dairyshop-backend/pkg/errors"
	"github.com/dairylicious/dairyshop-backend/pkg/logger"
)

// RequireRole gates a subtree to sessions carrying the given role. It is only
// meaningful behind Auth, which stashes the verified role on the context;
// without it every request is refused.
func RequireRole(role string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != role {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("%s access required", role)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
