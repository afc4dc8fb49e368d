package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/attendance-ledger/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-ledger/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
)

// RequireRole only lets through callers whose token carries one of roles
func RequireRole(roles ...jwt.Role) func(http.Handler) http.Handler {
	allowed := make([]string, len(roles))
	for i, role := range roles {
		allowed[i] = string(role)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: requires one of '%s'", strings.Join(allowed, ", ")))
				return
			}

			role, _ := claims["role"].(string)
			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}

			response.Forbidden(w, fmt.Sprintf("Insufficient permissions: requires one of '%s', but role is '%s'", strings.Join(allowed, ", "), role))
		})
	}
}
