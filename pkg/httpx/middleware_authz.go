package httpx

import (
	"net/http"
)

// RequireRole admits the request only when the authenticated role is in the
// allowed set. Anonymous requests and unknown roles are rejected; the gate
// fails closed.
func RequireRole(allowed ...string) Middleware {
	want := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		want[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromCtx(r.Context())
			if role == "" {
				WriteJSON(w, http.StatusUnauthorized, ErrorBody{
					Success: false,
					Message: "Authentication required.",
				})
				return
			}

			if _, ok := want[role]; !ok {
				WriteJSON(w, http.StatusForbidden, ErrorBody{
					Success: false,
					Message: "Access denied. Insufficient privileges.",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
