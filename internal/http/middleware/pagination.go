package middleware

import (
	"context"
	"net/http"
	"strconv"

	"ecommerce-api/internal/domain"
)

type pageKey struct{}

// Paginate parses page, limit and perpage on GET requests and stores the
// normalised domain.PageRequest on the context. Bad values fall back to defaults.
func Paginate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		q := r.URL.Query()
		p := domain.PageRequest{
			Page:    positiveInt(q.Get("page"), domain.DefaultPage),
			PerPage: positiveInt(q.Get("limit"), domain.DefaultPerPage),
		}
		if pp := positiveInt(q.Get("perpage"), 0); pp > 0 {
			p.PerPage = pp
		}
		ctx := context.WithValue(r.Context(), pageKey{}, p.Normalize())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PageFromContext returns the request page, or the defaults when Paginate did not run.
func PageFromContext(ctx context.Context) domain.PageRequest {
	if p, ok := ctx.Value(pageKey{}).(domain.PageRequest); ok {
		return p
	}
	return domain.PageRequest{}.Normalize()
}

func positiveInt(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
