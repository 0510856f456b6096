package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"ecommerce-api/internal/domain"
)

func TestPaginate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		want  domain.PageRequest
	}{
		{query: "", want: domain.PageRequest{Page: 1, PerPage: 10}},
		{query: "page=3&limit=25", want: domain.PageRequest{Page: 3, PerPage: 25}},
		{query: "limit=5&perpage=7", want: domain.PageRequest{Page: 1, PerPage: 7}},
		{query: "perpage=0&limit=4", want: domain.PageRequest{Page: 1, PerPage: 4}},
		{query: "page=abc&limit=-2", want: domain.PageRequest{Page: 1, PerPage: 10}},
		{query: "limit=1000", want: domain.PageRequest{Page: 1, PerPage: 100}},
		{query: "page=4611686018427387904&limit=100", want: domain.PageRequest{Page: domain.MaxPage, PerPage: 100}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()

			var got domain.PageRequest
			h := Paginate(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = PageFromContext(r.Context())
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items?"+tt.query, nil))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestPaginate_SkipsNonGET(t *testing.T) {
	t.Parallel()

	var called bool
	h := Paginate(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		called = true
		require.Equal(t, domain.PageRequest{Page: 1, PerPage: 10}, PageFromContext(r.Context()))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/items?page=9", nil))
	require.True(t, called)
}
