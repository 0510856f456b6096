package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-api/internal/apperr"
	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/http/handlers"
)

type stubCouponUsecase struct {
	listFn   func(ctx context.Context, f domain.CouponFilter, p domain.PageRequest) (domain.Page[domain.Coupon], error)
	getFn    func(ctx context.Context, id int64) (*domain.Coupon, error)
	createFn func(ctx context.Context, c *domain.Coupon) (*domain.Coupon, error)
	updateFn func(ctx context.Context, u domain.PartialCouponUpdate) (*domain.Coupon, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (s *stubCouponUsecase) List(ctx context.Context, f domain.CouponFilter, p domain.PageRequest) (domain.Page[domain.Coupon], error) {
	return s.listFn(ctx, f, p)
}

func (s *stubCouponUsecase) Get(ctx context.Context, id int64) (*domain.Coupon, error) {
	return s.getFn(ctx, id)
}

func (s *stubCouponUsecase) Create(ctx context.Context, c *domain.Coupon) (*domain.Coupon, error) {
	return s.createFn(ctx, c)
}

func (s *stubCouponUsecase) Update(ctx context.Context, u domain.PartialCouponUpdate) (*domain.Coupon, error) {
	return s.updateFn(ctx, u)
}

func (s *stubCouponUsecase) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func TestCouponHandler_Create(t *testing.T) {
	t.Parallel()

	uc := &stubCouponUsecase{
		createFn: func(_ context.Context, c *domain.Coupon) (*domain.Coupon, error) {
			require.Equal(t, "spring10", c.Code, "normalised by the service")
			require.Equal(t, domain.CouponPercent, c.Type)
			require.True(t, decimal.NewFromInt(10).Equal(c.Discount))
			require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), c.ValidFrom.UTC())
			require.Nil(t, c.ValidUntil)
			require.Equal(t, []int64{4}, c.ProductIDs)

			out := *c
			out.ID = 12
			out.Code = "SPRING10"
			out.CanUseFor = domain.ScopeProduct
			return &out, nil
		},
	}
	body := `{"code":"spring10","discount":10,"valid_from":"2026-03-01T00:00:00Z","quantity":5,"type":"percent","products":[4]}`
	rr := httptest.NewRecorder()
	handlers.NewCouponHandler(testLogger(), uc).
		Create(rr, httptest.NewRequest(http.MethodPost, "/v1/admin/coupons", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "/v1/admin/coupons/12", rr.Header().Get("Location"))

	var resp struct {
		Coupon struct {
			Code      string  `json:"code"`
			Discount  string  `json:"discount"`
			CanUseFor string  `json:"can_use_for"`
			Users     []int64 `json:"users"`
			Products  []int64 `json:"products"`
		} `json:"coupon"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "SPRING10", resp.Coupon.Code)
	assert.Equal(t, "10.00", resp.Coupon.Discount)
	assert.Equal(t, "product", resp.Coupon.CanUseFor)
	assert.Equal(t, []int64{}, resp.Coupon.Users)
	assert.Equal(t, []int64{4}, resp.Coupon.Products)
}

func TestCouponHandler_Update_TypeAndLists(t *testing.T) {
	t.Parallel()

	uc := &stubCouponUsecase{
		updateFn: func(_ context.Context, u domain.PartialCouponUpdate) (*domain.Coupon, error) {
			require.EqualValues(t, 12, u.ID)
			require.NotNil(t, u.Type)
			require.Equal(t, domain.CouponFree, *u.Type)
			require.Equal(t, []int64{1, 2}, u.UserIDs)
			require.Nil(t, u.ProductIDs)
			require.Nil(t, u.Quantity)
			return &domain.Coupon{ID: 12, Code: "X", Type: domain.CouponFree, UserIDs: u.UserIDs, CanUseFor: domain.ScopeClient}, nil
		},
	}
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/v1/admin/coupons/12", strings.NewReader(`{"type":"free","users":[1,2]}`)), "id", "12")
	rr := httptest.NewRecorder()
	handlers.NewCouponHandler(testLogger(), uc).Update(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"can_use_for":"client"`)
}

func TestCouponHandler_Update_ValidUntil(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantClear bool
		wantValue bool
	}{
		{name: "absent", body: `{"code":"x"}`},
		{name: "null clears", body: `{"valid_until":null}`, wantClear: true},
		{name: "value sets", body: `{"valid_until":"2025-03-01T00:00:00Z"}`, wantValue: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got domain.PartialCouponUpdate
			uc := &stubCouponUsecase{
				updateFn: func(_ context.Context, u domain.PartialCouponUpdate) (*domain.Coupon, error) {
					got = u
					return &domain.Coupon{ID: u.ID, Code: "X", Type: domain.CouponFree, CanUseFor: domain.ScopeAll}, nil
				},
			}
			req := withURLParam(httptest.NewRequest(http.MethodPut, "/v1/admin/coupons/3", strings.NewReader(tt.body)), "id", "3")
			rr := httptest.NewRecorder()
			handlers.NewCouponHandler(testLogger(), uc).Update(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			require.Equal(t, tt.wantClear, got.ClearValidUntil)
			if tt.wantValue {
				require.NotNil(t, got.ValidUntil)
				require.True(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC).Equal(*got.ValidUntil))
			} else {
				require.Nil(t, got.ValidUntil)
			}
		})
	}

	// a malformed timestamp never reaches the usecase
	uc := &stubCouponUsecase{
		updateFn: func(context.Context, domain.PartialCouponUpdate) (*domain.Coupon, error) {
			t.Fatal("update must not be called")
			return nil, nil
		},
	}
	req := withURLParam(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"valid_until":"soon"}`)), "id", "3")
	rr := httptest.NewRecorder()
	handlers.NewCouponHandler(testLogger(), uc).Update(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCouponHandler_ListAndDelete(t *testing.T) {
	t.Parallel()

	uc := &stubCouponUsecase{
		listFn: func(_ context.Context, f domain.CouponFilter, p domain.PageRequest) (domain.Page[domain.Coupon], error) {
			assert.Equal(t, "spring10", f.Code)
			return domain.NewPage(p, 0, []domain.Coupon(nil)), nil
		},
		deleteFn: func(_ context.Context, id int64) error {
			if id == 2 {
				return apperr.ErrNotFound
			}
			return nil
		},
	}
	h := handlers.NewCouponHandler(testLogger(), uc)

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/coupons?code=spring10", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.Delete(rr, withURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "id", "1"))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.Delete(rr, withURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "id", "2"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
