package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"ecommerce-api/internal/apperr"
	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/logx"
	"ecommerce-api/internal/ports/ordertx"
	"ecommerce-api/internal/testutil/testlog"
)

func newCtrl(t *testing.T) *gomock.Controller {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	return ctrl
}

// fakeTx keeps a single order and the coupons in memory.
type fakeTx struct {
	order    *domain.Order
	coupons  map[string]*domain.Coupon
	prices   map[int64]decimal.Decimal
	nextID   int64
	deleted  bool
	adjusted map[int64]int
	inserted []domain.OrderItem
	updated  []domain.OrderItem
	kept     []int64
}

func newFakeTx(o *domain.Order) *fakeTx {
	return &fakeTx{
		order:    o,
		coupons:  map[string]*domain.Coupon{},
		prices:   map[int64]decimal.Decimal{10: dec("10.00"), 11: dec("5.50"), 12: dec("1.25")},
		nextID:   100,
		adjusted: map[int64]int{},
	}
}

func (f *fakeTx) GetOrderForUpdate(_ context.Context, id int64) (*domain.Order, error) {
	if f.order == nil || f.order.ID != id {
		return nil, nil
	}
	cp := *f.order
	cp.Items = append([]domain.OrderItem(nil), f.order.Items...)
	cp.Discounts = append([]domain.Discount(nil), f.order.Discounts...)
	return &cp, nil
}
func (f *fakeTx) CreateOrder(_ context.Context, o *domain.Order) error {
	f.nextID++
	o.ID = f.nextID
	f.order = o
	return nil
}
func (f *fakeTx) UpdateOrder(_ context.Context, o *domain.Order) error {
	f.order.UserID = o.UserID
	f.order.Status = o.Status
	return nil
}
func (f *fakeTx) DeleteOrder(context.Context, int64) error {
	f.deleted = true
	return nil
}
func (f *fakeTx) ProductPrices(_ context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
	out := map[int64]decimal.Decimal{}
	for _, id := range ids {
		if p, ok := f.prices[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}
func (f *fakeTx) DeleteItemsExcept(_ context.Context, _ int64, keep []int64) error {
	f.kept = keep
	var rest []domain.OrderItem
	for _, it := range f.order.Items {
		for _, k := range keep {
			if it.ID == k {
				rest = append(rest, it)
				break
			}
		}
	}
	f.order.Items = rest
	return nil
}
func (f *fakeTx) InsertItem(_ context.Context, it *domain.OrderItem) error {
	f.nextID++
	it.ID = f.nextID
	f.inserted = append(f.inserted, *it)
	f.order.Items = append(f.order.Items, *it)
	return nil
}
func (f *fakeTx) UpdateItem(_ context.Context, it *domain.OrderItem) error {
	f.updated = append(f.updated, *it)
	for i := range f.order.Items {
		if f.order.Items[i].ID == it.ID {
			f.order.Items[i] = *it
		}
	}
	return nil
}
func (f *fakeTx) GetCouponByCodeForUpdate(_ context.Context, code string) (*domain.Coupon, error) {
	return f.coupons[code], nil
}
func (f *fakeTx) InsertDiscount(_ context.Context, d *domain.Discount) error {
	f.nextID++
	d.ID = f.nextID
	f.order.Discounts = append(f.order.Discounts, *d)
	return nil
}
func (f *fakeTx) DeleteDiscount(_ context.Context, id int64) error {
	for i, d := range f.order.Discounts {
		if d.ID == id {
			f.order.Discounts = append(f.order.Discounts[:i], f.order.Discounts[i+1:]...)
			return nil
		}
	}
	return apperr.ErrNotFound
}
func (f *fakeTx) AdjustCouponQuantity(_ context.Context, couponID int64, delta int) error {
	f.adjusted[couponID] += delta
	return nil
}

var _ ordertx.Repository = (*fakeTx)(nil)

// expectTx routes WithTx to tx and Get to its current order.
func expectTx(repo *MockorderRepository, tx *fakeTx) {
	repo.EXPECT().
		WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(ordertx.Repository) error) error {
			return fn(tx)
		}).AnyTimes()
	repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id int64) (*domain.Order, error) {
			return tx.GetOrderForUpdate(context.Background(), id)
		}).AnyTimes()
}

func newTestService(repo orderRepository, pub EventPublisher, rec Recorder, logger logx.Logger) *Service {
	s := NewService(repo, pub, rec, time.Second, logger)
	s.now = func() time.Time { return testNow }
	return s
}

func ptr[T any](v T) *T { return &v }

func TestService_Create(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockorderRepository(ctrl)
	pub := NewMockEventPublisher(ctrl)
	rec := NewMockRecorder(ctrl)
	tx := newFakeTx(nil)
	expectTx(repo, tx)

	rec.EXPECT().OrderCreated("client")
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e Event) error {
		require.Equal(t, EventCreated, e.Type)
		require.Equal(t, int64(7), e.UserID)
		require.Equal(t, domain.OrderPending, e.Status)
		require.True(t, e.Total.Equal(dec("25.50")))
		require.Equal(t, testNow, e.OccurredAt)
		return nil
	})

	s := newTestService(repo, pub, rec, logx.Nop())
	o, err := s.Create(context.Background(), CreateInput{
		UserID: 7,
		Items: []domain.ItemInput{
			{ProductID: 10, Quantity: 2},
			{ProductID: 11, Quantity: 1},
		},
	}, "client")
	require.NoError(t, err)
	require.Equal(t, domain.OrderPending, o.Status)
	require.Len(t, o.Items, 2)
	require.True(t, o.Items[0].Subtotal.Equal(dec("20.00")))
	require.True(t, o.Items[1].Subtotal.Equal(dec("5.50")))
}

func TestService_Create_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       CreateInput
		rejected bool
		fields   []string
	}{
		{
			name:   "order fields only",
			in:     CreateInput{UserID: 0, Status: "lost", Items: []domain.ItemInput{{ProductID: 10, Quantity: 1}}},
			fields: []string{"user_id", "status"},
		},
		{
			name:     "bad item rejects the request",
			in:       CreateInput{UserID: 0, Status: "lost", Items: []domain.ItemInput{{ProductID: 10, Quantity: 0}}},
			rejected: true,
			fields:   []string{"user_id", "status", "items.0.quantity"},
		},
		{
			name:     "missing product id",
			in:       CreateInput{UserID: 7, Items: []domain.ItemInput{{Quantity: 2}}},
			rejected: true,
			fields:   []string{"items.0.product_id"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestService(nil, nil, nil, logx.Nop())
			_, err := s.Create(context.Background(), tt.in, "admin")
			require.ErrorIs(t, err, apperr.ErrInvalid)

			var fields map[string]string
			var ie *apperr.InputError
			var ve *apperr.ValidationError
			if tt.rejected {
				require.ErrorAs(t, err, &ie)
				fields = ie.Fields
			} else {
				require.ErrorAs(t, err, &ve)
				fields = ve.Fields
			}
			for _, f := range tt.fields {
				require.Contains(t, fields, f)
			}
		})
	}
}

func TestService_Create_UnknownProduct(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockorderRepository(ctrl)
	tx := newFakeTx(nil)
	repo.EXPECT().
		WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(ordertx.Repository) error) error {
			return fn(tx)
		})

	s := newTestService(repo, nil, nil, logx.Nop())
	_, err := s.Create(context.Background(), CreateInput{
		UserID: 7,
		Items:  []domain.ItemInput{{ProductID: 404, Quantity: 1}},
	}, "admin")

	var ie *apperr.InputError
	require.ErrorAs(t, err, &ie)
	require.Contains(t, ie.Fields, "items.0.product_id")
}

// expectRollbackTx runs fn against tx and restores the order when fn fails.
func expectRollbackTx(repo *MockorderRepository, tx *fakeTx) {
	repo.EXPECT().
		WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(ordertx.Repository) error) error {
			snapshot, _ := tx.GetOrderForUpdate(ctx, tx.order.ID)
			if err := fn(tx); err != nil {
				tx.order = snapshot
				return err
			}
			return nil
		})
}

func TestService_Update_UnknownProductRollsBack(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockorderRepository(ctrl)
	pub := NewMockEventPublisher(ctrl)
	items := []domain.OrderItem{
		{ID: 1, OrderID: 5, ProductID: 10, Quantity: 1, Subtotal: dec("10.00")},
		{ID: 2, OrderID: 5, ProductID: 11, Quantity: 2, Subtotal: dec("11.00")},
	}
	tx := newFakeTx(&domain.Order{
		ID:     5,
		UserID: 7,
		Status: domain.OrderPending,
		Items:  append([]domain.OrderItem(nil), items...),
	})
	expectRollbackTx(repo, tx)

	s := newTestService(repo, pub, nil, logx.Nop())
	_, err := s.Update(context.Background(), domain.PartialOrderUpdate{
		ID:     5,
		Status: ptr(domain.OrderPaid),
		Items: []domain.ItemInput{
			{ID: ptr(int64(1)), ProductID: 10, Quantity: 3},
			{ProductID: 404, Quantity: 1},
		},
	}, nil)

	var ie *apperr.InputError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, "product does not exist", ie.Fields["items.1.product_id"])
	require.Empty(t, tx.inserted)
	require.Empty(t, tx.updated)
	require.Equal(t, domain.OrderPending, tx.order.Status)
	require.Equal(t, items, tx.order.Items)
}

func TestService_Update_NonPositiveQuantity(t *testing.T) {
	t.Parallel()

	s := newTestService(nil, nil, nil, logx.Nop())
	_, err := s.Update(context.Background(), domain.PartialOrderUpdate{
		ID:    5,
		Items: []domain.ItemInput{{ProductID: 10, Quantity: 0}},
	}, nil)

	var ie *apperr.InputError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, "must be greater than 0", ie.Fields["items.0.quantity"])
}

func TestService_Update_ReconcilesItems(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockorderRepository(ctrl)
	tx := newFakeTx(&domain.Order{
		ID:     5,
		UserID: 7,
		Status: domain.OrderPending,
		Items: []domain.OrderItem{
			{ID: 1, OrderID: 5, ProductID: 10, Quantity: 1, Subtotal: dec("10.00")},
			{ID: 2, OrderID: 5, ProductID: 11, Quantity: 1, Subtotal: dec("5.50")},
			{ID: 3, OrderID: 5, ProductID: 12, Quantity: 4, Subtotal: dec("5.00")},
		},
	})
	expectTx(repo, tx)

	s := newTestService(repo, nil, nil, logx.Nop())
	o, err := s.Update(context.Background(), domain.PartialOrderUpdate{
		ID:     5,
		Status: ptr(domain.OrderPaid),
		Items: []domain.ItemInput{
			{ID: ptr(int64(1)), ProductID: 10, Quantity: 3},
			{ProductID: 12, Quantity: 2},
			{ID: ptr(int64(999)), ProductID: 11, Quantity: 1},
		},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, domain.OrderPaid, o.Status)

	// item 2 and 3 are gone, item 1 is updated, two new items are created
	require.Equal(t, []int64{1}, tx.kept)
	require.Len(t, tx.updated, 1)
	require.Equal(t, int64(1), tx.updated[0].ID)
	require.True(t, tx.updated[0].Subtotal.Equal(dec("30.00")))
	require.Len(t, tx.inserted, 2)
	require.True(t, tx.inserted[0].Subtotal.Equal(dec("2.50")))
	require.Equal(t, int64(11), tx.inserted[1].ProductID)
	require.Len(t, o.Items, 3)
}

func TestService_Update_NilItemsUntouched(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockorderRepository(ctrl)
	tx := newFakeTx(&domain.Order{
		ID:     5,
		UserID: 7,
		Status: domain.OrderPending,
		Items:  []domain.OrderItem{{ID: 1, OrderID: 5, ProductID: 10, Quantity: 1, Subtotal: dec("10.00")}},
	})
	expectTx(repo, tx)

	s := newTestService(repo, nil, nil, logx.Nop())
	o, err := s.Update(context.Background(), domain.PartialOrderUpdate{ID: 5, Status: ptr(domain.OrderShipped)}, nil)
	require.NoError(t, err)
	require.Nil(t, tx.kept)
	require.Len(t, o.Items, 1)
	require.Equal(t, domain.OrderShipped, o.Status)
}

func TestService_Update_OwnerScope(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockorderRepository(ctrl)
	tx := newFakeTx(&domain.Order{ID: 5, UserID: 7, Status: domain.OrderPending})
	expectTx(repo, tx)

	s := newTestService(repo, nil, nil, logx.Nop())

	_, err := s.Update(context.Background(), domain.PartialOrderUpdate{ID: 5}, ptr(int64(8)))
	require.ErrorIs(t, err, apperr.ErrNotFound)

	// owners cannot hand their order to someone else
	o, err := s.Update(context.Background(), domain.PartialOrderUpdate{ID: 5, UserID: ptr(int64(8))}, ptr(int64(7)))
	require.NoError(t, err)
	require.Equal(t, int64(7), o.UserID)
}

func TestService_Get_OwnerScope(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockorderRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), int64(5)).Return(&domain.Order{ID: 5, UserID: 7}, nil).Times(2)

	s := newTestService(repo, nil, nil, logx.Nop())

	_, err := s.Get(context.Background(), 5, ptr(int64(8)))
	require.ErrorIs(t, err, apperr.ErrNotFound)

	o, err := s.Get(context.Background(), 5, ptr(int64(7)))
	require.NoError(t, err)
	require.Equal(t, int64(5), o.ID)
}

func TestService_Delete_RestoresCoupons(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockorderRepository(ctrl)
	pub := NewMockEventPublisher(ctrl)
	tx := newFakeTx(&domain.Order{
		ID:        5,
		UserID:    7,
		Discounts: []domain.Discount{{ID: 1, CouponID: 30}, {ID: 2, CouponID: 31}},
	})
	expectTx(repo, tx)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	logs := testlog.New()
	s := newTestService(repo, pub, nil, logs.Logger())
	require.NoError(t, s.Delete(context.Background(), 5))

	require.True(t, tx.deleted)
	require.Equal(t, map[int64]int{30: 1, 31: 1}, tx.adjusted)
	require.True(t, logs.Has("warn", "publish order event failed"))
}

func TestService_Delete_NotFound(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockorderRepository(ctrl)
	expectTx(repo, newFakeTx(nil))

	s := newTestService(repo, nil, nil, logx.Nop())
	require.ErrorIs(t, s.Delete(context.Background(), 5), apperr.ErrNotFound)
}

func discountOrder() *domain.Order {
	return &domain.Order{
		ID:     5,
		UserID: 7,
		Items:  []domain.OrderItem{{ID: 1, OrderID: 5, ProductID: 10, Quantity: 2, Subtotal: dec("20.00")}},
	}
}

func TestService_ApplyDiscount(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockorderRepository(ctrl)
	rec := NewMockRecorder(ctrl)
	tx := newFakeTx(discountOrder())
	tx.coupons["SAVE10"] = &domain.Coupon{
		ID: 30, Code: "SAVE10", Type: domain.CouponPercent, Discount: dec("10"),
		ValidFrom: testNow.Add(-time.Hour), Quantity: 3,
	}
	expectTx(repo, tx)
	rec.EXPECT().CouponApplied("applied")
	rec.EXPECT().CouponApplied("applied")

	s := newTestService(repo, nil, rec, logx.Nop())

	o, info, err := s.ApplyDiscount(context.Background(), 5, " save10 ", nil)
	require.NoError(t, err)
	require.True(t, info.Success)
	require.Equal(t, msgApplied, info.Message)
	require.Len(t, o.Discounts, 1)
	require.True(t, o.Discounts[0].Amount.Equal(dec("2")))
	require.True(t, o.Total().Equal(dec("18")))
	require.Equal(t, -1, tx.adjusted[30])

	// applying the same coupon again changes nothing
	o, info, err = s.ApplyDiscount(context.Background(), 5, "SAVE10", nil)
	require.NoError(t, err)
	require.True(t, info.Success)
	require.Equal(t, msgAlreadyApplied, info.Message)
	require.Len(t, o.Discounts, 1)
	require.Equal(t, -1, tx.adjusted[30])
}

func TestService_ApplyDiscount_Rejected(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockorderRepository(ctrl)
	rec := NewMockRecorder(ctrl)
	o := discountOrder()
	o.Discounts = []domain.Discount{{ID: 50, CouponID: 29, OrderID: 5, Amount: dec("1")}}
	tx := newFakeTx(o)
	tx.coupons["VIP"] = &domain.Coupon{
		ID: 31, Code: "VIP", Type: domain.CouponCurrency, Discount: dec("5"),
		ValidFrom: testNow.Add(-time.Hour), Quantity: 1, UserIDs: []int64{8},
	}
	tx.coupons["ONCE"] = &domain.Coupon{
		ID: 32, Code: "ONCE", Type: domain.CouponCurrency, Discount: dec("5"),
		ValidFrom: testNow.Add(-time.Hour), Quantity: 1,
	}
	expectTx(repo, tx)
	rec.EXPECT().CouponApplied("rejected").Times(2)

	s := newTestService(repo, nil, rec, logx.Nop())

	_, info, err := s.ApplyDiscount(context.Background(), 5, "vip", nil)
	require.NoError(t, err)
	require.False(t, info.Success)
	require.Equal(t, msgNotEligible, info.Message)

	_, info, err = s.ApplyDiscount(context.Background(), 5, "once", nil)
	require.NoError(t, err)
	require.False(t, info.Success)
	require.Equal(t, msgNotRecursive, info.Message)

	require.Empty(t, tx.adjusted)
}

func TestService_ApplyDiscount_NotFound(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockorderRepository(ctrl)
	rec := NewMockRecorder(ctrl)
	expectTx(repo, newFakeTx(discountOrder()))
	rec.EXPECT().CouponApplied("not_found").Times(2)

	s := newTestService(repo, nil, rec, logx.Nop())

	_, _, err := s.ApplyDiscount(context.Background(), 5, "NOPE", nil)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, _, err = s.ApplyDiscount(context.Background(), 5, "NOPE", ptr(int64(99)))
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, _, err = s.ApplyDiscount(context.Background(), 5, "  ", nil)
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestService_RemoveDiscount(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockorderRepository(ctrl)
	o := discountOrder()
	o.Discounts = []domain.Discount{{ID: 50, CouponID: 30, OrderID: 5, Amount: dec("2")}}
	tx := newFakeTx(o)
	expectTx(repo, tx)

	s := newTestService(repo, nil, nil, logx.Nop())

	require.ErrorIs(t, s.RemoveDiscount(context.Background(), 5, 51, nil), apperr.ErrNotFound)
	require.ErrorIs(t, s.RemoveDiscount(context.Background(), 5, 50, ptr(int64(8))), apperr.ErrNotFound)

	require.NoError(t, s.RemoveDiscount(context.Background(), 5, 50, ptr(int64(7))))
	require.Empty(t, tx.order.Discounts)
	require.Equal(t, 1, tx.adjusted[30])
}

func TestService_List(t *testing.T) {
	t.Parallel()

	ctrl := newCtrl(t)
	repo := NewMockorderRepository(ctrl)
	f := domain.OrderFilter{Status: domain.OrderPaid}
	p := domain.PageRequest{Page: 2, PerPage: 1}
	repo.EXPECT().List(gomock.Any(), f, p).Return([]domain.Order{{ID: 9}}, int64(3), nil)

	s := newTestService(repo, nil, nil, logx.Nop())
	page, err := s.List(context.Background(), f, p)
	require.NoError(t, err)
	require.Equal(t, int64(3), page.Total)
	require.Equal(t, 3, page.LastPage)
	require.Len(t, page.Data, 1)
}
