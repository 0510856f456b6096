package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecommerce-api/internal/apperr"
	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/logx"
	"ecommerce-api/internal/ports/ordertx"
)

// Messages returned in DiscountInfo.
const (
	msgApplied        = "coupon applied"
	msgAlreadyApplied = "coupon already applied to this order"
	msgNotEligible    = "coupon cannot be applied to this order"
	msgNotRecursive   = "coupon cannot be combined with other discounts"
)

// CreateInput is a new order.
type CreateInput struct {
	UserID int64
	Status domain.OrderStatus
	Items  []domain.ItemInput
}

// Service coordinates orders, their items and discounts.
type Service struct {
	repo             orderRepository
	publisher        EventPublisher
	recorder         Recorder
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewService creates and configures an order Service.
func NewService(r orderRepository, p EventPublisher, rec Recorder, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if p == nil {
		p = NopPublisher{}
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Service{
		repo:             r,
		publisher:        p,
		recorder:         rec,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// List returns a page of orders.
func (s *Service) List(ctx context.Context, f domain.OrderFilter, p domain.PageRequest) (domain.Page[domain.Order], error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	items, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}
	return domain.NewPage(p, total, items), nil
}

// Get returns an order. A non-nil owner hides orders of other users.
func (s *Service) Get(ctx context.Context, id int64, owner *int64) (*domain.Order, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(o, owner) {
		return nil, apperr.ErrNotFound
	}
	return o, nil
}

// Create stores an order with its items. channel labels the metric (admin or client).
func (s *Service) Create(ctx context.Context, in CreateInput, channel string) (*domain.Order, error) {
	if in.Status == "" {
		in.Status = domain.OrderPending
	}
	v := apperr.NewValidationError()
	if in.UserID <= 0 {
		v.Add("user_id", "is required")
	}
	if !in.Status.Valid() {
		v.Add("status", "is invalid")
	}
	if err := checkInput(v, in.Items); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	o := &domain.Order{UserID: in.UserID, Status: in.Status}
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}
		return syncItems(ctx, tx, o.ID, in.Items)
	})
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Get(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, apperr.ErrNotFound
	}

	s.recorder.OrderCreated(channel)
	s.publish(ctx, EventCreated, created)
	s.logger.Info("order created",
		logx.String("event", "order_created"),
		logx.Int64("order_id", created.ID),
		logx.Int64("user_id", created.UserID),
		logx.String("channel", channel),
		logx.Money("total", created.Total()),
	)
	return created, nil
}

// Update merges status and owner and reconciles items when u.Items is not nil.
// A non-nil owner restricts the update to that user's orders and forbids reassigning them.
func (s *Service) Update(ctx context.Context, u domain.PartialOrderUpdate, owner *int64) (*domain.Order, error) {
	v := apperr.NewValidationError()
	if u.Status != nil && !u.Status.Valid() {
		v.Add("status", "is invalid")
	}
	if u.UserID != nil && *u.UserID <= 0 {
		v.Add("user_id", "is invalid")
	}
	if err := checkInput(v, u.Items); err != nil {
		return nil, err
	}
	if owner != nil {
		u.UserID = nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, u.ID)
		if err != nil {
			return err
		}
		if !visible(o, owner) {
			return apperr.ErrNotFound
		}

		if u.Status != nil {
			o.Status = *u.Status
		}
		if u.UserID != nil {
			o.UserID = *u.UserID
		}
		if err := tx.UpdateOrder(ctx, o); err != nil {
			return err
		}

		if u.Items == nil {
			return nil
		}
		return reconcileItems(ctx, tx, o, u.Items)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Get(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.ErrNotFound
	}
	s.publish(ctx, EventUpdated, updated)
	return updated, nil
}

// Delete removes an order, returning the quantity of every coupon it used.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var deleted *domain.Order
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return apperr.ErrNotFound
		}
		for _, d := range o.Discounts {
			if err := tx.DeleteDiscount(ctx, d.ID); err != nil {
				return err
			}
			if err := tx.AdjustCouponQuantity(ctx, d.CouponID, 1); err != nil {
				return err
			}
		}
		if err := tx.DeleteItemsExcept(ctx, id, nil); err != nil {
			return err
		}
		if err := tx.DeleteOrder(ctx, id); err != nil {
			return err
		}
		deleted = o
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, EventDeleted, deleted)
	return nil
}

// ApplyDiscount attaches the coupon with the given code to an order.
// A coupon that is not eligible is reported through DiscountInfo, not as an error.
func (s *Service) ApplyDiscount(ctx context.Context, orderID int64, code string, owner *int64) (*domain.Order, domain.DiscountInfo, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		v := apperr.NewValidationError()
		v.Add("code", "is required")
		return nil, domain.DiscountInfo{}, v
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var info domain.DiscountInfo
	err := s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !visible(o, owner) {
			return apperr.ErrNotFound
		}

		c, err := tx.GetCouponByCodeForUpdate(ctx, code)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("coupon %s: %w", code, apperr.ErrNotFound)
		}

		switch {
		case o.HasCoupon(c.ID):
			info = domain.DiscountInfo{Message: msgAlreadyApplied, Success: true}
			return nil
		case !CanApplyDiscount(c, o, s.now()):
			info = domain.DiscountInfo{Message: msgNotEligible}
			return nil
		case !CanApplyToOrder(c, o):
			info = domain.DiscountInfo{Message: msgNotRecursive}
			return nil
		}

		d := &domain.Discount{
			CouponID: c.ID,
			OrderID:  o.ID,
			Code:     c.Code,
			Amount:   CalculateDiscount(c, o),
		}
		if err := tx.InsertDiscount(ctx, d); err != nil {
			return err
		}
		if err := tx.AdjustCouponQuantity(ctx, c.ID, -1); err != nil {
			return err
		}
		info = domain.DiscountInfo{Message: msgApplied, Success: true}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.recorder.CouponApplied("not_found")
		}
		return nil, domain.DiscountInfo{}, err
	}

	result := "applied"
	if !info.Success {
		result = "rejected"
	}
	s.recorder.CouponApplied(result)

	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, domain.DiscountInfo{}, err
	}
	if o == nil {
		return nil, domain.DiscountInfo{}, apperr.ErrNotFound
	}
	return o, info, nil
}

// RemoveDiscount detaches a discount from an order and returns the coupon quantity.
func (s *Service) RemoveDiscount(ctx context.Context, orderID, discountID int64, owner *int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.repo.WithTx(ctx, func(tx ordertx.Repository) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !visible(o, owner) {
			return apperr.ErrNotFound
		}

		var found *domain.Discount
		for i := range o.Discounts {
			if o.Discounts[i].ID == discountID {
				found = &o.Discounts[i]
				break
			}
		}
		if found == nil {
			return fmt.Errorf("discount %d: %w", discountID, apperr.ErrNotFound)
		}

		if err := tx.DeleteDiscount(ctx, found.ID); err != nil {
			return err
		}
		return tx.AdjustCouponQuantity(ctx, found.CouponID, 1)
	})
}

func (s *Service) publish(ctx context.Context, typ string, o *domain.Order) {
	if err := s.publisher.Publish(ctx, newEvent(typ, o, s.now())); err != nil {
		s.logger.Warn("publish order event failed",
			logx.String("event_type", typ),
			logx.Int64("order_id", o.ID),
			logx.Err(err),
		)
	}
}

func visible(o *domain.Order, owner *int64) bool {
	if o == nil {
		return false
	}
	return owner == nil || o.UserID == *owner
}

// checkInput returns v as a 422 unless an item is malformed. A bad item rejects the
// whole request with 400, carrying every collected field.
func checkInput(v *apperr.ValidationError, items []domain.ItemInput) error {
	bad := false
	for i, it := range items {
		if it.ProductID <= 0 {
			v.Add(fmt.Sprintf("items.%d.product_id", i), "is required")
			bad = true
		}
		if it.Quantity <= 0 {
			v.Add(fmt.Sprintf("items.%d.quantity", i), "must be greater than 0")
			bad = true
		}
	}
	if bad {
		return v.Reject()
	}
	return v.OrNil()
}

// syncItems replaces every item of the order with items.
func syncItems(ctx context.Context, tx ordertx.Repository, orderID int64, items []domain.ItemInput) error {
	if err := tx.DeleteItemsExcept(ctx, orderID, nil); err != nil {
		return err
	}
	fresh := make([]domain.ItemInput, len(items))
	for i, it := range items {
		it.ID = nil
		fresh[i] = it
	}
	return writeItems(ctx, tx, orderID, fresh, nil)
}

// reconcileItems diffs the order's items against the submitted list.
// Items missing from the list are deleted, matched ones are updated, the rest are created.
func reconcileItems(ctx context.Context, tx ordertx.Repository, o *domain.Order, items []domain.ItemInput) error {
	existing := make(map[int64]struct{}, len(o.Items))
	for _, it := range o.Items {
		existing[it.ID] = struct{}{}
	}

	keep := make([]int64, 0, len(items))
	for _, it := range items {
		if it.ID == nil {
			continue
		}
		if _, ok := existing[*it.ID]; ok {
			keep = append(keep, *it.ID)
		}
	}
	if err := tx.DeleteItemsExcept(ctx, o.ID, keep); err != nil {
		return err
	}
	return writeItems(ctx, tx, o.ID, items, existing)
}

// writeItems prices and stores items. Items whose id is in existing are updated.
func writeItems(ctx context.Context, tx ordertx.Repository, orderID int64, items []domain.ItemInput, existing map[int64]struct{}) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	prices, err := tx.ProductPrices(ctx, ids)
	if err != nil {
		return err
	}

	v := apperr.NewValidationError()
	for i, it := range items {
		if _, ok := prices[it.ProductID]; !ok {
			v.Add(fmt.Sprintf("items.%d.product_id", i), "product does not exist")
		}
	}
	if err := v.Reject(); err != nil {
		return err
	}

	for _, it := range items {
		row := &domain.OrderItem{
			OrderID:   orderID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Subtotal:  prices[it.ProductID].Mul(decimalQty(it.Quantity)).Round(2),
		}
		if it.ID != nil {
			if _, ok := existing[*it.ID]; ok {
				row.ID = *it.ID
				if err := tx.UpdateItem(ctx, row); err != nil {
					return err
				}
				continue
			}
		}
		if err := tx.InsertItem(ctx, row); err != nil {
			return err
		}
	}
	return nil
}
