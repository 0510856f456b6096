package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ecommerce-api/internal/apperr"
	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/logx"
	"ecommerce-api/internal/ports/coupontx"
)

var maxPercent = decimal.NewFromInt(100)

// Service manages coupons and their restrictions.
type Service struct {
	repo             couponRepository
	operationTimeout time.Duration
	logger           logx.Logger
	now              func() time.Time
}

// NewService creates and configures a coupon Service.
func NewService(r couponRepository, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{
		repo:             r,
		operationTimeout: timeout,
		logger:           logger,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// List returns a page of coupons.
func (s *Service) List(ctx context.Context, f domain.CouponFilter, p domain.PageRequest) (domain.Page[domain.Coupon], error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	items, total, err := s.repo.List(ctx, f, p)
	if err != nil {
		return domain.Page[domain.Coupon]{}, err
	}
	return domain.NewPage(p, total, items), nil
}

// Get returns a coupon with its user and product restrictions.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Coupon, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.reload(ctx, id)
}

// Create validates c and stores it together with its restrictions.
func (s *Service) Create(ctx context.Context, c *domain.Coupon) (*domain.Coupon, error) {
	if c == nil {
		return nil, apperr.ErrInvalid
	}
	c.Code = normalizeCode(c.Code)
	if c.ValidFrom.IsZero() {
		c.ValidFrom = s.now()
	}
	if err := validate(c); err != nil {
		return nil, err
	}
	c.CanUseFor = domain.ScopeFor(c.UserIDs, c.ProductIDs)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.repo.WithTx(ctx, func(tx coupontx.Repository) error {
		if err := tx.CreateCoupon(ctx, c); err != nil {
			return err
		}
		if err := tx.SyncCouponUsers(ctx, c.ID, c.UserIDs); err != nil {
			return err
		}
		return tx.SyncCouponProducts(ctx, c.ID, c.ProductIDs)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("coupon created",
		logx.Int64("coupon_id", c.ID),
		logx.String("code", c.Code),
		logx.String("can_use_for", string(c.CanUseFor)),
	)
	return s.reload(ctx, c.ID)
}

// Update merges u into the stored coupon. Restriction lists are replaced only when present.
func (s *Service) Update(ctx context.Context, u domain.PartialCouponUpdate) (*domain.Coupon, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.repo.WithTx(ctx, func(tx coupontx.Repository) error {
		c, err := tx.GetCouponForUpdate(ctx, u.ID)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.ErrNotFound
		}

		merge(c, u)
		if err := validate(c); err != nil {
			return err
		}
		c.CanUseFor = domain.ScopeFor(c.UserIDs, c.ProductIDs)

		if err := tx.UpdateCoupon(ctx, c); err != nil {
			return err
		}
		if u.UserIDs != nil {
			if err := tx.SyncCouponUsers(ctx, c.ID, c.UserIDs); err != nil {
				return err
			}
		}
		if u.ProductIDs != nil {
			if err := tx.SyncCouponProducts(ctx, c.ID, c.ProductIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(ctx, u.ID)
}

// Delete detaches the coupon from users, products and orders and removes it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.repo.WithTx(ctx, func(tx coupontx.Repository) error {
		c, err := tx.GetCouponForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return apperr.ErrNotFound
		}
		if err := tx.SyncCouponUsers(ctx, id, nil); err != nil {
			return err
		}
		if err := tx.SyncCouponProducts(ctx, id, nil); err != nil {
			return err
		}
		if err := tx.DetachCouponOrders(ctx, id); err != nil {
			return err
		}
		return tx.DeleteCoupon(ctx, id)
	})
}

func (s *Service) reload(ctx context.Context, id int64) (*domain.Coupon, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.ErrNotFound
	}
	return c, nil
}

func merge(c *domain.Coupon, u domain.PartialCouponUpdate) {
	if u.Code != nil {
		c.Code = normalizeCode(*u.Code)
	}
	if u.Discount != nil {
		c.Discount = *u.Discount
	}
	if u.ValidFrom != nil {
		c.ValidFrom = *u.ValidFrom
	}
	switch {
	case u.ClearValidUntil:
		c.ValidUntil = nil
	case u.ValidUntil != nil:
		c.ValidUntil = u.ValidUntil
	}
	if u.Quantity != nil {
		c.Quantity = *u.Quantity
	}
	if u.Type != nil {
		c.Type = *u.Type
	}
	if u.Recursive != nil {
		c.Recursive = *u.Recursive
	}
	if u.UserIDs != nil {
		c.UserIDs = u.UserIDs
	}
	if u.ProductIDs != nil {
		c.ProductIDs = u.ProductIDs
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validate(c *domain.Coupon) error {
	v := apperr.NewValidationError()
	if c.Code == "" {
		v.Add("code", "is required")
	}
	if !c.Type.Valid() {
		v.Add("type", "must be one of free, percent, currency")
	}
	if c.Discount.IsNegative() {
		v.Add("discount", "must not be negative")
	}
	if c.Type == domain.CouponPercent && c.Discount.GreaterThan(maxPercent) {
		v.Add("discount", "must be between 0 and 100")
	}
	if c.Quantity < 0 {
		v.Add("quantity", "must not be negative")
	}
	if c.ValidUntil != nil && c.ValidUntil.Before(c.ValidFrom) {
		v.Add("valid_until", "must not be earlier than valid_from")
	}
	return v.OrNil()
}
