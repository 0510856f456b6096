package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecommerce-api/internal/apperr"
	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/ports/coupontx"
)

// CouponRepo represents coupon repository.
type CouponRepo struct{ db *pgxpool.Pool }

// NewCouponRepo creates a new CouponRepo.
func NewCouponRepo(db *pgxpool.Pool) *CouponRepo { return &CouponRepo{db: db} }

const couponSelect = `
    SELECT c.id, c.code, c.discount, c.valid_from, c.valid_until, c.quantity, c.type,
           c.can_use_for, c.recursive, c.created_at, c.updated_at
    FROM coupons c`

func scanCoupon(row interface{ Scan(...any) error }) (domain.Coupon, error) {
	var c domain.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.Discount, &c.ValidFrom, &c.ValidUntil, &c.Quantity, &c.Type,
		&c.CanUseFor, &c.Recursive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// WithTx opens a transaction and executes fn within it.
func (r *CouponRepo) WithTx(ctx context.Context, fn func(tx coupontx.Repository) error) error {
	return runTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&TxRepo{tx: tx})
	})
}

// List returns coupons matching the code (case-insensitive, exact) together with the total count.
func (r *CouponRepo) List(ctx context.Context, cf domain.CouponFilter, p domain.PageRequest) ([]domain.Coupon, int64, error) {
	var f filter
	if code := strings.TrimSpace(cf.Code); code != "" {
		f.add(`c.code = upper($%d)`, code)
	}

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM coupons c`+f.where("AND"), f.args)
	if err != nil {
		return nil, 0, fmt.Errorf("count coupons: %w", err)
	}

	q, args := f.page(couponSelect+f.where("AND")+` ORDER BY c.id`, p)
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Coupon, 0, p.Normalize().PerPage)
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := loadCouponRestrictions(ctx, r.db, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Get - returns coupon with its restrictions by its ID, nil when absent.
func (r *CouponRepo) Get(ctx context.Context, id int64) (*domain.Coupon, error) {
	return getCoupon(ctx, r.db, `c.id = $1`, id, false)
}

func getCoupon(ctx context.Context, q querier, cond string, arg any, forUpdate bool) (*domain.Coupon, error) {
	sql := couponSelect + ` WHERE ` + cond
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	c, err := scanCoupon(q.QueryRow(ctx, sql, arg))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	coupons := []domain.Coupon{c}
	if err := loadCouponRestrictions(ctx, q, coupons); err != nil {
		return nil, err
	}
	return &coupons[0], nil
}

func loadCouponRestrictions(ctx context.Context, q querier, coupons []domain.Coupon) error {
	if len(coupons) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(coupons))
	idx := make(map[int64]int, len(coupons))
	for i, c := range coupons {
		ids = append(ids, c.ID)
		idx[c.ID] = i
	}

	rows, err := q.Query(ctx, `
        SELECT coupon_id, 'user', user_id FROM coupon_user WHERE coupon_id = ANY($1)
        UNION ALL
        SELECT coupon_id, 'product', product_id FROM coupon_product WHERE coupon_id = ANY($1)
        ORDER BY 1, 2, 3
    `, ids)
	if err != nil {
		return fmt.Errorf("load coupon restrictions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			couponID, refID int64
			kind            string
		)
		if err := rows.Scan(&couponID, &kind, &refID); err != nil {
			return err
		}
		c := &coupons[idx[couponID]]
		if kind == "user" {
			c.UserIDs = append(c.UserIDs, refID)
		} else {
			c.ProductIDs = append(c.ProductIDs, refID)
		}
	}
	return rows.Err()
}

// TxRepo represents transaction repository shared by order and coupon transactions.
type TxRepo struct {
	tx pgx.Tx
}

// GetCouponForUpdate locks the coupon row.
func (r *TxRepo) GetCouponForUpdate(ctx context.Context, id int64) (*domain.Coupon, error) {
	return getCoupon(ctx, r.tx, `c.id = $1`, id, true)
}

// CreateCoupon - insert a new coupon.
func (r *TxRepo) CreateCoupon(ctx context.Context, c *domain.Coupon) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO coupons (code, discount, valid_from, valid_until, quantity, type, can_use_for, recursive)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at
    `, c.Code, c.Discount, c.ValidFrom, c.ValidUntil, c.Quantity, string(c.Type), string(c.CanUseFor), c.Recursive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create coupon: %w", mapWriteErr(err))
	}
	return nil
}

// UpdateCoupon - overwrite coupon columns with c.
func (r *TxRepo) UpdateCoupon(ctx context.Context, c *domain.Coupon) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE coupons
        SET code = $2, discount = $3, valid_from = $4, valid_until = $5, quantity = $6,
            type = $7, can_use_for = $8, recursive = $9, updated_at = now()
        WHERE id = $1
    `, c.ID, c.Code, c.Discount, c.ValidFrom, c.ValidUntil, c.Quantity, string(c.Type), string(c.CanUseFor), c.Recursive)
	if err != nil {
		return fmt.Errorf("update coupon %d: %w", c.ID, mapWriteErr(err))
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("coupon %d: %w", c.ID, apperr.ErrNotFound)
	}
	return nil
}

// SyncCouponUsers replaces the user restriction list.
func (r *TxRepo) SyncCouponUsers(ctx context.Context, couponID int64, userIDs []int64) error {
	return syncPivot(ctx, r.tx, "coupon_user", "coupon_id", "user_id", couponID, userIDs)
}

// SyncCouponProducts replaces the product restriction list.
func (r *TxRepo) SyncCouponProducts(ctx context.Context, couponID int64, productIDs []int64) error {
	return syncPivot(ctx, r.tx, "coupon_product", "coupon_id", "product_id", couponID, productIDs)
}

// DetachCouponOrders removes every discount created from the coupon.
func (r *TxRepo) DetachCouponOrders(ctx context.Context, couponID int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM coupon_order WHERE coupon_id = $1`, couponID); err != nil {
		return fmt.Errorf("detach coupon %d orders: %w", couponID, err)
	}
	return nil
}

// DeleteCoupon - delete coupon row.
func (r *TxRepo) DeleteCoupon(ctx context.Context, id int64) error {
	ct, err := r.tx.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("coupon %d: %w", id, apperr.ErrNotFound)
	}
	return nil
}
