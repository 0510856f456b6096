package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"ecommerce-api/internal/apperr"
	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/ports/ordertx"
)

// OrderRepo represents order repository.
type OrderRepo struct{ db *pgxpool.Pool }

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo { return &OrderRepo{db: db} }

const orderSelect = `SELECT o.id, o.user_id, o.status, o.created_at, o.updated_at FROM orders o`

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// WithTx opens a transaction and executes fn within it.
func (r *OrderRepo) WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error {
	return runTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&TxRepo{tx: tx})
	})
}

// List returns orders with items and discounts together with the total count.
// Owner-scoped listings are ordered by id DESC, the rest by id.
func (r *OrderRepo) List(ctx context.Context, of domain.OrderFilter, p domain.PageRequest) ([]domain.Order, int64, error) {
	var f filter
	order := ` ORDER BY o.id`
	if of.UserID != nil {
		f.add(`o.user_id = $%d`, *of.UserID)
		order = ` ORDER BY o.id DESC`
	}
	if of.Status != "" {
		f.add(`o.status = $%d`, string(of.Status))
	}
	if n := strings.TrimSpace(of.Number); n != "" {
		f.add(`o.id::text LIKE $%d`, likePattern(n))
	}

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM orders o`+f.where("AND"), f.args)
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	q, args := f.page(orderSelect+f.where("AND")+order, p)
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Order, 0, p.Normalize().PerPage)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := loadOrderRelations(ctx, r.db, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Get - returns order with items and discounts by its ID, nil when absent.
func (r *OrderRepo) Get(ctx context.Context, id int64) (*domain.Order, error) {
	return getOrder(ctx, r.db, id, false)
}

func getOrder(ctx context.Context, q querier, id int64, forUpdate bool) (*domain.Order, error) {
	sql := orderSelect + ` WHERE o.id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	o, err := scanOrder(q.QueryRow(ctx, sql, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	orders := []domain.Order{o}
	if err := loadOrderRelations(ctx, q, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func loadOrderRelations(ctx context.Context, q querier, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(orders))
	idx := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids = append(ids, o.ID)
		idx[o.ID] = i
	}

	rows, err := q.Query(ctx, `
        SELECT id, order_id, product_id, quantity, subtotal
        FROM order_items
        WHERE order_id = ANY($1)
        ORDER BY id
    `, ids)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Subtotal); err != nil {
			rows.Close()
			return err
		}
		o := &orders[idx[it.OrderID]]
		o.Items = append(o.Items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.Query(ctx, `
        SELECT co.id, co.coupon_id, co.order_id, c.code, co.discount
        FROM coupon_order co
        JOIN coupons c ON c.id = co.coupon_id
        WHERE co.order_id = ANY($1)
        ORDER BY co.id
    `, ids)
	if err != nil {
		return fmt.Errorf("load order discounts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d domain.Discount
		if err := rows.Scan(&d.ID, &d.CouponID, &d.OrderID, &d.Code, &d.Amount); err != nil {
			return err
		}
		o := &orders[idx[d.OrderID]]
		o.Discounts = append(o.Discounts, d)
	}
	return rows.Err()
}

// GetOrderForUpdate - lock the order row and load its relations.
func (r *TxRepo) GetOrderForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	return getOrder(ctx, r.tx, id, true)
}

// CreateOrder - insert a new order.
func (r *TxRepo) CreateOrder(ctx context.Context, o *domain.Order) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO orders (user_id, status)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at
    `, o.UserID, string(o.Status)).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", mapWriteErr(err))
	}
	return nil
}

// UpdateOrder - overwrite owner and status.
func (r *TxRepo) UpdateOrder(ctx context.Context, o *domain.Order) error {
	err := r.tx.QueryRow(ctx, `
        UPDATE orders
        SET user_id = $2, status = $3, updated_at = now()
        WHERE id = $1
        RETURNING updated_at
    `, o.ID, o.UserID, string(o.Status)).Scan(&o.UpdatedAt)
	if err != nil {
		if IsNotFound(err) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("update order %d: %w", o.ID, mapWriteErr(err))
	}
	return nil
}

// DeleteOrder - delete order row; items and discounts cascade.
func (r *TxRepo) DeleteOrder(ctx context.Context, id int64) error {
	ct, err := r.tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ProductPrices - current prices of the existing products among ids.
func (r *TxRepo) ProductPrices(ctx context.Context, ids []int64) (map[int64]decimal.Decimal, error) {
	out := make(map[int64]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.tx.Query(ctx, `SELECT id, price FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("product prices: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id    int64
			price decimal.Decimal
		)
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		out[id] = price
	}
	return out, rows.Err()
}

// DeleteItemsExcept - delete order items whose id is not listed in keep.
func (r *TxRepo) DeleteItemsExcept(ctx context.Context, orderID int64, keep []int64) error {
	if keep == nil {
		keep = []int64{}
	}
	_, err := r.tx.Exec(ctx,
		`DELETE FROM order_items WHERE order_id = $1 AND NOT (id = ANY($2))`, orderID, keep)
	if err != nil {
		return fmt.Errorf("delete items of order %d: %w", orderID, err)
	}
	return nil
}

// InsertItem - insert a new order item.
func (r *TxRepo) InsertItem(ctx context.Context, it *domain.OrderItem) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO order_items (order_id, product_id, quantity, subtotal)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `, it.OrderID, it.ProductID, it.Quantity, it.Subtotal).Scan(&it.ID)
	if err != nil {
		return fmt.Errorf("insert order item: %w", mapWriteErr(err))
	}
	return nil
}

// UpdateItem - overwrite product, quantity and subtotal of an order item.
func (r *TxRepo) UpdateItem(ctx context.Context, it *domain.OrderItem) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE order_items
        SET product_id = $3, quantity = $4, subtotal = $5, updated_at = now()
        WHERE id = $1 AND order_id = $2
    `, it.ID, it.OrderID, it.ProductID, it.Quantity, it.Subtotal)
	if err != nil {
		return fmt.Errorf("update order item %d: %w", it.ID, mapWriteErr(err))
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("order item %d: %w", it.ID, apperr.ErrNotFound)
	}
	return nil
}

// GetCouponByCodeForUpdate - lock the coupon with the given code.
func (r *TxRepo) GetCouponByCodeForUpdate(ctx context.Context, code string) (*domain.Coupon, error) {
	return getCoupon(ctx, r.tx, `c.code = $1`, code, true)
}

// InsertDiscount - attach a coupon to an order.
func (r *TxRepo) InsertDiscount(ctx context.Context, d *domain.Discount) error {
	err := r.tx.QueryRow(ctx, `
        INSERT INTO coupon_order (coupon_id, order_id, discount)
        VALUES ($1, $2, $3)
        RETURNING id
    `, d.CouponID, d.OrderID, d.Amount).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("insert discount: %w", mapWriteErr(err))
	}
	return nil
}

// DeleteDiscount - detach a coupon from an order.
func (r *TxRepo) DeleteDiscount(ctx context.Context, id int64) error {
	ct, err := r.tx.Exec(ctx, `DELETE FROM coupon_order WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete discount %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// AdjustCouponQuantity - add delta to the remaining coupon quantity.
func (r *TxRepo) AdjustCouponQuantity(ctx context.Context, couponID int64, delta int) error {
	ct, err := r.tx.Exec(ctx, `
        UPDATE coupons
        SET quantity = quantity + $2, updated_at = now()
        WHERE id = $1 AND quantity + $2 >= 0
    `, couponID, delta)
	if err != nil {
		return fmt.Errorf("adjust coupon %d quantity: %w", couponID, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("coupon %d quantity exhausted: %w", couponID, apperr.ErrConflict)
	}
	return nil
}
