package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecommerce-api/internal/domain"
)

// ProductRepo represents product repository.
type ProductRepo struct{ db *pgxpool.Pool }

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(db *pgxpool.Pool) *ProductRepo { return &ProductRepo{db: db} }

const productSelect = `
    SELECT p.id, p.name, p.description, p.price, p.image_id, p.created_at, p.updated_at,
           ARRAY(SELECT cp.category_id FROM category_product cp WHERE cp.product_id = p.id ORDER BY cp.category_id),
           ARRAY(SELECT ip.image_id FROM image_product ip WHERE ip.product_id = p.id ORDER BY ip.image_id),
           ` + imageColumns + `
    FROM products p
    LEFT JOIN images i ON i.id = p.image_id`

func scanProduct(row interface{ Scan(...any) error }) (domain.Product, error) {
	var (
		p   domain.Product
		img nullImage
	)
	dest := append([]any{
		&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageID, &p.CreatedAt, &p.UpdatedAt,
		&p.CategoryIDs, &p.ImageIDs,
	}, img.dest()...)
	if err := row.Scan(dest...); err != nil {
		return p, err
	}
	p.Image = img.image()
	return p, nil
}

// List returns products filtered by name together with the total count.
func (r *ProductRepo) List(ctx context.Context, pf domain.ProductFilter, p domain.PageRequest) ([]domain.Product, int64, error) {
	var f filter
	if n := strings.TrimSpace(pf.Name); n != "" {
		f.add(`p.name ILIKE $%d`, likePattern(n))
	}

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM products p`+f.where("AND"), f.args)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	q, args := f.page(productSelect+f.where("AND")+` ORDER BY p.id`, p)
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Product, 0, p.Normalize().PerPage)
	for rows.Next() {
		prod, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, prod)
	}
	return out, total, rows.Err()
}

// Get - returns product by its ID, nil when absent.
func (r *ProductRepo) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

// Create inserts the product and its category/gallery relations in one transaction.
func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) (int64, error) {
	var id int64
	err := runTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
            INSERT INTO products (name, description, price, image_id)
            VALUES ($1, $2, $3, $4)
            RETURNING id
        `, p.Name, p.Description, p.Price, p.ImageID).Scan(&id); err != nil {
			return fmt.Errorf("create product: %w", mapWriteErr(err))
		}
		if err := syncPivot(ctx, tx, "category_product", "product_id", "category_id", id, p.CategoryIDs); err != nil {
			return err
		}
		return syncPivot(ctx, tx, "image_product", "product_id", "image_id", id, p.ImageIDs)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdatePartial merges the provided fields and re-syncs non-nil relation lists.
// It returns true if the product exists.
func (r *ProductRepo) UpdatePartial(ctx context.Context, u domain.PartialProductUpdate) (bool, error) {
	found := false
	err := runTx(ctx, r.db, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `
            UPDATE products
            SET
                name        = COALESCE($2, name),
                description = COALESCE($3, description),
                price       = COALESCE($4, price),
                image_id    = COALESCE($5, image_id),
                updated_at  = now()
            WHERE id = $1
        `, u.ID, u.Name, u.Description, u.Price, u.ImageID)
		if err != nil {
			return fmt.Errorf("update product %d: %w", u.ID, mapWriteErr(err))
		}
		if ct.RowsAffected() == 0 {
			return nil
		}
		found = true

		if u.CategoryIDs != nil {
			if err := syncPivot(ctx, tx, "category_product", "product_id", "category_id", u.ID, u.CategoryIDs); err != nil {
				return err
			}
		}
		if u.ImageIDs != nil {
			if err := syncPivot(ctx, tx, "image_product", "product_id", "image_id", u.ID, u.ImageIDs); err != nil {
				return err
			}
		}
		return nil
	})
	return found, err
}

// Delete removes a product and returns true if a row was affected.
func (r *ProductRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete product %d: %w", id, mapWriteErr(err))
	}
	return ct.RowsAffected() > 0, nil
}
