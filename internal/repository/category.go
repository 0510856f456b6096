package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"ecommerce-api/internal/domain"
)

// CategoryRepo represents category repository.
type CategoryRepo struct{ db *pgxpool.Pool }

// NewCategoryRepo creates a new CategoryRepo.
func NewCategoryRepo(db *pgxpool.Pool) *CategoryRepo { return &CategoryRepo{db: db} }

const categorySelect = `
    SELECT c.id, c.title, c.description, c.image_id, c.created_at, c.updated_at, ` + imageColumns + `
    FROM categories c
    LEFT JOIN images i ON i.id = c.image_id`

func scanCategory(row interface{ Scan(...any) error }) (domain.Category, error) {
	var (
		c   domain.Category
		img nullImage
	)
	dest := append([]any{&c.ID, &c.Title, &c.Description, &c.ImageID, &c.CreatedAt, &c.UpdatedAt}, img.dest()...)
	if err := row.Scan(dest...); err != nil {
		return c, err
	}
	c.Image = img.image()
	return c, nil
}

// List returns categories filtered by title together with the total count.
func (r *CategoryRepo) List(ctx context.Context, cf domain.CategoryFilter, p domain.PageRequest) ([]domain.Category, int64, error) {
	var f filter
	if t := strings.TrimSpace(cf.Title); t != "" {
		f.add(`c.title ILIKE $%d`, likePattern(t))
	}

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM categories c`+f.where("AND"), f.args)
	if err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	q, args := f.page(categorySelect+f.where("AND")+` ORDER BY c.id`, p)
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Category, 0, p.Normalize().PerPage)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

// Get - returns category by its ID, nil when absent.
func (r *CategoryRepo) Get(ctx context.Context, id int64) (*domain.Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, categorySelect+` WHERE c.id = $1`, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return &c, nil
}

// Create - creates a new category.
func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (title, description, image_id) VALUES ($1, $2, $3) RETURNING id`,
		c.Title, c.Description, c.ImageID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", mapWriteErr(err))
	}
	return id, nil
}

// UpdatePartial applies a partial update to a category and returns true if a row was affected.
func (r *CategoryRepo) UpdatePartial(ctx context.Context, u domain.PartialCategoryUpdate) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE categories
        SET
            title       = COALESCE($2, title),
            description = COALESCE($3, description),
            image_id    = COALESCE($4, image_id),
            updated_at  = now()
        WHERE id = $1
    `, u.ID, u.Title, u.Description, u.ImageID)
	if err != nil {
		return false, fmt.Errorf("update category %d: %w", u.ID, mapWriteErr(err))
	}
	return ct.RowsAffected() > 0, nil
}

// Delete removes a category and returns true if a row was affected.
func (r *CategoryRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete category %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}
