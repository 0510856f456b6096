package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"ecommerce-api/internal/domain"
)

// ImageRepo represents image repository.
type ImageRepo struct{ db *pgxpool.Pool }

// NewImageRepo creates a new ImageRepo.
func NewImageRepo(db *pgxpool.Pool) *ImageRepo { return &ImageRepo{db: db} }

const imageSelect = `SELECT ` + imageColumns + ` FROM images i`

// List returns images ordered by id DESC together with the total count.
func (r *ImageRepo) List(ctx context.Context, p domain.PageRequest) ([]domain.Image, int64, error) {
	var f filter
	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM images`, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("count images: %w", err)
	}

	q, args := f.page(imageSelect+` ORDER BY i.id DESC`, p)
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Image, 0, p.Normalize().PerPage)
	for rows.Next() {
		var img domain.Image
		if err := rows.Scan(imageDest(&img)...); err != nil {
			return nil, 0, err
		}
		out = append(out, img)
	}
	return out, total, rows.Err()
}

// Get - returns image by its ID, nil when absent.
func (r *ImageRepo) Get(ctx context.Context, id int64) (*domain.Image, error) {
	var img domain.Image
	err := r.db.QueryRow(ctx, imageSelect+` WHERE i.id = $1`, id).Scan(imageDest(&img)...)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get image %d: %w", id, err)
	}
	return &img, nil
}

// Create - stores image metadata and fills generated fields.
func (r *ImageRepo) Create(ctx context.Context, img *domain.Image) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO images (path, size, original_name, extension)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at
    `, img.Path, img.Size, img.OriginalName, img.Extension).Scan(&img.ID, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create image: %w", mapWriteErr(err))
	}
	return nil
}

// Rename changes the original file name and returns true if a row was affected.
func (r *ImageRepo) Rename(ctx context.Context, id int64, name string) (bool, error) {
	ct, err := r.db.Exec(ctx,
		`UPDATE images SET original_name = $2, updated_at = now() WHERE id = $1`, id, name)
	if err != nil {
		return false, fmt.Errorf("rename image %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// Delete removes the image row and returns true if a row was affected.
func (r *ImageRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete image %d: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

func imageDest(img *domain.Image) []any {
	return []any{&img.ID, &img.Path, &img.Size, &img.OriginalName, &img.Extension, &img.CreatedAt, &img.UpdatedAt}
}
