package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecommerce-api/internal/domain"
)

// NewPool creates and pings a new pgx connection pool.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// runTx opens a transaction and executes fn within it.
func runTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	// отменяем в случае паники
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				panic(rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// filter accumulates WHERE conditions. Each condition holds a single %d
// placeholder that is replaced with the positional argument index.
type filter struct {
	conds []string
	args  []any
}

func (f *filter) add(cond string, arg any) {
	f.args = append(f.args, arg)
	f.conds = append(f.conds, fmt.Sprintf(cond, len(f.args)))
}

// where renders the conditions joined with sep ("AND" / "OR").
func (f *filter) where(sep string) string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " "+sep+" ")
}

// page appends LIMIT/OFFSET for p and returns the query with its arguments.
func (f *filter) page(q string, p domain.PageRequest) (string, []any) {
	p = p.Normalize()
	args := append(append([]any(nil), f.args...), p.PerPage, p.Offset())
	return q + fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

func count(ctx context.Context, q querier, sql string, args []any) (int64, error) {
	var total int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// likePattern escapes LIKE wildcards and wraps s for a substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

const imageColumns = `i.id, i.path, i.size, i.original_name, i.extension, i.created_at, i.updated_at`

// nullImage scans the columns of a LEFT JOINed image.
type nullImage struct {
	ID           *int64
	Path         *string
	Size         *int64
	OriginalName *string
	Extension    *string
	CreatedAt    *time.Time
	UpdatedAt    *time.Time
}

func (n *nullImage) dest() []any {
	return []any{&n.ID, &n.Path, &n.Size, &n.OriginalName, &n.Extension, &n.CreatedAt, &n.UpdatedAt}
}

func (n *nullImage) image() *domain.Image {
	if n.ID == nil {
		return nil
	}
	img := &domain.Image{ID: *n.ID}
	if n.Path != nil {
		img.Path = *n.Path
	}
	if n.Size != nil {
		img.Size = *n.Size
	}
	if n.OriginalName != nil {
		img.OriginalName = *n.OriginalName
	}
	if n.Extension != nil {
		img.Extension = *n.Extension
	}
	if n.CreatedAt != nil {
		img.CreatedAt = *n.CreatedAt
	}
	if n.UpdatedAt != nil {
		img.UpdatedAt = *n.UpdatedAt
	}
	return img
}

// syncPivot replaces the rows of a two-column pivot table owned by ownerID.
func syncPivot(ctx context.Context, q querier, table, ownerCol, refCol string, ownerID int64, refIDs []int64) error {
	if _, err := q.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table, ownerCol), ownerID,
	); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if len(refIDs) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (%s, %s) SELECT $1, ref FROM unnest($2::bigint[]) AS ref ON CONFLICT DO NOTHING`,
		table, ownerCol, refCol,
	), ownerID, refIDs)
	if err != nil {
		return fmt.Errorf("fill %s: %w", table, mapWriteErr(err))
	}
	return nil
}
