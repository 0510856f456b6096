package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecommerce-api/internal/apperr"
	"ecommerce-api/internal/domain"
)

// UserRepo represents user repository.
type UserRepo struct{ db *pgxpool.Pool }

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *pgxpool.Pool) *UserRepo { return &UserRepo{db: db} }

const userSelect = `
    SELECT u.id, u.name, u.surname, u.email, u.password, u.image_id, u.created_at, u.updated_at, ` + imageColumns + `
    FROM users u
    LEFT JOIN images i ON i.id = u.image_id`

func scanUser(row interface{ Scan(...any) error }) (domain.User, error) {
	var (
		u   domain.User
		img nullImage
	)
	dest := append([]any{
		&u.ID, &u.Name, &u.Surname, &u.Email, &u.PasswordHash, &u.ImageID, &u.CreatedAt, &u.UpdatedAt,
	}, img.dest()...)
	if err := row.Scan(dest...); err != nil {
		return u, err
	}
	u.Image = img.image()
	return u, nil
}

// List returns users matching any of the provided filters together with the total count.
func (r *UserRepo) List(ctx context.Context, uf domain.UserFilter, p domain.PageRequest) ([]domain.User, int64, error) {
	var f filter
	if v := strings.TrimSpace(uf.Name); v != "" {
		f.add(`u.name ILIKE $%d`, likePattern(v))
	}
	if v := strings.TrimSpace(uf.Surname); v != "" {
		f.add(`u.surname ILIKE $%d`, likePattern(v))
	}
	if v := strings.TrimSpace(uf.Email); v != "" {
		f.add(`u.email ILIKE $%d`, likePattern(v))
	}

	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM users u`+f.where("OR"), f.args)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	q, args := f.page(userSelect+f.where("OR")+` ORDER BY u.id`, p)
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]domain.User, 0, p.Normalize().PerPage)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := r.loadRoles(ctx, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Get - returns user with roles by its ID, nil when absent.
func (r *UserRepo) Get(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `u.id = $1`, id)
}

// GetByEmail - returns user with roles by e-mail (case-insensitive), nil when absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `lower(u.email) = lower($1)`, email)
}

func (r *UserRepo) getOne(ctx context.Context, cond string, arg any) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, userSelect+` WHERE `+cond, arg))
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	users := []domain.User{u}
	if err := r.loadRoles(ctx, users); err != nil {
		return nil, err
	}
	return &users[0], nil
}

func (r *UserRepo) loadRoles(ctx context.Context, users []domain.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(users))
	idx := make(map[int64]int, len(users))
	for i, u := range users {
		ids = append(ids, u.ID)
		idx[u.ID] = i
	}

	rows, err := r.db.Query(ctx, `
        SELECT ru.user_id, r.id, r.name, r.slug, r.description
        FROM role_user ru
        JOIN roles r ON r.id = ru.role_id
        WHERE ru.user_id = ANY($1)
        ORDER BY r.id
    `, ids)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			userID int64
			role   domain.Role
		)
		if err := rows.Scan(&userID, &role.ID, &role.Name, &role.Slug, &role.Description); err != nil {
			return err
		}
		i := idx[userID]
		users[i].Roles = append(users[i].Roles, role)
	}
	return rows.Err()
}

// Create inserts the user and attaches the roles identified by slugs in one transaction.
func (r *UserRepo) Create(ctx context.Context, u *domain.User, roles []string) (int64, error) {
	var id int64
	err := runTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
            INSERT INTO users (name, surname, email, password, image_id)
            VALUES ($1, $2, $3, $4, $5)
            RETURNING id
        `, u.Name, u.Surname, u.Email, u.PasswordHash, u.ImageID).Scan(&id); err != nil {
			return fmt.Errorf("create user: %w", mapWriteErr(err))
		}
		return attachRoles(ctx, tx, id, roles)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdatePartial merges the provided fields and replaces roles when u.Roles is not nil.
// It returns true if the user exists.
func (r *UserRepo) UpdatePartial(ctx context.Context, u domain.PartialUserUpdate) (bool, error) {
	found := false
	err := runTx(ctx, r.db, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, `
            UPDATE users
            SET
                name       = COALESCE($2, name),
                surname    = COALESCE($3, surname),
                email      = COALESCE($4, email),
                password   = COALESCE($5, password),
                image_id   = COALESCE($6, image_id),
                updated_at = now()
            WHERE id = $1
        `, u.ID, u.Name, u.Surname, u.Email, u.PasswordHash, u.ImageID)
		if err != nil {
			return fmt.Errorf("update user %d: %w", u.ID, mapWriteErr(err))
		}
		if ct.RowsAffected() == 0 {
			return nil
		}
		found = true

		if u.Roles == nil {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM role_user WHERE user_id = $1`, u.ID); err != nil {
			return fmt.Errorf("detach roles: %w", err)
		}
		return attachRoles(ctx, tx, u.ID, u.Roles)
	})
	return found, err
}

// Delete removes a user and returns true if a row was affected.
func (r *UserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", id, mapWriteErr(err))
	}
	return ct.RowsAffected() > 0, nil
}

func attachRoles(ctx context.Context, q querier, userID int64, slugs []string) error {
	if len(slugs) == 0 {
		return nil
	}
	ct, err := q.Exec(ctx, `
        INSERT INTO role_user (role_id, user_id)
        SELECT r.id, $1 FROM roles r WHERE r.slug = ANY($2)
        ON CONFLICT DO NOTHING
    `, userID, slugs)
	if err != nil {
		return fmt.Errorf("attach roles: %w", mapWriteErr(err))
	}
	if int(ct.RowsAffected()) != len(uniqueStrings(slugs)) {
		return fmt.Errorf("%w: unknown role in %v", apperr.ErrInvalid, slugs)
	}
	return nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
