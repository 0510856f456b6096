package user

import (
	"context"
	"testing"
	"time"

	"ecommerce-api/internal/apperr"
	"ecommerce-api/internal/auth"
	"ecommerce-api/internal/domain"
)

type mockUserRepo struct {
	listFn          func(ctx context.Context, f domain.UserFilter, p domain.PageRequest) ([]domain.User, int64, error)
	getFn           func(ctx context.Context, id int64) (*domain.User, error)
	createFn        func(ctx context.Context, u *domain.User, roles []string) (int64, error)
	updatePartialFn func(ctx context.Context, u domain.PartialUserUpdate) (bool, error)
	deleteFn        func(ctx context.Context, id int64) (bool, error)
}

func (m *mockUserRepo) List(ctx context.Context, f domain.UserFilter, p domain.PageRequest) ([]domain.User, int64, error) {
	return m.listFn(ctx, f, p)
}

func (m *mockUserRepo) Get(ctx context.Context, id int64) (*domain.User, error) {
	return m.getFn(ctx, id)
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User, roles []string) (int64, error) {
	return m.createFn(ctx, u, roles)
}

func (m *mockUserRepo) UpdatePartial(ctx context.Context, u domain.PartialUserUpdate) (bool, error) {
	return m.updatePartialFn(ctx, u)
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	return m.deleteFn(ctx, id)
}

func TestService_Create_DefaultRoleAndHash(t *testing.T) {
	t.Parallel()

	var gotRoles []string
	var gotHash string
	repo := &mockUserRepo{
		createFn: func(_ context.Context, u *domain.User, roles []string) (int64, error) {
			if u.Email != "ann@example.com" {
				t.Fatalf("email not normalized: %q", u.Email)
			}
			gotRoles = roles
			gotHash = u.PasswordHash
			return 4, nil
		},
		getFn: func(_ context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id, Email: "ann@example.com"}, nil
		},
	}

	s := NewService(repo, time.Second)
	u, err := s.Create(context.Background(), CreateInput{
		Name: "Ann", Surname: "Lee", Email: " Ann@Example.com ", Password: "secret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 4 {
		t.Fatalf("want id 4, got %d", u.ID)
	}
	if len(gotRoles) != 1 || gotRoles[0] != domain.RoleClient {
		t.Fatalf("want client role, got %v", gotRoles)
	}
	ok, err := auth.CheckPassword(gotHash, "secret")
	if err != nil || !ok {
		t.Fatalf("password was not hashed with bcrypt: %v", err)
	}
}

func TestService_Create_Validation(t *testing.T) {
	t.Parallel()

	s := NewService(&mockUserRepo{}, time.Second)
	_, err := s.Create(context.Background(), CreateInput{Email: "not-an-email"})

	ve, ok := err.(*apperr.ValidationError)
	if !ok {
		t.Fatalf("want *apperr.ValidationError, got %T", err)
	}
	for _, f := range []string{"name", "surname", "email", "password"} {
		if _, ok := ve.Fields[f]; !ok {
			t.Fatalf("missing field %q in %v", f, ve.Fields)
		}
	}
}

func TestService_UpdatePartial_RehashesPassword(t *testing.T) {
	t.Parallel()

	repo := &mockUserRepo{
		updatePartialFn: func(_ context.Context, u domain.PartialUserUpdate) (bool, error) {
			if u.PasswordHash == nil || *u.PasswordHash == "new-pass" {
				t.Fatalf("password must be hashed, got %v", u.PasswordHash)
			}
			if u.Roles != nil {
				t.Fatalf("roles must stay untouched, got %v", u.Roles)
			}
			return true, nil
		},
		getFn: func(_ context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id}, nil
		},
	}

	s := NewService(repo, time.Second)
	pass := "new-pass"
	if _, err := s.UpdatePartial(context.Background(), UpdateInput{ID: 2, Password: &pass}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_UpdatePartial_NotFound(t *testing.T) {
	t.Parallel()

	repo := &mockUserRepo{
		updatePartialFn: func(context.Context, domain.PartialUserUpdate) (bool, error) { return false, nil },
	}
	s := NewService(repo, time.Second)
	name := "Bob"
	_, err := s.UpdatePartial(context.Background(), UpdateInput{ID: 9, Name: &name})
	if err != apperr.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	t.Parallel()

	repo := &mockUserRepo{
		deleteFn: func(_ context.Context, id int64) (bool, error) { return id == 1, nil },
	}
	s := NewService(repo, time.Second)
	if err := s.Delete(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Delete(context.Background(), 2); err != apperr.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
