package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/apimock/apimock-go/internal/model"
	"github.com/apimock/apimock-go/internal/repository"
)

func newUserFixture() (*UserService, *repository.InMemorySessionRepository) {
	sessions := repository.NewInMemorySessionRepository()
	return NewUserService(repository.NewInMemoryUserRepository(), sessions), sessions
}

func TestUserService_RegisterValidation(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	for _, req := range []model.RegisterRequest{
		{Email: "a@x.com", Password: "pw123456"},
		{Name: "A", Password: "pw123456"},
		{Name: "A", Email: "a@x.com"},
	} {
		_, err := svc.Register(ctx, req)
		require.ErrorIs(t, err, ErrRegistrationFields)
	}
}

func TestUserService_RegisterDefaultsAndProjection(t *testing.T) {
	svc, _ := newUserFixture()

	resp, err := svc.Register(context.Background(), model.RegisterRequest{
		Name: "A", Email: "a@x.com", Password: "pw123456",
	})
	require.NoError(t, err)
	require.NotZero(t, resp.ID)
	require.Equal(t, "A", resp.Name)
	require.Equal(t, "a@x.com", resp.Email)
	require.False(t, resp.Verified)
	require.False(t, resp.CreatedAt.IsZero())
}

func TestUserService_RegisterDuplicateEmail(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	first, err := svc.Register(ctx, model.RegisterRequest{Name: "A", Email: "a@x.com", Password: "pw123456"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, model.RegisterRequest{Name: "B", Email: "a@x.com", Password: "other-pw"})
	require.ErrorIs(t, err, ErrEmailTaken)

	// First user's record is unaffected.
	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "A", got.Name)
}

func TestUserService_UpdateRequiresAField(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, model.RegisterRequest{Name: "A", Email: "a@x.com", Password: "pw123456"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, user.ID, model.UpdateUserRequest{})
	require.ErrorIs(t, err, ErrNoFieldsToUpdate)

	name := "Anna"
	photo := "https://img.example/a.png"
	updated, err := svc.Update(ctx, user.ID, model.UpdateUserRequest{Name: &name, Photo: &photo})
	require.NoError(t, err)
	require.Equal(t, "Anna", updated.Name)
	require.NotNil(t, updated.Photo)
	require.Equal(t, photo, *updated.Photo)
	require.False(t, updated.UpdatedAt.Before(user.UpdatedAt))

	_, err = svc.Update(ctx, 999, model.UpdateUserRequest{Name: &name})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_DeleteCascadesSessions(t *testing.T) {
	svc, sessions := newUserFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, model.RegisterRequest{Name: "A", Email: "a@x.com", Password: "pw123456"})
	require.NoError(t, err)

	s := model.Session{UserID: user.ID, IPAddress: "127.0.0.1"}
	require.NoError(t, sessions.Create(ctx, &s))

	require.NoError(t, svc.Delete(ctx, user.ID))

	_, err = svc.Get(ctx, user.ID)
	require.ErrorIs(t, err, ErrUserNotFound)

	remaining, err := sessions.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, remaining)

	// Deleting an already-deleted account is not-found.
	require.ErrorIs(t, svc.Delete(ctx, user.ID), ErrUserNotFound)
}

func TestUserService_ListPagination(t *testing.T) {
	svc, _ := newUserFixture()
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := svc.Register(ctx, model.RegisterRequest{
			Name:     fmt.Sprintf("User %02d", i),
			Email:    fmt.Sprintf("user%02d@x.com", i),
			Password: "pw123456",
		})
		require.NoError(t, err)
	}

	t.Run("first page", func(t *testing.T) {
		users, page, err := svc.List(ctx, 1, 20)
		require.NoError(t, err)
		require.Len(t, users, 20)
		require.Equal(t, model.Pagination{CurrentPage: 1, PerPage: 20, LastPage: 2, Total: 25}, page)
		require.Equal(t, "user00@x.com", users[0].Email)
	})

	t.Run("last partial page", func(t *testing.T) {
		users, page, err := svc.List(ctx, 2, 20)
		require.NoError(t, err)
		require.Len(t, users, 5)
		require.Equal(t, int64(25), page.Total)
	})

	t.Run("page past the end", func(t *testing.T) {
		users, page, err := svc.List(ctx, 3, 20)
		require.NoError(t, err)
		require.Empty(t, users)
		require.Equal(t, int64(25), page.Total)
		require.Equal(t, 2, page.LastPage)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		_, _, err := svc.List(ctx, 0, 20)
		require.ErrorIs(t, err, ErrInvalidPagination)
		_, _, err = svc.List(ctx, 1, 0)
		require.ErrorIs(t, err, ErrInvalidPagination)
	})
}
