package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/repository/repositorytest"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func newTestRepo(t *testing.T) (*Repository[domain.CartItem], string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "data")
	repo, err := NewRepository[domain.CartItem](dir, repository.KindCart)
	require.NoError(t, err)
	return repo, dir
}

func TestRepository_Contract(t *testing.T) {
	repositorytest.RunCartContract(t, func(t *testing.T) repository.CartRepository {
		repo, _ := newTestRepo(t)
		return repo
	})
}

func TestRepository_OneFilePerCollection(t *testing.T) {
	repo, dir := newTestRepo(t)

	ok, err := repo.SaveIfVersion(context.Background(), repositorytest.Cart("session-1", 1), 0)
	require.NoError(t, err)
	require.True(t, ok)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cart-session-1.json", entries[0].Name())
}

func TestRepository_RejectsUnsafeIDs(t *testing.T) {
	repo, _ := newTestRepo(t)

	for _, id := range []string{"", "../etc", "a/b", `a\b`} {
		_, err := repo.Get(context.Background(), id)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, "id %q", id)
	}
}

func TestRepository_CorruptFile(t *testing.T) {
	repo, dir := newTestRepo(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cart-session-1.json"), []byte("{nope"), 0o644))

	_, err := repo.Get(context.Background(), "session-1")
	assert.ErrorContains(t, err, "unmarshal cart")
}

func TestRepository_PingFailsWithoutDir(t *testing.T) {
	repo, dir := newTestRepo(t)
	require.NoError(t, os.RemoveAll(dir))
	assert.Error(t, repo.Ping(context.Background()))
}
