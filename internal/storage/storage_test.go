package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocal_PutDelete(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "uploads")
	l, err := NewLocal(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, l.Put(ctx, "1700000000000-abc.png", "image/png", strings.NewReader("png-bytes")))

	data, err := os.ReadFile(filepath.Join(dir, "1700000000000-abc.png"))
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(data))
	require.Equal(t, "http://localhost:8080/uploads/1700000000000-abc.png", l.URL("1700000000000-abc.png"))

	require.NoError(t, l.Delete(ctx, "1700000000000-abc.png"))
	require.ErrorIs(t, l.Delete(ctx, "1700000000000-abc.png"), ErrNotExist)
}

func TestLocal_RejectsTraversal(t *testing.T) {
	t.Parallel()

	l, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	for _, key := range []string{"", "../etc/passwd", "a/b.png", `a\b.png`} {
		require.Error(t, l.Put(context.Background(), key, "image/png", strings.NewReader("x")), key)
	}
}

func TestNewGCS_DefaultURL(t *testing.T) {
	t.Parallel()

	g := NewGCS(nil, "shop-images", "")
	require.Equal(t, "https://storage.googleapis.com/shop-images/a.png", g.URL("a.png"))
}
