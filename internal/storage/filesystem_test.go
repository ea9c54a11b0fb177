package storage_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/handler"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/service"
	"github.com/Venkatareddy26/corporate-travel-admin-portal/internal/storage"
)

var (
	_ service.BlobStore  = (*storage.LocalStorage)(nil)
	_ handler.BlobOpener = (*storage.LocalStorage)(nil)
)

func TestKey_SanitizesFilename(t *testing.T) {
	trip := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	att := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	assert.Equal(t,
		"11111111-1111-1111-1111-111111111111/22222222-2222-2222-2222-222222222222-my_visa_scan.pdf",
		storage.Key(trip, att, "my visa scan.pdf"))
	assert.Equal(t,
		"11111111-1111-1111-1111-111111111111/22222222-2222-2222-2222-222222222222-passwd",
		storage.Key(trip, att, "../../etc/passwd"))
	assert.True(t, strings.HasSuffix(storage.Key(trip, att, ".."), "-file"))
}

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	ctx := context.Background()

	key, n, err := s.Save(ctx, uuid.New(), uuid.New(), "itinerary.txt", strings.NewReader("flight at 9"))
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)

	f, err := s.Open(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "flight at 9", string(got))

	require.NoError(t, s.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(ctx, key), "deleting a missing file is not an error")
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = s.Open(context.Background(), "../outside.txt")
	assert.ErrorIs(t, err, storage.ErrInvalidKey)

	err = s.Delete(context.Background(), "/etc/passwd")
	assert.ErrorIs(t, err, storage.ErrInvalidKey)
}
