package mmap

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.bin")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestMapping(t *testing.T) {
	content := []byte("(22+7)*2-2 = 56")
	m, err := Open(writeFile(t, content))
	require.NoError(t, err)

	assert.Equal(t, len(content), m.Len())
	assert.Equal(t, content, m.Bytes())

	t.Run("ReadAt", func(t *testing.T) {
		buf := make([]byte, 2)
		n, err := m.ReadAt(buf, 13)
		require.NoError(t, err)
		assert.Equal(t, "56", string(buf[:n]))

		n, err = m.ReadAt(make([]byte, 10), 13)
		assert.Equal(t, 2, n)
		assert.Equal(t, io.EOF, err)

		_, err = m.ReadAt(buf, 100)
		assert.Equal(t, io.EOF, err)

		_, err = m.ReadAt(buf, -1)
		assert.ErrorIs(t, err, ErrInvalidOffset)
	})

	t.Run("Slice", func(t *testing.T) {
		assert.Equal(t, "(22+7)", string(m.Slice(0, 6)))
		assert.Equal(t, "56", string(m.Slice(13, 100)))
		assert.Empty(t, m.Slice(100, 1))
		assert.Equal(t, "(2", string(m.Slice(-5, 2)))
		assert.Empty(t, m.Slice(3, -1))
	})

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	assert.Empty(t, m.Slice(0, 4))
	_, err = m.ReadAt(make([]byte, 1), 0)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMapping_EmptyFile(t *testing.T) {
	m, err := Open(writeFile(t, nil))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Bytes())
	assert.NoError(t, m.Close())
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
