package hash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDigest(t *testing.T) {
	tests := []struct {
		name string
		data string
		sum  uint64
	}{
		{"empty", "", 0xef46db3751d8e999},
		{"short", "test", 0x4fdcca5ddb678139},
		{"long", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum, n, err := Digest(strings.NewReader(tt.data))
			require.NoError(t, err)
			require.Equal(t, tt.sum, sum)
			require.Equal(t, int64(len(tt.data)), n)
		})
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rgb.zip")
	require.NoError(t, os.WriteFile(path, []byte("test"), 0o644))

	sum, n, err := File(path)
	require.NoError(t, err)
	require.Equal(t, uint64(0x4fdcca5ddb678139), sum)
	require.Equal(t, int64(4), n)

	_, _, err = File(filepath.Join(t.TempDir(), "missing.zip"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestHex(t *testing.T) {
	require.Equal(t, "4fdcca5ddb678139", Hex(0x4fdcca5ddb678139))
	require.Equal(t, "0000000000000001", Hex(1))
}
