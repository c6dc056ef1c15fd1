package hash

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Digest streams r through xxHash64 and returns the sum and the number of
// bytes consumed.
func Digest(r io.Reader) (uint64, int64, error) {
	h := xxhash.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return 0, n, err
	}

	return h.Sum64(), n, nil
}

// File digests the file at path.
func File(path string) (uint64, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	return Digest(f)
}

// Hex renders a digest as fixed-width lowercase hex.
func Hex(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}
