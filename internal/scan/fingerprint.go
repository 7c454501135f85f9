package scan

import (
	"io"
	"os"

	"github.com/zeebo/xxh3"
)

const fingerprintChunk = 256 * 1024

// Fingerprint computes the xxh3 content hash of a file. Symlinks hash the
// link target string so that two links to the same place compare equal
// without touching the referent.
func Fingerprint(path string) (uint64, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return 0, err
		}
		return xxh3.HashString(target), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxh3.New()
	buf := make([]byte, fingerprintChunk)
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return 0, readErr
		}
	}
	return h.Sum64(), nil
}
