package textdiff

import (
	"bytes"
	"unicode/utf8"
)

// binaryProbeSize bounds the NUL scan; matches the common git heuristic.
const binaryProbeSize = 8 * 1024

// IsBinary reports whether data should be treated as undiffable binary
// content. Policy: a NUL byte within the first 8 KiB, or content that is
// not valid UTF-8, is binary. Empty content is text.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	probe := data
	if len(probe) > binaryProbeSize {
		probe = probe[:binaryProbeSize]
	}
	if bytes.IndexByte(probe, 0) >= 0 {
		return true
	}
	return !utf8.Valid(data)
}
