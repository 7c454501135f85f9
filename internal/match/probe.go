package match

import (
	"io"
	"os"
	"unicode/utf8"

	"diffscope/internal/model"
)

const probeSize = 8 * 1024

// contentStatus resolves a same-size, different-fingerprint file pair.
// Both sides text or both binary is a plain modification; disagreement
// about being text at all, or a read failure during the probe, is a
// conflict.
func contentStatus(leftPath, rightPath string) model.Status {
	leftText, leftErr := probeText(leftPath)
	rightText, rightErr := probeText(rightPath)

	if leftErr != nil || rightErr != nil {
		return model.StatusConflicted
	}
	if leftText != rightText {
		return model.StatusConflicted
	}
	return model.StatusModified
}

// probeText samples the first 8 KiB and applies the binary heuristic: a
// NUL byte or invalid UTF-8 means binary. A rune truncated by the probe
// window is not held against the file.
func probeText(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, probeSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, err
	}
	sample := buf[:n]
	truncated := n == probeSize

	for _, b := range sample {
		if b == 0 {
			return false, nil
		}
	}
	if truncated {
		// Drop up to 3 trailing bytes of a possibly split rune.
		for i := 0; i < utf8.UTFMax-1 && len(sample) > 0; i++ {
			if utf8.Valid(sample) {
				break
			}
			sample = sample[:len(sample)-1]
		}
	}
	return utf8.Valid(sample), nil
}
