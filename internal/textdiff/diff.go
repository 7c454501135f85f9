// Package textdiff computes line-level alignments between two text blobs.
// The result is a sequence of hunks that, concatenated in order, exactly
// reconstructs both inputs.
package textdiff

import (
	"errors"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"diffscope/internal/model"
)

// ErrBinaryContent signals that line diffing was refused because at least
// one input is binary. It is a classification, not a failure of the inputs
// themselves.
var ErrBinaryContent = errors.New("binary content cannot be line-diffed")

// SplitLines splits text into lines on "\n" boundaries. A trailing newline
// does not produce a phantom empty final line; a missing trailing newline
// still keeps the last line. Empty input has no lines.
func SplitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	lines := strings.Split(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Diff aligns two text blobs line-by-line and returns the hunk sequence.
// It refuses binary input with ErrBinaryContent. Adjacent delete+insert
// runs are coalesced into a single Replace hunk. The output is
// deterministic for identical inputs.
func Diff(left, right []byte) ([]model.Hunk, error) {
	if IsBinary(left) || IsBinary(right) {
		return nil, ErrBinaryContent
	}

	leftLines := SplitLines(left)
	rightLines := SplitLines(right)

	switch {
	case len(leftLines) == 0 && len(rightLines) == 0:
		return nil, nil
	case len(leftLines) == 0:
		return []model.Hunk{insertHunk(1, rightLines)}, nil
	case len(rightLines) == 0:
		return []model.Hunk{deleteHunk(1, leftLines)}, nil
	}

	dmp := diffmatchpatch.New()
	lc, rc, lineTable := dmp.DiffLinesToChars(string(left), string(right))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(lc, rc, false), lineTable)

	return hunksFromDiffs(diffs), nil
}

func hunksFromDiffs(diffs []diffmatchpatch.Diff) []model.Hunk {
	hunks := make([]model.Hunk, 0, len(diffs))
	leftNo := 1
	rightNo := 1

	for i := 0; i < len(diffs); i++ {
		d := diffs[i]
		lines := SplitLines([]byte(d.Text))
		if len(lines) == 0 {
			continue
		}

		switch d.Type {
		case diffmatchpatch.DiffEqual:
			hunks = append(hunks, model.Hunk{
				Op:         model.OpEqual,
				LeftStart:  leftNo,
				LeftEnd:    leftNo + len(lines) - 1,
				RightStart: rightNo,
				RightEnd:   rightNo + len(lines) - 1,
				LeftLines:  lines,
				RightLines: lines,
			})
			leftNo += len(lines)
			rightNo += len(lines)

		case diffmatchpatch.DiffDelete:
			// A delete immediately followed by an insert is one Replace.
			if i+1 < len(diffs) && diffs[i+1].Type == diffmatchpatch.DiffInsert {
				added := SplitLines([]byte(diffs[i+1].Text))
				if len(added) > 0 {
					hunks = append(hunks, model.Hunk{
						Op:         model.OpReplace,
						LeftStart:  leftNo,
						LeftEnd:    leftNo + len(lines) - 1,
						RightStart: rightNo,
						RightEnd:   rightNo + len(added) - 1,
						LeftLines:  lines,
						RightLines: added,
					})
					leftNo += len(lines)
					rightNo += len(added)
					i++
					continue
				}
			}
			hunks = append(hunks, deleteHunk(leftNo, lines))
			leftNo += len(lines)

		case diffmatchpatch.DiffInsert:
			h := insertHunk(rightNo, lines)
			hunks = append(hunks, h)
			rightNo += len(lines)
		}
	}

	return hunks
}

func insertHunk(rightStart int, lines []string) model.Hunk {
	return model.Hunk{
		Op:         model.OpInsert,
		RightStart: rightStart,
		RightEnd:   rightStart + len(lines) - 1,
		RightLines: lines,
	}
}

func deleteHunk(leftStart int, lines []string) model.Hunk {
	return model.Hunk{
		Op:        model.OpDelete,
		LeftStart: leftStart,
		LeftEnd:   leftStart + len(lines) - 1,
		LeftLines: lines,
	}
}
