package model

import "fmt"

// HunkOp tags how one aligned segment relates the two inputs.
type HunkOp int

const (
	OpEqual HunkOp = iota
	OpInsert
	OpDelete
	OpReplace
)

func (op HunkOp) String() string {
	switch op {
	case OpEqual:
		return "equal"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpReplace:
		return "replace"
	default:
		return fmt.Sprintf("op(%d)", int(op))
	}
}

func (op HunkOp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + op.String() + `"`), nil
}

func (op *HunkOp) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"equal"`:
		*op = OpEqual
	case `"insert"`:
		*op = OpInsert
	case `"delete"`:
		*op = OpDelete
	case `"replace"`:
		*op = OpReplace
	default:
		return fmt.Errorf("unknown hunk op %s", string(b))
	}
	return nil
}

// Hunk is one contiguous aligned segment of a line diff. Line numbers are
// 1-indexed and inclusive; an Insert hunk has an empty left range
// (LeftStart = 0) and a Delete hunk an empty right range. Concatenating the
// LeftLines of all hunks in order reconstructs the left input exactly, and
// likewise RightLines for the right input.
type Hunk struct {
	Op         HunkOp   `json:"op"`
	LeftStart  int      `json:"left_start,omitempty"`
	LeftEnd    int      `json:"left_end,omitempty"`
	RightStart int      `json:"right_start,omitempty"`
	RightEnd   int      `json:"right_end,omitempty"`
	LeftLines  []string `json:"left_lines,omitempty"`
	RightLines []string `json:"right_lines,omitempty"`
}

// FilePair is the on-demand line-level answer for one file path. Hunks is
// nil when either side is binary.
type FilePair struct {
	RelPath string `json:"rel_path"`
	Status  Status `json:"status"`
	Binary  bool   `json:"binary"`
	Hunks   []Hunk `json:"hunks,omitempty"`
}
