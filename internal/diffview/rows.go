package diffview

import "diffscope/internal/model"

type Side int

const (
	SideOld Side = iota
	SideNew
)

type RowKind int

const (
	RowContext RowKind = iota
	RowDelete
	RowAdd
	RowChange
	RowFileHeader
	RowNotice
)

// DiffRow is one visual row of a side-by-side diff. Line numbers are nil
// on the side a row does not touch.
type DiffRow struct {
	Kind    RowKind
	OldLine *int
	NewLine *int
	OldText string
	NewText string
	Path    string
}

// BuildRows flattens a hunk sequence into presentation rows. Replace hunks
// pair their delete and add runs row-by-row, the longer run spilling into
// one-sided rows.
func BuildRows(path string, hunks []model.Hunk) []DiffRow {
	rows := make([]DiffRow, 0, 64)
	rows = append(rows, DiffRow{Kind: RowFileHeader, OldText: "File: " + path, Path: path})

	for _, h := range hunks {
		switch h.Op {
		case model.OpEqual:
			for i, text := range h.LeftLines {
				rows = append(rows, DiffRow{
					Kind:    RowContext,
					OldLine: linePtr(h.LeftStart + i),
					NewLine: linePtr(h.RightStart + i),
					OldText: text,
					NewText: text,
					Path:    path,
				})
			}

		case model.OpDelete:
			for i, text := range h.LeftLines {
				rows = append(rows, DiffRow{
					Kind:    RowDelete,
					OldLine: linePtr(h.LeftStart + i),
					OldText: text,
					Path:    path,
				})
			}

		case model.OpInsert:
			for i, text := range h.RightLines {
				rows = append(rows, DiffRow{
					Kind:    RowAdd,
					NewLine: linePtr(h.RightStart + i),
					NewText: text,
					Path:    path,
				})
			}

		case model.OpReplace:
			rows = append(rows, pairEditRuns(path, h)...)
		}
	}
	return rows
}

func pairEditRuns(path string, h model.Hunk) []DiffRow {
	count := maxInt(len(h.LeftLines), len(h.RightLines))
	out := make([]DiffRow, 0, count)
	for i := 0; i < count; i++ {
		row := DiffRow{Path: path}

		hasDel := i < len(h.LeftLines)
		hasAdd := i < len(h.RightLines)
		if hasDel {
			row.OldLine = linePtr(h.LeftStart + i)
			row.OldText = h.LeftLines[i]
		}
		if hasAdd {
			row.NewLine = linePtr(h.RightStart + i)
			row.NewText = h.RightLines[i]
		}

		switch {
		case hasDel && hasAdd:
			row.Kind = RowChange
		case hasDel:
			row.Kind = RowDelete
		default:
			row.Kind = RowAdd
		}
		out = append(out, row)
	}
	return out
}

// NoticeRows is the degenerate answer for pairs that cannot be
// line-diffed, e.g. binary content.
func NoticeRows(path, notice string) []DiffRow {
	return []DiffRow{
		{Kind: RowFileHeader, OldText: "File: " + path, Path: path},
		{Kind: RowNotice, OldText: notice, NewText: notice, Path: path},
	}
}

func linePtr(n int) *int {
	v := n
	return &v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
