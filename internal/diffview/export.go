package diffview

import (
	"strings"

	sgdiff "github.com/sourcegraph/go-diff/diff"

	"diffscope/internal/model"
)

const unifiedContext = 3

type scriptLine struct {
	op      byte // ' ', '-', '+'
	text    string
	oldLine int
	newLine int
}

// ToUnified renders a hunk sequence as a unified diff with three lines of
// context, suitable for clipboard export or piping to other tools.
func ToUnified(relPath string, hunks []model.Hunk) (string, error) {
	script := flattenScript(hunks)
	groups := groupChanges(script)
	if len(groups) == 0 {
		return "", nil
	}

	fd := &sgdiff.FileDiff{
		OrigName: "a/" + relPath,
		NewName:  "b/" + relPath,
	}
	for _, g := range groups {
		fd.Hunks = append(fd.Hunks, buildUnifiedHunk(script[g[0]:g[1]]))
	}

	out, err := sgdiff.PrintFileDiff(fd)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func flattenScript(hunks []model.Hunk) []scriptLine {
	script := make([]scriptLine, 0, 64)
	oldNo := 1
	newNo := 1

	appendRun := func(op byte, lines []string) {
		for _, text := range lines {
			l := scriptLine{op: op, text: text}
			if op != '+' {
				l.oldLine = oldNo
				oldNo++
			}
			if op != '-' {
				l.newLine = newNo
				newNo++
			}
			script = append(script, l)
		}
	}

	for _, h := range hunks {
		switch h.Op {
		case model.OpEqual:
			appendRun(' ', h.LeftLines)
		case model.OpDelete:
			appendRun('-', h.LeftLines)
		case model.OpInsert:
			appendRun('+', h.RightLines)
		case model.OpReplace:
			appendRun('-', h.LeftLines)
			appendRun('+', h.RightLines)
		}
	}
	return script
}

// groupChanges returns half-open index ranges of the script, each covering
// one run of changes plus surrounding context, runs closer than twice the
// context merged together.
func groupChanges(script []scriptLine) [][2]int {
	groups := make([][2]int, 0, 4)
	i := 0
	for i < len(script) {
		if script[i].op == ' ' {
			i++
			continue
		}

		start := i - unifiedContext
		if start < 0 {
			start = 0
		}
		end := i
		for end < len(script) {
			if script[end].op != ' ' {
				end++
				continue
			}
			// Peek ahead: if another change begins within the merge
			// window, keep extending this group.
			j := end
			for j < len(script) && script[j].op == ' ' && j-end < 2*unifiedContext {
				j++
			}
			if j < len(script) && script[j].op != ' ' && j-end < 2*unifiedContext {
				end = j
				continue
			}
			break
		}
		tail := end + unifiedContext
		if tail > len(script) {
			tail = len(script)
		}
		groups = append(groups, [2]int{start, tail})
		i = tail
	}
	return groups
}

func buildUnifiedHunk(lines []scriptLine) *sgdiff.Hunk {
	h := &sgdiff.Hunk{}
	var body strings.Builder
	for idx, l := range lines {
		if l.op != '+' {
			if h.OrigStartLine == 0 {
				h.OrigStartLine = int32(l.oldLine)
			}
			h.OrigLines++
		}
		if l.op != '-' {
			if h.NewStartLine == 0 {
				h.NewStartLine = int32(l.newLine)
			}
			h.NewLines++
		}
		body.WriteByte(l.op)
		body.WriteString(l.text)
		if idx < len(lines)-1 {
			body.WriteByte('\n')
		}
	}
	h.Body = []byte(body.String())
	return h
}
