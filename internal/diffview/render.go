package diffview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	styleNotice  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleDelete  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	styleAdd     = lipgloss.NewStyle().Foreground(lipgloss.Color("84"))
	styleLineNum = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	styleCursor  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)

	styleKeyword   = lipgloss.NewStyle().Foreground(lipgloss.Color("176"))
	styleString    = lipgloss.NewStyle().Foreground(lipgloss.Color("150"))
	styleComment   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleNumberLit = lipgloss.NewStyle().Foreground(lipgloss.Color("215"))
)

// RenderSplit renders rows into aligned old-side and new-side lines, one
// visual line per row on each side, each exactly the given width.
func RenderSplit(rows []DiffRow, oldWidth, newWidth, cursor int) ([]string, []string) {
	if oldWidth <= 0 {
		oldWidth = 1
	}
	if newWidth <= 0 {
		newWidth = 1
	}

	maxOld := 0
	maxNew := 0
	for _, row := range rows {
		if row.OldLine != nil && *row.OldLine > maxOld {
			maxOld = *row.OldLine
		}
		if row.NewLine != nil && *row.NewLine > maxNew {
			maxNew = *row.NewLine
		}
	}
	oldNumW := maxInt(3, digits(maxOld))
	newNumW := maxInt(3, digits(maxNew))

	oldLines := make([]string, 0, len(rows))
	newLines := make([]string, 0, len(rows))
	for i, row := range rows {
		oldLines = append(oldLines, renderRowForSide(row, SideOld, oldWidth, oldNumW, i == cursor))
		newLines = append(newLines, renderRowForSide(row, SideNew, newWidth, newNumW, i == cursor))
	}
	return oldLines, newLines
}

func renderRowForSide(row DiffRow, side Side, width, numW int, isCursor bool) string {
	prefix := "  "
	if isCursor {
		prefix = styleCursor.Render("▸") + " "
	}
	lineWidth := maxInt(1, width-2)

	switch row.Kind {
	case RowFileHeader:
		header := row.OldText
		return prefix + fitToWidth(styleHeader.Render(header), lineWidth)
	case RowNotice:
		return prefix + fitToWidth(styleNotice.Render(row.OldText), lineWidth)
	}

	lineNo, text, marker, ok := sideContent(row, side)
	if !ok {
		return prefix + strings.Repeat(" ", lineWidth)
	}
	text = strings.ReplaceAll(text, "\t", "    ")

	markerStyled := string(marker)
	textStyled := highlightLine(row.Path, text)
	switch marker {
	case '-':
		markerStyled = styleDelete.Render("-")
		textStyled = styleDelete.Render(text)
	case '+':
		markerStyled = styleAdd.Render("+")
		textStyled = styleAdd.Render(text)
	}

	num := styleLineNum.Render(fmt.Sprintf("%*d", numW, *lineNo))
	base := markerStyled + " " + num + " " + textStyled
	return prefix + fitToWidth(base, lineWidth)
}

func sideContent(row DiffRow, side Side) (*int, string, rune, bool) {
	switch side {
	case SideOld:
		if row.OldLine == nil {
			return nil, "", ' ', false
		}
		marker := ' '
		if row.Kind == RowDelete || row.Kind == RowChange {
			marker = '-'
		}
		return row.OldLine, row.OldText, marker, true

	case SideNew:
		if row.NewLine == nil {
			return nil, "", ' ', false
		}
		marker := ' '
		if row.Kind == RowAdd || row.Kind == RowChange {
			marker = '+'
		}
		return row.NewLine, row.NewText, marker, true
	}

	return nil, "", ' ', false
}

// highlightLine colors a context line with the chroma classes for its
// file type. Callers expand tabs first so widths stay stable.
func highlightLine(path, text string) string {
	ranges := syntaxRangesForPath(path, text)
	if len(ranges) == 0 {
		return text
	}

	runes := []rune(text)
	var b strings.Builder
	pos := 0
	for _, r := range ranges {
		if r.start > len(runes) {
			break
		}
		if r.start > pos {
			b.WriteString(string(runes[pos:r.start]))
		}
		end := r.end
		if end > len(runes) {
			end = len(runes)
		}
		b.WriteString(styleForClass(r.class).Render(string(runes[r.start:end])))
		pos = end
	}
	if pos < len(runes) {
		b.WriteString(string(runes[pos:]))
	}
	return b.String()
}

func styleForClass(c syntaxClass) lipgloss.Style {
	switch c {
	case syntaxClassKeyword:
		return styleKeyword
	case syntaxClassString:
		return styleString
	case syntaxClassComment:
		return styleComment
	case syntaxClassNumber:
		return styleNumberLit
	default:
		return lipgloss.NewStyle()
	}
}

// fitToWidth truncates or pads a possibly styled string to an exact
// visual width.
func fitToWidth(s string, width int) string {
	s = ansi.Truncate(s, width, "")
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func digits(n int) int {
	if n <= 0 {
		return 1
	}
	d := 0
	for n > 0 {
		d++
		n /= 10
	}
	return d
}
