package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"diffscope/internal/clipboard"
	"diffscope/internal/core"
	"diffscope/internal/diffview"
	"diffscope/internal/log"
	"diffscope/internal/model"
	"diffscope/internal/textdiff"
)

type focusPane int

const (
	focusTree focusPane = iota
	focusDiff
)

const treePaneWidthDefault = 40

type treeLoadedMsg struct {
	tree *model.Tree
	err  error
}

type pairLoadedMsg struct {
	path   string
	rows   []diffview.DiffRow
	binary bool
	err    error
}

type copyResultMsg struct {
	err error
}

type alertTickMsg struct{}

// treeEntry is one visible row of the tree pane after collapsing.
type treeEntry struct {
	Path   string
	Name   string
	Depth  int
	IsDir  bool
	Status model.Status
	HasErr bool
}

// Model is the Bubble Tea state container for the app.
type Model struct {
	keys     KeyMap
	focus    focusPane
	comparer *core.Comparer

	width  int
	height int
	ready  bool

	tree       *model.Tree
	collapsed  map[string]bool
	treeCursor int
	treeScroll int
	treePaneW  int

	selectedPath string
	diffRows     []diffview.DiffRow
	diffCursor   int
	oldView      viewport.Model
	newView      viewport.Model
	diffDirty    bool

	helpOpen   bool
	alertMsg   string
	alertUntil time.Time

	loadingTree bool
	loadingDiff bool
	err         error
}

func NewModel(comparer *core.Comparer) Model {
	m := Model{
		keys:      defaultKeyMap(),
		focus:     focusTree,
		comparer:  comparer,
		collapsed: make(map[string]bool),
		treePaneW: treePaneWidthDefault,
		diffDirty: true,
	}
	m.oldView = viewport.New(1, 1)
	m.newView = viewport.New(1, 1)
	m.oldView.SetContent("Select a file to view its diff.")
	m.newView.SetContent("Select a file to view its diff.")
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.compareCmd(), alertTickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizePanes()
		m.diffDirty = true
		m.refreshDiffContent()
		return m, nil

	case treeLoadedMsg:
		m.loadingTree = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.tree = msg.tree
		entries := m.treeEntries()
		if m.treeCursor >= len(entries) {
			m.treeCursor = max(0, len(entries)-1)
		}
		// Reload the open diff after a rescan; its content may have moved.
		if m.selectedPath != "" {
			if node := m.tree.Lookup(m.selectedPath); node != nil && !node.IsDir() {
				m.loadingDiff = true
				return m, m.loadPairCmd(m.selectedPath)
			}
			m.selectedPath = ""
			m.diffRows = nil
			m.diffDirty = true
			m.refreshDiffContent()
		}
		return m, nil

	case pairLoadedMsg:
		m.loadingDiff = false
		if msg.path != m.selectedPath {
			return m, nil
		}
		if msg.err != nil {
			m.diffRows = nil
			m.diffDirty = false
			errText := fmt.Sprintf("Failed to diff %s:\n%v", msg.path, msg.err)
			m.oldView.SetContent(errText)
			m.newView.SetContent(errText)
			return m, nil
		}
		m.diffRows = msg.rows
		m.diffCursor = firstContentRow(m.diffRows)
		m.diffDirty = true
		m.oldView.GotoTop()
		m.newView.GotoTop()
		m.refreshDiffContent()
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.setAlert(fmt.Sprintf("copy failed: %v", msg.err))
		} else {
			m.setAlert("Copied unified diff to clipboard.")
		}
		return m, nil

	case alertTickMsg:
		if m.alertMsg != "" && !m.alertUntil.IsZero() && time.Now().After(m.alertUntil) {
			m.alertMsg = ""
			m.alertUntil = time.Time{}
		}
		return m, alertTickCmd()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Help) {
			m.helpOpen = !m.helpOpen
			return m, nil
		}
		if key.Matches(msg, m.keys.ToggleFocus) {
			if m.focus == focusTree {
				m.focus = focusDiff
			} else {
				m.focus = focusTree
			}
			return m, nil
		}
		if key.Matches(msg, m.keys.Refresh) {
			m.loadingTree = true
			return m, m.compareCmd()
		}
		if key.Matches(msg, m.keys.Copy) {
			if m.selectedPath == "" {
				m.setAlert("No file selected.")
				return m, nil
			}
			return m, m.copyCmd(m.selectedPath)
		}

		if m.focus == focusTree {
			return m.updateTreePane(msg)
		}
		return m.updateDiffPane(msg)
	}

	return m, nil
}

func (m Model) updateTreePane(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.treeEntries()
	if len(entries) == 0 {
		return m, nil
	}
	m.clampTreeCursor(entries)

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.treeCursor > 0 {
			m.treeCursor--
		}
		m.ensureTreeCursorVisible(entries)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.treeCursor < len(entries)-1 {
			m.treeCursor++
		}
		m.ensureTreeCursorVisible(entries)
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.treeCursor = 0
		m.ensureTreeCursorVisible(entries)
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.treeCursor = len(entries) - 1
		m.ensureTreeCursorVisible(entries)
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.treeCursor = min(len(entries)-1, m.treeCursor+m.treePageSize())
		m.ensureTreeCursorVisible(entries)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.treeCursor = max(0, m.treeCursor-m.treePageSize())
		m.ensureTreeCursorVisible(entries)
		return m, nil

	case key.Matches(msg, m.keys.Open):
		entry := entries[m.treeCursor]
		if entry.IsDir {
			m.collapsed[entry.Path] = !m.collapsed[entry.Path]
			m.ensureTreeCursorVisible(m.treeEntries())
			return m, nil
		}
		m.selectedPath = entry.Path
		m.loadingDiff = true
		m.focus = focusDiff
		return m, m.loadPairCmd(entry.Path)
	}

	return m, nil
}

func (m Model) updateDiffPane(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.diffRows) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveDiffCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveDiffCursor(1)
	case key.Matches(msg, m.keys.Top):
		m.diffCursor = firstContentRow(m.diffRows)
		m.diffDirty = true
	case key.Matches(msg, m.keys.Bottom):
		m.diffCursor = len(m.diffRows) - 1
		m.diffDirty = true
	case key.Matches(msg, m.keys.PageDown):
		m.moveDiffCursor(m.oldView.Height)
	case key.Matches(msg, m.keys.PageUp):
		m.moveDiffCursor(-m.oldView.Height)
	}

	m.refreshDiffContent()
	return m, nil
}

func (m *Model) moveDiffCursor(delta int) {
	m.diffCursor += delta
	if m.diffCursor < 0 {
		m.diffCursor = 0
	}
	if m.diffCursor >= len(m.diffRows) {
		m.diffCursor = len(m.diffRows) - 1
	}
	m.diffDirty = true
}

// treeEntries flattens the comparison tree into visible rows, honoring
// collapsed directories.
func (m Model) treeEntries() []treeEntry {
	if m.tree == nil || m.tree.Root == nil {
		return nil
	}
	entries := make([]treeEntry, 0, 64)
	var visit func(n *model.Node, depth int)
	visit = func(n *model.Node, depth int) {
		for _, child := range n.Children {
			entries = append(entries, treeEntry{
				Path:   child.RelPath,
				Name:   child.Name,
				Depth:  depth,
				IsDir:  child.IsDir(),
				Status: child.Status,
				HasErr: child.ScanError() != "",
			})
			if child.IsDir() && !m.collapsed[child.RelPath] {
				visit(child, depth+1)
			}
		}
	}
	visit(m.tree.Root, 0)
	return entries
}

func (m *Model) clampTreeCursor(entries []treeEntry) {
	if len(entries) == 0 {
		m.treeCursor = 0
		return
	}
	if m.treeCursor < 0 {
		m.treeCursor = 0
	}
	if m.treeCursor >= len(entries) {
		m.treeCursor = len(entries) - 1
	}
}

func (m *Model) ensureTreeCursorVisible(entries []treeEntry) {
	m.clampTreeCursor(entries)
	page := m.treePageSize()
	if page < 1 {
		page = 1
	}
	maxScroll := max(0, len(entries)-page)
	if m.treeScroll < 0 {
		m.treeScroll = 0
	}
	if m.treeScroll > maxScroll {
		m.treeScroll = maxScroll
	}
	if m.treeCursor < m.treeScroll {
		m.treeScroll = m.treeCursor
	}
	if m.treeCursor >= m.treeScroll+page {
		m.treeScroll = m.treeCursor - page + 1
	}
}

func (m Model) treePageSize() int {
	// Pane height minus borders, title and summary rows.
	return max(1, m.height-8)
}

func (m *Model) resizePanes() {
	_, rightW := paneWidths(m.width, m.treePaneW, false)
	oldPaneW, newPaneW := splitRightPanes(rightW)
	m.oldView.Width = max(1, oldPaneW)
	m.newView.Width = max(1, newPaneW)
	m.oldView.Height = max(1, m.height-6)
	m.newView.Height = max(1, m.height-6)
	m.diffDirty = true
}

func (m *Model) refreshDiffContent() {
	if !m.diffDirty || len(m.diffRows) == 0 {
		return
	}
	oldLines, newLines := diffview.RenderSplit(m.diffRows, m.oldView.Width, m.newView.Width, m.diffCursor)
	m.oldView.SetContent(strings.Join(oldLines, "\n"))
	m.newView.SetContent(strings.Join(newLines, "\n"))
	m.scrollCursorIntoView()
	m.diffDirty = false
}

func (m *Model) scrollCursorIntoView() {
	top := m.oldView.YOffset
	height := max(1, m.oldView.Height)
	if m.diffCursor < top {
		m.oldView.SetYOffset(m.diffCursor)
	} else if m.diffCursor >= top+height {
		m.oldView.SetYOffset(m.diffCursor - height + 1)
	}
	m.newView.SetYOffset(m.oldView.YOffset)
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	footer := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).
		Render(truncateToWidth(m.helpText(), m.width))
	footerHeight := lipgloss.Height(footer)

	dock := ""
	dockHeight := 0
	if m.alertMsg != "" {
		dock = m.renderAlertDock()
		dockHeight = lipgloss.Height(dock)
	}

	leftW, rightW := paneWidths(m.width, m.treePaneW, false)
	oldPaneW, newPaneW := splitRightPanes(rightW)
	paneContentHeight := max(1, m.height-footerHeight-dockHeight-2)
	m.oldView.Width = max(1, oldPaneW)
	m.newView.Width = max(1, newPaneW)
	m.oldView.Height = max(1, paneContentHeight-2)
	m.newView.Height = max(1, paneContentHeight-2)
	m.refreshDiffContent()

	treePane := m.renderTreePane(leftW, paneContentHeight)
	diffPane := m.renderDiffPanes(oldPaneW, newPaneW, paneContentHeight)
	content := lipgloss.JoinHorizontal(lipgloss.Top, treePane, diffPane)

	body := content
	if dock != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, dock)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}

func (m Model) helpText() string {
	if m.helpOpen {
		return "j/k move · enter open/fold · tab focus · y copy diff · r rescan · g/G top/bottom · ctrl+d/u page · q quit"
	}
	return "? help · q quit"
}

func (m Model) renderTreePane(width, height int) string {
	borderColor := lipgloss.Color("245")
	if m.focus == focusTree {
		borderColor = lipgloss.Color("39")
	}
	paneStyle := lipgloss.NewStyle().
		Width(max(1, width)).
		Height(max(1, height)).
		Border(lipgloss.NormalBorder()).
		BorderForeground(borderColor)

	title := "Comparison"
	if m.loadingTree {
		title += " (scanning...)"
	}

	bodyLines := make([]string, 0, 32)
	bodyLines = append(bodyLines, lipgloss.NewStyle().Bold(true).Render(title))
	bodyLines = append(bodyLines, m.summaryLine(width))
	bodyLines = append(bodyLines, "")

	switch {
	case m.err != nil:
		bodyLines = append(bodyLines, wrapToWidth(fmt.Sprintf("Error: %v", m.err), width)...)
	case m.tree == nil:
		bodyLines = append(bodyLines, "Scanning...")
	default:
		bodyLines = append(bodyLines, m.renderTreeEntries(width)...)
	}

	return paneStyle.Render(strings.Join(bodyLines, "\n"))
}

func (m Model) renderTreeEntries(width int) []string {
	entries := m.treeEntries()
	if len(entries) == 0 {
		return []string{"No entries."}
	}

	cursor := m.treeCursor
	if cursor >= len(entries) {
		cursor = len(entries) - 1
	}
	page := m.treePageSize()
	start := m.treeScroll
	if start > max(0, len(entries)-page) {
		start = max(0, len(entries)-page)
	}
	end := min(len(entries), start+page)

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		entry := entries[i]
		prefix := "  "
		if i == cursor {
			prefix = "> "
		}
		indent := strings.Repeat("  ", entry.Depth)

		var line string
		if entry.IsDir {
			fold := "[-]"
			if m.collapsed[entry.Path] {
				fold = "[+]"
			}
			line = fmt.Sprintf("%s%s%s %s/", prefix, indent, fold, entry.Name)
		} else {
			errMark := " "
			if entry.HasErr {
				errMark = "E"
			}
			line = fmt.Sprintf("%s%s%s%s %s", prefix, indent, entry.Status.Icon(), errMark, entry.Name)
		}

		style := lipgloss.NewStyle().Width(width).MaxWidth(width)
		if !entry.IsDir {
			style = style.Foreground(statusColor(entry.Status))
		} else {
			style = style.Foreground(lipgloss.Color("244"))
		}
		if entry.HasErr {
			style = style.Foreground(lipgloss.Color("203"))
		}
		if i == cursor {
			style = style.Foreground(lipgloss.Color("39")).Bold(true)
		}
		lines = append(lines, style.Render(line))
	}
	return lines
}

func (m Model) summaryLine(width int) string {
	if m.tree == nil {
		return ""
	}
	text := fmt.Sprintf("%d files  +%d -%d ~%d !%d",
		m.tree.TotalFiles, m.tree.Added, m.tree.Removed, m.tree.Modified, m.tree.Conflicted)
	return lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Render(truncateToWidth(text, width))
}

func (m Model) renderDiffPanes(oldWidth, newWidth, height int) string {
	oldPane := m.renderDiffSidePane(oldWidth, height, "OLD", m.oldView.View(), false)
	newPane := m.renderDiffSidePane(newWidth, height, "NEW", m.newView.View(), true)
	return lipgloss.JoinHorizontal(lipgloss.Top, oldPane, newPane)
}

func (m Model) renderDiffSidePane(width, height int, label, body string, withRightBorder bool) string {
	borderColor := lipgloss.Color("245")
	if m.focus == focusDiff {
		borderColor = lipgloss.Color("39")
	}

	border := lipgloss.NormalBorder()
	style := lipgloss.NewStyle().
		Width(max(1, width)).
		Height(max(1, height)).
		Border(border, true, withRightBorder, true, true).
		BorderForeground(borderColor)

	title := label
	if m.selectedPath != "" {
		title = fmt.Sprintf("%s %s", label, m.selectedPath)
	}
	if m.loadingDiff {
		title += " (loading...)"
	}
	titleLine := lipgloss.NewStyle().Bold(true).Render(truncateToWidth(title, max(1, width)))

	return style.Render(titleLine + "\n" + body)
}

func (m Model) renderAlertDock() string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true).
		Render(truncateToWidth(m.alertMsg, m.width))
}

func (m *Model) setAlert(text string) {
	m.alertMsg = text
	m.alertUntil = time.Now().Add(4 * time.Second)
}

func (m Model) compareCmd() tea.Cmd {
	comparer := m.comparer
	return func() tea.Msg {
		tree, err := comparer.Compare(context.Background())
		return treeLoadedMsg{tree: tree, err: err}
	}
}

func (m Model) loadPairCmd(path string) tea.Cmd {
	comparer := m.comparer
	return func() tea.Msg {
		pair, err := comparer.FilePair(context.Background(), path)
		if err != nil {
			return pairLoadedMsg{path: path, err: err}
		}
		if pair.Binary {
			return pairLoadedMsg{
				path:   path,
				binary: true,
				rows:   diffview.NoticeRows(path, "Binary files differ."),
			}
		}
		return pairLoadedMsg{path: path, rows: diffview.BuildRows(path, pair.Hunks)}
	}
}

func (m Model) copyCmd(path string) tea.Cmd {
	comparer := m.comparer
	return func() tea.Msg {
		hunks, err := comparer.Hunks(context.Background(), path)
		if err != nil {
			if errors.Is(err, textdiff.ErrBinaryContent) {
				return copyResultMsg{err: fmt.Errorf("binary content has no text diff")}
			}
			return copyResultMsg{err: err}
		}
		text, err := diffview.ToUnified(path, hunks)
		if err != nil {
			return copyResultMsg{err: err}
		}
		if strings.TrimSpace(text) == "" {
			return copyResultMsg{err: fmt.Errorf("no changes to copy")}
		}
		err = clipboard.CopyText(context.Background(), text)
		if err != nil {
			log.Warnf(log.CatUI, "clipboard copy failed: %v", err)
		}
		return copyResultMsg{err: err}
	}
}

func alertTickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(time.Time) tea.Msg {
		return alertTickMsg{}
	})
}

func firstContentRow(rows []diffview.DiffRow) int {
	for i, row := range rows {
		if row.Kind != diffview.RowFileHeader {
			return i
		}
	}
	return 0
}

func statusColor(s model.Status) lipgloss.Color {
	switch s {
	case model.StatusAdded:
		return lipgloss.Color("84")
	case model.StatusRemoved:
		return lipgloss.Color("203")
	case model.StatusModified:
		return lipgloss.Color("214")
	case model.StatusConflicted:
		return lipgloss.Color("176")
	default:
		return lipgloss.Color("252")
	}
}

func truncateToWidth(s string, width int) string {
	return ansi.Truncate(s, max(1, width), "")
}

func wrapToWidth(s string, width int) []string {
	if width < 1 {
		width = 1
	}
	words := strings.Fields(s)
	lines := make([]string, 0, 4)
	current := ""
	for _, w := range words {
		if current == "" {
			current = w
			continue
		}
		if len(current)+1+len(w) > width {
			lines = append(lines, current)
			current = w
			continue
		}
		current += " " + w
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
