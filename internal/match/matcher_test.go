package match

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diffscope/internal/model"
	"diffscope/internal/scan"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeBytes(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func scanRoot(t *testing.T, root string) scan.Result {
	t.Helper()
	result, err := scan.Scan(context.Background(), root, nil)
	require.NoError(t, err)
	return result
}

func matchRoots(t *testing.T, leftRoot, rightRoot string, opts Options) *model.Tree {
	t.Helper()
	left := scanRoot(t, leftRoot)
	right := scanRoot(t, rightRoot)
	tree, err := Match(context.Background(), leftRoot, rightRoot, left, right, opts)
	require.NoError(t, err)
	return tree
}

func statusOf(t *testing.T, tree *model.Tree, rel string) model.Status {
	t.Helper()
	node := tree.Lookup(rel)
	require.NotNil(t, node, "node %q missing from tree", rel)
	return node.Status
}

func TestMatchDisjointRoots(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, filepath.Join(left, "only-left.txt"), "l\n")
	writeFile(t, filepath.Join(right, "only-right.txt"), "r\n")

	tree := matchRoots(t, left, right, Options{})

	assert.Equal(t, model.StatusRemoved, statusOf(t, tree, "only-left.txt"))
	assert.Equal(t, model.StatusAdded, statusOf(t, tree, "only-right.txt"))
	assert.Equal(t, 2, tree.TotalFiles)
	assert.Equal(t, 1, tree.Added)
	assert.Equal(t, 1, tree.Removed)
	assert.Equal(t, 0, tree.Modified)
}

func TestMatchIdenticalTrees(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	for _, root := range []string{left, right} {
		writeFile(t, filepath.Join(root, "a.txt"), "same\n")
		writeFile(t, filepath.Join(root, "sub", "b.txt"), "also same\n")
	}

	tree := matchRoots(t, left, right, Options{FingerprintAlways: true})

	assert.Equal(t, model.StatusUnchanged, statusOf(t, tree, "a.txt"))
	assert.Equal(t, model.StatusUnchanged, statusOf(t, tree, "sub"))
	assert.Equal(t, model.StatusUnchanged, statusOf(t, tree, "sub/b.txt"))
	assert.Equal(t, 2, tree.TotalFiles)
	assert.Zero(t, tree.Added+tree.Removed+tree.Modified+tree.Conflicted)
}

func TestMatchModifiedBySize(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, filepath.Join(left, "f.txt"), "short\n")
	writeFile(t, filepath.Join(right, "f.txt"), "much longer content\n")

	tree := matchRoots(t, left, right, Options{})
	assert.Equal(t, model.StatusModified, statusOf(t, tree, "f.txt"))
	assert.Equal(t, 1, tree.Modified)
}

func TestMatchSameSizeDifferentContent(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, filepath.Join(left, "f.txt"), "aaaa\n")
	writeFile(t, filepath.Join(right, "f.txt"), "bbbb\n")

	// Force distinct mtimes so the equal-mtime fast path cannot hide the change.
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(left, "f.txt"), old, old))

	tree := matchRoots(t, left, right, Options{})
	assert.Equal(t, model.StatusModified, statusOf(t, tree, "f.txt"))
}

func TestMatchSameSizeSameContentDifferentMtime(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, filepath.Join(left, "f.txt"), "stable\n")
	writeFile(t, filepath.Join(right, "f.txt"), "stable\n")

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(left, "f.txt"), old, old))

	// Fingerprints agree, so the pair resolves to unchanged.
	tree := matchRoots(t, left, right, Options{})
	assert.Equal(t, model.StatusUnchanged, statusOf(t, tree, "f.txt"))
}

func TestMatchZeroByteFiles(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, filepath.Join(left, "empty.txt"), "")
	writeFile(t, filepath.Join(right, "empty.txt"), "")
	writeFile(t, filepath.Join(right, "grown.txt"), "now has content\n")
	writeFile(t, filepath.Join(left, "grown.txt"), "")

	tree := matchRoots(t, left, right, Options{FingerprintAlways: true})
	assert.Equal(t, model.StatusUnchanged, statusOf(t, tree, "empty.txt"))
	assert.Equal(t, model.StatusModified, statusOf(t, tree, "grown.txt"))
}

func TestMatchKindMismatchConflicts(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, filepath.Join(left, "thing"), "a file\n")
	writeFile(t, filepath.Join(right, "thing", "child.txt"), "a dir\n")

	tree := matchRoots(t, left, right, Options{})

	assert.Equal(t, model.StatusConflicted, statusOf(t, tree, "thing"))
	// The directory's children still show up as added.
	assert.Equal(t, model.StatusAdded, statusOf(t, tree, "thing/child.txt"))
	assert.Equal(t, 1, tree.Conflicted)
}

func TestMatchRemovedSubtree(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, filepath.Join(left, "docs", "a.md"), "a\n")
	writeFile(t, filepath.Join(left, "docs", "deep", "b.md"), "b\n")
	writeFile(t, filepath.Join(left, "keep.txt"), "k\n")
	writeFile(t, filepath.Join(right, "keep.txt"), "k\n")

	tree := matchRoots(t, left, right, Options{FingerprintAlways: true})

	assert.Equal(t, model.StatusRemoved, statusOf(t, tree, "docs"))
	assert.Equal(t, model.StatusRemoved, statusOf(t, tree, "docs/a.md"))
	assert.Equal(t, model.StatusRemoved, statusOf(t, tree, "docs/deep/b.md"))
	assert.Equal(t, model.StatusUnchanged, statusOf(t, tree, "keep.txt"))
	assert.Equal(t, 2, tree.Removed, "directories do not count toward file stats")
}

func TestMatchTreeShapeAndOrdering(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, filepath.Join(left, "b.txt"), "b\n")
	writeFile(t, filepath.Join(right, "a.txt"), "a\n")
	writeFile(t, filepath.Join(right, "sub", "c.txt"), "c\n")

	tree := matchRoots(t, left, right, Options{})

	require.NotNil(t, tree.Root)
	names := make([]string, 0, len(tree.Root.Children))
	for _, child := range tree.Root.Children {
		names = append(names, child.Name)
	}
	assert.Equal(t, []string{"a.txt", "b.txt", "sub"}, names)

	sub := tree.Lookup("sub")
	require.NotNil(t, sub)
	require.Len(t, sub.Children, 1)
	assert.Equal(t, "sub/c.txt", sub.Children[0].RelPath)
}

func TestMatchIdempotent(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, filepath.Join(left, "a.txt"), "one\n")
	writeFile(t, filepath.Join(left, "b.txt"), "two\n")
	writeFile(t, filepath.Join(right, "b.txt"), "two two\n")
	writeFile(t, filepath.Join(right, "c.txt"), "three\n")

	first := matchRoots(t, left, right, Options{})
	second := matchRoots(t, left, right, Options{})

	var firstStatuses, secondStatuses []string
	first.Walk(func(n *model.Node) {
		firstStatuses = append(firstStatuses, n.RelPath+"="+n.Status.String())
	})
	second.Walk(func(n *model.Node) {
		secondStatuses = append(secondStatuses, n.RelPath+"="+n.Status.String())
	})
	assert.Equal(t, firstStatuses, secondStatuses)
}

func TestMatchSingleFileRootsSameSize(t *testing.T) {
	dir := t.TempDir()
	leftFile := filepath.Join(dir, "a", "f.txt")
	rightFile := filepath.Join(dir, "b", "f.txt")
	writeFile(t, leftFile, "equal\n")
	writeFile(t, rightFile, "equal\n")

	// Distinct mtimes force fingerprinting, which must hash the root
	// files directly rather than joining the key onto them.
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(leftFile, old, old))

	left := scanRoot(t, leftFile)
	right := scanRoot(t, rightFile)
	tree, err := Match(context.Background(), leftFile, rightFile, left, right,
		Options{LeftIsFile: true, RightIsFile: true})
	require.NoError(t, err)

	node := tree.Lookup("f.txt")
	require.NotNil(t, node)
	assert.Empty(t, node.ScanError(), "file roots must not produce side-path errors")
	assert.Equal(t, model.StatusUnchanged, node.Status)
}

func TestMatchSingleFileRootsSameSizeDifferentContent(t *testing.T) {
	dir := t.TempDir()
	leftFile := filepath.Join(dir, "a", "f.txt")
	rightFile := filepath.Join(dir, "b", "f.txt")
	writeFile(t, leftFile, "xxxx\n")
	writeFile(t, rightFile, "yyyy\n")

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(leftFile, old, old))

	left := scanRoot(t, leftFile)
	right := scanRoot(t, rightFile)
	tree, err := Match(context.Background(), leftFile, rightFile, left, right,
		Options{LeftIsFile: true, RightIsFile: true})
	require.NoError(t, err)

	node := tree.Lookup("f.txt")
	require.NotNil(t, node)
	assert.Empty(t, node.ScanError())
	assert.Equal(t, model.StatusModified, node.Status)
}

func TestMatchDecodeInconsistencyDifferentSizes(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, filepath.Join(left, "f.dat"), "plain text content\n")
	writeBytes(t, filepath.Join(right, "f.dat"), []byte{0x00, 0x01, 0x02})

	tree := matchRoots(t, left, right, Options{})
	assert.Equal(t, model.StatusConflicted, statusOf(t, tree, "f.dat"))
	assert.Equal(t, 1, tree.Conflicted)
}

func TestMatchDecodeInconsistencySameSize(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, filepath.Join(left, "f.dat"), "abcd\n")
	writeBytes(t, filepath.Join(right, "f.dat"), []byte{0x00, 0x01, 0x02, 0x03, 0x04})

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(left, "f.dat"), old, old))

	tree := matchRoots(t, left, right, Options{})
	assert.Equal(t, model.StatusConflicted, statusOf(t, tree, "f.dat"))
}

func TestMatchBothBinaryDifferentSizes(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	writeBytes(t, filepath.Join(left, "f.bin"), []byte{0x00, 0x01})
	writeBytes(t, filepath.Join(right, "f.bin"), []byte{0x00, 0x01, 0x02, 0x03})

	// Binary on both sides is an ordinary modification, not a conflict.
	tree := matchRoots(t, left, right, Options{})
	assert.Equal(t, model.StatusModified, statusOf(t, tree, "f.bin"))
}

func TestMatchCancelledContext(t *testing.T) {
	left := t.TempDir()
	right := t.TempDir()
	writeFile(t, filepath.Join(left, "f.txt"), "x\n")
	writeFile(t, filepath.Join(right, "f.txt"), "y\n")

	leftResult := scanRoot(t, left)
	rightResult := scanRoot(t, right)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Match(ctx, left, right, leftResult, rightResult, Options{FingerprintAlways: true})
	assert.ErrorIs(t, err, context.Canceled)
}
