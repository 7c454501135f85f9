// Package core orchestrates the comparison pipeline: two independent
// scans, a merge barrier, and lazy per-file line diffing.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"diffscope/internal/log"
	"diffscope/internal/match"
	"diffscope/internal/model"
	"diffscope/internal/scan"
	"diffscope/internal/textdiff"
)

// ErrUnknownPath is returned when a file pair is requested for a relative
// path that is not in the comparison tree.
var ErrUnknownPath = errors.New("path not present in comparison")

// ErrKindConflict is returned when a line diff is requested for a node
// that is a file on one side and a directory on the other. Like binary
// content, it is a classification, not a read failure.
var ErrKindConflict = errors.New("kind conflict has no line diff")

// Options configure one Comparer.
type Options struct {
	// IgnorePatterns are gitignore-syntax patterns applied to both roots,
	// in addition to each root's own .gitignore.
	IgnorePatterns []string
	// FingerprintAlways disables the size+mtime fast path.
	FingerprintAlways bool
	// Workers bounds fingerprint parallelism. Zero means NumCPU.
	Workers int
}

// Comparer compares two roots. One Comparer serves one left/right pair and
// is safe for concurrent use once Compare has run; the tree it builds is
// immutable and the pair cache is concurrency-safe.
type Comparer struct {
	leftPath  string
	rightPath string
	opts      Options

	mu          sync.Mutex
	tree        *model.Tree
	leftIsFile  bool
	rightIsFile bool

	// Hunk results are memoized per session, never persisted.
	pairs *gocache.Cache
}

func New(leftPath, rightPath string, opts Options) *Comparer {
	return &Comparer{
		leftPath:  leftPath,
		rightPath: rightPath,
		opts:      opts,
		pairs:     gocache.New(10*time.Minute, 15*time.Minute),
	}
}

// Compare scans both roots concurrently, waits for both to finish, and
// merges them into a DiffTree. Root-level failures abort with no partial
// result. The returned tree is read-only.
func (c *Comparer) Compare(ctx context.Context) (*model.Tree, error) {
	start := time.Now()

	leftRules := scan.CompileRulesForRoot(c.leftPath, c.opts.IgnorePatterns)
	rightRules := scan.CompileRulesForRoot(c.rightPath, c.opts.IgnorePatterns)

	var leftResult, rightResult scan.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leftResult, err = scan.Scan(gctx, c.leftPath, leftRules)
		return err
	})
	g.Go(func() error {
		var err error
		rightResult, err = scan.Scan(gctx, c.rightPath, rightRules)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.alignSingleFiles(leftResult, rightResult)

	tree, err := match.Match(ctx, c.leftPath, c.rightPath, leftResult, rightResult, match.Options{
		FingerprintAlways: c.opts.FingerprintAlways,
		Workers:           c.opts.Workers,
		LeftIsFile:        c.leftIsFile,
		RightIsFile:       c.rightIsFile,
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.tree = tree
	c.mu.Unlock()
	c.pairs.Flush()

	log.Infof(log.CatMatch, "compared %d files in %s (%d added, %d removed, %d modified, %d conflicted)",
		tree.TotalFiles, time.Since(start).Round(time.Millisecond),
		tree.Added, tree.Removed, tree.Modified, tree.Conflicted)
	return tree, nil
}

// Tree returns the most recent comparison, running one if needed.
func (c *Comparer) Tree(ctx context.Context) (*model.Tree, error) {
	c.mu.Lock()
	tree := c.tree
	c.mu.Unlock()
	if tree != nil {
		return tree, nil
	}
	return c.Compare(ctx)
}

// alignSingleFiles rekeys a file-vs-file comparison onto a shared key so
// two differently named files still pair up instead of reporting one
// removal and one addition.
func (c *Comparer) alignSingleFiles(left, right scan.Result) {
	c.leftIsFile = isSingleFile(c.leftPath, left)
	c.rightIsFile = isSingleFile(c.rightPath, right)
	if !c.leftIsFile || !c.rightIsFile {
		return
	}

	leftKey := soleKey(left)
	rightKey := soleKey(right)
	if leftKey == "" || rightKey == "" || leftKey == rightKey {
		return
	}
	entry := right[rightKey]
	entry.RelPath = leftKey
	delete(right, rightKey)
	right[leftKey] = entry
}

// FilePair returns the lazily computed line-level comparison for one file
// node. Results are memoized for the session. Binary pairs carry no hunks;
// Hunks is the strict accessor that refuses them.
func (c *Comparer) FilePair(ctx context.Context, relPath string) (*model.FilePair, error) {
	if cached, ok := c.pairs.Get(relPath); ok {
		return cached.(*model.FilePair), nil
	}

	tree, err := c.Tree(ctx)
	if err != nil {
		return nil, err
	}
	node := tree.Lookup(relPath)
	if node == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPath, relPath)
	}
	if node.Left != nil && node.Right != nil && node.Left.Kind != node.Right.Kind {
		return nil, fmt.Errorf("%s: %w", relPath, ErrKindConflict)
	}
	if node.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnknownPath, relPath)
	}

	pair, err := c.buildPair(node)
	if err != nil {
		return nil, err
	}
	c.pairs.SetDefault(relPath, pair)
	log.Debugf(log.CatDiff, "diffed %s: %d hunks (binary=%v)", relPath, len(pair.Hunks), pair.Binary)
	return pair, nil
}

// Hunks returns the hunk sequence for a file pair, failing with
// ErrBinaryContent instead of producing hunks for binary content.
func (c *Comparer) Hunks(ctx context.Context, relPath string) ([]model.Hunk, error) {
	pair, err := c.FilePair(ctx, relPath)
	if err != nil {
		return nil, err
	}
	if pair.Binary {
		return nil, fmt.Errorf("%s: %w", relPath, textdiff.ErrBinaryContent)
	}
	return pair.Hunks, nil
}

func (c *Comparer) buildPair(node *model.Node) (*model.FilePair, error) {
	var left, right []byte
	if node.Left != nil {
		data, err := os.ReadFile(c.sidePath(c.leftPath, c.leftIsFile, node.RelPath))
		if err != nil {
			return nil, fmt.Errorf("read left %s: %w", node.RelPath, err)
		}
		left = data
	}
	if node.Right != nil {
		data, err := os.ReadFile(c.sidePath(c.rightPath, c.rightIsFile, node.RelPath))
		if err != nil {
			return nil, fmt.Errorf("read right %s: %w", node.RelPath, err)
		}
		right = data
	}

	pair := &model.FilePair{RelPath: node.RelPath, Status: node.Status}
	if textdiff.IsBinary(left) || textdiff.IsBinary(right) {
		pair.Binary = true
		return pair, nil
	}

	hunks, err := textdiff.Diff(left, right)
	if err != nil {
		return nil, err
	}
	pair.Hunks = hunks
	return pair, nil
}

func (c *Comparer) sidePath(root string, isFile bool, relPath string) string {
	if isFile {
		return root
	}
	return filepath.Join(root, filepath.FromSlash(relPath))
}

func isSingleFile(root string, result scan.Result) bool {
	if len(result) != 1 {
		return false
	}
	info, err := os.Lstat(root)
	return err == nil && !info.IsDir()
}

func soleKey(result scan.Result) string {
	for k := range result {
		return k
	}
	return ""
}
