// Package match merges two scans into a single ordered comparison tree and
// assigns every node a status.
package match

import (
	"context"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"diffscope/internal/model"
	"diffscope/internal/scan"
)

// Options tune the merge.
type Options struct {
	// FingerprintAlways hashes every same-path file pair whose sizes
	// match, even when modification times match too. The default fast
	// path treats equal size plus equal mtime as unchanged.
	FingerprintAlways bool
	// Workers bounds the fingerprint fan-out. Zero means NumCPU.
	Workers int
	// LeftIsFile and RightIsFile mark roots that are themselves single
	// files. Side paths for such roots resolve to the root itself
	// instead of joining the relative key onto it.
	LeftIsFile  bool
	RightIsFile bool
}

// Match merges the left and right scan results into a DiffTree. It assumes
// both scans are complete; the caller is the barrier. Fingerprinting for
// candidate pairs fans out over a bounded worker pool.
func Match(ctx context.Context, leftRoot, rightRoot string, left, right scan.Result, opts Options) (*model.Tree, error) {
	keys := unionKeys(left, right)

	pairs, err := classifyAll(ctx, leftRoot, rightRoot, left, right, keys, opts)
	if err != nil {
		return nil, err
	}

	tree := &model.Tree{
		LeftPath:  leftRoot,
		RightPath: rightRoot,
		ScannedAt: time.Now().UTC(),
		Root:      buildTree(keys, pairs),
	}
	tree.CountStats()
	return tree, nil
}

type pair struct {
	left   *model.Entry
	right  *model.Entry
	status model.Status
}

func unionKeys(left, right scan.Result) []string {
	seen := make(map[string]struct{}, len(left)+len(right))
	keys := make([]string, 0, len(left)+len(right))
	for k := range left {
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	for k := range right {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func classifyAll(ctx context.Context, leftRoot, rightRoot string, left, right scan.Result, keys []string, opts Options) (map[string]*pair, error) {
	pairs := make(map[string]*pair, len(keys))
	for _, k := range keys {
		p := &pair{}
		if e, ok := left[k]; ok {
			cp := e
			p.left = &cp
		}
		if e, ok := right[k]; ok {
			cp := e
			p.right = &cp
		}
		pairs[k] = p
	}

	if err := fingerprintCandidates(ctx, leftRoot, rightRoot, pairs, opts); err != nil {
		return nil, err
	}

	for _, k := range keys {
		classify(leftRoot, rightRoot, k, pairs[k], opts)
	}
	return pairs, nil
}

// fingerprintCandidates hashes both sides of every file pair whose sizes
// match. Size inequality already proves the content differs, so those
// pairs are never hashed.
func fingerprintCandidates(ctx context.Context, leftRoot, rightRoot string, pairs map[string]*pair, opts Options) error {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for rel, p := range pairs {
		if !needsFingerprint(p, opts) {
			continue
		}
		rel, p := rel, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if fp, err := scan.Fingerprint(sidePath(leftRoot, opts.LeftIsFile, rel)); err != nil {
				p.left.Err = err.Error()
			} else {
				p.left.Fingerprint = fp
			}
			if fp, err := scan.Fingerprint(sidePath(rightRoot, opts.RightIsFile, rel)); err != nil {
				p.right.Err = err.Error()
			} else {
				p.right.Fingerprint = fp
			}
			return nil
		})
	}
	return g.Wait()
}

func needsFingerprint(p *pair, opts Options) bool {
	if p.left == nil || p.right == nil {
		return false
	}
	if p.left.IsDir() || p.right.IsDir() {
		return false
	}
	if p.left.Err != "" || p.right.Err != "" {
		return false
	}
	if p.left.Size != p.right.Size {
		return false
	}
	if !opts.FingerprintAlways && p.left.ModTime.Equal(p.right.ModTime) {
		return false
	}
	return true
}

func classify(leftRoot, rightRoot, rel string, p *pair, opts Options) {
	switch {
	case p.left != nil && p.right == nil:
		p.status = model.StatusRemoved
		return
	case p.left == nil && p.right != nil:
		p.status = model.StatusAdded
		return
	}

	left, right := p.left, p.right

	// Kind mismatch cannot be resolved to modified.
	if left.Kind != right.Kind {
		p.status = model.StatusConflicted
		return
	}

	// Directory status is structural only; child modifications are
	// reported at the leaves.
	if left.IsDir() {
		p.status = model.StatusUnchanged
		return
	}

	if left.Err != "" || right.Err != "" {
		p.status = model.StatusConflicted
		return
	}

	leftPath := sidePath(leftRoot, opts.LeftIsFile, rel)
	rightPath := sidePath(rightRoot, opts.RightIsFile, rel)

	// Differing sizes prove the content differs, but the decode probe
	// still decides between a modification and a text/binary conflict.
	if left.Size != right.Size {
		p.status = contentStatus(leftPath, rightPath)
		return
	}

	if !opts.FingerprintAlways && left.ModTime.Equal(right.ModTime) {
		p.status = model.StatusUnchanged
		return
	}

	if left.Fingerprint == right.Fingerprint {
		p.status = model.StatusUnchanged
		return
	}

	p.status = contentStatus(leftPath, rightPath)
}

// sidePath resolves one side's absolute path for a relative key. A root
// that is itself a single file is the path, whatever the key says.
func sidePath(root string, isFile bool, rel string) string {
	if isFile {
		return root
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}

func buildTree(keys []string, pairs map[string]*pair) *model.Node {
	root := &model.Node{
		RelPath: ".",
		Name:    ".",
		Status:  model.StatusUnchanged,
	}
	nodes := map[string]*model.Node{"": root}

	for _, k := range keys {
		p := pairs[k]
		node := &model.Node{
			RelPath: k,
			Name:    path.Base(k),
			Status:  p.status,
			Left:    p.left,
			Right:   p.right,
		}
		nodes[k] = node

		parent, ok := nodes[parentKey(k)]
		if !ok {
			parent = root
		}
		parent.Children = append(parent.Children, node)
	}

	// Keys were processed in sorted order, but path sorting is not name
	// sorting at every level ("a-b" vs "a/b"), so sort each sibling list.
	for _, n := range nodes {
		sort.Slice(n.Children, func(i, j int) bool {
			return n.Children[i].Name < n.Children[j].Name
		})
	}
	return root
}

func parentKey(k string) string {
	dir := path.Dir(k)
	if dir == "." {
		return ""
	}
	return dir
}
