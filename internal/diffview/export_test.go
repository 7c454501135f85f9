package diffview

import (
	"strings"
	"testing"

	"diffscope/internal/model"
)

func TestToUnifiedNoChanges(t *testing.T) {
	hunks := []model.Hunk{{
		Op:         model.OpEqual,
		LeftStart:  1,
		LeftEnd:    2,
		RightStart: 1,
		RightEnd:   2,
		LeftLines:  []string{"a", "b"},
		RightLines: []string{"a", "b"},
	}}
	out, err := ToUnified("f.txt", hunks)
	if err != nil {
		t.Fatalf("ToUnified: %v", err)
	}
	if out != "" {
		t.Fatalf("identical content should render empty, got %q", out)
	}
}

func TestToUnifiedSimpleReplace(t *testing.T) {
	hunks := []model.Hunk{
		{
			Op: model.OpEqual, LeftStart: 1, LeftEnd: 1, RightStart: 1, RightEnd: 1,
			LeftLines: []string{"context before"}, RightLines: []string{"context before"},
		},
		{
			Op: model.OpReplace, LeftStart: 2, LeftEnd: 2, RightStart: 2, RightEnd: 2,
			LeftLines: []string{"old line"}, RightLines: []string{"new line"},
		},
		{
			Op: model.OpEqual, LeftStart: 3, LeftEnd: 3, RightStart: 3, RightEnd: 3,
			LeftLines: []string{"context after"}, RightLines: []string{"context after"},
		},
	}

	out, err := ToUnified("dir/f.txt", hunks)
	if err != nil {
		t.Fatalf("ToUnified: %v", err)
	}

	for _, want := range []string{
		"--- a/dir/f.txt",
		"+++ b/dir/f.txt",
		"@@ -1,3 +1,3 @@",
		"-old line",
		"+new line",
		" context before",
		" context after",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestToUnifiedContextIsTrimmed(t *testing.T) {
	// Ten context lines around one change: only three on each side survive.
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "ctx"
	}
	hunks := []model.Hunk{
		{Op: model.OpEqual, LeftStart: 1, LeftEnd: 10, RightStart: 1, RightEnd: 10,
			LeftLines: lines, RightLines: lines},
		{Op: model.OpInsert, RightStart: 11, RightEnd: 11, RightLines: []string{"added"}},
	}

	out, err := ToUnified("f", hunks)
	if err != nil {
		t.Fatalf("ToUnified: %v", err)
	}
	if got := strings.Count(out, " ctx"); got != 3 {
		t.Fatalf("got %d context lines, want 3:\n%s", got, out)
	}
	if !strings.Contains(out, "@@ -8,3 +8,4 @@") {
		t.Fatalf("unexpected hunk header:\n%s", out)
	}
}

func TestToUnifiedMergesNearbyChanges(t *testing.T) {
	ctx := func(n, start int) model.Hunk {
		lines := make([]string, n)
		for i := range lines {
			lines[i] = "ctx"
		}
		return model.Hunk{
			Op: model.OpEqual,
			LeftStart: start, LeftEnd: start + n - 1,
			RightStart: start, RightEnd: start + n - 1,
			LeftLines: lines, RightLines: lines,
		}
	}
	hunks := []model.Hunk{
		{Op: model.OpReplace, LeftStart: 1, LeftEnd: 1, RightStart: 1, RightEnd: 1,
			LeftLines: []string{"a"}, RightLines: []string{"A"}},
		ctx(4, 2),
		{Op: model.OpReplace, LeftStart: 6, LeftEnd: 6, RightStart: 6, RightEnd: 6,
			LeftLines: []string{"b"}, RightLines: []string{"B"}},
	}

	out, err := ToUnified("f", hunks)
	if err != nil {
		t.Fatalf("ToUnified: %v", err)
	}
	// Changes four lines apart share one hunk.
	if got := strings.Count(out, "@@"); got != 2 {
		t.Fatalf("got %d @@ markers (one header has two), output:\n%s", got, out)
	}
}

func TestToUnifiedSeparatesDistantChanges(t *testing.T) {
	ctx := func(n, start int) model.Hunk {
		lines := make([]string, n)
		for i := range lines {
			lines[i] = "ctx"
		}
		return model.Hunk{
			Op: model.OpEqual,
			LeftStart: start, LeftEnd: start + n - 1,
			RightStart: start, RightEnd: start + n - 1,
			LeftLines: lines, RightLines: lines,
		}
	}
	hunks := []model.Hunk{
		{Op: model.OpReplace, LeftStart: 1, LeftEnd: 1, RightStart: 1, RightEnd: 1,
			LeftLines: []string{"a"}, RightLines: []string{"A"}},
		ctx(20, 2),
		{Op: model.OpReplace, LeftStart: 22, LeftEnd: 22, RightStart: 22, RightEnd: 22,
			LeftLines: []string{"b"}, RightLines: []string{"B"}},
	}

	out, err := ToUnified("f", hunks)
	if err != nil {
		t.Fatalf("ToUnified: %v", err)
	}
	if got := strings.Count(out, "@@"); got != 4 {
		t.Fatalf("distant changes should produce two hunks, output:\n%s", out)
	}
}
