package scan

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Rules is a compiled gitignore-syntax rule set. It is passed explicitly
// into every scan so that concurrent comparisons cannot interfere through
// shared state. A nil *Rules ignores nothing.
type Rules struct {
	matcher *ignore.GitIgnore
}

// CompileRules builds a rule set from gitignore-style pattern lines.
// Blank lines and comments are dropped the way git drops them.
func CompileRules(patterns []string) *Rules {
	lines := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		lines = append(lines, p)
	}
	if len(lines) == 0 {
		return &Rules{}
	}
	return &Rules{matcher: ignore.CompileIgnoreLines(lines...)}
}

// CompileRulesForRoot combines explicit patterns with the root's own
// .gitignore file, if one exists.
func CompileRulesForRoot(root string, patterns []string) *Rules {
	combined := append([]string(nil), patterns...)
	data, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	if err == nil {
		combined = append(combined, strings.Split(string(data), "\n")...)
	}
	return CompileRules(combined)
}

// Ignores reports whether a slash-separated relative path is excluded.
func (r *Rules) Ignores(relPath string) bool {
	if r == nil || r.matcher == nil {
		return false
	}
	return r.matcher.MatchesPath(relPath)
}
