package diffview

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

type syntaxClass int

const (
	syntaxClassKeyword syntaxClass = iota
	syntaxClassString
	syntaxClassComment
	syntaxClassNumber
)

type syntaxRange struct {
	start int // rune offset, inclusive
	end   int // rune offset, exclusive
	class syntaxClass
}

// syntaxRangesForPath tokenizes one line with the chroma lexer matched by
// filename and reports the rune ranges worth coloring. Unknown file types
// get no ranges; rendering falls back to plain text.
func syntaxRangesForPath(path, text string) []syntaxRange {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lexer := lexers.Match(path)
	if lexer == nil {
		return nil
	}

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return nil
	}

	ranges := make([]syntaxRange, 0, 8)
	offset := 0
	for _, token := range iterator.Tokens() {
		runeLen := len([]rune(token.Value))
		if class, ok := classForToken(token.Type); ok {
			ranges = append(ranges, syntaxRange{start: offset, end: offset + runeLen, class: class})
		}
		offset += runeLen
	}
	return ranges
}

func classForToken(t chroma.TokenType) (syntaxClass, bool) {
	switch {
	case t.InCategory(chroma.Keyword):
		return syntaxClassKeyword, true
	case t.InCategory(chroma.LiteralString):
		return syntaxClassString, true
	case t.InCategory(chroma.Comment):
		return syntaxClassComment, true
	case t.InCategory(chroma.LiteralNumber):
		return syntaxClassNumber, true
	default:
		return 0, false
	}
}
