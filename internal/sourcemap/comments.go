package sourcemap

import (
	"strings"
)

// Comment represents a comment extracted from JavaScript source.
type Comment struct {
	// Line is the 0-based line number where the comment starts.
	Line int

	// EndLine is the 0-based line number where the comment ends.
	// Equal to Line for // comments.
	EndLine int

	// Text is the comment text including its delimiters.
	Text string

	// Block is true for /* ... */ comments.
	Block bool

	// Trailing is true when code precedes the comment on its line.
	Trailing bool

	// IsDirective indicates if this looks like an fnlint directive comment,
	// e.g. `// fnlint-disable-next-line no-let`.
	IsDirective bool
}

// Body returns the comment text without delimiters, trimmed.
func (c Comment) Body() string {
	body := c.Text
	if c.Block {
		body = strings.TrimSuffix(strings.TrimPrefix(body, "/*"), "*/")
	} else {
		body = strings.TrimPrefix(body, "//")
	}
	return strings.TrimSpace(body)
}

// Comments extracts all comments from the source, in source order.
//
// String and template literals are skipped. Regular expression literals
// are not recognized, so a regex containing "//" can be mistaken for a
// comment.
func (sm *SourceMap) Comments() []Comment {
	var comments []Comment
	src := sm.source

	for i := 0; i < len(src); {
		switch c := src[i]; {
		case c == '\'' || c == '"' || c == '`':
			i = skipString(src, i)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			end := i
			for end < len(src) && src[end] != '\n' {
				end++
			}
			comments = append(comments, sm.comment(i, end, false))
			i = end
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := len(src)
			if j := strings.Index(string(src[i+2:]), "*/"); j >= 0 {
				end = i + 2 + j + 2
			}
			comments = append(comments, sm.comment(i, end, true))
			i = end
		default:
			i++
		}
	}
	return comments
}

func (sm *SourceMap) comment(start, end int, block bool) Comment {
	line, col := sm.Position(start)
	endLine, _ := sm.Position(end)
	text := strings.TrimSuffix(string(sm.source[start:end]), "\r")
	c := Comment{
		Line:     line,
		EndLine:  endLine,
		Text:     text,
		Block:    block,
		Trailing: strings.TrimSpace(sm.Line(line)[:col]) != "",
	}
	c.IsDirective = isDirectiveComment(c.Body())
	return c
}

// skipString returns the offset after the literal opened by src[start].
// An unterminated ' or " literal ends at the line break.
func skipString(src []byte, start int) int {
	quote := src[start]
	for i := start + 1; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		case '\n':
			if quote != '`' {
				return i
			}
		}
	}
	return len(src)
}

// isDirectiveComment checks if a comment body looks like a directive.
// The keyword must be followed by a space, a dash or the end of the
// comment to avoid false positives like "fnlinter".
func isDirectiveComment(body string) bool {
	rest, ok := strings.CutPrefix(strings.ToLower(body), "fnlint-")
	if !ok {
		return false
	}
	return strings.HasPrefix(rest, "disable") || strings.HasPrefix(rest, "enable")
}
