package front

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// keywordCaser normalises a leading keyword's casing before matching
// it, tolerating differently-cased statement keywords so "Async With",
// "IF" and "yield" all parse.
var keywordCaser = cases.Lower(language.English)

var statementKeywords = []string{"async with ", "async for ", "if ", "for ", "yield ", "return ", "else:"}

// normalizeKeyword lower-cases text's leading keyword token if it
// case-insensitively matches one of statementKeywords, leaving the rest
// of the line (identifiers, expressions) untouched.
func normalizeKeyword(text string) string {
	lowered := keywordCaser.String(text)
	for _, kw := range statementKeywords {
		if len(lowered) >= len(kw) && lowered[:len(kw)] == kw {
			return kw + text[len(kw):]
		}
	}
	return text
}

// Parse builds a Syntax tree from the textual body DSL accepted by the
// HLS front end, using a bracket-respecting line tokeniser and a small
// indentation-based statement grammar:
//
//	x = din + 1
//	async with din as c:
//	    yield c
//	    yield c + 1
//	if c > 0:
//	    y = c
//	else:
//	    y = 0
//	return y
//
// Each line is one statement; a trailing ':' opens a nested block whose
// statements are the more-indented lines that follow, closed implicitly
// by dedent (there is no explicit block-sink token in the surface
// syntax — BaseBlockSink/HDLBlockSink markers are synthesised later by
// the CFG builder).
func Parse(body string) ([]*Syntax, error) {
	lines := splitLines(body)
	stmts, _, err := parseBlock(lines, 0, indentOf(lines, 0))
	return stmts, err
}

type line struct {
	indent int
	text   string
}

func splitLines(body string) []line {
	var out []line
	for _, raw := range strings.Split(body, "\n") {
		trimmed := strings.TrimRight(raw, " \t\r")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		indent := 0
		for indent < len(trimmed) && trimmed[indent] == ' ' {
			indent++
		}
		out = append(out, line{indent: indent, text: strings.TrimSpace(trimmed)})
	}
	return out
}

func indentOf(lines []line, i int) int {
	if i >= len(lines) {
		return 0
	}
	return lines[i].indent
}

// parseBlock parses statements at exactly baseIndent starting at index
// start, stopping at the first line with a smaller indent (or EOF).
// Returns the parsed statements and the index of the first line not
// consumed.
func parseBlock(lines []line, start, baseIndent int) ([]*Syntax, int, error) {
	var out []*Syntax
	i := start
	for i < len(lines) {
		ln := lines[i]
		if ln.indent < baseIndent {
			break
		}
		if ln.indent > baseIndent {
			return nil, i, &SyntaxError{Reason: fmt.Sprintf("unexpected indent at line %d: %q", i, ln.text)}
		}

		stmt, next, err := parseStatement(lines, i)
		if err != nil {
			return nil, i, err
		}
		out = append(out, stmt)
		i = next
	}
	return out, i, nil
}

func parseStatement(lines []line, i int) (*Syntax, int, error) {
	ln := lines[i]
	text := normalizeKeyword(ln.text)

	switch {
	case strings.HasPrefix(text, "async with "):
		rest := strings.TrimSuffix(strings.TrimPrefix(text, "async with "), ":")
		intf, bind, err := splitAs(rest)
		if err != nil {
			return nil, 0, err
		}
		children, next, err := parseNestedBlock(lines, i)
		if err != nil {
			return nil, 0, err
		}
		return &Syntax{Kind: KindAsyncWith, Text: intf, Extra: bind, Children: children}, next, nil

	case strings.HasPrefix(text, "async for "):
		rest := strings.TrimSuffix(strings.TrimPrefix(text, "async for "), ":")
		bind, intf, err := splitIn(rest)
		if err != nil {
			return nil, 0, err
		}
		children, next, err := parseNestedBlock(lines, i)
		if err != nil {
			return nil, 0, err
		}
		return &Syntax{Kind: KindAsyncFor, Text: intf, Extra: bind, Children: children}, next, nil

	case strings.HasPrefix(text, "if ") && strings.HasSuffix(text, ":"):
		cond := strings.TrimSuffix(strings.TrimPrefix(text, "if "), ":")
		children, next, err := parseNestedBlock(lines, i)
		if err != nil {
			return nil, 0, err
		}
		node := &Syntax{Kind: KindIf, Text: cond, Children: children}

		// Optional chained else:
		if next < len(lines) && lines[next].indent == lines[i].indent && normalizeKeyword(lines[next].text) == "else:" {
			elseChildren, next2, err := parseNestedBlock(lines, next)
			if err != nil {
				return nil, 0, err
			}
			node.Extra = "else"
			node.Children = append(node.Children, &Syntax{Kind: "else", Children: elseChildren})
			next = next2
		}
		return node, next, nil

	case strings.HasPrefix(text, "for ") && strings.HasSuffix(text, ":"):
		rest := strings.TrimSuffix(strings.TrimPrefix(text, "for "), ":")
		bind, seq, err := splitIn(rest)
		if err != nil {
			return nil, 0, err
		}
		children, next, err := parseNestedBlock(lines, i)
		if err != nil {
			return nil, 0, err
		}
		return &Syntax{Kind: KindFor, Text: seq, Extra: bind, Children: children}, next, nil

	case strings.HasPrefix(text, "yield "):
		return &Syntax{Kind: KindYield, Text: strings.TrimPrefix(text, "yield ")}, i + 1, nil

	case strings.HasPrefix(text, "return "):
		return &Syntax{Kind: KindReturn, Text: strings.TrimPrefix(text, "return ")}, i + 1, nil

	case strings.Contains(text, "=") && !strings.Contains(text, "=="):
		idx := strings.Index(text, "=")
		lhs := strings.TrimSpace(text[:idx])
		rhs := strings.TrimSpace(text[idx+1:])
		return &Syntax{Kind: KindAssign, Text: rhs, Extra: lhs}, i + 1, nil

	default:
		return &Syntax{Kind: KindExprStmt, Text: text}, i + 1, nil
	}
}

func parseNestedBlock(lines []line, headerIdx int) ([]*Syntax, int, error) {
	headerIndent := lines[headerIdx].indent
	if headerIdx+1 >= len(lines) || lines[headerIdx+1].indent <= headerIndent {
		return nil, headerIdx + 1, &SyntaxError{Reason: fmt.Sprintf("expected an indented block after line %d", headerIdx)}
	}
	return parseBlock(lines, headerIdx+1, lines[headerIdx+1].indent)
}

func splitAs(s string) (lhs, rhs string, err error) {
	parts := strings.SplitN(s, " as ", 2)
	if len(parts) != 2 {
		return "", "", &SyntaxError{Reason: fmt.Sprintf("expected '<intf> as <name>' in %q", s)}
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

func splitIn(s string) (lhs, rhs string, err error) {
	parts := strings.SplitN(s, " in ", 2)
	if len(parts) != 2 {
		return "", "", &SyntaxError{Reason: fmt.Sprintf("expected '<name> in <seq>' in %q", s)}
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}
