// Package python locates Python modules and reads their import statements.
package python

import (
	"os"
	"strings"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// Scanner implements ports.ImportScanner by reading import statements from source text.
// It does not evaluate code, so imports performed through importlib or __import__
// must be declared in the manifest.
type Scanner struct{}

// NewScanner creates a new Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan returns the imports of the file at path in order of appearance.
func (s *Scanner) Scan(path string) ([]domain.Import, error) {
	src, err := os.ReadFile(path) //nolint:gosec // Path comes from the module index
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrScanFailed.Error()), "path", path)
	}
	return ScanSource(string(src)), nil
}

// ScanSource returns the imports of Python source text.
func ScanSource(src string) []domain.Import {
	var imports []domain.Import
	for _, stmt := range splitStatements(src) {
		imports = append(imports, parseStatement(stmt.text, stmt.line)...)
	}
	return imports
}

type statement struct {
	text string
	line int
}

// splitStatements joins physical lines into logical statements. String literals are
// replaced by empty quotes, comments are dropped, and bracketed or backslash-continued
// lines are joined. Semicolons split statements.
//
//nolint:gocognit,cyclop // single-pass lexer
func splitStatements(src string) []statement {
	var (
		out       []statement
		cur       strings.Builder
		line      = 1
		startLine = 1
		depth     int
	)

	flush := func() {
		if text := strings.TrimSpace(cur.String()); text != "" {
			out = append(out, statement{text: text, line: startLine})
		}
		cur.Reset()
		startLine = line
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			i--
		case c == '\'' || c == '"':
			quote := c
			triple := i+2 < len(src) && src[i+1] == quote && src[i+2] == quote
			if triple {
				i += 3
			} else {
				i++
			}
			for i < len(src) {
				if src[i] == '\\' {
					if i+1 < len(src) && src[i+1] == '\n' {
						line++
					}
					i += 2
					continue
				}
				if src[i] == '\n' {
					if !triple {
						break
					}
					line++
				}
				if src[i] == quote {
					if !triple {
						break
					}
					if i+2 < len(src) && src[i+1] == quote && src[i+2] == quote {
						i += 2
						break
					}
				}
				i++
			}
			if i < len(src) && src[i] == '\n' {
				i--
			}
			cur.WriteString(`""`)
		case c == '\\' && i+1 < len(src) && src[i+1] == '\n':
			i++
			line++
			cur.WriteByte(' ')
		case c == '\\' && i+2 < len(src) && src[i+1] == '\r' && src[i+2] == '\n':
			i += 2
			line++
			cur.WriteByte(' ')
		case c == '(' || c == '[' || c == '{':
			depth++
			cur.WriteByte(c)
		case c == ')' || c == ']' || c == '}':
			if depth > 0 {
				depth--
			}
			cur.WriteByte(c)
		case c == '\n':
			line++
			if depth > 0 {
				cur.WriteByte(' ')
				continue
			}
			flush()
		case c == ';' && depth == 0:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return out
}

func parseStatement(stmt string, line int) []domain.Import {
	stmt = strings.NewReplacer("(", " ", ")", " ", "\t", " ", "\r", " ").Replace(stmt)

	if rest, ok := cutKeyword(stmt, "import"); ok {
		var out []domain.Import
		for _, part := range strings.Split(rest, ",") {
			fields := strings.Fields(part)
			if len(fields) == 0 || !validDotted(fields[0]) {
				continue
			}
			out = append(out, domain.Import{Module: fields[0], Line: line})
		}
		return out
	}

	if rest, ok := cutKeyword(stmt, "from"); ok {
		return parseFrom(rest, line)
	}
	return nil
}

func parseFrom(rest string, line int) []domain.Import {
	rest = strings.TrimSpace(rest)
	level := 0
	for level < len(rest) && rest[level] == '.' {
		level++
	}
	rest = rest[level:]

	module, names, ok := strings.Cut(" "+rest, " import ")
	if !ok {
		return nil
	}
	module = strings.TrimSpace(module)
	if module != "" && !validDotted(module) {
		return nil
	}
	if module == "" && level == 0 {
		return nil
	}

	imp := domain.Import{Module: module, Level: level, Line: line}
	for _, part := range strings.Split(names, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "*" || validIdentifier(fields[0]) {
			imp.Names = append(imp.Names, fields[0])
		}
	}
	if imp.Names == nil {
		imp.Names = []string{}
	}
	return []domain.Import{imp}
}

// cutKeyword reports whether stmt starts with keyword followed by a separator.
func cutKeyword(stmt, keyword string) (string, bool) {
	rest, ok := strings.CutPrefix(stmt, keyword)
	if !ok || rest == "" {
		return "", false
	}
	if rest[0] != ' ' && !(keyword == "from" && rest[0] == '.') {
		return "", false
	}
	return rest, true
}

func validDotted(s string) bool {
	_, err := domain.ParseModuleName(s)
	return err == nil
}

func validIdentifier(s string) bool {
	return validDotted(s) && !strings.Contains(s, ".")
}
