package gen

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/shlex"
)

// Placeholders recognized in generator expressions. Substitution is textual,
// happens exactly once, and runs left to right, so a hash produced by "##"
// is never re-expanded.
const (
	placeholderText = "#text"
	placeholderLen  = "#len"
	escapedHash     = "##"
)

// Expand substitutes the placeholders of a generator expression template:
// "#text" becomes the original node text, "#len" its length in characters,
// and "##" a literal hash sign.
//
// The node text is injected double-quoted with backslash escapes, so text
// containing spaces, quotes or other tokenizer metacharacters survives
// Split as a single argument.
func Expand(template, text string) string {
	var b strings.Builder
	for i := 0; i < len(template); {
		rest := template[i:]
		switch {
		case strings.HasPrefix(rest, escapedHash):
			b.WriteByte('#')
			i += len(escapedHash)
		case strings.HasPrefix(rest, placeholderText):
			b.WriteString(quoteArg(text))
			i += len(placeholderText)
		case strings.HasPrefix(rest, placeholderLen):
			b.WriteString(strconv.Itoa(utf8.RuneCountInString(text)))
			i += len(placeholderLen)
		default:
			b.WriteByte(template[i])
			i++
		}
	}
	return b.String()
}

// quoteArg wraps s in double quotes, escaping backslashes and embedded
// quotes, so the shell-style tokenizer returns it as one token.
func quoteArg(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// Split tokenizes an expanded generator expression using shell-like quoting
// rules. The first token is the generator name, the rest its arguments.
func Split(expr string) ([]string, error) {
	args, err := shlex.Split(expr)
	if err != nil {
		return nil, &ArgumentError{Generator: "", Message: "malformed generator expression", Err: err}
	}
	return args, nil
}
