// Package highlight renders generated source for terminals.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is the chroma style used when none is given
const DefaultStyle = "monokai"

// Generated artifacts are python unless their name says otherwise
const defaultLanguage = "python"

// Lexer picks a lexer from the artifact file name
func Lexer(filename string) chroma.Lexer {
	lexer := lexers.Match(filename)
	if lexer == nil {
		lexer = lexers.Get(defaultLanguage)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// Language returns the lexer name for filename
func Language(filename string) string {
	return strings.ToLower(Lexer(filename).Config().Name)
}

// Code highlights source for a 256-color terminal. On any failure the
// source is returned unchanged.
func Code(source, filename, style string) string {
	if source == "" {
		return source
	}

	s := styles.Get(style)
	if s == nil {
		s = styles.Get(DefaultStyle)
	}
	if s == nil {
		s = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return source
	}

	iterator, err := Lexer(filename).Tokenise(nil, source)
	if err != nil {
		return source
	}

	var sb strings.Builder
	if err := formatter.Format(&sb, s, iterator); err != nil {
		return source
	}
	return sb.String()
}
