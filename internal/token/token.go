// Package token converts raw command strings into token streams,
// honoring quote grouping, escape sequences, and quote-aware batch splitting.
package token

import (
	"fmt"
	"strings"
)

// Token is a single word of a command line. WasQuoted records whether any
// part of the token came from inside quotes, which matters downstream:
// quoted tokens are never interpreted as project mentions.
type Token struct {
	Value     string
	WasQuoted bool
}

// UnterminatedQuoteError reports a quote that was opened and never closed.
type UnterminatedQuoteError struct {
	Quote rune // the offending quote character
	Pos   int  // position in the input where the quote was opened
}

func (e *UnterminatedQuoteError) Error() string {
	return fmt.Sprintf("unterminated %c quote opened at position %d", e.Quote, e.Pos)
}

// Tokenize scans input character by character and returns the ordered token
// stream. Whitespace separates tokens outside quotes and is literal inside
// them. Supported escapes: \n (newline), \\ (backslash), \" and \' (literal
// quote). Returns an UnterminatedQuoteError if a quote never closes.
func Tokenize(input string) ([]Token, error) {
	var (
		tokens    []Token
		buf       strings.Builder
		quote     rune // 0 when outside quotes
		quotePos  int
		inToken   bool // true once the current token has content or quoting
		wasQuoted bool
	)

	flush := func() {
		if !inToken {
			return
		}
		tokens = append(tokens, Token{Value: buf.String(), WasQuoted: wasQuoted})
		buf.Reset()
		inToken = false
		wasQuoted = false
	}

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		c := runes[i]

		if c == '\\' && i+1 < len(runes) {
			switch next := runes[i+1]; next {
			case 'n':
				buf.WriteRune('\n')
				inToken = true
				i++
				continue
			case '\\', '"', '\'':
				buf.WriteRune(next)
				inToken = true
				i++
				continue
			}
			// Unknown escape: keep the backslash literally.
			buf.WriteRune(c)
			inToken = true
			continue
		}

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				buf.WriteRune(c)
			}
		case c == '"' || c == '\'':
			quote = c
			quotePos = i
			inToken = true
			wasQuoted = true
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flush()
		default:
			buf.WriteRune(c)
			inToken = true
		}
	}

	if quote != 0 {
		return nil, &UnterminatedQuoteError{Quote: quote, Pos: quotePos}
	}

	flush()
	return tokens, nil
}

// SplitBatch splits input on "&&" separators that appear outside quotes.
// Each piece is trimmed; empty pieces are dropped. SplitBatch never fails:
// an unterminated quote simply swallows any trailing separators, and the
// tokenizer reports the error when the piece is parsed.
func SplitBatch(input string) []string {
	var (
		parts []string
		buf   strings.Builder
		quote rune
	)

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		c := runes[i]

		if c == '\\' && i+1 < len(runes) {
			buf.WriteRune(c)
			buf.WriteRune(runes[i+1])
			i++
			continue
		}

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			buf.WriteRune(c)
		case c == '"' || c == '\'':
			quote = c
			buf.WriteRune(c)
		case c == '&' && i+1 < len(runes) && runes[i+1] == '&':
			parts = append(parts, buf.String())
			buf.Reset()
			i++
		default:
			buf.WriteRune(c)
		}
	}
	parts = append(parts, buf.String())

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
