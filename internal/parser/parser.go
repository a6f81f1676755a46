// Package parser turns token streams into structured commands by peeling
// off project mentions and flags from the positional-argument stream.
package parser

import (
	"fmt"
	"strings"

	"github.com/stewardapp/steward/internal/token"
)

// ParsedCommand is the structured form of a single command line before
// registry matching. Verb and Noun are filled in by the registry matcher;
// the parser populates the rest.
type ParsedCommand struct {
	Verb           string
	Noun           string
	Args           []string
	Flags          map[string]string
	ProjectMention string
	Raw            string
}

// InvalidFlagError reports a flag whose key is not a valid identifier.
type InvalidFlagError struct {
	Token string
}

func (e *InvalidFlagError) Error() string {
	return fmt.Sprintf("invalid flag %q: keys must be alphanumeric", e.Token)
}

// Extract scans the token stream for a project mention and flags, returning
// the remaining positional tokens in their original order.
//
// A mention starts at an unquoted "@" token and joins following tokens with
// single spaces until a flag token or end of input, so multi-word project
// names work without quoting. Flags are "--key=value" or bare "--key"
// (boolean true) and are removed from the positional stream regardless of
// where they appear.
func Extract(tokens []token.Token) (remaining []token.Token, mention string, flags map[string]string, err error) {
	flags = make(map[string]string)

	var mentionParts []string
	inMention := false

	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok.Value, "--"):
			inMention = false
			key, value, kerr := splitFlag(tok.Value)
			if kerr != nil {
				return nil, "", nil, kerr
			}
			flags[key] = value

		case !tok.WasQuoted && strings.HasPrefix(tok.Value, "@"):
			inMention = true
			mentionParts = append(mentionParts, strings.TrimPrefix(tok.Value, "@"))

		case inMention:
			mentionParts = append(mentionParts, tok.Value)

		default:
			remaining = append(remaining, tok)
		}
	}

	mention = strings.TrimSpace(strings.Join(mentionParts, " "))
	return remaining, mention, flags, nil
}

// splitFlag splits a "--key=value" token on the first "=". A missing value
// makes the flag boolean true.
func splitFlag(raw string) (key, value string, err error) {
	body := strings.TrimPrefix(raw, "--")
	key, value, found := strings.Cut(body, "=")
	if !found {
		value = "true"
	}
	if !isAlphanumeric(key) {
		return "", "", &InvalidFlagError{Token: raw}
	}
	return key, value, nil
}

func isAlphanumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// Parse tokenizes a raw command line, strips a leading "/" from the first
// token, and extracts mention and flags. Verb/Noun assignment is left to
// the registry matcher.
func Parse(input string) (*ParsedCommand, error) {
	tokens, err := token.Tokenize(input)
	if err != nil {
		return nil, err
	}

	if len(tokens) > 0 && !tokens[0].WasQuoted {
		tokens[0].Value = strings.TrimPrefix(tokens[0].Value, "/")
	}

	remaining, mention, flags, err := Extract(tokens)
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, len(remaining))
	for _, tok := range remaining {
		args = append(args, tok.Value)
	}

	return &ParsedCommand{
		Args:           args,
		Flags:          flags,
		ProjectMention: mention,
		Raw:            input,
	}, nil
}
