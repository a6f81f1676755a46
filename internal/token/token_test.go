package token

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{"empty", "", nil},
		{"whitespace only", "   \t ", nil},
		{
			"bare words",
			"add todo fix",
			[]Token{{Value: "add"}, {Value: "todo"}, {Value: "fix"}},
		},
		{
			"double quoted phrase",
			`add todo "fix the login bug"`,
			[]Token{{Value: "add"}, {Value: "todo"}, {Value: "fix the login bug", WasQuoted: true}},
		},
		{
			"single quoted phrase",
			`add note 'meeting notes'`,
			[]Token{{Value: "add"}, {Value: "note"}, {Value: "meeting notes", WasQuoted: true}},
		},
		{
			"empty quoted token",
			`set ""`,
			[]Token{{Value: "set"}, {Value: "", WasQuoted: true}},
		},
		{
			"quote joined to bare text",
			`--content="hello world"`,
			[]Token{{Value: "--content=hello world", WasQuoted: true}},
		},
		{
			"escaped newline",
			`"Line 1\nLine 2"`,
			[]Token{{Value: "Line 1\nLine 2", WasQuoted: true}},
		},
		{
			"escaped backslash",
			`path\\to\\file`,
			[]Token{{Value: `path\to\file`}},
		},
		{
			"escaped double quote inside quotes",
			`"say \"hi\""`,
			[]Token{{Value: `say "hi"`, WasQuoted: true}},
		},
		{
			"escaped single quote",
			`it\'s`,
			[]Token{{Value: "it's"}},
		},
		{
			"unknown escape kept literally",
			`a\tb`,
			[]Token{{Value: `a\tb`}},
		},
		{
			"whitespace preserved inside quotes",
			"\"a  b\tc\"",
			[]Token{{Value: "a  b\tc", WasQuoted: true}},
		},
		{
			"ampersands inside quotes are literal",
			`add todo "fix && test"`,
			[]Token{{Value: "add"}, {Value: "todo"}, {Value: "fix && test", WasQuoted: true}},
		},
		{
			"mixed quoting in one token",
			`pre"mid"post`,
			[]Token{{Value: "premidpost", WasQuoted: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) returned error: %v", tt.input, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestTokenizeUnterminatedQuote(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"open double quote", `add todo "never closed`},
		{"open single quote", `add note 'oops`},
		{"escaped close does not count", `add "still \" open`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			var qerr *UnterminatedQuoteError
			if !errors.As(err, &qerr) {
				t.Fatalf("Tokenize(%q) error = %v, want UnterminatedQuoteError", tt.input, err)
			}
		})
	}
}

func TestSplitBatch(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single command", "/add todo fix", []string{"/add todo fix"}},
		{
			"two commands",
			`/add todo "fix bug" && /add note "notes"`,
			[]string{`/add todo "fix bug"`, `/add note "notes"`},
		},
		{
			"separator inside quotes is literal",
			`/add todo "fix && test"`,
			[]string{`/add todo "fix && test"`},
		},
		{
			"empty pieces dropped",
			"/status && && /help",
			[]string{"/status", "/help"},
		},
		{
			"single ampersand is not a separator",
			"/add todo a & b",
			[]string{"/add todo a & b"},
		},
		{
			"whitespace trimmed",
			"  /status   &&   /help  ",
			[]string{"/status", "/help"},
		},
		{
			"separator after unterminated quote is swallowed",
			`/add todo "open && /help`,
			[]string{`/add todo "open && /help`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitBatch(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SplitBatch(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}
