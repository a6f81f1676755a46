package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stewardapp/steward/internal/token"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantArgs    []string
		wantMention string
		wantFlags   map[string]string
	}{
		{
			"no mention no flags",
			"add todo fix",
			[]string{"add", "todo", "fix"},
			"",
			map[string]string{},
		},
		{
			"single word mention",
			"add todo fix @Website",
			[]string{"add", "todo", "fix"},
			"Website",
			map[string]string{},
		},
		{
			"multi word mention joined until flag",
			"add todo fix @Website Redesign --priority=high",
			[]string{"add", "todo", "fix"},
			"Website Redesign",
			map[string]string{"priority": "high"},
		},
		{
			"value flag",
			"add todo fix --priority=high",
			[]string{"add", "todo", "fix"},
			"",
			map[string]string{"priority": "high"},
		},
		{
			"boolean flag",
			"list todos --all",
			[]string{"list", "todos"},
			"",
			map[string]string{"all": "true"},
		},
		{
			"flag before verb",
			"--all list todos",
			[]string{"list", "todos"},
			"",
			map[string]string{"all": "true"},
		},
		{
			"quoted at sign stays positional",
			`add note "@daily standup"`,
			[]string{"add", "note", "@daily standup"},
			"",
			map[string]string{},
		},
		{
			"quoted flag value",
			`add todo --content="Line 1\nLine 2"`,
			[]string{"add", "todo"},
			"",
			map[string]string{"content": "Line 1\nLine 2"},
		},
		{
			"value with equals sign",
			"add stack --version=1.2=beta",
			[]string{"add", "stack"},
			"",
			map[string]string{"version": "1.2=beta"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := token.Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", tt.input, err)
			}

			remaining, mention, flags, err := Extract(tokens)
			if err != nil {
				t.Fatalf("Extract(%q) error: %v", tt.input, err)
			}

			var args []string
			for _, tok := range remaining {
				args = append(args, tok.Value)
			}
			if diff := cmp.Diff(tt.wantArgs, args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
			if mention != tt.wantMention {
				t.Errorf("mention = %q, want %q", mention, tt.wantMention)
			}
			if diff := cmp.Diff(tt.wantFlags, flags); diff != "" {
				t.Errorf("flags mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractInvalidFlagKey(t *testing.T) {
	tests := []string{"--pri-ority=high", "--=value", "--"}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			tokens, err := token.Tokenize(input)
			if err != nil {
				t.Fatalf("Tokenize(%q) error: %v", input, err)
			}

			_, _, _, err = Extract(tokens)
			var ferr *InvalidFlagError
			if !errors.As(err, &ferr) {
				t.Fatalf("Extract(%q) error = %v, want InvalidFlagError", input, err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	got, err := Parse(`/add todo "fix login" @Website --priority=high`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	want := &ParsedCommand{
		Args:           []string{"add", "todo", "fix login"},
		Flags:          map[string]string{"priority": "high"},
		ProjectMention: "Website",
		Raw:            `/add todo "fix login" @Website --priority=high`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLeadingSlashOnlyOnFirstToken(t *testing.T) {
	got, err := Parse("/view note /etc/hosts")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	wantArgs := []string{"view", "note", "/etc/hosts"}
	if diff := cmp.Diff(wantArgs, got.Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}
