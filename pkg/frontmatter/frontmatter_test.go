package frontmatter

import (
	"errors"
	"strings"
	"testing"
)

type entryMeta struct {
	Title string   `yaml:"title"`
	Slug  string   `yaml:"slug"`
	Tags  []string `yaml:"tags"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantMeta entryMeta
		wantBody string
		wantErr  bool
	}{
		{
			name: "valid frontmatter",
			input: `---
title: Microservices Architecture
slug: microservices-architecture
tags:
  - go
  - grpc
---

# Project context
`,
			wantMeta: entryMeta{
				Title: "Microservices Architecture",
				Slug:  "microservices-architecture",
				Tags:  []string{"go", "grpc"},
			},
			wantBody: "\n# Project context\n",
		},
		{
			name:     "no frontmatter",
			input:    "# Just markdown\n\nNo metadata here.",
			wantBody: "# Just markdown\n\nNo metadata here.",
		},
		{
			name:     "CRLF line endings",
			input:    "---\r\ntitle: Windows\r\n---\r\nBody\r\n",
			wantMeta: entryMeta{Title: "Windows"},
			wantBody: "Body\r\n",
		},
		{
			name:     "empty block",
			input:    "---\n---\nBody only\n",
			wantBody: "Body only\n",
		},
		{
			name:    "invalid YAML",
			input:   "---\ntitle: [unclosed\n---\nbody\n",
			wantErr: true,
		},
		{
			name:    "unterminated",
			input:   "---\ntitle: open\nbody without closing\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var meta entryMeta
			body, err := Parse(strings.NewReader(tt.input), &meta)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if meta.Title != tt.wantMeta.Title || meta.Slug != tt.wantMeta.Slug {
				t.Errorf("meta = %+v, want %+v", meta, tt.wantMeta)
			}
			if len(meta.Tags) != len(tt.wantMeta.Tags) {
				t.Errorf("tags = %v, want %v", meta.Tags, tt.wantMeta.Tags)
			}
		})
	}
}

func TestMustParse_Missing(t *testing.T) {
	var meta entryMeta
	_, err := MustParse(strings.NewReader("# no frontmatter"), &meta)
	if !errors.Is(err, ErrMissingFrontmatter) {
		t.Errorf("MustParse() error = %v, want ErrMissingFrontmatter", err)
	}
}

func TestSplit_Unterminated(t *testing.T) {
	_, _, found, err := Split([]byte("---\ntitle: x\n"))
	if !found {
		t.Error("expected found = true")
	}
	if !errors.Is(err, ErrUnterminated) {
		t.Errorf("Split() error = %v, want ErrUnterminated", err)
	}
}

func TestNormalizeBody(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"\n\n# Title\n\ntext\n\n", "# Title\n\ntext"},
		{"\r\n  indented\t \r\n", "  indented"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeBody([]byte(tt.in)); got != tt.want {
			t.Errorf("NormalizeBody(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	meta := entryMeta{
		Title: "Code Review",
		Slug:  "code-review",
		Tags:  []string{"review", "quality"},
	}
	body := "Review the following {{ language }} code.\n\n```go\nfunc main() {}\n```"

	data, err := Format(meta, body)
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "---\ntitle: Code Review\n") {
		t.Errorf("unexpected header:\n%s", data)
	}

	var got entryMeta
	rawBody, err := MustParse(strings.NewReader(string(data)), &got)
	if err != nil {
		t.Fatalf("MustParse() error = %v", err)
	}
	if got.Title != meta.Title || got.Slug != meta.Slug || len(got.Tags) != 2 {
		t.Errorf("meta = %+v, want %+v", got, meta)
	}
	if NormalizeBody(rawBody) != body {
		t.Errorf("body = %q, want %q", NormalizeBody(rawBody), body)
	}
}

func TestFormat_EmptyBody(t *testing.T) {
	data, err := Format(entryMeta{Title: "x"}, "")
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.HasPrefix(string(data), "---\ntitle: x\n") || !strings.HasSuffix(string(data), "\n---\n") {
		t.Errorf("Format() = %q", data)
	}
}
