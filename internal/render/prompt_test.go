package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/resource"
)

func reviewPrompt() resource.PromptTemplate {
	return resource.PromptTemplate{
		Slug:   "code-review",
		Prompt: "Review this {{ language }} code for {{ focus }}:\n{{ code }}{% if notes %}\nNotes: {{ notes|upper }}{% endif %}",
		Variables: []resource.PromptVariable{
			{Name: "language", Required: true},
			{Name: "code", Required: true},
			{Name: "focus", Default: "correctness"},
			{Name: "notes"},
		},
	}
}

func TestPrompt(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
		want string
	}{
		{
			name: "defaults fill optional variables",
			vars: map[string]string{"language": "Go", "code": "x := 1"},
			want: "Review this Go code for correctness:\nx := 1",
		},
		{
			name: "explicit value wins over default",
			vars: map[string]string{"language": "Go", "code": "x", "focus": "security"},
			want: "Review this Go code for security:\nx",
		},
		{
			name: "filters and conditionals",
			vars: map[string]string{"language": "Go", "code": "x", "notes": "hot path"},
			want: "Review this Go code for correctness:\nx\nNotes: HOT PATH",
		},
		{
			name: "markup is not escaped",
			vars: map[string]string{"language": "HTML", "code": `<a href="/">&</a>`},
			want: "Review this HTML code for correctness:\n<a href=\"/\">&</a>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Prompt(reviewPrompt(), tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompt_MissingRequired(t *testing.T) {
	_, err := Prompt(reviewPrompt(), map[string]string{"language": "Go", "code": ""})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingVariable))
	assert.Contains(t, err.Error(), "code")
	assert.NotContains(t, err.Error(), "language")
}

func TestPrompt_SyntaxError(t *testing.T) {
	tpl := resource.PromptTemplate{Slug: "broken", Prompt: "{% if x %}never closed"}
	_, err := Prompt(tpl, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestValues_PassesUndeclared(t *testing.T) {
	got, err := Values(reviewPrompt(), map[string]string{"language": "Go", "code": "x", "extra": "y"})
	require.NoError(t, err)
	assert.Equal(t, "y", got["extra"])
	assert.Equal(t, "correctness", got["focus"])
	assert.Equal(t, "", got["notes"])
}

func TestParseAssignments(t *testing.T) {
	got, err := ParseAssignments([]string{"language=Go", "code=a=b", "language=Rust", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"language": "Rust", "code": "a=b", "empty": ""}, got)

	for _, bad := range []string{"novalue", "=x", " =x"} {
		_, err := ParseAssignments([]string{bad})
		assert.True(t, errors.Is(err, ErrInvalidAssignment), bad)
	}
}
