package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\nkey: value\n---\n# Title\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, had, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestSplit_CRLF_SplitsFrontmatterAndBody(t *testing.T) {
	input := []byte("---\r\nkey: value\r\n---\r\n# Title\r\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestSplit_EmptyFrontmatterBlock(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\nkey: value\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("key: value\n"), fm)
	require.Empty(t, body)
}

func TestParse_YAMLFields(t *testing.T) {
	input := []byte(`---
Title: Hello
date: 2024-03-01 10:00
modified: 2024-03-02T08:30:00+02:00
tags: [go, sitemaps]
private: true
status:
---
Body text
`)

	fields, body, err := Parse(input)
	require.NoError(t, err)
	assert.Equal(t, []byte("Body text\n"), body)

	title, ok := fields.String("title")
	require.True(t, ok)
	assert.Equal(t, "Hello", title)

	date, ok := fields.String("date")
	require.True(t, ok)
	assert.Equal(t, "2024-03-01 10:00", date)

	modified, ok := fields.String("modified")
	require.True(t, ok)
	assert.Equal(t, "2024-03-02T08:30:00+02:00", modified)

	assert.Equal(t, []string{"go", "sitemaps"}, fields.Strings("tags"))

	private, ok := fields.Bool("private")
	require.True(t, ok)
	assert.True(t, private)

	status, ok := fields.String("status")
	require.True(t, ok)
	assert.Empty(t, status)
	assert.True(t, fields.Has("STATUS"))
}

func TestParse_StringFirstPresentKeyWins(t *testing.T) {
	fields, _, err := Parse([]byte("---\nChangeFreq: weekly\n---\n"))
	require.NoError(t, err)

	v, ok := fields.String("changefreq", "change_freq")
	require.True(t, ok)
	assert.Equal(t, "weekly", v)

	_, ok = fields.String("missing", "absent")
	assert.False(t, ok)
}

func TestParse_NonScalarIsNotAString(t *testing.T) {
	fields, _, err := Parse([]byte("---\ntags:\n  - a\n---\n"))
	require.NoError(t, err)

	_, ok := fields.String("tags")
	assert.False(t, ok)
}

func TestParse_HeaderMetadata(t *testing.T) {
	input := []byte("Title: Plain\nTags: one, two ,three\nPrivate: True\n\nBody\n")

	fields, body, err := Parse(input)
	require.NoError(t, err)
	assert.Equal(t, []byte("Body\n"), body)

	title, _ := fields.String("title")
	assert.Equal(t, "Plain", title)
	assert.Equal(t, []string{"one", "two", "three"}, fields.Strings("tags"))

	private, ok := fields.Bool("private")
	require.True(t, ok)
	assert.True(t, private)
}

func TestParse_NoMetadata(t *testing.T) {
	input := []byte("# Heading\n\nSome text\n")

	fields, body, err := Parse(input)
	require.NoError(t, err)
	assert.Zero(t, fields.Len())
	assert.Equal(t, input, body)
}

func TestParseYAML_InvalidYAML_ReturnsError(t *testing.T) {
	_, err := ParseYAML([]byte("key: [unclosed"))
	require.Error(t, err)
}

func TestParseYAML_NotAMapping(t *testing.T) {
	_, err := ParseYAML([]byte("- a\n- b\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a mapping")
}

func TestFields_Bool(t *testing.T) {
	tests := []struct {
		raw    string
		want   bool
		wantOK bool
	}{
		{raw: "private: true", want: true, wantOK: true},
		{raw: "private: \"True\"", want: true, wantOK: true},
		{raw: "private: no", want: false, wantOK: true},
		{raw: "private: maybe", want: false, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			fields, err := ParseYAML([]byte(tt.raw))
			require.NoError(t, err)

			got, ok := fields.Bool("private")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
