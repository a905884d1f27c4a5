package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextPairs(t *testing.T) {
	src := "  Hello \nBonjour\r\nUse key\n  Utiliser la clé  \n"

	result, err := ParseAll(NewTextParser(), strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Entries.Len())

	got, ok := result.Entries.Find("Hello")
	require.True(t, ok)
	assert.Equal(t, "Bonjour", got)

	got, _ = result.Entries.Find("Use key")
	assert.Equal(t, "Utiliser la clé", got)
}

func TestTextOddLineDropped(t *testing.T) {
	result, err := NewTextParser().Parse(strings.NewReader("one\nun\ntwo\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Entries.Len())
	assert.False(t, result.Entries.Has("two"))
}

func TestTextEmpty(t *testing.T) {
	for _, src := range []string{"", "lonely line\n"} {
		_, err := NewTextParser().Parse(strings.NewReader(src))
		assert.ErrorIs(t, err, ErrEmpty)
	}
}

func TestUntranslatedKeepsOriginalsOnly(t *testing.T) {
	result, err := NewUntranslatedParser().Parse(strings.NewReader("dog\n\ncat\nwhatever\nbird\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Entries.Len())

	got, ok := result.Entries.Find("cat")
	require.True(t, ok)
	assert.Empty(t, got)
	assert.False(t, result.Entries.Has("bird"))
}

func TestUntranslatedEmptyIsFine(t *testing.T) {
	result, err := NewUntranslatedParser().Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Zero(t, result.Entries.Len())
}

func TestAppendUntranslatedReadsBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, AppendUntranslated(&buf, "dog"))
	require.NoError(t, AppendUntranslated(&buf, "Open the hatch"))

	result, err := NewUntranslatedParser().Parse(&buf)
	require.NoError(t, err)
	assert.True(t, result.Entries.Has("dog"))
	assert.True(t, result.Entries.Has("Open the hatch"))
}

func TestTextReconstructRoundTrip(t *testing.T) {
	p := NewTextParser()
	src, err := p.Parse(strings.NewReader("b\nbee\na\nay\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, p.Reconstruct(&buf, src))
	assert.Equal(t, "a\nay\nb\nbee\n", buf.String())
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatBinary},
		{"tra", FormatBinary},
		{".TRS", FormatText},
		{"text", FormatText},
		{"untrans", FormatUntranslated},
	}
	for _, tc := range tests {
		got, err := ParseFormat(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseFormat("po")
	assert.Error(t, err)
}
