package catalog

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"agstrans/internal/stringmap"
	"agstrans/internal/textutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePack() *stringmap.Map {
	m := stringmap.New()
	m.Insert("Hello", "Bonjour")
	m.Insert("Caf\xe9", "Caf\xe9 noir")
	m.Insert("Two\tcols", "")
	return m
}

func TestEntriesDecodesCodePage(t *testing.T) {
	enc, err := textutil.CodePage("windows-1252")
	require.NoError(t, err)

	entries, err := Entries(samplePack(), enc)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "Café", entries[0].SourceText)
	assert.Equal(t, "Café noir", entries[0].TranslatedText)
	assert.Equal(t, textutil.Hash("Caf\xe9"), entries[0].Hash)
	assert.Equal(t, "Hello", entries[1].SourceText)
	assert.Equal(t, "Two\tcols", entries[2].SourceText)
}

func TestExportTSV(t *testing.T) {
	enc, err := textutil.CodePage("")
	require.NoError(t, err)
	entries, err := Entries(samplePack(), enc)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportTSV(&buf, entries))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "source_text\ttranslated_text\thash", lines[0])
	assert.Equal(t, "Hello\tBonjour\t"+textutil.Hash("Hello"), lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "Two\\tcols\t\t"))
}

func TestExportJSON(t *testing.T) {
	entries := []Entry{{SourceText: "<b>", TranslatedText: "<g>", Hash: "h"}}

	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, entries))
	assert.Contains(t, buf.String(), `"source_text": "<b>"`)

	var decoded []Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, entries, decoded)
}
