package parser

import (
	"bytes"
	"errors"
	"testing"

	"agstrans/internal/stringmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// packBuilder assembles raw binary pack streams for tests.
type packBuilder struct {
	buf bytes.Buffer
}

func newPack() *packBuilder {
	b := &packBuilder{}
	b.buf.WriteString(Signature)
	return b
}

func (b *packBuilder) int32(v int32) *packBuilder {
	_ = writeInt32(&b.buf, v)
	return b
}

func (b *packBuilder) str(s string) *packBuilder {
	_ = WriteString(&b.buf, s)
	return b
}

func (b *packBuilder) header(blockType int32) *packBuilder {
	return b.int32(blockType).int32(0)
}

func (b *packBuilder) reader() *bytes.Reader {
	return bytes.NewReader(b.buf.Bytes())
}

type recordingDisplay struct {
	normal, speech int
	dir            Direction
	calls          int
}

func (d *recordingDisplay) SetNormalFont(i int) { d.normal = i; d.calls++ }
func (d *recordingDisplay) SetSpeechFont(i int) { d.speech = i; d.calls++ }
func (d *recordingDisplay) SetTextDirection(dir Direction) { d.dir = dir; d.calls++ }

func TestStringCodecRoundTrip(t *testing.T) {
	for _, s := range []string{"", "hi", "Avis Durgan and more than eleven bytes", "caf\xe9"} {
		var buf bytes.Buffer
		require.NoError(t, WriteString(&buf, s))

		got, err := ReadString(&buf)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestReadStringRejectsBadLength(t *testing.T) {
	var buf bytes.Buffer
	_ = writeInt32(&buf, -5)

	_, err := ReadString(&buf)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestBinarySinglePair(t *testing.T) {
	stream := newPack().
		header(blockStrings).str("hi").str("salut").str("").str("").
		int32(blockEnd).
		reader()

	result, err := ParseAll(NewBinaryParser(BinaryOptions{}), stream)
	require.NoError(t, err)

	got, ok := result.Entries.Find("hi")
	require.True(t, ok)
	assert.Equal(t, "salut", got)
	assert.Equal(t, 1, result.Entries.Len())
}

func TestBinaryCleanEOFWithoutTerminator(t *testing.T) {
	stream := newPack().
		header(blockStrings).str("a").str("b").str("").str("").
		reader()

	result, err := ParseAll(NewBinaryParser(BinaryOptions{}), stream)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Entries.Len())
}

func TestBinaryTruncatedStringBlock(t *testing.T) {
	stream := newPack().
		header(blockStrings).str("hi").str("salut").str("bye").
		reader()

	result, err := ParseAll(NewBinaryParser(BinaryOptions{}), stream)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestBinaryEmptyPack(t *testing.T) {
	stream := newPack().int32(blockEnd).reader()

	_, err := ParseAll(NewBinaryParser(BinaryOptions{}), stream)
	require.ErrorIs(t, err, ErrEmpty)
	assert.Contains(t, err.Error(), "empty")
}

func TestBinarySignatureMismatch(t *testing.T) {
	_, err := ParseAll(NewBinaryParser(BinaryOptions{}), bytes.NewReader([]byte("NotATranslation!!")))
	assert.ErrorIs(t, err, ErrSignature)

	_, err = ParseAll(NewBinaryParser(BinaryOptions{}), bytes.NewReader([]byte("AGS")))
	assert.ErrorIs(t, err, ErrSignature)
}

func TestBinaryUnknownBlock(t *testing.T) {
	stream := newPack().header(7).reader()

	_, err := ParseAll(NewBinaryParser(BinaryOptions{}), stream)
	var unknown *UnknownBlockError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, int32(7), unknown.Type)
	assert.Contains(t, err.Error(), "(7)")
}

func TestBinaryGameIdentity(t *testing.T) {
	build := func() *bytes.Reader {
		return newPack().
			header(blockGameID).int32(42).str("Space Quest").
			header(blockStrings).str("hi").str("salut").str("").str("").
			int32(blockEnd).
			reader()
	}

	tests := []struct {
		name    string
		game    *GameIdentity
		wantErr bool
	}{
		{name: "no identity to check", game: nil},
		{name: "matching", game: &GameIdentity{UniqueID: 42, Name: "Space Quest"}},
		{name: "wrong id", game: &GameIdentity{UniqueID: 41, Name: "Space Quest"}, wantErr: true},
		{name: "wrong name", game: &GameIdentity{UniqueID: 42, Name: "King's Quest"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseAll(NewBinaryParser(BinaryOptions{Game: tc.game}), build())
			if !tc.wantErr {
				require.NoError(t, err)
				require.NotNil(t, result.Game)
				assert.Equal(t, int32(42), result.Game.UniqueID)
				return
			}
			var incompatible *IncompatibleError
			require.True(t, errors.As(err, &incompatible))
			assert.Equal(t, "Space Quest", incompatible.GameName)
			assert.Contains(t, err.Error(), "'Space Quest'")
		})
	}
}

func TestBinaryDisplaySettings(t *testing.T) {
	tests := []struct {
		name      string
		normal    int32
		speech    int32
		dir       int32
		wantCalls int
		wantDir   Direction
	}{
		{name: "all applied", normal: 2, speech: 3, dir: 2, wantCalls: 3, wantDir: DirectionRightToLeft},
		{name: "left to right", normal: 0, speech: 0, dir: 1, wantCalls: 3, wantDir: DirectionLeftToRight},
		{name: "negative fonts and unknown direction skipped", normal: -1, speech: -1, dir: 9, wantCalls: 0, wantDir: DirectionUnchanged},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stream := newPack().
				header(blockSettings).int32(tc.normal).int32(tc.speech).int32(tc.dir).
				header(blockStrings).str("a").str("b").str("").str("").
				int32(blockEnd).
				reader()

			display := &recordingDisplay{}
			result, err := ParseAll(NewBinaryParser(BinaryOptions{Display: display}), stream)
			require.NoError(t, err)

			assert.Equal(t, tc.wantCalls, display.calls)
			assert.Equal(t, tc.wantDir, result.Settings.Direction)
			if tc.normal >= 0 {
				assert.Equal(t, int(tc.normal), display.normal)
			}
		})
	}
}

func TestBinaryReconstructRoundTrip(t *testing.T) {
	entries := stringmap.New()
	entries.Insert("Look at door", "Regarder la porte")
	entries.Insert("%d coins", "%d pièces")
	entries.Insert("keep", "")

	src := &ParseResult{
		Format:   FormatBinary,
		Entries:  entries,
		Game:     &GameIdentity{UniqueID: 7, Name: "Demo"},
		Settings: &DisplaySettings{NormalFont: 1, SpeechFont: -1, Direction: DirectionLeftToRight},
	}

	p := NewBinaryParser(BinaryOptions{Game: &GameIdentity{UniqueID: 7, Name: "Demo"}})
	var buf bytes.Buffer
	require.NoError(t, p.Reconstruct(&buf, src))

	got, err := ParseAll(p, &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Entries.Len())
	assert.Equal(t, *src.Game, *got.Game)
	assert.Equal(t, *src.Settings, *got.Settings)

	v, ok := got.Entries.Find("%d coins")
	require.True(t, ok)
	assert.Equal(t, "%d pièces", v)
}
