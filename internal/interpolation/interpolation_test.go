package interpolation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"no placeholders", nil},
		{"You have %d coins", []string{"%d"}},
		{"&12 Hello %s[Bye", []string{"&12 ", "%s", "["}},
		{"100%% sure, %2d left", []string{"%%", "%2d"}},
		{"mid &3 text", nil},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Placeholders(tc.text), tc.text)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name        string
		original    string
		translation string
		ok          bool
		missing     []string
		extra       []string
	}{
		{name: "same", original: "%d coins", translation: "%d pièces", ok: true},
		{name: "reordered", original: "%s has %d", translation: "%d chez %s", ok: true},
		{name: "empty translation skipped", original: "%d", translation: "", ok: true},
		{name: "dropped", original: "%d coins", translation: "des pièces", missing: []string{"%d"}, extra: []string{}},
		{name: "added", original: "coins", translation: "[coins %s", missing: []string{}, extra: []string{"%s", "["}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			issue, ok := Check(tc.original, tc.translation)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				return
			}
			assert.Equal(t, tc.missing, issue.Missing)
			assert.Equal(t, tc.extra, issue.Extra)
			assert.Equal(t, tc.original, issue.Original)
		})
	}
}
