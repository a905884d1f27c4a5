package stringmap

import (
	g "github.com/zyedidia/generic"
	"github.com/zyedidia/generic/avl"
)

// Map associates original source strings with their translations.
// Keys are compared byte for byte; an empty key is legal and an empty value
// marks a string that is known but deliberately left untranslated.
type Map struct {
	tree  *avl.Tree[string, string]
	count int
}

// New creates an empty map.
func New() *Map {
	return &Map{tree: avl.New[string, string](g.Less[string])}
}

// Insert stores or overwrites the translation for original.
func (m *Map) Insert(original, translated string) {
	if _, ok := m.tree.Get(original); !ok {
		m.count++
	}
	m.tree.Put(original, translated)
}

// Find returns the stored translation for original.
func (m *Map) Find(original string) (string, bool) {
	return m.tree.Get(original)
}

// Has reports whether original has an entry, empty or not.
func (m *Map) Has(original string) bool {
	_, ok := m.tree.Get(original)
	return ok
}

// Len returns the number of distinct originals.
func (m *Map) Len() int {
	return m.count
}

// Each visits every entry in ascending byte order of the original.
func (m *Map) Each(fn func(original, translated string)) {
	m.tree.Each(fn)
}
