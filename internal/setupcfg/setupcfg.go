// Package setupcfg reads, writes and merges the game's INI setup file.
package setupcfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"gopkg.in/ini.v1"
)

// Tree holds setup values as section -> key -> value. Keys of the unnamed
// top section live under "".
type Tree map[string]map[string]string

// Get returns tree[section][key] and whether it was present.
func (t Tree) Get(section, key string) (string, bool) {
	sec, ok := t[section]
	if !ok {
		return "", false
	}
	v, ok := sec[key]
	return v, ok
}

// Set stores value under section/key, creating the section if needed.
func (t Tree) Set(section, key, value string) {
	sec, ok := t[section]
	if !ok {
		sec = make(map[string]string)
		t[section] = sec
	}
	sec[key] = value
}

func loadOptions() ini.LoadOptions {
	return ini.LoadOptions{
		Insensitive:             false,
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: true,
		AllowShadows:            false,
	}
}

// Read loads path into a Tree. Sections without items are skipped.
func Read(path string) (Tree, error) {
	f, err := ini.LoadSources(loadOptions(), path)
	if err != nil {
		return nil, fmt.Errorf("read setup file: %w", err)
	}

	tree := make(Tree)
	for _, sec := range f.Sections() {
		keys := sec.Keys()
		if len(keys) == 0 {
			continue
		}
		name := sectionName(sec.Name())
		for _, k := range keys {
			tree.Set(name, k.Name(), k.Value())
		}
	}
	return tree, nil
}

// Write replaces path with the contents of tree. Empty sections are not
// written.
func Write(path string, tree Tree) error {
	f := ini.Empty(loadOptions())
	for _, name := range sortedKeys(tree) {
		items := tree[name]
		if len(items) == 0 {
			continue
		}
		sec := f.Section(iniName(name))
		for _, k := range sortedKeys(items) {
			if _, err := sec.NewKey(k, items[k]); err != nil {
				return fmt.Errorf("write setup key %s.%s: %w", name, k, err)
			}
		}
	}
	if err := f.SaveTo(path); err != nil {
		return fmt.Errorf("write setup file: %w", err)
	}
	return nil
}

// Merge updates path with the values in tree, keeping everything else in
// the file. A missing file is created. Existing keys are replaced in place,
// new keys are appended to their section and new sections to the end.
func Merge(path string, tree Tree) error {
	f := ini.Empty(loadOptions())
	if _, err := os.Stat(path); err == nil {
		f, err = ini.LoadSources(loadOptions(), path)
		if err != nil {
			return fmt.Errorf("read setup file: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat setup file: %w", err)
	}

	for _, name := range sortedKeys(tree) {
		items := tree[name]
		if len(items) == 0 {
			continue
		}
		sec := f.Section(iniName(name))
		for _, k := range sortedKeys(items) {
			if sec.HasKey(k) {
				sec.Key(k).SetValue(items[k])
				continue
			}
			if _, err := sec.NewKey(k, items[k]); err != nil {
				return fmt.Errorf("merge setup key %s.%s: %w", name, k, err)
			}
		}
	}

	if err := f.SaveTo(path); err != nil {
		return fmt.Errorf("write setup file: %w", err)
	}
	return nil
}

func sectionName(name string) string {
	if name == ini.DefaultSection {
		return ""
	}
	return name
}

func iniName(name string) string {
	if name == "" {
		return ini.DefaultSection
	}
	return name
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
