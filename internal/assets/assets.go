package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when no file matches a requested asset name.
var ErrNotFound = errors.New("asset not found")

// PackExtensions lists file types that hold language packs.
var PackExtensions = map[string]bool{
	".tra": true,
	".trs": true,
}

// Asset is an open, seekable asset stream.
type Asset interface {
	io.ReadCloser
	// Length returns the total size of the asset in bytes.
	Length() int64
	// Position returns the current read offset.
	Position() int64
}

// Dir opens assets from a directory on disk, matching names without regard
// to case as the game data may have been copied from a case-insensitive
// file system.
type Dir struct {
	root string
}

// NewDir creates a Dir rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Root returns the directory Dir was created with.
func (d *Dir) Root() string {
	return d.root
}

// Open resolves name below the root and opens it.
func (d *Dir) Open(name string) (Asset, error) {
	path, err := FindFile(d.root, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open asset %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat asset %s: %w", name, err)
	}
	return &fileAsset{File: f, length: info.Size()}, nil
}

// Exists reports whether name resolves to a regular file below the root.
func (d *Dir) Exists(name string) bool {
	_, err := FindFile(d.root, name)
	return err == nil
}

// Path resolves name to an absolute path, or returns ErrNotFound.
func (d *Dir) Path(name string) (string, error) {
	path, err := FindFile(d.root, name)
	if err != nil {
		return "", err
	}
	return filepath.Abs(path)
}

// FindFile resolves a slash separated relative name below dir, matching
// each component case-insensitively when there is no exact match.
func FindFile(dir, name string) (string, error) {
	name = filepath.ToSlash(strings.ReplaceAll(name, "\\", "/"))
	current := dir
	parts := strings.Split(name, "/")
	for i, part := range parts {
		if part == "" || part == "." {
			continue
		}
		next, err := findEntry(current, part)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		current = next

		info, err := os.Stat(current)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		last := i == len(parts)-1
		if last && info.IsDir() {
			return "", fmt.Errorf("%w: %s is a directory", ErrNotFound, name)
		}
		if !last && !info.IsDir() {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
	}
	return current, nil
}

func findEntry(dir, name string) (string, error) {
	exact := filepath.Join(dir, name)
	if _, err := os.Stat(exact); err == nil {
		return exact, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name(), name) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fs.ErrNotExist
}

// PackEntry represents a discovered language pack file.
type PackEntry struct {
	Path string
	Name string
	Ext  string
}

// ListPacks discovers all pack files directly inside dir, sorted by name.
func ListPacks(dir string) ([]PackEntry, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve pack directory: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat pack directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("pack directory is not a directory: %s", root)
	}

	files, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read pack directory: %w", err)
	}

	var entries []PackEntry
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(f.Name()))
		if !PackExtensions[ext] {
			continue
		}
		entries = append(entries, PackEntry{
			Path: filepath.Join(root, f.Name()),
			Name: strings.TrimSuffix(f.Name(), filepath.Ext(f.Name())),
			Ext:  ext,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})

	log.Debug().Int("count", len(entries)).Str("dir", root).Msg("Discovered packs")
	return entries, nil
}

type fileAsset struct {
	*os.File
	length int64
}

func (a *fileAsset) Length() int64 {
	return a.length
}

func (a *fileAsset) Position() int64 {
	pos, err := a.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1
	}
	return pos
}
