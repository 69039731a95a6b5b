package speaker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// MetadataSuffix is the file name suffix of message-metadata files.
const MetadataSuffix = ".mss.json"

// Index maps metadata file names to their location under the archive root,
// built once so per-row lookups never re-walk the tree. Parsed documents are
// cached; misses and parse failures are cached too, so a broken file is
// reported once instead of once per row.
type Index struct {
	root  string
	paths map[string]string // lower-cased base name -> full path

	mu   sync.Mutex
	docs map[string]*Document
	errs map[string]error
}

// BuildIndex walks the archive directory and records every metadata file.
// Later duplicates of a name are ignored, matching first-found-wins lookup.
func BuildIndex(root string, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("invalid archive path: %s", root)
	}

	ix := &Index{
		root:  root,
		paths: make(map[string]string),
		docs:  make(map[string]*Document),
		errs:  make(map[string]error),
	}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); strings.HasPrefix(name, ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		name := strings.ToLower(d.Name())
		if !strings.HasSuffix(name, MetadataSuffix) {
			return nil
		}
		if _, seen := ix.paths[name]; !seen {
			ix.paths[name] = path
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index archive %s: %w", root, err)
	}

	logger.Info("indexed metadata archive",
		zap.String("root", root),
		zap.Int("files", len(ix.paths)))
	return ix, nil
}

// Len returns the number of indexed metadata files.
func (ix *Index) Len() int { return len(ix.paths) }

// Path returns the location of the named metadata file. The match is
// case-insensitive; archives moved between filesystems drift in case.
func (ix *Index) Path(name string) (string, bool) {
	path, ok := ix.paths[strings.ToLower(name)]
	return path, ok
}

// Document returns the parsed metadata file, loading it on first use.
// Safe for concurrent callers.
func (ix *Index) Document(name string) (*Document, error) {
	key := strings.ToLower(name)
	path, ok := ix.paths[key]
	if !ok {
		return nil, fmt.Errorf("metadata file not found: %s", name)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	if doc, ok := ix.docs[key]; ok {
		return doc, nil
	}
	if err, ok := ix.errs[key]; ok {
		return nil, err
	}
	doc, err := LoadDocument(path)
	if err != nil {
		ix.errs[key] = err
		return nil, err
	}
	ix.docs[key] = doc
	return doc, nil
}
