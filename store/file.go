package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"airlinesim"
)

// FileStore keeps one JSON file per document under Dir/<collection>/<key>.json.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (f *FileStore) path(collection, key string) string {
	return filepath.Join(f.Dir, url.PathEscape(collection), url.PathEscape(key)+".json")
}

func (f *FileStore) Get(ctx context.Context, collection, key string) ([]byte, error) {
	b, err := os.ReadFile(f.path(collection, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s/%s: %w", collection, key, airlinesim.ErrNotFound)
	}
	return b, err
}

// Put writes through a temp file and rename so readers never see a partial document.
func (f *FileStore) Put(ctx context.Context, collection, key string, doc []byte) error {
	p := f.path(collection, key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create collection dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // nolint: errcheck

	if _, err := tmp.Write(doc); err != nil {
		tmp.Close() // nolint: errcheck
		return fmt.Errorf("write %s/%s: %w", collection, key, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (f *FileStore) Query(ctx context.Context, collection string, q Query) ([][]byte, error) {
	dir := filepath.Join(f.Dir, url.PathEscape(collection))
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return [][]byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		// Temp files from Put carry no .json suffix.
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)

	docs := make([][]byte, 0, len(names))
	for _, n := range names {
		b, err := os.ReadFile(filepath.Join(dir, n))
		if err != nil {
			return nil, fmt.Errorf("read %s/%s: %w", collection, n, err)
		}
		docs = append(docs, b)
	}
	return q.apply(docs), nil
}
