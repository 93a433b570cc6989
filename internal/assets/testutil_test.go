package assets

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// fakeStore is an in-memory ObjectStore with error injection.
type fakeStore struct {
	objects  map[string][]byte
	listErr  error
	fetchErr error
	fetched  []string
}

func (f *fakeStore) List(_ context.Context, prefix string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

func (f *fakeStore) Fetch(_ context.Context, key, destPath string) error {
	if f.fetchErr != nil {
		return f.fetchErr
	}
	data, ok := f.objects[key]
	if !ok {
		return os.ErrNotExist
	}
	f.fetched = append(f.fetched, key)
	return os.WriteFile(destPath, data, 0o644)
}

// writeTree creates files (relative path -> contents) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, contents := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}
