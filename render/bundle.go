package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	fixzip "github.com/hidez8891/zip"
	"go.uber.org/multierr"
)

// bundle collects rendered images into a single zip archive. Used when the
// destination names a .zip file instead of a directory.
type bundle struct {
	f *os.File
	w *fixzip.Writer
}

func newBundle(path string) (*bundle, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create output bundle: %w", err)
	}
	return &bundle{f: f, w: fixzip.NewWriter(f)}, nil
}

// Create adds a new entry to the bundle and returns its writer. The entry
// stays valid until the next Create or Close call.
func (b *bundle) Create(name string) (io.Writer, error) {
	return b.w.Create(filepath.ToSlash(name))
}

func (b *bundle) Close() error {
	if b == nil {
		return nil
	}
	var err error
	err = multierr.Append(err, b.w.Close())
	err = multierr.Append(err, b.f.Close())
	return err
}
