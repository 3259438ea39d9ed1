// Package archive enumerates zip input bundles for the render driver. Nothing
// is ever extracted to disk, matching entries are streamed straight into the
// markup parser, so the walker only provides safe, filtered enumeration.
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"strings"
)

// WalkFunc is called for every entry selected by Walk. The archive argument
// is the path of the bundle being walked, file is the entry itself. Returning
// an error stops the walk and is passed through to the caller.
type WalkFunc func(archive string, file *zip.File) error

// Walk visits regular files inside the archive that sit under pathIn and
// carry one of the given extensions (case-insensitive, with leading dot).
// Empty exts keeps every file. Entry names that could escape an extraction
// directory (absolute, or containing "..") fail the walk outright - a bundle
// carrying such names is not trusted at all.
func Walk(archive, pathIn string, exts []string, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, pathIn) {
			continue
		}
		if !hasExtension(name, exts) {
			continue
		}
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

func hasExtension(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(path.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// isSafePath returns false for entry names that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
