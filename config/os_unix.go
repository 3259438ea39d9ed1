//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

const disallowedNameRunes = string(os.PathSeparator) + string(os.PathListSeparator)

// CleanFileName strips characters a file name cannot carry on this platform.
// Output image names come from document names and user templates, so anything
// may arrive here; leading dots are trimmed so expansion cannot produce hidden
// files, and an empty result gets a placeholder instead of a nameless file.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if strings.ContainsRune(disallowedNameRunes, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimLeft(out, ".")
	if len(out) == 0 {
		out = "_bad_file_name_"
	}
	return out
}

// EnableColorOutput reports whether the console logger may use color on this
// stream.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
