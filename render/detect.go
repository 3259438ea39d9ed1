package render

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// markupExtensions are the file extensions recognized as vector markup.
var markupExtensions = []string{".vg", ".xml"}

// isArchiveFile reports whether path is a zip archive, checking content
// rather than trusting the extension.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, err
	}
	return filetype.IsType(head[:n], matchers.TypeZip), nil
}

// isMarkupFile reports whether path looks like a vector markup document:
// a recognized extension and a <vg root somewhere near the start.
func isMarkupFile(path string) (bool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	found := false
	for _, e := range markupExtensions {
		if ext == e {
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, 1024)
	n, _ := io.ReadFull(f, head)
	return sniffMarkup(head[:n]), nil
}

// sniffMarkup reports whether the data prefix looks like a markup document.
// Used on its own for archive entries, where the walker has already filtered
// by extension.
func sniffMarkup(head []byte) bool {
	// the zero-interleaved variants catch UTF-16 text of either endianness
	return bytes.Contains(head, []byte("<vg")) ||
		bytes.Contains(head, []byte{0, '<', 0, 'v', 0, 'g'}) ||
		bytes.Contains(head, []byte{'<', 0, 'v', 0, 'g', 0})
}

// selectReader wraps r so that UTF-16/32 input with a BOM and configured
// legacy code pages decode to UTF-8. Plain UTF-8 (with or without BOM)
// passes through.
func selectReader(r io.Reader, cp encoding.Encoding) io.Reader {
	br := bufio.NewReader(r)

	bom, err := br.Peek(4)
	if err != nil && len(bom) < 2 {
		return br
	}

	switch {
	case len(bom) >= 4 && bom[0] == 0x00 && bom[1] == 0x00 && bom[2] == 0xFE && bom[3] == 0xFF:
		return transform.NewReader(br, utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewDecoder())
	case len(bom) >= 4 && bom[0] == 0xFF && bom[1] == 0xFE && bom[2] == 0x00 && bom[3] == 0x00:
		return transform.NewReader(br, utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewDecoder())
	case bom[0] == 0xFE && bom[1] == 0xFF:
		return transform.NewReader(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder())
	case bom[0] == 0xFF && bom[1] == 0xFE:
		return transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
	case len(bom) >= 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF:
		br.Discard(3)
		return br
	}

	if cp != nil {
		return transform.NewReader(br, cp.NewDecoder())
	}
	return br
}
