package render

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// TestIsArchiveFile tests archive file detection
func TestIsArchiveFile(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("non-zip extension", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test.txt")
		if err := os.WriteFile(filePath, []byte("not a zip"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		got, err := isArchiveFile(filePath)
		if err != nil {
			t.Errorf("isArchiveFile() error = %v", err)
		}
		if got != false {
			t.Errorf("isArchiveFile() = %v, want false", got)
		}
	})

	t.Run("zip extension but invalid content", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test.zip")
		if err := os.WriteFile(filePath, []byte("not a real zip file"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
		got, err := isArchiveFile(filePath)
		if err != nil {
			t.Errorf("isArchiveFile() error = %v", err)
		}
		if got != false {
			t.Errorf("isArchiveFile() = %v, want false", got)
		}
	})

	t.Run("valid zip file", func(t *testing.T) {
		filePath := filepath.Join(tmpDir, "test2.zip")
		zipFile, err := os.Create(filePath)
		if err != nil {
			t.Fatalf("Failed to create zip file: %v", err)
		}
		w := zip.NewWriter(zipFile)
		f, err := w.Create("test.vg")
		if err != nil {
			t.Fatalf("Failed to create file in zip: %v", err)
		}
		f.Write(make([]byte, 300))
		w.Close()
		zipFile.Close()

		got, err := isArchiveFile(filePath)
		if err != nil {
			t.Errorf("isArchiveFile() error = %v", err)
		}
		if !got {
			t.Errorf("isArchiveFile() = %v, want true", got)
		}
	})
}

func TestIsArchiveFile_NonExistent(t *testing.T) {
	_, err := isArchiveFile("/nonexistent/file.zip")
	if err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
}

func TestIsMarkupFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content []byte
		want    bool
	}{
		{name: "vg extension with root", file: "a.vg", content: []byte(`<vg width="10" height="10"></vg>`), want: true},
		{name: "xml extension with root", file: "b.xml", content: []byte(`<?xml version="1.0"?><vg></vg>`), want: true},
		{name: "xml extension wrong root", file: "c.xml", content: []byte(`<html></html>`), want: false},
		{name: "wrong extension", file: "d.txt", content: []byte(`<vg></vg>`), want: false},
		{name: "utf16 content", file: "e.vg", content: []byte{0xFF, 0xFE, '<', 0, 'v', 0, 'g', 0}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			if err := os.WriteFile(path, tt.content, 0644); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}
			got, err := isMarkupFile(path)
			if err != nil {
				t.Errorf("isMarkupFile() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("isMarkupFile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSniffMarkup(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want bool
	}{
		{name: "plain root", head: []byte(`<vg width="1" height="1">`), want: true},
		{name: "xml prolog before root", head: []byte(`<?xml version="1.0"?><vg>`), want: true},
		{name: "utf16 little endian", head: []byte{'<', 0, 'v', 0, 'g', 0}, want: true},
		{name: "utf16 big endian", head: []byte{0, '<', 0, 'v', 0, 'g'}, want: true},
		{name: "wrong root", head: []byte(`<html>`), want: false},
		{name: "empty", head: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sniffMarkup(tt.head); got != tt.want {
				t.Errorf("sniffMarkup() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestSelectReader tests that BOM-marked input decodes to the same UTF-8 text.
func TestSelectReader(t *testing.T) {
	const text = `<vg width="10" height="10"><rect x="1" y="1"/></vg>`

	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{
			name: "UTF-8 no BOM",
			data: func(t *testing.T) []byte { return []byte(text) },
		},
		{
			name: "UTF-8 BOM",
			data: func(t *testing.T) []byte {
				return append([]byte{0xEF, 0xBB, 0xBF}, text...)
			},
		},
		{
			name: "UTF-16 LE BOM",
			data: func(t *testing.T) []byte {
				out, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
				if err != nil {
					t.Fatalf("encode: %v", err)
				}
				return out
			},
		},
		{
			name: "UTF-16 BE BOM",
			data: func(t *testing.T) []byte {
				out, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(text))
				if err != nil {
					t.Fatalf("encode: %v", err)
				}
				return out
			},
		},
		{
			name: "UTF-32 LE BOM",
			data: func(t *testing.T) []byte {
				out, err := utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewEncoder().Bytes([]byte(text))
				if err != nil {
					t.Fatalf("encode: %v", err)
				}
				return out
			},
		},
		{
			name: "UTF-32 BE BOM",
			data: func(t *testing.T) []byte {
				out, err := utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewEncoder().Bytes([]byte(text))
				if err != nil {
					t.Fatalf("encode: %v", err)
				}
				return out
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := io.ReadAll(selectReader(bytes.NewReader(tt.data(t)), nil))
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(got) != text {
				t.Errorf("decoded %q, want %q", got, text)
			}
		})
	}
}

func TestSelectReaderCodePage(t *testing.T) {
	// "привет" in windows-1251
	src := []byte{0xEF, 0xF0, 0xE8, 0xE2, 0xE5, 0xF2}
	got, err := io.ReadAll(selectReader(bytes.NewReader(src), charmap.Windows1251))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "привет" {
		t.Errorf("decoded %q, want %q", got, "привет")
	}
}

func TestSelectReaderShortInput(t *testing.T) {
	got, err := io.ReadAll(selectReader(bytes.NewReader([]byte("x")), nil))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "x" {
		t.Errorf("decoded %q, want %q", got, "x")
	}
}
