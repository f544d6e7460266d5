package fs

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// sniffSize is how many leading bytes Sniff looks at.
const sniffSize = 4096

// nonPrintableLimit is the share (in percent) of control bytes above which
// non-UTF-8 content is treated as binary.
const nonPrintableLimit = 30

// Encoding classifies file content by its leading bytes.
type Encoding int

const (
	EncodingBinary Encoding = iota
	EncodingUTF8
	EncodingUTF8BOM
	EncodingUTF16LE
	EncodingUTF16BE
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "utf-8"
	case EncodingUTF8BOM:
		return "utf-8-bom"
	case EncodingUTF16LE:
		return "utf-16le"
	case EncodingUTF16BE:
		return "utf-16be"
	default:
		return "binary"
	}
}

// IsText reports whether content of this encoding can be searched.
func (e Encoding) IsText() bool {
	return e != EncodingBinary
}

var binaryExtensions = map[string]struct{}{
	".7z":    {},
	".a":     {},
	".apk":   {},
	".avi":   {},
	".bin":   {},
	".bmp":   {},
	".bz2":   {},
	".class": {},
	".dat":   {},
	".dll":   {},
	".dmg":   {},
	".doc":   {},
	".docx":  {},
	".dylib": {},
	".ear":   {},
	".eot":   {},
	".exe":   {},
	".flac":  {},
	".flv":   {},
	".gif":   {},
	".gz":    {},
	".ico":   {},
	".img":   {},
	".iso":   {},
	".jar":   {},
	".jpeg":  {},
	".jpg":   {},
	".lib":   {},
	".mkv":   {},
	".mov":   {},
	".mp3":   {},
	".mp4":   {},
	".node":  {},
	".o":     {},
	".obj":   {},
	".odp":   {},
	".ods":   {},
	".odt":   {},
	".ogg":   {},
	".otf":   {},
	".pdf":   {},
	".png":   {},
	".ppt":   {},
	".pptx":  {},
	".psd":   {},
	".pyc":   {},
	".pyo":   {},
	".rar":   {},
	".so":    {},
	".svg":   {},
	".tar":   {},
	".tgz":   {},
	".ttf":   {},
	".war":   {},
	".wasm":  {},
	".wav":   {},
	".webp":  {},
	".wmv":   {},
	".woff":  {},
	".woff2": {},
	".xls":   {},
	".xlsx":  {},
	".xz":    {},
	".zip":   {},
}

// IsBinaryPath reports whether path carries a well-known binary extension.
func IsBinaryPath(path string) bool {
	if path == "" {
		return false
	}
	_, ok := binaryExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Sniff classifies the leading bytes of a file. A binary extension on path
// short-circuits the check; an empty sample is plain text. Samples without a
// BOM count as text when they are valid UTF-8 or, failing that, contain few
// control bytes and no NUL.
func Sniff(path string, sample []byte) Encoding {
	if IsBinaryPath(path) {
		return EncodingBinary
	}
	if len(sample) > sniffSize {
		sample = sample[:sniffSize]
	}

	switch {
	case bytes.HasPrefix(sample, []byte{0xEF, 0xBB, 0xBF}):
		return EncodingUTF8BOM
	case bytes.HasPrefix(sample, []byte{0xFF, 0xFE}):
		return EncodingUTF16LE
	case bytes.HasPrefix(sample, []byte{0xFE, 0xFF}):
		return EncodingUTF16BE
	case len(sample) == 0:
		return EncodingUTF8
	case bytes.IndexByte(sample, 0x00) >= 0:
		return EncodingBinary
	case utf8.Valid(sample):
		return EncodingUTF8
	}

	control := 0
	for _, b := range sample {
		if !isCommonTextByte(b) {
			control++
		}
	}
	if control == len(sample) || control*100/len(sample) >= nonPrintableLimit {
		return EncodingBinary
	}
	return EncodingUTF8
}

func isCommonTextByte(b byte) bool {
	switch {
	case b == '\t', b == '\n', b == '\r', b == 0x1B:
		return true
	default:
		return b >= 0x20 && b != 0x7F
	}
}
