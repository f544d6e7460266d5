package fs

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrBinaryContent is returned when a file does not look like text.
	ErrBinaryContent = errors.New("binary content")
	// ErrFileTooLarge is returned when a file exceeds the decoder size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// LineReader is the content decoder used by content search. It calls fn for each
// line (1-based number, text without the trailing newline) until fn returns false.
type LineReader interface {
	ReadLines(path string, fn func(lineNumber uint64, line string) bool) error
}

// TextDecoder reads text files line by line, decoding BOM-marked UTF-16 and
// stripping a UTF-8 BOM. Files over MaxFileSize (when positive) are refused.
type TextDecoder struct {
	MaxFileSize int64
}

func (d TextDecoder) ReadLines(path string, fn func(lineNumber uint64, line string) bool) error {
	if IsBinaryPath(path) {
		return ErrBinaryContent
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	if d.MaxFileSize > 0 {
		info, statErr := f.Stat()
		if statErr != nil {
			return statErr
		}
		if info.Size() > d.MaxFileSize {
			return ErrFileTooLarge
		}
	}

	reader := bufio.NewReaderSize(f, 64*1024)
	sample, err := reader.Peek(sniffSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return err
	}

	switch Sniff("", sample) {
	case EncodingBinary:
		return ErrBinaryContent
	case EncodingUTF8BOM:
		_, _ = reader.Discard(3)
	case EncodingUTF16LE:
		reader = utf16Reader(reader, unicode.LittleEndian)
	case EncodingUTF16BE:
		reader = utf16Reader(reader, unicode.BigEndian)
	}
	return scanLines(reader, fn)
}

// utf16Reader transcodes r to UTF-8, consuming the BOM.
func utf16Reader(r io.Reader, endian unicode.Endianness) *bufio.Reader {
	decoder := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder()
	return bufio.NewReaderSize(transform.NewReader(r, decoder), 64*1024)
}

func scanLines(reader *bufio.Reader, fn func(uint64, string) bool) error {
	var lineNumber uint64
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			lineNumber++
			if !fn(lineNumber, TrimLineEnding(line)) {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// TrimLineEnding removes a single trailing "\n" or "\r\n".
func TrimLineEnding(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}
