package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/kk-code-lab/rscan/internal/engine"
	fsutil "github.com/kk-code-lab/rscan/internal/fs"
	"github.com/kk-code-lab/rscan/internal/search"
	"github.com/kk-code-lab/rscan/internal/textutil"
)

const (
	colorMatch = "\x1b[1;31m"
	colorReset = "\x1b[0m"
)

// printer writes command output and remembers the first write error.
type printer struct {
	w     io.Writer
	json  bool
	color bool
	width int
	err   error
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, json: asJSON}
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) value(v any) {
	if p.err != nil {
		return
	}
	p.err = json.NewEncoder(p.w).Encode(v)
}

func (p *printer) event(ev engine.Event) error {
	p.value(ev)
	return p.err
}

func (p *printer) note(msg string) {
	p.printf("-- %s\n", msg)
}

func (p *printer) nameResult(r search.NameResult) {
	path := textutil.Sanitize(filepath.ToSlash(r.RelativePath))
	if r.Kind == fsutil.KindDirectory {
		path += "/"
	}
	p.printf("%s\n", path)
}

func (p *printer) contentResult(r search.ContentResult) {
	path := textutil.Sanitize(filepath.ToSlash(r.RelativePath))
	for _, m := range r.Matches {
		prefix := fmt.Sprintf("%s:%d:%d: ", path, m.LineNumber, m.Column)
		p.printf("%s%s\n", prefix, p.preview(m, textutil.DisplayWidth(prefix)))
	}
}

// preview renders the matched line, clipped so the whole output line fits
// the configured width.
func (p *printer) preview(m search.ContentMatch, used int) string {
	line := m.LineContent
	if p.width > 0 {
		line = textutil.Clip(line, max(p.width-used, 8))
	}
	if !p.color {
		return textutil.Sanitize(line)
	}

	kept := len(line)
	if line != m.LineContent {
		kept -= len(textutil.Ellipsis)
	}
	return textutil.Emphasize(line, m.MatchStart, min(m.MatchEnd, kept), colorMatch, colorReset)
}

func (p *printer) entry(e fsutil.Entry) {
	name := textutil.Sanitize(e.Name)
	if e.IsDir() {
		p.printf("%s/\n", name)
		return
	}
	p.printf("%-40s %10d  %s\n", name, e.Size, e.Modified.Format("2006-01-02 15:04"))
}

func (p *printer) summary(files, matches uint64) {
	p.printf("-- %d matches in %d files\n", matches, files)
}
