package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	mscanner "modernc.org/scanner"
	"modernc.org/token"

	"github.com/rubiojr/party/ast"
	"github.com/rubiojr/party/interp"
)

// diagPrinter renders errors and warnings as
//
//	file:line:col: error: message
//	   3 | var [ = 1
//	     |       ^
type diagPrinter struct {
	w       io.Writer
	errorC  *color.Color
	warnC   *color.Color
	noteC   *color.Color
	caretC  *color.Color
	sources map[string][][]byte
}

func newDiagPrinter(w io.Writer, useColor bool) *diagPrinter {
	d := &diagPrinter{
		w:       w,
		errorC:  color.New(color.FgRed, color.Bold),
		warnC:   color.New(color.FgYellow, color.Bold),
		noteC:   color.New(color.FgCyan),
		caretC:  color.New(color.FgGreen, color.Bold),
		sources: map[string][][]byte{},
	}
	for _, c := range []*color.Color{d.errorC, d.warnC, d.noteC, d.caretC} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return d
}

// report prints err, locating it in the source when it carries a position.
func (d *diagPrinter) report(err error) {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			d.report(e)
		}
		return
	}
	var list mscanner.ErrList
	if errors.As(err, &list) {
		for _, e := range list {
			d.emit(token.Position(e.Pos), d.errorC.Sprint("error"), e.Err.Error())
		}
		return
	}
	pos, msg := locate(err)
	d.emit(pos, d.errorC.Sprint("error"), msg)
}

func (d *diagPrinter) warn(w *ast.Error) {
	d.emit(w.Pos, d.warnC.Sprint("warning"), w.Msg)
}

func (d *diagPrinter) note(format string, args ...any) {
	fmt.Fprintf(d.w, "%s: %s\n", d.noteC.Sprint("note"), fmt.Sprintf(format, args...))
}

func (d *diagPrinter) emit(pos token.Position, label, msg string) {
	if !pos.IsValid() {
		if pos.Filename != "" {
			fmt.Fprintf(d.w, "%s: %s: %s\n", pos.Filename, label, msg)
			return
		}
		fmt.Fprintf(d.w, "%s: %s\n", label, msg)
		return
	}
	fmt.Fprintf(d.w, "%s: %s: %s\n", pos, label, msg)
	line, ok := d.line(pos.Filename, pos.Line)
	if !ok {
		return
	}
	gutter := fmt.Sprintf("%4d | ", pos.Line)
	fmt.Fprintf(d.w, "%s%s\n", gutter, line)
	fmt.Fprintf(d.w, "%s%s%s\n", strings.Repeat(" ", len(gutter)-2)+"| ", caretPadding(line, pos.Column), d.caretC.Sprint("^"))
}

// line returns line n (1-based) of file, reading the file on first use.
func (d *diagPrinter) line(file string, n int) (string, bool) {
	lines, ok := d.sources[file]
	if !ok {
		data, err := os.ReadFile(file)
		if err == nil {
			lines = bytes.Split(data, []byte("\n"))
		}
		d.sources[file] = lines
	}
	if n < 1 || n > len(lines) {
		return "", false
	}
	return strings.TrimRight(string(lines[n-1]), "\r"), true
}

// caretPadding returns the whitespace that puts a caret under the byte
// column col of line. Tabs are kept so the caret lines up with the source
// as displayed, and wide runes take their display width.
func caretPadding(line string, col int) string {
	if col < 1 {
		return ""
	}
	end := min(col-1, len(line))
	var b strings.Builder
	for _, r := range line[:end] {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}

// locate extracts the source position of err. Compile errors wrapped by the
// interpreter keep their own position.
func locate(err error) (token.Position, string) {
	var aerr *ast.Error
	if errors.As(err, &aerr) {
		return aerr.Pos, aerr.Msg
	}
	var serr mscanner.ErrWithPosition
	if errors.As(err, &serr) {
		return token.Position(serr.Pos), serr.Err.Error()
	}
	var ierr *interp.Error
	if errors.As(err, &ierr) && ierr.Pos.IsValid() {
		msg := ierr.Msg
		if ierr.Thrown != nil {
			msg = "uncaught " + interp.Inspect(ierr.Thrown)
		}
		return ierr.Pos, msg
	}
	return token.Position{}, err.Error()
}
