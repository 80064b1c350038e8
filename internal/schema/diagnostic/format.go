package diagnostic

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// Formatter prints diagnostics one per line and, on request, the source
// lines around each one.
type Formatter struct {
	// ShowContext prints source lines below each diagnostic.
	ShowContext bool
	// ContextLines is the number of lines shown either side of the reported one.
	ContextLines int
	// ReadFile loads sources for context; defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error)

	cache map[string][]string
}

// Write prints every diagnostic to w in order.
func (f *Formatter) Write(w io.Writer, diags []Diagnostic) error {
	for _, d := range diags {
		if _, err := fmt.Fprintln(w, d.String()); err != nil {
			return err
		}
		if !f.ShowContext {
			continue
		}
		if _, err := io.WriteString(w, f.context(d)); err != nil {
			return err
		}
	}
	return nil
}

// context renders the lines around d with a marker on the reported line.
// Unreadable sources yield no context.
func (f *Formatter) context(d Diagnostic) string {
	lines, ok := f.lines(d.Path)
	if !ok || d.Line < 1 || d.Line > len(lines) {
		return ""
	}
	start := max(d.Line-f.ContextLines, 1)
	end := min(d.Line+f.ContextLines, len(lines))
	width := len(fmt.Sprint(end))

	var b strings.Builder
	for n := start; n <= end; n++ {
		marker := "   "
		if n == d.Line {
			marker = "-->"
		}
		fmt.Fprintf(&b, "  %s %*d | %s\n", marker, width, n, lines[n-1])
	}
	return b.String()
}

func (f *Formatter) lines(path string) ([]string, bool) {
	if lines, ok := f.cache[path]; ok {
		return lines, lines != nil
	}
	if f.cache == nil {
		f.cache = make(map[string][]string)
	}
	read := f.ReadFile
	if read == nil {
		read = os.ReadFile
	}
	data, err := read(path)
	if err != nil {
		f.cache[path] = nil
		return nil, false
	}
	lines := make([]string, 0)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	f.cache[path] = lines
	return lines, true
}
