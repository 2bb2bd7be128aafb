// Package ioadapt provides the interpreter's external collaborators:
// the line-buffered program-input source and the stdout/stderr output
// sinks named as out-of-scope contracts in spec.md §1 and §6. It
// follows the teacher VM's habit of wrapping os.Stdin/os.Stdout in
// bufio readers/writers rather than touching the raw file descriptors
// directly (see vm.stdin/vm.stdout in the teacher's vm.go).
package ioadapt

import (
	"bufio"
	"io"
	"os"

	"github.com/pkg/errors"

	"ipp23/internal/ippcode/errs"
)

// LineSource yields the program's input stream one line at a time.
// ReadLine reports ("", false) at end of stream, matching the READ
// opcode's EOF contract (spec.md §4.6: "On EOF → assign nil").
type LineSource interface {
	ReadLine() (string, bool)
}

// Sink is anything the interpreter writes program-visible bytes to
// (stdout for WRITE, stderr for DPRINT/BREAK/error text).
type Sink interface {
	io.Writer
}

// bufLineSource reads newline-delimited UTF-8 text, never stripping
// anything beyond the line terminator itself (spec.md §9 open question
// 3: "do not strip whitespace beyond the line terminator").
type bufLineSource struct {
	r *bufio.Reader
}

func NewLineSource(r io.Reader) LineSource {
	return &bufLineSource{r: bufio.NewReader(r)}
}

func (s *bufLineSource) ReadLine() (string, bool) {
	line, err := s.r.ReadString('\n')
	if err != nil {
		if len(line) == 0 {
			return "", false
		}
		// Last line of the stream with no trailing newline.
		return line, true
	}
	return line[:len(line)-1], true
}

// OpenSource resolves --source/--input style flags: an explicit path
// is opened for reading, an empty path falls back to stdin. The
// returned io.Closer is a no-op for stdin.
func OpenSource(path string) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.OpenInput.Wrap(errors.Wrapf(err, "opening %s", path))
	}
	return f, nil
}

// BufSink wraps an io.Writer the way the teacher wraps os.Stdout: a
// bufio.Writer that callers must Flush before the process exits, so a
// terminating error still surfaces any preceding WRITE output
// (spec.md §5: "Flushing before process exit is required").
type BufSink struct {
	w *bufio.Writer
}

func NewBufSink(w io.Writer) *BufSink {
	return &BufSink{w: bufio.NewWriter(w)}
}

func (s *BufSink) Write(p []byte) (int, error) { return s.w.Write(p) }

func (s *BufSink) Flush() error { return s.w.Flush() }
